package identity_test

import (
	"context"
	"testing"

	"github.com/joshua-hq/warroom/pkg/domain/types"
	"github.com/joshua-hq/warroom/pkg/service/identity"
	"github.com/m-mizutani/gt"
)

func TestProviderIssuesStableID(t *testing.T) {
	ctx := context.Background()
	p := identity.New()

	gt.Equal(t, p.ID(), types.EmptyIdentityID)

	id1, err := p.SignIn(ctx)
	gt.NoError(t, err)
	gt.NoError(t, id1.Validate())

	id2, err := p.SignIn(ctx)
	gt.NoError(t, err)
	gt.Equal(t, id1, id2)
	gt.Equal(t, p.ID(), id1)
}

func TestProviderOnChange(t *testing.T) {
	ctx := context.Background()

	t.Run("listener fires on sign-in", func(t *testing.T) {
		p := identity.New()
		var got types.IdentityID
		p.OnChange(func(id types.IdentityID) { got = id })

		issued, err := p.SignIn(ctx)
		gt.NoError(t, err)
		gt.Equal(t, got, issued)
	})

	t.Run("late listener fires immediately", func(t *testing.T) {
		p := identity.New()
		issued, err := p.SignIn(ctx)
		gt.NoError(t, err)

		var got types.IdentityID
		p.OnChange(func(id types.IdentityID) { got = id })
		gt.Equal(t, got, issued)
	})
}
