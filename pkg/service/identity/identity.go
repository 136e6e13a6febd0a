package identity

import (
	"context"
	"sync"

	"github.com/joshua-hq/warroom/pkg/domain/types"
	"github.com/joshua-hq/warroom/pkg/utils/logging"
)

// Provider issues an opaque anonymous identity once per session and
// keeps it stable for the session's lifetime. Stand-in for a managed
// identity service; consumers only see the ID and change events.
type Provider struct {
	mu        sync.RWMutex
	id        types.IdentityID
	listeners []func(types.IdentityID)
}

func New() *Provider {
	return &Provider{}
}

// SignIn establishes the anonymous identity. Idempotent: repeated
// calls return the already-issued ID.
func (p *Provider) SignIn(ctx context.Context) (types.IdentityID, error) {
	p.mu.Lock()
	if p.id != types.EmptyIdentityID {
		id := p.id
		p.mu.Unlock()
		return id, nil
	}

	p.id = types.NewIdentityID()
	id := p.id
	listeners := make([]func(types.IdentityID), len(p.listeners))
	copy(listeners, p.listeners)
	p.mu.Unlock()

	logging.From(ctx).Debug("anonymous identity issued", "identity_id", id)

	for _, fn := range listeners {
		fn(id)
	}
	return id, nil
}

// ID returns the current identity, or EmptyIdentityID before SignIn.
func (p *Provider) ID() types.IdentityID {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.id
}

// OnChange registers a listener for identity changes. If an identity
// is already established the listener fires immediately.
func (p *Provider) OnChange(fn func(types.IdentityID)) {
	p.mu.Lock()
	p.listeners = append(p.listeners, fn)
	id := p.id
	p.mu.Unlock()

	if id != types.EmptyIdentityID {
		fn(id)
	}
}
