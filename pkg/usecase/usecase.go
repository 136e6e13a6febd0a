package usecase

import (
	"context"

	"github.com/joshua-hq/warroom/pkg/domain/interfaces"
	"github.com/joshua-hq/warroom/pkg/domain/model/errs"
	"github.com/joshua-hq/warroom/pkg/domain/model/lang"
	"github.com/joshua-hq/warroom/pkg/domain/model/session"
	"github.com/joshua-hq/warroom/pkg/domain/types"
	"github.com/joshua-hq/warroom/pkg/service/identity"
	"github.com/m-mizutani/goerr/v2"
)

const defaultChatWindow = 50

// UseCases wires the document store, the enrichment client and the
// identity provider together and hands out per-member session
// controllers. All configuration is passed in explicitly; core logic
// never reads ambient globals.
type UseCases struct {
	store    interfaces.DocumentStore
	enricher interfaces.Enricher
	idp      *identity.Provider

	accessCode string
	chatWindow int
}

type Option func(*UseCases)

// WithAccessCode sets the shared gate secret. The check is advisory UI
// gating only; the backing store enforces no corresponding rule.
func WithAccessCode(code string) Option {
	return func(u *UseCases) {
		u.accessCode = code
	}
}

// WithChatWindow bounds how many recent chat messages are subscribed
// and rendered. Storage is unbounded; only the view is capped.
func WithChatWindow(n int) Option {
	return func(u *UseCases) {
		if n > 0 {
			u.chatWindow = n
		}
	}
}

func New(store interfaces.DocumentStore, enricher interfaces.Enricher, idp *identity.Provider, opts ...Option) *UseCases {
	u := &UseCases{
		store:      store,
		enricher:   enricher,
		idp:        idp,
		chatWindow: defaultChatWindow,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *UseCases) Store() interfaces.DocumentStore {
	return u.store
}

func (u *UseCases) ChatWindow() int {
	return u.chatWindow
}

// NewSession signs in an anonymous identity and builds a locked
// controller for one member. The locale comes from ctx.
func (u *UseCases) NewSession(ctx context.Context) (*Controller, error) {
	id, err := u.idp.SignIn(ctx)
	if err != nil {
		return nil, err
	}

	sess := session.New(id, lang.From(ctx))
	return newController(u, sess), nil
}

// NewSessionWith builds a controller for an identity issued elsewhere,
// e.g. one the gateway handed to a remote web client.
func (u *UseCases) NewSessionWith(ctx context.Context, id types.IdentityID) (*Controller, error) {
	if err := id.Validate(); err != nil {
		return nil, goerr.Wrap(err, "cannot open session", goerr.T(errs.TagSubscription))
	}

	sess := session.New(id, lang.From(ctx))
	return newController(u, sess), nil
}
