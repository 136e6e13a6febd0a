package usecase

import (
	"context"

	"github.com/joshua-hq/warroom/pkg/domain/interfaces"
	"github.com/joshua-hq/warroom/pkg/domain/model/chat"
	"github.com/joshua-hq/warroom/pkg/domain/model/errs"
	"github.com/joshua-hq/warroom/pkg/domain/model/session"
	"github.com/m-mizutani/goerr/v2"
)

// ChatWorkflow appends chat messages. No enrichment, no moderation, no
// rate limit: chat latency stays minimal.
type ChatWorkflow struct {
	store interfaces.DocumentStore
	sess  *session.Session
}

func NewChatWorkflow(store interfaces.DocumentStore, sess *session.Session) *ChatWorkflow {
	return &ChatWorkflow{
		store: store,
		sess:  sess,
	}
}

// Send appends one message. Blank text is a silent no-op.
func (w *ChatWorkflow) Send(ctx context.Context, text string) error {
	msg := chat.New(w.sess.Identity(), w.sess.DisplayNameOrFallback(), text)
	if msg == nil {
		return nil
	}

	if err := w.sess.Identity().Validate(); err != nil {
		return goerr.Wrap(errs.ErrIdentityNotReady, "cannot send message")
	}

	if _, err := w.store.AppendMessage(ctx, msg); err != nil {
		errs.Handle(ctx, err)
		return err
	}
	return nil
}
