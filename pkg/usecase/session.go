package usecase

import (
	"context"
	"strings"
	"sync"

	"github.com/joshua-hq/warroom/pkg/domain/interfaces"
	"github.com/joshua-hq/warroom/pkg/domain/model/chat"
	"github.com/joshua-hq/warroom/pkg/domain/model/errs"
	"github.com/joshua-hq/warroom/pkg/domain/model/report"
	"github.com/joshua-hq/warroom/pkg/domain/model/session"
	"github.com/joshua-hq/warroom/pkg/domain/types"
	"github.com/joshua-hq/warroom/pkg/service/rank"
	"github.com/joshua-hq/warroom/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// Controller is the per-member state machine: a locked gate, then a
// view selector. Mounting a view subscribes its streams; switching or
// locking cancels them. Each delivery replaces the cached projection
// wholesale, so there is no client-side merge logic to get wrong.
type Controller struct {
	uc   *UseCases
	sess *session.Session

	reportWF *ReportWorkflow
	chatWF   *ChatWorkflow

	mu       sync.Mutex
	unlocked bool
	view     types.View
	cancels  []interfaces.CancelFunc

	// Snapshot deliveries land here. Guarded separately from mu
	// because the first delivery happens synchronously inside Watch,
	// while SetView still holds mu.
	projMu   sync.RWMutex
	reports  []*report.Report
	messages []*chat.Message
}

func newController(uc *UseCases, sess *session.Session) *Controller {
	return &Controller{
		uc:       uc,
		sess:     sess,
		reportWF: NewReportWorkflow(uc.store, uc.enricher, sess),
		chatWF:   NewChatWorkflow(uc.store, sess),
		view:     types.ViewHome,
	}
}

func (c *Controller) Session() *session.Session {
	return c.sess
}

func (c *Controller) Reports() []*report.Report {
	c.projMu.RLock()
	defer c.projMu.RUnlock()
	out := make([]*report.Report, len(c.reports))
	copy(out, c.reports)
	return out
}

func (c *Controller) Messages() []*chat.Message {
	c.projMu.RLock()
	defer c.projMu.RUnlock()
	out := make([]*chat.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *Controller) Unlocked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unlocked
}

func (c *Controller) View() types.View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// Unlock compares the entered code with the shared secret. Advisory UI
// gating only; this is not an access control boundary.
func (c *Controller) Unlock(ctx context.Context, code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !strings.EqualFold(strings.TrimSpace(code), c.uc.accessCode) || c.uc.accessCode == "" {
		return goerr.New("invalid access code", goerr.T(errs.TagValidation))
	}

	c.unlocked = true
	logging.From(ctx).Debug("gate unlocked", "identity_id", c.sess.Identity())
	return nil
}

// Lock closes the gate, unmounts the current view and drops the cached
// projections.
func (c *Controller) Lock() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.unlocked = false
	c.view = types.ViewHome
	c.unmountLocked()
}

// unmountLocked must be called with c.mu held.
func (c *Controller) unmountLocked() {
	for _, cancel := range c.cancels {
		cancel()
	}
	c.cancels = nil

	c.projMu.Lock()
	c.reports = nil
	c.messages = nil
	c.projMu.Unlock()
}

// SetView switches the mounted view. The previous view's watches are
// cancelled first; leaking them would keep pushing snapshots into a
// view that no longer exists.
func (c *Controller) SetView(ctx context.Context, v types.View) error {
	if err := v.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.unlocked {
		return goerr.Wrap(errs.ErrGateLocked, "cannot change view")
	}
	if err := c.sess.Identity().Validate(); err != nil {
		return goerr.Wrap(errs.ErrIdentityNotReady, "cannot subscribe")
	}

	c.unmountLocked()
	c.view = v

	var cancels []interfaces.CancelFunc

	mountReports := v == types.ViewMember || v == types.ViewModerator
	mountChat := v == types.ViewMember

	if mountReports {
		cancel, err := c.uc.store.WatchReports(ctx, 0, func(recs []*report.Report) {
			c.projMu.Lock()
			c.reports = recs
			c.projMu.Unlock()
		})
		if err != nil {
			return goerr.Wrap(err, "failed to subscribe reports", goerr.T(errs.TagSubscription))
		}
		cancels = append(cancels, cancel)
	}

	if mountChat {
		cancel, err := c.uc.store.WatchMessages(ctx, c.uc.chatWindow, func(msgs []*chat.Message) {
			c.projMu.Lock()
			c.messages = msgs
			c.projMu.Unlock()
		})
		if err != nil {
			for _, cancel := range cancels {
				cancel()
			}
			return goerr.Wrap(err, "failed to subscribe chat", goerr.T(errs.TagSubscription))
		}
		cancels = append(cancels, cancel)
	}

	c.cancels = cancels
	return nil
}

// Close tears the controller down, releasing all live watches.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unmountLocked()
}

// SubmitReport runs the report workflow for this member.
func (c *Controller) SubmitReport(ctx context.Context, in report.Input) (*report.Feedback, error) {
	return c.reportWF.Submit(ctx, in)
}

func (c *Controller) SubmitState() SubmitState {
	return c.reportWF.State()
}

func (c *Controller) LastSubmitError() error {
	return c.reportWF.LastError()
}

// SendMessage runs the chat workflow for this member.
func (c *Controller) SendMessage(ctx context.Context, text string) error {
	return c.chatWF.Send(ctx, text)
}

// ActivityCount is derived, not stored: it rescans the loaded chat
// window for this member's messages.
func (c *Controller) ActivityCount() int {
	c.projMu.RLock()
	defer c.projMu.RUnlock()
	return rank.CountActivity(c.messages, c.sess.Identity())
}

// Rank derives the reputation tier from the activity count. Safe to
// call on every update.
func (c *Controller) Rank() rank.Tier {
	return rank.TierFor(c.ActivityCount())
}
