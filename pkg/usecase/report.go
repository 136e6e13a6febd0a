package usecase

import (
	"context"
	"sync"

	"github.com/joshua-hq/warroom/pkg/domain/interfaces"
	"github.com/joshua-hq/warroom/pkg/domain/model/errs"
	"github.com/joshua-hq/warroom/pkg/domain/model/lang"
	"github.com/joshua-hq/warroom/pkg/domain/model/report"
	"github.com/joshua-hq/warroom/pkg/domain/model/session"
	"github.com/joshua-hq/warroom/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// SubmitState is the report workflow state machine. Re-enterable:
// Succeeded and Failed both return to Submitting on the next call.
type SubmitState int

const (
	StateIdle SubmitState = iota
	StateSubmitting
	StateSucceeded
	StateFailed
)

var submitStateNames = map[SubmitState]string{
	StateIdle:       "idle",
	StateSubmitting: "submitting",
	StateSucceeded:  "succeeded",
	StateFailed:     "failed",
}

func (s SubmitState) String() string {
	return submitStateNames[s]
}

// ReportWorkflow orchestrates validate → enrich → append. A report is
// only ever appended with its feedback already attached; a failure at
// any step writes nothing.
type ReportWorkflow struct {
	mu      sync.Mutex
	state   SubmitState
	lastErr error

	store    interfaces.DocumentStore
	enricher interfaces.Enricher
	sess     *session.Session
}

func NewReportWorkflow(store interfaces.DocumentStore, enricher interfaces.Enricher, sess *session.Session) *ReportWorkflow {
	return &ReportWorkflow{
		state:    StateIdle,
		store:    store,
		enricher: enricher,
		sess:     sess,
	}
}

func (w *ReportWorkflow) State() SubmitState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// LastError returns the failure of the most recent submission, or nil.
func (w *ReportWorkflow) LastError() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr
}

// Submit runs one submission to completion. It returns the enrichment
// result directly so the UI can display it immediately instead of
// waiting for the eventually-consistent subscription refresh.
func (w *ReportWorkflow) Submit(ctx context.Context, in report.Input) (*report.Feedback, error) {
	in.Trim()

	// Validation failures never enter the state machine.
	if err := in.Validate(); err != nil {
		return nil, err
	}

	w.mu.Lock()
	if w.state == StateSubmitting {
		w.mu.Unlock()
		return nil, goerr.Wrap(errs.ErrSubmitInFlight, "rejecting concurrent submit")
	}
	w.state = StateSubmitting
	w.lastErr = nil
	w.mu.Unlock()

	authorID := w.sess.Identity()
	if err := authorID.Validate(); err != nil {
		return nil, w.fail(ctx, goerr.Wrap(errs.ErrIdentityNotReady, "cannot submit report"))
	}

	ctx = lang.With(ctx, w.sess.Locale())

	fb, err := w.enricher.Enrich(ctx, in)
	if err != nil {
		return nil, w.fail(ctx, err)
	}

	rec := report.New(authorID, in, fb)
	id, err := w.store.AppendReport(ctx, rec)
	if err != nil {
		return nil, w.fail(ctx, err)
	}

	// The display name is reused for later submissions and chat.
	w.sess.SetDisplayName(in.AuthorName)

	w.mu.Lock()
	w.state = StateSucceeded
	w.mu.Unlock()

	logging.From(ctx).Info("report submitted", "report_id", id, "author", in.AuthorName)
	return fb, nil
}

// fail records the failure and converts the workflow to Failed. The
// error is reported here, at the workflow boundary, and never
// propagates beyond the caller's display logic.
func (w *ReportWorkflow) fail(ctx context.Context, err error) error {
	errs.Handle(ctx, err)

	w.mu.Lock()
	w.state = StateFailed
	w.lastErr = err
	w.mu.Unlock()
	return err
}
