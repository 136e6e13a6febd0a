package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/joshua-hq/warroom/pkg/domain/interfaces"
	"github.com/joshua-hq/warroom/pkg/domain/model/chat"
	"github.com/joshua-hq/warroom/pkg/domain/model/errs"
	"github.com/joshua-hq/warroom/pkg/domain/model/report"
	"github.com/joshua-hq/warroom/pkg/domain/types"
	"github.com/joshua-hq/warroom/pkg/utils/clock"
	"github.com/m-mizutani/goerr/v2"
)

// Memory is the in-memory twin of the Firestore store. It reproduces
// the same contract: store-assigned IDs, store-assigned monotonic
// timestamps, and full-snapshot delivery to every watcher on each
// append. Used in tests and by the dev gateway.
type Memory struct {
	mu sync.RWMutex

	reports  map[types.ReportID]*report.Report
	messages map[types.MessageID]*chat.Message

	// Write timestamps are serialized here so ordering never depends
	// on the caller's clock.
	lastTS time.Time

	nextWatchID     int
	reportWatchers  map[int]*watcher[*report.Report]
	messageWatchers map[int]*watcher[*chat.Message]

	// Call counter for tracking method invocations in tests
	callCounts map[string]int
	callMu     sync.RWMutex
}

type watcher[T any] struct {
	limit int
	fn    func([]T)
}

var _ interfaces.DocumentStore = &Memory{}

func NewMemory() *Memory {
	return &Memory{
		reports:         make(map[types.ReportID]*report.Report),
		messages:        make(map[types.MessageID]*chat.Message),
		reportWatchers:  make(map[int]*watcher[*report.Report]),
		messageWatchers: make(map[int]*watcher[*chat.Message]),
		callCounts:      make(map[string]int),
	}
}

func (r *Memory) incrementCallCount(methodName string) {
	r.callMu.Lock()
	defer r.callMu.Unlock()
	r.callCounts[methodName]++
}

// GetCallCount returns the number of times a method has been called
func (r *Memory) GetCallCount(methodName string) int {
	r.callMu.RLock()
	defer r.callMu.RUnlock()
	return r.callCounts[methodName]
}

// ResetCallCounts clears all call counters
func (r *Memory) ResetCallCounts() {
	r.callMu.Lock()
	defer r.callMu.Unlock()
	r.callCounts = make(map[string]int)
}

// assignTimestamp must be called with r.mu held.
func (r *Memory) assignTimestamp(ctx context.Context) time.Time {
	ts := clock.Now(ctx)
	if !ts.After(r.lastTS) {
		ts = r.lastTS.Add(time.Microsecond)
	}
	r.lastTS = ts
	return ts
}

func (r *Memory) AppendReport(ctx context.Context, rec *report.Report) (types.ReportID, error) {
	r.incrementCallCount("AppendReport")

	if rec == nil {
		return types.EmptyReportID, goerr.New("report is nil", goerr.T(errs.TagWrite))
	}
	if rec.Feedback == nil {
		return types.EmptyReportID, goerr.Wrap(errs.ErrFeedbackIncomplete, "rejecting append")
	}
	if err := rec.Feedback.Validate(); err != nil {
		return types.EmptyReportID, goerr.Wrap(err, "rejecting append", goerr.T(errs.TagWrite))
	}

	r.mu.Lock()
	stored := *rec
	stored.ID = types.NewReportID()
	stored.CreatedAt = r.assignTimestamp(ctx)
	r.reports[stored.ID] = &stored
	r.mu.Unlock()

	r.notifyReportWatchers()
	return stored.ID, nil
}

func (r *Memory) AppendMessage(ctx context.Context, msg *chat.Message) (types.MessageID, error) {
	r.incrementCallCount("AppendMessage")

	if msg == nil {
		return types.EmptyMessageID, goerr.New("message is nil", goerr.T(errs.TagWrite))
	}
	if msg.Text == "" {
		return types.EmptyMessageID, goerr.New("message text is empty", goerr.T(errs.TagWrite))
	}

	r.mu.Lock()
	stored := *msg
	stored.ID = types.NewMessageID()
	stored.CreatedAt = r.assignTimestamp(ctx)
	r.messages[stored.ID] = &stored
	r.mu.Unlock()

	r.notifyMessageWatchers()
	return stored.ID, nil
}

func (r *Memory) ListReports(ctx context.Context, limit int) ([]*report.Report, error) {
	r.incrementCallCount("ListReports")
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.reportSnapshot(limit), nil
}

func (r *Memory) ListMessages(ctx context.Context, limit int) ([]*chat.Message, error) {
	r.incrementCallCount("ListMessages")
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.messageSnapshot(limit), nil
}

// reportSnapshot must be called with r.mu held. Newest first.
func (r *Memory) reportSnapshot(limit int) []*report.Report {
	out := make([]*report.Report, 0, len(r.reports))
	for _, rec := range r.reports {
		c := *rec
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// messageSnapshot must be called with r.mu held. The most recent
// window, oldest first.
func (r *Memory) messageSnapshot(limit int) []*chat.Message {
	out := make([]*chat.Message, 0, len(r.messages))
	for _, msg := range r.messages {
		c := *msg
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

func (r *Memory) WatchReports(ctx context.Context, limit int, fn func([]*report.Report)) (interfaces.CancelFunc, error) {
	r.incrementCallCount("WatchReports")

	r.mu.Lock()
	id := r.nextWatchID
	r.nextWatchID++
	r.reportWatchers[id] = &watcher[*report.Report]{limit: limit, fn: fn}
	initial := r.reportSnapshot(limit)
	r.mu.Unlock()

	// First delivery happens on subscribe, per the snapshot contract.
	fn(initial)

	return func() {
		r.mu.Lock()
		delete(r.reportWatchers, id)
		r.mu.Unlock()
	}, nil
}

func (r *Memory) WatchMessages(ctx context.Context, limit int, fn func([]*chat.Message)) (interfaces.CancelFunc, error) {
	r.incrementCallCount("WatchMessages")

	r.mu.Lock()
	id := r.nextWatchID
	r.nextWatchID++
	r.messageWatchers[id] = &watcher[*chat.Message]{limit: limit, fn: fn}
	initial := r.messageSnapshot(limit)
	r.mu.Unlock()

	fn(initial)

	return func() {
		r.mu.Lock()
		delete(r.messageWatchers, id)
		r.mu.Unlock()
	}, nil
}

func (r *Memory) notifyReportWatchers() {
	type delivery struct {
		fn   func([]*report.Report)
		snap []*report.Report
	}
	r.mu.RLock()
	deliveries := make([]delivery, 0, len(r.reportWatchers))
	for _, w := range r.reportWatchers {
		deliveries = append(deliveries, delivery{fn: w.fn, snap: r.reportSnapshot(w.limit)})
	}
	r.mu.RUnlock()

	// Callbacks run outside the lock so a watcher may call back into
	// the store.
	for _, d := range deliveries {
		d.fn(d.snap)
	}
}

func (r *Memory) notifyMessageWatchers() {
	type delivery struct {
		fn   func([]*chat.Message)
		snap []*chat.Message
	}
	r.mu.RLock()
	deliveries := make([]delivery, 0, len(r.messageWatchers))
	for _, w := range r.messageWatchers {
		deliveries = append(deliveries, delivery{fn: w.fn, snap: r.messageSnapshot(w.limit)})
	}
	r.mu.RUnlock()

	for _, d := range deliveries {
		d.fn(d.snap)
	}
}

func (r *Memory) Close() error {
	return nil
}
