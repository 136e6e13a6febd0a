package interfaces

import (
	"context"

	"github.com/joshua-hq/warroom/pkg/domain/model/chat"
	"github.com/joshua-hq/warroom/pkg/domain/model/report"
	"github.com/joshua-hq/warroom/pkg/domain/types"
)

// CancelFunc releases a live watch. It must be called when the
// consuming view is torn down; a leaked watch keeps pushing snapshots
// into a view that no longer exists.
type CancelFunc func()

// DocumentStore exposes the two shared collections as append and
// subscribe operations. Watch callbacks always receive the full
// current ordered snapshot, never an incremental diff: the first
// delivery happens on subscribe, then once per remote write. Reports
// are ordered by creation time descending; messages are the most
// recent window in ascending order. IDs and creation timestamps are
// assigned by the store at write time, never by the caller.
type DocumentStore interface {
	AppendReport(ctx context.Context, r *report.Report) (types.ReportID, error)
	AppendMessage(ctx context.Context, m *chat.Message) (types.MessageID, error)

	ListReports(ctx context.Context, limit int) ([]*report.Report, error)
	ListMessages(ctx context.Context, limit int) ([]*chat.Message, error)

	WatchReports(ctx context.Context, limit int, fn func([]*report.Report)) (CancelFunc, error)
	WatchMessages(ctx context.Context, limit int, fn func([]*chat.Message)) (CancelFunc, error)

	Close() error
}

// Enricher produces structured AI feedback for a member reflection.
// Each call is independent and stateless; no retry, no caching.
type Enricher interface {
	Enrich(ctx context.Context, in report.Input) (*report.Feedback, error)
}
