package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/joshua-hq/warroom/pkg/domain/interfaces"
	"github.com/joshua-hq/warroom/pkg/domain/model/chat"
	"github.com/joshua-hq/warroom/pkg/domain/model/errs"
	"github.com/joshua-hq/warroom/pkg/domain/model/report"
	"github.com/joshua-hq/warroom/pkg/domain/types"
	"github.com/joshua-hq/warroom/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	collectionReports = "reports"
	collectionChat    = "chat"

	fieldCreatedAt = "created_at"
)

// Firestore backs the two shared collections with Cloud Firestore.
// Documents live under artifacts/{appID}/public/data/{collection} so
// several app namespaces can share one database. Creation timestamps
// come from the server via the serverTimestamp sentinel, which is what
// makes ordering immune to client clock skew.
type Firestore struct {
	db    *firestore.Client
	appID string
}

var _ interfaces.DocumentStore = &Firestore{}

func NewFirestore(ctx context.Context, projectID, databaseID, appID string) (*Firestore, error) {
	db, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client")
	}

	return &Firestore{
		db:    db,
		appID: appID,
	}, nil
}

func (r *Firestore) Close() error {
	return r.db.Close()
}

func (r *Firestore) collection(name string) *firestore.CollectionRef {
	return r.db.Collection("artifacts").Doc(r.appID).Collection("public").Doc("data").Collection(name)
}

func (r *Firestore) AppendReport(ctx context.Context, rec *report.Report) (types.ReportID, error) {
	if rec == nil {
		return types.EmptyReportID, goerr.New("report is nil", goerr.T(errs.TagWrite))
	}
	if rec.Feedback == nil {
		return types.EmptyReportID, goerr.Wrap(errs.ErrFeedbackIncomplete, "rejecting append")
	}
	if err := rec.Feedback.Validate(); err != nil {
		return types.EmptyReportID, goerr.Wrap(err, "rejecting append", goerr.T(errs.TagWrite))
	}

	doc := r.collection(collectionReports).NewDoc()
	if _, err := doc.Set(ctx, rec); err != nil {
		return types.EmptyReportID, goerr.Wrap(err, "failed to append report",
			goerr.T(errs.TagWrite), goerr.V("app_id", r.appID))
	}
	return types.ReportID(doc.ID), nil
}

func (r *Firestore) AppendMessage(ctx context.Context, msg *chat.Message) (types.MessageID, error) {
	if msg == nil {
		return types.EmptyMessageID, goerr.New("message is nil", goerr.T(errs.TagWrite))
	}
	if msg.Text == "" {
		return types.EmptyMessageID, goerr.New("message text is empty", goerr.T(errs.TagWrite))
	}

	doc := r.collection(collectionChat).NewDoc()
	if _, err := doc.Set(ctx, msg); err != nil {
		return types.EmptyMessageID, goerr.Wrap(err, "failed to append message",
			goerr.T(errs.TagWrite), goerr.V("app_id", r.appID))
	}
	return types.MessageID(doc.ID), nil
}

func (r *Firestore) reportQuery(limit int) firestore.Query {
	q := r.collection(collectionReports).OrderBy(fieldCreatedAt, firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}
	return q
}

// messageQuery selects the most recent window. Descending with a
// limit; callers reverse into ascending display order.
func (r *Firestore) messageQuery(limit int) firestore.Query {
	q := r.collection(collectionChat).OrderBy(fieldCreatedAt, firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}
	return q
}

func decodeReports(docs []*firestore.DocumentSnapshot) ([]*report.Report, error) {
	out := make([]*report.Report, 0, len(docs))
	for _, doc := range docs {
		var rec report.Report
		if err := doc.DataTo(&rec); err != nil {
			return nil, goerr.Wrap(err, "failed to convert data to report", goerr.V("doc_id", doc.Ref.ID))
		}
		rec.ID = types.ReportID(doc.Ref.ID)
		out = append(out, &rec)
	}
	return out, nil
}

func decodeMessages(docs []*firestore.DocumentSnapshot) ([]*chat.Message, error) {
	out := make([]*chat.Message, 0, len(docs))
	for _, doc := range docs {
		var msg chat.Message
		if err := doc.DataTo(&msg); err != nil {
			return nil, goerr.Wrap(err, "failed to convert data to message", goerr.V("doc_id", doc.Ref.ID))
		}
		msg.ID = types.MessageID(doc.Ref.ID)
		out = append(out, &msg)
	}
	return out, nil
}

func reverseMessages(msgs []*chat.Message) {
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
}

func collectDocs(ctx context.Context, q firestore.Query) ([]*firestore.DocumentSnapshot, error) {
	it := q.Documents(ctx)
	defer it.Stop()

	var docs []*firestore.DocumentSnapshot
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate documents")
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (r *Firestore) ListReports(ctx context.Context, limit int) ([]*report.Report, error) {
	docs, err := collectDocs(ctx, r.reportQuery(limit))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list reports")
	}
	return decodeReports(docs)
}

func (r *Firestore) ListMessages(ctx context.Context, limit int) ([]*chat.Message, error) {
	docs, err := collectDocs(ctx, r.messageQuery(limit))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list messages")
	}
	msgs, err := decodeMessages(docs)
	if err != nil {
		return nil, err
	}
	reverseMessages(msgs)
	return msgs, nil
}

// WatchReports attaches a Firestore snapshot listener. The listener
// delivers the full query result on attach and again after every
// remote write, which is exactly the full-replace contract the rest of
// the system assumes.
func (r *Firestore) WatchReports(ctx context.Context, limit int, fn func([]*report.Report)) (interfaces.CancelFunc, error) {
	watchCtx, cancel := context.WithCancel(ctx)
	snaps := r.reportQuery(limit).Snapshots(watchCtx)

	go func() {
		defer snaps.Stop()
		logger := logging.From(ctx)
		for {
			snap, err := snaps.Next()
			if err != nil {
				if status.Code(err) == codes.Canceled || watchCtx.Err() != nil {
					return
				}
				logger.Warn("report watch terminated", logging.ErrAttr(err))
				return
			}
			docs, err := snap.Documents.GetAll()
			if err != nil {
				logger.Warn("failed to read report snapshot", logging.ErrAttr(err))
				continue
			}
			recs, err := decodeReports(docs)
			if err != nil {
				logger.Warn("failed to decode report snapshot", logging.ErrAttr(err))
				continue
			}
			fn(recs)
		}
	}()

	return interfaces.CancelFunc(cancel), nil
}

func (r *Firestore) WatchMessages(ctx context.Context, limit int, fn func([]*chat.Message)) (interfaces.CancelFunc, error) {
	watchCtx, cancel := context.WithCancel(ctx)
	snaps := r.messageQuery(limit).Snapshots(watchCtx)

	go func() {
		defer snaps.Stop()
		logger := logging.From(ctx)
		for {
			snap, err := snaps.Next()
			if err != nil {
				if status.Code(err) == codes.Canceled || watchCtx.Err() != nil {
					return
				}
				logger.Warn("chat watch terminated", logging.ErrAttr(err))
				return
			}
			docs, err := snap.Documents.GetAll()
			if err != nil {
				logger.Warn("failed to read chat snapshot", logging.ErrAttr(err))
				continue
			}
			msgs, err := decodeMessages(docs)
			if err != nil {
				logger.Warn("failed to decode chat snapshot", logging.ErrAttr(err))
				continue
			}
			reverseMessages(msgs)
			fn(msgs)
		}
	}()

	return interfaces.CancelFunc(cancel), nil
}
