package repository_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/joshua-hq/warroom/pkg/domain/interfaces"
	"github.com/joshua-hq/warroom/pkg/domain/model/chat"
	"github.com/joshua-hq/warroom/pkg/domain/model/report"
	"github.com/joshua-hq/warroom/pkg/domain/types"
	"github.com/joshua-hq/warroom/pkg/repository"
	"github.com/joshua-hq/warroom/pkg/utils/clock"
	"github.com/m-mizutani/gt"
)

func clockWith(ctx context.Context, t time.Time) context.Context {
	return clock.With(ctx, func() time.Time { return t })
}

func testFeedback() *report.Feedback {
	return &report.Feedback{
		Encouragement: "Stand firm",
		Prayer:        "Lord, strengthen Sam",
	}
}

func testInput() report.Input {
	return report.Input{
		AuthorName: "Sam",
		VerseRef:   "John 3:16",
		Revelation: "Grace abounds",
	}
}

// runWithStores runs the suite against the in-memory store always,
// and against Firestore when TEST_FIRESTORE_PROJECT_ID is set.
func runWithStores(t *testing.T, testFn func(t *testing.T, store interfaces.DocumentStore)) {
	t.Run("memory", func(t *testing.T) {
		testFn(t, repository.NewMemory())
	})

	t.Run("firestore", func(t *testing.T) {
		projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
		if projectID == "" {
			t.Skip("TEST_FIRESTORE_PROJECT_ID is not set")
		}
		databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")
		if databaseID == "" {
			databaseID = "(default)"
		}

		ctx := context.Background()
		store, err := repository.NewFirestore(ctx, projectID, databaseID, "warroom-test-"+time.Now().Format("20060102-150405.000000"))
		gt.NoError(t, err)
		t.Cleanup(func() { _ = store.Close() })

		testFn(t, store)
	})
}

func TestAppendReport(t *testing.T) {
	runWithStores(t, func(t *testing.T, store interfaces.DocumentStore) {
		ctx := context.Background()
		authorID := types.NewIdentityID()

		t.Run("assigns id and timestamp", func(t *testing.T) {
			rec := report.New(authorID, testInput(), testFeedback())
			id, err := store.AppendReport(ctx, rec)
			gt.NoError(t, err)
			gt.V(t, id).NotEqual(types.EmptyReportID)

			reports, err := store.ListReports(ctx, 0)
			gt.NoError(t, err)
			gt.V(t, len(reports)).NotEqual(0)
			gt.Equal(t, reports[0].AuthorName, "Sam")
			gt.Equal(t, reports[0].VerseRef, "John 3:16")
			gt.V(t, reports[0].Feedback).NotNil()
			gt.False(t, reports[0].CreatedAt.IsZero())
		})

		t.Run("rejects report without feedback", func(t *testing.T) {
			rec := &report.Report{
				AuthorID:   authorID,
				AuthorName: "Sam",
				VerseRef:   "John 3:16",
				Revelation: "Grace abounds",
			}
			_, err := store.AppendReport(ctx, rec)
			gt.Error(t, err)
		})

		t.Run("rejects partial feedback", func(t *testing.T) {
			rec := report.New(authorID, testInput(), &report.Feedback{Encouragement: "only half"})
			_, err := store.AppendReport(ctx, rec)
			gt.Error(t, err)
		})
	})
}

func TestReportOrdering(t *testing.T) {
	runWithStores(t, func(t *testing.T, store interfaces.DocumentStore) {
		ctx := context.Background()
		authorID := types.NewIdentityID()

		for _, verse := range []string{"Gen 1:1", "Ps 23:1", "John 3:16"} {
			in := testInput()
			in.VerseRef = verse
			_, err := store.AppendReport(ctx, report.New(authorID, in, testFeedback()))
			gt.NoError(t, err)
		}

		reports, err := store.ListReports(ctx, 0)
		gt.NoError(t, err)
		gt.A(t, reports).Length(3)

		// Newest first
		gt.Equal(t, reports[0].VerseRef, "John 3:16")
		gt.Equal(t, reports[2].VerseRef, "Gen 1:1")
		gt.True(t, !reports[0].CreatedAt.Before(reports[1].CreatedAt))
		gt.True(t, !reports[1].CreatedAt.Before(reports[2].CreatedAt))
	})
}

func TestMessageWindow(t *testing.T) {
	runWithStores(t, func(t *testing.T, store interfaces.DocumentStore) {
		ctx := context.Background()
		authorID := types.NewIdentityID()

		for _, text := range []string{"one", "two", "three", "four", "five"} {
			msg := chat.New(authorID, "Sam", text)
			gt.V(t, msg).NotNil()
			_, err := store.AppendMessage(ctx, msg)
			gt.NoError(t, err)
		}

		t.Run("window keeps the most recent, oldest first", func(t *testing.T) {
			msgs, err := store.ListMessages(ctx, 3)
			gt.NoError(t, err)
			gt.A(t, msgs).Length(3)
			gt.Equal(t, msgs[0].Text, "three")
			gt.Equal(t, msgs[1].Text, "four")
			gt.Equal(t, msgs[2].Text, "five")
		})

		t.Run("unbounded list is ascending", func(t *testing.T) {
			msgs, err := store.ListMessages(ctx, 0)
			gt.NoError(t, err)
			gt.A(t, msgs).Length(5)
			gt.Equal(t, msgs[0].Text, "one")
			gt.Equal(t, msgs[4].Text, "five")
		})
	})
}

func awaitReports(t *testing.T, ch <-chan []*report.Report, want int) {
	t.Helper()
	deadline := time.After(15 * time.Second)
	for {
		select {
		case recs := <-ch:
			if len(recs) == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for snapshot of %d reports", want)
		}
	}
}

func awaitMessages(t *testing.T, ch <-chan []*chat.Message, want int) {
	t.Helper()
	deadline := time.After(15 * time.Second)
	for {
		select {
		case msgs := <-ch:
			if len(msgs) == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for snapshot of %d messages", want)
		}
	}
}

// Watches must deliver the full snapshot on subscribe and again after
// each append, on every store implementation.
func TestWatchDelivery(t *testing.T) {
	runWithStores(t, func(t *testing.T, store interfaces.DocumentStore) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		authorID := types.NewIdentityID()

		reportCh := make(chan []*report.Report, 16)
		cancelReports, err := store.WatchReports(ctx, 0, func(recs []*report.Report) {
			reportCh <- recs
		})
		gt.NoError(t, err)
		defer cancelReports()

		msgCh := make(chan []*chat.Message, 16)
		cancelMsgs, err := store.WatchMessages(ctx, 10, func(msgs []*chat.Message) {
			msgCh <- msgs
		})
		gt.NoError(t, err)
		defer cancelMsgs()

		awaitReports(t, reportCh, 0)
		awaitMessages(t, msgCh, 0)

		_, err = store.AppendReport(ctx, report.New(authorID, testInput(), testFeedback()))
		gt.NoError(t, err)
		awaitReports(t, reportCh, 1)

		_, err = store.AppendMessage(ctx, chat.New(authorID, "Sam", "hello"))
		gt.NoError(t, err)
		awaitMessages(t, msgCh, 1)
	})
}

func TestMemoryWatch(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemory()
	authorID := types.NewIdentityID()

	t.Run("reports watcher gets initial snapshot then every write", func(t *testing.T) {
		var snapshots [][]*report.Report
		cancel, err := store.WatchReports(ctx, 0, func(recs []*report.Report) {
			snapshots = append(snapshots, recs)
		})
		gt.NoError(t, err)
		gt.A(t, snapshots).Length(1) // delivered on subscribe
		gt.A(t, snapshots[0]).Length(0)

		_, err = store.AppendReport(ctx, report.New(authorID, testInput(), testFeedback()))
		gt.NoError(t, err)
		gt.A(t, snapshots).Length(2)
		gt.A(t, snapshots[1]).Length(1)

		cancel()
		_, err = store.AppendReport(ctx, report.New(authorID, testInput(), testFeedback()))
		gt.NoError(t, err)
		gt.A(t, snapshots).Length(2) // no delivery after cancel
	})

	t.Run("message watcher respects window limit", func(t *testing.T) {
		var last []*chat.Message
		cancel, err := store.WatchMessages(ctx, 2, func(msgs []*chat.Message) {
			last = msgs
		})
		gt.NoError(t, err)
		defer cancel()

		for _, text := range []string{"a", "b", "c"} {
			_, err := store.AppendMessage(ctx, chat.New(authorID, "Sam", text))
			gt.NoError(t, err)
		}
		gt.A(t, last).Length(2)
		gt.Equal(t, last[0].Text, "b")
		gt.Equal(t, last[1].Text, "c")
	})
}

func TestMemoryTimestampMonotonic(t *testing.T) {
	// A frozen clock must still produce strictly increasing timestamps.
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	store := repository.NewMemory()
	authorID := types.NewIdentityID()

	ctxFrozen := clockWith(ctx, now)
	for i := 0; i < 3; i++ {
		_, err := store.AppendMessage(ctxFrozen, chat.New(authorID, "Sam", "tick"))
		gt.NoError(t, err)
	}

	msgs, err := store.ListMessages(ctx, 0)
	gt.NoError(t, err)
	gt.A(t, msgs).Length(3)
	gt.True(t, msgs[0].CreatedAt.Before(msgs[1].CreatedAt))
	gt.True(t, msgs[1].CreatedAt.Before(msgs[2].CreatedAt))
}
