package watch

import (
	"context"
	"testing"

	"github.com/thesistrack/thesistrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// feedHarness replays scripted snapshots through a watcher and records
// announcements and persisted shown flags, standing in for the store.
type feedHarness struct {
	shown     map[primitive.ObjectID]bool
	announced []primitive.ObjectID
}

func newFeedHarness() *feedHarness {
	return &feedHarness{shown: make(map[primitive.ObjectID]bool)}
}

func (h *feedHarness) run(t *testing.T, snapshots [][]models.UserNotificationRecord) {
	t.Helper()

	ch := make(chan []models.UserNotificationRecord, len(snapshots))
	for _, s := range snapshots {
		// apply persisted state, as the store would on re-query
		out := make([]models.UserNotificationRecord, len(s))
		copy(out, s)
		for i := range out {
			if h.shown[out[i].ID] {
				out[i].SnackbarShown = true
			}
		}
		ch <- out
	}
	close(ch)

	w := NewSnackbarWatcher(
		func(ctx context.Context, userID primitive.ObjectID) (<-chan []models.UserNotificationRecord, func(), error) {
			return ch, func() {}, nil
		},
		func(ctx context.Context, userID, recordID primitive.ObjectID) error {
			h.shown[recordID] = true
			return nil
		},
		func(rec models.UserNotificationRecord) {
			h.announced = append(h.announced, rec.ID)
		},
		zap.NewNop(),
	)
	if err := w.Run(context.Background(), primitive.NewObjectID()); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func snackbarRecord(id primitive.ObjectID) models.UserNotificationRecord {
	return models.UserNotificationRecord{ID: id, ShowSnackbar: true}
}

func TestAnnouncedOncePerLifecycle(t *testing.T) {
	id := primitive.NewObjectID()
	h := newFeedHarness()

	// the same record arrives in every full snapshot
	h.run(t, [][]models.UserNotificationRecord{
		{snackbarRecord(id)},
		{snackbarRecord(id)},
		{snackbarRecord(id)},
	})

	if len(h.announced) != 1 {
		t.Fatalf("announced %d times, want exactly 1", len(h.announced))
	}
	if !h.shown[id] {
		t.Error("shown flag was not persisted")
	}
}

func TestShownRecordNeverReannouncedAcrossLifecycles(t *testing.T) {
	id := primitive.NewObjectID()
	h := newFeedHarness()

	// first session announces and persists
	h.run(t, [][]models.UserNotificationRecord{{snackbarRecord(id)}})
	if len(h.announced) != 1 {
		t.Fatalf("first lifecycle announced %d times, want 1", len(h.announced))
	}

	// simulated reload: fresh watcher, fresh in-memory set, but the
	// persisted flag survives
	h.run(t, [][]models.UserNotificationRecord{{snackbarRecord(id)}})
	if len(h.announced) != 1 {
		t.Fatalf("record re-announced after reload; total announcements %d", len(h.announced))
	}
}

func TestNonSnackbarRecordsIgnored(t *testing.T) {
	h := newFeedHarness()
	h.run(t, [][]models.UserNotificationRecord{{
		{ID: primitive.NewObjectID(), ShowSnackbar: false},
		{ID: primitive.NewObjectID(), ShowSnackbar: true, SnackbarShown: true},
	}})

	if len(h.announced) != 0 {
		t.Fatalf("announced %d records, want 0", len(h.announced))
	}
}

func TestFreshRecordInLaterSnapshotAnnounced(t *testing.T) {
	first := primitive.NewObjectID()
	second := primitive.NewObjectID()
	h := newFeedHarness()

	h.run(t, [][]models.UserNotificationRecord{
		{snackbarRecord(first)},
		{snackbarRecord(second), snackbarRecord(first)},
	})

	if len(h.announced) != 2 {
		t.Fatalf("announced %d records, want 2", len(h.announced))
	}
}
