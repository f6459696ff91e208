// internal/app/system/watch/snackbar.go

// Package watch consumes live notification snapshots and decides which
// records get announced as snackbars. Each snapshot carries the full
// current list, so the watcher diffs against an in-memory set of ids it
// has already announced in this lifecycle; the persisted snackbar_shown
// flag covers records announced in earlier sessions.
package watch

import (
	"context"

	"github.com/thesistrack/thesistrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// SubscribeFunc opens a live snapshot feed for a user's notifications.
type SubscribeFunc func(ctx context.Context, userID primitive.ObjectID) (<-chan []models.UserNotificationRecord, func(), error)

// MarkShownFunc persists that a record's snackbar was shown.
type MarkShownFunc func(ctx context.Context, userID, recordID primitive.ObjectID) error

// AnnounceFunc delivers one snackbar to the user's client.
type AnnounceFunc func(rec models.UserNotificationRecord)

// SnackbarWatcher announces each snackbar-worthy record exactly once per
// lifecycle, and persists the shown flag so reloads and other sessions
// do not re-announce it.
type SnackbarWatcher struct {
	subscribe SubscribeFunc
	markShown MarkShownFunc
	announce  AnnounceFunc
	log       *zap.Logger
}

func NewSnackbarWatcher(subscribe SubscribeFunc, markShown MarkShownFunc, announce AnnounceFunc, log *zap.Logger) *SnackbarWatcher {
	return &SnackbarWatcher{subscribe: subscribe, markShown: markShown, announce: announce, log: log}
}

// Run watches a user's notifications until ctx is done or the feed
// closes. The announced set lives only for this call: a new Run (a
// reconnect) starts empty and relies on the persisted flag to avoid
// re-announcing old records.
func (w *SnackbarWatcher) Run(ctx context.Context, userID primitive.ObjectID) error {
	feed, cancel, err := w.subscribe(ctx, userID)
	if err != nil {
		return err
	}
	defer cancel()

	announced := make(map[primitive.ObjectID]struct{})
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case snapshot, ok := <-feed:
			if !ok {
				return nil
			}
			w.handleSnapshot(ctx, userID, snapshot, announced)
		}
	}
}

func (w *SnackbarWatcher) handleSnapshot(ctx context.Context, userID primitive.ObjectID, snapshot []models.UserNotificationRecord, announced map[primitive.ObjectID]struct{}) {
	for _, rec := range snapshot {
		if !rec.ShowSnackbar || rec.SnackbarShown {
			continue
		}
		if _, done := announced[rec.ID]; done {
			continue
		}
		announced[rec.ID] = struct{}{}
		w.announce(rec)
		if err := w.markShown(ctx, userID, rec.ID); err != nil {
			// The in-memory set still suppresses repeats within this
			// lifecycle; the record may be re-announced after reload.
			w.log.Warn("failed to persist snackbar shown",
				zap.String("record_id", rec.ID.Hex()),
				zap.Error(err))
		}
	}
}
