// internal/app/features/notifications/snackbars.go
package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/thesistrack/thesistrack/internal/app/features/respond"
	notifstore "github.com/thesistrack/thesistrack/internal/app/store/useraudits"
	"github.com/thesistrack/thesistrack/internal/app/system/classify"
	"github.com/thesistrack/thesistrack/internal/app/system/watch"
	"github.com/thesistrack/thesistrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type snackbarEvent struct {
	Record   models.UserNotificationRecord `json:"record"`
	Severity classify.Severity             `json:"severity"`
}

// ServeSnackbars handles GET /users/{userID}/notifications/snackbars.
//
// Server-sent events carrying one event per snackbar to announce. The
// server persists snackbar_shown as it announces, so a record is
// announced at most once per connection and never again on reconnect.
func (h *Handler) ServeSnackbars(w http.ResponseWriter, r *http.Request) {
	userID, ok := viewerID(r)
	if !ok {
		respond.Error(w, h.Log, http.StatusBadRequest, "invalid user id")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respond.Error(w, h.Log, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	store := notifstore.New(h.DB)

	announce := func(rec models.UserNotificationRecord) {
		payload, err := json.Marshal(snackbarEvent{
			Record:   rec,
			Severity: classify.SeverityFor(rec.Action),
		})
		if err != nil {
			h.Log.Warn("failed to encode snackbar event", zap.Error(err))
			return
		}
		fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()
	}

	watcher := watch.NewSnackbarWatcher(
		func(ctx context.Context, userID primitive.ObjectID) (<-chan []models.UserNotificationRecord, func(), error) {
			return store.Subscribe(ctx, userID, defaultListLimit)
		},
		func(ctx context.Context, userID, recordID primitive.ObjectID) error {
			_, err := store.Mark(ctx, userID, recordID, notifstore.FlagSnackbarShown)
			return err
		},
		announce,
		h.Log,
	)

	if err := watcher.Run(r.Context(), userID); err != nil && !errors.Is(err, context.Canceled) {
		h.Log.Warn("snackbar watcher ended with error", zap.Error(err))
	}
}
