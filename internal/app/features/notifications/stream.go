// internal/app/features/notifications/stream.go
package notifications

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/thesistrack/thesistrack/internal/app/features/respond"
	notifstore "github.com/thesistrack/thesistrack/internal/app/store/useraudits"
	"go.uber.org/zap"
)

// ServeStream handles GET /users/{userID}/notifications/stream.
//
// Server-sent events: each event carries the user's entire current
// notification list, not a diff, so a client can always render straight
// from the latest event. The subscription lives until the client
// disconnects.
func (h *Handler) ServeStream(w http.ResponseWriter, r *http.Request) {
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

	limit := int64(defaultListLimit)
	if n, err := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64); err == nil && n > 0 {
		limit = n
	}

	feed, cancel, err := notifstore.New(h.DB).Subscribe(r.Context(), userID, limit)
	if err != nil {
		respond.ServerError(w, h.Log, "failed to subscribe to notifications", err)
		return
	}
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case snapshot, open := <-feed:
			if !open {
				return
			}
			payload, err := json.Marshal(listResponse{Records: snapshot})
			if err != nil {
				h.Log.Warn("failed to encode notification snapshot", zap.Error(err))
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
