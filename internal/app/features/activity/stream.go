// internal/app/features/activity/stream.go
package activity

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/thesistrack/thesistrack/internal/app/features/respond"
	auditstore "github.com/thesistrack/thesistrack/internal/app/store/audits"
	"github.com/thesistrack/thesistrack/internal/domain/models"
	"go.uber.org/zap"
)

const streamLimit = 100

// ServeStream handles GET /groups/{groupID}/audits/stream.
//
// Server-sent events carrying the group's full current ledger (capped,
// newest-first) on every change, starting with an immediate snapshot.
func (h *Handler) ServeStream(w http.ResponseWriter, r *http.Request) {
	gid, ok := groupID(r)
	if !ok {
		respond.Error(w, h.Log, http.StatusBadRequest, "invalid group id")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respond.Error(w, h.Log, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	filter := parseFilter(r)
	filter.Limit = streamLimit

	feed, cancel, err := auditstore.New(h.DB).Subscribe(r.Context(), gid, filter)
	if err != nil {
		respond.ServerError(w, h.Log, "failed to subscribe to group activity", err)
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
			payload, err := json.Marshal(struct {
				Records []models.GroupAuditRecord `json:"records"`
			}{Records: snapshot})
			if err != nil {
				h.Log.Warn("failed to encode ledger snapshot", zap.Error(err))
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
