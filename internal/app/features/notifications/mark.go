// internal/app/features/notifications/mark.go
package notifications

import (
	"encoding/json"
	"net/http"

	"github.com/thesistrack/thesistrack/internal/app/features/respond"
	notifstore "github.com/thesistrack/thesistrack/internal/app/store/useraudits"
	"github.com/thesistrack/thesistrack/internal/app/system/classify"
	"github.com/thesistrack/thesistrack/internal/app/system/timeouts"
	"github.com/thesistrack/thesistrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// markRequest selects which records to flag. Ids take precedence; with
// All set (and no ids) every record of the user lacking the flag is
// marked. Marking is idempotent: already-set flags count as zero
// modified, not as an error.
type markRequest struct {
	IDs []string `json:"ids"`
	All bool     `json:"all"`
}

type markResponse struct {
	Modified int64 `json:"modified"`
}

// ServeMarkRead handles POST /users/{userID}/notifications/read.
func (h *Handler) ServeMarkRead(w http.ResponseWriter, r *http.Request) {
	h.mark(w, r, notifstore.FlagRead, "mark read")
}

// ServeMarkPageViewed handles POST /users/{userID}/notifications/page-viewed.
func (h *Handler) ServeMarkPageViewed(w http.ResponseWriter, r *http.Request) {
	h.mark(w, r, notifstore.FlagPageViewed, "mark page viewed")
}

// ServeMarkSnackbarShown handles POST /users/{userID}/notifications/snackbar-shown.
func (h *Handler) ServeMarkSnackbarShown(w http.ResponseWriter, r *http.Request) {
	h.mark(w, r, notifstore.FlagSnackbarShown, "mark snackbar shown")
}

func (h *Handler) mark(w http.ResponseWriter, r *http.Request, flag notifstore.Flag, op string) {
	userID, ok := viewerID(r)
	if !ok {
		respond.Error(w, h.Log, http.StatusBadRequest, "invalid user id")
		return
	}

	var req markRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, h.Log, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Batch(), h.Log, op)
	defer cancel()

	store := notifstore.New(h.DB)

	var modified int64
	var err error
	switch {
	case len(req.IDs) > 0:
		ids := make([]primitive.ObjectID, 0, len(req.IDs))
		for _, raw := range req.IDs {
			id, convErr := primitive.ObjectIDFromHex(raw)
			if convErr != nil {
				respond.Error(w, h.Log, http.StatusBadRequest, "invalid record id: "+raw)
				return
			}
			ids = append(ids, id)
		}
		modified, err = store.MarkMany(ctx, userID, ids, flag)
	case req.All:
		modified, err = store.MarkAll(ctx, userID, flag)
	default:
		respond.Error(w, h.Log, http.StatusBadRequest, "provide ids or all=true")
		return
	}
	if err != nil {
		respond.ServerError(w, h.Log, "failed to mark notifications", err)
		return
	}
	respond.JSON(w, h.Log, http.StatusOK, markResponse{Modified: modified})
}

type segmentRequest struct {
	Role    string `json:"role"`
	Segment string `json:"segment"`
}

// ServeMarkSegmentViewed handles POST /users/{userID}/notifications/segment-viewed.
//
// The client reports which page (display segment) the user opened, and
// the server flags page_viewed on exactly the records that classify into
// that segment for the viewer's role.
func (h *Handler) ServeMarkSegmentViewed(w http.ResponseWriter, r *http.Request) {
	userID, ok := viewerID(r)
	if !ok {
		respond.Error(w, h.Log, http.StatusBadRequest, "invalid user id")
		return
	}

	var req segmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, h.Log, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Segment == "" {
		respond.Error(w, h.Log, http.StatusBadRequest, "segment is required")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Batch(), h.Log, "mark segment viewed")
	defer cancel()

	modified, err := notifstore.New(h.DB).MarkSegment(ctx, userID, models.Role(req.Role), classify.Segment(req.Segment))
	if err != nil {
		respond.ServerError(w, h.Log, "failed to mark segment viewed", err)
		return
	}
	respond.JSON(w, h.Log, http.StatusOK, markResponse{Modified: modified})
}
