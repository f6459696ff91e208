// internal/app/features/notifications/list.go
package notifications

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/thesistrack/thesistrack/internal/app/features/respond"
	notifstore "github.com/thesistrack/thesistrack/internal/app/store/useraudits"
	"github.com/thesistrack/thesistrack/internal/app/system/auditctx"
	"github.com/thesistrack/thesistrack/internal/app/system/timeouts"
	"github.com/thesistrack/thesistrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const defaultListLimit = 100

func viewerID(r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userID"))
	return id, err == nil
}

// ServeList handles GET /users/{userID}/notifications.
//
// With no query parameters it returns the user's notifications across
// all addressing contexts. Passing level (+ department/course as the
// level requires) narrows the listing to one context, mirroring how the
// records were addressed at fan-out time.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	userID, ok := viewerID(r)
	if !ok {
		respond.Error(w, h.Log, http.StatusBadRequest, "invalid user id")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "notification list")
	defer cancel()

	limit := int64(defaultListLimit)
	if n, err := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64); err == nil && n > 0 {
		limit = n
	}

	store := notifstore.New(h.DB)

	level := models.Level(r.URL.Query().Get("level"))
	if level == "" {
		records, err := store.ListAllForUser(ctx, userID, limit)
		if err != nil {
			respond.ServerError(w, h.Log, "failed to list notifications", err)
			return
		}
		respond.JSON(w, h.Log, http.StatusOK, listResponse{Records: records})
		return
	}

	year := r.URL.Query().Get("year")
	if year == "" {
		year = h.Builder.DefaultYear()
	}
	uc := auditctx.UserContext{
		UserID:     userID,
		Level:      level,
		Year:       year,
		Department: r.URL.Query().Get("department"),
		Course:     r.URL.Query().Get("course"),
	}
	if err := uc.Validate(); err != nil {
		respond.Error(w, h.Log, http.StatusBadRequest, err.Error())
		return
	}

	records, err := store.ListForUser(ctx, uc, limit)
	if err != nil {
		respond.ServerError(w, h.Log, "failed to list notifications", err)
		return
	}
	respond.JSON(w, h.Log, http.StatusOK, listResponse{Records: records})
}

type listResponse struct {
	Records []models.UserNotificationRecord `json:"records"`
}

// ServeUnreadCount handles GET /users/{userID}/notifications/unread-count.
func (h *Handler) ServeUnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := viewerID(r)
	if !ok {
		respond.Error(w, h.Log, http.StatusBadRequest, "invalid user id")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "unread count")
	defer cancel()

	count, err := notifstore.New(h.DB).UnreadCount(ctx, userID)
	if err != nil {
		respond.ServerError(w, h.Log, "failed to count unread notifications", err)
		return
	}
	respond.JSON(w, h.Log, http.StatusOK, map[string]int64{"unread": count})
}
