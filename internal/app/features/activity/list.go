// internal/app/features/activity/list.go
package activity

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/thesistrack/thesistrack/internal/app/features/respond"
	auditstore "github.com/thesistrack/thesistrack/internal/app/store/audits"
	profilestore "github.com/thesistrack/thesistrack/internal/app/store/profiles"
	"github.com/thesistrack/thesistrack/internal/app/system/timeouts"
	"github.com/thesistrack/thesistrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const pageSize = 50

type entry struct {
	models.GroupAuditRecord
	PerformedByName string `json:"performed_by_name,omitempty"`
}

type listResponse struct {
	Records    []entry `json:"records"`
	Page       int     `json:"page"`
	TotalPages int     `json:"total_pages"`
	Total      int64   `json:"total"`
}

func groupID(r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "groupID"))
	return id, err == nil
}

// parseFilter reads the shared ledger filter query parameters.
func parseFilter(r *http.Request) auditstore.QueryFilter {
	q := r.URL.Query()
	filter := auditstore.QueryFilter{
		Category: models.Category(strings.TrimSpace(q.Get("category"))),
		Action:   models.Action(strings.TrimSpace(q.Get("action"))),
	}
	if t, err := time.Parse("2006-01-02", q.Get("start_date")); err == nil {
		filter.After = t
	}
	if t, err := time.Parse("2006-01-02", q.Get("end_date")); err == nil {
		// End of day
		filter.Before = t.Add(24*time.Hour - time.Second)
	}
	return filter
}

// ServeList handles GET /groups/{groupID}/audits - the group's ledger,
// newest-first, with actor names resolved in one batched profile lookup.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	gid, ok := groupID(r)
	if !ok {
		respond.Error(w, h.Log, http.StatusBadRequest, "invalid group id")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "group activity list")
	defer cancel()

	page := 1
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}

	filter := parseFilter(r)
	filter.Limit = pageSize
	filter.Skip = int64((page - 1) * pageSize)

	store := auditstore.New(h.DB)
	records, err := store.ListByGroup(ctx, gid, filter)
	if err != nil {
		respond.ServerError(w, h.Log, "failed to list group activity", err)
		return
	}

	countFilter := filter
	countFilter.Limit, countFilter.Skip = 0, 0
	total, err := store.CountByGroup(ctx, gid, countFilter)
	if err != nil {
		respond.ServerError(w, h.Log, "failed to count group activity", err)
		return
	}

	names, err := h.actorNames(ctx, records)
	if err != nil {
		respond.ServerError(w, h.Log, "failed to resolve actor names", err)
		return
	}

	entries := make([]entry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, entry{
			GroupAuditRecord: rec,
			PerformedByName:  names[rec.PerformedBy],
		})
	}

	totalPages := int((total + pageSize - 1) / pageSize)
	if totalPages < 1 {
		totalPages = 1
	}
	respond.JSON(w, h.Log, http.StatusOK, listResponse{
		Records:    entries,
		Page:       page,
		TotalPages: totalPages,
		Total:      total,
	})
}

// actorNames resolves performed_by ids to display names in one query.
// Unresolvable actors (deleted profiles) simply get no name.
func (h *Handler) actorNames(ctx context.Context, records []models.GroupAuditRecord) (map[primitive.ObjectID]string, error) {
	seen := make(map[primitive.ObjectID]struct{})
	var ids []primitive.ObjectID
	for _, rec := range records {
		if rec.PerformedBy.IsZero() {
			continue
		}
		if _, dup := seen[rec.PerformedBy]; dup {
			continue
		}
		seen[rec.PerformedBy] = struct{}{}
		ids = append(ids, rec.PerformedBy)
	}

	profiles, err := profilestore.New(h.DB).GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[primitive.ObjectID]string, len(profiles))
	for _, p := range profiles {
		names[p.ID] = p.FullName
	}
	return names, nil
}
