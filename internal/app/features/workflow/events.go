// internal/app/features/workflow/events.go
package workflow

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/thesistrack/thesistrack/internal/app/features/respond"
	groupstore "github.com/thesistrack/thesistrack/internal/app/store/groups"
	"github.com/thesistrack/thesistrack/internal/app/system/fanout"
	"github.com/thesistrack/thesistrack/internal/app/system/timeouts"
	"github.com/thesistrack/thesistrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// eventRequest is one ledger-worthy business event together with its
// notification target declaration.
type eventRequest struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	PerformedBy string            `json:"performed_by"`
	Category    string            `json:"category"`
	Action      string            `json:"action"`
	Details     *models.Details   `json:"details,omitempty"`
	Targets     targetDeclaration `json:"targets"`

	ShowSnackbar   bool   `json:"show_snackbar"`
	SendEmail      bool   `json:"send_email"`
	IdempotencyKey string `json:"idempotency_key"`
}

type targetDeclaration struct {
	GroupMembers bool     `json:"group_members"`
	Leader       bool     `json:"leader"`
	Adviser      bool     `json:"adviser"`
	Editor       bool     `json:"editor"`
	Statistician bool     `json:"statistician"`
	Panels       bool     `json:"panels"`
	Moderators   bool     `json:"moderators"`
	Admins       bool     `json:"admins"`
	UserIDs      []string `json:"user_ids"`
}

type eventResponse struct {
	AuditID        string `json:"audit_id"`
	NotifiedCount  int    `json:"notified_count"`
	EmailFailures  int    `json:"email_failures,omitempty"`
	FanOutError    string `json:"fan_out_error,omitempty"`
	IdempotencyKey string `json:"idempotency_key"`
}

// ServeRecordEvent handles POST /groups/{groupID}/events.
//
// Appends one ledger record and fans the event out to the declared
// targets. A fan-out failure after a successful append is still a 201:
// the ledger entry is authoritative, and the response carries the
// failure in fan_out_error so the caller can tell it from an event that
// resolved no recipients.
func (h *Handler) ServeRecordEvent(w http.ResponseWriter, r *http.Request) {
	gid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "groupID"))
	if err != nil {
		respond.Error(w, h.Log, http.StatusBadRequest, "invalid group id")
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, h.Log, http.StatusBadRequest, "invalid request body")
		return
	}
	if !models.ValidPair(models.Category(req.Category), models.Action(req.Action)) {
		respond.Error(w, h.Log, http.StatusBadRequest, "invalid category/action pair")
		return
	}
	performedBy, err := primitive.ObjectIDFromHex(req.PerformedBy)
	if err != nil {
		respond.Error(w, h.Log, http.StatusBadRequest, "invalid performed_by id")
		return
	}

	targets, err := req.Targets.resolve(performedBy)
	if err != nil {
		respond.Error(w, h.Log, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "record group event")
	defer cancel()

	g, err := groupstore.New(h.DB).GetByID(ctx, gid)
	if err != nil {
		if err == groupstore.ErrGroupNotFound {
			respond.Error(w, h.Log, http.StatusNotFound, "group not found")
			return
		}
		respond.ServerError(w, h.Log, "failed to load group", err)
		return
	}

	key := req.IdempotencyKey
	if key == "" {
		key = uuid.NewString()
	}

	payload := fanout.Payload{
		Name:           req.Name,
		Description:    req.Description,
		PerformedBy:    performedBy,
		Category:       models.Category(req.Category),
		Action:         models.Action(req.Action),
		ShowSnackbar:   req.ShowSnackbar,
		SendEmail:      req.SendEmail,
		IdempotencyKey: key,
	}
	if req.Details != nil {
		payload.Details = *req.Details
	}

	auditID, res, err := h.Engine.AuditAndNotify(ctx, g, targets, payload)
	if err != nil {
		respond.ServerError(w, h.Log, "failed to record group event", err)
		return
	}

	resp := eventResponse{
		AuditID:        auditID.Hex(),
		NotifiedCount:  res.NotifiedCount,
		EmailFailures:  res.EmailFailures,
		IdempotencyKey: key,
	}
	if res.FanOutErr != nil {
		resp.FanOutError = res.FanOutErr.Error()
	}
	respond.JSON(w, h.Log, http.StatusCreated, resp)
}

func (d targetDeclaration) resolve(performedBy primitive.ObjectID) (fanout.Targets, error) {
	t := fanout.Targets{
		GroupMembers:  d.GroupMembers,
		Leader:        d.Leader,
		Adviser:       d.Adviser,
		Editor:        d.Editor,
		Statistician:  d.Statistician,
		Panels:        d.Panels,
		Moderators:    d.Moderators,
		Admins:        d.Admins,
		ExcludeUserID: performedBy,
	}
	for _, raw := range d.UserIDs {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return fanout.Targets{}, err
		}
		t.UserIDs = append(t.UserIDs, id)
	}
	return t, nil
}
