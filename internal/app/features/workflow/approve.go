// internal/app/features/workflow/approve.go
package workflow

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/thesistrack/thesistrack/internal/app/features/respond"
	groupstore "github.com/thesistrack/thesistrack/internal/app/store/groups"
	"github.com/thesistrack/thesistrack/internal/app/system/approval"
	"github.com/thesistrack/thesistrack/internal/app/system/fanout"
	"github.com/thesistrack/thesistrack/internal/app/system/timeouts"
	"github.com/thesistrack/thesistrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type approveRequest struct {
	ApproverRole string `json:"approver_role"`
	ApproverID   string `json:"approver_id"`
	Description  string `json:"description"`
}

type approveResponse struct {
	AuditID      string  `json:"audit_id"`
	Final        bool    `json:"final"`
	NextRole     *string `json:"next_role,omitempty"`
	NotifiedNext bool    `json:"notified_next"`
}

// ServeApprove handles POST /groups/{groupID}/approvals/{chain}.
//
// Records one approval step on the named review chain, informs the
// group, and notifies the next reviewer if one is assigned. The final
// step announces full approval instead of handing off.
func (h *Handler) ServeApprove(w http.ResponseWriter, r *http.Request) {
	gid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "groupID"))
	if err != nil {
		respond.Error(w, h.Log, http.StatusBadRequest, "invalid group id")
		return
	}
	chain := approval.Chain(chi.URLParam(r, "chain"))
	if approval.Roles(chain) == nil {
		respond.Error(w, h.Log, http.StatusBadRequest, "unknown approval chain")
		return
	}

	var req approveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, h.Log, http.StatusBadRequest, "invalid request body")
		return
	}
	approverID, err := primitive.ObjectIDFromHex(req.ApproverID)
	if err != nil {
		respond.Error(w, h.Log, http.StatusBadRequest, "invalid approver id")
		return
	}
	approverRole := models.Role(req.ApproverRole)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "submission approval")
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

	payload := approvalPayload(approverRole, approval.IsFinalApproval(approverRole, chain), req.Description)

	out, err := h.Router.Advance(ctx, g, chain, approverRole, approverID, payload)
	if err != nil {
		respond.ServerError(w, h.Log, "failed to advance approval chain", err)
		return
	}

	resp := approveResponse{
		AuditID:      out.AuditID.Hex(),
		Final:        out.Final,
		NotifiedNext: out.NotifiedNext,
	}
	if out.NextRole != nil {
		role := string(*out.NextRole)
		resp.NextRole = &role
	}
	respond.JSON(w, h.Log, http.StatusOK, resp)
}

// approvalPayload builds the ledger/notification content for an
// approval step. The final reviewer's approval is its own action with
// its own headline, not one more hand-off.
func approvalPayload(role models.Role, final bool, description string) fanout.Payload {
	p := fanout.Payload{
		Name:         fmt.Sprintf("Submission approved by %s", role),
		Description:  description,
		Category:     models.CategorySubmission,
		Action:       models.ActionSubmissionApproved,
		ShowSnackbar: true,
	}
	if final {
		p.Name = "Submission fully approved by all reviewers"
		p.Action = models.ActionSubmissionFullyApproved
	}
	return p
}
