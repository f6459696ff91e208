// internal/app/system/approval/approval.go

// Package approval drives the role-ordered review chains a submission
// moves through. Chain position math is pure; Router layers notification
// dispatch on top of it.
package approval

import (
	"context"
	"fmt"

	"github.com/thesistrack/thesistrack/internal/app/system/fanout"
	"github.com/thesistrack/thesistrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Chain names a review sequence.
type Chain string

const (
	ChainStatistical Chain = "statistical"
	ChainDefense     Chain = "defense"
)

// chains lists each chain's reviewer roles in approval order.
var chains = map[Chain][]models.Role{
	ChainStatistical: {models.RoleStatistician, models.RoleAdviser, models.RoleEditor},
	ChainDefense:     {models.RolePanel, models.RoleAdviser, models.RoleEditor},
}

// Roles returns the ordered reviewer roles of a chain, or nil for an
// unknown chain.
func Roles(chain Chain) []models.Role {
	return chains[chain]
}

// NextApprover returns the role that reviews after current in the given
// chain, or nil when current is the final approver (or not in the chain
// at all).
func NextApprover(current models.Role, chain Chain) *models.Role {
	seq := chains[chain]
	for i, role := range seq {
		if role == current && i+1 < len(seq) {
			next := seq[i+1]
			return &next
		}
	}
	return nil
}

// IsFinalApproval reports whether current is the last reviewer of the
// chain, i.e. its approval completes the review.
func IsFinalApproval(current models.Role, chain Chain) bool {
	seq := chains[chain]
	return len(seq) > 0 && seq[len(seq)-1] == current
}

// Assignees returns the group's user id(s) holding a reviewer role:
// one id for adviser/editor/statistician, the whole panel set for
// panel. Empty means the role is unassigned on this group.
func Assignees(g models.ThesisGroup, role models.Role) []primitive.ObjectID {
	single := func(id *primitive.ObjectID) []primitive.ObjectID {
		if id == nil || id.IsZero() {
			return nil
		}
		return []primitive.ObjectID{*id}
	}
	switch role {
	case models.RoleAdviser:
		return single(g.AdviserID)
	case models.RoleEditor:
		return single(g.EditorID)
	case models.RoleStatistician:
		return single(g.StatisticianID)
	case models.RolePanel:
		return g.PanelIDs
	}
	return nil
}

// notifier is the slice of the fan-out engine the router dispatches
// through.
type notifier interface {
	AuditAndNotify(ctx context.Context, g models.ThesisGroup, targets fanout.Targets, p fanout.Payload) (primitive.ObjectID, fanout.Result, error)
}

// Router advances approval chains and notifies the next reviewer.
type Router struct {
	notifier notifier
	log      *zap.Logger
}

func NewRouter(n notifier, log *zap.Logger) *Router {
	return &Router{notifier: n, log: log}
}

// Advance records that approverRole approved and notifies whoever
// reviews next. The returned outcome says whether the chain is complete
// and whether a next-approver notification actually went out.
type Outcome struct {
	Final        bool
	NextRole     *models.Role
	NotifiedNext bool
	AuditID      primitive.ObjectID
}

// Advance handles one approval step. If the approval is final the event
// announces full approval to the group; otherwise it informs the group
// and specifically targets the next reviewer. A next role with no
// assigned user on the group is a warning, not an error: the ledger
// entry is still written, just without a reviewer-targeted copy.
func (r *Router) Advance(ctx context.Context, g models.ThesisGroup, chain Chain, approverRole models.Role, approverID primitive.ObjectID, p fanout.Payload) (Outcome, error) {
	if _, ok := chains[chain]; !ok {
		return Outcome{}, fmt.Errorf("approval: unknown chain %q", chain)
	}

	out := Outcome{
		Final:    IsFinalApproval(approverRole, chain),
		NextRole: NextApprover(approverRole, chain),
	}
	p.PerformedBy = approverID

	targets := fanout.Targets{GroupMembers: true, ExcludeUserID: approverID}
	if out.NextRole != nil {
		next := *out.NextRole
		assignees := Assignees(g, next)
		if len(assignees) == 0 {
			r.log.Warn("next approver role unassigned on group; reviewer not notified",
				zap.String("group_id", g.ID.Hex()),
				zap.String("chain", string(chain)),
				zap.String("next_role", string(next)))
		} else {
			setRoleFlag(&targets, next)
			out.NotifiedNext = true
		}
	}

	auditID, _, err := r.notifier.AuditAndNotify(ctx, g, targets, p)
	if err != nil {
		return Outcome{}, err
	}
	out.AuditID = auditID
	return out, nil
}

func setRoleFlag(t *fanout.Targets, role models.Role) {
	switch role {
	case models.RoleAdviser:
		t.Adviser = true
	case models.RoleEditor:
		t.Editor = true
	case models.RoleStatistician:
		t.Statistician = true
	case models.RolePanel:
		t.Panels = true
	}
}
