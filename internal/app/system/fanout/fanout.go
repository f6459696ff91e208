// internal/app/system/fanout/fanout.go

// Package fanout expands one ledger-worthy event into per-recipient
// notification records. Target resolution is pure set arithmetic; the
// Engine layers storage, profile lookup, and the optional email side
// channel on top of it.
package fanout

import (
	"context"
	"fmt"

	"github.com/thesistrack/thesistrack/internal/app/system/auditctx"
	"github.com/thesistrack/thesistrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Targets declares who should be notified for one event. Flags compose;
// resolution unions every enabled path and removes ExcludeUserID (the
// action performer) from the result so nobody is notified about their
// own action.
type Targets struct {
	GroupMembers bool // leader plus all members
	Leader       bool
	Adviser      bool
	Editor       bool
	Statistician bool
	Panels       bool
	Moderators   bool
	Admins       bool

	UserIDs       []primitive.ObjectID
	ExcludeUserID primitive.ObjectID
}

// ResolveTargets computes the deduplicated recipient set for an event.
// adminIDs and moderatorIDs are consulted only when the corresponding
// flag is set. An empty result is valid and means the event notifies
// nobody.
func ResolveTargets(g models.ThesisGroup, t Targets, adminIDs, moderatorIDs []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{})
	var out []primitive.ObjectID

	add := func(id primitive.ObjectID) {
		if id.IsZero() || id == t.ExcludeUserID {
			return
		}
		if _, dup := seen[id]; dup {
			return
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	addPtr := func(id *primitive.ObjectID) {
		if id != nil {
			add(*id)
		}
	}

	if t.GroupMembers || t.Leader {
		add(g.LeaderID)
	}
	if t.GroupMembers {
		for _, id := range g.MemberIDs {
			add(id)
		}
	}
	if t.Adviser {
		addPtr(g.AdviserID)
	}
	if t.Editor {
		addPtr(g.EditorID)
	}
	if t.Statistician {
		addPtr(g.StatisticianID)
	}
	if t.Panels {
		for _, id := range g.PanelIDs {
			add(id)
		}
	}
	for _, id := range t.UserIDs {
		add(id)
	}
	if t.Admins {
		for _, id := range adminIDs {
			add(id)
		}
	}
	if t.Moderators {
		for _, id := range moderatorIDs {
			add(id)
		}
	}
	return out
}

// Payload is the event content shared by the ledger record and every
// notification copy.
type Payload struct {
	Name        string
	Description string
	PerformedBy primitive.ObjectID
	Category    models.Category
	Action      models.Action
	Details     models.Details

	// ShowSnackbar asks recipients' clients to announce the event.
	ShowSnackbar bool
	// SendEmail additionally emails each resolved recipient profile.
	// Email failures are counted, never fatal.
	SendEmail bool

	// IdempotencyKey, when set, makes a retried append return the
	// original ledger record instead of duplicating it.
	IdempotencyKey string
}

// Result reports what a fan-out accomplished. FanOutErr is set by
// AuditAndNotify when the fan-out failed after the ledger append
// committed; it lets callers tell that case apart from an event that
// simply resolved no recipients.
type Result struct {
	NotificationIDs []primitive.ObjectID
	NotifiedCount   int
	EmailFailures   int
	FanOutErr       error
}

// ledger is the slice of the audit store the engine appends through.
type ledger interface {
	Append(ctx context.Context, rec models.GroupAuditRecord) (primitive.ObjectID, error)
}

// notificationWriter writes one fan-out batch all-or-nothing.
type notificationWriter interface {
	InsertBatch(ctx context.Context, records []models.UserNotificationRecord) error
}

// profileReader resolves recipients. GetByIDs may return fewer profiles
// than ids; the engine gives unresolved recipients fallback context.
type profileReader interface {
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Profile, error)
	IDsByRole(ctx context.Context, role models.Role) ([]primitive.ObjectID, error)
}

// bulkMailer is the email side channel. It returns how many sends
// failed; it never aborts the fan-out.
type bulkMailer interface {
	SendBulkAuditEmails(ctx context.Context, recipients []models.Profile, p Payload) int
}

// Engine performs ledger appends and notification fan-out.
type Engine struct {
	ledger       ledger
	notifs       notificationWriter
	profiles     profileReader
	mailer       bulkMailer // nil disables the email side channel
	builder      *auditctx.Builder
	log          *zap.Logger
	mirrorLedger bool
}

func NewEngine(l ledger, n notificationWriter, p profileReader, m bulkMailer, b *auditctx.Builder, log *zap.Logger) *Engine {
	return &Engine{ledger: l, notifs: n, profiles: p, mailer: m, builder: b, log: log}
}

// EnableLedgerMirror makes every successful ledger append also emit a
// structured log entry, so operators can follow group history in the
// log stream without querying the collection.
func (e *Engine) EnableLedgerMirror() {
	e.mirrorLedger = true
}

// FanOut resolves targets and writes one notification record per
// recipient in a single atomic batch. Recipients whose profile cannot
// be found still get a record addressed with the group's own
// department/course. The email side channel, when requested, runs after
// the batch commits and its failures only show up in the result count.
func (e *Engine) FanOut(ctx context.Context, g models.ThesisGroup, gc auditctx.GroupContext, targets Targets, p Payload) (Result, error) {
	adminIDs, moderatorIDs, err := e.roleHolderIDs(ctx, targets)
	if err != nil {
		return Result{}, err
	}

	recipients := ResolveTargets(g, targets, adminIDs, moderatorIDs)
	if len(recipients) == 0 {
		return Result{}, nil
	}

	profiles, err := e.profiles.GetByIDs(ctx, recipients)
	if err != nil {
		return Result{}, fmt.Errorf("fanout: fetch recipient profiles: %w", err)
	}
	byID := make(map[primitive.ObjectID]*models.Profile, len(profiles))
	for i := range profiles {
		byID[profiles[i].ID] = &profiles[i]
	}

	records := make([]models.UserNotificationRecord, 0, len(recipients))
	for _, id := range recipients {
		uc := e.builder.UserContext(id, byID[id], gc)
		records = append(records, models.UserNotificationRecord{
			TargetUserID:   id,
			Name:           p.Name,
			Description:    p.Description,
			PerformedBy:    p.PerformedBy,
			Category:       p.Category,
			Action:         p.Action,
			Details:        p.Details,
			Level:          uc.Level,
			Year:           uc.Year,
			Department:     uc.Department,
			Course:         uc.Course,
			RelatedGroupID: &g.ID,
			ShowSnackbar:   p.ShowSnackbar,
		})
	}

	if err := e.notifs.InsertBatch(ctx, records); err != nil {
		return Result{}, fmt.Errorf("fanout: write notification batch: %w", err)
	}

	res := Result{NotifiedCount: len(records)}
	for _, rec := range records {
		if !rec.ID.IsZero() {
			res.NotificationIDs = append(res.NotificationIDs, rec.ID)
		}
	}

	if p.SendEmail && e.mailer != nil {
		res.EmailFailures = e.mailer.SendBulkAuditEmails(ctx, profiles, p)
		if res.EmailFailures > 0 {
			e.log.Warn("audit email side channel had failures",
				zap.Int("failed", res.EmailFailures),
				zap.Int("recipients", len(profiles)),
				zap.String("action", string(p.Action)))
		}
	}
	return res, nil
}

// AuditAndNotify appends a ledger record and then fans the event out to
// the declared targets. The two writes are deliberately not one
// transaction: an append failure aborts the whole operation, but a
// fan-out failure after a successful append is logged and the ledger
// entry stands. Group history is authoritative even when notifications
// are lost.
func (e *Engine) AuditAndNotify(ctx context.Context, g models.ThesisGroup, targets Targets, p Payload) (primitive.ObjectID, Result, error) {
	gc := e.builder.GroupContext(g)

	auditID, err := e.ledger.Append(ctx, models.GroupAuditRecord{
		GroupID:        g.ID,
		Name:           p.Name,
		Description:    p.Description,
		PerformedBy:    p.PerformedBy,
		Category:       p.Category,
		Action:         p.Action,
		Details:        p.Details,
		Year:           gc.Year,
		Department:     gc.Department,
		Course:         gc.Course,
		IdempotencyKey: p.IdempotencyKey,
	})
	if err != nil {
		return primitive.NilObjectID, Result{}, fmt.Errorf("fanout: ledger append: %w", err)
	}
	if e.mirrorLedger {
		e.log.Info("audit event",
			zap.Bool("audit", true),
			zap.String("audit_id", auditID.Hex()),
			zap.String("group_id", g.ID.Hex()),
			zap.String("performed_by", p.PerformedBy.Hex()),
			zap.String("category", string(p.Category)),
			zap.String("action", string(p.Action)),
			zap.String("name", p.Name))
	}

	res, err := e.FanOut(ctx, g, gc, targets, p)
	if err != nil {
		e.log.Warn("notification fan-out failed after ledger append; ledger entry kept",
			zap.String("audit_id", auditID.Hex()),
			zap.String("group_id", g.ID.Hex()),
			zap.String("action", string(p.Action)),
			zap.Error(err))
		return auditID, Result{FanOutErr: err}, nil
	}
	return auditID, res, nil
}

func (e *Engine) roleHolderIDs(ctx context.Context, targets Targets) (adminIDs, moderatorIDs []primitive.ObjectID, err error) {
	if targets.Admins {
		for _, role := range []models.Role{models.RoleAdmin, models.RoleDeveloper} {
			ids, err := e.profiles.IDsByRole(ctx, role)
			if err != nil {
				return nil, nil, fmt.Errorf("fanout: resolve %s ids: %w", role, err)
			}
			adminIDs = append(adminIDs, ids...)
		}
	}
	if targets.Moderators {
		moderatorIDs, err = e.profiles.IDsByRole(ctx, models.RoleModerator)
		if err != nil {
			return nil, nil, fmt.Errorf("fanout: resolve moderator ids: %w", err)
		}
	}
	return adminIDs, moderatorIDs, nil
}
