package fanout

import (
	"context"
	"errors"
	"testing"

	"github.com/thesistrack/thesistrack/internal/app/system/auditctx"
	"github.com/thesistrack/thesistrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeLedger struct {
	appended []models.GroupAuditRecord
	err      error
}

func (f *fakeLedger) Append(_ context.Context, rec models.GroupAuditRecord) (primitive.ObjectID, error) {
	if f.err != nil {
		return primitive.NilObjectID, f.err
	}
	rec.ID = primitive.NewObjectID()
	f.appended = append(f.appended, rec)
	return rec.ID, nil
}

type fakeNotifWriter struct {
	batches [][]models.UserNotificationRecord
	err     error
}

func (f *fakeNotifWriter) InsertBatch(_ context.Context, records []models.UserNotificationRecord) error {
	if f.err != nil {
		return f.err
	}
	f.batches = append(f.batches, records)
	return nil
}

type fakeProfiles struct {
	profiles map[primitive.ObjectID]models.Profile
	byRole   map[models.Role][]primitive.ObjectID
}

func (f *fakeProfiles) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Profile, error) {
	var out []models.Profile
	for _, id := range ids {
		if p, ok := f.profiles[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProfiles) IDsByRole(_ context.Context, role models.Role) ([]primitive.ObjectID, error) {
	return f.byRole[role], nil
}

func oid() primitive.ObjectID { return primitive.NewObjectID() }

func ptr(id primitive.ObjectID) *primitive.ObjectID { return &id }

func newTestEngine(l *fakeLedger, n *fakeNotifWriter, p *fakeProfiles) *Engine {
	return NewEngine(l, n, p, nil, auditctx.NewBuilder("2025-2026"), zap.NewNop())
}

func TestResolveTargetsGroupMembers(t *testing.T) {
	leader, m1, m2 := oid(), oid(), oid()
	g := models.ThesisGroup{
		LeaderID: leader,
		// duplicates and the leader repeated in the member list must not
		// produce duplicate recipients
		MemberIDs: []primitive.ObjectID{m1, m2, m1, leader},
	}

	got := ResolveTargets(g, Targets{GroupMembers: true, ExcludeUserID: m2}, nil, nil)

	want := map[primitive.ObjectID]bool{leader: true, m1: true}
	if len(got) != len(want) {
		t.Fatalf("got %d recipients, want %d", len(got), len(want))
	}
	for _, id := range got {
		if !want[id] {
			t.Errorf("unexpected recipient %s", id.Hex())
		}
	}
}

func TestResolveTargetsNeverIncludesActor(t *testing.T) {
	actor := oid()
	g := models.ThesisGroup{
		LeaderID:       actor,
		MemberIDs:      []primitive.ObjectID{actor, oid()},
		AdviserID:      ptr(actor),
		EditorID:       ptr(actor),
		StatisticianID: ptr(actor),
		PanelIDs:       []primitive.ObjectID{actor},
	}
	targets := Targets{
		GroupMembers: true, Leader: true, Adviser: true, Editor: true,
		Statistician: true, Panels: true, Moderators: true, Admins: true,
		UserIDs:       []primitive.ObjectID{actor},
		ExcludeUserID: actor,
	}

	got := ResolveTargets(g, targets, []primitive.ObjectID{actor}, []primitive.ObjectID{actor})
	for _, id := range got {
		if id == actor {
			t.Fatal("acting user resolved into their own recipient set")
		}
	}
}

func TestResolveTargetsEmptyIsValid(t *testing.T) {
	got := ResolveTargets(models.ThesisGroup{}, Targets{}, nil, nil)
	if len(got) != 0 {
		t.Fatalf("expected empty recipient set, got %d", len(got))
	}
}

func TestFanOutSubmissionApprovedScenario(t *testing.T) {
	leader, m1, m2, adviser, editor := oid(), oid(), oid(), oid(), oid()
	g := models.ThesisGroup{
		ID:         oid(),
		Year:       "2025-2026",
		Department: "engineering",
		Course:     "bscs",
		LeaderID:   leader,
		MemberIDs:  []primitive.ObjectID{m1, m2},
		AdviserID:  ptr(adviser),
		EditorID:   ptr(editor),
	}

	profiles := &fakeProfiles{profiles: map[primitive.ObjectID]models.Profile{
		leader:  {ID: leader, Role: models.RoleStudent, Department: "engineering", Course: "bscs"},
		m1:      {ID: m1, Role: models.RoleStudent, Department: "engineering", Course: "bscs"},
		m2:      {ID: m2, Role: models.RoleStudent, Department: "engineering", Course: "bscs"},
		editor:  {ID: editor, Role: models.RoleEditor, Department: "engineering"},
		adviser: {ID: adviser, Role: models.RoleAdviser, Department: "engineering"},
	}}
	writer := &fakeNotifWriter{}
	engine := newTestEngine(&fakeLedger{}, writer, profiles)

	res, err := engine.FanOut(context.Background(), g, auditctx.NewBuilder("2025-2026").GroupContext(g),
		Targets{GroupMembers: true, Editor: true, ExcludeUserID: adviser},
		Payload{
			Name:        "Submission approved",
			PerformedBy: adviser,
			Category:    models.CategorySubmission,
			Action:      models.ActionSubmissionApproved,
		})
	if err != nil {
		t.Fatalf("FanOut: %v", err)
	}
	if res.NotifiedCount != 4 {
		t.Fatalf("notified %d recipients, want 4", res.NotifiedCount)
	}
	if len(writer.batches) != 1 {
		t.Fatalf("expected one atomic batch, got %d", len(writer.batches))
	}

	want := map[primitive.ObjectID]bool{leader: true, m1: true, m2: true, editor: true}
	for _, rec := range writer.batches[0] {
		if rec.TargetUserID == adviser {
			t.Error("adviser received a notification for their own action")
		}
		if !want[rec.TargetUserID] {
			t.Errorf("unexpected recipient %s", rec.TargetUserID.Hex())
		}
		if rec.Action != models.ActionSubmissionApproved {
			t.Errorf("action = %q, want %q", rec.Action, models.ActionSubmissionApproved)
		}
		if rec.Read || rec.SnackbarShown || rec.PageViewed {
			t.Error("new record has a delivery flag already set")
		}
	}
}

func TestFanOutAddressingInvariant(t *testing.T) {
	student, adviser, admin, ghost := oid(), oid(), oid(), oid()
	g := models.ThesisGroup{
		ID:         oid(),
		Year:       "2025-2026",
		Department: "engineering",
		Course:     "bscs",
		LeaderID:   student,
		AdviserID:  ptr(adviser),
	}

	profiles := &fakeProfiles{
		profiles: map[primitive.ObjectID]models.Profile{
			student: {ID: student, Role: models.RoleStudent, Department: "engineering", Course: "bscs"},
			adviser: {ID: adviser, Role: models.RoleAdviser, Department: "engineering"},
			admin:   {ID: admin, Role: models.RoleAdmin},
			// ghost has no profile
		},
		byRole: map[models.Role][]primitive.ObjectID{models.RoleAdmin: {admin}},
	}
	writer := &fakeNotifWriter{}
	engine := newTestEngine(&fakeLedger{}, writer, profiles)

	_, err := engine.FanOut(context.Background(), g, auditctx.NewBuilder("2025-2026").GroupContext(g),
		Targets{GroupMembers: true, Adviser: true, Admins: true, UserIDs: []primitive.ObjectID{ghost}},
		Payload{Category: models.CategoryGroup, Action: models.ActionGroupUpdated})
	if err != nil {
		t.Fatalf("FanOut: %v", err)
	}

	for _, rec := range writer.batches[0] {
		switch rec.Level {
		case models.LevelCourse:
			if rec.Department == "" || rec.Course == "" {
				t.Errorf("course-level record for %s missing department/course", rec.TargetUserID.Hex())
			}
		case models.LevelDepartment:
			if rec.Department == "" {
				t.Errorf("department-level record for %s missing department", rec.TargetUserID.Hex())
			}
			if rec.Course != "" {
				t.Errorf("department-level record for %s has course set", rec.TargetUserID.Hex())
			}
		case models.LevelYear:
			if rec.Department != "" || rec.Course != "" {
				t.Errorf("year-level record for %s has department/course set", rec.TargetUserID.Hex())
			}
		default:
			t.Errorf("record for %s has unknown level %q", rec.TargetUserID.Hex(), rec.Level)
		}
	}
}

func TestFanOutUnresolvableRecipientGetsFallbackContext(t *testing.T) {
	ghost := oid()
	g := models.ThesisGroup{
		ID:       oid(),
		Year:     "2025-2026",
		LeaderID: ghost,
	}

	writer := &fakeNotifWriter{}
	engine := newTestEngine(&fakeLedger{}, writer, &fakeProfiles{})

	res, err := engine.FanOut(context.Background(), g, auditctx.NewBuilder("2025-2026").GroupContext(g),
		Targets{GroupMembers: true},
		Payload{Category: models.CategoryGroup, Action: models.ActionGroupUpdated})
	if err != nil {
		t.Fatalf("FanOut: %v", err)
	}
	if res.NotifiedCount != 1 {
		t.Fatalf("notified %d, want 1 (unresolvable recipient must not be dropped)", res.NotifiedCount)
	}

	rec := writer.batches[0][0]
	if rec.Department != auditctx.FallbackDepartment || rec.Course != auditctx.FallbackCourse {
		t.Errorf("fallback context = %q/%q, want %q/%q",
			rec.Department, rec.Course, auditctx.FallbackDepartment, auditctx.FallbackCourse)
	}
}

func TestAuditAndNotifyLedgerFailureAborts(t *testing.T) {
	writer := &fakeNotifWriter{}
	engine := newTestEngine(&fakeLedger{err: errors.New("write rejected")}, writer, &fakeProfiles{})

	g := models.ThesisGroup{ID: oid(), LeaderID: oid()}
	_, _, err := engine.AuditAndNotify(context.Background(), g,
		Targets{GroupMembers: true},
		Payload{Category: models.CategoryGroup, Action: models.ActionGroupUpdated})
	if err == nil {
		t.Fatal("expected error when ledger append fails")
	}
	if len(writer.batches) != 0 {
		t.Fatal("fan-out ran despite ledger append failure")
	}
}

func TestAuditAndNotifyFanOutFailureKeepsLedgerEntry(t *testing.T) {
	ledger := &fakeLedger{}
	engine := newTestEngine(ledger, &fakeNotifWriter{err: errors.New("batch rejected")}, &fakeProfiles{})

	g := models.ThesisGroup{ID: oid(), LeaderID: oid()}
	auditID, res, err := engine.AuditAndNotify(context.Background(), g,
		Targets{GroupMembers: true},
		Payload{Category: models.CategoryGroup, Action: models.ActionGroupUpdated})
	if err != nil {
		t.Fatalf("fan-out failure must not surface as a top-level error, got %v", err)
	}
	if auditID.IsZero() {
		t.Fatal("expected the ledger record id back")
	}
	if len(ledger.appended) != 1 {
		t.Fatalf("ledger has %d records, want 1", len(ledger.appended))
	}
	if res.NotifiedCount != 0 {
		t.Fatalf("notified count = %d, want 0", res.NotifiedCount)
	}
	if res.FanOutErr == nil {
		t.Fatal("result does not carry the fan-out failure")
	}
}

func TestAuditAndNotifyNoRecipientsIsNotAFailure(t *testing.T) {
	ledger := &fakeLedger{}
	engine := newTestEngine(ledger, &fakeNotifWriter{}, &fakeProfiles{})

	actor := oid()
	g := models.ThesisGroup{ID: oid(), LeaderID: actor}
	_, res, err := engine.AuditAndNotify(context.Background(), g,
		Targets{GroupMembers: true, ExcludeUserID: actor},
		Payload{Category: models.CategoryGroup, Action: models.ActionGroupUpdated})
	if err != nil {
		t.Fatalf("AuditAndNotify: %v", err)
	}
	if res.FanOutErr != nil {
		t.Fatalf("empty recipient set reported as a failure: %v", res.FanOutErr)
	}
	if res.NotifiedCount != 0 {
		t.Fatalf("notified count = %d, want 0", res.NotifiedCount)
	}
}
