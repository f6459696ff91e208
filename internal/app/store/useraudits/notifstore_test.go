package notifstore

import (
	"context"
	"testing"

	"github.com/thesistrack/thesistrack/internal/app/system/classify"
	"github.com/thesistrack/thesistrack/internal/domain/models"
	"github.com/thesistrack/thesistrack/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func notification(target primitive.ObjectID, category models.Category, action models.Action) models.UserNotificationRecord {
	return models.UserNotificationRecord{
		TargetUserID: target,
		Name:         "test event",
		PerformedBy:  primitive.NewObjectID(),
		Category:     category,
		Action:       action,
		Level:        models.LevelCourse,
		Year:         "2025-2026",
		Department:   "engineering",
		Course:       "bscs",
	}
}

func TestInsertBatchValidatesAddressing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := New(db)

	bad := notification(primitive.NewObjectID(), models.CategoryGroup, models.ActionGroupUpdated)
	bad.Course = "" // course level requires a course

	err := store.InsertBatch(ctx, []models.UserNotificationRecord{bad})
	if err == nil {
		t.Fatal("expected addressing validation to reject the batch")
	}

	n, err := store.UnreadCount(ctx, bad.TargetUserID)
	if err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	if n != 0 {
		t.Errorf("invalid batch left %d records behind", n)
	}
}

func TestInsertBatchAndListForUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := New(db)

	target := primitive.NewObjectID()
	other := primitive.NewObjectID()

	batch := []models.UserNotificationRecord{
		notification(target, models.CategoryGroup, models.ActionGroupUpdated),
		notification(target, models.CategoryProposal, models.ActionProposalSubmitted),
		notification(other, models.CategoryGroup, models.ActionGroupUpdated),
	}
	if err := store.InsertBatch(ctx, batch); err != nil {
		t.Fatalf("InsertBatch: %v", err)
	}

	records, err := store.ListAllForUser(ctx, target, 0)
	if err != nil {
		t.Fatalf("ListAllForUser: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records for target, want 2", len(records))
	}
	for _, rec := range records {
		if rec.TargetUserID != target {
			t.Error("record for another user leaked into the listing")
		}
		if rec.Read || rec.PageViewed || rec.SnackbarShown {
			t.Error("fresh record has a delivery flag set")
		}
	}

	uc := addressing(records[0])
	scoped, err := store.ListForUser(ctx, uc, 0)
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(scoped) != 2 {
		t.Fatalf("context-scoped listing returned %d records, want 2", len(scoped))
	}
}

func TestMarkIsMonotonicAndIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := New(db)
	fx := testutil.NewFixtures(t, db)

	target := primitive.NewObjectID()
	rec := fx.CreateNotification(ctx, target, models.CategoryGroup, models.ActionGroupUpdated)

	modified, err := store.Mark(ctx, target, rec.ID, FlagRead)
	if err != nil {
		t.Fatalf("Mark: %v", err)
	}
	if modified != 1 {
		t.Fatalf("first mark modified %d records, want 1", modified)
	}

	// marking again is a no-op, not an error and never a reset
	modified, err = store.Mark(ctx, target, rec.ID, FlagRead)
	if err != nil {
		t.Fatalf("second Mark: %v", err)
	}
	if modified != 0 {
		t.Errorf("second mark modified %d records, want 0", modified)
	}

	records, err := store.ListAllForUser(ctx, target, 0)
	if err != nil {
		t.Fatalf("ListAllForUser: %v", err)
	}
	if len(records) != 1 || !records[0].Read {
		t.Error("read flag did not stay true")
	}
}

func TestMarkScopedToOwner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := New(db)
	fx := testutil.NewFixtures(t, db)

	owner := primitive.NewObjectID()
	rec := fx.CreateNotification(ctx, owner, models.CategoryGroup, models.ActionGroupUpdated)

	modified, err := store.Mark(ctx, primitive.NewObjectID(), rec.ID, FlagRead)
	if err != nil {
		t.Fatalf("Mark: %v", err)
	}
	if modified != 0 {
		t.Error("a different user marked someone else's record")
	}
}

func TestMarkAllAndUnreadCount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := New(db)
	fx := testutil.NewFixtures(t, db)

	target := primitive.NewObjectID()
	for i := 0; i < 3; i++ {
		fx.CreateNotification(ctx, target, models.CategoryGroup, models.ActionGroupUpdated)
	}

	n, err := store.UnreadCount(ctx, target)
	if err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	if n != 3 {
		t.Fatalf("unread = %d, want 3", n)
	}

	modified, err := store.MarkAll(ctx, target, FlagRead)
	if err != nil {
		t.Fatalf("MarkAll: %v", err)
	}
	if modified != 3 {
		t.Fatalf("MarkAll modified %d, want 3", modified)
	}

	n, err = store.UnreadCount(ctx, target)
	if err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	if n != 0 {
		t.Errorf("unread = %d after MarkAll, want 0", n)
	}
}

func TestMarkSegmentFlipsOnlyMatchingRecords(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := New(db)
	fx := testutil.NewFixtures(t, db)

	target := primitive.NewObjectID()
	groupA := fx.CreateNotification(ctx, target, models.CategoryGroup, models.ActionGroupUpdated)
	groupB := fx.CreateNotification(ctx, target, models.CategoryGroup, models.ActionGroupApproved)
	fx.CreateNotification(ctx, target, models.CategoryThesis, models.ActionThesisTitleSet)

	modified, err := store.MarkSegment(ctx, target, models.RoleStudent, classify.SegmentGroup)
	if err != nil {
		t.Fatalf("MarkSegment: %v", err)
	}
	if modified != 2 {
		t.Fatalf("MarkSegment modified %d records, want 2", modified)
	}

	records, err := store.ListAllForUser(ctx, target, 0)
	if err != nil {
		t.Fatalf("ListAllForUser: %v", err)
	}
	for _, rec := range records {
		wantViewed := rec.ID == groupA.ID || rec.ID == groupB.ID
		if rec.PageViewed != wantViewed {
			t.Errorf("record %s page_viewed = %v, want %v", rec.ID.Hex(), rec.PageViewed, wantViewed)
		}
	}
}

func TestDeliverReplacesStaleSnapshot(t *testing.T) {
	ch := make(chan []models.UserNotificationRecord, 1)
	ch <- []models.UserNotificationRecord{{Name: "stale"}}

	fresh := []models.UserNotificationRecord{{Name: "fresh", Read: true}}
	deliver(context.Background(), ch, fresh)

	got := <-ch
	if len(got) != 1 || got[0].Name != "fresh" || !got[0].Read {
		t.Fatalf("subscriber received %+v, want the fresh snapshot", got)
	}
	select {
	case extra := <-ch:
		t.Fatalf("unexpected second snapshot buffered: %+v", extra)
	default:
	}
}
