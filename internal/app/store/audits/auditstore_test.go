package auditstore

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/thesistrack/thesistrack/internal/domain/models"
	"github.com/thesistrack/thesistrack/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func record(groupID primitive.ObjectID) models.GroupAuditRecord {
	return models.GroupAuditRecord{
		GroupID:     groupID,
		Name:        "group updated",
		PerformedBy: primitive.NewObjectID(),
		Category:    models.CategoryGroup,
		Action:      models.ActionGroupUpdated,
		Year:        "2025-2026",
		Department:  "engineering",
		Course:      "bscs",
	}
}

func TestAppendAssignsServerTimestamp(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := New(db)

	rec := record(primitive.NewObjectID())
	// a caller-supplied timestamp must be ignored
	rec.Timestamp = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

	before := time.Now().UTC().Add(-time.Minute)
	id, err := store.Append(ctx, rec)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	got, err := store.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Timestamp.Before(before) {
		t.Errorf("timestamp %v was taken from the caller, not assigned by the server", got.Timestamp)
	}
}

func TestAppendRejectsInvalidPair(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := New(db)

	rec := record(primitive.NewObjectID())
	rec.Category = models.CategoryGroup
	rec.Action = models.ActionGradePosted // system action under group category

	if _, err := store.Append(ctx, rec); err == nil {
		t.Fatal("expected invalid category/action pair to be rejected")
	}
}

func TestAppendIdempotencyKey(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)

	// the sparse unique index enforces the key
	_, err := db.Collection("group_audits").Indexes().CreateOne(ctx, indexModel())
	if err != nil {
		t.Fatalf("create index: %v", err)
	}

	store := New(db)
	groupID := primitive.NewObjectID()

	rec := record(groupID)
	rec.IdempotencyKey = uuid.NewString()

	first, err := store.Append(ctx, rec)
	if err != nil {
		t.Fatalf("first Append: %v", err)
	}
	second, err := store.Append(ctx, rec)
	if err != nil {
		t.Fatalf("retried Append: %v", err)
	}
	if first != second {
		t.Errorf("retried append created a new record: %s != %s", first.Hex(), second.Hex())
	}

	n, err := store.CountByGroup(ctx, groupID, QueryFilter{})
	if err != nil {
		t.Fatalf("CountByGroup: %v", err)
	}
	if n != 1 {
		t.Errorf("ledger has %d records, want 1", n)
	}
}

func indexModel() mongo.IndexModel {
	return mongo.IndexModel{
		Keys:    bson.D{{Key: "group_id", Value: 1}, {Key: "idempotency_key", Value: 1}},
		Options: options.Index().SetUnique(true).SetSparse(true),
	}
}

func TestListByGroupFilterAndOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := New(db)

	groupID := primitive.NewObjectID()
	other := primitive.NewObjectID()

	for i := 0; i < 3; i++ {
		if _, err := store.Append(ctx, record(groupID)); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	proposal := record(groupID)
	proposal.Category = models.CategoryProposal
	proposal.Action = models.ActionProposalSubmitted
	if _, err := store.Append(ctx, proposal); err != nil {
		t.Fatalf("Append proposal: %v", err)
	}
	if _, err := store.Append(ctx, record(other)); err != nil {
		t.Fatalf("Append other group: %v", err)
	}

	all, err := store.ListByGroup(ctx, groupID, QueryFilter{})
	if err != nil {
		t.Fatalf("ListByGroup: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("got %d records, want 4", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].Timestamp.After(all[i-1].Timestamp) {
			t.Error("records not sorted newest-first")
		}
	}

	proposals, err := store.ListByGroup(ctx, groupID, QueryFilter{Category: models.CategoryProposal})
	if err != nil {
		t.Fatalf("ListByGroup filtered: %v", err)
	}
	if len(proposals) != 1 {
		t.Fatalf("category filter returned %d records, want 1", len(proposals))
	}
}

func TestPurgeOlderThan(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := New(db)

	groupID := primitive.NewObjectID()
	if _, err := store.Append(ctx, record(groupID)); err != nil {
		t.Fatalf("Append: %v", err)
	}

	// nothing is old enough yet
	deleted, err := store.PurgeOlderThan(ctx, time.Now().UTC().Add(-time.Hour))
	if err != nil {
		t.Fatalf("PurgeOlderThan: %v", err)
	}
	if deleted != 0 {
		t.Errorf("purged %d fresh records", deleted)
	}

	deleted, err = store.PurgeOlderThan(ctx, time.Now().UTC().Add(time.Hour))
	if err != nil {
		t.Fatalf("PurgeOlderThan: %v", err)
	}
	if deleted != 1 {
		t.Errorf("purged %d records, want 1", deleted)
	}
}

func TestDeliverReplacesStaleSnapshot(t *testing.T) {
	ch := make(chan []models.GroupAuditRecord, 1)
	ch <- []models.GroupAuditRecord{{Name: "stale"}}

	fresh := []models.GroupAuditRecord{{Name: "fresh one"}, {Name: "fresh two"}}
	deliver(context.Background(), ch, fresh)

	got := <-ch
	if len(got) != 2 || got[0].Name != "fresh one" {
		t.Fatalf("subscriber received %+v, want the fresh snapshot", got)
	}
	select {
	case extra := <-ch:
		t.Fatalf("unexpected second snapshot buffered: %+v", extra)
	default:
	}
}

func TestDeliverStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ch := make(chan []models.GroupAuditRecord) // unbuffered, nobody receiving
	done := make(chan struct{})
	go func() {
		deliver(ctx, ch, []models.GroupAuditRecord{{Name: "never sent"}})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("deliver did not return on cancelled context")
	}
}
