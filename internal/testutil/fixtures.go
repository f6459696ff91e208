// internal/testutil/fixtures.go
package testutil

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/thesistrack/thesistrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateProfile creates a test profile with the given role and path
// placement.
func (f *Fixtures) CreateProfile(ctx context.Context, fullName string, role models.Role, department, course string) models.Profile {
	f.t.Helper()

	now := time.Now().UTC()
	p := models.Profile{
		ID:         primitive.NewObjectID(),
		FullName:   fullName,
		Email:      fmt.Sprintf("%s@test.local", primitive.NewObjectID().Hex()),
		Role:       role,
		Department: department,
		Course:     course,
		Status:     "active",
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := f.db.Collection("profiles").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test profile: %v", err)
	}
	return p
}

// CreateGroup creates a test thesis group led by leaderID with the
// given members. Expert roles start unassigned; set them through the
// returned value and the groups store when a test needs them.
func (f *Fixtures) CreateGroup(ctx context.Context, name string, leaderID primitive.ObjectID, memberIDs ...primitive.ObjectID) models.ThesisGroup {
	f.t.Helper()

	now := time.Now().UTC()
	g := models.ThesisGroup{
		ID:         primitive.NewObjectID(),
		Name:       name,
		Year:       "2025-2026",
		Department: "engineering",
		Course:     "bscs",
		LeaderID:   leaderID,
		MemberIDs:  memberIDs,
		Status:     "active",
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := f.db.Collection("thesis_groups").InsertOne(ctx, g); err != nil {
		f.t.Fatalf("failed to create test group: %v", err)
	}
	return g
}

// CreateNotification inserts one notification record for targetID at
// course level, returning it with its generated id.
func (f *Fixtures) CreateNotification(ctx context.Context, targetID primitive.ObjectID, category models.Category, action models.Action) models.UserNotificationRecord {
	f.t.Helper()

	rec := models.UserNotificationRecord{
		ID:           primitive.NewObjectID(),
		TargetUserID: targetID,
		Name:         "test notification",
		Category:     category,
		Action:       action,
		Timestamp:    time.Now().UTC(),
		Level:        models.LevelCourse,
		Year:         "2025-2026",
		Department:   "engineering",
		Course:       "bscs",
	}

	if _, err := f.db.Collection("user_audits").InsertOne(ctx, rec); err != nil {
		f.t.Fatalf("failed to create test notification: %v", err)
	}
	return rec
}
