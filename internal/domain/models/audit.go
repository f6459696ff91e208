// internal/domain/models/audit.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GroupAuditRecord is one entry in a group's append-only activity ledger.
// Immutable once written; the timestamp is assigned at write time, never
// taken from the caller, so concurrent writers cannot reorder the visible
// history by clock skew.
type GroupAuditRecord struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GroupID     primitive.ObjectID `bson:"group_id" json:"group_id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	PerformedBy primitive.ObjectID `bson:"performed_by" json:"performed_by"`
	Category    Category           `bson:"category" json:"category"`
	Action      Action             `bson:"action" json:"action"`
	Timestamp   time.Time          `bson:"timestamp" json:"timestamp"`
	Details     Details            `bson:"details,omitempty" json:"details,omitempty"`

	// Addressing context the record was written under.
	Year       string `bson:"year" json:"year"`
	Department string `bson:"department" json:"department"`
	Course     string `bson:"course" json:"course"`

	// Optional caller-supplied key making retried appends safe. Sparse
	// unique with group_id; a duplicate append returns the existing id.
	IdempotencyKey string `bson:"idempotency_key,omitempty" json:"-"`
}

// UserNotificationRecord is one recipient's personal copy of an event.
// Content fields are immutable after creation; only the three boolean
// state flags are ever updated, and only from false to true.
type UserNotificationRecord struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TargetUserID primitive.ObjectID `bson:"target_user_id" json:"target_user_id"`
	Name         string             `bson:"name" json:"name"`
	Description  string             `bson:"description" json:"description"`
	PerformedBy  primitive.ObjectID `bson:"performed_by" json:"performed_by"`
	Category     Category           `bson:"category" json:"category"`
	Action       Action             `bson:"action" json:"action"`
	Timestamp    time.Time          `bson:"timestamp" json:"timestamp"`
	Details      Details            `bson:"details,omitempty" json:"details,omitempty"`

	// Addressing. Level decides which of department/course must be set:
	// course implies both, department implies department only, year
	// implies neither.
	Level      Level  `bson:"level" json:"level"`
	Year       string `bson:"year" json:"year"`
	Department string `bson:"department,omitempty" json:"department,omitempty"`
	Course     string `bson:"course,omitempty" json:"course,omitempty"`

	// Back-reference to the group the event happened in. A hint for
	// "View Details" links, not an ownership edge.
	RelatedGroupID *primitive.ObjectID `bson:"related_group_id,omitempty" json:"related_group_id,omitempty"`

	// State flags. Monotonic false -> true, never reset.
	ShowSnackbar  bool `bson:"show_snackbar" json:"show_snackbar"`
	SnackbarShown bool `bson:"snackbar_shown" json:"snackbar_shown"`
	Read          bool `bson:"read" json:"read"`
	PageViewed    bool `bson:"page_viewed" json:"page_viewed"`
}
