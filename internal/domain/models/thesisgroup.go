// internal/domain/models/thesisgroup.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ThesisGroup represents one thesis team inside a course.
//
// NOTE:
//   - Leader and member ids are embedded on the group; the expert roles
//     (adviser, editor, statistician) are single optional assignments,
//     while panels is a set.
//   - Year/Department/Course place the group in the organizational
//     hierarchy; blanks are filled by the context builder's fallbacks.
type ThesisGroup struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`

	Year       string `bson:"year" json:"year"`
	Department string `bson:"department" json:"department"`
	Course     string `bson:"course" json:"course"`

	LeaderID  primitive.ObjectID   `bson:"leader_id" json:"leader_id"`
	MemberIDs []primitive.ObjectID `bson:"member_ids" json:"member_ids"`

	AdviserID      *primitive.ObjectID  `bson:"adviser_id,omitempty" json:"adviser_id,omitempty"`
	EditorID       *primitive.ObjectID  `bson:"editor_id,omitempty" json:"editor_id,omitempty"`
	StatisticianID *primitive.ObjectID  `bson:"statistician_id,omitempty" json:"statistician_id,omitempty"`
	PanelIDs       []primitive.ObjectID `bson:"panel_ids,omitempty" json:"panel_ids,omitempty"`

	Status string `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
