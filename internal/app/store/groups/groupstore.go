// internal/app/store/groups/groupstore.go
package groupstore

import (
	"context"
	"errors"
	"time"

	"github.com/thesistrack/thesistrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

var ErrGroupNotFound = errors.New("thesis group not found")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("thesis_groups")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.ThesisGroup, error) {
	var g models.ThesisGroup
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&g); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.ThesisGroup{}, ErrGroupNotFound
		}
		return models.ThesisGroup{}, err
	}
	return g, nil
}

func (s *Store) Create(ctx context.Context, g models.ThesisGroup) (models.ThesisGroup, error) {
	now := time.Now().UTC()
	g.ID = primitive.NewObjectID()
	if g.Status == "" {
		g.Status = "active"
	}
	g.CreatedAt = now
	g.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, g); err != nil {
		return models.ThesisGroup{}, err
	}
	return g, nil
}

// SetExpert assigns or clears one of the single-holder expert roles.
// Passing a nil id clears the assignment.
func (s *Store) SetExpert(ctx context.Context, groupID primitive.ObjectID, role models.Role, userID *primitive.ObjectID) error {
	var field string
	switch role {
	case models.RoleAdviser:
		field = "adviser_id"
	case models.RoleEditor:
		field = "editor_id"
	case models.RoleStatistician:
		field = "statistician_id"
	default:
		return errors.New("role has no single-holder assignment on a group")
	}

	update := bson.M{"$set": bson.M{"updated_at": time.Now().UTC()}}
	if userID != nil {
		update["$set"].(bson.M)[field] = *userID
	} else {
		update["$unset"] = bson.M{field: ""}
	}
	res, err := s.c.UpdateByID(ctx, groupID, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrGroupNotFound
	}
	return nil
}

// SetPanels replaces the panel set for a group.
func (s *Store) SetPanels(ctx context.Context, groupID primitive.ObjectID, panelIDs []primitive.ObjectID) error {
	res, err := s.c.UpdateByID(ctx, groupID, bson.M{"$set": bson.M{
		"panel_ids":  panelIDs,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrGroupNotFound
	}
	return nil
}

// AddMember appends a member id if not already present.
func (s *Store) AddMember(ctx context.Context, groupID, userID primitive.ObjectID) error {
	res, err := s.c.UpdateByID(ctx, groupID, bson.M{
		"$addToSet": bson.M{"member_ids": userID},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrGroupNotFound
	}
	return nil
}

// RemoveMember removes a member id.
func (s *Store) RemoveMember(ctx context.Context, groupID, userID primitive.ObjectID) error {
	res, err := s.c.UpdateByID(ctx, groupID, bson.M{
		"$pull": bson.M{"member_ids": userID},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrGroupNotFound
	}
	return nil
}

// ListByCourse returns groups in a (year, department, course) bucket.
func (s *Store) ListByCourse(ctx context.Context, year, department, course string) ([]models.ThesisGroup, error) {
	cur, err := s.c.Find(ctx, bson.M{
		"year":       year,
		"department": department,
		"course":     course,
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var groups []models.ThesisGroup
	if err := cur.All(ctx, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}
