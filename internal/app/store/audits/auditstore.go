// internal/app/store/audits/auditstore.go

// Package auditstore persists the per-group audit ledger. Records are
// append-only: nothing here updates or deletes individual entries, and
// the only removal path is the age-based retention purge.
package auditstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/thesistrack/thesistrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("group_audits")}
}

// Append inserts a ledger record. The timestamp is always assigned here,
// never taken from the caller, so ledger ordering cannot be skewed by
// client clocks. If the record carries an idempotency key that has
// already been written for the same group, Append returns the existing
// record's id instead of inserting a duplicate.
func (s *Store) Append(ctx context.Context, rec models.GroupAuditRecord) (primitive.ObjectID, error) {
	if !models.ValidPair(rec.Category, rec.Action) {
		return primitive.NilObjectID, fmt.Errorf("invalid category/action pair %q/%q", rec.Category, rec.Action)
	}
	rec.ID = primitive.NewObjectID()
	rec.Timestamp = time.Now().UTC()
	rec.Details = rec.Details.Normalize()

	if _, err := s.c.InsertOne(ctx, rec); err != nil {
		if wafflemongo.IsDup(err) && rec.IdempotencyKey != "" {
			return s.findByIdempotencyKey(ctx, rec.GroupID, rec.IdempotencyKey)
		}
		return primitive.NilObjectID, err
	}
	return rec.ID, nil
}

func (s *Store) findByIdempotencyKey(ctx context.Context, groupID primitive.ObjectID, key string) (primitive.ObjectID, error) {
	var existing struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	err := s.c.FindOne(ctx, bson.M{"group_id": groupID, "idempotency_key": key}).Decode(&existing)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return existing.ID, nil
}

// GetByID fetches one ledger record.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.GroupAuditRecord, error) {
	var rec models.GroupAuditRecord
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&rec); err != nil {
		return models.GroupAuditRecord{}, err
	}
	return rec, nil
}

// QueryFilter narrows a ledger listing. Zero values mean "no filter" for
// that dimension.
type QueryFilter struct {
	Category models.Category
	Action   models.Action
	After    time.Time
	Before   time.Time
	Limit    int64
	Skip     int64
}

func (f QueryFilter) build(base bson.M) bson.M {
	if f.Category != "" {
		base["category"] = f.Category
	}
	if f.Action != "" {
		base["action"] = f.Action
	}
	ts := bson.M{}
	if !f.After.IsZero() {
		ts["$gt"] = f.After
	}
	if !f.Before.IsZero() {
		ts["$lt"] = f.Before
	}
	if len(ts) > 0 {
		base["timestamp"] = ts
	}
	return base
}

// ListByGroup returns a group's ledger newest-first.
func (s *Store) ListByGroup(ctx context.Context, groupID primitive.ObjectID, filter QueryFilter) ([]models.GroupAuditRecord, error) {
	q := filter.build(bson.M{"group_id": groupID})

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(filter.Limit)
	}
	if filter.Skip > 0 {
		opts.SetSkip(filter.Skip)
	}

	cur, err := s.c.Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var records []models.GroupAuditRecord
	if err := cur.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// CountByGroup returns how many ledger records match the filter.
func (s *Store) CountByGroup(ctx context.Context, groupID primitive.ObjectID, filter QueryFilter) (int64, error) {
	return s.c.CountDocuments(ctx, filter.build(bson.M{"group_id": groupID}))
}

// ListByPath returns ledger records across groups within a path bucket,
// e.g. everything in a department for the academic year. Empty course
// widens the query to the whole department; empty department widens it
// to the whole year.
func (s *Store) ListByPath(ctx context.Context, year, department, course string, filter QueryFilter) ([]models.GroupAuditRecord, error) {
	base := bson.M{"year": year}
	if department != "" {
		base["department"] = department
	}
	if course != "" {
		base["course"] = course
	}
	q := filter.build(base)

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(filter.Limit)
	}

	cur, err := s.c.Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var records []models.GroupAuditRecord
	if err := cur.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// PurgeOlderThan removes ledger records older than the cutoff and
// returns how many were deleted. This is the retention job's hook and
// the only delete path on the collection.
func (s *Store) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"timestamp": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Subscribe delivers the full current ledger for a group (newest-first,
// honoring filter) on every change to the group's records, starting with
// an immediate initial snapshot. It uses a change stream where the
// deployment supports one and falls back to polling on standalone
// servers. The returned cancel func stops delivery and closes the
// channel; delivery also stops when ctx is done.
func (s *Store) Subscribe(ctx context.Context, groupID primitive.ObjectID, filter QueryFilter) (<-chan []models.GroupAuditRecord, func(), error) {
	snapshot := func(ctx context.Context) ([]models.GroupAuditRecord, error) {
		return s.ListByGroup(ctx, groupID, filter)
	}
	match := bson.D{{Key: "$match", Value: bson.M{"fullDocument.group_id": groupID}}}
	return subscribe(ctx, s.c, match, snapshot)
}

// pollInterval is how often the fallback path re-runs the snapshot query
// when change streams are unavailable.
const pollInterval = 2 * time.Second

// subscribe implements snapshot delivery over either a change stream or
// a polling loop.
func subscribe(
	ctx context.Context,
	c *mongo.Collection,
	match bson.D,
	snapshot func(ctx context.Context) ([]models.GroupAuditRecord, error),
) (<-chan []models.GroupAuditRecord, func(), error) {
	ctx, cancel := context.WithCancel(ctx)
	out := make(chan []models.GroupAuditRecord, 1)

	initial, err := snapshot(ctx)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	out <- initial

	stream, err := c.Watch(ctx, mongo.Pipeline{match},
		options.ChangeStream().SetFullDocument(options.UpdateLookup))
	if err != nil {
		if !isChangeStreamUnsupported(err) {
			cancel()
			return nil, nil, err
		}
		go pollLoop(ctx, out, snapshot)
		return out, cancel, nil
	}

	go streamLoop(ctx, stream, out, snapshot)
	return out, cancel, nil
}

func streamLoop(
	ctx context.Context,
	stream *mongo.ChangeStream,
	out chan []models.GroupAuditRecord,
	snapshot func(ctx context.Context) ([]models.GroupAuditRecord, error),
) {
	defer close(out)
	defer stream.Close(context.Background())

	for stream.Next(ctx) {
		snap, err := snapshot(ctx)
		if err != nil {
			return
		}
		deliver(ctx, out, snap)
	}
}

func pollLoop(
	ctx context.Context,
	out chan []models.GroupAuditRecord,
	snapshot func(ctx context.Context) ([]models.GroupAuditRecord, error),
) {
	defer close(out)

	t := time.NewTicker(pollInterval)
	defer t.Stop()

	var lastLen = -1
	var lastNewest primitive.ObjectID
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
		snap, err := snapshot(ctx)
		if err != nil {
			return
		}
		newest := primitive.NilObjectID
		if len(snap) > 0 {
			newest = snap[0].ID
		}
		if len(snap) == lastLen && newest == lastNewest {
			continue
		}
		lastLen, lastNewest = len(snap), newest
		deliver(ctx, out, snap)
	}
}

// deliver sends a snapshot, dropping the stale buffered one if the
// receiver has fallen behind. Subscribers always see the latest state.
// out must be bidirectional: draining the stale snapshot is a receive.
func deliver(ctx context.Context, out chan []models.GroupAuditRecord, snap []models.GroupAuditRecord) {
	for {
		select {
		case <-ctx.Done():
			return
		case out <- snap:
			return
		default:
			select {
			case <-out:
			default:
			}
		}
	}
}

// isChangeStreamUnsupported reports whether err means the deployment
// cannot open a change stream (standalone server), as opposed to the
// stream failing for another reason.
func isChangeStreamUnsupported(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		// 40573: "The $changeStream stage is only supported on replica sets"
		if ce.Code == 40573 {
			return true
		}
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "$changestream") && strings.Contains(s, "replica set")
}
