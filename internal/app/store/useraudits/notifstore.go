// internal/app/store/useraudits/notifstore.go

// Package notifstore persists per-user notification records, the
// materialized targets of ledger fan-out. Records are immutable except
// for their boolean delivery flags, which only ever move false to true.
package notifstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/thesistrack/thesistrack/internal/app/system/auditctx"
	"github.com/thesistrack/thesistrack/internal/app/system/classify"
	"github.com/thesistrack/thesistrack/internal/app/system/txn"
	"github.com/thesistrack/thesistrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c      *mongo.Collection
	client *mongo.Client
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("user_audits"), client: db.Client()}
}

// InsertBatch writes one fan-out batch all-or-nothing. Every record gets
// a fresh id and the same server-assigned timestamp so a batch sorts as
// a unit, and each record's addressing context is validated before
// anything is written. On a standalone server the batch degrades to a
// single ordered InsertMany, which still fails as a unit on the first
// bad document.
func (s *Store) InsertBatch(ctx context.Context, records []models.UserNotificationRecord) error {
	if len(records) == 0 {
		return nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(records))
	for i := range records {
		if err := addressing(records[i]).Validate(); err != nil {
			return fmt.Errorf("notification record %d: %w", i, err)
		}
		records[i].ID = primitive.NewObjectID()
		records[i].Timestamp = now
		records[i].Details = records[i].Details.Normalize()
		docs = append(docs, records[i])
	}

	return txn.Run(ctx, s.client, func(ctx context.Context) error {
		_, err := s.c.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
		return err
	})
}

// addressing extracts a record's addressing context for validation.
func addressing(rec models.UserNotificationRecord) auditctx.UserContext {
	return auditctx.UserContext{
		UserID:     rec.TargetUserID,
		Level:      rec.Level,
		Year:       rec.Year,
		Department: rec.Department,
		Course:     rec.Course,
	}
}

// ListForUser returns a user's notifications within one addressing
// context, newest-first. The context's level decides which path fields
// constrain the query, mirroring how fan-out addressed the records.
func (s *Store) ListForUser(ctx context.Context, uc auditctx.UserContext, limit int64) ([]models.UserNotificationRecord, error) {
	if err := uc.Validate(); err != nil {
		return nil, err
	}
	q := bson.M{"target_user_id": uc.UserID, "year": uc.Year, "level": uc.Level}
	switch uc.Level {
	case models.LevelDepartment:
		q["department"] = uc.Department
	case models.LevelCourse:
		q["department"] = uc.Department
		q["course"] = uc.Course
	}
	return s.list(ctx, q, limit)
}

// ListAllForUser returns a user's notifications across all contexts.
func (s *Store) ListAllForUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.UserNotificationRecord, error) {
	return s.list(ctx, bson.M{"target_user_id": userID}, limit)
}

func (s *Store) list(ctx context.Context, q bson.M, limit int64) ([]models.UserNotificationRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.c.Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var records []models.UserNotificationRecord
	if err := cur.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// UnreadCount returns how many of a user's notifications are unread.
func (s *Store) UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"target_user_id": userID, "read": false})
}

// Flag names a markable delivery flag. Marking is monotonic: flags move
// false to true and are never cleared.
type Flag string

const (
	FlagRead          Flag = "read"
	FlagPageViewed    Flag = "page_viewed"
	FlagSnackbarShown Flag = "snackbar_shown"
)

func (f Flag) valid() bool {
	switch f {
	case FlagRead, FlagPageViewed, FlagSnackbarShown:
		return true
	}
	return false
}

// Mark sets a flag true on one record, scoped to its owner. Returns the
// number of records actually flipped (0 if already set or not found).
func (s *Store) Mark(ctx context.Context, userID, recordID primitive.ObjectID, flag Flag) (int64, error) {
	if !flag.valid() {
		return 0, fmt.Errorf("unknown notification flag %q", flag)
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": recordID, "target_user_id": userID, string(flag): false},
		bson.M{"$set": bson.M{string(flag): true}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// MarkMany sets a flag true on a set of records owned by the user.
func (s *Store) MarkMany(ctx context.Context, userID primitive.ObjectID, recordIDs []primitive.ObjectID, flag Flag) (int64, error) {
	if !flag.valid() {
		return 0, fmt.Errorf("unknown notification flag %q", flag)
	}
	if len(recordIDs) == 0 {
		return 0, nil
	}
	res, err := s.c.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": recordIDs}, "target_user_id": userID, string(flag): false},
		bson.M{"$set": bson.M{string(flag): true}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// MarkAll sets a flag true on all of a user's records that lack it.
func (s *Store) MarkAll(ctx context.Context, userID primitive.ObjectID, flag Flag) (int64, error) {
	if !flag.valid() {
		return 0, fmt.Errorf("unknown notification flag %q", flag)
	}
	res, err := s.c.UpdateMany(ctx,
		bson.M{"target_user_id": userID, string(flag): false},
		bson.M{"$set": bson.M{string(flag): true}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// MarkSegment sets page_viewed on the user's records whose classified
// display segment matches the page the user opened. Classification uses
// the same rules that drive display, so a record is flagged exactly when
// the user has seen the page it appears on. Returns how many records
// were flipped.
func (s *Store) MarkSegment(ctx context.Context, userID primitive.ObjectID, viewerRole models.Role, segment classify.Segment) (int64, error) {
	cur, err := s.c.Find(ctx,
		bson.M{"target_user_id": userID, "page_viewed": false},
		options.Find().SetProjection(bson.M{"_id": 1, "category": 1, "action": 1, "details": 1}))
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	var candidates []models.UserNotificationRecord
	if err := cur.All(ctx, &candidates); err != nil {
		return 0, err
	}

	var ids []primitive.ObjectID
	for _, rec := range candidates {
		if classify.SegmentFor(rec.Category, rec.Action, rec.Details, viewerRole) == segment {
			ids = append(ids, rec.ID)
		}
	}
	return s.MarkMany(ctx, userID, ids, FlagPageViewed)
}

// PurgeOlderThan removes notification records older than the cutoff.
func (s *Store) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"timestamp": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// pollInterval is how often the fallback path re-runs the snapshot query
// when change streams are unavailable.
const pollInterval = 2 * time.Second

// Subscribe delivers the user's full notification list (newest-first,
// all contexts) on every change to the user's records, starting with an
// immediate initial snapshot. It uses a change stream where the
// deployment supports one and falls back to polling on standalone
// servers. The returned cancel func stops delivery and closes the
// channel; delivery also stops when ctx is done.
func (s *Store) Subscribe(ctx context.Context, userID primitive.ObjectID, limit int64) (<-chan []models.UserNotificationRecord, func(), error) {
	snapshot := func(ctx context.Context) ([]models.UserNotificationRecord, error) {
		return s.ListAllForUser(ctx, userID, limit)
	}

	ctx, cancel := context.WithCancel(ctx)
	out := make(chan []models.UserNotificationRecord, 1)

	initial, err := snapshot(ctx)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	out <- initial

	match := bson.D{{Key: "$match", Value: bson.M{"fullDocument.target_user_id": userID}}}
	stream, err := s.c.Watch(ctx, mongo.Pipeline{match},
		options.ChangeStream().SetFullDocument(options.UpdateLookup))
	if err != nil {
		if !isChangeStreamUnsupported(err) {
			cancel()
			return nil, nil, err
		}
		go s.pollLoop(ctx, out, snapshot)
		return out, cancel, nil
	}

	go s.streamLoop(ctx, stream, out, snapshot)
	return out, cancel, nil
}

func (s *Store) streamLoop(
	ctx context.Context,
	stream *mongo.ChangeStream,
	out chan []models.UserNotificationRecord,
	snapshot func(ctx context.Context) ([]models.UserNotificationRecord, error),
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

func (s *Store) pollLoop(
	ctx context.Context,
	out chan []models.UserNotificationRecord,
	snapshot func(ctx context.Context) ([]models.UserNotificationRecord, error),
) {
	defer close(out)

	t := time.NewTicker(pollInterval)
	defer t.Stop()

	var lastFingerprint string
	first := true
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
		fp := fingerprint(snap)
		if !first && fp == lastFingerprint {
			continue
		}
		first = false
		lastFingerprint = fp
		deliver(ctx, out, snap)
	}
}

// fingerprint summarizes a snapshot so the poll loop only delivers on
// change. Flag flips matter here, not just membership, so each record
// contributes its id and flag state.
func fingerprint(snap []models.UserNotificationRecord) string {
	var b strings.Builder
	for _, rec := range snap {
		b.WriteString(rec.ID.Hex())
		for _, f := range []bool{rec.ShowSnackbar, rec.SnackbarShown, rec.Read, rec.PageViewed} {
			if f {
				b.WriteByte('1')
			} else {
				b.WriteByte('0')
			}
		}
		b.WriteByte(';')
	}
	return b.String()
}

// deliver sends a snapshot, dropping the stale buffered one if the
// receiver has fallen behind. Subscribers always see the latest state.
// out must be bidirectional: draining the stale snapshot is a receive.
func deliver(ctx context.Context, out chan []models.UserNotificationRecord, snap []models.UserNotificationRecord) {
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
