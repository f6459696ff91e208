// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureProfiles(ctx, db); err != nil {
		problems = append(problems, "profiles: "+err.Error())
	}
	if err := ensureThesisGroups(ctx, db); err != nil {
		problems = append(problems, "thesis_groups: "+err.Error())
	}
	if err := ensureGroupAudits(ctx, db); err != nil {
		problems = append(problems, "group_audits: "+err.Error())
	}
	if err := ensureUserAudits(ctx, db); err != nil {
		problems = append(problems, "user_audits: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func sameBoolPtr(a, b *bool) bool {
	av := a != nil && *a
	bv := b != nil && *b
	return av == bv
}

// Best-effort duplicate-detector (works cross-vendors)
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 { // E11000 duplicate key error index
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, desired []mongo.IndexModel) error {
	existing := map[string]existingIndex{} // key signature -> index
	cur, err := coll.Indexes().List(ctx)
	if err == nil {
		defer cur.Close(ctx)
		for cur.Next(ctx) {
			var idx existingIndex
			if err := cur.Decode(&idx); err != nil {
				zap.L().Warn("failed to decode existing index",
					zap.String("collection", coll.Name()),
					zap.Error(err))
				continue
			}
			existing[keySig(idx.Key)] = idx
		}
	}

	var errs []string
	for _, m := range desired {
		var desiredName string
		var desiredUnique *bool
		if m.Options != nil {
			if m.Options.Name != nil {
				desiredName = *m.Options.Name
			}
			desiredUnique = m.Options.Unique
		}
		desiredSig := keySig(m.Keys.(bson.D))
		start := time.Now()

		if ex, ok := existing[desiredSig]; ok {
			if sameBoolPtr(desiredUnique, ex.Unique) && (desiredName == "" || ex.Name == desiredName) {
				zap.L().Info("reusing existing index",
					zap.String("collection", coll.Name()),
					zap.String("name", ex.Name),
					zap.String("keys", desiredSig))
				continue
			}
			// Name or options differ for the same key pattern: drop & recreate.
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), desiredName, err))
				continue
			}
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if isDuplicateKeyErr(err) && desiredUnique != nil && *desiredUnique {
				errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present)", coll.Name(), desiredName))
			} else {
				errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), desiredName, err))
			}
			continue
		}
		zap.L().Info("index ensured",
			zap.String("collection", coll.Name()),
			zap.String("name", desiredName),
			zap.String("keys", desiredSig),
			zap.Bool("unique", desiredUnique != nil && *desiredUnique),
			zap.String("took", time.Since(start).String()))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                             */
/* -------------------------------------------------------------------------- */

func ensureProfiles(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("profiles")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Email must be unique across all profiles
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_profiles_email"),
		},

		// Role-holder lookups for fan-out (admins, moderators)
		{
			Keys:    bson.D{{Key: "role", Value: 1}},
			Options: options.Index().SetName("idx_profiles_role"),
		},
	})
}

func ensureThesisGroups(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("thesis_groups")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Path bucket listings: year -> department -> course
		{
			Keys: bson.D{
				{Key: "year", Value: 1},
				{Key: "department", Value: 1},
				{Key: "course", Value: 1},
			},
			Options: options.Index().SetName("idx_groups_year_dept_course"),
		},

		// "my groups" lookups
		{
			Keys:    bson.D{{Key: "leader_id", Value: 1}},
			Options: options.Index().SetName("idx_groups_leader"),
		},
		{
			Keys:    bson.D{{Key: "member_ids", Value: 1}},
			Options: options.Index().SetName("idx_groups_members"),
		},
	})
}

func ensureGroupAudits(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("group_audits")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Ledger listing: one group's history newest-first
		{
			Keys: bson.D{
				{Key: "group_id", Value: 1},
				{Key: "timestamp", Value: -1},
			},
			Options: options.Index().SetName("idx_group_audits_group_ts"),
		},

		// Retried appends must land on the original record. Sparse so
		// records without a key don't collide on the missing value.
		{
			Keys: bson.D{
				{Key: "group_id", Value: 1},
				{Key: "idempotency_key", Value: 1},
			},
			Options: options.Index().SetUnique(true).SetSparse(true).SetName("uniq_group_audits_idem"),
		},

		// Path-wide listings (departmental/course scopes)
		{
			Keys: bson.D{
				{Key: "year", Value: 1},
				{Key: "department", Value: 1},
				{Key: "course", Value: 1},
				{Key: "timestamp", Value: -1},
			},
			Options: options.Index().SetName("idx_group_audits_path_ts"),
		},

		// Retention purge scans by age
		{
			Keys:    bson.D{{Key: "timestamp", Value: 1}},
			Options: options.Index().SetName("idx_group_audits_ts"),
		},
	})
}

func ensureUserAudits(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("user_audits")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// The cross-group "my notifications" query: explicit secondary
		// index instead of scanning group-scoped records
		{
			Keys: bson.D{
				{Key: "target_user_id", Value: 1},
				{Key: "timestamp", Value: -1},
			},
			Options: options.Index().SetName("idx_user_audits_target_ts"),
		},

		// Unread badge counts
		{
			Keys: bson.D{
				{Key: "target_user_id", Value: 1},
				{Key: "read", Value: 1},
			},
			Options: options.Index().SetName("idx_user_audits_target_read"),
		},

		// Level-scoped listings
		{
			Keys: bson.D{
				{Key: "target_user_id", Value: 1},
				{Key: "year", Value: 1},
				{Key: "level", Value: 1},
			},
			Options: options.Index().SetName("idx_user_audits_target_year_level"),
		},

		// Retention purge scans by age
		{
			Keys:    bson.D{{Key: "timestamp", Value: 1}},
			Options: options.Index().SetName("idx_user_audits_ts"),
		},
	})
}
