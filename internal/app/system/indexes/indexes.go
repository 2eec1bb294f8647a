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
EnsureAll is called at startup (and by testutil for every test database).
Each ensure* function is idempotent. Errors are aggregated so every problem
is visible at once and startup can fail fast.

The unique indexes here carry correctness: course slugs are unique, and
there is at most one progress document per (user, course).
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureCourses(ctx, db); err != nil {
		problems = append(problems, "courses: "+err.Error())
	}
	if err := ensureCompleteds(ctx, db); err != nil {
		problems = append(problems, "completeds: "+err.Error())
	}
	if err := ensureCompletedQuestions(ctx, db); err != nil {
		problems = append(problems, "completed_questions: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func ensureCourses(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("courses"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetName("uniq_courses_slug").SetUnique(true),
		},
		{
			// instructor dashboard, newest first
			Keys:    bson.D{{Key: "instructor", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_courses_instructor_created"),
		},
		{
			Keys:    bson.D{{Key: "published", Value: 1}},
			Options: options.Index().SetName("idx_courses_published"),
		},
	})
}

func ensureCompleteds(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("completeds"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user", Value: 1}, {Key: "course", Value: 1}},
			Options: options.Index().SetName("uniq_completeds_user_course").SetUnique(true),
		},
	})
}

func ensureCompletedQuestions(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("completed_questions"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user", Value: 1}, {Key: "course", Value: 1}},
			Options: options.Index().SetName("uniq_completed_questions_user_course").SetUnique(true),
		},
	})
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

func boolVal(p *bool) bool {
	return p != nil && *p
}

func isDuplicateKeyErr(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}

// listExisting maps key signature -> index for coll.
func listExisting(ctx context.Context, coll *mongo.Collection) (map[string]existingIndex, error) {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	existing := map[string]existingIndex{}
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
	return existing, cur.Err()
}

// ensureIndexSet creates each desired index unless one with the same keys,
// uniqueness and name already exists. A same-keys index with a different
// name or uniqueness is dropped and recreated.
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	existing, err := listExisting(ctx, coll)
	if err != nil {
		// listIndexes fails with NamespaceNotFound before the collection exists.
		zap.L().Debug("list indexes failed; treating as empty",
			zap.String("collection", coll.Name()),
			zap.Error(err))
		existing = map[string]existingIndex{}
	}

	var errs []string
	for _, m := range models {
		desiredName := ""
		desiredUnique := false
		if m.Options != nil {
			if m.Options.Name != nil {
				desiredName = *m.Options.Name
			}
			desiredUnique = boolVal(m.Options.Unique)
		}
		desiredSig := keySig(m.Keys.(bson.D))
		start := time.Now()

		if ex, ok := existing[desiredSig]; ok {
			if boolVal(ex.Unique) == desiredUnique && (desiredName == "" || ex.Name == desiredName) {
				zap.L().Info("reusing existing index",
					zap.String("collection", coll.Name()),
					zap.String("name", ex.Name),
					zap.String("keys", desiredSig),
					zap.Bool("unique", desiredUnique))
				continue
			}
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				zap.L().Warn("drop existing index failed",
					zap.String("collection", coll.Name()),
					zap.String("name", ex.Name),
					zap.Error(err))
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), desiredName, err))
				continue
			}
		}

		created, err := coll.Indexes().CreateOne(ctx, m)
		if err != nil {
			if isDuplicateKeyErr(err) && desiredUnique {
				errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present on %s)",
					coll.Name(), desiredName, desiredSig))
			} else {
				errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), desiredName, err))
			}
			zap.L().Warn("index ensure failed",
				zap.String("collection", coll.Name()),
				zap.String("name", desiredName),
				zap.String("keys", desiredSig),
				zap.Error(err))
			continue
		}
		zap.L().Info("index ensured",
			zap.String("collection", coll.Name()),
			zap.String("name", created),
			zap.String("keys", desiredSig),
			zap.Bool("unique", desiredUnique),
			zap.String("took", time.Since(start).String()))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
