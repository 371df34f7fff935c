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
EnsureAll is called at startup. Each collection's index set is reconciled
idempotently. Errors are aggregated so every problem is visible and startup
can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	var problems []string
	for _, set := range collectionSets() {
		r := reconciler{coll: db.Collection(set.collection), log: logger}
		if err := r.ensure(ctx, set.models); err != nil {
			problems = append(problems, set.collection+": "+err.Error())
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

type indexSet struct {
	collection string
	models     []mongo.IndexModel
}

func collectionSets() []indexSet {
	return []indexSet{
		{"users", []mongo.IndexModel{
			// Login looks users up by folded email; one account per address.
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_users_email"),
			},
			// Admin user lists filtered by role, stable id order.
			{
				Keys:    bson.D{{Key: "role", Value: 1}, {Key: "_id", Value: 1}},
				Options: options.Index().SetName("idx_users_role__id"),
			},
		}},
		{"groups", []mongo.IndexModel{
			// Availability scans and upcoming lists: start_time > now, ordered, id tiebreak.
			{
				Keys:    bson.D{{Key: "start_time", Value: 1}, {Key: "_id", Value: 1}},
				Options: options.Index().SetName("idx_groups_start__id"),
			},
			// Per-instructor listing.
			{
				Keys:    bson.D{{Key: "instructor_id", Value: 1}, {Key: "start_time", Value: 1}, {Key: "_id", Value: 1}},
				Options: options.Index().SetName("idx_groups_instructor_start__id"),
			},
		}},
		{"registrations", []mongo.IndexModel{
			// One registration per (visitor, group).
			{
				Keys:    bson.D{{Key: "visitor_id", Value: 1}, {Key: "group_id", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_reg_visitor_group"),
			},
			// Occupancy counts and rosters.
			{
				Keys:    bson.D{{Key: "group_id", Value: 1}, {Key: "_id", Value: 1}},
				Options: options.Index().SetName("idx_reg_group__id"),
			},
		}},
		{"instructor_preferences", []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "instructor_id", Value: 1}, {Key: "_id", Value: 1}},
				Options: options.Index().SetName("idx_prefs_instructor__id"),
			},
		}},
		{"instructor_schedules", []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "instructor_id", Value: 1}, {Key: "start_time", Value: 1}},
				Options: options.Index().SetName("idx_sched_instructor_start"),
			},
		}},
	}
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
	return (a != nil && *a) == (b != nil && *b)
}

// Best-effort duplicate-detector (works cross-vendors)
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
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

// Mongo/DocDB return IndexOptionsConflict when an index with the same keys
// already exists under a different name (or options differ).
func isOptionsConflictErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "IndexOptionsConflict")
}

type reconciler struct {
	coll *mongo.Collection
	log  *zap.Logger
}

type desired struct {
	model  mongo.IndexModel
	name   string
	unique *bool
	sig    string
}

func describe(m mongo.IndexModel) desired {
	d := desired{model: m, sig: keySig(m.Keys.(bson.D))}
	if m.Options != nil {
		if m.Options.Name != nil {
			d.name = *m.Options.Name
		}
		d.unique = m.Options.Unique
	}
	return d
}

func (d desired) isUnique() bool { return d.unique != nil && *d.unique }

func (r reconciler) existing(ctx context.Context) map[string]existingIndex {
	out := map[string]existingIndex{}
	cur, err := r.coll.Indexes().List(ctx)
	if err != nil {
		return out
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			r.log.Warn("failed to decode existing index",
				zap.String("collection", r.coll.Name()),
				zap.Error(err))
			continue
		}
		out[keySig(idx.Key)] = idx
	}
	return out
}

func (r reconciler) ensure(ctx context.Context, models []mongo.IndexModel) error {
	var errs []string
	for _, m := range models {
		if err := r.ensureOne(ctx, describe(m)); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func (r reconciler) ensureOne(ctx context.Context, d desired) error {
	start := time.Now()
	fields := func(extra ...zap.Field) []zap.Field {
		return append([]zap.Field{
			zap.String("collection", r.coll.Name()),
			zap.String("name", d.name),
			zap.String("keys", d.sig),
			zap.Bool("unique", d.isUnique()),
		}, extra...)
	}
	r.log.Info("ensuring index", fields()...)

	if ex, ok := r.existing(ctx)[d.sig]; ok {
		if sameBoolPtr(d.unique, ex.Unique) && (d.name == "" || ex.Name == d.name) {
			r.log.Info("reusing existing index", fields(zap.String("took", time.Since(start).String()))...)
			return nil
		}
		// Name or uniqueness differs: drop and recreate.
		return r.recreate(ctx, d, ex.Name, start, fields)
	}

	created, err := r.coll.Indexes().CreateOne(ctx, d.model)
	if err == nil {
		r.log.Info("index ensured", fields(
			zap.String("created_name", created),
			zap.String("took", time.Since(start).String()))...)
		return nil
	}
	if isOptionsConflictErr(err) {
		if ex, ok := r.existing(ctx)[d.sig]; ok {
			if sameBoolPtr(d.unique, ex.Unique) {
				r.log.Info("reusing existing index (post-conflict)", fields(zap.String("existing", ex.Name))...)
				return nil
			}
			return r.recreate(ctx, d, ex.Name, start, fields)
		}
	}
	r.log.Warn("index ensure failed", fields(zap.Error(err))...)
	return fmt.Errorf("%s(%s): %w", r.coll.Name(), d.name, err)
}

func (r reconciler) recreate(ctx context.Context, d desired, oldName string, start time.Time, fields func(...zap.Field) []zap.Field) error {
	if _, err := r.coll.Indexes().DropOne(ctx, oldName); err != nil {
		r.log.Warn("drop existing index failed", fields(zap.String("old_name", oldName), zap.Error(err))...)
		return fmt.Errorf("%s(%s): drop failed: %w", r.coll.Name(), d.name, err)
	}
	if _, err := r.coll.Indexes().CreateOne(ctx, d.model); err != nil {
		if isDuplicateKeyErr(err) && d.isUnique() {
			return fmt.Errorf("%s(%s): cannot create unique index (duplicates present)%s",
				r.coll.Name(), d.name, duplicateHint(r.coll.Name(), d.sig))
		}
		return fmt.Errorf("%s(%s): %w", r.coll.Name(), d.name, err)
	}
	r.log.Info("index dropped and recreated", fields(
		zap.String("old_name", oldName),
		zap.String("took", time.Since(start).String()))...)
	return nil
}

func duplicateHint(coll, sig string) string {
	switch {
	case coll == "users" && strings.Contains(sig, "email:1"):
		return ". Example finder:\n" +
			`db.users.aggregate([{ $group: { _id: "$email", n: { $sum: 1 } } }, { $match: { n: { $gt: 1 } } }])`
	case coll == "registrations":
		return ". Example finder:\n" +
			`db.registrations.aggregate([{ $group: { _id: { v: "$visitor_id", g: "$group_id" }, n: { $sum: 1 } } }, { $match: { n: { $gt: 1 } } }])`
	}
	return ""
}
