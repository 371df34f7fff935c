// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/groupbook/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	v := ensurer{db: db, log: logger}
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if _, err := v.ensureCollection(ctx, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := v.setValidator(ctx, coll, schema); err != nil {
			// DocumentDB or other deployments may not support collMod/validators.
			if isNoSuchCommand(err) || isNotImplemented(err) {
				logger.Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure("users", usersSchema())
	ensure("groups", groupsSchema())
	ensure("registrations", registrationsSchema())
	ensure("instructor_preferences", preferencesSchema())
	ensure("instructor_schedules", schedulesSchema())

	// Id sequences; no validator.
	ensure("counters", nil)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

type ensurer struct {
	db  *mongo.Database
	log *zap.Logger
}

/* ---------------------- collection helpers & logging ---------------------- */

// collectionExists returns true when <name> already exists.
// Uses ListCollectionNames to avoid "created collection" log when it didn't.
func (v ensurer) collectionExists(ctx context.Context, name string) (bool, error) {
	names, err := v.db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func (v ensurer) ensureCollection(ctx context.Context, name string) (created bool, err error) {
	exists, listErr := v.collectionExists(ctx, name)
	if listErr == nil && exists {
		v.log.Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := v.db.CreateCollection(ctx, name); err != nil {
		// NamespaceExists / already exists is fine (race or prior run).
		if isNamespaceExistsErr(err) {
			v.log.Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		v.log.Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	v.log.Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func (v ensurer) setValidator(ctx context.Context, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := v.db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	v.log.Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

var (
	nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}
	integer  = bson.A{"int", "long"}
	clock    = bson.M{"bsonType": "string", "pattern": "^([01][0-9]|2[0-3]):[0-5][0-9]$"}
)

func enum(values []string, extra ...string) bson.M {
	a := bson.A{}
	for _, v := range values {
		a = append(a, v)
	}
	for _, v := range extra {
		a = append(a, v)
	}
	return bson.M{"enum": a}
}

func usersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"_id", "email", "role", "is_active"},
			"properties": bson.M{
				"_id":             bson.M{"bsonType": integer},
				"email":           nonBlank,
				"full_name":       bson.M{"bsonType": "string"},
				"full_name_ci":    bson.M{"bsonType": "string"},
				"hashed_password": bson.M{"bsonType": "string"},
				"role":            enum(models.Roles),
				"gender":          enum(models.Genders, ""),
				"is_active":       bson.M{"bsonType": "bool"},
			},
		},
	}
}

func groupsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"_id", "name", "capacity", "max_male", "max_female", "start_time", "end_time"},
			"properties": bson.M{
				"_id":           bson.M{"bsonType": integer},
				"name":          nonBlank,
				"name_ci":       bson.M{"bsonType": "string"},
				"description":   bson.M{"bsonType": "string"},
				"capacity":      bson.M{"bsonType": integer, "minimum": 1},
				"max_male":      bson.M{"bsonType": integer, "minimum": 0},
				"max_female":    bson.M{"bsonType": integer, "minimum": 0},
				"start_time":    bson.M{"bsonType": "date"},
				"end_time":      bson.M{"bsonType": "date"},
				"instructor_id": bson.M{"bsonType": bson.A{"int", "long", "null"}},
				"admit_seq":     bson.M{"bsonType": integer},
			},
		},
	}
}

func registrationsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"_id", "visitor_id", "group_id", "attended"},
			"properties": bson.M{
				"_id":        bson.M{"bsonType": integer},
				"visitor_id": bson.M{"bsonType": integer},
				"group_id":   bson.M{"bsonType": integer},
				"attended":   bson.M{"bsonType": "bool"},
			},
		},
	}
}

func preferencesSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"_id", "instructor_id", "day_of_week", "start_time", "end_time"},
			"properties": bson.M{
				"_id":           bson.M{"bsonType": integer},
				"instructor_id": bson.M{"bsonType": integer},
				"day_of_week":   enum(models.DaysOfWeek),
				"start_time":    clock,
				"end_time":      clock,
			},
		},
	}
}

func schedulesSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"_id", "instructor_id", "start_time", "end_time"},
			"properties": bson.M{
				"_id":           bson.M{"bsonType": integer},
				"instructor_id": bson.M{"bsonType": integer},
				"start_time":    bson.M{"bsonType": "date"},
				"end_time":      bson.M{"bsonType": "date"},
			},
		},
	}
}
