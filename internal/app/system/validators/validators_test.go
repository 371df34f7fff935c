package validators_test

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/groupbook/internal/app/system/validators"
	"github.com/dalemusser/groupbook/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func setup(t *testing.T) (*mongo.Database, context.Context) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	t.Cleanup(cancel)

	if err := validators.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	return db, ctx
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db, ctx := setup(t)

	if err := validators.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesCollections(t *testing.T) {
	db, ctx := setup(t)

	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("ListCollectionNames failed: %v", err)
	}
	have := make(map[string]bool)
	for _, n := range names {
		have[n] = true
	}
	for _, want := range []string{"users", "groups", "registrations", "instructor_preferences", "instructor_schedules", "counters"} {
		if !have[want] {
			t.Errorf("expected collection %q to exist", want)
		}
	}
}

func TestValidators(t *testing.T) {
	start := time.Date(2031, 1, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		coll    string
		doc     bson.M
		wantErr bool
	}{
		{"valid user", "users", bson.M{"_id": int64(1), "email": "v@example.com", "role": "visitor", "gender": "female", "is_active": true}, false},
		{"user with unset gender", "users", bson.M{"_id": int64(2), "email": "i@example.com", "role": "instructor", "gender": "", "is_active": true}, false},
		{"user missing email", "users", bson.M{"_id": int64(3), "role": "visitor", "is_active": true}, true},
		{"user bad role", "users", bson.M{"_id": int64(4), "email": "x@example.com", "role": "member", "is_active": true}, true},
		{"user bad gender", "users", bson.M{"_id": int64(5), "email": "y@example.com", "role": "visitor", "gender": "x", "is_active": true}, true},

		{"valid group", "groups", bson.M{"_id": int64(1), "name": "Lanes", "capacity": 4, "max_male": 2, "max_female": 2, "start_time": start, "end_time": start.Add(time.Hour)}, false},
		{"group zero capacity", "groups", bson.M{"_id": int64(2), "name": "Lanes", "capacity": 0, "max_male": 0, "max_female": 0, "start_time": start, "end_time": start}, true},
		{"group negative limit", "groups", bson.M{"_id": int64(3), "name": "Lanes", "capacity": 2, "max_male": -1, "max_female": 0, "start_time": start, "end_time": start}, true},
		{"group blank name", "groups", bson.M{"_id": int64(4), "name": "  ", "capacity": 2, "max_male": 0, "max_female": 0, "start_time": start, "end_time": start}, true},

		{"valid registration", "registrations", bson.M{"_id": int64(1), "visitor_id": int64(1), "group_id": int64(1), "attended": false}, false},
		{"registration missing group", "registrations", bson.M{"_id": int64(2), "visitor_id": int64(1), "attended": false}, true},

		{"valid preference", "instructor_preferences", bson.M{"_id": int64(1), "instructor_id": int64(2), "day_of_week": "monday", "start_time": "08:00", "end_time": "09:30"}, false},
		{"preference bad clock", "instructor_preferences", bson.M{"_id": int64(2), "instructor_id": int64(2), "day_of_week": "monday", "start_time": "8am", "end_time": "09:30"}, true},
		{"preference bad day", "instructor_preferences", bson.M{"_id": int64(3), "instructor_id": int64(2), "day_of_week": "someday", "start_time": "08:00", "end_time": "09:30"}, true},

		{"valid schedule", "instructor_schedules", bson.M{"_id": int64(1), "instructor_id": int64(2), "start_time": start, "end_time": start.Add(time.Hour)}, false},
		{"schedule string time", "instructor_schedules", bson.M{"_id": int64(2), "instructor_id": int64(2), "start_time": "tomorrow", "end_time": start}, true},
	}

	db, ctx := setup(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := db.Collection(tt.coll).InsertOne(ctx, tt.doc)
			if tt.wantErr && err == nil {
				t.Errorf("expected validation error inserting %v", tt.doc)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("insert failed: %v", err)
			}
		})
	}
}

func TestCounters_NoValidator(t *testing.T) {
	db, ctx := setup(t)

	if _, err := db.Collection("counters").InsertOne(ctx, bson.M{"_id": "anything", "seq": "not a number"}); err != nil {
		t.Errorf("counters should accept any document: %v", err)
	}
}
