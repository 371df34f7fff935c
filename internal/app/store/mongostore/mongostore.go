// Package mongostore is the MongoDB implementation of store.Store.
//
// Records use int64 _id values drawn from per-collection sequences in the
// counters collection, so ids look the same as with the SQL backend.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dalemusser/groupbook/internal/app/store"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Collection names.
const (
	UsersColl         = "users"
	GroupsColl        = "groups"
	RegistrationsColl = "registrations"
	PreferencesColl   = "instructor_preferences"
	SchedulesColl     = "instructor_schedules"
	CountersColl      = "counters"
)

const (
	txUnknown int32 = iota
	txSupported
	txUnsupported
)

type Store struct {
	client *mongo.Client
	db     *mongo.Database

	users    *mongo.Collection
	groups   *mongo.Collection
	regs     *mongo.Collection
	prefs    *mongo.Collection
	scheds   *mongo.Collection
	counters *mongo.Collection

	log *zap.Logger
	now func() time.Time

	// txMode caches whether the server accepts multi-document transactions.
	txMode atomic.Int32
}

var _ store.Store = (*Store)(nil)

func New(client *mongo.Client, db *mongo.Database, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		client:   client,
		db:       db,
		users:    db.Collection(UsersColl),
		groups:   db.Collection(GroupsColl),
		regs:     db.Collection(RegistrationsColl),
		prefs:    db.Collection(PreferencesColl),
		scheds:   db.Collection(SchedulesColl),
		counters: db.Collection(CountersColl),
		log:      logger,
		// BSON dates carry millisecond precision.
		now: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close is a no-op; the client belongs to whoever connected it.
func (s *Store) Close(context.Context) error {
	return nil
}

// nextID returns the next value of the named sequence.
func (s *Store) nextID(ctx context.Context, seq string) (int64, error) {
	var doc struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	for attempt := 0; ; attempt++ {
		err := s.counters.FindOneAndUpdate(ctx,
			bson.M{"_id": seq},
			bson.M{"$inc": bson.M{"seq": int64(1)}},
			opts,
		).Decode(&doc)
		// Two first-time upserts can race on _id; the loser retries as an update.
		if err != nil && wafflemongo.IsDup(err) && attempt == 0 {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("next %s id: %w", seq, err)
		}
		return doc.Seq, nil
	}
}

// mapErr translates driver errors into store sentinels.
func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return store.ErrNotFound
	case wafflemongo.IsDup(err):
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	}
	return err
}

func findOpts(p store.Page, sort bson.D) *options.FindOptions {
	p = p.Normalize()
	return options.Find().SetSort(sort).SetSkip(int64(p.Offset)).SetLimit(int64(p.Limit))
}

func decodeAll[T any](ctx context.Context, cur *mongo.Cursor, err error) ([]T, error) {
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

var byID = bson.D{{Key: "_id", Value: 1}}
