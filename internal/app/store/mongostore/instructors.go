package mongostore

import (
	"context"
	"time"

	"github.com/dalemusser/groupbook/internal/app/store"
	"github.com/dalemusser/groupbook/internal/app/system/normalize"
	"github.com/dalemusser/groupbook/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func instructorFilter(f store.InstructorFilter) bson.M {
	filter := bson.M{}
	if f.InstructorID != nil {
		filter["instructor_id"] = *f.InstructorID
	}
	return filter
}

func (s *Store) CreatePreference(ctx context.Context, p models.InstructorPreference) (models.InstructorPreference, error) {
	p.DayOfWeek = normalize.Day(p.DayOfWeek)
	now := s.now()
	p.CreatedAt, p.UpdatedAt = now, now

	id, err := s.nextID(ctx, PreferencesColl)
	if err != nil {
		return models.InstructorPreference{}, err
	}
	p.ID = id

	if _, err := s.prefs.InsertOne(ctx, p); err != nil {
		return models.InstructorPreference{}, mapErr(err)
	}
	return p, nil
}

func (s *Store) GetPreference(ctx context.Context, id int64) (models.InstructorPreference, error) {
	var p models.InstructorPreference
	err := s.prefs.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	return p, mapErr(err)
}

func (s *Store) ListPreferences(ctx context.Context, f store.InstructorFilter, pg store.Page) ([]models.InstructorPreference, error) {
	cur, err := s.prefs.Find(ctx, instructorFilter(f), findOpts(pg, byID))
	return decodeAll[models.InstructorPreference](ctx, cur, err)
}

// UpdatePreference replaces the window of preference p.ID. The owning
// instructor never changes.
func (s *Store) UpdatePreference(ctx context.Context, p models.InstructorPreference) (models.InstructorPreference, error) {
	var out models.InstructorPreference
	err := s.prefs.FindOneAndUpdate(ctx,
		bson.M{"_id": p.ID},
		bson.M{"$set": bson.M{
			"day_of_week": normalize.Day(p.DayOfWeek),
			"start_time":  p.StartTime,
			"end_time":    p.EndTime,
			"updated_at":  s.now(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	return out, mapErr(err)
}

func (s *Store) CreateSchedule(ctx context.Context, sch models.InstructorSchedule) (models.InstructorSchedule, error) {
	sch.StartTime = sch.StartTime.UTC().Truncate(time.Millisecond)
	sch.EndTime = sch.EndTime.UTC().Truncate(time.Millisecond)
	now := s.now()
	sch.CreatedAt, sch.UpdatedAt = now, now

	id, err := s.nextID(ctx, SchedulesColl)
	if err != nil {
		return models.InstructorSchedule{}, err
	}
	sch.ID = id

	if _, err := s.scheds.InsertOne(ctx, sch); err != nil {
		return models.InstructorSchedule{}, mapErr(err)
	}
	return sch, nil
}

func (s *Store) GetSchedule(ctx context.Context, id int64) (models.InstructorSchedule, error) {
	var sch models.InstructorSchedule
	err := s.scheds.FindOne(ctx, bson.M{"_id": id}).Decode(&sch)
	return sch, mapErr(err)
}

// ListSchedules returns schedules ordered by start_time, then id.
func (s *Store) ListSchedules(ctx context.Context, f store.InstructorFilter, pg store.Page) ([]models.InstructorSchedule, error) {
	cur, err := s.scheds.Find(ctx, instructorFilter(f), findOpts(pg, byStart))
	return decodeAll[models.InstructorSchedule](ctx, cur, err)
}

func (s *Store) UpdateSchedule(ctx context.Context, sch models.InstructorSchedule) (models.InstructorSchedule, error) {
	var out models.InstructorSchedule
	err := s.scheds.FindOneAndUpdate(ctx,
		bson.M{"_id": sch.ID},
		bson.M{"$set": bson.M{
			"start_time": sch.StartTime.UTC(),
			"end_time":   sch.EndTime.UTC(),
			"updated_at": s.now(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	return out, mapErr(err)
}
