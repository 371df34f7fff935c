package mongostore

import (
	"context"
	"time"

	"github.com/dalemusser/groupbook/internal/app/store"
	"github.com/dalemusser/groupbook/internal/app/system/normalize"
	"github.com/dalemusser/groupbook/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var byStart = bson.D{{Key: "start_time", Value: 1}, {Key: "_id", Value: 1}}

func (s *Store) CreateGroup(ctx context.Context, g models.Group) (models.Group, error) {
	g.Name = normalize.Name(g.Name)
	g.NameCI = text.Fold(g.Name)
	g.StartTime = g.StartTime.UTC().Truncate(time.Millisecond)
	g.EndTime = g.EndTime.UTC().Truncate(time.Millisecond)
	now := s.now()
	g.CreatedAt, g.UpdatedAt = now, now

	id, err := s.nextID(ctx, GroupsColl)
	if err != nil {
		return models.Group{}, err
	}
	g.ID = id

	if _, err := s.groups.InsertOne(ctx, g); err != nil {
		return models.Group{}, mapErr(err)
	}
	return g, nil
}

func (s *Store) GetGroup(ctx context.Context, id int64) (models.Group, error) {
	var g models.Group
	err := s.groups.FindOne(ctx, bson.M{"_id": id}).Decode(&g)
	return g, mapErr(err)
}

// ListGroups returns groups ordered by start_time, then id.
func (s *Store) ListGroups(ctx context.Context, f store.GroupFilter, p store.Page) ([]models.Group, error) {
	filter := bson.M{}
	if f.InstructorID != nil {
		filter["instructor_id"] = *f.InstructorID
	}
	if f.StartsAfter != nil {
		filter["start_time"] = bson.M{"$gt": *f.StartsAfter}
	}
	if len(f.ExcludeIDs) > 0 {
		filter["_id"] = bson.M{"$nin": f.ExcludeIDs}
	}
	cur, err := s.groups.Find(ctx, filter, findOpts(p, byStart))
	return decodeAll[models.Group](ctx, cur, err)
}

// UpdateGroup replaces the editable fields of the group identified by g.ID.
// The instructor assignment is changed only through SetInstructor.
func (s *Store) UpdateGroup(ctx context.Context, g models.Group) (models.Group, error) {
	name := normalize.Name(g.Name)
	set := bson.M{
		"name":        name,
		"name_ci":     text.Fold(name),
		"description": g.Description,
		"capacity":    g.Capacity,
		"max_male":    g.MaxMale,
		"max_female":  g.MaxFemale,
		"start_time":  g.StartTime.UTC(),
		"end_time":    g.EndTime.UTC(),
		"updated_at":  s.now(),
	}
	return s.updateGroup(ctx, g.ID, bson.M{"$set": set})
}

// SetInstructor assigns (or with nil, clears) the group's instructor.
func (s *Store) SetInstructor(ctx context.Context, groupID int64, instructorID *int64) (models.Group, error) {
	update := bson.M{"$set": bson.M{"updated_at": s.now()}}
	if instructorID != nil {
		update["$set"].(bson.M)["instructor_id"] = *instructorID
	} else {
		update["$unset"] = bson.M{"instructor_id": ""}
	}
	return s.updateGroup(ctx, groupID, update)
}

func (s *Store) updateGroup(ctx context.Context, id int64, update bson.M) (models.Group, error) {
	var g models.Group
	err := s.groups.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&g)
	return g, mapErr(err)
}
