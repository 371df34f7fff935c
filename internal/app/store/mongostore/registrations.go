package mongostore

import (
	"context"

	"github.com/dalemusser/groupbook/internal/app/store"
	"github.com/dalemusser/groupbook/internal/domain/capacity"
	"github.com/dalemusser/groupbook/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (s *Store) GetRegistration(ctx context.Context, id int64) (models.Registration, error) {
	var r models.Registration
	err := s.regs.FindOne(ctx, bson.M{"_id": id}).Decode(&r)
	return r, mapErr(err)
}

func (s *Store) FindRegistration(ctx context.Context, visitorID, groupID int64) (models.Registration, error) {
	var r models.Registration
	err := s.regs.FindOne(ctx, bson.M{"visitor_id": visitorID, "group_id": groupID}).Decode(&r)
	return r, mapErr(err)
}

func (s *Store) ListRegistrations(ctx context.Context, f store.RegistrationFilter, p store.Page) ([]models.Registration, error) {
	filter := bson.M{}
	if f.VisitorID != nil {
		filter["visitor_id"] = *f.VisitorID
	}
	if f.GroupID != nil {
		filter["group_id"] = *f.GroupID
	}
	cur, err := s.regs.Find(ctx, filter, findOpts(p, byID))
	return decodeAll[models.Registration](ctx, cur, err)
}

func (s *Store) RegisteredGroupIDs(ctx context.Context, visitorID int64) ([]int64, error) {
	cur, err := s.regs.Find(ctx,
		bson.M{"visitor_id": visitorID},
		options.Find().SetProjection(bson.M{"group_id": 1}).SetSort(bson.D{{Key: "group_id", Value: 1}}),
	)
	rows, err := decodeAll[struct {
		GroupID int64 `bson:"group_id"`
	}](ctx, cur, err)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(rows))
	for i, r := range rows {
		ids[i] = r.GroupID
	}
	return ids, nil
}

func (s *Store) Occupancy(ctx context.Context, groupIDs []int64) (map[int64]capacity.Counts, error) {
	return s.occupancy(ctx, bson.M{"group_id": bson.M{"$in": groupIDs}})
}

// occupancy counts the registrations matching match, grouped by group_id
// and split by the visitor's current gender.
func (s *Store) occupancy(ctx context.Context, match bson.M) (map[int64]capacity.Counts, error) {
	genderIs := func(g string) bson.M {
		return bson.M{"$sum": bson.M{"$cond": bson.A{bson.M{"$eq": bson.A{"$gender", g}}, 1, 0}}}
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$lookup", Value: bson.M{
			"from":         UsersColl,
			"localField":   "visitor_id",
			"foreignField": "_id",
			"as":           "visitor",
		}}},
		{{Key: "$project", Value: bson.M{
			"group_id": 1,
			"gender":   bson.M{"$ifNull": bson.A{bson.M{"$arrayElemAt": bson.A{"$visitor.gender", 0}}, ""}},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":    "$group_id",
			"total":  bson.M{"$sum": 1},
			"male":   genderIs(models.GenderMale),
			"female": genderIs(models.GenderFemale),
		}}},
	}

	cur, err := s.regs.Aggregate(ctx, pipeline)
	rows, err := decodeAll[struct {
		GroupID int64 `bson:"_id"`
		Total   int   `bson:"total"`
		Male    int   `bson:"male"`
		Female  int   `bson:"female"`
	}](ctx, cur, err)
	if err != nil {
		return nil, err
	}

	out := make(map[int64]capacity.Counts, len(rows))
	for _, r := range rows {
		out[r.GroupID] = capacity.Counts{Total: r.Total, Male: r.Male, Female: r.Female}
	}
	return out, nil
}

func (s *Store) SetAttended(ctx context.Context, id int64, attended bool) (models.Registration, error) {
	var r models.Registration
	err := s.regs.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"attended": attended, "updated_at": s.now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&r)
	return r, mapErr(err)
}
