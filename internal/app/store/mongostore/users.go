package mongostore

import (
	"context"

	"github.com/dalemusser/groupbook/internal/app/store"
	"github.com/dalemusser/groupbook/internal/app/system/normalize"
	"github.com/dalemusser/groupbook/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateUser inserts u after normalizing its email, name, and gender.
func (s *Store) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	u.Email = normalize.Email(u.Email)
	u.FullName = normalize.Name(u.FullName)
	u.FullNameCI = text.Fold(u.FullName)
	u.Role = normalize.Role(u.Role)
	u.Gender = normalize.Gender(u.Gender)
	now := s.now()
	u.CreatedAt, u.UpdatedAt = now, now

	id, err := s.nextID(ctx, UsersColl)
	if err != nil {
		return models.User{}, err
	}
	u.ID = id

	if _, err := s.users.InsertOne(ctx, u); err != nil {
		return models.User{}, mapErr(err)
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (models.User, error) {
	var u models.User
	err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	return u, mapErr(err)
}

// GetUserByEmail looks up a user by case-insensitive email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := s.users.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u)
	return u, mapErr(err)
}

func (s *Store) ListUsers(ctx context.Context, f store.UserFilter, p store.Page) ([]models.User, error) {
	filter := bson.M{}
	if f.Role != "" {
		filter["role"] = f.Role
	}
	cur, err := s.users.Find(ctx, filter, findOpts(p, byID))
	return decodeAll[models.User](ctx, cur, err)
}

func (s *Store) UpdateUser(ctx context.Context, id int64, patch store.UserPatch) (models.User, error) {
	set := bson.M{"updated_at": s.now()}
	if patch.FullName != nil {
		name := normalize.Name(*patch.FullName)
		set["full_name"] = name
		set["full_name_ci"] = text.Fold(name)
	}
	if patch.Email != nil {
		set["email"] = normalize.Email(*patch.Email)
	}
	if patch.HashedPassword != nil {
		set["hashed_password"] = *patch.HashedPassword
	}
	if patch.Role != nil {
		set["role"] = normalize.Role(*patch.Role)
	}
	if patch.Gender != nil {
		set["gender"] = normalize.Gender(*patch.Gender)
	}
	if patch.IsActive != nil {
		set["is_active"] = *patch.IsActive
	}

	var u models.User
	err := s.users.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	return u, mapErr(err)
}
