package mongodb

import (
	"context"
	"errors"

	"github.com/geocoder89/placeshub/internal/domain/user"
	"github.com/geocoder89/placeshub/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UsersRepo struct {
	col  *mongo.Collection
	prom *observability.Prom
}

func NewUsersRepo(database *mongo.Database, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{
		col:  database.Collection("users"),
		prom: prom,
	}
}

func (r *UsersRepo) GetByID(ctx context.Context, id primitive.ObjectID) (user.User, error) {
	var u user.User

	err := r.prom.ObserveDB("users.get_by_id", func() error {
		return r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	})

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User

	err := r.prom.ObserveDB("users.get_by_email", func() error {
		return r.col.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	})

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}

	if u.Places == nil {
		u.Places = []primitive.ObjectID{}
	}

	err := r.prom.ObserveDB("users.create", func() error {
		_, e := r.col.InsertOne(ctx, u)
		return e
	})

	if err != nil {
		// the unique email index rejects the insert
		if mongo.IsDuplicateKeyError(err) {
			return user.User{}, user.ErrEmailTaken
		}

		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	var out []user.User

	err := r.prom.ObserveDB("users.list", func() error {
		opts := options.Find().SetProjection(bson.M{"password": 0})

		cursor, e := r.col.Find(ctx, bson.M{}, opts)

		if e != nil {
			return e
		}

		defer cursor.Close(ctx)

		return cursor.All(ctx, &out)
	})

	if err != nil {
		return nil, err
	}

	if out == nil {
		out = []user.User{}
	}

	return out, nil
}

func (r *UsersRepo) AppendPlace(ctx context.Context, userID, placeID primitive.ObjectID) error {
	return r.prom.ObserveDB("users.append_place", func() error {
		res, err := r.col.UpdateOne(ctx,
			bson.M{"_id": userID},
			bson.M{"$push": bson.M{"places": placeID}},
		)

		if err != nil {
			return err
		}

		if res.MatchedCount == 0 {
			return user.ErrNotFound
		}

		return nil
	})
}

func (r *UsersRepo) RemovePlace(ctx context.Context, userID, placeID primitive.ObjectID) error {
	return r.prom.ObserveDB("users.remove_place", func() error {
		res, err := r.col.UpdateOne(ctx,
			bson.M{"_id": userID},
			bson.M{"$pull": bson.M{"places": placeID}},
		)

		if err != nil {
			return err
		}

		if res.MatchedCount == 0 {
			return user.ErrNotFound
		}

		return nil
	})
}
