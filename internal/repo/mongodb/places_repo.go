package mongodb

import (
	"context"
	"errors"

	"github.com/geocoder89/placeshub/internal/domain/place"
	"github.com/geocoder89/placeshub/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type PlacesRepo struct {
	col  *mongo.Collection
	prom *observability.Prom
}

func NewPlacesRepo(database *mongo.Database, prom *observability.Prom) *PlacesRepo {
	return &PlacesRepo{
		col:  database.Collection("places"),
		prom: prom,
	}
}

func (r *PlacesRepo) GetByID(ctx context.Context, id primitive.ObjectID) (place.Place, error) {
	var p place.Place

	err := r.prom.ObserveDB("places.get_by_id", func() error {
		return r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	})

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return place.Place{}, place.ErrNotFound
		}

		return place.Place{}, err
	}

	return p, nil
}

func (r *PlacesRepo) ListByCreator(ctx context.Context, creator primitive.ObjectID) ([]place.Place, error) {
	var out []place.Place

	err := r.prom.ObserveDB("places.list_by_creator", func() error {
		cursor, e := r.col.Find(ctx, bson.M{"creator": creator})

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
		out = []place.Place{}
	}

	return out, nil
}

func (r *PlacesRepo) Create(ctx context.Context, p place.Place) (place.Place, error) {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}

	err := r.prom.ObserveDB("places.create", func() error {
		_, e := r.col.InsertOne(ctx, p)
		return e
	})

	if err != nil {
		return place.Place{}, err
	}

	return p, nil
}

// Update touches title and description only. Everything else on a place
// is immutable once created.
func (r *PlacesRepo) Update(ctx context.Context, id primitive.ObjectID, req place.UpdatePlaceRequest) (place.Place, error) {
	var p place.Place

	err := r.prom.ObserveDB("places.update", func() error {
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

		return r.col.FindOneAndUpdate(ctx,
			bson.M{"_id": id},
			bson.M{"$set": bson.M{
				"title":       req.Title,
				"description": req.Description,
			}},
			opts,
		).Decode(&p)
	})

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return place.Place{}, place.ErrNotFound
		}

		return place.Place{}, err
	}

	return p, nil
}

func (r *PlacesRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.prom.ObserveDB("places.delete", func() error {
		res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})

		if err != nil {
			return err
		}

		if res.DeletedCount == 0 {
			return place.ErrNotFound
		}

		return nil
	})
}
