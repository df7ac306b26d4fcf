package memory

import (
	"context"

	"github.com/geocoder89/placeshub/internal/domain/place"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PlacesRepo struct {
	store *Store
}

func NewPlacesRepo(store *Store) *PlacesRepo {
	return &PlacesRepo{store: store}
}

func (r *PlacesRepo) GetByID(ctx context.Context, id primitive.ObjectID) (place.Place, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	p, ok := r.store.places[id]

	if !ok {
		return place.Place{}, place.ErrNotFound
	}

	return p, nil
}

func (r *PlacesRepo) ListByCreator(ctx context.Context, creator primitive.ObjectID) ([]place.Place, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	out := []place.Place{}

	for _, p := range r.store.places {
		if p.Creator == creator {
			out = append(out, p)
		}
	}

	return out, nil
}

func (r *PlacesRepo) Create(ctx context.Context, p place.Place) (place.Place, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}

	r.store.places[p.ID] = p

	return p, nil
}

func (r *PlacesRepo) Update(ctx context.Context, id primitive.ObjectID, req place.UpdatePlaceRequest) (place.Place, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	p, ok := r.store.places[id]

	if !ok {
		return place.Place{}, place.ErrNotFound
	}

	p.Title = req.Title
	p.Description = req.Description
	r.store.places[id] = p

	return p, nil
}

func (r *PlacesRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	_, ok := r.store.places[id]

	if !ok {
		return place.ErrNotFound
	}

	delete(r.store.places, id)

	return nil
}
