package service

import (
	"context"
	"log/slog"

	"github.com/geocoder89/placeshub/internal/domain/place"
	"github.com/geocoder89/placeshub/internal/domain/user"
	"github.com/geocoder89/placeshub/internal/geo"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PlacesRepo interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (place.Place, error)
	ListByCreator(ctx context.Context, creator primitive.ObjectID) ([]place.Place, error)
	Create(ctx context.Context, p place.Place) (place.Place, error)
	Update(ctx context.Context, id primitive.ObjectID, req place.UpdatePlaceRequest) (place.Place, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type placeOwnerRepo interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (user.User, error)
	AppendPlace(ctx context.Context, userID, placeID primitive.ObjectID) error
	RemovePlace(ctx context.Context, userID, placeID primitive.ObjectID) error
}

type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type ImageRemover interface {
	Remove(rel string) error
}

// PlaceService owns the Place<->User dual write: a place never exists
// without its id in the owner's places list, and never the other way
// around. Both mutations happen inside one transaction.
type PlaceService struct {
	places PlacesRepo
	users  placeOwnerRepo
	geo    geo.Resolver
	tx     TxRunner
	files  ImageRemover
	log    *slog.Logger
}

func NewPlaceService(places PlacesRepo, users placeOwnerRepo, resolver geo.Resolver, tx TxRunner, files ImageRemover, log *slog.Logger) *PlaceService {
	return &PlaceService{
		places: places,
		users:  users,
		geo:    resolver,
		tx:     tx,
		files:  files,
		log:    log,
	}
}

// Create geocodes the address, checks the requester exists, then inserts
// the place and appends its id to the owner inside one transaction. The
// already-stored image is removed on any failure so no orphan files pile
// up under the uploads dir.
func (s *PlaceService) Create(ctx context.Context, req place.CreatePlaceRequest, imagePath string, creatorID primitive.ObjectID) (place.Place, error) {
	coords, err := s.geo.Resolve(ctx, req.Address)

	if err != nil {
		s.cleanupImage(imagePath)
		return place.Place{}, err
	}

	// referential integrity is defended at write time: the creator must
	// exist before a place can point at them
	_, err = s.users.GetByID(ctx, creatorID)

	if err != nil {
		s.cleanupImage(imagePath)
		return place.Place{}, err
	}

	p := place.Place{
		ID:          primitive.NewObjectID(),
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    imagePath,
		Address:     req.Address,
		Location:    place.Location{Lat: coords.Lat, Lng: coords.Lng},
		Creator:     creatorID,
	}

	err = s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		_, txErr := s.places.Create(txCtx, p)

		if txErr != nil {
			return txErr
		}

		return s.users.AppendPlace(txCtx, creatorID, p.ID)
	})

	if err != nil {
		s.cleanupImage(imagePath)
		return place.Place{}, err
	}

	return p, nil
}

func (s *PlaceService) Update(ctx context.Context, id primitive.ObjectID, req place.UpdatePlaceRequest, requesterID primitive.ObjectID) (place.Place, error) {
	p, err := s.places.GetByID(ctx, id)

	if err != nil {
		return place.Place{}, err
	}

	if p.Creator != requesterID {
		return place.Place{}, place.ErrForbidden
	}

	return s.places.Update(ctx, id, req)
}

// Delete removes the place and pulls its id from the owner in one
// transaction, then deletes the stored image as a best-effort side
// effect. A failed file removal is logged, never surfaced.
func (s *PlaceService) Delete(ctx context.Context, id primitive.ObjectID, requesterID primitive.ObjectID) error {
	p, err := s.places.GetByID(ctx, id)

	if err != nil {
		return err
	}

	if p.Creator != requesterID {
		return place.ErrForbidden
	}

	err = s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		txErr := s.places.Delete(txCtx, id)

		if txErr != nil {
			return txErr
		}

		return s.users.RemovePlace(txCtx, p.Creator, id)
	})

	if err != nil {
		return err
	}

	s.cleanupImage(p.ImageURL)

	return nil
}

func (s *PlaceService) GetByID(ctx context.Context, id primitive.ObjectID) (place.Place, error) {
	return s.places.GetByID(ctx, id)
}

// ListByUser keeps the original contract: a user with zero places is
// indistinguishable from an unknown user, both come back as not found.
func (s *PlaceService) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]place.Place, error) {
	out, err := s.places.ListByCreator(ctx, userID)

	if err != nil {
		return nil, err
	}

	if len(out) == 0 {
		return nil, place.ErrNotFound
	}

	return out, nil
}

func (s *PlaceService) cleanupImage(path string) {
	if path == "" {
		return
	}

	err := s.files.Remove(path)

	if err != nil {
		s.log.Warn("could not remove uploaded image", "path", path, "err", err)
	}
}
