package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/geocoder89/placeshub/internal/config"
	"github.com/geocoder89/placeshub/internal/domain/place"
	"github.com/geocoder89/placeshub/internal/domain/user"
	"github.com/geocoder89/placeshub/internal/geo"
	"github.com/geocoder89/placeshub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PlaceOps interface {
	Create(ctx context.Context, req place.CreatePlaceRequest, imagePath string, creatorID primitive.ObjectID) (place.Place, error)
	Update(ctx context.Context, id primitive.ObjectID, req place.UpdatePlaceRequest, requesterID primitive.ObjectID) (place.Place, error)
	Delete(ctx context.Context, id primitive.ObjectID, requesterID primitive.ObjectID) error
	GetByID(ctx context.Context, id primitive.ObjectID) (place.Place, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]place.Place, error)
}

type ImageSaver interface {
	Save(originalName string, r io.Reader) (string, error)
}

type PlacesHandler struct {
	svc    PlaceOps
	images ImageSaver
}

func NewPlacesHandler(svc PlaceOps, images ImageSaver) *PlacesHandler {
	return &PlacesHandler{
		svc:    svc,
		images: images,
	}
}

func parseObjectID(raw string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(raw)

	return id, err == nil
}

// requesterID pulls the authenticated identity the middleware stashed on
// the context.
func requesterID(ctx *gin.Context) (primitive.ObjectID, bool) {
	raw, ok := middlewares.UserIDFromContext(ctx)

	if !ok || raw == "" {
		return primitive.NilObjectID, false
	}

	return parseObjectID(raw)
}

func (h *PlacesHandler) GetPlace(ctx *gin.Context) {
	id, ok := parseObjectID(ctx.Param("pid"))

	if !ok {
		RespondValidation(ctx, "Invalid place id", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	p, err := h.svc.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, place.ErrNotFound) {
			RespondNotFound(ctx, "Could not find a place with the given ID")
			return
		}

		RespondInternal(ctx, "Could not fetch place")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"place": p})
}

// GetPlacesByUser serves /api/places/user/:uid. The route is registered
// as /:pid/:uid (see the router), so the "user" literal is checked here.
func (h *PlacesHandler) GetPlacesByUser(ctx *gin.Context) {
	if ctx.Param("pid") != "user" {
		RespondNotFound(ctx, "route not found in your application")
		return
	}

	uid, ok := parseObjectID(ctx.Param("uid"))

	if !ok {
		RespondValidation(ctx, "Invalid user id", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	places, err := h.svc.ListByUser(cctx, uid)

	if err != nil {
		if errors.Is(err, place.ErrNotFound) {
			RespondNotFound(ctx, "Could not find places for the given user ID")
			return
		}

		RespondInternal(ctx, "Could not fetch places")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"places": places})
}

func (h *PlacesHandler) CreatePlace(ctx *gin.Context) {
	creator, ok := requesterID(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "Authentication failed")
		return
	}

	var req place.CreatePlaceRequest

	if !BindForm(ctx, &req) {
		return
	}

	fileHeader, err := ctx.FormFile("image")

	if err != nil {
		RespondValidation(ctx, "An image upload is required", nil)
		return
	}

	file, err := fileHeader.Open()

	if err != nil {
		RespondInternal(ctx, "Could not read uploaded image")
		return
	}

	defer file.Close()

	imagePath, err := h.images.Save(fileHeader.Filename, file)

	if err != nil {
		RespondValidation(ctx, "Unsupported image type", nil)
		return
	}

	// geocoding goes out over the network, give it headroom
	cctx, cancel := config.WithTimeout(8 * time.Second)

	defer cancel()

	created, err := h.svc.Create(cctx, req, imagePath, creator)

	if err != nil {
		h.respondPlaceError(ctx, err, "Could not create place")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"place": created})
}

func (h *PlacesHandler) UpdatePlace(ctx *gin.Context) {
	id, ok := parseObjectID(ctx.Param("pid"))

	if !ok {
		RespondValidation(ctx, "Invalid place id", nil)
		return
	}

	requester, ok := requesterID(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "Authentication failed")
		return
	}

	var req place.UpdatePlaceRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	updated, err := h.svc.Update(cctx, id, req, requester)

	if err != nil {
		h.respondPlaceError(ctx, err, "Could not update place")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"place": updated})
}

func (h *PlacesHandler) DeletePlace(ctx *gin.Context) {
	id, ok := parseObjectID(ctx.Param("pid"))

	if !ok {
		RespondValidation(ctx, "Invalid place id", nil)
		return
	}

	requester, ok := requesterID(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "Authentication failed")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	err := h.svc.Delete(cctx, id, requester)

	if err != nil {
		h.respondPlaceError(ctx, err, "Could not delete place")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Deleted the place successfully"})
}

func (h *PlacesHandler) respondPlaceError(ctx *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, place.ErrNotFound):
		RespondNotFound(ctx, "Could not find a place with the given ID")
	case errors.Is(err, place.ErrForbidden):
		RespondForbidden(ctx, "You are not allowed to modify this place")
	case errors.Is(err, user.ErrNotFound):
		RespondNotFound(ctx, "Could not find a user for the provided id")
	case errors.Is(err, geo.ErrNoResults):
		RespondNotFound(ctx, "Could not find a location for the given address")
	case errors.Is(err, geo.ErrServiceUnavailable):
		RespondBadGateway(ctx, "Location lookup is currently unavailable")
	default:
		RespondInternal(ctx, fallback)
	}
}
