package place

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Location struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}

type Place struct {
	ID          primitive.ObjectID `json:"id" bson:"_id"`
	Title       string             `json:"title" bson:"title"`
	Description string             `json:"description" bson:"description"`
	ImageURL    string             `json:"imageUrl" bson:"imageUrl"`
	Address     string             `json:"address" bson:"address"`
	Location    Location           `json:"location" bson:"location"`
	Creator     primitive.ObjectID `json:"creator" bson:"creator"`
}

var (
	ErrNotFound  = errors.New("place not found")
	ErrForbidden = errors.New("requester is not the creator of this place")
)

// create arrives as multipart form data alongside the image upload.
type CreatePlaceRequest struct {
	Title       string `form:"title" binding:"required,min=1,max=120"`
	Description string `form:"description" binding:"required,min=1,max=1000"`
	Address     string `form:"address" binding:"required,min=1,max=300"`
}

// only title and description are mutable after creation; address, location
// and image are fixed once the place exists.
type UpdatePlaceRequest struct {
	Title       string `json:"title" binding:"required,min=1,max=120"`
	Description string `json:"description" binding:"required,min=1,max=1000"`
}
