package user

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID       primitive.ObjectID   `json:"id" bson:"_id"`
	Name     string               `json:"name" bson:"name"`
	Email    string               `json:"email" bson:"email"`
	Password string               `json:"-" bson:"password,omitempty"` // bcrypt hash, never exposed in JSON
	Image    string               `json:"image" bson:"image"`
	Places   []primitive.ObjectID `json:"places" bson:"places"`
}

var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// signup arrives as multipart form data (the avatar travels in the same request).
type SignUpRequest struct {
	Name     string `form:"name" binding:"required,min=1,max=120"`
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required,min=6,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
