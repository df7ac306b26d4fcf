package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/placeshub/internal/config"
	"github.com/geocoder89/placeshub/internal/domain/user"
	"github.com/geocoder89/placeshub/internal/service"
	"github.com/gin-gonic/gin"
)

type UserOps interface {
	SignUp(ctx context.Context, req user.SignUpRequest, imagePath string) (user.User, service.Session, error)
	Login(ctx context.Context, email, password string) (service.Session, error)
	List(ctx context.Context) ([]user.User, error)
}

type UsersHandler struct {
	svc    UserOps
	images ImageSaver
}

func NewUsersHandler(svc UserOps, images ImageSaver) *UsersHandler {
	return &UsersHandler{
		svc:    svc,
		images: images,
	}
}

func (h *UsersHandler) ListUsers(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	users, err := h.svc.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list users")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *UsersHandler) SignUp(ctx *gin.Context) {
	var req user.SignUpRequest

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

	// bcrypt plus the insert, the hash alone costs a noticeable slice
	cctx, cancel := config.WithTimeout(5 * time.Second)

	defer cancel()

	newUser, session, err := h.svc.SignUp(cctx, req, imagePath)

	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			RespondConflict(ctx, "Could not create user, email already exists")
			return
		}

		RespondInternal(ctx, "Could not create user")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"newUser": newUser,
		"userId":  session.UserID,
		"email":   session.Email,
		"token":   session.Token,
	})
}

func (h *UsersHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)

	defer cancel()

	session, err := h.svc.Login(cctx, req.Email, req.Password)

	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			RespondForbidden(ctx, "Couldn't identify user, credentials seem to be wrong")
			return
		}

		RespondInternal(ctx, "Could not log in")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"userId": session.UserID,
		"email":  session.Email,
		"token":  session.Token,
	})
}
