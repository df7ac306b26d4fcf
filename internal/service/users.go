package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/geocoder89/placeshub/internal/auth"
	"github.com/geocoder89/placeshub/internal/domain/user"
	"github.com/geocoder89/placeshub/internal/security"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UsersRepo interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	Create(ctx context.Context, u user.User) (user.User, error)
	List(ctx context.Context) ([]user.User, error)
}

// Session is what signup and login hand back to the client.
type Session struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Token  string `json:"token"`
}

type UserService struct {
	users UsersRepo
	jwt   *auth.Manager
	files ImageRemover
	log   *slog.Logger
}

func NewUserService(users UsersRepo, jwt *auth.Manager, files ImageRemover, log *slog.Logger) *UserService {
	return &UserService{
		users: users,
		jwt:   jwt,
		files: files,
		log:   log,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp hashes the password, persists the new user with an empty places
// list and issues a session token. A stored avatar is cleaned up when the
// signup fails after the upload already happened.
func (s *UserService) SignUp(ctx context.Context, req user.SignUpRequest, imagePath string) (user.User, Session, error) {
	hash, err := security.HashPassword(req.Password)

	if err != nil {
		s.cleanupImage(imagePath)
		return user.User{}, Session{}, err
	}

	u := user.User{
		ID:       primitive.NewObjectID(),
		Name:     req.Name,
		Email:    normalizeEmail(req.Email),
		Password: hash,
		Image:    imagePath,
		Places:   []primitive.ObjectID{},
	}

	created, err := s.users.Create(ctx, u)

	if err != nil {
		s.cleanupImage(imagePath)
		return user.User{}, Session{}, err
	}

	token, err := s.jwt.GenerateToken(created.ID.Hex(), created.Email)

	if err != nil {
		return user.User{}, Session{}, err
	}

	return created, Session{
		UserID: created.ID.Hex(),
		Email:  created.Email,
		Token:  token,
	}, nil
}

// Login never tells the caller whether the email or the password was the
// wrong half of the pair.
func (s *UserService) Login(ctx context.Context, email, password string) (Session, error) {
	found, err := s.users.GetByEmail(ctx, normalizeEmail(email))

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return Session{}, user.ErrInvalidCredentials
		}

		return Session{}, err
	}

	err = security.CheckPassword(found.Password, password)

	if err != nil {
		return Session{}, user.ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(found.ID.Hex(), found.Email)

	if err != nil {
		return Session{}, err
	}

	return Session{
		UserID: found.ID.Hex(),
		Email:  found.Email,
		Token:  token,
	}, nil
}

func (s *UserService) List(ctx context.Context) ([]user.User, error) {
	return s.users.List(ctx)
}

func (s *UserService) cleanupImage(path string) {
	if path == "" {
		return
	}

	err := s.files.Remove(path)

	if err != nil {
		s.log.Warn("could not remove uploaded image", "path", path, "err", err)
	}
}
