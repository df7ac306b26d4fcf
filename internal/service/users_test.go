package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/geocoder89/placeshub/internal/auth"
	"github.com/geocoder89/placeshub/internal/domain/user"
	"github.com/geocoder89/placeshub/internal/repo/memory"
	"github.com/geocoder89/placeshub/internal/security"
	"github.com/geocoder89/placeshub/internal/service"
)

type usersFixture struct {
	users   *memory.UsersRepo
	remover *recordingRemover
	jwt     *auth.Manager
	svc     *service.UserService
}

func newUsersFixture(t *testing.T) *usersFixture {
	t.Helper()

	store := memory.NewStore()
	users := memory.NewUsersRepo(store)
	remover := &recordingRemover{}
	jwt := auth.NewManager("test-secret", time.Hour)

	return &usersFixture{
		users:   users,
		remover: remover,
		jwt:     jwt,
		svc:     service.NewUserService(users, jwt, remover, discardLogger()),
	}
}

var dhanuSignUp = user.SignUpRequest{
	Name:     "dhanu",
	Email:    "dhanu@gmail.com",
	Password: "dhanu26",
}

func TestSignUpAndLoginScenario(t *testing.T) {
	ctx := context.Background()
	f := newUsersFixture(t)

	created, session, err := f.svc.SignUp(ctx, dhanuSignUp, "uploads/images/dhanu.png")

	if err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}

	if session.UserID == "" || session.Email != "dhanu@gmail.com" || session.Token == "" {
		t.Fatalf("incomplete session: %+v", session)
	}

	if created.Places == nil || len(created.Places) != 0 {
		t.Errorf("new user should start with an empty places list: %+v", created.Places)
	}

	// the issued token must verify and carry the identity
	claims, err := f.jwt.VerifyToken(session.Token)

	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}

	if claims.UserID != session.UserID || claims.Email != "dhanu@gmail.com" {
		t.Errorf("claims mismatch: %+v", claims)
	}

	// login with the same credentials
	loginSession, err := f.svc.Login(ctx, "dhanu@gmail.com", "dhanu26")

	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if loginSession.UserID != session.UserID {
		t.Errorf("login returned a different user: %+v", loginSession)
	}

	// login with the wrong password
	_, err = f.svc.Login(ctx, "dhanu@gmail.com", "wrong-password")

	if !errors.Is(err, user.ErrInvalidCredentials) {
		t.Fatalf("got %v, want ErrInvalidCredentials", err)
	}

	// login with an unknown email reads the same as a bad password
	_, err = f.svc.Login(ctx, "nobody@example.com", "dhanu26")

	if !errors.Is(err, user.ErrInvalidCredentials) {
		t.Fatalf("got %v, want ErrInvalidCredentials", err)
	}
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	f := newUsersFixture(t)

	_, _, err := f.svc.SignUp(ctx, dhanuSignUp, "uploads/images/first.png")

	if err != nil {
		t.Fatalf("first SignUp failed: %v", err)
	}

	// same address, different case: still a conflict
	second := dhanuSignUp
	second.Email = "Dhanu@Gmail.com"

	_, _, err = f.svc.SignUp(ctx, second, "uploads/images/second.png")

	if !errors.Is(err, user.ErrEmailTaken) {
		t.Fatalf("got %v, want ErrEmailTaken", err)
	}

	// the second avatar upload must not be left behind
	calls := f.remover.calls()

	if len(calls) != 1 || calls[0] != "uploads/images/second.png" {
		t.Errorf("expected cleanup of the rejected upload, calls: %v", calls)
	}
}

func TestSignUp_NormalizesEmailAndHashesPassword(t *testing.T) {
	ctx := context.Background()
	f := newUsersFixture(t)

	req := dhanuSignUp
	req.Email = "  Dhanu@Gmail.com "

	_, session, err := f.svc.SignUp(ctx, req, "uploads/images/dhanu.png")

	if err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}

	if session.Email != "dhanu@gmail.com" {
		t.Errorf("email not normalized: %q", session.Email)
	}

	stored, err := f.users.GetByEmail(ctx, "dhanu@gmail.com")

	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}

	if stored.Password == "dhanu26" {
		t.Fatal("plaintext password persisted")
	}

	if err := security.CheckPassword(stored.Password, "dhanu26"); err != nil {
		t.Errorf("stored hash does not verify: %v", err)
	}

	// mixed-case login still works against the normalized record
	if _, err := f.svc.Login(ctx, "DHANU@gmail.com", "dhanu26"); err != nil {
		t.Errorf("case-insensitive login failed: %v", err)
	}
}

func TestList_ExcludesPasswords(t *testing.T) {
	ctx := context.Background()
	f := newUsersFixture(t)

	_, _, err := f.svc.SignUp(ctx, dhanuSignUp, "uploads/images/dhanu.png")

	if err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}

	users, err := f.svc.List(ctx)

	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if len(users) != 1 {
		t.Fatalf("got %d users, want 1", len(users))
	}

	if users[0].Password != "" {
		t.Error("listing must not expose password hashes")
	}
}
