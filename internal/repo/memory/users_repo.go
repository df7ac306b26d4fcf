package memory

import (
	"context"

	"github.com/geocoder89/placeshub/internal/domain/user"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UsersRepo struct {
	store *Store
}

func NewUsersRepo(store *Store) *UsersRepo {
	return &UsersRepo{store: store}
}

func (r *UsersRepo) GetByID(ctx context.Context, id primitive.ObjectID) (user.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	u, ok := r.store.users[id]

	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return cloneUser(u), nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, u := range r.store.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}

	return user.User{}, user.ErrNotFound
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.users {
		if existing.Email == u.Email {
			return user.User{}, user.ErrEmailTaken
		}
	}

	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}

	if u.Places == nil {
		u.Places = []primitive.ObjectID{}
	}

	r.store.users[u.ID] = cloneUser(u)

	return u, nil
}

func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	out := make([]user.User, 0, len(r.store.users))

	for _, u := range r.store.users {
		c := cloneUser(u)
		c.Password = ""
		out = append(out, c)
	}

	return out, nil
}

func (r *UsersRepo) AppendPlace(ctx context.Context, userID, placeID primitive.ObjectID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	u, ok := r.store.users[userID]

	if !ok {
		return user.ErrNotFound
	}

	u.Places = append(u.Places, placeID)
	r.store.users[userID] = u

	return nil
}

func (r *UsersRepo) RemovePlace(ctx context.Context, userID, placeID primitive.ObjectID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	u, ok := r.store.users[userID]

	if !ok {
		return user.ErrNotFound
	}

	kept := u.Places[:0]

	for _, id := range u.Places {
		if id != placeID {
			kept = append(kept, id)
		}
	}

	u.Places = kept
	r.store.users[userID] = u

	return nil
}
