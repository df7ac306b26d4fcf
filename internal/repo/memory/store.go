package memory

import (
	"context"
	"sync"

	"github.com/geocoder89/placeshub/internal/domain/place"
	"github.com/geocoder89/placeshub/internal/domain/user"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store backs the in-memory repositories. One instance is shared by the
// users repo, the places repo and the tx runner so a transaction can
// snapshot and restore both maps together.
type Store struct {
	mu     sync.Mutex
	users  map[primitive.ObjectID]user.User
	places map[primitive.ObjectID]place.Place
}

func NewStore() *Store {
	return &Store{
		users:  make(map[primitive.ObjectID]user.User),
		places: make(map[primitive.ObjectID]place.Place),
	}
}

func cloneUser(u user.User) user.User {
	out := u
	out.Places = append([]primitive.ObjectID(nil), u.Places...)
	return out
}

func (s *Store) snapshot() (map[primitive.ObjectID]user.User, map[primitive.ObjectID]place.Place) {
	users := make(map[primitive.ObjectID]user.User, len(s.users))

	for id, u := range s.users {
		users[id] = cloneUser(u)
	}

	places := make(map[primitive.ObjectID]place.Place, len(s.places))

	for id, p := range s.places {
		places[id] = p
	}

	return users, places
}

// TxRunner gives the memory store the same all-or-nothing contract the
// mongo sessions give the real one: on error the pre-tx state comes back.
type TxRunner struct {
	store *Store
}

func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

func (r *TxRunner) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	r.store.mu.Lock()
	users, places := r.store.snapshot()
	r.store.mu.Unlock()

	err := fn(ctx)

	if err != nil {
		r.store.mu.Lock()
		r.store.users = users
		r.store.places = places
		r.store.mu.Unlock()
	}

	return err
}
