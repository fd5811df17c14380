// Package storetest provides an in-memory user repository for tests.
package storetest

import (
	"context"
	"sync"
	"time"

	"github.com/Emiliocodings/ServiceUsers/internal/store"
	"github.com/Emiliocodings/ServiceUsers/types"
)

// UserRepository mirrors the users table semantics: ids increase and are
// never reused, emails are unique and rows are listed in insertion order.
type UserRepository struct {
	mu     sync.Mutex
	nextID int64
	users  []types.User

	// Err, when set, is returned by every call.
	Err error
}

func NewUserRepository() *UserRepository {
	return &UserRepository{nextID: 1}
}

func (r *UserRepository) List(_ context.Context, offset, limit int) ([]types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}

	page := make([]types.User, 0)
	for i := offset; i < len(r.users) && len(page) < limit; i++ {
		page = append(page, r.users[i])
	}
	return page, nil
}

func (r *UserRepository) GetByID(_ context.Context, id int64) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return types.User{}, r.Err
	}

	if i := r.indexOf(id); i >= 0 {
		return r.users[i], nil
	}
	return types.User{}, store.ErrNotFound
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return types.User{}, r.Err
	}

	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *UserRepository) Create(_ context.Context, user types.User) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return types.User{}, r.Err
	}

	if r.emailTaken(user.Email, 0) {
		return types.User{}, store.ErrConflict
	}
	user.ID = r.nextID
	r.nextID++
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = nil
	r.users = append(r.users, user)
	return user, nil
}

func (r *UserRepository) Update(_ context.Context, id int64, patch types.UserPatch) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return types.User{}, r.Err
	}

	i := r.indexOf(id)
	if i < 0 {
		return types.User{}, store.ErrNotFound
	}
	merged := patch.Apply(r.users[i])
	if r.emailTaken(merged.Email, id) {
		return types.User{}, store.ErrConflict
	}
	now := time.Now().UTC()
	merged.UpdatedAt = &now
	r.users[i] = merged
	return merged, nil
}

func (r *UserRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}

	i := r.indexOf(id)
	if i < 0 {
		return store.ErrNotFound
	}
	r.users = append(r.users[:i], r.users[i+1:]...)
	return nil
}

// Len returns the number of stored users.
func (r *UserRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

func (r *UserRepository) indexOf(id int64) int {
	for i, u := range r.users {
		if u.ID == id {
			return i
		}
	}
	return -1
}

func (r *UserRepository) emailTaken(email string, exceptID int64) bool {
	for _, u := range r.users {
		if u.Email == email && u.ID != exceptID {
			return true
		}
	}
	return false
}
