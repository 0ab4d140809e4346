package users

import (
	"context"
	"sync"
)

// MemoryRepo is a simple in-memory repository useful for tests.
// It is not intended for production use.
type MemoryRepo struct {
	mu    sync.Mutex
	users []User
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) Create(ctx context.Context, u User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return ErrAlreadyExists
		}
	}
	r.users = append(r.users, u)
	return nil
}

func (r *MemoryRepo) find(match func(User) bool) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *MemoryRepo) ByEmail(ctx context.Context, email string) (User, error) {
	return r.find(func(u User) bool { return u.Email == email })
}

func (r *MemoryRepo) ByUsername(ctx context.Context, username string) (User, error) {
	return r.find(func(u User) bool { return u.Username == username })
}

func (r *MemoryRepo) ByRefreshToken(ctx context.Context, token string) (User, error) {
	if token == "" {
		return User{}, ErrNotFound
	}
	return r.find(func(u User) bool { return u.RefreshToken == token })
}

func (r *MemoryRepo) SetRefreshToken(ctx context.Context, username, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.users {
		if r.users[i].Username == username {
			r.users[i].RefreshToken = token
			return nil
		}
	}
	return ErrNotFound
}

func (r *MemoryRepo) List(ctx context.Context) ([]User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]User, len(r.users))
	copy(out, r.users)
	return out, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, u := range r.users {
		if u.Email == email {
			r.users = append(r.users[:i], r.users[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
