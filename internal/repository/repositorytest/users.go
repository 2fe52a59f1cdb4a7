// Package repositorytest provides an in-memory credential store for tests.
package repositorytest

import (
	"context"
	"sort"
	"sync"
	"time"

	"gopherauth/internal/model"
	"gopherauth/internal/repository"
)

// UserStore mirrors UserRepository semantics, including unique username and
// email, with a mutex instead of database indexes.
type UserStore struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]model.User

	// Err, when set, is returned by every call.
	Err error
}

func NewUserStore() *UserStore {
	return &UserStore{nextID: 1, users: make(map[uint]model.User)}
}

func (s *UserStore) Create(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for _, u := range s.users {
		if u.Username == user.Username || u.Email == user.Email {
			return repository.ErrUniquenessViolation
		}
	}
	user.ID = s.nextID
	user.CreatedAt = time.Now()
	s.nextID++
	s.users[user.ID] = *user
	return nil
}

func (s *UserStore) FindByUsernameOrEmail(_ context.Context, username, email string) (*model.User, error) {
	return s.find(func(u model.User) bool { return u.Username == username || u.Email == email })
}

func (s *UserStore) FindByUsername(_ context.Context, username string) (*model.User, error) {
	return s.find(func(u model.User) bool { return u.Username == username })
}

func (s *UserStore) FindByID(_ context.Context, id uint) (*model.User, error) {
	return s.find(func(u model.User) bool { return u.ID == id })
}

func (s *UserStore) List(_ context.Context) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Promote sets the admin flag directly, the way an operator would in SQL.
func (s *UserStore) Promote(username string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, u := range s.users {
		if u.Username == username {
			u.IsAdmin = true
			s.users[id] = u
			return true
		}
	}
	return false
}

func (s *UserStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

func (s *UserStore) find(match func(model.User) bool) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, u := range s.users {
		if match(u) {
			found := u
			return &found, nil
		}
	}
	return nil, nil
}
