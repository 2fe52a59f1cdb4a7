package app

import (
	"context"
	"errors"

	"gopherauth/internal/model"
	"gopherauth/internal/session"
)

var (
	ErrNotAuthenticated = errors.New("please login first")
	ErrAccessDenied     = errors.New("access denied, admins only")
)

// AccessService gates views on the session identity and the admin flag.
type AccessService struct {
	users UserStore
}

func NewAccessService(users UserStore) *AccessService {
	return &AccessService{users: users}
}

// RequireAuthenticated is the only check for the home view.
func (s *AccessService) RequireAuthenticated(viewer *session.Identity) error {
	if viewer == nil {
		return ErrNotAuthenticated
	}
	return nil
}

// ListUsers returns every record to an admin viewer. The admin flag is read
// from the store on each call, never from the session.
func (s *AccessService) ListUsers(ctx context.Context, viewer *session.Identity) ([]model.User, error) {
	if err := s.RequireAuthenticated(viewer); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, viewer.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsAdmin {
		return nil, ErrAccessDenied
	}
	return s.users.List(ctx)
}
