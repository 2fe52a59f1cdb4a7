package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gopherauth/internal/model"
	"gopherauth/internal/pkg/password"
	"gopherauth/internal/repository"
)

var (
	ErrValidation         = errors.New("please fill all fields")
	ErrDuplicate          = errors.New("username or email already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrInputTooLong is a validation failure; errors.Is matches ErrValidation too.
	ErrInputTooLong = fmt.Errorf("%w: input too long", ErrValidation)
)

const (
	maxUsernameLength = 80
	maxEmailLength    = 120
)

// UserStore is the credential store the services depend on.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByID(ctx context.Context, id uint) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
}

type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

type AuthService struct {
	users  UserStore
	hasher PasswordHasher
	// dummyHash is compared against when the username is unknown so both
	// login failure paths cost one bcrypt comparison.
	dummyHash string
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type LoginInput struct {
	Username string
	Password string
}

func NewAuthService(users UserStore, hasher PasswordHasher) (*AuthService, error) {
	dummy, err := hasher.Hash("gopherauth-timing-equaliser")
	if err != nil {
		return nil, err
	}
	return &AuthService{
		users:     users,
		hasher:    hasher,
		dummyHash: dummy,
	}, nil
}

// Register creates an account. It never starts a session.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if username == "" || email == "" || strings.TrimSpace(input.Password) == "" {
		return nil, ErrValidation
	}
	if len(username) > maxUsernameLength || len(email) > maxEmailLength || len(input.Password) > password.MaxLength {
		return nil, ErrInputTooLong
	}

	existing, err := s.users.FindByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicate
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration.
		if errors.Is(err, repository.ErrUniquenessViolation) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return user, nil
}

// Login checks credentials. Unknown users and wrong passwords both yield
// ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*model.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		s.hasher.Verify(input.Password, s.dummyHash)
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("login lookup failed: %w", err)
	}
	if user == nil {
		s.hasher.Verify(input.Password, s.dummyHash)
		return nil, ErrInvalidCredentials
	}
	if !s.hasher.Verify(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
