package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"gopherauth/internal/model"
	"gopherauth/internal/pkg/password"
	"gopherauth/internal/repository"
	"gopherauth/internal/repository/repositorytest"
)

func newAuthService(t *testing.T, store UserStore) *AuthService {
	t.Helper()
	svc, err := NewAuthService(store, password.NewHasher(bcrypt.MinCost))
	require.NoError(t, err)
	return svc
}

func TestAuthService_RegisterThenLogin(t *testing.T) {
	ctx := context.Background()
	store := repositorytest.NewUserStore()
	svc := newAuthService(t, store)

	user, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@x.com", Password: "pw123"})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotEqual(t, "pw123", user.PasswordHash)

	got, err := svc.Login(ctx, LoginInput{Username: "alice", Password: "pw123"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "alice", got.Username)
	assert.False(t, got.IsAdmin)
}

func TestAuthService_RegisterTrimsAndNormalises(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(t, repositorytest.NewUserStore())

	user, err := svc.Register(ctx, RegisterInput{Username: "  bob ", Email: " Bob@X.com ", Password: " spaced pw "})
	require.NoError(t, err)
	assert.Equal(t, "bob", user.Username)
	assert.Equal(t, "bob@x.com", user.Email)

	// The password is stored exactly as typed.
	_, err = svc.Login(ctx, LoginInput{Username: "bob", Password: " spaced pw "})
	assert.NoError(t, err)
	_, err = svc.Login(ctx, LoginInput{Username: "bob", Password: "spaced pw"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	ctx := context.Background()
	store := repositorytest.NewUserStore()
	svc := newAuthService(t, store)

	cases := map[string]RegisterInput{
		"empty username": {Username: "", Email: "a@x.com", Password: "pw"},
		"blank username": {Username: "   ", Email: "a@x.com", Password: "pw"},
		"empty email":    {Username: "a", Email: "", Password: "pw"},
		"blank password": {Username: "a", Email: "a@x.com", Password: "  "},
		"long username":  {Username: strings.Repeat("u", 81), Email: "a@x.com", Password: "pw"},
		"long email":     {Username: "a", Email: strings.Repeat("e", 115) + "@x.com", Password: "pw"},
		"long password":  {Username: "a", Email: "a@x.com", Password: strings.Repeat("p", 73)},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Register(ctx, in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
	assert.Equal(t, 0, store.Len())
}

func TestAuthService_RegisterTooLong(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(t, repositorytest.NewUserStore())

	_, err := svc.Register(ctx, RegisterInput{Username: strings.Repeat("u", 81), Email: "a@x.com", Password: "pw"})
	assert.ErrorIs(t, err, ErrInputTooLong)

	_, err = svc.Register(ctx, RegisterInput{Username: "", Email: "a@x.com", Password: "pw"})
	assert.ErrorIs(t, err, ErrValidation)
	assert.NotErrorIs(t, err, ErrInputTooLong)
}

func TestAuthService_RegisterDuplicate(t *testing.T) {
	ctx := context.Background()
	store := repositorytest.NewUserStore()
	svc := newAuthService(t, store)

	_, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@x.com", Password: "pw123"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Username: "alice", Email: "other@x.com", Password: "pw"})
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = svc.Register(ctx, RegisterInput{Username: "alice2", Email: "alice@x.com", Password: "pw"})
	assert.ErrorIs(t, err, ErrDuplicate)

	assert.Equal(t, 1, store.Len())
}

// racingStore hides existing rows from the pre-check, as if another
// registration committed between the check and the insert.
type racingStore struct {
	*repositorytest.UserStore
}

func (racingStore) FindByUsernameOrEmail(context.Context, string, string) (*model.User, error) {
	return nil, nil
}

func TestAuthService_RegisterUniquenessViolationIsDuplicate(t *testing.T) {
	ctx := context.Background()
	store := racingStore{repositorytest.NewUserStore()}
	svc := newAuthService(t, store)

	_, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@x.com", Password: "pw"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice2@x.com", Password: "pw"})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NotErrorIs(t, err, repository.ErrUniquenessViolation)
	assert.Equal(t, 1, store.Len())
}

func TestAuthService_ConcurrentRegistrationsSameUsername(t *testing.T) {
	ctx := context.Background()
	store := repositorytest.NewUserStore()
	svc := newAuthService(t, store)

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Register(ctx, RegisterInput{
				Username: "carol",
				Email:    "carol" + strings.Repeat("x", i) + "@x.com",
				Password: "pw",
			})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, ErrDuplicate)
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, store.Len())
}

func TestAuthService_LoginFailuresAreIndistinguishable(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(t, repositorytest.NewUserStore())

	_, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@x.com", Password: "pw123"})
	require.NoError(t, err)

	_, wrongPassword := svc.Login(ctx, LoginInput{Username: "alice", Password: "wrongpw"})
	_, unknownUser := svc.Login(ctx, LoginInput{Username: "mallory", Password: "pw123"})
	_, emptyUser := svc.Login(ctx, LoginInput{Username: "", Password: "pw123"})

	for _, err := range []error{wrongPassword, unknownUser, emptyUser} {
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Equal(t, wrongPassword.Error(), err.Error())
	}
}

func TestAuthService_StoreErrorsPropagate(t *testing.T) {
	ctx := context.Background()
	store := repositorytest.NewUserStore()
	svc := newAuthService(t, store)

	boom := errors.New("db down")
	store.Err = boom

	_, err := svc.Register(ctx, RegisterInput{Username: "a", Email: "a@x.com", Password: "pw"})
	assert.ErrorIs(t, err, boom)

	_, err = svc.Login(ctx, LoginInput{Username: "a", Password: "pw"})
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}
