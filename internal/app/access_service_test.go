package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gopherauth/internal/repository/repositorytest"
	"gopherauth/internal/session"
)

func TestAccessService_ListUsers(t *testing.T) {
	ctx := context.Background()
	store := repositorytest.NewUserStore()
	auth := newAuthService(t, store)
	access := NewAccessService(store)

	alice, err := auth.Register(ctx, RegisterInput{Username: "alice", Email: "alice@x.com", Password: "pw"})
	require.NoError(t, err)
	root, err := auth.Register(ctx, RegisterInput{Username: "root", Email: "root@x.com", Password: "pw"})
	require.NoError(t, err)
	require.True(t, store.Promote("root"))

	t.Run("anonymous", func(t *testing.T) {
		_, err := access.ListUsers(ctx, nil)
		assert.ErrorIs(t, err, ErrNotAuthenticated)
	})

	t.Run("non-admin", func(t *testing.T) {
		_, err := access.ListUsers(ctx, &session.Identity{UserID: alice.ID, Username: "alice"})
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("deleted user", func(t *testing.T) {
		_, err := access.ListUsers(ctx, &session.Identity{UserID: 999, Username: "ghost"})
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("admin", func(t *testing.T) {
		users, err := access.ListUsers(ctx, &session.Identity{UserID: root.ID, Username: "root"})
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, "alice", users[0].Username)
		assert.Equal(t, "root", users[1].Username)
	})
}

func TestAccessService_RequireAuthenticated(t *testing.T) {
	access := NewAccessService(repositorytest.NewUserStore())
	assert.ErrorIs(t, access.RequireAuthenticated(nil), ErrNotAuthenticated)
	assert.NoError(t, access.RequireAuthenticated(&session.Identity{UserID: 1, Username: "a"}))
}
