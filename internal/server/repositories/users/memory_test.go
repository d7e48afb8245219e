package users

import (
	"context"
	"testing"

	"github.com/BakeNecko/sidus-heroes/internal/common"
	"github.com/BakeNecko/sidus-heroes/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ Repository = (*MemoryRepository)(nil)
	_ Repository = (*PostgresRepository)(nil)
)

func TestMemoryRepository_Lifecycle(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()

	alice, err := r.Create(ctx, &models.User{UserName: "alice", Email: "alice@x.com", PasswordHash: []byte("h")})
	require.NoError(t, err)
	assert.Equal(t, int64(1), alice.ID)

	bob, err := r.Create(ctx, &models.User{UserName: "bob", Email: "bob@x.com"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), bob.ID)

	got, err := r.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	name := "alice2"
	updated, err := r.UpdateByID(ctx, alice.ID, models.UserPatch{UserName: &name})
	require.NoError(t, err)
	assert.Equal(t, "alice2", updated.UserName)
	assert.Equal(t, "alice@x.com", updated.Email)

	require.NoError(t, r.DeleteByID(ctx, alice.ID))
	_, err = r.GetByID(ctx, alice.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.ErrorIs(t, r.DeleteByID(ctx, alice.ID), common.ErrNotFound)
	assert.Equal(t, 1, r.Len())
}

func TestMemoryRepository_Uniqueness(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()

	_, err := r.Create(ctx, &models.User{UserName: "alice", Email: "alice@x.com"})
	require.NoError(t, err)
	bob, err := r.Create(ctx, &models.User{UserName: "bob", Email: "bob@x.com"})
	require.NoError(t, err)

	_, err = r.Create(ctx, &models.User{UserName: "alice", Email: "other@x.com"})
	assert.ErrorIs(t, err, common.ErrConflict)
	_, err = r.Create(ctx, &models.User{UserName: "carol", Email: "alice@x.com"})
	assert.ErrorIs(t, err, common.ErrConflict)
	assert.Equal(t, 2, r.Len())

	taken := "alice"
	_, err = r.UpdateByID(ctx, bob.ID, models.UserPatch{UserName: &taken})
	assert.ErrorIs(t, err, common.ErrConflict)

	same := "bob"
	_, err = r.UpdateByID(ctx, bob.ID, models.UserPatch{UserName: &same})
	assert.NoError(t, err, "keeping your own username is not a conflict")
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()

	u, err := r.Create(ctx, &models.User{UserName: "alice", Email: "a@x.com", PasswordHash: []byte("hash")})
	require.NoError(t, err)
	u.UserName = "mallory"
	u.PasswordHash[0] = 'X'

	got, err := r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.UserName)
	assert.Equal(t, []byte("hash"), got.PasswordHash)
}
