package services

import (
	"context"
	"errors"
	"testing"

	"github.com/BakeNecko/sidus-heroes/internal/common"
	"github.com/BakeNecko/sidus-heroes/internal/server/cache"
	"github.com/BakeNecko/sidus-heroes/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func (f *fixture) principal(t *testing.T, name string) *models.User {
	t.Helper()
	f.signUp(t, name)
	token, err := f.auth.SignIn(context.Background(), name, "secret1")
	require.NoError(t, err)
	u, err := f.users.Authenticate(context.Background(), token)
	require.NoError(t, err)
	return u
}

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	me := f.principal(t, "alice")
	assert.Equal(t, "alice", me.UserName)

	_, err := f.users.Authenticate(context.Background(), "garbage")
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestAuthenticate_DeletedUser(t *testing.T) {
	f := newFixture(t)
	f.signUp(t, "alice")
	token, err := f.auth.SignIn(context.Background(), "alice", "secret1")
	require.NoError(t, err)

	me, err := f.users.Authenticate(context.Background(), token)
	require.NoError(t, err)
	require.NoError(t, f.users.DeleteSelf(context.Background(), me))

	_, err = f.users.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, common.ErrUnauthenticated)
}

func TestGetByID_CacheAside(t *testing.T) {
	f := newFixture(t)
	alice := f.signUp(t, "alice")
	ctx := context.Background()

	got, err := f.users.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice, got)
	assert.EqualValues(t, 1, f.repo.getByID.Load())

	raw, ok, err := f.cache.Get(ctx, cache.UserKey(alice.ID))
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"id":1,"username":"alice","email":"alice@x.io"}`, string(raw))

	got, err = f.users.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice, got)
	assert.EqualValues(t, 1, f.repo.getByID.Load(), "second read must be served from cache")
}

func TestGetByID_ServesCachedValueVerbatim(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.cache.Set(ctx, cache.UserKey(42), []byte(`{"id":42,"username":"stale","email":"s@x.io"}`), 0))

	got, err := f.users.GetByID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, &models.PublicUser{ID: 42, UserName: "stale", Email: "s@x.io"}, got)
	assert.Zero(t, f.repo.getByID.Load())
}

func TestGetByID_UndecodableEntryIsMiss(t *testing.T) {
	f := newFixture(t)
	alice := f.signUp(t, "alice")
	ctx := context.Background()
	require.NoError(t, f.cache.Set(ctx, cache.UserKey(alice.ID), []byte("{broken"), 0))

	got, err := f.users.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice, got)
	assert.EqualValues(t, 1, f.repo.getByID.Load())
}

func TestGetByID_NotFoundIsNotCached(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for range 2 {
		_, err := f.users.GetByID(ctx, 99)
		assert.ErrorIs(t, err, common.ErrNotFound)
	}
	assert.EqualValues(t, 2, f.repo.getByID.Load())
	assert.Zero(t, f.cache.sets.Load())
}

func TestGetByID_CacheFailures(t *testing.T) {
	boom := errors.Join(common.ErrCacheUnavailable, errors.New("down"))

	t.Run("get", func(t *testing.T) {
		f := newFixture(t)
		f.cache.getErr = boom
		_, err := f.users.GetByID(context.Background(), 1)
		assert.ErrorIs(t, err, common.ErrCacheUnavailable)
		assert.Zero(t, f.repo.getByID.Load())
	})

	t.Run("set", func(t *testing.T) {
		f := newFixture(t)
		alice := f.signUp(t, "alice")
		f.cache.setErr = boom
		_, err := f.users.GetByID(context.Background(), alice.ID)
		assert.ErrorIs(t, err, common.ErrCacheUnavailable)
	})
}

func TestUpdateSelf_InvalidatesCache(t *testing.T) {
	f := newFixture(t)
	me := f.principal(t, "alice")
	ctx := context.Background()

	_, err := f.users.GetByID(ctx, me.ID)
	require.NoError(t, err)

	updated, err := f.users.UpdateSelf(ctx, me, models.UserPatch{UserName: ptr("alice2")})
	require.NoError(t, err)
	assert.Equal(t, "alice2", updated.UserName)
	assert.Equal(t, "alice@x.io", updated.Email)

	_, ok, err := f.cache.Get(ctx, cache.UserKey(me.ID))
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := f.users.GetByID(ctx, me.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice2", got.UserName)
}

func TestUpdateSelf_EmptyPatchWritesNothing(t *testing.T) {
	f := newFixture(t)
	me := f.principal(t, "alice")

	got, err := f.users.UpdateSelf(context.Background(), me, models.UserPatch{})
	require.NoError(t, err)
	assert.Equal(t, me.Public(), got)
	assert.Zero(t, f.repo.writes.Load())
}

func TestUpdateSelf_Conflict(t *testing.T) {
	f := newFixture(t)
	f.signUp(t, "bob")
	me := f.principal(t, "alice")

	_, err := f.users.UpdateSelf(context.Background(), me, models.UserPatch{UserName: ptr("bob")})
	assert.ErrorIs(t, err, common.ErrConflict)
}

func TestUpdateSelf_InvalidationFailureSurfaces(t *testing.T) {
	f := newFixture(t)
	me := f.principal(t, "alice")
	f.cache.delErr = common.ErrCacheUnavailable

	_, err := f.users.UpdateSelf(context.Background(), me, models.UserPatch{Email: ptr("new@x.io")})
	assert.ErrorIs(t, err, common.ErrCacheUnavailable)

	stored, err := f.repo.GetByID(context.Background(), me.ID)
	require.NoError(t, err)
	assert.Equal(t, "new@x.io", stored.Email)
}

func TestUpdateSelf_InvalidatesAfterCancel(t *testing.T) {
	f := newFixture(t)
	me := f.principal(t, "alice")
	require.NoError(t, f.cache.Set(context.Background(), cache.UserKey(me.ID), []byte(`{}`), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.users.UpdateSelf(ctx, me, models.UserPatch{UserName: ptr("alice2")})
	require.NoError(t, err)

	_, ok, _ := f.cache.Get(context.Background(), cache.UserKey(me.ID))
	assert.False(t, ok)
}

func TestDeleteSelf(t *testing.T) {
	f := newFixture(t)
	me := f.principal(t, "alice")
	ctx := context.Background()

	_, err := f.users.GetByID(ctx, me.ID)
	require.NoError(t, err)

	require.NoError(t, f.users.DeleteSelf(ctx, me))

	_, ok, _ := f.cache.Get(ctx, cache.UserKey(me.ID))
	assert.False(t, ok, "deleted user must not linger in cache")

	_, err = f.users.GetByID(ctx, me.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	assert.ErrorIs(t, f.users.DeleteSelf(ctx, me), common.ErrNotFound)
}

func TestGetSelf(t *testing.T) {
	f := newFixture(t)
	me := f.principal(t, "alice")
	assert.Equal(t, me.Public(), f.users.GetSelf(me))
	assert.Zero(t, f.cache.sets.Load())
}
