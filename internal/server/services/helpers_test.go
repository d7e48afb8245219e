package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/BakeNecko/sidus-heroes/internal/logging"
	"github.com/BakeNecko/sidus-heroes/internal/server/auth"
	"github.com/BakeNecko/sidus-heroes/internal/server/cache"
	"github.com/BakeNecko/sidus-heroes/internal/server/models"
	"github.com/BakeNecko/sidus-heroes/internal/server/repositories/users"
	"golang.org/x/crypto/bcrypt"
)

// countingRepo records store traffic so tests can tell hits from misses.
type countingRepo struct {
	users.Repository
	getByID atomic.Int64
	writes  atomic.Int64
}

func (r *countingRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	r.getByID.Add(1)
	return r.Repository.GetByID(ctx, id)
}

func (r *countingRepo) UpdateByID(ctx context.Context, id int64, p models.UserPatch) (*models.User, error) {
	r.writes.Add(1)
	return r.Repository.UpdateByID(ctx, id, p)
}

func (r *countingRepo) DeleteByID(ctx context.Context, id int64) error {
	r.writes.Add(1)
	return r.Repository.DeleteByID(ctx, id)
}

type fakeCache struct {
	cache.Cache
	getErr, setErr, delErr error
	sets                   atomic.Int64
}

func (c *fakeCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	return c.Cache.Get(ctx, key)
}

func (c *fakeCache) Set(ctx context.Context, key string, v []byte, ttl time.Duration) error {
	c.sets.Add(1)
	if c.setErr != nil {
		return c.setErr
	}
	return c.Cache.Set(ctx, key, v, ttl)
}

func (c *fakeCache) Delete(ctx context.Context, key string) (bool, error) {
	if c.delErr != nil {
		return false, c.delErr
	}
	return c.Cache.Delete(ctx, key)
}

type fixture struct {
	repo   *countingRepo
	cache  *fakeCache
	tokens *auth.TokenService
	auth   *AuthService
	users  *UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:   &countingRepo{Repository: users.NewMemoryRepository()},
		cache:  &fakeCache{Cache: cache.NewMemoryCache()},
		tokens: auth.NewTokenService([]byte("test-secret"), time.Minute),
	}
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)
	f.auth = NewAuthService(f.repo, hasher, f.tokens, logging.Nop{})
	f.users = NewUserService(f.repo, f.cache, f.tokens, time.Hour, logging.Nop{})
	return f
}

func (f *fixture) signUp(t *testing.T, name string) *models.PublicUser {
	t.Helper()
	u, err := f.auth.SignUp(context.Background(), SignUpInput{
		UserName: name,
		Email:    name + "@x.io",
		Password: "secret1",
	})
	if err != nil {
		t.Fatalf("sign up %s: %v", name, err)
	}
	return u
}
