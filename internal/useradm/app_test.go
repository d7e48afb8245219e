package useradm

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/BakeNecko/sidus-heroes/internal/common"
	"github.com/BakeNecko/sidus-heroes/internal/logging"
	"github.com/BakeNecko/sidus-heroes/internal/server/auth"
	"github.com/BakeNecko/sidus-heroes/internal/server/cache"
	"github.com/BakeNecko/sidus-heroes/internal/server/repositories/users"
	"github.com/BakeNecko/sidus-heroes/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func newTestApp(t *testing.T, password string) (*App, *users.MemoryRepository, *cache.MemoryCache, *bytes.Buffer) {
	t.Helper()
	repo := users.NewMemoryRepository()
	c := cache.NewMemoryCache()
	as := services.NewAuthService(repo, auth.NewPasswordHasher(bcrypt.MinCost),
		auth.NewTokenService([]byte("k"), time.Minute), logging.Nop{})

	var out bytes.Buffer
	app := NewApp(as, c, map[string]Pinger{"cache": c}, strings.NewReader(""), &out)
	app.getPassword = func(io.Writer, *bufio.Reader) (string, error) { return password, nil }
	return app, repo, c, &out
}

func TestCreate(t *testing.T) {
	app, repo, _, out := newTestApp(t, "secret1")

	err := app.Run(context.Background(), "create", []string{"-u", "admin", "-e", "admin@x.io"})
	require.NoError(t, err)
	assert.Equal(t, "Created user 1 (admin)\n", out.String())

	u, err := repo.GetByUsername(context.Background(), "admin")
	require.NoError(t, err)
	assert.Equal(t, "admin@x.io", u.Email)
}

func TestCreate_Errors(t *testing.T) {
	app, _, _, _ := newTestApp(t, "abc")

	err := app.Run(context.Background(), "create", []string{"-u", "admin"})
	assert.ErrorIs(t, err, ErrUsage)

	err = app.Run(context.Background(), "create", []string{"-u", "admin", "-e", "admin@x.io"})
	assert.ErrorIs(t, err, common.ErrValidation)

	app.getPassword = func(io.Writer, *bufio.Reader) (string, error) { return "", errors.New("no tty") }
	err = app.Run(context.Background(), "create", []string{"-u", "admin", "-e", "admin@x.io"})
	assert.ErrorContains(t, err, "no tty")
}

func TestFlushCache(t *testing.T) {
	app, _, c, out := newTestApp(t, "")
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, cache.UserKey(1), []byte(`{}`), time.Minute))

	require.NoError(t, app.Run(ctx, "flush-cache", nil))
	assert.Equal(t, "Cache flushed\n", out.String())

	_, ok, err := c.Get(ctx, cache.UserKey(1))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPing(t *testing.T) {
	app, _, _, out := newTestApp(t, "")
	app.checks["store"] = pingFunc(func(context.Context) error { return errors.New("refused") })

	err := app.Run(context.Background(), "ping", nil)
	assert.ErrorContains(t, err, "store: refused")
	assert.Equal(t, "cache: OK\nstore: FAIL (refused)\n", out.String())
}

func TestUnknownCommand(t *testing.T) {
	app, _, _, _ := newTestApp(t, "")
	assert.ErrorIs(t, app.Run(context.Background(), "drop-all", nil), ErrUsage)
}
