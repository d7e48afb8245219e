// Package server wires the account service together: it opens the store and
// cache, builds the services and runs the REST and gRPC listeners until the
// process is signalled.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/BakeNecko/sidus-heroes/internal/logging"
	"github.com/BakeNecko/sidus-heroes/internal/server/auth"
	"github.com/BakeNecko/sidus-heroes/internal/server/config"
	"github.com/BakeNecko/sidus-heroes/internal/server/rest"
	"github.com/BakeNecko/sidus-heroes/internal/server/services"

	gs "github.com/BakeNecko/sidus-heroes/internal/server/grpc"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	deps        *Deps
	authService *services.AuthService
	userService *services.UserService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSON(os.Stdout, c.LogLevel)

	deps, err := OpenDeps(c)
	if err != nil {
		return nil, err
	}

	if err := deps.Ping(ctx); err != nil {
		_ = deps.Close()
		return nil, err
	}

	if err := deps.Store.RunMigrations(ctx); err != nil {
		_ = deps.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	repo := deps.Store.Users(deps.Store.DB())
	tokens := auth.NewTokenService([]byte(c.SecretKey), c.AccessTokenValidityDuration)

	as := services.NewAuthService(repo, auth.NewPasswordHasher(c.BcryptCost), tokens, logger)
	us := services.NewUserService(repo, deps.Cache, tokens, c.UserCacheTTL, logger)

	return &App{config: c, logger: logger, deps: deps, authService: as, userService: us}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startRESTServer(ctx context.Context, cancelFunc context.CancelFunc) {
	checks := map[string]rest.Pinger{"store": app.deps.Store, "cache": app.deps.Cache}
	s := rest.NewServer(app.config.EndpointAddrHTTP, app.config.ShutdownTimeout, app.logger, app.authService, app.userService, checks)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	checks := map[string]gs.Pinger{"store": app.deps.Store, "cache": app.deps.Cache}
	s := gs.NewOpsServer(app.config.EndpointAddrGRPC, app.logger, checks)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until a signal arrives or a listener fails, then waits for
// both listeners to stop and closes the connections.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startRESTServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.deps.Close(); err != nil {
		app.logger.Error(ctx, "closing connections", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
