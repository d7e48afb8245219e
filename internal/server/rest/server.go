// Package rest exposes the account services over HTTP using echo.
package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/BakeNecko/sidus-heroes/internal/logging"
	"github.com/BakeNecko/sidus-heroes/internal/server/models"
	"github.com/BakeNecko/sidus-heroes/internal/server/services"
	"github.com/labstack/echo/v4"
)

const defaultShutdownTimeout = 10 * time.Second

type AuthService interface {
	SignUp(ctx context.Context, in services.SignUpInput) (*models.PublicUser, error)
	SignIn(ctx context.Context, username, password string) (string, error)
}

type UserService interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
	GetSelf(user *models.User) *models.PublicUser
	GetByID(ctx context.Context, id int64) (*models.PublicUser, error)
	UpdateSelf(ctx context.Context, user *models.User, patch models.UserPatch) (*models.PublicUser, error)
	DeleteSelf(ctx context.Context, user *models.User) error
}

// Pinger is anything /healthz can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	address         string
	shutdownTimeout time.Duration
	auth            AuthService
	users           UserService
	checks          map[string]Pinger
	logger          logging.Logger
	echo            *echo.Echo
}

func NewServer(address string, shutdownTimeout time.Duration, l logging.Logger, as AuthService, us UserService, checks map[string]Pinger) *Server {
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}
	s := &Server{
		address:         address,
		shutdownTimeout: shutdownTimeout,
		auth:            as,
		users:           us,
		checks:          checks,
		logger:          l.With("module", "rest_server"),
	}
	s.echo = s.newEcho()
	return s
}

func (s *Server) newEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = newRequestValidator()
	e.HTTPErrorHandler = s.handleError

	s.useMiddleware(e)
	s.routes(e)
	return e
}

func (s *Server) routes(e *echo.Echo) {
	e.GET("/", s.root)
	e.GET("/healthz", s.healthz)

	api := e.Group("/api/v1")

	a := api.Group("/auth")
	a.POST("/sign-up", s.signUp)
	a.POST("/sign-in", s.signIn)

	u := api.Group("/users", s.requireBearer)
	u.GET("/me", s.getMe)
	u.GET("/get/:id", s.getUserByID)
	u.PATCH("/me", s.updateMe)
	u.DELETE("/me", s.deleteMe)
}

// Handler is the routed echo instance, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves until ctx is cancelled, then drains in-flight requests for at
// most the shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", s.address)
		if err := s.echo.Start(s.address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
	defer cancel()

	return s.echo.Shutdown(shutdownCtx)
}
