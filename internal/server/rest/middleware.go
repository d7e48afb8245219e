package rest

import (
	"strings"

	"github.com/BakeNecko/sidus-heroes/internal/common"
	"github.com/BakeNecko/sidus-heroes/internal/server/models"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const principalKey = "principal"

func (s *Server) useMiddleware(e *echo.Echo) {
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURIPath:   true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Info(c.Request().Context(), "request",
				"method", v.Method,
				"path", v.URIPath,
				"status", v.Status,
				"latency", v.Latency,
				"request_id", v.RequestID,
			)
			return nil
		},
	}))
}

// requireBearer resolves the Authorization header to a stored user. A
// missing or malformed header is rejected before the token is looked at.
func (s *Server) requireBearer(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := bearerToken(c.Request().Header.Get(common.AuthorizationHeaderName))
		if !ok {
			return common.ErrUnauthenticated
		}

		user, err := s.users.Authenticate(c.Request().Context(), token)
		if err != nil {
			return err
		}

		c.Set(principalKey, user)
		return next(c)
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, common.BearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func principal(c echo.Context) (*models.User, error) {
	user, ok := c.Get(principalKey).(*models.User)
	if !ok || user == nil {
		return nil, common.ErrUnauthenticated
	}
	return user, nil
}
