package rest

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/BakeNecko/sidus-heroes/internal/common"
	"github.com/labstack/echo/v4"
)

type errorResponse struct {
	Detail string `json:"detail"`
}

func badRequest(detail string) error {
	return echo.NewHTTPError(http.StatusBadRequest, detail)
}

// statusFor is the single place where errors become status codes.
func statusFor(err error) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprint(he.Message)
	}

	switch {
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, common.ErrConflict):
		return http.StatusBadRequest, "user with this username or email already exists"
	case errors.Is(err, common.ErrInvalidCredentials):
		return http.StatusBadRequest, "incorrect username or password"
	case errors.Is(err, common.ErrNotFound):
		return http.StatusBadRequest, "user not found"
	case errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized, "token expired"
	case errors.Is(err, common.ErrInvalidScope):
		return http.StatusUnauthorized, "invalid token scope"
	case errors.Is(err, common.ErrInvalidToken):
		return http.StatusUnauthorized, "invalid token"
	case errors.Is(err, common.ErrUnauthenticated):
		return http.StatusUnauthorized, "not authenticated"
	}
	return http.StatusInternalServerError, "internal server error"
}

func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code, detail := statusFor(err)
	if code == http.StatusUnauthorized {
		c.Response().Header().Set(echo.HeaderWWWAuthenticate, common.BearerScheme)
	}
	if code >= http.StatusInternalServerError {
		s.logger.Error(c.Request().Context(), "request failed",
			"path", c.Path(), "error", err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, errorResponse{Detail: detail})
	}
	if err != nil {
		s.logger.Error(c.Request().Context(), "write error response", "error", err)
	}
}
