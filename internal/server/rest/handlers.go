package rest

import (
	"context"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/BakeNecko/sidus-heroes/internal/server/models"
	"github.com/BakeNecko/sidus-heroes/internal/server/services"
	"github.com/labstack/echo/v4"
)

const healthCheckTimeout = 2 * time.Second

type signUpRequest struct {
	Email    string `json:"email" validate:"required,email,max=200"`
	UserName string `json:"username" validate:"required,min=1,max=55"`
	Password string `json:"password" validate:"required"`
}

type signInRequest struct {
	UserName string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type updateRequest struct {
	UserName *string `json:"username" validate:"omitempty,min=1,max=55"`
	Email    *string `json:"email" validate:"omitempty,email,max=200"`
}

type statusResponse struct {
	Status    string `json:"status"`
	Component string `json:"component,omitempty"`
}

func (s *Server) root(c echo.Context) error {
	return c.JSON(http.StatusOK, statusResponse{Status: "ok"})
}

func (s *Server) healthz(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthCheckTimeout)
	defer cancel()

	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := s.checks[name].Ping(ctx); err != nil {
			s.logger.Warn(ctx, "health check failed", "component", name, "error", err)
			return c.JSON(http.StatusServiceUnavailable, statusResponse{Status: "unavailable", Component: name})
		}
	}
	return c.JSON(http.StatusOK, statusResponse{Status: "ok"})
}

func (s *Server) signUp(c echo.Context) error {
	var req signUpRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := s.auth.SignUp(c.Request().Context(), services.SignUpInput{
		UserName: req.UserName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, user)
}

func (s *Server) signIn(c echo.Context) error {
	var req signInRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	token, err := s.auth.SignIn(c.Request().Context(), req.UserName, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tokenResponse{Token: token})
}

func (s *Server) getMe(c echo.Context) error {
	me, err := principal(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s.users.GetSelf(me))
}

func (s *Server) getUserByID(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return badRequest("invalid user id")
	}

	user, err := s.users.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func (s *Server) updateMe(c echo.Context) error {
	me, err := principal(c)
	if err != nil {
		return err
	}

	var req updateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if (req.UserName != nil && *req.UserName == "") || (req.Email != nil && *req.Email == "") {
		return badRequest("fields must not be empty")
	}

	updated, err := s.users.UpdateSelf(c.Request().Context(), me, models.UserPatch{
		UserName: req.UserName,
		Email:    req.Email,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteMe(c echo.Context) error {
	me, err := principal(c)
	if err != nil {
		return err
	}
	if err := s.users.DeleteSelf(c.Request().Context(), me); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
