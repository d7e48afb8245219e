package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/BakeNecko/sidus-heroes/internal/common"
	"github.com/BakeNecko/sidus-heroes/internal/logging"
	"github.com/BakeNecko/sidus-heroes/internal/server/cache"
	"github.com/BakeNecko/sidus-heroes/internal/server/models"
	"github.com/BakeNecko/sidus-heroes/internal/server/repositories/users"
)

type TokenValidator interface {
	Validate(token string) (int64, error)
}

type UserService struct {
	users  users.Repository
	cache  cache.Cache
	tokens TokenValidator
	ttl    time.Duration
	logger logging.Logger
}

func NewUserService(repo users.Repository, c cache.Cache, tokens TokenValidator, ttl time.Duration, logger logging.Logger) *UserService {
	if ttl <= 0 {
		ttl = cache.DefaultUserTTL
	}
	return &UserService{
		users:  repo,
		cache:  c,
		tokens: tokens,
		ttl:    ttl,
		logger: logger.With("module", "user_service"),
	}
}

// Authenticate resolves a bearer token to a stored user. Token rejections
// are returned as is; a valid token whose user no longer exists yields
// common.ErrUnauthenticated.
func (s *UserService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	userID, err := s.tokens.Validate(token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthenticated
		}
		return nil, fmt.Errorf("load principal: %w", err)
	}
	return user, nil
}

// GetSelf projects the authenticated user. The cache is not involved.
func (s *UserService) GetSelf(user *models.User) *models.PublicUser {
	return user.Public()
}

// GetByID is the cache-aside read. A hit is returned without asking the
// store; a miss loads from the store and fills the cache. Absent users are
// not cached.
func (s *UserService) GetByID(ctx context.Context, id int64) (*models.PublicUser, error) {
	key := cache.UserKey(id)

	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	if ok {
		var cached models.PublicUser
		if err := json.Unmarshal(raw, &cached); err == nil {
			return &cached, nil
		}
		s.logger.Warn(ctx, "dropping undecodable cache entry", "key", key)
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	public := user.Public()
	b, err := json.Marshal(public)
	if err != nil {
		return nil, fmt.Errorf("%w: encode user: %v", common.ErrInternal, err)
	}
	if err := s.cache.Set(ctx, key, b, s.ttl); err != nil {
		return nil, fmt.Errorf("cache set: %w", err)
	}
	return public, nil
}

// UpdateSelf applies patch to the authenticated user and then drops the
// cached projection. An empty patch writes nothing.
func (s *UserService) UpdateSelf(ctx context.Context, user *models.User, patch models.UserPatch) (*models.PublicUser, error) {
	if patch.Empty() {
		return user.Public(), nil
	}

	updated, err := s.users.UpdateByID(ctx, user.ID, patch)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrNotFound):
			return nil, common.ErrNotFound
		case errors.Is(err, common.ErrConflict):
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	if err := s.invalidate(ctx, user.ID); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user updated", "user_id", user.ID)
	return updated.Public(), nil
}

// DeleteSelf removes the authenticated user and its cached projection.
func (s *UserService) DeleteSelf(ctx context.Context, user *models.User) error {
	if err := s.users.DeleteByID(ctx, user.ID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}

	if err := s.invalidate(ctx, user.ID); err != nil {
		return err
	}

	s.logger.Info(ctx, "user deleted", "user_id", user.ID)
	return nil
}

// invalidate runs once the store write has landed, so it must not be cut
// short by the caller going away.
func (s *UserService) invalidate(ctx context.Context, id int64) error {
	if _, err := s.cache.Delete(context.WithoutCancel(ctx), cache.UserKey(id)); err != nil {
		s.logger.Error(ctx, "cache invalidation failed", "user_id", id, "error", err)
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}
