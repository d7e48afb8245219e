// Package users is the durable user store.
package users

import (
	"context"

	"github.com/BakeNecko/sidus-heroes/internal/server/models"
)

// Repository is the user store contract. Lookups of an absent user return
// common.ErrNotFound; a duplicate username or email returns
// common.ErrConflict; connectivity failures wrap common.ErrStoreUnavailable.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateByID(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error)
	DeleteByID(ctx context.Context, id int64) error
}
