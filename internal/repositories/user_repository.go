package repositories

import (
	"context"

	"sprift/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	WithTx(tx *gorm.DB) UserRepository
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByClerkID(ctx context.Context, clerkID string) (*models.User, error)
	Upsert(ctx context.Context, user *models.User) error
	GetFilter(ctx context.Context, userID uint) (*models.FilterPreference, error)
	SaveFilter(ctx context.Context, filter *models.FilterPreference) error
	IncrementNumSales(ctx context.Context, userID uint, by int) error
}
