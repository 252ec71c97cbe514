package repositories

import (
	"context"
	"errors"
	"fmt"

	"sprift/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// WithTx returns a repository bound to the given transaction.
func (r *GORMUserRepository) WithTx(tx *gorm.DB) UserRepository {
	return &GORMUserRepository{db: tx}
}

// GetByID retrieves a user by their ID from the database.
func (r *GORMUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user with ID %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by ID %d: %w", id, err)
	}
	return &user, nil
}

// GetByClerkID retrieves a user by their external auth id.
func (r *GORMUserRepository) GetByClerkID(ctx context.Context, clerkID string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "clerk_id = ?", clerkID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user with clerk ID %s: %w", clerkID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by clerk ID %s: %w", clerkID, err)
	}
	return &user, nil
}

// Upsert inserts the user, or refreshes email and username when the clerk id
// is already known. The stored row is loaded back into user.
func (r *GORMUserRepository) Upsert(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "clerk_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"email", "username", "updated_at"}),
		}).
		Create(user).Error
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	if err := r.db.WithContext(ctx).First(user, "clerk_id = ?", user.ClerkID).Error; err != nil {
		return fmt.Errorf("failed to reload user %s: %w", user.ClerkID, err)
	}
	return nil
}

// GetFilter retrieves the saved explore filters of a user.
func (r *GORMUserRepository) GetFilter(ctx context.Context, userID uint) (*models.FilterPreference, error) {
	var filter models.FilterPreference
	if err := r.db.WithContext(ctx).First(&filter, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("filter for user %d: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get filter for user %d: %w", userID, err)
	}
	return &filter, nil
}

// SaveFilter creates or replaces the user's explore filters.
func (r *GORMUserRepository) SaveFilter(ctx context.Context, filter *models.FilterPreference) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"gender", "max_price", "sizes", "types"}),
		}).
		Create(filter).Error
	if err != nil {
		return fmt.Errorf("failed to save filter for user %d: %w", filter.UserID, err)
	}
	return nil
}

// IncrementNumSales adds by to the user's sales counter.
func (r *GORMUserRepository) IncrementNumSales(ctx context.Context, userID uint, by int) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("num_sales", gorm.Expr("num_sales + ?", by))
	if res.Error != nil {
		return fmt.Errorf("failed to increment sales for user %d: %w", userID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user with ID %d: %w", userID, ErrNotFound)
	}
	return nil
}
