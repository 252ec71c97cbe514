package repositories

import (
	"context"
	"fmt"

	"sprift/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NotificationRepository defines the interface for notification data access.
type NotificationRepository interface {
	WithTx(tx *gorm.DB) NotificationRepository
	CreateSkipDuplicates(ctx context.Context, notifications []models.Notification) (int64, error)
	ListForUser(ctx context.Context, userID uint, limit int) ([]models.Notification, error)
}

// GORMNotificationRepository is a GORM implementation of NotificationRepository.
type GORMNotificationRepository struct {
	db *gorm.DB
}

// NewGORMNotificationRepository creates a new instance of GORMNotificationRepository.
func NewGORMNotificationRepository(db *gorm.DB) *GORMNotificationRepository {
	return &GORMNotificationRepository{
		db: db,
	}
}

// WithTx returns a repository bound to the given transaction.
func (r *GORMNotificationRepository) WithTx(tx *gorm.DB) NotificationRepository {
	return &GORMNotificationRepository{db: tx}
}

// CreateSkipDuplicates inserts the notifications, ignoring any that already
// exist for the same user, type and message. It returns how many were new.
func (r *GORMNotificationRepository) CreateSkipDuplicates(ctx context.Context, notifications []models.Notification) (int64, error) {
	if len(notifications) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&notifications)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to create notifications: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// ListForUser returns the user's notifications, newest first.
func (r *GORMNotificationRepository) ListForUser(ctx context.Context, userID uint, limit int) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&notifications).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications of user %d: %w", userID, err)
	}
	return notifications, nil
}
