package models

import "time"

// NotificationType classifies a notification.
type NotificationType string

const (
	NotificationPurchase NotificationType = "PURCHASE"
	NotificationFollow   NotificationType = "FOLLOW"
	NotificationShipping NotificationType = "SHIPPING"
	NotificationChat     NotificationType = "CHAT"
)

// Notification is an in-app message for a user. The unique index lets
// inserts skip duplicates instead of failing.
type Notification struct {
	ID               uint             `json:"id" gorm:"primaryKey"`
	UserID           uint             `json:"userId" gorm:"not null;uniqueIndex:idx_notification_unique"`
	Message          string           `json:"message" gorm:"type:varchar(512);not null;uniqueIndex:idx_notification_unique"`
	NotificationType NotificationType `json:"notificationType" gorm:"type:varchar(16);not null;uniqueIndex:idx_notification_unique"`
	Viewed           bool             `json:"viewed" gorm:"not null;default:false"`
	CreatedAt        time.Time        `json:"createdAt"`
}
