package models

import "time"

// Like, Dislike, CartItem and SavedItem are User x Listing join rows. A
// listing is in at most one of these states for a given user.

type Like struct {
	UserID    uint `gorm:"primaryKey"`
	ListingID uint `gorm:"primaryKey;index"`
	CreatedAt time.Time
}

type Dislike struct {
	UserID    uint `gorm:"primaryKey"`
	ListingID uint `gorm:"primaryKey;index"`
	CreatedAt time.Time
}

type CartItem struct {
	UserID    uint `gorm:"primaryKey"`
	ListingID uint `gorm:"primaryKey;index"`
	CreatedAt time.Time
}

type SavedItem struct {
	UserID    uint `gorm:"primaryKey"`
	ListingID uint `gorm:"primaryKey;index"`
	CreatedAt time.Time
}

// ReactionKind names one of the exclusive per-user listing states.
type ReactionKind string

const (
	ReactionLike    ReactionKind = "like"
	ReactionDislike ReactionKind = "dislike"
	ReactionCart    ReactionKind = "cart"
	ReactionSave    ReactionKind = "save"
)
