package repositories

import (
	"context"

	"sprift/internal/models"

	"gorm.io/gorm"
)

// ReactionRepository defines the interface for the per-user listing states
// (liked, disliked, in cart, saved for later).
type ReactionRepository interface {
	WithTx(tx *gorm.DB) ReactionRepository
	CartListingIDs(ctx context.Context, userID uint) ([]uint, error)
	RemoveFromCart(ctx context.Context, userID uint, listingIDs []uint) (int64, error)
	Set(ctx context.Context, kind models.ReactionKind, userID, listingID uint) error
	Remove(ctx context.Context, kind models.ReactionKind, userID, listingID uint) (int64, error)
}
