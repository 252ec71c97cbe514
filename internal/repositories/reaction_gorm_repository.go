package repositories

import (
	"context"
	"fmt"

	"sprift/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMReactionRepository is a GORM implementation of ReactionRepository.
type GORMReactionRepository struct {
	db *gorm.DB
}

// NewGORMReactionRepository creates a new instance of GORMReactionRepository.
func NewGORMReactionRepository(db *gorm.DB) *GORMReactionRepository {
	return &GORMReactionRepository{
		db: db,
	}
}

// WithTx returns a repository bound to the given transaction.
func (r *GORMReactionRepository) WithTx(tx *gorm.DB) ReactionRepository {
	return &GORMReactionRepository{db: tx}
}

func reactionRow(kind models.ReactionKind, userID, listingID uint) (interface{}, error) {
	switch kind {
	case models.ReactionLike:
		return &models.Like{UserID: userID, ListingID: listingID}, nil
	case models.ReactionDislike:
		return &models.Dislike{UserID: userID, ListingID: listingID}, nil
	case models.ReactionCart:
		return &models.CartItem{UserID: userID, ListingID: listingID}, nil
	case models.ReactionSave:
		return &models.SavedItem{UserID: userID, ListingID: listingID}, nil
	default:
		return nil, fmt.Errorf("unknown reaction kind %q", kind)
	}
}

var allReactionKinds = []models.ReactionKind{
	models.ReactionLike, models.ReactionDislike, models.ReactionCart, models.ReactionSave,
}

// CartListingIDs returns the listings in the user's cart in insertion order.
func (r *GORMReactionRepository) CartListingIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.CartItem{}).
		Where("user_id = ?", userID).
		Order("created_at ASC, listing_id ASC").
		Pluck("listing_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get cart of user %d: %w", userID, err)
	}
	return ids, nil
}

// RemoveFromCart deletes the user's cart rows for the given listings.
func (r *GORMReactionRepository) RemoveFromCart(ctx context.Context, userID uint, listingIDs []uint) (int64, error) {
	if len(listingIDs) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND listing_id IN ?", userID, listingIDs).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to clear cart of user %d: %w", userID, res.Error)
	}
	return res.RowsAffected, nil
}

// Set puts the listing into the given state for the user and clears every
// other state, so the states stay mutually exclusive.
func (r *GORMReactionRepository) Set(ctx context.Context, kind models.ReactionKind, userID, listingID uint) error {
	row, err := reactionRow(kind, userID, listingID)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, other := range allReactionKinds {
			if other == kind {
				continue
			}
			otherRow, _ := reactionRow(other, userID, listingID)
			if err := tx.Where("user_id = ? AND listing_id = ?", userID, listingID).Delete(otherRow).Error; err != nil {
				return fmt.Errorf("failed to clear %s of listing %d: %w", other, listingID, err)
			}
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(row).Error; err != nil {
			return fmt.Errorf("failed to store %s of listing %d: %w", kind, listingID, err)
		}
		return nil
	})
}

// Remove deletes one state row and reports whether it existed.
func (r *GORMReactionRepository) Remove(ctx context.Context, kind models.ReactionKind, userID, listingID uint) (int64, error) {
	row, err := reactionRow(kind, userID, listingID)
	if err != nil {
		return 0, err
	}
	res := r.db.WithContext(ctx).Where("user_id = ? AND listing_id = ?", userID, listingID).Delete(row)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to remove %s of listing %d: %w", kind, listingID, res.Error)
	}
	return res.RowsAffected, nil
}
