package repositories

import (
	"context"
	"errors"
	"fmt"

	"sprift/internal/models"

	"gorm.io/gorm"
)

// GORMListingRepository is a GORM implementation of ListingRepository.
type GORMListingRepository struct {
	db *gorm.DB
}

// NewGORMListingRepository creates a new instance of GORMListingRepository.
func NewGORMListingRepository(db *gorm.DB) *GORMListingRepository {
	return &GORMListingRepository{
		db: db,
	}
}

// WithTx returns a repository bound to the given transaction.
func (r *GORMListingRepository) WithTx(tx *gorm.DB) ListingRepository {
	return &GORMListingRepository{db: tx}
}

func withListingDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Seller").
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC, id ASC") }).
		Preload("Tags")
}

// GetByID retrieves a listing with its seller, images and tags.
func (r *GORMListingRepository) GetByID(ctx context.Context, id uint) (*models.Listing, error) {
	var listing models.Listing
	if err := withListingDetails(r.db.WithContext(ctx)).First(&listing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("listing with ID %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get listing by ID %d: %w", id, err)
	}
	return &listing, nil
}

// GetByIDs retrieves the listings with the given ids, ordered by id. Missing
// ids are silently absent from the result.
func (r *GORMListingRepository) GetByIDs(ctx context.Context, ids []uint) ([]models.Listing, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var listings []models.Listing
	if err := withListingDetails(r.db.WithContext(ctx)).Where("id IN ?", ids).Order("id ASC").Find(&listings).Error; err != nil {
		return nil, fmt.Errorf("failed to get listings: %w", err)
	}
	return listings, nil
}

// TagMatched returns staging listings of other sellers that share at least
// one tag with the user's style tags, with the number of shared tags.
func (r *GORMListingRepository) TagMatched(ctx context.Context, userID uint) ([]TagMatch, error) {
	var matches []TagMatch
	err := r.db.WithContext(ctx).
		Table("listings").
		Select("listings.id AS listing_id, COUNT(DISTINCT listing_tags.tag_id) AS tags_matched").
		Joins("JOIN listing_tags ON listing_tags.listing_id = listings.id").
		Joins("JOIN user_tags ON user_tags.tag_id = listing_tags.tag_id AND user_tags.user_id = ?", userID).
		Where("listings.status = ? AND listings.seller_id <> ?", models.ListingStatusStaging, userID).
		Group("listings.id").
		Order("tags_matched DESC, listings.id DESC").
		Scan(&matches).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query tag matches for user %d: %w", userID, err)
	}
	return matches, nil
}

// LikedByUser returns the ids of staging listings of other sellers the user
// has liked.
func (r *GORMListingRepository) LikedByUser(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Table("listings").
		Select("listings.id").
		Joins("JOIN likes ON likes.listing_id = listings.id AND likes.user_id = ?", userID).
		Where("listings.status = ? AND listings.seller_id <> ?", models.ListingStatusStaging, userID).
		Order("listings.id DESC").
		Pluck("listings.id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query liked listings for user %d: %w", userID, err)
	}
	return ids, nil
}

// Stats returns like, dislike and cart counts keyed by listing id.
func (r *GORMListingRepository) Stats(ctx context.Context, ids []uint) (map[uint]ListingStats, error) {
	stats := make(map[uint]ListingStats, len(ids))
	if len(ids) == 0 {
		return stats, nil
	}
	var rows []ListingStats
	err := r.db.WithContext(ctx).
		Table("listings").
		Select(`listings.id AS listing_id,
			(SELECT COUNT(*) FROM likes WHERE likes.listing_id = listings.id) AS likes,
			(SELECT COUNT(*) FROM dislikes WHERE dislikes.listing_id = listings.id) AS dislikes,
			(SELECT COUNT(*) FROM cart_items WHERE cart_items.listing_id = listings.id) AS carts`).
		Where("listings.id IN ?", ids).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query listing stats: %w", err)
	}
	for _, row := range rows {
		stats[row.ListingID] = row
	}
	return stats, nil
}

// Fallback returns the newest staging listings not owned by the user. Ids are
// assigned in creation order, so id descending is newest first and doubles as
// the keyset for BeforeID.
func (r *GORMListingRepository) Fallback(ctx context.Context, q FallbackQuery) ([]models.Listing, error) {
	db := withListingDetails(r.db.WithContext(ctx)).
		Where("status = ? AND seller_id <> ?", models.ListingStatusStaging, q.UserID)
	if len(q.ExcludeIDs) > 0 {
		db = db.Where("id NOT IN ?", q.ExcludeIDs)
	}
	if q.BeforeID > 0 {
		db = db.Where("id < ?", q.BeforeID)
	}
	var listings []models.Listing
	if err := db.Order("id DESC").Limit(q.Take).Find(&listings).Error; err != nil {
		return nil, fmt.Errorf("failed to query fallback listings for user %d: %w", q.UserID, err)
	}
	return listings, nil
}

// Update writes the editable fields and replaces images and tags.
func (r *GORMListingRepository) Update(ctx context.Context, id uint, upd ListingUpdate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fields := map[string]interface{}{
			"price":       upd.Price,
			"description": upd.Description,
		}
		if upd.ClothingType != nil {
			fields["clothing_type"] = *upd.ClothingType
		}
		if upd.Size != nil {
			fields["size"] = *upd.Size
		}
		res := tx.Model(&models.Listing{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return fmt.Errorf("failed to update listing %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("listing with ID %d: %w", id, ErrNotFound)
		}

		if err := tx.Where("listing_id = ?", id).Delete(&models.ListingImage{}).Error; err != nil {
			return fmt.Errorf("failed to clear images of listing %d: %w", id, err)
		}
		if len(upd.ImagePaths) > 0 {
			images := make([]models.ListingImage, 0, len(upd.ImagePaths))
			for i, path := range upd.ImagePaths {
				images = append(images, models.ListingImage{ListingID: id, Path: path, Position: i})
			}
			if err := tx.Create(&images).Error; err != nil {
				return fmt.Errorf("failed to store images of listing %d: %w", id, err)
			}
		}

		tags := make([]models.Tag, 0, len(upd.TagNames))
		for _, name := range upd.TagNames {
			var tag models.Tag
			if err := tx.Where(models.Tag{Name: name}).FirstOrCreate(&tag).Error; err != nil {
				return fmt.Errorf("failed to resolve tag %q: %w", name, err)
			}
			tags = append(tags, tag)
		}
		listing := models.Listing{ID: id}
		if err := tx.Model(&listing).Association("Tags").Replace(tags); err != nil {
			return fmt.Errorf("failed to replace tags of listing %d: %w", id, err)
		}
		return nil
	})
}

// MarkSold flips the given listings to SOLD, but only those still STAGING.
// The caller compares the affected count with len(ids) to detect a listing
// that was sold concurrently.
func (r *GORMListingRepository) MarkSold(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Model(&models.Listing{}).
		Where("id IN ? AND status = ?", ids, models.ListingStatusStaging).
		Update("status", models.ListingStatusSold)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to mark listings sold: %w", res.Error)
	}
	return res.RowsAffected, nil
}
