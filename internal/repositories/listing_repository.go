package repositories

import (
	"context"

	"sprift/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TagMatch is a listing whose tags intersect a user's style tags.
type TagMatch struct {
	ListingID   uint
	TagsMatched int64
}

// ListingStats holds the aggregate reaction counts of a listing.
type ListingStats struct {
	ListingID uint
	Likes     int64
	Dislikes  int64
	Carts     int64
}

// FallbackQuery selects the newest staging listings for a user.
type FallbackQuery struct {
	UserID     uint
	ExcludeIDs []uint
	// BeforeID continues a previous page: only ids lower than it are returned.
	BeforeID uint
	Take     int
}

// ListingUpdate carries the editable fields of a listing.
type ListingUpdate struct {
	ClothingType *string
	Size         *string
	Price        decimal.Decimal
	Description  string
	ImagePaths   []string
	TagNames     []string
}

// ListingRepository defines the interface for listing data access.
type ListingRepository interface {
	WithTx(tx *gorm.DB) ListingRepository
	GetByID(ctx context.Context, id uint) (*models.Listing, error)
	GetByIDs(ctx context.Context, ids []uint) ([]models.Listing, error)
	TagMatched(ctx context.Context, userID uint) ([]TagMatch, error)
	LikedByUser(ctx context.Context, userID uint) ([]uint, error)
	Stats(ctx context.Context, ids []uint) (map[uint]ListingStats, error)
	Fallback(ctx context.Context, q FallbackQuery) ([]models.Listing, error)
	Update(ctx context.Context, id uint, upd ListingUpdate) error
	MarkSold(ctx context.Context, ids []uint) (int64, error)
}
