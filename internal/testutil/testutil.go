// Package testutil holds fixtures shared by the package tests.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"sprift/internal/database"
	"sprift/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB opens a migrated in-memory sqlite database private to the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := database.Open(context.Background(), "sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// Price parses a decimal literal.
func Price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// CreateUser stores a user with a complete shipping address.
func CreateUser(t *testing.T, db *gorm.DB, clerkID string, styleTags ...models.Tag) *models.User {
	t.Helper()
	user := &models.User{
		ClerkID:  clerkID,
		Email:    clerkID + "@example.com",
		Name:     "User " + clerkID,
		Street1:  "1 Main St",
		City:     "Austin",
		State:    "TX",
		Zip:      "78701",
		Country:  "US",
		Phone:    "5125550100",
		Username: clerkID,
	}
	require.NoError(t, db.Omit("StyleTags", "Filter").Create(user).Error)
	if len(styleTags) > 0 {
		require.NoError(t, db.Model(user).Association("StyleTags").Append(styleTags))
	}
	return user
}

// CreateTags stores tags by name and returns them in the same order.
func CreateTags(t *testing.T, db *gorm.DB, names ...string) []models.Tag {
	t.Helper()
	tags := make([]models.Tag, 0, len(names))
	for _, name := range names {
		tag := models.Tag{Name: name}
		require.NoError(t, db.Where(models.Tag{Name: name}).FirstOrCreate(&tag).Error)
		tags = append(tags, tag)
	}
	return tags
}

// ListingOpts configures CreateListing.
type ListingOpts struct {
	Price        string
	Size         string
	Gender       string
	ClothingType string
	Status       models.ListingStatus
	Images       []string
	Tags         []models.Tag
}

// CreateListing stores a listing owned by seller.
func CreateListing(t *testing.T, db *gorm.DB, seller *models.User, opts ListingOpts) *models.Listing {
	t.Helper()
	if opts.Price == "" {
		opts.Price = "20.00"
	}
	if opts.Status == "" {
		opts.Status = models.ListingStatusStaging
	}
	listing := &models.Listing{
		SellerID:     seller.ID,
		Description:  "listing of " + seller.ClerkID,
		Price:        Price(opts.Price),
		Size:         opts.Size,
		Gender:       opts.Gender,
		ClothingType: opts.ClothingType,
		Weight:       Price("1.5"),
		WeightUnit:   "lb",
		Status:       opts.Status,
	}
	require.NoError(t, db.Omit("Seller", "Images", "Tags").Create(listing).Error)
	for i, path := range opts.Images {
		require.NoError(t, db.Create(&models.ListingImage{ListingID: listing.ID, Path: path, Position: i}).Error)
	}
	if len(opts.Tags) > 0 {
		require.NoError(t, db.Model(listing).Association("Tags").Append(opts.Tags))
	}
	return listing
}

// AddToCart puts listings into the user's cart.
func AddToCart(t *testing.T, db *gorm.DB, user *models.User, listings ...*models.Listing) {
	t.Helper()
	for _, l := range listings {
		require.NoError(t, db.Create(&models.CartItem{UserID: user.ID, ListingID: l.ID}).Error)
	}
}

// Like records a like from user on each listing.
func Like(t *testing.T, db *gorm.DB, user *models.User, listings ...*models.Listing) {
	t.Helper()
	for _, l := range listings {
		require.NoError(t, db.Create(&models.Like{UserID: user.ID, ListingID: l.ID}).Error)
	}
}
