package services_test

import (
	"context"
	"testing"

	"sprift/internal/logger"
	"sprift/internal/models"
	"sprift/internal/services"
	"sprift/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListingService_Update(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	svc := services.NewListingService(e.listings, logger.Discard())
	seller := testutil.CreateUser(t, e.db, "seller")
	other := testutil.CreateUser(t, e.db, "other")
	listing := testutil.CreateListing(t, e.db, seller, testutil.ListingOpts{Images: []string{"img/old.jpg"}})

	kind := "Outerwear"
	got, err := svc.UpdateListing(ctx, listing.ID, services.UpdateListingInput{
		SellerID:     seller.ID,
		ClothingType: &kind,
		Price:        testutil.Price("42.50"),
		Description:  "  Wool coat ",
		ImagePaths:   []string{"img/coat-1.jpg", "img/coat-2.jpg"},
		Tags:         []string{"Vintage", "vintage ", "wool"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Outerwear", got.Listing.ClothingType)
	assert.Equal(t, "Wool coat", got.Listing.Description)
	assert.Equal(t, []string{"img/coat-1.jpg", "img/coat-2.jpg"}, got.ImagePaths)
	assert.ElementsMatch(t, []string{"vintage", "wool"}, got.Listing.TagNames())

	_, err = svc.UpdateListing(ctx, listing.ID, services.UpdateListingInput{SellerID: other.ID, Price: testutil.Price("1")})
	assert.ErrorIs(t, err, services.ErrNotFound)

	_, err = svc.UpdateListing(ctx, listing.ID, services.UpdateListingInput{SellerID: seller.ID})
	assert.ErrorIs(t, err, services.ErrValidation)

	sold := testutil.CreateListing(t, e.db, seller, testutil.ListingOpts{Status: models.ListingStatusSold})
	_, err = svc.UpdateListing(ctx, sold.ID, services.UpdateListingInput{SellerID: seller.ID, Price: testutil.Price("5")})
	assert.ErrorIs(t, err, services.ErrConflict)
}
