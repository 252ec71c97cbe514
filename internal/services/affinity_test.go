package services_test

import (
	"context"
	"testing"

	"sprift/internal/services"
	"sprift/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeAffinityListings(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	tags := testutil.CreateTags(t, e.db, "vintage", "y2k")
	buyer := testutil.CreateUser(t, e.db, "buyer", tags[0])
	seller := testutil.CreateUser(t, e.db, "seller")

	tagged := testutil.CreateListing(t, e.db, seller, testutil.ListingOpts{
		Tags:   tags[:1],
		Images: []string{"img/front.jpg", "x", "img/front.jpg", "img/back.jpg"},
	})
	liked := testutil.CreateListing(t, e.db, seller, testutil.ListingOpts{})
	testutil.CreateListing(t, e.db, buyer, testutil.ListingOpts{Tags: tags[:1]})
	testutil.Like(t, e.db, buyer, liked)
	other := testutil.CreateUser(t, e.db, "other")
	testutil.Like(t, e.db, other, tagged)
	testutil.AddToCart(t, e.db, other, liked)

	got, err := e.affinity.ComputeAffinityListings(ctx, buyer.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, tagged.ID, got[0].Listing.ID)
	assert.Equal(t, int64(1), got[0].TagsMatched)
	assert.False(t, got[0].Liked)
	assert.Equal(t, []string{"img/front.jpg", "img/back.jpg"}, got[0].ImagePaths)
	assert.Equal(t, int64(1), got[0].Likes)

	assert.Equal(t, liked.ID, got[1].Listing.ID)
	assert.True(t, got[1].Liked)
	assert.Equal(t, int64(0), got[1].TagsMatched)
	assert.Equal(t, int64(1), got[1].Likes)
	assert.Equal(t, int64(1), got[1].Carts)
}

func TestComputeAffinityListings_UnknownUser(t *testing.T) {
	e := newEnv(t)
	_, err := e.affinity.ComputeAffinityListings(context.Background(), 404)
	assert.ErrorIs(t, err, services.ErrNotFound)
}
