package repositories_test

import (
	"context"
	"testing"

	"sprift/internal/models"
	"sprift/internal/repositories"
	"sprift/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListingRepository_TagMatched(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	tags := testutil.CreateTags(t, db, "vintage", "y2k", "streetwear")
	buyer := testutil.CreateUser(t, db, "buyer", tags[0], tags[1])
	seller := testutil.CreateUser(t, db, "seller")

	one := testutil.CreateListing(t, db, seller, testutil.ListingOpts{Tags: tags[:1]})
	two := testutil.CreateListing(t, db, seller, testutil.ListingOpts{Tags: tags[:2]})
	testutil.CreateListing(t, db, seller, testutil.ListingOpts{Tags: tags[2:]})
	testutil.CreateListing(t, db, seller, testutil.ListingOpts{Tags: tags[:1], Status: models.ListingStatusSold})
	testutil.CreateListing(t, db, buyer, testutil.ListingOpts{Tags: tags[:1]})

	repo := repositories.NewGORMListingRepository(db)
	matches, err := repo.TagMatched(ctx, buyer.ID)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, repositories.TagMatch{ListingID: two.ID, TagsMatched: 2}, matches[0])
	assert.Equal(t, repositories.TagMatch{ListingID: one.ID, TagsMatched: 1}, matches[1])
}

func TestListingRepository_FallbackKeyset(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	buyer := testutil.CreateUser(t, db, "buyer")
	seller := testutil.CreateUser(t, db, "seller")

	var ids []uint
	for i := 0; i < 5; i++ {
		ids = append(ids, testutil.CreateListing(t, db, seller, testutil.ListingOpts{}).ID)
	}
	testutil.CreateListing(t, db, buyer, testutil.ListingOpts{})

	repo := repositories.NewGORMListingRepository(db)

	page, err := repo.Fallback(ctx, repositories.FallbackQuery{UserID: buyer.ID, ExcludeIDs: []uint{ids[4]}, Take: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, ids[3], page[0].ID)
	assert.Equal(t, ids[2], page[1].ID)

	next, err := repo.Fallback(ctx, repositories.FallbackQuery{UserID: buyer.ID, BeforeID: page[1].ID, Take: 10})
	require.NoError(t, err)
	require.Len(t, next, 2)
	assert.Equal(t, ids[1], next[0].ID)
	assert.Equal(t, ids[0], next[1].ID)
	for _, l := range append(page, next...) {
		assert.NotEqual(t, buyer.ID, l.SellerID)
	}
}

func TestListingRepository_Stats(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	seller := testutil.CreateUser(t, db, "seller")
	a := testutil.CreateUser(t, db, "a")
	b := testutil.CreateUser(t, db, "b")
	listing := testutil.CreateListing(t, db, seller, testutil.ListingOpts{})
	quiet := testutil.CreateListing(t, db, seller, testutil.ListingOpts{})

	testutil.Like(t, db, a, listing)
	testutil.Like(t, db, b, listing)
	testutil.AddToCart(t, db, a, listing)
	require.NoError(t, db.Create(&models.Dislike{UserID: b.ID, ListingID: quiet.ID}).Error)

	stats, err := repositories.NewGORMListingRepository(db).Stats(ctx, []uint{listing.ID, quiet.ID})
	require.NoError(t, err)
	assert.Equal(t, repositories.ListingStats{ListingID: listing.ID, Likes: 2, Carts: 1}, stats[listing.ID])
	assert.Equal(t, repositories.ListingStats{ListingID: quiet.ID, Dislikes: 1}, stats[quiet.ID])
}

func TestListingRepository_UpdateReplacesImagesAndTags(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	seller := testutil.CreateUser(t, db, "seller")
	old := testutil.CreateTags(t, db, "old")
	listing := testutil.CreateListing(t, db, seller, testutil.ListingOpts{Images: []string{"img/old.jpg"}, Tags: old})

	repo := repositories.NewGORMListingRepository(db)
	size := "L"
	err := repo.Update(ctx, listing.ID, repositories.ListingUpdate{
		Size:        &size,
		Price:       testutil.Price("33.00"),
		Description: "updated",
		ImagePaths:  []string{"img/b.jpg", "img/a.jpg"},
		TagNames:    []string{"denim", "vintage"},
	})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, "L", got.Size)
	assert.Equal(t, "updated", got.Description)
	assert.True(t, testutil.Price("33").Equal(got.Price))
	assert.Equal(t, []string{"img/b.jpg", "img/a.jpg"}, got.ImagePaths())
	assert.ElementsMatch(t, []string{"denim", "vintage"}, got.TagNames())

	err = repo.Update(ctx, 9999, repositories.ListingUpdate{Price: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestListingRepository_MarkSoldOnlyOnce(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	seller := testutil.CreateUser(t, db, "seller")
	a := testutil.CreateListing(t, db, seller, testutil.ListingOpts{})
	b := testutil.CreateListing(t, db, seller, testutil.ListingOpts{})

	repo := repositories.NewGORMListingRepository(db)
	n, err := repo.MarkSold(ctx, []uint{a.ID, b.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = repo.MarkSold(ctx, []uint{a.ID, b.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestReactionRepository_SetIsExclusive(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	seller := testutil.CreateUser(t, db, "seller")
	buyer := testutil.CreateUser(t, db, "buyer")
	listing := testutil.CreateListing(t, db, seller, testutil.ListingOpts{})

	repo := repositories.NewGORMReactionRepository(db)
	require.NoError(t, repo.Set(ctx, models.ReactionLike, buyer.ID, listing.ID))
	require.NoError(t, repo.Set(ctx, models.ReactionLike, buyer.ID, listing.ID))
	require.NoError(t, repo.Set(ctx, models.ReactionCart, buyer.ID, listing.ID))

	var likes, carts int64
	db.Model(&models.Like{}).Count(&likes)
	db.Model(&models.CartItem{}).Count(&carts)
	assert.Equal(t, int64(0), likes)
	assert.Equal(t, int64(1), carts)

	ids, err := repo.CartListingIDs(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{listing.ID}, ids)

	removed, err := repo.RemoveFromCart(ctx, buyer.ID, ids)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, err = repo.Remove(ctx, models.ReactionKind("poke"), buyer.ID, listing.ID)
	assert.Error(t, err)
}

func TestNotificationRepository_SkipsDuplicates(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "buyer")
	repo := repositories.NewGORMNotificationRepository(db)

	batch := func() []models.Notification {
		return []models.Notification{
			{UserID: user.ID, Message: "Your order #1 has been placed.", NotificationType: models.NotificationPurchase},
		}
	}

	n, err := repo.CreateSkipDuplicates(ctx, batch())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.CreateSkipDuplicates(ctx, batch())
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	list, err := repo.ListForUser(ctx, user.ID, 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestUserRepository_UpsertAndFilter(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := repositories.NewGORMUserRepository(db)

	user := &models.User{ClerkID: "user_1", Email: "first@example.com"}
	require.NoError(t, repo.Upsert(ctx, user))
	firstID := user.ID

	again := &models.User{ClerkID: "user_1", Email: "second@example.com", Username: "ada"}
	require.NoError(t, repo.Upsert(ctx, again))
	assert.Equal(t, firstID, again.ID)
	assert.Equal(t, "second@example.com", again.Email)

	_, err := repo.GetFilter(ctx, firstID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	filter := &models.FilterPreference{UserID: firstID, Gender: "F", Sizes: []string{"M"}}
	require.NoError(t, repo.SaveFilter(ctx, filter))
	require.NoError(t, repo.SaveFilter(ctx, &models.FilterPreference{UserID: firstID, Gender: "M", Types: []string{"Tops"}}))

	got, err := repo.GetFilter(ctx, firstID)
	require.NoError(t, err)
	assert.Equal(t, "M", got.Gender)
	assert.Empty(t, got.Sizes)
	assert.Equal(t, []string{"Tops"}, []string(got.Types))

	require.NoError(t, repo.IncrementNumSales(ctx, firstID, 2))
	reloaded, err := repo.GetByID(ctx, firstID)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.NumSales)

	_, err = repo.GetByClerkID(ctx, "nobody")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestOrderRepository_NestedLoad(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	buyer := testutil.CreateUser(t, db, "buyer")
	seller := testutil.CreateUser(t, db, "seller")
	listing := testutil.CreateListing(t, db, seller, testutil.ListingOpts{Price: "12.50"})

	repo := repositories.NewGORMOrderRepository(db)
	order := &models.Order{PurchaserID: buyer.ID}
	require.NoError(t, repo.Create(ctx, order))
	sub := &models.SubOrder{
		OrderID:        order.ID,
		SellerID:       seller.ID,
		ShippingCost:   testutil.Price("4.00"),
		ShippoObjectID: "rate_1",
		Lines:          []models.OrderLine{{ListingID: listing.ID, SellerID: seller.ID, Price: listing.Price, Weight: listing.Weight}},
	}
	require.NoError(t, repo.CreateSubOrder(ctx, sub))
	require.NoError(t, repo.SetLabel(ctx, sub.ID, "txn_1", "https://labels.example/1.pdf"))
	require.NoError(t, repo.SetTotal(ctx, order.ID, testutil.Price("16.50")))
	require.NoError(t, repo.SetPaymentIntent(ctx, order.ID, "pi_1"))

	got, err := repo.GetByPaymentIntent(ctx, buyer.ID, "pi_1")
	require.NoError(t, err)
	require.Len(t, got.SubOrders, 1)
	require.Len(t, got.SubOrders[0].Lines, 1)
	assert.Equal(t, listing.ID, got.SubOrders[0].Lines[0].Listing.ID)
	assert.Equal(t, "https://labels.example/1.pdf", *got.SubOrders[0].ShippoLabelURL)
	assert.True(t, testutil.Price("16.50").Equal(got.Total))
	assert.True(t, got.Total.Equal(got.ComputeTotal()))

	_, err = repo.GetByPaymentIntent(ctx, seller.ID, "pi_1")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}
