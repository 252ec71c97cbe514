package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"sprift/internal/models"
	"sprift/internal/services"
	"sprift/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func countRows(t *testing.T, e *env, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(model).Count(&n).Error)
	return n
}

func TestCreateOrder_PartitionsBySeller(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	buyer := testutil.CreateUser(t, e.db, "buyer")
	sellerA := testutil.CreateUser(t, e.db, "seller_a")
	sellerB := testutil.CreateUser(t, e.db, "seller_b")
	a1 := testutil.CreateListing(t, e.db, sellerA, testutil.ListingOpts{Price: "10.00"})
	a2 := testutil.CreateListing(t, e.db, sellerA, testutil.ListingOpts{Price: "15.50"})
	b1 := testutil.CreateListing(t, e.db, sellerB, testutil.ListingOpts{Price: "30.00"})

	e.shipping.On("CreateShipment", mock.Anything, fromSeller(sellerA)).
		Return(shipmentWith(rate("rate_a_slow", "9.00"), rate("rate_a", "5.25")), nil).Once()
	e.shipping.On("CreateShipment", mock.Anything, fromSeller(sellerB)).
		Return(shipmentWith(rate("rate_b", "4.75")), nil).Once()
	e.shipping.On("PurchaseLabel", mock.Anything, "rate_a").Return(label("txn_a"), nil).Once()
	e.shipping.On("PurchaseLabel", mock.Anything, "rate_b").Return(label("txn_b"), nil).Once()

	res, err := e.order.CreateOrder(ctx, buyer.ID, []uint{a1.ID, b1.ID, a2.ID})
	require.NoError(t, err)
	e.shipping.AssertExpectations(t)

	order := res.Order
	require.Len(t, order.SubOrders, 2)
	bySeller := map[uint]models.SubOrder{}
	for _, sub := range order.SubOrders {
		bySeller[sub.SellerID] = sub
	}
	assert.Len(t, bySeller[sellerA.ID].Lines, 2)
	assert.Len(t, bySeller[sellerB.ID].Lines, 1)
	assert.Equal(t, "rate_a", bySeller[sellerA.ID].ShippoObjectID)
	assert.Equal(t, "https://labels.example/txn_b.pdf", *bySeller[sellerB.ID].ShippoLabelURL)

	// 10 + 15.50 + 30 + 5.25 + 4.75
	assert.True(t, testutil.Price("65.50").Equal(res.Total), "total %s", res.Total)
	assert.True(t, order.Total.Equal(order.ComputeTotal()))
	assert.True(t, order.Total.Equal(res.Total))
}

func TestCreateOrder_QuoteFailureAbortsWithoutWrites(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	buyer := testutil.CreateUser(t, e.db, "buyer")
	sellerA := testutil.CreateUser(t, e.db, "seller_a")
	sellerB := testutil.CreateUser(t, e.db, "seller_b")
	a := testutil.CreateListing(t, e.db, sellerA, testutil.ListingOpts{})
	b := testutil.CreateListing(t, e.db, sellerB, testutil.ListingOpts{})

	e.shipping.On("CreateShipment", mock.Anything, fromSeller(sellerA)).Return(shipmentWith(rate("rate_a", "5")), nil).Maybe()
	e.shipping.On("CreateShipment", mock.Anything, fromSeller(sellerB)).Return(shipmentWith(), nil).Once()

	_, err := e.order.CreateOrder(ctx, buyer.ID, []uint{a.ID, b.ID})
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrExternalService)
	e.shipping.AssertNotCalled(t, "PurchaseLabel", mock.Anything, mock.Anything)
	assert.Zero(t, countRows(t, e, &models.Order{}))
}

func TestCreateOrder_LabelFailureRollsBackAndRefunds(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	buyer := testutil.CreateUser(t, e.db, "buyer")
	sellerA := testutil.CreateUser(t, e.db, "seller_a")
	sellerB := testutil.CreateUser(t, e.db, "seller_b")
	a := testutil.CreateListing(t, e.db, sellerA, testutil.ListingOpts{})
	b := testutil.CreateListing(t, e.db, sellerB, testutil.ListingOpts{})

	e.shipping.On("CreateShipment", mock.Anything, fromSeller(sellerA)).Return(shipmentWith(rate("rate_a", "5")), nil).Once()
	e.shipping.On("CreateShipment", mock.Anything, fromSeller(sellerB)).Return(shipmentWith(rate("rate_b", "6")), nil).Once()
	e.shipping.On("PurchaseLabel", mock.Anything, "rate_a").Return(label("txn_a"), nil).Once()
	e.shipping.On("PurchaseLabel", mock.Anything, "rate_b").Return(nil, errors.New("carrier down")).Once()
	e.shipping.On("RefundLabel", mock.Anything, "txn_a").Return(nil, nil).Once()

	_, err := e.order.CreateOrder(ctx, buyer.ID, []uint{a.ID, b.ID})
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrExternalService)
	e.shipping.AssertExpectations(t)

	assert.Zero(t, countRows(t, e, &models.Order{}))
	assert.Zero(t, countRows(t, e, &models.SubOrder{}))
	assert.Zero(t, countRows(t, e, &models.OrderLine{}))
}

func TestCreateOrder_SlowLabelSurvivesSiblingFailure(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	buyer := testutil.CreateUser(t, e.db, "buyer")
	sellerA := testutil.CreateUser(t, e.db, "seller_a")
	sellerB := testutil.CreateUser(t, e.db, "seller_b")
	a := testutil.CreateListing(t, e.db, sellerA, testutil.ListingOpts{})
	b := testutil.CreateListing(t, e.db, sellerB, testutil.ListingOpts{})

	failed := make(chan struct{})
	var slowCtxErr error
	e.shipping.On("CreateShipment", mock.Anything, fromSeller(sellerA)).Return(shipmentWith(rate("rate_a", "5")), nil).Once()
	e.shipping.On("CreateShipment", mock.Anything, fromSeller(sellerB)).Return(shipmentWith(rate("rate_b", "6")), nil).Once()
	e.shipping.On("PurchaseLabel", mock.Anything, "rate_a").Run(func(args mock.Arguments) {
		<-failed
		time.Sleep(20 * time.Millisecond)
		slowCtxErr = args.Get(0).(context.Context).Err()
	}).Return(label("txn_a"), nil).Once()
	e.shipping.On("PurchaseLabel", mock.Anything, "rate_b").Run(func(mock.Arguments) {
		close(failed)
	}).Return(nil, errors.New("carrier down")).Once()
	e.shipping.On("RefundLabel", mock.Anything, "txn_a").Return(nil, nil).Once()

	_, err := e.order.CreateOrder(ctx, buyer.ID, []uint{a.ID, b.ID})
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrExternalService)
	assert.NoError(t, slowCtxErr, "in-flight purchase must not be cancelled")
	e.shipping.AssertExpectations(t)
	assert.Zero(t, countRows(t, e, &models.Order{}))
}

func TestCreateOrder_RejectsUnavailableListings(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	buyer := testutil.CreateUser(t, e.db, "buyer")
	seller := testutil.CreateUser(t, e.db, "seller")
	sold := testutil.CreateListing(t, e.db, seller, testutil.ListingOpts{Status: models.ListingStatusSold})
	own := testutil.CreateListing(t, e.db, buyer, testutil.ListingOpts{})

	_, err := e.order.CreateOrder(ctx, buyer.ID, []uint{sold.ID})
	assert.ErrorIs(t, err, services.ErrConflict)

	_, err = e.order.CreateOrder(ctx, buyer.ID, []uint{9999})
	assert.ErrorIs(t, err, services.ErrNotFound)

	_, err = e.order.CreateOrder(ctx, buyer.ID, []uint{own.ID})
	assert.ErrorIs(t, err, services.ErrValidation)

	_, err = e.order.CreateOrder(ctx, buyer.ID, nil)
	assert.ErrorIs(t, err, services.ErrNotFound)

	e.shipping.AssertNotCalled(t, "CreateShipment", mock.Anything, mock.Anything)
}

func TestGetOrder_Visibility(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	buyer := testutil.CreateUser(t, e.db, "buyer")
	seller := testutil.CreateUser(t, e.db, "seller")
	stranger := testutil.CreateUser(t, e.db, "stranger")
	listing := testutil.CreateListing(t, e.db, seller, testutil.ListingOpts{})

	e.shipping.On("CreateShipment", mock.Anything, mock.Anything).Return(shipmentWith(rate("rate_1", "5")), nil)
	e.shipping.On("PurchaseLabel", mock.Anything, "rate_1").Return(label("txn_1"), nil)

	res, err := e.order.CreateOrder(ctx, buyer.ID, []uint{listing.ID})
	require.NoError(t, err)

	for _, viewer := range []uint{buyer.ID, seller.ID} {
		got, err := e.order.GetOrder(ctx, res.Order.ID, viewer)
		require.NoError(t, err)
		assert.Equal(t, res.Order.ID, got.ID)
	}

	_, err = e.order.GetOrder(ctx, res.Order.ID, stranger.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)
	_, err = e.order.GetOrder(ctx, 9999, buyer.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)
}
