package services_test

import (
	"context"
	"testing"

	"sprift/internal/logger"
	"sprift/internal/models"
	"sprift/internal/repositories"
	"sprift/internal/services"
	"sprift/internal/testutil"
	"sprift/pkg/mailer"
	"sprift/pkg/shippo"
	"sprift/pkg/stripe"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// MockShippingProvider is a mock implementation of services.ShippingProvider.
type MockShippingProvider struct {
	mock.Mock
}

func (m *MockShippingProvider) CreateShipment(ctx context.Context, req shippo.ShipmentRequest) (*shippo.Shipment, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shippo.Shipment), args.Error(1)
}

func (m *MockShippingProvider) PurchaseLabel(ctx context.Context, rateID string) (*shippo.Transaction, error) {
	args := m.Called(ctx, rateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shippo.Transaction), args.Error(1)
}

func (m *MockShippingProvider) RefundLabel(ctx context.Context, transactionID string) (*shippo.Refund, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shippo.Refund), args.Error(1)
}

func (m *MockShippingProvider) ValidateAddress(ctx context.Context, addr shippo.Address) (*shippo.AddressValidation, error) {
	args := m.Called(ctx, addr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shippo.AddressValidation), args.Error(1)
}

// MockPaymentProvider is a mock implementation of services.PaymentProvider.
type MockPaymentProvider struct {
	mock.Mock
}

func (m *MockPaymentProvider) CreatePaymentIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*stripe.PaymentIntent, error) {
	args := m.Called(ctx, amount, currency, metadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripe.PaymentIntent), args.Error(1)
}

func (m *MockPaymentProvider) GetPaymentIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripe.PaymentIntent), args.Error(1)
}

// MockPublisher is a mock implementation of services.EventPublisher.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishEvent(ctx context.Context, eventType string, payload interface{}) error {
	args := m.Called(ctx, eventType, payload)
	return args.Error(0)
}

// MockMailer is a mock implementation of services.Mailer.
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, msg mailer.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// fromSeller matches shipment requests shipped from the given user.
func fromSeller(u *models.User) interface{} {
	return mock.MatchedBy(func(req shippo.ShipmentRequest) bool {
		return req.AddressFrom.Email == u.Email
	})
}

func shipmentWith(rates ...shippo.Rate) *shippo.Shipment {
	return &shippo.Shipment{ObjectID: "shp", Status: shippo.StatusSuccess, Rates: rates}
}

func rate(id, amount string) shippo.Rate {
	return shippo.Rate{ObjectID: id, Amount: decimal.RequireFromString(amount), Currency: "USD", Provider: "USPS"}
}

func label(id string) *shippo.Transaction {
	return &shippo.Transaction{ObjectID: id, Status: shippo.StatusSuccess, LabelURL: "https://labels.example/" + id + ".pdf"}
}

// env wires the services over an in-memory database.
type env struct {
	db            *gorm.DB
	users         *repositories.GORMUserRepository
	listings      *repositories.GORMListingRepository
	orders        *repositories.GORMOrderRepository
	reactions     *repositories.GORMReactionRepository
	notifications *repositories.GORMNotificationRepository
	shipping      *MockShippingProvider
	payments      *MockPaymentProvider
	events        *MockPublisher

	affinity *services.AffinityEngine
	feed     *services.FeedService
	order    *services.OrderService
	checkout *services.CheckoutService
}

func newEnv(t *testing.T) *env {
	db := testutil.NewDB(t)
	log := logger.Discard()
	e := &env{
		db:            db,
		users:         repositories.NewGORMUserRepository(db),
		listings:      repositories.NewGORMListingRepository(db),
		orders:        repositories.NewGORMOrderRepository(db),
		reactions:     repositories.NewGORMReactionRepository(db),
		notifications: repositories.NewGORMNotificationRepository(db),
		shipping:      new(MockShippingProvider),
		payments:      new(MockPaymentProvider),
		events:        new(MockPublisher),
	}
	e.affinity = services.NewAffinityEngine(e.users, e.listings, log)
	e.feed = services.NewFeedService(e.affinity, e.users, e.listings, services.DefaultFeedPageSize, log)
	e.order = services.NewOrderService(db, e.users, e.listings, e.orders, e.shipping, log)
	e.checkout = services.NewCheckoutService(services.CheckoutDeps{
		DB:            db,
		Users:         e.users,
		Listings:      e.listings,
		Orders:        e.orders,
		Reactions:     e.reactions,
		Notifications: e.notifications,
		OrderService:  e.order,
		Payments:      e.payments,
		Events:        e.events,
		Currency:      "usd",
	}, log)
	return e
}
