package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"sprift/internal/models"
	"sprift/internal/repositories"
	"sprift/pkg/rabbitmq"
	"sprift/pkg/stripe"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentProvider creates and reads payment intents.
type PaymentProvider interface {
	CreatePaymentIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*stripe.PaymentIntent, error)
	GetPaymentIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error)
}

// PaymentIntentResult is what the client needs to confirm a payment.
type PaymentIntentResult struct {
	OrderID       uint
	PaymentIntent string
	ClientSecret  string
	Total         decimal.Decimal
}

// CompletedOrder is a finalized order with its listings flattened.
type CompletedOrder struct {
	Order    *models.Order
	Listings []models.Listing
}

// CheckoutService creates payment intents for carts and finalizes paid
// orders.
type CheckoutService struct {
	db            *gorm.DB
	users         repositories.UserRepository
	listings      repositories.ListingRepository
	orders        repositories.OrderRepository
	reactions     repositories.ReactionRepository
	notifications repositories.NotificationRepository
	orderService  *OrderService
	payments      PaymentProvider
	events        EventPublisher
	currency      string
	log           *slog.Logger
}

// CheckoutDeps groups the collaborators of CheckoutService.
type CheckoutDeps struct {
	DB            *gorm.DB
	Users         repositories.UserRepository
	Listings      repositories.ListingRepository
	Orders        repositories.OrderRepository
	Reactions     repositories.ReactionRepository
	Notifications repositories.NotificationRepository
	OrderService  *OrderService
	Payments      PaymentProvider
	Events        EventPublisher
	Currency      string
}

// NewCheckoutService creates a new CheckoutService.
func NewCheckoutService(deps CheckoutDeps, log *slog.Logger) *CheckoutService {
	currency := deps.Currency
	if currency == "" {
		currency = "usd"
	}
	return &CheckoutService{
		db:            deps.DB,
		users:         deps.Users,
		listings:      deps.Listings,
		orders:        deps.Orders,
		reactions:     deps.Reactions,
		notifications: deps.Notifications,
		orderService:  deps.OrderService,
		payments:      deps.Payments,
		events:        deps.Events,
		currency:      currency,
		log:           log,
	}
}

// CreatePaymentIntent turns the user's cart into an order and opens a payment
// intent for its total.
func (s *CheckoutService) CreatePaymentIntent(ctx context.Context, clerkID string) (*PaymentIntentResult, error) {
	const op = "services.CheckoutService.CreatePaymentIntent"
	log := s.log.With(slog.String("op", op), slog.String("clerk_id", clerkID))

	user, err := s.users.GetByClerkID(ctx, clerkID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}
	cart, err := s.reactions.CartListingIDs(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(cart) == 0 {
		return nil, fmt.Errorf("%s: %w: cart of user %d is empty", op, ErrNotFound, user.ID)
	}

	result, err := s.orderService.CreateOrder(ctx, user.ID, cart)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	order := result.Order

	pi, err := s.payments.CreatePaymentIntent(ctx, toMinorUnits(result.Total), s.currency, map[string]string{
		"order_id": strconv.FormatUint(uint64(order.ID), 10),
		"user_id":  strconv.FormatUint(uint64(user.ID), 10),
	})
	if err != nil {
		log.Error("payment intent creation failed", slog.Uint64("order_id", uint64(order.ID)), slog.String("error", err.Error()))
		s.orderService.VoidLabels(context.WithoutCancel(ctx), order)
		return nil, fmt.Errorf("%s: %w", op, external("payment", err))
	}

	if err := s.orders.SetPaymentIntent(ctx, order.ID, pi.ID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("payment intent created", slog.Uint64("order_id", uint64(order.ID)), slog.String("payment_intent", pi.ID))
	return &PaymentIntentResult{
		OrderID:       order.ID,
		PaymentIntent: pi.ID,
		ClientSecret:  pi.ClientSecret,
		Total:         result.Total,
	}, nil
}

// FinalizeCheckout completes a paid order: it marks the listings sold, clears
// them from the cart, credits the sellers and notifies everyone involved. A
// listing already sold makes the whole call fail with ErrConflict and change
// nothing.
func (s *CheckoutService) FinalizeCheckout(ctx context.Context, clerkID, paymentIntent string) (*CompletedOrder, error) {
	const op = "services.CheckoutService.FinalizeCheckout"
	log := s.log.With(slog.String("op", op), slog.String("clerk_id", clerkID), slog.String("payment_intent", paymentIntent))

	user, err := s.users.GetByClerkID(ctx, clerkID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}
	cart, err := s.reactions.CartListingIDs(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(cart) == 0 {
		return nil, fmt.Errorf("%s: %w: cart of user %d is empty", op, ErrNotFound, user.ID)
	}

	order, err := s.orders.GetByPaymentIntent(ctx, user.ID, paymentIntent)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}

	pi, err := s.payments.GetPaymentIntent(ctx, paymentIntent)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, external("payment", err))
	}
	if pi.Status != stripe.StatusSucceeded {
		return nil, fmt.Errorf("%s: %w: payment intent %s is %s", op, ErrValidation, paymentIntent, pi.Status)
	}
	if want := toMinorUnits(order.Total); pi.Amount != want || !strings.EqualFold(pi.Currency, s.currency) {
		log.Warn("payment intent does not match order",
			slog.Int64("amount", pi.Amount), slog.String("currency", pi.Currency),
			slog.Int64("expected_amount", want), slog.String("expected_currency", s.currency))
		return nil, fmt.Errorf("%s: %w: payment intent %s does not match the total of order %d", op, ErrConflict, paymentIntent, order.ID)
	}

	inCart := make(map[uint]bool, len(cart))
	for _, id := range cart {
		inCart[id] = true
	}
	orderListings := order.ListingIDs()
	for _, id := range orderListings {
		if !inCart[id] {
			return nil, fmt.Errorf("%s: %w: listing %d of order %d is no longer in the cart", op, ErrConflict, id, order.ID)
		}
	}

	salesBySeller := make(map[uint]int)
	for _, sub := range order.SubOrders {
		salesBySeller[sub.SellerID] += len(sub.Lines)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sold, err := s.listings.WithTx(tx).MarkSold(ctx, orderListings)
		if err != nil {
			return err
		}
		if sold != int64(len(orderListings)) {
			return fmt.Errorf("%w: %d of %d listings of order %d are no longer available", ErrConflict, int64(len(orderListings))-sold, len(orderListings), order.ID)
		}

		if _, err := s.reactions.WithTx(tx).RemoveFromCart(ctx, user.ID, orderListings); err != nil {
			return err
		}

		users := s.users.WithTx(tx)
		for _, sellerID := range order.SellerIDs() {
			if err := users.IncrementNumSales(ctx, sellerID, salesBySeller[sellerID]); err != nil {
				return err
			}
		}

		_, err = s.notifications.WithTx(tx).CreateSkipDuplicates(ctx, purchaseNotifications(user.ID, order))
		return err
	})
	if err != nil {
		log.Warn("checkout finalization failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	completed, err := s.orders.GetByID(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if s.events != nil {
		if err := s.events.PublishEvent(ctx, rabbitmq.EventOrderCompleted, newOrderCompletedEvent(user, completed)); err != nil {
			log.Error("failed to publish order completed event", slog.String("error", err.Error()))
		}
	}

	log.Info("checkout finalized", slog.Uint64("order_id", uint64(order.ID)), slog.Int("listings", len(orderListings)))
	return &CompletedOrder{Order: completed, Listings: flattenListings(completed)}, nil
}

func purchaseNotifications(buyerID uint, order *models.Order) []models.Notification {
	notifications := []models.Notification{{
		UserID:           buyerID,
		Message:          fmt.Sprintf("Your order #%d has been placed.", order.ID),
		NotificationType: models.NotificationPurchase,
	}}
	counts := make(map[uint]int)
	for _, sub := range order.SubOrders {
		counts[sub.SellerID] += len(sub.Lines)
	}
	for _, sellerID := range order.SellerIDs() {
		notifications = append(notifications, models.Notification{
			UserID:           sellerID,
			Message:          fmt.Sprintf("You sold %d item(s) in order #%d.", counts[sellerID], order.ID),
			NotificationType: models.NotificationPurchase,
		})
	}
	return notifications
}

func flattenListings(order *models.Order) []models.Listing {
	var listings []models.Listing
	for _, sub := range order.SubOrders {
		for _, line := range sub.Lines {
			listings = append(listings, line.Listing)
		}
	}
	return listings
}

// toMinorUnits converts an amount to cents, rounding half away from zero.
func toMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
