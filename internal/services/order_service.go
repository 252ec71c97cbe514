package services

import (
	"context"
	"fmt"
	"log/slog"

	"sprift/internal/models"
	"sprift/internal/repositories"
	"sprift/pkg/shippo"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// ShippingProvider quotes, buys and refunds shipping labels.
type ShippingProvider interface {
	CreateShipment(ctx context.Context, req shippo.ShipmentRequest) (*shippo.Shipment, error)
	PurchaseLabel(ctx context.Context, rateID string) (*shippo.Transaction, error)
	RefundLabel(ctx context.Context, transactionID string) (*shippo.Refund, error)
}

// OrderResult is a freshly created order with its computed total.
type OrderResult struct {
	Order *models.Order
	Total decimal.Decimal
}

// sellerGroup is the part of a cart sold by one seller.
type sellerGroup struct {
	seller   models.User
	listings []models.Listing
	rate     shippo.Rate
}

// OrderService turns carts into orders with one sub-order per seller.
type OrderService struct {
	db       *gorm.DB
	users    repositories.UserRepository
	listings repositories.ListingRepository
	orders   repositories.OrderRepository
	shipping ShippingProvider
	log      *slog.Logger
}

// NewOrderService creates a new OrderService.
func NewOrderService(
	db *gorm.DB,
	users repositories.UserRepository,
	listings repositories.ListingRepository,
	orders repositories.OrderRepository,
	shipping ShippingProvider,
	log *slog.Logger,
) *OrderService {
	return &OrderService{
		db:       db,
		users:    users,
		listings: listings,
		orders:   orders,
		shipping: shipping,
		log:      log,
	}
}

// CreateOrder quotes shipping for every seller in the cart, persists the order
// with its sub-orders and lines, buys one label per sub-order and stores the
// total. Nothing is persisted when any step fails, and labels bought before a
// failure are refunded.
func (s *OrderService) CreateOrder(ctx context.Context, buyerID uint, listingIDs []uint) (*OrderResult, error) {
	const op = "services.OrderService.CreateOrder"
	log := s.log.With(slog.String("op", op), slog.Uint64("buyer_id", uint64(buyerID)))

	listingIDs = distinctIDs(listingIDs)
	if len(listingIDs) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", ErrNotFound)
	}

	buyer, err := s.users.GetByID(ctx, buyerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}
	if !buyer.HasShippingAddress() {
		return nil, fmt.Errorf("%w: buyer %d has no shipping address", ErrValidation, buyerID)
	}

	groups, err := s.partition(ctx, buyerID, listingIDs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.quote(ctx, buyer, groups); err != nil {
		log.Error("shipping quote failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var (
		order     *models.Order
		total     decimal.Decimal
		purchased []string
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := s.orders.WithTx(tx)

		order = &models.Order{PurchaserID: buyerID, Total: decimal.Zero}
		if err := orders.Create(ctx, order); err != nil {
			return err
		}

		for _, g := range groups {
			sub := models.SubOrder{
				OrderID:        order.ID,
				SellerID:       g.seller.ID,
				ShippingCost:   g.rate.Amount,
				ShippoObjectID: g.rate.ObjectID,
				Lines:          make([]models.OrderLine, 0, len(g.listings)),
			}
			for _, l := range g.listings {
				sub.Lines = append(sub.Lines, models.OrderLine{
					ListingID: l.ID,
					SellerID:  l.SellerID,
					Price:     l.Price,
					Weight:    l.Weight,
				})
			}
			if err := orders.CreateSubOrder(ctx, &sub); err != nil {
				return err
			}
			order.SubOrders = append(order.SubOrders, sub)
		}

		labels, err := s.purchaseLabels(ctx, order.SubOrders)
		for _, t := range labels {
			if t != nil {
				purchased = append(purchased, t.ObjectID)
			}
		}
		if err != nil {
			return err
		}
		for i := range order.SubOrders {
			sub := &order.SubOrders[i]
			if err := orders.SetLabel(ctx, sub.ID, labels[i].ObjectID, labels[i].LabelURL); err != nil {
				return err
			}
			url := labels[i].LabelURL
			sub.ShippoTransactionID = labels[i].ObjectID
			sub.ShippoLabelURL = &url
		}

		total = order.ComputeTotal()
		return orders.SetTotal(ctx, order.ID, total)
	})
	if err != nil {
		if len(purchased) > 0 {
			s.refundLabels(context.WithoutCancel(ctx), log, purchased)
		}
		log.Error("order creation failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	created, err := s.orders.GetByID(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("order created",
		slog.Uint64("order_id", uint64(created.ID)),
		slog.Int("sub_orders", len(created.SubOrders)),
		slog.String("total", total.StringFixed(2)))

	return &OrderResult{Order: created, Total: total}, nil
}

// partition loads the listings and groups them by seller in cart order.
func (s *OrderService) partition(ctx context.Context, buyerID uint, ids []uint) ([]*sellerGroup, error) {
	listings, err := s.listings.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Listing, len(listings))
	for _, l := range listings {
		byID[l.ID] = l
	}

	var groups []*sellerGroup
	bySeller := make(map[uint]*sellerGroup)
	for _, id := range ids {
		l, ok := byID[id]
		switch {
		case !ok:
			return nil, fmt.Errorf("%w: listing %d", ErrNotFound, id)
		case l.Status != models.ListingStatusStaging:
			return nil, fmt.Errorf("%w: listing %d is %s", ErrConflict, id, l.Status)
		case l.SellerID == buyerID:
			return nil, fmt.Errorf("%w: listing %d belongs to the buyer", ErrValidation, id)
		}

		g, ok := bySeller[l.SellerID]
		if !ok {
			if !l.Seller.HasShippingAddress() {
				return nil, fmt.Errorf("%w: seller %d has no shipping address", ErrValidation, l.SellerID)
			}
			g = &sellerGroup{seller: l.Seller}
			bySeller[l.SellerID] = g
			groups = append(groups, g)
		}
		g.listings = append(g.listings, l)
	}
	return groups, nil
}

// quote requests rates for every group concurrently and keeps the cheapest.
func (s *OrderService) quote(ctx context.Context, buyer *models.User, groups []*sellerGroup) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, group := range groups {
		g.Go(func() error {
			parcels := make([]shippo.Parcel, 0, len(group.listings))
			for _, l := range group.listings {
				parcels = append(parcels, shippo.NewParcel(l.Weight, l.WeightUnit))
			}
			shipment, err := s.shipping.CreateShipment(gctx, shippo.ShipmentRequest{
				AddressFrom: addressOf(&group.seller),
				AddressTo:   addressOf(buyer),
				Parcels:     parcels,
			})
			if err != nil {
				return external("shipping quote", err)
			}
			rate, err := shippo.LowestRate(shipment.Rates)
			if err != nil {
				return external("shipping quote", fmt.Errorf("seller %d: %w", group.seller.ID, err))
			}
			group.rate = rate
			return nil
		})
	}
	return g.Wait()
}

// purchaseLabels buys every sub-order's label concurrently. The returned
// slice is index-aligned with subs; entries stay nil for labels that were not
// bought. A failed purchase does not cancel its siblings, so every label the
// carrier sold is recorded for a refund.
func (s *OrderService) purchaseLabels(ctx context.Context, subs []models.SubOrder) ([]*shippo.Transaction, error) {
	labels := make([]*shippo.Transaction, len(subs))
	var g errgroup.Group
	for i, sub := range subs {
		g.Go(func() error {
			txn, err := s.shipping.PurchaseLabel(ctx, sub.ShippoObjectID)
			if err != nil {
				return external("label purchase", fmt.Errorf("sub-order %d: %w", sub.ID, err))
			}
			labels[i] = txn
			return nil
		})
	}
	return labels, g.Wait()
}

func (s *OrderService) refundLabels(ctx context.Context, log *slog.Logger, transactionIDs []string) {
	for _, id := range transactionIDs {
		if _, err := s.shipping.RefundLabel(ctx, id); err != nil {
			log.Error("label refund failed", slog.String("transaction", id), slog.String("error", err.Error()))
			continue
		}
		log.Info("label refunded", slog.String("transaction", id))
	}
}

// VoidLabels refunds every label bought for the order.
func (s *OrderService) VoidLabels(ctx context.Context, order *models.Order) {
	const op = "services.OrderService.VoidLabels"
	log := s.log.With(slog.String("op", op), slog.Uint64("order_id", uint64(order.ID)))

	var ids []string
	for _, sub := range order.SubOrders {
		if sub.ShippoTransactionID != "" {
			ids = append(ids, sub.ShippoTransactionID)
		}
	}
	s.refundLabels(ctx, log, ids)
}

// GetOrder returns an order to its purchaser or to a seller on it. Anyone
// else gets ErrNotFound.
func (s *OrderService) GetOrder(ctx context.Context, orderID, viewerID uint) (*models.Order, error) {
	const op = "services.OrderService.GetOrder"

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}
	if order.PurchaserID == viewerID {
		return order, nil
	}
	for _, sub := range order.SubOrders {
		if sub.SellerID == viewerID {
			return order, nil
		}
	}
	return nil, fmt.Errorf("%s: %w: order %d is not visible to user %d", op, ErrNotFound, orderID, viewerID)
}

func addressOf(u *models.User) shippo.Address {
	return shippo.Address{
		Name:    u.Name,
		Street1: u.Street1,
		Street2: u.Street2,
		City:    u.City,
		State:   u.State,
		Zip:     u.Zip,
		Country: u.Country,
		Phone:   u.Phone,
		Email:   u.Email,
	}
}
