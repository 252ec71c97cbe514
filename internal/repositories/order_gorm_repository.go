package repositories

import (
	"context"
	"errors"
	"fmt"

	"sprift/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// WithTx returns a repository bound to the given transaction.
func (r *GORMOrderRepository) WithTx(tx *gorm.DB) OrderRepository {
	return &GORMOrderRepository{db: tx}
}

// Create inserts the order row only; sub-orders are created separately.
func (r *GORMOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// CreateSubOrder inserts the sub-order and its lines.
func (r *GORMOrderRepository) CreateSubOrder(ctx context.Context, subOrder *models.SubOrder) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(subOrder).Error; err != nil {
		return fmt.Errorf("failed to create sub-order for seller %d: %w", subOrder.SellerID, err)
	}
	if len(subOrder.Lines) == 0 {
		return nil
	}
	for i := range subOrder.Lines {
		subOrder.Lines[i].SubOrderID = subOrder.ID
	}
	if err := db.Omit(clause.Associations).Create(&subOrder.Lines).Error; err != nil {
		return fmt.Errorf("failed to create lines of sub-order %d: %w", subOrder.ID, err)
	}
	return nil
}

// SetLabel stores the purchased label of a sub-order.
func (r *GORMOrderRepository) SetLabel(ctx context.Context, subOrderID uint, transactionID, labelURL string) error {
	res := r.db.WithContext(ctx).Model(&models.SubOrder{}).
		Where("id = ?", subOrderID).
		Updates(map[string]interface{}{
			"shippo_transaction_id": transactionID,
			"shippo_label_url":      labelURL,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to store label of sub-order %d: %w", subOrderID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("sub-order with ID %d: %w", subOrderID, ErrNotFound)
	}
	return nil
}

// SetTotal writes the computed order total.
func (r *GORMOrderRepository) SetTotal(ctx context.Context, orderID uint, total decimal.Decimal) error {
	return r.updateOrder(ctx, orderID, "total", total)
}

// SetPaymentIntent attaches an external payment reference to the order.
func (r *GORMOrderRepository) SetPaymentIntent(ctx context.Context, orderID uint, paymentIntent string) error {
	return r.updateOrder(ctx, orderID, "payment_intent", paymentIntent)
}

func (r *GORMOrderRepository) updateOrder(ctx context.Context, orderID uint, column string, value interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", orderID).Update(column, value)
	if res.Error != nil {
		return fmt.Errorf("failed to update %s of order %d: %w", column, orderID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order with ID %d: %w", orderID, ErrNotFound)
	}
	return nil
}

func withOrderDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("SubOrders", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("SubOrders.Seller").
		Preload("SubOrders.Lines", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("SubOrders.Lines.Listing").
		Preload("SubOrders.Lines.Listing.Seller").
		Preload("SubOrders.Lines.Listing.Images", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC, id ASC") })
}

// GetByID retrieves an order with nested sub-orders, lines and listings.
func (r *GORMOrderRepository) GetByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := withOrderDetails(r.db.WithContext(ctx)).First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order with ID %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID %d: %w", id, err)
	}
	return &order, nil
}

// GetByPaymentIntent retrieves the purchaser's order carrying the payment
// reference.
func (r *GORMOrderRepository) GetByPaymentIntent(ctx context.Context, purchaserID uint, paymentIntent string) (*models.Order, error) {
	var order models.Order
	err := withOrderDetails(r.db.WithContext(ctx)).
		Where("purchaser_id = ? AND payment_intent = ?", purchaserID, paymentIntent).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order with payment intent %s: %w", paymentIntent, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by payment intent %s: %w", paymentIntent, err)
	}
	return &order, nil
}
