package repositories

import (
	"context"

	"sprift/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	WithTx(tx *gorm.DB) OrderRepository
	Create(ctx context.Context, order *models.Order) error
	CreateSubOrder(ctx context.Context, subOrder *models.SubOrder) error
	SetLabel(ctx context.Context, subOrderID uint, transactionID, labelURL string) error
	SetTotal(ctx context.Context, orderID uint, total decimal.Decimal) error
	SetPaymentIntent(ctx context.Context, orderID uint, paymentIntent string) error
	GetByID(ctx context.Context, id uint) (*models.Order, error)
	GetByPaymentIntent(ctx context.Context, purchaserID uint, paymentIntent string) (*models.Order, error)
}
