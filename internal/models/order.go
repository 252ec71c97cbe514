package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is a buyer's purchase across one or more sellers.
type Order struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	PurchaserID   uint            `json:"purchaserId" gorm:"index;not null"`
	Purchaser     User            `json:"-" gorm:"foreignKey:PurchaserID"`
	Total         decimal.Decimal `json:"total" gorm:"type:decimal(10,2);not null;default:0"`
	PaymentIntent string          `json:"paymentIntent" gorm:"type:varchar(255);index"`
	SubOrders     []SubOrder      `json:"subOrders" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// SubOrder is the per-seller part of an order with its own shipping rate and
// label.
type SubOrder struct {
	ID                  uint            `json:"id" gorm:"primaryKey"`
	OrderID             uint            `json:"orderId" gorm:"index;not null"`
	SellerID            uint            `json:"sellerId" gorm:"index;not null"`
	Seller              User            `json:"-" gorm:"foreignKey:SellerID"`
	ShippingCost        decimal.Decimal `json:"shippingCost" gorm:"type:decimal(10,2);not null"`
	ShippoObjectID      string          `json:"shippoObjectId" gorm:"type:varchar(64)"`
	ShippoTransactionID string          `json:"-" gorm:"type:varchar(64)"`
	ShippoLabelURL      *string         `json:"shippoLabelUrl" gorm:"type:text"`
	Lines               []OrderLine     `json:"lines" gorm:"constraint:OnDelete:CASCADE"`
}

// OrderLine snapshots a listing's commercial terms at order time.
type OrderLine struct {
	ID         uint            `json:"id" gorm:"primaryKey"`
	SubOrderID uint            `json:"subOrderId" gorm:"index;not null"`
	ListingID  uint            `json:"listingId" gorm:"index;not null"`
	Listing    Listing         `json:"listing" gorm:"foreignKey:ListingID"`
	SellerID   uint            `json:"sellerId" gorm:"not null"`
	Price      decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Weight     decimal.Decimal `json:"weight" gorm:"type:decimal(10,2)"`
}

// ComputeTotal returns the sum of all line prices plus the sum of all
// sub-order shipping costs.
func (o *Order) ComputeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, so := range o.SubOrders {
		total = total.Add(so.ShippingCost)
		for _, line := range so.Lines {
			total = total.Add(line.Price)
		}
	}
	return total
}

// ListingIDs returns the ids of every listing on the order.
func (o *Order) ListingIDs() []uint {
	var ids []uint
	for _, so := range o.SubOrders {
		for _, line := range so.Lines {
			ids = append(ids, line.ListingID)
		}
	}
	return ids
}

// SellerIDs returns the distinct sellers on the order in sub-order order.
func (o *Order) SellerIDs() []uint {
	seen := make(map[uint]bool)
	var ids []uint
	for _, so := range o.SubOrders {
		if !seen[so.SellerID] {
			seen[so.SellerID] = true
			ids = append(ids, so.SellerID)
		}
	}
	return ids
}
