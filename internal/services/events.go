package services

import (
	"context"

	"sprift/internal/models"
)

// EventPublisher publishes domain events to the message broker.
type EventPublisher interface {
	PublishEvent(ctx context.Context, eventType string, payload interface{}) error
}

// EventLine is one sold item in an event payload.
type EventLine struct {
	ListingID   uint   `json:"listingId"`
	Description string `json:"description"`
	Price       string `json:"price"`
}

// EventSeller is one seller of a completed order.
type EventSeller struct {
	UserID   uint        `json:"userId"`
	Email    string      `json:"email"`
	Name     string      `json:"name"`
	LabelURL string      `json:"labelUrl,omitempty"`
	Lines    []EventLine `json:"lines"`
}

// OrderCompletedEvent is published once a checkout is finalized.
type OrderCompletedEvent struct {
	OrderID    uint          `json:"orderId"`
	Total      string        `json:"total"`
	BuyerID    uint          `json:"buyerId"`
	BuyerEmail string        `json:"buyerEmail"`
	BuyerName  string        `json:"buyerName"`
	Lines      []EventLine   `json:"lines"`
	Sellers    []EventSeller `json:"sellers"`
}

func newOrderCompletedEvent(buyer *models.User, order *models.Order) OrderCompletedEvent {
	ev := OrderCompletedEvent{
		OrderID:    order.ID,
		Total:      order.Total.StringFixed(2),
		BuyerID:    buyer.ID,
		BuyerEmail: buyer.Email,
		BuyerName:  buyer.DisplayName(),
	}
	for _, sub := range order.SubOrders {
		seller := EventSeller{
			UserID: sub.SellerID,
			Email:  sub.Seller.Email,
			Name:   sub.Seller.DisplayName(),
		}
		if sub.ShippoLabelURL != nil {
			seller.LabelURL = *sub.ShippoLabelURL
		}
		for _, line := range sub.Lines {
			el := EventLine{
				ListingID:   line.ListingID,
				Description: line.Listing.Description,
				Price:       line.Price.StringFixed(2),
			}
			seller.Lines = append(seller.Lines, el)
			ev.Lines = append(ev.Lines, el)
		}
		ev.Sellers = append(ev.Sellers, seller)
	}
	return ev
}
