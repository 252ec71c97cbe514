package handlers

import (
	"strings"
	"time"

	"sprift/internal/models"
	"sprift/internal/services"
)

// ListingDTO is the wire shape of a listing on every route.
type ListingDTO struct {
	ID                  uint     `json:"id"`
	Description         string   `json:"description"`
	Price               float64  `json:"price"`
	Seller              uint     `json:"seller"`
	SellerName          string   `json:"sellerName"`
	SellerProfilePicURL string   `json:"sellerProfilePicUrl"`
	Address             string   `json:"address"`
	ImagePaths          []string `json:"imagePaths"`
	Likes               int64    `json:"likes"`
	Dislikes            int64    `json:"dislikes"`
	Carts               int64    `json:"carts"`
	Size                string   `json:"size"`
	Gender              string   `json:"gender"`
	ClothingType        string   `json:"clothingType"`
	TagsMatched         int64    `json:"tagsMatched"`
	Liked               bool     `json:"liked"`
	Status              string   `json:"status"`
	Tags                []string `json:"tags"`
}

func sellerAddress(u *models.User) string {
	parts := make([]string, 0, 2)
	for _, p := range []string{u.City, u.State} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

func newListingDTO(l *models.Listing) ListingDTO {
	return ListingDTO{
		ID:                  l.ID,
		Description:         l.Description,
		Price:               l.Price.InexactFloat64(),
		Seller:              l.SellerID,
		SellerName:          l.Seller.DisplayName(),
		SellerProfilePicURL: l.Seller.ProfilePicURL,
		Address:             sellerAddress(&l.Seller),
		ImagePaths:          services.CleanImagePaths(l.ImagePaths()),
		Size:                l.Size,
		Gender:              l.Gender,
		ClothingType:        l.ClothingType,
		Status:              string(l.Status),
		Tags:                l.TagNames(),
	}
}

func newListingViewDTO(v *services.AffinityListing) ListingDTO {
	dto := newListingDTO(&v.Listing)
	dto.ImagePaths = v.ImagePaths
	dto.Likes = v.Likes
	dto.Dislikes = v.Dislikes
	dto.Carts = v.Carts
	dto.TagsMatched = v.TagsMatched
	dto.Liked = v.Liked
	return dto
}

func newListingViewDTOs(views []services.AffinityListing) []ListingDTO {
	out := make([]ListingDTO, 0, len(views))
	for i := range views {
		out = append(out, newListingViewDTO(&views[i]))
	}
	return out
}

// OrderLineDTO is one purchased listing.
type OrderLineDTO struct {
	ID        uint       `json:"id"`
	ListingID uint       `json:"listingId"`
	Price     float64    `json:"price"`
	Weight    float64    `json:"weight"`
	Listing   ListingDTO `json:"listing"`
}

// SubOrderDTO is the per-seller part of an order.
type SubOrderDTO struct {
	ID             uint           `json:"id"`
	SellerID       uint           `json:"sellerId"`
	SellerName     string         `json:"sellerName"`
	ShippingCost   float64        `json:"shippingCost"`
	ShippoObjectID string         `json:"shippoObjectId"`
	ShippoLabelURL *string        `json:"shippoLabelUrl"`
	Lines          []OrderLineDTO `json:"lines"`
}

// OrderDTO is an order with nested sub-orders, lines and listings.
type OrderDTO struct {
	ID            uint          `json:"id"`
	PurchaserID   uint          `json:"purchaserId"`
	Total         float64       `json:"total"`
	PaymentIntent string        `json:"paymentIntent"`
	SubOrders     []SubOrderDTO `json:"subOrders"`
	CreatedAt     time.Time     `json:"createdAt"`
}

func newOrderDTO(o *models.Order) OrderDTO {
	dto := OrderDTO{
		ID:            o.ID,
		PurchaserID:   o.PurchaserID,
		Total:         o.Total.InexactFloat64(),
		PaymentIntent: o.PaymentIntent,
		SubOrders:     make([]SubOrderDTO, 0, len(o.SubOrders)),
		CreatedAt:     o.CreatedAt,
	}
	for _, sub := range o.SubOrders {
		s := SubOrderDTO{
			ID:             sub.ID,
			SellerID:       sub.SellerID,
			SellerName:     sub.Seller.DisplayName(),
			ShippingCost:   sub.ShippingCost.InexactFloat64(),
			ShippoObjectID: sub.ShippoObjectID,
			ShippoLabelURL: sub.ShippoLabelURL,
			Lines:          make([]OrderLineDTO, 0, len(sub.Lines)),
		}
		for i := range sub.Lines {
			line := &sub.Lines[i]
			s.Lines = append(s.Lines, OrderLineDTO{
				ID:        line.ID,
				ListingID: line.ListingID,
				Price:     line.Price.InexactFloat64(),
				Weight:    line.Weight.InexactFloat64(),
				Listing:   newListingDTO(&line.Listing),
			})
		}
		dto.SubOrders = append(dto.SubOrders, s)
	}
	return dto
}

// CompletedOrderDTO is a finalized order with its listings flattened.
type CompletedOrderDTO struct {
	OrderDTO
	Listings []ListingDTO `json:"listings"`
}

func newCompletedOrderDTO(done *services.CompletedOrder) CompletedOrderDTO {
	dto := CompletedOrderDTO{OrderDTO: newOrderDTO(done.Order), Listings: make([]ListingDTO, 0, len(done.Listings))}
	for i := range done.Listings {
		dto.Listings = append(dto.Listings, newListingDTO(&done.Listings[i]))
	}
	return dto
}
