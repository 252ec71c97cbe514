package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ListingStatus is the sale state of a listing.
type ListingStatus string

const (
	ListingStatusStaging ListingStatus = "STAGING"
	ListingStatusSold    ListingStatus = "SOLD"
)

// Listing is a single secondhand item offered by a seller.
type Listing struct {
	ID           uint            `json:"id" gorm:"primaryKey"`
	SellerID     uint            `json:"sellerId" gorm:"index;not null"`
	Seller       User            `json:"seller" gorm:"foreignKey:SellerID"`
	Description  string          `json:"description" gorm:"type:text"`
	Price        decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Size         string          `json:"size" gorm:"type:varchar(16)"`
	Gender       string          `json:"gender" gorm:"type:varchar(8)"`
	ClothingType string          `json:"clothingType" gorm:"type:varchar(32)"`
	Weight       decimal.Decimal `json:"weight" gorm:"type:decimal(10,2)"`
	WeightUnit   string          `json:"weightUnit" gorm:"type:varchar(4);default:lb"`
	Status       ListingStatus   `json:"status" gorm:"type:varchar(16);index;not null;default:STAGING"`
	Images       []ListingImage  `json:"images" gorm:"constraint:OnDelete:CASCADE"`
	Tags         []Tag           `json:"tags" gorm:"many2many:listing_tags"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// ListingImage is an uploaded image path; Position keeps upload order.
type ListingImage struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	ListingID uint   `json:"-" gorm:"index;not null"`
	Path      string `json:"path" gorm:"type:text;not null"`
	Position  int    `json:"position" gorm:"not null;default:0"`
}

// ImagePaths returns the image paths in upload order.
func (l *Listing) ImagePaths() []string {
	paths := make([]string, 0, len(l.Images))
	for _, img := range l.Images {
		paths = append(paths, img.Path)
	}
	return paths
}

// TagNames returns the names of the listing's tags.
func (l *Listing) TagNames() []string {
	names := make([]string, 0, len(l.Tags))
	for _, t := range l.Tags {
		names = append(names, t.Name)
	}
	return names
}
