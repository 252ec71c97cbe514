package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// User represents a marketplace member. Users are created on first sign-in
// and identified externally by their Clerk id.
type User struct {
	ID            uint              `json:"id" gorm:"primaryKey"`
	ClerkID       string            `json:"clerkId" gorm:"uniqueIndex;type:varchar(64);not null"`
	Email         string            `json:"email" gorm:"type:varchar(255)"`
	Username      string            `json:"username" gorm:"type:varchar(100)"`
	Bio           string            `json:"bio" gorm:"type:text"`
	ProfilePicURL string            `json:"profilePicUrl" gorm:"type:text"`
	Name          string            `json:"name" gorm:"type:varchar(255)"`
	Street1       string            `json:"street1" gorm:"type:varchar(255)"`
	Street2       string            `json:"street2" gorm:"type:varchar(255)"`
	City          string            `json:"city" gorm:"type:varchar(100)"`
	State         string            `json:"state" gorm:"type:varchar(100)"`
	Zip           string            `json:"zip" gorm:"type:varchar(20)"`
	Country       string            `json:"country" gorm:"type:varchar(2)"`
	Phone         string            `json:"phone" gorm:"type:varchar(32)"`
	NumSales      int               `json:"numSales" gorm:"not null;default:0"`
	StyleTags     []Tag             `json:"styleTags,omitempty" gorm:"many2many:user_tags"`
	Filter        *FilterPreference `json:"filter,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// DisplayName is the username, or the local part of the email when the
// username is empty.
func (u *User) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	local, _, _ := strings.Cut(u.Email, "@")
	return local
}

// HasShippingAddress reports whether the fields a carrier needs are present.
func (u *User) HasShippingAddress() bool {
	return u.Name != "" && u.Street1 != "" && u.City != "" && u.State != "" && u.Zip != "" && u.Country != ""
}

// GenderAny is the wildcard gender filter.
const GenderAny = "Any"

// FilterPreference holds the explore filters a user has saved.
type FilterPreference struct {
	ID       uint                        `json:"-" gorm:"primaryKey"`
	UserID   uint                        `json:"-" gorm:"uniqueIndex;not null"`
	Gender   string                      `json:"gender" validate:"omitempty,max=16"`
	MaxPrice decimal.NullDecimal         `json:"maxPrice" gorm:"type:decimal(10,2)"`
	Sizes    datatypes.JSONSlice[string] `json:"sizes" validate:"dive,required,max=16"`
	Types    datatypes.JSONSlice[string] `json:"types" validate:"dive,required,max=32"`
}

// Tag is a style tag shared by listings and user preferences.
type Tag struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"uniqueIndex;type:varchar(64);not null"`
}
