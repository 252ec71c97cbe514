package shippo

import "github.com/shopspring/decimal"

// Address is a postal address as the carrier API expects it.
type Address struct {
	Name     string `json:"name"`
	Street1  string `json:"street1"`
	Street2  string `json:"street2,omitempty"`
	City     string `json:"city"`
	State    string `json:"state"`
	Zip      string `json:"zip"`
	Country  string `json:"country"`
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty"`
	Validate bool   `json:"validate,omitempty"`
}

// Parcel describes one package. Dimensions and weight are decimal strings.
type Parcel struct {
	Length       string `json:"length"`
	Width        string `json:"width"`
	Height       string `json:"height"`
	DistanceUnit string `json:"distance_unit"`
	Weight       string `json:"weight"`
	MassUnit     string `json:"mass_unit"`
}

// Message is a diagnostic returned by the carrier.
type Message struct {
	Source string `json:"source"`
	Code   string `json:"code"`
	Type   string `json:"type"`
	Text   string `json:"text"`
}

// ShipmentRequest asks for rates between two addresses.
type ShipmentRequest struct {
	AddressFrom Address  `json:"address_from"`
	AddressTo   Address  `json:"address_to"`
	Parcels     []Parcel `json:"parcels"`
	Async       bool     `json:"async"`
}

// ServiceLevel names a carrier service.
type ServiceLevel struct {
	Name  string `json:"name"`
	Token string `json:"token"`
}

// Rate is a priced shipping option.
type Rate struct {
	ObjectID      string          `json:"object_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Provider      string          `json:"provider"`
	ServiceLevel  ServiceLevel    `json:"servicelevel"`
	EstimatedDays int             `json:"estimated_days"`
}

// Shipment is the carrier's answer to a ShipmentRequest.
type Shipment struct {
	ObjectID string    `json:"object_id"`
	Status   string    `json:"status"`
	Rates    []Rate    `json:"rates"`
	Messages []Message `json:"messages"`
}

// ValidationResults tells whether an address is deliverable.
type ValidationResults struct {
	IsValid  bool      `json:"is_valid"`
	Messages []Message `json:"messages"`
}

// AddressValidation is the carrier's answer to an address validation.
type AddressValidation struct {
	ObjectID          string            `json:"object_id"`
	IsComplete        bool              `json:"is_complete"`
	ValidationResults ValidationResults `json:"validation_results"`
}

// Transaction statuses.
const (
	StatusSuccess = "SUCCESS"
	StatusQueued  = "QUEUED"
	StatusError   = "ERROR"
)

// Transaction is a purchased label.
type Transaction struct {
	ObjectID       string    `json:"object_id"`
	Status         string    `json:"status"`
	Rate           string    `json:"rate"`
	LabelURL       string    `json:"label_url"`
	TrackingNumber string    `json:"tracking_number"`
	Messages       []Message `json:"messages"`
}

// Refund is a label refund request.
type Refund struct {
	ObjectID    string `json:"object_id"`
	Status      string `json:"status"`
	Transaction string `json:"transaction"`
}

// Placeholder parcel dimensions in inches; listings carry no size data.
const (
	placeholderLength = "10"
	placeholderWidth  = "8"
	placeholderHeight = "4"
)

// NewParcel builds a parcel for an item of the given weight. Unknown mass
// units fall back to pounds.
func NewParcel(weight decimal.Decimal, massUnit string) Parcel {
	switch massUnit {
	case "lb", "oz", "g", "kg":
	default:
		massUnit = "lb"
	}
	return Parcel{
		Length:       placeholderLength,
		Width:        placeholderWidth,
		Height:       placeholderHeight,
		DistanceUnit: "in",
		Weight:       weight.String(),
		MassUnit:     massUnit,
	}
}
