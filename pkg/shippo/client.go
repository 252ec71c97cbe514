// Package shippo is a small client for the Shippo shipping API: address
// validation, rate quotes, label purchase and label refunds.
package shippo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultBaseURL is the production API endpoint.
const DefaultBaseURL = "https://api.goshippo.com"

// ErrNoRates is returned when a shipment comes back without any rate.
var ErrNoRates = errors.New("shippo: no rates returned")

// Config holds Shippo connection details.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Client talks to the Shippo REST API.
type Client struct {
	http *resty.Client
}

// NewClient creates a new Shippo client.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	http := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Authorization", "ShippoToken "+cfg.APIKey).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json").
		ForceContentType("application/json")
	return &Client{http: http}
}

// APIError is a non-2xx answer from Shippo.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("shippo: request failed with status %d: %s", e.StatusCode, e.Body)
}

func (c *Client) post(ctx context.Context, path string, body, result interface{}) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(result).
		Post(path)
	if err != nil {
		return fmt.Errorf("shippo: POST %s: %w", path, err)
	}
	if resp.IsError() {
		return &APIError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}
	return nil
}

// ValidateAddress asks the carrier whether the address is deliverable.
func (c *Client) ValidateAddress(ctx context.Context, addr Address) (*AddressValidation, error) {
	addr.Validate = true
	var out AddressValidation
	if err := c.post(ctx, "/addresses/", addr, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateShipment requests synchronous rate computation for a shipment.
func (c *Client) CreateShipment(ctx context.Context, req ShipmentRequest) (*Shipment, error) {
	req.Async = false
	var out Shipment
	if err := c.post(ctx, "/shipments/", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PurchaseLabel buys a label for a previously quoted rate. A transaction that
// does not come back as SUCCESS is returned as an error.
func (c *Client) PurchaseLabel(ctx context.Context, rateID string) (*Transaction, error) {
	body := map[string]interface{}{
		"rate":            rateID,
		"label_file_type": "PDF",
		"async":           false,
	}
	var out Transaction
	if err := c.post(ctx, "/transactions/", body, &out); err != nil {
		return nil, err
	}
	if out.Status != StatusSuccess {
		texts := make([]string, 0, len(out.Messages))
		for _, m := range out.Messages {
			texts = append(texts, m.Text)
		}
		return &out, fmt.Errorf("shippo: label purchase for rate %s ended with status %s: %s", rateID, out.Status, strings.Join(texts, "; "))
	}
	return &out, nil
}

// RefundLabel requests a refund of a purchased label.
func (c *Client) RefundLabel(ctx context.Context, transactionID string) (*Refund, error) {
	body := map[string]interface{}{
		"transaction": transactionID,
		"async":       false,
	}
	var out Refund
	if err := c.post(ctx, "/refunds/", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LowestRate returns the rate with the smallest amount. Ties keep the first
// one in carrier order.
func LowestRate(rates []Rate) (Rate, error) {
	if len(rates) == 0 {
		return Rate{}, ErrNoRates
	}
	best := rates[0]
	for _, r := range rates[1:] {
		if r.Amount.LessThan(best.Amount) {
			best = r
		}
	}
	return best, nil
}
