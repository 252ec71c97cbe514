// Package stripe wraps the two PaymentIntent calls the marketplace needs.
package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// DefaultBaseURL is the production API endpoint.
const DefaultBaseURL = "https://api.stripe.com"

// Payment intent statuses.
const (
	StatusRequiresPaymentMethod = "requires_payment_method"
	StatusProcessing            = "processing"
	StatusSucceeded             = "succeeded"
	StatusCanceled              = "canceled"
)

// Config holds Stripe credentials.
type Config struct {
	SecretKey string
	BaseURL   string
	Timeout   time.Duration
}

// PaymentIntent is the subset of the Stripe object we read.
type PaymentIntent struct {
	ID           string            `json:"id"`
	ClientSecret string            `json:"client_secret"`
	Status       string            `json:"status"`
	Amount       int64             `json:"amount"`
	Currency     string            `json:"currency"`
	Metadata     map[string]string `json:"metadata"`
}

// Error is the error object Stripe returns on failed requests.
type Error struct {
	StatusCode int    `json:"-"`
	Type       string `json:"type"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("stripe: %s (%s, status %d)", e.Message, e.Type, e.StatusCode)
}

type errorEnvelope struct {
	Error *Error `json:"error"`
}

// Client is a minimal Stripe REST client.
type Client struct {
	http *resty.Client
}

// NewClient creates a new Stripe client.
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
		SetAuthToken(cfg.SecretKey).
		ForceContentType("application/json")
	return &Client{http: http}
}

// CreatePaymentIntent opens a payment intent for amount (smallest currency
// unit). Each call carries a fresh idempotency key.
func (c *Client) CreatePaymentIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*PaymentIntent, error) {
	form := map[string]string{
		"amount":                             strconv.FormatInt(amount, 10),
		"currency":                           strings.ToLower(currency),
		"automatic_payment_methods[enabled]": "true",
	}
	for k, v := range metadata {
		form["metadata["+k+"]"] = v
	}

	var out PaymentIntent
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Idempotency-Key", uuid.NewString()).
		SetFormData(form).
		SetResult(&out).
		Post("/v1/payment_intents")
	if err != nil {
		return nil, fmt.Errorf("stripe: create payment intent: %w", err)
	}
	if resp.IsError() {
		return nil, parseError(resp)
	}
	return &out, nil
}

// GetPaymentIntent fetches a payment intent by id.
func (c *Client) GetPaymentIntent(ctx context.Context, id string) (*PaymentIntent, error) {
	var out PaymentIntent
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetResult(&out).
		Get("/v1/payment_intents/{id}")
	if err != nil {
		return nil, fmt.Errorf("stripe: get payment intent %s: %w", id, err)
	}
	if resp.IsError() {
		return nil, parseError(resp)
	}
	return &out, nil
}

func parseError(resp *resty.Response) error {
	var env errorEnvelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil || env.Error == nil {
		return &Error{StatusCode: resp.StatusCode(), Type: "api_error", Message: resp.String()}
	}
	env.Error.StatusCode = resp.StatusCode()
	return env.Error
}
