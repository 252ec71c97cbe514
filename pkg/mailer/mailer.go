// Package mailer sends transactional email through an HTTP mail provider.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrNoRecipient is returned for a message without a To address.
var ErrNoRecipient = errors.New("mailer: message has no recipient")

// Config holds mail provider settings.
type Config struct {
	APIKey  string
	BaseURL string
	From    string
	Timeout time.Duration
}

// Message is one outgoing email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// Client posts messages to the provider's /emails endpoint.
type Client struct {
	http *resty.Client
	from string
}

// NewClient creates a new mail client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	http := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(timeout).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json")
	return &Client{http: http, from: cfg.From}
}

// Send delivers msg.
func (c *Client) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(sendRequest{From: c.from, To: []string{msg.To}, Subject: msg.Subject, HTML: msg.HTML}).
		Post("/emails")
	if err != nil {
		return fmt.Errorf("mailer: send to %s: %w", msg.To, err)
	}
	if resp.IsError() {
		return fmt.Errorf("mailer: send to %s: status %d: %s", msg.To, resp.StatusCode(), resp.String())
	}
	return nil
}
