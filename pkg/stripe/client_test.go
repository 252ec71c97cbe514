package stripe_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"sprift/pkg/stripe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePaymentIntent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/payment_intents", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("Idempotency-Key"))

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "2550", r.PostForm.Get("amount"))
		assert.Equal(t, "usd", r.PostForm.Get("currency"))
		assert.Equal(t, "42", r.PostForm.Get("metadata[order_id]"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pi_1","client_secret":"pi_1_secret","status":"requires_payment_method","amount":2550,"currency":"usd"}`))
	}))
	defer srv.Close()

	client := stripe.NewClient(stripe.Config{SecretKey: "sk_test_123", BaseURL: srv.URL})
	pi, err := client.CreatePaymentIntent(context.Background(), 2550, "USD", map[string]string{"order_id": "42"})
	require.NoError(t, err)
	assert.Equal(t, "pi_1", pi.ID)
	assert.Equal(t, "pi_1_secret", pi.ClientSecret)
	assert.Equal(t, int64(2550), pi.Amount)
}

func TestGetPaymentIntent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/payment_intents/pi_ok":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"pi_ok","status":"succeeded","amount":100,"currency":"usd"}`))
		default:
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","code":"resource_missing","message":"No such payment_intent"}}`))
		}
	}))
	defer srv.Close()

	client := stripe.NewClient(stripe.Config{SecretKey: "sk_test_123", BaseURL: srv.URL})

	pi, err := client.GetPaymentIntent(context.Background(), "pi_ok")
	require.NoError(t, err)
	assert.Equal(t, stripe.StatusSucceeded, pi.Status)

	_, err = client.GetPaymentIntent(context.Background(), "pi_missing")
	require.Error(t, err)
	var stripeErr *stripe.Error
	require.ErrorAs(t, err, &stripeErr)
	assert.Equal(t, http.StatusNotFound, stripeErr.StatusCode)
	assert.Equal(t, "resource_missing", stripeErr.Code)
}
