package handlers

import (
	"sprift/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CheckoutHandler handles payment intents and cart purchase.
type CheckoutHandler struct {
	service  *services.CheckoutService
	validate *validator.Validate
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(service *services.CheckoutService, validate *validator.Validate) *CheckoutHandler {
	return &CheckoutHandler{service: service, validate: validate}
}

// RegisterRoutes registers the checkout routes.
func (h *CheckoutHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/checkout/payment-intent", h.HandlePaymentIntent)
	router.Post("/cart/purchase", h.HandlePurchase)
}

// PaymentIntentResponse lets the client confirm the payment.
type PaymentIntentResponse struct {
	OrderID       uint    `json:"orderId"`
	PaymentIntent string  `json:"paymentIntent"`
	ClientSecret  string  `json:"clientSecret"`
	Total         float64 `json:"total"`
}

// HandlePaymentIntent creates the order for the caller's cart and opens a
// payment intent for it.
func (h *CheckoutHandler) HandlePaymentIntent(c *fiber.Ctx) error {
	var req ClerkRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}
	clerkID, err := caller(c, req.ClerkID)
	if err != nil {
		return err
	}
	res, err := h.service.CreatePaymentIntent(c.UserContext(), clerkID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(PaymentIntentResponse{
		OrderID:       res.OrderID,
		PaymentIntent: res.PaymentIntent,
		ClientSecret:  res.ClientSecret,
		Total:         res.Total.InexactFloat64(),
	})
}

// PurchaseRequest finalizes a paid order.
type PurchaseRequest struct {
	ClerkID       string `json:"clerkId" validate:"required,max=64"`
	PaymentIntent string `json:"paymentIntent" validate:"required,max=255"`
}

// HandlePurchase finalizes the order paid with the given payment intent.
func (h *CheckoutHandler) HandlePurchase(c *fiber.Ctx) error {
	var req PurchaseRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}
	clerkID, err := caller(c, req.ClerkID)
	if err != nil {
		return err
	}
	done, err := h.service.FinalizeCheckout(c.UserContext(), clerkID, req.PaymentIntent)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(newCompletedOrderDTO(done))
}
