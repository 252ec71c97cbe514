package handlers

import (
	"sprift/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AddressHandler validates shipping addresses.
type AddressHandler struct {
	service  *services.AddressService
	validate *validator.Validate
}

// NewAddressHandler creates a new AddressHandler.
func NewAddressHandler(service *services.AddressService, validate *validator.Validate) *AddressHandler {
	return &AddressHandler{service: service, validate: validate}
}

// RegisterRoutes registers the address routes.
func (h *AddressHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/address/validate", h.HandleValidate)
}

// ClerkRequest is a body naming only the caller.
type ClerkRequest struct {
	ClerkID string `json:"clerkId" validate:"required,max=64"`
}

// HandleValidate checks the caller's stored address with the carrier.
func (h *AddressHandler) HandleValidate(c *fiber.Ctx) error {
	var req ClerkRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}
	clerkID, err := caller(c, req.ClerkID)
	if err != nil {
		return err
	}
	res, err := h.service.ValidateAddress(c.UserContext(), clerkID)
	if err != nil {
		return err
	}
	messages := res.Messages
	if messages == nil {
		messages = []string{}
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"valid":    res.Valid,
		"messages": messages,
	})
}
