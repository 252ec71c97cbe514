package handlers

import (
	"sprift/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// UserHandler handles user sync and saved filters.
type UserHandler struct {
	service  *services.UserService
	validate *validator.Validate
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *services.UserService, validate *validator.Validate) *UserHandler {
	return &UserHandler{service: service, validate: validate}
}

// RegisterRoutes registers the user routes.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	userRoutes := router.Group("/users")
	userRoutes.Post("/sync", h.HandleSync)
	userRoutes.Put("/filter", h.HandleSaveFilter)
}

// SyncRequest is sent by the client after every sign-in.
type SyncRequest struct {
	ClerkID  string `json:"clerkId" validate:"required,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"omitempty,max=100"`
}

// HandleSync creates or refreshes the caller's user record.
func (h *UserHandler) HandleSync(c *fiber.Ctx) error {
	var req SyncRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}
	clerkID, err := caller(c, req.ClerkID)
	if err != nil {
		return err
	}
	user, err := h.service.SyncUser(c.UserContext(), clerkID, req.Email, req.Username)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(user)
}

// FilterRequest replaces the caller's explore filter.
type FilterRequest struct {
	Gender   string           `json:"gender" validate:"omitempty,max=16"`
	MaxPrice *decimal.Decimal `json:"maxPrice"`
	Sizes    []string         `json:"sizes" validate:"max=32,dive,required,max=16"`
	Types    []string         `json:"types" validate:"max=32,dive,required,max=32"`
}

// HandleSaveFilter stores the caller's explore filter.
func (h *UserHandler) HandleSaveFilter(c *fiber.Ctx) error {
	var req FilterRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}
	clerkID, err := caller(c, "")
	if err != nil {
		return err
	}
	filter, err := h.service.SaveFilter(c.UserContext(), clerkID, services.FilterInput{
		Gender:   req.Gender,
		MaxPrice: req.MaxPrice,
		Sizes:    req.Sizes,
		Types:    req.Types,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(filter)
}
