package handlers

import (
	"sprift/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	users   *services.UserService
	service *services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(users *services.UserService, service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		users:   users,
		service: service,
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
}

// HandleGetOrderByID retrieves an order the caller bought or sold into.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	clerkID, err := caller(c, "")
	if err != nil {
		return err
	}
	user, err := h.users.GetByClerkID(c.UserContext(), clerkID)
	if err != nil {
		return err
	}
	order, err := h.service.GetOrder(c.UserContext(), id, user.ID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(newOrderDTO(order))
}
