package handlers

import (
	"sprift/internal/services"

	"github.com/gofiber/fiber/v2"
)

// NotificationHandler lists in-app notifications.
type NotificationHandler struct {
	service *services.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(service *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// RegisterRoutes registers the notification routes.
func (h *NotificationHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/notifications", h.HandleList)
}

// HandleList returns the caller's newest notifications.
func (h *NotificationHandler) HandleList(c *fiber.Ctx) error {
	clerkID, err := caller(c, "")
	if err != nil {
		return err
	}
	notifications, err := h.service.ListNotifications(c.UserContext(), clerkID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(notifications)
}
