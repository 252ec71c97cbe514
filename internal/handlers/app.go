package handlers

import (
	"log/slog"
	"time"

	"sprift/internal/middleware"
	"sprift/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Services are the collaborators the HTTP surface dispatches to.
type Services struct {
	Auth          *services.AuthService
	Users         *services.UserService
	Feed          *services.FeedService
	Address       *services.AddressService
	Checkout      *services.CheckoutService
	Listings      *services.ListingService
	Reactions     *services.ReactionService
	Orders        *services.OrderService
	Notifications *services.NotificationService
	Validate      *validator.Validate
}

// NewApp builds the Fiber application with every route registered under
// /api behind token authentication.
func NewApp(svc Services, log *slog.Logger) *fiber.App {
	validate := svc.Validate
	if validate == nil {
		validate = validator.New()
	}

	app := fiber.New(fiber.Config{
		AppName:      "sprift",
		ErrorHandler: ErrorHandler(log),
	})
	app.Use(recover.New())
	app.Use(logger.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	api := app.Group("/api", middleware.AuthRequired(svc.Auth))

	NewUserHandler(svc.Users, validate).RegisterRoutes(api)
	NewFeedHandler(svc.Users, svc.Feed, validate).RegisterRoutes(api)
	NewAddressHandler(svc.Address, validate).RegisterRoutes(api)
	NewCheckoutHandler(svc.Checkout, validate).RegisterRoutes(api)
	NewListingHandler(svc.Users, svc.Listings, svc.Reactions, validate).RegisterRoutes(api)
	NewOrderHandler(svc.Users, svc.Orders).RegisterRoutes(api)
	NewNotificationHandler(svc.Notifications).RegisterRoutes(api)

	return app
}
