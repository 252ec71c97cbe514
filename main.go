package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sprift/internal/config"
	"sprift/internal/database"
	"sprift/internal/handlers"
	"sprift/internal/logger"
	"sprift/internal/repositories"
	"sprift/internal/services"
	"sprift/pkg/mailer"
	"sprift/pkg/rabbitmq"
	"sprift/pkg/shippo"
	"sprift/pkg/stripe"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.SetupLogger(cfg.Env)
	if err := run(cfg, log); err != nil {
		log.Error("server stopped with error", logger.Err(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	mail := mailer.NewClient(mailer.Config{
		APIKey:  cfg.MailAPIKey,
		BaseURL: cfg.MailBaseURL,
		From:    cfg.MailFrom,
		Timeout: cfg.HTTPClientTimeout,
	})
	orderEvents := services.NewOrderEventHandler(mail, log)

	// Without a broker, order emails are sent in process.
	var events services.EventPublisher = orderEvents
	mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Queue: cfg.RabbitMQQueue}, log)
	if err != nil {
		log.Warn("rabbitmq unavailable, sending order emails in process", logger.Err(err))
	} else {
		defer mqClient.Close()
		if err := mqClient.ConsumeOrderEvents(orderEvents.Handle); err != nil {
			log.Error("failed to start order event consumer, sending order emails in process", logger.Err(err))
		} else {
			events = mqClient
		}
	}

	app, err := newApp(cfg, db, events, log)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", slog.String("port", cfg.Port))
		errCh <- app.Listen(cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	log.Info("server gracefully stopped")
	return nil
}

// newApp wires repositories, providers and services into the HTTP app.
func newApp(cfg *config.Config, db *gorm.DB, events services.EventPublisher, log *slog.Logger) (*fiber.App, error) {
	validate := validator.New()

	users := repositories.NewGORMUserRepository(db)
	listings := repositories.NewGORMListingRepository(db)
	orders := repositories.NewGORMOrderRepository(db)
	reactions := repositories.NewGORMReactionRepository(db)
	notifications := repositories.NewGORMNotificationRepository(db)

	shipping := shippo.NewClient(shippo.Config{
		APIKey:  cfg.ShippoAPIKey,
		BaseURL: cfg.ShippoBaseURL,
		Timeout: cfg.HTTPClientTimeout,
	})
	payments := stripe.NewClient(stripe.Config{
		SecretKey: cfg.StripeSecretKey,
		BaseURL:   cfg.StripeBaseURL,
		Timeout:   cfg.HTTPClientTimeout,
	})

	auth, err := services.NewAuthService(services.AuthConfig{
		PublicKeyPEM: cfg.ClerkJWTPublicKey,
		Secret:       cfg.JWTSecret,
	}, log)
	if err != nil {
		return nil, err
	}

	affinity := services.NewAffinityEngine(users, listings, log)
	orderService := services.NewOrderService(db, users, listings, orders, shipping, log)

	return handlers.NewApp(handlers.Services{
		Auth:      auth,
		Users:     services.NewUserService(users, validate, log),
		Feed:      services.NewFeedService(affinity, users, listings, cfg.FeedPageSize, log),
		Address:   services.NewAddressService(users, shipping, log),
		Listings:  services.NewListingService(listings, log),
		Reactions: services.NewReactionService(users, listings, reactions, log),
		Orders:    orderService,
		Checkout: services.NewCheckoutService(services.CheckoutDeps{
			DB:            db,
			Users:         users,
			Listings:      listings,
			Orders:        orders,
			Reactions:     reactions,
			Notifications: notifications,
			OrderService:  orderService,
			Payments:      payments,
			Events:        events,
			Currency:      cfg.StripeCurrency,
		}, log),
		Notifications: services.NewNotificationService(users, notifications),
		Validate:      validate,
	}, log), nil
}
