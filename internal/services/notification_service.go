package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"sprift/internal/models"
	"sprift/internal/repositories"
	"sprift/pkg/mailer"
	"sprift/pkg/rabbitmq"

	"github.com/streadway/amqp"
)

const notificationPageSize = 100

// NotificationService lists in-app notifications.
type NotificationService struct {
	users         repositories.UserRepository
	notifications repositories.NotificationRepository
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(users repositories.UserRepository, notifications repositories.NotificationRepository) *NotificationService {
	return &NotificationService{users: users, notifications: notifications}
}

// ListNotifications returns the user's latest notifications, newest first.
func (s *NotificationService) ListNotifications(ctx context.Context, clerkID string) ([]models.Notification, error) {
	const op = "services.NotificationService.ListNotifications"

	user, err := s.users.GetByClerkID(ctx, clerkID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}
	list, err := s.notifications.ListForUser(ctx, user.ID, notificationPageSize)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

// Mailer sends one email.
type Mailer interface {
	Send(ctx context.Context, msg mailer.Message) error
}

// OrderEventHandler turns order events from the queue into emails.
type OrderEventHandler struct {
	mailer Mailer
	log    *slog.Logger
}

// NewOrderEventHandler creates a new OrderEventHandler.
func NewOrderEventHandler(m Mailer, log *slog.Logger) *OrderEventHandler {
	return &OrderEventHandler{mailer: m, log: log}
}

// Handle processes one delivery. Unknown event types are acknowledged and
// skipped. A malformed body is an error; failed sends are only logged.
func (h *OrderEventHandler) Handle(msg amqp.Delivery) error {
	const op = "services.OrderEventHandler.Handle"
	log := h.log.With(slog.String("op", op), slog.String("type", msg.Type), slog.String("message_id", msg.MessageId))

	if msg.Type != rabbitmq.EventOrderCompleted {
		log.Debug("skipping event")
		return nil
	}

	var ev OrderCompletedEvent
	if err := json.Unmarshal(msg.Body, &ev); err != nil {
		return fmt.Errorf("%s: decode %s: %w", op, msg.Type, err)
	}
	h.SendOrderEmails(context.Background(), ev)
	return nil
}

// PublishEvent delivers an event in process, for deployments without a
// broker. Only order completions produce mail; other events are dropped.
func (h *OrderEventHandler) PublishEvent(ctx context.Context, eventType string, payload interface{}) error {
	if eventType != rabbitmq.EventOrderCompleted {
		return nil
	}
	switch ev := payload.(type) {
	case OrderCompletedEvent:
		h.SendOrderEmails(context.WithoutCancel(ctx), ev)
	case *OrderCompletedEvent:
		h.SendOrderEmails(context.WithoutCancel(ctx), *ev)
	default:
		return fmt.Errorf("services.OrderEventHandler.PublishEvent: unexpected payload %T", payload)
	}
	return nil
}

// SendOrderEmails mails a receipt to the buyer and a sale notice to every
// seller, once each.
func (h *OrderEventHandler) SendOrderEmails(ctx context.Context, ev OrderCompletedEvent) {
	log := h.log.With(slog.Uint64("order_id", uint64(ev.OrderID)))

	var messages []mailer.Message
	receipt, err := mailer.RenderPurchaseReceipt(ev.BuyerEmail, mailer.PurchaseReceipt{
		Name:    ev.BuyerName,
		OrderID: ev.OrderID,
		Total:   ev.Total,
		Lines:   receiptLines(ev.Lines),
	})
	if err != nil {
		log.Error("failed to render receipt", slog.String("error", err.Error()))
	} else {
		messages = append(messages, receipt)
	}

	seen := make(map[uint]bool, len(ev.Sellers))
	for _, seller := range ev.Sellers {
		if seen[seller.UserID] {
			continue
		}
		seen[seller.UserID] = true
		notice, err := mailer.RenderSaleNotice(seller.Email, mailer.SaleNotice{
			Name:     seller.Name,
			OrderID:  ev.OrderID,
			LabelURL: seller.LabelURL,
			Lines:    receiptLines(seller.Lines),
		})
		if err != nil {
			log.Error("failed to render sale notice", slog.Uint64("seller_id", uint64(seller.UserID)), slog.String("error", err.Error()))
			continue
		}
		messages = append(messages, notice)
	}

	for _, m := range messages {
		if err := h.mailer.Send(ctx, m); err != nil {
			log.Error("failed to send email", slog.String("to", m.To), slog.String("error", err.Error()))
			continue
		}
		log.Info("email sent", slog.String("to", m.To))
	}
}

func receiptLines(lines []EventLine) []mailer.ReceiptLine {
	out := make([]mailer.ReceiptLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, mailer.ReceiptLine{Description: l.Description, Price: l.Price})
	}
	return out
}
