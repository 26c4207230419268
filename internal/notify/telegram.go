// Package notify pushes booking alerts to each agency's Telegram chat.
package notify

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"nomadx/internal/config"
	"nomadx/internal/dashboard"
	"nomadx/internal/domain"
	"nomadx/internal/events"
	"nomadx/internal/metrics"
	"nomadx/internal/models"
	"nomadx/internal/worker"
)

// NewBot connects to the Bot API. It returns nil when no token is configured.
func NewBot(cfg config.TelegramConfig) (*tgbotapi.BotAPI, error) {
	if cfg.BotToken == "" {
		return nil, nil
	}
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	bot.Debug = cfg.Debug
	return bot, nil
}

// AgencyAlerts sends new-booking and status-change alerts to the chat mapped to the
// booking's agency. Agencies without a chat are skipped.
type AgencyAlerts struct {
	sender domain.TelegramSender
	chats  map[string]int64
	queue  AlertQueue
	logger *zerolog.Logger
}

// AlertQueue delivers alerts in the background.
type AlertQueue interface {
	Enqueue(ctx context.Context, task worker.AlertTask) error
}

func NewAgencyAlerts(sender domain.TelegramSender, chats map[string]int64, logger *zerolog.Logger) *AgencyAlerts {
	return &AgencyAlerts{sender: sender, chats: chats, logger: logger}
}

// WithQueue hands every alert to q. Alerts are sent inline only when q rejects them.
func (a *AgencyAlerts) WithQueue(q AlertQueue) *AgencyAlerts {
	a.queue = q
	return a
}

func (a *AgencyAlerts) Register(bus *events.EventBus) {
	bus.Subscribe(events.EventBookingCreated, a.Handle)
	bus.Subscribe(events.EventBookingStatusChanged, a.Handle)
}

func (a *AgencyAlerts) Handle(event *events.Event) error {
	var payload events.BookingEventPayload
	if err := event.Decode(&payload); err != nil {
		return err
	}

	chatID, ok := a.chats[payload.AgencyID]
	if !ok || a.sender == nil {
		return nil
	}

	var text string
	switch event.Type {
	case events.EventBookingCreated:
		text = newBookingMessage(payload)
	case events.EventBookingStatusChanged:
		text = statusMessage(payload)
	default:
		return nil
	}

	if a.queue != nil {
		task := worker.AlertTask{BookingID: payload.BookingID, ChatID: chatID, Text: text}
		err := a.queue.Enqueue(context.Background(), task)
		if err == nil {
			return nil
		}
		a.logger.Warn().Err(err).Str("booking_id", payload.BookingID).Msg("alert queue rejected task, sending inline")
	}

	if _, err := a.sender.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		metrics.IncNotificationFailure()
		return fmt.Errorf("send agency alert for booking %s: %w", payload.BookingID, err)
	}
	a.logger.Debug().Str("booking_id", payload.BookingID).Int64("chat_id", chatID).Msg("agency alert sent")
	return nil
}

func newBookingMessage(p events.BookingEventPayload) string {
	var sb strings.Builder
	sb.WriteString("🆕 New booking\n\n")
	fmt.Fprintf(&sb, "👤 Customer: %s\n", orPlaceholder(p.CustomerName, models.WalkInCustomerName))
	fmt.Fprintf(&sb, "📍 Pickup: %s\n", orPlaceholder(p.PickupLocation, models.NotAvailable))
	fmt.Fprintf(&sb, "📅 Date: %s\n", dashboard.FormatDateOr(p.PickupDate, dashboard.HumanLayout, models.NotAvailable))
	fmt.Fprintf(&sb, "🆔 Booking: %s", p.BookingID)
	return sb.String()
}

func statusMessage(p events.BookingEventPayload) string {
	from := p.PreviousStatus
	if from == "" {
		from = models.NotAvailable
	}
	return fmt.Sprintf("🔄 Booking %s for %s: %s → %s",
		p.BookingID, orPlaceholder(p.CustomerName, models.WalkInCustomerName), from, p.Status)
}

func orPlaceholder(v, placeholder string) string {
	if strings.TrimSpace(v) == "" {
		return placeholder
	}
	return v
}
