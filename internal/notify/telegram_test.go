package notify

import (
	"context"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"nomadx/internal/config"
	"nomadx/internal/events"
	"nomadx/internal/worker"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	args := m.Called(c)
	return args.Get(0).(tgbotapi.Message), args.Error(1)
}

type mockAlertQueue struct {
	mock.Mock
}

func (m *mockAlertQueue) Enqueue(ctx context.Context, task worker.AlertTask) error {
	return m.Called(ctx, task).Error(0)
}

func TestNewBot_NoToken(t *testing.T) {
	bot, err := NewBot(config.TelegramConfig{})
	require.NoError(t, err)
	assert.Nil(t, bot)
}

func TestAgencyAlerts(t *testing.T) {
	sender := new(mockSender)
	logger := zerolog.Nop()
	alerts := NewAgencyAlerts(sender, map[string]int64{"ag-1": 4242}, &logger)

	var sent []tgbotapi.MessageConfig
	sender.On("Send", mock.Anything).Run(func(args mock.Arguments) {
		sent = append(sent, args.Get(0).(tgbotapi.MessageConfig))
	}).Return(tgbotapi.Message{}, nil)

	bus := events.NewEventBus()
	var busErrs []error
	bus.OnError(func(_ *events.Event, err error) { busErrs = append(busErrs, err) })
	alerts.Register(bus)

	pickup := time.Date(2026, 11, 3, 9, 30, 0, 0, time.UTC)
	require.NoError(t, bus.PublishJSON(events.EventBookingCreated, events.BookingEventPayload{
		BookingID: "b1", AgencyID: "ag-1", PickupLocation: "Central Station", PickupDate: pickup,
	}))
	require.NoError(t, bus.PublishJSON(events.EventBookingStatusChanged, events.BookingEventPayload{
		BookingID: "b1", AgencyID: "ag-1", CustomerName: "Ana", Status: "Confirmed", PreviousStatus: "Pending",
	}))
	require.NoError(t, bus.PublishJSON(events.EventBookingCreated, events.BookingEventPayload{BookingID: "b2", AgencyID: "ag-2"}))

	assert.Empty(t, busErrs)
	require.Len(t, sent, 2)
	assert.Equal(t, int64(4242), sent[0].ChatID)
	assert.Contains(t, sent[0].Text, "Walk-in Customer")
	assert.Contains(t, sent[0].Text, "Central Station")
	assert.Contains(t, sent[0].Text, "Nov 3, 2026, 9:30 AM")
	assert.Contains(t, sent[1].Text, "Pending → Confirmed")
}

func TestAgencyAlerts_SendFailure(t *testing.T) {
	sender := new(mockSender)
	logger := zerolog.Nop()
	alerts := NewAgencyAlerts(sender, map[string]int64{"ag-1": 1}, &logger)
	sender.On("Send", mock.Anything).Return(tgbotapi.Message{}, assert.AnError)

	event, err := events.NewJSONEvent(events.EventBookingCreated, events.BookingEventPayload{BookingID: "b1", AgencyID: "ag-1"})
	require.NoError(t, err)

	assert.ErrorIs(t, alerts.Handle(&event), assert.AnError)
}

func TestAgencyAlerts_Queued(t *testing.T) {
	sender := new(mockSender)
	queue := new(mockAlertQueue)
	logger := zerolog.Nop()
	alerts := NewAgencyAlerts(sender, map[string]int64{"ag-1": 99}, &logger).WithQueue(queue)
	queue.On("Enqueue", mock.Anything, mock.MatchedBy(func(task worker.AlertTask) bool {
		return task.BookingID == "b1" && task.ChatID == 99 && task.Attempt == 0 && task.Text != ""
	})).Return(nil).Once()

	event, err := events.NewJSONEvent(events.EventBookingCreated, events.BookingEventPayload{BookingID: "b1", AgencyID: "ag-1"})
	require.NoError(t, err)

	assert.NoError(t, alerts.Handle(&event))
	queue.AssertExpectations(t)
	sender.AssertNotCalled(t, "Send", mock.Anything)
}

func TestAgencyAlerts_QueueFullSendsInline(t *testing.T) {
	sender := new(mockSender)
	queue := new(mockAlertQueue)
	logger := zerolog.Nop()
	alerts := NewAgencyAlerts(sender, map[string]int64{"ag-1": 99}, &logger).WithQueue(queue)
	queue.On("Enqueue", mock.Anything, mock.Anything).Return(worker.ErrQueueFull)
	sender.On("Send", mock.Anything).Return(tgbotapi.Message{}, nil).Once()

	event, err := events.NewJSONEvent(events.EventBookingStatusChanged, events.BookingEventPayload{BookingID: "b1", AgencyID: "ag-1"})
	require.NoError(t, err)

	assert.NoError(t, alerts.Handle(&event))
	sender.AssertExpectations(t)
}
