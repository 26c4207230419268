// Package worker delivers agency chat alerts off the request path and retries failed sends.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"nomadx/internal/domain"
	"nomadx/internal/metrics"
)

const (
	alertQueueKey      = "nomadx:alerts:queue"
	alertDeadLetterKey = "nomadx:alerts:deadletter"
)

// ErrQueueFull is returned when neither redis nor the local queue can take a task.
var ErrQueueFull = errors.New("alert retry queue is full")

// AlertTask is one chat message waiting for delivery. Attempt counts failed sends.
type AlertTask struct {
	BookingID string    `json:"booking_id"`
	ChatID    int64     `json:"chat_id"`
	Text      string    `json:"text"`
	Attempt   int       `json:"attempt"`
	NotBefore time.Time `json:"not_before"`
	LastError string    `json:"last_error,omitempty"`
}

// AlertWorker drains the retry queue. Tasks live in a redis list when a client is
// configured and in a bounded channel otherwise. Tasks are handled in queue order.
type AlertWorker struct {
	sender       domain.TelegramSender
	redis        *redis.Client
	policy       RetryPolicy
	queue        chan AlertTask
	pollInterval time.Duration
	now          func() time.Time
	logger       *zerolog.Logger
}

func NewAlertWorker(sender domain.TelegramSender, redisClient *redis.Client, policy RetryPolicy, logger *zerolog.Logger) *AlertWorker {
	return &AlertWorker{
		sender:       sender,
		redis:        redisClient,
		policy:       policy.withDefaults(),
		queue:        make(chan AlertTask, 128),
		pollInterval: 2 * time.Second,
		now:          time.Now,
		logger:       logger,
	}
}

// Enqueue schedules task. A fresh task is due now; a failed one waits out the backoff
// for its attempt count.
func (w *AlertWorker) Enqueue(ctx context.Context, task AlertTask) error {
	if task.ChatID == 0 || task.Text == "" {
		return errors.New("chat id and text are required")
	}
	task.NotBefore = w.now()
	if task.Attempt > 0 {
		task.NotBefore = task.NotBefore.Add(w.policy.NextDelay(task.Attempt))
	}

	if w.redis != nil {
		err := w.pushRedis(ctx, alertQueueKey, task)
		if err == nil {
			return nil
		}
		w.logger.Warn().Err(err).Str("booking_id", task.BookingID).Msg("redis push failed, using local queue")
	}

	select {
	case w.queue <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

// Run processes tasks until ctx is cancelled.
func (w *AlertWorker) Run(ctx context.Context) error {
	w.logger.Info().Msg("alert worker started")
	defer w.logger.Info().Msg("alert worker stopped")

	for {
		if ctx.Err() != nil {
			return nil
		}

		task, ok := w.tryLocalQueue()
		if !ok {
			task, ok = w.tryRedis(ctx)
		}
		if !ok {
			if !sleep(ctx, w.pollInterval) {
				return nil
			}
			continue
		}

		if !sleep(ctx, task.NotBefore.Sub(w.now())) {
			// put it back so a restart can pick it up
			w.requeue(context.Background(), task)
			return nil
		}
		w.process(ctx, task)
	}
}

func (w *AlertWorker) process(ctx context.Context, task AlertTask) {
	_, err := w.sender.Send(tgbotapi.NewMessage(task.ChatID, task.Text))
	if err == nil {
		w.logger.Debug().Str("booking_id", task.BookingID).Int64("chat_id", task.ChatID).Int("failed_attempts", task.Attempt).Msg("agency alert sent")
		return
	}

	metrics.IncNotificationFailure()
	task.Attempt++
	task.LastError = err.Error()

	if task.Attempt > w.policy.MaxRetries {
		w.logger.Error().Err(err).Str("booking_id", task.BookingID).Int("attempts", task.Attempt).Msg("agency alert dropped")
		w.pushDeadLetter(ctx, task)
		return
	}
	w.requeue(ctx, task)
}

func (w *AlertWorker) requeue(ctx context.Context, task AlertTask) {
	if err := w.Enqueue(ctx, task); err != nil {
		w.logger.Error().Err(err).Str("booking_id", task.BookingID).Msg("failed to requeue agency alert")
	}
}

func (w *AlertWorker) tryLocalQueue() (AlertTask, bool) {
	select {
	case t := <-w.queue:
		return t, true
	default:
		return AlertTask{}, false
	}
}

func (w *AlertWorker) tryRedis(ctx context.Context) (AlertTask, bool) {
	if w.redis == nil {
		return AlertTask{}, false
	}
	res, err := w.redis.BRPop(ctx, time.Second, alertQueueKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			w.logger.Warn().Err(err).Msg("redis BRPOP failed")
		}
		return AlertTask{}, false
	}
	if len(res) != 2 {
		return AlertTask{}, false
	}

	var task AlertTask
	if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
		w.logger.Error().Err(err).Msg("failed to decode queued alert")
		return AlertTask{}, false
	}
	return task, true
}

func (w *AlertWorker) pushRedis(ctx context.Context, key string, task AlertTask) error {
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("encode alert task: %w", err)
	}
	return w.redis.LPush(ctx, key, data).Err()
}

func (w *AlertWorker) pushDeadLetter(ctx context.Context, task AlertTask) {
	if w.redis == nil {
		return
	}
	if err := w.pushRedis(ctx, alertDeadLetterKey, task); err != nil {
		w.logger.Error().Err(err).Str("booking_id", task.BookingID).Msg("dead letter push failed")
	}
}

// sleep waits for d and reports false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
