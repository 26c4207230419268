package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"nomadx/internal/domain"
	"nomadx/internal/events"
	"nomadx/internal/models"
	"nomadx/internal/repository"
)

const (
	invalidationTimeout = 2 * time.Second
	// settleDelay covers a list read that started before the write committed and
	// stored its stale result after the first delete.
	settleDelay = time.Second
)

// CacheInvalidator drops every cached booking list a booking event could have changed:
// the booking's agency list, its customer list and the unscoped admin list.
// The keys are deleted again after settleDelay.
type CacheInvalidator struct {
	cache  domain.ListCache
	settle time.Duration
	logger *zerolog.Logger
}

func NewCacheInvalidator(cache domain.ListCache, logger *zerolog.Logger) *CacheInvalidator {
	return &CacheInvalidator{cache: cache, settle: settleDelay, logger: logger}
}

// Register subscribes the invalidator to every booking event on bus.
func (c *CacheInvalidator) Register(bus *events.EventBus) {
	bus.SubscribeAll(events.BookingEvents, c.Handle)
}

func (c *CacheInvalidator) Handle(event *events.Event) error {
	var payload events.BookingEventPayload
	if err := event.Decode(&payload); err != nil {
		return err
	}

	keys := []string{repository.ListKey(bookingsEntity, "", "")}
	if payload.AgencyID != "" {
		keys = append(keys, repository.ListKey(bookingsEntity, models.FieldAgencyID, payload.AgencyID))
	}
	if payload.CustomerID != "" {
		keys = append(keys, repository.ListKey(bookingsEntity, models.FieldCustomerID, payload.CustomerID))
	}

	c.drop(keys)
	if c.settle > 0 {
		time.AfterFunc(c.settle, func() { c.drop(keys) })
	}
	return nil
}

func (c *CacheInvalidator) drop(keys []string) {
	ctx, cancel := context.WithTimeout(context.Background(), invalidationTimeout)
	defer cancel()
	invalidate(ctx, c.cache, c.logger, keys...)
}
