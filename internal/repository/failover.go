package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"nomadx/internal/domain"
)

const recoveryInterval = time.Minute

// FailoverListCache uses primary until it errors, then serves from fallback
// and retries primary once per recoveryInterval.
type FailoverListCache struct {
	primary  domain.ListCache
	fallback domain.ListCache
	logger   *zerolog.Logger

	isDown    atomic.Bool
	mu        sync.Mutex
	lastCheck time.Time
	now       func() time.Time
}

func NewFailoverListCache(primary, fallback domain.ListCache, logger *zerolog.Logger) *FailoverListCache {
	return &FailoverListCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
		now:      time.Now,
	}
}

// usePrimary reports whether the next call should try primary.
func (r *FailoverListCache) usePrimary() bool {
	if !r.isDown.Load() {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.now().Sub(r.lastCheck) > recoveryInterval {
		r.lastCheck = r.now()
		return true
	}
	return false
}

func (r *FailoverListCache) report(err error) {
	if err == nil {
		if r.isDown.Swap(false) {
			r.logger.Info().Msg("Primary list cache recovered")
		}
		return
	}
	if !r.isDown.Swap(true) {
		r.logger.Error().Err(err).Msg("Primary list cache failed, falling back to memory")
	}
	r.mu.Lock()
	r.lastCheck = r.now()
	r.mu.Unlock()
}

func (r *FailoverListCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	if r.usePrimary() {
		found, err := r.primary.Get(ctx, key, dest)
		r.report(err)
		if err == nil {
			return found, nil
		}
	}
	return r.fallback.Get(ctx, key, dest)
}

func (r *FailoverListCache) Set(ctx context.Context, key string, value any) error {
	if r.usePrimary() {
		err := r.primary.Set(ctx, key, value)
		r.report(err)
		if err == nil {
			return nil
		}
	}
	return r.fallback.Set(ctx, key, value)
}

// Delete clears both caches and always tries primary, so a recovered primary does not serve a list
// that was invalidated while it was down.
func (r *FailoverListCache) Delete(ctx context.Context, keys ...string) error {
	fallbackErr := r.fallback.Delete(ctx, keys...)
	err := r.primary.Delete(ctx, keys...)
	r.report(err)
	if err != nil {
		return fallbackErr
	}
	return nil
}
