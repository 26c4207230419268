package service

import (
	"context"

	"github.com/rs/zerolog"

	"nomadx/internal/domain"
	"nomadx/internal/models"
	"nomadx/internal/repository"
)

// cachedList serves key from cache, loading and storing it on a miss.
// Cache failures are logged; the list is then read straight from storage.
func cachedList[T any](ctx context.Context, cache domain.ListCache, logger *zerolog.Logger, key string, load func() ([]T, error)) ([]T, error) {
	if cache != nil {
		var cached []T
		found, err := cache.Get(ctx, key, &cached)
		if err != nil {
			logger.Warn().Err(err).Str("key", key).Msg("list cache read failed")
		} else if found {
			return cached, nil
		}
	}

	list, err := load()
	if err != nil {
		return nil, err
	}

	if cache != nil {
		if err := cache.Set(ctx, key, list); err != nil {
			logger.Warn().Err(err).Str("key", key).Msg("list cache write failed")
		}
	}
	return list, nil
}

// scopeKey names the cached list for the query a scope produced.
func scopeKey(entity string, q models.ListQuery) string {
	if q.Filter == nil {
		return repository.ListKey(entity, "", "")
	}
	return repository.ListKey(entity, q.Filter.Field, q.Filter.Value)
}

func invalidate(ctx context.Context, cache domain.ListCache, logger *zerolog.Logger, keys ...string) {
	if cache == nil {
		return
	}
	if err := cache.Delete(ctx, keys...); err != nil {
		logger.Warn().Err(err).Strs("keys", keys).Msg("list cache invalidation failed")
	}
}
