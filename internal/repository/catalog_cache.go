package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ServiGo-Platform/service-marketplace/internal/domain/catalog"
)

const serviceCacheTTL = 5 * time.Minute

// CachedServiceRepository is a read-through Redis cache in front of a
// ServiceRepository. Cache failures degrade to the underlying store and are
// only logged; a stale entry can live at most the TTL because every write
// path invalidates its key.
type CachedServiceRepository struct {
	inner  catalog.ServiceRepository
	client *redis.Client
	logger *zap.Logger
}

// NewCachedServiceRepository wraps the given repository with a Redis cache.
func NewCachedServiceRepository(inner catalog.ServiceRepository, client *redis.Client, logger *zap.Logger) *CachedServiceRepository {
	return &CachedServiceRepository{
		inner:  inner,
		client: client,
		logger: logger,
	}
}

func serviceCacheKey(id uuid.UUID) string {
	return "catalog:service:" + id.String()
}

// FindByID retrieves a service, serving from cache when possible.
func (r *CachedServiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Service, error) {
	key := serviceCacheKey(id)

	data, err := r.client.Get(ctx, key).Bytes()
	if err == nil {
		var svc catalog.Service
		if err := json.Unmarshal(data, &svc); err == nil {
			return &svc, nil
		}
		// Unreadable entry: drop it and fall through to the store.
		r.client.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		r.logger.Warn("service cache read failed",
			zap.String("service_id", id.String()),
			zap.Error(err),
		)
	}

	svc, err := r.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	r.set(ctx, key, svc)
	return svc, nil
}

// FindAvailableByIDs retrieves the available services among the given ids.
// Availability filtering must see the live store, so this bypasses the cache
// for reads but still refreshes entries for subsequent FindByID calls.
func (r *CachedServiceRepository) FindAvailableByIDs(ctx context.Context, ids []uuid.UUID) ([]*catalog.Service, error) {
	services, err := r.inner.FindAvailableByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, svc := range services {
		r.set(ctx, serviceCacheKey(svc.ID), svc)
	}
	return services, nil
}

// IncrementBookingCount bumps the counter and invalidates the cached entry.
func (r *CachedServiceRepository) IncrementBookingCount(ctx context.Context, id uuid.UUID) error {
	if err := r.inner.IncrementBookingCount(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

// SaveRatings persists ratings and invalidates the cached entry.
func (r *CachedServiceRepository) SaveRatings(ctx context.Context, svc *catalog.Service) error {
	if err := r.inner.SaveRatings(ctx, svc); err != nil {
		return err
	}
	r.invalidate(ctx, svc.ID)
	return nil
}

func (r *CachedServiceRepository) set(ctx context.Context, key string, svc *catalog.Service) {
	data, err := json.Marshal(svc)
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, key, data, serviceCacheTTL).Err(); err != nil {
		r.logger.Warn("service cache write failed",
			zap.String("key", key),
			zap.Error(err),
		)
	}
}

func (r *CachedServiceRepository) invalidate(ctx context.Context, id uuid.UUID) {
	if err := r.client.Del(ctx, serviceCacheKey(id)).Err(); err != nil {
		r.logger.Warn("service cache invalidation failed",
			zap.String("service_id", id.String()),
			zap.Error(err),
		)
	}
}
