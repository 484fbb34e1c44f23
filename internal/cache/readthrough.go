package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/weiawesome/wes-estate/pkg/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

const tracerName = "github.com/weiawesome/wes-estate/internal/cache"

// Cache wraps a Store with read-through and invalidation helpers.
type Cache struct {
	store      Store
	defaultTTL time.Duration
	group      *singleflight.Group
	metrics    *Metrics
	tracer     trace.Tracer
	bus        *Bus
}

// Option configures a Cache.
type Option func(*Cache)

// WithSingleFlight collapses concurrent misses on the same key into one
// compute call. A caller that joined a flight whose leader was cancelled
// computes on its own instead of inheriting the leader's context error.
func WithSingleFlight() Option {
	return func(c *Cache) { c.group = &singleflight.Group{} }
}

// WithMetrics records read, write and invalidation counters.
func WithMetrics(m *Metrics) Option {
	return func(c *Cache) { c.metrics = m }
}

// WithTracerProvider sets the provider used for cache spans. The global
// provider is used otherwise.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Cache) { c.tracer = tp.Tracer(tracerName) }
}

// WithBus broadcasts invalidations to peer instances.
func WithBus(b *Bus) Option {
	return func(c *Cache) { c.bus = b }
}

// New creates a Cache. defaultTTL applies to reads that pass a non-positive TTL.
func New(store Store, defaultTTL time.Duration, opts ...Option) *Cache {
	c := &Cache{
		store:      store,
		defaultTTL: defaultTTL,
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Read returns the cached value for key, or runs compute on a miss and
// stores its result for ttl. Cache failures never reach the caller: an
// unavailable store or an undecodable entry behave like a miss, and a failed
// write is only logged. Errors from compute are returned unchanged and
// nothing is cached.
func Read[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, compute func(ctx context.Context) (T, error)) (T, error) {
	ctx, span := c.tracer.Start(ctx, "cache.read", trace.WithAttributes(
		attribute.String("cache.namespace", NamespaceOf(key)),
	))
	defer span.End()

	l := log.Ctx(ctx)

	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	data, err := c.store.Get(ctx, key)
	switch {
	case err == nil:
		var v T
		uerr := json.Unmarshal(data, &v)
		if uerr == nil {
			c.metrics.read(key, OutcomeHit)
			span.SetAttributes(attribute.String("cache.outcome", OutcomeHit))
			return v, nil
		}
		l.Warn().Err(fmt.Errorf("%w: %w", ErrCorruptEntry, uerr)).Str(log.FieldCacheKey, key).Msg("discarding corrupt cache entry")
		c.metrics.read(key, OutcomeCorrupt)
		span.SetAttributes(attribute.String("cache.outcome", OutcomeCorrupt))
	case errors.Is(err, ErrCacheMiss):
		c.metrics.read(key, OutcomeMiss)
		span.SetAttributes(attribute.String("cache.outcome", OutcomeMiss))
	default:
		l.Warn().Err(err).Str(log.FieldCacheKey, key).Msg("cache read failed, falling back to source")
		c.metrics.read(key, OutcomeUnavailable)
		span.SetAttributes(attribute.String("cache.outcome", OutcomeUnavailable))
	}

	load := func() (T, error) {
		v, err := compute(ctx)
		if err != nil {
			return v, err
		}
		c.populate(ctx, key, v, ttl)
		return v, nil
	}

	if c.group == nil {
		v, err := load()
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
		}
		return v, err
	}

	res, err, shared := c.group.Do(key, func() (any, error) {
		return load()
	})
	span.SetAttributes(attribute.Bool("cache.shared", shared))
	if shared && ctx.Err() == nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		l.Debug().Str(log.FieldCacheKey, key).Msg("shared compute was cancelled, computing again")
		var v T
		if v, err = load(); err == nil {
			res = v
		}
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		var zero T
		return zero, err
	}
	return res.(T), nil
}

// populate stores v best effort.
func (c *Cache) populate(ctx context.Context, key string, v any, ttl time.Duration) {
	l := log.Ctx(ctx)

	data, err := json.Marshal(v)
	if err != nil {
		l.Error().Err(err).Str(log.FieldCacheKey, key).Msg("failed to encode cache entry")
		c.metrics.write(key, err)
		return
	}

	err = c.store.SetWithExpiry(ctx, key, data, ttl)
	c.metrics.write(key, err)
	if err != nil {
		l.Warn().Err(err).Str(log.FieldCacheKey, key).Msg("failed to populate cache")
	}
}
