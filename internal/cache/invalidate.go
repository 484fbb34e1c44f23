package cache

import (
	"context"

	"github.com/weiawesome/wes-estate/pkg/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	kindNamespace = "namespace"
	kindKey       = "key"
)

// Target names what an invalidation removes: every key of a namespace or a
// single exact key.
type Target struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

// Namespace targets every key under ns, scoped namespaces included.
func Namespace(ns string) Target {
	return Target{Kind: kindNamespace, Value: ns}
}

// Key targets one exact key.
func Key(k string) Target {
	return Target{Kind: kindKey, Value: k}
}

func (t Target) String() string {
	if t.Kind == kindNamespace {
		return Pattern(t.Value)
	}
	return t.Value
}

// dedupe keeps the first occurrence of each target.
func dedupe(targets []Target) []Target {
	seen := make(map[Target]struct{}, len(targets))
	out := make([]Target, 0, len(targets))
	for _, t := range targets {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Invalidate removes the targets from the store and announces them to peer
// instances. Failures are logged and swallowed: the write that triggered the
// invalidation has already succeeded, and affected entries still expire with
// their TTL.
func (c *Cache) Invalidate(ctx context.Context, targets ...Target) {
	targets = dedupe(targets)
	if len(targets) == 0 {
		return
	}

	ctx, span := c.tracer.Start(ctx, "cache.invalidate", trace.WithAttributes(
		attribute.Int("cache.targets", len(targets)),
	))
	defer span.End()

	apply(ctx, c.store, c.metrics, targets)

	if c.bus != nil {
		if err := c.bus.Publish(ctx, targets); err != nil {
			l := log.Ctx(ctx)
			l.Warn().Err(err).Msg("failed to broadcast cache invalidation")
		}
	}
}

// apply deletes targets from store. Exact keys go out in a single Delete.
func apply(ctx context.Context, store Store, m *Metrics, targets []Target) {
	l := log.Ctx(ctx)

	var keys []string
	for _, t := range targets {
		switch t.Kind {
		case kindKey:
			keys = append(keys, t.Value)
		case kindNamespace:
			if err := ValidateNamespace(t.Value); err != nil {
				l.Error().Err(err).Str(log.FieldCacheNamespace, t.Value).Msg("skipping invalid invalidation target")
				m.invalidation(kindNamespace, err)
				continue
			}
			err := store.DeleteByPattern(ctx, Pattern(t.Value))
			m.invalidation(kindNamespace, err)
			if err != nil {
				l.Error().Err(err).Str(log.FieldCacheNamespace, t.Value).Msg("failed to invalidate cache namespace")
			}
		default:
			l.Error().Str("kind", t.Kind).Msg("unknown invalidation target")
		}
	}

	if len(keys) == 0 {
		return
	}
	err := store.Delete(ctx, keys...)
	for range keys {
		m.invalidation(kindKey, err)
	}
	if err != nil {
		l.Error().Err(err).Strs("keys", keys).Msg("failed to invalidate cache keys")
	}
}
