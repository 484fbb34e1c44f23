package cache

import (
	"context"
	"fmt"

	"github.com/weiawesome/wes-estate/pkg/log"
	"github.com/weiawesome/wes-estate/pkg/pubsub"
)

// Bus relays invalidations between instances that each hold an in-process
// store. Remote targets are applied to the local store only; the shared
// store was already cleared by the instance that published them.
type Bus struct {
	ps         pubsub.PubSub
	instanceID string
	local      Store
	metrics    *Metrics
}

// NewBus creates a bus. local receives the targets published by peers.
func NewBus(ps pubsub.PubSub, instanceID string, local Store, m *Metrics) *Bus {
	return &Bus{ps: ps, instanceID: instanceID, local: local, metrics: m}
}

// Publish announces targets to peers.
func (b *Bus) Publish(ctx context.Context, targets []Target) error {
	ev, err := pubsub.NewEvent(pubsub.EventCacheInvalidate, b.instanceID, targets)
	if err != nil {
		return fmt.Errorf("failed to encode invalidation: %w", err)
	}
	return b.ps.Publish(ctx, pubsub.ChannelCacheInvalidation, ev)
}

// Run subscribes to peer invalidations and applies them until ctx is done.
// ready, when non-nil, is closed once the subscription is active.
func (b *Bus) Run(ctx context.Context, ready chan<- struct{}) error {
	events, err := b.ps.Subscribe(ctx, pubsub.ChannelCacheInvalidation)
	if err != nil {
		return fmt.Errorf("failed to subscribe to invalidations: %w", err)
	}
	if ready != nil {
		close(ready)
	}

	l := log.Ctx(ctx)
	l.Info().Str("instance", b.instanceID).Msg("cache invalidation bus started")

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			b.handle(ctx, ev)
		}
	}
}

func (b *Bus) handle(ctx context.Context, ev *pubsub.Event) {
	if ev.Type != pubsub.EventCacheInvalidate || ev.Source == b.instanceID {
		return
	}

	var targets []Target
	if err := ev.UnmarshalPayload(&targets); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Str("source", ev.Source).Msg("dropping malformed invalidation")
		return
	}

	apply(ctx, b.local, b.metrics, dedupe(targets))
}
