package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestChannelToTopic(t *testing.T) {
	topic, err := channelToTopic(ChannelCacheInvalidation)
	if err != nil {
		t.Fatalf("channelToTopic() error = %v", err)
	}
	if topic != "estate.cache.invalidate" {
		t.Errorf("topic = %q", topic)
	}
	if _, err := channelToTopic(""); err == nil {
		t.Error("expected error for empty channel")
	}
	if got := sanitizeGroupID("api/host:1"); got != "api-host-1" {
		t.Errorf("sanitizeGroupID() = %q", got)
	}
}

func TestEventPayload(t *testing.T) {
	ev, err := NewEvent(EventCacheInvalidate, "node-a", map[string]string{"k": "v"})
	if err != nil {
		t.Fatalf("NewEvent() error = %v", err)
	}

	var got map[string]string
	if err := ev.UnmarshalPayload(&got); err != nil {
		t.Fatalf("UnmarshalPayload() error = %v", err)
	}
	if got["k"] != "v" || ev.Source != "node-a" || ev.Timestamp.IsZero() {
		t.Errorf("unexpected event: %+v", ev)
	}
}

func TestRedisPubSubRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ps := NewRedisPubSubFromClient(client)
	defer ps.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := ps.Subscribe(ctx, ChannelCacheInvalidation)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	ev, _ := NewEvent(EventCacheInvalidate, "node-a", []string{"properties"})
	if err := ps.Publish(ctx, ChannelCacheInvalidation, ev); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case got := <-events:
		if got.Type != EventCacheInvalidate || got.Source != "node-a" {
			t.Errorf("unexpected event: %+v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}

	if err := ps.Unsubscribe(ctx, ChannelCacheInvalidation); err != nil {
		t.Fatalf("Unsubscribe() error = %v", err)
	}
	select {
	case _, ok := <-events:
		if ok {
			t.Error("expected closed channel after Unsubscribe")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event channel not closed after Unsubscribe")
	}
}

func TestNewPubSubUnknownDriver(t *testing.T) {
	if _, err := NewPubSub(Config{Driver: "nats"}, "x"); err == nil {
		t.Error("expected error for unknown driver")
	}
}
