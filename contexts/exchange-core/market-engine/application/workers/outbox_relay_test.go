package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"mediex/contexts/exchange-core/market-engine/adapters/memory"
	"mediex/contexts/exchange-core/market-engine/ports"
)

type capturingPublisher struct {
	topics    []string
	envelopes []ports.EventEnvelope
	fail      bool
}

func (p *capturingPublisher) Publish(_ context.Context, topic string, envelope ports.EventEnvelope) error {
	if p.fail {
		return errors.New("broker unavailable")
	}
	p.topics = append(p.topics, topic)
	p.envelopes = append(p.envelopes, envelope)
	return nil
}

func TestOutboxRelayDrainsPending(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"evt-1", "evt-2"} {
		err := store.AppendOutbox(ctx, ports.EventEnvelope{
			EventID:    id,
			EventType:  "market.bid_created",
			OccurredAt: base.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("append outbox failed: %v", err)
		}
	}

	publisher := &capturingPublisher{}
	relay := OutboxRelay{
		Outbox:    store,
		Publisher: publisher,
		Clock:     store,
		Topic:     "market.events",
	}
	if err := relay.RunOnce(ctx); err != nil {
		t.Fatalf("run once failed: %v", err)
	}
	if len(publisher.envelopes) != 2 {
		t.Fatalf("expected two published events, got %d", len(publisher.envelopes))
	}
	if publisher.envelopes[0].EventID != "evt-1" || publisher.envelopes[1].EventID != "evt-2" {
		t.Fatalf("expected creation order, got %s then %s",
			publisher.envelopes[0].EventID, publisher.envelopes[1].EventID)
	}
	for _, topic := range publisher.topics {
		if topic != "market.events" {
			t.Fatalf("unexpected topic %q", topic)
		}
	}

	// Everything is acknowledged, so a second cycle publishes nothing.
	if err := relay.RunOnce(ctx); err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if len(publisher.envelopes) != 2 {
		t.Fatalf("acknowledged events must not republish, got %d", len(publisher.envelopes))
	}
}

func TestOutboxRelayKeepsEventsOnPublishFailure(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	err := store.AppendOutbox(ctx, ports.EventEnvelope{
		EventID:    "evt-1",
		EventType:  "market.bid_created",
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("append outbox failed: %v", err)
	}

	publisher := &capturingPublisher{fail: true}
	relay := OutboxRelay{Outbox: store, Publisher: publisher, Clock: store}
	if err := relay.RunOnce(ctx); err == nil {
		t.Fatalf("a broker failure must surface")
	}

	pending, err := store.ListPendingOutbox(ctx, 10)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("a failed publish must keep the event pending, got %d", len(pending))
	}

	publisher.fail = false
	if err := relay.RunOnce(ctx); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if len(publisher.envelopes) != 1 {
		t.Fatalf("expected the retry to publish, got %d", len(publisher.envelopes))
	}
}
