package messaging

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/assetswap/internal/swap/domain"
)

type sent struct {
	topic string
	key   string
	value any
}

type fakeProducer struct {
	sent []sent
}

func (f *fakeProducer) SendMessage(ctx context.Context, topic string, key string, value any) error {
	f.sent = append(f.sent, sent{topic: topic, key: key, value: value})
	return nil
}

func TestKafkaEventPublisher_KeysByOrderID(t *testing.T) {
	producer := &fakeProducer{}
	pub := NewKafkaEventPublisher(producer, "swap.order.created")

	event := domain.OrderCreatedEvent{OrderID: 42, Symbol: "BTC", Amount: decimal.NewFromInt(5), Price: decimal.NewFromInt(100)}
	if err := pub.PublishOrderCreated(context.Background(), event); err != nil {
		t.Fatalf("PublishOrderCreated: %v", err)
	}

	if len(producer.sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(producer.sent))
	}
	got := producer.sent[0]
	if got.topic != "swap.order.created" || got.key != "42" {
		t.Errorf("unexpected topic/key %q/%q", got.topic, got.key)
	}
	if e, ok := got.value.(domain.OrderCreatedEvent); !ok || e.Symbol != "BTC" {
		t.Errorf("expected the event as payload, got %#v", got.value)
	}
}
