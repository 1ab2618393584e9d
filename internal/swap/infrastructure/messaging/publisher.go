// Package messaging 投递订单领域事件
package messaging

import (
	"context"
	"strconv"

	"github.com/wyfcoding/assetswap/internal/swap/domain"
	"github.com/wyfcoding/assetswap/pkg/logger"
)

// Producer 消息生产者，由 pkg/mq.KafkaProducer 实现
type Producer interface {
	SendMessage(ctx context.Context, topic string, key string, value any) error
}

// KafkaEventPublisher 将订单事件写入 Kafka，以订单 ID 作为分区 key
type KafkaEventPublisher struct {
	producer Producer
	topic    string
}

// NewKafkaEventPublisher 创建 Kafka 事件发布者
func NewKafkaEventPublisher(producer Producer, topic string) *KafkaEventPublisher {
	return &KafkaEventPublisher{producer: producer, topic: topic}
}

// PublishOrderCreated 实现 domain.EventPublisher
func (p *KafkaEventPublisher) PublishOrderCreated(ctx context.Context, event domain.OrderCreatedEvent) error {
	return p.producer.SendMessage(ctx, p.topic, strconv.FormatUint(uint64(event.OrderID), 10), event)
}

// LogEventPublisher 未启用 Kafka 时只记录日志
type LogEventPublisher struct{}

// PublishOrderCreated 实现 domain.EventPublisher
func (LogEventPublisher) PublishOrderCreated(ctx context.Context, event domain.OrderCreatedEvent) error {
	logger.Info(ctx, "Order created",
		"event_id", event.EventID,
		"order_id", event.OrderID,
		"symbol", event.Symbol,
		"amount", event.Amount.String(),
		"price", event.Price.String(),
	)
	return nil
}
