package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// OrderCreatedEvent 订单创建事件
type OrderCreatedEvent struct {
	EventID    string          `json:"event_id"`
	OrderID    uint            `json:"order_id"`
	AssetID    uint            `json:"asset_id"`
	Symbol     string          `json:"symbol"`
	Amount     decimal.Decimal `json:"amount"`
	Price      decimal.Decimal `json:"price"`
	Status     OrderStatus     `json:"status"`
	OccurredOn time.Time       `json:"occurred_on"`
}

// EventPublisher 事件发布者接口
type EventPublisher interface {
	// PublishOrderCreated 发布订单创建事件
	PublishOrderCreated(ctx context.Context, event OrderCreatedEvent) error
}

// NewOrderCreatedEvent 由已写入的订单构造事件
func NewOrderCreatedEvent(eventID string, order *Order) OrderCreatedEvent {
	return OrderCreatedEvent{
		EventID:    eventID,
		OrderID:    order.ID,
		AssetID:    order.AssetID,
		Symbol:     order.Symbol,
		Amount:     order.Amount,
		Price:      order.Price,
		Status:     order.Status,
		OccurredOn: order.CreatedAt,
	}
}
