package application

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/assetswap/internal/swap/domain"
	"github.com/wyfcoding/assetswap/pkg/logger"
)

// CreateOrderCommand 下单命令
type CreateOrderCommand struct {
	Symbol string
	Amount decimal.Decimal
}

// OrderCommandService 处理下单
type OrderCommandService struct {
	pricing   *domain.PricingService
	orders    *domain.OrderService
	publisher domain.EventPublisher
}

// OrderCommandOption 可选配置
type OrderCommandOption func(*OrderCommandService)

// WithEventPublisher 下单成功后投递 OrderCreatedEvent
func WithEventPublisher(p domain.EventPublisher) OrderCommandOption {
	return func(s *OrderCommandService) { s.publisher = p }
}

// NewOrderCommandService 创建下单服务
func NewOrderCommandService(pricing *domain.PricingService, orders *domain.OrderService, opts ...OrderCommandOption) *OrderCommandService {
	s := &OrderCommandService{pricing: pricing, orders: orders}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateOrder 以当前报价为 symbol 下单
func (s *OrderCommandService) CreateOrder(ctx context.Context, cmd CreateOrderCommand) (*CreateOrderResult, error) {
	price, err := s.pricing.GetPrice(ctx, cmd.Symbol)
	if err != nil {
		if errors.Is(err, domain.ErrAssetNotFound) {
			return nil, newError(KindNotFound, MsgAssetNotFound, err)
		}
		logger.Error(ctx, "Failed to price order", "symbol", cmd.Symbol, "error", err)
		return nil, newError(KindInternal, MsgInternal, err)
	}

	// 金额可能带极端指数，不写入日志
	order, err := s.orders.CreateOrder(ctx, cmd.Symbol, cmd.Amount, price)
	if err != nil {
		logger.Warn(ctx, "Failed to create order", "symbol", cmd.Symbol, "error", err)
		return nil, newError(KindWriteFailure, MsgCouldNotCreateOrder, err)
	}

	logger.Info(ctx, "Order placed", "order_id", order.ID, "symbol", cmd.Symbol, "amount", order.Amount.StringFixed(2))
	s.publishCreated(ctx, order)
	return &CreateOrderResult{Message: MsgOrderCreated, Order: toOrderDTO(order)}, nil
}

// publishCreated 投递失败只记录日志，不影响已写入的订单
func (s *OrderCommandService) publishCreated(ctx context.Context, order *domain.Order) {
	if s.publisher == nil {
		return
	}
	event := domain.NewOrderCreatedEvent(uuid.NewString(), order)
	if err := s.publisher.PublishOrderCreated(ctx, event); err != nil {
		logger.Warn(ctx, "Failed to publish order created event", "order_id", order.ID, "error", err)
	}
}
