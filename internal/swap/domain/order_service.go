package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderService 下单领域服务
type OrderService struct {
	assets AssetRepository
	orders OrderRepository
	now    func() time.Time
}

// OrderServiceOption 可选配置
type OrderServiceOption func(*OrderService)

// WithClock 替换时间来源
func WithClock(now func() time.Time) OrderServiceOption {
	return func(s *OrderService) { s.now = now }
}

// NewOrderService 创建下单服务
func NewOrderService(assets AssetRepository, orders OrderRepository, opts ...OrderServiceOption) *OrderService {
	s := &OrderService{
		assets: assets,
		orders: orders,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateOrder 为 symbol 对应资产写入一笔 created 状态的订单。
// 资产不存在时返回 ErrAssetNotFound 且不写入。
func (s *OrderService) CreateOrder(ctx context.Context, symbol string, amount, price decimal.Decimal) (*Order, error) {
	asset, err := s.assets.GetBySymbol(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to get asset %s: %w", symbol, err)
	}
	if asset == nil {
		return nil, ErrAssetNotFound
	}

	order, err := NewOrder(asset, amount, price, s.now())
	if err != nil {
		return nil, err
	}

	// 查询与写入之间资产可能被删除，由仓储的外键约束兜底
	if err := s.orders.Create(ctx, order); err != nil {
		if errors.Is(err, ErrAssetNotFound) {
			return nil, ErrAssetNotFound
		}
		return nil, fmt.Errorf("failed to save order: %w", err)
	}

	return order, nil
}
