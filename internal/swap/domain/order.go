package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus 订单状态
type OrderStatus string

// OrderStatusCreated 新建订单的唯一状态，后续流转不在本服务内
const OrderStatusCreated OrderStatus = "created"

// 金额与价格按 DECIMAL(10,2) 存储
const (
	decimalPlaces = 2
	maxDigits     = 10
)

var maxStorable = decimal.New(1, maxDigits-decimalPlaces)

// Order 订单实体，引用一个已存在的资产
type Order struct {
	ID        uint
	AssetID   uint
	Symbol    string
	Amount    decimal.Decimal
	Price     decimal.Decimal
	CreatedAt time.Time
	Status    OrderStatus
}

// NewOrder 创建订单，金额与价格保留两位小数
func NewOrder(asset *Asset, amount, price decimal.Decimal, createdAt time.Time) (*Order, error) {
	amount, err := Quantize(amount)
	if err != nil {
		return nil, err
	}
	if price, err = Quantize(price); err != nil {
		return nil, err
	}
	return &Order{
		AssetID:   asset.ID,
		Symbol:    asset.Symbol,
		Amount:    amount,
		Price:     price,
		CreatedAt: createdAt,
		Status:    OrderStatusCreated,
	}, nil
}

// Quantize 将数值规整为两位小数，超出 DECIMAL(10,2) 时返回 ErrOutOfRange。
// 先按数量级判断，极端指数不会进入 Round 的大数运算。
func Quantize(v decimal.Decimal) (decimal.Decimal, error) {
	if v.IsZero() {
		return decimal.Zero, nil
	}
	// |v| < 10^magnitude 且 |v| >= 10^(magnitude-1)
	magnitude := int64(v.NumDigits()) + int64(v.Exponent())
	if magnitude > maxDigits-decimalPlaces {
		return decimal.Zero, ErrOutOfRange
	}
	if magnitude < -decimalPlaces {
		return decimal.Zero, nil
	}
	v = v.Round(decimalPlaces)
	if !v.Abs().LessThan(maxStorable) {
		return decimal.Zero, ErrOutOfRange
	}
	return v, nil
}

// OrderRepository 订单仓储接口
type OrderRepository interface {
	// Create 写入新订单并回填 ID；资产已不存在时返回 ErrAssetNotFound
	Create(ctx context.Context, order *Order) error
	// List 按创建顺序返回全部订单
	List(ctx context.Context) ([]*Order, error)
}
