// Package domain 包含资产报价与下单的领域模型和领域服务
package domain

import (
	"context"
	"time"
)

// Asset 可交易资产，symbol 唯一
type Asset struct {
	ID        uint
	Symbol    string
	Name      string
	CreatedAt time.Time
}

// AssetRepository 资产仓储接口
type AssetRepository interface {
	// GetBySymbol 根据 symbol 获取资产，不存在时返回 nil, nil
	GetBySymbol(ctx context.Context, symbol string) (*Asset, error)
	// List 按插入顺序返回全部资产
	List(ctx context.Context) ([]*Asset, error)
	// Upsert 按 symbol 写入资产，仅用于启动时的初始化数据
	Upsert(ctx context.Context, asset *Asset) error
}
