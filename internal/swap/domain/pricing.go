package domain

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// PriceSource 报价来源。替换真实行情时只需提供新的实现
type PriceSource interface {
	Quote(ctx context.Context, asset *Asset) (decimal.Decimal, error)
}

// DefaultFixedPrice 未配置时的固定报价
var DefaultFixedPrice = decimal.NewFromFloat(100.0)

// FixedPriceSource 对所有资产返回同一个价格
type FixedPriceSource struct {
	price decimal.Decimal
}

// NewFixedPriceSource 创建固定报价来源
func NewFixedPriceSource(price decimal.Decimal) *FixedPriceSource {
	return &FixedPriceSource{price: price}
}

// Quote 实现 PriceSource
func (s *FixedPriceSource) Quote(ctx context.Context, asset *Asset) (decimal.Decimal, error) {
	return s.price, nil
}

// PricingService 定价领域服务
type PricingService struct {
	assets AssetRepository
	source PriceSource
}

// NewPricingService 创建定价服务
func NewPricingService(assets AssetRepository, source PriceSource) *PricingService {
	return &PricingService{assets: assets, source: source}
}

// GetPrice 返回资产报价，资产不存在时返回 ErrAssetNotFound
func (s *PricingService) GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	asset, err := s.assets.GetBySymbol(ctx, symbol)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get asset %s: %w", symbol, err)
	}
	if asset == nil {
		return decimal.Zero, ErrAssetNotFound
	}
	price, err := s.source.Quote(ctx, asset)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to quote %s: %w", symbol, err)
	}
	return price, nil
}

// ListAssets 返回全部资产
func (s *PricingService) ListAssets(ctx context.Context) ([]*Asset, error) {
	assets, err := s.assets.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	return assets, nil
}
