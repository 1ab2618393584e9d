package application

import (
	"context"
	"errors"

	"github.com/wyfcoding/assetswap/internal/swap/domain"
	"github.com/wyfcoding/assetswap/pkg/logger"
)

// AssetQueryService 处理资产与报价查询
type AssetQueryService struct {
	pricing *domain.PricingService
}

// NewAssetQueryService 创建查询服务
func NewAssetQueryService(pricing *domain.PricingService) *AssetQueryService {
	return &AssetQueryService{pricing: pricing}
}

// GetAssetPrice 查询资产报价
func (s *AssetQueryService) GetAssetPrice(ctx context.Context, symbol string) (*PriceDTO, error) {
	price, err := s.pricing.GetPrice(ctx, symbol)
	if err != nil {
		if errors.Is(err, domain.ErrAssetNotFound) {
			return nil, newError(KindNotFound, MsgAssetNotFound, err)
		}
		logger.Error(ctx, "Failed to get asset price", "symbol", symbol, "error", err)
		return nil, newError(KindInternal, MsgInternal, err)
	}
	return &PriceDTO{Symbol: symbol, Price: price.InexactFloat64()}, nil
}

// ListAssets 列出全部资产
func (s *AssetQueryService) ListAssets(ctx context.Context) ([]AssetDTO, error) {
	assets, err := s.pricing.ListAssets(ctx)
	if err != nil {
		logger.Error(ctx, "Failed to list assets", "error", err)
		return nil, newError(KindInternal, MsgInternal, err)
	}
	dtos := make([]AssetDTO, 0, len(assets))
	for _, a := range assets {
		dtos = append(dtos, toAssetDTO(a))
	}
	return dtos, nil
}
