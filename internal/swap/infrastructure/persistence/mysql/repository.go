// Package mysql 基于 GORM 的资产与订单仓储，MySQL 与 Postgres 共用
package mysql

import (
	"context"
	"errors"
	"fmt"

	"github.com/wyfcoding/assetswap/internal/swap/domain"
	"github.com/wyfcoding/assetswap/pkg/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type assetRepository struct {
	db *gorm.DB
}

// NewAssetRepository 创建资产仓储
func NewAssetRepository(db *gorm.DB) domain.AssetRepository {
	return &assetRepository{db: db}
}

func (r *assetRepository) GetBySymbol(ctx context.Context, symbol string) (*domain.Asset, error) {
	var m AssetModel
	err := r.db.WithContext(ctx).Where("symbol = ?", symbol).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toAsset(&m), nil
}

func (r *assetRepository) List(ctx context.Context) ([]*domain.Asset, error) {
	var models []AssetModel
	if err := r.db.WithContext(ctx).Order("id asc").Find(&models).Error; err != nil {
		return nil, err
	}
	assets := make([]*domain.Asset, 0, len(models))
	for i := range models {
		assets = append(assets, toAsset(&models[i]))
	}
	return assets, nil
}

func (r *assetRepository) Upsert(ctx context.Context, asset *domain.Asset) error {
	m := toAssetModel(asset)
	if err := db.UpsertWithConflict(ctx, r.db, m, []string{"symbol"}, []string{"name", "updated_at"}); err != nil {
		return fmt.Errorf("failed to upsert asset %s: %w", asset.Symbol, err)
	}

	// ON DUPLICATE KEY UPDATE 不保证回填主键，重新读取
	stored, err := r.GetBySymbol(ctx, asset.Symbol)
	if err != nil {
		return err
	}
	if stored == nil {
		return fmt.Errorf("asset %s missing after upsert", asset.Symbol)
	}
	*asset = *stored
	return nil
}

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) domain.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	m := toOrderModel(order)
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(m).Error
	if err != nil {
		// 需要 gorm.Config.TranslateError
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return fmt.Errorf("order references asset %d: %w", order.AssetID, domain.ErrAssetNotFound)
		}
		return err
	}
	order.ID = m.ID
	return nil
}

func (r *orderRepository) List(ctx context.Context) ([]*domain.Order, error) {
	var models []OrderModel
	if err := r.db.WithContext(ctx).Preload("Asset").Order("id asc").Find(&models).Error; err != nil {
		return nil, err
	}
	orders := make([]*domain.Order, 0, len(models))
	for i := range models {
		orders = append(orders, toOrder(&models[i]))
	}
	return orders, nil
}
