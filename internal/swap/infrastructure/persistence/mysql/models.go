package mysql

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/assetswap/internal/swap/domain"
)

// AssetModel 资产表映射
type AssetModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
	Symbol    string    `gorm:"column:symbol;type:varchar(20);uniqueIndex;not null"`
	Name      string    `gorm:"column:name;type:varchar(100);not null;default:''"`
}

func (AssetModel) TableName() string { return "assets" }

// OrderModel 订单表映射，删除资产时级联删除订单
type OrderModel struct {
	ID        uint            `gorm:"primaryKey;autoIncrement"`
	AssetID   uint            `gorm:"column:asset_id;index;not null"`
	Asset     *AssetModel     `gorm:"foreignKey:AssetID;constraint:OnDelete:CASCADE"`
	Amount    decimal.Decimal `gorm:"column:amount;type:decimal(10,2);not null"`
	Price     decimal.Decimal `gorm:"column:price;type:decimal(10,2);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;not null"`
	Status    string          `gorm:"column:status;type:varchar(20);not null"`
}

func (OrderModel) TableName() string { return "orders" }

// Models 返回需要迁移的全部模型
func Models() []any {
	return []any{&AssetModel{}, &OrderModel{}}
}

// mapping helpers

func toAssetModel(a *domain.Asset) *AssetModel {
	if a == nil {
		return nil
	}
	return &AssetModel{
		ID:        a.ID,
		CreatedAt: a.CreatedAt,
		Symbol:    a.Symbol,
		Name:      a.Name,
	}
}

func toAsset(m *AssetModel) *domain.Asset {
	if m == nil {
		return nil
	}
	return &domain.Asset{
		ID:        m.ID,
		Symbol:    m.Symbol,
		Name:      m.Name,
		CreatedAt: m.CreatedAt,
	}
}

func toOrderModel(o *domain.Order) *OrderModel {
	if o == nil {
		return nil
	}
	return &OrderModel{
		ID:        o.ID,
		AssetID:   o.AssetID,
		Amount:    o.Amount,
		Price:     o.Price,
		CreatedAt: o.CreatedAt,
		Status:    string(o.Status),
	}
}

func toOrder(m *OrderModel) *domain.Order {
	if m == nil {
		return nil
	}
	o := &domain.Order{
		ID:        m.ID,
		AssetID:   m.AssetID,
		Amount:    m.Amount,
		Price:     m.Price,
		CreatedAt: m.CreatedAt,
		Status:    domain.OrderStatus(m.Status),
	}
	if m.Asset != nil {
		o.Symbol = m.Asset.Symbol
	}
	return o
}
