package application

import (
	"time"

	"github.com/wyfcoding/assetswap/internal/swap/domain"
)

type AssetDTO struct {
	ID        uint      `json:"id"`
	Symbol    string    `json:"symbol"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type PriceDTO struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

// OrderDTO 金额与价格以两位小数的字符串输出
type OrderDTO struct {
	ID        uint   `json:"id"`
	Asset     uint   `json:"asset"`
	Amount    string `json:"amount"`
	Price     string `json:"price"`
	CreatedAt string `json:"created_at"`
	Status    string `json:"status"`
}

type CreateOrderResult struct {
	Message string    `json:"message"`
	Order   *OrderDTO `json:"order"`
}

func toAssetDTO(a *domain.Asset) AssetDTO {
	return AssetDTO{
		ID:        a.ID,
		Symbol:    a.Symbol,
		Name:      a.Name,
		CreatedAt: a.CreatedAt,
	}
}

func toOrderDTO(o *domain.Order) *OrderDTO {
	return &OrderDTO{
		ID:        o.ID,
		Asset:     o.AssetID,
		Amount:    o.Amount.StringFixed(2),
		Price:     o.Price.StringFixed(2),
		CreatedAt: o.CreatedAt.Format(time.RFC3339Nano),
		Status:    string(o.Status),
	}
}
