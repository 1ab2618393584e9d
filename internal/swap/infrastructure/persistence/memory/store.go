// Package memory 提供进程内的资产与订单仓储，用于测试与本地运行
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wyfcoding/assetswap/internal/swap/domain"
)

// Store 同时持有资产与订单，模拟外键约束与级联删除
type Store struct {
	mu          sync.Mutex
	assets      []*domain.Asset
	orders      []*domain.Order
	nextAssetID uint
	nextOrderID uint
}

// NewStore 创建空的内存存储
func NewStore() *Store {
	return &Store{nextAssetID: 1, nextOrderID: 1}
}

// Assets 返回资产仓储视图
func (s *Store) Assets() domain.AssetRepository { return &assetRepository{store: s} }

// Orders 返回订单仓储视图
func (s *Store) Orders() domain.OrderRepository { return &orderRepository{store: s} }

// DeleteAsset 删除资产并级联删除其订单
func (s *Store) DeleteAsset(symbol string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOfSymbol(symbol)
	if idx < 0 {
		return false
	}
	id := s.assets[idx].ID
	s.assets = append(s.assets[:idx], s.assets[idx+1:]...)

	kept := s.orders[:0]
	for _, o := range s.orders {
		if o.AssetID != id {
			kept = append(kept, o)
		}
	}
	s.orders = kept
	return true
}

func (s *Store) indexOfSymbol(symbol string) int {
	for i, a := range s.assets {
		if a.Symbol == symbol {
			return i
		}
	}
	return -1
}

func (s *Store) assetByID(id uint) *domain.Asset {
	for _, a := range s.assets {
		if a.ID == id {
			return a
		}
	}
	return nil
}

type assetRepository struct {
	store *Store
}

func (r *assetRepository) GetBySymbol(ctx context.Context, symbol string) (*domain.Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	idx := r.store.indexOfSymbol(symbol)
	if idx < 0 {
		return nil, nil
	}
	a := *r.store.assets[idx]
	return &a, nil
}

func (r *assetRepository) List(ctx context.Context) ([]*domain.Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	out := make([]*domain.Asset, 0, len(r.store.assets))
	for _, a := range r.store.assets {
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

func (r *assetRepository) Upsert(ctx context.Context, asset *domain.Asset) error {
	if asset.Symbol == "" {
		return fmt.Errorf("asset symbol is required")
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if idx := r.store.indexOfSymbol(asset.Symbol); idx >= 0 {
		existing := r.store.assets[idx]
		existing.Name = asset.Name
		asset.ID = existing.ID
		asset.CreatedAt = existing.CreatedAt
		return nil
	}

	stored := *asset
	stored.ID = r.store.nextAssetID
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	r.store.nextAssetID++
	r.store.assets = append(r.store.assets, &stored)

	asset.ID = stored.ID
	asset.CreatedAt = stored.CreatedAt
	return nil
}

type orderRepository struct {
	store *Store
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if r.store.assetByID(order.AssetID) == nil {
		return fmt.Errorf("order references asset %d: %w", order.AssetID, domain.ErrAssetNotFound)
	}

	order.ID = r.store.nextOrderID
	r.store.nextOrderID++
	stored := *order
	r.store.orders = append(r.store.orders, &stored)
	return nil
}

func (r *orderRepository) List(ctx context.Context) ([]*domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	out := make([]*domain.Order, 0, len(r.store.orders))
	for _, o := range r.store.orders {
		cp := *o
		out = append(out, &cp)
	}
	return out, nil
}
