package domain_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/assetswap/internal/swap/domain"
	"github.com/wyfcoding/assetswap/internal/swap/infrastructure/persistence/memory"
)

// failingAssets 模拟存储故障
type failingAssets struct{ err error }

func (f failingAssets) GetBySymbol(ctx context.Context, symbol string) (*domain.Asset, error) {
	return nil, f.err
}
func (f failingAssets) List(ctx context.Context) ([]*domain.Asset, error) { return nil, f.err }
func (f failingAssets) Upsert(ctx context.Context, asset *domain.Asset) error { return f.err }

func newStore(t *testing.T) *memory.Store {
	t.Helper()
	s := memory.NewStore()
	for _, sym := range []string{"BTC", "ETH"} {
		if err := s.Assets().Upsert(context.Background(), &domain.Asset{Symbol: sym}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return s
}

func TestPricingService_GetPrice(t *testing.T) {
	s := newStore(t)
	svc := domain.NewPricingService(s.Assets(), domain.NewFixedPriceSource(domain.DefaultFixedPrice))

	tests := []struct {
		name    string
		symbol  string
		want    decimal.Decimal
		wantErr error
	}{
		{name: "known asset gets fixed price", symbol: "BTC", want: decimal.NewFromInt(100)},
		{name: "another known asset gets the same price", symbol: "ETH", want: decimal.NewFromInt(100)},
		{name: "unknown asset", symbol: "XYZ", wantErr: domain.ErrAssetNotFound},
		{name: "symbols are case sensitive", symbol: "btc", wantErr: domain.ErrAssetNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.GetPrice(context.Background(), tt.symbol)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestPricingService_StoreFailure(t *testing.T) {
	boom := errors.New("connection refused")
	svc := domain.NewPricingService(failingAssets{err: boom}, domain.NewFixedPriceSource(domain.DefaultFixedPrice))

	_, err := svc.GetPrice(context.Background(), "BTC")
	if !errors.Is(err, boom) || errors.Is(err, domain.ErrAssetNotFound) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
	if _, err := svc.ListAssets(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped store error from ListAssets, got %v", err)
	}
}

func TestPricingService_ListAssetsIsStable(t *testing.T) {
	s := newStore(t)
	svc := domain.NewPricingService(s.Assets(), domain.NewFixedPriceSource(domain.DefaultFixedPrice))

	first, err := svc.ListAssets(context.Background())
	if err != nil {
		t.Fatalf("ListAssets: %v", err)
	}
	second, err := svc.ListAssets(context.Background())
	if err != nil {
		t.Fatalf("ListAssets: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("expected same length, got %d and %d", len(first), len(second))
	}
	for i := range first {
		if *first[i] != *second[i] {
			t.Errorf("entry %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestOrderService_CreateOrder(t *testing.T) {
	s := newStore(t)
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc := domain.NewOrderService(s.Assets(), s.Orders(), domain.WithClock(func() time.Time { return fixed }))

	order, err := svc.CreateOrder(context.Background(), "BTC", decimal.NewFromInt(5), decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if order.ID == 0 {
		t.Error("expected order id to be assigned")
	}
	if order.Status != domain.OrderStatusCreated {
		t.Errorf("expected status created, got %q", order.Status)
	}
	if !order.Amount.Equal(decimal.NewFromInt(5)) || !order.Price.Equal(decimal.NewFromInt(100)) {
		t.Errorf("unexpected amount/price: %s/%s", order.Amount, order.Price)
	}
	if !order.CreatedAt.Equal(fixed) {
		t.Errorf("expected created_at %v, got %v", fixed, order.CreatedAt)
	}

	orders, _ := s.Orders().List(context.Background())
	if len(orders) != 1 {
		t.Fatalf("expected exactly one stored order, got %d", len(orders))
	}

	event := domain.NewOrderCreatedEvent("evt-1", order)
	if event.OrderID != order.ID || event.Symbol != "BTC" || !event.OccurredOn.Equal(fixed) {
		t.Errorf("unexpected event %+v", event)
	}
}

func TestOrderService_UnknownAssetWritesNothing(t *testing.T) {
	s := newStore(t)
	svc := domain.NewOrderService(s.Assets(), s.Orders())

	_, err := svc.CreateOrder(context.Background(), "XYZ", decimal.NewFromInt(5), decimal.NewFromInt(100))
	if !errors.Is(err, domain.ErrAssetNotFound) {
		t.Fatalf("expected ErrAssetNotFound, got %v", err)
	}
	orders, _ := s.Orders().List(context.Background())
	if len(orders) != 0 {
		t.Fatalf("expected no orders, got %d", len(orders))
	}
}

func TestOrderService_RoundsAndRejectsOverflow(t *testing.T) {
	s := newStore(t)
	svc := domain.NewOrderService(s.Assets(), s.Orders())

	order, err := svc.CreateOrder(context.Background(), "BTC", decimal.RequireFromString("1.235"), decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if order.Amount.String() != "1.24" {
		t.Errorf("expected amount rounded to 1.24, got %s", order.Amount)
	}

	_, err = svc.CreateOrder(context.Background(), "BTC", decimal.RequireFromString("123456789"), decimal.NewFromInt(100))
	if !errors.Is(err, domain.ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
}

// vanishingAssets 在查询成功后删除资产，模拟查询与写入之间的竞态
type vanishingAssets struct {
	domain.AssetRepository
	store *memory.Store
}

func (v vanishingAssets) GetBySymbol(ctx context.Context, symbol string) (*domain.Asset, error) {
	a, err := v.AssetRepository.GetBySymbol(ctx, symbol)
	v.store.DeleteAsset(symbol)
	return a, err
}

func TestOrderService_AssetVanishedBeforeWrite(t *testing.T) {
	s := newStore(t)
	svc := domain.NewOrderService(vanishingAssets{AssetRepository: s.Assets(), store: s}, s.Orders())

	_, err := svc.CreateOrder(context.Background(), "BTC", decimal.NewFromInt(1), decimal.NewFromInt(100))
	if !errors.Is(err, domain.ErrAssetNotFound) {
		t.Fatalf("expected ErrAssetNotFound, got %v", err)
	}
	orders, _ := s.Orders().List(context.Background())
	if len(orders) != 0 {
		t.Fatalf("expected no orders, got %d", len(orders))
	}
}

func TestQuantize(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr error
	}{
		{name: "rounds half away from zero", in: "1.235", want: "1.24"},
		{name: "negative half rounds away from zero", in: "-0.005", want: "-0.01"},
		{name: "below a cent is zero", in: "0.004", want: "0"},
		{name: "largest storable value", in: "99999999.994", want: "99999999.99"},
		{name: "rounding up overflows", in: "99999999.995", wantErr: domain.ErrOutOfRange},
		{name: "integer part too wide", in: "100000000", wantErr: domain.ErrOutOfRange},
		{name: "huge positive exponent", in: "1e50000000", wantErr: domain.ErrOutOfRange},
		{name: "huge negative value", in: "-7e2000000000", wantErr: domain.ErrOutOfRange},
		{name: "tiny exponent collapses to zero", in: "1e-50000000", want: "0"},
		{name: "zero with large exponent", in: "0e90000000", want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := time.Now()
			got, err := domain.Quantize(decimal.RequireFromString(tt.in))
			if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
				t.Errorf("Quantize(%s) took %v", tt.in, elapsed)
			}
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}
