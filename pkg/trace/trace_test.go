package trace

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNewProvider_ExportsSpans(t *testing.T) {
	ctx := context.Background()
	exporter := tracetest.NewInMemoryExporter()
	tp, err := NewProvider(ctx, exporter, "swap", 1)
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}

	_, span := tp.Tracer("test").Start(ctx, "create-order")
	span.End()
	// 内存导出器在 Shutdown 时会清空，这里只刷新
	if err := tp.ForceFlush(ctx); err != nil {
		t.Fatalf("ForceFlush: %v", err)
	}
	t.Cleanup(func() { _ = tp.Shutdown(ctx) })

	spans := exporter.GetSpans()
	if len(spans) != 1 || spans[0].Name != "create-order" {
		t.Fatalf("unexpected spans %+v", spans)
	}
	name, ok := spans[0].Resource.Set().Value(attribute.Key("service.name"))
	if !ok || name.AsString() != "swap" {
		t.Errorf("expected service.name swap, got %q", name.AsString())
	}
}

func TestNewProvider_SampleRatio(t *testing.T) {
	tests := []struct {
		name      string
		ratio     float64
		wantSpans int
	}{
		{name: "never", ratio: 0, wantSpans: 0},
		{name: "always", ratio: 1, wantSpans: 3},
		{name: "out of range falls back to always", ratio: 7, wantSpans: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			exporter := tracetest.NewInMemoryExporter()
			tp, err := NewProvider(ctx, exporter, "swap", tt.ratio)
			if err != nil {
				t.Fatalf("NewProvider: %v", err)
			}
			for i := 0; i < 3; i++ {
				_, span := tp.Tracer("test").Start(ctx, "op")
				span.End()
			}
			if err := tp.ForceFlush(ctx); err != nil {
				t.Fatalf("ForceFlush: %v", err)
			}
			t.Cleanup(func() { _ = tp.Shutdown(ctx) })
			if got := len(exporter.GetSpans()); got != tt.wantSpans {
				t.Errorf("expected %d spans, got %d", tt.wantSpans, got)
			}
		})
	}
}
