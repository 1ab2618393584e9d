package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/wyfcoding/assetswap/pkg/logger"
	"github.com/wyfcoding/assetswap/pkg/metrics"
	"github.com/wyfcoding/assetswap/pkg/ratelimit"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubLimiter struct {
	result *ratelimit.Result
	err    error
}

func (s *stubLimiter) Allow(ctx context.Context, key string, limit ratelimit.Limit) (*ratelimit.Result, error) {
	return s.result, s.err
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(handlers...)
	return r
}

func TestRateLimitMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		limiter        *stubLimiter
		expectedStatus int
	}{
		{
			name:           "allowed passes through",
			limiter:        &stubLimiter{result: &ratelimit.Result{Allowed: true, Remaining: 9}},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "denied returns 429",
			limiter:        &stubLimiter{result: &ratelimit.Result{Allowed: false, RetryAfter: time.Second}},
			expectedStatus: http.StatusTooManyRequests,
		},
		{
			name:           "limiter error fails open",
			limiter:        &stubLimiter{err: errors.New("redis down")},
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(RateLimitMiddleware(tt.limiter, ratelimit.PerSecond(10, 10)))
			r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}

func TestGinLoggingMiddleware_PropagatesIDs(t *testing.T) {
	var gotTrace, gotRequest string
	r := newRouter(GinLoggingMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		gotTrace = logger.TraceID(c.Request.Context())
		gotRequest = logger.RequestID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(TraceHeader, "trace-abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if gotTrace != "trace-abc" {
		t.Errorf("expected upstream trace id, got %q", gotTrace)
	}
	if gotRequest == "" || w.Header().Get("X-Request-ID") != gotRequest {
		t.Errorf("expected request id header %q to match context %q", w.Header().Get("X-Request-ID"), gotRequest)
	}
}

func TestGinLoggingMiddleware_UsesSpanTraceID(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	var gotTrace, gotKey string
	r := newRouter(
		otelgin.Middleware("swap",
			otelgin.WithTracerProvider(tp),
			otelgin.WithPropagators(propagation.TraceContext{}),
		),
		GinLoggingMiddleware(),
	)
	r.GET("/ping", func(c *gin.Context) {
		gotTrace = logger.TraceID(c.Request.Context())
		gotKey = c.GetString(TraceIDKey)
		c.Status(http.StatusOK)
	})

	const upstream = "4bf92f3577b34da6a3ce929d0e0e4736"
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("traceparent", "00-"+upstream+"-00f067aa0ba902b7-01")
	req.Header.Set(TraceHeader, "ignored-when-span-present")
	r.ServeHTTP(httptest.NewRecorder(), req)

	if gotTrace != upstream || gotKey != upstream {
		t.Errorf("expected span trace id %s, got context=%q key=%q", upstream, gotTrace, gotKey)
	}
	spans := exporter.GetSpans()
	if len(spans) != 1 || spans[0].SpanContext.TraceID().String() != upstream {
		t.Fatalf("expected one server span in trace %s, got %+v", upstream, spans)
	}
}

func TestGinRecoveryMiddleware(t *testing.T) {
	r := newRouter(GinLoggingMiddleware(), GinRecoveryMiddleware())
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["error"] != "Internal server error" || resp["request_id"] == "" {
		t.Errorf("unexpected body: %v", resp)
	}
}

func TestGinMetricsMiddleware_UsesRouteTemplate(t *testing.T) {
	m := metrics.New("mwtest")
	r := newRouter(GinMetricsMiddleware(m))
	r.GET("/assets/:symbol/price/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/assets/BTC/price/", nil))

	got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/assets/:symbol/price/", "200"))
	if got != 1 {
		t.Fatalf("expected 1 request on route template, got %v", got)
	}
}

func TestCORS_Preflight(t *testing.T) {
	h := CORS([]string{"http://localhost:5173"}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/orders/", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("expected allowed origin header, got %q", got)
	}
	if w.Code == http.StatusTeapot {
		t.Errorf("expected preflight to be answered by cors handler")
	}
}
