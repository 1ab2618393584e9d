package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/assetswap/internal/swap/application"
	"github.com/wyfcoding/assetswap/pkg/logger"
	"github.com/wyfcoding/assetswap/pkg/metrics"
)

// 请求校验失败时的固定文案
const (
	MsgRequiredFields     = "asset_symbol and amount are required fields"
	MsgAmountNotNumber    = "amount must be a number"
	MsgInvalidRequestBody = "invalid request body"
)

// maxOrderBodyBytes 下单请求体上限，同时限制金额字面量的位数
const maxOrderBodyBytes = 16 << 10

// SwapHandler HTTP 处理器
// 负责资产查询、报价与下单请求
type SwapHandler struct {
	query   *application.AssetQueryService
	cmd     *application.OrderCommandService
	metrics *metrics.Metrics
}

// NewSwapHandler 创建 HTTP 处理器实例，m 可以为 nil
func NewSwapHandler(query *application.AssetQueryService, cmd *application.OrderCommandService, m *metrics.Metrics) *SwapHandler {
	return &SwapHandler{query: query, cmd: cmd, metrics: m}
}

// RegisterRoutes 注册路由，同时挂载在根路径与 /api 下
func (h *SwapHandler) RegisterRoutes(router gin.IRouter) {
	h.register(router)
	h.register(router.Group("/api"))
}

func (h *SwapHandler) register(r gin.IRouter) {
	r.GET("/assets/", h.ListAssets)                   // 资产列表
	r.GET("/assets/:symbol/price/", h.GetAssetPrice) // 资产报价
	r.POST("/orders/", h.CreateOrder)                 // 下单
}

// ListAssets 列出资产
func (h *SwapHandler) ListAssets(c *gin.Context) {
	assets, err := h.query.ListAssets(c.Request.Context())
	if err != nil {
		h.writeError(c, err, http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, assets)
}

// GetAssetPrice 查询报价
func (h *SwapHandler) GetAssetPrice(c *gin.Context) {
	symbol := c.Param("symbol")
	price, err := h.query.GetAssetPrice(c.Request.Context(), symbol)
	if err != nil {
		h.observePrice("not_found", err)
		h.writeError(c, err, http.StatusNotFound)
		return
	}
	h.observePrice("found", nil)
	c.JSON(http.StatusOK, price)
}

// CreateOrderRequest 下单请求。字段保留原始 JSON 值，按宽松规则解析
type CreateOrderRequest struct {
	AssetSymbol any `json:"asset_symbol"`
	Amount      any `json:"amount"`
}

// CreateOrder 下单
func (h *SwapHandler) CreateOrder(c *gin.Context) {
	ctx := c.Request.Context()

	var req CreateOrderRequest
	dec := json.NewDecoder(http.MaxBytesReader(c.Writer, c.Request.Body, maxOrderBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		logger.Debug(ctx, "Rejecting malformed order body", "error", err)
		h.rejectOrder(c, "invalid_body", MsgInvalidRequestBody)
		return
	}

	symbol, ok := parseSymbol(req.AssetSymbol)
	if !ok || isBlank(req.Amount) {
		h.rejectOrder(c, "missing_fields", MsgRequiredFields)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		h.rejectOrder(c, "invalid_amount", MsgAmountNotNumber)
		return
	}

	res, err := h.cmd.CreateOrder(ctx, application.CreateOrderCommand{Symbol: symbol, Amount: amount})
	if err != nil {
		if h.metrics != nil {
			h.metrics.OrderFailuresTotal.WithLabelValues(kindLabel(err)).Inc()
		}
		h.writeError(c, err, http.StatusBadRequest)
		return
	}
	if h.metrics != nil {
		h.metrics.OrdersCreatedTotal.Inc()
	}
	c.JSON(http.StatusCreated, res.Order)
}

func (h *SwapHandler) rejectOrder(c *gin.Context, reason, msg string) {
	if h.metrics != nil {
		h.metrics.OrderFailuresTotal.WithLabelValues(reason).Inc()
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func (h *SwapHandler) observePrice(result string, err error) {
	if h.metrics == nil {
		return
	}
	if err != nil && kindLabel(err) == application.KindInternal.String() {
		result = "error"
	}
	h.metrics.PriceLookupsTotal.WithLabelValues(result).Inc()
}

// writeError 将用例错误映射为状态码，基础设施故障一律 500
func (h *SwapHandler) writeError(c *gin.Context, err error, status int) {
	var appErr *application.Error
	if !errors.As(err, &appErr) {
		logger.Error(c.Request.Context(), "Unexpected handler error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": application.MsgInternal})
		return
	}
	if appErr.Kind == application.KindInternal {
		status = http.StatusInternalServerError
	}
	c.JSON(status, gin.H{"error": appErr.Message})
}

func kindLabel(err error) string {
	var appErr *application.Error
	if errors.As(err, &appErr) {
		return appErr.Kind.String()
	}
	return application.KindInternal.String()
}

// parseSymbol 空字符串、null 与假值视为缺失
func parseSymbol(v any) (string, bool) {
	if isBlank(v) {
		return "", false
	}
	switch s := v.(type) {
	case string:
		return s, true
	default:
		return fmt.Sprint(s), true
	}
}

// isBlank 判断 JSON 值是否为假值：null、false、0、空字符串、空数组、空对象
func isBlank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case bool:
		return !x
	case string:
		return x == ""
	case json.Number:
		d, err := decimal.NewFromString(x.String())
		return err == nil && d.IsZero()
	case []any:
		return len(x) == 0
	case map[string]any:
		return len(x) == 0
	default:
		return false
	}
}

var errNotNumber = errors.New("not a number")

// parseAmount 接受 JSON 数字与数字字符串（允许首尾空白），其余一律拒绝。
// 范围与精度由 domain.Quantize 处理
func parseAmount(v any) (decimal.Decimal, error) {
	var text string
	switch x := v.(type) {
	case json.Number:
		text = x.String()
	case string:
		text = strings.TrimSpace(x)
	default:
		return decimal.Zero, errNotNumber
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, errNotNumber
	}
	return d, nil
}
