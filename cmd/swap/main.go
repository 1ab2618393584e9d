// SwapService 主程序
// 功能：提供资产列表、资产报价与下单接口
// 架构：基于 DDD + Gin + GORM + Kafka
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/assetswap/internal/swap/application"
	"github.com/wyfcoding/assetswap/internal/swap/domain"
	"github.com/wyfcoding/assetswap/internal/swap/infrastructure/messaging"
	"github.com/wyfcoding/assetswap/internal/swap/infrastructure/persistence/memory"
	"github.com/wyfcoding/assetswap/internal/swap/infrastructure/persistence/mysql"
	httphandler "github.com/wyfcoding/assetswap/internal/swap/interfaces/http"
	"github.com/wyfcoding/assetswap/pkg/cache"
	"github.com/wyfcoding/assetswap/pkg/config"
	"github.com/wyfcoding/assetswap/pkg/db"
	"github.com/wyfcoding/assetswap/pkg/logger"
	"github.com/wyfcoding/assetswap/pkg/metrics"
	"github.com/wyfcoding/assetswap/pkg/middleware"
	"github.com/wyfcoding/assetswap/pkg/mq"
	"github.com/wyfcoding/assetswap/pkg/ratelimit"
	"github.com/wyfcoding/assetswap/pkg/retry"
	"github.com/wyfcoding/assetswap/pkg/trace"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func main() {
	configPath := flag.String("config", "configs/swap/config.toml", "path to config file")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	loggerCfg := logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		FilePath:   cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
		WithCaller: cfg.Logger.WithCaller,
	}
	if err := logger.Init(loggerCfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	logger.Info(ctx, "Starting SwapService",
		"service", cfg.ServiceName,
		"version", cfg.Version,
		"environment", cfg.Environment,
	)

	// 3. 初始化追踪
	if cfg.Tracing.Enabled {
		shutdown, err := trace.InitTracer(ctx, cfg.ServiceName, cfg.Tracing.CollectorEndpoint, cfg.Tracing.SamplingRate)
		if err != nil {
			logger.Error(ctx, "Failed to initialize tracer", "error", err)
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error(ctx, "Failed to shutdown tracer", "error", err)
				}
			}()
			logger.Info(ctx, "Tracer initialized", "endpoint", cfg.Tracing.CollectorEndpoint)
		}
	}

	// 4. 初始化仓储
	assets, orders, closeStore, err := openRepositories(ctx, cfg)
	if err != nil {
		logger.Fatal(ctx, "Failed to initialize repositories", "error", err)
	}
	defer closeStore()

	if err := seedAssets(ctx, assets, cfg.SeedAssets); err != nil {
		logger.Fatal(ctx, "Failed to seed assets", "error", err)
	}

	// 5. 初始化事件发布
	publisher, closePublisher, err := newEventPublisher(cfg)
	if err != nil {
		logger.Fatal(ctx, "Failed to initialize event publisher", "error", err)
	}
	defer closePublisher()

	// 6. 初始化领域与应用服务
	fixedPrice := domain.DefaultFixedPrice
	if cfg.Pricing.FixedPrice != "" {
		if fixedPrice, err = decimal.NewFromString(cfg.Pricing.FixedPrice); err != nil {
			logger.Fatal(ctx, "Invalid pricing.fixed_price", "value", cfg.Pricing.FixedPrice, "error", err)
		}
	}
	pricing := domain.NewPricingService(assets, domain.NewFixedPriceSource(fixedPrice))
	orderService := domain.NewOrderService(assets, orders)
	query := application.NewAssetQueryService(pricing)
	cmd := application.NewOrderCommandService(pricing, orderService, application.WithEventPublisher(publisher))

	// 7. 初始化指标
	var metricsInstance *metrics.Metrics
	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metricsInstance = metrics.New(cfg.ServiceName)
		metricsServer = metricsInstance.StartHTTPServer(cfg.Metrics.Port, cfg.Metrics.Path)
	}

	// 8. 初始化限流器
	var rateLimiter ratelimit.RateLimiter
	if cfg.RateLimit.Enabled {
		redisCache, err := cache.New(cache.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			MaxPoolSize:  cfg.Redis.MaxPoolSize,
			ConnTimeout:  cfg.Redis.ConnTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			logger.Fatal(ctx, "Failed to initialize Redis", "error", err)
		}
		defer redisCache.Close()
		rateLimiter = ratelimit.NewRedisRateLimiter(redisCache.GetClient(), cfg.ServiceName+":")
	}

	// 9. 创建 HTTP 服务器
	httpServer := createHTTPServer(cfg, httphandler.NewSwapHandler(query, cmd, metricsInstance), metricsInstance, rateLimiter)

	go func() {
		logger.Info(ctx, "Starting HTTP server", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "HTTP server error", "error", err)
		}
	}()

	// 10. 优雅关停
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info(ctx, "Shutting down SwapService")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "HTTP server shutdown error", "error", err)
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error(ctx, "Metrics server shutdown error", "error", err)
		}
	}

	logger.Info(ctx, "SwapService stopped")
}

var dbConnectPolicy = retry.Policy{MaxAttempts: 5, InitialDelay: 500 * time.Millisecond, MaxDelay: 5 * time.Second}

// openRepositories 按 database.driver 选择内存或 SQL 仓储
func openRepositories(ctx context.Context, cfg *config.Config) (domain.AssetRepository, domain.OrderRepository, func(), error) {
	if cfg.Database.Driver == "memory" {
		logger.Warn(ctx, "Using in-memory store, data is lost on restart")
		store := memory.NewStore()
		return store.Assets(), store.Orders(), func() {}, nil
	}

	dbCfg := db.Config{
		Driver:             cfg.Database.Driver,
		DSN:                cfg.Database.DSN,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		LogEnabled:         cfg.Database.LogEnabled,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
	}

	// 容器编排下数据库可能晚于服务就绪
	var database *db.DB
	err := retry.Do(ctx, dbConnectPolicy, func(attempt int) error {
		var initErr error
		if database, initErr = db.Init(dbCfg); initErr != nil {
			logger.Warn(ctx, "Database not ready", "attempt", attempt, "error", initErr)
		}
		return initErr
	})
	if err != nil {
		return nil, nil, nil, err
	}
	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, mysql.Models()...); err != nil {
			database.Close()
			return nil, nil, nil, err
		}
	}
	closeFn := func() {
		if err := database.Close(); err != nil {
			logger.Error(ctx, "Failed to close database", "error", err)
		}
	}
	return mysql.NewAssetRepository(database.DB), mysql.NewOrderRepository(database.DB), closeFn, nil
}

// seedAssets 写入配置中的初始资产，已存在的按 symbol 更新名称
func seedAssets(ctx context.Context, repo domain.AssetRepository, seeds []config.SeedAsset) error {
	for _, s := range seeds {
		asset := &domain.Asset{Symbol: s.Symbol, Name: s.Name}
		if err := repo.Upsert(ctx, asset); err != nil {
			return fmt.Errorf("failed to seed asset %s: %w", s.Symbol, err)
		}
		logger.Debug(ctx, "Seeded asset", "symbol", asset.Symbol, "id", asset.ID)
	}
	if len(seeds) > 0 {
		logger.Info(ctx, "Assets seeded", "count", len(seeds))
	}
	return nil
}

// newEventPublisher 启用 Kafka 时投递订单事件，否则仅记录日志
func newEventPublisher(cfg *config.Config) (domain.EventPublisher, func(), error) {
	if !cfg.Kafka.Enabled {
		return messaging.LogEventPublisher{}, func() {}, nil
	}
	producer, err := mq.NewProducer(mq.KafkaConfig{
		Brokers:      cfg.Kafka.Brokers,
		MaxRetries:   cfg.Kafka.MaxRetries,
		RetryBackoff: cfg.Kafka.RetryBackoff,
	})
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := producer.Close(); err != nil {
			logger.Error(context.Background(), "Failed to close Kafka producer", "error", err)
		}
	}
	return messaging.NewKafkaEventPublisher(producer, cfg.Kafka.OrderTopic), closeFn, nil
}

// createHTTPServer 创建 HTTP 服务器
func createHTTPServer(cfg *config.Config, handler *httphandler.SwapHandler, m *metrics.Metrics, rateLimiter ratelimit.RateLimiter) *http.Server {
	if cfg.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// 添加中间件
	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(middleware.GinLoggingMiddleware())
	router.Use(middleware.GinRecoveryMiddleware())
	if m != nil {
		router.Use(middleware.GinMetricsMiddleware(m))
	}
	if rateLimiter != nil {
		router.Use(middleware.RateLimitMiddleware(rateLimiter, ratelimit.PerSecond(cfg.RateLimit.QPS, cfg.RateLimit.Burst)))
	}

	// 注册路由
	handler.RegisterRoutes(router)

	// 健康检查
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"service":   cfg.ServiceName,
			"timestamp": time.Now().Unix(),
		})
	})

	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      middleware.CORS(cfg.HTTP.AllowedOrigins, router),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}
}
