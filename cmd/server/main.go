package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	checkoutapp "github.com/dropship/backend/internal/application/checkout"
	fulfillmentapp "github.com/dropship/backend/internal/application/fulfillment"
	reportapp "github.com/dropship/backend/internal/application/report"
	"github.com/dropship/backend/internal/domain/report"
	"github.com/dropship/backend/internal/infrastructure/auth"
	"github.com/dropship/backend/internal/infrastructure/cache"
	"github.com/dropship/backend/internal/infrastructure/config"
	"github.com/dropship/backend/internal/infrastructure/event"
	"github.com/dropship/backend/internal/infrastructure/logger"
	"github.com/dropship/backend/internal/infrastructure/persistence"
	"github.com/dropship/backend/internal/infrastructure/printing"
	"github.com/dropship/backend/internal/infrastructure/telemetry"
	"github.com/dropship/backend/internal/interfaces/http/handler"
	"github.com/dropship/backend/internal/interfaces/http/middleware"
	"github.com/dropship/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

//	@title			Dropship Fulfillment API
//	@version		1.0
//	@description	Order fulfillment pipeline and financial ledger for the dropshipping marketplace

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Dropship Fulfillment Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Distributed tracing: no-op provider when disabled
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.App.Name,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	dbTracingCfg := telemetry.DefaultDBTracingConfig()
	dbTracingCfg.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.DBTracing
	dbTracingCfg.DBName = cfg.Database.DBName
	if err := telemetry.NewDBTracingPlugin(dbTracingCfg, log).RegisterOtelGorm(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	// Initialize repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	subOrderRepo := persistence.NewGormSubOrderRepository(db.DB)
	trackingRepo := persistence.NewGormTrackingEventRepository(db.DB)
	pickupRepo := persistence.NewGormPickupRepository(db.DB)
	financialReportRepo := persistence.NewGormFinancialReportRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Idempotency store: Redis when configured, in-memory otherwise
	idempotencyStore, err := cache.NewIdempotencyStore(cfg, log)
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Cross-cutting infrastructure
	jwtService := auth.NewJWTService(cfg.JWT)
	gate := auth.NewPermissiveGate(log)
	publisher := event.NewInMemoryEventPublisher(log)

	deliveryFee, err := decimal.NewFromString(cfg.Fulfillment.DeliveryFee)
	if err != nil {
		log.Fatal("Invalid fulfillment.delivery_fee", zap.Error(err))
	}
	platformFee, err := decimal.NewFromString(cfg.Fulfillment.PlatformFee)
	if err != nil {
		log.Fatal("Invalid fulfillment.platform_fee", zap.Error(err))
	}

	// Application services
	checkoutService := checkoutapp.NewService(txScope, productRepo, gate,
		checkoutapp.Config{
			DeliveryFee:    deliveryFee,
			PlatformFee:    platformFee,
			ReserveRetries: cfg.Fulfillment.MaxTransitionRetry,
		}, log)
	transitionService := fulfillmentapp.NewTransitionService(txScope,
		idempotencyStore, gate, publisher, fulfillmentapp.TransitionConfig{
			MaxRetries:     cfg.Fulfillment.MaxTransitionRetry,
			IdempotencyTTL: cfg.Idempotency.TTL,
		}, log)
	queryService := fulfillmentapp.NewQueryService(subOrderRepo, trackingRepo)
	pickupService := fulfillmentapp.NewPickupService(pickupRepo, subOrderRepo, gate, publisher, log)
	financialService := reportapp.NewFinancialService(financialReportRepo, pickupRepo,
		reportapp.Config{
			PenaltyPolicy:       penaltyPolicy(cfg, log),
			ReturnRatePrecision: cfg.Fulfillment.ReturnRatePrecision,
			Timezone:            cfg.Fulfillment.Location(),
			DailyWindowDays:     cfg.Fulfillment.DailyWindowDays,
			MonthlyWindowMonths: cfg.Fulfillment.MonthlyWindowMonths,
		}, log)

	// HTTP engine
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Failed to set trusted proxies", zap.Error(err))
	}

	middleware.SetupValidator()
	engine.Use(middleware.RequestID())
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.App.Name,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	engine.Use(middleware.Timeout(cfg.HTTP.RequestTimeout))
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	corsCfg.ExposeHeaders = append(corsCfg.ExposeHeaders, "Content-Disposition")
	engine.Use(middleware.CORSWithConfig(corsCfg))
	engine.Use(middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths:  []string{"/health", "/ready", "/api/v1/system/info"},
		Logger:     log,
	}))
	// Re-enrich spans now that the actor is resolved
	engine.Use(middleware.TracingAttributeInjector())
	// Installed after authentication so the limiter can key on the actor
	if cfg.HTTP.RateLimit > 0 {
		engine.Use(middleware.RateLimit(middleware.NewRateLimiter(
			cfg.HTTP.RateLimit, cfg.HTTP.RateLimitWindow)))
	}

	router.Setup(engine, router.Handlers{
		System:     handler.NewSystemHandler(db),
		Checkout:   handler.NewCheckoutHandler(checkoutService),
		SubOrders:  handler.NewSubOrderHandler(transitionService, queryService),
		Pickups:    handler.NewPickupHandler(pickupService, printing.NewManifestWriter()),
		Financials: handler.NewFinancialsHandler(financialService),
	})

	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
	log.Info("Server stopped")
}

// penaltyPolicy resolves the configured return penalty policy
func penaltyPolicy(cfg *config.Config, log *zap.Logger) report.PenaltyPolicy {
	if cfg.Fulfillment.ReturnPenaltyMode == "fixed" {
		amount, err := decimal.NewFromString(cfg.Fulfillment.ReturnPenaltyAmount)
		if err != nil {
			log.Fatal("Invalid fulfillment.return_penalty_amount", zap.Error(err))
		}
		return report.PenaltyPolicy{Mode: report.PenaltyFixed, FixedAmount: amount}
	}
	return report.DefaultPenaltyPolicy()
}
