package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	acctapp "github.com/fenestra/backend/internal/application/accounting"
	"github.com/fenestra/backend/internal/application/crmsync"
	"github.com/fenestra/backend/internal/domain/shared"
	"github.com/fenestra/backend/internal/infrastructure/cache"
	"github.com/fenestra/backend/internal/infrastructure/clickup"
	"github.com/fenestra/backend/internal/infrastructure/config"
	"github.com/fenestra/backend/internal/infrastructure/logger"
	"github.com/fenestra/backend/internal/infrastructure/persistence"
	"github.com/fenestra/backend/internal/infrastructure/quickbooks"
	"github.com/fenestra/backend/internal/infrastructure/telemetry"
	"github.com/fenestra/backend/internal/interfaces/http/handler"
	"github.com/fenestra/backend/internal/interfaces/http/middleware"
	"github.com/fenestra/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

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

	log.Info("Starting Fenestra backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	// Initialize tracing before anything that emits spans
	tpCtx, tpCancel := context.WithTimeout(context.Background(), 15*time.Second)
	tracerProvider, err := telemetry.NewTracerProvider(tpCtx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	tpCancel()
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	// Initialize database connection
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, log, logger.MapGormLogLevel(cfg.Log.Level))
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
	dbTracingCfg.Enabled = cfg.Telemetry.Enabled
	dbTracing := telemetry.NewDBTracingPlugin(dbTracingCfg, log)
	if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	// Repositories
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	contactRepo := persistence.NewGormContactRepository(db.DB)
	projectRepo := persistence.NewGormProjectRepository(db.DB)
	userMappingRepo := persistence.NewGormUserMappingRepository(db.DB)
	syncLogRepo := persistence.NewGormSyncLogRepository(db.DB)
	oauthTokenRepo := persistence.NewGormOAuthTokenRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	purchaseOrderRepo := persistence.NewGormPurchaseOrderRepository(db.DB)

	// ClickUp client and custom field cache
	clickupClient, err := clickup.NewClient(&cfg.ClickUp)
	if err != nil {
		log.Fatal("Invalid ClickUp configuration", zap.Error(err))
	}
	fieldCache := clickup.NewFieldCache(clickupClient)
	if cfg.ClickUp.Enabled {
		log.Info("ClickUp sync enabled",
			zap.String("customer_list", cfg.ClickUp.CustomerListID),
			zap.String("contact_list", cfg.ClickUp.ContactListID),
			zap.String("lead_list", cfg.ClickUp.LeadListID))
	} else {
		log.Info("ClickUp sync disabled")
	}

	// QuickBooks OAuth token manager and client
	tokenManager := quickbooks.NewTokenManager(&cfg.QuickBooks, oauthTokenRepo)
	quickbooksClient, err := quickbooks.NewClient(&cfg.QuickBooks, tokenManager)
	if err != nil {
		log.Fatal("Invalid QuickBooks configuration", zap.Error(err))
	}
	if cfg.QuickBooks.Enabled {
		log.Info("QuickBooks sync enabled", zap.String("environment", cfg.QuickBooks.Environment))
	} else {
		log.Info("QuickBooks sync disabled")
	}

	// Webhook deliveries are deduplicated in Redis when configured, otherwise
	// in process memory. Memory-backed dedup does not survive restarts, which
	// only means a redelivered webhook gets processed twice.
	var idempotencyStore shared.IdempotencyStore
	if cfg.Redis.Host != "" {
		redisStore, err := cache.NewRedisIdempotencyStore(cache.RedisOptions{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn("Redis unavailable, falling back to in-memory webhook dedup", zap.Error(err))
			idempotencyStore = cache.NewInMemoryIdempotencyStore()
		} else {
			log.Info("Redis webhook dedup enabled", zap.String("host", cfg.Redis.Host))
			idempotencyStore = redisStore
		}
	} else {
		idempotencyStore = cache.NewInMemoryIdempotencyStore()
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Sync engine
	dispatcher := crmsync.NewDispatcher(syncLogRepo, cfg.Sync.QueueSize, log)
	dispatcher.Start(cfg.Sync.Workers)
	defer dispatcher.Stop()

	crmService := crmsync.NewService(
		customerRepo,
		contactRepo,
		projectRepo,
		userMappingRepo,
		syncLogRepo,
		clickupClient,
		fieldCache,
		cfg.Sync.ConflictBuffer,
		log,
	)
	crmTrigger := crmsync.NewTrigger(crmService, dispatcher, log)
	syncLogService := crmsync.NewLogService(syncLogRepo)

	acctService := acctapp.NewService(
		invoiceRepo,
		purchaseOrderRepo,
		customerRepo,
		projectRepo,
		syncLogRepo,
		quickbooksClient,
		log,
	)
	acctTrigger := acctapp.NewTrigger(acctService, dispatcher, log)

	// HTTP router and handlers
	middleware.SetupValidator()
	r, err := router.New(cfg.HTTP, cfg.Telemetry.Enabled, cfg.Telemetry.ServiceName, log)
	if err != nil {
		log.Fatal("Failed to build router", zap.Error(err))
	}

	r.Register(handler.NewCustomerHandler(customerRepo, crmTrigger)).
		Register(handler.NewContactHandler(contactRepo, crmTrigger)).
		Register(handler.NewProjectHandler(projectRepo, crmTrigger, acctTrigger)).
		Register(handler.NewInvoiceHandler(invoiceRepo, acctTrigger)).
		Register(handler.NewPurchaseOrderHandler(purchaseOrderRepo, acctTrigger)).
		Register(handler.NewSyncLogHandler(syncLogService))

	r.RegisterRoot(handler.NewWebhookHandler(cfg.ClickUp, cfg.Sync, crmTrigger, idempotencyStore, log)).
		RegisterRoot(handler.NewQuickBooksHandler(tokenManager, log)).
		RegisterRoot(handler.NewSystemHandler(db, version))

	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        r.Engine(),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	// In-flight sync jobs finish before spans are flushed
	dispatcher.Stop()
	if err := tracerProvider.Shutdown(ctx); err != nil {
		log.Error("Error shutting down tracing", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
