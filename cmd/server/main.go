package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/erp/backoffice/internal/application/catalog"
	partnerapp "github.com/erp/backoffice/internal/application/partner"
	procurementapp "github.com/erp/backoffice/internal/application/procurement"
	warehouseapp "github.com/erp/backoffice/internal/application/warehouse"
	"github.com/erp/backoffice/internal/infrastructure/config"
	"github.com/erp/backoffice/internal/infrastructure/lock"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/erp/backoffice/internal/infrastructure/migration"
	"github.com/erp/backoffice/internal/infrastructure/persistence"
	"github.com/erp/backoffice/internal/infrastructure/telemetry"
	"github.com/erp/backoffice/internal/interfaces/http/handler"
	"github.com/erp/backoffice/internal/interfaces/http/middleware"
	"github.com/erp/backoffice/internal/interfaces/http/router"
	"github.com/erp/backoffice/migrations"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const shutdownGrace = 30 * time.Second

func main() {
	applyMigrations := flag.Bool("migrate", false, "Apply pending postgres migrations before serving")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting backoffice",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("database", cfg.Database.Driver),
	)

	ctx := context.Background()

	tp, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	mp, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	lp, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize log export", zap.Error(err))
	}
	log = lp.Bridge(log, logger.ParseLevel(cfg.Log.Level))

	profiler, err := telemetry.NewProfiler(cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() {
		tp.EnableSpanProfiles()
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := profiler.Stop(); err != nil {
			log.Error("Profiler stop failed", zap.Error(err))
		}
		if err := lp.Shutdown(shutdownCtx); err != nil {
			log.Error("Logger provider shutdown failed", zap.Error(err))
		}
		if err := mp.Shutdown(shutdownCtx); err != nil {
			log.Error("Meter provider shutdown failed", zap.Error(err))
		}
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Error("Tracer provider shutdown failed", zap.Error(err))
		}
	}()

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(gormLog))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	if err := prepareSchema(db, *applyMigrations, log); err != nil {
		log.Fatal("Failed to prepare schema", zap.Error(err))
	}

	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		if err := telemetry.NewDBTracing(cfg.Telemetry, db.Driver(), log).Register(db.DB); err != nil {
			log.Fatal("Failed to register database tracing", zap.Error(err))
		}
	}
	meter := mp.Meter(cfg.Telemetry.ServiceName)
	if mp.IsEnabled() {
		if _, err := telemetry.RegisterPoolMetrics(meter, db.DB); err != nil {
			log.Warn("Connection pool metrics unavailable", zap.Error(err))
		}
	}
	metrics, err := telemetry.NewBusinessMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create business metrics", zap.Error(err))
	}

	guard, closeGuard, err := lock.NewFactory(cfg.Redis, cfg.Sequence,
		lock.WithLogger(log),
		lock.WithInMemoryFallback(cfg.App.Env != "production"),
	).Create()
	if err != nil {
		log.Fatal("Failed to create sequence guard", zap.Error(err))
	}
	defer func() { _ = closeGuard() }()
	seq := persistence.NewSequencer(guard, cfg.Sequence.Retry)

	nodeRepo := persistence.NewGormNodeRepository(db.DB, seq)
	uomRepo := persistence.NewGormUomRepository(db.DB, seq)
	itemRepo := persistence.NewGormItemRepository(db.DB, seq)
	supplierRepo := persistence.NewGormSupplierRepository(db.DB)
	orderRepo := persistence.NewGormPurchaseOrderRepository(db.DB, seq)

	nodeService := warehouseapp.NewNodeService(nodeRepo)
	nodeService.SetBusinessMetrics(metrics)
	uomService := catalogapp.NewUomService(uomRepo)
	uomService.SetBusinessMetrics(metrics)
	itemService := catalogapp.NewItemService(itemRepo)
	itemService.SetBusinessMetrics(metrics)
	supplierService := partnerapp.NewSupplierService(supplierRepo)
	supplierService.SetBusinessMetrics(metrics)
	orderService := procurementapp.NewPurchaseOrderService(orderRepo, nodeRepo, supplierRepo, itemRepo)
	orderService.SetBusinessMetrics(metrics)

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.AllowOrigins
	mode := gin.DebugMode
	if cfg.App.Env == "production" {
		mode = gin.ReleaseMode
	}
	engine, err := router.NewEngine(router.EngineConfig{
		Mode:           mode,
		ServiceName:    cfg.Telemetry.ServiceName,
		TracingEnabled: tp.IsEnabled(),
		MaxBodyBytes:   cfg.HTTP.MaxBodyBytes,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		CORS:           cors,
	}, log)
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	router.NewRouter(engine, router.WithHealthCheck(func(context.Context) error {
		return db.Ping()
	})).Register(
		handler.NewNodeHandler(nodeService),
		handler.NewUomHandler(uomService),
		handler.NewItemHandler(itemService),
		handler.NewSupplierHandler(supplierService),
		handler.NewPurchaseOrderHandler(orderService),
	).Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}
	log.Info("Server exited gracefully")
}

// prepareSchema creates sqlite tables from the models. Postgres schemas are
// versioned and only applied here when asked to.
func prepareSchema(db *persistence.Database, applyMigrations bool, log *zap.Logger) error {
	if db.Driver() == config.DriverSQLite {
		return db.AutoMigrate()
	}
	if !applyMigrations {
		return nil
	}
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	m, err := migration.New(sqlDB, migrations.FS, log)
	if err != nil {
		return err
	}
	return m.Up()
}
