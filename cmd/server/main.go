package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	identityapp "github.com/retail/backend/internal/application/identity"
	inventoryapp "github.com/retail/backend/internal/application/inventory"
	reportapp "github.com/retail/backend/internal/application/report"
	tradeapp "github.com/retail/backend/internal/application/trade"
	"github.com/retail/backend/internal/domain/trade"
	"github.com/retail/backend/internal/infrastructure/auth"
	"github.com/retail/backend/internal/infrastructure/cache"
	"github.com/retail/backend/internal/infrastructure/config"
	"github.com/retail/backend/internal/infrastructure/event"
	"github.com/retail/backend/internal/infrastructure/logger"
	"github.com/retail/backend/internal/infrastructure/migration"
	"github.com/retail/backend/internal/infrastructure/persistence"
	"github.com/retail/backend/internal/infrastructure/printing"
	"github.com/retail/backend/internal/infrastructure/scheduler"
	"github.com/retail/backend/internal/infrastructure/storage"
	"github.com/retail/backend/internal/infrastructure/telemetry"
	"github.com/retail/backend/internal/interfaces/http/handler"
	"github.com/retail/backend/internal/interfaces/http/middleware"
	"github.com/retail/backend/internal/interfaces/http/router"
	"go.uber.org/zap"

	_ "github.com/retail/backend/docs"
)

//	@title			Retail Backend API
//	@version		1.0
//	@description	Point-of-sale backend: stock ledger, carts, checkout and low-stock alerts.

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

const (
	eventWorkers   = 4
	eventQueueSize = 1024
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}
	bootLog, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	// Telemetry comes first so the log bridge can be teed into the real logger
	rootCtx, stopRoot := context.WithCancel(context.Background())
	defer stopRoot()

	tel, err := telemetry.Setup(rootCtx, telemetry.ConfigFrom(cfg.App, cfg.Telemetry), bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		if err := tel.Shutdown(context.Background()); err != nil {
			bootLog.Error("Error shutting down telemetry", zap.Error(err))
		}
	}()

	log, err := logger.New(logCfg,
		logger.WithCore(tel.Logs.Core(cfg.Telemetry.LogsLevel)),
		logger.WithFields(zap.String("service", cfg.App.Name), zap.String("env", cfg.App.Env)),
	)
	if err != nil {
		bootLog.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Retail Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	profiler, err := telemetry.NewProfiler(cfg.Profiling, cfg.App.Name, cfg.App.Env, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
	}()
	if profiler.Enabled() {
		tel.Tracer.EnableSpanProfiles()
	}

	meter := tel.Meter.Meter("retail-backend")

	// Database
	db := openDatabase(cfg, log)
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	dbInstr, err := telemetry.InstrumentDB(db.DB, telemetry.DBConfigFrom(
		cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		cfg.Telemetry.DBLogFullSQL,
		db.Driver(),
		cfg.Telemetry.DBSlowQueryThresh,
	), meter, log)
	if err != nil {
		log.Fatal("Failed to instrument database", zap.Error(err))
	}
	defer func() { _ = dbInstr.Close() }()

	// Cart sessions and event de-duplication
	stores := cache.NewStoreFactory(cfg.Redis, cfg.Cart,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	)
	if err := stores.Connect(rootCtx); err != nil {
		log.Fatal("Failed to connect to cache", zap.Error(err))
	}
	defer func() {
		if err := stores.Close(); err != nil {
			log.Error("Error closing cache", zap.Error(err))
		}
	}()

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	movementRepo := persistence.NewGormStockMovementRepository(db.DB)
	alertRepo := persistence.NewGormLowStockAlertRepository(db.DB)
	saleRepo := persistence.NewGormSaleRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)

	// Event bus
	eventBus := event.NewInMemoryEventBus(log, event.WithAsyncDispatch(eventWorkers, eventQueueSize))

	businessMetrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:             meter,
		Logger:            log,
		CollectInterval:   cfg.Inventory.MetricsInterval,
		InventoryProvider: telemetry.NewGormInventoryMetricsProvider(db.DB),
	})
	if err != nil {
		log.Fatal("Failed to create business metrics", zap.Error(err))
	}
	businessMetrics.StartPeriodicCollection(rootCtx, cfg.Inventory.MetricsInterval)
	defer businessMetrics.Stop()

	idempotency := stores.IdempotencyStore()
	eventBus.Subscribe(event.NewIdempotentHandler(
		inventoryapp.NewLowStockAlertHandler(log).WithNotifier(inventoryapp.NewLoggingStockAlertNotifier(log)),
		idempotency, log,
	))
	eventBus.Subscribe(event.NewIdempotentHandler(
		tradeapp.NewMetricsEventHandler(businessMetrics, log),
		idempotency, log,
	))

	if err := eventBus.Start(rootCtx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := eventBus.Stop(ctx); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Application services
	locker := inventoryapp.NewProductLocker(0)
	alertPolicy := inventoryapp.AlertPolicy{ResolveOnRestock: cfg.Inventory.ResolveAlertsOnRestock}

	stockService := inventoryapp.NewStockService(
		productRepo, movementRepo, alertRepo,
		persistence.NewGormTransactionScope(db.DB),
		locker,
		inventoryapp.StockServiceConfig{CommitTimeout: cfg.Sales.CommitTimeout, AlertPolicy: alertPolicy},
		log,
	)
	stockService.SetEventPublisher(eventBus)

	alertService := inventoryapp.NewAlertService(alertRepo, log)
	alertService.SetEventPublisher(eventBus)

	importService := inventoryapp.NewProductImportService(stockService, inventoryapp.DefaultProductImportConfig(), log)

	saleProcessor := tradeapp.NewSaleProcessor(
		productRepo,
		persistence.NewGormSaleTransactionScope(db.DB),
		locker,
		inventoryapp.NewStockChanger(alertPolicy, log),
		trade.NewRandomReceiptNumberGenerator(cfg.Sales.ReceiptPrefix),
		tradeapp.SaleProcessorConfig{TaxRate: cfg.Sales.TaxRate, CommitTimeout: cfg.Sales.CommitTimeout},
		log,
	)
	saleProcessor.SetEventPublisher(eventBus)
	saleProcessor.SetBusinessMetrics(businessMetrics)

	cartService := tradeapp.NewCartService(stores.CartStore(), productRepo, saleProcessor, log)
	saleService := tradeapp.NewSaleService(saleRepo)

	receiptDir := ""
	if cfg.Receipt.Enabled {
		archiver, dir, closeArchiver := newReceiptArchiver(rootCtx, cfg, log)
		defer closeArchiver()
		cartService.SetReceiptArchiver(archiver)
		receiptDir = dir
	}

	// Identity
	tokenBlacklist := newTokenBlacklist(stores)
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, jwtService, tokenBlacklist, identityapp.AuthServiceConfig{
		MaxLoginAttempts: cfg.Auth.MaxLoginAttempts,
		LockDuration:     cfg.Auth.LockDuration,
		BcryptCost:       cfg.Auth.BcryptCost,
	}, log)
	userService := identityapp.NewUserService(userRepo, tokenBlacklist, identityapp.UserServiceConfig{
		BcryptCost:    cfg.Auth.BcryptCost,
		RevocationTTL: cfg.JWT.RefreshTokenExpiration,
	}, log)

	if cfg.JWT.Enabled && cfg.Auth.AdminUsername != "" {
		created, err := userService.BootstrapAdmin(rootCtx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword)
		if err != nil {
			log.Fatal("Failed to bootstrap admin user", zap.Error(err))
		}
		if created {
			log.Info("Bootstrap admin created", zap.String("username", cfg.Auth.AdminUsername))
		}
	}

	reportService := reportapp.NewReportService(
		persistence.NewGormSalesReportRepository(db.DB),
		persistence.NewGormInventoryReportRepository(db.DB),
	)

	// Background jobs
	jobs := scheduler.NewScheduler(scheduler.DefaultSchedulerConfig(), log)
	if cfg.Inventory.AlertPurgeEnabled {
		if err := jobs.Register(scheduler.NewAlertPurgeJob(alertService, cfg.Inventory, log)); err != nil {
			log.Fatal("Failed to register alert purge job", zap.Error(err))
		}
	}
	if err := jobs.Start(rootCtx); err != nil {
		log.Fatal("Failed to start scheduler", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := jobs.Stop(ctx); err != nil {
			log.Error("Error stopping scheduler", zap.Error(err))
		}
	}()

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	checks := []handler.ReadinessCheck{
		{Name: "database", Check: func(context.Context) error { return db.Ping() }},
	}
	if stores.UsesRedis() {
		checks = append(checks, handler.ReadinessCheck{Name: "redis", Check: stores.Ping})
	}

	handlers := router.Handlers{
		Product:  handler.NewProductHandler(stockService, importService),
		Movement: handler.NewMovementHandler(stockService),
		Alert:    handler.NewAlertHandler(alertService, cfg.Inventory.AlertPurgeAfter),
		Cart:     handler.NewCartHandler(cartService),
		Sale:     handler.NewSaleHandler(saleService),
		Auth:     handler.NewAuthHandler(authService),
		User:     handler.NewUserHandler(userService),
		Report:   handler.NewReportHandler(reportService),
		System:   handler.NewSystemHandler(cfg.App.Name, jobs, checks...),
	}

	var authenticator middleware.Authenticator
	if cfg.JWT.Enabled {
		authenticator = authService
	} else {
		log.Warn("JWT authentication is disabled; every request runs as the system actor")
	}

	engine, err := router.New(router.Config{
		Service:          cfg.App.Name,
		HTTP:             cfg.HTTP,
		Swagger:          cfg.Swagger,
		TracingEnabled:   cfg.Telemetry.Enabled,
		ProfilingEnabled: profiler.Enabled(),
		Meter:            meter,
		Authenticator:    authenticator,
		ReceiptDir:       receiptDir,
		Logger:           log,
	}, handlers)
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
	stopRoot()

	log.Info("Server exited gracefully")
}

// openDatabase connects and brings the schema up to date: versioned SQL
// migrations on PostgreSQL, AutoMigrate on SQLite
func openDatabase(cfg *config.Config, log *zap.Logger) *persistence.Database {
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
	)
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected successfully", zap.String("driver", db.Driver()))

	if !cfg.Database.AutoMigrate {
		return db
	}
	if db.Driver() == config.DriverSQLite {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate schema", zap.Error(err))
		}
		return db
	}

	migrator, err := migration.Open(cfg.Database.DSN(), log)
	if err != nil {
		log.Fatal("Failed to open migrations", zap.Error(err))
	}
	defer func() { _ = migrator.Close() }()
	if err := migrator.Up(); err != nil {
		log.Fatal("Failed to apply migrations", zap.Error(err))
	}
	return db
}

// newReceiptArchiver wires the receipt store and, when enabled, the PDF
// renderer. Locally stored receipts are served by the engine from dir.
func newReceiptArchiver(ctx context.Context, cfg *config.Config, log *zap.Logger) (archiver *printing.Archiver, dir string, closeFn func()) {
	var store printing.Store
	switch cfg.Receipt.Storage {
	case config.ReceiptStorageS3:
		s3Store, err := storage.NewS3ObjectStorage(ctx, cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to create receipt object storage", zap.Error(err))
		}
		if err := s3Store.EnsureBucket(ctx); err != nil {
			log.Fatal("Failed to prepare receipt bucket", zap.Error(err))
		}
		store = s3Store
	default:
		local, err := printing.NewLocalStore(cfg.Receipt.LocalDir, cfg.Receipt.BaseURL)
		if err != nil {
			log.Fatal("Failed to create receipt directory", zap.Error(err))
		}
		store = local
		dir = local.Dir()
	}

	closeFn = func() {}
	var renderer printing.PDFRenderer
	if cfg.Receipt.PDFEnabled {
		chrome := printing.NewChromedpRenderer(printing.ChromedpConfig{
			ExecPath:  cfg.Receipt.ChromePath,
			Timeout:   cfg.Receipt.PDFTimeout,
			NoSandbox: os.Geteuid() == 0,
			Logger:    log,
		})
		renderer = chrome
		closeFn = func() { _ = chrome.Close() }
	}

	archiver, err := printing.NewArchiver(printing.ArchiverConfig{
		StoreName: cfg.Receipt.StoreName,
		Language:  cfg.Receipt.Language,
		Store:     store,
		Renderer:  renderer,
		Logger:    log,
	})
	if err != nil {
		log.Fatal("Failed to create receipt archiver", zap.Error(err))
	}
	log.Info("Receipt archiving enabled",
		zap.String("storage", cfg.Receipt.Storage),
		zap.Bool("pdf", cfg.Receipt.PDFEnabled),
	)
	return archiver, dir, closeFn
}

// newTokenBlacklist shares revoked tokens across instances through Redis
// when it is available
func newTokenBlacklist(stores *cache.StoreFactory) auth.TokenBlacklist {
	if stores.UsesRedis() {
		return auth.NewRedisTokenBlacklist(stores.Client(), "retail:token_blacklist:")
	}
	return auth.NewInMemoryTokenBlacklist()
}
