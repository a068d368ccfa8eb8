package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	clientapp "github.com/finops/backend/internal/application/client"
	expenseapp "github.com/finops/backend/internal/application/expense"
	ledgerapp "github.com/finops/backend/internal/application/ledger"
	"github.com/finops/backend/internal/infrastructure/auth"
	"github.com/finops/backend/internal/infrastructure/cache"
	"github.com/finops/backend/internal/infrastructure/config"
	"github.com/finops/backend/internal/infrastructure/event"
	"github.com/finops/backend/internal/infrastructure/logger"
	"github.com/finops/backend/internal/infrastructure/messaging"
	"github.com/finops/backend/internal/infrastructure/persistence"
	"github.com/finops/backend/internal/infrastructure/storage"
	"github.com/finops/backend/internal/infrastructure/telemetry"
	"github.com/finops/backend/internal/interfaces/http/handler"
	"github.com/finops/backend/internal/interfaces/http/middleware"
	"github.com/finops/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "github.com/finops/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			finops API
//	@version		1.0
//	@description	Admin expense allocation, payment reconciliation and client ledger API

//	@contact.name	Finance Engineering
//	@contact.url	https://github.com/finops/backend

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token issued by the identity provider. Format: "Bearer {token}"

const serviceVersion = telemetry.ServiceVersion

func main() {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.FromAppConfig(cfg.Log))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting finops backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	// Telemetry
	providers, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
		MetricsInterval:   cfg.Telemetry.MetricsInterval,
		LogsEnabled:       cfg.Telemetry.LogsEnabled,
	}, log)
	if err != nil {
		log.Fatal("Failed to set up telemetry", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			log.Warn("Telemetry shutdown failed", zap.Error(err))
		}
	}()
	log = providers.Logs.Bridge(log, zapcore.InfoLevel)

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Profiler.Enabled,
		ServerAddress:     cfg.Profiler.ServerAddress,
		ApplicationName:   cfg.Profiler.ApplicationName,
		BasicAuthUser:     cfg.Profiler.BasicAuthUser,
		BasicAuthPassword: cfg.Profiler.BasicAuthPassword,
		ProfileTypes:      cfg.Profiler.ProfileTypes,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	defer func() {
		_ = profiler.Stop()
	}()
	if profiler.IsEnabled() {
		providers.Tracer.EnableSpanProfiles()
	}

	// Database
	gormLogger := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(200*time.Millisecond),
		logger.WithIgnoreRecordNotFoundError(true),
	)
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLogger)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database connection", zap.Error(err))
		}
	}()
	log.Info("Database connected",
		zap.String("driver", cfg.Database.Driver),
		zap.String("dbname", cfg.Database.DBName),
	)

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBSystem:        cfg.Database.Driver,
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to auto-migrate schema", zap.Error(err))
		}
		log.Info("Schema auto-migrated")
	}

	// Redis backs the summary cache and the distributed settlement lock
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			_ = redisClient.Close()
		}()
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	// Repositories
	clientRepo := persistence.NewGormClientRepository(db.DB)
	expenseRepo := persistence.NewGormAdminExpenseRepository(db.DB)
	ledgerRepo := persistence.NewGormLedgerRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Event bus
	eventBus := event.NewInMemoryEventBus(log)
	serializer := event.NewDomainSerializer()

	var summaryCache ledgerapp.SummaryCache
	if redisClient != nil {
		summaryCache = cache.NewRedisSummaryCache(redisClient, cfg.Redis.SummaryCacheTTL)
	} else {
		memCache := cache.NewInMemorySummaryCache(
			cache.WithTTL(cfg.Redis.SummaryCacheTTL),
			cache.WithLogger(log),
		)
		defer memCache.Stop()
		summaryCache = memCache
	}
	eventBus.Subscribe(ledgerapp.NewSummaryInvalidationHandler(summaryCache, log))

	if cfg.Messaging.Enabled {
		publisher, err := messaging.NewAMQPPublisher(cfg.Messaging, log)
		if err != nil {
			log.Fatal("Failed to connect to message broker", zap.Error(err))
		}
		defer func() {
			if err := publisher.Close(); err != nil {
				log.Warn("Failed to close message publisher", zap.Error(err))
			}
		}()
		eventBus.Subscribe(messaging.NewForwardingHandler(publisher, serializer, log))
		log.Info("Event forwarding enabled", zap.String("exchange", cfg.Messaging.Exchange))
	}

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		_ = eventBus.Stop(context.Background())
	}()

	// Settlement lock
	var locker expenseapp.ExpenseLocker = expenseapp.NewLocalExpenseLocker()
	if cfg.Lock.Backend == config.LockBackendRedis {
		if redisClient == nil {
			log.Fatal("lock.backend=redis requires redis.enabled")
		}
		locker = cache.NewRedisExpenseLocker(redisClient, cfg.Lock.TTL, log)
	}
	log.Info("Settlement lock configured", zap.String("backend", cfg.Lock.Backend))

	settlementMetrics, err := telemetry.NewSettlementMetrics(providers.Meter.Meter("finops/settlement"))
	if err != nil {
		log.Fatal("Failed to create settlement metrics", zap.Error(err))
	}

	// Receipt storage stays nil when disabled so the receipt endpoints answer 503
	var receiptStorage expenseapp.ReceiptStorage
	if cfg.Storage.Enabled {
		s3Storage, err := storage.NewS3ReceiptStorage(ctx, cfg.Storage, log)
		if err != nil {
			log.Fatal("Failed to create receipt storage", zap.Error(err))
		}
		if err := s3Storage.EnsureBucket(ctx); err != nil {
			log.Fatal("Failed to prepare receipt bucket", zap.Error(err), zap.String("bucket", s3Storage.Bucket()))
		}
		receiptStorage = s3Storage
	}

	// Application services
	clientService := clientapp.NewClientService(clientRepo)

	ledgerService := ledgerapp.NewLedgerService(ledgerRepo, clientRepo)
	ledgerService.SetSummaryCache(summaryCache)
	ledgerService.SetEventPublisher(eventBus)
	ledgerService.SetLogger(log)

	reconciler := expenseapp.NewExpenseReconciler(expenseRepo, clientRepo, txScope)
	reconciler.SetEventPublisher(eventBus)
	reconciler.SetLocker(locker)
	reconciler.SetMetrics(settlementMetrics)
	reconciler.SetLogger(log)

	receiptService := expenseapp.NewReceiptService(expenseRepo, receiptStorage, cfg.Storage.PresignExpiry)

	// HTTP engine
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders

	tracingConfig := middleware.DefaultTracingConfig()
	tracingConfig.ServiceName = cfg.Telemetry.ServiceName
	tracingConfig.Enabled = cfg.Telemetry.Enabled

	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		logger.GinMiddleware(log),
		middleware.TracingWithConfig(tracingConfig),
		middleware.SpanErrorMarker(),
		middleware.Secure(),
		middleware.CORSWithConfig(corsConfig),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
		middleware.HTTPMetrics(providers.Meter.Meter("finops/http"), log),
	)
	if profiler.IsEnabled() {
		engine.Use(middleware.Profiling())
	}

	systemHandler := handler.NewSystemHandler(cfg.App.Name, serviceVersion)
	systemHandler.AddCheck("database", func(context.Context) error {
		return db.Ping()
	})
	if redisClient != nil {
		systemHandler.AddCheck("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}
	engine.GET("/health", systemHandler.Health)
	engine.GET("/ready", systemHandler.Ready)

	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfig{Enabled: cfg.HTTP.SwaggerEnabled}),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	var apiMiddleware []gin.HandlerFunc
	if cfg.JWT.Enabled {
		jwtConfig := middleware.DefaultJWTConfig(auth.NewVerifier(cfg.JWT))
		jwtConfig.Logger = log
		apiMiddleware = append(apiMiddleware, middleware.JWTAuthWithConfig(jwtConfig), middleware.SpanAttributes())
	} else {
		log.Warn("JWT authentication disabled; API routes are open")
	}

	r := router.NewRouter(engine,
		router.WithAPIVersion("v1"),
		router.WithMiddleware(apiMiddleware...),
	)
	router.RegisterAPI(r, router.Handlers{
		Expenses:   handler.NewAdminExpenseHandler(reconciler, receiptService),
		Allocation: handler.NewAllocationHandler(),
		Clients:    handler.NewClientHandler(clientService, ledgerService),
		Ledger:     handler.NewLedgerHandler(ledgerService),
		System:     systemHandler,
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		log.Info("Shutting down server", zap.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("Server failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("Server exited gracefully")
}
