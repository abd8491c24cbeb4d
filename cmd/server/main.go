package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	dispatchapp "github.com/quickcart/backend/internal/application/dispatch"
	notificationapp "github.com/quickcart/backend/internal/application/notification"
	"github.com/quickcart/backend/internal/infrastructure/cache"
	"github.com/quickcart/backend/internal/infrastructure/config"
	"github.com/quickcart/backend/internal/infrastructure/event"
	"github.com/quickcart/backend/internal/infrastructure/logger"
	"github.com/quickcart/backend/internal/infrastructure/persistence"
	"github.com/quickcart/backend/internal/infrastructure/push"
	"github.com/quickcart/backend/internal/infrastructure/telemetry"
	"github.com/quickcart/backend/internal/interfaces/http/handler"
	"github.com/quickcart/backend/internal/interfaces/http/middleware"
	"github.com/quickcart/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting dispatch service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize tracing
	ctx := context.Background()
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}

	// Connect to database with GORM logging bridged to zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLogLevel)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}()
	log.Info("Database connected",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.DBName),
	)

	// Repositories
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	partnerRepo := persistence.NewGormPartnerRepository(db.DB)
	attemptRepo := persistence.NewGormClaimAttemptRepository(db.DB)
	alertRepo := persistence.NewGormAlertRepository(db.DB)

	// Claim outcome store: redis for multi-node deployments, in-memory
	// otherwise. Idempotent claim retries read decided outcomes from here.
	var outcomes dispatchapp.ClaimOutcomeStore
	var closeOutcomes func() error
	if cfg.Redis.Enabled {
		store, err := cache.NewRedisOutcomeStore(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		outcomes = store
		closeOutcomes = store.Close
		log.Info("Claim outcome store: redis",
			zap.String("host", cfg.Redis.Host),
			zap.Int("port", cfg.Redis.Port),
		)
	} else {
		store := cache.NewInMemoryOutcomeStore()
		outcomes = store
		closeOutcomes = store.Close
		log.Info("Claim outcome store: in-memory")
	}
	defer func() {
		if err := closeOutcomes(); err != nil {
			log.Error("Failed to close claim outcome store", zap.Error(err))
		}
	}()

	// Offer push transport
	var pushSender dispatchapp.PushSender
	if cfg.Push.Endpoint != "" {
		sender, err := push.NewHTTPSender(&push.Config{
			Endpoint:       cfg.Push.Endpoint,
			APIKey:         cfg.Push.APIKey,
			TimeoutSeconds: cfg.Push.TimeoutSeconds,
		})
		if err != nil {
			log.Fatal("Failed to initialize push sender", zap.Error(err))
		}
		pushSender = sender
		log.Info("Offer push transport: http gateway", zap.String("endpoint", cfg.Push.Endpoint))
	} else {
		pushSender = push.NewLogSender(log)
		log.Info("Offer push transport: log only")
	}

	// Event bus and cross-context subscriptions
	eventBus := event.NewInMemoryEventBus(log)

	// Application services
	supervisor := dispatchapp.NewTimeoutSupervisor(log)
	registryService := dispatchapp.NewPartnerRegistryService(partnerRepo, nil, log)
	dispatcherService := dispatchapp.NewDispatcherService(
		orderRepo,
		registryService,
		pushSender,
		supervisor,
		dispatchapp.Config{
			CandidateLimit: cfg.Dispatch.CandidateLimit,
			OfferWindow:    cfg.Dispatch.OfferWindow,
			MaxAttempts:    cfg.Dispatch.MaxAttempts,
		},
		log,
	)
	claimService := dispatchapp.NewClaimService(orderRepo, attemptRepo, outcomes, log)
	alertService := notificationapp.NewAlertService(alertRepo, log)

	dispatcherService.SetEventPublisher(eventBus)
	claimService.SetEventPublisher(eventBus)

	// Dispatch lifecycle events feed the seller alert inbox
	dispatchEvents := notificationapp.NewDispatchEventHandler(alertService, log)
	eventBus.Subscribe(dispatchEvents, dispatchEvents.EventTypes()...)

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Offer deadline timers live in memory; re-arm timers for any offers
	// that were outstanding when the previous process stopped. Already
	// expired deadlines fire immediately through the normal expiry path.
	resumed, err := dispatcherService.ResumeOutstandingOffers(ctx)
	if err != nil {
		log.Fatal("Failed to resume outstanding offers", zap.Error(err))
	}
	if resumed > 0 {
		log.Info("Resumed outstanding offer deadlines", zap.Int("count", resumed))
	}

	// HTTP handlers
	orderHandler := handler.NewOrderHandler(dispatcherService, claimService)
	partnerHandler := handler.NewPartnerHandler(registryService, claimService)
	alertHandler := handler.NewAlertHandler(alertService)
	systemHandler := handler.NewSystemHandler()

	// Register custom validators
	middleware.SetupValidator()

	// Gin engine
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Failed to set trusted proxies", zap.Error(err))
	}

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		logger.GinMiddleware(log),
		middleware.Secure(),
		middleware.CORSWithConfig(corsConfig),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
		middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		}),
		middleware.SpanErrorMarker(),
	)

	// Health check
	engine.GET("/health", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "database unreachable",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"app":    cfg.App.Name,
		})
	})

	// API routes
	orders := router.NewDomainGroup("orders", "/orders").
		POST("", orderHandler.RegisterOrder).
		GET("/unassigned", orderHandler.UnassignedOrders).
		GET("/:orderID", orderHandler.GetOrder).
		POST("/:orderID/dispatch", orderHandler.Dispatch).
		GET("/:orderID/claims", orderHandler.ClaimAuditTrail)

	partner := router.NewDomainGroup("partner", "/partner").
		POST("/status", partnerHandler.UpdateStatus).
		POST("/token", partnerHandler.RefreshToken).
		POST("/orders/:orderID/accept", partnerHandler.AcceptOrder)

	partners := router.NewDomainGroup("partners", "/partners").
		POST("", partnerHandler.Register).
		GET("/:partnerID", partnerHandler.GetPartner)

	seller := router.NewDomainGroup("seller", "/seller").
		GET("/alerts", alertHandler.ListAlerts).
		POST("/alerts/:alertID/ack", alertHandler.AcknowledgeAlert)

	system := router.NewDomainGroup("system", "/system").
		GET("/info", systemHandler.GetSystemInfo).
		GET("/ping", systemHandler.Ping)

	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(orders).
		Register(partner).
		Register(partners).
		Register(seller).
		Register(system).
		Setup()

	// HTTP server
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", zap.Error(err))
	}

	// Pending offer timers fire nothing after Stop; in-flight expiry
	// handlers are allowed to finish
	if err := supervisor.Stop(shutdownCtx); err != nil {
		log.Error("Timeout supervisor shutdown failed", zap.Error(err))
	}

	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Event bus shutdown failed", zap.Error(err))
	}

	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Tracer provider shutdown failed", zap.Error(err))
	}

	log.Info("Shutdown complete")
}
