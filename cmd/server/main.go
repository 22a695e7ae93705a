package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/urbandrives/storefront/internal/application"
	"github.com/urbandrives/storefront/internal/backend"
	"github.com/urbandrives/storefront/internal/checkout"
	"github.com/urbandrives/storefront/internal/config"
	"github.com/urbandrives/storefront/internal/domain/rental"
	storefrontEvents "github.com/urbandrives/storefront/internal/events"
	"github.com/urbandrives/storefront/internal/handler"
	"github.com/urbandrives/storefront/internal/platform/auth"
	"github.com/urbandrives/storefront/internal/platform/cache"
	"github.com/urbandrives/storefront/internal/platform/database"
	"github.com/urbandrives/storefront/internal/platform/health"
	"github.com/urbandrives/storefront/internal/platform/kafka"
	"github.com/urbandrives/storefront/internal/platform/logger"
	"github.com/urbandrives/storefront/internal/platform/metrics"
	"github.com/urbandrives/storefront/internal/platform/middleware"
	"github.com/urbandrives/storefront/internal/repository"
)

const serviceName = "service-storefront"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting "+serviceName,
		zap.String("port", cfg.Port),
		zap.String("backend", cfg.Backend.BaseURL),
		zap.String("token_mode", cfg.Token.Mode),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database
	db, err := database.Connect(cfg.DBConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(&repository.UserModel{}, &repository.SessionModel{}, &repository.PaymentModel{}); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(cfg.DBConfig.DatabaseURL(), cfg.MigrationsDir, log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Connect to Redis
	redisClient, err := cache.NewClient(ctx, cfg.RedisConfig)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer func() { _ = redisClient.Close() }()

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Initialize repositories
	userRepo := repository.NewGormUserRepository(db)
	sessionRepo := repository.NewGormSessionRepository(db)
	paymentRepo := repository.NewGormPaymentRepository(db)
	sessionCache := repository.NewRedisSessionCache(redisClient, "storefront")

	// Initialize session service
	jwtManager := auth.NewJWTManager(cfg.JWTConfig.Secret, cfg.JWTConfig.Issuer, cfg.JWTConfig.TTL)
	sessionService := application.NewSessionService(
		userRepo,
		sessionRepo,
		sessionCache,
		jwtManager,
		cfg.SessionTTL,
		cfg.AdminEmails,
		log,
	)

	// Initialize backend client
	var tokens backend.TokenSource
	switch cfg.Token.Mode {
	case config.TokenModeLocal:
		tokens = backend.NewIssuerTokenSource(sessionService)
	default:
		tokens = backend.NewHTTPTokenSource(
			cfg.Token.BaseURL+"/auth/token",
			&http.Client{Timeout: cfg.Backend.Timeout},
			log,
		)
	}
	if cfg.Token.CacheEnabled {
		cached := backend.NewCachingTokenSource(tokens, cfg.Token.CacheMargin)
		sessionService.OnSignOut(cached.Forget)
		tokens = cached
	}
	gateway := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout, tokens, log)

	// Initialize application services
	pricing := rental.NewDailyRatePricing()
	bookingService := application.NewBookingService(gateway, pricing, kafkaProducer, log)
	vehicleService := application.NewVehicleService(gateway, pricing, log)
	reportService := application.NewReportService(gateway, log)
	stripeCheckout := checkout.NewStripeCheckout(
		cfg.Stripe.SecretKey,
		cfg.Stripe.SuccessURL,
		cfg.Stripe.CancelURL,
		log,
	)
	paymentService := application.NewPaymentService(
		paymentRepo,
		gateway,
		stripeCheckout,
		kafkaProducer,
		cfg.Stripe.Currency,
		log,
	)

	// Initialize and start payment event consumer in a goroutine
	paymentConsumer := storefrontEvents.NewPaymentEventConsumer(
		cfg.KafkaConfig.Brokers,
		cfg.KafkaConfig.GroupID+"-payments",
		paymentService,
		log,
	)
	defer func() { _ = paymentConsumer.Close() }()

	go func() {
		log.Info("starting payment event consumer")
		if err := paymentConsumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("payment event consumer error", zap.Error(err))
		}
	}()

	// Purge expired sessions hourly
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n, err := sessionService.PurgeExpired(ctx); err != nil {
					log.Warn("failed to purge expired sessions", zap.Error(err))
				} else if n > 0 {
					log.Info("purged expired sessions", zap.Int64("count", n))
				}
			}
		}
	}()

	// Initialize HTTP handlers
	limiter := middleware.NewIPRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	go limiter.RunEviction(ctx, time.Minute)
	idempotency := middleware.Idempotency(cache.NewIdempotencyStore(redisClient, "storefront"), log)

	authHandler := handler.NewAuthHandler(sessionService, cfg.SessionTTL, cfg.IsProduction())
	vehicleHandler := handler.NewVehicleHandler(vehicleService)
	bookingHandler := handler.NewBookingHandler(bookingService, idempotency)
	paymentHandler := handler.NewPaymentHandler(paymentService, cfg.Stripe.WebhookSecret, log)
	adminHandler := handler.NewAdminHandler(bookingService, reportService, paymentService)

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.CORSMiddleware(cfg.CORSOrigins))
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.SessionMiddleware(sessionService))
	router.NoRoute(middleware.NotFound())

	// Register health check and metrics routes
	healthHandler := health.NewHandler(db, serviceName)
	healthHandler.AddCheck("redis", health.PingFunc(func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	}))
	healthHandler.RegisterRoutes(router)
	router.GET("/metrics", metrics.Handler())

	// Register routes
	authHandler.RegisterRoutes(&router.RouterGroup, limiter.Middleware())
	vehicleHandler.RegisterRoutes(&router.RouterGroup)
	bookingHandler.RegisterRoutes(&router.RouterGroup)
	paymentHandler.RegisterRoutes(&router.RouterGroup)
	adminHandler.RegisterRoutes(&router.RouterGroup)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down " + serviceName + "...")

	// Stop the consumer and background jobs
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info(serviceName + " stopped")
}
