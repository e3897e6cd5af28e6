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

	"github.com/ikkim/bookcity-backend/config"
	"github.com/ikkim/bookcity-backend/internal/app/controller"
	"github.com/ikkim/bookcity-backend/internal/app/repository"
	"github.com/ikkim/bookcity-backend/internal/app/service"
	"github.com/ikkim/bookcity-backend/internal/db"
	"github.com/ikkim/bookcity-backend/internal/middleware"
	"github.com/ikkim/bookcity-backend/internal/notify"
	"github.com/ikkim/bookcity-backend/internal/router"
	"github.com/ikkim/bookcity-backend/internal/scheduler"
	"github.com/ikkim/bookcity-backend/internal/storage"
	"github.com/ikkim/bookcity-backend/internal/websocket"
	"github.com/ikkim/bookcity-backend/pkg/logger"
	"github.com/ikkim/bookcity-backend/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	logFormat := "json"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
		logFormat = "console"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      logFormat,
		EnableColor: logFormat == "console",
	})

	logger.Info("Starting BookCity Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
		"timezone":    cfg.Business.Location.String(),
	})

	// Initialize database
	conn, err := db.Initialize(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(conn); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations and bootstrap the first admin
	if err := db.Migrate(conn, cfg.Admin); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Initialize repositories
	gateway := db.NewGateway(conn)
	userRepo := repository.NewUserRepository(conn)
	publicationRepo := repository.NewPublicationRepository(conn)
	customerRepo := repository.NewCustomerRepository(conn)
	stockRepo := repository.NewStockRepository(conn)
	orderRepo := repository.NewOrderRepository(conn)
	subscriptionRepo := repository.NewSubscriptionRepository(conn)
	adRepo := repository.NewAdvertisementRepository(conn)
	billRepo := repository.NewBillRepository(conn)
	reportRepo := repository.NewReportRepository(gateway)

	// Optional integrations
	var locker service.Locker
	if cfg.Redis.Enabled() {
		client, err := redis.Connect(&cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", err)
		}
		defer client.Close()
		locker = redis.NewLocker(client)
	} else {
		logger.Warn("Redis not configured, subscription sweep runs without a cross-instance lock")
	}

	var archiver service.ReportArchiver
	if cfg.S3.Enabled() {
		archiver = storage.NewS3Storage(cfg.S3)
		logger.Info("Report archiving enabled", map[string]interface{}{
			"bucket": cfg.S3.Bucket,
		})
	}

	hub := websocket.NewHub()
	go hub.Run()
	defer hub.Stop()

	notifiers := notify.Fanout{hub}
	if cfg.Slack.Enabled() {
		notifiers = append(notifiers, notify.NewSlackNotifier(cfg.Slack.BotToken, cfg.Slack.ChannelID))
		logger.Info("Slack sweep notifications enabled", map[string]interface{}{
			"channel": cfg.Slack.ChannelID,
		})
	}

	// Initialize services
	policy := service.NewOrderPolicy(cfg.Business)
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)
	publicationService := service.NewPublicationService(publicationRepo)
	stockService := service.NewStockService(stockRepo)
	customerService := service.NewCustomerService(customerRepo)
	orderService := service.NewOrderService(conn, orderRepo, customerRepo, stockRepo, billRepo, policy)
	subscriptionService := service.NewSubscriptionService(
		gateway,
		subscriptionRepo,
		customerRepo,
		publicationRepo,
		orderRepo,
		stockRepo,
		billRepo,
		policy,
		locker,
		notifiers,
	)
	adService := service.NewAdvertisementService(gateway, adRepo, customerRepo, publicationRepo, billRepo, cfg.Business.AdRatePerWord)
	billingService := service.NewBillingService(gateway, billRepo, orderRepo, customerRepo)
	reportService := service.NewReportService(reportRepo, publicationRepo, customerRepo, orderRepo, adRepo, archiver, cfg.Business.Location)

	// Initialize controllers
	controllers := router.Controllers{
		Auth:          controller.NewAuthController(authService),
		Publication:   controller.NewPublicationController(publicationService),
		Customer:      controller.NewCustomerController(customerService, billingService),
		Stock:         controller.NewStockController(stockService),
		Order:         controller.NewOrderController(orderService),
		Subscription:  controller.NewSubscriptionController(subscriptionService, cfg.Business.Location),
		Advertisement: controller.NewAdvertisementController(adService),
		Bill:          controller.NewBillController(billingService),
		Report:        controller.NewReportController(reportService),
		Events:        controller.NewEventsController(hub, cfg.JWT.Secret, cfg.CORS.AllowedOrigins),
	}

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Setup router
	r := router.NewRouter(controllers, authMiddleware, cfg)
	engine := r.Setup()

	// Start the subscription scheduler
	if cfg.Scheduler.SubscriptionSweepEnabled {
		sweepScheduler := scheduler.NewSubscriptionScheduler(subscriptionService, cfg.Scheduler.SubscriptionSweepCron, cfg.Business.Location)
		if err := sweepScheduler.Start(); err != nil {
			logger.Fatal("Failed to start subscription scheduler", err)
		}
		defer sweepScheduler.Stop()
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: engine,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shut down", err)
	}
	logger.Info("Server stopped successfully")
}
