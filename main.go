// File: petcare/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"petcare/config"
	"petcare/cron"
	"petcare/database"
	bookingRepo "petcare/database/repository/booking"
	catalogRepo "petcare/database/repository/catalog"
	deviceRepo "petcare/database/repository/device"
	"petcare/handlers"
	"petcare/middleware"
	"petcare/routes"
	"petcare/services/availability"
	"petcare/services/booking"
	"petcare/services/catalog"
	"petcare/services/notification"
	"petcare/services/payment"
	"petcare/services/tasks"
	"petcare/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync() //nolint:errcheck

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	database.InitDB()
	utils.InitCache()
	utils.FirebaseInit()

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()
	utils.StartHealthMonitor(rootCtx, 30*time.Second, utils.GetCacheClient(), database.MongoClient)

	// repositories.
	bookings := bookingRepo.NewMongoBookingRepo()
	catalogStore := catalogRepo.NewMongoCatalogRepo()
	devices := deviceRepo.NewMongoDeviceRepo()

	idxCtx, idxCancel := context.WithTimeout(rootCtx, 15*time.Second)
	if err := bookings.EnsureIndexes(idxCtx); err != nil {
		logger.Fatal("main: failed to ensure booking indexes", zap.Error(err))
	}
	idxCancel()

	// services.
	catalogService := catalog.NewCatalogService(
		catalogStore,
		catalog.NewRedisCache(utils.GetCacheClient()),
		config.AppConfig.CatalogCacheTTL,
		logger.Named("catalog"),
	)

	availabilityService := availability.NewAvailabilityService(
		catalogService,
		bookings,
		config.Location(),
		config.AppConfig.AvailabilityLookAheadDays,
		logger.Named("availability"),
	)

	signer := payment.NewSigner(config.AppConfig.PaymentSignatureSecret)
	gateway := payment.NewStripeGateway(config.AppConfig.StripeKey, signer, logger.Named("stripe"))

	queueClient := asynq.NewClient(cron.QueueRedisOpt())
	defer queueClient.Close()
	queueInspector := asynq.NewInspector(cron.QueueRedisOpt())
	defer queueInspector.Close()
	scheduler := tasks.NewReconcileScheduler(
		queueClient,
		queueInspector,
		config.AppConfig.ReconcileDelay,
		config.AppConfig.ReconcileMaxRetry,
		logger.Named("scheduler"),
	)

	notificationService, err := notification.NewDefaultNotificationService(devices, utils.FCMClient, logger.Named("notification"))
	if err != nil {
		logger.Fatal("main: failed to initialize notification service", zap.Error(err))
	}

	bookingService := booking.NewBookingService(
		bookings,
		availabilityService,
		catalogService,
		gateway,
		scheduler,
		notificationService,
		config.AppConfig.PaymentCurrency,
		logger.Named("booking"),
	)

	worker := cron.InitReconcileWorker(bookingService, logger.Named("worker"))

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.RateLimitMiddleware())

	handlerBundle := handlers.NewHandlerBundle(
		handlers.NewBookingHandler(bookingService, availabilityService),
		handlers.NewPaymentWebhookHandler(bookingService, config.AppConfig.StripeWebhookSecret),
	)
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	worker.Shutdown()
	stop()
	if err := database.Disconnect(ctx); err != nil {
		logger.Sugar().Warnf("main: mongo disconnect: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
