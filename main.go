package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wellbook/config"
	"wellbook/cron"
	"wellbook/database"
	appointmentRepo "wellbook/database/repository/appointment"
	deviceRepo "wellbook/database/repository/device"
	"wellbook/handlers"
	"wellbook/routes"
	"wellbook/services/booking"
	"wellbook/services/notification"
	"wellbook/services/tasks"
	"wellbook/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer func() { _ = logger.Sync() }()

	database.InitDB()
	utils.InitRedis()

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	location, err := time.LoadLocation(config.AppConfig.TimeZone)
	if err != nil {
		logger.Sugar().Fatalf("main: invalid TIMEZONE %q: %v", config.AppConfig.TimeZone, err)
	}

	// repositories.
	apptRepo := appointmentRepo.NewMongoAppointmentRepo()
	devRepo := deviceRepo.NewMongoDeviceRepo()
	if err := apptRepo.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: %v", err)
	}
	if err := devRepo.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: %v", err)
	}

	// push notifications.
	fcmClient, err := utils.NewFCMClient(rootCtx)
	if err != nil {
		logger.Sugar().Fatalf("main: %v", err)
	}
	if fcmClient == nil {
		logger.Warn("FIREBASE_CREDENTIALS_PATH not set, push notifications disabled")
	}
	notificationService, err := notification.NewDefaultNotificationService(devRepo, fcmClient, logger)
	if err != nil {
		logger.Sugar().Fatalf("main: %v", err)
	}

	// reminders.
	reminderClient := asynq.NewClient(cron.ReminderRedisOpt())
	defer reminderClient.Close()
	reminderInspector := asynq.NewInspector(cron.ReminderRedisOpt())
	defer reminderInspector.Close()
	reminderWorker := cron.InitReminderWorker(notificationService, apptRepo)

	// payments.
	stripe.Key = config.AppConfig.StripeKey
	var payments booking.DepositProcessor
	if config.AppConfig.DepositAmountCents > 0 {
		if stripe.Key == "" {
			logger.Sugar().Fatalf("main: DEPOSIT_AMOUNT_CENTS is set but STRIPE_KEY is empty")
		}
		payments = booking.NewStripeDepositProcessor(logger)
	}

	appointmentService := &booking.DefaultAppointmentService{
		Repo:               apptRepo,
		Cache:              booking.NewRedisSlotCache(utils.GetCacheClient(), time.Duration(config.AppConfig.SlotCacheTTLSeconds)*time.Second),
		Locker:             booking.NewRedisBookingLocker(utils.GetLockClient(), time.Duration(config.AppConfig.BookingLockSeconds)*time.Second),
		Payments:           payments,
		Notifier:           notificationService,
		Reminders:          tasks.NewAsynqReminderScheduler(reminderClient, reminderInspector),
		Logger:             logger,
		DepositAmountCents: config.AppConfig.DepositAmountCents,
		DepositCurrency:    config.AppConfig.DepositCurrency,
		ReminderLead:       time.Duration(config.AppConfig.ReminderLeadMinutes) * time.Minute,
		Location:           location,
	}

	utils.StartHealthMonitor(rootCtx, 30*time.Second,
		[]*redis.Client{utils.GetCacheClient(), utils.GetLockClient()}, database.MongoClient)

	// Create the Gin router.
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())

	handlerBundle := handlers.NewHandlerBundle(
		handlers.NewAppointmentHandler(appointmentService),
		handlers.NewDeviceHandler(notificationService),
	)
	routes.RegisterRoutes(router, handlerBundle, config.AppConfig.MaxRequestsPerMin)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              "0.0.0.0:" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Starting server", zap.String("addr", srv.Addr))
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}
	reminderWorker.Shutdown()
	stop()
	if err := database.Disconnect(ctx); err != nil {
		logger.Warn("main: mongo disconnect failed", zap.Error(err))
	}

	logger.Info("main: server stopped gracefully")
}
