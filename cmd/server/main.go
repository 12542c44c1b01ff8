package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/stmiyata/seibi-backend/config"
	"github.com/stmiyata/seibi-backend/internal/app/controller"
	"github.com/stmiyata/seibi-backend/internal/app/repository"
	"github.com/stmiyata/seibi-backend/internal/app/service"
	"github.com/stmiyata/seibi-backend/internal/db"
	"github.com/stmiyata/seibi-backend/internal/middleware"
	"github.com/stmiyata/seibi-backend/internal/router"
	"github.com/stmiyata/seibi-backend/internal/scheduler"
	"github.com/stmiyata/seibi-backend/internal/storage"
	"github.com/stmiyata/seibi-backend/internal/ws"
	"github.com/stmiyata/seibi-backend/pkg/lineworks"
	"github.com/stmiyata/seibi-backend/pkg/logger"
	"github.com/stmiyata/seibi-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting SEIBI Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations and seed the initial admin account
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Token revocation works without Redis, tokens then expire naturally
	if cfg.Redis.Enabled {
		if err := redis.Init(&cfg.Redis); err != nil {
			logger.Warn("Redis unavailable, token revocation disabled", map[string]interface{}{
				"error": err.Error(),
			})
		}
		defer redis.Close()
	}

	// Photo storage backend
	var store storage.Storage
	if cfg.Upload.Backend == "s3" {
		store = storage.NewS3Storage(cfg.S3)
		logger.Info("Using S3 photo storage", map[string]interface{}{
			"bucket": cfg.S3.Bucket,
		})
	} else {
		localStore, err := storage.NewLocalStorage(cfg.Upload.Dir)
		if err != nil {
			logger.Fatal("Failed to prepare upload directory", err)
		}
		store = localStore
	}

	// LINE WORKS bot client (disabled when credentials are missing)
	lwClient := lineworks.NewClient(cfg.LineWorks)
	if !lwClient.Enabled() {
		logger.Warn("LINE WORKS credentials missing, notifications disabled", nil)
	}

	// Order event hub for store dashboards
	hub := ws.NewHub()
	go hub.Run()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	locationRepo := repository.NewLocationRepository(db.GetDB())
	vehicleRepo := repository.NewVehicleRepository(db.GetDB())
	orderRepo := repository.NewOrderRepository(db.GetDB())

	// Initialize services
	notifier := service.NewNotificationService(lwClient, locationRepo)
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.TokenExpiry)
	userService := service.NewUserService(userRepo)
	locationService := service.NewLocationService(locationRepo)
	vehicleService := service.NewVehicleService(vehicleRepo)
	orderService := service.NewOrderService(orderRepo, store, notifier, hub)
	statsService := service.NewStatsService(orderRepo, vehicleRepo)

	// Initialize controllers
	authController := controller.NewAuthController(authService)
	userController := controller.NewUserController(userService)
	locationController := controller.NewLocationController(locationService, notifier)
	vehicleController := controller.NewVehicleController(vehicleService)
	orderController := controller.NewOrderController(orderService)
	statsController := controller.NewStatsController(statsService)
	lineWorksController := controller.NewLineWorksController(lwClient)
	wsController := controller.NewWSController(hub)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, userRepo)

	// Daily reminder for orders still in 受注
	if cfg.Scheduler.Enabled {
		digest := scheduler.NewDigestScheduler(cfg.Scheduler.DigestSpec, orderRepo, locationRepo, notifier)
		if err := digest.Start(); err != nil {
			logger.Error("Failed to start order digest scheduler", err)
		} else {
			defer digest.Stop()
		}
	}

	// Setup router
	r := router.NewRouter(
		authController,
		userController,
		locationController,
		vehicleController,
		orderController,
		statsController,
		lineWorksController,
		wsController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
