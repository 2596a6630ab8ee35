package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"thermolab/internal/config"
	"thermolab/internal/handlers"
	"thermolab/internal/middleware"
	"thermolab/internal/repository"
	"thermolab/internal/service"
	"thermolab/internal/worker"
	"thermolab/pkg/database"
	"thermolab/pkg/redis"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
)

func main() {
	// Загрузка .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	log.Println("=== Thermolab Backend Starting ===")

	// Загрузка конфигурации; без секретов не стартуем
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	// Подключение к PostgreSQL
	db, err := database.Connect(cfg.DB)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}()

	// Подключение к Redis
	redisClient, err := redis.Connect(cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer redisClient.Close()

	// Миграция моделей
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Инициализация репозиториев
	deviceRepo := repository.NewDeviceRepository(db)
	readingRepo := repository.NewReadingRepository(db)
	userRepo := repository.NewUserRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient)

	// Инициализация сервисов
	authService := service.NewAuthService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL,
		cfg.Auth.AdminEmail, cfg.Auth.AdminPassword, cfg.Auth.AdminName)
	deviceService := service.NewDeviceService(deviceRepo, readingRepo, cacheRepo,
		cfg.Telemetry.OnlineWindow, cfg.Telemetry.DeviceListTTL)
	telemetryService := service.NewTelemetryService(deviceRepo, readingRepo, cfg.Telemetry.Retention)

	if err := authService.SeedAdmin(context.Background()); err != nil {
		log.Fatal("Failed to seed admin user:", err)
	}

	// Инициализация хендлеров
	authHandler := handlers.NewAuthHandler(authService)
	deviceHandler := handlers.NewDeviceHandler(deviceService)
	telemetryHandler := handlers.NewTelemetryHandler(telemetryService)
	dashboardHandler := handlers.NewDashboardHandler(deviceService, cacheRepo)

	// Фоновые задачи
	scheduler := worker.NewScheduler()

	if cfg.Workers.RetentionEnabled {
		scheduler.AddWorker(worker.NewRetentionWorker(telemetryService, cfg.Workers.RetentionInterval))
		log.Printf("Retention Worker enabled (interval: %v)", cfg.Workers.RetentionInterval)
	}

	if cfg.Workers.SnapshotEnabled {
		scheduler.AddWorker(worker.NewSnapshotWorker(deviceService, cacheRepo, cfg.Workers.SnapshotInterval))
		log.Printf("Snapshot Worker enabled (interval: %v)", cfg.Workers.SnapshotInterval)
	}

	go scheduler.Start()
	defer scheduler.Stop()

	// Инициализация Gin
	if cfg.App.Debug {
		gin.SetMode(gin.DebugMode)
		log.Println("Running in DEBUG mode")
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	// CORS для React фронтенда
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", cfg.App.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Общий rate limiting (только для продакшена)
	if !cfg.App.Debug {
		limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst)
		r.Use(middleware.RateLimitMiddleware(limiter))
		log.Printf("Rate limiting enabled: %d req/sec, burst: %d",
			cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}

	adminOnly := middleware.AdminOnly(authService)

	// Аутентификация
	r.POST("/auth/login", authHandler.Login)

	// Прием телеметрии: открыт для устройств, лимит отдельно по IP
	ingestLimiter := middleware.NewIPRateLimiter(
		rate.Limit(cfg.RateLimit.IngestPerSecond), cfg.RateLimit.IngestBurst)

	devices := r.Group("/devices")
	devices.POST("/data", middleware.IPRateLimitMiddleware(ingestLimiter), telemetryHandler.ReceiveData)

	// Реестр устройств: только админ
	registry := devices.Group("", adminOnly)
	registry.POST("/add", deviceHandler.AddDevice)
	registry.GET("/all", deviceHandler.GetAllDevices)
	registry.GET("/:device_id", deviceHandler.GetDevice)
	registry.PUT("/:device_id", deviceHandler.UpdateDevice)
	registry.DELETE("/:device_id", deviceHandler.RemoveDevice)
	registry.GET("/:device_id/readings", telemetryHandler.GetReadings)
	registry.GET("/:device_id/export", telemetryHandler.ExportReadings)

	// Дашборд
	r.GET("/dashboard", adminOnly, dashboardHandler.GetDashboard)

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	// Системная статистика
	r.GET("/system/stats", adminOnly, func(c *gin.Context) {
		ctx := c.Request.Context()

		redisStats, _ := redis.GetStats(redisClient)
		deviceCount, _ := deviceRepo.Count(ctx)
		readingCount, _ := readingRepo.Count(ctx)

		c.JSON(200, gin.H{
			"database": gin.H{
				"devices":  deviceCount,
				"readings": readingCount,
			},
			"redis": redisStats,
			"workers": gin.H{
				"retention_enabled": cfg.Workers.RetentionEnabled,
				"snapshot_enabled":  cfg.Workers.SnapshotEnabled,
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost:%s", cfg.App.Port)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed to start:", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited properly")
}
