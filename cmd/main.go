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

	"andromeda/internal/clients"
	"andromeda/internal/config"
	"andromeda/internal/handlers"
	"andromeda/internal/middleware"
	"andromeda/internal/repository"
	"andromeda/internal/service"
	"andromeda/internal/worker"
	"andromeda/pkg/database"
	"andromeda/pkg/redis"

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

	log.Println("=== Andromeda Data Requests Backend Starting ===")

	// Загрузка конфигурации
	cfg := config.Load()

	// Подключение к PostgreSQL
	db, err := database.Connect(database.Config{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		DBName:   cfg.DB.DBName,
		SSLMode:  cfg.DB.SSLMode,
	})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}()

	// Подключение к Redis
	redisClient, err := redis.Connect(redis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer redisClient.Close()

	// Регистрация схемы: таблицы и индексы создаются на старте,
	// а не лениво при первом обращении
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Инициализация репозиториев
	dataRequestRepo := repository.NewDataRequestRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	followerRepo := repository.NewFollowerRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient)

	// Клиент каталога открытых данных
	catalogClient := clients.NewCatalogClient(clients.CatalogConfig{
		BaseURL: cfg.Catalog.BaseURL,
		Token:   cfg.Catalog.Token,
		Timeout: cfg.Catalog.Timeout,
	})

	// Инициализация сервисов
	dataRequestService := service.NewDataRequestService(
		dataRequestRepo, commentRepo, followerRepo, cacheRepo, catalogClient,
		service.DataRequestConfig{
			TitleMaxLength:       cfg.Requests.TitleMaxLength,
			DescriptionMaxLength: cfg.Requests.DescriptionMaxLength,
			PerPage:              cfg.Requests.PerPage,
			SearchRows:           cfg.Catalog.SearchRows,
		},
	)
	commentService := service.NewCommentService(commentRepo, dataRequestRepo, cfg.Requests.CommentMaxLength)
	followerService := service.NewFollowerService(followerRepo, dataRequestRepo)
	exportService := service.NewExportService(dataRequestRepo, cfg.Requests.ExportDir)

	// Инициализация воркеров (фоновые задачи)
	scheduler := worker.NewScheduler()

	if cfg.Workers.StatsEnabled {
		scheduler.AddWorker(worker.NewStatsWorker(dataRequestService, cfg.Workers.StatsInterval))
		log.Printf("Stats Worker enabled (interval: %v)", cfg.Workers.StatsInterval)
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

	// CORS для фронтенда каталога
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", cfg.App.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-User-Id", "X-User-Role"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Rate limiting (только для продакшена)
	if !cfg.App.Debug {
		limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst)
		r.Use(middleware.RateLimitMiddleware(limiter))
		log.Printf("Rate limiting enabled: %d req/sec, burst: %d",
			cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}

	r.Use(middleware.Identity())

	dataRequestHandler := handlers.NewDataRequestHandler(dataRequestService, exportService)
	commentHandler := handlers.NewCommentHandler(commentService)
	followerHandler := handlers.NewFollowerHandler(followerService)

	// Группа API v1
	api := r.Group("/api/v1")

	api.GET("/datarequests", dataRequestHandler.List)
	api.GET("/datarequests/export", dataRequestHandler.Export)
	api.GET("/datarequests/:id", dataRequestHandler.Show)
	api.GET("/datarequests/:id/close", dataRequestHandler.CloseCandidates)
	api.GET("/datarequests/:id/comments", commentHandler.List)

	authorized := api.Group("", middleware.RequireUser())
	authorized.POST("/datarequests", dataRequestHandler.Create)
	authorized.PUT("/datarequests/:id", dataRequestHandler.Update)
	authorized.DELETE("/datarequests/:id", dataRequestHandler.Delete)
	authorized.POST("/datarequests/:id/close", dataRequestHandler.Close)
	authorized.POST("/datarequests/:id/comments", commentHandler.Create)
	authorized.PUT("/datarequests/:id/comments/:comment_id", commentHandler.Update)
	authorized.DELETE("/datarequests/:id/comments/:comment_id", commentHandler.Delete)
	authorized.POST("/datarequests/:id/follow", followerHandler.Follow)
	authorized.DELETE("/datarequests/:id/follow", followerHandler.Unfollow)

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"services": gin.H{
				"database": "connected",
				"redis":    "connected",
				"catalog":  cfg.Catalog.BaseURL,
			},
		})
	})

	// Системная статистика
	api.GET("/system/stats", func(c *gin.Context) {
		ctx := c.Request.Context()

		redisStats, _ := redis.GetStats(redisClient)

		stats, err := dataRequestService.Stats(ctx)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to get stats"})
			return
		}

		c.JSON(200, gin.H{
			"datarequests": stats,
			"redis":        redisStats,
			"workers": gin.H{
				"stats_enabled": cfg.Workers.StatsEnabled,
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
		log.Printf("API available at http://localhost:%s/api/v1", cfg.App.Port)
		log.Printf("Health check: http://localhost:%s/api/v1/health", cfg.App.Port)

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
