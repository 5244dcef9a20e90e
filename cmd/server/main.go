package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"backend/internal/adapters"
	"backend/internal/api/handlers"
	"backend/internal/config"
	"backend/internal/jobs"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/internal/websocket"
	"backend/internal/worker"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	fiberws "github.com/gofiber/websocket/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize PostgreSQL with connection pooling
	db, err := initPostgres(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	log.Println("✓ Connected to PostgreSQL")

	// Initialize Redis
	redisClient, err := initRedis(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	log.Println("✓ Connected to Redis")

	// Initialize repositories
	postgresRepo := repository.NewPostgresRepository(db)
	redisRepo := repository.NewRedisRepository(redisClient)

	// Run migrations
	if err := postgresRepo.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("✓ Database migrations completed")

	// Initialize Worker Pool for snapshot persistence
	workerCount := 10
	queueSize := 500
	workerPool := worker.NewWorkerPool(workerCount, queueSize, postgresRepo)
	workerPool.Start()

	// Initialize stat provider clients
	leetcodeClient := adapters.NewLeetCodeClient(cfg.Adapters.LeetCodeBaseURL, cfg.Leaderboard.FetchTimeout)
	githubClient := adapters.NewGitHubClient(cfg.Adapters.GitHubBaseURL, cfg.Adapters.GitHubToken, cfg.Leaderboard.FetchTimeout)

	// Initialize WebSocket Hub
	hub := websocket.NewHub(redisRepo)
	hubCtx, hubCancel := context.WithCancel(context.Background())
	defer hubCancel()
	go hub.Run(hubCtx)

	// Initialize service
	leaderboardService := service.NewLeaderboardService(
		postgresRepo,
		redisRepo,
		workerPool,
		leetcodeClient,
		githubClient,
		cfg.Leaderboard,
	)

	// Initialize background refresher (keeps caches warm, bounds provider load)
	refresher := jobs.NewRefreshManager(leaderboardService, jobs.RefresherConfig{
		Interval: cfg.Leaderboard.RefreshInterval,
	})

	refreshCtx, refreshCancel := context.WithCancel(context.Background())
	defer refreshCancel()
	if err := refresher.Start(refreshCtx); err != nil {
		log.Printf("⚠️ Failed to start refresher: %v", err)
	}

	// Initialize handlers
	roomHandler := handlers.NewRoomHandler(postgresRepo, redisRepo, leaderboardService, cfg.Leaderboard)
	leaderboardHandler := handlers.NewLeaderboardHandler(leaderboardService, hub)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:               "Leadcode Backend",
		DisableStartupMessage: false,
		ErrorHandler:          customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	// Routes
	api := app.Group("/api/v1")

	// Room routes
	api.Post("/rooms", roomHandler.CreateRoom)
	api.Get("/rooms", roomHandler.ListRooms)
	api.Get("/rooms/code/:code", roomHandler.GetRoomByCode)
	api.Get("/rooms/:id", roomHandler.GetRoom)
	api.Post("/rooms/:id/join", roomHandler.JoinRoom)
	api.Put("/rooms/:id/leave", roomHandler.LeaveRoom)
	api.Put("/rooms/:id/weights", roomHandler.UpdateWeights)

	// Leaderboard routes
	api.Get("/rooms/:id/leaderboard", leaderboardHandler.GetLeaderboard)
	api.Post("/rooms/:id/leaderboard/refresh", leaderboardHandler.RefreshLeaderboard)
	api.Get("/participants/:id/stats", leaderboardHandler.GetParticipantStats)
	api.Get("/health", leaderboardHandler.HealthCheck)

	// WebSocket route with upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if fiberws.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", fiberws.New(func(c *fiberws.Conn) {
		leaderboardHandler.HandleWebSocket(c)
	}))

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Leadcode Backend API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/rooms",
				"GET /api/v1/rooms",
				"GET /api/v1/rooms/code/:code",
				"GET /api/v1/rooms/:id",
				"POST /api/v1/rooms/:id/join",
				"PUT /api/v1/rooms/:id/leave",
				"PUT /api/v1/rooms/:id/weights",
				"GET /api/v1/rooms/:id/leaderboard",
				"POST /api/v1/rooms/:id/leaderboard/refresh",
				"GET /api/v1/participants/:id/stats",
				"GET /api/v1/health",
				"WS /ws (WebSocket)",
			},
			"websocket_clients": hub.GetClientCount(),
		})
	})

	// Graceful shutdown with worker pool flushing
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		log.Println("\n🛑 Shutting down server...")

		// First, stop the background refresher
		log.Println("⏹️ Stopping refresher...")
		refresher.Stop()

		// Second, stop accepting new HTTP requests
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := app.ShutdownWithContext(ctx); err != nil {
			log.Printf("Server forced to shutdown: %v", err)
		}

		// Third, gracefully shutdown worker pool (flush pending snapshots)
		log.Println("🔄 Flushing worker pool (pending snapshot writes)...")
		if err := workerPool.Shutdown(30 * time.Second); err != nil {
			log.Printf("Worker pool shutdown error: %v", err)
		}

		// Finally, close database connections
		if err := postgresRepo.Close(); err != nil {
			log.Printf("Error closing PostgreSQL: %v", err)
		}
		if err := redisRepo.Close(); err != nil {
			log.Printf("Error closing Redis: %v", err)
		}

		log.Println("✓ Server shutdown complete")
	}()

	// Start server
	port := cfg.Server.Port
	log.Printf("🚀 Server starting on port %d...", port)
	if err := app.Listen(fmt.Sprintf(":%d", port)); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// initPostgres initializes PostgreSQL connection with connection pooling
func initPostgres(cfg *config.Config) (*gorm.DB, error) {
	dsn := cfg.GetDSN()

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// Max connections should cover the worker pool plus request handlers
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(2 * time.Minute)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, err
	}

	return db, nil
}

// initRedis initializes Redis connection with connection pooling
func initRedis(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.GetRedisAddr(),
		Username:     cfg.Redis.Username,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     20,
		MinIdleConns: 5,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return client, nil
}

// customErrorHandler handles errors globally
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   "Request failed",
		"message": err.Error(),
	})
}
