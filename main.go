package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/manthanm991/Task-Management/internal/cache"
	"github.com/manthanm991/Task-Management/internal/config"
	"github.com/manthanm991/Task-Management/internal/database"
	"github.com/manthanm991/Task-Management/internal/handlers"
	"github.com/manthanm991/Task-Management/internal/middleware"
	"github.com/manthanm991/Task-Management/internal/models"
	"github.com/manthanm991/Task-Management/internal/monitoring"
	"github.com/manthanm991/Task-Management/internal/repositories"
	"github.com/manthanm991/Task-Management/internal/services"
	"github.com/manthanm991/Task-Management/internal/worker"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// Application holds all application dependencies and state.
type Application struct {
	Config *config.Config
	DB     *gorm.DB
	Pool   *database.DatabasePool
	Cache  cache.Cache
	Redis  *redis.Client
	Router *gin.Engine
	Server *http.Server
	Worker *worker.Worker
	Queue  *worker.JobQueue

	TaskService     services.TaskService
	AuthService     services.AuthService
	RegisterService services.RegisterService
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize application: %v", err)
	}

	app.setupRoutes()
	app.startServer()
}

func initializeApplication(cfg *config.Config) (*Application, error) {
	app := &Application{
		Config: cfg,
	}

	log.Println("🚀 Initializing task tracker backend...")
	log.Printf("📋 Environment: %s", cfg.Server.Environment)

	pool, err := database.NewDatabasePool(&database.PoolConfig{
		DSN:             cfg.GetDatabaseDSN(),
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
	})
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	app.Pool = pool
	app.DB = pool.DB
	log.Println("✅ Database connected and configured")

	migrationConfig := &repositories.MigrationConfig{
		MigrationsPath: "file://migrations",
		DBName:         cfg.Database.Name,
		MaxRetries:     3,
		RetryDelay:     2 * time.Second,
	}
	if err := repositories.RunMigrations(app.DB, migrationConfig); err != nil {
		return nil, fmt.Errorf("database migration failed: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:         cfg.GetRedisAddr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		MaxRetries:   cfg.Redis.MaxRetries,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("⚠️  Redis unavailable: %v (continuing with memory cache only)", err)
		redisClient = nil
	} else {
		app.Redis = redisClient
		log.Println("✅ Redis connected")
	}

	if redisClient != nil {
		app.Cache = cache.NewMultiLevelCache(cache.NewRedisCacheWithClient(redisClient))
		log.Println("✅ Multi-level cache initialized (Memory L1 + Redis L2)")
	} else {
		app.Cache = cache.NewMultiLevelCache(nil)
		log.Println("✅ Memory cache initialized (Redis unavailable)")
	}

	app.AuthService = services.NewAuthService()
	app.RegisterService = services.NewRegisterService()
	app.TaskService = services.NewCachedTaskService(services.NewTaskService(), app.Cache)
	log.Println("✅ All services initialized")

	if redisClient != nil {
		app.Queue = worker.NewJobQueue(redisClient)
		app.Worker = worker.NewWorker(worker.WorkerConfig{
			RedisClient: redisClient,
			Queues:      cfg.Worker.Queues,
		})
		app.Worker.RegisterHandler(worker.JobTypeTaskReminder, taskReminderHandler)
		app.Worker.RegisterHandler(worker.JobTypeTokenCleanup, tokenCleanupHandler(app.DB))
		app.Worker.Start(cfg.Worker.Concurrency)

		if err := app.Queue.Enqueue(worker.QueueMaintenance, worker.JobTypeTokenCleanup, nil); err != nil {
			log.Printf("⚠️  Failed to enqueue token cleanup job: %v", err)
		}
		log.Println("✅ Background worker started")
	}

	return app, nil
}

func taskReminderHandler(ctx context.Context, job *worker.Job) error {
	log.Printf("🔔 Task %v (%v) is due for user %v",
		job.Payload["task_id"], job.Payload["title"], job.Payload["user_id"])
	return nil
}

func tokenCleanupHandler(db *gorm.DB) worker.JobHandler {
	return func(ctx context.Context, job *worker.Job) error {
		result := db.WithContext(ctx).Where("expires_at < ?", time.Now()).Delete(&models.Token{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			log.Printf("🧹 Removed %d expired refresh tokens", result.RowsAffected)
		}
		return nil
	}
}

func (app *Application) setupRoutes() {
	r := gin.New()

	r.Use(gin.Logger())
	r.Use(monitoring.MetricsMiddleware())
	r.Use(middleware.RecoveryWithLog())
	r.Use(middleware.SecureHeader())

	if app.Config.RateLimit.Enabled {
		rateLimit := rate.Limit(float64(app.Config.RateLimit.RequestsPerMin) / 60.0)
		r.Use(middleware.RateLimiter(rateLimit, app.Config.RateLimit.BurstSize))
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", app.healthHandler())
	r.GET("/ready", app.readinessHandler())
	r.GET("/metrics", monitoring.MetricsHandler())

	v1 := r.Group("/api/v1")

	authRoutes := v1.Group("/auth")
	{
		registerHandler := handlers.NewRegisterHandler(app.DB, app.RegisterService)
		authHandler := handlers.NewAuthHandler(app.DB, app.AuthService)
		refreshHandler := handlers.NewRefreshHandler(app.DB, app.AuthService)

		authRoutes.POST("/signup", registerHandler.Signup)
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.POST("/refresh", refreshHandler.Refresh)
	}

	protected := v1.Group("")
	protected.Use(middleware.AuthRequired())
	{
		taskHandler := handlers.NewTaskHandler(app.DB, app.TaskService)
		if app.Queue != nil {
			taskHandler = taskHandler.WithReminderQueue(app.Queue)
		}
		taskRoutes := protected.Group("/tasks")
		{
			taskRoutes.POST("", taskHandler.CreateTask)
			taskRoutes.GET("", taskHandler.GetTasks)
			taskRoutes.GET("/:id", taskHandler.GetTaskByID)
			taskRoutes.PUT("/:id", taskHandler.UpdateTask)
			taskRoutes.DELETE("/:id", taskHandler.DeleteTask)
		}

		logoutHandler := handlers.NewLogoutHandler(app.DB, app.AuthService)
		protected.POST("/auth/logout", logoutHandler.Logout)
	}

	app.Router = r
}

func (app *Application) startServer() {
	addr := app.Config.GetServerAddr()

	app.Server = &http.Server{
		Addr:         addr,
		Handler:      app.Router,
		ReadTimeout:  app.Config.Server.ReadTimeout,
		WriteTimeout: app.Config.Server.WriteTimeout,
		IdleTimeout:  app.Config.Server.IdleTimeout,
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		log.Println("🛑 Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := app.Server.Shutdown(ctx); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}

		app.cleanup()
		log.Println("✅ Server stopped gracefully")
	}()

	log.Printf("🚀 Server starting on %s", addr)
	log.Printf("📊 Metrics available at http://%s/metrics", addr)
	log.Printf("💚 Health check at http://%s/health", addr)

	if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("❌ Server failed to start: %v", err)
	}
}

func (app *Application) cleanup() {
	log.Println("🧹 Cleaning up resources...")

	if app.Worker != nil {
		app.Worker.Stop()
	}

	if app.Cache != nil {
		if err := app.Cache.Close(); err != nil {
			log.Printf("⚠️  Error closing cache: %v", err)
		}
	}

	if app.Pool != nil {
		if err := app.Pool.Close(); err != nil {
			log.Printf("⚠️  Error closing database: %v", err)
		}
	}

	log.Println("✅ Cleanup complete")
}

func (app *Application) healthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		health := gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
			"service":   "task-tracker-backend",
		}

		if err := app.Pool.Health(); err != nil {
			health["status"] = "unhealthy"
			health["database"] = "down"
			c.JSON(http.StatusServiceUnavailable, health)
			return
		}
		health["database"] = "up"

		if app.Redis != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := app.Redis.Ping(ctx).Err(); err != nil {
				health["redis"] = "down"
			} else {
				health["redis"] = "up"
			}
		}

		c.JSON(http.StatusOK, health)
	}
}

func (app *Application) readinessHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := app.Pool.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"ready":  false,
				"reason": "database not ready",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"ready": true,
		})
	}
}
