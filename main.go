package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/marwanhaqiqi/be-task-management-system-new/internal/cache"
	"github.com/marwanhaqiqi/be-task-management-system-new/internal/config"
	"github.com/marwanhaqiqi/be-task-management-system-new/internal/database"
	"github.com/marwanhaqiqi/be-task-management-system-new/internal/handlers"
	"github.com/marwanhaqiqi/be-task-management-system-new/internal/middleware"
	"github.com/marwanhaqiqi/be-task-management-system-new/internal/models"
	"github.com/marwanhaqiqi/be-task-management-system-new/internal/monitoring"
	"github.com/marwanhaqiqi/be-task-management-system-new/internal/repositories"
	"github.com/marwanhaqiqi/be-task-management-system-new/internal/services"
)

// Application holds all application dependencies and state
type Application struct {
	Config *config.Config
	DB     *database.DatabasePool
	Cache  cache.Cache
	Redis  *redis.Client
	Router *gin.Engine
	Server *http.Server
	Clock  models.Clock

	TaskService services.TaskService
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
		Clock:  models.NewClock(cfg.App.Location),
	}

	log.Println("🚀 Initializing Task Management API...")
	log.Printf("📋 Environment: %s, timezone: %s", cfg.Server.Environment, cfg.App.Timezone)

	pool, err := database.NewDatabasePool(database.PoolConfigFrom(cfg.Database))
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	app.DB = pool
	log.Println("✅ Database connected and configured")

	migrationConfig := &repositories.MigrationConfig{
		Driver:         cfg.Database.Driver,
		MigrationsPath: cfg.Database.MigrationsPath,
		DBName:         cfg.Database.Name,
		MaxRetries:     3,
		RetryDelay:     2 * time.Second,
	}
	if err := repositories.RunMigrations(pool.DB, migrationConfig); err != nil {
		return nil, fmt.Errorf("database migration failed: %w", err)
	}

	if cfg.Redis.Enabled {
		app.Redis = connectRedis(cfg)
	}

	if cfg.Cache.Enabled {
		var l2 *cache.RedisCache
		if app.Redis != nil {
			l2 = cache.NewRedisCacheWithClient(app.Redis, cfg.Cache.Prefix, cfg.Redis.ReadTimeout)
			log.Println("✅ Shared Redis cache initialized")
		} else {
			log.Println("✅ Memory cache initialized (Redis unavailable)")
		}
		app.Cache = cache.NewMultiLevelCache(l2)
	}

	taskService := services.NewTaskService(repositories.NewTaskRepository(pool.DB), app.Clock)
	if app.Cache != nil {
		app.TaskService = services.NewCachedTaskService(taskService, app.Cache, cfg.Cache.TTL)
		log.Printf("✅ Cached task service initialized (TTL %s)", cfg.Cache.TTL)
	} else {
		app.TaskService = taskService
		log.Println("✅ Task service initialized")
	}

	app.registerHealthChecks()
	return app, nil
}

// connectRedis returns nil when Redis cannot be reached; the API keeps
// working with in-memory cache and per-IP limits only.
func connectRedis(cfg *config.Config) *redis.Client {
	client := redis.NewClient(&redis.Options{
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

	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("⚠️  Redis unavailable: %v (continuing without Redis)", err)
		client.Close()
		return nil
	}
	log.Println("✅ Redis connected")
	return client
}

func (app *Application) registerHealthChecks() {
	monitoring.RegisterHealthCheck("database", app.DB.Health)
	if app.Redis != nil {
		monitoring.RegisterHealthCheck("redis", func(ctx context.Context) error {
			return app.Redis.Ping(ctx).Err()
		})
	}
}

func (app *Application) setupRoutes() {
	r := gin.New()

	// Global middleware stack (order matters!)
	r.Use(gin.Logger())
	r.Use(middleware.RecoveryWithLog())
	r.Use(monitoring.MetricsMiddleware())
	r.Use(middleware.SecureHeader())

	rateLimit := rate.Limit(float64(app.Config.RateLimit.RequestsPerMin) / 60.0)
	r.Use(middleware.RateLimiter(rateLimit, app.Config.RateLimit.BurstSize))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     app.Config.Server.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health and monitoring endpoints (no auth required)
	r.GET("/health", monitoring.HealthHandler())
	r.GET("/ready", monitoring.ReadinessHandler())
	r.GET("/live", monitoring.LivenessHandler())
	r.GET("/metrics", monitoring.MetricsHandler())
	r.GET("/metrics/database", func(c *gin.Context) {
		c.JSON(http.StatusOK, app.DB.Stats())
	})

	cacheHandler := handlers.NewCacheHandler(app.Cache)
	r.GET("/cache/stats", cacheHandler.GetCacheStats)
	r.GET("/cache/health", cacheHandler.GetCacheHealth)

	api := r.Group("/api")
	api.Use(middleware.AuthzMiddleware(middleware.AuthzConfig{Secret: app.Config.Auth.JWTSecret}))
	if app.Redis != nil {
		limiter := middleware.NewDistributedRateLimiter(app.Redis)
		api.Use(limiter.CreateMiddleware("user", &middleware.RateLimit{
			Rate:    app.Config.RateLimit.UserRequests,
			Window:  app.Config.RateLimit.UserWindow,
			KeyFunc: middleware.UserKeyFunc,
		}))
	}

	taskHandler := handlers.NewTaskHandler(app.TaskService, app.Clock, handlers.ErrorResponder{
		ExposeDetails: app.Config.App.ExposeErrorDetails,
	})
	taskHandler.RegisterRoutes(api)

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

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)

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

	if err := app.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("❌ Server failed to start: %v", err)
	}
	<-stopped
}

func (app *Application) cleanup() {
	log.Println("🧹 Cleaning up resources...")

	if app.Cache != nil {
		if err := app.Cache.Close(); err != nil {
			log.Printf("⚠️  Error closing cache: %v", err)
		}
	}

	if app.Redis != nil {
		if err := app.Redis.Close(); err != nil {
			log.Printf("⚠️  Error closing Redis: %v", err)
		}
	}

	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			log.Printf("⚠️  Error closing database: %v", err)
		}
	}

	log.Println("✅ Cleanup complete")
}
