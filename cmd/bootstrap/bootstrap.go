package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketplace-booking/config"
	deliveryHttp "marketplace-booking/internal/delivery/http"
	"marketplace-booking/internal/delivery/http/handler"
	"marketplace-booking/internal/delivery/http/middleware"
	"marketplace-booking/internal/infrastructure/cache"
	"marketplace-booking/internal/infrastructure/database"
	"marketplace-booking/internal/repository"
	"marketplace-booking/internal/service"
	"marketplace-booking/internal/usecase"
	"marketplace-booking/pkg/jwt"
	"marketplace-booking/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg

	// Setup logger
	setupLogger(cfg.App.LogLevel)
	logrus.Info("Configuration loaded successfully")

	loc, err := cfg.App.Location()
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", cfg.App.Timezone, err)
	}

	if cfg.DB.MigrateOnStart {
		if err := database.Migrate(cfg.DB); err != nil {
			return nil, err
		}
	}

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB, cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	logrus.Info("Database connected successfully")

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient
	logrus.Info("Redis connected successfully")

	// Initialize all layers
	app.Server = initializeServer(cfg, loc, db, redisClient)

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger(level string) {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
}

// initializeServer creates and configures the HTTP server
func initializeServer(cfg *config.Config, loc *time.Location, db *gorm.DB, redisClient *redis.Client) *http.Server {
	log := logrus.StandardLogger()

	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize repositories
	transactor := repository.NewTransactor(db)
	calendarLock := repository.NewCalendarLock()
	userRepo := repository.NewUserRepository()
	contractorRepo := repository.NewContractorRepository()
	serviceRepo := repository.NewServiceRepository()
	availabilityRepo := repository.NewAvailabilityRepository()
	blockedSlotRepo := repository.NewBlockedSlotRepository()
	bookingRepo := repository.NewBookingRepository()
	auditLogRepo := repository.NewAuditLogRepository()

	// Initialize services
	auditService := service.NewAuditService(log, auditLogRepo)
	slotCache := service.NewRedisSlotCache(redisClient, log, cfg.Slots.CacheTTL)

	// Initialize usecases
	opts := usecase.NewSchedulingOptions(cfg, loc)
	availabilityUsecase := usecase.NewAvailabilityUsecase(transactor, log, opts, contractorRepo, availabilityRepo, serviceRepo, bookingRepo, blockedSlotRepo, calendarLock, auditService, slotCache)
	blockedTimeUsecase := usecase.NewBlockedTimeUsecase(transactor, log, opts, contractorRepo, blockedSlotRepo, calendarLock, auditService, slotCache)
	clientBookingUsecase := usecase.NewClientBookingUsecase(transactor, log, opts, serviceRepo, bookingRepo, blockedSlotRepo, calendarLock, auditService, slotCache)
	contractorBookingUsecase := usecase.NewContractorBookingUsecase(transactor, log, opts, contractorRepo, serviceRepo, userRepo, bookingRepo, blockedSlotRepo, calendarLock, auditService, slotCache)
	auditLogUsecase := usecase.NewAuditLogUsecase(transactor, log, contractorRepo, bookingRepo, auditLogRepo)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(map[string]handler.HealthCheck{
		"postgres": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		"redis": func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		},
	})
	availabilityHandler := handler.NewAvailabilityHandler(availabilityUsecase, customValidator, log)
	blockedSlotHandler := handler.NewBlockedSlotHandler(blockedTimeUsecase, customValidator, log)
	bookingHandler := handler.NewBookingHandler(clientBookingUsecase, customValidator, log)
	contractorBookingHandler := handler.NewContractorBookingHandler(contractorBookingUsecase, customValidator, log)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase, log)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, redisClient, log)
	corsMiddleware := middleware.NewCORSMiddleware()
	rateLimiter := middleware.NewRateLimiter(redisClient, log, cfg.RateLimit.PerMinute, time.Minute, "ratelimit:slots", cfg.RateLimit.TrustedProxies)

	// Initialize router
	router := deliveryHttp.NewRouter(log, healthHandler, availabilityHandler, blockedSlotHandler, bookingHandler,
		contractorBookingHandler, auditLogHandler, authMiddleware, corsMiddleware, rateLimiter)
	httpRouter := router.Setup()

	// Create server
	serverAddr := fmt.Sprintf(":%s", cfg.App.Port)
	return &http.Server{
		Addr:              serverAddr,
		Handler:           httpRouter,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	// Start server in goroutine
	go func() {
		logrus.Infof("Server starting on port %s", app.Config.App.Port)
		logrus.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	// Close connections
	app.Close()

	logrus.Info("Server shutdown complete")
}

// Close closes all connections (database, redis, etc.)
func (app *App) Close() {
	// Close database connection
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	// Close Redis connection
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
