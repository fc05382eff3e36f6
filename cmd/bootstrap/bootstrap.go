package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clinic-front-desk/config"
	deliveryHttp "clinic-front-desk/internal/delivery/http"
	"clinic-front-desk/internal/delivery/http/handler"
	"clinic-front-desk/internal/delivery/http/middleware"
	"clinic-front-desk/internal/infrastructure/cache"
	"clinic-front-desk/internal/infrastructure/database"
	"clinic-front-desk/internal/repository"
	"clinic-front-desk/internal/service"
	"clinic-front-desk/internal/usecase"
	"clinic-front-desk/pkg/jwt"
	"clinic-front-desk/pkg/metrics"
	"clinic-front-desk/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

const metricsNamespace = "clinic"

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	Log         *logrus.Logger
	DB          *gorm.DB
	RedisClient *redis.Client
	Sequencer   *service.QueueSequencer
	Server      *http.Server
}

// Load reads the configuration and sets up the logger. Every command starts here.
func Load() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := setupLogger(cfg.Log.Level)
	log.Info("Configuration loaded successfully")

	return cfg, log, nil
}

// New creates a new App instance with all dependencies initialized
func New(cfg *config.Config, log *logrus.Logger) (*App, error) {
	app := &App{Config: cfg, Log: log}

	location, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE %q: %w", cfg.App.Timezone, err)
	}

	db, err := OpenDatabase(cfg, log)
	if err != nil {
		return nil, err
	}
	app.DB = db

	// Redis is only needed for the shared queue counter
	if cfg.Queue.Counter == config.QueueCounterRedis {
		redisClient, err := cache.NewRedisClient(cfg.Redis, log)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		app.RedisClient = redisClient
		log.Info("Redis connected successfully")
	}

	app.Server = app.initializeServer(location)

	return app, nil
}

// OpenDatabase connects to the configured store and brings its schema up to date
// when auto migration applies (always for sqlite, on DB_AUTO_MIGRATE for postgres).
func OpenDatabase(cfg *config.Config, log *logrus.Logger) (*gorm.DB, error) {
	db, err := database.NewConnection(cfg.DB, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Infof("Database connected successfully (%s)", driverName(cfg.DB.Driver))

	switch {
	case cfg.DB.Driver == "sqlite":
		if err := database.AutoMigrate(db); err != nil {
			closeDB(db)
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	case cfg.DB.AutoMigrate:
		if err := RunMigrations(cfg, log, func(m *database.Migrator) error { return m.Up() }); err != nil {
			closeDB(db)
			return nil, err
		}
	}

	return db, nil
}

// RunMigrations opens a migrator, runs fn and closes it again
func RunMigrations(cfg *config.Config, log *logrus.Logger, fn func(*database.Migrator) error) error {
	migrator, err := database.NewMigrator(cfg.DB, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := migrator.Close(); err != nil {
			log.Warnf("Failed to close migrator: %+v", err)
		}
	}()

	return fn(migrator)
}

// setupLogger configures the logrus logger
func setupLogger(level string) *logrus.Logger {
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	log.SetLevel(parsed)

	return log
}

// initializeServer creates and configures the HTTP server
func (app *App) initializeServer(location *time.Location) *http.Server {
	cfg, db, log := app.Config, app.DB, app.Log

	jwtService := jwt.NewJWTService(cfg.JWT)
	customValidator := validator.NewValidator()
	m := metrics.NewMetrics(metricsNamespace)

	// Initialize repositories
	userRepo := repository.NewUserRepository()
	doctorRepo := repository.NewDoctorRepository()
	patientRepo := repository.NewPatientRepository()
	appointmentRepo := repository.NewAppointmentRepository()
	queueRepo := repository.NewQueueEntryRepository()
	auditLogRepo := repository.NewAuditLogRepository()

	// Initialize services
	auditService := service.NewAuditService(log, auditLogRepo)
	app.Sequencer = service.NewQueueSequencer(queueRepo, app.RedisClient, log, m, location)
	log.Infof("Queue numbers allocated by %s", app.Sequencer.Mode())

	// Initialize usecases
	authUsecase := usecase.NewAuthUsecase(db, log, userRepo, jwtService, auditService, m)
	userUsecase := usecase.NewUserUsecase(db, log, userRepo, auditService)
	doctorUsecase := usecase.NewDoctorUsecase(db, log, doctorRepo, appointmentRepo, queueRepo, auditService)
	patientUsecase := usecase.NewPatientUsecase(db, log, patientRepo, appointmentRepo, queueRepo, auditService)
	appointmentUsecase := usecase.NewAppointmentUsecase(db, log, appointmentRepo, doctorRepo, patientRepo, auditService, m, location)
	queueUsecase := usecase.NewQueueUsecase(db, log, queueRepo, doctorRepo, patientRepo, app.Sequencer, auditService, m)
	auditLogUsecase := usecase.NewAuditLogUsecase(db, log, auditLogRepo)
	dashboardUsecase := usecase.NewDashboardUsecase(db, log, doctorRepo, patientRepo, appointmentRepo, queueRepo, app.Sequencer)

	// Initialize handlers
	handlers := deliveryHttp.Handlers{
		Auth:        handler.NewAuthHandler(authUsecase, customValidator),
		User:        handler.NewUserHandler(userUsecase, customValidator),
		Doctor:      handler.NewDoctorHandler(doctorUsecase, customValidator),
		Patient:     handler.NewPatientHandler(patientUsecase, customValidator),
		Appointment: handler.NewAppointmentHandler(appointmentUsecase, customValidator),
		Queue:       handler.NewQueueHandler(queueUsecase, customValidator),
		AuditLog:    handler.NewAuditLogHandler(auditLogUsecase, customValidator),
		Dashboard:   handler.NewDashboardHandler(dashboardUsecase),
	}

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.CORS.AllowedOrigins)
	authLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:           rate.Limit(cfg.RateLimit.AuthRPS),
		Burst:          cfg.RateLimit.AuthBurst,
		TrustedProxies: cfg.RateLimit.TrustedProxies,
	})

	router := deliveryHttp.NewRouter(handlers, authMiddleware, corsMiddleware, authLimiter, m, log)
	httpRouter := router.Setup()

	serverAddr := fmt.Sprintf(":%s", cfg.App.Port)
	return &http.Server{
		Addr:              serverAddr,
		Handler:           httpRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	go func() {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.Server.Shutdown(ctx); err != nil {
		app.Log.Errorf("Server forced to shutdown: %v", err)
	}

	app.Close()

	app.Log.Info("Server shutdown complete")
}

// Close stops background work and closes all connections
func (app *App) Close() {
	if app.Sequencer != nil {
		app.Sequencer.Stop()
	}

	if app.DB != nil {
		closeDB(app.DB)
	}

	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}

func driverName(driver string) string {
	if driver == "" {
		return "postgres"
	}
	return driver
}
