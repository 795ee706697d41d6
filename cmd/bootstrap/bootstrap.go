package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medique-api/config"
	deliveryHttp "medique-api/internal/delivery/http"
	"medique-api/internal/delivery/http/handler"
	"medique-api/internal/delivery/http/middleware"
	"medique-api/internal/domain/gateway"
	"medique-api/internal/infrastructure/cache"
	"medique-api/internal/infrastructure/database"
	"medique-api/internal/infrastructure/mail"
	"medique-api/internal/infrastructure/payment"
	"medique-api/internal/infrastructure/storage"
	"medique-api/internal/repository"
	"medique-api/internal/service"
	"medique-api/internal/usecase"
	"medique-api/pkg/jwt"
	"medique-api/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	Log         *logrus.Logger
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server

	slotLock *service.SlotLockService
	notifier service.NotificationService
}

// NewLogger configures the logrus logger from the app config
func NewLogger(cfg config.AppConfig) *logrus.Logger {
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	return log
}

// New creates a new App instance with all dependencies initialized
func New(cfg *config.Config) (*App, error) {
	log := NewLogger(cfg.App)
	app := &App{Config: cfg, Log: log}

	db, err := database.NewPostgresConnection(cfg.DB, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	log.Info("Database connected successfully")

	redisClient, err := cache.NewRedisClient(cfg.Redis, log)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient
	log.Info("Redis connected successfully")

	if err := app.initializeServer(); err != nil {
		app.Close()
		return nil, err
	}

	return app, nil
}

// initializeServer wires every layer and creates the HTTP server
func (app *App) initializeServer() error {
	cfg, log, db := app.Config, app.Log, app.DB

	jwtService := jwt.NewJWTService(cfg.JWT)
	customValidator := validator.NewValidator()
	tx := repository.NewTransactor(db)

	// Repositories
	userRepo := repository.NewUserRepository()
	doctorRepo := repository.NewDoctorRepository()
	appointmentRepo := repository.NewAppointmentRepository()
	auditLogRepo := repository.NewAuditLogRepository()

	// External collaborators
	imageStore, imageHandler, err := newImageStore(cfg, log)
	if err != nil {
		return err
	}
	paymentGateway := payment.NewRazorpayGateway(cfg.Razorpay, log)

	var mailer gateway.Mailer
	if cfg.Mail.Enabled() {
		mailer = mail.NewSMTPMailer(cfg.Mail)
		log.Infof("Mail delivery via %s:%d", cfg.Mail.Host, cfg.Mail.Port)
	} else {
		mailer = mail.NewLogMailer(log)
		log.Warn("SMTP credentials not set, mails are logged instead of sent")
	}

	// Services
	tokenStore := service.NewTokenStore(app.RedisClient, log)
	auditService := service.NewAuditService(log, auditLogRepo)
	app.slotLock = service.NewSlotLockService(log)
	app.notifier = service.NewNotificationService(mailer, log, cfg.Mail.SendTimeout)

	// Usecases
	authUsecase := usecase.NewAuthUsecase(tx, log, userRepo, auditService, jwtService, tokenStore, cfg.Admin)
	profileUsecase := usecase.NewProfileUsecase(tx, log, userRepo, auditService, imageStore)
	doctorUsecase := usecase.NewDoctorUsecase(tx, log, doctorRepo, auditService, imageStore)
	appointmentUsecase := usecase.NewAppointmentUsecase(tx, log, appointmentRepo, doctorRepo, userRepo, auditService, app.slotLock, app.notifier)
	paymentUsecase := usecase.NewPaymentUsecase(tx, log, appointmentRepo, userRepo, auditService, paymentGateway, app.notifier, cfg.Razorpay.Currency)
	dashboardUsecase := usecase.NewDashboardUsecase(tx, log, doctorRepo, userRepo, appointmentRepo)
	auditLogUsecase := usecase.NewAuditLogUsecase(tx, log, auditLogRepo)

	healthHandler := handler.NewHealthHandler(map[string]handler.HealthCheck{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		"redis": func(ctx context.Context) error {
			return app.RedisClient.Ping(ctx).Err()
		},
	})

	router := deliveryHttp.NewRouter(deliveryHttp.RouterDeps{
		RequestTimeout:     cfg.App.RequestTimeout,
		HealthHandler:      healthHandler,
		AuthHandler:        handler.NewAuthHandler(authUsecase, customValidator),
		ProfileHandler:     handler.NewProfileHandler(profileUsecase),
		DoctorHandler:      handler.NewDoctorHandler(doctorUsecase, customValidator),
		AppointmentHandler: handler.NewAppointmentHandler(appointmentUsecase, customValidator),
		PaymentHandler:     handler.NewPaymentHandler(paymentUsecase, customValidator),
		DashboardHandler:   handler.NewDashboardHandler(dashboardUsecase),
		AuditLogHandler:    handler.NewAuditLogHandler(auditLogUsecase),
		ImageHandler:       imageHandler,
		AuthMiddleware:     middleware.NewAuthMiddleware(jwtService, tokenStore),
		CORSMiddleware:     middleware.NewCORSMiddleware(cfg.App.CORSOrigin),
		LoggingMiddleware:  middleware.NewLoggingMiddleware(log),
		RecoveryMiddleware: middleware.NewRecoveryMiddleware(log),
	})

	app.Server = &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.App.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.App.RequestTimeout + 5*time.Second,
		WriteTimeout:      cfg.App.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return nil
}

// newImageStore picks Cloudinary when configured, otherwise the in-memory
// store together with the handler that serves its images.
func newImageStore(cfg *config.Config, log *logrus.Logger) (gateway.ImageStore, *handler.ImageHandler, error) {
	if cfg.Cloudinary.Enabled() {
		store, err := storage.NewCloudinaryStore(cfg.Cloudinary, log)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to configure Cloudinary: %w", err)
		}
		log.Info("Image uploads go to Cloudinary")
		return store, nil, nil
	}

	log.Warn("Cloudinary not configured, images are kept in memory")
	store := storage.NewInMemoryStore(cfg.App.ImageBaseURL)
	return store, handler.NewImageHandler(store), nil
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() error {
	errCh := make(chan error, 1)
	go func() {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case <-quit:
		app.Log.Info("Shutting down server...")
	case err := <-errCh:
		runErr = fmt.Errorf("failed to start server: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.Server.Shutdown(ctx); err != nil {
		app.Log.Errorf("Server forced to shutdown: %v", err)
	}

	app.Close()
	app.Log.Info("Server shutdown complete")

	return runErr
}

// Close stops background services and closes connections. Pending mails are
// flushed before the database goes away.
func (app *App) Close() {
	if app.notifier != nil {
		app.notifier.Stop()
	}
	if app.slotLock != nil {
		app.slotLock.Stop()
	}

	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
