package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"foodshare_backend/database"
	"foodshare_backend/internal/auth"
	"foodshare_backend/internal/config"
	"foodshare_backend/internal/email"
	"foodshare_backend/internal/events"
	"foodshare_backend/internal/handlers"
	"foodshare_backend/internal/logger"
	"foodshare_backend/internal/metrics"
	"foodshare_backend/internal/middleware"
	"foodshare_backend/internal/models"
	"foodshare_backend/internal/repositories"
	"foodshare_backend/internal/repositories/memory"
	"foodshare_backend/internal/routes"
	"foodshare_backend/internal/services"
	"foodshare_backend/internal/validator"
	"foodshare_backend/internal/workers"
	"foodshare_backend/pkg/apperrors"
	"foodshare_backend/ws"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const jobTimeout = 5 * time.Minute

// App is the assembled server.
type App struct {
	Config    *config.Config
	DB        *gorm.DB // nil with the memory driver
	Repos     *repositories.Repositories
	Bus       events.Bus
	Email     email.Provider
	Services  *services.ServiceContainer
	Router    *gin.Engine
	WSManager *ws.WebSocketManager

	limiter  *middleware.RateLimiter
	detachWS func()
}

// New opens the store and the event bus and wires everything on top.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	var (
		db    *gorm.DB
		repos *repositories.Repositories
	)
	if cfg.Database.Driver == "memory" {
		logger.Warn("Using the in-memory store; data is lost on restart")
		repos = memory.New().Repositories()
	} else {
		var err error
		db, err = database.Open(cfg)
		if err != nil {
			return nil, err
		}
		if cfg.Database.AutoMigrate {
			if err := database.AutoMigrate(db); err != nil {
				return nil, err
			}
		}
		repos = repositories.NewRepositories(db)
	}

	bus, err := newBus(ctx, cfg)
	if err != nil {
		return nil, err
	}

	a := NewWithRepositories(cfg, repos, bus, newEmailProvider(cfg))
	a.DB = db
	return a, nil
}

// NewWithRepositories wires services and routes over an existing store.
func NewWithRepositories(cfg *config.Config, repos *repositories.Repositories, bus events.Bus, mail email.Provider) *App {
	apperrors.SetDebug(cfg.IsDevelopment())
	metrics.Init()

	svc := services.NewServiceContainer(services.Dependencies{
		Repositories: repos,
		Tokens:       auth.NewTokenManager(cfg.JWT.Secret, cfg.AccessTTL()),
		RefreshTTL:   cfg.RefreshTTL(),
		Email:        mail,
		Publisher:    bus,
	})

	wsManager := ws.NewWebSocketManager()
	a := &App{
		Config:    cfg,
		Repos:     repos,
		Bus:       bus,
		Email:     mail,
		Services:  svc,
		WSManager: wsManager,
		limiter:   middleware.NewRateLimiter(float64(cfg.RateLimit.PerSecond), cfg.RateLimit.Burst),
		detachWS:  wsManager.Attach(bus),
	}
	a.Router = SetupRouter(cfg, svc, ws.NewWebSocketHandler(wsManager, cfg.Server.AllowedOrigins), a.limiter)
	return a
}

func SetupRouter(cfg *config.Config, svc *services.ServiceContainer, wsHandler *ws.WebSocketHandler, limiter *middleware.RateLimiter) *gin.Engine {
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(metrics.Instrument())
	router.Use(middleware.CORSMiddleware(cfg.Server.AllowedOrigins))
	router.Use(middleware.AuthMiddleware(svc.AuthService))

	appHandlers := handlers.NewAppHandlers(svc, validator.New())
	routes.RegisterRoutes(router, appHandlers, wsHandler, limiter.Handler())
	return router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	if err := SeedFirstAdmin(ctx, a.Repos, a.Config); err != nil {
		return fmt.Errorf("seed first admin: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.WSManager.Run(runCtx)
	a.limiter.StartCleanup(10*time.Minute, runCtx.Done())

	var scheduler *workers.Scheduler
	if a.Config.Workers.Enabled {
		var err error
		scheduler, err = a.startWorkers()
		if err != nil {
			return err
		}
	}

	srv := &http.Server{
		Addr:              a.Config.Address(),
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "address", srv.Addr, "env", a.Config.Server.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case serveErr = <-errCh:
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(a.Config.Server.ShutdownTimeout)*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown failed", "error", err)
	}
	if scheduler != nil {
		scheduler.Stop()
	}
	cancel()
	a.Close()

	logger.Info("Server stopped")
	return serveErr
}

func (a *App) startWorkers() (*workers.Scheduler, error) {
	scheduler := workers.NewScheduler(jobTimeout)
	window := time.Duration(a.Config.Workers.ExpiryWindowHours) * time.Hour

	if err := scheduler.Add(a.Config.Workers.TokenCleanupSpec, workers.NewTokenCleanupWorker(a.Repos.RefreshTokens)); err != nil {
		return nil, err
	}
	expiry := workers.NewExpiryReminderWorker(a.Repos.Donations, a.Services.NotificationService, a.Email, window)
	if err := scheduler.Add(a.Config.Workers.ExpiryReminderSpec, expiry); err != nil {
		return nil, err
	}

	scheduler.Start()
	return scheduler, nil
}

// Close releases the bus, mail and database handles.
func (a *App) Close() {
	if a.detachWS != nil {
		a.detachWS()
	}
	if a.Bus != nil {
		if err := a.Bus.Close(); err != nil {
			logger.Warn("Event bus close failed", "error", err)
		}
	}
	if a.Email != nil {
		if err := a.Email.Close(); err != nil {
			logger.Warn("Email provider close failed", "error", err)
		}
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

func newBus(ctx context.Context, cfg *config.Config) (events.Bus, error) {
	if cfg.Redis.Addr == "" {
		return events.NewLocalBus(), nil
	}
	bus, err := events.NewRedisBus(ctx, events.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		Channel:  cfg.Redis.Channel,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Event bus connected to Redis", "addr", cfg.Redis.Addr, "channel", cfg.Redis.Channel)
	return bus, nil
}

func newEmailProvider(cfg *config.Config) email.Provider {
	renderer := email.NewTemplateManager()
	if !cfg.SMTPEnabled() {
		logger.Warn("SMTP is not configured; emails are only logged")
		return email.NewLogProvider(renderer)
	}
	return email.NewGomailProvider(email.SMTPConfig{
		Host:      cfg.Email.SMTPHost,
		Port:      cfg.Email.SMTPPort,
		Username:  cfg.Email.SMTPUsername,
		Password:  cfg.Email.SMTPPassword,
		FromEmail: cfg.Email.FromEmail,
		FromName:  cfg.Email.FromName,
	}, renderer)
}

// SeedFirstAdmin makes sure the configured admin account exists and holds the
// admin role. Missing credentials skip seeding.
func SeedFirstAdmin(ctx context.Context, repos *repositories.Repositories, cfg *config.Config) error {
	adminEmail := strings.ToLower(strings.TrimSpace(cfg.FirstAdmin.Email))
	adminPassword := cfg.FirstAdmin.Password
	if adminEmail == "" || adminPassword == "" {
		logger.Warn("FIRST_ADMIN_EMAIL or FIRST_ADMIN_PASSWORD is not set. Skipping admin seeding.")
		return nil
	}

	identity, err := repos.Identities.FindByEmail(ctx, adminEmail)
	switch {
	case err == nil:
		profile, err := services.NewSessionService(repos.Profiles).EnsureProfile(ctx, identity.ID, identity.Email)
		if err != nil {
			return err
		}
		if profile.Role != models.UserRoleAdmin {
			if err := repos.Profiles.UpdateRole(ctx, identity.ID, models.UserRoleAdmin); err != nil {
				return fmt.Errorf("promote admin: %w", err)
			}
			logger.Warn("Existing account promoted to admin", "email", adminEmail)
		}
		return nil
	case !errors.Is(err, repositories.ErrIdentityNotFound):
		return fmt.Errorf("check admin account: %w", err)
	}

	if err := auth.ValidatePassword(adminPassword); err != nil {
		return err
	}
	hash, err := auth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	identity = &models.Identity{Email: adminEmail, PasswordHash: hash}
	profile := &models.Profile{Name: cfg.FirstAdmin.Name, Email: adminEmail, Role: models.UserRoleAdmin}
	if err := repos.Identities.CreateWithProfile(ctx, identity, profile); err != nil {
		return fmt.Errorf("create admin account: %w", err)
	}

	logger.Info("First admin account created", "email", adminEmail)
	return nil
}
