package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	_ "regauth/docs"
	"regauth/internal/cache"
	"regauth/internal/config"
	"regauth/internal/database"
	"regauth/internal/handlers"
	"regauth/internal/logging"
	"regauth/internal/metrics"
	"regauth/internal/middleware"
	"regauth/internal/repositories"
	"regauth/internal/routes"
	"regauth/internal/services"
	"regauth/internal/utils"
)

// Run loads configuration from configPath, serves the API and returns once ctx
// is cancelled and in-flight requests have drained.
func Run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	// === DB ===
	db, err := database.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("[app] close db", "err", err)
		}
	}()
	slog.Info("[app] database ready", "driver", db.Dialect)

	// === Metrics ===
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec := metrics.NewCollector(reg)

	// === Repos / cache ===
	userRepo := repositories.NewUserRepository(db)
	tokenRepo := repositories.NewAccessTokenRepository(db)

	pending, err := cache.New(cfg.Cache.Driver, db)
	if err != nil {
		return err
	}
	if sqlCache, ok := pending.(*cache.SQL); ok {
		n, err := sqlCache.DeleteExpired(ctx)
		if err != nil {
			slog.Warn("[app] purge expired verification codes", "err", err)
		} else if n > 0 {
			slog.Info("[app] purged expired verification codes", "count", n)
		}
	}

	// === Services ===
	authService := services.NewAuthService(cfg.Auth.BcryptCost)
	emailService := services.NewEmailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
		cfg.Email.DryRun,
		cfg.Auth.VerificationTTL,
	)

	var extra []services.Notifier
	if cfg.Mobizon.Enabled {
		mobizonClient := utils.NewClientWithOptions(
			cfg.Mobizon.APIKey,
			cfg.Mobizon.SenderID,
			cfg.Mobizon.DryRun,
		)
		extra = append(extra, services.NewSMSNotifier(mobizonClient))
	}

	issuer := services.NewJWTIssuer([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL, tokenRepo)
	registration := services.NewRegistrationService(userRepo, pending, authService, emailService, rec, cfg.Auth.VerificationTTL, extra...)
	verification := services.NewVerificationService(userRepo, pending, rec)
	sessions := services.NewSessionService(userRepo, authService, issuer, rec)

	// === Gin ===
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(rec))
	router.Use(middleware.CORS())

	routes.SetupRoutes(
		router,
		handlers.NewUserHandler(registration),
		handlers.NewVerifyHandler(verification),
		handlers.NewAuthHandler(sessions),
		handlers.NewHealthHandler(db),
		issuer,
		middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
		rec.Handler(),
	)

	// === Run ===
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("[app] listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("[app] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
