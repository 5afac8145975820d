// @title Clinic Records API
// @version 1.0
// @description Registro de animales, QR de consulta pública e historial de tratamientos y vacunas.
// @BasePath /
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	staffjwt "clinic-records/internal/adapters/auth/jwt"
	"clinic-records/internal/adapters/auth/revocation"
	pg "clinic-records/internal/adapters/storage/postgres"
	"clinic-records/internal/platform/config"
	"clinic-records/internal/platform/logger"
	"clinic-records/internal/platform/metrics"
	"clinic-records/internal/ports/auth"
	"clinic-records/internal/router"

	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "clinic-records: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, err := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := router.Options{
		BaseURL: cfg.PublicBaseURL,
		Logger:  log,
		Metrics: metrics.New(),
	}

	if cfg.DBDSN != "" {
		if err := pg.Migrate(ctx, cfg.DBDSN); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		db, err := pg.New(ctx, cfg.DBDSN)
		if err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		defer db.Close()
		opts.DB = db
		log.Info("storage: postgres")
	} else {
		log.Warn("DB_DSN not set; using in-memory storage")
	}

	if cfg.DevAuth() {
		log.Warn("JWT_SIGNING_KEY not set; dev auth via X-Debug-User-ID")
	} else {
		var revocations auth.RevocationList
		if cfg.RedisURL != "" {
			rr, err := revocation.NewRedisFromURL(ctx, cfg.RedisURL)
			if err != nil {
				return fmt.Errorf("redis: %w", err)
			}
			defer func() { _ = rr.Close() }()
			revocations = rr
		} else {
			log.Warn("REDIS_URL not set; token revocations kept in memory")
			revocations = revocation.NewMemory()
		}

		tokens, err := staffjwt.NewTokens(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.StaffTokenTTL, revocations)
		if err != nil {
			return fmt.Errorf("tokens: %w", err)
		}
		opts.Tokens = tokens
		opts.Authenticator = staffjwt.NewAuthenticator(cfg.StaffUsername, cfg.StaffPasswordHash)
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router.NewRouter(opts),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server",
			zap.String("addr", srv.Addr),
			zap.String("public_base_url", cfg.PublicBaseURL),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down", zap.Duration("timeout", cfg.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
