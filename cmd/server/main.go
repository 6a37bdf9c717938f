// Command server runs the green product catalog HTTP service.
//
// @title        Green product catalog API
// @version      1.0
// @description  Registration, session login and product submissions.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/greenlibrary/catalog/internal/api"
	"github.com/greenlibrary/catalog/internal/api/handler"
	"github.com/greenlibrary/catalog/internal/core/ports"
	"github.com/greenlibrary/catalog/internal/core/service"
	"github.com/greenlibrary/catalog/internal/infrastructure/db/mongo"
	"github.com/greenlibrary/catalog/internal/infrastructure/db/postgres"
	"github.com/greenlibrary/catalog/internal/infrastructure/db/redis"
	"github.com/greenlibrary/catalog/internal/infrastructure/queue"
	"github.com/greenlibrary/catalog/internal/infrastructure/security"
	"github.com/greenlibrary/catalog/internal/pkg/config"
	"github.com/greenlibrary/catalog/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "catalog",
		Env:     cfg.Env,
	})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Credential store ---
	db, err := postgres.Connect(ctx, postgres.Config{
		DSN:      cfg.Postgres.DSN,
		MaxConns: cfg.Postgres.MaxConns,
		Timeout:  cfg.Postgres.QueryTimeout,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("postgres close")
		}
	}()
	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}
	log.Info().Msg("postgres ready")

	// --- Session store ---
	rdb, err := redis.Connect(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("redis close")
		}
	}()
	sessionStore := redis.NewSessionStore(rdb)
	log.Info().Str("addr", cfg.Redis.Addr).Msg("redis ready")

	checkers := map[string]handler.Pinger{
		"postgres": handler.PingerFunc(db.PingContext),
		"redis":    sessionStore,
	}

	// --- Audit trail (optional) ---
	var auditor ports.AuthAuditor = service.NopAuditor{}
	if cfg.Mongo.URI != "" {
		client, mdb, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return err
		}
		defer func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(disconnectCtx); err != nil {
				log.Error().Err(err).Msg("mongo disconnect")
			}
		}()

		auditRepo := mongo.NewAuditRepository(mdb)
		if err := auditRepo.EnsureIndexes(ctx); err != nil {
			log.Warn().Err(err).Msg("audit indexes not created")
		}

		dispatcher := queue.NewDispatcher(cfg.AuditWorkers, auditRepo, log)
		dispatcher.Start(context.Background())
		defer dispatcher.Close()

		auditor = dispatcher
		checkers["mongodb"] = auditRepo
		log.Info().Int("workers", cfg.AuditWorkers).Msg("audit trail enabled")
	}

	// --- Services ---
	users := postgres.NewUserRepository(db, cfg.Postgres.QueryTimeout)
	sessions := service.NewSessionService(sessionStore, users, cfg.Session.Secret, cfg.Session.TTL, log)
	authService := service.NewAuthService(users, security.NewBcryptHasher(cfg.Session.BcryptCost), sessions, auditor, log)
	productService := service.NewProductService(postgres.NewProductRepository(db, cfg.Postgres.QueryTimeout), log)

	e := api.NewRouter(api.Dependencies{
		Auth:     authService,
		Products: productService,
		Sessions: sessions,
		Cookie: handler.CookieConfig{
			Name:   cfg.Session.CookieName,
			Secure: cfg.Session.CookieSecure,
			TTL:    sessions.TTL(),
		},
		MaxUploadBytes: cfg.MaxUploadBytes,
		Checkers:       checkers,
		Logger:         log,
		Registerer:     prometheus.DefaultRegisterer,
		Gatherer:       prometheus.DefaultGatherer,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("http server stopped")
	return nil
}
