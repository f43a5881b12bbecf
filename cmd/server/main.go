package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lborres/evently"
	fiberadapter "github.com/lborres/evently/adapters/fiber"
	mongoadapter "github.com/lborres/evently/adapters/mongo"
	pgxadapter "github.com/lborres/evently/adapters/pgx"
	redisadapter "github.com/lborres/evently/adapters/redis"
	"github.com/lborres/evently/adapters/smtp"
	"github.com/lborres/evently/core"
	"github.com/lborres/evently/internal/config"
	"github.com/lborres/evently/pkg/cache"
	"github.com/lborres/evently/pkg/crypto"
	"github.com/lborres/evently/pkg/logging"
)

const (
	shutdownTimeout = 10 * time.Second
	opHealth        = "health"
)

func logFormat() string {
	format := []string{
		// Timestamp & Request ID
		"${time}|${requestid}",

		// Response metadata
		"${status}|${latency}",

		// Client info
		"${ip}:${port}",

		// Request details
		"${method}|${path}",

		// errors
		"${error}",
	}
	return strings.Join(format, "|") + "\n"
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(os.Stdout, cfg.LogFormat, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log logging.Logger) error {
	accounts, closeAccounts, err := openAccounts(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeAccounts()

	recoveryStore, closeRecovery, err := openRecoveryStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRecovery()

	mailer, err := smtp.New(smtp.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.EmailUser,
		Password: cfg.EmailPass,
	})
	if err != nil {
		return err
	}

	hasher, err := crypto.NewPasswordHandler(cfg.PasswordHasher, cfg.BcryptCost)
	if err != nil {
		return err
	}

	app := fiber.New()
	app.Use(requestid.New())
	app.Use(recoverer.New())
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		Format:     logFormat(),
		TimeFormat: "2006/01/02 15:04:05",
		TimeZone:   "Local",
	}))

	httpAdapter := fiberadapter.New(app, log.With("component", "http"))
	httpAdapter.Handle(opHealth, func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	recovery := cfg.Recovery()
	if _, err := evently.New(evently.Config{
		Secret:         cfg.JWTSecret,
		Accounts:       accounts,
		Mailer:         mailer,
		HTTP:           httpAdapter,
		RecoveryStore:  recoveryStore,
		PasswordHasher: hasher,
		TokenTTL:       cfg.TokenTTL,
		Recovery:       &recovery,
		Logger:         log,
		BasePath:       cfg.BasePath,
		Endpoints: []core.Endpoint{{
			Path:     "/health",
			Method:   fiber.MethodGet,
			Metadata: core.EndpointMetadata{OperationID: opHealth, Description: "Liveness check"},
		}},
	}); err != nil {
		return fmt.Errorf("could not create evently instance: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "server listening", "addr", cfg.HTTPAddr, "storage", cfg.StorageDriver, "recovery_store", cfg.RecoveryStore)
		errCh <- app.Listen(cfg.HTTPAddr, fiber.ListenConfig{DisableStartupMessage: true})
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info(context.Background(), "shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	if s, ok := recoveryStore.(core.RecoveryStoreWithStats); ok {
		st := s.Stats()
		log.Info(shutdownCtx, "recovery store stats",
			"hits", st.Hits,
			"misses", st.Misses,
			"sets", st.Sets,
			"deletes", st.Deletes,
			"evictions", st.Evictions,
			"size", st.Size,
		)
	}

	log.Info(shutdownCtx, "server stopped cleanly")
	return nil
}

func openAccounts(ctx context.Context, cfg *config.Config, log logging.Logger) (core.AccountStore, func(), error) {
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("pgxpool.New: %w", err)
		}
		if err := pgxadapter.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		log.Info(ctx, "postgres ready")
		return pgxadapter.New(pool), pool.Close, nil

	default:
		client, err := mongoadapter.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() { _ = client.Disconnect(context.Background()) }

		store := mongoadapter.New(client.Database(cfg.MongoDatabase))
		if err := store.EnsureIndexes(ctx); err != nil {
			closeFn()
			return nil, nil, err
		}
		log.Info(ctx, "mongo ready", "database", cfg.MongoDatabase)
		return store, closeFn, nil
	}
}

func openRecoveryStore(ctx context.Context, cfg *config.Config) (core.RecoveryStore, func(), error) {
	if cfg.RecoveryStore == config.RecoveryRedis {
		client, err := redisadapter.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		return redisadapter.NewRecoveryStore(client), func() { _ = client.Close() }, nil
	}
	return cache.NewMemoryStore(core.StoreConfig{MaxSize: cache.DefaultMaxSize}), func() {}, nil
}
