/**
 * @description
 * This is the main entry point for the registration service. It wires the plan catalog,
 * the wizard session manager and the registration backend, starts the session sweep
 * scheduler and the outbox dispatcher, and serves the wizard over HTTP.
 */
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/sohamda/fantasy-football/internal/api"
	"github.com/sohamda/fantasy-football/internal/app"
	"github.com/sohamda/fantasy-football/internal/catalog"
	"github.com/sohamda/fantasy-football/internal/config"
	"github.com/sohamda/fantasy-football/internal/notify"
	"github.com/sohamda/fantasy-football/internal/session"
	"github.com/sohamda/fantasy-football/internal/store"
	"github.com/sohamda/fantasy-football/internal/wizard"
	"github.com/sohamda/fantasy-football/pkg/rabbitmq"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load .env file for local development. In production, env vars are set directly.
	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, using environment variables")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	plans := catalog.Default()
	logger.Info("plan catalog loaded", "plans", plans.Len())

	var registrar wizard.Registrar = wizard.SimulatedRegistrar{Delay: cfg.SimulatedSubmitDelay(), Logger: logger}
	if cfg.DatabaseURL != "" {
		dbpool, err := openDatabase(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("unable to connect to database", "error", err)
			os.Exit(1)
		}
		defer dbpool.Close()
		logger.Info("database connection established")

		repo := store.NewPostgresRepository(dbpool)
		if err := repo.EnsureSchema(ctx); err != nil {
			logger.Error("failed ensuring registration tables", "error", err)
			os.Exit(1)
		}
		registrar = app.NewRegistrationService(repo, plans, cfg.RegistrationExchange, cfg.RegistrationRoutingKey, cfg.BcryptCost, logger)

		logger.Info("RabbitMQ configured", "url", rabbitmq.MaskURL(cfg.RabbitMQURL))
		dispatcher := app.NewOutboxDispatcher(repo, publisherFactory(cfg.RabbitMQURL, logger), logger)
		go dispatcher.Run(ctx)
	} else {
		logger.Warn("DATABASE_URL not set, registrations are simulated", "delay", cfg.SimulatedSubmitDelay())
	}

	var limiter api.SubmitLimiter
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		client := redis.NewClient(opts)
		defer client.Close()

		pingCtx, pingCancel := context.WithTimeout(ctx, 3*time.Second)
		if err := client.Ping(pingCtx).Err(); err != nil {
			logger.Warn("redis unavailable, submit rate limiting disabled", "error", err)
		} else {
			limiter = app.NewSubmitLimiter(client, cfg.RedisRateLimitPrefix, cfg.SubmitRateLimitPerMinute, time.Minute)
			logger.Info("redis submit limiter enabled", "limit_per_minute", cfg.SubmitRateLimitPerMinute)
		}
		pingCancel()
	}

	secret := cfg.SessionSecret
	if secret == "" {
		secret = randomSecret()
		logger.Warn("SESSION_SECRET not set, using a random secret; sessions will not survive a restart")
	}
	signer, err := session.NewTokenSigner(secret, cfg.SessionIdleTimeout())
	if err != nil {
		logger.Error("failed to create session token signer", "error", err)
		os.Exit(1)
	}

	sessions := session.NewManager(session.Config{
		Catalog:     plans,
		Registrar:   registrar,
		IdleTimeout: cfg.SessionIdleTimeout(),
		Logger:      logger,
		ControllerOptions: []wizard.Option{
			wizard.WithObserver(api.Metrics{}),
			wizard.WithSubmitTimeout(cfg.SubmitTimeout()),
			wizard.WithLogger(logger),
		},
		ChannelOptions: []notify.Option{
			notify.WithDismissAfter(cfg.ToastDismissAfter()),
			notify.WithLogger(logger),
		},
	})
	defer sessions.Close()

	scheduler := app.NewScheduler(sessions, cfg.SessionSweepSchedule, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}

	handler := api.NewHandler(api.HandlerConfig{
		Sessions:      sessions,
		Signer:        signer,
		Catalog:       plans,
		Limiter:       limiter,
		SecureCookies: cfg.SecureCookies,
		Logger:        logger,
	})

	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: api.NewRouter(handler, cfg.Origins()),
	}

	go func() {
		logger.Info("server starting", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("could not start server", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	<-scheduler.Stop().Done()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
		os.Exit(1)
	}

	logger.Info("server gracefully stopped")
}

func openDatabase(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	dbConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}

	dbConfig.MaxConns = 10
	dbConfig.MinConns = 2
	dbConfig.MaxConnLifetime = 30 * time.Minute
	dbConfig.MaxConnIdleTime = 5 * time.Minute

	// Disable prepared statement caching to prevent conflicts
	dbConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	return pgxpool.NewWithConfig(ctx, dbConfig)
}

// publisherFactory connects to RabbitMQ on demand. Without a broker URL events are logged.
func publisherFactory(amqpURL string, logger *slog.Logger) app.PublisherFactory {
	if amqpURL == "" {
		logger.Warn("RABBITMQ_URL not set, outbox events will only be logged")
		return func() (rabbitmq.Publisher, error) {
			return rabbitmq.LogPublisher{Logger: logger}, nil
		}
	}
	return func() (rabbitmq.Publisher, error) {
		producer, err := rabbitmq.NewEventProducer(amqpURL, logger)
		if err != nil {
			return nil, err
		}
		return producer, nil
	}
}

func randomSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}
