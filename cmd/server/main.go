package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-prep/internal/catalog"
	"github.com/stemsi/exstem-prep/internal/config"
	"github.com/stemsi/exstem-prep/internal/database"
	"github.com/stemsi/exstem-prep/internal/handler"
	"github.com/stemsi/exstem-prep/internal/logger"
	"github.com/stemsi/exstem-prep/internal/messaging"
	"github.com/stemsi/exstem-prep/internal/repository"
	"github.com/stemsi/exstem-prep/internal/router"
	"github.com/stemsi/exstem-prep/internal/session"
	"github.com/stemsi/exstem-prep/internal/validator"
	"github.com/stemsi/exstem-prep/internal/worker"
	ws "github.com/stemsi/exstem-prep/internal/websocket"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		boot := zerolog.New(os.Stderr)
		boot.Fatal().Err(err).Msg("Invalid configuration")
	}

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("store", cfg.StoreDriver).
		Bool("archive", cfg.ArchiveEnabled()).
		Msg("Starting ExStem Prep")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to Redis (store driver or archive queues) ─────────────
	var rdb *redis.Client
	if cfg.StoreDriver == config.StoreRedis || cfg.ArchiveEnabled() {
		rdb, err = database.NewRedisClient(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
	}

	// ─── Initialize Store ──────────────────────────────────────────────
	var store session.Store
	switch cfg.StoreDriver {
	case config.StoreSQLite:
		db, err := database.NewSQLite(ctx, cfg.SQLitePath, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open SQLite")
		}
		defer db.Close()
		store, err = repository.NewSQLiteStore(ctx, db)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to prepare SQLite store")
		}
	case config.StoreRedis:
		store = repository.NewRedisStore(rdb, config.CacheKey, log)
	default:
		log.Warn().Msg("Using in-memory store; progress will not survive a restart")
		store = repository.NewMemoryStore()
	}

	// ─── Connect to PostgreSQL Archive ─────────────────────────────────
	var pool *pgxpool.Pool
	if cfg.ArchiveEnabled() {
		pool, err = database.NewPostgresPool(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
		}
		defer pool.Close()
	}

	// ─── Synthesize Catalog ────────────────────────────────────────────
	cat := catalog.Synthesize(catalog.Options{Seeded: cfg.CatalogSeed != 0, Seed: cfg.CatalogSeed})
	log.Info().Int("modules", len(cat.Modules())).Uint64("seed", cfg.CatalogSeed).Msg("Catalog synthesized")

	// ─── Initialize Engine ─────────────────────────────────────────────
	engine := session.NewEngine(cat, store, session.Config{
		Duration:     cfg.SessionDurationSeconds,
		TickInterval: cfg.TickInterval,
		AlertTTL:     cfg.AlertTTL,
		StoreTimeout: cfg.StoreTimeout,
	}, log)

	hub := ws.NewHub(engine, log)
	engine.Subscribe(hub)

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var workers sync.WaitGroup

	if pool != nil {
		engine.Subscribe(worker.NewQueueSink(rdb, engine.Duration(), log))

		archiveWorker := worker.NewArchiveWorker(pool, rdb, log)
		proctorWorker := worker.NewProctorWorker(pool, rdb, log)

		workers.Add(2)
		go func() { defer workers.Done(); archiveWorker.Start(workerCtx) }()
		go func() { defer workers.Done(); proctorWorker.Start(workerCtx) }()
	}

	// ─── Connect to RabbitMQ ───────────────────────────────────────────
	if cfg.AMQPURL != "" {
		publisher, err := messaging.Dial(cfg.AMQPURL, config.WorkerKey.CompletedExchange, engine.Duration(), log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to RabbitMQ")
		}
		defer publisher.Close()
		engine.Subscribe(publisher)
	}

	// ─── Recover Interrupted Attempt ──────────────────────────────────
	if engine.Recover(ctx) {
		log.Info().Str("status", string(engine.Status())).Msg("Recovered checkpoint")
	}

	// ─── Initialize Handlers ──────────────────────────────────────────
	var archive handler.ArchiveReader
	if pool != nil {
		archive = repository.NewArchiveRepository(pool)
	}

	handlers := &router.Handlers{
		Catalog: handler.NewCatalogHandler(cat),
		Session: handler.NewSessionHandler(engine, log),
		History: handler.NewHistoryHandler(engine, archive, log),
		WS:      handler.NewWSHandler(engine, hub, log, cfg.AllowedOrigins),
		System:  handler.NewSystemHandler(engine, hub, rdb, cfg.StoreDriver, log),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(ctx, handlers, cfg, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the ticker. The checkpoint stays for the next start.
	engine.Close()

	// 3. Stop background workers and wait for their final flush.
	workerCancel()
	workers.Wait()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
