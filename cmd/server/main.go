// Command server runs the hotel concierge chat API.
//
// @title          Hotel Concierge API
// @version        1.0
// @description    Multi-tenant hotel chat widget backend: FAQ rules, hotel FAQ tables, plan-gated language model fallback, and staff dashboards.
// @BasePath       /
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	_ "github.com/tbourn/hotel-concierge/docs"
	"github.com/tbourn/hotel-concierge/internal/config"
	"github.com/tbourn/hotel-concierge/internal/faq"
	httpapi "github.com/tbourn/hotel-concierge/internal/http"
	"github.com/tbourn/hotel-concierge/internal/limits"
	"github.com/tbourn/hotel-concierge/internal/llm"
	"github.com/tbourn/hotel-concierge/internal/observability"
	"github.com/tbourn/hotel-concierge/internal/repo"
	"github.com/tbourn/hotel-concierge/internal/services"
	"github.com/tbourn/hotel-concierge/internal/sysutil"
	"github.com/tbourn/hotel-concierge/internal/tenant"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

// janitorInterval is how often expired limiter windows and idempotency
// keys are dropped.
const janitorInterval = 5 * time.Minute

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	logger := sysutil.SetupLogger(os.Stdout, cfg.LogLevel, cfg.LogPretty, cfg.OTEL.ServiceName)
	log.Logger = logger
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg config.Config, logger zerolog.Logger) error {
	shutdownTracing, err := observability.SetupTracing(ctx, cfg.OTEL, version)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logger.Warn().Err(err).Msg("tracing shutdown")
		}
	}()

	db, err := openDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	limiter, usage, closeCounters, err := counters(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeCounters()

	registry, err := tenant.LoadRegistry(cfg.Chat.TenantsPath)
	if err != nil {
		return err
	}
	rules, err := faq.Load(cfg.Chat.FAQRulesPath)
	if err != nil {
		return err
	}
	model := llm.New(llm.Options{
		APIKey:          cfg.OpenAI.APIKey,
		Model:           cfg.OpenAI.Model,
		BaseURL:         cfg.OpenAI.BaseURL,
		MaxOutputTokens: cfg.OpenAI.MaxOutputTokens,
		Temperature:     cfg.OpenAI.Temperature,
		Timeout:         cfg.OpenAI.Timeout,
	})
	events := &services.EventService{DB: db, IdempotencyTTL: cfg.IdempotencyTTL}

	r := gin.New()
	httpapi.RegisterRoutes(r, db, httpapi.Deps{
		Auth:    services.NewAuthenticator(registry),
		Rules:   rules,
		Plans:   tenant.DefaultPlans(cfg.Chat.BasicDailyCap, cfg.Chat.ProDailyCap),
		Limiter: limiter,
		Usage:   usage,
		Model:   model,
		Events:  events,
	}, cfg)

	go janitor(ctx, logger, limiter, events)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", srv.Addr).
			Str("version", version).
			Bool("model", model.Enabled()).
			Str("counters", cfg.Chat.CounterBackend).
			Int("hotels", len(registry.IDs())).
			Int("faq_rules", rules.Len()).
			Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(sctx)
}

func openDatabase(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*gorm.DB, error) {
	db, err := repo.Open(cfg.DBDriver, cfg.DBPath, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if cfg.OTEL.Enabled {
		if err := repo.Instrument(db); err != nil {
			return nil, err
		}
	}
	if cfg.AutoMigrate {
		if err := repo.AutoMigrate(db); err != nil {
			return nil, err
		}
	}
	if cfg.SeedDemo {
		if err := repo.SeedHotels(ctx, db, repo.DemoHotels()); err != nil {
			return nil, err
		}
		logger.Info().Msg("demo hotels seeded")
	}
	return db, nil
}

// sweeper is implemented by in-process limiters that hold per-key state.
type sweeper interface {
	Sweep(now time.Time) int
}

// counters builds the chat rate limiter and the daily model-call counter on
// the configured backend.
func counters(ctx context.Context, cfg config.Config) (services.RateLimiter, services.UsageCounter, func(), error) {
	if cfg.Chat.CounterBackend != config.CounterRedis {
		return limits.NewWindowLimiter(cfg.Chat.RatePerWindow, cfg.Chat.RateWindow), limits.NewDailyUsage(), func() {}, nil
	}
	client, err := limits.NewRedisClient(ctx, cfg.Chat.RedisURL)
	if err != nil {
		return nil, nil, nil, err
	}
	const prefix = "concierge"
	return limits.NewRedisWindowLimiter(client, prefix, cfg.Chat.RatePerWindow, cfg.Chat.RateWindow),
		limits.NewRedisDailyUsage(client, prefix),
		func() { _ = client.Close() },
		nil
}

func janitor(ctx context.Context, logger zerolog.Logger, limiter services.RateLimiter, events *services.EventService) {
	t := time.NewTicker(janitorInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if s, ok := limiter.(sweeper); ok {
				if n := s.Sweep(now); n > 0 {
					logger.Debug().Int("windows", n).Msg("limiter swept")
				}
			}
			n, err := events.PurgeExpired(ctx)
			if err != nil {
				logger.Warn().Err(err).Msg("idempotency purge failed")
				continue
			}
			if n > 0 {
				logger.Debug().Int64("keys", n).Msg("idempotency keys purged")
			}
		}
	}
}
