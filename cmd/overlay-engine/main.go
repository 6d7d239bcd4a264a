package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/openmohaa/overlay-engine/internal/config"
	"github.com/openmohaa/overlay-engine/internal/feed"
	"github.com/openmohaa/overlay-engine/internal/handlers"
	"github.com/openmohaa/overlay-engine/internal/notify"
	"github.com/openmohaa/overlay-engine/internal/reconciler"
	"github.com/openmohaa/overlay-engine/internal/worker"
)

// @title Overlay Engine API
// @version 1.0
// @description Tournament overlay state, announcement queues and admin commands.
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	if err := run(cfg, logger); err != nil {
		sugar.Errorw("Overlay engine exited with error", "error", err)
		os.Exit(1)
	}
	sugar.Info("Overlay engine stopped")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func run(cfg *config.Config, logger *zap.Logger) error {
	sugar := logger.Sugar()

	overlays, err := reconciler.ParseOverlays(cfg.OverlayViews)
	if err != nil {
		return fmt.Errorf("parse OVERLAY_VIEWS: %w", err)
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("parse REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	defer rdb.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		// Keep going; /ready reports it and the workers retry per batch.
		sugar.Warnw("Redis not reachable at startup", "error", err)
	}
	cancel()

	pool := worker.NewPool(worker.PoolConfig{
		WorkerCount:   cfg.WorkerCount,
		QueueSize:     cfg.QueueSize,
		BatchSize:     cfg.BatchSize,
		FlushInterval: cfg.FlushInterval,
		Prefix:        cfg.RedisPrefix,
		Store:         worker.NewRedisLiveStore(rdb),
		Logger:        logger,
	})
	pool.Start(ctx)
	defer pool.Stop()

	broker := notify.NewBroker(logger)
	broker.Subscribe(pool)

	client := feed.New(feed.Config{
		URL:    cfg.FeedURL,
		Logger: logger,
	})

	rec := reconciler.New(reconciler.Config{
		Transport:        client,
		Publisher:        broker,
		Logger:           logger,
		BannerDebounce:   cfg.BannerDebounce,
		BootstrapTimeout: cfg.BootstrapTimeout,
		ObserverHash:     cfg.ObserverHash,
		TeamSlots:        cfg.TeamSlots,
		Overlays:         overlays,
	})

	h := handlers.New(handlers.Config{
		Engine:      rec,
		Publisher:   pool,
		Feed:        client,
		Logger:      logger,
		MaxBodySize: cfg.MaxBodySize,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h.Routes(cfg.AllowedOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return client.Run(gctx)
	})
	g.Go(func() error {
		return rec.Run(gctx)
	})
	g.Go(func() error {
		sugar.Infow("HTTP server listening", "addr", srv.Addr, "env", cfg.Env, "feed", cfg.FeedURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sugar.Info("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
