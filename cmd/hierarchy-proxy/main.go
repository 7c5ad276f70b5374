package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/hierarchy-proxy/pkg/blob"
	"github.com/Sternrassler/hierarchy-proxy/pkg/cache"
	"github.com/Sternrassler/hierarchy-proxy/pkg/config"
	"github.com/Sternrassler/hierarchy-proxy/pkg/handler"
	"github.com/Sternrassler/hierarchy-proxy/pkg/logging"
	"github.com/Sternrassler/hierarchy-proxy/pkg/upstream"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "hierarchy-proxy: %v\n", err)
		os.Exit(1)
	}

	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.LogLevel),
		Pretty: cfg.LogPretty,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}

// run serves until ctx is cancelled, then shuts down gracefully.
func run(ctx context.Context, cfg config.Config, logger zerolog.Logger) error {
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close(logger)

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", a.server.Addr).
			Str("cache_backend", cfg.CacheBackend).
			Str("v2_url", cfg.HierarchyV2URL).
			Str("v3_base_url", cfg.HierarchyV3BaseURL).
			Msg("Starting hierarchy proxy")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// app holds the server and the resources released on shutdown.
type app struct {
	server  *http.Server
	store   cache.Store
	closers []io.Closer
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	store, err := newStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	a := &app{store: store}
	if c, ok := store.(io.Closer); ok {
		a.closers = append(a.closers, c)
	}

	fetcher := upstream.New(upstream.Config{
		Timeout:   cfg.UpstreamTimeout,
		UserAgent: cfg.UserAgent,
	})
	images := blob.NewHTTPImageService(cfg.ImageServiceURL, upstream.NewHTTPClient(cfg.UpstreamTimeout), cfg.UpstreamTimeout)
	a.closers = append(a.closers, fetcher, images)

	router := handler.NewRouter(handler.Deps{
		Cache:              store,
		Fetcher:            fetcher,
		Keys:               blob.GSKeys{},
		Images:             images,
		HierarchyV2URL:     cfg.HierarchyV2URL,
		HierarchyV3BaseURL: cfg.HierarchyV3BaseURL,
	})

	a.server = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.UpstreamTimeout + 10*time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return a, nil
}

// newStore builds the configured cache backend. A Redis backend must answer a ping.
func newStore(ctx context.Context, cfg config.Config) (cache.Store, error) {
	switch cfg.CacheBackend {
	case config.BackendMemory:
		return cache.NewMemory(), nil
	case config.BackendRedis:
		store, err := cache.NewRedisFromURL(cfg.RedisURL,
			cache.WithKeyPrefix(cfg.CacheKeyPrefix),
			cache.WithOpTimeout(cfg.CacheOpTimeout),
		)
		if err != nil {
			return nil, err
		}
		if err := store.Ping(ctx); err != nil {
			store.Close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: unknown cache backend %q", config.ErrInvalidConfig, cfg.CacheBackend)
	}
}

func (a *app) close(logger zerolog.Logger) {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			logger.Warn().Err(err).Msg("Close failed")
		}
	}
}
