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

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/Sternrassler/hypixel-cache/pkg/cache"
	"github.com/Sternrassler/hypixel-cache/pkg/config"
	"github.com/Sternrassler/hypixel-cache/pkg/hypixel"
	"github.com/Sternrassler/hypixel-cache/pkg/logging"
	"github.com/Sternrassler/hypixel-cache/pkg/lookup"
	"github.com/Sternrassler/hypixel-cache/pkg/mojang"
	"github.com/Sternrassler/hypixel-cache/pkg/ratelimit"
	"github.com/Sternrassler/hypixel-cache/pkg/server"
)

func newServeCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			logging.Setup(logging.Config{
				Level:  logging.LogLevel(cfg.LogLevel),
				Pretty: cfg.LogPretty,
				Output: os.Stderr,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return run(ctx, cfg)
		},
	}
}

// app is the wired service.
type app struct {
	handler http.Handler
	service *lookup.Service
	closers []func() error
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

func openStore(ctx context.Context, cfg *config.Config) (cache.Store, func() error, error) {
	switch cfg.CacheBackend {
	case config.BackendMemory:
		log.Warn().Msg("Using in-process memory cache; records are not shared between instances")
		return cache.NewMemoryStore(), func() error { return nil }, nil

	default:
		opts, err := config.RedisOptions(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		client := redis.NewClient(opts)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("connect to redis at %s: %w", opts.Addr, err)
		}
		log.Info().Str("addr", opts.Addr).Int("db", opts.DB).Msg("Connected to Redis")

		return cache.NewRedisStore(client), client.Close, nil
	}
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a := &app{closers: []func() error{closeStore}}

	userAgent := "hypixel-cache/" + Version
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	hypixelCfg := hypixel.Config{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.HypixelBaseURL,
		UserAgent:  userAgent,
		HTTPClient: httpClient,
	}
	if cfg.RateLimitEnabled {
		hypixelCfg.RateLimiter = ratelimit.NewTracker(
			store,
			logging.NewLogger(logging.ComponentRateLimit),
			ratelimit.WithKeyPrefix(cfg.CachePrefix),
		)
	}
	fetcher, err := hypixel.New(hypixelCfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create hypixel client: %w", err)
	}

	resolver := mojang.NewClient(&mojang.Config{
		BaseURL:    cfg.MojangBaseURL,
		UserAgent:  userAgent,
		HTTPClient: httpClient,
	})

	a.service = lookup.NewService(
		cache.NewManager(store, cache.WithPrefix(cfg.CachePrefix)),
		resolver,
		fetcher,
		lookup.Options{
			AwaitWrites:  cfg.AwaitWrites,
			Coalesce:     cfg.Coalesce,
			FetchTimeout: cfg.HTTPTimeout,
		},
	)

	srv, err := server.New(server.Config{
		Secret:   cfg.Secret,
		Lookuper: a.service,
		Checks:   map[string]server.Pinger{"cache": store},
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.handler = srv.Handler()

	return a, nil
}

// run serves until ctx is cancelled, then shuts down and drains cache writes.
func run(ctx context.Context, cfg *config.Config) error {
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().
			Str("addr", httpServer.Addr).
			Str("cache_backend", cfg.CacheBackend).
			Bool("coalesce", cfg.Coalesce).
			Str("version", Version).
			Msg("Starting hypixel-cache")

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down")

		timeout := cfg.ShutdownTimeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()

		err := httpServer.Shutdown(shutdownCtx)
		a.service.Wait()
		if err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
