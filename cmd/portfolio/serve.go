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
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"dipanshu.dev/internal/config"
	"dipanshu.dev/internal/contact"
	"dipanshu.dev/internal/content"
	"dipanshu.dev/internal/handlers"
	"dipanshu.dev/internal/logger"
	"dipanshu.dev/internal/session"
)

const sweepInterval = time.Minute

func newServeCmd(flags *rootFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the portfolio web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadEnv(flags)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.ServerAddr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, log)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides SERVER_ADDR)")

	return cmd
}

// runServe serves until ctx is done, then shuts the server down gracefully.
func runServe(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	site, err := content.Load(cfg.ContentPath)
	if err != nil {
		return err
	}
	cs := content.NewService(site)

	g, ctx := errgroup.WithContext(ctx)

	if cfg.ContentPath != "" {
		g.Go(func() error { return content.Watch(ctx, cfg.ContentPath, cs, log) })
	}

	var store session.Store
	switch cfg.Session.Store {
	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Session.RedisAddr,
			Password: cfg.Session.RedisPassword,
			DB:       cfg.Session.RedisDB,
		})
		defer client.Close()

		rs := session.NewRedisStore(client, cfg.Session.TTL)
		if err := rs.Ping(ctx); err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		store = rs
	default:
		ms := session.NewMemoryStore(cfg.Session.TTL)
		g.Go(func() error { return ms.Run(ctx, sweepInterval) })
		store = ms
	}

	relay := contact.NewHTTPRelay(cfg.Relay.URL, cfg.Relay.Timeout)
	sessions := session.NewService(store, relay, cs.TrackSources(), session.WithLogger(log))

	limiter := handlers.NewContactLimiter(cfg)
	g.Go(func() error { return limiter.Run(ctx, sweepInterval) })

	router, err := handlers.SetupRoutes(cfg, handlers.Dependencies{
		Content:  cs,
		Sessions: sessions,
		Log:      log,
		Limiter:  limiter,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		log.WithFields(map[string]any{
			"addr":  cfg.ServerAddr,
			"store": cfg.Session.Store,
		}).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
