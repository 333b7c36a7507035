package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"finance/internal/backend"
	"finance/internal/cache"
	"finance/internal/cli"
	apphttp "finance/internal/http"
	applog "finance/internal/log"
	"finance/internal/services"
	"finance/internal/session"

	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout      = 30 * time.Second
	cacheCleanupInterval = 10 * time.Minute
)

func main() {
	cfg := cli.MustLoadConfig()
	logger := cli.SetupLogger(cfg, applog.ComponentApp)

	ctx, cancel := cli.SignalContext(context.Background(), logger)
	defer cancel()

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Logger).CreateBackend(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	caches := cache.NewManager(logger.WithComponent(applog.ComponentSession).Logger)
	if mem, ok := res.Sessions.(*session.MemoryStore); ok {
		caches.Register(mem.Cleaner())
	}
	caches.StartCleanup(cacheCleanupInterval)

	txService := services.NewTransactionService(res.Store, res.Publisher, cfg.Location())
	authService := services.NewAuthService(res.Store, res.Sessions)

	srv := apphttp.NewServer(":"+cfg.Port, txService, authService, res.Store, apphttp.Options{
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             logger,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting finance server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"sessions", cfg.SessionBackend,
			"timezone", cfg.Timezone,
			"change_events", res.Publisher != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		cli.RunCleanup(logger, shutdownTimeout, srv.Shutdown)
		return nil
	})

	err = g.Wait()
	caches.Stop()
	if cerr := res.Cleanup(); cerr != nil {
		logger.Error("Backend cleanup failed", applog.FieldError, cerr)
	}
	if err != nil {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully", "metrics", srv.Metrics())
}
