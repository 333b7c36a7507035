// Package cli holds the start-up steps shared by cmd/finance and
// cmd/finance-worker.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finance/internal/config"
	applog "finance/internal/log"

	"github.com/joho/godotenv"
)

// LoadEnvFile loads .env for local development. A missing file is fine.
func LoadEnvFile(paths ...string) {
	_ = godotenv.Load(paths...)
}

// SetupLogger builds the process logger from LOG_LEVEL and LOG_FORMAT and
// installs it as the slog default.
func SetupLogger(cfg *config.Config, component string) *applog.Logger {
	level, err := applog.ParseLevel(cfg.LogLevel)
	logger := applog.New(applog.Config{
		Level:     level,
		Format:    cfg.LogFormat,
		Component: component,
		Output:    os.Stdout,
	})
	applog.SetDefault(logger)
	if err != nil {
		logger.Warn("Unknown log level, using info", applog.FieldError, err)
	}
	return logger
}

// LoadConfig reads the environment (after .env) and validates it.
func LoadConfig() (*config.Config, error) {
	LoadEnvFile()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoadConfig is LoadConfig for main: it prints the collected errors and
// exits on failure.
func MustLoadConfig() *config.Config {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return cfg
}

// SignalContext is cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context, logger *applog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// RunCleanup runs fn with a bounded context and logs a timeout.
func RunCleanup(logger *applog.Logger, timeout time.Duration, fn func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		logger.Error("Shutdown step failed", applog.FieldOperation, applog.OpShutdown, applog.FieldError, err)
		return
	}
	if ctx.Err() != nil {
		logger.Warn("Shutdown timeout reached")
	}
}
