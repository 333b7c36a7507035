package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"finance/internal/amqp"
	"finance/internal/core"
	"finance/internal/records"
	"finance/internal/session"
	"finance/internal/storage"
	"finance/internal/storage/memory"
	"finance/internal/storage/postgres"
)

// Publisher is the change event sink handed to the transaction service.
type Publisher interface {
	Publish(ctx context.Context, t amqp.EventType, tx core.Transaction) error
}

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateBackend implements Factory.CreateBackend. Every resource opened
// before a failure is released before returning.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if !config.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", config.Type)
	}

	store, err := f.createStore(ctx, config)
	if err != nil {
		return nil, err
	}
	closers := []func() error{store.Close}
	cleanup := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}

	sessions, closeSessions, err := f.createSessions(ctx, config)
	if err != nil {
		_ = cleanup()
		return nil, err
	}
	if closeSessions != nil {
		closers = append(closers, closeSessions)
	}

	result := &BackendResult{Store: store, Sessions: sessions}

	// AMQP is optional; the app keeps working without change events.
	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without change events", "error", err)
		} else {
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
			result.Publisher = client
			closers = append(closers, client.Close)
		}
	}

	result.Cleanup = cleanup
	return result, nil
}

func (f *DefaultFactory) createStore(ctx context.Context, config Config) (records.Store, error) {
	switch config.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath, config.Location)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
		return repo, nil
	case PostgresBackend:
		store, err := postgres.Open(ctx, config.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres store: %w", err)
		}
		f.logger.Info("Initialized Postgres backend")
		return store, nil
	case MemoryBackend:
		f.logger.Info("Initialized memory backend; data is lost on restart")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSessions(ctx context.Context, config Config) (session.Store, func() error, error) {
	switch config.SessionBackend {
	case "redis":
		rdb, err := session.NewRedisClient(ctx, config.RedisAddr, config.RedisPassword, config.RedisDB)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		f.logger.Info("Initialized redis sessions", "addr", config.RedisAddr)
		return session.NewRedisStore(rdb, config.SessionTTL), rdb.Close, nil
	case "", "memory":
		return session.NewMemoryStore(config.SessionTTL, config.MaxSessions), nil, nil
	default:
		return nil, nil, fmt.Errorf("unsupported session backend: %s", config.SessionBackend)
	}
}
