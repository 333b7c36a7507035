// Package backend builds the record store, session store and event
// publisher selected by configuration.
package backend

import (
	"context"
	"time"

	"finance/internal/records"
	"finance/internal/session"
)

// BackendType names a records.Store implementation.
type BackendType string

const (
	MemoryBackend   BackendType = "memory"
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
)

func (t BackendType) IsValid() bool {
	switch t {
	case MemoryBackend, SQLiteBackend, PostgresBackend:
		return true
	}
	return false
}

func (t BackendType) String() string {
	return string(t)
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the store, the sessions and the optional publisher
// plus the function releasing all of them.
type BackendResult struct {
	Store     records.Store
	Sessions  session.Store
	Publisher Publisher
	Cleanup   CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	SQLiteDBPath string
	PostgresURL  string
	Location     *time.Location

	SessionBackend string
	SessionTTL     time.Duration
	MaxSessions    int
	RedisAddr      string
	RedisPassword  string
	RedisDB        int

	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}
