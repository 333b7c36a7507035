package backend

import (
	"fmt"

	"finance/internal/config"
)

// maxMemorySessions caps the in-process session table.
const maxMemorySessions = 10000

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type: backendType,

		SQLiteDBPath: appConfig.SQLiteDBPath,
		PostgresURL:  appConfig.PostgresURL,
		Location:     appConfig.Location(),

		SessionBackend: appConfig.SessionBackend,
		SessionTTL:     appConfig.SessionTTL,
		MaxSessions:    maxMemorySessions,
		RedisAddr:      appConfig.RedisAddr,
		RedisPassword:  appConfig.RedisPassword,
		RedisDB:        appConfig.RedisDB,

		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,
	}, nil
}
