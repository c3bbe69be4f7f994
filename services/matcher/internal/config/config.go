package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	DirectoryBaseURL      string
	DirectoryToken        string
	DirectoryTimeout      time.Duration
	DirectoryCacheTTL     time.Duration
	DirectoryCacheBackend string

	NATSURL         string
	NATSConnTimeout time.Duration

	MaxRetries int
	RetryDelay time.Duration
	AckWait    time.Duration

	EmitWorkers int
	EmitRetries int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	OTELCollectorURL string
}

func LoadConfig() (*Config, error) {
	config := &Config{
		DirectoryBaseURL:      getEnvString("DIRECTORY_BASE_URL", "http://localhost:8081"),
		DirectoryToken:        getEnvString("DIRECTORY_TOKEN", ""),
		DirectoryTimeout:      getEnvDuration("DIRECTORY_TIMEOUT", 5*time.Second),
		DirectoryCacheTTL:     getEnvDuration("DIRECTORY_CACHE_TTL", 5*time.Second),
		DirectoryCacheBackend: getEnvString("DIRECTORY_CACHE_BACKEND", "memory"),

		NATSURL:         getEnvString("NATS_URL", "nats://localhost:4222"),
		NATSConnTimeout: getEnvDuration("NATS_CONN_TIMEOUT", 10*time.Second),

		MaxRetries: getEnvInt("MAX_RETRIES", 5),
		RetryDelay: getEnvDuration("RETRY_DELAY", 5*time.Second),
		AckWait:    getEnvDuration("ACK_WAIT", 30*time.Second),

		EmitWorkers: getEnvInt("EMIT_WORKERS", 8),
		EmitRetries: getEnvInt("EMIT_RETRIES", 2),

		RedisAddr:     getEnvString("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnvString("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		OTELCollectorURL: getEnvString("OTEL_COLLECTOR_URL", ""),
	}

	return config, nil
}

func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
