package main

import (
	"context"
	"log"
	"os"

	"github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/common/database/schema"
	"github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/common/database/schema/migrations"

	"github.com/ClickHouse/clickhouse-go/v2"
	"go.uber.org/zap"
)

func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{getEnvString("CLICKHOUSE_DSN", "127.0.0.1:9000")},
		Auth: clickhouse.Auth{
			Database: getEnvString("CLICKHOUSE_DATABASE", "jobmanager"),
			Username: getEnvString("CLICKHOUSE_USERNAME", "default"),
			Password: getEnvString("CLICKHOUSE_PASSWORD", ""),
		},
	})
	if err != nil {
		logger.Fatal("failed to connect to ClickHouse", zap.Error(err))
	}
	defer conn.Close()

	migrator := schema.NewMigrator(conn, logger)

	if err := migrator.Apply(context.Background(), migrations.All); err != nil {
		logger.Fatal("failed to apply migrations", zap.Error(err))
	}

	logger.Info("all migrations completed successfully")
}
