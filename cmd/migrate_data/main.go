package main

import (
	"context"
	"flag"

	"whatsapp-engine/internal/config"
	"whatsapp-engine/internal/database"
	"whatsapp-engine/pkg/logger"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Copies a local SQLite database into the PostgreSQL database described by
// the DB_* settings.
func main() {
	cfg := config.LoadConfig()
	logger.Init(logger.LogConfig{Level: cfg.LogLevel, Format: cfg.LogFormat})

	source := flag.String("source", cfg.DBPath, "path of the SQLite database to copy from")
	flag.Parse()

	if cfg.DBDriver != "postgres" {
		logger.Fatal().Str("driver", cfg.DBDriver).Msg("DB_DRIVER must be postgres for the destination")
	}

	sqliteDB, err := gorm.Open(sqlite.Open(*source), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		logger.Fatal().Err(err).Str("path", *source).Msg("Failed to open SQLite source")
	}
	logger.Info().Str("path", *source).Msg("Connected to SQLite")

	pgDB, err := database.Open(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open PostgreSQL destination")
	}

	result, err := database.Copy(context.Background(), sqliteDB, pgDB)
	if err != nil {
		logger.Fatal().Err(err).Msg("Migration failed")
	}
	logger.Info().Interface("rows", result).Msg("Migration completed")
}
