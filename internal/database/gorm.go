package database

import (
	"errors"
	"fmt"
	"time"

	"whatsapp-engine/internal/config"
	"whatsapp-engine/internal/models"
	"whatsapp-engine/pkg/logger"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ErrNotFound is returned when a lookup matches no row
var ErrNotFound = errors.New("database: not found")

// Open connects with the configured driver and migrates the schema
func Open(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "postgres":
		dialector = postgres.Open(cfg.PostgresDSN())
	case "sqlite":
		dialector = sqlite.Open(cfg.DBPath)
	default:
		return nil, fmt.Errorf("database: unsupported driver %q", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormLogLevel(cfg.LogLevel)),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("database: connect %s: %w", cfg.DBDriver, err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	logger.Info().Str("driver", cfg.DBDriver).Msg("Database connected and migrated")
	return db, nil
}

// Migrate creates or updates every table the engine uses
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Message{},
		&models.Contact{},
		&models.Template{},
		&models.SystemSetting{},
	)
	if err != nil {
		return fmt.Errorf("database: auto-migrate: %w", err)
	}
	return nil
}

func gormLogLevel(level string) gormlogger.LogLevel {
	if level == "debug" {
		return gormlogger.Info
	}
	return gormlogger.Warn
}

// SyncConfig makes stored credentials win over the environment and seeds
// the table from the environment on first run.
func SyncConfig(db *gorm.DB, cfg *config.Config) error {
	settings := []struct {
		Key   string
		Value *string
	}{
		{"VERIFY_TOKEN", &cfg.VerifyToken},
		{"WHATSAPP_TOKEN", &cfg.WhatsAppToken},
		{"PHONE_NUMBER_ID", &cfg.PhoneNumberID},
		{"WABA_ID", &cfg.WhatsAppBusinessAccountID},
	}

	for _, s := range settings {
		var setting models.SystemSetting
		err := db.Where("key = ?", s.Key).First(&setting).Error
		switch {
		case err == nil:
			if setting.Value != "" {
				*s.Value = setting.Value
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			if *s.Value == "" {
				continue
			}
			if err := db.Create(&models.SystemSetting{Key: s.Key, Value: *s.Value}).Error; err != nil {
				return fmt.Errorf("database: seed setting %s: %w", s.Key, err)
			}
		default:
			return fmt.Errorf("database: read setting %s: %w", s.Key, err)
		}
	}
	logger.Debug().Msg("System settings synchronized from database")
	return nil
}
