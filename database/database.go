package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"servify-server/config"
	"servify-server/logging"
	"servify-server/models"
)

// Open connects to Postgres, configures the pool and verifies the connection.
func Open(cfg config.DatabaseConfig, log *zap.SugaredLogger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.URL), &gorm.Config{
		Logger:         logging.NewGormLogger(log, cfg.LogLevel, cfg.SlowThreshold),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL database: %w", err)
	}

	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("connected to database")
	return db, nil
}

// Models lists every persisted entity in dependency order.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Category{},
		&models.Subcategory{},
		&models.ProfessionalProfile{},
		&models.ServiceOffering{},
		&models.Solicitation{},
		&models.Proposal{},
		&models.Rating{},
		&models.Notification{},
		&models.Message{},
	}
}

// Migrate creates or updates the schema, including the foreign key policies
// declared on the models.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
