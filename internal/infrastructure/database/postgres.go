package database

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/sangkips/pos-api/internal/config"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/internal/domain/enum"
	"github.com/sangkips/pos-api/internal/infrastructure/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg *config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	logLevel := logger.Warn
	if debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying SQL DB to set connection pool settings
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)

	log.Info().Str("host", cfg.Host).Str("database", cfg.Name).Msg("connected to PostgreSQL")
	return db, nil
}

// AutoMigrate runs GORM auto-migration for all entities and creates the
// constraints GORM tags cannot express
func AutoMigrate(db *gorm.DB) error {
	log.Info().Msg("running database migrations")

	err := db.AutoMigrate(
		// Catalog
		&entity.Product{},

		// Cash registers
		&entity.CashRegister{},
		&entity.CashMovement{},
		&entity.CashConciliation{},

		// Sales
		&entity.Sale{},
		&entity.SaleItem{},

		// System entities
		&entity.IdempotencyKey{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	oneOpen := fmt.Sprintf(
		"CREATE UNIQUE INDEX IF NOT EXISTS %s ON cash_registers (business_id) WHERE state = %d",
		repository.OneOpenRegisterIndex, int(enum.RegisterStateOpen),
	)
	if err := db.Exec(oneOpen).Error; err != nil {
		return fmt.Errorf("failed to create %s: %w", repository.OneOpenRegisterIndex, err)
	}

	log.Info().Msg("database migrations completed")
	return nil
}
