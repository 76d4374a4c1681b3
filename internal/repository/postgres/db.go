package postgres

import (
	"context"
	"fmt"
	"time"

	"physiohub/clinic-app/internal/domain"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Default connection timeout for the initial ping
const defaultTimeout = 10 * time.Second

// Connect opens a gorm connection to Postgres and verifies it with a ping.
// TranslateError is enabled so unique-constraint violations surface as
// gorm.ErrDuplicatedKey instead of driver-specific errors.
func Connect(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	sqlDB.SetMaxOpenConns(10)

	pingCtx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return db, nil
}

// Migrate creates/updates the schema for all aggregates.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Account{},
		&domain.Exercise{},
		&domain.Treatment{},
		&domain.TreatmentExercise{},
	)
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
