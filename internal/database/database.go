package database

import (
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/donorbase/internal/entities"
)

type Database struct {
	DB *gorm.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Printf("Database initialized at %s", dbPath)

	return &Database{DB: db}, nil
}

// Migrate applies the schema: auto-migration for every entity plus the
// constraints gorm cannot express in struct tags.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&entities.Donor{},
		&entities.Donation{},
		&entities.ImportRun{},
		&entities.AuditEvent{},
		&entities.AdminUser{},
	)
	if err != nil {
		return err
	}

	// Provider transaction ids are globally unique when present. The
	// pipeline's lookups do not serialize concurrent writers for different
	// donors, so the guarantee has to live in the schema.
	return db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_donations_transaction_id_unique
		ON donations(transaction_id) WHERE transaction_id <> '' AND deleted_at IS NULL`).Error
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
