package database

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/wordsync/api/internal/config"
	"github.com/wordsync/api/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	// DriverMemory keeps everything in process; it never reaches Connect.
	DriverMemory = "memory"
)

func Connect(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DatabaseDriver {
	case DriverPostgres:
		dialector = postgres.Open(cfg.DatabaseURL)
	case DriverSQLite:
		dialector = sqlite.Open(cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}

	logLevel := logger.Warn
	if cfg.IsDev() {
		logLevel = logger.Info
	}

	// Logs go to stderr; stdout carries wordctl output.
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.New(log.New(os.Stderr, "\r\n", log.LstdFlags), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logLevel,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, err
	}

	if cfg.DatabaseDriver == DriverSQLite {
		// One connection keeps SQLite writers serialized and lets ":memory:"
		// databases survive across queries.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.Word{}); err != nil {
		return err
	}

	if db.Dialector.Name() != DriverPostgres {
		return nil
	}

	// modified_time must compare byte-wise like the memory store and SQLite's
	// BINARY collation; a locale collation orders punctuation differently.
	var current sql.NullString
	err := db.Raw(`SELECT collation_name FROM information_schema.columns
		WHERE table_schema = current_schema() AND table_name = 'words' AND column_name = 'modified_time'`).
		Row().Scan(&current)
	if err != nil {
		return fmt.Errorf("read modified_time collation: %w", err)
	}
	if !NeedsByteCollation(current) {
		return nil
	}
	return db.Exec(`ALTER TABLE words ALTER COLUMN modified_time TYPE varchar(64) COLLATE "C"`).Error
}

// NeedsByteCollation reports whether a Postgres column collation differs
// from "C". A NULL collation means the database default.
func NeedsByteCollation(current sql.NullString) bool {
	return !current.Valid || current.String != "C"
}
