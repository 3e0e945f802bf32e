package dao

import (
	"fmt"
	"strings"
	"time"

	"github.com/Taolee-crypto/timelink-backend/config"
	"github.com/Taolee-crypto/timelink-backend/models"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// sqlitePragmas mirror the pool defaults used for local SQLite storage:
// WAL for concurrent readers, a busy timeout instead of immediate
// SQLITE_BUSY, and NORMAL sync.
const sqlitePragmas = "_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(0)"

// Open connects to the configured database. SQLite is limited to a single
// connection so that write transactions are serialized by the pool rather
// than failing with SQLITE_BUSY on lock upgrade.
func Open(cfg config.Database) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel(cfg.LogLevel)),
		NowFunc:        func() time.Time { return time.Now().UTC() },
		TranslateError: true,
	}

	switch cfg.Driver {
	case "postgres":
		return gorm.Open(postgres.Open(cfg.PostgresDSN()), gormCfg)
	case "sqlite":
		dsn := cfg.DSN
		if dsn == "" {
			dsn = cfg.Path
			if strings.Contains(dsn, "?") {
				dsn += "&" + sqlitePragmas
			} else {
				dsn += "?" + sqlitePragmas
			}
		}
		db, err := gorm.Open(sqlite.Open(dsn), gormCfg)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(models.All()...)
}

func logLevel(level string) logger.LogLevel {
	switch level {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
