package database

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
)

var ErrUnsupportedDriver = gorm.ErrInvalidDB

type Opts struct {
	Driver             string
	DSN                string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	LogLevel           string
}

func NewGorm(o Opts) (*gorm.DB, error) {
	var dial gorm.Dialector
	switch o.Driver {
	case "postgres":
		dial = postgres.Open(o.DSN)
	case "mysql":
		dial = mysql.Open(o.DSN)
	default:
		return nil, ErrUnsupportedDriver
	}

	lvl := logger.Warn
	switch o.LogLevel {
	case "silent":
		lvl = logger.Silent
	case "error":
		lvl = logger.Error
	case "info":
		lvl = logger.Info
	}

	db, err := gorm.Open(dial, &gorm.Config{
		Logger: logger.Default.LogMode(lvl),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(o.MaxOpenConns)
	sqlDB.SetMaxIdleConns(o.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(o.ConnMaxLifetimeMin) * time.Minute)

	db = db.Session(&gorm.Session{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
	})
	return db, nil
}

// Migrate creates the schema plus the uniqueness guards the application
// relies on. On postgres, login/email are unique among active rows only, so
// a deleted account releases its identifiers. mysql has no partial indexes;
// there the indexes are global and deleted identifiers stay reserved.
func Migrate(db *gorm.DB, driver string, models ...any) error {
	if err := db.AutoMigrate(models...); err != nil {
		return err
	}
	switch driver {
	case "postgres":
		stmts := []string{
			`CREATE UNIQUE INDEX IF NOT EXISTS uq_users_login_active ON users (login) WHERE deleted_at IS NULL`,
			`CREATE UNIQUE INDEX IF NOT EXISTS uq_users_email_active ON users (email) WHERE deleted_at IS NULL`,
		}
		for _, s := range stmts {
			if err := db.Exec(s).Error; err != nil {
				return err
			}
		}
	case "mysql":
		for _, s := range []struct{ name, col string }{
			{"uq_users_login_active", "login"},
			{"uq_users_email_active", "email"},
		} {
			if !db.Migrator().HasIndex("users", s.name) {
				stmt := fmt.Sprintf("CREATE UNIQUE INDEX %s ON users (%s)", s.name, s.col)
				if err := db.Exec(stmt).Error; err != nil {
					return err
				}
			}
		}
	}
	return nil
}
