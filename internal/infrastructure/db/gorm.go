package db

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/gommon/log"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Options tunes the pool. MaxConns is fixed for the life of the pool.
type Options struct {
	MaxConns    int
	PingTimeout time.Duration
	LogLevel    logger.LogLevel
	// Label names the database in log lines, e.g. "scaffold at db:3306".
	Label string
}

func (o Options) withDefaults() Options {
	if o.MaxConns < 1 {
		o.MaxConns = 4
	}
	if o.PingTimeout <= 0 {
		o.PingTimeout = 5 * time.Second
	}
	if o.LogLevel == 0 {
		o.LogLevel = logger.Warn
	}
	return o
}

// Dialector maps a driver name to its gorm dialector.
func Dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "mysql":
		// the version query runs on context.Background at open; skipping it
		// leaves the first connection to the bounded ping in OpenGormWithDialector
		return mysql.New(mysql.Config{DSN: dsn, SkipInitializeWithVersion: true}), nil
	case "sqlite":
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("db: unsupported driver %q", driver)
	}
}

func OpenGorm(driver, dsn string, opts Options) (*gorm.DB, error) {
	dial, err := Dialector(driver, dsn)
	if err != nil {
		return nil, err
	}
	return OpenGormWithDialector(dial, opts)
}

// OpenGormWithDialector opens the pool and verifies one connection.
func OpenGormWithDialector(dial gorm.Dialector, opts Options) (*gorm.DB, error) {
	opts = opts.withDefaults()
	cfg := &gorm.Config{
		Logger:               logger.Default.LogMode(opts.LogLevel),
		DisableAutomaticPing: true,
	}
	db, err := gorm.Open(dial, cfg)
	if err != nil {
		return nil, fmt.Errorf("db: open %s: %w", opts.Label, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("db: pool %s: %w", opts.Label, err)
	}
	sqlDB.SetMaxOpenConns(opts.MaxConns)
	sqlDB.SetMaxIdleConns(opts.MaxConns)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), opts.PingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("db: ping %s: %w", opts.Label, err)
	}
	if opts.Label != "" {
		log.Infof("gorm: connected to database %s", opts.Label)
	} else {
		log.Info("gorm: connected")
	}
	return db, nil
}
