package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"socialnet/backend/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

// Options configures Open.
type Options struct {
	Driver       string
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
	Tracing      bool
	LogLevel     logger.LogLevel
}

// Open connects to the configured database, retrying while it comes up.
func Open(opts Options) (*gorm.DB, error) {
	dialector, err := dialectorFor(opts.Driver, opts.DSN)
	if err != nil {
		return nil, err
	}

	level := opts.LogLevel
	if level == 0 {
		level = logger.Warn
	}
	customLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := openWithRetry(dialector, &gorm.Config{
		Logger:         customLogger,
		TranslateError: true,
	}, 5, time.Second)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if opts.Tracing {
		if err := db.Use(tracing.NewPlugin()); err != nil {
			return nil, fmt.Errorf("gorm tracing plugin: %w", err)
		}
	}

	log.Println("Database connection established.")
	return db, nil
}

// Migrate creates or updates the schema for every model.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.FriendEdge{}, &models.Post{}, &models.Message{}); err != nil {
		return err
	}
	log.Println("Database migrated successfully.")
	return nil
}

func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "", "postgres":
		return postgres.Open(dsn), nil
	case "mysql":
		return mysql.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

func openWithRetry(dialector gorm.Dialector, cfg *gorm.Config, attempts int, sleep time.Duration) (*gorm.DB, error) {
	var last error
	for i := 1; i <= attempts; i++ {
		db, err := gorm.Open(dialector, cfg)
		if err == nil {
			sqlDB, dbErr := db.DB()
			if dbErr == nil {
				if dbErr = sqlDB.Ping(); dbErr == nil {
					return db, nil
				}
			}
			err = dbErr
		}
		last = err
		if i < attempts {
			log.Printf("database not ready (attempt %d/%d): %v", i, attempts, err)
			time.Sleep(sleep)
			sleep *= 2
		}
	}
	return nil, fmt.Errorf("connect database: %w", last)
}
