package database

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"blogicum/config"

	"go.opentelemetry.io/otel/trace"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	gormtracing "gorm.io/plugin/opentelemetry/tracing"
)

var ErrNotFound = errors.New("record not found")

// Open connects to the configured database. Every statement is recorded as a
// span on tp, a nil tp falls back to the global provider.
func Open(cfg config.DatabaseConfig, debug bool, tp trace.TracerProvider) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(withForeignKeys(cfg.DSN))
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	logLevel := logger.Warn
	if debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.New(log.New(os.Stdout, "\r\n", log.LstdFlags), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logLevel,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		}),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Driver, err)
	}

	traceOpts := []gormtracing.Option{gormtracing.WithoutMetrics(), gormtracing.WithoutQueryVariables()}
	if tp != nil {
		traceOpts = append(traceOpts, gormtracing.WithTracerProvider(tp))
	}
	if err := db.Use(gormtracing.NewPlugin(traceOpts...)); err != nil {
		return nil, fmt.Errorf("register query tracing: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

// withForeignKeys makes sure SQLite enforces the cascade rules declared on
// the models, it does not by default.
func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&_foreign_keys=on"
	}
	return dsn + "?_foreign_keys=on"
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&User{}, &Category{}, &Location{}, &Post{}, &Comment{})
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
