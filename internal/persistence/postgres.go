// Package persistence is the optional, downstream trade-log sink: a hook
// registered on orderbook.Hooks.OnTrade that asynchronously appends to a
// Postgres table, off the matching engine's synchronous path. The book
// works identically with no hooks registered at all — this package exists
// to give offline analytics something durable to read, not to make the
// matching engine itself durable. The REST/SSE adapters read from the book,
// not from this table.
package persistence

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/cenkalti/backoff"
	_ "github.com/lib/pq" // nolint
	"go.uber.org/zap"
	pg "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
)

// PostgresConfig is the connection surface for the trade-log sink.
type PostgresConfig struct {
	DataSource       string          `yaml:"data_source"`
	MaxOpenConns     int             `yaml:"max_open_conns"`
	MaxIdleConns     int             `yaml:"max_idle_conns"`
	ConnMaxLifeTime  time.Duration   `yaml:"conn_max_life_time"`
	MigrationConnURL string          `yaml:"migration_conn_url"`
	SlaveSources     []string        `yaml:"slave_sources"`
	LogLevel         logger.LogLevel `yaml:"log_level"`
}

// InitPostgres opens a gorm connection per cfg, wiring read replicas (if
// any) through gorm's dbresolver.
func InitPostgres(cfg *PostgresConfig) (*gorm.DB, error) {
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      cfg.LogLevel,
			Colorful:      true,
		},
	)

	db, err := gorm.Open(pg.Open(cfg.DataSource), &gorm.Config{Logger: gormLogger})
	if err != nil {
		zap.S().Debugf("open postgres fail: %+v", err)
		return nil, err
	}

	var replicas []gorm.Dialector
	for _, s := range cfg.SlaveSources {
		replicas = append(replicas, pg.Open(s))
	}
	if len(replicas) > 0 {
		zap.S().Debugf("register postgres replicas")
		if err := db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: replicas,
			Policy:   dbresolver.RandomPolicy{},
		})); err != nil {
			zap.S().Debugf("init postgres replicas fail: %+v", err)
			return nil, err
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		zap.S().Debugf("get DB instance failed: %v", err)
		return nil, err
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifeTime)

	return db, nil
}

// InitPostgresWithBackoff retries InitPostgres with exponential backoff,
// for use at process startup where the database may not be ready yet. It
// returns an error instead of panicking so a caller can fall back to
// running with persistence disabled.
func InitPostgresWithBackoff(cfg *PostgresConfig) (*gorm.DB, error) {
	var db *gorm.DB
	boff := backoff.NewExponentialBackOff()
	err := backoff.Retry(func() error {
		var err error
		db, err = InitPostgres(cfg)
		if err != nil {
			fmt.Printf("connect postgres error: %s\n", err.Error())
		}
		return err
	}, boff)
	if err != nil {
		return nil, err
	}
	return db, nil
}
