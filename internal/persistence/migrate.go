package persistence

import (
	"fmt"
	"sync"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// IMigrateTool applies schema migrations to the trade-log database.
type IMigrateTool interface {
	Migrate(source string, connStr string) error
}

type migrateTool struct{}

var once sync.Once // nolint
var mutex = &sync.Mutex{}
var singleton IMigrateTool

// GetMigrateTool returns the singleton migration tool.
func GetMigrateTool() IMigrateTool {
	once.Do(func() {
		singleton = &migrateTool{}
	})
	return singleton
}

// Migrate runs every pending migration under source against connStr. It
// unwinds a dirty version one step before retrying, matching the
// behavior golang-migrate recommends for crash recovery.
func (mt *migrateTool) Migrate(source string, connStr string) error {
	mutex.Lock()
	defer mutex.Unlock()

	fmt.Println("migrating trade log schema...")

	mg, err := migrate.New(source, connStr)
	if err != nil {
		return fmt.Errorf("persistence: new migrate instance: %w", err)
	}
	defer mg.Close()

	version, dirty, err := mg.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("persistence: read migration version: %w", err)
	}
	if dirty {
		if err := mg.Force(int(version) - 1); err != nil {
			return fmt.Errorf("persistence: force migration version: %w", err)
		}
	}

	if err := mg.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("persistence: run migrations: %w", err)
	}

	fmt.Println("migration done")
	return nil
}
