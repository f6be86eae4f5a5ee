package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed files/*.sql
var migrationFiles embed.FS

// Migrator is the part of migrate.Migrate this package drives.
type Migrator interface {
	Up() error
}

// MigrationEngine builds a Migrator for db, so tests can avoid touching
// a real database.
type MigrationEngine func(db *sql.DB) (Migrator, error)

type Migration struct {
	db     *sql.DB
	engine MigrationEngine
}

func NewMigration(db *sql.DB, engine MigrationEngine) *Migration {
	return &Migration{
		db:     db,
		engine: engine,
	}
}

// DefaultEngine reads the embedded schema and applies it through the
// sqlite3 driver. The returned Migrator is never closed: closing it
// would close db, which the caller owns.
func DefaultEngine(db *sql.DB) (Migrator, error) {
	src, err := iofs.New(migrationFiles, "files")
	if err != nil {
		return nil, fmt.Errorf("create source driver: %w", err)
	}

	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("create database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("create migrate instance: %w", err)
	}
	return m, nil
}

func (mg *Migration) Up() error {
	m, err := mg.engine(mg.db)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up: %w", err)
	}
	return nil
}
