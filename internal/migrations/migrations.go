package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed *.sql
var MigrationFiles embed.FS

// ErrPendingMigrations is returned when auto-migration is disabled and the
// database is behind the embedded migrations.
var ErrPendingMigrations = errors.New("database schema has pending migrations")

// MigrationError reports which step of schema preparation failed.
// Startup must not continue past it.
type MigrationError struct {
	Step string
	Err  error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("migration step %q failed: %v", e.Step, e.Err)
}

func (e *MigrationError) Unwrap() error {
	return e.Err
}

// migrator is the subset of *migrate.Migrate used by apply.
type migrator interface {
	Version() (uint, bool, error)
	Force(version int) error
	Up() error
}

// Run brings the schema to the latest embedded version.
// If autoMigrate is false, pending migrations are reported as an error
// instead of being applied.
func Run(db *sql.DB, autoMigrate bool) error {
	// Create iofs source from embedded files
	sourceDriver, err := iofs.New(MigrationFiles, ".")
	if err != nil {
		return &MigrationError{Step: "source", Err: err}
	}

	latest, err := latestVersion(sourceDriver)
	if err != nil {
		return &MigrationError{Step: "source", Err: err}
	}

	// Create postgres database driver; it holds an advisory lock while migrating
	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return &MigrationError{Step: "driver", Err: err}
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return &MigrationError{Step: "instance", Err: err}
	}

	return apply(m, latest, autoMigrate)
}

func apply(m migrator, latest uint, autoMigrate bool) error {
	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return &MigrationError{Step: "version", Err: err}
	}

	if dirty {
		slog.Warn("[Migrations] Database is in dirty state - migration was interrupted",
			"version", version,
			"action", "forcing previous version and re-running",
		)

		// Every migration is written with IF [NOT] EXISTS, so re-running the
		// interrupted one is safe. Force(-1) means "no version".
		previous := int(version) - 1
		if err := m.Force(previous); err != nil {
			return &MigrationError{Step: "recover", Err: fmt.Errorf("force version %d: %w", previous, err)}
		}
		version = uint(max(previous, 0))
		slog.Info("[Migrations] Recovered dirty migration state", "forced_version", previous)
	}

	if !autoMigrate {
		if dirty || version < latest {
			slog.Error("[Migrations] Auto-migration disabled and schema is behind",
				"current_version", version,
				"latest_version", latest,
			)
			return &MigrationError{Step: "pending", Err: ErrPendingMigrations}
		}
		slog.Info("[Migrations] Auto-migration disabled, schema is current", "version", version)
		return nil
	}

	slog.Info("[Migrations] Running database migrations",
		"current_version", version,
		"latest_version", latest,
	)

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			slog.Info("[Migrations] Database schema is up to date", "version", version)
			return nil
		}
		return &MigrationError{Step: "up", Err: err}
	}

	newVersion, _, err := m.Version()
	if err != nil {
		return &MigrationError{Step: "version", Err: err}
	}

	slog.Info("[Migrations] Database migrations completed successfully",
		"from_version", version,
		"to_version", newVersion,
	)
	return nil
}

// latestVersion walks the source to its last migration.
func latestVersion(src source.Driver) (uint, error) {
	version, err := src.First()
	if err != nil {
		return 0, fmt.Errorf("read first migration: %w", err)
	}
	for {
		next, err := src.Next(version)
		if errors.Is(err, fs.ErrNotExist) {
			return version, nil
		}
		if err != nil {
			return 0, fmt.Errorf("read migration after %d: %w", version, err)
		}
		version = next
	}
}
