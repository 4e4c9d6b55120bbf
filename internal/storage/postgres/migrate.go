package postgres

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Direction selects which way Migrate moves the schema.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// MigrationStatus is the schema version after a migration run.
type MigrationStatus struct {
	Version uint
	Dirty   bool
	// Changed is false when the schema was already at the requested version.
	Changed bool
}

// Migrate applies the SQL migrations in sourceDir to the database at dsn. steps
// limits how many migrations run; 0 runs all of them.
//
// Precondition: sourceDir must contain golang-migrate style NNN_name.{up,down}.sql files.
// Postcondition: Returns the resulting version, or an error naming the failed step.
func Migrate(dsn, sourceDir string, direction Direction, steps int) (MigrationStatus, error) {
	if steps < 0 {
		return MigrationStatus{}, fmt.Errorf("steps must be >= 0, got %d", steps)
	}
	if direction != Up && direction != Down {
		return MigrationStatus{}, fmt.Errorf("invalid direction %q: must be %q or %q", direction, Up, Down)
	}
	m, err := migrate.New("file://"+sourceDir, dsn)
	if err != nil {
		return MigrationStatus{}, fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	switch {
	case direction == Up && steps > 0:
		err = m.Steps(steps)
	case direction == Up:
		err = m.Up()
	case steps > 0:
		err = m.Steps(-steps)
	default:
		err = m.Down()
	}
	changed := true
	if errors.Is(err, migrate.ErrNoChange) {
		changed, err = false, nil
	}
	if err != nil {
		return MigrationStatus{}, fmt.Errorf("migrating %s: %w", direction, err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return MigrationStatus{}, fmt.Errorf("reading schema version: %w", err)
	}
	return MigrationStatus{Version: version, Dirty: dirty, Changed: changed}, nil
}
