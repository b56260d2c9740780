package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
	goosedb "github.com/pressly/goose/v3/database"
)

//go:embed migrations
var migrations embed.FS

// Migrate applies the embedded schema migrations for the given driver.
// Each driver has its own directory under migrations/ with matching version numbers.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	var dialect goosedb.Dialect
	switch driver {
	case DriverPostgres:
		dialect = goosedb.DialectPostgres
	case DriverSQLite:
		dialect = goosedb.DialectSQLite3
	default:
		return fmt.Errorf("unsupported database driver %q", driver)
	}
	fsys, err := fs.Sub(migrations, "migrations/"+driver)
	if err != nil {
		return fmt.Errorf("migrations for %s: %w", driver, err)
	}
	p, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	if _, err := p.Up(ctx); err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}
