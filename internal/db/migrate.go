package db

import (
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/ephyslab/synapdb/pkg/schema"
)

//go:embed migrations/*.sql
var migrations embed.FS

// migrate runs the embedded bookkeeping migrations. Entity tables are not
// migrated this way; they are generated from the descriptor set. Only the
// metadata that must survive a schema reset lives here.
func (d *Database) migrate() error {
	goose.SetBaseFS(migrations)

	dialect := "sqlite"
	if d.adapter.Dialect() == schema.DialectPostgres {
		dialect = "postgres"
	}
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	if err := goose.Up(d.adapter.Handle(), "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
