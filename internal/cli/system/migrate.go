package system

import (
	"fmt"

	"github.com/julianstephens/termplan/internal/cli"
)

// schemaStore is implemented by both storage backends.
type schemaStore interface {
	Migrate() (int, error)
	SchemaVersion() (current, latest int, err error)
	Ping() error
}

func asSchemaStore(ctx *cli.Context) (schemaStore, error) {
	s, ok := ctx.Store.(schemaStore)
	if !ok {
		return nil, fmt.Errorf("storage backend %T does not support migrations", ctx.Store)
	}
	return s, nil
}

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	store, err := asSchemaStore(ctx)
	if err != nil {
		return err
	}

	before, latest, err := store.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	count, err := store.Migrate()
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if count == 0 {
		fmt.Printf("No migrations to apply. Database is up to date (version %d).\n", before)
	} else {
		fmt.Printf("Successfully applied %d migration(s): version %d -> %d.\n", count, before, latest)
	}
	return nil
}
