package system

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/termplan/internal/cli"
	"github.com/julianstephens/termplan/internal/constants"
	"github.com/julianstephens/termplan/internal/instance"
	"github.com/julianstephens/termplan/internal/storage"
	"github.com/julianstephens/termplan/internal/storage/postgres"
	"github.com/julianstephens/termplan/internal/storage/sqlite"
)

type InitCmd struct {
	Force  bool   `help:"Force reset by deleting existing database before initialization."`
	Source string `help:"Source database path or connection string to copy data from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	// If force flag is provided, delete existing database
	if c.Force {
		if _, ok := ctx.Store.(*sqlite.Store); !ok {
			return fmt.Errorf("--force only resets SQLite databases; drop the %s schema manually for PostgreSQL", constants.AppName)
		}
		dbPath := ctx.Store.GetConfigPath()
		// Don't delete if it's the source (user error protection)
		if c.Source != "" {
			absDbPath, err := filepath.Abs(dbPath)
			if err == nil {
				dbPath = absDbPath
			}
			absSource, err := filepath.Abs(c.Source)
			if err == nil && absSource == dbPath {
				return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
			}
		}
		if err := instance.Check(dbPath); err != nil {
			return fmt.Errorf("cannot reset a database that is open elsewhere: %w", err)
		}
		if _, err := os.Stat(dbPath); err == nil {
			// Database exists, close it first to prevent file locking issues
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			if err := os.Remove(dbPath); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			fmt.Printf("Deleted existing database at: %s\n", dbPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized %s storage at: %s\n", constants.AppName, ctx.Store.GetConfigPath())

	if c.Source != "" {
		fmt.Printf("Copying data from: %s\n", c.Source)
		source, err := openSource(c.Source)
		if err != nil {
			return err
		}
		if err := source.Load(); err != nil {
			return fmt.Errorf("failed to load source database: %w", err)
		}
		defer source.Close()

		if err := copyData(source, ctx.Store); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		fmt.Println("Migration completed successfully!")
	}
	return nil
}

func openSource(source string) (storage.Provider, error) {
	if !postgres.IsConnString(source) {
		return sqlite.NewStore(source), nil
	}
	if valid, err := postgres.ValidateConnString(source); !valid {
		if errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return nil, fmt.Errorf("PostgreSQL source connection string contains embedded credentials. Use environment variables or .pgpass instead")
		}
		return nil, err
	}
	return postgres.New(source), nil
}

// copyData moves every record from src into dst. Plan runs are replayed
// oldest first so dst keeps their order.
func copyData(src, dst storage.Provider) error {
	fmt.Println("  Copying settings...")
	settings, err := src.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings from source: %w", err)
	}
	if err := dst.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings to destination: %w", err)
	}

	fmt.Println("  Copying tasks...")
	tasks, err := src.GetAllTasksIncludingDeleted()
	if err != nil {
		return fmt.Errorf("failed to get tasks from source: %w", err)
	}
	for _, task := range tasks {
		if err := dst.AddTask(task); err != nil {
			return fmt.Errorf("failed to add task %s: %w", task.ID, err)
		}
		if task.DeletedAt != nil {
			if err := dst.DeleteTask(task.ID); err != nil {
				return fmt.Errorf("failed to mark task %s deleted: %w", task.ID, err)
			}
		}
	}
	fmt.Printf("    Copied %d tasks\n", len(tasks))

	fmt.Println("  Copying events...")
	events, err := src.GetAllEvents()
	if err != nil {
		return fmt.Errorf("failed to get events from source: %w", err)
	}
	for _, e := range events {
		if err := dst.AddEvent(e); err != nil {
			return fmt.Errorf("failed to add event %s: %w", e.ID, err)
		}
	}
	fmt.Printf("    Copied %d events\n", len(events))

	fmt.Println("  Copying energy profile...")
	profile, err := src.GetEnergyProfile()
	if err != nil {
		return fmt.Errorf("failed to get energy profile from source: %w", err)
	}
	if err := dst.SaveEnergyProfile(profile); err != nil {
		return fmt.Errorf("failed to save energy profile: %w", err)
	}

	fmt.Println("  Copying plans...")
	runs, err := src.ListPlanRuns()
	if err != nil {
		return fmt.Errorf("failed to list plans from source: %w", err)
	}
	for i := len(runs) - 1; i >= 0; i-- {
		run, err := src.GetPlanRun(runs[i].Revision)
		if err != nil {
			return fmt.Errorf("failed to get plan revision %d: %w", runs[i].Revision, err)
		}
		if _, err := dst.SavePlanRun(run); err != nil {
			return fmt.Errorf("failed to save plan revision %d: %w", run.Revision, err)
		}
	}
	fmt.Printf("    Copied %d plans\n", len(runs))
	return nil
}
