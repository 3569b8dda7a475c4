package system

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/julianstephens/termplan/internal/cli"
	"github.com/julianstephens/termplan/internal/constants"
	"github.com/julianstephens/termplan/internal/keyring"
	"github.com/julianstephens/termplan/internal/storage/postgres"
)

// KeyringSetCmd stores the PostgreSQL connection string used by --config keyring.
type KeyringSetCmd struct {
	ConnectionString string `arg:"" help:"PostgreSQL connection string to store in the keyring."`
	Verify           bool   `help:"Connect and check the schema before storing."`
}

func (cmd *KeyringSetCmd) Run(ctx *cli.Context) error {
	if !postgres.IsConnString(cmd.ConnectionString) {
		return errors.New("connection string must be a valid PostgreSQL connection string")
	}

	if _, err := postgres.ValidateConnString(cmd.ConnectionString); err != nil {
		if !errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return fmt.Errorf("invalid connection string: %w", err)
		}
		// The keyring is encrypted, so a password is acceptable here.
		fmt.Println(cli.Warn("Connection string contains a password; it is stored as-is in the encrypted OS keyring."))
	}

	if cmd.Verify {
		if err := verifyConnection(cmd.ConnectionString); err != nil {
			return err
		}
	}

	if err := keyring.SetConnectionString(cmd.ConnectionString); err != nil {
		return fmt.Errorf("failed to store connection string in keyring: %w", err)
	}

	fmt.Println(cli.Success("Connection string stored in OS keyring"))
	fmt.Printf("  Use it with: %s --config %s <command>\n", constants.AppName, constants.KeyringConfigValue)
	return nil
}

func verifyConnection(connStr string) error {
	store := postgres.New(connStr)
	if err := store.Load(); err != nil {
		return fmt.Errorf("connection check failed: %w", err)
	}
	defer store.Close()

	current, latest, err := store.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	fmt.Printf("Connected: schema version %d of %d\n", current, latest)
	return nil
}

// KeyringGetCmd prints the stored connection string with the password masked.
type KeyringGetCmd struct{}

func (cmd *KeyringGetCmd) Run(ctx *cli.Context) error {
	connStr, err := keyring.GetConnectionString()
	if errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("no connection string in keyring, store one with '%s keyring set'", constants.AppName)
	}
	if err != nil {
		return fmt.Errorf("failed to read keyring: %w", err)
	}
	fmt.Println(maskPassword(connStr))
	return nil
}

type KeyringDeleteCmd struct{}

func (cmd *KeyringDeleteCmd) Run(ctx *cli.Context) error {
	err := keyring.DeleteConnectionString()
	if errors.Is(err, keyring.ErrNotFound) {
		return errors.New("no connection string found in keyring")
	}
	if err != nil {
		return fmt.Errorf("failed to delete connection string from keyring: %w", err)
	}
	fmt.Println(cli.Success("Connection string deleted from OS keyring"))
	return nil
}

// KeyringStatusCmd reports where a connection string would come from.
type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		fmt.Println("❌ OS keyring is not available on this system")
		fmt.Printf("   Set %s or pass --config instead.\n", constants.EnvDBConnection)
		return keyring.ErrKeyringUnavailable
	}

	rows := [][]string{{"OS keyring", "available"}}
	switch connStr, err := keyring.GetConnectionString(); {
	case err == nil:
		rows = append(rows, []string{"Stored connection", maskPassword(connStr)})
	case errors.Is(err, keyring.ErrNotFound):
		rows = append(rows, []string{"Stored connection", "none"})
	default:
		return fmt.Errorf("failed to read keyring: %w", err)
	}
	if env := os.Getenv(constants.EnvDBConnection); env != "" {
		rows = append(rows, []string{constants.EnvDBConnection, maskPassword(env) + " (used when --config is empty)"})
	}
	fmt.Println(cli.Table([]string{"Source", "Value"}, rows))
	return nil
}

// maskPassword hides the password of a URI or key=value connection string.
func maskPassword(connStr string) string {
	if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
		u, err := url.Parse(connStr)
		if err != nil || u.User == nil {
			return connStr
		}
		if _, ok := u.User.Password(); !ok {
			return connStr
		}
		// url.UserPassword would percent-encode the mask
		u.User = url.User(u.User.Username())
		prefix := u.Scheme + "://" + u.User.String()
		return prefix + ":****" + strings.TrimPrefix(u.String(), prefix)
	}

	fields := strings.Fields(connStr)
	for i, f := range fields {
		if k, _, ok := strings.Cut(f, "="); ok && strings.EqualFold(k, "password") {
			fields[i] = k + "=****"
		}
	}
	return strings.Join(fields, " ")
}
