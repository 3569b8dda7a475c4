package migration

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/julianstephens/termplan/migrations"
)

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "migrate.db"))
	if err != nil {
		t.Fatalf("failed to open sqlite database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestApplyMigrations_SQLite(t *testing.T) {
	db := openSQLite(t)
	files := fstest.MapFS{
		"001_init.sql":  {Data: []byte("CREATE TABLE notes (id TEXT PRIMARY KEY);")},
		"002_title.sql": {Data: []byte("ALTER TABLE notes ADD COLUMN title TEXT;")},
		"README.md":     {Data: []byte("ignored")},
	}
	runner := NewRunner(db, files, DriverSQLite)

	var messages []string
	applied, err := runner.ApplyMigrations(func(s string) { messages = append(messages, s) })
	if err != nil {
		t.Fatalf("ApplyMigrations failed: %v", err)
	}
	if applied != 2 {
		t.Errorf("applied = %d, want 2", applied)
	}
	if len(messages) == 0 {
		t.Error("expected progress messages")
	}

	version, err := runner.GetCurrentVersion()
	if err != nil || version != 2 {
		t.Fatalf("GetCurrentVersion() = %d, %v", version, err)
	}

	applied, err = runner.ApplyMigrations(nil)
	if err != nil || applied != 0 {
		t.Errorf("second run applied %d, err %v", applied, err)
	}
	if err := runner.ValidateVersion(); err != nil {
		t.Errorf("ValidateVersion() = %v", err)
	}
}

func TestApplyMigrations_FailureRollsBack(t *testing.T) {
	db := openSQLite(t)
	files := fstest.MapFS{
		"001_init.sql":   {Data: []byte("CREATE TABLE notes (id TEXT PRIMARY KEY);")},
		"002_broken.sql": {Data: []byte("ALTER TABLE missing ADD COLUMN x TEXT;")},
	}
	runner := NewRunner(db, files, DriverSQLite)

	applied, err := runner.ApplyMigrations(nil)
	if err == nil {
		t.Fatal("expected the broken migration to fail")
	}
	if applied != 1 {
		t.Errorf("applied = %d, want 1", applied)
	}
	if v, _ := runner.GetCurrentVersion(); v != 1 {
		t.Errorf("version = %d, want 1", v)
	}
}

func TestReadMigrationFiles_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		files fstest.MapFS
	}{
		{"missing name", fstest.MapFS{"001.sql": {Data: []byte("")}}},
		{"non numeric", fstest.MapFS{"abc_init.sql": {Data: []byte("")}}},
		{"zero version", fstest.MapFS{"000_init.sql": {Data: []byte("")}}},
		{"duplicate", fstest.MapFS{"001_a.sql": {Data: []byte("")}, "001_b.sql": {Data: []byte("")}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := NewRunner(nil, tt.files, DriverSQLite)
			if _, err := runner.ReadMigrationFiles(); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestValidateVersion_TooNew(t *testing.T) {
	db := openSQLite(t)
	runner := NewRunner(db, fstest.MapFS{"001_init.sql": {Data: []byte("SELECT 1;")}}, DriverSQLite)
	if err := runner.EnsureSchemaVersionTable(); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (7)"); err != nil {
		t.Fatal(err)
	}

	if err := runner.ValidateVersion(); !errors.Is(err, ErrSchemaTooNew) {
		t.Errorf("ValidateVersion() = %v, want ErrSchemaTooNew", err)
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	for _, driver := range []Driver{DriverSQLite, DriverPostgres} {
		sub, err := Sub(migrations.FS, driver)
		if err != nil {
			t.Fatalf("Sub(%s) failed: %v", driver, err)
		}
		latest, err := NewRunner(nil, sub, driver).GetLatestVersion()
		if err != nil || latest < 1 {
			t.Errorf("%s: latest version = %d, err %v", driver, latest, err)
		}
	}

	db := openSQLite(t)
	sub, _ := Sub(migrations.FS, DriverSQLite)
	if _, err := NewRunner(db, sub, DriverSQLite).ApplyMigrations(nil); err != nil {
		t.Fatalf("embedded sqlite migrations failed: %v", err)
	}
}

// Set POSTGRES_TEST_URL to run against a real server, e.g.
// postgres://user@localhost:5432/testdb?sslmode=disable
func TestApplyMigrations_Postgres(t *testing.T) {
	connStr := os.Getenv("POSTGRES_TEST_URL")
	if connStr == "" {
		t.Skip("POSTGRES_TEST_URL not set, skipping PostgreSQL integration test")
	}
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatalf("failed to open postgres database: %v", err)
	}
	defer func() {
		db.Exec("DROP TABLE IF EXISTS schema_version")
		db.Exec("DROP TABLE IF EXISTS migration_probe")
		db.Close()
	}()

	files := fstest.MapFS{"001_probe.sql": {Data: []byte("CREATE TABLE migration_probe (id SERIAL PRIMARY KEY);")}}
	runner := NewRunner(db, files, DriverPostgres)
	if _, err := runner.ApplyMigrations(nil); err != nil {
		t.Fatalf("ApplyMigrations failed: %v", err)
	}
	if v, err := runner.GetCurrentVersion(); err != nil || v != 1 {
		t.Errorf("GetCurrentVersion() = %d, %v", v, err)
	}
}
