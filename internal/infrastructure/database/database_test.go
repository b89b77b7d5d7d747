package database

import (
	"context"
	"embed"
	"path/filepath"
	"testing"
)

//go:embed testdata/*.sql
var testMigrations embed.FS

// useTestMigrations points the package at the testdata schema and restores
// the previous registration when the test finishes.
func useTestMigrations(t *testing.T) {
	t.Helper()
	prevFS, prevDir := MigrationsFS, MigrationsDir
	MigrationsFS = testMigrations
	MigrationsDir = "testdata"
	t.Cleanup(func() {
		MigrationsFS = prevFS
		MigrationsDir = prevDir
	})
}

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(Config{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpen(t *testing.T) {
	db := openTestDB(t)

	if err := db.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestOpen_InvalidDirectory(t *testing.T) {
	_, err := Open(Config{
		Path:        "/proc/nonexistent/test.db",
		BusyTimeout: 1,
	})
	if err == nil {
		t.Error("Open() expected error for unwritable directory")
	}
}

func TestClose(t *testing.T) {
	db := openTestDB(t)

	if err := db.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestClose_Nil(t *testing.T) {
	db := &DB{}
	if err := db.Close(); err != nil {
		t.Errorf("Close() on zero DB error = %v, want nil", err)
	}
}

func TestMigrate(t *testing.T) {
	useTestMigrations(t)
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	// The testdata migration creates sensor_readings.
	var count int
	err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sensor_readings",
	).Scan(&count)
	if err != nil {
		t.Errorf("migrated table missing: %v", err)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	useTestMigrations(t)
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("first Migrate() error = %v", err)
	}
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}

	var applied int
	err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM schema_migrations",
	).Scan(&applied)
	if err != nil {
		t.Fatalf("querying schema_migrations: %v", err)
	}
	if applied != 1 {
		t.Errorf("applied migrations = %d, want 1", applied)
	}
}

func TestParseMigrationFilename(t *testing.T) {
	tests := []struct {
		filename    string
		wantVersion string
		wantName    string
		wantOK      bool
	}{
		{"20260315_090000_occupancy_events.sql", "20260315_090000", "occupancy_events", true},
		{"20260315_090000_multi_word_name.sql", "20260315_090000", "multi_word_name", true},
		{"README.md", "", "", false},
		{"notaversion.sql", "", "", false},
	}

	for _, tt := range tests {
		version, name, ok := parseMigrationFilename(tt.filename)
		if ok != tt.wantOK || version != tt.wantVersion || name != tt.wantName {
			t.Errorf("parseMigrationFilename(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tt.filename, version, name, ok, tt.wantVersion, tt.wantName, tt.wantOK)
		}
	}
}
