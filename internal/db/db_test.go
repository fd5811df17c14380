package db

import (
	"context"
	"io/fs"
	"strings"
	"testing"

	"github.com/Emiliocodings/ServiceUsers/config"
)

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.DatabaseConfig{
		URL:    "postgres://localhost/users",
		Driver: "mysql",
	})
	if err == nil || !strings.Contains(err.Error(), "unsupported database driver") {
		t.Fatalf("expected unsupported driver error, got %v", err)
	}
}

func TestOpenRejectsMalformedPGXURL(t *testing.T) {
	_, err := Open(context.Background(), config.DatabaseConfig{
		URL:    "postgres://%zz",
		Driver: DriverPGX,
	})
	if err == nil || !strings.Contains(err.Error(), "parse database url") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	up, err := fs.ReadFile(migrationsFS, "migrations/000001_create_users.up.sql")
	if err != nil {
		t.Fatalf("read up migration: %v", err)
	}
	for _, want := range []string{"CREATE TABLE IF NOT EXISTS users", "UNIQUE (email)", "updated_at  TIMESTAMPTZ,"} {
		if !strings.Contains(string(up), want) {
			t.Fatalf("up migration missing %q", want)
		}
	}

	if _, err := fs.ReadFile(migrationsFS, "migrations/000001_create_users.down.sql"); err != nil {
		t.Fatalf("read down migration: %v", err)
	}
}
