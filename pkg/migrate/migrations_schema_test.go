package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/poliutech/cotizador-backend/pkg/migrate"
)

func TestInitMigrationContainsSchemas(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_init_schema.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no init schema migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE clients",
		"CREATE TABLE catalog_items",
		"CREATE TABLE users",
		"CREATE TABLE quotes",
		"CREATE TABLE quote_lines",
		"CREATE TABLE audit_log_entries",
		"CREATE UNIQUE INDEX idx_quotes_folio",
		"zone_name text NOT NULL DEFAULT ''",
		"zone_percent numeric(5,2) NOT NULL DEFAULT 0",
		"last_notified_at timestamptz",
		"form_keys text[]",
		"ON DELETE CASCADE",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}

	// Client names repeat across representatives and auto-vivification
	// must be able to insert the same name under a different owner.
	if strings.Contains(content, "UNIQUE INDEX idx_clients_name") {
		t.Errorf("clients.name must not carry a unique index")
	}
}

func TestMigrationsDirValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("ValidateDir: %v", err)
	}
}
