package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCreateSQLMigrationProducesValidFile(t *testing.T) {
	dir := t.TempDir()

	path, err := CreateSQLMigration(dir, "Add Wishlist Table!")
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if !strings.HasSuffix(path, "_add_wishlist_table.sql") {
		t.Errorf("unexpected filename %s", path)
	}
	if err := ValidateDir(dir); err != nil {
		t.Errorf("fresh migration fails validation: %v", err)
	}
}

func TestValidateDirRejectsBadFilename(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "fix_things.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := ValidateDir(dir); err == nil {
		t.Error("expected error for unversioned filename")
	}
}

func TestMigrationsDirIsValid(t *testing.T) {
	if err := ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}

func TestInitSchemaCreatesAllTables(t *testing.T) {
	entries, err := os.ReadDir("migrations")
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}

	var initPath string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), "_init_schema.sql") {
			initPath = filepath.Join("migrations", e.Name())
			break
		}
	}
	if initPath == "" {
		t.Fatal("init schema migration not found")
	}

	b, err := os.ReadFile(initPath)
	if err != nil {
		t.Fatalf("read init migration: %v", err)
	}
	sql := string(b)

	for _, table := range []string{
		"users", "categories", "products", "banners",
		"carts", "cart_items", "orders", "order_items", "addresses",
	} {
		if !strings.Contains(sql, "CREATE TABLE "+table+" (") {
			t.Errorf("init schema missing table %q", table)
		}
	}

	if !strings.Contains(sql, "idx_addresses_one_default_per_user") {
		t.Error("init schema missing partial unique index on default addresses")
	}
}
