package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/erp/backoffice/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add uom index", "add_uom_index"},
		{"Add-Supplier-Phone", "add_supplier_phone"},
		{"PO__LINE__ITEMS", "po_line_items"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "special_chars"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	t.Run("first migration is 000001", func(t *testing.T) {
		dir := t.TempDir()
		mf, err := CreateMigration(dir, "init schema", "Base tables")
		require.NoError(t, err)
		assert.Equal(t, "000001", mf.Version)
		assert.Equal(t, filepath.Join(dir, "000001_init_schema.up.sql"), mf.UpPath)
		assert.Equal(t, filepath.Join(dir, "000001_init_schema.down.sql"), mf.DownPath)

		up, err := os.ReadFile(mf.UpPath)
		require.NoError(t, err)
		assert.Contains(t, string(up), "Base tables")
		down, err := os.ReadFile(mf.DownPath)
		require.NoError(t, err)
		assert.Contains(t, string(down), "Rollback")
	})

	t.Run("numbers above the highest existing version", func(t *testing.T) {
		dir := t.TempDir()
		for _, name := range []string{"000001_a.up.sql", "000007_b.up.sql", "000003_c.up.sql", "notes.txt"} {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
		}
		mf, err := CreateMigration(dir, "Supplier phone", "")
		require.NoError(t, err)
		assert.Equal(t, "000008", mf.Version)
	})

	t.Run("rejects an empty name", func(t *testing.T) {
		_, err := CreateMigration(t.TempDir(), "!!!", "")
		assert.Error(t, err)
	})
}

func TestListMigrations(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		list, err := ListMigrations(filepath.Join(t.TempDir(), "nope"))
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("orders by version and skips down files", func(t *testing.T) {
		dir := t.TempDir()
		for _, name := range []string{"000010_z.up.sql", "000010_z.down.sql", "000002_y.up.sql", "000002_y.down.sql"} {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
		}
		list, err := ListMigrations(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"000002_y", "000010_z"}, list)
	})
}

func TestEmbeddedSchema(t *testing.T) {
	up, err := migrations.FS.ReadFile("000001_init_schema.up.sql")
	require.NoError(t, err)
	for _, table := range []string{"warehouse_nodes", "uoms", "items", "suppliers", "purchase_orders", "purchase_order_line_items"} {
		assert.Contains(t, string(up), "CREATE TABLE IF NOT EXISTS "+table)
	}
	assert.Contains(t, string(up), "idx_purchase_orders_po_id_live ON purchase_orders (po_id) WHERE deleted_at IS NULL")
	assert.Contains(t, string(up), "ON DELETE CASCADE")

	_, err = migrations.FS.ReadFile("000001_init_schema.down.sql")
	assert.NoError(t, err)
}
