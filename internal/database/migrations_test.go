package database

import (
	"strings"
	"testing"
)

func TestMigrationVersionsAreUnique(t *testing.T) {
	seen := make(map[int]bool)
	for _, m := range Migrations {
		if seen[m.Version] {
			t.Errorf("duplicate migration version %d", m.Version)
		}
		seen[m.Version] = true
	}
}

func TestRollbackNeverDropsBookkeepingTable(t *testing.T) {
	// RollbackLast deletes the version row from schema_migrations inside
	// the same transaction as the down script, so no down script may
	// remove that table.
	for _, m := range Migrations {
		down := strings.ToLower(m.Down)
		if strings.Contains(down, "drop") && strings.Contains(down, "schema_migrations") {
			t.Errorf("migration %d down script drops schema_migrations", m.Version)
		}
	}
}
