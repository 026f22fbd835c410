package database

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Up      string
	Down    string
}

// Migrations contains all database migrations
var Migrations = []Migration{
	{
		Version: 1,
		Up: `
			CREATE EXTENSION IF NOT EXISTS "uuid-ossp";

			CREATE TABLE IF NOT EXISTS panel_users (
				id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
				username VARCHAR(255) UNIQUE NOT NULL,
				password_hash VARCHAR(255) NOT NULL,
				created_at TIMESTAMP NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMP NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS idx_panel_users_username ON panel_users(username);
		`,
		Down: `
			DROP TABLE IF EXISTS panel_users;
		`,
	},
	{
		Version: 2,
		Up: `
			CREATE TABLE IF NOT EXISTS settings (
				id INT PRIMARY KEY DEFAULT 1,
				limite INT NOT NULL DEFAULT 3 CHECK (limite >= 1),
				acao VARCHAR(50) NOT NULL DEFAULT 'alerta',
				updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
				CHECK (id = 1)
			);

			INSERT INTO settings (id, limite, acao) VALUES (1, 3, 'alerta')
			ON CONFLICT (id) DO NOTHING;
		`,
		Down: `
			DROP TABLE IF EXISTS settings;
		`,
	},
	{
		Version: 3,
		Up: `
			CREATE TABLE IF NOT EXISTS words (
				id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
				kind VARCHAR(20) NOT NULL, -- 'proibida' or 'sensivel'
				word VARCHAR(255) NOT NULL,
				created_at TIMESTAMP NOT NULL DEFAULT NOW(),
				UNIQUE(kind, word)
			);

			CREATE INDEX IF NOT EXISTS idx_words_kind ON words(kind, created_at);
		`,
		Down: `
			DROP TABLE IF EXISTS words;
		`,
	},
	{
		Version: 4,
		Up: `
			CREATE TABLE IF NOT EXISTS authorized_groups (
				id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
				group_ref VARCHAR(255) UNIQUE NOT NULL,
				created_at TIMESTAMP NOT NULL DEFAULT NOW()
			);
		`,
		Down: `
			DROP TABLE IF EXISTS authorized_groups;
		`,
	},
	{
		Version: 5,
		Up: `
			CREATE TABLE IF NOT EXISTS banned_users (
				id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
				user_id VARCHAR(255) UNIQUE NOT NULL,
				created_at TIMESTAMP NOT NULL DEFAULT NOW()
			);
		`,
		Down: `
			DROP TABLE IF EXISTS banned_users;
		`,
	},
	{
		Version: 6,
		Up: `
			CREATE TABLE IF NOT EXISTS warnings (
				id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
				user_id VARCHAR(255) NOT NULL,
				user_name VARCHAR(255),
				group_id VARCHAR(255) NOT NULL,
				group_name VARCHAR(255),
				messages JSONB NOT NULL DEFAULT '[]',
				count INT NOT NULL DEFAULT 1 CHECK (count >= 1),
				updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
				UNIQUE(user_id, group_id)
			);

			CREATE INDEX IF NOT EXISTS idx_warnings_group ON warnings(group_id);
		`,
		Down: `
			DROP TABLE IF EXISTS warnings;
		`,
	},
	{
		Version: 7,
		Up: `
			CREATE TABLE IF NOT EXISTS moderation_events (
				id UUID PRIMARY KEY,
				tipo VARCHAR(100) NOT NULL,
				dados JSONB NOT NULL DEFAULT '{}',
				created_at TIMESTAMP NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS idx_moderation_events_created ON moderation_events(created_at DESC);
			CREATE INDEX IF NOT EXISTS idx_moderation_events_tipo ON moderation_events(tipo);
		`,
		Down: `
			DROP TABLE IF EXISTS moderation_events;
		`,
	},
	{
		Version: 8,
		Up: `
			CREATE TABLE IF NOT EXISTS schema_migrations (
				version INT PRIMARY KEY,
				applied_at TIMESTAMP NOT NULL DEFAULT NOW()
			);
		`,
		// The bookkeeping table must survive its own rollback so the
		// version row can still be deleted in the same transaction.
		Down: ``,
	},
}

// RunMigrations runs all pending migrations
func RunMigrations(db *sql.DB) error {
	// Ensure migrations table exists
	if err := ensureMigrationsTable(db); err != nil {
		return err
	}

	// Get current version
	currentVersion, err := getCurrentVersion(db)
	if err != nil {
		return err
	}

	// Run pending migrations in ascending order by version
	sorted := make([]Migration, len(Migrations))
	copy(sorted, Migrations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Version < sorted[j].Version })

	for _, migration := range sorted {
		if migration.Version <= currentVersion {
			continue
		}

		fmt.Printf("Running migration %d...\n", migration.Version)

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}

		if _, err := tx.Exec(migration.Up); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to run migration %d: %w", migration.Version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES ($1)", migration.Version); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}

		fmt.Printf("Migration %d completed\n", migration.Version)
	}

	return nil
}

// RollbackLast reverts the most recently applied migration
func RollbackLast(db *sql.DB) error {
	currentVersion, err := getCurrentVersion(db)
	if err != nil {
		return err
	}
	if currentVersion == 0 {
		return fmt.Errorf("no migrations to roll back")
	}

	var target *Migration
	for i := range Migrations {
		if Migrations[i].Version == currentVersion {
			target = &Migrations[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("migration %d not found in registry", currentVersion)
	}

	fmt.Printf("Rolling back migration %d...\n", target.Version)

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if down := strings.TrimSpace(target.Down); down != "" {
		if _, err := tx.Exec(down); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to roll back migration %d: %w", target.Version, err)
		}
	}

	if _, err := tx.Exec("DELETE FROM schema_migrations WHERE version = $1", target.Version); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to unrecord migration %d: %w", target.Version, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rollback %d: %w", target.Version, err)
	}

	fmt.Printf("Rollback of %d completed\n", target.Version)
	return nil
}

func ensureMigrationsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INT PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

func getCurrentVersion(db *sql.DB) (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}
