package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Times are stored as INTEGER unix nanoseconds (UTC).
func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS identity (
			id TEXT PRIMARY KEY,
			level INTEGER NOT NULL DEFAULT 1,
			total_effort_units INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL,
			last_active_at INTEGER NOT NULL,
			orientation_completed INTEGER NOT NULL DEFAULT 0,
			equipped_card_id TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS habits (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at INTEGER NOT NULL
		);`,
		// habit_id is a reference, not a foreign key: the habit may be deleted later.
		`CREATE TABLE IF NOT EXISTS effort_logs (
			id TEXT PRIMARY KEY,
			habit_id TEXT NOT NULL,
			effort_value INTEGER NOT NULL,
			note TEXT,
			timestamp INTEGER NOT NULL,
			created_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS chests (
			id TEXT PRIMARY KEY,
			rarity TEXT NOT NULL,
			tier TEXT NOT NULL,
			earned_at INTEGER NOT NULL,
			unlocked_reward_count INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS chest_meta (
			chest_id TEXT PRIMARY KEY,
			habit_name TEXT NOT NULL,
			effort_value INTEGER NOT NULL,
			consistency_count INTEGER NOT NULL,
			theme TEXT NOT NULL,
			FOREIGN KEY(chest_id) REFERENCES chests(id)
		);`,
		`CREATE TABLE IF NOT EXISTS items (
			id TEXT PRIMARY KEY,
			catalog_id TEXT NOT NULL,
			name TEXT NOT NULL,
			rarity TEXT NOT NULL,
			effect TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS cards (
			id TEXT PRIMARY KEY,
			catalog_id TEXT NOT NULL,
			name TEXT NOT NULL,
			rarity TEXT NOT NULL,
			effect TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS chest_rewards (
			id TEXT PRIMARY KEY,
			chest_id TEXT NOT NULL,
			type TEXT NOT NULL,
			ref_id TEXT NOT NULL,
			locked INTEGER NOT NULL DEFAULT 1,
			created_at INTEGER NOT NULL,
			FOREIGN KEY(chest_id) REFERENCES chests(id)
		);`,
		`CREATE TABLE IF NOT EXISTS arc_quest_progress (
			arc_id TEXT PRIMARY KEY,
			progress INTEGER NOT NULL DEFAULT 0,
			unlocked_count INTEGER NOT NULL DEFAULT 0,
			accepted INTEGER NOT NULL DEFAULT 0,
			ignored INTEGER NOT NULL DEFAULT 0,
			habit_id TEXT,
			updated_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS mercy_events (
			id TEXT PRIMARY KEY,
			reason TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS combat_encounters (
			id TEXT PRIMARY KEY,
			chest_id TEXT NOT NULL,
			outcome TEXT NOT NULL,
			unlocked INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS habit_effort_cache (
			name TEXT PRIMARY KEY,
			effort INTEGER NOT NULL,
			prevalence REAL NOT NULL,
			source TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_effort_logs_timestamp ON effort_logs(timestamp);`,
		`CREATE INDEX IF NOT EXISTS idx_effort_logs_habit_id ON effort_logs(habit_id);`,
		`CREATE INDEX IF NOT EXISTS idx_chest_rewards_chest_id ON chest_rewards(chest_id);`,
		`CREATE INDEX IF NOT EXISTS idx_mercy_events_created_at ON mercy_events(created_at);`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	// Columns added after the first release; re-running is a no-op.
	alterStmts := []string{
		`ALTER TABLE chest_meta ADD COLUMN mercy_applied INTEGER DEFAULT 0;`,
		`ALTER TABLE habit_effort_cache ADD COLUMN category TEXT DEFAULT 'general';`,
	}
	for _, stmt := range alterStmts {
		_, err := db.ExecContext(ctx, stmt)
		if err != nil && !IsAlreadyExistsError(err) {
			return fmt.Errorf("migrate alter: %w", err)
		}
	}

	return nil
}

// IsAlreadyExistsError reports whether err indicates idempotent DDL success.
func IsAlreadyExistsError(err error) bool {
	value := strings.ToLower(err.Error())
	return strings.Contains(value, "already exists") || strings.Contains(value, "duplicate column")
}
