package data

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hourglass-bot/hourglass/internal/biz/repo"

	_ "modernc.org/sqlite"
)

// Repositories bundles the sqlite-backed repositories sharing one database.
type Repositories struct {
	Timezone repo.TimezoneRepo
	Guild    repo.GuildRepo
	Usage    repo.UsageRepo

	db *sql.DB
}

// NewRepositories opens (or creates) the database and prepares the schema.
func NewRepositories(dbPath string) (*Repositories, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS timezones (
			user_id TEXT PRIMARY KEY,
			timezone TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS guild_settings (
			guild_id TEXT PRIMARY KEY,
			parsing_enabled INTEGER NOT NULL DEFAULT 1
		)`,
		`CREATE TABLE IF NOT EXISTS usage (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			kind TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_usage_kind ON usage(kind)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return &Repositories{
		Timezone: &timezoneRepo{db: db},
		Guild:    &guildRepo{db: db},
		Usage:    &usageRepo{db: db},
		db:       db,
	}, nil
}

// Close closes the database connection.
func (r *Repositories) Close() error {
	return r.db.Close()
}
