package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hourglass-bot/hourglass/internal/biz/repo"
)

// timezoneRepo implements the Timezone repository.
type timezoneRepo struct {
	db *sql.DB
}

// Get returns the user's stored timezone name, "" when none is stored.
func (r *timezoneRepo) Get(ctx context.Context, userID string) (string, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT timezone FROM timezones WHERE user_id = ?
	`, userID)

	var timezone string
	err := row.Scan(&timezone)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query timezone: %w", err)
	}
	return timezone, nil
}

// Set stores or overwrites the user's timezone.
func (r *timezoneRepo) Set(ctx context.Context, userID, timezone string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO timezones (user_id, timezone) VALUES (?, ?)
	`, userID, timezone)
	if err != nil {
		return fmt.Errorf("failed to save timezone: %w", err)
	}
	return nil
}

// guildRepo implements the Guild settings repository.
type guildRepo struct {
	db *sql.DB
}

// ParsingEnabled reports the guild's auto-conversion flag, defaulting to
// enabled when the guild has no row.
func (r *guildRepo) ParsingEnabled(ctx context.Context, guildID string) (bool, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT parsing_enabled FROM guild_settings WHERE guild_id = ?
	`, guildID)

	var enabled int
	err := row.Scan(&enabled)
	if err == sql.ErrNoRows {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query guild settings: %w", err)
	}
	return enabled != 0, nil
}

// ToggleParsing flips the guild's auto-conversion flag and returns the new
// value. A single upsert keeps concurrent toggles from losing updates; the
// inserted value is 0 because an absent row means enabled.
func (r *guildRepo) ToggleParsing(ctx context.Context, guildID string) (bool, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO guild_settings (guild_id, parsing_enabled) VALUES (?, 0)
		ON CONFLICT(guild_id) DO UPDATE SET parsing_enabled = 1 - parsing_enabled
		RETURNING parsing_enabled
	`, guildID)

	var enabled int
	if err := row.Scan(&enabled); err != nil {
		return false, fmt.Errorf("failed to save guild settings: %w", err)
	}
	return enabled != 0, nil
}

// usageRepo implements the Usage repository.
type usageRepo struct {
	db *sql.DB
}

// Record appends one usage row.
func (r *usageRepo) Record(ctx context.Context, kind repo.UsageKind) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO usage (kind, created_at) VALUES (?, ?)
	`, string(kind), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to record usage: %w", err)
	}
	return nil
}
