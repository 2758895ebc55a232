package repo

import "context"

// GuildRepo stores per-guild settings.
type GuildRepo interface {
	// ParsingEnabled reports whether auto-conversion is on for the guild.
	// Guilds without a stored row default to enabled.
	ParsingEnabled(ctx context.Context, guildID string) (bool, error)

	// ToggleParsing flips the guild's auto-conversion flag and returns the
	// new value.
	ToggleParsing(ctx context.Context, guildID string) (bool, error)
}
