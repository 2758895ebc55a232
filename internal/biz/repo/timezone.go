package repo

import "context"

// TimezoneRepo stores each user's IANA timezone name.
type TimezoneRepo interface {
	// Get returns the stored timezone name, or "" when the user has none.
	Get(ctx context.Context, userID string) (string, error)

	// Set stores or overwrites the user's timezone name.
	Set(ctx context.Context, userID, timezone string) error
}
