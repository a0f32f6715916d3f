package stats

import (
	"context"
	"encoding/json"
)

// Repository is the read-only view onto the bot's statistics database.
type Repository interface {
	// GlobalStats returns the community-wide stats document produced by
	// the get_website_global_stats() function.
	GlobalStats(ctx context.Context) (json.RawMessage, error)

	// LeaderboardTop returns the top rows of the named leaderboard.
	LeaderboardTop(ctx context.Context, kind string, limit int) ([]LeaderboardRow, error)

	// FindUser returns the player's row, or nil when the player has never
	// interacted with the bot.
	FindUser(ctx context.Context, userID string) (*UserRecord, error)

	// ActivityStats returns the per-player activity document from
	// get_user_activity_stats(), or nil when unavailable.
	ActivityStats(ctx context.Context, userID string) (json.RawMessage, error)

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error
}
