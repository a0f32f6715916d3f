package stats

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
)

// PostgresRepository reads statistics from the bot's Postgres database. All
// access is read-only: the dashboard never writes to the bot's tables.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository constructs a repository backed by sqlx.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GlobalStats(ctx context.Context) (json.RawMessage, error) {
	var data types.NullJSONText
	if err := r.db.GetContext(ctx, &data, `SELECT get_website_global_stats() AS data`); err != nil {
		return nil, fmt.Errorf("get_website_global_stats: %w", err)
	}
	if !data.Valid {
		return nil, nil
	}
	return json.RawMessage(data.JSONText), nil
}

func (r *PostgresRepository) LeaderboardTop(ctx context.Context, kind string, limit int) ([]LeaderboardRow, error) {
	rows := []LeaderboardRow{}
	err := r.db.SelectContext(ctx, &rows,
		`SELECT rank, user_id, value, display FROM get_leaderboard_top($1, $2)`, kind, limit)
	if err != nil {
		return nil, fmt.Errorf("get_leaderboard_top: %w", err)
	}
	return rows, nil
}

func (r *PostgresRepository) FindUser(ctx context.Context, userID string) (*UserRecord, error) {
	var row UserRecord
	// Unsafe binding keeps the query resilient to columns added by newer
	// bot versions; the service only reads the fields it knows.
	err := r.db.Unsafe().GetContext(ctx, &row, `SELECT * FROM users WHERE user_id = $1 LIMIT 1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &row, nil
}

func (r *PostgresRepository) ActivityStats(ctx context.Context, userID string) (json.RawMessage, error) {
	var data types.NullJSONText
	if err := r.db.GetContext(ctx, &data, `SELECT get_user_activity_stats($1) AS data`, userID); err != nil {
		return nil, fmt.Errorf("get_user_activity_stats: %w", err)
	}
	if !data.Valid {
		return nil, nil
	}
	return json.RawMessage(data.JSONText), nil
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	var one int
	if err := r.db.GetContext(ctx, &one, `SELECT 1`); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}
