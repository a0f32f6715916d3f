package stats

import (
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx/types"
)

// LeaderboardRow is one entry from the bot's get_leaderboard_top function.
type LeaderboardRow struct {
	Rank    *int64   `db:"rank" json:"rank"`
	UserID  string   `db:"user_id" json:"user_id"`
	Value   *float64 `db:"value" json:"value"`
	Display *string  `db:"display" json:"display"`
}

// UserRecord mirrors the subset of the bot's users table the dashboard
// needs. The row is fetched with SELECT * through an unsafe sqlx binding so
// columns added or dropped by newer bot versions do not break the query.
type UserRecord struct {
	UserID                  string             `db:"user_id"`
	Username                sql.NullString     `db:"username"`
	Cash                    sql.NullFloat64    `db:"cash"`
	BankBalance             sql.NullFloat64    `db:"bank_balance"`
	Chips                   sql.NullFloat64    `db:"chips"`
	Rep                     sql.NullFloat64    `db:"rep"`
	Level                   sql.NullInt64      `db:"level"`
	Rank                    sql.NullString     `db:"rank"`
	LevelTitle              sql.NullString     `db:"level_title"`
	WantedLevel             sql.NullInt64      `db:"wanted_level"`
	TotalCashEarned         sql.NullFloat64    `db:"total_cash_earned"`
	TotalRP                 sql.NullFloat64    `db:"total_rp"`
	RPToNextLevel           sql.NullFloat64    `db:"rp_to_next_level"`
	LevelProgressPercentage sql.NullFloat64    `db:"level_progress_percentage"`
	TotalLevelUps           sql.NullInt64      `db:"total_level_ups"`
	HighestLevelReached     sql.NullInt64      `db:"highest_level_reached"`
	DailyStreak             sql.NullInt64      `db:"daily_streak"`
	CreatedAt               sql.NullTime       `db:"created_at"`
	LastActivity            sql.NullTime       `db:"last_activity"`
	Inventory               types.NullJSONText `db:"inventory"`
	Vehicles                types.NullJSONText `db:"vehicles"`
	Properties              types.NullJSONText `db:"properties"`
	Businesses              types.NullJSONText `db:"businesses"`
	MCBusinesses            types.NullJSONText `db:"mc_businesses"`
	WarehouseData           types.NullJSONText `db:"warehouse_data"`
	Nightclub               types.NullJSONText `db:"nightclub"`
	VehicleWarehouse        types.NullJSONText `db:"vehicle_warehouse"`
	CargoWarehouse          types.NullJSONText `db:"cargo_warehouse"`
	StolenCars              types.NullJSONText `db:"stolen_cars"`
	BankingStats            types.NullJSONText `db:"banking_stats"`
	CasinoStats             types.NullJSONText `db:"casino_stats"`
	TriviaStats             types.NullJSONText `db:"trivia_stats"`
	LockpickStats           types.NullJSONText `db:"lockpick_stats"`
	GameStatistics          types.NullJSONText `db:"game_statistics"`
}

// Counts summarizes the player's collection sizes for the dashboard cards.
type Counts struct {
	Inventory        int `json:"inventory"`
	Vehicles         int `json:"vehicles"`
	Properties       int `json:"properties"`
	Businesses       int `json:"businesses"`
	MCBusinesses     int `json:"mc_businesses"`
	VehicleWarehouse int `json:"vehicle_warehouse"`
	CargoWarehouse   int `json:"cargo_warehouse"`
	StolenCars       int `json:"stolen_cars"`
}

// UserStats is the normalized per-player stats payload served to the
// dashboard. Collection fields always hold valid JSON ([] or {} when the
// underlying column is empty) so the front-end never branches on null.
type UserStats struct {
	ID                      string          `json:"id"`
	Username                string          `json:"username"`
	Cash                    float64         `json:"cash"`
	Bank                    float64         `json:"bank"`
	BankBalance             float64         `json:"bank_balance"`
	Chips                   float64         `json:"chips"`
	NetWorth                float64         `json:"net_worth"`
	Rep                     float64         `json:"rep"`
	Level                   int64           `json:"level"`
	Rank                    string          `json:"rank"`
	LevelTitle              string          `json:"level_title"`
	WantedLevel             int64           `json:"wanted_level"`
	TotalCashEarned         float64         `json:"total_cash_earned"`
	TotalRP                 float64         `json:"total_rp"`
	RPToNextLevel           float64         `json:"rp_to_next_level"`
	LevelProgressPercentage float64         `json:"level_progress_percentage"`
	TotalLevelUps           int64           `json:"total_level_ups"`
	HighestLevelReached     int64           `json:"highest_level_reached"`
	DailyStreak             int64           `json:"daily_streak"`
	CreatedAt               *string         `json:"created_at"`
	LastActivity            *string         `json:"last_activity"`
	PlayingSince            *string         `json:"playing_since"`
	Inventory               json.RawMessage `json:"inventory"`
	Vehicles                json.RawMessage `json:"vehicles"`
	Properties              json.RawMessage `json:"properties"`
	Businesses              json.RawMessage `json:"businesses"`
	MCBusinesses            json.RawMessage `json:"mc_businesses"`
	WarehouseData           json.RawMessage `json:"warehouse_data"`
	Nightclub               json.RawMessage `json:"nightclub"`
	VehicleWarehouse        json.RawMessage `json:"vehicle_warehouse"`
	CargoWarehouse          json.RawMessage `json:"cargo_warehouse"`
	StolenCars              json.RawMessage `json:"stolen_cars"`
	BankingStats            json.RawMessage `json:"banking_stats"`
	CasinoStats             json.RawMessage `json:"casino_stats"`
	TriviaStats             json.RawMessage `json:"trivia_stats"`
	LockpickStats           json.RawMessage `json:"lockpick_stats"`
	GameStatistics          json.RawMessage `json:"game_statistics"`
	Counts                  Counts          `json:"counts"`
	ActivityStats           json.RawMessage `json:"activity_stats"`
}
