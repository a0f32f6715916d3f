package stats

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// ErrValidation wraps caller input errors so handlers can map them to 400s.
var ErrValidation = errors.New("validation error")

const (
	defaultLeaderboard  = "net_worth"
	maxLeaderboardLimit = 100
)

var leaderboardKinds = map[string]struct{}{
	"net_worth": {},
	"cash":      {},
	"chips":     {},
	"level":     {},
	"rep":       {},
	"bank":      {},
}

// Service provides read-only statistics queries over the bot's database.
type Service struct {
	repo Repository
}

// NewService creates a stats Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GlobalStats returns the community-wide stats document.
func (s *Service) GlobalStats(ctx context.Context) (json.RawMessage, error) {
	data, err := s.repo.GlobalStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("global stats: %w", err)
	}
	if len(data) == 0 {
		return json.RawMessage(`{}`), nil
	}
	return data, nil
}

// Leaderboard returns the top rows of the requested leaderboard. An empty
// kind defaults to net worth; "notorious" is the dashboard's alias for rep.
// The limit is clamped to 1..100.
func (s *Service) Leaderboard(ctx context.Context, kind string, limit int) ([]LeaderboardRow, error) {
	if kind == "" {
		kind = defaultLeaderboard
	}
	if kind == "notorious" {
		kind = "rep"
	}
	if _, ok := leaderboardKinds[kind]; !ok {
		return nil, fmt.Errorf("%w: unknown leaderboard type %q", ErrValidation, kind)
	}

	if limit <= 0 || limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}

	rows, err := s.repo.LeaderboardTop(ctx, kind, limit)
	if err != nil {
		return nil, fmt.Errorf("leaderboard %s: %w", kind, err)
	}
	if rows == nil {
		rows = []LeaderboardRow{}
	}
	return rows, nil
}

// UserStats returns the normalized stats payload for one player. Players
// without a row yet get a zero-valued profile rather than a 404 so the
// dashboard renders for fresh accounts. fallbackUsername fills the username
// when the bot has not recorded one.
func (s *Service) UserStats(ctx context.Context, userID, fallbackUsername string) (*UserStats, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: missing user id", ErrValidation)
	}

	row, err := s.repo.FindUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find user %s: %w", userID, err)
	}

	// Activity stats are best-effort: a failure here never blocks the
	// rest of the profile.
	activity, err := s.repo.ActivityStats(ctx, userID)
	if err != nil || !isJSONObject(activity) {
		activity = json.RawMessage(`{}`)
	}

	if row == nil {
		out := emptyUserStats(userID, fallbackUsername)
		out.ActivityStats = activity
		return out, nil
	}

	out := buildUserStats(row, fallbackUsername)
	out.ActivityStats = activity
	return out, nil
}

// Health reports database connectivity.
func (s *Service) Health(ctx context.Context) error {
	if err := s.repo.Ping(ctx); err != nil {
		return fmt.Errorf("database ping: %w", err)
	}
	return nil
}

func buildUserStats(row *UserRecord, fallbackUsername string) *UserStats {
	cash := row.Cash.Float64
	bank := row.BankBalance.Float64
	chips := row.Chips.Float64

	username := row.Username.String
	if username == "" {
		username = fallbackUsername
	}

	out := &UserStats{
		ID:                      row.UserID,
		Username:                username,
		Cash:                    cash,
		Bank:                    bank,
		BankBalance:             bank,
		Chips:                   chips,
		NetWorth:                cash + bank + chips,
		Rep:                     row.Rep.Float64,
		Level:                   defaultInt(row.Level.Int64, 1),
		Rank:                    defaultString(row.Rank.String, "Thug"),
		LevelTitle:              defaultString(row.LevelTitle.String, "Rank 1"),
		WantedLevel:             row.WantedLevel.Int64,
		TotalCashEarned:         row.TotalCashEarned.Float64,
		TotalRP:                 row.TotalRP.Float64,
		RPToNextLevel:           row.RPToNextLevel.Float64,
		LevelProgressPercentage: row.LevelProgressPercentage.Float64,
		TotalLevelUps:           row.TotalLevelUps.Int64,
		HighestLevelReached:     defaultInt(row.HighestLevelReached.Int64, 1),
		DailyStreak:             row.DailyStreak.Int64,
		CreatedAt:               formatTime(row.CreatedAt),
		LastActivity:            formatTime(row.LastActivity),
		PlayingSince:            formatTime(row.CreatedAt),
		Inventory:               jsonArrayOrEmpty(row.Inventory),
		Vehicles:                jsonArrayOrEmpty(row.Vehicles),
		Properties:              jsonArrayOrEmpty(row.Properties),
		Businesses:              jsonObjectOrEmpty(row.Businesses),
		MCBusinesses:            jsonObjectOrEmpty(row.MCBusinesses),
		WarehouseData:           jsonObjectOrEmpty(row.WarehouseData),
		Nightclub:               jsonObjectOrEmpty(row.Nightclub),
		VehicleWarehouse:        rawOrDefault(row.VehicleWarehouse, `[]`),
		CargoWarehouse:          rawOrDefault(row.CargoWarehouse, `[]`),
		StolenCars:              jsonArrayOrEmpty(row.StolenCars),
		BankingStats:            jsonObjectOrEmpty(row.BankingStats),
		CasinoStats:             jsonObjectOrEmpty(row.CasinoStats),
		TriviaStats:             jsonObjectOrEmpty(row.TriviaStats),
		LockpickStats:           jsonObjectOrEmpty(row.LockpickStats),
		GameStatistics:          jsonObjectOrEmpty(row.GameStatistics),
	}

	out.Counts = Counts{
		Inventory:        countArray(row.Inventory),
		Vehicles:         countArray(row.Vehicles),
		Properties:       countArray(row.Properties),
		Businesses:       countOwnedBusinesses(row.Businesses),
		MCBusinesses:     countMCBusinesses(row.MCBusinesses),
		VehicleWarehouse: countVehicleWarehouse(row.VehicleWarehouse),
		CargoWarehouse:   countCargoWarehouse(row.CargoWarehouse),
		StolenCars:       countArray(row.StolenCars),
	}

	return out
}

func emptyUserStats(userID, username string) *UserStats {
	return &UserStats{
		ID:                  userID,
		Username:            username,
		Level:               1,
		Rank:                "Thug",
		LevelTitle:          "Rank 1",
		HighestLevelReached: 1,
		Inventory:           json.RawMessage(`[]`),
		Vehicles:            json.RawMessage(`[]`),
		Properties:          json.RawMessage(`[]`),
		Businesses:          json.RawMessage(`{}`),
		MCBusinesses:        json.RawMessage(`{}`),
		WarehouseData:       json.RawMessage(`{}`),
		Nightclub:           json.RawMessage(`{}`),
		VehicleWarehouse:    json.RawMessage(`[]`),
		CargoWarehouse:      json.RawMessage(`[]`),
		StolenCars:          json.RawMessage(`[]`),
		BankingStats:        json.RawMessage(`{}`),
		CasinoStats:         json.RawMessage(`{}`),
		TriviaStats:         json.RawMessage(`{}`),
		LockpickStats:       json.RawMessage(`{}`),
		GameStatistics:      json.RawMessage(`{}`),
		ActivityStats:       json.RawMessage(`{}`),
	}
}

func defaultInt(v, fallback int64) int64 {
	if v == 0 {
		return fallback
	}
	return v
}

func defaultString(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func formatTime(t sql.NullTime) *string {
	if !t.Valid {
		return nil
	}
	formatted := t.Time.UTC().Format(time.RFC3339)
	return &formatted
}

func jsonArrayOrEmpty(v types.NullJSONText) json.RawMessage {
	if v.Valid && isJSONArray(json.RawMessage(v.JSONText)) {
		return json.RawMessage(v.JSONText)
	}
	return json.RawMessage(`[]`)
}

func jsonObjectOrEmpty(v types.NullJSONText) json.RawMessage {
	if v.Valid && isJSONObject(json.RawMessage(v.JSONText)) {
		return json.RawMessage(v.JSONText)
	}
	return json.RawMessage(`{}`)
}

// rawOrDefault keeps columns that legitimately hold either an array or an
// object (the warehouse columns changed shape across bot versions).
func rawOrDefault(v types.NullJSONText, fallback string) json.RawMessage {
	if v.Valid && (isJSONArray(json.RawMessage(v.JSONText)) || isJSONObject(json.RawMessage(v.JSONText))) {
		return json.RawMessage(v.JSONText)
	}
	return json.RawMessage(fallback)
}

func isJSONArray(raw json.RawMessage) bool {
	var arr []json.RawMessage
	return json.Unmarshal(raw, &arr) == nil
}

func isJSONObject(raw json.RawMessage) bool {
	var obj map[string]json.RawMessage
	return len(raw) > 0 && json.Unmarshal(raw, &obj) == nil
}

func countArray(v types.NullJSONText) int {
	if !v.Valid {
		return 0
	}
	var arr []json.RawMessage
	if err := json.Unmarshal(v.JSONText, &arr); err != nil {
		return 0
	}
	return len(arr)
}

func countOwnedBusinesses(v types.NullJSONText) int {
	if !v.Valid {
		return 0
	}
	var doc struct {
		Owned []json.RawMessage `json:"owned_businesses"`
	}
	if err := json.Unmarshal(v.JSONText, &doc); err != nil {
		return 0
	}
	return len(doc.Owned)
}

// countMCBusinesses tolerates the three historical shapes of the
// mc_businesses column: {"owned_businesses": [...]}, {"owned": [...]}, or a
// map keyed by business name.
func countMCBusinesses(v types.NullJSONText) int {
	if !v.Valid {
		return 0
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(v.JSONText, &doc); err != nil {
		return 0
	}

	for _, key := range []string{"owned_businesses", "owned"} {
		if raw, ok := doc[key]; ok {
			var arr []json.RawMessage
			if json.Unmarshal(raw, &arr) == nil {
				return len(arr)
			}
		}
	}

	count := 0
	for key, raw := range doc {
		switch key {
		case "owned", "owned_businesses", "active_businesses":
			continue
		}
		if isJSONObject(raw) {
			count++
		}
	}
	return count
}

// countVehicleWarehouse handles both the legacy array shape and the newer
// {"vehicles": {"name": n, ...}} shape, where the counts are summed.
func countVehicleWarehouse(v types.NullJSONText) int {
	if !v.Valid {
		return 0
	}

	var arr []json.RawMessage
	if json.Unmarshal(v.JSONText, &arr) == nil {
		return len(arr)
	}

	var doc struct {
		Vehicles map[string]float64 `json:"vehicles"`
	}
	if err := json.Unmarshal(v.JSONText, &doc); err != nil {
		return 0
	}
	sum := 0
	for _, n := range doc.Vehicles {
		sum += int(n)
	}
	return sum
}

// countCargoWarehouse handles both the array shape and {"crates": n}.
func countCargoWarehouse(v types.NullJSONText) int {
	if !v.Valid {
		return 0
	}

	var arr []json.RawMessage
	if json.Unmarshal(v.JSONText, &arr) == nil {
		return len(arr)
	}

	var doc struct {
		Crates float64 `json:"crates"`
	}
	if err := json.Unmarshal(v.JSONText, &doc); err != nil {
		return 0
	}
	return int(doc.Crates)
}
