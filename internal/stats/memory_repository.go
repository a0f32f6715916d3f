package stats

import (
	"context"
	"database/sql"
	"encoding/json"
	"sort"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// MemoryRepository serves canned statistics so the dashboard can be
// developed without a copy of the bot's database.
type MemoryRepository struct {
	global json.RawMessage
	users  map[string]UserRecord
}

// NewMemoryRepository creates a repository seeded with demo players.
func NewMemoryRepository() *MemoryRepository {
	now := time.Now().UTC()

	users := map[string]UserRecord{}
	for _, seed := range []struct {
		id, username, rank string
		cash, bank, chips  float64
		level              int64
	}{
		{"100000000000000001", "vinnie", "Capo", 250000, 1200000, 40000, 38},
		{"100000000000000002", "mags", "Enforcer", 80000, 310000, 125000, 24},
		{"100000000000000003", "fingers", "Thug", 1500, 9000, 0, 3},
	} {
		users[seed.id] = UserRecord{
			UserID:      seed.id,
			Username:    sql.NullString{String: seed.username, Valid: true},
			Cash:        sql.NullFloat64{Float64: seed.cash, Valid: true},
			BankBalance: sql.NullFloat64{Float64: seed.bank, Valid: true},
			Chips:       sql.NullFloat64{Float64: seed.chips, Valid: true},
			Level:       sql.NullInt64{Int64: seed.level, Valid: true},
			Rank:        sql.NullString{String: seed.rank, Valid: true},
			Rep:         sql.NullFloat64{Float64: float64(seed.level) * 10, Valid: true},
			CreatedAt:   sql.NullTime{Time: now.Add(-90 * 24 * time.Hour), Valid: true},
			Inventory:   types.NullJSONText{JSONText: types.JSONText(`[{"item":"lockpick","qty":3}]`), Valid: true},
			Vehicles:    types.NullJSONText{JSONText: types.JSONText(`[{"name":"Banshee"}]`), Valid: true},
		}
	}

	global, _ := json.Marshal(map[string]any{
		"total_users":      len(users),
		"total_cash":       331500,
		"total_net_worth":  2015500,
		"active_today":     2,
		"jobs_completed":   480,
		"heists_completed": 12,
	})

	return &MemoryRepository{global: global, users: users}
}

func (r *MemoryRepository) GlobalStats(_ context.Context) (json.RawMessage, error) {
	return r.global, nil
}

func (r *MemoryRepository) LeaderboardTop(_ context.Context, kind string, limit int) ([]LeaderboardRow, error) {
	rows := make([]LeaderboardRow, 0, len(r.users))
	for _, u := range r.users {
		value := u.Cash.Float64
		switch kind {
		case "net_worth":
			value = u.Cash.Float64 + u.BankBalance.Float64 + u.Chips.Float64
		case "bank":
			value = u.BankBalance.Float64
		case "chips":
			value = u.Chips.Float64
		case "level":
			value = float64(u.Level.Int64)
		case "rep":
			value = u.Rep.Float64
		}
		v := value
		display := u.Username.String
		rows = append(rows, LeaderboardRow{UserID: u.UserID, Value: &v, Display: &display})
	}

	sort.Slice(rows, func(i, j int) bool { return *rows[i].Value > *rows[j].Value })
	if len(rows) > limit {
		rows = rows[:limit]
	}
	for i := range rows {
		rank := int64(i + 1)
		rows[i].Rank = &rank
	}
	return rows, nil
}

func (r *MemoryRepository) FindUser(_ context.Context, userID string) (*UserRecord, error) {
	if row, ok := r.users[userID]; ok {
		return &row, nil
	}
	return nil, nil
}

func (r *MemoryRepository) ActivityStats(_ context.Context, userID string) (json.RawMessage, error) {
	if _, ok := r.users[userID]; !ok {
		return nil, nil
	}
	return json.RawMessage(`{"commands_today":14,"favorite_command":"heist"}`), nil
}

func (r *MemoryRepository) Ping(_ context.Context) error {
	return nil
}
