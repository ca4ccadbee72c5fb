package sqlstore

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/cricket-analytics/internal/domain/crud"
	"github.com/riskibarqy/cricket-analytics/internal/domain/playerstats"
	"github.com/riskibarqy/cricket-analytics/internal/platform/querybuilder"
)

type statRow struct {
	ID              string        `db:"id"`
	PlayerID        string        `db:"player_id"`
	MatchID         string        `db:"match_id"`
	Innings         int           `db:"innings"`
	BattingPosition sql.NullInt64 `db:"batting_position"`
	Runs            int           `db:"runs"`
	BallsFaced      int           `db:"balls_faced"`
	Fours           int           `db:"fours"`
	Sixes           int           `db:"sixes"`
	Dismissed       bool          `db:"dismissed"`
	BallsBowled     int           `db:"balls_bowled"`
	Maidens         int           `db:"maidens"`
	RunsConceded    int           `db:"runs_conceded"`
	Wickets         int           `db:"wickets"`
	Catches         int           `db:"catches"`
	Stumpings       int           `db:"stumpings"`
	CreatedAt       sqlTime       `db:"created_at"`
	UpdatedAt       sqlTime       `db:"updated_at"`
}

func statToRow(s playerstats.Stat) statRow {
	return statRow{
		ID:              s.ID,
		PlayerID:        s.PlayerID,
		MatchID:         s.MatchID,
		Innings:         s.Innings,
		BattingPosition: nullInt(s.BattingPosition),
		Runs:            s.Runs,
		BallsFaced:      s.BallsFaced,
		Fours:           s.Fours,
		Sixes:           s.Sixes,
		Dismissed:       s.Dismissed,
		BallsBowled:     s.BallsBowled,
		Maidens:         s.Maidens,
		RunsConceded:    s.RunsConceded,
		Wickets:         s.Wickets,
		Catches:         s.Catches,
		Stumpings:       s.Stumpings,
		CreatedAt:       newSQLTime(s.CreatedAt),
		UpdatedAt:       newSQLTime(s.UpdatedAt),
	}
}

func statFromRow(r statRow) (playerstats.Stat, error) {
	return playerstats.Stat{
		ID:              r.ID,
		PlayerID:        r.PlayerID,
		MatchID:         r.MatchID,
		Innings:         r.Innings,
		BattingPosition: intPtr(r.BattingPosition),
		Runs:            r.Runs,
		BallsFaced:      r.BallsFaced,
		Fours:           r.Fours,
		Sixes:           r.Sixes,
		Dismissed:       r.Dismissed,
		BallsBowled:     r.BallsBowled,
		Maidens:         r.Maidens,
		RunsConceded:    r.RunsConceded,
		Wickets:         r.Wickets,
		Catches:         r.Catches,
		Stumpings:       r.Stumpings,
		CreatedAt:       r.CreatedAt.Time,
		UpdatedAt:       r.UpdatedAt.Time,
	}, nil
}

type StatRepository struct {
	*table[playerstats.Stat, statRow]
}

func NewStatRepository(db *sqlx.DB) *StatRepository {
	return &StatRepository{table: newTable(db, "player_match_stats", statToRow, statFromRow, playerstats.Stat.RecordID)}
}

func (r *StatRepository) List(ctx context.Context, filter playerstats.Filter, page crud.Page) ([]playerstats.Stat, error) {
	var where []querybuilder.Condition
	if id := strings.TrimSpace(filter.PlayerID); id != "" {
		where = append(where, querybuilder.Eq("player_id", id))
	}
	if id := strings.TrimSpace(filter.MatchID); id != "" {
		where = append(where, querybuilder.Eq("match_id", id))
	}
	return r.list(ctx, where, []string{"match_id ASC", "innings ASC", "batting_position ASC", "player_id ASC"}, page)
}
