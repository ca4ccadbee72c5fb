package sqlstore

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/cricket-analytics/internal/domain/crud"
	"github.com/riskibarqy/cricket-analytics/internal/domain/player"
	"github.com/riskibarqy/cricket-analytics/internal/platform/querybuilder"
)

type playerRow struct {
	ID           string         `db:"id"`
	Name         string         `db:"name"`
	Country      string         `db:"country"`
	PlayingRole  string         `db:"playing_role"`
	BattingStyle string         `db:"batting_style"`
	BowlingStyle string         `db:"bowling_style"`
	DateOfBirth  sql.NullString `db:"date_of_birth"`
	CreatedAt    sqlTime        `db:"created_at"`
	UpdatedAt    sqlTime        `db:"updated_at"`
}

func playerToRow(p player.Player) playerRow {
	return playerRow{
		ID:           p.ID,
		Name:         p.Name,
		Country:      p.Country,
		PlayingRole:  string(p.Role),
		BattingStyle: p.BattingStyle,
		BowlingStyle: p.BowlingStyle,
		DateOfBirth:  nullDate(p.DateOfBirth),
		CreatedAt:    newSQLTime(p.CreatedAt),
		UpdatedAt:    newSQLTime(p.UpdatedAt),
	}
}

func playerFromRow(r playerRow) (player.Player, error) {
	dob, err := parseNullDate(r.DateOfBirth)
	if err != nil {
		return player.Player{}, err
	}
	return player.Player{
		ID:           r.ID,
		Name:         r.Name,
		Country:      r.Country,
		Role:         player.Role(r.PlayingRole),
		BattingStyle: r.BattingStyle,
		BowlingStyle: r.BowlingStyle,
		DateOfBirth:  dob,
		CreatedAt:    r.CreatedAt.Time,
		UpdatedAt:    r.UpdatedAt.Time,
	}, nil
}

// PlayerRepository stores players. Deleting a player deletes its stat rows.
type PlayerRepository struct {
	*table[player.Player, playerRow]
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	t := newTable(db, "players", playerToRow, playerFromRow, player.Player.RecordID)
	t.beforeDelete = deleteStatsWhere("player_id")
	return &PlayerRepository{table: t}
}

func (r *PlayerRepository) List(ctx context.Context, filter player.Filter, page crud.Page) ([]player.Player, error) {
	var where []querybuilder.Condition
	if s := strings.TrimSpace(filter.Search); s != "" {
		where = append(where, querybuilder.ContainsFold("name", s))
	}
	if c := strings.TrimSpace(filter.Country); c != "" {
		where = append(where, querybuilder.Expr("LOWER(country) = ?", strings.ToLower(c)))
	}
	if filter.Role != "" {
		where = append(where, querybuilder.Eq("playing_role", string(player.NormalizeRole(string(filter.Role)))))
	}
	if len(filter.IDs) > 0 {
		where = append(where, querybuilder.InStrings("id", filter.IDs))
	}
	return r.list(ctx, where, []string{"name ASC", "id ASC"}, page)
}
