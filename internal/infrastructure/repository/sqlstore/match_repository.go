package sqlstore

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/cricket-analytics/internal/domain/crud"
	"github.com/riskibarqy/cricket-analytics/internal/domain/match"
	"github.com/riskibarqy/cricket-analytics/internal/platform/querybuilder"
)

type matchRow struct {
	ID            string         `db:"id"`
	Title         string         `db:"title"`
	SeriesID      sql.NullString `db:"series_id"`
	Team1         string         `db:"team1"`
	Team2         string         `db:"team2"`
	Venue         string         `db:"venue"`
	City          string         `db:"city"`
	MatchDate     string         `db:"match_date"`
	Format        string         `db:"format"`
	Status        string         `db:"status"`
	TossWinner    string         `db:"toss_winner"`
	TossDecision  string         `db:"toss_decision"`
	Winner        string         `db:"winner"`
	VictoryMargin sql.NullInt64  `db:"victory_margin"`
	VictoryType   string         `db:"victory_type"`
	Result        string         `db:"result"`
	CreatedAt     sqlTime        `db:"created_at"`
	UpdatedAt     sqlTime        `db:"updated_at"`
}

func matchToRow(m match.Match) matchRow {
	return matchRow{
		ID:            m.ID,
		Title:         m.Title,
		SeriesID:      nullString(m.SeriesID),
		Team1:         m.Team1,
		Team2:         m.Team2,
		Venue:         m.Venue,
		City:          m.City,
		MatchDate:     formatDate(m.Date),
		Format:        string(m.Format),
		Status:        m.Status,
		TossWinner:    m.TossWinner,
		TossDecision:  m.TossDecision,
		Winner:        m.Winner,
		VictoryMargin: nullInt(m.VictoryMargin),
		VictoryType:   m.VictoryType,
		Result:        m.Result,
		CreatedAt:     newSQLTime(m.CreatedAt),
		UpdatedAt:     newSQLTime(m.UpdatedAt),
	}
}

func matchFromRow(r matchRow) (match.Match, error) {
	date, err := parseDate(r.MatchDate)
	if err != nil {
		return match.Match{}, err
	}
	return match.Match{
		ID:            r.ID,
		Title:         r.Title,
		SeriesID:      stringPtr(r.SeriesID),
		Team1:         r.Team1,
		Team2:         r.Team2,
		Venue:         r.Venue,
		City:          r.City,
		Date:          date,
		Format:        match.Format(r.Format),
		Status:        r.Status,
		TossWinner:    r.TossWinner,
		TossDecision:  r.TossDecision,
		Winner:        r.Winner,
		VictoryMargin: intPtr(r.VictoryMargin),
		VictoryType:   r.VictoryType,
		Result:        r.Result,
		CreatedAt:     r.CreatedAt.Time,
		UpdatedAt:     r.UpdatedAt.Time,
	}, nil
}

// MatchRepository stores matches. Deleting a match deletes its stat rows.
type MatchRepository struct {
	*table[match.Match, matchRow]
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	t := newTable(db, "matches", matchToRow, matchFromRow, match.Match.RecordID)
	t.beforeDelete = deleteStatsWhere("match_id")
	return &MatchRepository{table: t}
}

func (r *MatchRepository) List(ctx context.Context, filter match.Filter, page crud.Page) ([]match.Match, error) {
	var where []querybuilder.Condition
	if s := strings.TrimSpace(filter.Search); s != "" {
		where = append(where, containsAny([]string{"title", "venue", "city"}, s))
	}
	if tm := strings.TrimSpace(filter.Team); tm != "" {
		lower := strings.ToLower(tm)
		where = append(where, querybuilder.Expr("LOWER(team1) = ? OR LOWER(team2) = ?", lower, lower))
	}
	if filter.Format != "" {
		where = append(where, querybuilder.Eq("format", string(match.NormalizeFormat(string(filter.Format)))))
	}
	if st := strings.TrimSpace(filter.Status); st != "" {
		where = append(where, querybuilder.Eq("status", match.NormalizeStatus(st)))
	}
	if id := strings.TrimSpace(filter.SeriesID); id != "" {
		where = append(where, querybuilder.Eq("series_id", id))
	}
	if filter.From != nil {
		where = append(where, querybuilder.Gte("match_date", formatDate(*filter.From)))
	}
	if filter.To != nil {
		where = append(where, querybuilder.Lte("match_date", formatDate(*filter.To)))
	}
	if len(filter.IDs) > 0 {
		where = append(where, querybuilder.InStrings("id", filter.IDs))
	}
	return r.list(ctx, where, []string{"match_date DESC", "id ASC"}, page)
}
