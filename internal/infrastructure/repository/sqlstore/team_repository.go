package sqlstore

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/cricket-analytics/internal/domain/crud"
	"github.com/riskibarqy/cricket-analytics/internal/domain/team"
	"github.com/riskibarqy/cricket-analytics/internal/platform/querybuilder"
)

type teamRow struct {
	ID        string  `db:"id"`
	Name      string  `db:"name"`
	Country   string  `db:"country"`
	TeamType  string  `db:"team_type"`
	CreatedAt sqlTime `db:"created_at"`
	UpdatedAt sqlTime `db:"updated_at"`
}

func teamToRow(t team.Team) teamRow {
	return teamRow{
		ID:        t.ID,
		Name:      t.Name,
		Country:   t.Country,
		TeamType:  t.TeamType,
		CreatedAt: newSQLTime(t.CreatedAt),
		UpdatedAt: newSQLTime(t.UpdatedAt),
	}
}

func teamFromRow(r teamRow) (team.Team, error) {
	return team.Team{
		ID:        r.ID,
		Name:      r.Name,
		Country:   r.Country,
		TeamType:  r.TeamType,
		CreatedAt: r.CreatedAt.Time,
		UpdatedAt: r.UpdatedAt.Time,
	}, nil
}

type TeamRepository struct {
	*table[team.Team, teamRow]
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{table: newTable(db, "teams", teamToRow, teamFromRow, team.Team.RecordID)}
}

func (r *TeamRepository) List(ctx context.Context, filter team.Filter, page crud.Page) ([]team.Team, error) {
	var where []querybuilder.Condition
	if s := strings.TrimSpace(filter.Search); s != "" {
		where = append(where, querybuilder.ContainsFold("name", s))
	}
	if c := strings.TrimSpace(filter.Country); c != "" {
		where = append(where, querybuilder.Expr("LOWER(country) = ?", strings.ToLower(c)))
	}
	if tt := strings.TrimSpace(filter.TeamType); tt != "" {
		where = append(where, querybuilder.Eq("team_type", tt))
	}
	return r.list(ctx, where, []string{"name ASC", "id ASC"}, page)
}
