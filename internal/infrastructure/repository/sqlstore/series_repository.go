package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/cricket-analytics/internal/domain/crud"
	"github.com/riskibarqy/cricket-analytics/internal/domain/series"
	"github.com/riskibarqy/cricket-analytics/internal/platform/querybuilder"
)

type seriesRow struct {
	ID           string         `db:"id"`
	Name         string         `db:"name"`
	SeriesType   string         `db:"series_type"`
	HostCountry  string         `db:"host_country"`
	StartDate    sql.NullString `db:"start_date"`
	EndDate      sql.NullString `db:"end_date"`
	TotalMatches int            `db:"total_matches"`
	CreatedAt    sqlTime        `db:"created_at"`
	UpdatedAt    sqlTime        `db:"updated_at"`
}

func seriesToRow(s series.Series) seriesRow {
	return seriesRow{
		ID:           s.ID,
		Name:         s.Name,
		SeriesType:   s.SeriesType,
		HostCountry:  s.HostCountry,
		StartDate:    nullDate(s.StartDate),
		EndDate:      nullDate(s.EndDate),
		TotalMatches: s.TotalMatches,
		CreatedAt:    newSQLTime(s.CreatedAt),
		UpdatedAt:    newSQLTime(s.UpdatedAt),
	}
}

func seriesFromRow(r seriesRow) (series.Series, error) {
	start, err := parseNullDate(r.StartDate)
	if err != nil {
		return series.Series{}, err
	}
	end, err := parseNullDate(r.EndDate)
	if err != nil {
		return series.Series{}, err
	}
	return series.Series{
		ID:           r.ID,
		Name:         r.Name,
		SeriesType:   r.SeriesType,
		HostCountry:  r.HostCountry,
		StartDate:    start,
		EndDate:      end,
		TotalMatches: r.TotalMatches,
		CreatedAt:    r.CreatedAt.Time,
		UpdatedAt:    r.UpdatedAt.Time,
	}, nil
}

// SeriesRepository stores series. Deleting a series detaches its matches.
type SeriesRepository struct {
	*table[series.Series, seriesRow]
}

func NewSeriesRepository(db *sqlx.DB) *SeriesRepository {
	t := newTable(db, "series", seriesToRow, seriesFromRow, series.Series.RecordID)
	t.beforeDelete = func(ctx context.Context, tx *sqlx.Tx, id string) (int64, error) {
		query, args, err := querybuilder.Update("matches").
			Set("series_id", nil).
			Where(querybuilder.Eq("series_id", id)).
			ToSQL()
		if err != nil {
			return 0, err
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
			return 0, err
		}
		return 0, nil
	}
	return &SeriesRepository{table: t}
}

func (r *SeriesRepository) List(ctx context.Context, filter series.Filter, page crud.Page) ([]series.Series, error) {
	var where []querybuilder.Condition
	if s := strings.TrimSpace(filter.Search); s != "" {
		where = append(where, querybuilder.ContainsFold("name", s))
	}
	if c := strings.TrimSpace(filter.HostCountry); c != "" {
		where = append(where, querybuilder.Expr("LOWER(host_country) = ?", strings.ToLower(c)))
	}
	if filter.Year > 0 {
		where = append(where, querybuilder.Eq("SUBSTR(start_date, 1, 4)", fmt.Sprintf("%04d", filter.Year)))
	}
	return r.list(ctx, where, []string{"start_date DESC", "name ASC", "id ASC"}, page)
}
