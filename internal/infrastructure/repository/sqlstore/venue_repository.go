package sqlstore

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/cricket-analytics/internal/domain/crud"
	"github.com/riskibarqy/cricket-analytics/internal/domain/venue"
	"github.com/riskibarqy/cricket-analytics/internal/platform/querybuilder"
)

type venueRow struct {
	ID        string  `db:"id"`
	Name      string  `db:"name"`
	City      string  `db:"city"`
	Country   string  `db:"country"`
	Capacity  int     `db:"capacity"`
	PitchType string  `db:"pitch_type"`
	CreatedAt sqlTime `db:"created_at"`
	UpdatedAt sqlTime `db:"updated_at"`
}

func venueToRow(v venue.Venue) venueRow {
	return venueRow{
		ID:        v.ID,
		Name:      v.Name,
		City:      v.City,
		Country:   v.Country,
		Capacity:  v.Capacity,
		PitchType: v.PitchType,
		CreatedAt: newSQLTime(v.CreatedAt),
		UpdatedAt: newSQLTime(v.UpdatedAt),
	}
}

func venueFromRow(r venueRow) (venue.Venue, error) {
	return venue.Venue{
		ID:        r.ID,
		Name:      r.Name,
		City:      r.City,
		Country:   r.Country,
		Capacity:  r.Capacity,
		PitchType: r.PitchType,
		CreatedAt: r.CreatedAt.Time,
		UpdatedAt: r.UpdatedAt.Time,
	}, nil
}

type VenueRepository struct {
	*table[venue.Venue, venueRow]
}

func NewVenueRepository(db *sqlx.DB) *VenueRepository {
	return &VenueRepository{table: newTable(db, "venues", venueToRow, venueFromRow, venue.Venue.RecordID)}
}

func (r *VenueRepository) List(ctx context.Context, filter venue.Filter, page crud.Page) ([]venue.Venue, error) {
	var where []querybuilder.Condition
	if s := strings.TrimSpace(filter.Search); s != "" {
		where = append(where, containsAny([]string{"name", "city"}, s))
	}
	if c := strings.TrimSpace(filter.Country); c != "" {
		where = append(where, querybuilder.Expr("LOWER(country) = ?", strings.ToLower(c)))
	}
	if filter.MinCapacity > 0 {
		where = append(where, querybuilder.Gte("capacity", filter.MinCapacity))
	}
	return r.list(ctx, where, []string{"capacity DESC", "name ASC", "id ASC"}, page)
}
