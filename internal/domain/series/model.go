package series

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/cricket-analytics/internal/platform/validation"
)

// Series groups matches of one tournament or bilateral tour.
type Series struct {
	ID           string     `json:"id" validate:"max=64"`
	Name         string     `json:"name" validate:"required,max=200"`
	SeriesType   string     `json:"series_type,omitempty" validate:"max=50"`
	HostCountry  string     `json:"host_country,omitempty" validate:"max=80"`
	StartDate    *time.Time `json:"start_date,omitempty"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	TotalMatches int        `json:"total_matches" validate:"gte=0"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (s Series) RecordID() string {
	return s.ID
}

func (s Series) Stamp(id string, now time.Time) Series {
	s.ID = id
	s.CreatedAt = now
	s.UpdatedAt = now
	return s
}

func (s Series) Touch(now time.Time) Series {
	s.UpdatedAt = now
	return s
}

func (s Series) Normalize() Series {
	s.ID = strings.TrimSpace(s.ID)
	s.Name = strings.TrimSpace(s.Name)
	s.SeriesType = strings.TrimSpace(s.SeriesType)
	s.HostCountry = strings.TrimSpace(s.HostCountry)
	return s
}

func (s Series) Validate(ctx context.Context) error {
	if err := validation.Struct(ctx, s); err != nil {
		return err
	}
	if s.StartDate != nil && s.EndDate != nil && s.EndDate.Before(*s.StartDate) {
		return fmt.Errorf("end_date must not be before start_date")
	}
	return nil
}

type Patch struct {
	Name         *string    `json:"name,omitempty"`
	SeriesType   *string    `json:"series_type,omitempty"`
	HostCountry  *string    `json:"host_country,omitempty"`
	StartDate    *time.Time `json:"start_date,omitempty"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	TotalMatches *int       `json:"total_matches,omitempty"`
}

func (p Patch) Apply(current Series) Series {
	if p.Name != nil {
		current.Name = *p.Name
	}
	if p.SeriesType != nil {
		current.SeriesType = *p.SeriesType
	}
	if p.HostCountry != nil {
		current.HostCountry = *p.HostCountry
	}
	if p.StartDate != nil {
		start := *p.StartDate
		current.StartDate = &start
	}
	if p.EndDate != nil {
		end := *p.EndDate
		current.EndDate = &end
	}
	if p.TotalMatches != nil {
		current.TotalMatches = *p.TotalMatches
	}
	return current.Normalize()
}

type Filter struct {
	Search      string
	HostCountry string
	Year        int
}
