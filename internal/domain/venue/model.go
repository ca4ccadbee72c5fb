package venue

import (
	"context"
	"strings"
	"time"

	"github.com/riskibarqy/cricket-analytics/internal/platform/validation"
)

// Venue is a cricket ground. Names are unique.
type Venue struct {
	ID        string    `json:"id" validate:"max=64"`
	Name      string    `json:"name" validate:"required,max=150"`
	City      string    `json:"city,omitempty" validate:"max=100"`
	Country   string    `json:"country,omitempty" validate:"max=80"`
	Capacity  int       `json:"capacity" validate:"gte=0"`
	PitchType string    `json:"pitch_type,omitempty" validate:"max=50"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (v Venue) RecordID() string {
	return v.ID
}

func (v Venue) Stamp(id string, now time.Time) Venue {
	v.ID = id
	v.CreatedAt = now
	v.UpdatedAt = now
	return v
}

func (v Venue) Touch(now time.Time) Venue {
	v.UpdatedAt = now
	return v
}

func (v Venue) Normalize() Venue {
	v.ID = strings.TrimSpace(v.ID)
	v.Name = strings.TrimSpace(v.Name)
	v.City = strings.TrimSpace(v.City)
	v.Country = strings.TrimSpace(v.Country)
	v.PitchType = strings.TrimSpace(v.PitchType)
	return v
}

func (v Venue) Validate(ctx context.Context) error {
	return validation.Struct(ctx, v)
}

type Patch struct {
	Name      *string `json:"name,omitempty"`
	City      *string `json:"city,omitempty"`
	Country   *string `json:"country,omitempty"`
	Capacity  *int    `json:"capacity,omitempty"`
	PitchType *string `json:"pitch_type,omitempty"`
}

func (p Patch) Apply(current Venue) Venue {
	if p.Name != nil {
		current.Name = *p.Name
	}
	if p.City != nil {
		current.City = *p.City
	}
	if p.Country != nil {
		current.Country = *p.Country
	}
	if p.Capacity != nil {
		current.Capacity = *p.Capacity
	}
	if p.PitchType != nil {
		current.PitchType = *p.PitchType
	}
	return current.Normalize()
}

type Filter struct {
	Search      string
	Country     string
	MinCapacity int
}
