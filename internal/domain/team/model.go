package team

import (
	"context"
	"strings"
	"time"

	"github.com/riskibarqy/cricket-analytics/internal/platform/validation"
)

const (
	TypeInternational = "International"
	TypeFranchise     = "Franchise"
	TypeDomestic      = "Domestic"
)

// Team is a national or franchise side. Names are unique.
type Team struct {
	ID        string    `json:"id" validate:"max=64"`
	Name      string    `json:"name" validate:"required,max=100"`
	Country   string    `json:"country,omitempty" validate:"max=80"`
	TeamType  string    `json:"team_type,omitempty" validate:"omitempty,oneof=International Franchise Domestic"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (t Team) RecordID() string {
	return t.ID
}

func (t Team) Stamp(id string, now time.Time) Team {
	t.ID = id
	t.CreatedAt = now
	t.UpdatedAt = now
	return t
}

func (t Team) Touch(now time.Time) Team {
	t.UpdatedAt = now
	return t
}

func (t Team) Normalize() Team {
	t.ID = strings.TrimSpace(t.ID)
	t.Name = strings.TrimSpace(t.Name)
	t.Country = strings.TrimSpace(t.Country)
	t.TeamType = strings.TrimSpace(t.TeamType)
	if t.TeamType == "" {
		t.TeamType = TypeInternational
	}
	return t
}

func (t Team) Validate(ctx context.Context) error {
	return validation.Struct(ctx, t)
}

type Patch struct {
	Name     *string `json:"name,omitempty"`
	Country  *string `json:"country,omitempty"`
	TeamType *string `json:"team_type,omitempty"`
}

func (p Patch) Apply(current Team) Team {
	if p.Name != nil {
		current.Name = *p.Name
	}
	if p.Country != nil {
		current.Country = *p.Country
	}
	if p.TeamType != nil {
		current.TeamType = *p.TeamType
	}
	return current.Normalize()
}

type Filter struct {
	Search   string
	Country  string
	TeamType string
}
