package player

import (
	"context"
	"strings"
	"time"

	"github.com/riskibarqy/cricket-analytics/internal/platform/validation"
)

// Role is the playing role of a cricketer.
type Role string

const (
	RoleBatsman      Role = "Batsman"
	RoleBowler       Role = "Bowler"
	RoleAllRounder   Role = "All-rounder"
	RoleWicketKeeper Role = "Wicket-keeper"
)

// NormalizeRole maps the many spellings used by data providers onto Role.
// Unknown values are returned unchanged so validation can reject them.
func NormalizeRole(value string) Role {
	v := strings.ToLower(strings.TrimSpace(value))
	switch {
	case v == "":
		return ""
	case strings.Contains(v, "allrounder"), strings.Contains(v, "all-rounder"), strings.Contains(v, "all rounder"):
		return RoleAllRounder
	case strings.HasPrefix(v, "wk"), strings.Contains(v, "keeper"):
		return RoleWicketKeeper
	case strings.HasPrefix(v, "bat"):
		return RoleBatsman
	case strings.HasPrefix(v, "bowl"):
		return RoleBowler
	default:
		return Role(strings.TrimSpace(value))
	}
}

// Player is a cricketer known to the analytics store.
type Player struct {
	ID           string     `json:"id" validate:"max=64"`
	Name         string     `json:"name" validate:"required,max=120"`
	Country      string     `json:"country,omitempty" validate:"max=80"`
	Role         Role       `json:"playing_role,omitempty" validate:"omitempty,oneof=Batsman Bowler All-rounder Wicket-keeper"`
	BattingStyle string     `json:"batting_style,omitempty" validate:"max=80"`
	BowlingStyle string     `json:"bowling_style,omitempty" validate:"max=80"`
	DateOfBirth  *time.Time `json:"date_of_birth,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (p Player) RecordID() string {
	return p.ID
}

// Stamp assigns identity and creation time to a new player.
func (p Player) Stamp(id string, now time.Time) Player {
	p.ID = id
	p.CreatedAt = now
	p.UpdatedAt = now
	return p
}

func (p Player) Touch(now time.Time) Player {
	p.UpdatedAt = now
	return p
}

func (p Player) Normalize() Player {
	p.ID = strings.TrimSpace(p.ID)
	p.Name = strings.TrimSpace(p.Name)
	p.Country = strings.TrimSpace(p.Country)
	p.Role = NormalizeRole(string(p.Role))
	p.BattingStyle = strings.TrimSpace(p.BattingStyle)
	p.BowlingStyle = strings.TrimSpace(p.BowlingStyle)
	return p
}

func (p Player) Validate(ctx context.Context) error {
	return validation.Struct(ctx, p)
}

// Patch carries the fields of a partial update; nil fields are left alone.
type Patch struct {
	Name         *string    `json:"name,omitempty"`
	Country      *string    `json:"country,omitempty"`
	Role         *Role      `json:"playing_role,omitempty"`
	BattingStyle *string    `json:"batting_style,omitempty"`
	BowlingStyle *string    `json:"bowling_style,omitempty"`
	DateOfBirth  *time.Time `json:"date_of_birth,omitempty"`
}

func (p Patch) Apply(current Player) Player {
	if p.Name != nil {
		current.Name = *p.Name
	}
	if p.Country != nil {
		current.Country = *p.Country
	}
	if p.Role != nil {
		current.Role = *p.Role
	}
	if p.BattingStyle != nil {
		current.BattingStyle = *p.BattingStyle
	}
	if p.BowlingStyle != nil {
		current.BowlingStyle = *p.BowlingStyle
	}
	if p.DateOfBirth != nil {
		dob := *p.DateOfBirth
		current.DateOfBirth = &dob
	}
	return current.Normalize()
}

// Filter narrows a player listing. Empty fields do not filter.
type Filter struct {
	Search  string
	Country string
	Role    Role
	IDs     []string
}
