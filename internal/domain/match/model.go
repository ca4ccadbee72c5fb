package match

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/cricket-analytics/internal/platform/validation"
)

// DateLayout is the storage and wire layout of a match date.
const DateLayout = "2006-01-02"

type Format string

const (
	FormatTest Format = "Test"
	FormatODI  Format = "ODI"
	FormatT20I Format = "T20I"
	FormatT20  Format = "T20"
)

const (
	StatusScheduled = "Scheduled"
	StatusLive      = "Live"
	StatusCompleted = "Completed"
	StatusAbandoned = "Abandoned"
)

// NormalizeFormat maps provider spellings onto Format. Unknown values are
// returned unchanged so validation rejects them.
func NormalizeFormat(value string) Format {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "":
		return ""
	case "TEST":
		return FormatTest
	case "ODI":
		return FormatODI
	case "T20I", "T20 INTERNATIONAL":
		return FormatT20I
	case "T20":
		return FormatT20
	default:
		return Format(strings.TrimSpace(value))
	}
}

// NormalizeStatus maps provider match states onto the stored status set.
func NormalizeStatus(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "preview", "upcoming", "scheduled":
		return StatusScheduled
	case "in progress", "live", "innings break", "stumps", "tea", "lunch", "drink", "rain":
		return StatusLive
	case "complete", "completed", "result", "finished":
		return StatusCompleted
	case "abandon", "abandoned", "no result", "cancelled":
		return StatusAbandoned
	default:
		return strings.TrimSpace(value)
	}
}

// Match is one fixture between two teams.
type Match struct {
	ID            string    `json:"id" validate:"max=64"`
	Title         string    `json:"title,omitempty" validate:"max=200"`
	SeriesID      *string   `json:"series_id,omitempty"`
	Team1         string    `json:"team1" validate:"required,max=100"`
	Team2         string    `json:"team2" validate:"required,max=100"`
	Venue         string    `json:"venue,omitempty" validate:"max=150"`
	City          string    `json:"city,omitempty" validate:"max=100"`
	Date          time.Time `json:"date" validate:"required"`
	Format        Format    `json:"format" validate:"required,oneof=Test ODI T20I T20"`
	Status        string    `json:"status" validate:"omitempty,oneof=Scheduled Live Completed Abandoned"`
	TossWinner    string    `json:"toss_winner,omitempty" validate:"max=100"`
	TossDecision  string    `json:"toss_decision,omitempty" validate:"omitempty,oneof=bat bowl"`
	Winner        string    `json:"winner,omitempty" validate:"max=100"`
	VictoryMargin *int      `json:"victory_margin,omitempty" validate:"omitempty,gte=0"`
	VictoryType   string    `json:"victory_type,omitempty" validate:"omitempty,oneof=runs wickets"`
	Result        string    `json:"result,omitempty" validate:"max=300"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (m Match) RecordID() string {
	return m.ID
}

func (m Match) Stamp(id string, now time.Time) Match {
	m.ID = id
	m.CreatedAt = now
	m.UpdatedAt = now
	return m
}

func (m Match) Touch(now time.Time) Match {
	m.UpdatedAt = now
	return m
}

func (m Match) Normalize() Match {
	m.ID = strings.TrimSpace(m.ID)
	m.Title = strings.TrimSpace(m.Title)
	m.Team1 = strings.TrimSpace(m.Team1)
	m.Team2 = strings.TrimSpace(m.Team2)
	m.Venue = strings.TrimSpace(m.Venue)
	m.City = strings.TrimSpace(m.City)
	m.Format = NormalizeFormat(string(m.Format))
	m.Status = NormalizeStatus(m.Status)
	m.TossWinner = strings.TrimSpace(m.TossWinner)
	m.TossDecision = strings.ToLower(strings.TrimSpace(m.TossDecision))
	m.Winner = strings.TrimSpace(m.Winner)
	m.VictoryType = strings.ToLower(strings.TrimSpace(m.VictoryType))
	m.Result = strings.TrimSpace(m.Result)
	if !m.Date.IsZero() {
		m.Date = TruncateDate(m.Date)
	}
	if m.SeriesID != nil && strings.TrimSpace(*m.SeriesID) == "" {
		m.SeriesID = nil
	}
	if m.Title == "" && m.Team1 != "" && m.Team2 != "" {
		m.Title = m.Team1 + " vs " + m.Team2
	}
	return m
}

func (m Match) Validate(ctx context.Context) error {
	if err := validation.Struct(ctx, m); err != nil {
		return err
	}
	if strings.EqualFold(m.Team1, m.Team2) {
		return fmt.Errorf("team1 and team2 must be different teams")
	}
	if m.Winner != "" && !strings.EqualFold(m.Winner, m.Team1) && !strings.EqualFold(m.Winner, m.Team2) {
		return fmt.Errorf("winner must be team1 or team2")
	}
	if m.TossWinner != "" && !strings.EqualFold(m.TossWinner, m.Team1) && !strings.EqualFold(m.TossWinner, m.Team2) {
		return fmt.Errorf("toss_winner must be team1 or team2")
	}
	if m.Date.Year() < 1877 || m.Date.Year() > 2200 {
		return fmt.Errorf("date %s is out of range", m.Date.Format(DateLayout))
	}
	return nil
}

// TruncateDate drops the time of day, keeping the calendar date.
func TruncateDate(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate accepts YYYY-MM-DD and RFC3339 timestamps.
func ParseDate(value string) (time.Time, error) {
	v := strings.TrimSpace(value)
	if t, err := time.Parse(DateLayout, v); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return TruncateDate(t), nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
}

type Patch struct {
	Title         *string    `json:"title,omitempty"`
	SeriesID      *string    `json:"series_id,omitempty"`
	Team1         *string    `json:"team1,omitempty"`
	Team2         *string    `json:"team2,omitempty"`
	Venue         *string    `json:"venue,omitempty"`
	City          *string    `json:"city,omitempty"`
	Date          *time.Time `json:"date,omitempty"`
	Format        *Format    `json:"format,omitempty"`
	Status        *string    `json:"status,omitempty"`
	TossWinner    *string    `json:"toss_winner,omitempty"`
	TossDecision  *string    `json:"toss_decision,omitempty"`
	Winner        *string    `json:"winner,omitempty"`
	VictoryMargin *int       `json:"victory_margin,omitempty"`
	VictoryType   *string    `json:"victory_type,omitempty"`
	Result        *string    `json:"result,omitempty"`
}

func (p Patch) Apply(current Match) Match {
	setString(&current.Title, p.Title)
	setString(&current.Team1, p.Team1)
	setString(&current.Team2, p.Team2)
	setString(&current.Venue, p.Venue)
	setString(&current.City, p.City)
	setString(&current.Status, p.Status)
	setString(&current.TossWinner, p.TossWinner)
	setString(&current.TossDecision, p.TossDecision)
	setString(&current.Winner, p.Winner)
	setString(&current.VictoryType, p.VictoryType)
	setString(&current.Result, p.Result)
	if p.SeriesID != nil {
		seriesID := *p.SeriesID
		current.SeriesID = &seriesID
	}
	if p.Date != nil {
		current.Date = *p.Date
	}
	if p.Format != nil {
		current.Format = *p.Format
	}
	if p.VictoryMargin != nil {
		margin := *p.VictoryMargin
		current.VictoryMargin = &margin
	}
	return current.Normalize()
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

type Filter struct {
	Search   string
	Team     string
	Format   Format
	Status   string
	SeriesID string
	From     *time.Time
	To       *time.Time
	IDs      []string
}
