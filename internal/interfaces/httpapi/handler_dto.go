package httpapi

import (
	"fmt"
	"time"

	"github.com/riskibarqy/cricket-analytics/internal/domain/crud"
	"github.com/riskibarqy/cricket-analytics/internal/domain/match"
	"github.com/riskibarqy/cricket-analytics/internal/domain/player"
	"github.com/riskibarqy/cricket-analytics/internal/domain/series"
	"github.com/riskibarqy/cricket-analytics/internal/usecase"
)

// Dates travel as YYYY-MM-DD strings; the domain keeps time.Time.

func parseDateField(field string, value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := match.ParseDate(*value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a YYYY-MM-DD date", usecase.ErrInvalidInput, field)
	}
	return &t, nil
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(match.DateLayout)
	return &s
}

type playerRequest struct {
	ID           string  `json:"id" validate:"max=64"`
	Name         string  `json:"name" validate:"required,max=120"`
	Country      string  `json:"country" validate:"max=80"`
	Role         string  `json:"playing_role" validate:"max=40"`
	BattingStyle string  `json:"batting_style" validate:"max=80"`
	BowlingStyle string  `json:"bowling_style" validate:"max=80"`
	DateOfBirth  *string `json:"date_of_birth"`
}

func (req playerRequest) toDomain() (player.Player, error) {
	dob, err := parseDateField("date_of_birth", req.DateOfBirth)
	if err != nil {
		return player.Player{}, err
	}
	return player.Player{
		ID:           req.ID,
		Name:         req.Name,
		Country:      req.Country,
		Role:         player.NormalizeRole(req.Role),
		BattingStyle: req.BattingStyle,
		BowlingStyle: req.BowlingStyle,
		DateOfBirth:  dob,
	}, nil
}

type playerPatchRequest struct {
	Name         *string `json:"name"`
	Country      *string `json:"country"`
	Role         *string `json:"playing_role"`
	BattingStyle *string `json:"batting_style"`
	BowlingStyle *string `json:"bowling_style"`
	DateOfBirth  *string `json:"date_of_birth"`
}

func (req playerPatchRequest) toDomain() (player.Patch, error) {
	dob, err := parseDateField("date_of_birth", req.DateOfBirth)
	if err != nil {
		return player.Patch{}, err
	}
	p := player.Patch{
		Name:         req.Name,
		Country:      req.Country,
		BattingStyle: req.BattingStyle,
		BowlingStyle: req.BowlingStyle,
		DateOfBirth:  dob,
	}
	if req.Role != nil {
		role := player.NormalizeRole(*req.Role)
		p.Role = &role
	}
	return p, nil
}

type playerDTO struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Country      string    `json:"country,omitempty"`
	Role         string    `json:"playing_role,omitempty"`
	BattingStyle string    `json:"batting_style,omitempty"`
	BowlingStyle string    `json:"bowling_style,omitempty"`
	DateOfBirth  *string   `json:"date_of_birth"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func playerToDTO(v player.Player) any {
	return playerDTO{
		ID:           v.ID,
		Name:         v.Name,
		Country:      v.Country,
		Role:         string(v.Role),
		BattingStyle: v.BattingStyle,
		BowlingStyle: v.BowlingStyle,
		DateOfBirth:  formatDate(v.DateOfBirth),
		CreatedAt:    v.CreatedAt,
		UpdatedAt:    v.UpdatedAt,
	}
}

type matchRequest struct {
	ID            string  `json:"id" validate:"max=64"`
	Title         string  `json:"title" validate:"max=200"`
	SeriesID      *string `json:"series_id"`
	Team1         string  `json:"team1" validate:"required,max=100"`
	Team2         string  `json:"team2" validate:"required,max=100"`
	Venue         string  `json:"venue" validate:"max=150"`
	City          string  `json:"city" validate:"max=100"`
	Date          string  `json:"date" validate:"required"`
	Format        string  `json:"format" validate:"required"`
	Status        string  `json:"status"`
	TossWinner    string  `json:"toss_winner"`
	TossDecision  string  `json:"toss_decision"`
	Winner        string  `json:"winner"`
	VictoryMargin *int    `json:"victory_margin"`
	VictoryType   string  `json:"victory_type"`
	Result        string  `json:"result"`
}

func (req matchRequest) toDomain() (match.Match, error) {
	date, err := parseDateField("date", &req.Date)
	if err != nil {
		return match.Match{}, err
	}
	m := match.Match{
		ID:            req.ID,
		Title:         req.Title,
		SeriesID:      req.SeriesID,
		Team1:         req.Team1,
		Team2:         req.Team2,
		Venue:         req.Venue,
		City:          req.City,
		Format:        match.Format(req.Format),
		Status:        req.Status,
		TossWinner:    req.TossWinner,
		TossDecision:  req.TossDecision,
		Winner:        req.Winner,
		VictoryMargin: req.VictoryMargin,
		VictoryType:   req.VictoryType,
		Result:        req.Result,
	}
	if date != nil {
		m.Date = *date
	}
	return m, nil
}

type matchPatchRequest struct {
	Title         *string `json:"title"`
	SeriesID      *string `json:"series_id"`
	Team1         *string `json:"team1"`
	Team2         *string `json:"team2"`
	Venue         *string `json:"venue"`
	City          *string `json:"city"`
	Date          *string `json:"date"`
	Format        *string `json:"format"`
	Status        *string `json:"status"`
	TossWinner    *string `json:"toss_winner"`
	TossDecision  *string `json:"toss_decision"`
	Winner        *string `json:"winner"`
	VictoryMargin *int    `json:"victory_margin"`
	VictoryType   *string `json:"victory_type"`
	Result        *string `json:"result"`
}

func (req matchPatchRequest) toDomain() (match.Patch, error) {
	date, err := parseDateField("date", req.Date)
	if err != nil {
		return match.Patch{}, err
	}
	p := match.Patch{
		Title:         req.Title,
		SeriesID:      req.SeriesID,
		Team1:         req.Team1,
		Team2:         req.Team2,
		Venue:         req.Venue,
		City:          req.City,
		Date:          date,
		Status:        req.Status,
		TossWinner:    req.TossWinner,
		TossDecision:  req.TossDecision,
		Winner:        req.Winner,
		VictoryMargin: req.VictoryMargin,
		VictoryType:   req.VictoryType,
		Result:        req.Result,
	}
	if req.Format != nil {
		format := match.Format(*req.Format)
		p.Format = &format
	}
	return p, nil
}

type matchDTO struct {
	ID            string    `json:"id"`
	Title         string    `json:"title,omitempty"`
	SeriesID      *string   `json:"series_id"`
	Team1         string    `json:"team1"`
	Team2         string    `json:"team2"`
	Venue         string    `json:"venue,omitempty"`
	City          string    `json:"city,omitempty"`
	Date          string    `json:"date"`
	Format        string    `json:"format"`
	Status        string    `json:"status"`
	TossWinner    string    `json:"toss_winner,omitempty"`
	TossDecision  string    `json:"toss_decision,omitempty"`
	Winner        string    `json:"winner,omitempty"`
	VictoryMargin *int      `json:"victory_margin"`
	VictoryType   string    `json:"victory_type,omitempty"`
	Result        string    `json:"result,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func matchToDTO(v match.Match) any {
	return matchDTO{
		ID:            v.ID,
		Title:         v.Title,
		SeriesID:      v.SeriesID,
		Team1:         v.Team1,
		Team2:         v.Team2,
		Venue:         v.Venue,
		City:          v.City,
		Date:          v.Date.Format(match.DateLayout),
		Format:        string(v.Format),
		Status:        v.Status,
		TossWinner:    v.TossWinner,
		TossDecision:  v.TossDecision,
		Winner:        v.Winner,
		VictoryMargin: v.VictoryMargin,
		VictoryType:   v.VictoryType,
		Result:        v.Result,
		CreatedAt:     v.CreatedAt,
		UpdatedAt:     v.UpdatedAt,
	}
}

type seriesRequest struct {
	ID           string  `json:"id" validate:"max=64"`
	Name         string  `json:"name" validate:"required,max=200"`
	SeriesType   string  `json:"series_type" validate:"max=50"`
	HostCountry  string  `json:"host_country" validate:"max=80"`
	StartDate    *string `json:"start_date"`
	EndDate      *string `json:"end_date"`
	TotalMatches int     `json:"total_matches" validate:"gte=0"`
}

func (req seriesRequest) toDomain() (series.Series, error) {
	start, err := parseDateField("start_date", req.StartDate)
	if err != nil {
		return series.Series{}, err
	}
	end, err := parseDateField("end_date", req.EndDate)
	if err != nil {
		return series.Series{}, err
	}
	return series.Series{
		ID:           req.ID,
		Name:         req.Name,
		SeriesType:   req.SeriesType,
		HostCountry:  req.HostCountry,
		StartDate:    start,
		EndDate:      end,
		TotalMatches: req.TotalMatches,
	}, nil
}

type seriesPatchRequest struct {
	Name         *string `json:"name"`
	SeriesType   *string `json:"series_type"`
	HostCountry  *string `json:"host_country"`
	StartDate    *string `json:"start_date"`
	EndDate      *string `json:"end_date"`
	TotalMatches *int    `json:"total_matches"`
}

func (req seriesPatchRequest) toDomain() (series.Patch, error) {
	start, err := parseDateField("start_date", req.StartDate)
	if err != nil {
		return series.Patch{}, err
	}
	end, err := parseDateField("end_date", req.EndDate)
	if err != nil {
		return series.Patch{}, err
	}
	return series.Patch{
		Name:         req.Name,
		SeriesType:   req.SeriesType,
		HostCountry:  req.HostCountry,
		StartDate:    start,
		EndDate:      end,
		TotalMatches: req.TotalMatches,
	}, nil
}

type seriesDTO struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	SeriesType   string    `json:"series_type,omitempty"`
	HostCountry  string    `json:"host_country,omitempty"`
	StartDate    *string   `json:"start_date"`
	EndDate      *string   `json:"end_date"`
	TotalMatches int       `json:"total_matches"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func seriesToDTO(v series.Series) any {
	return seriesDTO{
		ID:           v.ID,
		Name:         v.Name,
		SeriesType:   v.SeriesType,
		HostCountry:  v.HostCountry,
		StartDate:    formatDate(v.StartDate),
		EndDate:      formatDate(v.EndDate),
		TotalMatches: v.TotalMatches,
		CreatedAt:    v.CreatedAt,
		UpdatedAt:    v.UpdatedAt,
	}
}

type bulkDeleteRequest struct {
	IDs    []string `json:"ids" validate:"required,min=1,max=500"`
	Atomic bool     `json:"atomic"`
}

type rowResultDTO struct {
	Index int    `json:"index"`
	ID    string `json:"id,omitempty"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type bulkResultDTO struct {
	Atomic    bool           `json:"atomic"`
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
	Rows      []rowResultDTO `json:"rows"`
}

func bulkToDTO(results []crud.RowResult, atomic bool) bulkResultDTO {
	out := bulkResultDTO{Atomic: atomic, Rows: make([]rowResultDTO, 0, len(results))}
	for _, r := range results {
		row := rowResultDTO{Index: r.Index, ID: r.ID, OK: r.OK()}
		if r.Err != nil {
			row.Error = usecase.UserMessage(r.Err)
		}
		out.Rows = append(out.Rows, row)
	}
	out.Failed = crud.Failed(results)
	out.Succeeded = len(results) - out.Failed
	return out
}
