package playerstats

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/cricket-analytics/internal/platform/validation"
)

// Stat is one player's batting, bowling and fielding line for one innings
// of a match. Strike rate and economy are derived, never stored.
type Stat struct {
	ID              string    `json:"id" validate:"max=160"`
	PlayerID        string    `json:"player_id" validate:"required,max=64"`
	MatchID         string    `json:"match_id" validate:"required,max=64"`
	Innings         int       `json:"innings" validate:"gte=1,lte=4"`
	BattingPosition *int      `json:"batting_position,omitempty" validate:"omitempty,gte=1,lte=11"`
	Runs            int       `json:"runs" validate:"gte=0"`
	BallsFaced      int       `json:"balls_faced" validate:"gte=0"`
	Fours           int       `json:"fours" validate:"gte=0"`
	Sixes           int       `json:"sixes" validate:"gte=0"`
	Dismissed       bool      `json:"dismissed"`
	BallsBowled     int       `json:"balls_bowled" validate:"gte=0"`
	Maidens         int       `json:"maidens" validate:"gte=0"`
	RunsConceded    int       `json:"runs_conceded" validate:"gte=0"`
	Wickets         int       `json:"wickets" validate:"gte=0,lte=10"`
	Catches         int       `json:"catches" validate:"gte=0"`
	Stumpings       int       `json:"stumpings" validate:"gte=0"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (s Stat) RecordID() string {
	return s.ID
}

func (s Stat) Stamp(id string, now time.Time) Stat {
	s.ID = id
	s.CreatedAt = now
	s.UpdatedAt = now
	return s
}

func (s Stat) Touch(now time.Time) Stat {
	s.UpdatedAt = now
	return s
}

func (s Stat) Normalize() Stat {
	s.ID = strings.TrimSpace(s.ID)
	s.PlayerID = strings.TrimSpace(s.PlayerID)
	s.MatchID = strings.TrimSpace(s.MatchID)
	if s.Innings == 0 {
		s.Innings = 1
	}
	return s
}

func (s Stat) Validate(ctx context.Context) error {
	if err := validation.Struct(ctx, s); err != nil {
		return err
	}
	if boundaryRuns := s.Fours*4 + s.Sixes*6; boundaryRuns > s.Runs {
		return fmt.Errorf("boundaries account for %d runs but only %d were scored", boundaryRuns, s.Runs)
	}
	if s.Maidens*6 > s.BallsBowled {
		return fmt.Errorf("maidens exceed overs bowled")
	}
	return nil
}

// StrikeRate is runs per 100 balls, nil when no ball was faced.
func (s Stat) StrikeRate() *float64 {
	if s.BallsFaced == 0 {
		return nil
	}
	v := float64(s.Runs) * 100 / float64(s.BallsFaced)
	return &v
}

// Economy is runs conceded per six-ball over, nil when nothing was bowled.
func (s Stat) Economy() *float64 {
	if s.BallsBowled == 0 {
		return nil
	}
	v := float64(s.RunsConceded) * 6 / float64(s.BallsBowled)
	return &v
}

// OversToBalls converts cricket overs notation ("3.4" is three overs and four
// balls) into a ball count.
func OversToBalls(overs string) (int, error) {
	v := strings.TrimSpace(overs)
	if v == "" {
		return 0, nil
	}
	whole, part, hasPart := strings.Cut(v, ".")
	o, err := strconv.Atoi(whole)
	if err != nil || o < 0 {
		return 0, fmt.Errorf("invalid overs %q", overs)
	}
	balls := 0
	if hasPart && part != "" {
		balls, err = strconv.Atoi(part)
		if err != nil || balls < 0 || balls > 5 {
			return 0, fmt.Errorf("invalid overs %q", overs)
		}
	}
	return o*6 + balls, nil
}

// OversFloatToBalls handles providers that send overs as a JSON number.
func OversFloatToBalls(overs float64) (int, error) {
	if overs < 0 || math.IsNaN(overs) || math.IsInf(overs, 0) {
		return 0, fmt.Errorf("invalid overs %v", overs)
	}
	return OversToBalls(strconv.FormatFloat(overs, 'f', 1, 64))
}

// BallsToOvers renders a ball count in overs notation.
func BallsToOvers(balls int) string {
	return strconv.Itoa(balls/6) + "." + strconv.Itoa(balls%6)
}

type Patch struct {
	Innings         *int  `json:"innings,omitempty"`
	BattingPosition *int  `json:"batting_position,omitempty"`
	Runs            *int  `json:"runs,omitempty"`
	BallsFaced      *int  `json:"balls_faced,omitempty"`
	Fours           *int  `json:"fours,omitempty"`
	Sixes           *int  `json:"sixes,omitempty"`
	Dismissed       *bool `json:"dismissed,omitempty"`
	BallsBowled     *int  `json:"balls_bowled,omitempty"`
	Maidens         *int  `json:"maidens,omitempty"`
	RunsConceded    *int  `json:"runs_conceded,omitempty"`
	Wickets         *int  `json:"wickets,omitempty"`
	Catches         *int  `json:"catches,omitempty"`
	Stumpings       *int  `json:"stumpings,omitempty"`
}

func (p Patch) Apply(current Stat) Stat {
	for _, f := range []struct {
		dst *int
		src *int
	}{
		{&current.Innings, p.Innings},
		{&current.Runs, p.Runs},
		{&current.BallsFaced, p.BallsFaced},
		{&current.Fours, p.Fours},
		{&current.Sixes, p.Sixes},
		{&current.BallsBowled, p.BallsBowled},
		{&current.Maidens, p.Maidens},
		{&current.RunsConceded, p.RunsConceded},
		{&current.Wickets, p.Wickets},
		{&current.Catches, p.Catches},
		{&current.Stumpings, p.Stumpings},
	} {
		if f.src != nil {
			*f.dst = *f.src
		}
	}
	if p.BattingPosition != nil {
		pos := *p.BattingPosition
		current.BattingPosition = &pos
	}
	if p.Dismissed != nil {
		current.Dismissed = *p.Dismissed
	}
	return current.Normalize()
}

type Filter struct {
	PlayerID string
	MatchID  string
}
