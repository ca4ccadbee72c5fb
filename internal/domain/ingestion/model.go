package ingestion

import (
	"strconv"
	"time"

	"github.com/riskibarqy/cricket-analytics/internal/domain/match"
	"github.com/riskibarqy/cricket-analytics/internal/domain/player"
	"github.com/riskibarqy/cricket-analytics/internal/domain/playerstats"
	"github.com/riskibarqy/cricket-analytics/internal/domain/rawdata"
	"github.com/riskibarqy/cricket-analytics/internal/domain/series"
	"github.com/riskibarqy/cricket-analytics/internal/domain/team"
	"github.com/riskibarqy/cricket-analytics/internal/domain/venue"
)

// InningsScore is a team's running total in one innings.
type InningsScore struct {
	Innings int     `json:"innings"`
	Runs    int     `json:"runs"`
	Wickets int     `json:"wickets"`
	Overs   float64 `json:"overs"`
}

// LiveScore is the normalized state of an in-progress or recent match.
type LiveScore struct {
	Match       match.Match    `json:"match"`
	SeriesName  string         `json:"series_name,omitempty"`
	StatusText  string         `json:"status_text,omitempty"`
	Team1Scores []InningsScore `json:"team1_scores,omitempty"`
	Team2Scores []InningsScore `json:"team2_scores,omitempty"`
}

// ScorecardEntry is one player line of a scorecard. Player carries what the
// scorecard knows about the player, Stat the innings numbers.
type ScorecardEntry struct {
	Player player.Player
	Stat   playerstats.Stat
}

// RankingEntry is one row of an ICC style ranking table.
type RankingEntry struct {
	Rank    int    `json:"rank"`
	Name    string `json:"name"`
	Country string `json:"country,omitempty"`
	Rating  int    `json:"rating"`
	Points  *int   `json:"points,omitempty"`
}

// CommentaryEntry is one line of ball-by-ball commentary. Over and Ball are
// nil for notes that belong to no delivery, such as innings breaks.
type CommentaryEntry struct {
	Innings   *int       `json:"innings,omitempty"`
	Over      *int       `json:"over,omitempty"`
	Ball      *int       `json:"ball,omitempty"`
	Event     string     `json:"event,omitempty"`
	Text      string     `json:"text"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// Label renders the delivery as "over.ball", empty for notes.
func (e CommentaryEntry) Label() string {
	if e.Over == nil || e.Ball == nil {
		return ""
	}
	return strconv.Itoa(*e.Over) + "." + strconv.Itoa(*e.Ball)
}

// RecordError reports a provider record that could not be normalized.
type RecordError struct {
	Index  int    `json:"index"`
	Key    string `json:"key,omitempty"`
	Reason string `json:"reason,omitempty"`
	Err    error  `json:"-"`
}

// Batch is everything one refresh writes. It is committed in a single
// transaction after all network calls have finished.
type Batch struct {
	Series   []series.Series
	Teams    []team.Team
	Players  []player.Player
	Venues   []venue.Venue
	Matches  []match.Match
	Stats    []playerstats.Stat
	Payloads []rawdata.Payload
}

func (b Batch) Empty() bool {
	return len(b.Series) == 0 && len(b.Teams) == 0 && len(b.Players) == 0 && len(b.Venues) == 0 && len(b.Matches) == 0 && len(b.Stats) == 0
}

// Merge appends other to b.
func (b *Batch) Merge(other Batch) {
	b.Series = append(b.Series, other.Series...)
	b.Teams = append(b.Teams, other.Teams...)
	b.Players = append(b.Players, other.Players...)
	b.Venues = append(b.Venues, other.Venues...)
	b.Matches = append(b.Matches, other.Matches...)
	b.Stats = append(b.Stats, other.Stats...)
	b.Payloads = append(b.Payloads, other.Payloads...)
}

// Summary is what a refresh reports back to its caller.
type Summary struct {
	Series  int           `json:"series"`
	Teams   int           `json:"teams"`
	Players int           `json:"players"`
	Venues  int           `json:"venues"`
	Matches int           `json:"matches"`
	Stats   int           `json:"stats"`
	Skipped []RecordError `json:"skipped,omitempty"`
}
