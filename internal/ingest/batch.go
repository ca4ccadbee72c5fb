package ingest

import (
	"strings"

	"github.com/riskibarqy/cricket-analytics/internal/domain/ingestion"
	"github.com/riskibarqy/cricket-analytics/internal/domain/match"
	"github.com/riskibarqy/cricket-analytics/internal/domain/series"
	"github.com/riskibarqy/cricket-analytics/internal/domain/team"
	"github.com/riskibarqy/cricket-analytics/internal/domain/venue"
	"github.com/riskibarqy/cricket-analytics/internal/platform/id"
)

// LiveScoreBatch collects the matches of scores together with the series,
// teams and venues they reference, each listed once.
func LiveScoreBatch(scores []ingestion.LiveScore) ingestion.Batch {
	var (
		batch      ingestion.Batch
		seenSeries = make(map[string]struct{})
		seenTeams  = make(map[string]struct{})
		seenVenues = make(map[string]struct{})
	)
	for _, s := range scores {
		m := s.Match
		batch.Matches = append(batch.Matches, m)

		if m.SeriesID != nil {
			if _, ok := seenSeries[*m.SeriesID]; !ok {
				seenSeries[*m.SeriesID] = struct{}{}
				name := s.SeriesName
				if name == "" {
					name = *m.SeriesID
				}
				batch.Series = append(batch.Series, series.Series{ID: *m.SeriesID, Name: name}.Normalize())
			}
		}

		teamType := team.TypeFranchise
		switch m.Format {
		case match.FormatTest, match.FormatODI, match.FormatT20I:
			teamType = team.TypeInternational
		}
		for _, name := range []string{m.Team1, m.Team2} {
			key := strings.ToLower(name)
			if _, ok := seenTeams[key]; ok {
				continue
			}
			seenTeams[key] = struct{}{}
			batch.Teams = append(batch.Teams, team.Team{ID: id.ProviderName("team", name), Name: name, TeamType: teamType}.Normalize())
		}

		if m.Venue != "" {
			key := strings.ToLower(m.Venue)
			if _, ok := seenVenues[key]; !ok {
				seenVenues[key] = struct{}{}
				batch.Venues = append(batch.Venues, venue.Venue{ID: id.ProviderName("venue", m.Venue), Name: m.Venue, City: m.City}.Normalize())
			}
		}
	}
	return batch
}

// ScorecardBatch collects the players and stat lines of a scorecard.
func ScorecardBatch(entries []ingestion.ScorecardEntry) ingestion.Batch {
	var (
		batch ingestion.Batch
		seen  = make(map[string]struct{})
	)
	for _, e := range entries {
		if _, ok := seen[e.Player.ID]; !ok {
			seen[e.Player.ID] = struct{}{}
			batch.Players = append(batch.Players, e.Player.Normalize())
		}
		batch.Stats = append(batch.Stats, e.Stat.Normalize())
	}
	return batch
}
