package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/cricket-analytics/internal/domain/ingestion"
	"github.com/riskibarqy/cricket-analytics/internal/domain/match"
	"github.com/riskibarqy/cricket-analytics/internal/domain/player"
	"github.com/riskibarqy/cricket-analytics/internal/domain/playerstats"
	"github.com/riskibarqy/cricket-analytics/internal/domain/series"
	"github.com/riskibarqy/cricket-analytics/internal/domain/team"
	"github.com/riskibarqy/cricket-analytics/internal/domain/venue"
	"github.com/riskibarqy/cricket-analytics/internal/platform/id"
)

// BootstrapSeed loads the demonstration data set into an empty store. It
// does nothing once any player exists.
func BootstrapSeed(ctx context.Context, db *sqlx.DB, now time.Time) (bool, error) {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM players`); err != nil {
		return false, fmt.Errorf("count players for bootstrap seed: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	if err := NewIngestionWriter(db).WriteBatch(ctx, SeedBatch(now)); err != nil {
		return false, fmt.Errorf("write seed batch: %w", err)
	}
	return true, nil
}

type seedPlayer struct {
	name, country string
	role          player.Role
	bat, bowl     string
	dob           string
}

var seedPlayers = []seedPlayer{
	{"Virat Kohli", "India", player.RoleBatsman, "Right-hand bat", "Right-arm medium", "1988-11-05"},
	{"Rohit Sharma", "India", player.RoleBatsman, "Right-hand bat", "Right-arm off-break", "1987-04-30"},
	{"Kane Williamson", "New Zealand", player.RoleBatsman, "Right-hand bat", "Right-arm off-break", "1990-08-08"},
	{"Steve Smith", "Australia", player.RoleBatsman, "Right-hand bat", "Right-arm leg-break", "1989-06-02"},
	{"Babar Azam", "Pakistan", player.RoleBatsman, "Right-hand bat", "Right-arm off-break", "1994-10-15"},
	{"Jasprit Bumrah", "India", player.RoleBowler, "Right-hand bat", "Right-arm fast", "1993-12-06"},
	{"Trent Boult", "New Zealand", player.RoleBowler, "Left-hand bat", "Left-arm fast-medium", "1989-07-22"},
	{"Pat Cummins", "Australia", player.RoleBowler, "Right-hand bat", "Right-arm fast", "1993-05-08"},
	{"Kagiso Rabada", "South Africa", player.RoleBowler, "Right-hand bat", "Right-arm fast", "1995-05-25"},
	{"Rashid Khan", "Afghanistan", player.RoleBowler, "Right-hand bat", "Right-arm leg-break", "1998-09-20"},
	{"Ben Stokes", "England", player.RoleAllRounder, "Left-hand bat", "Right-arm fast-medium", "1991-06-04"},
	{"Shakib Al Hasan", "Bangladesh", player.RoleAllRounder, "Left-hand bat", "Slow left-arm orthodox", "1987-03-24"},
	{"Ravindra Jadeja", "India", player.RoleAllRounder, "Left-hand bat", "Slow left-arm orthodox", "1988-12-06"},
	{"MS Dhoni", "India", player.RoleWicketKeeper, "Right-hand bat", "Right-arm medium", "1981-07-07"},
	{"Jos Buttler", "England", player.RoleWicketKeeper, "Right-hand bat", "", "1990-09-08"},
}

var seedTeams = []string{
	"India", "Australia", "England", "New Zealand", "Pakistan",
	"South Africa", "West Indies", "Bangladesh", "Sri Lanka", "Afghanistan",
}

var seedVenues = []venue.Venue{
	{Name: "Lord's Cricket Ground", City: "London", Country: "England", Capacity: 30000, PitchType: "Balanced"},
	{Name: "Melbourne Cricket Ground", City: "Melbourne", Country: "Australia", Capacity: 100024, PitchType: "Batting-friendly"},
	{Name: "Eden Gardens", City: "Kolkata", Country: "India", Capacity: 66349, PitchType: "Spin-friendly"},
	{Name: "Wankhede Stadium", City: "Mumbai", Country: "India", Capacity: 33108, PitchType: "Batting-friendly"},
	{Name: "The Oval", City: "London", Country: "England", Capacity: 25500, PitchType: "Balanced"},
	{Name: "Sydney Cricket Ground", City: "Sydney", Country: "Australia", Capacity: 48000, PitchType: "Batting-friendly"},
	{Name: "Dubai International Cricket Stadium", City: "Dubai", Country: "UAE", Capacity: 25000, PitchType: "Batting-friendly"},
	{Name: "Gaddafi Stadium", City: "Lahore", Country: "Pakistan", Capacity: 27000, PitchType: "Batting-friendly"},
	{Name: "Basin Reserve", City: "Wellington", Country: "New Zealand", Capacity: 11600, PitchType: "Bowling-friendly"},
	{Name: "Newlands", City: "Cape Town", Country: "South Africa", Capacity: 25000, PitchType: "Balanced"},
}

type seedMatch struct {
	team1, team2, venue, city, date string
	format                          match.Format
	toss, decision, winner          string
	margin                          int
	victoryType                     string
}

var seedMatches = []seedMatch{
	{"India", "Australia", "Wankhede Stadium", "Mumbai", "2024-10-12", match.FormatODI, "India", "bat", "India", 45, "runs"},
	{"England", "New Zealand", "Lord's Cricket Ground", "London", "2024-06-20", match.FormatTest, "England", "bowl", "New Zealand", 4, "wickets"},
	{"Australia", "South Africa", "Melbourne Cricket Ground", "Melbourne", "2025-01-03", match.FormatT20I, "South Africa", "bowl", "Australia", 8, "runs"},
	{"India", "England", "Eden Gardens", "Kolkata", "2025-02-14", match.FormatT20I, "England", "bat", "India", 7, "wickets"},
	{"Pakistan", "Afghanistan", "Gaddafi Stadium", "Lahore", "2025-03-02", match.FormatODI, "Afghanistan", "bat", "Afghanistan", 12, "runs"},
	{"Bangladesh", "India", "Dubai International Cricket Stadium", "Dubai", "2025-03-09", match.FormatODI, "Bangladesh", "bat", "India", 6, "wickets"},
}

// seedLine is one stat row: player index, match index, runs, balls, fours,
// sixes, dismissed, balls bowled, runs conceded, wickets, catches.
type seedLine struct {
	player, match                   int
	runs, balls, fours, sixes       int
	dismissed                       bool
	bowled, conceded, wickets, ctch int
}

var seedLines = []seedLine{
	{0, 0, 112, 101, 10, 3, true, 0, 0, 0, 1},
	{1, 0, 64, 55, 7, 2, true, 0, 0, 0, 0},
	{5, 0, 4, 6, 0, 0, true, 60, 38, 4, 0},
	{12, 0, 31, 24, 2, 1, false, 60, 45, 2, 2},
	{3, 0, 88, 94, 8, 1, true, 0, 0, 0, 1},
	{7, 0, 12, 10, 1, 0, true, 60, 61, 1, 0},
	{2, 1, 133, 240, 14, 0, false, 0, 0, 0, 1},
	{6, 1, 8, 20, 1, 0, true, 132, 54, 5, 0},
	{10, 1, 57, 98, 6, 1, true, 90, 41, 2, 1},
	{14, 1, 42, 61, 5, 0, true, 0, 0, 0, 3},
	{3, 2, 49, 33, 4, 2, true, 0, 0, 0, 0},
	{7, 2, 9, 7, 0, 1, false, 24, 22, 3, 1},
	{8, 2, 2, 4, 0, 0, true, 24, 31, 2, 0},
	{0, 3, 76, 52, 6, 3, false, 0, 0, 0, 0},
	{5, 3, 0, 0, 0, 0, false, 24, 17, 3, 0},
	{12, 3, 22, 14, 1, 1, false, 24, 26, 1, 1},
	{10, 3, 38, 27, 3, 2, true, 18, 29, 0, 0},
	{14, 3, 55, 31, 5, 3, true, 0, 0, 0, 2},
	{4, 4, 91, 104, 9, 1, true, 0, 0, 0, 0},
	{9, 4, 24, 15, 2, 1, true, 60, 33, 4, 1},
	{11, 5, 67, 79, 6, 1, true, 60, 48, 2, 0},
	{1, 5, 102, 96, 11, 3, true, 0, 0, 0, 1},
	{13, 5, 28, 19, 2, 1, false, 0, 0, 0, 2},
	{12, 5, 14, 12, 1, 0, false, 60, 39, 3, 1},
}

// SeedBatch builds the demonstration data set with deterministic ids.
func SeedBatch(now time.Time) ingestion.Batch {
	now = now.UTC()
	var batch ingestion.Batch

	seriesID := "seed-series-1"
	start := mustDate("2024-06-01")
	end := mustDate("2025-03-31")
	batch.Series = append(batch.Series, series.Series{
		Name:         "Demonstration International Season",
		SeriesType:   "International",
		HostCountry:  "Various",
		StartDate:    &start,
		EndDate:      &end,
		TotalMatches: len(seedMatches),
	}.Stamp(seriesID, now))

	for i, name := range seedTeams {
		batch.Teams = append(batch.Teams, team.Team{
			Name:     name,
			Country:  name,
			TeamType: team.TypeInternational,
		}.Stamp(fmt.Sprintf("seed-team-%02d", i+1), now))
	}

	for i, v := range seedVenues {
		batch.Venues = append(batch.Venues, v.Stamp(fmt.Sprintf("seed-venue-%02d", i+1), now))
	}

	playerIDs := make([]string, len(seedPlayers))
	for i, p := range seedPlayers {
		dob := mustDate(p.dob)
		playerIDs[i] = fmt.Sprintf("seed-player-%02d", i+1)
		batch.Players = append(batch.Players, player.Player{
			Name:         p.name,
			Country:      p.country,
			Role:         p.role,
			BattingStyle: p.bat,
			BowlingStyle: p.bowl,
			DateOfBirth:  &dob,
		}.Stamp(playerIDs[i], now))
	}

	matchIDs := make([]string, len(seedMatches))
	for i, m := range seedMatches {
		matchIDs[i] = fmt.Sprintf("seed-match-%02d", i+1)
		margin := m.margin
		sid := seriesID
		batch.Matches = append(batch.Matches, match.Match{
			SeriesID:      &sid,
			Team1:         m.team1,
			Team2:         m.team2,
			Venue:         m.venue,
			City:          m.city,
			Date:          mustDate(m.date),
			Format:        m.format,
			Status:        match.StatusCompleted,
			TossWinner:    m.toss,
			TossDecision:  m.decision,
			Winner:        m.winner,
			VictoryMargin: &margin,
			VictoryType:   m.victoryType,
			Result:        fmt.Sprintf("%s won by %d %s", m.winner, m.margin, m.victoryType),
		}.Normalize().Stamp(matchIDs[i], now))
	}

	positions := map[int]int{}
	for _, l := range seedLines {
		var pos *int
		if l.balls > 0 || l.runs > 0 {
			positions[l.match]++
			p := positions[l.match]
			pos = &p
		}
		stat := playerstats.Stat{
			PlayerID:        playerIDs[l.player],
			MatchID:         matchIDs[l.match],
			Innings:         1,
			BattingPosition: pos,
			Runs:            l.runs,
			BallsFaced:      l.balls,
			Fours:           l.fours,
			Sixes:           l.sixes,
			Dismissed:       l.dismissed,
			BallsBowled:     l.bowled,
			RunsConceded:    l.conceded,
			Wickets:         l.wickets,
			Catches:         l.ctch,
		}
		batch.Stats = append(batch.Stats, stat.Stamp(id.Stat(stat.PlayerID, stat.MatchID, stat.Innings), now))
	}

	return batch
}

func mustDate(v string) time.Time {
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		panic(err)
	}
	return t
}
