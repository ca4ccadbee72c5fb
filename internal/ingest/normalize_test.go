package ingest

import (
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/cricket-analytics/internal/domain/ingestion"
	"github.com/riskibarqy/cricket-analytics/internal/domain/match"
	"github.com/riskibarqy/cricket-analytics/internal/domain/player"
)

func TestNormalizePlayerRequiresName(t *testing.T) {
	t.Parallel()

	_, err := NormalizePlayer(map[string]any{})
	if !errors.Is(err, ingestion.ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
	var fieldErr *ingestion.FieldError
	if !errors.As(err, &fieldErr) || fieldErr.Field != "name" {
		t.Fatalf("expected field name, got %v", err)
	}
}

func TestNormalizePlayerMinimalRecord(t *testing.T) {
	t.Parallel()

	p, err := NormalizePlayer(map[string]any{"name": "Rashid Khan", "country": "Afghanistan"})
	if err != nil {
		t.Fatalf("normalize player: %v", err)
	}
	if p.ID != "" || p.Role != "" || p.BattingStyle != "" || p.DateOfBirth != nil {
		t.Fatalf("absent fields should stay empty: %+v", p)
	}
	if p.Country != "Afghanistan" {
		t.Fatalf("unexpected country %q", p.Country)
	}
}

func TestNormalizePlayerProfile(t *testing.T) {
	t.Parallel()

	p, err := NormalizePlayer(map[string]any{
		"id":       float64(8733),
		"name":     "KL Rahul",
		"intlTeam": "India",
		"role":     "WK-Batsman",
		"bat":      "Right Handed Bat",
		"DoB":      "April 18, 1992 (32 years)",
	})
	if err != nil {
		t.Fatalf("normalize player: %v", err)
	}
	if p.ID != "cb-player-8733" || p.Role != player.RoleWicketKeeper {
		t.Fatalf("unexpected player %+v", p)
	}
	want := time.Date(1992, 4, 18, 0, 0, 0, 0, time.UTC)
	if p.DateOfBirth == nil || !p.DateOfBirth.Equal(want) {
		t.Fatalf("unexpected birth date %v", p.DateOfBirth)
	}
}

func TestNormalizePlayerTypeMismatch(t *testing.T) {
	t.Parallel()

	cases := []map[string]any{
		{"name": "A", "id": "abc"},
		{"name": "A", "country": []any{"India"}},
		{"name": "A", "DoB": "sometime in spring"},
	}
	for _, raw := range cases {
		if _, err := NormalizePlayer(raw); !errors.Is(err, ingestion.ErrTypeMismatch) {
			t.Fatalf("%v: expected ErrTypeMismatch, got %v", raw, err)
		}
	}
}

func matchInfo() map[string]any {
	return map[string]any{
		"matchId":     float64(87654),
		"seriesId":    float64(7607),
		"matchDesc":   "Final",
		"matchFormat": "T20",
		"matchType":   "International",
		"startDate":   float64(1719673200000),
		"state":       "Complete",
		"status":      "IND won by 7 runs",
		"team1":       map[string]any{"teamName": "India", "teamSName": "IND"},
		"team2":       map[string]any{"teamName": "South Africa", "teamSName": "RSA"},
		"venueInfo":   map[string]any{"ground": "Kensington Oval", "city": "Bridgetown"},
		"tossResults": map[string]any{"tossWinnerName": "India", "decision": "Batting"},
	}
}

func TestNormalizeMatchInternationalT20(t *testing.T) {
	t.Parallel()

	m, err := NormalizeMatch(map[string]any{"matchInfo": matchInfo()})
	if err != nil {
		t.Fatalf("normalize match: %v", err)
	}
	if m.ID != "cb-match-87654" || m.SeriesID == nil || *m.SeriesID != "cb-series-7607" {
		t.Fatalf("unexpected ids %+v", m)
	}
	if m.Format != match.FormatT20I {
		t.Fatalf("expected T20I, got %q", m.Format)
	}
	if got := m.Date.Format("2006-01-02"); got != "2024-06-29" {
		t.Fatalf("unexpected date %s", got)
	}
	if m.Status != match.StatusCompleted || m.Title != "India vs South Africa, Final" {
		t.Fatalf("unexpected status or title %+v", m)
	}
	if m.Winner != "India" || m.VictoryType != "runs" || m.VictoryMargin == nil || *m.VictoryMargin != 7 {
		t.Fatalf("unexpected result %+v", m)
	}
	if m.TossWinner != "India" || m.TossDecision != "bat" {
		t.Fatalf("unexpected toss %+v", m)
	}
}

func TestNormalizeMatchDomesticT20AndWicketMargin(t *testing.T) {
	t.Parallel()

	info := matchInfo()
	info["matchType"] = "League"
	info["startDate"] = "2025-04-02"
	info["status"] = "South Africa won by 5 wkts"
	info["tossResults"] = nil

	m, err := NormalizeMatch(info)
	if err != nil {
		t.Fatalf("normalize match: %v", err)
	}
	if m.Format != match.FormatT20 {
		t.Fatalf("expected T20, got %q", m.Format)
	}
	if m.Winner != "South Africa" || m.VictoryType != "wickets" || *m.VictoryMargin != 5 {
		t.Fatalf("unexpected result %+v", m)
	}
	if m.TossWinner != "" {
		t.Fatalf("unexpected toss winner %q", m.TossWinner)
	}
}

func TestNormalizeMatchErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(map[string]any)
		want   error
	}{
		{"no id", func(m map[string]any) { delete(m, "matchId") }, ingestion.ErrMissingField},
		{"no team", func(m map[string]any) { m["team2"] = map[string]any{} }, ingestion.ErrMissingField},
		{"no date", func(m map[string]any) { delete(m, "startDate") }, ingestion.ErrMissingField},
		{"no format", func(m map[string]any) { delete(m, "matchFormat") }, ingestion.ErrMissingField},
		{"bad format", func(m map[string]any) { m["matchFormat"] = "HUNDRED" }, ingestion.ErrTypeMismatch},
		{"bad date", func(m map[string]any) { m["startDate"] = "next tuesday" }, ingestion.ErrTypeMismatch},
		{"fractional id", func(m map[string]any) { m["matchId"] = 1.5 }, ingestion.ErrTypeMismatch},
	}
	for _, tc := range cases {
		info := matchInfo()
		tc.mutate(info)
		if _, err := NormalizeMatch(info); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestNormalizeLiveScoreReadsInnings(t *testing.T) {
	t.Parallel()

	score, err := NormalizeLiveScore(map[string]any{
		"matchInfo": matchInfo(),
		"matchScore": map[string]any{
			"team1Score": map[string]any{"inngs1": map[string]any{"runs": float64(176), "wickets": float64(7), "overs": 19.6}},
			"team2Score": map[string]any{"inngs1": map[string]any{"runs": "169", "wickets": "8", "overs": "20"}},
		},
	})
	if err != nil {
		t.Fatalf("normalize live score: %v", err)
	}
	if len(score.Team1Scores) != 1 || score.Team1Scores[0].Runs != 176 || score.Team2Scores[0].Wickets != 8 {
		t.Fatalf("unexpected scores %+v", score)
	}
	if score.StatusText != "IND won by 7 runs" {
		t.Fatalf("unexpected status %q", score.StatusText)
	}
}

func TestMatchEntriesCarriesMatchType(t *testing.T) {
	t.Parallel()

	info := matchInfo()
	delete(info, "matchType")
	doc := map[string]any{
		"typeMatches": []any{
			map[string]any{
				"matchType": "International",
				"seriesMatches": []any{
					map[string]any{"adDetail": map[string]any{}},
					map[string]any{"seriesAdWrapper": map[string]any{"matches": []any{map[string]any{"matchInfo": info}}}},
				},
			},
		},
	}

	entries := MatchEntries(doc)
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	m, err := NormalizeMatch(entries[0])
	if err != nil {
		t.Fatalf("normalize entry: %v", err)
	}
	if m.Format != match.FormatT20I {
		t.Fatalf("expected T20I, got %q", m.Format)
	}
	if _, ok := info["matchType"]; ok {
		t.Fatalf("source document was modified")
	}
}

func TestNormalizeScorecardMergesLines(t *testing.T) {
	t.Parallel()

	raw := map[string]any{
		"scorecard": []any{
			map[string]any{
				"inningsId": float64(2),
				"batsman": []any{
					map[string]any{"id": float64(576), "name": "Hardik Pandya", "runs": float64(5), "balls": float64(3), "outDesc": "not out"},
					map[string]any{"id": float64(9311), "name": "Jasprit Bumrah", "runs": float64(0), "balls": float64(0)},
				},
				"bowler": []any{
					map[string]any{"id": float64(576), "name": "Hardik Pandya", "overs": "3.4", "runs": float64(20), "wickets": float64(3)},
					map[string]any{"id": float64(9311), "name": "Jasprit Bumrah", "overs": float64(4), "maidens": float64(1), "runs": float64(18), "wickets": float64(2)},
				},
			},
		},
	}

	entries, err := NormalizeScorecard("cb-match-87654", raw)
	if err != nil {
		t.Fatalf("normalize scorecard: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected two lines, got %d", len(entries))
	}
	hardik := entries[0].Stat
	if hardik.ID != "cb-match-87654:cb-player-576:2" || hardik.Innings != 2 {
		t.Fatalf("unexpected stat key %+v", hardik)
	}
	if hardik.Runs != 5 || hardik.Dismissed || hardik.BallsBowled != 22 || hardik.Wickets != 3 {
		t.Fatalf("batting and bowling not merged: %+v", hardik)
	}
	bumrah := entries[1].Stat
	if bumrah.BallsFaced != 0 || bumrah.BallsBowled != 24 || bumrah.Maidens != 1 || bumrah.BattingPosition != nil {
		t.Fatalf("unexpected bowler line %+v", bumrah)
	}
}

func TestNormalizeScorecardErrors(t *testing.T) {
	t.Parallel()

	if _, err := NormalizeScorecard("m-1", map[string]any{}); !errors.Is(err, ingestion.ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
	bad := map[string]any{
		"scoreCard": []any{map[string]any{
			"bowler": []any{map[string]any{"id": float64(1), "name": "X", "overs": "3.7"}},
		}},
	}
	if _, err := NormalizeScorecard("m-1", bad); !errors.Is(err, ingestion.ErrTypeMismatch) {
		t.Fatalf("expected ErrTypeMismatch, got %v", err)
	}
}

func TestNormalizeRanking(t *testing.T) {
	t.Parallel()

	rows := RankingEntries(map[string]any{"rank": []any{
		map[string]any{"rank": "1", "name": "Joe Root", "country": "England", "rating": "895"},
		map[string]any{"name": "Unranked"},
	}})
	if len(rows) != 2 {
		t.Fatalf("expected two rows, got %d", len(rows))
	}
	first, err := NormalizeRanking(rows[0])
	if err != nil {
		t.Fatalf("normalize ranking: %v", err)
	}
	if first.Rank != 1 || first.Rating != 895 || first.Points != nil {
		t.Fatalf("unexpected entry %+v", first)
	}
	if _, err := NormalizeRanking(rows[1]); !errors.Is(err, ingestion.ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
}
