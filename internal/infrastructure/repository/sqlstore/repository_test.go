package sqlstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/cricket-analytics/internal/domain/crud"
	"github.com/riskibarqy/cricket-analytics/internal/domain/match"
	"github.com/riskibarqy/cricket-analytics/internal/domain/player"
	"github.com/riskibarqy/cricket-analytics/internal/domain/playerstats"
	"github.com/riskibarqy/cricket-analytics/internal/domain/series"
	"github.com/riskibarqy/cricket-analytics/internal/domain/venue"
	"github.com/riskibarqy/cricket-analytics/internal/infrastructure/testdb"
	"github.com/riskibarqy/cricket-analytics/internal/usecase"
)

var fixedNow = time.Date(2025, 3, 10, 8, 30, 0, 0, time.UTC)

func samplePlayer(id, name string) player.Player {
	dob := time.Date(1988, 11, 5, 0, 0, 0, 0, time.UTC)
	return player.Player{
		Name:         name,
		Country:      "India",
		Role:         player.RoleBatsman,
		BattingStyle: "Right-hand bat",
		DateOfBirth:  &dob,
	}.Stamp(id, fixedNow)
}

func sampleMatch(id string) match.Match {
	return match.Match{
		Team1:  "India",
		Team2:  "Australia",
		Venue:  "Wankhede Stadium",
		Date:   time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		Format: match.FormatODI,
		Status: match.StatusCompleted,
		Winner: "India",
	}.Normalize().Stamp(id, fixedNow)
}

func sampleStat(playerID, matchID string, runs int) playerstats.Stat {
	pos := 1
	return playerstats.Stat{
		PlayerID:        playerID,
		MatchID:         matchID,
		Innings:         1,
		BattingPosition: &pos,
		Runs:            runs,
		BallsFaced:      runs + 5,
		Dismissed:       true,
	}.Stamp(matchID+":"+playerID+":1", fixedNow)
}

func TestPlayerRepository_RoundTrip(t *testing.T) {
	store := testdb.Open(t)
	repo := NewPlayerRepository(store.DB)
	ctx := context.Background()

	want := samplePlayer("p-1", "Virat Kohli")
	require.NoError(t, repo.Insert(ctx, want))

	got, ok, err := repo.Get(ctx, "p-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)

	_, ok, err = repo.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPlayerRepository_InsertDuplicate(t *testing.T) {
	store := testdb.Open(t)
	repo := NewPlayerRepository(store.DB)
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, samplePlayer("p-1", "Virat Kohli")))
	err := repo.Insert(ctx, samplePlayer("p-1", "Someone Else"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, usecase.ErrDuplicate))
	assert.True(t, errors.Is(err, usecase.ErrConflict))
	assert.Equal(t, 1, testdb.Count(t, store.DB, "players"))
}

func TestPlayerRepository_UpdateChangesOnlyMutatedField(t *testing.T) {
	store := testdb.Open(t)
	repo := NewPlayerRepository(store.DB)
	ctx := context.Background()

	before := samplePlayer("p-1", "Virat Kohli")
	require.NoError(t, repo.Insert(ctx, before))

	updated, ok, err := repo.Update(ctx, "p-1", func(p player.Player) (player.Player, error) {
		p.Country = "Delhi"
		return p, nil
	})
	require.NoError(t, err)
	require.True(t, ok)

	got, _, err := repo.Get(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, updated, got)

	want := before
	want.Country = "Delhi"
	assert.Equal(t, want, got)
}

func TestPlayerRepository_UpdateAbortsOnMutateError(t *testing.T) {
	store := testdb.Open(t)
	repo := NewPlayerRepository(store.DB)
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, samplePlayer("p-1", "Virat Kohli")))
	boom := errors.New("invalid")
	_, ok, err := repo.Update(ctx, "p-1", func(p player.Player) (player.Player, error) {
		return p, boom
	})
	require.ErrorIs(t, err, boom)
	assert.True(t, ok)

	_, ok, err = repo.Update(ctx, "missing", func(p player.Player) (player.Player, error) {
		t.Fatalf("mutate must not run for a missing row")
		return p, nil
	})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPlayerRepository_DeleteCascadesStats(t *testing.T) {
	store := testdb.Open(t)
	ctx := context.Background()
	players := NewPlayerRepository(store.DB)
	matches := NewMatchRepository(store.DB)
	stats := NewStatRepository(store.DB)

	require.NoError(t, players.Insert(ctx, samplePlayer("p-1", "Virat Kohli")))
	require.NoError(t, matches.Insert(ctx, sampleMatch("m-1")))
	require.NoError(t, stats.Insert(ctx, sampleStat("p-1", "m-1", 50)))

	result, ok, err := players.Delete(ctx, "p-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, crud.DeleteResult{ID: "p-1", CascadedStats: 1}, result)

	_, ok, err = players.Get(ctx, "p-1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, testdb.Count(t, store.DB, "player_match_stats"))
	assert.Equal(t, 1, testdb.Count(t, store.DB, "matches"))

	_, ok, err = players.Delete(ctx, "p-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMatchRepository_DeleteCascadesStats(t *testing.T) {
	store := testdb.Open(t)
	ctx := context.Background()
	players := NewPlayerRepository(store.DB)
	matches := NewMatchRepository(store.DB)
	stats := NewStatRepository(store.DB)

	require.NoError(t, players.InsertBatch(ctx, []player.Player{samplePlayer("p-1", "A"), samplePlayer("p-2", "B")}))
	require.NoError(t, matches.Insert(ctx, sampleMatch("m-1")))
	require.NoError(t, stats.InsertBatch(ctx, []playerstats.Stat{sampleStat("p-1", "m-1", 10), sampleStat("p-2", "m-1", 20)}))

	result, ok, err := matches.Delete(ctx, "m-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.EqualValues(t, 2, result.CascadedStats)
	assert.Equal(t, 2, testdb.Count(t, store.DB, "players"))
}

func TestStatRepository_RejectsUnknownReferences(t *testing.T) {
	store := testdb.Open(t)
	ctx := context.Background()

	err := NewStatRepository(store.DB).Insert(ctx, sampleStat("nobody", "nothing", 1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, usecase.ErrInvalidInput))
	assert.Equal(t, 0, testdb.Count(t, store.DB, "player_match_stats"))
}

func TestInsertBatch_IsAllOrNothing(t *testing.T) {
	store := testdb.Open(t)
	repo := NewPlayerRepository(store.DB)
	ctx := context.Background()

	err := repo.InsertBatch(ctx, []player.Player{
		samplePlayer("p-1", "A"),
		samplePlayer("p-2", "B"),
		samplePlayer("p-1", "C"),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, usecase.ErrDuplicate))
	assert.Equal(t, 0, testdb.Count(t, store.DB, "players"))
}

func TestDeleteBatch_UnknownIDRollsBack(t *testing.T) {
	store := testdb.Open(t)
	repo := NewPlayerRepository(store.DB)
	ctx := context.Background()

	require.NoError(t, repo.InsertBatch(ctx, []player.Player{samplePlayer("p-1", "A"), samplePlayer("p-2", "B")}))

	_, err := repo.DeleteBatch(ctx, []string{"p-1", "missing"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, usecase.ErrNotFound))
	assert.Equal(t, 2, testdb.Count(t, store.DB, "players"))

	results, err := repo.DeleteBatch(ctx, []string{"p-1", "p-2"})
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, 0, testdb.Count(t, store.DB, "players"))
}

func TestPlayerRepository_ListFiltersAndOrders(t *testing.T) {
	store := testdb.Open(t)
	repo := NewPlayerRepository(store.DB)
	ctx := context.Background()

	aus := samplePlayer("p-3", "Steve Smith")
	aus.Country = "Australia"
	require.NoError(t, repo.InsertBatch(ctx, []player.Player{
		samplePlayer("p-2", "Rohit Sharma"),
		samplePlayer("p-1", "Virat Kohli"),
		aus,
	}))

	all, err := repo.List(ctx, player.Filter{}, crud.Page{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"Rohit Sharma", "Steve Smith", "Virat Kohli"}, []string{all[0].Name, all[1].Name, all[2].Name})

	india, err := repo.List(ctx, player.Filter{Country: "india"}, crud.Page{})
	require.NoError(t, err)
	assert.Len(t, india, 2)

	search, err := repo.List(ctx, player.Filter{Search: "KOH"}, crud.Page{})
	require.NoError(t, err)
	require.Len(t, search, 1)
	assert.Equal(t, "p-1", search[0].ID)

	page, err := repo.List(ctx, player.Filter{}, crud.Page{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "Steve Smith", page[0].Name)
}

func TestMatchRepository_RoundTripAndDateFilter(t *testing.T) {
	store := testdb.Open(t)
	repo := NewMatchRepository(store.DB)
	ctx := context.Background()

	m := sampleMatch("m-1")
	margin := 45
	m.VictoryMargin = &margin
	m.VictoryType = "runs"
	require.NoError(t, repo.Insert(ctx, m))

	got, ok, err := repo.Get(ctx, "m-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, m, got)

	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	none, err := repo.List(ctx, match.Filter{From: &from}, crud.Page{})
	require.NoError(t, err)
	assert.Empty(t, none)

	byTeam, err := repo.List(ctx, match.Filter{Team: "australia"}, crud.Page{})
	require.NoError(t, err)
	assert.Len(t, byTeam, 1)
}

func TestVenueRepository_UniqueName(t *testing.T) {
	store := testdb.Open(t)
	repo := NewVenueRepository(store.DB)
	ctx := context.Background()

	v := venue.Venue{Name: "Eden Gardens", City: "Kolkata", Country: "India", Capacity: 66349}
	require.NoError(t, repo.Insert(ctx, v.Stamp("v-1", fixedNow)))
	err := repo.Insert(ctx, v.Stamp("v-2", fixedNow))
	assert.True(t, errors.Is(err, usecase.ErrDuplicate))

	big, err := repo.List(ctx, venue.Filter{MinCapacity: 50000}, crud.Page{})
	require.NoError(t, err)
	assert.Len(t, big, 1)
}

func TestSeriesRepository_DeleteDetachesMatches(t *testing.T) {
	store := testdb.Open(t)
	ctx := context.Background()
	seriesRepo := NewSeriesRepository(store.DB)
	matches := NewMatchRepository(store.DB)

	require.NoError(t, seriesRepo.Insert(ctx, series.Series{Name: "Border-Gavaskar Trophy"}.Stamp("s-1", fixedNow)))
	m := sampleMatch("m-1")
	sid := "s-1"
	m.SeriesID = &sid
	require.NoError(t, matches.Insert(ctx, m))

	_, ok, err := seriesRepo.Delete(ctx, "s-1")
	require.NoError(t, err)
	require.True(t, ok)

	got, ok, err := matches.Get(ctx, "m-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Nil(t, got.SeriesID)
}

func TestClassifyConstraint(t *testing.T) {
	cases := []struct {
		msg  string
		want constraintKind
	}{
		{"constraint failed: UNIQUE constraint failed: players.id (1555)", constraintUnique},
		{"constraint failed: FOREIGN KEY constraint failed (787)", constraintForeignKey},
		{"constraint failed: CHECK constraint failed: capacity >= 0 (275)", constraintCheck},
		{"database is locked", constraintNone},
	}
	for _, tc := range cases {
		if got := classifyConstraint(errors.New(tc.msg)); got != tc.want {
			t.Fatalf("classifyConstraint(%q) = %v, want %v", tc.msg, got, tc.want)
		}
	}
}

func TestSQLTime_ScanText(t *testing.T) {
	var ts sqlTime
	require.NoError(t, ts.Scan("2025-03-10 08:30:00+00:00"))
	assert.True(t, ts.Equal(fixedNow))

	require.NoError(t, ts.Scan([]byte("2025-03-10T08:30:00Z")))
	assert.True(t, ts.Equal(fixedNow))

	assert.Error(t, ts.Scan(42))
}
