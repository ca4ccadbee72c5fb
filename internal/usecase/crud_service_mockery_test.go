package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/riskibarqy/cricket-analytics/internal/domain/crud"
	"github.com/riskibarqy/cricket-analytics/internal/domain/player"
	"github.com/riskibarqy/cricket-analytics/internal/domain/playerstats"
	playermock "github.com/riskibarqy/cricket-analytics/internal/mocks/domain/player"
	playerstatsmock "github.com/riskibarqy/cricket-analytics/internal/mocks/domain/playerstats"
	"github.com/riskibarqy/cricket-analytics/internal/platform/logging"
)

type sequenceIDs struct {
	next int
}

func (g *sequenceIDs) NewID() (string, error) {
	g.next++
	return fmt.Sprintf("gen-%03d", g.next), nil
}

var fixedNow = time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

func newTestPlayerService(t *testing.T) (*PlayerService, *playermock.Repository) {
	t.Helper()
	repo := playermock.NewRepository(t)
	svc := NewPlayerService(repo, &sequenceIDs{}, logging.NewNop())
	svc.now = func() time.Time { return fixedNow }
	return svc, repo
}

func TestPlayerService_CreateAssignsIDAndTimestamps(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, repo := newTestPlayerService(t)

	repo.
		On("Insert", ctx, mock.MatchedBy(func(p player.Player) bool {
			return p.ID == "gen-001" && p.Name == "Virat Kohli" && p.CreatedAt.Equal(fixedNow) && p.UpdatedAt.Equal(fixedNow)
		})).
		Return(nil).
		Once()

	got, err := svc.Create(ctx, player.Player{Name: "  Virat Kohli ", Country: "India", Role: "batter"})
	if err != nil {
		t.Fatalf("create player: %v", err)
	}
	if got.ID != "gen-001" {
		t.Fatalf("unexpected id %q", got.ID)
	}
	if got.Role != player.RoleBatsman {
		t.Fatalf("role not normalized: %q", got.Role)
	}
}

func TestPlayerService_CreateRejectsInvalidWithoutWriting(t *testing.T) {
	t.Parallel()

	svc, _ := newTestPlayerService(t)

	_, err := svc.Create(context.Background(), player.Player{Country: "India"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestPlayerService_CreateDuplicateIsConflict(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, repo := newTestPlayerService(t)
	repo.
		On("Insert", ctx, mock.AnythingOfType("player.Player")).
		Return(fmt.Errorf("insert players p-1: %w", ErrDuplicate)).
		Once()

	_, err := svc.Create(ctx, player.Player{ID: "p-1", Name: "Rohit Sharma"})
	if !errors.Is(err, ErrConflict) || !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected duplicate conflict, got %v", err)
	}
}

func TestPlayerService_GetMissingIsNotFound(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, repo := newTestPlayerService(t)
	repo.On("Get", ctx, "nope").Return(player.Player{}, false, nil).Once()

	_, err := svc.Get(ctx, "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// applyMutate makes the Update mock behave like the store: it hands the
// current row to mutate and reports what mutate returns.
func applyMutate(current player.Player) func(context.Context, string, func(player.Player) (player.Player, error)) (player.Player, bool, error) {
	return func(_ context.Context, _ string, mutate func(player.Player) (player.Player, error)) (player.Player, bool, error) {
		next, err := mutate(current)
		if err != nil {
			return player.Player{}, true, err
		}
		return next, true, nil
	}
}

func TestPlayerService_UpdateChangesOnlyPatchedFields(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, repo := newTestPlayerService(t)
	created := fixedNow.Add(-48 * time.Hour)
	current := player.Player{
		ID: "p-1", Name: "Jasprit Bumrah", Country: "India", Role: player.RoleBowler,
		BowlingStyle: "Right-arm fast", CreatedAt: created, UpdatedAt: created,
	}
	repo.On("Update", ctx, "p-1", mock.Anything).Return(applyMutate(current)).Once()

	style := "Right-arm fast-medium"
	got, err := svc.Update(ctx, "p-1", player.Patch{BowlingStyle: &style})
	if err != nil {
		t.Fatalf("update player: %v", err)
	}
	if got.BowlingStyle != style {
		t.Fatalf("bowling style not updated: %q", got.BowlingStyle)
	}
	if got.Name != current.Name || got.Country != current.Country || got.Role != current.Role {
		t.Fatalf("untouched fields changed: %+v", got)
	}
	if !got.CreatedAt.Equal(created) || !got.UpdatedAt.Equal(fixedNow) {
		t.Fatalf("unexpected timestamps created=%s updated=%s", got.CreatedAt, got.UpdatedAt)
	}
}

func TestPlayerService_UpdateValidatesResult(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, repo := newTestPlayerService(t)
	repo.On("Update", ctx, "p-1", mock.Anything).
		Return(applyMutate(player.Player{ID: "p-1", Name: "Jasprit Bumrah"})).
		Once()

	empty := "   "
	_, err := svc.Update(ctx, "p-1", player.Patch{Name: &empty})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestPlayerService_UpdateMissingIsNotFound(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, repo := newTestPlayerService(t)
	repo.On("Update", ctx, "ghost", mock.Anything).Return(player.Player{}, false, nil).Once()

	name := "Someone"
	_, err := svc.Update(ctx, "ghost", player.Patch{Name: &name})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPlayerService_DeleteReportsCascadeAndNotifies(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, repo := newTestPlayerService(t)
	notified := 0
	svc.OnChange(func(context.Context) { notified++ })

	repo.On("Delete", ctx, "p-1").Return(crud.DeleteResult{ID: "p-1", CascadedStats: 3}, true, nil).Once()
	repo.On("Delete", ctx, "p-2").Return(crud.DeleteResult{}, false, nil).Once()

	got, err := svc.Delete(ctx, "p-1")
	if err != nil {
		t.Fatalf("delete player: %v", err)
	}
	if got.CascadedStats != 3 {
		t.Fatalf("unexpected cascade count %d", got.CascadedStats)
	}
	if _, err := svc.Delete(ctx, "p-2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if notified != 1 {
		t.Fatalf("expected one change notification, got %d", notified)
	}
}

func TestPlayerService_CreateManyReportsPerRow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, repo := newTestPlayerService(t)
	repo.On("Insert", ctx, mock.AnythingOfType("player.Player")).Return(nil).Twice()

	results, err := svc.CreateMany(ctx, []player.Player{
		{Name: "Shubman Gill"},
		{Country: "India"},
		{Name: "KL Rahul"},
	}, crud.BulkOptions{})
	if err != nil {
		t.Fatalf("create many: %v", err)
	}
	if len(results) != 3 || crud.Failed(results) != 1 {
		t.Fatalf("unexpected results %+v", results)
	}
	if !results[0].OK() || results[1].OK() || !results[2].OK() {
		t.Fatalf("unexpected row outcomes %+v", results)
	}
	if !errors.Is(results[1].Err, ErrInvalidInput) {
		t.Fatalf("expected row 1 to fail validation, got %v", results[1].Err)
	}
}

func TestPlayerService_CreateManyAtomicWritesNothingOnBadRow(t *testing.T) {
	t.Parallel()

	svc, _ := newTestPlayerService(t)

	results, err := svc.CreateMany(context.Background(), []player.Player{
		{Name: "Shubman Gill"},
		{Name: "X", Role: "Umpire"},
	}, crud.BulkOptions{Atomic: true})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if crud.Failed(results) != 2 {
		t.Fatalf("expected every row marked failed, got %+v", results)
	}
}

func TestPlayerService_CreateManyAtomicUsesOneBatch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, repo := newTestPlayerService(t)
	repo.
		On("InsertBatch", ctx, mock.MatchedBy(func(items []player.Player) bool { return len(items) == 2 })).
		Return(nil).
		Once()

	results, err := svc.CreateMany(ctx, []player.Player{{Name: "A"}, {Name: "B"}}, crud.BulkOptions{Atomic: true})
	if err != nil {
		t.Fatalf("atomic create: %v", err)
	}
	if results[0].ID != "gen-001" || results[1].ID != "gen-002" {
		t.Fatalf("unexpected ids %+v", results)
	}
}

func TestPlayerService_DeleteManyAtomicFailsWholeBatch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, repo := newTestPlayerService(t)
	repo.On("DeleteBatch", ctx, []string{"p-1", "ghost"}).
		Return(nil, fmt.Errorf("row 1: players ghost: %w", ErrNotFound)).
		Once()

	results, err := svc.DeleteMany(ctx, []string{"p-1", " ghost "}, crud.BulkOptions{Atomic: true})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if crud.Failed(results) != 2 {
		t.Fatalf("expected both rows failed, got %+v", results)
	}
}

func TestStatService_CreateUsesNaturalID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := playerstatsmock.NewRepository(t)
	svc := NewStatService(repo, &sequenceIDs{}, logging.NewNop())
	repo.
		On("Insert", ctx, mock.MatchedBy(func(s playerstats.Stat) bool { return s.ID == "m-1:p-1:2" })).
		Return(nil).
		Once()

	got, err := svc.Create(ctx, playerstats.Stat{PlayerID: "p-1", MatchID: "m-1", Innings: 2, Runs: 40, BallsFaced: 30, Fours: 4})
	if err != nil {
		t.Fatalf("create stat: %v", err)
	}
	if got.ID != "m-1:p-1:2" {
		t.Fatalf("unexpected stat id %q", got.ID)
	}
}
