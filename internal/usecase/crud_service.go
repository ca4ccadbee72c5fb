package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/cricket-analytics/internal/domain/crud"
	"github.com/riskibarqy/cricket-analytics/internal/domain/match"
	"github.com/riskibarqy/cricket-analytics/internal/domain/player"
	"github.com/riskibarqy/cricket-analytics/internal/domain/playerstats"
	"github.com/riskibarqy/cricket-analytics/internal/domain/series"
	"github.com/riskibarqy/cricket-analytics/internal/domain/team"
	"github.com/riskibarqy/cricket-analytics/internal/domain/venue"
	"github.com/riskibarqy/cricket-analytics/internal/platform/id"
	"github.com/riskibarqy/cricket-analytics/internal/platform/logging"
)

// record is what every stored entity provides to the generic service.
type record[T any] interface {
	RecordID() string
	Stamp(id string, now time.Time) T
	Touch(now time.Time) T
	Normalize() T
	Validate(ctx context.Context) error
}

type patch[T any] interface {
	Apply(current T) T
}

type entityRepository[T any, F any] interface {
	Insert(ctx context.Context, item T) error
	InsertBatch(ctx context.Context, items []T) error
	Get(ctx context.Context, id string) (T, bool, error)
	Update(ctx context.Context, id string, mutate func(T) (T, error)) (T, bool, error)
	Delete(ctx context.Context, id string) (crud.DeleteResult, bool, error)
	DeleteBatch(ctx context.Context, ids []string) ([]crud.DeleteResult, error)
	List(ctx context.Context, filter F, page crud.Page) ([]T, error)
}

// crudService implements create/get/update/delete/list and the bulk
// variants for one entity.
type crudService[T record[T], F any, P patch[T]] struct {
	entity string
	repo   entityRepository[T, F]
	ids    id.Generator
	now    func() time.Time
	logger *logging.Logger
	// naturalID derives the id of a record that has none. Nil falls back to
	// the generator.
	naturalID func(T) string
	// changed is told about every committed write, e.g. to drop cached
	// query results.
	changed func(ctx context.Context)
}

func newCRUDService[T record[T], F any, P patch[T]](entity string, repo entityRepository[T, F], ids id.Generator, logger *logging.Logger) *crudService[T, F, P] {
	if ids == nil {
		ids = id.NewRandomGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &crudService[T, F, P]{
		entity: entity,
		repo:   repo,
		ids:    ids,
		now:    time.Now,
		logger: logger,
	}
}

// OnChange registers fn to run after every committed write.
func (s *crudService[T, F, P]) OnChange(fn func(ctx context.Context)) {
	s.changed = fn
}

func (s *crudService[T, F, P]) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func (s *crudService[T, F, P]) notify(ctx context.Context) {
	if s.changed != nil {
		s.changed(ctx)
	}
}

// prepare normalizes, identifies and validates a new record.
func (s *crudService[T, F, P]) prepare(ctx context.Context, item T) (T, error) {
	item = item.Normalize()
	recordID := item.RecordID()
	if recordID == "" && s.naturalID != nil {
		recordID = s.naturalID(item)
	}
	if recordID == "" {
		generated, err := s.ids.NewID()
		if err != nil {
			var zero T
			return zero, fmt.Errorf("generate %s id: %w", s.entity, err)
		}
		recordID = generated
	}
	item = item.Stamp(recordID, s.timestamp())
	if err := item.Validate(ctx); err != nil {
		var zero T
		return zero, fmt.Errorf("%w: %s: %v", ErrInvalidInput, s.entity, err)
	}
	return item, nil
}

func (s *crudService[T, F, P]) Create(ctx context.Context, item T) (T, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase."+s.entity+".Create")
	defer span.End()

	item, err := s.prepare(ctx, item)
	if err != nil {
		return item, err
	}
	if err := s.repo.Insert(ctx, item); err != nil {
		var zero T
		return zero, fmt.Errorf("create %s: %w", s.entity, err)
	}
	s.notify(ctx)
	return item, nil
}

func (s *crudService[T, F, P]) Get(ctx context.Context, recordID string) (T, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase."+s.entity+".Get")
	defer span.End()

	var zero T
	recordID = strings.TrimSpace(recordID)
	if recordID == "" {
		return zero, fmt.Errorf("%w: %s id is required", ErrInvalidInput, s.entity)
	}
	item, ok, err := s.repo.Get(ctx, recordID)
	if err != nil {
		return zero, fmt.Errorf("get %s: %w", s.entity, err)
	}
	if !ok {
		return zero, fmt.Errorf("%w: %s %s", ErrNotFound, s.entity, recordID)
	}
	return item, nil
}

// Update applies p to the stored record. Fields p leaves nil keep their
// stored value; the whole change commits or nothing does.
func (s *crudService[T, F, P]) Update(ctx context.Context, recordID string, p P) (T, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase."+s.entity+".Update")
	defer span.End()

	var zero T
	recordID = strings.TrimSpace(recordID)
	if recordID == "" {
		return zero, fmt.Errorf("%w: %s id is required", ErrInvalidInput, s.entity)
	}

	updated, ok, err := s.repo.Update(ctx, recordID, func(current T) (T, error) {
		next := p.Apply(current).Touch(s.timestamp())
		if err := next.Validate(ctx); err != nil {
			return zero, fmt.Errorf("%w: %s: %v", ErrInvalidInput, s.entity, err)
		}
		return next, nil
	})
	if err != nil {
		return zero, fmt.Errorf("update %s %s: %w", s.entity, recordID, err)
	}
	if !ok {
		return zero, fmt.Errorf("%w: %s %s", ErrNotFound, s.entity, recordID)
	}
	s.notify(ctx)
	return updated, nil
}

// Delete removes the record and, for players and matches, their stat lines.
func (s *crudService[T, F, P]) Delete(ctx context.Context, recordID string) (crud.DeleteResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase."+s.entity+".Delete")
	defer span.End()

	recordID = strings.TrimSpace(recordID)
	if recordID == "" {
		return crud.DeleteResult{}, fmt.Errorf("%w: %s id is required", ErrInvalidInput, s.entity)
	}
	result, ok, err := s.repo.Delete(ctx, recordID)
	if err != nil {
		return crud.DeleteResult{}, fmt.Errorf("delete %s %s: %w", s.entity, recordID, err)
	}
	if !ok {
		return crud.DeleteResult{}, fmt.Errorf("%w: %s %s", ErrNotFound, s.entity, recordID)
	}
	if result.CascadedStats > 0 {
		s.logger.InfoContext(ctx, "cascade delete",
			"entity", s.entity,
			"id", recordID,
			"stats", result.CascadedStats,
		)
	}
	s.notify(ctx)
	return result, nil
}

func (s *crudService[T, F, P]) List(ctx context.Context, filter F, page crud.Page) ([]T, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase."+s.entity+".List")
	defer span.End()

	items, err := s.repo.List(ctx, filter, page.Normalize())
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.entity, err)
	}
	return items, nil
}

// CreateMany inserts items and reports one result per input row. Without
// opts.Atomic each row commits or fails on its own. With it, any invalid
// row fails the batch before anything is written and the insert runs in
// one transaction; the returned error is then non-nil.
func (s *crudService[T, F, P]) CreateMany(ctx context.Context, items []T, opts crud.BulkOptions) ([]crud.RowResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase."+s.entity+".CreateMany")
	defer span.End()

	results := make([]crud.RowResult, len(items))
	if !opts.Atomic {
		created := 0
		for i, item := range items {
			saved, err := s.Create(ctx, item)
			results[i] = crud.RowResult{Index: i, ID: saved.RecordID(), Err: err}
			if err == nil {
				created++
			}
		}
		s.logger.DebugContext(ctx, "bulk create finished", "entity", s.entity, "rows", len(items), "created", created)
		return results, nil
	}

	prepared := make([]T, 0, len(items))
	var firstErr error
	for i, item := range items {
		ready, err := s.prepare(ctx, item)
		results[i] = crud.RowResult{Index: i, ID: ready.RecordID(), Err: err}
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("row %d: %w", i, err)
		}
		prepared = append(prepared, ready)
	}
	if firstErr == nil {
		if err := s.repo.InsertBatch(ctx, prepared); err != nil {
			firstErr = fmt.Errorf("create %s batch: %w", s.entity, err)
		}
	}
	if firstErr != nil {
		failAll(results, firstErr)
		return results, firstErr
	}
	s.notify(ctx)
	return results, nil
}

// DeleteMany removes ids with the same per-row and atomic semantics as
// CreateMany.
func (s *crudService[T, F, P]) DeleteMany(ctx context.Context, ids []string, opts crud.BulkOptions) ([]crud.RowResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase."+s.entity+".DeleteMany")
	defer span.End()

	results := make([]crud.RowResult, len(ids))
	if !opts.Atomic {
		for i, recordID := range ids {
			_, err := s.Delete(ctx, recordID)
			results[i] = crud.RowResult{Index: i, ID: strings.TrimSpace(recordID), Err: err}
		}
		return results, nil
	}

	trimmed := make([]string, len(ids))
	for i, recordID := range ids {
		trimmed[i] = strings.TrimSpace(recordID)
		results[i] = crud.RowResult{Index: i, ID: trimmed[i]}
		if trimmed[i] == "" {
			err := fmt.Errorf("row %d: %w: %s id is required", i, ErrInvalidInput, s.entity)
			failAll(results, err)
			return results, err
		}
	}
	if _, err := s.repo.DeleteBatch(ctx, trimmed); err != nil {
		err = fmt.Errorf("delete %s batch: %w", s.entity, err)
		failAll(results, err)
		return results, err
	}
	s.notify(ctx)
	return results, nil
}

// failAll marks every row of an aborted atomic batch. Rows that already
// carry their own reason keep it.
func failAll(results []crud.RowResult, err error) {
	for i := range results {
		if results[i].Err == nil {
			results[i].Err = err
		}
	}
}

type PlayerService struct {
	*crudService[player.Player, player.Filter, player.Patch]
}

func NewPlayerService(repo player.Repository, ids id.Generator, logger *logging.Logger) *PlayerService {
	return &PlayerService{newCRUDService[player.Player, player.Filter, player.Patch]("player", repo, ids, logger)}
}

type MatchService struct {
	*crudService[match.Match, match.Filter, match.Patch]
}

func NewMatchService(repo match.Repository, ids id.Generator, logger *logging.Logger) *MatchService {
	return &MatchService{newCRUDService[match.Match, match.Filter, match.Patch]("match", repo, ids, logger)}
}

type VenueService struct {
	*crudService[venue.Venue, venue.Filter, venue.Patch]
}

func NewVenueService(repo venue.Repository, ids id.Generator, logger *logging.Logger) *VenueService {
	return &VenueService{newCRUDService[venue.Venue, venue.Filter, venue.Patch]("venue", repo, ids, logger)}
}

type TeamService struct {
	*crudService[team.Team, team.Filter, team.Patch]
}

func NewTeamService(repo team.Repository, ids id.Generator, logger *logging.Logger) *TeamService {
	return &TeamService{newCRUDService[team.Team, team.Filter, team.Patch]("team", repo, ids, logger)}
}

type SeriesService struct {
	*crudService[series.Series, series.Filter, series.Patch]
}

func NewSeriesService(repo series.Repository, ids id.Generator, logger *logging.Logger) *SeriesService {
	return &SeriesService{newCRUDService[series.Series, series.Filter, series.Patch]("series", repo, ids, logger)}
}

// StatService stores scorecard lines. A line without an id is keyed by
// match, player and innings so a second insert of the same line conflicts.
type StatService struct {
	*crudService[playerstats.Stat, playerstats.Filter, playerstats.Patch]
}

func NewStatService(repo playerstats.Repository, ids id.Generator, logger *logging.Logger) *StatService {
	svc := newCRUDService[playerstats.Stat, playerstats.Filter, playerstats.Patch]("player_match_stat", repo, ids, logger)
	svc.naturalID = func(s playerstats.Stat) string {
		if s.PlayerID == "" || s.MatchID == "" {
			return ""
		}
		return id.Stat(s.PlayerID, s.MatchID, s.Innings)
	}
	return &StatService{svc}
}
