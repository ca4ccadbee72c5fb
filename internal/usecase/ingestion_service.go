package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/riskibarqy/cricket-analytics/internal/domain/ingestion"
	"github.com/riskibarqy/cricket-analytics/internal/domain/player"
	"github.com/riskibarqy/cricket-analytics/internal/domain/rawdata"
	"github.com/riskibarqy/cricket-analytics/internal/ingest"
	"github.com/riskibarqy/cricket-analytics/internal/platform/id"
	"github.com/riskibarqy/cricket-analytics/internal/platform/logging"
)

const (
	payloadSource      = "cricbuzz"
	defaultIngestPool  = 4
	maxScorecardsBatch = 50

	defaultCommentaryLines = 10
	maxCommentaryLines     = 100
)

// IngestionService pulls provider data and stores it. Every refresh fetches
// and normalizes first and then writes one batch in one transaction, so a
// failed or cancelled fetch leaves the store untouched.
type IngestionService struct {
	provider ingestion.Provider
	writer   ingestion.Writer
	workers  int
	now      func() time.Time
	logger   *logging.Logger
	changed  func(ctx context.Context)
}

func NewIngestionService(provider ingestion.Provider, writer ingestion.Writer, workers int, logger *logging.Logger) *IngestionService {
	if logger == nil {
		logger = logging.Default()
	}
	if workers <= 0 {
		workers = defaultIngestPool
	}
	return &IngestionService{
		provider: provider,
		writer:   writer,
		workers:  workers,
		now:      time.Now,
		logger:   logger,
	}
}

// OnChange registers fn to run after every committed refresh.
func (s *IngestionService) OnChange(fn func(ctx context.Context)) {
	s.changed = fn
}

func (s *IngestionService) RefreshLiveMatches(ctx context.Context) (ingestion.Summary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.RefreshLiveMatches")
	defer span.End()

	return s.refreshMatchList(ctx, "live_matches", s.provider.LiveMatches)
}

func (s *IngestionService) RefreshRecentMatches(ctx context.Context) (ingestion.Summary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.RefreshRecentMatches")
	defer span.End()

	return s.refreshMatchList(ctx, "recent_matches", s.provider.RecentMatches)
}

func (s *IngestionService) refreshMatchList(ctx context.Context, kind string, fetch func(context.Context) (ingestion.Response, error)) (ingestion.Summary, error) {
	resp, err := fetch(ctx)
	if err != nil {
		return ingestion.Summary{}, s.fetchError(ctx, kind, err)
	}

	scores, skipped := normalizeLiveScores(ctx, resp.Body)
	batch := ingest.LiveScoreBatch(scores)
	batch.Payloads = append(batch.Payloads, s.payload(kind, "latest", resp))
	return s.commit(ctx, kind, batch, skipped)
}

// LiveScores fetches the live matches without storing anything.
func (s *IngestionService) LiveScores(ctx context.Context) ([]ingestion.LiveScore, []ingestion.RecordError, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.LiveScores")
	defer span.End()

	resp, err := s.provider.LiveMatches(ctx)
	if err != nil {
		return nil, nil, s.fetchError(ctx, "live_matches", err)
	}
	scores, skipped := normalizeLiveScores(ctx, resp.Body)
	return scores, skipped, nil
}

func normalizeLiveScores(ctx context.Context, doc map[string]any) ([]ingestion.LiveScore, []ingestion.RecordError) {
	var (
		scores  []ingestion.LiveScore
		skipped []ingestion.RecordError
	)
	for i, entry := range ingest.MatchEntries(doc) {
		score, err := ingest.NormalizeLiveScore(entry)
		if err == nil {
			err = score.Match.Validate(ctx)
		}
		if err != nil {
			skipped = append(skipped, ingestion.RecordError{Index: i, Key: score.Match.ID, Err: err})
			continue
		}
		scores = append(scores, score)
	}
	return scores, skipped
}

// RefreshScorecard stores one match and its scorecard. matchID is the
// provider's numeric id, optionally in stored form ("cb-match-123").
func (s *IngestionService) RefreshScorecard(ctx context.Context, matchID string) (ingestion.Summary, error) {
	return s.RefreshScorecards(ctx, []string{matchID})
}

// RefreshScorecards fetches the matches on a bounded worker pool and commits
// them together. Any fetch failure aborts the refresh before the write.
func (s *IngestionService) RefreshScorecards(ctx context.Context, matchIDs []string) (ingestion.Summary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.RefreshScorecards")
	defer span.End()

	refs, err := providerRefs(matchIDs, "match")
	if err != nil {
		return ingestion.Summary{}, err
	}
	if len(refs) > maxScorecardsBatch {
		return ingestion.Summary{}, fmt.Errorf("%w: at most %d matches per refresh", ErrInvalidInput, maxScorecardsBatch)
	}

	workerCount := s.workers
	if workerCount > len(refs) {
		workerCount = len(refs)
	}
	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return ingestion.Summary{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	type fetched struct {
		ref     string
		batch   ingestion.Batch
		skipped []ingestion.RecordError
		err     error
	}
	results := make(chan fetched, len(refs))

	var workers sync.WaitGroup
	for _, ref := range refs {
		ref := ref
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			batch, skipped, err := s.fetchScorecard(ctx, ref)
			results <- fetched{ref: ref, batch: batch, skipped: skipped, err: err}
		}); err != nil {
			workers.Done()
			return ingestion.Summary{}, fmt.Errorf("submit task to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(results)

	rows := make([]fetched, 0, len(refs))
	for row := range results {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ref < rows[j].ref })

	var (
		batch   ingestion.Batch
		skipped []ingestion.RecordError
	)
	for _, row := range rows {
		if row.err != nil {
			return ingestion.Summary{}, row.err
		}
		batch.Merge(row.batch)
		skipped = append(skipped, row.skipped...)
	}
	return s.commit(ctx, "scorecards", batch, skipped)
}

func (s *IngestionService) fetchScorecard(ctx context.Context, ref string) (ingestion.Batch, []ingestion.RecordError, error) {
	infoResp, err := s.provider.MatchInfo(ctx, ref)
	if err != nil {
		return ingestion.Batch{}, nil, s.fetchError(ctx, "match_info "+ref, err)
	}
	cardResp, err := s.provider.Scorecard(ctx, ref)
	if err != nil {
		return ingestion.Batch{}, nil, s.fetchError(ctx, "scorecard "+ref, err)
	}

	matchKey := id.Provider("match", mustParseRef(ref))
	score, err := ingest.NormalizeLiveScore(infoResp.Body)
	if err == nil {
		err = score.Match.Validate(ctx)
	}
	if err != nil {
		// Without its match the scorecard lines have nothing to reference.
		return ingestion.Batch{}, []ingestion.RecordError{{Key: matchKey, Err: err}}, nil
	}

	batch := ingest.LiveScoreBatch([]ingestion.LiveScore{score})
	batch.Payloads = append(batch.Payloads,
		s.payload("match_info", ref, infoResp),
		s.payload("scorecard", ref, cardResp),
	)

	entries, err := ingest.NormalizeScorecard(score.Match.ID, cardResp.Body)
	if err != nil {
		return batch, []ingestion.RecordError{{Key: score.Match.ID, Err: err}}, nil
	}

	var skipped []ingestion.RecordError
	valid := entries[:0]
	for i, e := range entries {
		if err := e.Stat.Validate(ctx); err != nil {
			skipped = append(skipped, ingestion.RecordError{Index: i, Key: e.Stat.ID, Err: err})
			continue
		}
		valid = append(valid, e)
	}
	batch.Merge(ingest.ScorecardBatch(valid))
	return batch, skipped, nil
}

// ImportPlayer fetches one player profile and upserts it.
func (s *IngestionService) ImportPlayer(ctx context.Context, providerID string) (player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.ImportPlayer")
	defer span.End()

	refs, err := providerRefs([]string{providerID}, "player")
	if err != nil {
		return player.Player{}, err
	}
	ref := refs[0]

	resp, err := s.provider.Player(ctx, ref)
	if err != nil {
		return player.Player{}, s.fetchError(ctx, "player "+ref, err)
	}
	p, err := ingest.NormalizePlayer(resp.Body)
	if err != nil {
		return player.Player{}, fmt.Errorf("normalize player %s: %w", ref, err)
	}
	if p.ID == "" {
		p.ID = id.Provider("player", mustParseRef(ref))
	}
	if err := p.Validate(ctx); err != nil {
		return player.Player{}, fmt.Errorf("%w: player %s: %v", ErrTypeMismatch, ref, err)
	}

	batch := ingestion.Batch{
		Players:  []player.Player{p},
		Payloads: []rawdata.Payload{s.payload("player", ref, resp)},
	}
	if _, err := s.commit(ctx, "player", batch, nil); err != nil {
		return player.Player{}, err
	}
	return p.Stamp(p.ID, s.timestamp()), nil
}

// Commentary fetches the latest commentary lines of a match, newest first.
// limit defaults to 10. Nothing is stored.
func (s *IngestionService) Commentary(ctx context.Context, matchID string, limit int) ([]ingestion.CommentaryEntry, []ingestion.RecordError, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.Commentary")
	defer span.End()

	switch {
	case limit == 0:
		limit = defaultCommentaryLines
	case limit < 0 || limit > maxCommentaryLines:
		return nil, nil, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidInput, maxCommentaryLines)
	}
	refs, err := providerRefs([]string{matchID}, "match")
	if err != nil {
		return nil, nil, err
	}

	resp, err := s.provider.Commentary(ctx, refs[0])
	if err != nil {
		return nil, nil, s.fetchError(ctx, "commentary "+refs[0], err)
	}

	var (
		out     []ingestion.CommentaryEntry
		skipped []ingestion.RecordError
	)
	for i, row := range ingest.CommentaryEntries(resp.Body) {
		if len(out) == limit {
			break
		}
		entry, err := ingest.NormalizeCommentary(row)
		if err != nil {
			skipped = append(skipped, ingestion.RecordError{Index: i, Err: err})
			continue
		}
		out = append(out, entry)
	}
	return out, skipped, nil
}

// Rankings fetches an ICC ranking table. Rankings are not stored.
func (s *IngestionService) Rankings(ctx context.Context, category, format string) ([]ingestion.RankingEntry, []ingestion.RecordError, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.Rankings")
	defer span.End()

	category = strings.ToLower(strings.TrimSpace(category))
	switch category {
	case "batsmen", "bowlers", "allrounders", "teams":
	default:
		return nil, nil, fmt.Errorf("%w: ranking category must be batsmen, bowlers, allrounders or teams", ErrInvalidInput)
	}
	format = strings.ToLower(strings.TrimSpace(format))
	switch format {
	case "":
		format = "test"
	case "test", "odi", "t20":
	default:
		return nil, nil, fmt.Errorf("%w: ranking format must be test, odi or t20", ErrInvalidInput)
	}

	resp, err := s.provider.Rankings(ctx, category, format)
	if err != nil {
		return nil, nil, s.fetchError(ctx, "rankings "+category, err)
	}

	var (
		out     []ingestion.RankingEntry
		skipped []ingestion.RecordError
	)
	for i, row := range ingest.RankingEntries(resp.Body) {
		entry, err := ingest.NormalizeRanking(row)
		if err != nil {
			skipped = append(skipped, ingestion.RecordError{Index: i, Err: err})
			continue
		}
		out = append(out, entry)
	}
	return out, skipped, nil
}

func (s *IngestionService) commit(ctx context.Context, kind string, batch ingestion.Batch, skipped []ingestion.RecordError) (ingestion.Summary, error) {
	summary := ingestion.Summary{
		Series:  len(batch.Series),
		Teams:   len(batch.Teams),
		Players: len(batch.Players),
		Venues:  len(batch.Venues),
		Matches: len(batch.Matches),
		Stats:   len(batch.Stats),
		Skipped: skipped,
	}
	for i, rec := range skipped {
		skipped[i].Reason = rec.Err.Error()
		s.logger.WarnContext(ctx, "skip provider record", "kind", kind, "index", rec.Index, "key", rec.Key, "error", rec.Err)
	}

	if err := ctx.Err(); err != nil {
		return ingestion.Summary{}, fmt.Errorf("%s refresh cancelled before write: %w", kind, err)
	}

	stampBatch(&batch, s.timestamp())
	if err := s.writer.WriteBatch(ctx, batch); err != nil {
		return ingestion.Summary{}, fmt.Errorf("write %s batch: %w", kind, err)
	}
	if s.changed != nil && !batch.Empty() {
		s.changed(ctx)
	}

	s.logger.InfoContext(ctx, "provider refresh stored",
		"kind", kind,
		"matches", summary.Matches,
		"players", summary.Players,
		"stats", summary.Stats,
		"skipped", len(skipped),
	)
	return summary, nil
}

func (s *IngestionService) fetchError(ctx context.Context, what string, err error) error {
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("fetch %s: %w", what, err)
	}
	if errors.Is(err, ingestion.ErrNotFound) {
		return fmt.Errorf("fetch %s: %w: %v", what, ErrNotFound, err)
	}
	s.logger.WarnContext(ctx, "provider fetch failed", "what", what, "error", err)
	if errors.Is(err, ErrIngestion) {
		return fmt.Errorf("fetch %s: %w", what, err)
	}
	return fmt.Errorf("fetch %s: %w: %v", what, ErrUnavailable, err)
}

func (s *IngestionService) payload(entityType, key string, resp ingestion.Response) rawdata.Payload {
	sum := sha256.Sum256(resp.Raw)
	fetchedAt := resp.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = s.timestamp()
	}
	return rawdata.Payload{
		Source:      payloadSource,
		Endpoint:    resp.Endpoint,
		EntityType:  entityType,
		EntityKey:   key,
		PayloadJSON: string(resp.Raw),
		PayloadHash: hex.EncodeToString(sum[:]),
		FetchedAt:   fetchedAt,
	}
}

func (s *IngestionService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func stampBatch(b *ingestion.Batch, now time.Time) {
	for i := range b.Series {
		b.Series[i] = b.Series[i].Stamp(b.Series[i].ID, now)
	}
	for i := range b.Teams {
		b.Teams[i] = b.Teams[i].Stamp(b.Teams[i].ID, now)
	}
	for i := range b.Venues {
		b.Venues[i] = b.Venues[i].Stamp(b.Venues[i].ID, now)
	}
	for i := range b.Players {
		b.Players[i] = b.Players[i].Stamp(b.Players[i].ID, now)
	}
	for i := range b.Matches {
		b.Matches[i] = b.Matches[i].Stamp(b.Matches[i].ID, now)
	}
	for i := range b.Stats {
		b.Stats[i] = b.Stats[i].Stamp(b.Stats[i].ID, now)
	}
}

// providerRefs accepts provider ids as "123" or in stored form
// ("cb-match-123") and returns them as digit strings.
func providerRefs(values []string, kind string) ([]string, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: at least one %s id is required", ErrInvalidInput, kind)
	}
	prefix := "cb-" + kind + "-"
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		ref := strings.TrimPrefix(strings.TrimSpace(v), prefix)
		n, err := strconv.ParseInt(ref, 10, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("%w: %q is not a provider %s id", ErrInvalidInput, v, kind)
		}
		ref = strconv.FormatInt(n, 10)
		if _, dup := seen[ref]; dup {
			continue
		}
		seen[ref] = struct{}{}
		out = append(out, ref)
	}
	return out, nil
}

// mustParseRef parses a ref already checked by providerRefs.
func mustParseRef(ref string) int64 {
	n, _ := strconv.ParseInt(ref, 10, 64)
	return n
}
