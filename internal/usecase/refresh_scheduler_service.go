package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/riskibarqy/cricket-analytics/internal/platform/logging"
)

// JobQueue delivers a POST to path on this API after delay. Jobs that share
// a deduplication id are delivered once.
type JobQueue interface {
	Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error
}

const (
	RefreshLive      = "live"
	RefreshRecent    = "recent"
	RefreshScorecard = "scorecard"

	maxRefreshDelay = 7 * 24 * time.Hour
)

type RefreshSchedulerConfig struct {
	// Bucket groups requests into one delivery per kind and window.
	Bucket time.Duration
}

type ScheduleInput struct {
	Kind    string
	MatchID string
	Delay   time.Duration
}

type ScheduledRefresh struct {
	Kind            string    `json:"kind"`
	Path            string    `json:"path"`
	RunAt           time.Time `json:"run_at"`
	DeduplicationID string    `json:"deduplication_id"`
}

// RefreshSchedulerService queues ingestion refreshes for later instead of
// running them inside the caller's request.
type RefreshSchedulerService struct {
	queue  JobQueue
	cfg    RefreshSchedulerConfig
	logger *logging.Logger
	now    func() time.Time
}

var dedupUnsafeCharRegex = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

func NewRefreshSchedulerService(queue JobQueue, cfg RefreshSchedulerConfig, logger *logging.Logger) *RefreshSchedulerService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Bucket <= 0 {
		cfg.Bucket = time.Minute
	}
	return &RefreshSchedulerService{queue: queue, cfg: cfg, logger: logger, now: time.Now}
}

func (s *RefreshSchedulerService) Schedule(ctx context.Context, input ScheduleInput) (ScheduledRefresh, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RefreshSchedulerService.Schedule")
	defer span.End()

	if s.queue == nil {
		return ScheduledRefresh{}, fmt.Errorf("%w: no job queue is configured", ErrUnavailable)
	}
	if input.Delay < 0 || input.Delay > maxRefreshDelay {
		return ScheduledRefresh{}, fmt.Errorf("%w: delay must be between 0 and %s", ErrInvalidInput, maxRefreshDelay)
	}

	kind := strings.ToLower(strings.TrimSpace(input.Kind))
	var path, subject string
	switch kind {
	case RefreshLive, RefreshRecent:
		path, subject = "/v1/ingest/"+kind, "all"
	case RefreshScorecard:
		matchID := strings.TrimSpace(input.MatchID)
		if matchID == "" {
			return ScheduledRefresh{}, fmt.Errorf("%w: match_id is required for a scorecard refresh", ErrInvalidInput)
		}
		path, subject = "/v1/ingest/scorecards/"+matchID, matchID
	default:
		return ScheduledRefresh{}, fmt.Errorf("%w: unknown refresh kind %q", ErrInvalidInput, input.Kind)
	}

	runAt := s.now().UTC().Add(input.Delay)
	dedupID := dedupKey("ingest-"+kind, subject, runAt, s.cfg.Bucket)
	if err := s.queue.Enqueue(ctx, path, nil, input.Delay, dedupID); err != nil {
		s.logger.WarnContext(ctx, "schedule refresh failed", "kind", kind, "path", path, "error", err)
		return ScheduledRefresh{}, err
	}

	s.logger.InfoContext(ctx, "refresh scheduled", "kind", kind, "path", path, "run_at", runAt, "deduplication_id", dedupID)
	return ScheduledRefresh{Kind: kind, Path: path, RunAt: runAt, DeduplicationID: dedupID}, nil
}

func dedupKey(prefix, subject string, at time.Time, bucket time.Duration) string {
	if bucket <= 0 {
		bucket = time.Minute
	}
	slot := at.UTC().Truncate(bucket).Format("20060102T150405Z")
	return sanitizeDedupSegment(prefix) + "-" + sanitizeDedupSegment(subject) + "-" + slot
}

func sanitizeDedupSegment(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	return dedupUnsafeCharRegex.ReplaceAllString(value, "-")
}
