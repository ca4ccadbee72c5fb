package usecase

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/valyala/bytebufferpool"

	"github.com/riskibarqy/cricket-analytics/internal/domain/analytics"
	"github.com/riskibarqy/cricket-analytics/internal/platform/cache"
	"github.com/riskibarqy/cricket-analytics/internal/platform/logging"
)

const queryCachePrefix = "query:"

type QueryServiceConfig struct {
	Timeout       time.Duration
	CustomMaxRows int
}

// QueryResult is a finished catalog query.
type QueryResult struct {
	Query  string         `json:"query"`
	Tier   analytics.Tier `json:"tier"`
	Params map[string]any `json:"params,omitempty"`
	Cached bool           `json:"cached"`
	analytics.Result
}

// QueryService runs the named query catalog and guarded custom queries.
type QueryService struct {
	catalog *analytics.Catalog
	runner  analytics.Runner
	cache   *cache.Store[analytics.Result]
	cfg     QueryServiceConfig
	now     func() time.Time
	logger  *logging.Logger
}

// NewQueryService builds the service. A nil store disables result caching.
func NewQueryService(catalog *analytics.Catalog, runner analytics.Runner, store *cache.Store[analytics.Result], cfg QueryServiceConfig, logger *logging.Logger) *QueryService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.CustomMaxRows <= 0 {
		cfg.CustomMaxRows = 1000
	}
	return &QueryService{
		catalog: catalog,
		runner:  runner,
		cache:   store,
		cfg:     cfg,
		now:     time.Now,
		logger:  logger,
	}
}

// ListQueries returns the catalog, optionally narrowed to one tier.
func (s *QueryService) ListQueries(ctx context.Context, tier string) ([]analytics.Definition, error) {
	_, span := startUsecaseSpan(ctx, "usecase.QueryService.ListQueries")
	defer span.End()

	t := analytics.Tier(strings.ToLower(strings.TrimSpace(tier)))
	switch t {
	case "", analytics.TierBeginner, analytics.TierIntermediate, analytics.TierAdvanced:
	default:
		return nil, fmt.Errorf("%w: unknown tier %q", ErrInvalidInput, tier)
	}
	return s.catalog.List(t), nil
}

func (s *QueryService) Describe(ctx context.Context, name string) (analytics.Definition, error) {
	def, ok := s.catalog.Get(name)
	if !ok {
		return analytics.Definition{}, fmt.Errorf("%w: %s", ErrUnknownQuery, strings.TrimSpace(name))
	}
	return def, nil
}

// RunQuery binds params to the named query and runs it read-only. Results
// are cached per bound parameter set until the next write.
func (s *QueryService) RunQuery(ctx context.Context, name string, params map[string]string) (QueryResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.QueryService.RunQuery")
	defer span.End()

	def, err := s.Describe(ctx, name)
	if err != nil {
		return QueryResult{}, err
	}

	args, err := def.Bind(params, s.now())
	if err != nil {
		var paramErr *analytics.ParamError
		if errors.As(err, &paramErr) {
			return QueryResult{}, fmt.Errorf("%w: %s", ErrInvalidInput, paramErr.Error())
		}
		return QueryResult{}, err
	}

	load := func(ctx context.Context) (analytics.Result, error) {
		return s.execute(ctx, def, args)
	}

	var (
		result analytics.Result
		cached bool
	)
	if s.cache != nil {
		result, cached, err = s.cache.GetOrLoad(ctx, cacheKey(def.Name, args), load)
	} else {
		result, err = load(ctx)
	}
	if err != nil {
		return QueryResult{}, err
	}

	return QueryResult{
		Query:  def.Name,
		Tier:   def.Tier,
		Params: args,
		Cached: cached,
		Result: result,
	}, nil
}

func (s *QueryService) execute(ctx context.Context, def analytics.Definition, args map[string]any) (analytics.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	started := time.Now()
	raw, err := s.runner.Query(ctx, def.SQL, args, 0)
	if err != nil {
		return analytics.Result{}, s.runError(ctx, "query "+def.Name, err)
	}
	result, err := def.Finish(raw)
	if err != nil {
		return analytics.Result{}, err
	}
	s.logger.DebugContext(ctx, "catalog query finished",
		"query", def.Name,
		"rows", len(result.Rows),
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return result, nil
}

// RunCustom runs an ad-hoc statement. Anything other than a single SELECT
// or WITH statement is refused before it reaches the store, and the store
// connection used is itself read-only.
func (s *QueryService) RunCustom(ctx context.Context, query string) (analytics.Result, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.QueryService.RunCustom")
	defer span.End()

	if strings.TrimSpace(query) == "" {
		return analytics.Result{}, fmt.Errorf("%w: query is required", ErrInvalidInput)
	}
	if err := analytics.CheckReadOnly(query); err != nil {
		s.logger.WarnContext(ctx, "custom query rejected", "error", err)
		return analytics.Result{}, fmt.Errorf("%w: %v", ErrWriteNotAllowed, err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	result, err := s.runner.Query(ctx, query, nil, s.cfg.CustomMaxRows)
	if err != nil {
		if isReadOnlyViolation(err) {
			return analytics.Result{}, fmt.Errorf("%w: %v", ErrWriteNotAllowed, err)
		}
		return analytics.Result{}, s.runError(ctx, "custom query", err)
	}
	result.RoundFloats(2)
	return result, nil
}

func (s *QueryService) Overview(ctx context.Context) (analytics.Overview, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.QueryService.Overview")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	overview, err := s.runner.Overview(ctx)
	if err != nil {
		return analytics.Overview{}, s.runError(ctx, "overview", err)
	}
	return overview, nil
}

// Invalidate drops every cached query result.
func (s *QueryService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if n := s.cache.DeletePrefix(ctx, queryCachePrefix); n > 0 {
		s.logger.DebugContext(ctx, "query cache invalidated", "entries", n)
	}
}

func (s *QueryService) runError(ctx context.Context, op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s timed out after %s", ErrDependencyUnavailable, op, s.cfg.Timeout)
	}
	if isSQLError(err) {
		return fmt.Errorf("%w: %s: %v", ErrInvalidInput, op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isReadOnlyViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "readonly") ||
		strings.Contains(msg, "read-only") ||
		strings.Contains(msg, "read only")
}

// isSQLError reports a statement the engine could not compile, which for a
// custom query is the caller's mistake.
func isSQLError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "syntax error") ||
		strings.Contains(msg, "no such column") ||
		strings.Contains(msg, "no such table") ||
		strings.Contains(msg, "does not exist")
}

func cacheKey(name string, args map[string]any) string {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(queryCachePrefix)
	b.WriteString(name)
	for _, k := range keys {
		fmt.Fprintf(&b, "|%s=%v", k, args[k])
	}
	return b.String()
}

// WriteCSV renders a result as CSV with a header row. Nil values become
// empty cells.
func WriteCSV(w io.Writer, result analytics.Result) error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	cw := csv.NewWriter(buf)
	if err := cw.Write(result.Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	record := make([]string, len(result.Columns))
	for _, row := range result.Rows {
		for i := range record {
			record[i] = ""
			if i < len(row) && row[i] != nil {
				record[i] = fmt.Sprint(row[i])
			}
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	_, err := w.Write(buf.B)
	return err
}
