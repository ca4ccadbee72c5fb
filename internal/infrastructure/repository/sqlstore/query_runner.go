package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sourcegraph/conc/pool"

	"github.com/riskibarqy/cricket-analytics/internal/domain/analytics"
)

// QueryRunner executes catalog and custom queries. Statements run on the
// read-only handle when there is one; otherwise inside a read-only
// transaction on the primary handle that is always rolled back.
type QueryRunner struct {
	db       *sqlx.DB
	readOnly *sqlx.DB
}

func NewQueryRunner(db, readOnly *sqlx.DB) *QueryRunner {
	return &QueryRunner{db: db, readOnly: readOnly}
}

func (r *QueryRunner) Query(ctx context.Context, query string, args map[string]any, maxRows int) (analytics.Result, error) {
	bound, params, err := r.bind(query, args)
	if err != nil {
		return analytics.Result{}, err
	}

	if r.readOnly != nil {
		return collect(ctx, r.readOnly, bound, params, maxRows)
	}

	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return analytics.Result{}, fmt.Errorf("begin read-only tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()
	return collect(ctx, tx, bound, params, maxRows)
}

func (r *QueryRunner) bind(query string, args map[string]any) (string, []any, error) {
	handle := r.db
	if r.readOnly != nil {
		handle = r.readOnly
	}
	if len(args) == 0 {
		return query, nil, nil
	}
	bound, params, err := sqlx.Named(query, args)
	if err != nil {
		return "", nil, fmt.Errorf("bind query parameters: %w", err)
	}
	return handle.Rebind(bound), params, nil
}

func collect(ctx context.Context, q sqlx.QueryerContext, query string, args []any, maxRows int) (analytics.Result, error) {
	rows, err := q.QueryxContext(ctx, query, args...)
	if err != nil {
		return analytics.Result{}, fmt.Errorf("run query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return analytics.Result{}, fmt.Errorf("read columns: %w", err)
	}

	result := analytics.Result{Columns: cols, Rows: make([][]any, 0)}
	for rows.Next() {
		if maxRows > 0 && len(result.Rows) >= maxRows {
			result.Truncated = true
			break
		}
		values, err := rows.SliceScan()
		if err != nil {
			return analytics.Result{}, fmt.Errorf("scan row: %w", err)
		}
		for i, v := range values {
			values[i] = normalizeValue(v)
		}
		result.Rows = append(result.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return analytics.Result{}, fmt.Errorf("iterate rows: %w", err)
	}
	return result, nil
}

// normalizeValue maps driver values onto the types analytics.Result allows.
// Postgres returns NUMERIC as text bytes, so numeric looking bytes become
// numbers.
func normalizeValue(v any) any {
	switch x := v.(type) {
	case nil, int64, float64, bool, string:
		return x
	case []byte:
		s := string(x)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
		return s
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case float32:
		return float64(x)
	case time.Time:
		return x.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}

// Overview counts every table concurrently.
func (r *QueryRunner) Overview(ctx context.Context) (analytics.Overview, error) {
	handle := r.db
	if r.readOnly != nil {
		handle = r.readOnly
	}

	var out analytics.Overview
	counts := []struct {
		query string
		dst   *int64
	}{
		{`SELECT COUNT(1) FROM players`, &out.Players},
		{`SELECT COUNT(1) FROM teams`, &out.Teams},
		{`SELECT COUNT(1) FROM venues`, &out.Venues},
		{`SELECT COUNT(1) FROM series`, &out.Series},
		{`SELECT COUNT(1) FROM matches`, &out.Matches},
		{`SELECT COUNT(1) FROM matches WHERE status = 'Completed'`, &out.CompletedMatches},
		{`SELECT COUNT(1) FROM player_match_stats`, &out.Stats},
	}

	p := pool.New().WithContext(ctx).WithCancelOnError()
	for _, c := range counts {
		p.Go(func(ctx context.Context) error {
			if err := handle.GetContext(ctx, c.dst, c.query); err != nil {
				return fmt.Errorf("overview %q: %w", c.query, err)
			}
			return nil
		})
	}
	var latest sql.NullString
	p.Go(func(ctx context.Context) error {
		if err := handle.GetContext(ctx, &latest, `SELECT MAX(match_date) FROM matches`); err != nil {
			return fmt.Errorf("overview latest match: %w", err)
		}
		return nil
	})
	if err := p.Wait(); err != nil {
		return analytics.Overview{}, err
	}

	out.LatestMatchDate = latest.String
	return out, nil
}
