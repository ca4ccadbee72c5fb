package sqlstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/cricket-analytics/internal/config"
	"github.com/riskibarqy/cricket-analytics/internal/domain/crud"
	"github.com/riskibarqy/cricket-analytics/internal/platform/querybuilder"
	"github.com/riskibarqy/cricket-analytics/internal/usecase"
)

// table holds the CRUD statements shared by every entity repository. T is
// the domain record and R its db-tagged row.
type table[T any, R any] struct {
	db      *sqlx.DB
	name    string
	columns []string
	toRow   func(T) R
	fromRow func(R) (T, error)
	idOf    func(T) string
	// beforeDelete runs inside the delete transaction and returns the number
	// of dependent stat rows it removed.
	beforeDelete func(ctx context.Context, tx *sqlx.Tx, id string) (int64, error)
}

func newTable[T any, R any](db *sqlx.DB, name string, toRow func(T) R, fromRow func(R) (T, error), idOf func(T) string) *table[T, R] {
	var zero R
	return &table[T, R]{
		db:      db,
		name:    name,
		columns: querybuilder.Columns(zero),
		toRow:   toRow,
		fromRow: fromRow,
		idOf:    idOf,
	}
}

func (t *table[T, R]) Insert(ctx context.Context, item T) error {
	return t.insert(ctx, t.db, item)
}

// InsertBatch inserts every item in one transaction. The first failing row
// aborts the batch and nothing is written.
func (t *table[T, R]) InsertBatch(ctx context.Context, items []T) error {
	return withTx(ctx, t.db, func(tx *sqlx.Tx) error {
		for i, item := range items {
			if err := t.insert(ctx, tx, item); err != nil {
				return fmt.Errorf("row %d: %w", i, err)
			}
		}
		return nil
	})
}

func (t *table[T, R]) insert(ctx context.Context, ext sqlx.ExecerContext, item T) error {
	query, args, err := querybuilder.InsertModel(t.name, t.toRow(item), querybuilder.Question)
	if err != nil {
		return fmt.Errorf("build insert %s: %w", t.name, err)
	}
	if _, err := execBuilt(ctx, t.db, ext, query, args); err != nil {
		return mapWriteError("insert "+t.name+" "+t.idOf(item), err)
	}
	return nil
}

func (t *table[T, R]) Get(ctx context.Context, id string) (T, bool, error) {
	return t.get(ctx, t.db, id, false)
}

func (t *table[T, R]) get(ctx context.Context, q sqlx.QueryerContext, id string, forUpdate bool) (T, bool, error) {
	var zero T
	query, args, err := querybuilder.Select(t.columns...).
		From(t.name).
		Where(querybuilder.Eq("id", id)).
		ToSQL()
	if err != nil {
		return zero, false, fmt.Errorf("build get %s: %w", t.name, err)
	}
	if forUpdate && t.db.DriverName() == config.DriverPostgres {
		query += " FOR UPDATE"
	}

	var row R
	if err := sqlx.GetContext(ctx, q, &row, t.db.Rebind(query), args...); err != nil {
		if isNotFound(err) {
			return zero, false, nil
		}
		return zero, false, fmt.Errorf("get %s %s: %w", t.name, id, err)
	}

	item, err := t.fromRow(row)
	if err != nil {
		return zero, false, fmt.Errorf("decode %s %s: %w", t.name, id, err)
	}
	return item, true, nil
}

// Update reads the current row, lets mutate derive the next version and
// writes it back, all in one transaction. mutate errors abort the update.
func (t *table[T, R]) Update(ctx context.Context, id string, mutate func(T) (T, error)) (T, bool, error) {
	var (
		updated T
		found   bool
	)
	err := withTx(ctx, t.db, func(tx *sqlx.Tx) error {
		current, ok, err := t.get(ctx, tx, id, true)
		if err != nil || !ok {
			return err
		}
		found = true

		next, err := mutate(current)
		if err != nil {
			return err
		}

		query, args, err := querybuilder.UpdateModel(t.name, "id", t.toRow(next), querybuilder.Question, "created_at")
		if err != nil {
			return fmt.Errorf("build update %s: %w", t.name, err)
		}
		if _, err := execBuilt(ctx, t.db, tx, query, args); err != nil {
			return mapWriteError("update "+t.name+" "+id, err)
		}
		updated = next
		return nil
	})
	if err != nil {
		var zero T
		return zero, found, err
	}
	return updated, found, nil
}

func (t *table[T, R]) Delete(ctx context.Context, id string) (crud.DeleteResult, bool, error) {
	var (
		result crud.DeleteResult
		found  bool
	)
	err := withTx(ctx, t.db, func(tx *sqlx.Tx) error {
		var err error
		result, found, err = t.delete(ctx, tx, id)
		if err != nil || !found {
			return err
		}
		return nil
	})
	if err != nil {
		return crud.DeleteResult{}, false, err
	}
	return result, found, nil
}

// DeleteBatch removes every id in one transaction; an unknown id aborts the
// batch with ErrNotFound.
func (t *table[T, R]) DeleteBatch(ctx context.Context, ids []string) ([]crud.DeleteResult, error) {
	out := make([]crud.DeleteResult, 0, len(ids))
	err := withTx(ctx, t.db, func(tx *sqlx.Tx) error {
		for i, id := range ids {
			result, found, err := t.delete(ctx, tx, id)
			if err != nil {
				return fmt.Errorf("row %d: %w", i, err)
			}
			if !found {
				return fmt.Errorf("row %d: %s %s: %w", i, t.name, id, usecase.ErrNotFound)
			}
			out = append(out, result)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (t *table[T, R]) delete(ctx context.Context, tx *sqlx.Tx, id string) (crud.DeleteResult, bool, error) {
	var cascaded int64
	if t.beforeDelete != nil {
		n, err := t.beforeDelete(ctx, tx, id)
		if err != nil {
			return crud.DeleteResult{}, false, fmt.Errorf("delete dependents of %s %s: %w", t.name, id, err)
		}
		cascaded = n
	}

	query, args, err := querybuilder.DeleteFrom(t.name).Where(querybuilder.Eq("id", id)).ToSQL()
	if err != nil {
		return crud.DeleteResult{}, false, fmt.Errorf("build delete %s: %w", t.name, err)
	}
	n, err := execBuilt(ctx, t.db, tx, query, args)
	if err != nil {
		return crud.DeleteResult{}, false, mapWriteError("delete "+t.name+" "+id, err)
	}
	if n == 0 {
		return crud.DeleteResult{}, false, nil
	}
	return crud.DeleteResult{ID: id, CascadedStats: cascaded}, true, nil
}

// list selects one page. orderBy must end with a unique column so pages are
// stable.
func (t *table[T, R]) list(ctx context.Context, where []querybuilder.Condition, orderBy []string, page crud.Page) ([]T, error) {
	page = page.Normalize()
	query, args, err := querybuilder.Select(t.columns...).
		From(t.name).
		Where(where...).
		OrderBy(orderBy...).
		Limit(page.Limit).
		Offset(page.Offset).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list %s: %w", t.name, err)
	}

	var rows []R
	if err := t.db.SelectContext(ctx, &rows, t.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list %s: %w", t.name, err)
	}

	out := make([]T, 0, len(rows))
	for _, row := range rows {
		item, err := t.fromRow(row)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", t.name, err)
		}
		out = append(out, item)
	}
	return out, nil
}

// deleteStatsWhere removes the stat rows whose column equals id. The foreign
// keys cascade as well; deleting explicitly lets the caller report a count.
func deleteStatsWhere(column string) func(ctx context.Context, tx *sqlx.Tx, id string) (int64, error) {
	return func(ctx context.Context, tx *sqlx.Tx, id string) (int64, error) {
		query, args, err := querybuilder.DeleteFrom("player_match_stats").
			Where(querybuilder.Eq(column, id)).
			ToSQL()
		if err != nil {
			return 0, err
		}
		res, err := tx.ExecContext(ctx, tx.Rebind(query), args...)
		if err != nil {
			return 0, err
		}
		return res.RowsAffected()
	}
}

func containsAny(columns []string, needle string) querybuilder.Condition {
	needle = strings.TrimSpace(needle)
	parts := make([]string, 0, len(columns))
	args := make([]any, 0, len(columns))
	escaped := "%" + strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(strings.ToLower(needle)) + "%"
	for _, col := range columns {
		parts = append(parts, "LOWER("+col+") LIKE ? ESCAPE '\\'")
		args = append(args, escaped)
	}
	return querybuilder.Expr(strings.Join(parts, " OR "), args...)
}
