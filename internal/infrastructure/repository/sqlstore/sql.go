package sqlstore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/riskibarqy/cricket-analytics/internal/platform/querybuilder"
	"github.com/riskibarqy/cricket-analytics/internal/usecase"
)

const dateLayout = "2006-01-02"

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

type constraintKind int

const (
	constraintNone constraintKind = iota
	constraintUnique
	constraintForeignKey
	constraintCheck
)

// classifyConstraint recognizes constraint violations from lib/pq and
// modernc sqlite.
func classifyConstraint(err error) constraintKind {
	if err == nil {
		return constraintNone
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return constraintUnique
		case "23503":
			return constraintForeignKey
		case "23514", "23502":
			return constraintCheck
		}
		return constraintNone
	}

	var coded interface{ Code() int }
	if errors.As(err, &coded) {
		switch coded.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return constraintUnique
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return constraintForeignKey
		case sqlite3.SQLITE_CONSTRAINT_CHECK, sqlite3.SQLITE_CONSTRAINT_NOTNULL:
			return constraintCheck
		}
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return constraintUnique
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return constraintForeignKey
	case strings.Contains(msg, "CHECK constraint failed"), strings.Contains(msg, "NOT NULL constraint failed"):
		return constraintCheck
	}
	return constraintNone
}

// mapWriteError turns constraint violations into use case errors and wraps
// everything else with op.
func mapWriteError(op string, err error) error {
	switch classifyConstraint(err) {
	case constraintUnique:
		return fmt.Errorf("%s: %w", op, usecase.ErrDuplicate)
	case constraintForeignKey:
		return fmt.Errorf("%s: referenced record does not exist: %w", op, usecase.ErrInvalidInput)
	case constraintCheck:
		return fmt.Errorf("%s: value violates a table constraint: %w", op, usecase.ErrInvalidInput)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// withTx runs fn in a transaction that is rolled back unless fn succeeds.
func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return mapWriteError("commit tx", err)
	}
	return nil
}

func execBuilt(ctx context.Context, db *sqlx.DB, ext sqlx.ExecerContext, query string, args []any) (int64, error) {
	res, err := ext.ExecContext(ctx, db.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return n, nil
}

// upsertRules name the stored values a provider upsert must not wipe.
type upsertRules struct {
	// keepIfEmpty columns keep the stored text when the incoming one is NULL or ''.
	keepIfEmpty []string
	// keepIfZero columns keep the stored number when the incoming one is NULL or 0.
	keepIfZero []string
	// keepStored columns are written on insert only.
	keepStored []string
	// placeholders maps a column to the column the provider falls back to
	// when it has nothing better, like a series named after its id. The
	// stored value wins over a placeholder.
	placeholders map[string]string
}

// upsertStatement builds an INSERT that updates every non-key column on
// conflict, except where rules keep the stored value.
func upsertStatement(table string, row any, conflict []string, rules upsertRules) (string, []any, error) {
	cols := querybuilder.Columns(row)
	if len(cols) == 0 {
		return "", nil, fmt.Errorf("upsert %s: row has no columns", table)
	}

	skip := map[string]struct{}{"created_at": {}, "id": {}}
	for _, c := range conflict {
		skip[c] = struct{}{}
	}
	for _, c := range rules.keepStored {
		skip[c] = struct{}{}
	}
	emptyText := toSet(rules.keepIfEmpty)
	zeroNumber := toSet(rules.keepIfZero)

	sets := make([]string, 0, len(cols))
	for _, col := range cols {
		if _, ok := skip[col]; ok {
			continue
		}
		var blank []string
		if _, ok := emptyText[col]; ok {
			blank = append(blank, "excluded."+col+" IS NULL", "excluded."+col+" = ''")
		}
		if _, ok := zeroNumber[col]; ok {
			blank = append(blank, "excluded."+col+" IS NULL", "excluded."+col+" = 0")
		}
		if other, ok := rules.placeholders[col]; ok {
			if _, seen := emptyText[col]; !seen {
				blank = append(blank, "excluded."+col+" = ''")
			}
			blank = append(blank, "excluded."+col+" = excluded."+other)
		}
		if len(blank) == 0 {
			sets = append(sets, fmt.Sprintf("%[1]s = excluded.%[1]s", col))
			continue
		}
		sets = append(sets, fmt.Sprintf("%[1]s = CASE WHEN %[3]s THEN %[2]s.%[1]s ELSE excluded.%[1]s END",
			col, table, strings.Join(blank, " OR ")))
	}

	suffix := "ON CONFLICT (" + strings.Join(conflict, ", ") + ") DO NOTHING"
	if len(sets) > 0 {
		suffix = "ON CONFLICT (" + strings.Join(conflict, ", ") + ") DO UPDATE SET " + strings.Join(sets, ", ")
	}

	query, args, err := querybuilder.InsertModel(table, row, querybuilder.Question)
	if err != nil {
		return "", nil, err
	}
	return query + " " + suffix, args, nil
}

func toSet(values []string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		out[v] = struct{}{}
	}
	return out
}

// sqlTime reads timestamps from drivers that hand back either time.Time or
// text, and always yields UTC.
type sqlTime struct {
	time.Time
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	dateLayout,
}

func newSQLTime(t time.Time) sqlTime {
	return sqlTime{Time: t.UTC()}
}

func (t sqlTime) Value() (driver.Value, error) {
	return t.Time.UTC(), nil
}

func (t *sqlTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time = time.Time{}
		return nil
	case time.Time:
		t.Time = v.UTC()
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	default:
		return fmt.Errorf("cannot scan %T into timestamp", src)
	}
}

func (t *sqlTime) parse(v string) error {
	v = strings.TrimSpace(v)
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, v); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("cannot parse timestamp %q", v)
}

func formatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

func nullDate(t *time.Time) sql.NullString {
	if t == nil || t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: formatDate(*t), Valid: true}
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(v))
	if err != nil {
		return time.Time{}, fmt.Errorf("stored date %q is malformed: %w", v, err)
	}
	return t, nil
}

func parseNullDate(v sql.NullString) (*time.Time, error) {
	if !v.Valid || strings.TrimSpace(v.String) == "" {
		return nil, nil
	}
	t, err := parseDate(v.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullString(v *string) sql.NullString {
	if v == nil || strings.TrimSpace(*v) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
