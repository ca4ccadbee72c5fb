package querybuilder

import (
	"fmt"
	"strconv"
	"strings"
)

// PlaceholderFormat selects how bind parameters are rendered.
// Question output is meant to be passed through sqlx Rebind.
type PlaceholderFormat int

const (
	Question PlaceholderFormat = iota
	Dollar
)

func (f PlaceholderFormat) placeholder(i int) string {
	if f == Dollar {
		return "$" + strconv.Itoa(i)
	}
	return "?"
}

type state struct {
	buf    strings.Builder
	args   []any
	format PlaceholderFormat
}

func (s *state) bind(value any) {
	s.args = append(s.args, value)
	s.buf.WriteString(s.format.placeholder(len(s.args)))
}

// expr writes a fragment whose '?' markers are bound to exprArgs in order.
func (s *state) expr(fragment string, exprArgs []any) {
	if len(exprArgs) == 0 {
		s.buf.WriteString(fragment)
		return
	}

	next := 0
	for i := 0; i < len(fragment); i++ {
		if fragment[i] == '?' && next < len(exprArgs) {
			s.bind(exprArgs[next])
			next++
			continue
		}
		s.buf.WriteByte(fragment[i])
	}
}

type Condition interface {
	appendSQL(s *state)
}

type compareCondition struct {
	column string
	op     string
	value  any
}

func Eq(column string, value any) Condition {
	return compareCondition{column: column, op: "=", value: value}
}

func Gte(column string, value any) Condition {
	return compareCondition{column: column, op: ">=", value: value}
}

func Lte(column string, value any) Condition {
	return compareCondition{column: column, op: "<=", value: value}
}

func (c compareCondition) appendSQL(s *state) {
	s.buf.WriteString(c.column)
	s.buf.WriteString(" ")
	s.buf.WriteString(c.op)
	s.buf.WriteString(" ")
	s.bind(c.value)
}

type inCondition struct {
	column string
	values []any
}

func In(column string, values []any) Condition {
	return inCondition{column: column, values: values}
}

func InStrings(column string, values []string) Condition {
	items := make([]any, 0, len(values))
	for _, v := range values {
		items = append(items, v)
	}
	return In(column, items)
}

func (c inCondition) appendSQL(s *state) {
	if len(c.values) == 0 {
		s.buf.WriteString("1=0")
		return
	}

	s.buf.WriteString(c.column)
	s.buf.WriteString(" IN (")
	for i, v := range c.values {
		if i > 0 {
			s.buf.WriteString(", ")
		}
		s.bind(v)
	}
	s.buf.WriteString(")")
}

type isNullCondition struct {
	column string
}

func IsNull(column string) Condition {
	return isNullCondition{column: column}
}

func (c isNullCondition) appendSQL(s *state) {
	s.buf.WriteString(c.column)
	s.buf.WriteString(" IS NULL")
}

type containsCondition struct {
	column string
	needle string
}

// ContainsFold matches rows whose column contains needle, ignoring case.
// LIKE wildcards in needle are escaped.
func ContainsFold(column, needle string) Condition {
	return containsCondition{column: column, needle: needle}
}

func (c containsCondition) appendSQL(s *state) {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(strings.ToLower(c.needle))
	s.buf.WriteString("LOWER(")
	s.buf.WriteString(c.column)
	s.buf.WriteString(") LIKE ")
	s.bind("%" + escaped + "%")
	s.buf.WriteString(` ESCAPE '\'`)
}

type exprCondition struct {
	expr string
	args []any
}

func Expr(expr string, args ...any) Condition {
	return exprCondition{expr: expr, args: args}
}

func (c exprCondition) appendSQL(s *state) {
	s.buf.WriteString("(")
	s.expr(c.expr, c.args)
	s.buf.WriteString(")")
}

type SelectBuilder struct {
	columns []string
	table   string
	where   []Condition
	groupBy []string
	orderBy []string
	limit   int
	offset  int
	format  PlaceholderFormat
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: append([]string(nil), columns...)}
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = table
	return b
}

func (b *SelectBuilder) Where(conditions ...Condition) *SelectBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *SelectBuilder) OrderBy(parts ...string) *SelectBuilder {
	b.orderBy = append(b.orderBy, parts...)
	return b
}

func (b *SelectBuilder) GroupBy(parts ...string) *SelectBuilder {
	b.groupBy = append(b.groupBy, parts...)
	return b
}

func (b *SelectBuilder) Limit(limit int) *SelectBuilder {
	b.limit = limit
	return b
}

func (b *SelectBuilder) Offset(offset int) *SelectBuilder {
	b.offset = offset
	return b
}

func (b *SelectBuilder) PlaceholderFormat(format PlaceholderFormat) *SelectBuilder {
	b.format = format
	return b
}

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("select columns are required")
	}
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("select table is required")
	}

	s := &state{format: b.format}
	s.buf.WriteString("SELECT ")
	s.buf.WriteString(strings.Join(b.columns, ", "))
	s.buf.WriteString(" FROM ")
	s.buf.WriteString(b.table)

	appendWhereClause(s, b.where)
	appendListClause(s, " GROUP BY ", b.groupBy)
	appendListClause(s, " ORDER BY ", b.orderBy)
	if b.limit > 0 {
		s.buf.WriteString(" LIMIT ")
		s.buf.WriteString(strconv.Itoa(b.limit))
	}
	if b.offset > 0 {
		s.buf.WriteString(" OFFSET ")
		s.buf.WriteString(strconv.Itoa(b.offset))
	}

	return s.buf.String(), s.args, nil
}

type InsertBuilder struct {
	table   string
	columns []string
	rows    [][]any
	suffix  string
	format  PlaceholderFormat
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

func (b *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	b.columns = append([]string(nil), columns...)
	return b
}

func (b *InsertBuilder) Values(values ...any) *InsertBuilder {
	b.rows = append(b.rows, append([]any(nil), values...))
	return b
}

func (b *InsertBuilder) Suffix(sql string) *InsertBuilder {
	b.suffix = strings.TrimSpace(sql)
	return b
}

func (b *InsertBuilder) PlaceholderFormat(format PlaceholderFormat) *InsertBuilder {
	b.format = format
	return b
}

func (b *InsertBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("insert table is required")
	}
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("insert columns are required")
	}
	if len(b.rows) == 0 {
		return "", nil, fmt.Errorf("insert values are required")
	}

	s := &state{format: b.format}
	s.buf.WriteString("INSERT INTO ")
	s.buf.WriteString(b.table)
	s.buf.WriteString(" (")
	s.buf.WriteString(strings.Join(b.columns, ", "))
	s.buf.WriteString(") VALUES ")

	for rowIdx, row := range b.rows {
		if len(row) != len(b.columns) {
			return "", nil, fmt.Errorf("insert row %d has %d values, expected %d", rowIdx, len(row), len(b.columns))
		}
		if rowIdx > 0 {
			s.buf.WriteString(", ")
		}
		s.buf.WriteString("(")
		for colIdx, value := range row {
			if colIdx > 0 {
				s.buf.WriteString(", ")
			}
			s.bind(value)
		}
		s.buf.WriteString(")")
	}

	if b.suffix != "" {
		s.buf.WriteString(" ")
		s.buf.WriteString(b.suffix)
	}

	return s.buf.String(), s.args, nil
}

type setClause struct {
	column string
	value  any
	expr   *exprCondition
}

type UpdateBuilder struct {
	table  string
	sets   []setClause
	where  []Condition
	format PlaceholderFormat
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	b.sets = append(b.sets, setClause{column: column, value: value})
	return b
}

func (b *UpdateBuilder) SetExpr(column, expr string, args ...any) *UpdateBuilder {
	b.sets = append(b.sets, setClause{column: column, expr: &exprCondition{expr: expr, args: args}})
	return b
}

func (b *UpdateBuilder) Where(conditions ...Condition) *UpdateBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *UpdateBuilder) PlaceholderFormat(format PlaceholderFormat) *UpdateBuilder {
	b.format = format
	return b
}

func (b *UpdateBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("update table is required")
	}
	if len(b.sets) == 0 {
		return "", nil, fmt.Errorf("update sets are required")
	}
	if len(b.where) == 0 {
		return "", nil, fmt.Errorf("update without where clause is not allowed")
	}

	s := &state{format: b.format}
	s.buf.WriteString("UPDATE ")
	s.buf.WriteString(b.table)
	s.buf.WriteString(" SET ")

	for i, set := range b.sets {
		if i > 0 {
			s.buf.WriteString(", ")
		}
		s.buf.WriteString(set.column)
		s.buf.WriteString(" = ")
		if set.expr != nil {
			s.expr(set.expr.expr, set.expr.args)
			continue
		}
		s.bind(set.value)
	}

	appendWhereClause(s, b.where)
	return s.buf.String(), s.args, nil
}

type DeleteBuilder struct {
	table  string
	where  []Condition
	format PlaceholderFormat
}

func DeleteFrom(table string) *DeleteBuilder {
	return &DeleteBuilder{table: table}
}

func (b *DeleteBuilder) Where(conditions ...Condition) *DeleteBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *DeleteBuilder) PlaceholderFormat(format PlaceholderFormat) *DeleteBuilder {
	b.format = format
	return b
}

func (b *DeleteBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("delete table is required")
	}
	if len(b.where) == 0 {
		return "", nil, fmt.Errorf("delete without where clause is not allowed")
	}

	s := &state{format: b.format}
	s.buf.WriteString("DELETE FROM ")
	s.buf.WriteString(b.table)
	appendWhereClause(s, b.where)
	return s.buf.String(), s.args, nil
}

func appendWhereClause(s *state, conditions []Condition) {
	if len(conditions) == 0 {
		return
	}
	s.buf.WriteString(" WHERE ")
	for i, c := range conditions {
		if i > 0 {
			s.buf.WriteString(" AND ")
		}
		c.appendSQL(s)
	}
}

func appendListClause(s *state, keyword string, parts []string) {
	if len(parts) == 0 {
		return
	}
	s.buf.WriteString(keyword)
	s.buf.WriteString(strings.Join(parts, ", "))
}
