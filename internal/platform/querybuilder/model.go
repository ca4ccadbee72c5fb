package querybuilder

import (
	"fmt"
	"reflect"
	"strings"
)

// InsertModel builds an INSERT for every db-tagged field of model.
func InsertModel(table string, model any, format PlaceholderFormat) (string, []any, error) {
	cols, vals, err := columnsAndValuesFromModel(model)
	if err != nil {
		return "", nil, err
	}
	return InsertInto(table).
		Columns(cols...).
		Values(vals...).
		PlaceholderFormat(format).
		ToSQL()
}

// UpdateModel builds an UPDATE that writes every db-tagged field of model
// except keyColumn and the columns listed in skip, keyed by keyColumn.
func UpdateModel(table, keyColumn string, model any, format PlaceholderFormat, skip ...string) (string, []any, error) {
	cols, vals, err := columnsAndValuesFromModel(model)
	if err != nil {
		return "", nil, err
	}

	skipped := make(map[string]struct{}, len(skip)+1)
	skipped[keyColumn] = struct{}{}
	for _, col := range skip {
		skipped[col] = struct{}{}
	}

	builder := Update(table).PlaceholderFormat(format)
	var key any
	found := false
	for i, col := range cols {
		if col == keyColumn {
			key = vals[i]
			found = true
		}
		if _, ok := skipped[col]; ok {
			continue
		}
		builder.Set(col, vals[i])
	}
	if !found {
		return "", nil, fmt.Errorf("model has no %s column", keyColumn)
	}

	return builder.Where(Eq(keyColumn, key)).ToSQL()
}

// Columns lists the db column names of model in field order.
func Columns(model any) []string {
	cols, _, err := columnsAndValuesFromModel(model)
	if err != nil {
		return nil
	}
	return cols
}

func columnsAndValuesFromModel(model any) ([]string, []any, error) {
	value := reflect.ValueOf(model)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return nil, nil, fmt.Errorf("model cannot be nil")
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("model must be struct")
	}

	typ := value.Type()
	cols := make([]string, 0, typ.NumField())
	vals := make([]any, 0, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if field.PkgPath != "" {
			continue
		}
		tag := strings.TrimSpace(field.Tag.Get("db"))
		if tag == "" || tag == "-" {
			continue
		}
		col := strings.TrimSpace(strings.Split(tag, ",")[0])
		if col == "" || col == "-" {
			continue
		}
		cols = append(cols, col)
		vals = append(vals, value.Field(i).Interface())
	}

	if len(cols) == 0 {
		return nil, nil, fmt.Errorf("model has no db columns")
	}
	return cols, vals, nil
}
