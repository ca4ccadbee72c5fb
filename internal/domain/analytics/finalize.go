package analytics

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

var finalizers = map[string]func(Result) (Result, error){
	"consistency": finalizeConsistency,
}

// finalizeConsistency turns the mean and mean square of innings runs into a
// standard deviation and coefficient of variation, then orders the most
// consistent batters first. SQLite has no SQRT, so this happens here.
func finalizeConsistency(in Result) (Result, error) {
	avgIdx := in.ColumnIndex("average_runs")
	msIdx := in.ColumnIndex("mean_square")
	nameIdx := in.ColumnIndex("name")
	if avgIdx < 0 || msIdx < 0 || nameIdx < 0 {
		return Result{}, fmt.Errorf("result lacks average_runs, mean_square or name")
	}

	out := Result{Truncated: in.Truncated}
	for i, c := range in.Columns {
		if i != msIdx {
			out.Columns = append(out.Columns, c)
		}
	}
	out.Columns = append(out.Columns, "std_dev", "coefficient_of_variation")

	type ranked struct {
		row  []any
		std  float64
		name string
	}
	rows := make([]ranked, 0, len(in.Rows))
	for _, row := range in.Rows {
		avg, okAvg := toFloat(row[avgIdx])
		ms, okMS := toFloat(row[msIdx])

		next := make([]any, 0, len(out.Columns))
		for i, v := range row {
			if i != msIdx {
				next = append(next, v)
			}
		}

		std := math.Inf(1)
		if okAvg && okMS {
			std = math.Sqrt(math.Max(0, ms-avg*avg))
			next = append(next, std)
			if avg > 0 {
				next = append(next, std/avg)
			} else {
				next = append(next, nil)
			}
		} else {
			next = append(next, nil, nil)
		}

		name, _ := row[nameIdx].(string)
		rows = append(rows, ranked{row: next, std: std, name: name})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].std != rows[j].std {
			return rows[i].std < rows[j].std
		}
		return strings.ToLower(rows[i].name) < strings.ToLower(rows[j].name)
	})
	for _, r := range rows {
		out.Rows = append(out.Rows, r.row)
	}
	return out, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}
