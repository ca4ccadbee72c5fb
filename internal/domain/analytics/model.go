package analytics

import (
	"context"
	"math"
)

// Tier groups catalog queries by join and aggregation complexity.
type Tier string

const (
	TierBeginner     Tier = "beginner"
	TierIntermediate Tier = "intermediate"
	TierAdvanced     Tier = "advanced"
)

// Result is a tabular query result: named columns and positional rows.
// Values are nil, int64, float64, bool or string.
type Result struct {
	Columns   []string `json:"columns"`
	Rows      [][]any  `json:"rows"`
	Truncated bool     `json:"truncated,omitempty"`
}

// ColumnIndex returns the position of column name, or -1.
func (r Result) ColumnIndex(name string) int {
	for i, c := range r.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// RoundFloats rounds every float value to the given number of decimals.
func (r *Result) RoundFloats(decimals int) {
	scale := math.Pow10(decimals)
	for _, row := range r.Rows {
		for i, v := range row {
			if f, ok := v.(float64); ok {
				row[i] = math.Round(f*scale) / scale
			}
		}
	}
}

// Overview is a dashboard summary of the store.
type Overview struct {
	Players          int64  `json:"players"`
	Teams            int64  `json:"teams"`
	Venues           int64  `json:"venues"`
	Series           int64  `json:"series"`
	Matches          int64  `json:"matches"`
	CompletedMatches int64  `json:"completed_matches"`
	Stats            int64  `json:"stats"`
	LatestMatchDate  string `json:"latest_match_date,omitempty"`
}

// Runner executes read-only SQL against the store. args binds :name
// parameters; maxRows caps the result, 0 meaning no cap.
type Runner interface {
	Query(ctx context.Context, query string, args map[string]any, maxRows int) (Result, error)
	Overview(ctx context.Context) (Overview, error)
}
