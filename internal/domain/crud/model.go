package crud

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// Page selects a window of a list result.
type Page struct {
	Limit  int
	Offset int
}

func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// BulkOptions controls createMany/deleteMany. With Atomic set the whole
// batch commits or nothing does; otherwise every row succeeds or fails alone.
type BulkOptions struct {
	Atomic bool
}

// RowResult is the outcome of one input row of a bulk operation.
type RowResult struct {
	Index int    `json:"index"`
	ID    string `json:"id,omitempty"`
	Err   error  `json:"-"`
}

func (r RowResult) OK() bool {
	return r.Err == nil
}

// Failed counts the rows of a bulk result that did not apply.
func Failed(results []RowResult) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

// DeleteResult describes one committed delete. Deletes cascade to the
// player_match_stats rows of a player or match.
type DeleteResult struct {
	ID            string `json:"id"`
	CascadedStats int64  `json:"cascaded_stats"`
}
