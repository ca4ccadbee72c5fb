package rawdata

import "time"

// Payload is one provider response kept verbatim next to the rows that were
// normalized from it, so a bad import can be traced back to its source.
type Payload struct {
	Source      string
	Endpoint    string
	EntityType  string
	EntityKey   string
	PayloadJSON string
	PayloadHash string
	FetchedAt   time.Time
}
