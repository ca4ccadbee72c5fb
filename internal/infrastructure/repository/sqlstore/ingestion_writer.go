package sqlstore

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/cricket-analytics/internal/domain/ingestion"
	"github.com/riskibarqy/cricket-analytics/internal/domain/rawdata"
)

// IngestionWriter commits a normalized provider batch. Rows are upserted so
// re-running a refresh is idempotent.
type IngestionWriter struct {
	db *sqlx.DB
}

func NewIngestionWriter(db *sqlx.DB) *IngestionWriter {
	return &IngestionWriter{db: db}
}

type upsertItem struct {
	what     string
	key      string
	table    string
	row      any
	conflict []string
	rules    upsertRules
}

// Provider rows are sparse: a live score knows a ground by name only and a
// team's type is guessed from the match format. These rules keep what an
// operator or a richer endpoint stored earlier.
var (
	seriesUpsertRules = upsertRules{
		keepIfEmpty:  []string{"series_type", "host_country", "start_date", "end_date"},
		keepIfZero:   []string{"total_matches"},
		placeholders: map[string]string{"name": "id"},
	}
	teamUpsertRules = upsertRules{
		keepIfEmpty: []string{"country"},
		keepStored:  []string{"team_type"},
	}
	venueUpsertRules = upsertRules{
		keepIfEmpty: []string{"city", "country", "pitch_type"},
		keepIfZero:  []string{"capacity"},
	}
	playerUpsertRules = upsertRules{
		keepIfEmpty: []string{"country", "playing_role", "batting_style", "bowling_style", "date_of_birth"},
	}
	matchUpsertRules = upsertRules{
		keepIfEmpty: []string{"series_id", "venue", "city", "toss_winner", "toss_decision", "winner", "victory_type", "result"},
	}
)

// WriteBatch writes series, teams, venues, players and matches before the
// stats that reference them. Any failure rolls back the whole batch.
func (w *IngestionWriter) WriteBatch(ctx context.Context, batch ingestion.Batch) error {
	if batch.Empty() && len(batch.Payloads) == 0 {
		return nil
	}

	items := make([]upsertItem, 0, len(batch.Series)+len(batch.Teams)+len(batch.Venues)+
		len(batch.Players)+len(batch.Matches)+len(batch.Stats)+len(batch.Payloads))
	for _, s := range batch.Series {
		items = append(items, upsertItem{"series", s.ID, "series", seriesToRow(s), []string{"id"}, seriesUpsertRules})
	}
	for _, t := range batch.Teams {
		items = append(items, upsertItem{"team", t.Name, "teams", teamToRow(t), []string{"name"}, teamUpsertRules})
	}
	for _, v := range batch.Venues {
		items = append(items, upsertItem{"venue", v.Name, "venues", venueToRow(v), []string{"name"}, venueUpsertRules})
	}
	for _, p := range batch.Players {
		items = append(items, upsertItem{"player", p.ID, "players", playerToRow(p), []string{"id"}, playerUpsertRules})
	}
	for _, m := range batch.Matches {
		items = append(items, upsertItem{"match", m.ID, "matches", matchToRow(m), []string{"id"}, matchUpsertRules})
	}
	for _, s := range batch.Stats {
		items = append(items, upsertItem{"stat", s.ID, "player_match_stats", statToRow(s),
			[]string{"player_id", "match_id", "innings"}, upsertRules{}})
	}
	for _, p := range batch.Payloads {
		items = append(items, upsertItem{"raw payload", p.EntityType + "/" + p.EntityKey, "raw_payloads",
			payloadToRow(p), []string{"entity_type", "entity_key"}, upsertRules{}})
	}

	return withTx(ctx, w.db, func(tx *sqlx.Tx) error {
		for _, item := range items {
			query, args, err := upsertStatement(item.table, item.row, item.conflict, item.rules)
			if err != nil {
				return fmt.Errorf("build upsert %s %s: %w", item.what, item.key, err)
			}
			if _, err := execBuilt(ctx, w.db, tx, query, args); err != nil {
				return mapWriteError(fmt.Sprintf("upsert %s %s", item.what, item.key), err)
			}
		}
		return nil
	})
}

type payloadRow struct {
	EntityType  string  `db:"entity_type"`
	EntityKey   string  `db:"entity_key"`
	Source      string  `db:"source"`
	Endpoint    string  `db:"endpoint"`
	PayloadJSON string  `db:"payload_json"`
	PayloadHash string  `db:"payload_hash"`
	FetchedAt   sqlTime `db:"fetched_at"`
}

func payloadToRow(p rawdata.Payload) payloadRow {
	return payloadRow{
		EntityType:  p.EntityType,
		EntityKey:   p.EntityKey,
		Source:      p.Source,
		Endpoint:    p.Endpoint,
		PayloadJSON: p.PayloadJSON,
		PayloadHash: p.PayloadHash,
		FetchedAt:   newSQLTime(p.FetchedAt),
	}
}

// RawDataRepository reads stored provider payloads.
type RawDataRepository struct {
	db *sqlx.DB
}

func NewRawDataRepository(db *sqlx.DB) *RawDataRepository {
	return &RawDataRepository{db: db}
}

func (r *RawDataRepository) Latest(ctx context.Context, entityType, entityKey string) (rawdata.Payload, bool, error) {
	const query = `
SELECT entity_type, entity_key, source, endpoint, payload_json, payload_hash, fetched_at
FROM raw_payloads
WHERE entity_type = ?
  AND entity_key = ?`

	var row payloadRow
	if err := r.db.GetContext(ctx, &row, r.db.Rebind(query), entityType, entityKey); err != nil {
		if isNotFound(err) {
			return rawdata.Payload{}, false, nil
		}
		return rawdata.Payload{}, false, fmt.Errorf("get raw payload %s/%s: %w", entityType, entityKey, err)
	}

	return rawdata.Payload{
		Source:      row.Source,
		Endpoint:    row.Endpoint,
		EntityType:  row.EntityType,
		EntityKey:   row.EntityKey,
		PayloadJSON: row.PayloadJSON,
		PayloadHash: row.PayloadHash,
		FetchedAt:   row.FetchedAt.Time,
	}, true, nil
}
