package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/cricket-analytics/external/cricbuzz"
	"github.com/riskibarqy/cricket-analytics/internal/domain/analytics"
	"github.com/riskibarqy/cricket-analytics/internal/domain/ingestion"
	"github.com/riskibarqy/cricket-analytics/internal/infrastructure/repository/sqlstore"
	"github.com/riskibarqy/cricket-analytics/internal/infrastructure/testdb"
	"github.com/riskibarqy/cricket-analytics/internal/platform/cache"
	"github.com/riskibarqy/cricket-analytics/internal/platform/id"
	"github.com/riskibarqy/cricket-analytics/internal/platform/logging"
	"github.com/riskibarqy/cricket-analytics/internal/usecase"
)

const testAdminToken = "admin-secret"

func newTestRouter(t *testing.T, opts ...func(*Services)) http.Handler {
	t.Helper()

	store := testdb.Open(t)
	_, err := sqlstore.BootstrapSeed(context.Background(), store.DB, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	catalog, err := analytics.LoadCatalog()
	require.NoError(t, err)

	logger := logging.NewNop()
	ids := id.NewRandomGenerator()
	queries := usecase.NewQueryService(
		catalog,
		sqlstore.NewQueryRunner(store.DB, store.ReadOnly),
		cache.NewStore[analytics.Result](time.Minute),
		usecase.QueryServiceConfig{Timeout: 5 * time.Second},
		logger,
	)

	services := Services{
		Players: usecase.NewPlayerService(sqlstore.NewPlayerRepository(store.DB), ids, logger),
		Matches: usecase.NewMatchService(sqlstore.NewMatchRepository(store.DB), ids, logger),
		Venues:  usecase.NewVenueService(sqlstore.NewVenueRepository(store.DB), ids, logger),
		Teams:   usecase.NewTeamService(sqlstore.NewTeamRepository(store.DB), ids, logger),
		Series:  usecase.NewSeriesService(sqlstore.NewSeriesRepository(store.DB), ids, logger),
		Stats:   usecase.NewStatService(sqlstore.NewStatRepository(store.DB), ids, logger),
		Queries: queries,
	}
	services.Players.OnChange(queries.Invalidate)
	for _, opt := range opts {
		opt(&services)
	}

	return NewRouter(NewHandler(services, logger), logger, RouterConfig{AdminToken: testAdminToken})
}

func doRequest(t *testing.T, router http.Handler, method, target, body string, admin bool) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if admin {
		req.Header.Set("X-Admin-Token", testAdminToken)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body struct {
		Data  map[string]any `json:"data"`
		Error map[string]any `json:"error"`
	}
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body.Data
}

func errorReason(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body struct {
		Error struct {
			Errors []struct {
				Reason string `json:"reason"`
			} `json:"errors"`
		} `json:"error"`
	}
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	require.NotEmpty(t, body.Error.Errors)
	return body.Error.Errors[0].Reason
}

func TestRouter_Healthz(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/healthz", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_ListPlayersFiltersByCountry(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/v1/players?country=India&limit=3", "", false)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	data := decodeData(t, rec)
	items, _ := data["items"].([]any)
	assert.Len(t, items, 3)
	for _, raw := range items {
		item := raw.(map[string]any)
		assert.Equal(t, "India", item["country"])
	}
	assert.EqualValues(t, 3, data["limit"])
}

func TestRouter_ListRejectsBadPaging(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/v1/matches?limit=ten", "", false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/v1/matches?from=03/01/2025", "", false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_CreatePlayerRequiresAdminToken(t *testing.T) {
	router := newTestRouter(t)
	body := `{"id":"p-new","name":"Shubman Gill","country":"India","playing_role":"batsman","date_of_birth":"1999-09-08"}`

	rec := doRequest(t, router, http.MethodPost, "/v1/players", body, false)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "forbidden", errorReason(t, rec))

	rec = doRequest(t, router, http.MethodPost, "/v1/players", body, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	data := decodeData(t, rec)
	assert.Equal(t, "p-new", data["id"])
	assert.Equal(t, "1999-09-08", data["date_of_birth"])

	rec = doRequest(t, router, http.MethodPost, "/v1/players", body, true)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/v1/players/p-new", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_CreatePlayerValidation(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/v1/players", `{"country":"India"}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/v1/players", `{"name":"X","date_of_birth":"05/11/1988"}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/v1/players", `{"name":"X","nickname":"x"}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_PatchMatch(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPatch, "/v1/matches/seed-match-01", `{"venue":"Brabourne Stadium"}`, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := decodeData(t, rec)
	assert.Equal(t, "Brabourne Stadium", data["venue"])
	assert.Equal(t, "2024-10-12", data["date"])

	rec = doRequest(t, router, http.MethodPatch, "/v1/matches/missing", `{"venue":"x"}`, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_DeletePlayerCascadesStats(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodDelete, "/v1/players/seed-player-01", "", true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := decodeData(t, rec)
	assert.EqualValues(t, 2, data["cascaded_stats"])

	rec = doRequest(t, router, http.MethodGet, "/v1/stats?player_id=seed-player-01", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	items, _ := decodeData(t, rec)["items"].([]any)
	assert.Empty(t, items)
}

func TestRouter_BulkCreateReportsPerRow(t *testing.T) {
	router := newTestRouter(t)
	body := `{"items":[{"name":"Ground A","capacity":1000},{"name":"","capacity":10},{"name":"Ground B","capacity":2000}]}`

	rec := doRequest(t, router, http.MethodPost, "/v1/venues/bulk", body, true)
	require.Equal(t, http.StatusMultiStatus, rec.Code, rec.Body.String())
	data := decodeData(t, rec)
	assert.EqualValues(t, 2, data["succeeded"])
	assert.EqualValues(t, 1, data["failed"])

	atomic := `{"atomic":true,"items":[{"name":"Ground C","capacity":1000},{"name":"","capacity":10}]}`
	rec = doRequest(t, router, http.MethodPost, "/v1/venues/bulk", atomic, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/v1/venues?search=Ground%20C", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	items, _ := decodeData(t, rec)["items"].([]any)
	assert.Empty(t, items)
}

func TestRouter_RunQuery(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/v1/queries/top_run_scorers?limit=3", "", false)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := decodeData(t, rec)
	rows, _ := data["rows"].([]any)
	assert.Len(t, rows, 3)
	assert.Contains(t, rec.Body.String(), "Virat Kohli")

	rec = doRequest(t, router, http.MethodGet, "/v1/queries/top_run_scorers?limit=0", "", false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/v1/queries/no_such_query", "", false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_ExportQueryCSV(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/v1/queries/top_run_scorers/csv?limit=2", "", false)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "top_run_scorers.csv")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "player_id,name,country"))
}

func TestRouter_ListQueriesByTier(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/v1/queries?tier=beginner", "", false)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []analytics.Definition `json:"data"`
	}
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Data)
	for _, def := range body.Data {
		assert.Equal(t, analytics.TierBeginner, def.Tier)
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/queries?tier=expert", "", false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_CustomQueryGuard(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/v1/queries/custom", `{"query":"SELECT COUNT(*) AS n FROM players"}`, false)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rows, _ := decodeData(t, rec)["rows"].([]any)
	require.Len(t, rows, 1)

	rec = doRequest(t, router, http.MethodPost, "/v1/queries/custom", `{"query":"DELETE FROM players"}`, false)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "writeNotAllowed", errorReason(t, rec))

	rec = doRequest(t, router, http.MethodGet, "/v1/players/seed-player-01", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_OverviewSeesWrites(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/v1/overview", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 15, decodeData(t, rec)["players"])

	rec = doRequest(t, router, http.MethodDelete, "/v1/players/seed-player-02", "", true)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/v1/overview", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 14, decodeData(t, rec)["players"])
}

func TestRouter_IngestionWithoutProvider(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/v1/ingest/live", "", true)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/v1/live", "", false)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

type fakeJobQueue struct {
	paths []string
}

func (q *fakeJobQueue) Enqueue(_ context.Context, path string, _ any, _ time.Duration, _ string) error {
	q.paths = append(q.paths, path)
	return nil
}

func TestRouter_ScheduleRefresh(t *testing.T) {
	queue := &fakeJobQueue{}
	router := newTestRouter(t, func(s *Services) {
		s.Scheduler = usecase.NewRefreshSchedulerService(queue, usecase.RefreshSchedulerConfig{}, logging.NewNop())
	})

	rec := doRequest(t, router, http.MethodPost, "/v1/ingest/schedule", `{"kind":"scorecard","match_id":"91234","delay":"15m"}`, true)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	data := decodeData(t, rec)
	assert.Equal(t, "/v1/ingest/scorecards/91234", data["path"])
	assert.Equal(t, []string{"/v1/ingest/scorecards/91234"}, queue.paths)

	rec = doRequest(t, router, http.MethodPost, "/v1/ingest/schedule", `{"kind":"live","delay":"soon"}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/v1/ingest/schedule", `{"kind":"fixtures"}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/v1/ingest/schedule", `{"kind":"live"}`, false)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_ScheduleRefreshWithoutQueue(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/v1/ingest/schedule", `{"kind":"live"}`, true)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

type discardWriter struct{}

func (discardWriter) WriteBatch(context.Context, ingestion.Batch) error { return nil }

// withProviderServer points ingestion at a fake Cricbuzz that knows match
// 91234 and nothing else.
func withProviderServer(t *testing.T) func(*Services) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/mcenter/v1/91234/comm" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"commentaryList":[
			{"commText":"Starc to Gill, FOUR","overNumber":12.4,"event":"FOUR","inningsId":1},
			{"overNumber":12.3},
			{"commText":"Starc to Gill, no run","overNumber":12.2,"event":"NONE","inningsId":1}
		]}`))
	}))
	t.Cleanup(server.Close)

	return func(s *Services) {
		client := cricbuzz.NewClient(cricbuzz.ClientConfig{
			BaseURL: server.URL,
			APIKey:  "test-key",
			Timeout: time.Second,
			Logger:  logging.NewNop(),
		})
		s.Ingestion = usecase.NewIngestionService(client, discardWriter{}, 1, logging.NewNop())
	}
}

func TestRouter_MatchCommentary(t *testing.T) {
	router := newTestRouter(t, withProviderServer(t))

	rec := doRequest(t, router, http.MethodGet, "/v1/matches/cb-match-91234/commentary?limit=5", "", false)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := decodeData(t, rec)
	items, _ := data["items"].([]any)
	require.Len(t, items, 2)
	first := items[0].(map[string]any)
	assert.Equal(t, "12.4", first["delivery"])
	assert.Equal(t, "FOUR", first["event"])
	assert.Equal(t, "Starc to Gill, FOUR", first["text"])
	second := items[1].(map[string]any)
	assert.Equal(t, "12.2", second["delivery"])
	assert.NotContains(t, second, "event")
	assert.EqualValues(t, 1, data["skipped"])

	rec = doRequest(t, router, http.MethodGet, "/v1/matches/91234/commentary?limit=1", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	items, _ = decodeData(t, rec)["items"].([]any)
	assert.Len(t, items, 1)

	rec = doRequest(t, router, http.MethodGet, "/v1/matches/abc/commentary", "", false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/v1/matches/91234/commentary?limit=500", "", false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_ProviderNotFoundIsNotUnavailable(t *testing.T) {
	router := newTestRouter(t, withProviderServer(t))

	rec := doRequest(t, router, http.MethodPost, "/v1/ingest/players/424242", "", true)
	require.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
	assert.Equal(t, "notFound", errorReason(t, rec))

	rec = doRequest(t, router, http.MethodGet, "/v1/matches/555/commentary", "", false)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_CommentaryWithoutProvider(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/v1/matches/91234/commentary", "", false)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
