package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerEntityRoutes(mux *http.ServeMux, handler *Handler, guard func(http.Handler) http.Handler) {
	handler.playerResource().register(mux, "players", guard)
	handler.matchResource().register(mux, "matches", guard)
	handler.venueResource().register(mux, "venues", guard)
	handler.teamResource().register(mux, "teams", guard)
	handler.seriesResource().register(mux, "series", guard)
	handler.statResource().register(mux, "stats", guard)
}

func registerQueryRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/overview", handler.Overview)
	mux.HandleFunc("GET /v1/queries", handler.ListQueries)
	// Custom queries are read-only by construction and stay public.
	mux.HandleFunc("POST /v1/queries/custom", handler.RunCustomQuery)
	mux.HandleFunc("GET /v1/queries/{name}", handler.RunQuery)
	mux.HandleFunc("GET /v1/queries/{name}/csv", handler.ExportQueryCSV)
}

func registerIngestionRoutes(mux *http.ServeMux, handler *Handler, guard func(http.Handler) http.Handler) {
	mux.HandleFunc("GET /v1/live", handler.LiveScores)
	mux.HandleFunc("GET /v1/rankings/{category}", handler.Rankings)
	mux.HandleFunc("GET /v1/matches/{matchID}/commentary", handler.Commentary)

	mux.Handle("POST /v1/ingest/live", guard(http.HandlerFunc(handler.IngestLive)))
	mux.Handle("POST /v1/ingest/recent", guard(http.HandlerFunc(handler.IngestRecent)))
	mux.Handle("POST /v1/ingest/scorecards", guard(http.HandlerFunc(handler.IngestScorecards)))
	mux.Handle("POST /v1/ingest/scorecards/{matchID}", guard(http.HandlerFunc(handler.IngestScorecard)))
	mux.Handle("POST /v1/ingest/players/{providerID}", guard(http.HandlerFunc(handler.ImportPlayer)))
	mux.Handle("POST /v1/ingest/schedule", guard(http.HandlerFunc(handler.ScheduleRefresh)))
}
