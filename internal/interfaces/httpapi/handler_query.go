package httpapi

import (
	"fmt"
	"net/http"

	"github.com/riskibarqy/cricket-analytics/internal/usecase"
)

type customQueryRequest struct {
	Query string `json:"query" validate:"required,max=20000"`
}

func (h *Handler) ListQueries(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListQueries")
	defer span.End()

	defs, err := h.services.Queries.ListQueries(ctx, r.URL.Query().Get("tier"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, defs)
}

// RunQuery runs a catalog query with the query string as its parameters.
func (h *Handler) RunQuery(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunQuery")
	defer span.End()

	result, err := h.services.Queries.RunQuery(ctx, r.PathValue("name"), queryParams(r))
	if err != nil {
		h.logger.WarnContext(ctx, "query failed", "query", r.PathValue("name"), "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) ExportQueryCSV(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ExportQueryCSV")
	defer span.End()

	result, err := h.services.Queries.RunQuery(ctx, r.PathValue("name"), queryParams(r))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Query+".csv"))
	w.WriteHeader(http.StatusOK)
	if err := usecase.WriteCSV(w, result.Result); err != nil {
		h.logger.ErrorContext(ctx, "csv export failed", "query", result.Query, "error", err)
	}
}

func (h *Handler) RunCustomQuery(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunCustomQuery")
	defer span.End()

	var req customQueryRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.services.Queries.RunCustom(ctx, req.Query)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Overview")
	defer span.End()

	overview, err := h.services.Queries.Overview(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, overview)
}
