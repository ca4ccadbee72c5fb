package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/riskibarqy/cricket-analytics/internal/domain/ingestion"
	"github.com/riskibarqy/cricket-analytics/internal/usecase"
)

type scorecardsRequest struct {
	MatchIDs []string `json:"match_ids" validate:"required,min=1,max=50"`
}

type scheduleRequest struct {
	Kind    string `json:"kind" validate:"required,oneof=live recent scorecard"`
	MatchID string `json:"match_id" validate:"omitempty,max=64"`
	// Delay is a Go duration such as "90s" or "15m".
	Delay string `json:"delay" validate:"omitempty,max=16"`
}

type ingestSummaryDTO struct {
	ingestion.Summary
	SkippedReasons []string `json:"skipped_reasons,omitempty"`
}

func summaryToDTO(s ingestion.Summary) ingestSummaryDTO {
	out := ingestSummaryDTO{Summary: s}
	for _, rec := range s.Skipped {
		out.SkippedReasons = append(out.SkippedReasons, recordReason(rec))
	}
	return out
}

func recordReason(rec ingestion.RecordError) string {
	reason := rec.Reason
	if reason == "" && rec.Err != nil {
		reason = rec.Err.Error()
	}
	if rec.Key != "" {
		return fmt.Sprintf("#%d %s: %s", rec.Index, rec.Key, reason)
	}
	return fmt.Sprintf("#%d: %s", rec.Index, reason)
}

// ingestionEnabled answers 503 when no provider is configured.
func (h *Handler) ingestionEnabled(w http.ResponseWriter, r *http.Request) bool {
	if h.services.Ingestion != nil {
		return true
	}
	writeError(r.Context(), w, fmt.Errorf("%w: no cricket data provider is configured", usecase.ErrUnavailable))
	return false
}

func (h *Handler) IngestLive(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.IngestLive")
	defer span.End()

	if !h.ingestionEnabled(w, r) {
		return
	}
	summary, err := h.services.Ingestion.RefreshLiveMatches(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "live refresh failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, summaryToDTO(summary))
}

func (h *Handler) IngestRecent(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.IngestRecent")
	defer span.End()

	if !h.ingestionEnabled(w, r) {
		return
	}
	summary, err := h.services.Ingestion.RefreshRecentMatches(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "recent refresh failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, summaryToDTO(summary))
}

func (h *Handler) IngestScorecard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.IngestScorecard")
	defer span.End()

	if !h.ingestionEnabled(w, r) {
		return
	}
	summary, err := h.services.Ingestion.RefreshScorecard(ctx, r.PathValue("matchID"))
	if err != nil {
		h.logger.WarnContext(ctx, "scorecard refresh failed", "match_id", r.PathValue("matchID"), "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, summaryToDTO(summary))
}

func (h *Handler) IngestScorecards(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.IngestScorecards")
	defer span.End()

	if !h.ingestionEnabled(w, r) {
		return
	}
	var req scorecardsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	summary, err := h.services.Ingestion.RefreshScorecards(ctx, req.MatchIDs)
	if err != nil {
		h.logger.WarnContext(ctx, "scorecards refresh failed", "matches", len(req.MatchIDs), "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, summaryToDTO(summary))
}

func (h *Handler) ImportPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ImportPlayer")
	defer span.End()

	if !h.ingestionEnabled(w, r) {
		return
	}
	p, err := h.services.Ingestion.ImportPlayer(ctx, r.PathValue("providerID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, playerToDTO(p))
}

// LiveScores returns the provider's live matches without storing them.
func (h *Handler) LiveScores(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.LiveScores")
	defer span.End()

	if !h.ingestionEnabled(w, r) {
		return
	}
	scores, skipped, err := h.services.Ingestion.LiveScores(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items := make([]map[string]any, 0, len(scores))
	for _, s := range scores {
		items = append(items, map[string]any{
			"match":        matchToDTO(s.Match),
			"series_name":  s.SeriesName,
			"status_text":  s.StatusText,
			"team1_scores": s.Team1Scores,
			"team2_scores": s.Team2Scores,
		})
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]any{
		"items":   items,
		"skipped": len(skipped),
	})
}

type commentaryLineDTO struct {
	ingestion.CommentaryEntry
	Delivery string `json:"delivery,omitempty"`
}

// Commentary returns the latest commentary lines of a match without
// storing them.
func (h *Handler) Commentary(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Commentary")
	defer span.End()

	if !h.ingestionEnabled(w, r) {
		return
	}
	limit, err := intParam(r.URL.Query(), "limit")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	entries, skipped, err := h.services.Ingestion.Commentary(ctx, r.PathValue("matchID"), limit)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items := make([]commentaryLineDTO, 0, len(entries))
	for _, e := range entries {
		items = append(items, commentaryLineDTO{CommentaryEntry: e, Delivery: e.Label()})
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]any{
		"items":   items,
		"skipped": len(skipped),
	})
}

func (h *Handler) Rankings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Rankings")
	defer span.End()

	if !h.ingestionEnabled(w, r) {
		return
	}
	format := strings.TrimSpace(r.URL.Query().Get("format"))
	entries, skipped, err := h.services.Ingestion.Rankings(ctx, r.PathValue("category"), format)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]any{
		"items":   entries,
		"skipped": len(skipped),
	})
}

// ScheduleRefresh queues a live, recent or scorecard refresh to run later
// through the job queue.
func (h *Handler) ScheduleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ScheduleRefresh")
	defer span.End()

	if h.services.Scheduler == nil {
		writeError(ctx, w, fmt.Errorf("%w: no job queue is configured", usecase.ErrUnavailable))
		return
	}
	var req scheduleRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	var delay time.Duration
	if req.Delay != "" {
		parsed, err := time.ParseDuration(req.Delay)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: delay: %v", usecase.ErrInvalidInput, err))
			return
		}
		delay = parsed
	}

	scheduled, err := h.services.Scheduler.Schedule(ctx, usecase.ScheduleInput{
		Kind:    req.Kind,
		MatchID: req.MatchID,
		Delay:   delay,
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusAccepted, scheduled)
}
