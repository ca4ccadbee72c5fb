package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/riskibarqy/cricket-analytics/internal/domain/crud"
	"github.com/riskibarqy/cricket-analytics/internal/domain/match"
	"github.com/riskibarqy/cricket-analytics/internal/domain/player"
	"github.com/riskibarqy/cricket-analytics/internal/domain/playerstats"
	"github.com/riskibarqy/cricket-analytics/internal/domain/series"
	"github.com/riskibarqy/cricket-analytics/internal/domain/team"
	"github.com/riskibarqy/cricket-analytics/internal/domain/venue"
	"github.com/riskibarqy/cricket-analytics/internal/platform/logging"
)

type crudPort[T any, F any, P any] interface {
	Create(ctx context.Context, item T) (T, error)
	Get(ctx context.Context, id string) (T, error)
	Update(ctx context.Context, id string, p P) (T, error)
	Delete(ctx context.Context, id string) (crud.DeleteResult, error)
	List(ctx context.Context, filter F, page crud.Page) ([]T, error)
	CreateMany(ctx context.Context, items []T, opts crud.BulkOptions) ([]crud.RowResult, error)
	DeleteMany(ctx context.Context, ids []string, opts crud.BulkOptions) ([]crud.RowResult, error)
}

// resource serves the CRUD routes of one entity. In and PatchIn are the
// wire shapes decoded from request bodies.
type resource[T any, F any, P any, In any, PatchIn any] struct {
	name        string
	svc         crudPort[T, F, P]
	logger      *logging.Logger
	validate    func(ctx context.Context, payload any) error
	toItem      func(In) (T, error)
	toPatch     func(PatchIn) (P, error)
	filter      func(url.Values) (F, error)
	present     func(T) any
	spanPrefix  string
	pathIDParam string
}

type bulkCreateRequest[In any] struct {
	Items  []In `json:"items" validate:"required,min=1,max=500"`
	Atomic bool `json:"atomic"`
}

func (rs resource[T, F, P, In, PatchIn]) list(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), rs.spanPrefix+".List")
	defer span.End()

	page, err := pageFromQuery(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	filter, err := rs.filter(r.URL.Query())
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := rs.svc.List(ctx, filter, page)
	if err != nil {
		rs.logger.WarnContext(ctx, "list failed", "entity", rs.name, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]any, 0, len(items))
	for _, item := range items {
		out = append(out, rs.present(item))
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]any{
		"items":  out,
		"limit":  page.Limit,
		"offset": page.Offset,
	})
}

func (rs resource[T, F, P, In, PatchIn]) get(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), rs.spanPrefix+".Get")
	defer span.End()

	item, err := rs.svc.Get(ctx, r.PathValue(rs.pathIDParam))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, rs.present(item))
}

func (rs resource[T, F, P, In, PatchIn]) create(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), rs.spanPrefix+".Create")
	defer span.End()

	var req In
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := rs.validate(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}
	item, err := rs.toItem(req)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	created, err := rs.svc.Create(ctx, item)
	if err != nil {
		rs.logger.WarnContext(ctx, "create failed", "entity", rs.name, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusCreated, rs.present(created))
}

func (rs resource[T, F, P, In, PatchIn]) update(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), rs.spanPrefix+".Update")
	defer span.End()

	var req PatchIn
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	p, err := rs.toPatch(req)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	updated, err := rs.svc.Update(ctx, r.PathValue(rs.pathIDParam), p)
	if err != nil {
		rs.logger.WarnContext(ctx, "update failed", "entity", rs.name, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, rs.present(updated))
}

func (rs resource[T, F, P, In, PatchIn]) remove(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), rs.spanPrefix+".Delete")
	defer span.End()

	result, err := rs.svc.Delete(ctx, r.PathValue(rs.pathIDParam))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, result)
}

func (rs resource[T, F, P, In, PatchIn]) bulkCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), rs.spanPrefix+".BulkCreate")
	defer span.End()

	var req bulkCreateRequest[In]
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := rs.validate(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	items := make([]T, 0, len(req.Items))
	for i, in := range req.Items {
		item, err := rs.toItem(in)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("items[%d]: %w", i, err))
			return
		}
		items = append(items, item)
	}

	results, err := rs.svc.CreateMany(ctx, items, crud.BulkOptions{Atomic: req.Atomic})
	if err != nil {
		rs.logger.WarnContext(ctx, "atomic bulk create rolled back", "entity", rs.name, "error", err)
		writeError(ctx, w, err)
		return
	}
	status := http.StatusCreated
	if crud.Failed(results) > 0 {
		status = http.StatusMultiStatus
	}
	writeSuccess(ctx, w, status, bulkToDTO(results, req.Atomic))
}

func (rs resource[T, F, P, In, PatchIn]) bulkDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), rs.spanPrefix+".BulkDelete")
	defer span.End()

	var req bulkDeleteRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := rs.validate(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	results, err := rs.svc.DeleteMany(ctx, req.IDs, crud.BulkOptions{Atomic: req.Atomic})
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	status := http.StatusOK
	if crud.Failed(results) > 0 {
		status = http.StatusMultiStatus
	}
	writeSuccess(ctx, w, status, bulkToDTO(results, req.Atomic))
}

// register mounts the resource under /v1/{plural}. Reads are public, writes
// go through guard.
func (rs resource[T, F, P, In, PatchIn]) register(mux *http.ServeMux, plural string, guard func(http.Handler) http.Handler) {
	base := "/v1/" + plural
	item := base + "/{" + rs.pathIDParam + "}"

	mux.HandleFunc("GET "+base, rs.list)
	mux.HandleFunc("GET "+item, rs.get)
	mux.Handle("POST "+base, guard(http.HandlerFunc(rs.create)))
	mux.Handle("POST "+base+"/bulk", guard(http.HandlerFunc(rs.bulkCreate)))
	mux.Handle("POST "+base+"/bulk-delete", guard(http.HandlerFunc(rs.bulkDelete)))
	mux.Handle("PATCH "+item, guard(http.HandlerFunc(rs.update)))
	mux.Handle("DELETE "+item, guard(http.HandlerFunc(rs.remove)))
}

func identity[T any](v T) (T, error) { return v, nil }

func present[T any](v T) any { return v }

func (h *Handler) playerResource() resource[player.Player, player.Filter, player.Patch, playerRequest, playerPatchRequest] {
	return resource[player.Player, player.Filter, player.Patch, playerRequest, playerPatchRequest]{
		name:     "player",
		svc:      h.services.Players,
		logger:   h.logger,
		validate: h.validateRequest,
		toItem:   playerRequest.toDomain,
		toPatch:  playerPatchRequest.toDomain,
		filter: func(q url.Values) (player.Filter, error) {
			return player.Filter{
				Search:  strings.TrimSpace(q.Get("search")),
				Country: strings.TrimSpace(q.Get("country")),
				Role:    player.NormalizeRole(q.Get("role")),
			}, nil
		},
		present:     playerToDTO,
		spanPrefix:  "httpapi.Handler.Players",
		pathIDParam: "playerID",
	}
}

func (h *Handler) matchResource() resource[match.Match, match.Filter, match.Patch, matchRequest, matchPatchRequest] {
	return resource[match.Match, match.Filter, match.Patch, matchRequest, matchPatchRequest]{
		name:     "match",
		svc:      h.services.Matches,
		logger:   h.logger,
		validate: h.validateRequest,
		toItem:   matchRequest.toDomain,
		toPatch:  matchPatchRequest.toDomain,
		filter: func(q url.Values) (match.Filter, error) {
			f := match.Filter{
				Search:   strings.TrimSpace(q.Get("search")),
				Team:     strings.TrimSpace(q.Get("team")),
				Format:   match.NormalizeFormat(q.Get("format")),
				SeriesID: strings.TrimSpace(q.Get("series_id")),
			}
			if status := strings.TrimSpace(q.Get("status")); status != "" {
				f.Status = match.NormalizeStatus(status)
			}
			from, to := q.Get("from"), q.Get("to")
			var err error
			if f.From, err = parseDateField("from", &from); err != nil {
				return match.Filter{}, err
			}
			if f.To, err = parseDateField("to", &to); err != nil {
				return match.Filter{}, err
			}
			return f, nil
		},
		present:     matchToDTO,
		spanPrefix:  "httpapi.Handler.Matches",
		pathIDParam: "matchID",
	}
}

func (h *Handler) seriesResource() resource[series.Series, series.Filter, series.Patch, seriesRequest, seriesPatchRequest] {
	return resource[series.Series, series.Filter, series.Patch, seriesRequest, seriesPatchRequest]{
		name:     "series",
		svc:      h.services.Series,
		logger:   h.logger,
		validate: h.validateRequest,
		toItem:   seriesRequest.toDomain,
		toPatch:  seriesPatchRequest.toDomain,
		filter: func(q url.Values) (series.Filter, error) {
			year, err := intParam(q, "year")
			if err != nil {
				return series.Filter{}, err
			}
			return series.Filter{
				Search:      strings.TrimSpace(q.Get("search")),
				HostCountry: strings.TrimSpace(q.Get("host_country")),
				Year:        year,
			}, nil
		},
		present:     seriesToDTO,
		spanPrefix:  "httpapi.Handler.Series",
		pathIDParam: "seriesID",
	}
}

func (h *Handler) venueResource() resource[venue.Venue, venue.Filter, venue.Patch, venue.Venue, venue.Patch] {
	return resource[venue.Venue, venue.Filter, venue.Patch, venue.Venue, venue.Patch]{
		name:     "venue",
		svc:      h.services.Venues,
		logger:   h.logger,
		validate: h.validateRequest,
		toItem:   identity[venue.Venue],
		toPatch:  identity[venue.Patch],
		filter: func(q url.Values) (venue.Filter, error) {
			minCapacity, err := intParam(q, "min_capacity")
			if err != nil {
				return venue.Filter{}, err
			}
			return venue.Filter{
				Search:      strings.TrimSpace(q.Get("search")),
				Country:     strings.TrimSpace(q.Get("country")),
				MinCapacity: minCapacity,
			}, nil
		},
		present:     present[venue.Venue],
		spanPrefix:  "httpapi.Handler.Venues",
		pathIDParam: "venueID",
	}
}

func (h *Handler) teamResource() resource[team.Team, team.Filter, team.Patch, team.Team, team.Patch] {
	return resource[team.Team, team.Filter, team.Patch, team.Team, team.Patch]{
		name:     "team",
		svc:      h.services.Teams,
		logger:   h.logger,
		validate: h.validateRequest,
		toItem:   identity[team.Team],
		toPatch:  identity[team.Patch],
		filter: func(q url.Values) (team.Filter, error) {
			return team.Filter{
				Search:   strings.TrimSpace(q.Get("search")),
				Country:  strings.TrimSpace(q.Get("country")),
				TeamType: strings.TrimSpace(q.Get("team_type")),
			}, nil
		},
		present:     present[team.Team],
		spanPrefix:  "httpapi.Handler.Teams",
		pathIDParam: "teamID",
	}
}

func (h *Handler) statResource() resource[playerstats.Stat, playerstats.Filter, playerstats.Patch, playerstats.Stat, playerstats.Patch] {
	return resource[playerstats.Stat, playerstats.Filter, playerstats.Patch, playerstats.Stat, playerstats.Patch]{
		name:     "player_match_stat",
		svc:      h.services.Stats,
		logger:   h.logger,
		validate: h.validateStat,
		toItem:   identity[playerstats.Stat],
		toPatch:  identity[playerstats.Patch],
		filter: func(q url.Values) (playerstats.Filter, error) {
			return playerstats.Filter{
				PlayerID: strings.TrimSpace(q.Get("player_id")),
				MatchID:  strings.TrimSpace(q.Get("match_id")),
			}, nil
		},
		present:     present[playerstats.Stat],
		spanPrefix:  "httpapi.Handler.Stats",
		pathIDParam: "statID",
	}
}

// validateStat skips struct validation of single stat bodies; the service
// validates them together with the derived natural id.
func (h *Handler) validateStat(ctx context.Context, payload any) error {
	if _, ok := payload.(playerstats.Stat); ok {
		return nil
	}
	return h.validateRequest(ctx, payload)
}
