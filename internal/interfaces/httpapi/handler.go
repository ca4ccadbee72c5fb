package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/cricket-analytics/internal/domain/crud"
	"github.com/riskibarqy/cricket-analytics/internal/platform/logging"
	"github.com/riskibarqy/cricket-analytics/internal/platform/validation"
	"github.com/riskibarqy/cricket-analytics/internal/usecase"
)

const maxBodyBytes = 4 << 20

// Services are the use cases the API exposes. Ingestion and Scheduler may
// be nil when their credentials are not configured; their routes then
// answer 503.
type Services struct {
	Players   *usecase.PlayerService
	Matches   *usecase.MatchService
	Venues    *usecase.VenueService
	Teams     *usecase.TeamService
	Series    *usecase.SeriesService
	Stats     *usecase.StatService
	Queries   *usecase.QueryService
	Ingestion *usecase.IngestionService
	Scheduler *usecase.RefreshSchedulerService
}

type Handler struct {
	services Services
	logger   *logging.Logger
}

func NewHandler(services Services, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{services: services, logger: logger}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := validation.Struct(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// decodeBody reads a JSON request body into target, rejecting unknown fields.
func decodeBody(r *http.Request, target any) error {
	decoder := sonic.ConfigDefault.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func pageFromQuery(r *http.Request) (crud.Page, error) {
	q := r.URL.Query()
	var page crud.Page
	var err error
	if page.Limit, err = intParam(q, "limit"); err != nil {
		return crud.Page{}, err
	}
	if page.Offset, err = intParam(q, "offset"); err != nil {
		return crud.Page{}, err
	}
	return page.Normalize(), nil
}

func intParam(q url.Values, key string) (int, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", usecase.ErrInvalidInput, key)
	}
	return v, nil
}

func boolQuery(r *http.Request, key string) bool {
	v, _ := strconv.ParseBool(strings.TrimSpace(r.URL.Query().Get(key)))
	return v
}

// queryParams flattens the query string, keeping the first value per key.
func queryParams(r *http.Request) map[string]string {
	values := r.URL.Query()
	out := make(map[string]string, len(values))
	for key, vals := range values {
		if len(vals) > 0 {
			out[key] = vals[0]
		}
	}
	return out
}
