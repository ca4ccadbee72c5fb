package httpapi

import (
	"net/http"

	"github.com/riskibarqy/cricket-analytics/internal/platform/logging"
)

// RouterConfig holds the HTTP surface options.
type RouterConfig struct {
	SwaggerEnabled     bool
	CORSAllowedOrigins []string
	// AdminToken guards writes and ingestion; empty leaves them open.
	AdminToken string
}

func NewRouter(handler *Handler, logger *logging.Logger, cfg RouterConfig) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	guard := func(next http.Handler) http.Handler {
		return RequireAdminToken(cfg.AdminToken, next)
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler, cfg.SwaggerEnabled)
	registerEntityRoutes(mux, handler, guard)
	registerQueryRoutes(mux, handler)
	registerIngestionRoutes(mux, handler, guard)

	return RequestTracing(RequestLogging(logger, CORS(cfg.CORSAllowedOrigins, recoverPanic(logger, mux))))
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.recoverPanic")
		defer span.End()

		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(ctx, "panic recovered", "panic", rec, "path", r.URL.Path)
				writeInternalError(ctx, w)
			}
		}()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
