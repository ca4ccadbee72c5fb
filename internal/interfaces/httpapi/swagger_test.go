package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/riskibarqy/cricket-analytics/internal/platform/logging"
)

func TestOpenAPI_ServesDocumentWithETag(t *testing.T) {
	router := NewRouter(NewHandler(Services{}, logging.NewNop()), logging.NewNop(), RouterConfig{SwaggerEnabled: true})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "/v1/queries/{name}") {
		t.Fatalf("document does not describe the query routes")
	}
	etag := rec.Header().Get("ETag")
	if etag == "" {
		t.Fatalf("expected an ETag header")
	}

	req := httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotModified {
		t.Fatalf("expected 304 for a matching ETag, got %d", rec.Code)
	}
}

func TestOpenAPI_DisabledHidesDocs(t *testing.T) {
	router := NewRouter(NewHandler(Services{}, logging.NewNop()), logging.NewNop(), RouterConfig{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/docs", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 with docs disabled, got %d", rec.Code)
	}
}
