package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/cricket-analytics/internal/usecase"
)

func TestWriteSuccess_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSuccess(context.Background(), rec, http.StatusOK, map[string]string{"status": "ok"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	if got, _ := body["apiVersion"].(string); got != "2.0" {
		t.Fatalf("expected apiVersion=2.0, got %v", body["apiVersion"])
	}
	if _, ok := body["data"]; !ok {
		t.Fatalf("expected data key in success response")
	}
	if _, ok := body["error"]; ok {
		t.Fatalf("did not expect error key in success response")
	}
}

func TestWriteError_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, fmt.Errorf("%w: bad payload", usecase.ErrInvalidInput))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	errorObj, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error object in response")
	}
	if got, _ := errorObj["status"].(string); got != "INVALID_ARGUMENT" {
		t.Fatalf("expected error status INVALID_ARGUMENT, got %v", errorObj["status"])
	}
	if got, _ := errorObj["message"].(string); got != "your input was invalid: invalid input: bad payload" {
		t.Fatalf("unexpected user message %q", got)
	}
}

func TestMapError_Taxonomy(t *testing.T) {
	cases := []struct {
		err    error
		status int
		reason string
	}{
		{fmt.Errorf("%w: player p1", usecase.ErrDuplicate), http.StatusConflict, "conflict"},
		{fmt.Errorf("%w: DROP", usecase.ErrWriteNotAllowed), http.StatusForbidden, "writeNotAllowed"},
		{fmt.Errorf("%w: token", usecase.ErrSecurity), http.StatusForbidden, "forbidden"},
		{fmt.Errorf("%w: nope", usecase.ErrUnknownQuery), http.StatusBadRequest, "invalidInput"},
		{fmt.Errorf("%w: player x", usecase.ErrNotFound), http.StatusNotFound, "notFound"},
		{fmt.Errorf("%w: timeout", usecase.ErrUnavailable), http.StatusServiceUnavailable, "dependencyUnavailable"},
		{fmt.Errorf("%w: name", usecase.ErrMissingField), http.StatusBadGateway, "providerPayloadInvalid"},
		{fmt.Errorf("boom"), http.StatusInternalServerError, "internalError"},
	}
	for _, tc := range cases {
		got := mapError(context.Background(), tc.err)
		if got.HTTPStatus != tc.status || got.Reason != tc.reason {
			t.Fatalf("mapError(%v) = %d %s, want %d %s", tc.err, got.HTTPStatus, got.Reason, tc.status, tc.reason)
		}
	}
}

func TestWriteError_InternalHidesDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, fmt.Errorf("pq: password authentication failed"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
	if got := rec.Body.String(); strings.Contains(got, "password") {
		t.Fatalf("internal error detail leaked: %s", got)
	}
}
