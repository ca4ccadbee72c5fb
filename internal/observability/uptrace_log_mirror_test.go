package observability

import (
	"testing"

	otellog "go.opentelemetry.io/otel/log"
)

func TestShouldSkipUptraceLog(t *testing.T) {
	if !shouldSkipUptraceLog("http request", []any{"method", "GET", "path", "/healthz"}) {
		t.Fatalf("expected health check log to be skipped")
	}
	if shouldSkipUptraceLog("http request", []any{"path", "/v1/queries/top_run_scorers"}) {
		t.Fatalf("did not expect query request log to be skipped")
	}
	if shouldSkipUptraceLog("live refresh failed", []any{"path", "/healthz"}) {
		t.Fatalf("did not expect non-request event to be skipped")
	}
}

func TestBuildOTelLogAttributes(t *testing.T) {
	attrs := buildOTelLogAttributes([]any{"match_id", "cb-match-89654", "attempt", 2, "payload"})
	if len(attrs) != 3 {
		t.Fatalf("expected 3 attributes, got %d", len(attrs))
	}
	if attrs[0].Key != "match_id" || attrs[0].Value.AsString() != "cb-match-89654" {
		t.Fatalf("unexpected match_id attribute")
	}
	if attrs[1].Key != "attempt" || attrs[1].Value.AsInt64() != 2 {
		t.Fatalf("unexpected attempt attribute")
	}
	if attrs[2].Key != "payload" || attrs[2].Value.Kind() != otellog.KindEmpty {
		t.Fatalf("unexpected payload attribute")
	}
}

func TestBuildOTelLogAttributes_MasksSecrets(t *testing.T) {
	attrs := buildOTelLogAttributes([]any{"admin_token", "admin-secret", "X-RapidAPI-Key", "k", "api_key", "rapid"})
	if attrs[0].Value.AsString() != "***" {
		t.Fatalf("admin token leaked: %q", attrs[0].Value.AsString())
	}
	if attrs[2].Value.AsString() != "***" {
		t.Fatalf("api key leaked: %q", attrs[2].Value.AsString())
	}
}

func TestToOTelLogValue_CompositeAsJSON(t *testing.T) {
	v := toOTelLogValue(map[string]any{"runs": 112, "not_out": true})
	if v.Kind() != otellog.KindString {
		t.Fatalf("expected string value, got %s", v.Kind())
	}
	if v.AsString() != `{"not_out":true,"runs":112}` {
		t.Fatalf("unexpected encoding: %s", v.AsString())
	}

	ids := toOTelLogValue([]string{"91234", "91240"})
	if ids.Kind() != otellog.KindSlice || len(ids.AsSlice()) != 2 {
		t.Fatalf("expected a two item slice, got %s", ids.Kind())
	}
}
