package jobqueue

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/cricket-analytics/internal/platform/logging"
	"github.com/riskibarqy/cricket-analytics/internal/platform/resilience"
	"github.com/riskibarqy/cricket-analytics/internal/usecase"
)

func TestQStashPublisher_EnqueueSendsUpstashHeaders(t *testing.T) {
	var (
		gotURI     string
		gotHeaders http.Header
		gotBody    string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURI = r.RequestURI
		gotHeaders = r.Header.Clone()
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	publisher := NewQStashPublisher(QStashPublisherConfig{
		BaseURL:       server.URL,
		Token:         "qstash-token",
		TargetBaseURL: "https://cricket.example.com/",
		Retries:       3,
		AdminToken:    "admin-secret",
	}, logging.NewNop())

	err := publisher.Enqueue(context.Background(), "v1/ingest/live", nil, 90*time.Second, "ingest-live-all-20250310T093000Z")
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	if !strings.HasSuffix(gotURI, "/v2/publish/https://cricket.example.com/v1/ingest/live") {
		t.Fatalf("unexpected publish uri: %s", gotURI)
	}
	checks := map[string]string{
		"Authorization":            "Bearer qstash-token",
		"Upstash-Method":           http.MethodPost,
		"Upstash-Retries":          "3",
		"Upstash-Delay":            "90s",
		"Upstash-Deduplication-Id": "ingest-live-all-20250310T093000Z",
		forwardTokenHeader:         "admin-secret",
	}
	for header, want := range checks {
		if got := gotHeaders.Get(header); got != want {
			t.Fatalf("header %s: got=%q want=%q", header, got, want)
		}
	}
	if gotBody != "{}" {
		t.Fatalf("unexpected body: %s", gotBody)
	}
}

func TestQStashPublisher_ServerErrorIsDependencyUnavailable(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	publisher := NewQStashPublisher(QStashPublisherConfig{
		BaseURL:       server.URL,
		Token:         "t",
		TargetBaseURL: "https://cricket.example.com",
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 1,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	}, logging.NewNop())

	err := publisher.Enqueue(context.Background(), "/v1/ingest/recent", nil, 0, "")
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected dependency unavailable, got %v", err)
	}

	// The breaker is open now, so the second call never reaches the server.
	err = publisher.Enqueue(context.Background(), "/v1/ingest/recent", nil, 0, "")
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected dependency unavailable from open breaker, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected one upstream call, got %d", calls.Load())
	}
}

func TestQStashPublisher_RejectsBadTarget(t *testing.T) {
	publisher := NewQStashPublisher(QStashPublisherConfig{
		BaseURL:       "https://qstash.example.com",
		TargetBaseURL: "ftp://cricket.example.com",
	}, logging.NewNop())

	if err := publisher.Enqueue(context.Background(), "/v1/ingest/live", nil, 0, ""); err == nil {
		t.Fatalf("expected error for unsupported target scheme")
	}
	if err := publisher.Enqueue(context.Background(), " / ", nil, 0, ""); err == nil {
		t.Fatalf("expected error for empty job path")
	}
}

func TestNormalizeDelay(t *testing.T) {
	cases := map[time.Duration]string{
		0:                       "0s",
		-time.Second:            "0s",
		1400 * time.Millisecond: "1s",
		2 * time.Minute:         "120s",
	}
	for in, want := range cases {
		if got := normalizeDelay(in); got != want {
			t.Fatalf("normalizeDelay(%s): got=%q want=%q", in, got, want)
		}
	}
}

func TestQStashPublisher_DisabledBreakerKeepsCallingUpstream(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	publisher := NewQStashPublisher(QStashPublisherConfig{
		BaseURL:        server.URL,
		Token:          "t",
		TargetBaseURL:  "https://cricket.example.com",
		CircuitBreaker: resilience.CircuitBreakerConfig{Enabled: false, FailureThreshold: 1},
	}, logging.NewNop())

	for i := 0; i < 3; i++ {
		err := publisher.Enqueue(context.Background(), "/v1/ingest/live", nil, 0, "")
		if !errors.Is(err, usecase.ErrDependencyUnavailable) {
			t.Fatalf("call %d: expected dependency unavailable, got %v", i, err)
		}
	}
	if calls.Load() != 3 {
		t.Fatalf("expected three upstream calls, got %d", calls.Load())
	}
}
