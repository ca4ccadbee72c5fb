package ingest

import (
	"errors"
	"testing"

	"github.com/riskibarqy/cricket-analytics/internal/domain/ingestion"
)

func TestNormalizeCommentaryDeliveries(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		raw       map[string]any
		wantLabel string
		wantEvent string
	}{
		{
			name:      "fractional over",
			raw:       map[string]any{"commText": "Bumrah to Smith, FOUR", "overNumber": 19.6, "inningsId": float64(2), "event": "FOUR"},
			wantLabel: "19.6",
			wantEvent: "FOUR",
		},
		{
			name:      "separate ball number",
			raw:       map[string]any{"commText": "dot ball", "overNumber": "7", "ballNumber": "3", "event": "NONE"},
			wantLabel: "7.3",
		},
		{
			name: "note without delivery",
			raw:  map[string]any{"commText": "Innings break", "overNumber": ""},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			entry, err := NormalizeCommentary(tc.raw)
			if err != nil {
				t.Fatalf("normalize commentary: %v", err)
			}
			if entry.Label() != tc.wantLabel {
				t.Fatalf("label = %q, want %q", entry.Label(), tc.wantLabel)
			}
			if entry.Event != tc.wantEvent {
				t.Fatalf("event = %q, want %q", entry.Event, tc.wantEvent)
			}
		})
	}
}

func TestNormalizeCommentaryErrors(t *testing.T) {
	t.Parallel()

	if _, err := NormalizeCommentary(map[string]any{"overNumber": 3.2}); !errors.Is(err, ingestion.ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
	if _, err := NormalizeCommentary(map[string]any{"commText": "x", "overNumber": "three"}); !errors.Is(err, ingestion.ErrTypeMismatch) {
		t.Fatalf("expected ErrTypeMismatch, got %v", err)
	}
	if _, err := NormalizeCommentary(map[string]any{"commText": "x", "timestamp": true}); !errors.Is(err, ingestion.ErrTypeMismatch) {
		t.Fatalf("expected ErrTypeMismatch for timestamp, got %v", err)
	}
}

func TestCommentaryEntriesKeepsProviderOrder(t *testing.T) {
	t.Parallel()

	rows := CommentaryEntries(map[string]any{"commentaryList": []any{
		map[string]any{"commText": "latest"},
		"not an object",
		map[string]any{"commText": "older"},
	}})
	if len(rows) != 2 || rows[0]["commText"] != "latest" {
		t.Fatalf("unexpected rows %v", rows)
	}
}
