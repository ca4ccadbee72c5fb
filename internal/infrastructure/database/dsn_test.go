package database

import (
	"strings"
	"testing"
)

func TestSQLiteDSN_AddsPragmas(t *testing.T) {
	got := SQLiteDSN("/tmp/cricket.db", false)
	for _, want := range []string{"_pragma=foreign_keys(1)", "_pragma=busy_timeout(5000)", "_txlock=immediate", "_time_format=sqlite"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in %q", want, got)
		}
	}
	if strings.Contains(got, "query_only") {
		t.Fatalf("primary handle must not be query_only: %q", got)
	}
	if !strings.HasPrefix(got, "/tmp/cricket.db?") {
		t.Fatalf("unexpected prefix: %q", got)
	}
}

func TestSQLiteDSN_ReadOnly(t *testing.T) {
	got := SQLiteDSN("sqlite:///tmp/cricket.db?_pragma=busy_timeout(100)", true)
	if !strings.Contains(got, "_pragma=query_only(1)") {
		t.Fatalf("expected query_only pragma in %q", got)
	}
	if strings.Count(got, "busy_timeout") != 1 {
		t.Fatalf("expected caller busy_timeout to be kept once: %q", got)
	}
	if strings.Contains(got, "_txlock") {
		t.Fatalf("read-only handle should not take write locks: %q", got)
	}
}

func TestDBNameFromURL(t *testing.T) {
	cases := map[string]string{
		"postgres://u:p@localhost:5432/cricket?sslmode=disable": "cricket",
		"host=localhost dbname='analytics' user=u":              "analytics",
		"/var/lib/data/cricket.db?_pragma=foreign_keys(1)":      "cricket",
	}
	for in, want := range cases {
		if got := DBNameFromURL(in); got != want {
			t.Fatalf("DBNameFromURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatQueryForTrace(t *testing.T) {
	got := formatQueryForTrace("SELECT  *\n\tFROM players ")
	if got != "SELECT * FROM players" {
		t.Fatalf("unexpected formatted query %q", got)
	}
	long := strings.Repeat("x", maxTracedQueryLength+10)
	if got := formatQueryForTrace(long); len(got) != maxTracedQueryLength+3 {
		t.Fatalf("expected truncated query, got len %d", len(got))
	}
}
