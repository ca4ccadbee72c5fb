package match

import (
	"context"
	"testing"
	"time"
)

func validMatch() Match {
	return Match{
		Team1:  "India",
		Team2:  "Australia",
		Venue:  "Eden Gardens",
		Date:   time.Date(2024, 3, 10, 14, 30, 0, 0, time.UTC),
		Format: "odi",
	}.Normalize()
}

func TestMatchNormalize(t *testing.T) {
	m := validMatch()
	if m.Format != FormatODI {
		t.Fatalf("unexpected format %q", m.Format)
	}
	if m.Status != StatusScheduled {
		t.Fatalf("unexpected status %q", m.Status)
	}
	if m.Title != "India vs Australia" {
		t.Fatalf("unexpected title %q", m.Title)
	}
	if m.Date.Hour() != 0 {
		t.Fatalf("expected date without time, got %s", m.Date)
	}
}

func TestMatchValidate(t *testing.T) {
	ctx := context.Background()
	if err := validMatch().Validate(ctx); err != nil {
		t.Fatalf("expected valid match, got %v", err)
	}

	same := validMatch()
	same.Team2 = "india"
	if err := same.Validate(ctx); err == nil {
		t.Fatalf("expected error when team1 equals team2")
	}

	noDate := validMatch()
	noDate.Date = time.Time{}
	if err := noDate.Validate(ctx); err == nil {
		t.Fatalf("expected error for missing date")
	}

	badWinner := validMatch()
	badWinner.Winner = "England"
	if err := badWinner.Validate(ctx); err == nil {
		t.Fatalf("expected error for winner outside the fixture")
	}

	badFormat := validMatch()
	badFormat.Format = "Hundred"
	if err := badFormat.Validate(ctx); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	if err != nil || d.Format(DateLayout) != "2024-02-29" {
		t.Fatalf("parse leap day: %v %s", err, d)
	}
	if _, err := ParseDate("2023-02-29"); err == nil {
		t.Fatalf("expected error for invalid calendar date")
	}
	if _, err := ParseDate("10/03/2024"); err == nil {
		t.Fatalf("expected error for non ISO date")
	}
}

func TestNormalizeStatus(t *testing.T) {
	cases := map[string]string{
		"In Progress": StatusLive,
		"Complete":    StatusCompleted,
		"Preview":     StatusScheduled,
		"Abandon":     StatusAbandoned,
	}
	for in, want := range cases {
		if got := NormalizeStatus(in); got != want {
			t.Fatalf("NormalizeStatus(%q) = %q, want %q", in, got, want)
		}
	}
}
