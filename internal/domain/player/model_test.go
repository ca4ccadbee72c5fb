package player

import (
	"context"
	"testing"
	"time"
)

func TestNormalizeRole(t *testing.T) {
	cases := map[string]Role{
		"Batsman":            RoleBatsman,
		"batter":             RoleBatsman,
		"Bowler":             RoleBowler,
		"Bowling Allrounder": RoleAllRounder,
		"all-rounder":        RoleAllRounder,
		"WK-Batsman":         RoleWicketKeeper,
		"Wicket-keeper":      RoleWicketKeeper,
		"":                   "",
		"Umpire":             Role("Umpire"),
	}
	for in, want := range cases {
		if got := NormalizeRole(in); got != want {
			t.Fatalf("NormalizeRole(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPlayerValidate(t *testing.T) {
	ctx := context.Background()
	if err := (Player{Name: "Virat Kohli", Country: "India", Role: RoleBatsman}).Validate(ctx); err != nil {
		t.Fatalf("expected valid player, got %v", err)
	}
	if err := (Player{Country: "India"}).Validate(ctx); err == nil {
		t.Fatalf("expected error for missing name")
	}
	if err := (Player{Name: "X", Role: Role("Umpire")}).Validate(ctx); err == nil {
		t.Fatalf("expected error for invalid role")
	}
}

func TestPatchApply_OnlyTouchesSuppliedFields(t *testing.T) {
	dob := time.Date(1988, 11, 5, 0, 0, 0, 0, time.UTC)
	current := Player{ID: "p1", Name: "Virat Kohli", Country: "India", Role: RoleBatsman, BattingStyle: "Right-hand bat", DateOfBirth: &dob}
	country := "  Bharat "

	got := Patch{Country: &country}.Apply(current)
	if got.Country != "Bharat" {
		t.Fatalf("unexpected country %q", got.Country)
	}
	if got.Name != current.Name || got.Role != current.Role || got.BattingStyle != current.BattingStyle || got.DateOfBirth != current.DateOfBirth {
		t.Fatalf("patch changed untouched fields: %+v", got)
	}
}
