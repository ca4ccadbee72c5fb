package id

import "testing"

func TestRandomGenerator_Unique(t *testing.T) {
	g := NewRandomGenerator()
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		v, err := g.NewID()
		if err != nil {
			t.Fatalf("new id: %v", err)
		}
		if len(v) != 24 {
			t.Fatalf("unexpected id length %d", len(v))
		}
		if _, ok := seen[v]; ok {
			t.Fatalf("duplicate id %s", v)
		}
		seen[v] = struct{}{}
	}
}

func TestProviderAndStatIDs(t *testing.T) {
	if got := Provider(" Player ", 1413); got != "cb-player-1413" {
		t.Fatalf("unexpected provider id %q", got)
	}
	if got := Stat("cb-player-1", "cb-match-9", 2); got != "cb-match-9:cb-player-1:2" {
		t.Fatalf("unexpected stat id %q", got)
	}
}

func TestProviderName(t *testing.T) {
	cases := map[string]string{
		"Sri Lanka":                 "cb-team-sri-lanka",
		"  Royal Challengers  (B) ": "cb-team-royal-challengers-b",
	}
	for in, want := range cases {
		if got := ProviderName("team", in); got != want {
			t.Fatalf("ProviderName(%q) = %q, want %q", in, got, want)
		}
	}
}
