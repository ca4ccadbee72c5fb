package crud

import (
	"errors"
	"testing"
)

func TestPageNormalize(t *testing.T) {
	cases := []struct {
		in   Page
		want Page
	}{
		{Page{}, Page{Limit: DefaultLimit}},
		{Page{Limit: 10, Offset: 5}, Page{Limit: 10, Offset: 5}},
		{Page{Limit: 10000, Offset: -3}, Page{Limit: MaxLimit}},
	}
	for _, tc := range cases {
		if got := tc.in.Normalize(); got != tc.want {
			t.Fatalf("normalize %+v: got %+v want %+v", tc.in, got, tc.want)
		}
	}
}

func TestFailed(t *testing.T) {
	results := []RowResult{{Index: 0, ID: "a"}, {Index: 1, Err: errors.New("bad")}, {Index: 2, ID: "c"}}
	if Failed(results) != 1 {
		t.Fatalf("expected 1 failed row")
	}
	if !results[0].OK() || results[1].OK() {
		t.Fatalf("unexpected OK flags")
	}
}
