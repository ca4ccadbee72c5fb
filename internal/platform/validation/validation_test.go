package validation

import (
	"context"
	"strings"
	"testing"
)

type sample struct {
	Name     string `json:"name" validate:"required,max=5"`
	Capacity int    `json:"capacity" validate:"gte=0"`
	Format   string `json:"format" validate:"omitempty,oneof=Test ODI T20I"`
}

func TestStruct_FlattensFieldErrors(t *testing.T) {
	err := Struct(context.Background(), sample{Name: "", Capacity: -1, Format: "Hundred"})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	msg := err.Error()
	for _, want := range []string{"name is required", "capacity must be >= 0", "format must be one of [Test ODI T20I]"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected %q in %q", want, msg)
		}
	}
}

func TestStruct_Valid(t *testing.T) {
	if err := Struct(context.Background(), sample{Name: "Lords", Capacity: 30000, Format: "ODI"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
