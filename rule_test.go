package petri

import (
	"errors"
	"testing"
)

func TestNormalizeRule(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"b63/s32", "B36/S23"},
		{"B3/S23", "B3/S23"},
		{"B36/S23", "B36/S23"},
		{"b2/s", "B2/S"},
		{"B/S012345678", "B/S012345678"},
		{"B3/s3002", "B3/S023"},
	}
	for _, tt := range tests {
		got, err := NormalizeRule(tt.in)
		if err != nil {
			t.Errorf("NormalizeRule(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeRule(%q) = %q, want %q", tt.in, got, tt.want)
		}
		// Idempotence on its own output.
		again, err := NormalizeRule(got)
		if err != nil || again != got {
			t.Errorf("NormalizeRule(%q) not idempotent: %q, %v", got, again, err)
		}
	}
}

func TestParseRuleInvalid(t *testing.T) {
	for _, in := range []string{"", "invalid", "B3", "B3S23", "B9/S23", "B3/S2a", "3/23", "/S23", "B3/"} {
		if _, err := ParseRule(in); !errors.Is(err, ErrInvalidRule) {
			t.Errorf("ParseRule(%q) = %v, want ErrInvalidRule", in, err)
		}
	}
}

func TestRulePredicates(t *testing.T) {
	r, err := ParseRule("B36/S23")
	if err != nil {
		t.Fatal(err)
	}
	for k := 0; k <= 8; k++ {
		wantB := k == 3 || k == 6
		wantS := k == 2 || k == 3
		if r.Birth[k] != wantB {
			t.Errorf("Birth[%d] = %v, want %v", k, r.Birth[k], wantB)
		}
		if r.Survival[k] != wantS {
			t.Errorf("Survival[%d] = %v, want %v", k, r.Survival[k], wantS)
		}
	}
}

func TestPresets(t *testing.T) {
	for name, canonical := range Presets {
		r, err := Preset(name)
		if err != nil {
			t.Errorf("Preset(%q) failed: %v", name, err)
			continue
		}
		if r.String() != canonical {
			t.Errorf("Preset(%q) = %q, want %q", name, r.String(), canonical)
		}
	}
	if _, err := Preset("NoSuchRule"); !errors.Is(err, ErrInvalidRule) {
		t.Errorf("unknown preset should fail with ErrInvalidRule, got %v", err)
	}
}

func TestDefaultRule(t *testing.T) {
	if got := DefaultRule().String(); got != "B3/S23" {
		t.Fatalf("default rule = %q, want B3/S23", got)
	}
}
