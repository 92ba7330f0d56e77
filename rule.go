package petri

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRule is returned when a rule string cannot be parsed.
var ErrInvalidRule = errors.New("invalid rule")

// Rule is a Life-like birth/survival rule. Birth[k] is true when a dead cell
// with k live neighbors becomes alive; Survival[k] is true when a live cell
// with k live neighbors stays alive. Both cover exactly the neighbor-count
// range 0..8.
type Rule struct {
	Birth    [9]bool
	Survival [9]bool
}

// DefaultRule returns Conway's Life, B3/S23.
func DefaultRule() Rule {
	r, _ := ParseRule("B3/S23")
	return r
}

// Presets maps well-known rule names to their canonical rule strings.
var Presets = map[string]string{
	"Conway":           "B3/S23",
	"HighLife":         "B36/S23",
	"Seeds":            "B2/S",
	"LifeWithoutDeath": "B3/S012345678",
	"Maze":             "B3/S12345",
	"Morley":           "B368/S245",
	"Replicator":       "B1357/S1357",
	"Diamoeba":         "B35678/S5678",
	"Anneal":           "B4678/S35678",
	"ThirtyFourLife":   "B34/S34",
}

// Preset returns the rule registered under the given preset name.
func Preset(name string) (Rule, error) {
	s, ok := Presets[name]
	if !ok {
		return Rule{}, fmt.Errorf("%w: unknown preset %q", ErrInvalidRule, name)
	}
	return ParseRule(s)
}

// ParseRule parses a rule string of the form "B<digits>/S<digits>". Parsing
// is case-insensitive and digits are drawn from 0..8. Either digit list may
// be empty ("B2/S"), but both the B and the S prefix are required.
func ParseRule(s string) (Rule, error) {
	parts := strings.SplitN(s, "/", 2)
	if len(parts) != 2 {
		return Rule{}, fmt.Errorf("%w: %q", ErrInvalidRule, s)
	}
	var r Rule
	if err := parseRuleSide(parts[0], 'B', &r.Birth); err != nil {
		return Rule{}, fmt.Errorf("%w: %q", ErrInvalidRule, s)
	}
	if err := parseRuleSide(parts[1], 'S', &r.Survival); err != nil {
		return Rule{}, fmt.Errorf("%w: %q", ErrInvalidRule, s)
	}
	return r, nil
}

// parseRuleSide parses one side of a rule string, e.g. "B36" or "s23".
func parseRuleSide(side string, prefix byte, out *[9]bool) error {
	if side == "" {
		return fmt.Errorf("missing %c side", prefix)
	}
	head := side[0]
	if head != prefix && head != prefix+('a'-'A') {
		return fmt.Errorf("expected %c prefix", prefix)
	}
	for i := 1; i < len(side); i++ {
		d := side[i]
		if d < '0' || d > '8' {
			return fmt.Errorf("bad digit %q", d)
		}
		out[d-'0'] = true
	}
	return nil
}

// String returns the canonical form of the rule: uppercase prefixes with
// digits sorted ascending, e.g. "B36/S23".
func (r Rule) String() string {
	var b strings.Builder
	b.WriteByte('B')
	for k := 0; k <= 8; k++ {
		if r.Birth[k] {
			b.WriteByte(byte('0' + k))
		}
	}
	b.WriteString("/S")
	for k := 0; k <= 8; k++ {
		if r.Survival[k] {
			b.WriteByte(byte('0' + k))
		}
	}
	return b.String()
}

// NormalizeRule parses and reformats a rule string into canonical form.
// It is idempotent on its own output.
func NormalizeRule(s string) (string, error) {
	r, err := ParseRule(s)
	if err != nil {
		return "", err
	}
	return r.String(), nil
}
