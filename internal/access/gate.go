// Package access implements the region-scoped edit gate: each region has a
// static shared code, loaded once at startup, that must be entered before a
// record in that region can be edited.
package access

import "strings"

// Decision is the outcome of a validation attempt.
type Decision int

const (
	// Denied means the region is configured but the entered code is wrong.
	Denied Decision = iota
	// Granted means the entered code matches the region's code.
	Granted
	// Unconfigured means no code exists for the region. This is a
	// misconfiguration, distinct from a wrong code, and callers must show
	// a different message for it.
	Unconfigured
)

func (d Decision) String() string {
	switch d {
	case Granted:
		return "granted"
	case Unconfigured:
		return "unconfigured"
	default:
		return "denied"
	}
}

// Gate validates access codes against a read-only region table. It is a pure
// predicate: no lockout, no rate limiting, no attempt counting.
type Gate struct {
	codes map[string]string
}

// NewGate builds a gate over a region→code table. The map is copied; later
// mutation of the argument does not affect the gate.
func NewGate(codes map[string]string) *Gate {
	copied := make(map[string]string, len(codes))
	for region, code := range codes {
		copied[region] = code
	}
	return &Gate{codes: copied}
}

// Validate checks enteredCode against the region's configured code. The
// entered code is trimmed; the comparison is case-sensitive.
func (g *Gate) Validate(region, enteredCode string) Decision {
	code, ok := g.codes[region]
	if !ok {
		return Unconfigured
	}
	if strings.TrimSpace(enteredCode) == code {
		return Granted
	}
	return Denied
}

// Regions returns the configured region names.
func (g *Gate) Regions() []string {
	out := make([]string, 0, len(g.codes))
	for region := range g.codes {
		out = append(out, region)
	}
	return out
}
