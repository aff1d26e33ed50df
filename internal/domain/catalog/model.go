package catalog

import "time"

// Personality is the reusable description of an ambassador's voice and tone.
// IDs are caller-supplied slugs ("gentle-storyteller") shared across animals.
type Personality struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// GuardrailSeverity ranks how strictly a guardrail's rules are enforced
// downstream.
type GuardrailSeverity string

const (
	SeverityAdvisory GuardrailSeverity = "advisory"
	SeverityStandard GuardrailSeverity = "standard"
	SeverityStrict   GuardrailSeverity = "strict"
)

// Valid reports whether the severity is one of the known levels.
func (s GuardrailSeverity) Valid() bool {
	switch s {
	case SeverityAdvisory, SeverityStandard, SeverityStrict:
		return true
	}
	return false
}

// Guardrail is an ordered rule set merged into every compiled prompt.
// Rule order is significant and preserved end to end.
type Guardrail struct {
	ID        string
	Name      string
	Rules     []string
	Severity  GuardrailSeverity
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Animal mirrors the ambassador registry entry owned by an upstream service.
// This service only reads it to validate assistant configuration targets.
type Animal struct {
	ID      string
	Name    string
	Species string
	Active  bool
}
