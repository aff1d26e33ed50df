package sandbox

import "time"

// Status is the sandbox lifecycle state.
type Status string

const (
	// Non-terminal states
	StatusDraft  Status = "DRAFT"  // Created, no confirmed trial yet
	StatusTested Status = "TESTED" // Confirmed after at least one trial turn

	// Terminal states (no further transitions allowed)
	StatusPromoted Status = "PROMOTED" // Applied to the production assistant
	StatusExpired  Status = "EXPIRED"  // TTL elapsed before promotion
)

// IsTerminal returns true if the status is a terminal state.
func (s Status) IsTerminal() bool {
	return s == StatusPromoted || s == StatusExpired
}

// Usable reports whether trial turns are still allowed in this state.
// TTL expiry is checked separately on every access.
func (s Status) Usable() bool {
	return s == StatusDraft || s == StatusTested
}

// CanTransitionTo validates a lifecycle transition.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusDraft:
		return next == StatusTested || next == StatusExpired
	case StatusTested:
		return next == StatusPromoted || next == StatusExpired
	default:
		return false
	}
}

// Sandbox is an ephemeral draft configuration for one animal, usable for
// trial conversations until promoted or expired. Trial conversations are
// disposable; none of them reach the durable session history.
type Sandbox struct {
	ID                 uint
	PublicID           string // "sbx_" prefixed
	AnimalID           string
	PersonalityID      string
	GuardrailID        string
	KnowledgeRefIDs    []string
	Status             Status
	CompiledPrompt     string
	CompiledPromptHash string
	TrialCount         int
	CreatedAt          time.Time
	ExpiresAt          time.Time
}

// Expired reports whether the TTL has elapsed at the given instant.
func (sb *Sandbox) Expired(now time.Time) bool {
	return now.After(sb.ExpiresAt)
}
