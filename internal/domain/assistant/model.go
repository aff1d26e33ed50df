package assistant

import (
	"context"
	"time"
)

// Status reflects whether an assistant may serve conversation traffic.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
	StatusError    Status = "ERROR"
)

// Valid reports whether the status is one of the known values.
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive || s == StatusError
}

// MaxKnowledgeRefs caps the knowledge references attached to one assistant.
const MaxKnowledgeRefs = 50

// Assistant is the live production configuration for one animal ambassador:
// which personality it speaks with, which guardrail constrains it, and which
// knowledge references it may draw on. At most one assistant exists per
// animal; conversation traffic only ever reads it.
type Assistant struct {
	ID                 uint
	PublicID           string // "asst_" prefixed
	AnimalID           string
	PersonalityID      string
	GuardrailID        string
	KnowledgeRefIDs    []string
	Status             Status
	CompiledPromptHash string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// EffectivePrompt is the compiled system prompt an assistant currently runs
// with, plus the input hash it was derived from.
type EffectivePrompt struct {
	Prompt    string
	InputHash string
}

// CachedPrompt is a best-effort cache entry for a compiled prompt. Entries
// are never trusted without comparing InputHash against the hash of the
// current configuration.
type CachedPrompt struct {
	Prompt     string    `json:"prompt"`
	InputHash  string    `json:"input_hash"`
	CompiledAt time.Time `json:"compiled_at"`
}

// PromptCache stores compiled prompts keyed by assistant public ID. Losing
// entries is safe; correctness never depends on the cache.
type PromptCache interface {
	Get(ctx context.Context, assistantID string) (*CachedPrompt, error)
	Set(ctx context.Context, assistantID string, entry *CachedPrompt) error
	Delete(ctx context.Context, assistantID string) error
}
