package responses

import (
	"time"

	"zooworld/assistant-api/internal/domain/reply"
	"zooworld/assistant-api/internal/domain/sandbox"
)

// SandboxPayload is returned to clients.
type SandboxPayload struct {
	ID                 string    `json:"id"`
	AnimalID           string    `json:"animal_id"`
	PersonalityID      string    `json:"personality_id"`
	GuardrailID        string    `json:"guardrail_id"`
	KnowledgeRefIDs    []string  `json:"knowledge_ref_ids"`
	Status             string    `json:"status"`
	CompiledPromptHash string    `json:"compiled_prompt_hash"`
	TrialCount         int       `json:"trial_count"`
	CreatedAt          time.Time `json:"created_at"`
	ExpiresAt          time.Time `json:"expires_at"`
}

// MapSandboxToResponse maps the domain sandbox to DTO. The compiled prompt
// body is intentionally not exposed.
func MapSandboxToResponse(sb *sandbox.Sandbox) SandboxPayload {
	refs := sb.KnowledgeRefIDs
	if refs == nil {
		refs = []string{}
	}
	return SandboxPayload{
		ID:                 sb.PublicID,
		AnimalID:           sb.AnimalID,
		PersonalityID:      sb.PersonalityID,
		GuardrailID:        sb.GuardrailID,
		KnowledgeRefIDs:    refs,
		Status:             string(sb.Status),
		CompiledPromptHash: sb.CompiledPromptHash,
		TrialCount:         sb.TrialCount,
		CreatedAt:          sb.CreatedAt,
		ExpiresAt:          sb.ExpiresAt,
	}
}

// TrialTurnPayload is the ephemeral reply from a sandbox trial.
type TrialTurnPayload struct {
	Reply            string `json:"reply"`
	Model            string `json:"model,omitempty"`
	TokensUsed       int    `json:"tokens_used,omitempty"`
	ProcessingTimeMs int64  `json:"processing_time_ms,omitempty"`
}

// MapTrialTurnToResponse maps a generator result to DTO.
func MapTrialTurnToResponse(r *reply.Result) TrialTurnPayload {
	return TrialTurnPayload{
		Reply:            r.Reply,
		Model:            r.Model,
		TokensUsed:       r.TokensUsed,
		ProcessingTimeMs: r.ProcessingTime.Milliseconds(),
	}
}
