package responses

import (
	"time"

	"zooworld/assistant-api/internal/domain/assistant"
)

// AssistantPayload is returned to clients.
type AssistantPayload struct {
	ID                 string    `json:"id"`
	AnimalID           string    `json:"animal_id"`
	PersonalityID      string    `json:"personality_id"`
	GuardrailID        string    `json:"guardrail_id"`
	KnowledgeRefIDs    []string  `json:"knowledge_ref_ids"`
	Status             string    `json:"status"`
	CompiledPromptHash string    `json:"compiled_prompt_hash"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// MapAssistantToResponse maps the domain assistant to DTO.
func MapAssistantToResponse(a *assistant.Assistant) AssistantPayload {
	refs := a.KnowledgeRefIDs
	if refs == nil {
		refs = []string{}
	}
	return AssistantPayload{
		ID:                 a.PublicID,
		AnimalID:           a.AnimalID,
		PersonalityID:      a.PersonalityID,
		GuardrailID:        a.GuardrailID,
		KnowledgeRefIDs:    refs,
		Status:             string(a.Status),
		CompiledPromptHash: a.CompiledPromptHash,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
}

// EffectivePromptPayload carries the resolved prompt for an assistant.
type EffectivePromptPayload struct {
	AssistantID string `json:"assistant_id"`
	Prompt      string `json:"prompt"`
	InputHash   string `json:"input_hash"`
}

// MapEffectivePromptToResponse maps the resolved prompt to DTO.
func MapEffectivePromptToResponse(assistantID string, p *assistant.EffectivePrompt) EffectivePromptPayload {
	return EffectivePromptPayload{
		AssistantID: assistantID,
		Prompt:      p.Prompt,
		InputHash:   p.InputHash,
	}
}
