package requests

// CreateSandboxRequest configures a new sandbox draft.
type CreateSandboxRequest struct {
	AnimalID        string   `json:"animal_id" binding:"required"`
	PersonalityID   string   `json:"personality_id" binding:"required"`
	GuardrailID     string   `json:"guardrail_id" binding:"required"`
	KnowledgeRefIDs []string `json:"knowledge_ref_ids"`
}

// TrialMessage is one prior exchange supplied by the tester.
type TrialMessage struct {
	Role    string `json:"role" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// TrialTurnRequest runs one ephemeral turn against a sandbox.
type TrialTurnRequest struct {
	Message string         `json:"message" binding:"required"`
	History []TrialMessage `json:"history"`
}
