package requests

// CreateAssistantRequest configures a new assistant.
type CreateAssistantRequest struct {
	AnimalID        string   `json:"animal_id" binding:"required"`
	PersonalityID   string   `json:"personality_id" binding:"required"`
	GuardrailID     string   `json:"guardrail_id" binding:"required"`
	KnowledgeRefIDs []string `json:"knowledge_ref_ids"`
}

// UpdateAssistantRequest carries a partial assistant update. Absent fields
// are left untouched.
type UpdateAssistantRequest struct {
	AnimalID        *string   `json:"animal_id"`
	PersonalityID   *string   `json:"personality_id"`
	GuardrailID     *string   `json:"guardrail_id"`
	KnowledgeRefIDs *[]string `json:"knowledge_ref_ids"`
	Status          *string   `json:"status"`
}
