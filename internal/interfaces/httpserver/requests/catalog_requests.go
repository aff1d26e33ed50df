package requests

// SavePersonalityRequest creates or replaces a personality definition.
type SavePersonalityRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description" binding:"required"`
}

// SaveGuardrailRequest creates or replaces a guardrail definition. Rule order
// is preserved as submitted.
type SaveGuardrailRequest struct {
	Name     string   `json:"name" binding:"required"`
	Rules    []string `json:"rules"`
	Severity string   `json:"severity"`
}

// SaveAnimalRequest creates or replaces an ambassador registry entry.
type SaveAnimalRequest struct {
	Name    string `json:"name" binding:"required"`
	Species string `json:"species" binding:"required"`
	Active  *bool  `json:"active"`
}
