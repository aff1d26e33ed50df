package responses

import (
	"time"

	"zooworld/assistant-api/internal/domain/catalog"
)

// PersonalityPayload is returned to clients.
type PersonalityPayload struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MapPersonalityToResponse maps the domain personality to DTO.
func MapPersonalityToResponse(p *catalog.Personality) PersonalityPayload {
	return PersonalityPayload{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// GuardrailPayload is returned to clients.
type GuardrailPayload struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Rules     []string  `json:"rules"`
	Severity  string    `json:"severity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AnimalPayload is the ambassador registry entry returned to clients.
type AnimalPayload struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Species string `json:"species"`
	Active  bool   `json:"active"`
}

// MapAnimalToResponse maps the domain animal to DTO.
func MapAnimalToResponse(a *catalog.Animal) AnimalPayload {
	return AnimalPayload{
		ID:      a.ID,
		Name:    a.Name,
		Species: a.Species,
		Active:  a.Active,
	}
}

// MapGuardrailToResponse maps the domain guardrail to DTO.
func MapGuardrailToResponse(g *catalog.Guardrail) GuardrailPayload {
	rules := g.Rules
	if rules == nil {
		rules = []string{}
	}
	return GuardrailPayload{
		ID:        g.ID,
		Name:      g.Name,
		Rules:     rules,
		Severity:  string(g.Severity),
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}
