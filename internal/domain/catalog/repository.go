package catalog

import "context"

// PersonalityRepository persists personality definitions. Saving over an
// existing ID replaces it in place and bumps UpdatedAt, which invalidates any
// compiled prompt derived from it.
type PersonalityRepository interface {
	Save(ctx context.Context, p *Personality) error
	FindByID(ctx context.Context, id string) (*Personality, error)
	List(ctx context.Context) ([]*Personality, error)
	Delete(ctx context.Context, id string) error
}

// GuardrailRepository persists guardrail definitions with the same
// replace-in-place semantics as personalities.
type GuardrailRepository interface {
	Save(ctx context.Context, g *Guardrail) error
	FindByID(ctx context.Context, id string) (*Guardrail, error)
	List(ctx context.Context) ([]*Guardrail, error)
	Delete(ctx context.Context, id string) error
}

// AnimalRepository reads ambassador registry entries.
type AnimalRepository interface {
	FindByID(ctx context.Context, id string) (*Animal, error)
	Save(ctx context.Context, a *Animal) error
}
