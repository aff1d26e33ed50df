package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"zooworld/assistant-api/internal/utils/platformerrors"
)

// Service owns the shared personality and guardrail catalog. Saving over an
// existing ID replaces the definition for every assistant that references it;
// the assistants pick the change up lazily on their next prompt resolution.
type Service interface {
	SavePersonality(ctx context.Context, p *Personality) (*Personality, error)
	GetPersonality(ctx context.Context, id string) (*Personality, error)
	ListPersonalities(ctx context.Context) ([]*Personality, error)
	DeletePersonality(ctx context.Context, id string) error

	SaveGuardrail(ctx context.Context, g *Guardrail) (*Guardrail, error)
	GetGuardrail(ctx context.Context, id string) (*Guardrail, error)
	ListGuardrails(ctx context.Context) ([]*Guardrail, error)
	DeleteGuardrail(ctx context.Context, id string) error

	SaveAnimal(ctx context.Context, a *Animal) (*Animal, error)
	GetAnimal(ctx context.Context, id string) (*Animal, error)
}

// DefaultService implements Service.
type DefaultService struct {
	personalities PersonalityRepository
	guardrails    GuardrailRepository
	animals       AnimalRepository
	log           zerolog.Logger
}

// NewService builds the catalog manager.
func NewService(personalities PersonalityRepository, guardrails GuardrailRepository, animals AnimalRepository, log zerolog.Logger) Service {
	return &DefaultService{
		personalities: personalities,
		guardrails:    guardrails,
		animals:       animals,
		log:           log.With().Str("component", "catalog").Logger(),
	}
}

// SavePersonality validates and upserts a personality definition.
func (s *DefaultService) SavePersonality(ctx context.Context, p *Personality) (*Personality, error) {
	if strings.TrimSpace(p.ID) == "" || strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.Description) == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"personality requires id, name and description", nil, platformerrors.CodeInvalidRequest)
	}
	if err := s.personalities.Save(ctx, p); err != nil {
		return nil, err
	}
	s.log.Info().Str("personality_id", p.ID).Msg("personality saved")
	return p, nil
}

// GetPersonality fetches one personality.
func (s *DefaultService) GetPersonality(ctx context.Context, id string) (*Personality, error) {
	return s.personalities.FindByID(ctx, id)
}

// ListPersonalities returns all personalities.
func (s *DefaultService) ListPersonalities(ctx context.Context) ([]*Personality, error) {
	return s.personalities.List(ctx)
}

// DeletePersonality removes a personality. Assistants still referencing it
// fail prompt resolution until they are repointed.
func (s *DefaultService) DeletePersonality(ctx context.Context, id string) error {
	return s.personalities.Delete(ctx, id)
}

// SaveGuardrail validates and upserts a guardrail definition, preserving rule
// order.
func (s *DefaultService) SaveGuardrail(ctx context.Context, g *Guardrail) (*Guardrail, error) {
	if strings.TrimSpace(g.ID) == "" || strings.TrimSpace(g.Name) == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"guardrail requires id and name", nil, platformerrors.CodeInvalidRequest)
	}
	if g.Severity == "" {
		g.Severity = SeverityStandard
	}
	if !g.Severity.Valid() {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			fmt.Sprintf("unknown guardrail severity %q", g.Severity), nil, platformerrors.CodeInvalidRequest)
	}
	for _, rule := range g.Rules {
		if strings.TrimSpace(rule) == "" {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
				"guardrail rules must be non-empty", nil, platformerrors.CodeInvalidRequest)
		}
	}
	if err := s.guardrails.Save(ctx, g); err != nil {
		return nil, err
	}
	s.log.Info().Str("guardrail_id", g.ID).Int("rules", len(g.Rules)).Msg("guardrail saved")
	return g, nil
}

// GetGuardrail fetches one guardrail.
func (s *DefaultService) GetGuardrail(ctx context.Context, id string) (*Guardrail, error) {
	return s.guardrails.FindByID(ctx, id)
}

// ListGuardrails returns all guardrails.
func (s *DefaultService) ListGuardrails(ctx context.Context) ([]*Guardrail, error) {
	return s.guardrails.List(ctx)
}

// DeleteGuardrail removes a guardrail.
func (s *DefaultService) DeleteGuardrail(ctx context.Context, id string) error {
	return s.guardrails.Delete(ctx, id)
}

// SaveAnimal upserts an ambassador registry entry. The registry is owned by
// an upstream service in production; this path exists for setup tooling.
func (s *DefaultService) SaveAnimal(ctx context.Context, a *Animal) (*Animal, error) {
	if strings.TrimSpace(a.ID) == "" || strings.TrimSpace(a.Name) == "" || strings.TrimSpace(a.Species) == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"animal requires id, name and species", nil, platformerrors.CodeInvalidRequest)
	}
	if err := s.animals.Save(ctx, a); err != nil {
		return nil, err
	}
	s.log.Info().Str("animal_id", a.ID).Bool("active", a.Active).Msg("animal saved")
	return a, nil
}

// GetAnimal fetches one registry entry.
func (s *DefaultService) GetAnimal(ctx context.Context, id string) (*Animal, error) {
	return s.animals.FindByID(ctx, id)
}
