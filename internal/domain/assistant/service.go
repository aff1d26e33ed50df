package assistant

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"zooworld/assistant-api/internal/domain/catalog"
	"zooworld/assistant-api/internal/domain/prompt"
	"zooworld/assistant-api/internal/infrastructure/metrics"
	"zooworld/assistant-api/internal/utils/platformerrors"
)

// Service owns the production assistant lifecycle.
type Service interface {
	Create(ctx context.Context, params CreateParams) (*Assistant, error)
	Get(ctx context.Context, assistantID string) (*Assistant, error)
	GetByAnimal(ctx context.Context, animalID string) (*Assistant, error)
	List(ctx context.Context) ([]*Assistant, error)
	Update(ctx context.Context, assistantID string, params UpdateParams) (*Assistant, error)
	Delete(ctx context.Context, assistantID string) error

	// EffectivePrompt returns the compiled prompt for the assistant,
	// recompiling lazily whenever the cached hash no longer matches the
	// current personality/guardrail/knowledge state.
	EffectivePrompt(ctx context.Context, assistantID string) (*EffectivePrompt, error)
}

// CreateParams configures a new assistant.
type CreateParams struct {
	AnimalID        string
	PersonalityID   string
	GuardrailID     string
	KnowledgeRefIDs []string
}

// UpdateParams carries a partial assistant update. AnimalID is accepted only
// so reassignment attempts can be rejected explicitly.
type UpdateParams struct {
	AnimalID        *string
	PersonalityID   *string
	GuardrailID     *string
	KnowledgeRefIDs *[]string
	Status          *Status
}

// DefaultService implements Service.
type DefaultService struct {
	repo          Repository
	animals       catalog.AnimalRepository
	personalities catalog.PersonalityRepository
	guardrails    catalog.GuardrailRepository
	cache         PromptCache
	log           zerolog.Logger
}

// NewService builds the assistant manager.
func NewService(
	repo Repository,
	animals catalog.AnimalRepository,
	personalities catalog.PersonalityRepository,
	guardrails catalog.GuardrailRepository,
	cache PromptCache,
	log zerolog.Logger,
) Service {
	return &DefaultService{
		repo:          repo,
		animals:       animals,
		personalities: personalities,
		guardrails:    guardrails,
		cache:         cache,
		log:           log.With().Str("component", "assistant-manager").Logger(),
	}
}

// Create configures an animal's chatbot behavior for the first time.
func (s *DefaultService) Create(ctx context.Context, params CreateParams) (*Assistant, error) {
	if len(params.KnowledgeRefIDs) > MaxKnowledgeRefs {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			fmt.Sprintf("at most %d knowledge references per assistant", MaxKnowledgeRefs),
			nil, platformerrors.CodeTooManyKnowledgeRefs)
	}

	animal, err := s.animals.FindByID(ctx, params.AnimalID)
	if err != nil && !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
		return nil, err
	}
	if animal == nil || !animal.Active {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			fmt.Sprintf("animal %q does not exist or is inactive", params.AnimalID),
			nil, platformerrors.CodeInvalidAnimal)
	}

	compiled, err := s.compile(ctx, params.PersonalityID, params.GuardrailID, params.KnowledgeRefIDs)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	a := &Assistant{
		PublicID:           "asst_" + uuid.NewString(),
		AnimalID:           params.AnimalID,
		PersonalityID:      params.PersonalityID,
		GuardrailID:        params.GuardrailID,
		KnowledgeRefIDs:    params.KnowledgeRefIDs,
		Status:             StatusActive,
		CompiledPromptHash: compiled.InputHash,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	s.cachePrompt(ctx, a.PublicID, compiled)
	s.log.Info().Str("assistant_id", a.PublicID).Str("animal_id", a.AnimalID).Msg("assistant created")
	return a, nil
}

// Get fetches an assistant by public ID.
func (s *DefaultService) Get(ctx context.Context, assistantID string) (*Assistant, error) {
	return s.repo.FindByPublicID(ctx, assistantID)
}

// GetByAnimal fetches the assistant configured for an animal.
func (s *DefaultService) GetByAnimal(ctx context.Context, animalID string) (*Assistant, error) {
	return s.repo.FindByAnimalID(ctx, animalID)
}

// List returns all assistants.
func (s *DefaultService) List(ctx context.Context) ([]*Assistant, error) {
	return s.repo.List(ctx)
}

// Update applies a partial update. Configuration changes trigger
// recompilation; a status change alone does not.
func (s *DefaultService) Update(ctx context.Context, assistantID string, params UpdateParams) (*Assistant, error) {
	a, err := s.repo.FindByPublicID(ctx, assistantID)
	if err != nil {
		return nil, err
	}

	if params.AnimalID != nil && *params.AnimalID != a.AnimalID {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeConflict,
			"assistants cannot be reassigned to another animal", nil, platformerrors.CodeAnimalReassignment)
	}

	configChanged := false
	if params.PersonalityID != nil && *params.PersonalityID != a.PersonalityID {
		a.PersonalityID = *params.PersonalityID
		configChanged = true
	}
	if params.GuardrailID != nil && *params.GuardrailID != a.GuardrailID {
		a.GuardrailID = *params.GuardrailID
		configChanged = true
	}
	if params.KnowledgeRefIDs != nil {
		if len(*params.KnowledgeRefIDs) > MaxKnowledgeRefs {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
				fmt.Sprintf("at most %d knowledge references per assistant", MaxKnowledgeRefs),
				nil, platformerrors.CodeTooManyKnowledgeRefs)
		}
		a.KnowledgeRefIDs = *params.KnowledgeRefIDs
		configChanged = true
	}
	if params.Status != nil {
		if !params.Status.Valid() {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
				fmt.Sprintf("unknown assistant status %q", *params.Status), nil, platformerrors.CodeInvalidRequest)
		}
		a.Status = *params.Status
	}

	if configChanged {
		compiled, err := s.compile(ctx, a.PersonalityID, a.GuardrailID, a.KnowledgeRefIDs)
		if err != nil {
			return nil, err
		}
		a.CompiledPromptHash = compiled.InputHash
		s.cachePrompt(ctx, a.PublicID, compiled)
	}

	a.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Delete hard-deletes the assistant. Conversation history is untouched;
// purging history is an explicit, separate operation.
func (s *DefaultService) Delete(ctx context.Context, assistantID string) error {
	if err := s.repo.Delete(ctx, assistantID); err != nil {
		return err
	}
	if err := s.cache.Delete(ctx, assistantID); err != nil {
		s.log.Warn().Err(err).Str("assistant_id", assistantID).Msg("prompt cache eviction failed")
	}
	return nil
}

// EffectivePrompt returns the current compiled prompt, refreshing it when a
// shared personality or guardrail was edited since the last compilation.
func (s *DefaultService) EffectivePrompt(ctx context.Context, assistantID string) (*EffectivePrompt, error) {
	a, err := s.repo.FindByPublicID(ctx, assistantID)
	if err != nil {
		return nil, err
	}

	personality, guardrail, err := s.resolveConfig(ctx, a.PersonalityID, a.GuardrailID)
	if err != nil {
		return nil, err
	}

	currentHash := prompt.InputHash(personality, guardrail, a.KnowledgeRefIDs)

	if entry, cacheErr := s.cache.Get(ctx, assistantID); cacheErr == nil && entry != nil && entry.InputHash == currentHash {
		metrics.PromptCacheLookups.WithLabelValues("hit").Inc()
		return &EffectivePrompt{Prompt: entry.Prompt, InputHash: entry.InputHash}, nil
	}
	metrics.PromptCacheLookups.WithLabelValues("miss").Inc()

	compiled, err := prompt.Compile(personality, guardrail, a.KnowledgeRefIDs)
	if err != nil {
		metrics.PromptCompilations.WithLabelValues("error").Inc()
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeUnprocessable,
			"prompt compilation failed", err, platformerrors.CodeConfigurationUnresolved)
	}
	metrics.PromptCompilations.WithLabelValues("ok").Inc()

	if a.CompiledPromptHash != compiled.InputHash {
		a.CompiledPromptHash = compiled.InputHash
		a.UpdatedAt = time.Now().UTC()
		if err := s.repo.Update(ctx, a); err != nil {
			return nil, err
		}
	}
	s.cachePrompt(ctx, assistantID, compiled)

	return &EffectivePrompt{Prompt: compiled.Prompt, InputHash: compiled.InputHash}, nil
}

func (s *DefaultService) resolveConfig(ctx context.Context, personalityID, guardrailID string) (*catalog.Personality, *catalog.Guardrail, error) {
	personality, err := s.personalities.FindByID(ctx, personalityID)
	if err != nil || personality == nil {
		return nil, nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeUnprocessable,
			fmt.Sprintf("personality %q is unresolvable", personalityID), err, platformerrors.CodeConfigurationUnresolved)
	}
	guardrail, err := s.guardrails.FindByID(ctx, guardrailID)
	if err != nil || guardrail == nil {
		return nil, nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeUnprocessable,
			fmt.Sprintf("guardrail %q is unresolvable", guardrailID), err, platformerrors.CodeConfigurationUnresolved)
	}
	return personality, guardrail, nil
}

func (s *DefaultService) compile(ctx context.Context, personalityID, guardrailID string, refs []string) (prompt.Compiled, error) {
	personality, guardrail, err := s.resolveConfig(ctx, personalityID, guardrailID)
	if err != nil {
		return prompt.Compiled{}, err
	}
	compiled, err := prompt.Compile(personality, guardrail, refs)
	if err != nil {
		metrics.PromptCompilations.WithLabelValues("error").Inc()
		return prompt.Compiled{}, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeUnprocessable,
			"prompt compilation failed", err, platformerrors.CodeConfigurationUnresolved)
	}
	metrics.PromptCompilations.WithLabelValues("ok").Inc()
	return compiled, nil
}

func (s *DefaultService) cachePrompt(ctx context.Context, assistantID string, compiled prompt.Compiled) {
	entry := &CachedPrompt{
		Prompt:     compiled.Prompt,
		InputHash:  compiled.InputHash,
		CompiledAt: time.Now().UTC(),
	}
	if err := s.cache.Set(ctx, assistantID, entry); err != nil {
		s.log.Warn().Err(err).Str("assistant_id", assistantID).Msg("prompt cache write failed")
	}
}
