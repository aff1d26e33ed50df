package sandbox

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"zooworld/assistant-api/internal/domain/assistant"
	"zooworld/assistant-api/internal/domain/catalog"
	"zooworld/assistant-api/internal/domain/prompt"
	"zooworld/assistant-api/internal/domain/reply"
	"zooworld/assistant-api/internal/infrastructure/metrics"
	"zooworld/assistant-api/internal/utils/platformerrors"
)

// Service owns the sandbox draft/trial/promote lifecycle. It is the only
// writer allowed to replace a production assistant, via Promote.
type Service interface {
	Create(ctx context.Context, params CreateParams) (*Sandbox, error)
	Get(ctx context.Context, sandboxID string) (*Sandbox, error)
	TrialTurn(ctx context.Context, sandboxID string, message string, history []reply.Message) (*reply.Result, error)
	MarkTested(ctx context.Context, sandboxID string) (*Sandbox, error)
	Promote(ctx context.Context, sandboxID string, authorized bool) (*assistant.Assistant, error)
}

// CreateParams configures a new sandbox draft.
type CreateParams struct {
	AnimalID        string
	PersonalityID   string
	GuardrailID     string
	KnowledgeRefIDs []string
}

// DefaultService implements Service.
type DefaultService struct {
	repo          Repository
	assistants    assistant.Repository
	personalities catalog.PersonalityRepository
	guardrails    catalog.GuardrailRepository
	promptCache   assistant.PromptCache
	generator     reply.Generator
	ttl           time.Duration
	replyTimeout  time.Duration
	log           zerolog.Logger
}

// NewService builds the sandbox lifecycle manager.
func NewService(
	repo Repository,
	assistants assistant.Repository,
	personalities catalog.PersonalityRepository,
	guardrails catalog.GuardrailRepository,
	promptCache assistant.PromptCache,
	generator reply.Generator,
	ttl time.Duration,
	replyTimeout time.Duration,
	log zerolog.Logger,
) Service {
	return &DefaultService{
		repo:          repo,
		assistants:    assistants,
		personalities: personalities,
		guardrails:    guardrails,
		promptCache:   promptCache,
		generator:     generator,
		ttl:           ttl,
		replyTimeout:  replyTimeout,
		log:           log.With().Str("component", "sandbox-lifecycle").Logger(),
	}
}

// Create compiles a trial prompt and persists a DRAFT sandbox. A compilation
// failure persists nothing.
func (s *DefaultService) Create(ctx context.Context, params CreateParams) (*Sandbox, error) {
	if len(params.KnowledgeRefIDs) > assistant.MaxKnowledgeRefs {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			fmt.Sprintf("at most %d knowledge references per sandbox", assistant.MaxKnowledgeRefs),
			nil, platformerrors.CodeTooManyKnowledgeRefs)
	}

	compiled, err := s.compile(ctx, params.PersonalityID, params.GuardrailID, params.KnowledgeRefIDs)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sb := &Sandbox{
		PublicID:           "sbx_" + uuid.NewString(),
		AnimalID:           params.AnimalID,
		PersonalityID:      params.PersonalityID,
		GuardrailID:        params.GuardrailID,
		KnowledgeRefIDs:    params.KnowledgeRefIDs,
		Status:             StatusDraft,
		CompiledPrompt:     compiled.Prompt,
		CompiledPromptHash: compiled.InputHash,
		CreatedAt:          now,
		ExpiresAt:          now.Add(s.ttl),
	}

	if err := s.repo.Create(ctx, sb); err != nil {
		return nil, err
	}
	metrics.SandboxTransitions.WithLabelValues(string(StatusDraft)).Inc()
	s.log.Info().Str("sandbox_id", sb.PublicID).Str("animal_id", sb.AnimalID).Time("expires_at", sb.ExpiresAt).Msg("sandbox created")
	return sb, nil
}

// Get fetches a sandbox, applying lazy expiry so callers never see a usable
// status past the TTL.
func (s *DefaultService) Get(ctx context.Context, sandboxID string) (*Sandbox, error) {
	sb, err := s.repo.FindByPublicID(ctx, sandboxID)
	if err != nil {
		return nil, err
	}
	if sb.Status.Usable() && sb.Expired(time.Now().UTC()) {
		if err := s.expire(ctx, sb); err != nil {
			return nil, err
		}
	}
	return sb, nil
}

// TrialTurn runs one ephemeral conversation turn against the sandbox prompt.
// Nothing is written to durable session history.
func (s *DefaultService) TrialTurn(ctx context.Context, sandboxID string, message string, history []reply.Message) (*reply.Result, error) {
	sb, err := s.usable(ctx, sandboxID)
	if err != nil {
		return nil, err
	}

	genCtx, cancel := context.WithTimeout(ctx, s.replyTimeout)
	defer cancel()

	result, err := s.generator.Generate(genCtx, reply.Request{
		SystemPrompt: sb.CompiledPrompt,
		History:      history,
		Message:      message,
	})
	if err != nil {
		return nil, replyError(genCtx, err)
	}

	sb.TrialCount++
	if err := s.repo.Update(ctx, sb); err != nil {
		return nil, err
	}
	return result, nil
}

// MarkTested confirms the draft after at least one successful trial turn.
// Confirming an already TESTED sandbox is a no-op.
func (s *DefaultService) MarkTested(ctx context.Context, sandboxID string) (*Sandbox, error) {
	sb, err := s.usable(ctx, sandboxID)
	if err != nil {
		return nil, err
	}

	if sb.Status == StatusTested {
		return sb, nil
	}
	if sb.TrialCount < 1 {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeConflict,
			"sandbox needs at least one successful trial turn before confirmation", nil, platformerrors.CodeNotYetTrialed)
	}

	sb.Status = StatusTested
	if err := s.repo.Update(ctx, sb); err != nil {
		return nil, err
	}
	metrics.SandboxTransitions.WithLabelValues(string(StatusTested)).Inc()
	return sb, nil
}

// Promote replaces the production assistant for the sandbox's animal with the
// sandbox configuration, then removes the sandbox. The assistant upsert runs
// first and is idempotent; a PROMOTED marker makes retries after a partial
// failure skip the upsert and only finish the cleanup.
func (s *DefaultService) Promote(ctx context.Context, sandboxID string, authorized bool) (*assistant.Assistant, error) {
	sb, err := s.repo.FindByPublicID(ctx, sandboxID)
	if err != nil {
		return nil, err
	}

	if sb.Status.Usable() && sb.Expired(time.Now().UTC()) {
		if err := s.expire(ctx, sb); err != nil {
			return nil, err
		}
		return nil, expiredError(ctx, sandboxID)
	}
	if sb.Status == StatusExpired {
		return nil, expiredError(ctx, sandboxID)
	}

	if sb.Status == StatusPromoted {
		// Earlier promote applied the assistant but failed to clean up.
		if err := s.repo.Delete(ctx, sb.PublicID); err != nil {
			return nil, err
		}
		return s.assistants.FindByAnimalID(ctx, sb.AnimalID)
	}

	if sb.Status != StatusTested {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeConflict,
			"only a TESTED sandbox can be promoted", nil, platformerrors.CodeNotTested)
	}
	if !authorized {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeUnauthorized,
			"promotion requires a capability token", nil, platformerrors.CodeUnauthorized)
	}

	now := time.Now().UTC()
	promoted := &assistant.Assistant{
		PublicID:           "asst_" + uuid.NewString(),
		AnimalID:           sb.AnimalID,
		PersonalityID:      sb.PersonalityID,
		GuardrailID:        sb.GuardrailID,
		KnowledgeRefIDs:    sb.KnowledgeRefIDs,
		Status:             assistant.StatusActive,
		CompiledPromptHash: sb.CompiledPromptHash,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.assistants.UpsertByAnimalID(ctx, promoted); err != nil {
		return nil, err
	}

	// The upsert may have kept an existing record's public ID; evict its
	// cached prompt so the next read recompiles against the new config.
	if err := s.promptCache.Delete(ctx, promoted.PublicID); err != nil {
		s.log.Warn().Err(err).Str("assistant_id", promoted.PublicID).Msg("prompt cache eviction failed")
	}

	sb.Status = StatusPromoted
	if err := s.repo.Update(ctx, sb); err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, sb.PublicID); err != nil {
		return nil, err
	}

	metrics.SandboxTransitions.WithLabelValues(string(StatusPromoted)).Inc()
	s.log.Info().Str("sandbox_id", sandboxID).Str("animal_id", sb.AnimalID).Str("assistant_id", promoted.PublicID).Msg("sandbox promoted")
	return promoted, nil
}

// usable loads a sandbox and enforces the status+TTL access invariant shared
// by TrialTurn and MarkTested.
func (s *DefaultService) usable(ctx context.Context, sandboxID string) (*Sandbox, error) {
	sb, err := s.repo.FindByPublicID(ctx, sandboxID)
	if err != nil {
		return nil, err
	}
	if !sb.Status.Usable() {
		if sb.Status == StatusExpired {
			return nil, expiredError(ctx, sandboxID)
		}
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound,
			fmt.Sprintf("sandbox %s is no longer available", sandboxID), nil, platformerrors.CodeNotFound)
	}
	if sb.Expired(time.Now().UTC()) {
		if err := s.expire(ctx, sb); err != nil {
			return nil, err
		}
		return nil, expiredError(ctx, sandboxID)
	}
	return sb, nil
}

func (s *DefaultService) expire(ctx context.Context, sb *Sandbox) error {
	sb.Status = StatusExpired
	if err := s.repo.Update(ctx, sb); err != nil {
		return err
	}
	metrics.SandboxTransitions.WithLabelValues(string(StatusExpired)).Inc()
	return nil
}

func (s *DefaultService) compile(ctx context.Context, personalityID, guardrailID string, refs []string) (prompt.Compiled, error) {
	personality, err := s.personalities.FindByID(ctx, personalityID)
	if err != nil || personality == nil {
		return prompt.Compiled{}, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeUnprocessable,
			fmt.Sprintf("personality %q is unresolvable", personalityID), err, platformerrors.CodeConfigurationUnresolved)
	}
	guardrail, err := s.guardrails.FindByID(ctx, guardrailID)
	if err != nil || guardrail == nil {
		return prompt.Compiled{}, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeUnprocessable,
			fmt.Sprintf("guardrail %q is unresolvable", guardrailID), err, platformerrors.CodeConfigurationUnresolved)
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

func expiredError(ctx context.Context, sandboxID string) error {
	return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeGone,
		fmt.Sprintf("sandbox %s has expired", sandboxID), nil, platformerrors.CodeSandboxExpired)
}

func replyError(ctx context.Context, err error) error {
	if ctx.Err() != nil || platformerrors.IsErrorType(err, platformerrors.ErrorTypeTimeout) {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeTimeout,
			"reply generator timed out", err, platformerrors.CodeReplyGeneratorTimeout)
	}
	return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeExternal,
		"reply generator failed", err, platformerrors.CodeReplyGeneratorError)
}
