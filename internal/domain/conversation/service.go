package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"zooworld/assistant-api/internal/domain/assistant"
	"zooworld/assistant-api/internal/domain/catalog"
	"zooworld/assistant-api/internal/domain/reply"
	"zooworld/assistant-api/internal/infrastructure/metrics"
	"zooworld/assistant-api/internal/utils/platformerrors"
)

// Service owns session and turn lifecycles.
type Service interface {
	PostTurn(ctx context.Context, params TurnParams) (*TurnResult, error)
	GetHistory(ctx context.Context, filter HistoryFilter, includeMetadata bool, pagination *Pagination) ([]*SessionHistory, error)
	DeleteHistory(ctx context.Context, filter HistoryFilter, confirmGdpr bool, auditReason string) (int64, error)
	ListSessions(ctx context.Context, filter SessionFilter, pagination *Pagination) ([]*SessionDetail, error)
	GetSessionDetail(ctx context.Context, sessionID string) (*SessionDetail, error)
}

// TurnParams is one inbound conversation turn request.
type TurnParams struct {
	SessionID    string // empty starts a new session
	UserID       string
	AnimalID     string
	Message      string
	ContextTurns int    // 0 uses the configured default
	RequestID    string // optional idempotency key
}

// TurnResult is returned to the caller after the turn pair is durable.
type TurnResult struct {
	Reply            string
	SessionID        string
	TurnID           int
	Timestamp        time.Time
	Model            string
	TokensUsed       int
	ProcessingTimeMs int64
}

// DefaultService implements Service.
type DefaultService struct {
	repo         Repository
	assistants   assistant.Service
	animals      catalog.AnimalRepository
	generator    reply.Generator
	contextTurns int
	replyTimeout time.Duration
	log          zerolog.Logger
}

// NewService builds the conversation session engine.
func NewService(
	repo Repository,
	assistants assistant.Service,
	animals catalog.AnimalRepository,
	generator reply.Generator,
	contextTurns int,
	replyTimeout time.Duration,
	log zerolog.Logger,
) Service {
	if contextTurns <= 0 {
		contextTurns = 10
	}
	return &DefaultService{
		repo:         repo,
		assistants:   assistants,
		animals:      animals,
		generator:    generator,
		contextTurns: contextTurns,
		replyTimeout: replyTimeout,
		log:          log.With().Str("component", "conversation-engine").Logger(),
	}
}

// PostTurn validates, resolves the session and assistant, generates the reply,
// and only then persists the user+assistant turn pair as one atomic write.
// A generator failure or timeout therefore commits nothing.
func (s *DefaultService) PostTurn(ctx context.Context, params TurnParams) (*TurnResult, error) {
	if err := validateTurnParams(ctx, params); err != nil {
		return nil, err
	}

	sess, isNew, err := s.resolveSession(ctx, params)
	if err != nil {
		return nil, err
	}

	// De-duplicate retried requests before doing any work.
	if params.RequestID != "" && !isNew {
		if prior, err := s.repo.FindAssistantTurnByRequestID(ctx, sess.ID, params.RequestID); err == nil && prior != nil {
			return resultFromTurn(sess, prior), nil
		}
	}

	asst, err := s.assistants.GetByAnimal(ctx, params.AnimalID)
	if err != nil && !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
		return nil, err
	}
	if err != nil || asst.Status != assistant.StatusActive {
		metrics.TurnsTotal.WithLabelValues("rejected").Inc()
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeUnprocessable,
			fmt.Sprintf("animal %q has no active assistant", params.AnimalID), err, platformerrors.CodeAssistantNotConfigured)
	}

	effective, err := s.assistants.EffectivePrompt(ctx, asst.PublicID)
	if err != nil {
		return nil, err
	}

	window := params.ContextTurns
	if window <= 0 {
		window = s.contextTurns
	}
	var history []reply.Message
	if !isNew {
		turns, err := s.repo.LastTurns(ctx, sess.ID, window)
		if err != nil {
			return nil, err
		}
		history = make([]reply.Message, 0, len(turns))
		for _, t := range turns {
			history = append(history, reply.Message{Role: t.Role, Content: t.Content})
		}
	}

	genCtx, cancel := context.WithTimeout(ctx, s.replyTimeout)
	defer cancel()
	result, err := s.generator.Generate(genCtx, reply.Request{
		SystemPrompt: effective.Prompt,
		History:      history,
		Message:      params.Message,
	})
	if err != nil {
		metrics.TurnsTotal.WithLabelValues("upstream_error").Inc()
		if errors.Is(genCtx.Err(), context.DeadlineExceeded) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeTimeout,
				"reply generator timed out", err, platformerrors.CodeReplyGeneratorTimeout)
		}
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeExternal,
			"reply generator failed", err, platformerrors.CodeReplyGeneratorError)
	}

	now := time.Now().UTC()
	processingMs := result.ProcessingTime.Milliseconds()
	userTurn := &Turn{
		Role:      reply.RoleUser,
		Content:   params.Message,
		CreatedAt: now,
	}
	assistantTurn := &Turn{
		Role:             reply.RoleAssistant,
		Content:          result.Reply,
		CreatedAt:        now,
		AnimalName:       &sess.AnimalName,
		Model:            &result.Model,
		TokensUsed:       &result.TokensUsed,
		ProcessingTimeMs: &processingMs,
	}
	if params.RequestID != "" {
		assistantTurn.RequestID = &params.RequestID
	}

	if err := s.repo.CommitTurnPair(ctx, sess, isNew, userTurn, assistantTurn); err != nil {
		metrics.TurnsTotal.WithLabelValues("commit_error").Inc()
		return nil, err
	}

	metrics.TurnsTotal.WithLabelValues("ok").Inc()
	return resultFromTurn(sess, assistantTurn), nil
}

// GetHistory returns one envelope per matching session with turns in
// ascending order. A filter that matches nothing fails with not-found rather
// than returning an empty envelope.
func (s *DefaultService) GetHistory(ctx context.Context, filter HistoryFilter, includeMetadata bool, pagination *Pagination) ([]*SessionHistory, error) {
	scope := filter.Scope()
	if scope == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"history filter requires exactly one of sessionId, animalId, userId", nil, platformerrors.CodeInvalidRequest)
	}

	var sessions []*Session
	switch scope {
	case "session":
		sess, err := s.repo.FindSessionByPublicID(ctx, filter.SessionID)
		if err != nil {
			return nil, err
		}
		sessions = []*Session{sess}
	default:
		var err error
		sessions, err = s.repo.FindSessions(ctx, SessionFilter{UserID: filter.UserID, AnimalID: filter.AnimalID}, pagination)
		if err != nil {
			return nil, err
		}
		if len(sessions) == 0 {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound,
				"no sessions match the history filter", nil, platformerrors.CodeNotFound)
		}
	}

	histories := make([]*SessionHistory, 0, len(sessions))
	for _, sess := range sessions {
		turns, err := s.repo.LastTurns(ctx, sess.ID, 0)
		if err != nil {
			return nil, err
		}
		if !includeMetadata {
			for i := range turns {
				turns[i].StripMetadata()
			}
		}
		histories = append(histories, &SessionHistory{Session: *sess, Turns: turns})
	}
	return histories, nil
}

// DeleteHistory removes sessions and their turns by scope. User-scoped
// deletion is the regulatory erasure path and is refused without the
// confirmation flag and an audit reason; the refusal performs no deletion.
func (s *DefaultService) DeleteHistory(ctx context.Context, filter HistoryFilter, confirmGdpr bool, auditReason string) (int64, error) {
	scope := filter.Scope()
	if scope == "" {
		return 0, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"deletion filter requires exactly one of sessionId, animalId, userId", nil, platformerrors.CodeInvalidRequest)
	}

	var (
		deleted int64
		err     error
	)
	switch scope {
	case "session":
		deleted, err = s.repo.DeleteSessionByPublicID(ctx, filter.SessionID)
		if err == nil && deleted == 0 {
			return 0, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound,
				fmt.Sprintf("session %s not found", filter.SessionID), nil, platformerrors.CodeNotFound)
		}
	case "animal":
		deleted, err = s.repo.DeleteSessionsByAnimalID(ctx, filter.AnimalID)
	case "user":
		if !confirmGdpr || strings.TrimSpace(auditReason) == "" {
			return 0, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
				"deleting by user requires confirmGdpr=true and an audit reason", nil, platformerrors.CodeGdprConfirmationRequired)
		}
		deleted, err = s.repo.DeleteSessionsByUserID(ctx, filter.UserID)
		if err == nil {
			s.log.Info().
				Str("user_id", filter.UserID).
				Str("audit_reason", auditReason).
				Int64("sessions_deleted", deleted).
				Msg("user conversation history erased")
		}
	}
	if err != nil {
		return 0, err
	}

	metrics.HistoryDeletions.WithLabelValues(scope).Inc()
	return deleted, nil
}

// ListSessions returns administrative summaries without turn bodies.
func (s *DefaultService) ListSessions(ctx context.Context, filter SessionFilter, pagination *Pagination) ([]*SessionDetail, error) {
	sessions, err := s.repo.FindSessions(ctx, filter, pagination)
	if err != nil {
		return nil, err
	}
	details := make([]*SessionDetail, 0, len(sessions))
	for _, sess := range sessions {
		details = append(details, &SessionDetail{
			Session:  *sess,
			Duration: sess.Duration(),
		})
	}
	return details, nil
}

// GetSessionDetail returns one session with turns and derived fields.
func (s *DefaultService) GetSessionDetail(ctx context.Context, sessionID string) (*SessionDetail, error) {
	sess, err := s.repo.FindSessionByPublicID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	turns, err := s.repo.LastTurns(ctx, sess.ID, 0)
	if err != nil {
		return nil, err
	}
	return &SessionDetail{
		Session:  *sess,
		Duration: sess.Duration(),
		Summary:  summarize(turns),
		Turns:    turns,
	}, nil
}

func (s *DefaultService) resolveSession(ctx context.Context, params TurnParams) (*Session, bool, error) {
	if params.SessionID != "" {
		sess, err := s.repo.FindSessionByPublicID(ctx, params.SessionID)
		if err != nil {
			return nil, false, err
		}
		if sess.UserID != params.UserID || sess.AnimalID != params.AnimalID {
			return nil, false, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeConflict,
				fmt.Sprintf("session %s belongs to a different user/animal pairing", params.SessionID),
				nil, platformerrors.CodeSessionMismatch)
		}
		return sess, false, nil
	}

	animal, err := s.animals.FindByID(ctx, params.AnimalID)
	if err != nil || animal == nil {
		return nil, false, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			fmt.Sprintf("animal %q does not exist", params.AnimalID), err, platformerrors.CodeInvalidAnimal)
	}

	now := time.Now().UTC()
	return &Session{
		PublicID:        "sess_" + uuid.NewString(),
		UserID:          params.UserID,
		AnimalID:        params.AnimalID,
		AnimalName:      animal.Name,
		StartTime:       now,
		LastMessageTime: now,
	}, true, nil
}

func validateTurnParams(ctx context.Context, params TurnParams) error {
	missing := []string{}
	if strings.TrimSpace(params.AnimalID) == "" {
		missing = append(missing, "animalId")
	}
	if strings.TrimSpace(params.Message) == "" {
		missing = append(missing, "message")
	}
	if strings.TrimSpace(params.UserID) == "" {
		missing = append(missing, "userId")
	}
	if len(missing) > 0 {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", ")), nil, platformerrors.CodeInvalidRequest)
	}
	return nil
}

func resultFromTurn(sess *Session, t *Turn) *TurnResult {
	res := &TurnResult{
		Reply:     t.Content,
		SessionID: sess.PublicID,
		TurnID:    t.TurnID,
		Timestamp: t.CreatedAt,
	}
	if t.Model != nil {
		res.Model = *t.Model
	}
	if t.TokensUsed != nil {
		res.TokensUsed = *t.TokensUsed
	}
	if t.ProcessingTimeMs != nil {
		res.ProcessingTimeMs = *t.ProcessingTimeMs
	}
	return res
}

func summarize(turns []Turn) string {
	for _, t := range turns {
		if t.Role == reply.RoleUser {
			if len(t.Content) > 80 {
				return t.Content[:77] + "..."
			}
			return t.Content
		}
	}
	return ""
}
