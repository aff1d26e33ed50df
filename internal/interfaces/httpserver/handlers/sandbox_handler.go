package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"zooworld/assistant-api/internal/domain/reply"
	"zooworld/assistant-api/internal/domain/sandbox"
	"zooworld/assistant-api/internal/infrastructure/auth"
	"zooworld/assistant-api/internal/infrastructure/observability"
	"zooworld/assistant-api/internal/interfaces/httpserver/requests"
	"zooworld/assistant-api/internal/interfaces/httpserver/responses"
	"zooworld/assistant-api/internal/utils/platformerrors"
)

// SandboxHandler exposes HTTP entrypoints for the sandbox lifecycle.
type SandboxHandler struct {
	service sandbox.Service
	auth    *auth.Validator
	log     zerolog.Logger
}

// NewSandboxHandler constructs the handler.
func NewSandboxHandler(service sandbox.Service, authValidator *auth.Validator, log zerolog.Logger) *SandboxHandler {
	return &SandboxHandler{
		service: service,
		auth:    authValidator,
		log:     log.With().Str("handler", "sandbox").Logger(),
	}
}

// Create handles POST /v1/sandboxes
// @Summary Create a sandbox draft
// @Description Compiles a trial prompt and opens a short-lived DRAFT sandbox
// @Tags Sandboxes
// @Accept json
// @Produce json
// @Param request body requests.CreateSandboxRequest true "Sandbox configuration"
// @Success 201 {object} responses.SandboxPayload
// @Failure 400 {object} responses.ErrorResponse
// @Failure 422 {object} responses.ErrorResponse
// @Router /v1/sandboxes [post]
func (h *SandboxHandler) Create(c *gin.Context) {
	var req requests.CreateSandboxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid sandbox request body", platformerrors.CodeInvalidRequest)
		return
	}

	sb, err := h.service.Create(c.Request.Context(), sandbox.CreateParams{
		AnimalID:        req.AnimalID,
		PersonalityID:   req.PersonalityID,
		GuardrailID:     req.GuardrailID,
		KnowledgeRefIDs: req.KnowledgeRefIDs,
	})
	if err != nil {
		responses.HandleError(c, err, "failed to create sandbox")
		return
	}

	c.JSON(http.StatusCreated, responses.MapSandboxToResponse(sb))
}

// Get handles GET /v1/sandboxes/:sandbox_id
// @Summary Get a sandbox
// @Description Retrieves a sandbox; a sandbox past its TTL is reported as EXPIRED
// @Tags Sandboxes
// @Produce json
// @Param sandbox_id path string true "Sandbox ID"
// @Success 200 {object} responses.SandboxPayload
// @Failure 404 {object} responses.ErrorResponse
// @Router /v1/sandboxes/{sandbox_id} [get]
func (h *SandboxHandler) Get(c *gin.Context) {
	sb, err := h.service.Get(c.Request.Context(), c.Param("sandbox_id"))
	if err != nil {
		responses.HandleError(c, err, "failed to get sandbox")
		return
	}

	c.JSON(http.StatusOK, responses.MapSandboxToResponse(sb))
}

// TrialTurn handles POST /v1/sandboxes/:sandbox_id/trial_turn
// @Summary Run a trial turn
// @Description Runs one ephemeral turn against the sandbox prompt; nothing is written to session history
// @Tags Sandboxes
// @Accept json
// @Produce json
// @Param sandbox_id path string true "Sandbox ID"
// @Param request body requests.TrialTurnRequest true "Trial message"
// @Success 200 {object} responses.TrialTurnPayload
// @Failure 400 {object} responses.ErrorResponse
// @Failure 410 {object} responses.ErrorResponse
// @Router /v1/sandboxes/{sandbox_id}/trial_turn [post]
func (h *SandboxHandler) TrialTurn(c *gin.Context) {
	var req requests.TrialTurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid trial request body", platformerrors.CodeInvalidRequest)
		return
	}

	history := make([]reply.Message, 0, len(req.History))
	for _, m := range req.History {
		history = append(history, reply.Message{Role: reply.Role(m.Role), Content: m.Content})
	}

	result, err := h.service.TrialTurn(c.Request.Context(), c.Param("sandbox_id"), req.Message, history)
	if err != nil {
		responses.HandleError(c, err, "failed to run trial turn")
		return
	}

	c.JSON(http.StatusOK, responses.MapTrialTurnToResponse(result))
}

// MarkTested handles POST /v1/sandboxes/:sandbox_id/mark_tested
// @Summary Confirm a sandbox as tested
// @Description Moves the draft to TESTED after at least one successful trial turn
// @Tags Sandboxes
// @Produce json
// @Param sandbox_id path string true "Sandbox ID"
// @Success 200 {object} responses.SandboxPayload
// @Failure 404 {object} responses.ErrorResponse
// @Failure 409 {object} responses.ErrorResponse
// @Failure 410 {object} responses.ErrorResponse
// @Router /v1/sandboxes/{sandbox_id}/mark_tested [post]
func (h *SandboxHandler) MarkTested(c *gin.Context) {
	sb, err := h.service.MarkTested(c.Request.Context(), c.Param("sandbox_id"))
	if err != nil {
		responses.HandleError(c, err, "failed to mark sandbox tested")
		return
	}

	c.JSON(http.StatusOK, responses.MapSandboxToResponse(sb))
}

// Promote handles POST /v1/sandboxes/:sandbox_id/promote
// @Summary Promote a sandbox
// @Description Replaces the animal's production assistant with the sandbox configuration
// @Tags Sandboxes
// @Produce json
// @Param sandbox_id path string true "Sandbox ID"
// @Success 200 {object} responses.AssistantPayload
// @Failure 401 {object} responses.ErrorResponse
// @Failure 409 {object} responses.ErrorResponse
// @Failure 410 {object} responses.ErrorResponse
// @Router /v1/sandboxes/{sandbox_id}/promote [post]
func (h *SandboxHandler) Promote(c *gin.Context) {
	sandboxID := c.Param("sandbox_id")
	authorized := h.auth.HasScope(c, auth.ScopePromote)

	ctx, span := observability.StartSandboxSpan(c.Request.Context(), "promote", sandboxID, "", "")
	defer span.End()

	promoted, err := h.service.Promote(ctx, sandboxID, authorized)
	if err != nil {
		observability.RecordError(span, err)
		responses.HandleError(c, err, "failed to promote sandbox")
		return
	}
	observability.AddStatusTransition(span, string(sandbox.StatusTested), string(sandbox.StatusPromoted))

	c.JSON(http.StatusOK, responses.MapAssistantToResponse(promoted))
}
