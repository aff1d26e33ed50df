package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"zooworld/assistant-api/internal/domain/assistant"
	"zooworld/assistant-api/internal/infrastructure/observability"
	"zooworld/assistant-api/internal/interfaces/httpserver/requests"
	"zooworld/assistant-api/internal/interfaces/httpserver/responses"
	"zooworld/assistant-api/internal/utils/platformerrors"
)

// AssistantHandler exposes HTTP entrypoints for assistant management.
type AssistantHandler struct {
	service assistant.Service
	log     zerolog.Logger
}

// NewAssistantHandler constructs the handler.
func NewAssistantHandler(service assistant.Service, log zerolog.Logger) *AssistantHandler {
	return &AssistantHandler{
		service: service,
		log:     log.With().Str("handler", "assistant").Logger(),
	}
}

// Create handles POST /v1/assistants
// @Summary Create an assistant
// @Description Configures the chatbot behavior for one animal; at most one assistant per animal
// @Tags Assistants
// @Accept json
// @Produce json
// @Param request body requests.CreateAssistantRequest true "Assistant configuration"
// @Success 201 {object} responses.AssistantPayload
// @Failure 400 {object} responses.ErrorResponse
// @Failure 409 {object} responses.ErrorResponse
// @Router /v1/assistants [post]
func (h *AssistantHandler) Create(c *gin.Context) {
	var req requests.CreateAssistantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid assistant request body", platformerrors.CodeInvalidRequest)
		return
	}

	a, err := h.service.Create(c.Request.Context(), assistant.CreateParams{
		AnimalID:        req.AnimalID,
		PersonalityID:   req.PersonalityID,
		GuardrailID:     req.GuardrailID,
		KnowledgeRefIDs: req.KnowledgeRefIDs,
	})
	if err != nil {
		responses.HandleError(c, err, "failed to create assistant")
		return
	}

	c.JSON(http.StatusCreated, responses.MapAssistantToResponse(a))
}

// List handles GET /v1/assistants
// @Summary List assistants
// @Description Lists all assistants, optionally narrowed to one animal
// @Tags Assistants
// @Produce json
// @Param animal_id query string false "Animal ID"
// @Success 200 {array} responses.AssistantPayload
// @Failure 404 {object} responses.ErrorResponse
// @Router /v1/assistants [get]
func (h *AssistantHandler) List(c *gin.Context) {
	if animalID := c.Query("animal_id"); animalID != "" {
		a, err := h.service.GetByAnimal(c.Request.Context(), animalID)
		if err != nil {
			responses.HandleError(c, err, "failed to get assistant")
			return
		}
		c.JSON(http.StatusOK, []responses.AssistantPayload{responses.MapAssistantToResponse(a)})
		return
	}

	assistants, err := h.service.List(c.Request.Context())
	if err != nil {
		responses.HandleError(c, err, "failed to list assistants")
		return
	}

	out := make([]responses.AssistantPayload, 0, len(assistants))
	for _, a := range assistants {
		out = append(out, responses.MapAssistantToResponse(a))
	}
	c.JSON(http.StatusOK, out)
}

// Get handles GET /v1/assistants/:assistant_id
// @Summary Get an assistant
// @Tags Assistants
// @Produce json
// @Param assistant_id path string true "Assistant ID"
// @Success 200 {object} responses.AssistantPayload
// @Failure 404 {object} responses.ErrorResponse
// @Router /v1/assistants/{assistant_id} [get]
func (h *AssistantHandler) Get(c *gin.Context) {
	a, err := h.service.Get(c.Request.Context(), c.Param("assistant_id"))
	if err != nil {
		responses.HandleError(c, err, "failed to get assistant")
		return
	}

	c.JSON(http.StatusOK, responses.MapAssistantToResponse(a))
}

// Update handles PATCH /v1/assistants/:assistant_id
// @Summary Update an assistant
// @Description Applies a partial update; animal reassignment is rejected
// @Tags Assistants
// @Accept json
// @Produce json
// @Param assistant_id path string true "Assistant ID"
// @Param request body requests.UpdateAssistantRequest true "Partial update"
// @Success 200 {object} responses.AssistantPayload
// @Failure 400 {object} responses.ErrorResponse
// @Failure 409 {object} responses.ErrorResponse
// @Router /v1/assistants/{assistant_id} [patch]
func (h *AssistantHandler) Update(c *gin.Context) {
	var req requests.UpdateAssistantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid assistant update body", platformerrors.CodeInvalidRequest)
		return
	}

	params := assistant.UpdateParams{
		AnimalID:        req.AnimalID,
		PersonalityID:   req.PersonalityID,
		GuardrailID:     req.GuardrailID,
		KnowledgeRefIDs: req.KnowledgeRefIDs,
	}
	if req.Status != nil {
		status := assistant.Status(*req.Status)
		params.Status = &status
	}

	a, err := h.service.Update(c.Request.Context(), c.Param("assistant_id"), params)
	if err != nil {
		responses.HandleError(c, err, "failed to update assistant")
		return
	}

	c.JSON(http.StatusOK, responses.MapAssistantToResponse(a))
}

// Delete handles DELETE /v1/assistants/:assistant_id
// @Summary Delete an assistant
// @Description Removes the assistant; conversation history is untouched
// @Tags Assistants
// @Param assistant_id path string true "Assistant ID"
// @Success 204
// @Failure 404 {object} responses.ErrorResponse
// @Router /v1/assistants/{assistant_id} [delete]
func (h *AssistantHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("assistant_id")); err != nil {
		responses.HandleError(c, err, "failed to delete assistant")
		return
	}

	c.Status(http.StatusNoContent)
}

// EffectivePrompt handles GET /v1/assistants/:assistant_id/effective_prompt
// @Summary Get the effective prompt
// @Description Resolves the compiled prompt, recompiling when shared configuration changed
// @Tags Assistants
// @Produce json
// @Param assistant_id path string true "Assistant ID"
// @Success 200 {object} responses.EffectivePromptPayload
// @Failure 404 {object} responses.ErrorResponse
// @Failure 422 {object} responses.ErrorResponse
// @Router /v1/assistants/{assistant_id}/effective_prompt [get]
func (h *AssistantHandler) EffectivePrompt(c *gin.Context) {
	assistantID := c.Param("assistant_id")

	ctx, span := observability.StartPromptSpan(c.Request.Context(), assistantID)
	defer span.End()

	p, err := h.service.EffectivePrompt(ctx, assistantID)
	if err != nil {
		observability.RecordError(span, err)
		responses.HandleError(c, err, "failed to resolve effective prompt")
		return
	}

	c.JSON(http.StatusOK, responses.MapEffectivePromptToResponse(assistantID, p))
}
