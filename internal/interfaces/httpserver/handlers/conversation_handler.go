package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"zooworld/assistant-api/internal/domain/conversation"
	"zooworld/assistant-api/internal/infrastructure/auth"
	"zooworld/assistant-api/internal/infrastructure/observability"
	"zooworld/assistant-api/internal/interfaces/httpserver/requests"
	"zooworld/assistant-api/internal/interfaces/httpserver/responses"
	"zooworld/assistant-api/internal/utils/platformerrors"
)

// ConversationHandler exposes HTTP entrypoints for the conversation engine.
type ConversationHandler struct {
	service conversation.Service
	auth    *auth.Validator
	log     zerolog.Logger
}

// NewConversationHandler constructs the handler.
func NewConversationHandler(service conversation.Service, authValidator *auth.Validator, log zerolog.Logger) *ConversationHandler {
	return &ConversationHandler{
		service: service,
		auth:    authValidator,
		log:     log.With().Str("handler", "conversation").Logger(),
	}
}

// PostTurn handles POST /v1/convo_turn
// @Summary Post a conversation turn
// @Description Sends one user message and returns the assistant reply once the turn pair is durable
// @Tags Conversations
// @Accept json
// @Produce json
// @Param request body requests.ConvoTurnRequest true "Turn request"
// @Success 200 {object} responses.TurnResultPayload
// @Failure 400 {object} responses.ErrorResponse
// @Failure 422 {object} responses.ErrorResponse
// @Failure 504 {object} responses.ErrorResponse
// @Router /v1/convo_turn [post]
func (h *ConversationHandler) PostTurn(c *gin.Context) {
	var req requests.ConvoTurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid turn request body", platformerrors.CodeInvalidRequest)
		return
	}

	userID := req.UserID
	if userID == "" {
		userID = auth.UserID(c)
	}

	ctx, span := observability.StartTurnSpan(c.Request.Context(), req.SessionID, req.AnimalID, userID)
	defer span.End()

	result, err := h.service.PostTurn(ctx, conversation.TurnParams{
		SessionID:    req.SessionID,
		UserID:       userID,
		AnimalID:     req.AnimalID,
		Message:      req.Message,
		ContextTurns: req.ContextTurns,
		RequestID:    req.RequestID,
	})
	if err != nil {
		observability.RecordError(span, err)
		responses.HandleError(c, err, "failed to post turn")
		return
	}

	c.JSON(http.StatusOK, responses.MapTurnResultToResponse(result))
}

// GetHistory handles GET /v1/convo_history
// @Summary Get conversation history
// @Description Retrieves ordered turns for a session, animal, or user scope
// @Tags Conversations
// @Produce json
// @Param session_id query string false "Session ID"
// @Param animal_id query string false "Animal ID"
// @Param user_id query string false "User ID"
// @Param include_metadata query bool false "Include model metadata"
// @Success 200 {array} responses.SessionHistoryPayload
// @Failure 400 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /v1/convo_history [get]
func (h *ConversationHandler) GetHistory(c *gin.Context) {
	filter := conversation.HistoryFilter{
		SessionID: c.Query("session_id"),
		AnimalID:  c.Query("animal_id"),
		UserID:    c.Query("user_id"),
	}
	includeMetadata := c.Query("include_metadata") == "true"

	histories, err := h.service.GetHistory(c.Request.Context(), filter, includeMetadata, paginationFromQuery(c))
	if err != nil {
		responses.HandleError(c, err, "failed to get history")
		return
	}

	c.JSON(http.StatusOK, responses.MapHistoryToResponse(histories))
}

// DeleteHistory handles DELETE /v1/convo_history
// @Summary Delete conversation history
// @Description Deletes sessions and turns by session, animal, or user scope; user scope is the GDPR erasure path
// @Tags Conversations
// @Accept json
// @Param session_id query string false "Session ID"
// @Param animal_id query string false "Animal ID"
// @Param user_id query string false "User ID"
// @Param confirm_gdpr query bool false "Confirm user-scoped erasure"
// @Param audit_reason query string false "Audit reason for user-scoped erasure"
// @Param request body requests.DeleteHistoryRequest false "Deletion request (alternative to query parameters)"
// @Success 204
// @Failure 400 {object} responses.ErrorResponse
// @Failure 403 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /v1/convo_history [delete]
func (h *ConversationHandler) DeleteHistory(c *gin.Context) {
	var req requests.DeleteHistoryRequest
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid deletion request body", platformerrors.CodeInvalidRequest)
			return
		}
	}

	// Query parameters take precedence over the body.
	if v := c.Query("session_id"); v != "" {
		req.SessionID = v
	}
	if v := c.Query("animal_id"); v != "" {
		req.AnimalID = v
	}
	if v := c.Query("user_id"); v != "" {
		req.UserID = v
	}
	if c.Query("confirm_gdpr") == "true" {
		req.ConfirmGdpr = true
	}
	if v := c.Query("audit_reason"); v != "" {
		req.AuditReason = v
	}

	filter := conversation.HistoryFilter{
		SessionID: req.SessionID,
		AnimalID:  req.AnimalID,
		UserID:    req.UserID,
	}

	if filter.Scope() == "user" && !h.auth.HasScope(c, auth.ScopeEraseUser) {
		responses.HandleNewError(c, platformerrors.ErrorTypeForbidden, "user erasure requires the conversations:erase scope", platformerrors.CodeUnauthorized)
		return
	}

	if _, err := h.service.DeleteHistory(c.Request.Context(), filter, req.ConfirmGdpr, req.AuditReason); err != nil {
		responses.HandleError(c, err, "failed to delete history")
		return
	}

	c.Status(http.StatusNoContent)
}

// ListSessions handles GET /v1/conversations/sessions
// @Summary List conversation sessions
// @Description Lists session summaries without turn bodies
// @Tags Conversations
// @Produce json
// @Param user_id query string false "User ID"
// @Param animal_id query string false "Animal ID"
// @Success 200 {array} responses.SessionDetailPayload
// @Failure 500 {object} responses.ErrorResponse
// @Router /v1/conversations/sessions [get]
func (h *ConversationHandler) ListSessions(c *gin.Context) {
	filter := conversation.SessionFilter{
		UserID:   c.Query("user_id"),
		AnimalID: c.Query("animal_id"),
	}

	details, err := h.service.ListSessions(c.Request.Context(), filter, paginationFromQuery(c))
	if err != nil {
		responses.HandleError(c, err, "failed to list sessions")
		return
	}

	c.JSON(http.StatusOK, responses.MapSessionListToResponse(details))
}

// GetSession handles GET /v1/conversations/sessions/:session_id
// @Summary Get session detail
// @Description Retrieves one session with its turns and derived fields
// @Tags Conversations
// @Produce json
// @Param session_id path string true "Session ID"
// @Success 200 {object} responses.SessionDetailPayload
// @Failure 404 {object} responses.ErrorResponse
// @Router /v1/conversations/sessions/{session_id} [get]
func (h *ConversationHandler) GetSession(c *gin.Context) {
	detail, err := h.service.GetSessionDetail(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		responses.HandleError(c, err, "failed to get session")
		return
	}

	c.JSON(http.StatusOK, responses.MapSessionDetailToResponse(detail))
}

func paginationFromQuery(c *gin.Context) *conversation.Pagination {
	pageSize, err := strconv.Atoi(c.Query("page_size"))
	if err != nil || pageSize <= 0 {
		return nil
	}
	page, _ := strconv.Atoi(c.Query("page"))
	return &conversation.Pagination{Page: page, PageSize: pageSize}
}
