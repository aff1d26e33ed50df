package v1

import (
	"github.com/gin-gonic/gin"

	"zooworld/assistant-api/internal/interfaces/httpserver/handlers"
)

func registerConversationRoutes(router gin.IRoutes, handler *handlers.ConversationHandler) {
	router.POST("/convo_turn", handler.PostTurn)
	router.GET("/convo_history", handler.GetHistory)
	router.DELETE("/convo_history", handler.DeleteHistory)
	router.GET("/conversations/sessions", handler.ListSessions)
	router.GET("/conversations/sessions/:session_id", handler.GetSession)
}
