package v1

import (
	"github.com/gin-gonic/gin"

	"zooworld/assistant-api/internal/interfaces/httpserver/handlers"
)

func registerAssistantRoutes(router gin.IRoutes, handler *handlers.AssistantHandler) {
	router.POST("/assistants", handler.Create)
	router.GET("/assistants", handler.List)
	router.GET("/assistants/:assistant_id", handler.Get)
	router.PATCH("/assistants/:assistant_id", handler.Update)
	router.PUT("/assistants/:assistant_id", handler.Update)
	router.DELETE("/assistants/:assistant_id", handler.Delete)
	router.GET("/assistants/:assistant_id/effective_prompt", handler.EffectivePrompt)
}
