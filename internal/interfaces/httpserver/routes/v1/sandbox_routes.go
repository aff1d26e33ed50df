package v1

import (
	"github.com/gin-gonic/gin"

	"zooworld/assistant-api/internal/interfaces/httpserver/handlers"
)

func registerSandboxRoutes(router gin.IRoutes, handler *handlers.SandboxHandler) {
	router.POST("/sandboxes", handler.Create)
	router.GET("/sandboxes/:sandbox_id", handler.Get)
	router.POST("/sandboxes/:sandbox_id/trial_turn", handler.TrialTurn)
	router.POST("/sandboxes/:sandbox_id/mark_tested", handler.MarkTested)
	router.POST("/sandboxes/:sandbox_id/promote", handler.Promote)
}
