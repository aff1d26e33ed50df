package v1

import (
	"github.com/gin-gonic/gin"

	"zooworld/assistant-api/internal/interfaces/httpserver/handlers"
)

func registerCatalogRoutes(router gin.IRoutes, handler *handlers.CatalogHandler) {
	router.PUT("/personalities/:personality_id", handler.SavePersonality)
	router.GET("/personalities/:personality_id", handler.GetPersonality)
	router.GET("/personalities", handler.ListPersonalities)
	router.DELETE("/personalities/:personality_id", handler.DeletePersonality)

	router.PUT("/guardrails/:guardrail_id", handler.SaveGuardrail)
	router.GET("/guardrails/:guardrail_id", handler.GetGuardrail)
	router.GET("/guardrails", handler.ListGuardrails)
	router.DELETE("/guardrails/:guardrail_id", handler.DeleteGuardrail)

	router.PUT("/animals/:animal_id", handler.SaveAnimal)
	router.GET("/animals/:animal_id", handler.GetAnimal)
}
