package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"zooworld/assistant-api/internal/domain/catalog"
	"zooworld/assistant-api/internal/infrastructure/auth"
	"zooworld/assistant-api/internal/interfaces/httpserver/requests"
	"zooworld/assistant-api/internal/interfaces/httpserver/responses"
	"zooworld/assistant-api/internal/utils/platformerrors"
)

// CatalogHandler exposes HTTP entrypoints for the personality and guardrail
// catalog plus the animal registry setup path.
type CatalogHandler struct {
	service catalog.Service
	auth    *auth.Validator
	log     zerolog.Logger
}

// NewCatalogHandler constructs the handler.
func NewCatalogHandler(service catalog.Service, authValidator *auth.Validator, log zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		auth:    authValidator,
		log:     log.With().Str("handler", "catalog").Logger(),
	}
}

// SavePersonality handles PUT /v1/personalities/:personality_id
// @Summary Create or replace a personality
// @Description Replacing an existing personality stales every assistant that references it
// @Tags Catalog
// @Accept json
// @Produce json
// @Param personality_id path string true "Personality ID"
// @Param request body requests.SavePersonalityRequest true "Personality definition"
// @Success 200 {object} responses.PersonalityPayload
// @Failure 400 {object} responses.ErrorResponse
// @Router /v1/personalities/{personality_id} [put]
func (h *CatalogHandler) SavePersonality(c *gin.Context) {
	var req requests.SavePersonalityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid personality body", platformerrors.CodeInvalidRequest)
		return
	}

	p, err := h.service.SavePersonality(c.Request.Context(), &catalog.Personality{
		ID:          c.Param("personality_id"),
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		responses.HandleError(c, err, "failed to save personality")
		return
	}

	c.JSON(http.StatusOK, responses.MapPersonalityToResponse(p))
}

// GetPersonality handles GET /v1/personalities/:personality_id
// @Summary Get a personality
// @Tags Catalog
// @Produce json
// @Param personality_id path string true "Personality ID"
// @Success 200 {object} responses.PersonalityPayload
// @Failure 404 {object} responses.ErrorResponse
// @Router /v1/personalities/{personality_id} [get]
func (h *CatalogHandler) GetPersonality(c *gin.Context) {
	p, err := h.service.GetPersonality(c.Request.Context(), c.Param("personality_id"))
	if err != nil {
		responses.HandleError(c, err, "failed to get personality")
		return
	}

	c.JSON(http.StatusOK, responses.MapPersonalityToResponse(p))
}

// ListPersonalities handles GET /v1/personalities
// @Summary List personalities
// @Tags Catalog
// @Produce json
// @Success 200 {array} responses.PersonalityPayload
// @Router /v1/personalities [get]
func (h *CatalogHandler) ListPersonalities(c *gin.Context) {
	items, err := h.service.ListPersonalities(c.Request.Context())
	if err != nil {
		responses.HandleError(c, err, "failed to list personalities")
		return
	}

	out := make([]responses.PersonalityPayload, 0, len(items))
	for _, p := range items {
		out = append(out, responses.MapPersonalityToResponse(p))
	}
	c.JSON(http.StatusOK, out)
}

// DeletePersonality handles DELETE /v1/personalities/:personality_id
// @Summary Delete a personality
// @Tags Catalog
// @Param personality_id path string true "Personality ID"
// @Success 204
// @Failure 404 {object} responses.ErrorResponse
// @Router /v1/personalities/{personality_id} [delete]
func (h *CatalogHandler) DeletePersonality(c *gin.Context) {
	if err := h.service.DeletePersonality(c.Request.Context(), c.Param("personality_id")); err != nil {
		responses.HandleError(c, err, "failed to delete personality")
		return
	}

	c.Status(http.StatusNoContent)
}

// SaveGuardrail handles PUT /v1/guardrails/:guardrail_id
// @Summary Create or replace a guardrail
// @Description Rule order is preserved as submitted
// @Tags Catalog
// @Accept json
// @Produce json
// @Param guardrail_id path string true "Guardrail ID"
// @Param request body requests.SaveGuardrailRequest true "Guardrail definition"
// @Success 200 {object} responses.GuardrailPayload
// @Failure 400 {object} responses.ErrorResponse
// @Router /v1/guardrails/{guardrail_id} [put]
func (h *CatalogHandler) SaveGuardrail(c *gin.Context) {
	var req requests.SaveGuardrailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid guardrail body", platformerrors.CodeInvalidRequest)
		return
	}

	g, err := h.service.SaveGuardrail(c.Request.Context(), &catalog.Guardrail{
		ID:       c.Param("guardrail_id"),
		Name:     req.Name,
		Rules:    req.Rules,
		Severity: catalog.GuardrailSeverity(req.Severity),
	})
	if err != nil {
		responses.HandleError(c, err, "failed to save guardrail")
		return
	}

	c.JSON(http.StatusOK, responses.MapGuardrailToResponse(g))
}

// GetGuardrail handles GET /v1/guardrails/:guardrail_id
// @Summary Get a guardrail
// @Tags Catalog
// @Produce json
// @Param guardrail_id path string true "Guardrail ID"
// @Success 200 {object} responses.GuardrailPayload
// @Failure 404 {object} responses.ErrorResponse
// @Router /v1/guardrails/{guardrail_id} [get]
func (h *CatalogHandler) GetGuardrail(c *gin.Context) {
	g, err := h.service.GetGuardrail(c.Request.Context(), c.Param("guardrail_id"))
	if err != nil {
		responses.HandleError(c, err, "failed to get guardrail")
		return
	}

	c.JSON(http.StatusOK, responses.MapGuardrailToResponse(g))
}

// ListGuardrails handles GET /v1/guardrails
// @Summary List guardrails
// @Tags Catalog
// @Produce json
// @Success 200 {array} responses.GuardrailPayload
// @Router /v1/guardrails [get]
func (h *CatalogHandler) ListGuardrails(c *gin.Context) {
	items, err := h.service.ListGuardrails(c.Request.Context())
	if err != nil {
		responses.HandleError(c, err, "failed to list guardrails")
		return
	}

	out := make([]responses.GuardrailPayload, 0, len(items))
	for _, g := range items {
		out = append(out, responses.MapGuardrailToResponse(g))
	}
	c.JSON(http.StatusOK, out)
}

// DeleteGuardrail handles DELETE /v1/guardrails/:guardrail_id
// @Summary Delete a guardrail
// @Tags Catalog
// @Param guardrail_id path string true "Guardrail ID"
// @Success 204
// @Failure 404 {object} responses.ErrorResponse
// @Router /v1/guardrails/{guardrail_id} [delete]
func (h *CatalogHandler) DeleteGuardrail(c *gin.Context) {
	if err := h.service.DeleteGuardrail(c.Request.Context(), c.Param("guardrail_id")); err != nil {
		responses.HandleError(c, err, "failed to delete guardrail")
		return
	}

	c.Status(http.StatusNoContent)
}

// SaveAnimal handles PUT /v1/animals/:animal_id
// @Summary Create or replace an ambassador registry entry
// @Description Setup path for environments without the upstream registry; requires the catalog:manage scope
// @Tags Catalog
// @Accept json
// @Produce json
// @Param animal_id path string true "Animal ID"
// @Param request body requests.SaveAnimalRequest true "Animal definition"
// @Success 200 {object} responses.AnimalPayload
// @Failure 400 {object} responses.ErrorResponse
// @Failure 403 {object} responses.ErrorResponse
// @Router /v1/animals/{animal_id} [put]
func (h *CatalogHandler) SaveAnimal(c *gin.Context) {
	if !h.auth.HasScope(c, auth.ScopeManageSetup) {
		responses.HandleNewError(c, platformerrors.ErrorTypeForbidden, "animal registration requires the catalog:manage scope", platformerrors.CodeUnauthorized)
		return
	}

	var req requests.SaveAnimalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid animal body", platformerrors.CodeInvalidRequest)
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	a, err := h.service.SaveAnimal(c.Request.Context(), &catalog.Animal{
		ID:      c.Param("animal_id"),
		Name:    req.Name,
		Species: req.Species,
		Active:  active,
	})
	if err != nil {
		responses.HandleError(c, err, "failed to save animal")
		return
	}

	c.JSON(http.StatusOK, responses.MapAnimalToResponse(a))
}

// GetAnimal handles GET /v1/animals/:animal_id
// @Summary Get an ambassador registry entry
// @Tags Catalog
// @Produce json
// @Param animal_id path string true "Animal ID"
// @Success 200 {object} responses.AnimalPayload
// @Failure 404 {object} responses.ErrorResponse
// @Router /v1/animals/{animal_id} [get]
func (h *CatalogHandler) GetAnimal(c *gin.Context) {
	a, err := h.service.GetAnimal(c.Request.Context(), c.Param("animal_id"))
	if err != nil {
		responses.HandleError(c, err, "failed to get animal")
		return
	}

	c.JSON(http.StatusOK, responses.MapAnimalToResponse(a))
}
