package handlers

import (
	"github.com/rs/zerolog"

	"zooworld/assistant-api/internal/domain/assistant"
	"zooworld/assistant-api/internal/domain/catalog"
	"zooworld/assistant-api/internal/domain/conversation"
	"zooworld/assistant-api/internal/domain/sandbox"
	"zooworld/assistant-api/internal/infrastructure/auth"
)

// Provider wires all HTTP handlers for dependency injection.
type Provider struct {
	Conversation *ConversationHandler
	Assistant    *AssistantHandler
	Sandbox      *SandboxHandler
	Catalog      *CatalogHandler
}

// NewProvider constructs the handler provider with domain services.
func NewProvider(
	conversationService conversation.Service,
	assistantService assistant.Service,
	sandboxService sandbox.Service,
	catalogService catalog.Service,
	authValidator *auth.Validator,
	log zerolog.Logger,
) *Provider {
	return &Provider{
		Conversation: NewConversationHandler(conversationService, authValidator, log),
		Assistant:    NewAssistantHandler(assistantService, log),
		Sandbox:      NewSandboxHandler(sandboxService, authValidator, log),
		Catalog:      NewCatalogHandler(catalogService, authValidator, log),
	}
}
