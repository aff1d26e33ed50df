package database

import (
	"gorm.io/gorm"

	"zooworld/assistant-api/internal/infrastructure/database/entities"
)

// Migrate runs schema migration for all entities.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entities.Personality{},
		&entities.Guardrail{},
		&entities.Animal{},
		&entities.Assistant{},
		&entities.SandboxAssistant{},
		&entities.ConversationSession{},
		&entities.ConversationTurn{},
	)
}
