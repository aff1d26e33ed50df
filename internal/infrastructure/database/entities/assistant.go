package entities

import (
	"time"

	"gorm.io/datatypes"

	"zooworld/assistant-api/internal/domain/assistant"
)

// Assistant represents the database schema for production assistants. The
// unique index on AnimalID is the conditional write enforcing at most one
// assistant per animal.
type Assistant struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PublicID           string                      `gorm:"type:varchar(64);uniqueIndex;not null"`
	AnimalID           string                      `gorm:"type:varchar(64);uniqueIndex;not null"`
	PersonalityID      string                      `gorm:"type:varchar(64);not null"`
	GuardrailID        string                      `gorm:"type:varchar(64);not null"`
	KnowledgeRefIDs    datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	Status             assistant.Status            `gorm:"type:varchar(16);not null;default:'ACTIVE'"`
	CompiledPromptHash string                      `gorm:"type:varchar(64);not null"`
}

// TableName specifies the table name for Assistant.
func (Assistant) TableName() string {
	return "assistants"
}

// EtoD converts database entity to domain model
func (a *Assistant) EtoD() *assistant.Assistant {
	return &assistant.Assistant{
		ID:                 a.ID,
		PublicID:           a.PublicID,
		AnimalID:           a.AnimalID,
		PersonalityID:      a.PersonalityID,
		GuardrailID:        a.GuardrailID,
		KnowledgeRefIDs:    a.KnowledgeRefIDs,
		Status:             a.Status,
		CompiledPromptHash: a.CompiledPromptHash,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
}

// NewSchemaAssistant creates a database entity from domain model
func NewSchemaAssistant(a *assistant.Assistant) *Assistant {
	return &Assistant{
		ID:                 a.ID,
		PublicID:           a.PublicID,
		AnimalID:           a.AnimalID,
		PersonalityID:      a.PersonalityID,
		GuardrailID:        a.GuardrailID,
		KnowledgeRefIDs:    datatypes.NewJSONSlice(a.KnowledgeRefIDs),
		Status:             a.Status,
		CompiledPromptHash: a.CompiledPromptHash,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
}
