package entities

import (
	"time"

	"gorm.io/datatypes"

	"zooworld/assistant-api/internal/domain/sandbox"
)

// SandboxAssistant represents the database schema for sandbox drafts.
type SandboxAssistant struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PublicID           string                      `gorm:"type:varchar(64);uniqueIndex;not null"`
	AnimalID           string                      `gorm:"type:varchar(64);index;not null"`
	PersonalityID      string                      `gorm:"type:varchar(64);not null"`
	GuardrailID        string                      `gorm:"type:varchar(64);not null"`
	KnowledgeRefIDs    datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	Status             sandbox.Status              `gorm:"type:varchar(16);not null;default:'DRAFT'"`
	CompiledPrompt     string                      `gorm:"type:text;not null"`
	CompiledPromptHash string                      `gorm:"type:varchar(64);not null"`
	TrialCount         int                         `gorm:"not null;default:0"`
	ExpiresAt          time.Time                   `gorm:"index;not null"`
}

// TableName specifies the table name for SandboxAssistant.
func (SandboxAssistant) TableName() string {
	return "sandbox_assistants"
}

// EtoD converts database entity to domain model
func (s *SandboxAssistant) EtoD() *sandbox.Sandbox {
	return &sandbox.Sandbox{
		ID:                 s.ID,
		PublicID:           s.PublicID,
		AnimalID:           s.AnimalID,
		PersonalityID:      s.PersonalityID,
		GuardrailID:        s.GuardrailID,
		KnowledgeRefIDs:    s.KnowledgeRefIDs,
		Status:             s.Status,
		CompiledPrompt:     s.CompiledPrompt,
		CompiledPromptHash: s.CompiledPromptHash,
		TrialCount:         s.TrialCount,
		CreatedAt:          s.CreatedAt,
		ExpiresAt:          s.ExpiresAt,
	}
}

// NewSchemaSandbox creates a database entity from domain model
func NewSchemaSandbox(s *sandbox.Sandbox) *SandboxAssistant {
	return &SandboxAssistant{
		ID:                 s.ID,
		PublicID:           s.PublicID,
		AnimalID:           s.AnimalID,
		PersonalityID:      s.PersonalityID,
		GuardrailID:        s.GuardrailID,
		KnowledgeRefIDs:    datatypes.NewJSONSlice(s.KnowledgeRefIDs),
		Status:             s.Status,
		CompiledPrompt:     s.CompiledPrompt,
		CompiledPromptHash: s.CompiledPromptHash,
		TrialCount:         s.TrialCount,
		CreatedAt:          s.CreatedAt,
		ExpiresAt:          s.ExpiresAt,
	}
}
