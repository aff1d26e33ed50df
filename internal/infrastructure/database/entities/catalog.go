package entities

import (
	"time"

	"gorm.io/datatypes"

	"zooworld/assistant-api/internal/domain/catalog"
)

// Personality represents the database schema for personalities.
type Personality struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PublicID    string `gorm:"type:varchar(64);uniqueIndex;not null"`
	Name        string `gorm:"type:varchar(128);not null"`
	Description string `gorm:"type:text;not null"`
}

// TableName specifies the table name for Personality.
func (Personality) TableName() string {
	return "personalities"
}

// EtoD converts database entity to domain model
func (p *Personality) EtoD() *catalog.Personality {
	return &catalog.Personality{
		ID:          p.PublicID,
		Name:        p.Name,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// NewSchemaPersonality creates a database entity from domain model
func NewSchemaPersonality(p *catalog.Personality) *Personality {
	return &Personality{
		PublicID:    p.ID,
		Name:        p.Name,
		Description: p.Description,
	}
}

// Guardrail represents the database schema for guardrails. Rule order is
// preserved by the JSON array column.
type Guardrail struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PublicID string                      `gorm:"type:varchar(64);uniqueIndex;not null"`
	Name     string                      `gorm:"type:varchar(128);not null"`
	Rules    datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	Severity string                      `gorm:"type:varchar(16);not null;default:'standard'"`
}

// TableName specifies the table name for Guardrail.
func (Guardrail) TableName() string {
	return "guardrails"
}

// EtoD converts database entity to domain model
func (g *Guardrail) EtoD() *catalog.Guardrail {
	return &catalog.Guardrail{
		ID:        g.PublicID,
		Name:      g.Name,
		Rules:     g.Rules,
		Severity:  catalog.GuardrailSeverity(g.Severity),
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}

// NewSchemaGuardrail creates a database entity from domain model
func NewSchemaGuardrail(g *catalog.Guardrail) *Guardrail {
	return &Guardrail{
		PublicID: g.ID,
		Name:     g.Name,
		Rules:    datatypes.NewJSONSlice(g.Rules),
		Severity: string(g.Severity),
	}
}

// Animal mirrors the ambassador registry. This service reads it to validate
// assistant targets; writes come from the registry sync.
type Animal struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PublicID string `gorm:"type:varchar(64);uniqueIndex;not null"`
	Name     string `gorm:"type:varchar(128);not null"`
	Species  string `gorm:"type:varchar(128)"`
	Active   bool   `gorm:"not null;default:true"`
}

// TableName specifies the table name for Animal.
func (Animal) TableName() string {
	return "animals"
}

// EtoD converts database entity to domain model
func (a *Animal) EtoD() *catalog.Animal {
	return &catalog.Animal{
		ID:      a.PublicID,
		Name:    a.Name,
		Species: a.Species,
		Active:  a.Active,
	}
}

// NewSchemaAnimal creates a database entity from domain model
func NewSchemaAnimal(a *catalog.Animal) *Animal {
	return &Animal{
		PublicID: a.ID,
		Name:     a.Name,
		Species:  a.Species,
		Active:   a.Active,
	}
}
