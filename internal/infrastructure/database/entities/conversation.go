package entities

import (
	"time"

	"zooworld/assistant-api/internal/domain/conversation"
	"zooworld/assistant-api/internal/domain/reply"
)

// ConversationSession represents the database schema for sessions. Turn rows
// are removed by the database cascade when sessions are deleted.
type ConversationSession struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PublicID        string    `gorm:"type:varchar(64);uniqueIndex;not null"`
	UserID          string    `gorm:"type:varchar(64);index:idx_session_user;not null"`
	AnimalID        string    `gorm:"type:varchar(64);index:idx_session_animal;not null"`
	AnimalName      string    `gorm:"type:varchar(128);not null"`
	StartTime       time.Time `gorm:"not null"`
	LastMessageTime time.Time `gorm:"not null"`
	MessageCount    int       `gorm:"not null;default:0"`

	Turns []ConversationTurn `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for ConversationSession.
func (ConversationSession) TableName() string {
	return "conversation_sessions"
}

// ConversationTurn represents one persisted message. Seq carries the
// per-session turn ID; the unique index makes concurrent writers conflict
// instead of interleaving.
type ConversationTurn struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	SessionID        uint       `gorm:"uniqueIndex:idx_turn_session_seq;uniqueIndex:idx_turn_session_request;index;not null"`
	Seq              int        `gorm:"uniqueIndex:idx_turn_session_seq;not null"`
	Role             reply.Role `gorm:"type:varchar(16);not null"`
	Content          string     `gorm:"type:text;not null"`
	AnimalName       *string    `gorm:"type:varchar(128)"`
	Model            *string    `gorm:"type:varchar(128)"`
	TokensUsed       *int
	ProcessingTimeMs *int64
	RequestID        *string `gorm:"type:varchar(128);uniqueIndex:idx_turn_session_request"`
}

// TableName specifies the table name for ConversationTurn.
func (ConversationTurn) TableName() string {
	return "conversation_turns"
}

// EtoD converts database entity to domain model
func (t *ConversationTurn) EtoD() *conversation.Turn {
	return &conversation.Turn{
		ID:               t.ID,
		SessionID:        t.SessionID,
		TurnID:           t.Seq,
		Role:             t.Role,
		Content:          t.Content,
		CreatedAt:        t.CreatedAt,
		AnimalName:       t.AnimalName,
		Model:            t.Model,
		TokensUsed:       t.TokensUsed,
		ProcessingTimeMs: t.ProcessingTimeMs,
		RequestID:        t.RequestID,
	}
}

// NewSchemaTurn creates a database entity from domain model
func NewSchemaTurn(t *conversation.Turn) *ConversationTurn {
	return &ConversationTurn{
		ID:               t.ID,
		SessionID:        t.SessionID,
		Seq:              t.TurnID,
		Role:             t.Role,
		Content:          t.Content,
		CreatedAt:        t.CreatedAt,
		AnimalName:       t.AnimalName,
		Model:            t.Model,
		TokensUsed:       t.TokensUsed,
		ProcessingTimeMs: t.ProcessingTimeMs,
		RequestID:        t.RequestID,
	}
}

// EtoD converts database entity to domain model
func (s *ConversationSession) EtoD() *conversation.Session {
	return &conversation.Session{
		ID:              s.ID,
		PublicID:        s.PublicID,
		UserID:          s.UserID,
		AnimalID:        s.AnimalID,
		AnimalName:      s.AnimalName,
		StartTime:       s.StartTime,
		LastMessageTime: s.LastMessageTime,
		MessageCount:    s.MessageCount,
	}
}

// NewSchemaSession creates a database entity from domain model
func NewSchemaSession(s *conversation.Session) *ConversationSession {
	return &ConversationSession{
		ID:              s.ID,
		PublicID:        s.PublicID,
		UserID:          s.UserID,
		AnimalID:        s.AnimalID,
		AnimalName:      s.AnimalName,
		StartTime:       s.StartTime,
		LastMessageTime: s.LastMessageTime,
		MessageCount:    s.MessageCount,
	}
}
