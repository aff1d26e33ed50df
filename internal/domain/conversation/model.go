package conversation

import (
	"time"

	"zooworld/assistant-api/internal/domain/reply"
)

// Session is the ordered exchange between one visitor and one animal
// ambassador. A session has no closed state; it accumulates turns until it is
// deleted. The row only becomes visible together with its first turn pair.
type Session struct {
	ID              uint
	PublicID        string // "sess_" prefixed
	UserID          string
	AnimalID        string
	AnimalName      string
	StartTime       time.Time
	LastMessageTime time.Time
	MessageCount    int
}

// Duration is the derived span between the first and latest message.
func (s *Session) Duration() time.Duration {
	return s.LastMessageTime.Sub(s.StartTime)
}

// Turn is one persisted message. TurnID values are unique and strictly
// increasing in creation order within a session; a user turn is always
// immediately followed by its paired assistant turn.
type Turn struct {
	ID        uint
	SessionID uint
	TurnID    int
	Role      reply.Role
	Content   string
	CreatedAt time.Time

	// Assistant-authored turns only.
	AnimalName       *string
	Model            *string
	TokensUsed       *int
	ProcessingTimeMs *int64

	// Client-supplied idempotency key, stored on the assistant turn.
	RequestID *string
}

// StripMetadata clears model metadata for responses that did not ask for it.
func (t *Turn) StripMetadata() {
	t.Model = nil
	t.TokensUsed = nil
	t.ProcessingTimeMs = nil
	t.RequestID = nil
}

// SessionHistory pairs a session envelope with its ordered turns.
type SessionHistory struct {
	Session Session
	Turns   []Turn
}

// SessionDetail is the administrative projection over one session.
type SessionDetail struct {
	Session  Session
	Duration time.Duration
	Summary  string
	Turns    []Turn
}

// HistoryFilter selects history by exactly one scope.
type HistoryFilter struct {
	SessionID string
	AnimalID  string
	UserID    string
}

// Scope names the single populated filter dimension, or "" when the filter
// is empty or ambiguous.
func (f HistoryFilter) Scope() string {
	set := 0
	scope := ""
	if f.SessionID != "" {
		set++
		scope = "session"
	}
	if f.AnimalID != "" {
		set++
		scope = "animal"
	}
	if f.UserID != "" {
		set++
		scope = "user"
	}
	if set != 1 {
		return ""
	}
	return scope
}

// Pagination bounds list reads.
type Pagination struct {
	Page     int
	PageSize int
}
