package responses

import (
	"time"

	"zooworld/assistant-api/internal/domain/conversation"
)

// TurnResultPayload is returned after a turn pair is durable.
type TurnResultPayload struct {
	Reply            string    `json:"reply"`
	SessionID        string    `json:"session_id"`
	TurnID           int       `json:"turn_id"`
	Timestamp        time.Time `json:"timestamp"`
	Model            string    `json:"model,omitempty"`
	TokensUsed       int       `json:"tokens_used,omitempty"`
	ProcessingTimeMs int64     `json:"processing_time_ms,omitempty"`
}

// MapTurnResultToResponse maps the domain result to DTO.
func MapTurnResultToResponse(r *conversation.TurnResult) TurnResultPayload {
	return TurnResultPayload{
		Reply:            r.Reply,
		SessionID:        r.SessionID,
		TurnID:           r.TurnID,
		Timestamp:        r.Timestamp,
		Model:            r.Model,
		TokensUsed:       r.TokensUsed,
		ProcessingTimeMs: r.ProcessingTimeMs,
	}
}

// TurnPayload is one persisted turn.
type TurnPayload struct {
	TurnID           int       `json:"turn_id"`
	Role             string    `json:"role"`
	Content          string    `json:"content"`
	Timestamp        time.Time `json:"timestamp"`
	AnimalName       *string   `json:"animal_name,omitempty"`
	Model            *string   `json:"model,omitempty"`
	TokensUsed       *int      `json:"tokens_used,omitempty"`
	ProcessingTimeMs *int64    `json:"processing_time_ms,omitempty"`
}

// SessionPayload is the session envelope.
type SessionPayload struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	AnimalID        string    `json:"animal_id"`
	AnimalName      string    `json:"animal_name"`
	StartTime       time.Time `json:"start_time"`
	LastMessageTime time.Time `json:"last_message_time"`
	MessageCount    int       `json:"message_count"`
}

// SessionHistoryPayload pairs a session envelope with its ordered turns.
type SessionHistoryPayload struct {
	Session SessionPayload `json:"session"`
	Turns   []TurnPayload  `json:"turns"`
}

// SessionDetailPayload is the administrative projection over one session.
type SessionDetailPayload struct {
	Session    SessionPayload `json:"session"`
	DurationMs int64          `json:"duration_ms"`
	Summary    string         `json:"summary,omitempty"`
	Turns      []TurnPayload  `json:"turns,omitempty"`
}

func mapSession(s conversation.Session) SessionPayload {
	return SessionPayload{
		ID:              s.PublicID,
		UserID:          s.UserID,
		AnimalID:        s.AnimalID,
		AnimalName:      s.AnimalName,
		StartTime:       s.StartTime,
		LastMessageTime: s.LastMessageTime,
		MessageCount:    s.MessageCount,
	}
}

func mapTurns(turns []conversation.Turn) []TurnPayload {
	out := make([]TurnPayload, 0, len(turns))
	for _, t := range turns {
		out = append(out, TurnPayload{
			TurnID:           t.TurnID,
			Role:             string(t.Role),
			Content:          t.Content,
			Timestamp:        t.CreatedAt,
			AnimalName:       t.AnimalName,
			Model:            t.Model,
			TokensUsed:       t.TokensUsed,
			ProcessingTimeMs: t.ProcessingTimeMs,
		})
	}
	return out
}

// MapHistoryToResponse maps history envelopes to DTOs.
func MapHistoryToResponse(histories []*conversation.SessionHistory) []SessionHistoryPayload {
	out := make([]SessionHistoryPayload, 0, len(histories))
	for _, h := range histories {
		out = append(out, SessionHistoryPayload{
			Session: mapSession(h.Session),
			Turns:   mapTurns(h.Turns),
		})
	}
	return out
}

// MapSessionDetailToResponse maps one administrative session view to DTO.
func MapSessionDetailToResponse(d *conversation.SessionDetail) SessionDetailPayload {
	return SessionDetailPayload{
		Session:    mapSession(d.Session),
		DurationMs: d.Duration.Milliseconds(),
		Summary:    d.Summary,
		Turns:      mapTurns(d.Turns),
	}
}

// MapSessionListToResponse maps session summaries to DTOs.
func MapSessionListToResponse(details []*conversation.SessionDetail) []SessionDetailPayload {
	out := make([]SessionDetailPayload, 0, len(details))
	for _, d := range details {
		out = append(out, MapSessionDetailToResponse(d))
	}
	return out
}
