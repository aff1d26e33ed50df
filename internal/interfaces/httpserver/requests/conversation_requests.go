package requests

// ConvoTurnRequest posts one user message.
type ConvoTurnRequest struct {
	SessionID    string `json:"session_id"`
	UserID       string `json:"user_id"`
	AnimalID     string `json:"animal_id"`
	Message      string `json:"message"`
	ContextTurns int    `json:"context_turns"`
	RequestID    string `json:"request_id"`
}

// DeleteHistoryRequest selects history for deletion by exactly one scope.
type DeleteHistoryRequest struct {
	SessionID   string `json:"session_id"`
	AnimalID    string `json:"animal_id"`
	UserID      string `json:"user_id"`
	ConfirmGdpr bool   `json:"confirm_gdpr"`
	AuditReason string `json:"audit_reason"`
}
