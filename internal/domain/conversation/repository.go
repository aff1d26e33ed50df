package conversation

import "context"

// SessionFilter selects sessions for listing.
type SessionFilter struct {
	UserID   string
	AnimalID string
}

// Repository persists sessions and turns. CommitTurnPair is the single write
// path for conversation traffic: it must make the user and assistant turns
// visible together or not at all, assign strictly increasing turn IDs under
// concurrency, and fail with a not-found error when the session was deleted
// between resolution and commit (deletion wins).
type Repository interface {
	FindSessionByPublicID(ctx context.Context, publicID string) (*Session, error)
	FindSessions(ctx context.Context, filter SessionFilter, pagination *Pagination) ([]*Session, error)

	// LastTurns returns the most recent limit turns in ascending turn order.
	// limit <= 0 means all turns.
	LastTurns(ctx context.Context, sessionID uint, limit int) ([]Turn, error)
	FindAssistantTurnByRequestID(ctx context.Context, sessionID uint, requestID string) (*Turn, error)

	CommitTurnPair(ctx context.Context, session *Session, isNew bool, userTurn, assistantTurn *Turn) error

	// Deletions cascade to turns and report how many sessions were removed.
	DeleteSessionByPublicID(ctx context.Context, publicID string) (int64, error)
	DeleteSessionsByAnimalID(ctx context.Context, animalID string) (int64, error)
	DeleteSessionsByUserID(ctx context.Context, userID string) (int64, error)
}
