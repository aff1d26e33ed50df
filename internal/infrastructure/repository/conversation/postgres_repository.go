package conversation

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "zooworld/assistant-api/internal/domain/conversation"
	"zooworld/assistant-api/internal/infrastructure/database/entities"
	"zooworld/assistant-api/internal/utils/platformerrors"
)

// Repository persists sessions and turns.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a conversation repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindSessionByPublicID fetches a session by its public ID.
func (r *Repository) FindSessionByPublicID(ctx context.Context, publicID string) (*domain.Session, error) {
	var entity entities.ConversationSession
	if err := r.db.WithContext(ctx).Where("public_id = ?", publicID).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeNotFound,
				fmt.Sprintf("session not found: %s", publicID),
				nil,
				platformerrors.CodeNotFound,
			)
		}
		return nil, r.dbError(ctx, err, "failed to fetch session")
	}
	return entity.EtoD(), nil
}

// FindSessions lists sessions matching the filter, most recent activity
// first.
func (r *Repository) FindSessions(ctx context.Context, filter domain.SessionFilter, pagination *domain.Pagination) ([]*domain.Session, error) {
	query := r.db.WithContext(ctx).Model(&entities.ConversationSession{})
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.AnimalID != "" {
		query = query.Where("animal_id = ?", filter.AnimalID)
	}
	query = query.Order("last_message_time DESC")

	if pagination != nil && pagination.PageSize > 0 {
		page := pagination.Page
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * pagination.PageSize).Limit(pagination.PageSize)
	}

	var rows []entities.ConversationSession
	if err := query.Find(&rows).Error; err != nil {
		return nil, r.dbError(ctx, err, "failed to list sessions")
	}

	out := make([]*domain.Session, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].EtoD())
	}
	return out, nil
}

// LastTurns returns the most recent limit turns in ascending turn order.
// limit <= 0 returns the whole session.
func (r *Repository) LastTurns(ctx context.Context, sessionID uint, limit int) ([]domain.Turn, error) {
	var rows []entities.ConversationTurn

	query := r.db.WithContext(ctx).Where("session_id = ?", sessionID)
	if limit > 0 {
		// Fetch the tail descending, then reverse to ascending.
		if err := query.Order("seq DESC").Limit(limit).Find(&rows).Error; err != nil {
			return nil, r.dbError(ctx, err, "failed to fetch turns")
		}
		for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
			rows[i], rows[j] = rows[j], rows[i]
		}
	} else {
		if err := query.Order("seq ASC").Find(&rows).Error; err != nil {
			return nil, r.dbError(ctx, err, "failed to fetch turns")
		}
	}

	out := make([]domain.Turn, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].EtoD())
	}
	return out, nil
}

// FindAssistantTurnByRequestID fetches the assistant turn recorded for a
// request ID, used for duplicate submission replay.
func (r *Repository) FindAssistantTurnByRequestID(ctx context.Context, sessionID uint, requestID string) (*domain.Turn, error) {
	var entity entities.ConversationTurn
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND request_id = ?", sessionID, requestID).
		First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeNotFound,
				fmt.Sprintf("no turn for request: %s", requestID),
				nil,
				platformerrors.CodeNotFound,
			)
		}
		return nil, r.dbError(ctx, err, "failed to fetch turn by request id")
	}
	return entity.EtoD(), nil
}

// CommitTurnPair writes the user and assistant turns in one transaction. For
// an existing session the row is locked for the duration so concurrent
// writers serialize and turn IDs stay strictly increasing; a session deleted
// between resolution and commit surfaces as not-found and nothing is written.
func (r *Repository) CommitTurnPair(ctx context.Context, session *domain.Session, isNew bool, userTurn, assistantTurn *domain.Turn) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entity entities.ConversationSession

		if isNew {
			entity = *entities.NewSchemaSession(session)
			if err := tx.Create(&entity).Error; err != nil {
				return r.dbError(ctx, err, "failed to create session")
			}
		} else {
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("public_id = ?", session.PublicID).
				First(&entity).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return platformerrors.NewError(
						ctx,
						platformerrors.LayerRepository,
						platformerrors.ErrorTypeNotFound,
						fmt.Sprintf("session deleted: %s", session.PublicID),
						nil,
						platformerrors.CodeNotFound,
					)
				}
				return r.dbError(ctx, err, "failed to lock session")
			}
		}

		userTurn.SessionID = entity.ID
		userTurn.TurnID = entity.MessageCount + 1
		assistantTurn.SessionID = entity.ID
		assistantTurn.TurnID = entity.MessageCount + 2

		turnRows := []*entities.ConversationTurn{
			entities.NewSchemaTurn(userTurn),
			entities.NewSchemaTurn(assistantTurn),
		}
		if err := tx.Create(&turnRows).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return platformerrors.NewError(
					ctx,
					platformerrors.LayerRepository,
					platformerrors.ErrorTypeConflict,
					"request already recorded for this session",
					err,
					platformerrors.CodeDuplicateRequest,
				)
			}
			return r.dbError(ctx, err, "failed to write turn pair")
		}

		lastMessageTime := assistantTurn.CreatedAt
		err := tx.Model(&entities.ConversationSession{}).
			Where("id = ?", entity.ID).
			Updates(map[string]any{
				"message_count":     entity.MessageCount + 2,
				"last_message_time": lastMessageTime,
			}).Error
		if err != nil {
			return r.dbError(ctx, err, "failed to update session counters")
		}

		session.ID = entity.ID
		session.MessageCount = entity.MessageCount + 2
		session.LastMessageTime = lastMessageTime
		userTurn.ID = turnRows[0].ID
		assistantTurn.ID = turnRows[1].ID
		return nil
	})
}

// DeleteSessionByPublicID removes one session; turns go with it via the
// cascade.
func (r *Repository) DeleteSessionByPublicID(ctx context.Context, publicID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("public_id = ?", publicID).Delete(&entities.ConversationSession{})
	if res.Error != nil {
		return 0, r.dbError(ctx, res.Error, "failed to delete session")
	}
	return res.RowsAffected, nil
}

// DeleteSessionsByAnimalID removes every session for an animal.
func (r *Repository) DeleteSessionsByAnimalID(ctx context.Context, animalID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("animal_id = ?", animalID).Delete(&entities.ConversationSession{})
	if res.Error != nil {
		return 0, r.dbError(ctx, res.Error, "failed to delete sessions for animal")
	}
	return res.RowsAffected, nil
}

// DeleteSessionsByUserID removes every session for a user.
func (r *Repository) DeleteSessionsByUserID(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&entities.ConversationSession{})
	if res.Error != nil {
		return 0, r.dbError(ctx, res.Error, "failed to delete sessions for user")
	}
	return res.RowsAffected, nil
}

func (r *Repository) dbError(ctx context.Context, err error, message string) error {
	return platformerrors.NewError(
		ctx,
		platformerrors.LayerRepository,
		platformerrors.ErrorTypeDatabaseError,
		message,
		err,
		platformerrors.CodeStorageError,
	)
}
