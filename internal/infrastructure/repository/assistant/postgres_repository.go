package assistant

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "zooworld/assistant-api/internal/domain/assistant"
	"zooworld/assistant-api/internal/infrastructure/database/entities"
	"zooworld/assistant-api/internal/utils/platformerrors"
)

// Repository persists assistant records.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds an assistant repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the assistant. The unique index on animal_id rejects a
// second assistant for the same animal, including under concurrent creates.
func (r *Repository) Create(ctx context.Context, a *domain.Assistant) error {
	entity := entities.NewSchemaAssistant(a)

	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeConflict,
				fmt.Sprintf("assistant already exists for animal %s", a.AnimalID),
				err,
				platformerrors.CodeDuplicateAssistant,
			)
		}
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create assistant",
			err,
			platformerrors.CodeStorageError,
		)
	}

	a.ID = entity.ID
	a.CreatedAt = entity.CreatedAt
	a.UpdatedAt = entity.UpdatedAt
	return nil
}

// FindByPublicID fetches an assistant by its public ID.
func (r *Repository) FindByPublicID(ctx context.Context, publicID string) (*domain.Assistant, error) {
	var entity entities.Assistant
	if err := r.db.WithContext(ctx).Where("public_id = ?", publicID).First(&entity).Error; err != nil {
		return nil, r.fetchError(ctx, err, fmt.Sprintf("assistant not found: %s", publicID))
	}
	return entity.EtoD(), nil
}

// FindByAnimalID fetches the assistant bound to an animal.
func (r *Repository) FindByAnimalID(ctx context.Context, animalID string) (*domain.Assistant, error) {
	var entity entities.Assistant
	if err := r.db.WithContext(ctx).Where("animal_id = ?", animalID).First(&entity).Error; err != nil {
		return nil, r.fetchError(ctx, err, fmt.Sprintf("no assistant for animal: %s", animalID))
	}
	return entity.EtoD(), nil
}

// List returns all assistants ordered by creation time.
func (r *Repository) List(ctx context.Context) ([]*domain.Assistant, error) {
	var rows []entities.Assistant
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list assistants",
			err,
			platformerrors.CodeStorageError,
		)
	}

	out := make([]*domain.Assistant, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].EtoD())
	}
	return out, nil
}

// Update writes the full assistant record back.
func (r *Repository) Update(ctx context.Context, a *domain.Assistant) error {
	entity := entities.NewSchemaAssistant(a)

	res := r.db.WithContext(ctx).
		Model(&entities.Assistant{}).
		Where("public_id = ?", a.PublicID).
		Updates(map[string]any{
			"animal_id":            entity.AnimalID,
			"personality_id":       entity.PersonalityID,
			"guardrail_id":         entity.GuardrailID,
			"knowledge_ref_ids":    entity.KnowledgeRefIDs,
			"status":               entity.Status,
			"compiled_prompt_hash": entity.CompiledPromptHash,
		})
	if res.Error != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to update assistant",
			res.Error,
			platformerrors.CodeStorageError,
		)
	}
	if res.RowsAffected == 0 {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeNotFound,
			fmt.Sprintf("assistant not found: %s", a.PublicID),
			nil,
			platformerrors.CodeNotFound,
		)
	}
	return nil
}

// UpsertByAnimalID replaces the assistant bound to the animal, or inserts one
// when none exists. This is the promotion path: the swap is a single
// statement, so readers never observe a window with no assistant.
func (r *Repository) UpsertByAnimalID(ctx context.Context, a *domain.Assistant) error {
	entity := entities.NewSchemaAssistant(a)

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "animal_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"public_id",
				"personality_id",
				"guardrail_id",
				"knowledge_ref_ids",
				"status",
				"compiled_prompt_hash",
				"updated_at",
			}),
		}).
		Create(entity).Error
	if err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to upsert assistant",
			err,
			platformerrors.CodeStorageError,
		)
	}

	a.ID = entity.ID
	a.CreatedAt = entity.CreatedAt
	a.UpdatedAt = entity.UpdatedAt
	return nil
}

// Delete removes an assistant by its public ID.
func (r *Repository) Delete(ctx context.Context, publicID string) error {
	res := r.db.WithContext(ctx).Where("public_id = ?", publicID).Delete(&entities.Assistant{})
	if res.Error != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to delete assistant",
			res.Error,
			platformerrors.CodeStorageError,
		)
	}
	if res.RowsAffected == 0 {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeNotFound,
			fmt.Sprintf("assistant not found: %s", publicID),
			nil,
			platformerrors.CodeNotFound,
		)
	}
	return nil
}

func (r *Repository) fetchError(ctx context.Context, err error, notFoundMsg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeNotFound,
			notFoundMsg,
			nil,
			platformerrors.CodeNotFound,
		)
	}
	return platformerrors.NewError(
		ctx,
		platformerrors.LayerRepository,
		platformerrors.ErrorTypeDatabaseError,
		"failed to fetch assistant",
		err,
		platformerrors.CodeStorageError,
	)
}
