package sandbox

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	domain "zooworld/assistant-api/internal/domain/sandbox"
	"zooworld/assistant-api/internal/infrastructure/database/entities"
	"zooworld/assistant-api/internal/utils/platformerrors"
)

// Repository persists sandbox drafts.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a sandbox repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the sandbox record.
func (r *Repository) Create(ctx context.Context, sb *domain.Sandbox) error {
	entity := entities.NewSchemaSandbox(sb)

	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create sandbox",
			err,
			platformerrors.CodeStorageError,
		)
	}

	sb.ID = entity.ID
	sb.CreatedAt = entity.CreatedAt
	return nil
}

// FindByPublicID fetches a sandbox by its public ID.
func (r *Repository) FindByPublicID(ctx context.Context, publicID string) (*domain.Sandbox, error) {
	var entity entities.SandboxAssistant
	if err := r.db.WithContext(ctx).Where("public_id = ?", publicID).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeNotFound,
				fmt.Sprintf("sandbox not found: %s", publicID),
				nil,
				platformerrors.CodeNotFound,
			)
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to fetch sandbox",
			err,
			platformerrors.CodeStorageError,
		)
	}
	return entity.EtoD(), nil
}

// Update writes the sandbox record back.
func (r *Repository) Update(ctx context.Context, sb *domain.Sandbox) error {
	entity := entities.NewSchemaSandbox(sb)

	res := r.db.WithContext(ctx).
		Model(&entities.SandboxAssistant{}).
		Where("public_id = ?", sb.PublicID).
		Updates(map[string]any{
			"personality_id":       entity.PersonalityID,
			"guardrail_id":         entity.GuardrailID,
			"knowledge_ref_ids":    entity.KnowledgeRefIDs,
			"status":               entity.Status,
			"compiled_prompt":      entity.CompiledPrompt,
			"compiled_prompt_hash": entity.CompiledPromptHash,
			"trial_count":          entity.TrialCount,
			"expires_at":           entity.ExpiresAt,
		})
	if res.Error != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to update sandbox",
			res.Error,
			platformerrors.CodeStorageError,
		)
	}
	if res.RowsAffected == 0 {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeNotFound,
			fmt.Sprintf("sandbox not found: %s", sb.PublicID),
			nil,
			platformerrors.CodeNotFound,
		)
	}
	return nil
}

// Delete removes a sandbox by its public ID. Deleting an already removed
// sandbox is not an error; promotion retries hit this path.
func (r *Repository) Delete(ctx context.Context, publicID string) error {
	res := r.db.WithContext(ctx).Where("public_id = ?", publicID).Delete(&entities.SandboxAssistant{})
	if res.Error != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to delete sandbox",
			res.Error,
			platformerrors.CodeStorageError,
		)
	}
	return nil
}
