package catalog

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "zooworld/assistant-api/internal/domain/catalog"
	"zooworld/assistant-api/internal/infrastructure/database/entities"
	"zooworld/assistant-api/internal/utils/platformerrors"
)

// PersonalityRepository persists personality definitions.
type PersonalityRepository struct {
	db *gorm.DB
}

// NewPersonalityRepository builds a personality repository.
func NewPersonalityRepository(db *gorm.DB) *PersonalityRepository {
	return &PersonalityRepository{db: db}
}

// Save inserts or replaces the personality under its public ID. Replacing
// bumps updated_at, which stales every prompt compiled from it.
func (r *PersonalityRepository) Save(ctx context.Context, p *domain.Personality) error {
	entity := entities.NewSchemaPersonality(p)

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "public_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "description", "updated_at"}),
		}).
		Create(entity).Error
	if err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to save personality",
			err,
			platformerrors.CodeStorageError,
		)
	}

	p.CreatedAt = entity.CreatedAt
	p.UpdatedAt = entity.UpdatedAt
	return nil
}

// FindByID fetches a personality by its public ID.
func (r *PersonalityRepository) FindByID(ctx context.Context, id string) (*domain.Personality, error) {
	var entity entities.Personality
	if err := r.db.WithContext(ctx).Where("public_id = ?", id).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeNotFound,
				fmt.Sprintf("personality not found: %s", id),
				nil,
				platformerrors.CodeNotFound,
			)
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to fetch personality",
			err,
			platformerrors.CodeStorageError,
		)
	}
	return entity.EtoD(), nil
}

// List returns all personalities ordered by name.
func (r *PersonalityRepository) List(ctx context.Context) ([]*domain.Personality, error) {
	var rows []entities.Personality
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list personalities",
			err,
			platformerrors.CodeStorageError,
		)
	}

	out := make([]*domain.Personality, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].EtoD())
	}
	return out, nil
}

// Delete removes a personality by its public ID.
func (r *PersonalityRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("public_id = ?", id).Delete(&entities.Personality{})
	if res.Error != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to delete personality",
			res.Error,
			platformerrors.CodeStorageError,
		)
	}
	if res.RowsAffected == 0 {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeNotFound,
			fmt.Sprintf("personality not found: %s", id),
			nil,
			platformerrors.CodeNotFound,
		)
	}
	return nil
}

// GuardrailRepository persists guardrail definitions.
type GuardrailRepository struct {
	db *gorm.DB
}

// NewGuardrailRepository builds a guardrail repository.
func NewGuardrailRepository(db *gorm.DB) *GuardrailRepository {
	return &GuardrailRepository{db: db}
}

// Save inserts or replaces the guardrail under its public ID.
func (r *GuardrailRepository) Save(ctx context.Context, g *domain.Guardrail) error {
	entity := entities.NewSchemaGuardrail(g)

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "public_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "rules", "severity", "updated_at"}),
		}).
		Create(entity).Error
	if err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to save guardrail",
			err,
			platformerrors.CodeStorageError,
		)
	}

	g.CreatedAt = entity.CreatedAt
	g.UpdatedAt = entity.UpdatedAt
	return nil
}

// FindByID fetches a guardrail by its public ID.
func (r *GuardrailRepository) FindByID(ctx context.Context, id string) (*domain.Guardrail, error) {
	var entity entities.Guardrail
	if err := r.db.WithContext(ctx).Where("public_id = ?", id).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeNotFound,
				fmt.Sprintf("guardrail not found: %s", id),
				nil,
				platformerrors.CodeNotFound,
			)
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to fetch guardrail",
			err,
			platformerrors.CodeStorageError,
		)
	}
	return entity.EtoD(), nil
}

// List returns all guardrails ordered by name.
func (r *GuardrailRepository) List(ctx context.Context) ([]*domain.Guardrail, error) {
	var rows []entities.Guardrail
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list guardrails",
			err,
			platformerrors.CodeStorageError,
		)
	}

	out := make([]*domain.Guardrail, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].EtoD())
	}
	return out, nil
}

// Delete removes a guardrail by its public ID.
func (r *GuardrailRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("public_id = ?", id).Delete(&entities.Guardrail{})
	if res.Error != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to delete guardrail",
			res.Error,
			platformerrors.CodeStorageError,
		)
	}
	if res.RowsAffected == 0 {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeNotFound,
			fmt.Sprintf("guardrail not found: %s", id),
			nil,
			platformerrors.CodeNotFound,
		)
	}
	return nil
}

// AnimalRepository reads ambassador registry entries.
type AnimalRepository struct {
	db *gorm.DB
}

// NewAnimalRepository builds an animal repository.
func NewAnimalRepository(db *gorm.DB) *AnimalRepository {
	return &AnimalRepository{db: db}
}

// FindByID fetches an animal by its public ID.
func (r *AnimalRepository) FindByID(ctx context.Context, id string) (*domain.Animal, error) {
	var entity entities.Animal
	if err := r.db.WithContext(ctx).Where("public_id = ?", id).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeNotFound,
				fmt.Sprintf("animal not found: %s", id),
				nil,
				platformerrors.CodeNotFound,
			)
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to fetch animal",
			err,
			platformerrors.CodeStorageError,
		)
	}
	return entity.EtoD(), nil
}

// Save inserts or replaces a registry entry. Used by the registry sync and
// by test fixtures.
func (r *AnimalRepository) Save(ctx context.Context, a *domain.Animal) error {
	entity := entities.NewSchemaAnimal(a)

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "public_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "species", "active", "updated_at"}),
		}).
		Create(entity).Error
	if err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to save animal",
			err,
			platformerrors.CodeStorageError,
		)
	}
	return nil
}
