package assistant

import "context"

// Repository persists assistant records. Create must enforce the one
// assistant per animal invariant with a conditional write and surface a
// conflict error when it is violated; Upsert is the promotion path and
// replaces the record for the same animal atomically.
type Repository interface {
	Create(ctx context.Context, a *Assistant) error
	FindByPublicID(ctx context.Context, publicID string) (*Assistant, error)
	FindByAnimalID(ctx context.Context, animalID string) (*Assistant, error)
	List(ctx context.Context) ([]*Assistant, error)
	Update(ctx context.Context, a *Assistant) error
	UpsertByAnimalID(ctx context.Context, a *Assistant) error
	Delete(ctx context.Context, publicID string) error
}
