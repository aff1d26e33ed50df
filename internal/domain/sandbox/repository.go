package sandbox

import "context"

// Repository persists sandbox records.
type Repository interface {
	Create(ctx context.Context, sb *Sandbox) error
	FindByPublicID(ctx context.Context, publicID string) (*Sandbox, error)
	Update(ctx context.Context, sb *Sandbox) error
	Delete(ctx context.Context, publicID string) error
}
