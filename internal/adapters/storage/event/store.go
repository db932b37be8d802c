package event

import (
	"context"

	domain "communityhub/internal/domain/event"
)

// Store persists community events.
type Store interface {
	ListPublished(ctx context.Context) ([]domain.Event, error)
	ListAll(ctx context.Context) ([]domain.Event, error)
	Get(ctx context.Context, id string) (domain.Event, error)
	Create(ctx context.Context, e domain.Event) error
	Update(ctx context.Context, e domain.Event) error
	Delete(ctx context.Context, id string) error
}
