package unavailable

import (
	"context"

	domain "communityhub/internal/domain/unavailable"
)

// Store persists the set of unavailable dates.
type Store interface {
	List(ctx context.Context) ([]domain.UnavailableDate, error)
	Add(ctx context.Context, d domain.UnavailableDate) (bool, error)
	Remove(ctx context.Context, d domain.UnavailableDate) (bool, error)
}
