package volunteer

import (
	"context"

	domain "communityhub/internal/domain/volunteer"
)

// Store persists Volunteer state.
type Store interface {
	Create(ctx context.Context, v domain.Volunteer) (int64, error)
	GetByID(ctx context.Context, id int64) (domain.Volunteer, error)
	GetByEmail(ctx context.Context, email string) (domain.Volunteer, error)
	UpdateProfile(ctx context.Context, v domain.Volunteer) error
	Count(ctx context.Context) (int, error)
}
