package schedule

import (
	"context"

	domain "communityhub/internal/domain/schedule"
)

// Store persists schedule configurations and owns wholesale slot replacement.
type Store interface {
	Latest(ctx context.Context) (domain.Config, error)
	Reconfigure(ctx context.Context, cfg domain.Config) (domain.Config, error)
}
