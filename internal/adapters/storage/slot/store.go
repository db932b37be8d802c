package slot

import (
	"context"

	domain "communityhub/internal/domain/slot"
)

// Booking is a bound slot joined with the booker's volunteer name, when one exists.
type Booking struct {
	Slot       string
	BookedBy   string
	BookerName string
}

// Store persists Slot state.
type Store interface {
	List(ctx context.Context) ([]domain.Slot, error)
	Get(ctx context.Context, key string) (domain.Slot, error)
	Create(ctx context.Context, s domain.Slot) error
	SetBookedBy(ctx context.Context, key, from, to string) error
	ResetAll(ctx context.Context) (int64, error)
	ListByBooker(ctx context.Context, email string) ([]domain.Slot, error)
	ListBookings(ctx context.Context) ([]Booking, error)
}
