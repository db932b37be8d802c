package projections

import (
	"context"

	donationStore "communityhub/internal/adapters/storage/donation"
	slotStore "communityhub/internal/adapters/storage/slot"
	domainDonation "communityhub/internal/domain/donation"
	domainEvent "communityhub/internal/domain/event"
	domainSchedule "communityhub/internal/domain/schedule"
	domainSlot "communityhub/internal/domain/slot"
	domainUnavailable "communityhub/internal/domain/unavailable"
)

// SlotStore interface for slot queries.
type SlotStore interface {
	List(ctx context.Context) ([]domainSlot.Slot, error)
	ListByBooker(ctx context.Context, email string) ([]domainSlot.Slot, error)
	ListBookings(ctx context.Context) ([]slotStore.Booking, error)
}

// ScheduleStore interface for the active configuration.
type ScheduleStore interface {
	Latest(ctx context.Context) (domainSchedule.Config, error)
}

// UnavailableStore interface for unavailable-date queries.
type UnavailableStore interface {
	List(ctx context.Context) ([]domainUnavailable.UnavailableDate, error)
}

// PackageStore interface for catalogue queries.
type PackageStore interface {
	ListByPrice(ctx context.Context) ([]domainDonation.Package, error)
	ListNewest(ctx context.Context) ([]domainDonation.Package, error)
}

// DonationStore interface for donation queries.
type DonationStore interface {
	ListByEmail(ctx context.Context, email string) ([]domainDonation.Donation, error)
	ListAll(ctx context.Context) ([]domainDonation.Donation, error)
	Recent(ctx context.Context, limit int) ([]domainDonation.Donation, error)
	Totals(ctx context.Context) (donationStore.Totals, error)
	TopPackages(ctx context.Context, limit int) ([]donationStore.PackageTotal, error)
}

// EventStore interface for event queries.
type EventStore interface {
	ListPublished(ctx context.Context) ([]domainEvent.Event, error)
	ListAll(ctx context.Context) ([]domainEvent.Event, error)
}
