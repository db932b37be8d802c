package donation

import (
	"context"

	"github.com/shopspring/decimal"

	domain "communityhub/internal/domain/donation"
)

// PackageStore persists the donation package catalogue.
type PackageStore interface {
	ListByPrice(ctx context.Context) ([]domain.Package, error)
	ListNewest(ctx context.Context) ([]domain.Package, error)
	Get(ctx context.Context, packageID string) (domain.Package, error)
	Create(ctx context.Context, p domain.Package) (domain.Package, error)
	Update(ctx context.Context, p domain.Package) error
	Delete(ctx context.Context, packageID string) error
	Count(ctx context.Context) (int, error)
}

// Store persists donations and their line items.
type Store interface {
	Create(ctx context.Context, d domain.Donation) (domain.Donation, error)
	ListByEmail(ctx context.Context, email string) ([]domain.Donation, error)
	ListAll(ctx context.Context) ([]domain.Donation, error)
	Recent(ctx context.Context, limit int) ([]domain.Donation, error)
	Totals(ctx context.Context) (Totals, error)
	TopPackages(ctx context.Context, limit int) ([]PackageTotal, error)
	Delete(ctx context.Context, id int64) error
}

// Totals aggregates completed donations.
type Totals struct {
	Count  int
	Amount decimal.Decimal
}

// PackageTotal is the donated quantity and amount for one package id across all donations.
type PackageTotal struct {
	PackageID string
	Name      string
	Quantity  int
	Amount    decimal.Decimal
}
