package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"communityhub/internal/application/apperr"
	"communityhub/internal/application/validate"
	"communityhub/internal/domain/donation"
)

// PackageStore defines the store interface needed by the package orchestrators.
type PackageStore interface {
	Get(ctx context.Context, packageID string) (donation.Package, error)
	Create(ctx context.Context, p donation.Package) (donation.Package, error)
	Update(ctx context.Context, p donation.Package) error
	Delete(ctx context.Context, packageID string) error
	Count(ctx context.Context) (int, error)
}

// PackageInput carries the fields of a package create or update.
type PackageInput struct {
	PackageID         string          `json:"package_id" validate:"required,max=50,slug"`
	Name              string          `json:"name" validate:"required,max=100"`
	Description       string          `json:"description" validate:"required,max=1000"`
	Price             decimal.Decimal `json:"price"`
	ImpactDescription string          `json:"impact_description" validate:"required,max=500"`
	Icon              string          `json:"icon" validate:"max=50"`
}

// PackageDeps holds dependencies for the package orchestrators.
type PackageDeps struct {
	Packages PackageStore
	Now      func() time.Time
}

func (in PackageInput) build(now time.Time) (donation.Package, error) {
	if err := validate.Struct(in); err != nil {
		return donation.Package{}, err
	}
	p := donation.Package{
		PackageID:         strings.TrimSpace(in.PackageID),
		Name:              strings.TrimSpace(in.Name),
		Description:       strings.TrimSpace(in.Description),
		Price:             in.Price,
		ImpactDescription: strings.TrimSpace(in.ImpactDescription),
		Icon:              strings.TrimSpace(in.Icon),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := p.Validate(); err != nil {
		return donation.Package{}, validate.Domain(packageField(err), err)
	}
	return p, nil
}

func packageField(err error) string {
	switch {
	case errors.Is(err, donation.ErrNonPositivePrice), errors.Is(err, donation.ErrPricePrecision),
		errors.Is(err, donation.ErrPriceTooLarge):
		return "price"
	case errors.Is(err, donation.ErrInvalidPackageID):
		return "package_id"
	case errors.Is(err, donation.ErrEmptyPackageName):
		return "name"
	case errors.Is(err, donation.ErrEmptyDescription):
		return "description"
	case errors.Is(err, donation.ErrEmptyImpact):
		return "impact_description"
	default:
		return "package"
	}
}

// ExecuteCreatePackage adds a package to the catalogue.
// PRE: caller is the administrator
// POST: package persisted; conflict when package_id exists
func ExecuteCreatePackage(ctx context.Context, input PackageInput, deps PackageDeps) (donation.Package, error) {
	p, err := input.build(deps.Now())
	if err != nil {
		return donation.Package{}, err
	}
	created, err := deps.Packages.Create(ctx, p)
	if err != nil {
		return donation.Package{}, apperr.FromStore(err, "", "package id already exists")
	}
	slog.Info("donation_event", "event", "package_created", "package_id", p.PackageID, "price", p.Price.StringFixed(2))
	return created, nil
}

// ExecuteUpdatePackage rewrites the package addressed by package_id.
// PRE: caller is the administrator
// POST: package updated; not found when absent
// INVARIANT: package_id and created_at never change
func ExecuteUpdatePackage(ctx context.Context, input PackageInput, deps PackageDeps) (donation.Package, error) {
	p, err := input.build(deps.Now())
	if err != nil {
		return donation.Package{}, err
	}
	if err := deps.Packages.Update(ctx, p); err != nil {
		return donation.Package{}, apperr.FromStore(err, "package not found", "")
	}
	updated, err := deps.Packages.Get(ctx, p.PackageID)
	if err != nil {
		return donation.Package{}, apperr.FromStore(err, "package not found", "")
	}
	slog.Info("donation_event", "event", "package_updated", "package_id", p.PackageID)
	return updated, nil
}

// ExecuteDeletePackage hard-deletes a package. Past donation items keep their snapshots.
// PRE: caller is the administrator
// POST: package gone; not found when absent
func ExecuteDeletePackage(ctx context.Context, packageID string, deps PackageDeps) error {
	if err := deps.Packages.Delete(ctx, strings.TrimSpace(packageID)); err != nil {
		return apperr.FromStore(err, "package not found", "")
	}
	slog.Info("donation_event", "event", "package_deleted", "package_id", packageID)
	return nil
}

// ExecuteSeedCatalogue fills an empty package table with the default catalogue.
// PRE: not running in production
// POST: returns how many packages were inserted; zero when the table already had rows
func ExecuteSeedCatalogue(ctx context.Context, deps PackageDeps) (int, error) {
	n, err := deps.Packages.Count(ctx)
	if err != nil {
		return 0, apperr.Internal(err)
	}
	if n > 0 {
		return 0, nil
	}
	now := deps.Now()
	seeded := 0
	for _, p := range donation.DefaultCatalogue() {
		p.CreatedAt, p.UpdatedAt = now, now
		if _, err := deps.Packages.Create(ctx, p); err != nil {
			return seeded, apperr.Internal(err)
		}
		seeded++
	}
	slog.Info("donation_event", "event", "catalogue_seeded", "count", seeded)
	return seeded, nil
}
