package donation

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Max length constants.
const (
	MaxPackageIDLength   = 50
	MaxPackageNameLength = 100
	MaxDescriptionLength = 1000
	MaxImpactLength      = 500
	MaxIconLength        = 50
)

// Domain errors
var (
	ErrInvalidPackageID = errors.New("package id must be a lowercase slug")
	ErrEmptyPackageName = errors.New("package name cannot be empty")
	ErrEmptyDescription = errors.New("package description cannot be empty")
	ErrEmptyImpact      = errors.New("impact description cannot be empty")
	ErrNonPositivePrice = errors.New("price must be greater than zero")
	ErrFieldTooLong     = errors.New("package field exceeds maximum length")
	ErrPricePrecision   = errors.New("price cannot have more than 2 decimal places")
)

// SlugPattern matches lowercase identifiers such as "water-supply" or "event_1712345".
var SlugPattern = regexp.MustCompile(`^[a-z0-9]+(?:[-_][a-z0-9]+)*$`)

// Package is a fixed-price donation offering shown in the storefront.
// INVARIANT: PackageID never changes after creation
type Package struct {
	ID                int64
	PackageID         string
	Name              string
	Description       string
	Price             decimal.Decimal
	ImpactDescription string
	Icon              string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Validate checks if the Package has valid data.
// PRE: Package struct is populated
// POST: Returns nil if valid, error otherwise
func (p *Package) Validate() error {
	if len(p.PackageID) > MaxPackageIDLength || !SlugPattern.MatchString(p.PackageID) {
		return ErrInvalidPackageID
	}
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyPackageName
	}
	if strings.TrimSpace(p.Description) == "" {
		return ErrEmptyDescription
	}
	if strings.TrimSpace(p.ImpactDescription) == "" {
		return ErrEmptyImpact
	}
	if !p.Price.IsPositive() {
		return ErrNonPositivePrice
	}
	if p.Price.GreaterThan(MaxPrice) {
		return ErrPriceTooLarge
	}
	if len(p.Name) > MaxPackageNameLength || len(p.Description) > MaxDescriptionLength ||
		len(p.ImpactDescription) > MaxImpactLength || len(p.Icon) > MaxIconLength {
		return ErrFieldTooLong
	}
	if !p.Price.Equal(p.Price.Round(2)) {
		return ErrPricePrecision
	}
	return nil
}

// DefaultCatalogue is the package set seeded into an empty development database.
func DefaultCatalogue() []Package {
	return []Package{
		{PackageID: "water-supply", Name: "Clean Water Supply", Icon: "💧",
			Price:             decimal.NewFromInt(150),
			Description:       "Provides a family with clean drinking water for a month.",
			ImpactDescription: "1 family with clean water for 30 days"},
		{PackageID: "food-basket", Name: "Food Basket", Icon: "🧺",
			Price:             decimal.NewFromInt(80),
			Description:       "Staple groceries delivered to a household in need.",
			ImpactDescription: "1 household fed for a week"},
		{PackageID: "school-kit", Name: "School Kit", Icon: "🎒",
			Price:             decimal.NewFromInt(50),
			Description:       "Stationery and a bag for one student.",
			ImpactDescription: "1 student ready for the school term"},
		{PackageID: "medical-aid", Name: "Medical Aid", Icon: "🩺",
			Price:             decimal.NewFromInt(200),
			Description:       "Basic medical supplies for the community clinic.",
			ImpactDescription: "First aid for 20 patients"},
	}
}
