package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"communityhub/internal/adapters/storage"
	"communityhub/internal/application/apperr"
	"communityhub/internal/application/validate"
	"communityhub/internal/domain/donation"
	"communityhub/internal/domain/fault"
	"communityhub/internal/domain/identity"
)

// DonationStoreForCheckout defines the store interface needed by ProcessDonation.
type DonationStoreForCheckout interface {
	Create(ctx context.Context, d donation.Donation) (donation.Donation, error)
}

// PackageLookup resolves current package prices for server-side pricing.
type PackageLookup interface {
	Get(ctx context.Context, packageID string) (donation.Package, error)
}

// Receipter sends the best-effort donation receipt.
type Receipter interface {
	Receipt(ctx context.Context, d donation.Donation)
}

// CartItem is one line of the client's cart snapshot.
type CartItem struct {
	ID       string          `json:"id" validate:"required,max=50"`
	Name     string          `json:"name" validate:"required,max=100"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity" validate:"gt=0,max=1000"`
	Impact   string          `json:"impact" validate:"max=500"`
}

// DonationData is the cart as submitted at checkout. Total and Date are the client's own
// bookkeeping; Total is checked against the items when prices are client-trusted.
type DonationData struct {
	Items         []CartItem       `json:"items" validate:"required,min=1,max=100,dive"`
	TransactionID string           `json:"transactionId" validate:"omitempty,max=100"`
	Total         *decimal.Decimal `json:"total"`
	Date          string           `json:"date"`
}

// DonorInfo carries the donor display name. Email and id are accepted but the
// session identity always wins.
type DonorInfo struct {
	Name  string `json:"name" validate:"max=100"`
	Email string `json:"email"`
	ID    *int64 `json:"id"`
}

// PaymentInfo carries card display metadata only. There are no fields for a full card
// number or security code, so strict decoding rejects them.
type PaymentInfo struct {
	CardName    string `json:"cardName" validate:"max=100"`
	CardLast4   string `json:"cardLast4" validate:"omitempty,len=4,numeric"`
	ExpiryMonth string `json:"expiryMonth" validate:"max=2"`
	ExpiryYear  string `json:"expiryYear" validate:"max=4"`
}

// ProcessDonationInput carries input for the checkout orchestrator.
type ProcessDonationInput struct {
	DonationData DonationData      `json:"donationData"`
	DonorInfo    DonorInfo         `json:"donorInfo"`
	PaymentInfo  PaymentInfo       `json:"paymentInfo"`
	Caller       identity.Identity `json:"-" validate:"required"`
}

// ProcessDonationDeps holds dependencies for ProcessDonation.
// With ServerPricing unset the cart's names, prices and impacts are stored as submitted.
// With it set every line is re-priced from the package table.
type ProcessDonationDeps struct {
	Donations     DonationStoreForCheckout
	Packages      PackageLookup
	Receipter     Receipter // optional
	ServerPricing bool
	Now           func() time.Time
	GenerateTxID  func(now time.Time) string // optional
}

// GenerateTransactionID returns "TXN-<unix millis>-<random suffix>".
func GenerateTransactionID(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return "TXN-" + strconv.FormatInt(now.UnixMilli(), 10) + "-" + suffix
}

// ExecuteProcessDonation records a completed donation and its items in one transaction.
// No payment is authorized; this is record keeping only.
// PRE: Caller is set
// POST: donation and items persisted atomically with status completed; total equals the item sum
func ExecuteProcessDonation(ctx context.Context, input ProcessDonationInput, deps ProcessDonationDeps) (donation.Donation, error) {
	if err := validate.Struct(input); err != nil {
		return donation.Donation{}, err
	}
	now := deps.Now()

	lines, err := cartLines(ctx, input.DonationData.Items, deps)
	if err != nil {
		return donation.Donation{}, err
	}

	txID := strings.TrimSpace(input.DonationData.TransactionID)
	if txID == "" {
		gen := deps.GenerateTxID
		if gen == nil {
			gen = GenerateTransactionID
		}
		txID = gen(now)
	}
	donorName := strings.TrimSpace(input.DonorInfo.Name)
	if v, ok := input.Caller.(identity.Volunteer); ok && donorName == "" {
		donorName = v.Name
	}
	payment := donation.Payment{
		CardName:    strings.TrimSpace(input.PaymentInfo.CardName),
		CardLast4:   input.PaymentInfo.CardLast4,
		ExpiryMonth: input.PaymentInfo.ExpiryMonth,
		ExpiryYear:  input.PaymentInfo.ExpiryYear,
	}

	d, err := donation.New(txID, input.Caller.Email(), donorName, lines, payment, now)
	if err != nil {
		return donation.Donation{}, validate.Domain("donationData", err)
	}
	if t := input.DonationData.Total; t != nil && !deps.ServerPricing && !t.Round(2).Equal(d.Total) {
		return donation.Donation{}, fault.Validation(validate.Message, fault.FieldError{
			Field:   "donationData.total",
			Message: fmt.Sprintf("does not match the item total %s", d.Total.StringFixed(2)),
		})
	}
	if err := d.Complete(now); err != nil {
		return donation.Donation{}, fault.Internal("donation processing failed", err)
	}

	saved, err := deps.Donations.Create(ctx, d)
	if err != nil {
		slog.Error("donation_event", "event", "checkout_failed", "transaction_id", txID, "error", err)
		return donation.Donation{}, apperr.FromStore(err, "", "transaction id already used")
	}

	slog.Info("donation_event", "event", "checkout_completed", "transaction_id", saved.TransactionID,
		"donor", saved.DonorEmail, "items", saved.ItemCount(), "total", saved.Total.StringFixed(2),
		"server_pricing", deps.ServerPricing)
	if deps.Receipter != nil {
		deps.Receipter.Receipt(ctx, saved)
	}
	return saved, nil
}

func cartLines(ctx context.Context, items []CartItem, deps ProcessDonationDeps) ([]donation.Line, error) {
	lines := make([]donation.Line, 0, len(items))
	for i, it := range items {
		line := donation.Line{
			PackageID: strings.TrimSpace(it.ID),
			Name:      strings.TrimSpace(it.Name),
			Price:     it.Price,
			Quantity:  it.Quantity,
			Impact:    strings.TrimSpace(it.Impact),
		}
		if deps.ServerPricing {
			pkg, err := deps.Packages.Get(ctx, line.PackageID)
			if errors.Is(err, storage.ErrNotFound) {
				return nil, fault.Validation(validate.Message, fault.FieldError{
					Field: fmt.Sprintf("donationData.items[%d].id", i), Message: "unknown package",
				})
			}
			if err != nil {
				return nil, apperr.Internal(err)
			}
			line.Name, line.Price, line.Impact = pkg.Name, pkg.Price, pkg.ImpactDescription
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// DonationStoreForDelete defines the store interface needed by DeleteDonation.
type DonationStoreForDelete interface {
	Delete(ctx context.Context, id int64) error
}

// DeleteDonationDeps holds dependencies for DeleteDonation.
type DeleteDonationDeps struct {
	Donations DonationStoreForDelete
}

// ExecuteDeleteDonation removes a donation and its items.
// PRE: caller is the administrator
// POST: donation and items gone; not found when absent
func ExecuteDeleteDonation(ctx context.Context, id int64, deps DeleteDonationDeps) error {
	if id <= 0 {
		return fault.Validation(validate.Message, fault.FieldError{Field: "id", Message: "must be a positive integer"})
	}
	if err := deps.Donations.Delete(ctx, id); err != nil {
		return apperr.FromStore(err, "donation not found", "")
	}
	slog.Info("donation_event", "event", "donation_deleted", "donation_id", id)
	return nil
}
