package donation

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Status of a donation.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// MaxQuantity bounds a single cart line.
const MaxQuantity = 1000

// MaxPrice bounds a unit price so every line subtotal and donation total fits in stored cents.
var MaxPrice = decimal.NewFromInt(1_000_000)

// Domain errors
var (
	ErrEmptyTransactionID = errors.New("transaction id cannot be empty")
	ErrEmptyDonorEmail    = errors.New("donor email cannot be empty")
	ErrNoItems            = errors.New("donation must contain at least one item")
	ErrEmptyItemPackage   = errors.New("item package id cannot be empty")
	ErrEmptyItemName      = errors.New("item name cannot be empty")
	ErrNonPositiveQty     = errors.New("item quantity must be greater than zero")
	ErrQuantityTooLarge   = errors.New("item quantity exceeds maximum")
	ErrItemPrice          = errors.New("item price must be greater than zero")
	ErrPriceTooLarge      = errors.New("price exceeds maximum")
	ErrInvalidCardLast4   = errors.New("card last 4 must be exactly four digits")
	ErrInvalidExpiry      = errors.New("card expiry month must be 01-12 and year four digits")
	ErrTotalMismatch      = errors.New("donation total must equal the sum of item subtotals")
	ErrInvalidTransition  = errors.New("donation status can only move from pending")
)

var (
	last4Pattern = regexp.MustCompile(`^[0-9]{4}$`)
	monthPattern = regexp.MustCompile(`^(0?[1-9]|1[0-2])$`)
	yearPattern  = regexp.MustCompile(`^[0-9]{4}$`)
)

// Line is one cart entry as submitted at checkout.
type Line struct {
	PackageID string
	Name      string
	Price     decimal.Decimal
	Quantity  int
	Impact    string
}

// Item is a persisted donation line. Name, price and impact are snapshots taken at
// checkout and survive later package edits or deletion.
type Item struct {
	ID        int64
	PackageID string
	Name      string
	Price     decimal.Decimal
	Impact    string
	Quantity  int
	Subtotal  decimal.Decimal
}

// Payment holds the non-sensitive card metadata kept for receipts.
// Full card numbers and security codes are never part of the model.
type Payment struct {
	CardName    string
	CardLast4   string
	ExpiryMonth string
	ExpiryYear  string
}

// Donation is a checkout transaction and its line items.
// INVARIANT: Total equals the sum of item subtotals
type Donation struct {
	ID            int64
	TransactionID string
	DonorID       *int64
	DonorEmail    string
	DonorName     string
	Total         decimal.Decimal
	Status        Status
	Payment       Payment
	Items         []Item
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// New builds a pending donation from cart lines, computing subtotals and the total.
// PRE: lines are non-empty
// POST: returned donation satisfies Validate
func New(transactionID, donorEmail, donorName string, lines []Line, payment Payment, now time.Time) (Donation, error) {
	d := Donation{
		TransactionID: strings.TrimSpace(transactionID),
		DonorEmail:    donorEmail,
		DonorName:     strings.TrimSpace(donorName),
		Status:        StatusPending,
		Payment:       payment,
		Total:         decimal.Zero,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if len(lines) == 0 {
		return Donation{}, ErrNoItems
	}
	for _, l := range lines {
		item, err := newItem(l)
		if err != nil {
			return Donation{}, err
		}
		d.Items = append(d.Items, item)
		d.Total = d.Total.Add(item.Subtotal)
	}
	if err := d.Validate(); err != nil {
		return Donation{}, err
	}
	return d, nil
}

func newItem(l Line) (Item, error) {
	if strings.TrimSpace(l.PackageID) == "" {
		return Item{}, ErrEmptyItemPackage
	}
	if strings.TrimSpace(l.Name) == "" {
		return Item{}, ErrEmptyItemName
	}
	if l.Quantity <= 0 {
		return Item{}, ErrNonPositiveQty
	}
	if l.Quantity > MaxQuantity {
		return Item{}, ErrQuantityTooLarge
	}
	price := l.Price.Round(2)
	if !price.IsPositive() {
		return Item{}, ErrItemPrice
	}
	if price.GreaterThan(MaxPrice) {
		return Item{}, ErrPriceTooLarge
	}
	return Item{
		PackageID: l.PackageID,
		Name:      l.Name,
		Price:     price,
		Impact:    l.Impact,
		Quantity:  l.Quantity,
		Subtotal:  price.Mul(decimal.NewFromInt(int64(l.Quantity))),
	}, nil
}

// Validate checks if the Donation has valid data.
// PRE: Donation struct is populated
// POST: Returns nil if valid, error otherwise
func (d *Donation) Validate() error {
	if d.TransactionID == "" {
		return ErrEmptyTransactionID
	}
	if d.DonorEmail == "" {
		return ErrEmptyDonorEmail
	}
	if len(d.Items) == 0 {
		return ErrNoItems
	}
	if err := d.Payment.Validate(); err != nil {
		return err
	}
	sum := decimal.Zero
	for _, it := range d.Items {
		sum = sum.Add(it.Subtotal)
	}
	if !sum.Equal(d.Total) {
		return ErrTotalMismatch
	}
	return nil
}

// Validate checks the card metadata shape. Empty metadata is allowed.
func (p Payment) Validate() error {
	if p.CardLast4 != "" && !last4Pattern.MatchString(p.CardLast4) {
		return ErrInvalidCardLast4
	}
	if p.ExpiryMonth != "" && !monthPattern.MatchString(p.ExpiryMonth) {
		return ErrInvalidExpiry
	}
	if p.ExpiryYear != "" && !yearPattern.MatchString(p.ExpiryYear) {
		return ErrInvalidExpiry
	}
	return nil
}

// Complete marks a pending donation as completed.
// PRE: Status is pending
// POST: Status is completed, UpdatedAt is now
func (d *Donation) Complete(now time.Time) error {
	return d.transition(StatusCompleted, now)
}

func (d *Donation) transition(to Status, now time.Time) error {
	if d.Status != StatusPending {
		return ErrInvalidTransition
	}
	d.Status = to
	d.UpdatedAt = now
	return nil
}

// ItemCount returns the total quantity across all lines.
func (d *Donation) ItemCount() int {
	n := 0
	for _, it := range d.Items {
		n += it.Quantity
	}
	return n
}
