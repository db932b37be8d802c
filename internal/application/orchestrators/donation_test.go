package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"communityhub/internal/adapters/storage"
	"communityhub/internal/domain/donation"
	"communityhub/internal/domain/fault"
	"communityhub/internal/domain/identity"
)

func waterPackage() donation.Package {
	return donation.Package{
		PackageID: "water-supply", Name: "Clean Water Supply", Price: decimal.NewFromInt(150),
		Description: "Water for a month", ImpactDescription: "1 family with clean water", Icon: "💧",
	}
}

func packageInput() PackageInput {
	return PackageInput{
		PackageID: "water-supply", Name: "Clean Water Supply", Description: "Water for a month",
		Price: decimal.RequireFromString("150.00"), ImpactDescription: "1 family with clean water", Icon: "💧",
	}
}

func TestExecuteCreatePackage(t *testing.T) {
	store := newMockPackageStore()
	deps := PackageDeps{Packages: store, Now: fixedNow}

	p, err := ExecuteCreatePackage(context.Background(), packageInput(), deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.Price.Equal(decimal.NewFromInt(150)) || !p.CreatedAt.Equal(fixedTime) {
		t.Errorf("unexpected package %+v", p)
	}

	_, err = ExecuteCreatePackage(context.Background(), packageInput(), deps)
	if !fault.Is(err, fault.KindConflict) {
		t.Errorf("duplicate: expected conflict, got %v", err)
	}
}

func TestExecuteCreatePackage_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*PackageInput)
		field  string
	}{
		{"zero price", func(in *PackageInput) { in.Price = decimal.Zero }, "price"},
		{"negative price", func(in *PackageInput) { in.Price = decimal.NewFromInt(-5) }, "price"},
		{"sub-cent price", func(in *PackageInput) { in.Price = decimal.RequireFromString("1.005") }, "price"},
		{"price over maximum", func(in *PackageInput) { in.Price = decimal.RequireFromString("1000000.01") }, "price"},
		{"unstorable price", func(in *PackageInput) { in.Price = decimal.RequireFromString("100000000000000000") }, "price"},
		{"bad slug", func(in *PackageInput) { in.PackageID = "Water Supply" }, "package_id"},
		{"missing name", func(in *PackageInput) { in.Name = "" }, "name"},
		{"missing impact", func(in *PackageInput) { in.ImpactDescription = "" }, "impact_description"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockPackageStore()
			in := packageInput()
			tt.mutate(&in)
			_, err := ExecuteCreatePackage(context.Background(), in, PackageDeps{Packages: store, Now: fixedNow})
			fe, ok := fault.As(err)
			if !ok || fe.Kind != fault.KindValidation {
				t.Fatalf("expected validation fault, got %v", err)
			}
			if !hasField(fe, tt.field) {
				t.Errorf("expected field %q in %+v", tt.field, fe.Fields)
			}
			if len(store.packages) != 0 {
				t.Error("nothing should be stored")
			}
		})
	}
}

func TestExecuteUpdatePackage(t *testing.T) {
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	orig := waterPackage()
	orig.CreatedAt = created
	store := newMockPackageStore(orig)
	deps := PackageDeps{Packages: store, Now: fixedNow}

	in := packageInput()
	in.Price = decimal.NewFromInt(175)
	p, err := ExecuteUpdatePackage(context.Background(), in, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.Price.Equal(decimal.NewFromInt(175)) {
		t.Errorf("Price = %s", p.Price)
	}
	if !p.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt changed to %v", p.CreatedAt)
	}

	in.PackageID = "no-such-package"
	if _, err := ExecuteUpdatePackage(context.Background(), in, deps); !fault.Is(err, fault.KindNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestExecuteDeletePackage(t *testing.T) {
	store := newMockPackageStore(waterPackage())
	deps := PackageDeps{Packages: store, Now: fixedNow}
	if err := ExecuteDeletePackage(context.Background(), "water-supply", deps); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ExecuteDeletePackage(context.Background(), "water-supply", deps); !fault.Is(err, fault.KindNotFound) {
		t.Errorf("second delete: expected not found, got %v", err)
	}
}

func TestExecuteSeedCatalogue(t *testing.T) {
	store := newMockPackageStore()
	deps := PackageDeps{Packages: store, Now: fixedNow}
	n, err := ExecuteSeedCatalogue(context.Background(), deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != len(donation.DefaultCatalogue()) {
		t.Errorf("seeded %d, want %d", n, len(donation.DefaultCatalogue()))
	}
	if p := store.packages["water-supply"]; !p.Price.Equal(decimal.NewFromInt(150)) {
		t.Errorf("water-supply price = %s", p.Price)
	}
	if n, _ := ExecuteSeedCatalogue(context.Background(), deps); n != 0 {
		t.Errorf("second seed inserted %d, want 0", n)
	}
}

func checkoutInput(items ...CartItem) ProcessDonationInput {
	return ProcessDonationInput{
		DonationData: DonationData{Items: items, TransactionID: "TXN-1"},
		DonorInfo:    DonorInfo{Name: "Ana Lopez"},
		PaymentInfo:  PaymentInfo{CardName: "Ana Lopez", CardLast4: "4242", ExpiryMonth: "09", ExpiryYear: "2028"},
		Caller:       identity.Volunteer{ID: 1, Address: "ana@example.com", Name: "Ana Lopez"},
	}
}

func checkoutDeps(donations *mockDonationStore, packages *mockPackageStore) ProcessDonationDeps {
	return ProcessDonationDeps{Donations: donations, Packages: packages, Now: fixedNow}
}

// TestExecuteProcessDonation_TotalIsItemSum checks the documented cart of two water
// packages at 150.
func TestExecuteProcessDonation_TotalIsItemSum(t *testing.T) {
	donations := newMockDonationStore()
	receipts := &recordingReceipter{}
	deps := checkoutDeps(donations, newMockPackageStore())
	deps.Receipter = receipts

	d, err := ExecuteProcessDonation(context.Background(), checkoutInput(
		CartItem{ID: "water-supply", Name: "Clean Water Supply", Price: decimal.NewFromInt(150), Quantity: 2, Impact: "water"},
	), deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := d.Total.StringFixed(2); got != "300.00" {
		t.Errorf("Total = %s, want 300.00", got)
	}
	if got := d.Items[0].Subtotal.StringFixed(2); got != "300.00" {
		t.Errorf("Subtotal = %s, want 300.00", got)
	}
	if d.Status != donation.StatusCompleted {
		t.Errorf("Status = %s, want completed", d.Status)
	}
	if d.DonorEmail != "ana@example.com" {
		t.Errorf("DonorEmail = %s", d.DonorEmail)
	}
	if len(receipts.sent) != 1 || receipts.sent[0].TransactionID != "TXN-1" {
		t.Errorf("receipts = %+v", receipts.sent)
	}
}

func TestExecuteProcessDonation_MultipleLines(t *testing.T) {
	donations := newMockDonationStore()
	d, err := ExecuteProcessDonation(context.Background(), checkoutInput(
		CartItem{ID: "water-supply", Name: "Water", Price: decimal.RequireFromString("150.00"), Quantity: 1},
		CartItem{ID: "school-kit", Name: "Kit", Price: decimal.RequireFromString("49.99"), Quantity: 3},
	), checkoutDeps(donations, newMockPackageStore()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := d.Total.StringFixed(2); got != "299.97" {
		t.Errorf("Total = %s, want 299.97", got)
	}
	if d.ItemCount() != 4 {
		t.Errorf("ItemCount = %d, want 4", d.ItemCount())
	}
}

func TestExecuteProcessDonation_GeneratesTransactionID(t *testing.T) {
	donations := newMockDonationStore()
	in := checkoutInput(CartItem{ID: "water-supply", Name: "Water", Price: decimal.NewFromInt(150), Quantity: 1})
	in.DonationData.TransactionID = ""

	d, err := ExecuteProcessDonation(context.Background(), in, checkoutDeps(donations, newMockPackageStore()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "TXN-" + "1772625600000" + "-"
	if !strings.HasPrefix(d.TransactionID, want) || len(d.TransactionID) != len(want)+8 {
		t.Errorf("TransactionID = %q, want %s<8 chars>", d.TransactionID, want)
	}
}

func TestExecuteProcessDonation_DuplicateTransaction(t *testing.T) {
	donations := newMockDonationStore()
	deps := checkoutDeps(donations, newMockPackageStore())
	in := checkoutInput(CartItem{ID: "water-supply", Name: "Water", Price: decimal.NewFromInt(150), Quantity: 1})
	if _, err := ExecuteProcessDonation(context.Background(), in, deps); err != nil {
		t.Fatal(err)
	}
	_, err := ExecuteProcessDonation(context.Background(), in, deps)
	if !fault.Is(err, fault.KindConflict) {
		t.Errorf("expected conflict, got %v", err)
	}
	if len(donations.byTx) != 1 {
		t.Errorf("donations = %d, want 1", len(donations.byTx))
	}
}

func TestExecuteProcessDonation_StoreFailureIsGeneric(t *testing.T) {
	donations := newMockDonationStore()
	donations.createErr = errors.New("disk I/O error")
	receipts := &recordingReceipter{}
	deps := checkoutDeps(donations, newMockPackageStore())
	deps.Receipter = receipts

	_, err := ExecuteProcessDonation(context.Background(), checkoutInput(
		CartItem{ID: "water-supply", Name: "Water", Price: decimal.NewFromInt(150), Quantity: 1},
	), deps)
	fe, ok := fault.As(err)
	if !ok || fe.Kind != fault.KindInternal {
		t.Fatalf("expected internal fault, got %v", err)
	}
	if strings.Contains(fe.Message, "disk") {
		t.Errorf("client message leaks the cause: %q", fe.Message)
	}
	if len(receipts.sent) != 0 {
		t.Error("no receipt should be sent on failure")
	}
}

func TestExecuteProcessDonation_UnstorableAmountIsValidation(t *testing.T) {
	donations := newMockDonationStore()
	donations.createErr = fmt.Errorf("create donation TXN: %w", storage.ErrOutOfRange)

	_, err := ExecuteProcessDonation(context.Background(), checkoutInput(
		CartItem{ID: "water-supply", Name: "Water", Price: decimal.NewFromInt(150), Quantity: 1},
	), checkoutDeps(donations, newMockPackageStore()))
	if !fault.Is(err, fault.KindValidation) {
		t.Fatalf("expected validation fault, got %v", err)
	}
}

func TestExecuteProcessDonation_Invalid(t *testing.T) {
	water := CartItem{ID: "water-supply", Name: "Water", Price: decimal.NewFromInt(150), Quantity: 1}
	tests := []struct {
		name   string
		mutate func(*ProcessDonationInput)
	}{
		{"empty cart", func(in *ProcessDonationInput) { in.DonationData.Items = nil }},
		{"zero quantity", func(in *ProcessDonationInput) { in.DonationData.Items[0].Quantity = 0 }},
		{"huge quantity", func(in *ProcessDonationInput) { in.DonationData.Items[0].Quantity = 5000 }},
		{"zero price", func(in *ProcessDonationInput) { in.DonationData.Items[0].Price = decimal.Zero }},
		{"sub-cent price", func(in *ProcessDonationInput) { in.DonationData.Items[0].Price = decimal.RequireFromString("0.004") }},
		{"price over maximum", func(in *ProcessDonationInput) {
			in.DonationData.Items[0].Price = decimal.RequireFromString("1000000.01")
		}},
		{"unstorable total", func(in *ProcessDonationInput) {
			in.DonationData.Items[0].Price = decimal.RequireFromString("100000000000000000")
			in.DonationData.Items[0].Quantity = 1000
		}},
		{"bad last4", func(in *ProcessDonationInput) { in.PaymentInfo.CardLast4 = "42a2" }},
		{"bad month", func(in *ProcessDonationInput) { in.PaymentInfo.ExpiryMonth = "13" }},
		{"total mismatch", func(in *ProcessDonationInput) {
			total := decimal.NewFromInt(1)
			in.DonationData.Total = &total
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			donations := newMockDonationStore()
			in := checkoutInput(water)
			tt.mutate(&in)
			_, err := ExecuteProcessDonation(context.Background(), in, checkoutDeps(donations, newMockPackageStore()))
			if !fault.Is(err, fault.KindValidation) {
				t.Errorf("expected validation fault, got %v", err)
			}
			if len(donations.byTx) != 0 {
				t.Error("nothing should be stored")
			}
		})
	}
}

func TestExecuteProcessDonation_MatchingTotalAccepted(t *testing.T) {
	in := checkoutInput(CartItem{ID: "water-supply", Name: "Water", Price: decimal.NewFromInt(150), Quantity: 2})
	total := decimal.RequireFromString("300")
	in.DonationData.Total = &total
	in.DonationData.Date = "2026-03-04T12:00:00.000Z"
	if _, err := ExecuteProcessDonation(context.Background(), in, checkoutDeps(newMockDonationStore(), newMockPackageStore())); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// TestExecuteProcessDonation_ClientPricingTrusted keeps the submitted snapshot as-is.
func TestExecuteProcessDonation_ClientPricingTrusted(t *testing.T) {
	packages := newMockPackageStore(waterPackage())
	d, err := ExecuteProcessDonation(context.Background(), checkoutInput(
		CartItem{ID: "water-supply", Name: "Cheap Water", Price: decimal.NewFromInt(1), Quantity: 2},
	), checkoutDeps(newMockDonationStore(), packages))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Total.StringFixed(2) != "2.00" || d.Items[0].Name != "Cheap Water" {
		t.Errorf("client snapshot not kept: %+v", d.Items[0])
	}
}

func TestExecuteProcessDonation_ServerPricing(t *testing.T) {
	packages := newMockPackageStore(waterPackage())
	deps := checkoutDeps(newMockDonationStore(), packages)
	deps.ServerPricing = true

	d, err := ExecuteProcessDonation(context.Background(), checkoutInput(
		CartItem{ID: "water-supply", Name: "Cheap Water", Price: decimal.NewFromInt(1), Quantity: 2},
	), deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Total.StringFixed(2) != "300.00" {
		t.Errorf("Total = %s, want 300.00", d.Total.StringFixed(2))
	}
	if d.Items[0].Name != "Clean Water Supply" || d.Items[0].Impact != "1 family with clean water" {
		t.Errorf("line not re-priced from the catalogue: %+v", d.Items[0])
	}

	in := checkoutInput(CartItem{ID: "gold-bars", Name: "Gold", Price: decimal.NewFromInt(1), Quantity: 1})
	in.DonationData.TransactionID = "TXN-2"
	_, err = ExecuteProcessDonation(context.Background(), in, deps)
	fe, ok := fault.As(err)
	if !ok || fe.Kind != fault.KindValidation || !hasField(fe, "donationData.items[0].id") {
		t.Errorf("expected validation on donationData.items[0].id, got %v", err)
	}
}

func TestExecuteDeleteDonation(t *testing.T) {
	donations := newMockDonationStore()
	d, err := ExecuteProcessDonation(context.Background(), checkoutInput(
		CartItem{ID: "water-supply", Name: "Water", Price: decimal.NewFromInt(150), Quantity: 1},
	), checkoutDeps(donations, newMockPackageStore()))
	if err != nil {
		t.Fatal(err)
	}
	deps := DeleteDonationDeps{Donations: donations}
	if err := ExecuteDeleteDonation(context.Background(), d.ID, deps); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ExecuteDeleteDonation(context.Background(), d.ID, deps); !fault.Is(err, fault.KindNotFound) {
		t.Errorf("second delete: expected not found, got %v", err)
	}
	if err := ExecuteDeleteDonation(context.Background(), 0, deps); !fault.Is(err, fault.KindValidation) {
		t.Errorf("id 0: expected validation fault, got %v", err)
	}
}

func TestGenerateTransactionID_Unique(t *testing.T) {
	a, b := GenerateTransactionID(fixedTime), GenerateTransactionID(fixedTime)
	if a == b {
		t.Errorf("expected distinct ids, got %s twice", a)
	}
}
