package projections

import (
	"context"
	"time"

	"communityhub/internal/application/apperr"
	"communityhub/internal/application/listutil"
	"communityhub/internal/domain/donation"
	"communityhub/internal/domain/fault"
	"communityhub/internal/domain/identity"
	"communityhub/internal/domain/volunteer"
)

// Stats limits.
const (
	RecentDonationsLimit = 10
	TopPackagesLimit     = 5
)

// PackageView is a catalogue entry as sent to clients. Amounts are fixed two-decimal strings.
type PackageView struct {
	ID                int64     `json:"id"`
	PackageID         string    `json:"package_id"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	Price             string    `json:"price"`
	ImpactDescription string    `json:"impact_description"`
	Icon              string    `json:"icon"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// NewPackageView flattens a package for JSON.
func NewPackageView(p donation.Package) PackageView {
	return PackageView{
		ID:                p.ID,
		PackageID:         p.PackageID,
		Name:              p.Name,
		Description:       p.Description,
		Price:             p.Price.StringFixed(2),
		ImpactDescription: p.ImpactDescription,
		Icon:              p.Icon,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

// ItemView is one donation line.
type ItemView struct {
	PackageID string `json:"package_id"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity"`
	Impact    string `json:"impact"`
	Subtotal  string `json:"subtotal"`
}

// DonationView is a donation with its items. Card data is limited to display metadata.
type DonationView struct {
	ID            int64      `json:"id"`
	TransactionID string     `json:"transaction_id"`
	DonorID       *int64     `json:"donor_id"`
	DonorEmail    string     `json:"donor_email"`
	DonorName     string     `json:"donor_name"`
	TotalAmount   string     `json:"total_amount"`
	Status        string     `json:"status"`
	CardName      string     `json:"card_name,omitempty"`
	CardLast4     string     `json:"card_last4,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	Items         []ItemView `json:"items"`
}

// NewDonationView flattens a donation for JSON. Items is never null.
func NewDonationView(d donation.Donation) DonationView {
	v := DonationView{
		ID:            d.ID,
		TransactionID: d.TransactionID,
		DonorID:       d.DonorID,
		DonorEmail:    d.DonorEmail,
		DonorName:     d.DonorName,
		TotalAmount:   d.Total.StringFixed(2),
		Status:        string(d.Status),
		CardName:      d.Payment.CardName,
		CardLast4:     d.Payment.CardLast4,
		CreatedAt:     d.CreatedAt,
		Items:         make([]ItemView, 0, len(d.Items)),
	}
	for _, it := range d.Items {
		v.Items = append(v.Items, ItemView{
			PackageID: it.PackageID,
			Name:      it.Name,
			Price:     it.Price.StringFixed(2),
			Quantity:  it.Quantity,
			Impact:    it.Impact,
			Subtotal:  it.Subtotal.StringFixed(2),
		})
	}
	return v
}

func donationViews(ds []donation.Donation) []DonationView {
	views := make([]DonationView, 0, len(ds))
	for _, d := range ds {
		views = append(views, NewDonationView(d))
	}
	return views
}

// QueryPackages lists the public catalogue by ascending price.
// PRE: none
// POST: Returns packages, possibly empty
func QueryPackages(ctx context.Context, packages PackageStore) ([]PackageView, error) {
	list, err := packages.ListByPrice(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return packageViews(list), nil
}

// QueryAdminPackages lists the catalogue newest first.
// PRE: caller is the administrator
// POST: Returns packages, possibly empty
func QueryAdminPackages(ctx context.Context, packages PackageStore) ([]PackageView, error) {
	list, err := packages.ListNewest(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return packageViews(list), nil
}

func packageViews(list []donation.Package) []PackageView {
	views := make([]PackageView, 0, len(list))
	for _, p := range list {
		views = append(views, NewPackageView(p))
	}
	return views
}

// UserDonationsQuery carries the requested donor email and the caller.
type UserDonationsQuery struct {
	Email  string            `json:"email"`
	Caller identity.Identity `json:"-"`
}

// QueryUserDonations returns a donor's history, newest first.
// PRE: Caller is set
// POST: volunteers see only their own email; the administrator may name any email
func QueryUserDonations(ctx context.Context, query UserDonationsQuery, donations DonationStore) ([]DonationView, error) {
	if query.Caller == nil {
		return nil, fault.Unauthenticated()
	}
	email := volunteer.NormalizeEmail(query.Email)
	if email == "" {
		email = query.Caller.Email()
	}
	if !query.Caller.IsAdmin() && !identity.Owns(query.Caller, email) {
		return nil, fault.Authz("you can only view your own donations")
	}
	list, err := donations.ListByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return donationViews(list), nil
}

// PackageTotalView is one row of the top-packages ranking.
type PackageTotalView struct {
	PackageID     string `json:"package_id"`
	Name          string `json:"name"`
	TotalQuantity int    `json:"total_quantity"`
	TotalAmount   string `json:"total_amount"`
}

// DonationStatsResult carries the admin dashboard aggregates.
type DonationStatsResult struct {
	TotalDonations  int                `json:"total_donations"`
	TotalAmount     string             `json:"total_amount"`
	RecentDonations []DonationView     `json:"recent_donations"`
	TopPackages     []PackageTotalView `json:"top_packages"`
}

// QueryDonationStats aggregates completed donations on demand.
// PRE: caller is the administrator
// POST: totals cover completed donations; at most ten recent rows and five packages
func QueryDonationStats(ctx context.Context, donations DonationStore) (DonationStatsResult, error) {
	totals, err := donations.Totals(ctx)
	if err != nil {
		return DonationStatsResult{}, apperr.Internal(err)
	}
	recent, err := donations.Recent(ctx, RecentDonationsLimit)
	if err != nil {
		return DonationStatsResult{}, apperr.Internal(err)
	}
	top, err := donations.TopPackages(ctx, TopPackagesLimit)
	if err != nil {
		return DonationStatsResult{}, apperr.Internal(err)
	}

	result := DonationStatsResult{
		TotalDonations:  totals.Count,
		TotalAmount:     totals.Amount.StringFixed(2),
		RecentDonations: donationViews(recent),
		TopPackages:     make([]PackageTotalView, 0, len(top)),
	}
	for _, pt := range top {
		result.TopPackages = append(result.TopPackages, PackageTotalView{
			PackageID:     pt.PackageID,
			Name:          pt.Name,
			TotalQuantity: pt.Quantity,
			TotalAmount:   pt.Amount.StringFixed(2),
		})
	}
	return result, nil
}

// AllDonationsResult carries every donation, or one page of them.
type AllDonationsResult struct {
	Donations  []DonationView     `json:"donations"`
	Pagination *listutil.PageInfo `json:"pagination,omitempty"`
}

// QueryAllDonations lists every donation with items, newest first.
// PRE: caller is the administrator
// POST: Pagination is set only when a page was requested
func QueryAllDonations(ctx context.Context, page listutil.PageParams, donations DonationStore) (AllDonationsResult, error) {
	list, err := donations.ListAll(ctx)
	if err != nil {
		return AllDonationsResult{}, apperr.Internal(err)
	}
	list, info := listutil.Paginate(list, page)
	return AllDonationsResult{Donations: donationViews(list), Pagination: info}, nil
}
