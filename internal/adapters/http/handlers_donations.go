package web

import (
	"net/http"
	"strconv"

	"communityhub/internal/application/listutil"
	"communityhub/internal/application/orchestrators"
	"communityhub/internal/application/projections"
	"communityhub/internal/config"
)

func (s *Server) packageDeps() orchestrators.PackageDeps {
	return orchestrators.PackageDeps{Packages: s.stores.Packages, Now: s.now}
}

// handleDonationPackages handles GET /donationPackages, cheapest first.
func (s *Server) handleDonationPackages(w http.ResponseWriter, r *http.Request) {
	packages, err := projections.QueryPackages(r.Context(), s.stores.Packages)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, envelope{"packages": packages})
}

// handleAllDonationPackages handles GET /getAllDonationPackages, newest first.
func (s *Server) handleAllDonationPackages(w http.ResponseWriter, r *http.Request) {
	packages, err := projections.QueryAdminPackages(r.Context(), s.stores.Packages)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, envelope{"packages": packages})
}

// handleCreateDonationPackage handles POST /createDonationPackage.
func (s *Server) handleCreateDonationPackage(w http.ResponseWriter, r *http.Request) {
	var input orchestrators.PackageInput
	if err := decodeJSON(w, r, &input, defaultBodyLimit); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := orchestrators.ExecuteCreatePackage(r.Context(), input, s.packageDeps())
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusCreated, envelope{"package": projections.NewPackageView(p)})
}

// handleUpdateDonationPackage handles PUT /updateDonationPackage. The body names the package.
func (s *Server) handleUpdateDonationPackage(w http.ResponseWriter, r *http.Request) {
	var input orchestrators.PackageInput
	if err := decodeJSON(w, r, &input, defaultBodyLimit); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := orchestrators.ExecuteUpdatePackage(r.Context(), input, s.packageDeps())
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, envelope{"package": projections.NewPackageView(p)})
}

// handleDeleteDonationPackage handles DELETE /deleteDonationPackage/{id}, where id is the package slug.
func (s *Server) handleDeleteDonationPackage(w http.ResponseWriter, r *http.Request) {
	if err := orchestrators.ExecuteDeletePackage(r.Context(), r.PathValue("id"), s.packageDeps()); err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, envelope{"message": "package deleted"})
}

// handleProcessDonation handles POST /processDonation.
// POST: donation and items committed together, or nothing is written
func (s *Server) handleProcessDonation(w http.ResponseWriter, r *http.Request) {
	var input orchestrators.ProcessDonationInput
	if err := decodeJSON(w, r, &input, defaultBodyLimit); err != nil {
		writeError(w, r, err)
		return
	}
	input.Caller = caller(r)

	deps := orchestrators.ProcessDonationDeps{
		Donations:     s.stores.Donations,
		Packages:      s.stores.Packages,
		ServerPricing: s.cfg.Pricing == config.PricingServer,
		Now:           s.now,
	}
	if s.notifier != nil {
		deps.Receipter = s.notifier
	}
	d, err := orchestrators.ExecuteProcessDonation(r.Context(), input, deps)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusCreated, envelope{
		"message":       "thank you for your donation",
		"transactionId": d.TransactionID,
		"donation":      projections.NewDonationView(d),
	})
}

// handleUserDonations handles POST /getUserDonations. The body's email is optional.
func (s *Server) handleUserDonations(w http.ResponseWriter, r *http.Request) {
	var query projections.UserDonationsQuery
	if err := decodeOptionalJSON(w, r, &query); err != nil {
		writeError(w, r, err)
		return
	}
	query.Caller = caller(r)

	donations, err := projections.QueryUserDonations(r.Context(), query, s.stores.Donations)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, envelope{"donations": donations})
}

// handleDonationStats handles GET /donationStats.
func (s *Server) handleDonationStats(w http.ResponseWriter, r *http.Request) {
	stats, err := projections.QueryDonationStats(r.Context(), s.stores.Donations)
	if err != nil {
		writeError(w, r, err)
		return
	}
	okFlat(w, r, stats)
}

// handleAllDonations handles GET /getAllDonations[?page=&per_page=].
func (s *Server) handleAllDonations(w http.ResponseWriter, r *http.Request) {
	page := listutil.ParsePageParams(r.URL.Query())
	result, err := projections.QueryAllDonations(r.Context(), page, s.stores.Donations)
	if err != nil {
		writeError(w, r, err)
		return
	}
	okFlat(w, r, result)
}

// handleDeleteDonation handles DELETE /deleteDonation/{id}.
func (s *Server) handleDeleteDonation(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		id = 0
	}
	deps := orchestrators.DeleteDonationDeps{Donations: s.stores.Donations}
	if err := orchestrators.ExecuteDeleteDonation(r.Context(), id, deps); err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, envelope{"message": "donation deleted"})
}
