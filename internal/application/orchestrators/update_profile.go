package orchestrators

import (
	"context"
	"log/slog"
	"strings"

	"communityhub/internal/application/apperr"
	"communityhub/internal/application/validate"
	"communityhub/internal/domain/fault"
	"communityhub/internal/domain/identity"
	"communityhub/internal/domain/volunteer"
)

// VolunteerStoreForProfile defines the store interface needed by UpdateProfile.
type VolunteerStoreForProfile interface {
	GetByEmail(ctx context.Context, email string) (volunteer.Volunteer, error)
	UpdateProfile(ctx context.Context, v volunteer.Volunteer) error
}

// UpdateProfileInput carries input for the profile orchestrator.
type UpdateProfileInput struct {
	Email           string            `json:"email" validate:"required,email"`
	Name            string            `json:"name" validate:"required,min=2,max=100"`
	Phone           string            `json:"phone" validate:"required,phone"`
	CurrentPassword string            `json:"currentPassword" validate:"required"`
	NewPassword     string            `json:"newPassword" validate:"omitempty,min=6,max=72"`
	Caller          identity.Identity `json:"-" validate:"required"`
}

// UpdateProfileDeps holds dependencies for UpdateProfile.
type UpdateProfileDeps struct {
	Volunteers VolunteerStoreForProfile
}

// ExecuteUpdateProfile rewrites the caller's name and phone, and optionally the password.
// The current password is always re-verified.
// PRE: Caller is set
// POST: profile updated; password re-hashed when NewPassword is set
// INVARIANT: only the owner of the email may update it; the administrator has no profile
func ExecuteUpdateProfile(ctx context.Context, input UpdateProfileInput, deps UpdateProfileDeps) (volunteer.Volunteer, error) {
	if err := validate.Struct(input); err != nil {
		return volunteer.Volunteer{}, err
	}
	if input.Caller.IsAdmin() {
		return volunteer.Volunteer{}, fault.Authz("the administrator has no volunteer profile")
	}
	email := volunteer.NormalizeEmail(input.Email)
	if !identity.Owns(input.Caller, email) {
		return volunteer.Volunteer{}, fault.Authz("you can only update your own profile")
	}

	v, err := deps.Volunteers.GetByEmail(ctx, email)
	if err != nil {
		return volunteer.Volunteer{}, apperr.FromStore(err, "volunteer not found", "")
	}
	if err := v.CheckPassword(input.CurrentPassword); err != nil {
		slog.Info("auth_event", "event", "profile_update_failed", "email", email, "reason", "wrong_password")
		return volunteer.Volunteer{}, fault.Auth("current password is incorrect")
	}

	v.Name = strings.TrimSpace(input.Name)
	v.Phone = strings.TrimSpace(input.Phone)
	if err := v.Validate(); err != nil {
		return volunteer.Volunteer{}, validate.Domain(volunteerField(err), err)
	}
	if input.NewPassword != "" {
		if err := v.SetPassword(input.NewPassword); err != nil {
			return volunteer.Volunteer{}, validate.Domain("newPassword", err)
		}
	}
	if err := deps.Volunteers.UpdateProfile(ctx, v); err != nil {
		return volunteer.Volunteer{}, apperr.FromStore(err, "volunteer not found", "")
	}

	slog.Info("auth_event", "event", "profile_updated", "email", email, "password_changed", input.NewPassword != "")
	return v, nil
}
