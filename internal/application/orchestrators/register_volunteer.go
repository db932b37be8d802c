package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"communityhub/internal/adapters/storage"
	"communityhub/internal/application/apperr"
	"communityhub/internal/application/validate"
	"communityhub/internal/domain/fault"
	"communityhub/internal/domain/volunteer"
)

// MsgEmailTaken is returned when registering an address that already has an account.
const MsgEmailTaken = "email already registered"

// VolunteerStoreForRegister defines the store interface needed by RegisterVolunteer.
type VolunteerStoreForRegister interface {
	GetByEmail(ctx context.Context, email string) (volunteer.Volunteer, error)
	Create(ctx context.Context, v volunteer.Volunteer) (int64, error)
}

// Welcomer sends the best-effort registration email.
type Welcomer interface {
	Welcome(ctx context.Context, to, name string)
}

// RegisterVolunteerInput carries input for the registration orchestrator.
type RegisterVolunteerInput struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Phone    string `json:"phone" validate:"required,phone"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// RegisterVolunteerDeps holds dependencies for RegisterVolunteer.
type RegisterVolunteerDeps struct {
	Volunteers VolunteerStoreForRegister
	Welcomer   Welcomer // optional
	Now        func() time.Time
}

// ExecuteRegisterVolunteer creates a volunteer account. No session is issued.
// PRE: none
// POST: volunteer persisted with a bcrypt hash; an existing row with the same email is untouched
func ExecuteRegisterVolunteer(ctx context.Context, input RegisterVolunteerInput, deps RegisterVolunteerDeps) (volunteer.Volunteer, error) {
	if err := validate.Struct(input); err != nil {
		return volunteer.Volunteer{}, err
	}
	v := volunteer.Volunteer{
		Name:      strings.TrimSpace(input.Name),
		Email:     volunteer.NormalizeEmail(input.Email),
		Phone:     strings.TrimSpace(input.Phone),
		CreatedAt: deps.Now(),
	}
	if err := v.Validate(); err != nil {
		return volunteer.Volunteer{}, validate.Domain(volunteerField(err), err)
	}

	_, err := deps.Volunteers.GetByEmail(ctx, v.Email)
	switch {
	case err == nil:
		slog.Info("auth_event", "event", "register_rejected", "email", v.Email, "reason", "duplicate")
		return volunteer.Volunteer{}, fault.Conflict(MsgEmailTaken)
	case !errors.Is(err, storage.ErrNotFound):
		return volunteer.Volunteer{}, apperr.Internal(err)
	}

	if err := v.SetPassword(input.Password); err != nil {
		return volunteer.Volunteer{}, validate.Domain("password", err)
	}
	id, err := deps.Volunteers.Create(ctx, v)
	if err != nil {
		return volunteer.Volunteer{}, apperr.FromStore(err, "volunteer not found", MsgEmailTaken)
	}
	v.ID = id

	slog.Info("auth_event", "event", "register_success", "volunteer_id", id, "email", v.Email)
	if deps.Welcomer != nil {
		deps.Welcomer.Welcome(ctx, v.Email, v.Name)
	}
	return v, nil
}
