package orchestrators

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"

	"communityhub/internal/adapters/storage"
	"communityhub/internal/application/apperr"
	"communityhub/internal/domain/fault"
	"communityhub/internal/domain/identity"
	"communityhub/internal/domain/volunteer"
)

// MsgInvalidCredentials is the only message a failed login ever returns.
const MsgInvalidCredentials = "invalid email or password"

// VolunteerStoreForLogin defines the store interface needed by Login.
type VolunteerStoreForLogin interface {
	GetByEmail(ctx context.Context, email string) (volunteer.Volunteer, error)
}

// AdminCredentials is the single configured administrator pair.
type AdminCredentials struct {
	Email    string
	Password string
}

// LoginInput carries input for the login orchestrator.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginDeps holds dependencies for Login.
type LoginDeps struct {
	Volunteers VolunteerStoreForLogin
	Admin      AdminCredentials
}

// ExecuteLogin resolves credentials to an identity for session creation.
// The configured administrator is checked first and never touches the database.
// PRE: none
// POST: Returns identity.Admin or identity.Volunteer on success, an auth fault otherwise
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) (identity.Identity, error) {
	email := volunteer.NormalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return nil, fault.Auth(MsgInvalidCredentials)
	}

	if deps.Admin.Email != "" && matches(email, volunteer.NormalizeEmail(deps.Admin.Email)) &&
		matches(input.Password, deps.Admin.Password) {
		slog.Info("auth_event", "event", "login_success", "email", email, "role", "admin")
		return identity.Admin{Address: email}, nil
	}

	v, err := deps.Volunteers.GetByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		slog.Info("auth_event", "event", "login_failed", "email", email, "reason", "not_found")
		return nil, fault.Auth(MsgInvalidCredentials)
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if err := v.CheckPassword(input.Password); err != nil {
		slog.Info("auth_event", "event", "login_failed", "email", email, "reason", "wrong_password")
		return nil, fault.Auth(MsgInvalidCredentials)
	}

	slog.Info("auth_event", "event", "login_success", "email", email, "role", "volunteer", "volunteer_id", v.ID)
	return identity.Volunteer{ID: v.ID, Address: v.Email, Name: v.Name}, nil
}

func matches(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
