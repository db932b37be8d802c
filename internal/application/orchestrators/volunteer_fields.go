package orchestrators

import (
	"errors"

	"communityhub/internal/domain/volunteer"
)

// volunteerField names the input field a volunteer domain error belongs to.
func volunteerField(err error) string {
	switch {
	case errors.Is(err, volunteer.ErrEmptyName), errors.Is(err, volunteer.ErrNameTooShort), errors.Is(err, volunteer.ErrNameTooLong):
		return "name"
	case errors.Is(err, volunteer.ErrEmptyEmail), errors.Is(err, volunteer.ErrInvalidEmail):
		return "email"
	case errors.Is(err, volunteer.ErrInvalidPhone):
		return "phone"
	default:
		return "password"
	}
}
