package volunteer

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Field limits.
const (
	MinNameLength     = 2
	MaxNameLength     = 100
	MaxEmailLength    = 254
	MinPasswordLength = 6
)

// PasswordCost is the bcrypt work factor. Tests lower it to bcrypt.MinCost.
var PasswordCost = bcrypt.DefaultCost

// Domain errors
var (
	ErrEmptyName        = errors.New("name cannot be empty")
	ErrNameTooShort     = errors.New("name must be at least 2 characters")
	ErrNameTooLong      = errors.New("name cannot exceed 100 characters")
	ErrEmptyEmail       = errors.New("email cannot be empty")
	ErrInvalidEmail     = errors.New("email must be a valid address")
	ErrInvalidPhone     = errors.New("phone must contain 7 to 20 digits")
	ErrEmptyPassword    = errors.New("password cannot be empty")
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
	ErrWrongPassword    = errors.New("incorrect password")
)

var phonePattern = regexp.MustCompile(`^\+?[0-9 ()-]{7,20}$`)

// Volunteer is a registered community volunteer.
type Volunteer struct {
	ID           int64
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	CreatedAt    time.Time
}

// NormalizeEmail lower-cases and trims an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate checks if the Volunteer has valid data.
// PRE: Volunteer struct is populated
// POST: Returns nil if valid, error otherwise
func (v *Volunteer) Validate() error {
	name := strings.TrimSpace(v.Name)
	if name == "" {
		return ErrEmptyName
	}
	if len(name) < MinNameLength {
		return ErrNameTooShort
	}
	if len(name) > MaxNameLength {
		return ErrNameTooLong
	}
	if strings.TrimSpace(v.Email) == "" {
		return ErrEmptyEmail
	}
	if len(v.Email) > MaxEmailLength || !strings.Contains(v.Email, "@") {
		return ErrInvalidEmail
	}
	if !ValidPhone(v.Phone) {
		return ErrInvalidPhone
	}
	return nil
}

// ValidPhone reports whether phone looks like a dialable number.
func ValidPhone(phone string) bool {
	if !phonePattern.MatchString(phone) {
		return false
	}
	digits := 0
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= 7
}

// SetPassword hashes and stores a password using bcrypt.
// PRE: plaintext has at least MinPasswordLength characters
// POST: PasswordHash is set to bcrypt hash
func (v *Volunteer) SetPassword(plaintext string) error {
	if plaintext == "" {
		return ErrEmptyPassword
	}
	if len(plaintext) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), PasswordCost)
	if err != nil {
		return err
	}
	v.PasswordHash = string(hash)
	return nil
}

// CheckPassword verifies a plaintext password against the stored hash.
// PRE: PasswordHash is set
// INVARIANT: Volunteer fields are not mutated
func (v *Volunteer) CheckPassword(plaintext string) error {
	if v.PasswordHash == "" {
		return ErrWrongPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(v.PasswordHash), []byte(plaintext)); err != nil {
		return ErrWrongPassword
	}
	return nil
}
