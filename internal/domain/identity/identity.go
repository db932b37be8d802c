package identity

// Identity is the authenticated principal carried by a session.
// It is either Admin or Volunteer; the unexported marker keeps the set closed.
type Identity interface {
	identity()
	// Email is the address used for ownership checks.
	Email() string
	// IsAdmin reports whether the principal may use admin operations.
	IsAdmin() bool
}

// Admin is the single configured administrator. It has no database row.
type Admin struct {
	Address string
}

func (Admin) identity() {}

// Email returns the configured administrator address.
func (a Admin) Email() string { return a.Address }

// IsAdmin always returns true.
func (Admin) IsAdmin() bool { return true }

// Volunteer is a registered volunteer resolved from the database at login.
type Volunteer struct {
	ID      int64
	Address string
	Name    string
}

func (Volunteer) identity() {}

// Email returns the volunteer's login address.
func (v Volunteer) Email() string { return v.Address }

// IsAdmin always returns false.
func (Volunteer) IsAdmin() bool { return false }

// Payload is the client-visible view of an identity.
type Payload struct {
	ID      int64  `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	IsAdmin bool   `json:"is_admin"`
}

// AdminDisplayName is shown for the administrator in session payloads.
const AdminDisplayName = "Administrator"

// ToPayload flattens an identity for JSON responses.
// PRE: id is non-nil
// POST: Admin maps to ID 0 with IsAdmin set
func ToPayload(id Identity) Payload {
	switch v := id.(type) {
	case Admin:
		return Payload{ID: 0, Email: v.Address, Name: AdminDisplayName, IsAdmin: true}
	case Volunteer:
		return Payload{ID: v.ID, Email: v.Address, Name: v.Name}
	default:
		return Payload{}
	}
}

// Owns reports whether the identity may act on resources bound to email.
// The administrator owns nothing by email except its own address.
func Owns(id Identity, email string) bool {
	return id != nil && id.Email() == email
}
