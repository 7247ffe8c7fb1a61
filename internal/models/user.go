package models

// UserRole represents the authority levels recognised by the portal.
type UserRole string

const (
	RoleRecruiter   UserRole = "RECRUITER"
	RoleCoordinator UserRole = "COORDINATOR"
	RoleStudent     UserRole = "STUDENT"
)

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	switch r {
	case RoleRecruiter, RoleCoordinator, RoleStudent:
		return true
	default:
		return false
	}
}

// Actor is the authenticated caller of an interview operation.
type Actor struct {
	UserID string
	Role   UserRole
}

// IsCoordinator reports whether the actor holds approval authority.
func (a Actor) IsCoordinator() bool {
	return a.Role == RoleCoordinator
}

// Contact is the mailing identity of a portal user.
type Contact struct {
	ID       string `db:"id" json:"id"`
	Email    string `db:"email" json:"email"`
	FullName string `db:"full_name" json:"fullName"`
}

// SenderIdentity is the outbound mail identity used in the From header.
// Username and Password are optional per-sender SMTP credentials.
type SenderIdentity struct {
	Address  string `db:"sender_address"`
	Name     string `db:"sender_name"`
	Username string `db:"smtp_username"`
	Password string `db:"smtp_password"`
}

// HasCredentials reports whether the identity carries its own SMTP login.
func (s SenderIdentity) HasCredentials() bool {
	return s.Username != "" && s.Password != ""
}
