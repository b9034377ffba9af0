package domain

import "strings"

// Role is the caller's operational role
type Role string

// Roles
const (
	RoleClerk      Role = "clerk"
	RoleManager    Role = "manager"
	RoleOperations Role = "operations"
)

// ParseRole normalizes a role claim
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleClerk, RoleManager, RoleOperations:
		return r, nil
	case "user":
		return RoleClerk, nil
	default:
		return "", Validation("unknown role %q", s)
	}
}

// Actor is the authenticated identity behind an operation. The ledger trusts it as given.
type Actor struct {
	UID         string `json:"uid"`
	DisplayName string `json:"display_name"`
	Location    string `json:"location"`
	Role        Role   `json:"role"`
}

// Validate checks that the identity is usable for auditing
func (a Actor) Validate() error {
	if a.UID == "" {
		return Validation("actor uid is required")
	}
	if a.Role == "" {
		return Validation("actor role is required")
	}
	return nil
}

// Customer holds the buyer details captured on sales, reports and plans
type Customer struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}
