package domain

import "strings"

// Role is the coarse permission group carried by every authenticated caller.
type Role string

const (
	RoleExporter Role = "EXPORTER"
	RoleQA       Role = "QA"
	RoleCustoms  Role = "CUSTOMS"
	RoleImporter Role = "IMPORTER"
	RoleAdmin    Role = "ADMIN"
)

// ParseRole normalizes a role claim. Unknown values return false.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	switch r {
	case RoleExporter, RoleQA, RoleCustoms, RoleImporter, RoleAdmin:
		return r, true
	}
	return "", false
}

func (r Role) String() string { return string(r) }

// Actor is the authenticated caller on whose behalf a core operation runs.
type Actor struct {
	ID           UserID
	Role         Role
	Organization string
	Email        string
	// AgencyID identifies the QA agency a QA actor belongs to.
	AgencyID string
}

// HasRole reports whether the actor holds any of the given roles.
func (a Actor) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

// Anonymous reports whether the actor carries no identity.
func (a Actor) Anonymous() bool {
	return a.ID.IsNil() && a.Role == ""
}
