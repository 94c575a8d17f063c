package authroles

import (
	"slices"
	"strings"

	domainauth "github.com/target/catalog-admin/internal/domain/auth"
)

// RoleMatcher maps server role names by exact membership.
// Several spellings of the admin role can be honoured at once.
type RoleMatcher struct {
	AdminRoles []string
	UserRoles  []string
}

// NewRoleMatcher builds a matcher from configured admin role names.
// Any role not listed as admin but starting with "ROLE_" counts as a user role.
func NewRoleMatcher(adminRoles []string) RoleMatcher {
	return RoleMatcher{
		AdminRoles: slices.Clone(adminRoles),
		UserRoles:  []string{domainauth.ServerRoleUser, "USER"},
	}
}

func (m RoleMatcher) Map(roles []string) domainauth.Role {
	for _, r := range roles {
		if slices.Contains(m.AdminRoles, r) {
			return domainauth.RoleAdmin
		}
	}
	for _, r := range roles {
		if slices.Contains(m.UserRoles, r) || strings.HasPrefix(r, "ROLE_") {
			return domainauth.RoleUser
		}
	}
	return domainauth.RoleGuest
}
