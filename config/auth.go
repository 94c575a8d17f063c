package config

import "strings"

// AuthConfig groups authentication-related configuration.
type AuthConfig struct {
	// AdminRoles lists the role names that grant admin capability.
	// The catalog API has used both "ROLE_ADMIN" and "ADMIN" for the same grant.
	AdminRoles []string `env:"ADMIN_ROLES" envDefault:"ROLE_ADMIN;ADMIN" envSeparator:";"`
}

// Sanitize trims role names and drops empty entries.
func (a *AuthConfig) Sanitize() {
	roles := make([]string, 0, len(a.AdminRoles))
	for _, r := range a.AdminRoles {
		if trimmed := strings.TrimSpace(r); trimmed != "" {
			roles = append(roles, trimmed)
		}
	}
	if len(roles) == 0 {
		roles = []string{"ROLE_ADMIN", "ADMIN"}
	}
	a.AdminRoles = roles
}
