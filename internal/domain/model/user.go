//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	domainauth "github.com/target/catalog-admin/internal/domain/auth"
)

// User is an account as returned by the users API.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName,omitempty"`
	LastName  string    `json:"lastName,omitempty"`
	Roles     []string  `json:"roles,omitempty"`
	Active    *bool     `json:"isActive,omitempty"`
	CreatedAt Timestamp `json:"createdAt"`
	UpdatedAt Timestamp `json:"updatedAt"`
}

// IsActive reports whether the account is active. Absent means active.
func (u User) IsActive() bool {
	return u.Active == nil || *u.Active
}

// Identity converts the account into the session identity shape.
func (u User) Identity() domainauth.Identity {
	return domainauth.Identity{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Roles:     append([]string(nil), u.Roles...),
	}
}

// UserUpdate is the profile update payload.
type UserUpdate struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// ActiveUserCount is the response of the active users count endpoint.
type ActiveUserCount struct {
	ActiveUserCount int64 `json:"activeUserCount"`
}
