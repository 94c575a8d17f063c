package auth

// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of framework/adapter concerns.

import (
	"slices"
	"time"
)

// Role represents the client's authorization role derived from server roles.
// Valid values are defined as constants below.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
	RoleGuest Role = "guest"
)

// Server role names as issued by the catalog API.
const (
	ServerRoleUser  = "ROLE_USER"
	ServerRoleAdmin = "ROLE_ADMIN"
)

// Identity is the authenticated principal returned by the API at login.
// The JSON shape is the persisted form under the "user" key.
type Identity struct {
	ID        int64    `json:"id"`
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	FirstName string   `json:"firstName,omitempty"`
	LastName  string   `json:"lastName,omitempty"`
	Roles     []string `json:"roles"`
}

// HasRole reports whether the identity carries the exact role name.
func (i Identity) HasRole(name string) bool {
	return slices.Contains(i.Roles, name)
}

// DisplayName returns "First Last" when known, the username otherwise.
func (i Identity) DisplayName() string {
	switch {
	case i.FirstName != "" && i.LastName != "":
		return i.FirstName + " " + i.LastName
	case i.FirstName != "":
		return i.FirstName
	default:
		return i.Username
	}
}

// Clone returns a deep copy.
func (i Identity) Clone() Identity {
	i.Roles = slices.Clone(i.Roles)
	return i
}

// Session is the client's record of the authenticated user.
// Identity is non-nil exactly when AccessToken is non-empty.
type Session struct {
	AccessToken  string    `json:"-"`
	RefreshToken string    `json:"-"`
	Identity     *Identity `json:"identity,omitempty"`
	// ExpiresAt is decoded from the access token when it is a JWT; zero otherwise.
	ExpiresAt time.Time `json:"expiresAt,omitzero"`
}

// IsAuthenticated reports whether the session holds an access token.
func (s Session) IsAuthenticated() bool { return s.AccessToken != "" && s.Identity != nil }

// HasRefreshToken reports whether a refresh can be attempted.
func (s Session) HasRefreshToken() bool { return s.RefreshToken != "" }

// Clone returns a deep copy so callers cannot mutate store state.
func (s Session) Clone() Session {
	if s.Identity != nil {
		id := s.Identity.Clone()
		s.Identity = &id
	}
	return s
}

// Credentials are the login inputs.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Registration are the inputs for creating an account.
type Registration struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"-"`
	FirstName       string `json:"firstName,omitempty"`
	LastName        string `json:"lastName,omitempty"`
}

// ClearReason records why a session was destroyed.
type ClearReason string

const (
	ClearLogout         ClearReason = "logout"
	ClearRefreshFailed  ClearReason = "refresh_failed"
	ClearNoRefreshToken ClearReason = "no_refresh_token"
	ClearCorruptState   ClearReason = "corrupt_state"
	ClearPersistFailed  ClearReason = "persist_failed"
)

// Expired reports whether the reason means the user must log in again
// without having asked to log out.
func (r ClearReason) Expired() bool {
	return r == ClearRefreshFailed || r == ClearNoRefreshToken
}

// EventKind enumerates session change notifications.
type EventKind string

const (
	EventAuthenticated   EventKind = "authenticated"
	EventRefreshed       EventKind = "refreshed"
	EventIdentityUpdated EventKind = "identity_updated"
	EventCleared         EventKind = "cleared"
)

// Event is delivered to session subscribers after each state change.
// Reason is set only for EventCleared.
type Event struct {
	Kind    EventKind
	Reason  ClearReason
	Session Session
}
