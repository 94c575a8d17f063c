package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"
	"errors"

	domainauth "github.com/target/catalog-admin/internal/domain/auth"
)

// ErrKeyNotFound is returned by KVStore.Get when the key is absent.
var ErrKeyNotFound = errors.New("key not found")

// KVStore is the durable string store backing the session.
// Remove of an absent key is not an error.
type KVStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// RoleMapper maps server role names to the client's role.
type RoleMapper interface {
	Map(roles []string) domainauth.Role
}

// Authenticator is the authentication capability exposed to commands.
type Authenticator interface {
	Login(ctx context.Context, creds domainauth.Credentials) (domainauth.Session, error)
	Register(ctx context.Context, reg domainauth.Registration) error
	Logout(ctx context.Context) error
	Health(ctx context.Context) (string, error)
	UpdateIdentity(ctx context.Context, identity domainauth.Identity) error
	Role() domainauth.Role
	IsAdmin() bool
	HasRole(name string) bool
	CurrentSession() domainauth.Session
}
