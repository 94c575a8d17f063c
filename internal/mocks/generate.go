// Package mocks provides mock implementations for testing the catalog admin client.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for our port interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	kv := mocks.NewMockKVStore(ctrl)
//	kv.EXPECT().Set(gomock.Any(), "token", "A1").Return(nil)
package mocks

// Generate mock for KVStore interface from internal/ports package.
// This creates MockKVStore with methods for all KVStore interface methods:
// Get, Set, Remove
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=kv_store_mock.go github.com/target/catalog-admin/internal/ports KVStore

// Generate mock for Authenticator interface from internal/ports package.
// This creates MockAuthenticator with methods for all Authenticator interface methods:
// Login, Register, Logout, Health, UpdateIdentity, Role, IsAdmin, HasRole, CurrentSession
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=authenticator_mock.go github.com/target/catalog-admin/internal/ports Authenticator
