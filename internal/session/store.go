// Package session holds the client's single source of truth for the
// authenticated session and keeps it durable through a ports.KVStore.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	domainauth "github.com/target/catalog-admin/internal/domain/auth"
	"github.com/target/catalog-admin/internal/ports"
)

// Persisted keys.
const (
	KeyAccessToken  = "token"
	KeyRefreshToken = "refreshToken"
	KeyIdentity     = "user"
)

var persistedKeys = [...]string{KeyAccessToken, KeyRefreshToken, KeyIdentity}

var (
	// ErrNoSession is returned when an operation needs an authenticated session.
	ErrNoSession = errors.New("session: not authenticated")
	// ErrNoAccessToken is returned by Token when no access token is held.
	ErrNoAccessToken = errors.New("session: no access token")
	// ErrEmptyAccessToken is returned when SetAuthenticated is called without a token.
	ErrEmptyAccessToken = errors.New("session: access token is required")
)

// StoreOptions groups dependencies for Store.
type StoreOptions struct {
	KV     ports.KVStore    // required
	Roles  ports.RoleMapper // optional; defaults to matching ROLE_ADMIN exactly
	Logger *slog.Logger     // optional
}

// Store owns the current session. All mutations are serialized and
// persisted before they are visible to subscribers.
type Store struct {
	kv     ports.KVStore
	roles  ports.RoleMapper
	logger *slog.Logger

	mu   sync.RWMutex
	sess domainauth.Session

	subMu   sync.Mutex
	subs    map[int]func(domainauth.Event)
	nextSub int
}

// NewStore constructs an empty Store. Call Restore to load persisted state.
func NewStore(opts StoreOptions) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		kv:     opts.KV,
		roles:  opts.Roles,
		logger: logger.With("component", "session"),
		subs:   make(map[int]func(domainauth.Event)),
	}
}

// Restore loads the persisted session. Missing or unreadable state yields an
// empty session and erases whatever was persisted; a corrupt identity is not
// an error. Discarded state emits a cleared event with ClearCorruptState.
// A non-nil error is returned only when the backend itself failed.
func (s *Store) Restore(ctx context.Context) error {
	discarded, err := s.restore(ctx)
	if discarded {
		s.emit(domainauth.Event{Kind: domainauth.EventCleared, Reason: domainauth.ClearCorruptState})
	}
	return err
}

func (s *Store) restore(ctx context.Context) (discarded bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sess = domainauth.Session{}

	access, accessErr := s.read(ctx, KeyAccessToken)
	refresh, refreshErr := s.read(ctx, KeyRefreshToken)
	rawIdentity, identityErr := s.read(ctx, KeyIdentity)

	if readErr := errors.Join(accessErr, refreshErr, identityErr); readErr != nil {
		s.logger.WarnContext(ctx, "session storage unreadable, starting signed out", "error", readErr)
		_ = s.eraseLocked(ctx)
		return false, fmt.Errorf("restore session: %w", readErr)
	}

	if access == "" && refresh == "" && rawIdentity == "" {
		return false, nil
	}

	identity, ok := decodeIdentity(rawIdentity)
	if access == "" || !ok {
		s.logger.WarnContext(ctx, "discarding incomplete persisted session",
			"has_token", access != "",
			"has_identity", rawIdentity != "",
			"identity_valid", ok,
		)
		_ = s.eraseLocked(ctx)
		return true, nil
	}

	s.sess = domainauth.Session{
		AccessToken:  access,
		RefreshToken: refresh,
		Identity:     &identity,
		ExpiresAt:    TokenExpiry(access),
	}
	s.logger.DebugContext(ctx, "session restored", "username", identity.Username)
	return false, nil
}

// SetAuthenticated replaces the whole session. An empty refresh token removes
// the persisted one. If persisting fails both the persisted keys and the
// in-memory session are cleared and the error is returned; a session that
// existed before emits a cleared event with ClearPersistFailed.
func (s *Store) SetAuthenticated(ctx context.Context, accessToken, refreshToken string, identity domainauth.Identity) error {
	if accessToken == "" {
		return ErrEmptyAccessToken
	}
	identity = identity.Clone()
	raw, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}

	s.mu.Lock()
	if err := s.persistAll(ctx, accessToken, refreshToken, string(raw)); err != nil {
		existed := s.sess.IsAuthenticated()
		s.sess = domainauth.Session{}
		_ = s.eraseLocked(ctx)
		s.mu.Unlock()
		if existed {
			s.emit(domainauth.Event{Kind: domainauth.EventCleared, Reason: domainauth.ClearPersistFailed})
		}
		return fmt.Errorf("persist session: %w", err)
	}
	s.sess = domainauth.Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Identity:     &identity,
		ExpiresAt:    TokenExpiry(accessToken),
	}
	snap := s.sess.Clone()
	s.mu.Unlock()

	s.emit(domainauth.Event{Kind: domainauth.EventAuthenticated, Session: snap})
	return nil
}

// SetRefreshedTokens replaces the tokens and leaves the identity alone.
// An empty refresh token keeps the current one. The in-memory session is
// updated even when persisting fails, since the server has already rotated.
func (s *Store) SetRefreshedTokens(ctx context.Context, accessToken, refreshToken string) error {
	if accessToken == "" {
		return ErrEmptyAccessToken
	}

	s.mu.Lock()
	if !s.sess.IsAuthenticated() {
		s.mu.Unlock()
		return ErrNoSession
	}
	s.sess.AccessToken = accessToken
	s.sess.ExpiresAt = TokenExpiry(accessToken)
	if refreshToken != "" {
		s.sess.RefreshToken = refreshToken
	}

	var errs []error
	if err := s.kv.Set(ctx, KeyAccessToken, accessToken); err != nil {
		errs = append(errs, fmt.Errorf("set %s: %w", KeyAccessToken, err))
	}
	if refreshToken != "" {
		if err := s.kv.Set(ctx, KeyRefreshToken, refreshToken); err != nil {
			errs = append(errs, fmt.Errorf("set %s: %w", KeyRefreshToken, err))
		}
	}
	snap := s.sess.Clone()
	s.mu.Unlock()

	s.emit(domainauth.Event{Kind: domainauth.EventRefreshed, Session: snap})
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("persist refreshed tokens: %w", err)
	}
	return nil
}

// UpdateIdentity replaces the identity and leaves the tokens alone.
func (s *Store) UpdateIdentity(ctx context.Context, identity domainauth.Identity) error {
	identity = identity.Clone()
	raw, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}

	s.mu.Lock()
	if !s.sess.IsAuthenticated() {
		s.mu.Unlock()
		return ErrNoSession
	}
	s.sess.Identity = &identity
	persistErr := s.kv.Set(ctx, KeyIdentity, string(raw))
	snap := s.sess.Clone()
	s.mu.Unlock()

	s.emit(domainauth.Event{Kind: domainauth.EventIdentityUpdated, Session: snap})
	if persistErr != nil {
		return fmt.Errorf("persist identity: %w", persistErr)
	}
	return nil
}

// Clear empties the session and erases the persisted keys. Memory is always
// cleared; persistence failures are joined and returned. Subscribers are
// notified only when a session actually existed.
func (s *Store) Clear(ctx context.Context, reason domainauth.ClearReason) error {
	s.mu.Lock()
	existed := s.sess.IsAuthenticated()
	s.sess = domainauth.Session{}
	err := s.eraseLocked(ctx)
	s.mu.Unlock()

	if existed {
		s.logger.InfoContext(ctx, "session cleared", "reason", string(reason))
		s.emit(domainauth.Event{Kind: domainauth.EventCleared, Reason: reason})
	}
	if err != nil {
		return fmt.Errorf("erase session: %w", err)
	}
	return nil
}

// Snapshot returns a copy of the current session.
func (s *Store) Snapshot() domainauth.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sess.Clone()
}

// IsAuthenticated reports whether a session is present.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sess.IsAuthenticated()
}

// Role maps the identity's server roles to the client role.
func (s *Store) Role() domainauth.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.sess.Identity == nil {
		return domainauth.RoleGuest
	}
	if s.roles == nil {
		if s.sess.Identity.HasRole(domainauth.ServerRoleAdmin) {
			return domainauth.RoleAdmin
		}
		return domainauth.RoleUser
	}
	return s.roles.Map(s.sess.Identity.Roles)
}

// IsAdmin reports whether the identity holds an admin role.
func (s *Store) IsAdmin() bool {
	return s.Role() == domainauth.RoleAdmin
}

// HasRole reports whether the identity holds the exact server role name.
func (s *Store) HasRole(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sess.Identity != nil && s.sess.Identity.HasRole(name)
}

func (s *Store) read(ctx context.Context, key string) (string, error) {
	v, err := s.kv.Get(ctx, key)
	if errors.Is(err, ports.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get %s: %w", key, err)
	}
	return v, nil
}

func (s *Store) persistAll(ctx context.Context, access, refresh, identity string) error {
	if err := s.kv.Set(ctx, KeyAccessToken, access); err != nil {
		return fmt.Errorf("set %s: %w", KeyAccessToken, err)
	}
	if refresh == "" {
		if err := s.kv.Remove(ctx, KeyRefreshToken); err != nil {
			return fmt.Errorf("remove %s: %w", KeyRefreshToken, err)
		}
	} else if err := s.kv.Set(ctx, KeyRefreshToken, refresh); err != nil {
		return fmt.Errorf("set %s: %w", KeyRefreshToken, err)
	}
	if err := s.kv.Set(ctx, KeyIdentity, identity); err != nil {
		return fmt.Errorf("set %s: %w", KeyIdentity, err)
	}
	return nil
}

// eraseLocked removes every persisted key, attempting all of them.
func (s *Store) eraseLocked(ctx context.Context) error {
	var errs []error
	for _, key := range persistedKeys {
		if err := s.kv.Remove(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", key, err))
		}
	}
	err := errors.Join(errs...)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to erase persisted session", "error", err)
	}
	return err
}

func decodeIdentity(raw string) (domainauth.Identity, bool) {
	if raw == "" {
		return domainauth.Identity{}, false
	}
	var identity domainauth.Identity
	if err := json.Unmarshal([]byte(raw), &identity); err != nil {
		return domainauth.Identity{}, false
	}
	if identity.Username == "" && identity.ID == 0 {
		return domainauth.Identity{}, false
	}
	return identity, true
}
