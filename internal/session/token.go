package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

var _ oauth2.TokenSource = (*Store)(nil)

// Token returns the current access token as an oauth2 bearer token.
// The store never refreshes here; refresh is driven by 401 responses.
func (s *Store) Token() (*oauth2.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.sess.AccessToken == "" {
		return nil, ErrNoAccessToken
	}
	return &oauth2.Token{
		AccessToken:  s.sess.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: s.sess.RefreshToken,
		Expiry:       s.sess.ExpiresAt,
	}, nil
}

// TokenExpiry reads the exp claim of a JWT access token without verifying
// it. Opaque tokens and tokens without exp yield the zero time.
func TokenExpiry(accessToken string) time.Time {
	if accessToken == "" {
		return time.Time{}
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
