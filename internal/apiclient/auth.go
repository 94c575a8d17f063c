package apiclient

import (
	"context"
	"net/http"

	domainauth "github.com/target/catalog-admin/internal/domain/auth"
)

// AuthAPI covers the /auth endpoints.
type AuthAPI struct {
	c *Client
}

// LoginResponse is the body returned by POST /auth/login.
type LoginResponse struct {
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken,omitempty"`
	TokenType    string   `json:"tokenType,omitempty"`
	UserID       int64    `json:"userId"`
	Username     string   `json:"username"`
	Email        string   `json:"email"`
	FirstName    string   `json:"firstName,omitempty"`
	LastName     string   `json:"lastName,omitempty"`
	Roles        []string `json:"roles"`
}

// Identity returns the session identity carried by the login response.
func (r LoginResponse) Identity() domainauth.Identity {
	return domainauth.Identity{
		ID:        r.UserID,
		Username:  r.Username,
		Email:     r.Email,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Roles:     append([]string(nil), r.Roles...),
	}
}

// RefreshResponse is the body returned by POST /auth/refresh.
type RefreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// RegisterResponse is the body returned by POST /auth/register.
// The API's shape varies between versions, so unknown fields are ignored.
type RegisterResponse struct {
	ID       int64  `json:"id,omitempty"`
	UserID   int64  `json:"userId,omitempty"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Message  string `json:"message,omitempty"`
}

// Login exchanges credentials for tokens. It does not touch the session.
func (a *AuthAPI) Login(ctx context.Context, creds domainauth.Credentials) (*LoginResponse, error) {
	var out LoginResponse
	err := a.c.do(withMode(ctx, modeSkipAuth), call{
		method: http.MethodPost,
		path:   []string{"auth", "login"},
		in:     creds,
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account. The caller must log in separately.
func (a *AuthAPI) Register(ctx context.Context, reg domainauth.Registration) (*RegisterResponse, error) {
	var out RegisterResponse
	err := a.c.do(withMode(ctx, modeSkipAuth), call{
		method: http.MethodPost,
		path:   []string{"auth", "register"},
		in:     reg,
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Refresh exchanges a refresh token for a new access token.
func (a *AuthAPI) Refresh(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	var out RefreshResponse
	err := a.c.do(withMode(ctx, modeSkipAuth), call{
		method: http.MethodPost,
		path:   []string{"auth", "refresh"},
		in:     map[string]string{"refreshToken": refreshToken},
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout tells the API to end the session. A 401 is returned as is rather
// than triggering a refresh.
func (a *AuthAPI) Logout(ctx context.Context) error {
	return a.c.do(withMode(ctx, modeNoRefresh), call{
		method: http.MethodPost,
		path:   []string{"auth", "logout"},
	})
}

// Health returns the auth service's health message.
func (a *AuthAPI) Health(ctx context.Context) (string, error) {
	var out string
	err := a.c.do(withMode(ctx, modeSkipAuth), call{
		method: http.MethodGet,
		path:   []string{"auth", "health"},
		out:    &out,
	})
	return out, err
}

func (a *AuthAPI) refreshTokens(ctx context.Context, refreshToken string) (string, string, error) {
	resp, err := a.Refresh(ctx, refreshToken)
	if err != nil {
		return "", "", err
	}
	return resp.AccessToken, resp.RefreshToken, nil
}
