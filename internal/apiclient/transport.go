package apiclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	domainauth "github.com/target/catalog-admin/internal/domain/auth"
	apperrors "github.com/target/catalog-admin/internal/errors"
	"github.com/target/catalog-admin/internal/session"
)

// HeaderRequestID carries a per-request identifier that is stable across a replay.
const HeaderRequestID = "X-Request-ID"

const defaultRefreshTimeout = 10 * time.Second

var (
	errNoRefreshToken = errors.New("no refresh token available")
	errSessionGone    = errors.New("session was cleared")
	errEmptyRefresh   = errors.New("refresh response carried no access token")
)

// SessionStore is the subset of the session store the Transport needs.
type SessionStore interface {
	oauth2.TokenSource
	Snapshot() domainauth.Session
	SetRefreshedTokens(ctx context.Context, accessToken, refreshToken string) error
	Clear(ctx context.Context, reason domainauth.ClearReason) error
}

// RefreshFunc exchanges a refresh token for new tokens.
// An empty returned refresh token means the current one stays valid.
type RefreshFunc func(ctx context.Context, refreshToken string) (accessToken, newRefreshToken string, err error)

// Transport is an http.RoundTripper that attaches the session's bearer token
// and recovers from an expired access token by refreshing once and replaying
// the request once. Concurrent 401s for the same token share one refresh.
type Transport struct {
	Base           http.RoundTripper
	Store          SessionStore
	Refresh        RefreshFunc
	RefreshTimeout time.Duration
	Logger         *slog.Logger

	group singleflight.Group
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	out := req.Clone(ctx)
	if out.Header.Get(HeaderRequestID) == "" {
		out.Header.Set(HeaderRequestID, uuid.NewString())
	}

	mode := modeFrom(ctx)
	if mode == modeSkipAuth {
		out.Header.Del("Authorization")
		return t.base().RoundTrip(out)
	}

	if err := makeReplayable(out); err != nil {
		return nil, err
	}

	sent := t.authorize(out)
	resp, err := t.base().RoundTrip(out)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || mode == modeNoRefresh || sent == "" {
		return resp, nil
	}

	return t.recoverUnauthorized(out, resp, sent)
}

// recoverUnauthorized obtains a fresh access token and replays req exactly once.
// The replay's response is returned as is, even if it is another 401.
func (t *Transport) recoverUnauthorized(req *http.Request, resp *http.Response, sent string) (*http.Response, error) {
	ctx := req.Context()
	drainClose(resp.Body)

	token, err := t.freshToken(ctx, sent)
	if err != nil {
		return nil, err
	}

	retry, err := rewind(req)
	if err != nil {
		return nil, err
	}
	(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}).SetAuthHeader(retry)

	t.logger().DebugContext(ctx, "replaying request after token refresh",
		"method", req.Method,
		"path", req.URL.Path,
		"request_id", req.Header.Get(HeaderRequestID),
	)
	return t.base().RoundTrip(retry)
}

// freshToken returns the access token to replay with. It reuses a token
// another request already obtained, joins an in-flight refresh for the same
// rejected token, or starts one.
func (t *Transport) freshToken(ctx context.Context, sent string) (string, error) {
	snap := t.Store.Snapshot()
	switch {
	case snap.AccessToken == "":
		return "", apperrors.SessionExpired(errSessionGone)
	case snap.AccessToken != sent:
		return snap.AccessToken, nil
	case !snap.HasRefreshToken():
		t.clear(ctx, domainauth.ClearNoRefreshToken)
		return "", apperrors.SessionExpired(errNoRefreshToken)
	}

	ch := t.group.DoChan(sent, func() (any, error) {
		return t.refresh(ctx, sent)
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		token, _ := res.Val.(string)
		return token, nil
	}
}

// refresh runs once per rejected access token. It is detached from the
// caller's cancellation so that other waiters still get a result.
func (t *Transport) refresh(parent context.Context, sent string) (string, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), t.refreshTimeout())
	defer cancel()

	// A flight that starts after another one finished must not reuse a rotated refresh token.
	snap := t.Store.Snapshot()
	switch {
	case snap.AccessToken == "":
		return "", apperrors.SessionExpired(errSessionGone)
	case snap.AccessToken != sent:
		return snap.AccessToken, nil
	case !snap.HasRefreshToken():
		t.clear(ctx, domainauth.ClearNoRefreshToken)
		return "", apperrors.SessionExpired(errNoRefreshToken)
	}

	if t.Refresh == nil {
		t.clear(ctx, domainauth.ClearRefreshFailed)
		return "", apperrors.SessionExpired(errors.New("token refresh is not configured"))
	}

	access, rotated, err := t.Refresh(ctx, snap.RefreshToken)
	if err == nil && access == "" {
		err = errEmptyRefresh
	}
	if err != nil {
		t.logger().WarnContext(ctx, "token refresh failed", "error", err)
		t.clear(ctx, domainauth.ClearRefreshFailed)
		return "", apperrors.SessionExpired(err)
	}

	if err := t.Store.SetRefreshedTokens(ctx, access, rotated); err != nil {
		if errors.Is(err, session.ErrNoSession) {
			return "", apperrors.SessionExpired(errSessionGone)
		}
		// The in-memory session already holds the new tokens.
		t.logger().WarnContext(ctx, "failed to persist refreshed tokens", "error", err)
	}
	t.logger().DebugContext(ctx, "access token refreshed", "rotated_refresh_token", rotated != "")
	return access, nil
}

// authorize sets the bearer header from the store and returns the token used.
func (t *Transport) authorize(req *http.Request) string {
	req.Header.Del("Authorization")
	tok, err := t.Store.Token()
	if err != nil || tok == nil || tok.AccessToken == "" {
		return ""
	}
	tok.SetAuthHeader(req)
	return tok.AccessToken
}

func (t *Transport) clear(ctx context.Context, reason domainauth.ClearReason) {
	if err := t.Store.Clear(context.WithoutCancel(ctx), reason); err != nil {
		t.logger().WarnContext(ctx, "failed to erase persisted session", "reason", string(reason), "error", err)
	}
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *Transport) logger() *slog.Logger {
	if t.Logger != nil {
		return t.Logger
	}
	return slog.Default()
}

func (t *Transport) refreshTimeout() time.Duration {
	if t.RefreshTimeout > 0 {
		return t.RefreshTimeout
	}
	return defaultRefreshTimeout
}

// makeReplayable buffers a body that cannot be re-read so a replay can send it again.
func makeReplayable(req *http.Request) error {
	if req.Body == nil || req.Body == http.NoBody || req.GetBody != nil {
		return nil
	}
	buf, err := io.ReadAll(req.Body)
	closeErr := req.Body.Close()
	if err != nil {
		return fmt.Errorf("buffer request body: %w", err)
	}
	if closeErr != nil {
		return fmt.Errorf("close request body: %w", closeErr)
	}
	req.ContentLength = int64(len(buf))
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(buf)), nil
	}
	req.Body, _ = req.GetBody()
	return nil
}

// rewind returns a copy of req with a fresh body.
func rewind(req *http.Request) (*http.Request, error) {
	retry := req.Clone(req.Context())
	if req.GetBody == nil {
		return retry, nil
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, fmt.Errorf("rewind request body: %w", err)
	}
	retry.Body = body
	return retry, nil
}

func drainClose(body io.ReadCloser) {
	if body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 64<<10))
	_ = body.Close()
}
