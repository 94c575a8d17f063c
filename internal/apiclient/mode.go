package apiclient

import "context"

// authMode controls how the Transport treats a request.
type authMode int

const (
	// modeDefault attaches the bearer token and recovers from one 401.
	modeDefault authMode = iota
	// modeSkipAuth sends the request without credentials and never refreshes.
	// Used for login, register and refresh.
	modeSkipAuth
	// modeNoRefresh attaches the bearer token but returns a 401 unchanged.
	// Used for logout, which must not resurrect a session.
	modeNoRefresh
)

type modeKey struct{}

func withMode(ctx context.Context, m authMode) context.Context {
	return context.WithValue(ctx, modeKey{}, m)
}

func modeFrom(ctx context.Context) authMode {
	if m, ok := ctx.Value(modeKey{}).(authMode); ok {
		return m
	}
	return modeDefault
}
