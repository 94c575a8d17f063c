package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domainauth "github.com/target/catalog-admin/internal/domain/auth"
	mockauth "github.com/target/catalog-admin/internal/mocks/auth"
	"github.com/target/catalog-admin/internal/session"
)

// fakeAPI is an httptest server with per-route handlers and call counting.
type fakeAPI struct {
	t      *testing.T
	srv    *httptest.Server
	mu     sync.Mutex
	routes map[string]http.HandlerFunc
	calls  map[string]int
	auths  map[string][]string
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{
		t:      t,
		routes: make(map[string]http.HandlerFunc),
		calls:  make(map[string]int),
		auths:  make(map[string][]string),
	}
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeAPI) handle(pattern string, h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[pattern] = h
}

func (f *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path
	f.mu.Lock()
	f.calls[key]++
	f.auths[key] = append(f.auths[key], r.Header.Get("Authorization"))
	h, ok := f.routes[key]
	f.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	h(w, r)
}

func (f *fakeAPI) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[key]
}

func (f *fakeAPI) authHeaders(key string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.auths[key]...)
}

func (f *fakeAPI) baseURL() string { return f.srv.URL + "/api" }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// bearerGate returns 200 with body for the accepted token and 401 otherwise.
func bearerGate(accepted string, body any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+accepted {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Token expired"})
			return
		}
		writeJSON(w, http.StatusOK, body)
	}
}

type testEnv struct {
	api    *fakeAPI
	kv     *mockauth.MemoryKV
	store  *session.Store
	client *Client

	mu     sync.Mutex
	events []domainauth.Event
}

func newTestEnv(t *testing.T, timeout time.Duration) *testEnv {
	t.Helper()
	env := &testEnv{api: newFakeAPI(t), kv: mockauth.NewMemoryKV(nil)}
	env.store = session.NewStore(session.StoreOptions{KV: env.kv})
	env.store.Subscribe(func(ev domainauth.Event) {
		env.mu.Lock()
		env.events = append(env.events, ev)
		env.mu.Unlock()
	})

	client, err := New(Options{BaseURL: env.api.baseURL(), Timeout: timeout, Store: env.store})
	require.NoError(t, err)
	env.client = client
	return env
}

func (e *testEnv) signIn(t *testing.T, access, refresh string) {
	t.Helper()
	id := domainauth.Identity{ID: 1, Username: "alice", Roles: []string{domainauth.ServerRoleUser}}
	require.NoError(t, e.store.SetAuthenticated(context.Background(), access, refresh, id))
}

func (e *testEnv) clearedEvents() []domainauth.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []domainauth.Event
	for _, ev := range e.events {
		if ev.Kind == domainauth.EventCleared {
			out = append(out, ev)
		}
	}
	return out
}
