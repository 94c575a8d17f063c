package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/target/catalog-admin/internal/domain/auth"
	"github.com/target/catalog-admin/internal/domain/model"
	apperrors "github.com/target/catalog-admin/internal/errors"
	mockauth "github.com/target/catalog-admin/internal/mocks/auth"
	"github.com/target/catalog-admin/internal/session"
)

func TestNew_Validation(t *testing.T) {
	store := session.NewStore(session.StoreOptions{KV: mockauth.NewMemoryKV(nil)})

	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{name: "valid", opts: Options{BaseURL: "http://localhost:8080/api", Store: store}},
		{name: "missing store", opts: Options{BaseURL: "http://localhost:8080/api"}, wantErr: true},
		{name: "missing url", opts: Options{Store: store}, wantErr: true},
		{name: "unsupported scheme", opts: Options{BaseURL: "ftp://host/api", Store: store}, wantErr: true},
		{name: "no host", opts: Options{BaseURL: "http:///api", Store: store}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

// recordingAPI records the last request per route and answers with a fixed body.
type recordingAPI struct {
	*testEnv
	mu   sync.Mutex
	last map[string]*http.Request
	body map[string][]byte
}

func newRecordingAPI(t *testing.T) *recordingAPI {
	t.Helper()
	r := &recordingAPI{
		testEnv: newTestEnv(t, time.Second),
		last:    make(map[string]*http.Request),
		body:    make(map[string][]byte),
	}
	r.signIn(t, "A1", "R1")
	return r
}

func (r *recordingAPI) respond(key string, status int, v any) {
	r.api.handle(key, func(w http.ResponseWriter, req *http.Request) {
		var raw json.RawMessage
		_ = json.NewDecoder(req.Body).Decode(&raw)
		r.mu.Lock()
		r.last[key] = req
		r.body[key] = raw
		r.mu.Unlock()
		if v == nil {
			w.WriteHeader(status)
			return
		}
		writeJSON(w, status, v)
	})
}

func (r *recordingAPI) query(key string) url.Values {
	r.mu.Lock()
	defer r.mu.Unlock()
	if req := r.last[key]; req != nil {
		return req.URL.Query()
	}
	return nil
}

func (r *recordingAPI) sentBody(key string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return string(r.body[key])
}

func TestProductsAPI_Endpoints(t *testing.T) {
	ctx := context.Background()
	api := newRecordingAPI(t)
	lamp := map[string]any{"id": 3, "name": "Lamp", "price": 12.5, "category": "Home & Garden", "stockQuantity": 4}

	api.respond("GET /api/products/paginated", http.StatusOK, map[string]any{
		"content": []any{lamp}, "totalElements": 41, "totalPages": 3,
	})
	api.respond("GET /api/products/3", http.StatusOK, lamp)
	api.respond("GET /api/products/active", http.StatusOK, []any{lamp})
	api.respond("GET /api/products/category/Home & Garden", http.StatusOK, []any{lamp})
	api.respond("GET /api/products/search", http.StatusOK, []any{lamp})
	api.respond("GET /api/products/price-range", http.StatusOK, []any{lamp})
	api.respond("GET /api/products/available", http.StatusOK, []any{})
	api.respond("GET /api/products/categories", http.StatusOK, []string{"Books", "Lighting"})
	api.respond("GET /api/products/filter", http.StatusOK, map[string]any{"content": []any{}, "totalElements": 0})
	api.respond("PUT /api/products/3", http.StatusOK, lamp)
	api.respond("DELETE /api/products/3", http.StatusNoContent, nil)
	api.respond("PATCH /api/products/3/restore", http.StatusOK, lamp)
	api.respond("POST /api/products/semantic-search", http.StatusOK, []any{lamp})

	page, err := api.client.Products.Paginated(ctx, model.PageRequest{Page: 1, Size: 20, Sort: "name"})
	require.NoError(t, err)
	assert.Equal(t, int64(41), page.TotalElements)
	assert.Equal(t, url.Values{"page": {"1"}, "size": {"20"}, "sort": {"name"}}, api.query("GET /api/products/paginated"))

	got, err := api.client.Products.Get(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "Lamp", got.Name)
	assert.Equal(t, 4, got.StockQuantity)

	active, err := api.client.Products.Active(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	byCat, err := api.client.Products.ByCategory(ctx, "Home & Garden")
	require.NoError(t, err)
	assert.Len(t, byCat, 1)

	_, err = api.client.Products.Search(ctx, "lamp & shade")
	require.NoError(t, err)
	assert.Equal(t, "lamp & shade", api.query("GET /api/products/search").Get("name"))

	_, err = api.client.Products.PriceRange(ctx, 10, 99.5)
	require.NoError(t, err)
	assert.Equal(t, url.Values{"minPrice": {"10"}, "maxPrice": {"99.5"}}, api.query("GET /api/products/price-range"))

	_, err = api.client.Products.Available(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "5", api.query("GET /api/products/available").Get("minStock"))

	cats, err := api.client.Products.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Books", "Lighting"}, cats)

	minPrice := 5.0
	_, err = api.client.Products.Filter(ctx, model.ProductFilter{
		PageRequest: model.PageRequest{Page: 0, Size: 10},
		Category:    "Books",
		MinPrice:    &minPrice,
	})
	require.NoError(t, err)
	q := api.query("GET /api/products/filter")
	assert.Equal(t, "Books", q.Get("category"))
	assert.Equal(t, "5", q.Get("minPrice"))
	assert.False(t, q.Has("maxPrice"))

	_, err = api.client.Products.Update(ctx, 3, model.ProductInput{Name: "Lamp", Price: 15, Category: "Home & Garden"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Lamp","price":15,"category":"Home & Garden","stockQuantity":0}`, api.sentBody("PUT /api/products/3"))

	require.NoError(t, api.client.Products.Delete(ctx, 3))
	require.NoError(t, api.client.Products.Restore(ctx, 3))

	results, err := api.client.Products.SemanticSearch(ctx, "something to read by")
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.JSONEq(t, `{"query":"something to read by"}`, api.sentBody("POST /api/products/semantic-search"))
}

func TestUsersAPI_Endpoints(t *testing.T) {
	ctx := context.Background()
	api := newRecordingAPI(t)
	bob := map[string]any{"id": 2, "username": "bob", "email": "bob@example.com", "roles": []string{"ROLE_USER"}, "isActive": true}

	api.respond("GET /api/users", http.StatusOK, []any{bob})
	api.respond("GET /api/users/paginated", http.StatusOK, map[string]any{"content": []any{bob}, "totalElements": 1})
	api.respond("GET /api/users/2", http.StatusOK, bob)
	api.respond("GET /api/users/profile", http.StatusOK, bob)
	api.respond("GET /api/users/search", http.StatusOK, []any{bob})
	api.respond("GET /api/users/by-role/ROLE_ADMIN", http.StatusOK, []any{})
	api.respond("GET /api/users/created-between", http.StatusOK, []any{bob})
	api.respond("GET /api/users/count/active", http.StatusOK, map[string]any{"activeUserCount": 12})
	api.respond("PUT /api/users/2", http.StatusOK, bob)
	api.respond("PATCH /api/users/2/deactivate", http.StatusOK, nil)
	api.respond("PATCH /api/users/2/activate", http.StatusOK, nil)

	all, err := api.client.Users.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].IsActive())

	page, err := api.client.Users.Paginated(ctx, model.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, page.Content, 1)
	assert.Equal(t, "20", api.query("GET /api/users/paginated").Get("size"))

	_, err = api.client.Users.Get(ctx, 2)
	require.NoError(t, err)

	profile, err := api.client.Users.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "bob", profile.Username)

	_, err = api.client.Users.Search(ctx, "bo")
	require.NoError(t, err)

	byRole, err := api.client.Users.ByRole(ctx, "ROLE_ADMIN")
	require.NoError(t, err)
	assert.Empty(t, byRole)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err = api.client.Users.CreatedBetween(ctx, start, start.AddDate(0, 1, 0))
	require.NoError(t, err)
	assert.Equal(t, url.Values{"startDate": {"2024-01-01T00:00:00"}, "endDate": {"2024-02-01T00:00:00"}},
		api.query("GET /api/users/created-between"))

	count, err := api.client.Users.CountActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(12), count)

	_, err = api.client.Users.Update(ctx, 2, model.UserUpdate{Username: "bob", Email: "bob@example.com", FirstName: "Bob"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"username":"bob","email":"bob@example.com","firstName":"Bob","lastName":""}`, api.sentBody("PUT /api/users/2"))

	require.NoError(t, api.client.Users.Deactivate(ctx, 2))
	require.NoError(t, api.client.Users.Activate(ctx, 2))
}

func TestAuthAPI_RegisterAndHealth(t *testing.T) {
	ctx := context.Background()
	api := newRecordingAPI(t)
	api.respond("POST /api/auth/register", http.StatusCreated, map[string]any{"id": 5, "username": "carol"})
	api.api.handle("GET /api/auth/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("Auth service is running\n"))
	})

	resp, err := api.client.Auth.Register(ctx, domainauth.Registration{
		Username:        "carol",
		Email:           "carol@example.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), resp.ID)
	assert.JSONEq(t, `{"username":"carol","email":"carol@example.com","password":"secret1"}`, api.sentBody("POST /api/auth/register"))

	msg, err := api.client.Auth.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Auth service is running", msg)
}

func TestClient_NetworkFailure(t *testing.T) {
	env := newTestEnv(t, time.Second)
	env.api.srv.Close()
	env.signIn(t, "A1", "R1")

	_, err := env.client.Products.List(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsNetwork(err), "got %v", apperrors.GetCode(err))
	assert.True(t, env.store.IsAuthenticated())
}

func TestClient_MalformedResponse(t *testing.T) {
	env := newTestEnv(t, time.Second)
	env.api.handle("GET /api/products/1", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":`))
	})

	_, err := env.client.Products.Get(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, apperrors.IsInternal(err))
}

func TestPathSegmentsAreEscaped(t *testing.T) {
	var (
		mu   sync.Mutex
		uris []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		uris = append(uris, r.RequestURI)
		mu.Unlock()
		writeJSON(w, http.StatusOK, []any{})
	}))
	t.Cleanup(srv.Close)

	store := session.NewStore(session.StoreOptions{KV: mockauth.NewMemoryKV(nil)})
	client, err := New(Options{BaseURL: srv.URL + "/api", Store: store})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = client.Products.ByCategory(ctx, "Home & Garden")
	require.NoError(t, err)
	_, err = client.Products.ByCategory(ctx, "../users")
	require.NoError(t, err)
	_, err = client.Products.ByCategory(ctx, "..")
	require.NoError(t, err)
	_, err = client.Users.ByRole(ctx, "ROLE/ADMIN?x=1")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"/api/products/category/Home%20&%20Garden",
		"/api/products/category/..%2Fusers",
		"/api/products/category/%2E%2E",
		"/api/users/by-role/ROLE%2FADMIN%3Fx=1",
	}, uris)
}

func TestPathSegment(t *testing.T) {
	assert.Equal(t, "a%2Fb", pathSegment("a/b"))
	assert.Equal(t, "%2E", pathSegment("."))
	assert.Equal(t, "%2E%2E", pathSegment(".."))
	assert.Equal(t, "100%25", pathSegment("100%"))
	assert.Equal(t, "Books", pathSegment("Books"))
}
