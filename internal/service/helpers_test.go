package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/target/catalog-admin/internal/apiclient"
	domainauth "github.com/target/catalog-admin/internal/domain/auth"
	"github.com/target/catalog-admin/internal/domain/model"
	mockauth "github.com/target/catalog-admin/internal/mocks/auth"
	"github.com/target/catalog-admin/internal/session"
)

// fakeAuthAPI is a func-field test double for AuthAPI.
type fakeAuthAPI struct {
	loginFunc    func(context.Context, domainauth.Credentials) (*apiclient.LoginResponse, error)
	registerFunc func(context.Context, domainauth.Registration) (*apiclient.RegisterResponse, error)
	logoutFunc   func(context.Context) error
	healthFunc   func(context.Context) (string, error)

	logoutCalls int
}

func (f *fakeAuthAPI) Login(ctx context.Context, creds domainauth.Credentials) (*apiclient.LoginResponse, error) {
	if f.loginFunc != nil {
		return f.loginFunc(ctx, creds)
	}
	return &apiclient.LoginResponse{AccessToken: "access", RefreshToken: "refresh", UserID: 1, Username: creds.Username}, nil
}

func (f *fakeAuthAPI) Register(ctx context.Context, reg domainauth.Registration) (*apiclient.RegisterResponse, error) {
	if f.registerFunc != nil {
		return f.registerFunc(ctx, reg)
	}
	return &apiclient.RegisterResponse{Username: reg.Username}, nil
}

func (f *fakeAuthAPI) Logout(ctx context.Context) error {
	f.logoutCalls++
	if f.logoutFunc != nil {
		return f.logoutFunc(ctx)
	}
	return nil
}

func (f *fakeAuthAPI) Health(ctx context.Context) (string, error) {
	if f.healthFunc != nil {
		return f.healthFunc(ctx)
	}
	return "Auth service is running", nil
}

// fakeProductAPI is a func-field test double for ProductAPI. Unset funcs
// return zero values.
type fakeProductAPI struct {
	listFunc           func(context.Context) ([]model.Product, error)
	paginatedFunc      func(context.Context, model.PageRequest) (*model.Page[model.Product], error)
	getFunc            func(context.Context, int64) (*model.Product, error)
	activeFunc         func(context.Context) ([]model.Product, error)
	byCategoryFunc     func(context.Context, string) ([]model.Product, error)
	searchFunc         func(context.Context, string) ([]model.Product, error)
	priceRangeFunc     func(context.Context, float64, float64) ([]model.Product, error)
	availableFunc      func(context.Context, int) ([]model.Product, error)
	categoriesFunc     func(context.Context) ([]string, error)
	filterFunc         func(context.Context, model.ProductFilter) (*model.Page[model.Product], error)
	createFunc         func(context.Context, model.ProductInput) (*model.Product, error)
	updateFunc         func(context.Context, int64, model.ProductInput) (*model.Product, error)
	deleteFunc         func(context.Context, int64) error
	restoreFunc        func(context.Context, int64) error
	semanticSearchFunc func(context.Context, string) ([]model.Product, error)
}

func (f *fakeProductAPI) List(ctx context.Context) ([]model.Product, error) {
	if f.listFunc != nil {
		return f.listFunc(ctx)
	}
	return nil, nil
}

func (f *fakeProductAPI) Paginated(ctx context.Context, req model.PageRequest) (*model.Page[model.Product], error) {
	if f.paginatedFunc != nil {
		return f.paginatedFunc(ctx, req)
	}
	return &model.Page[model.Product]{}, nil
}

func (f *fakeProductAPI) Get(ctx context.Context, id int64) (*model.Product, error) {
	if f.getFunc != nil {
		return f.getFunc(ctx, id)
	}
	return &model.Product{ID: id}, nil
}

func (f *fakeProductAPI) Active(ctx context.Context) ([]model.Product, error) {
	if f.activeFunc != nil {
		return f.activeFunc(ctx)
	}
	return nil, nil
}

func (f *fakeProductAPI) ByCategory(ctx context.Context, category string) ([]model.Product, error) {
	if f.byCategoryFunc != nil {
		return f.byCategoryFunc(ctx, category)
	}
	return nil, nil
}

func (f *fakeProductAPI) Search(ctx context.Context, name string) ([]model.Product, error) {
	if f.searchFunc != nil {
		return f.searchFunc(ctx, name)
	}
	return nil, nil
}

func (f *fakeProductAPI) PriceRange(ctx context.Context, minPrice, maxPrice float64) ([]model.Product, error) {
	if f.priceRangeFunc != nil {
		return f.priceRangeFunc(ctx, minPrice, maxPrice)
	}
	return nil, nil
}

func (f *fakeProductAPI) Available(ctx context.Context, minStock int) ([]model.Product, error) {
	if f.availableFunc != nil {
		return f.availableFunc(ctx, minStock)
	}
	return nil, nil
}

func (f *fakeProductAPI) Categories(ctx context.Context) ([]string, error) {
	if f.categoriesFunc != nil {
		return f.categoriesFunc(ctx)
	}
	return nil, nil
}

func (f *fakeProductAPI) Filter(ctx context.Context, filter model.ProductFilter) (*model.Page[model.Product], error) {
	if f.filterFunc != nil {
		return f.filterFunc(ctx, filter)
	}
	return &model.Page[model.Product]{}, nil
}

func (f *fakeProductAPI) Create(ctx context.Context, in model.ProductInput) (*model.Product, error) {
	if f.createFunc != nil {
		return f.createFunc(ctx, in)
	}
	return &model.Product{ID: 1, Name: in.Name}, nil
}

func (f *fakeProductAPI) Update(ctx context.Context, id int64, in model.ProductInput) (*model.Product, error) {
	if f.updateFunc != nil {
		return f.updateFunc(ctx, id, in)
	}
	return &model.Product{ID: id, Name: in.Name}, nil
}

func (f *fakeProductAPI) Delete(ctx context.Context, id int64) error {
	if f.deleteFunc != nil {
		return f.deleteFunc(ctx, id)
	}
	return nil
}

func (f *fakeProductAPI) Restore(ctx context.Context, id int64) error {
	if f.restoreFunc != nil {
		return f.restoreFunc(ctx, id)
	}
	return nil
}

func (f *fakeProductAPI) SemanticSearch(ctx context.Context, query string) ([]model.Product, error) {
	if f.semanticSearchFunc != nil {
		return f.semanticSearchFunc(ctx, query)
	}
	return nil, nil
}

// fakeUserAPI is a func-field test double for UserAPI.
type fakeUserAPI struct {
	listFunc           func(context.Context) ([]model.User, error)
	paginatedFunc      func(context.Context, model.PageRequest) (*model.Page[model.User], error)
	getFunc            func(context.Context, int64) (*model.User, error)
	profileFunc        func(context.Context) (*model.User, error)
	activeFunc         func(context.Context) ([]model.User, error)
	searchFunc         func(context.Context, string) ([]model.User, error)
	byRoleFunc         func(context.Context, string) ([]model.User, error)
	createdBetweenFunc func(context.Context, time.Time, time.Time) ([]model.User, error)
	countActiveFunc    func(context.Context) (int64, error)
	updateFunc         func(context.Context, int64, model.UserUpdate) (*model.User, error)
	deactivateFunc     func(context.Context, int64) error
	activateFunc       func(context.Context, int64) error

	calls int
}

func (f *fakeUserAPI) List(ctx context.Context) ([]model.User, error) {
	f.calls++
	if f.listFunc != nil {
		return f.listFunc(ctx)
	}
	return nil, nil
}

func (f *fakeUserAPI) Paginated(ctx context.Context, req model.PageRequest) (*model.Page[model.User], error) {
	f.calls++
	if f.paginatedFunc != nil {
		return f.paginatedFunc(ctx, req)
	}
	return &model.Page[model.User]{}, nil
}

func (f *fakeUserAPI) Get(ctx context.Context, id int64) (*model.User, error) {
	f.calls++
	if f.getFunc != nil {
		return f.getFunc(ctx, id)
	}
	return &model.User{ID: id}, nil
}

func (f *fakeUserAPI) Profile(ctx context.Context) (*model.User, error) {
	f.calls++
	if f.profileFunc != nil {
		return f.profileFunc(ctx)
	}
	return &model.User{}, nil
}

func (f *fakeUserAPI) Active(ctx context.Context) ([]model.User, error) {
	f.calls++
	if f.activeFunc != nil {
		return f.activeFunc(ctx)
	}
	return nil, nil
}

func (f *fakeUserAPI) Search(ctx context.Context, name string) ([]model.User, error) {
	f.calls++
	if f.searchFunc != nil {
		return f.searchFunc(ctx, name)
	}
	return nil, nil
}

func (f *fakeUserAPI) ByRole(ctx context.Context, role string) ([]model.User, error) {
	f.calls++
	if f.byRoleFunc != nil {
		return f.byRoleFunc(ctx, role)
	}
	return nil, nil
}

func (f *fakeUserAPI) CreatedBetween(ctx context.Context, start, end time.Time) ([]model.User, error) {
	f.calls++
	if f.createdBetweenFunc != nil {
		return f.createdBetweenFunc(ctx, start, end)
	}
	return nil, nil
}

func (f *fakeUserAPI) CountActive(ctx context.Context) (int64, error) {
	f.calls++
	if f.countActiveFunc != nil {
		return f.countActiveFunc(ctx)
	}
	return 0, nil
}

func (f *fakeUserAPI) Update(ctx context.Context, id int64, in model.UserUpdate) (*model.User, error) {
	f.calls++
	if f.updateFunc != nil {
		return f.updateFunc(ctx, id, in)
	}
	return &model.User{ID: id, Username: in.Username, Email: in.Email}, nil
}

func (f *fakeUserAPI) Deactivate(ctx context.Context, id int64) error {
	f.calls++
	if f.deactivateFunc != nil {
		return f.deactivateFunc(ctx, id)
	}
	return nil
}

func (f *fakeUserAPI) Activate(ctx context.Context, id int64) error {
	f.calls++
	if f.activateFunc != nil {
		return f.activateFunc(ctx, id)
	}
	return nil
}

func newTestSessions(t *testing.T) (*session.Store, *mockauth.MemoryKV) {
	t.Helper()
	kv := mockauth.NewMemoryKV(nil)
	return session.NewStore(session.StoreOptions{KV: kv}), kv
}

func signedInAs(t *testing.T, sessions *session.Store, id int64, roles ...string) {
	t.Helper()
	err := sessions.SetAuthenticated(context.Background(), "access", "refresh", domainauth.Identity{
		ID:       id,
		Username: "alice",
		Email:    "alice@example.com",
		Roles:    roles,
	})
	require.NoError(t, err)
}

func ptr[T any](v T) *T { return &v }
