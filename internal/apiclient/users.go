package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/target/catalog-admin/internal/domain/model"
)

// dateTimeLayout is the zone-less ISO form the users API expects in queries.
const dateTimeLayout = "2006-01-02T15:04:05"

// UsersAPI covers the /users endpoints. Most require an admin role server-side.
type UsersAPI struct {
	c *Client
}

// List returns every user.
func (u *UsersAPI) List(ctx context.Context) ([]model.User, error) {
	return u.list(ctx, []string{"users"}, nil)
}

// Paginated returns one page of users.
func (u *UsersAPI) Paginated(ctx context.Context, req model.PageRequest) (*model.Page[model.User], error) {
	var out model.Page[model.User]
	err := u.c.do(ctx, call{
		method: http.MethodGet,
		path:   []string{"users", "paginated"},
		query:  pageQuery(req),
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Get returns one user.
func (u *UsersAPI) Get(ctx context.Context, id int64) (*model.User, error) {
	return u.one(ctx, http.MethodGet, []string{"users", formatID(id)}, nil)
}

// Profile returns the caller's own account.
func (u *UsersAPI) Profile(ctx context.Context) (*model.User, error) {
	return u.one(ctx, http.MethodGet, []string{"users", "profile"}, nil)
}

// Active returns active users.
func (u *UsersAPI) Active(ctx context.Context) ([]model.User, error) {
	return u.list(ctx, []string{"users", "active"}, nil)
}

// Search matches users by name.
func (u *UsersAPI) Search(ctx context.Context, name string) ([]model.User, error) {
	return u.list(ctx, []string{"users", "search"}, url.Values{"name": {name}})
}

// ByRole returns users holding role.
func (u *UsersAPI) ByRole(ctx context.Context, role string) ([]model.User, error) {
	return u.list(ctx, []string{"users", "by-role", pathSegment(role)}, nil)
}

// CreatedBetween returns users created in [start, end].
func (u *UsersAPI) CreatedBetween(ctx context.Context, start, end time.Time) ([]model.User, error) {
	return u.list(ctx, []string{"users", "created-between"}, url.Values{
		"startDate": {start.Format(dateTimeLayout)},
		"endDate":   {end.Format(dateTimeLayout)},
	})
}

// CountActive returns the number of active users.
func (u *UsersAPI) CountActive(ctx context.Context) (int64, error) {
	var out model.ActiveUserCount
	err := u.c.do(ctx, call{
		method: http.MethodGet,
		path:   []string{"users", "count", "active"},
		out:    &out,
	})
	if err != nil {
		return 0, err
	}
	return out.ActiveUserCount, nil
}

// Update replaces a user's profile fields.
func (u *UsersAPI) Update(ctx context.Context, id int64, in model.UserUpdate) (*model.User, error) {
	return u.one(ctx, http.MethodPut, []string{"users", formatID(id)}, in)
}

// Deactivate disables an account.
func (u *UsersAPI) Deactivate(ctx context.Context, id int64) error {
	return u.c.do(ctx, call{method: http.MethodPatch, path: []string{"users", formatID(id), "deactivate"}})
}

// Activate re-enables an account.
func (u *UsersAPI) Activate(ctx context.Context, id int64) error {
	return u.c.do(ctx, call{method: http.MethodPatch, path: []string{"users", formatID(id), "activate"}})
}

func (u *UsersAPI) one(ctx context.Context, method string, path []string, in any) (*model.User, error) {
	var out model.User
	if err := u.c.do(ctx, call{method: method, path: path, in: in, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (u *UsersAPI) list(ctx context.Context, path []string, q url.Values) ([]model.User, error) {
	var out model.Page[model.User]
	if err := u.c.do(ctx, call{method: http.MethodGet, path: path, query: q, out: &out}); err != nil {
		return nil, err
	}
	return out.Content, nil
}
