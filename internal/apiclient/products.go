package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/target/catalog-admin/internal/domain/model"
)

// ProductsAPI covers the /products endpoints.
type ProductsAPI struct {
	c *Client
}

// List returns every product.
func (p *ProductsAPI) List(ctx context.Context) ([]model.Product, error) {
	return p.list(ctx, []string{"products"}, nil)
}

// Paginated returns one page of products.
func (p *ProductsAPI) Paginated(ctx context.Context, req model.PageRequest) (*model.Page[model.Product], error) {
	var out model.Page[model.Product]
	err := p.c.do(ctx, call{
		method: http.MethodGet,
		path:   []string{"products", "paginated"},
		query:  pageQuery(req),
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Get returns one product.
func (p *ProductsAPI) Get(ctx context.Context, id int64) (*model.Product, error) {
	var out model.Product
	err := p.c.do(ctx, call{
		method: http.MethodGet,
		path:   []string{"products", formatID(id)},
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Active returns only active products.
func (p *ProductsAPI) Active(ctx context.Context) ([]model.Product, error) {
	return p.list(ctx, []string{"products", "active"}, nil)
}

// ByCategory returns products in category.
func (p *ProductsAPI) ByCategory(ctx context.Context, category string) ([]model.Product, error) {
	return p.list(ctx, []string{"products", "category", pathSegment(category)}, nil)
}

// Search matches products by name.
func (p *ProductsAPI) Search(ctx context.Context, name string) ([]model.Product, error) {
	return p.list(ctx, []string{"products", "search"}, url.Values{"name": {name}})
}

// PriceRange returns products priced between minPrice and maxPrice inclusive.
func (p *ProductsAPI) PriceRange(ctx context.Context, minPrice, maxPrice float64) ([]model.Product, error) {
	return p.list(ctx, []string{"products", "price-range"}, url.Values{
		"minPrice": {formatFloat(minPrice)},
		"maxPrice": {formatFloat(maxPrice)},
	})
}

// Available returns products with at least minStock units.
func (p *ProductsAPI) Available(ctx context.Context, minStock int) ([]model.Product, error) {
	return p.list(ctx, []string{"products", "available"}, url.Values{"minStock": {strconv.Itoa(minStock)}})
}

// Categories returns the categories known to the API.
func (p *ProductsAPI) Categories(ctx context.Context) ([]string, error) {
	var out []string
	err := p.c.do(ctx, call{
		method: http.MethodGet,
		path:   []string{"products", "categories"},
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Filter returns one page of products matching f.
func (p *ProductsAPI) Filter(ctx context.Context, f model.ProductFilter) (*model.Page[model.Product], error) {
	q := pageQuery(f.PageRequest)
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.MinPrice != nil {
		q.Set("minPrice", formatFloat(*f.MinPrice))
	}
	if f.MaxPrice != nil {
		q.Set("maxPrice", formatFloat(*f.MaxPrice))
	}

	var out model.Page[model.Product]
	err := p.c.do(ctx, call{
		method: http.MethodGet,
		path:   []string{"products", "filter"},
		query:  q,
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Create adds a product.
func (p *ProductsAPI) Create(ctx context.Context, in model.ProductInput) (*model.Product, error) {
	var out model.Product
	err := p.c.do(ctx, call{
		method: http.MethodPost,
		path:   []string{"products"},
		in:     in,
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Update replaces a product.
func (p *ProductsAPI) Update(ctx context.Context, id int64, in model.ProductInput) (*model.Product, error) {
	var out model.Product
	err := p.c.do(ctx, call{
		method: http.MethodPut,
		path:   []string{"products", formatID(id)},
		in:     in,
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete soft-deletes a product; it can be restored.
func (p *ProductsAPI) Delete(ctx context.Context, id int64) error {
	return p.c.do(ctx, call{
		method: http.MethodDelete,
		path:   []string{"products", formatID(id)},
	})
}

// Restore reactivates a soft-deleted product.
func (p *ProductsAPI) Restore(ctx context.Context, id int64) error {
	return p.c.do(ctx, call{
		method: http.MethodPatch,
		path:   []string{"products", formatID(id), "restore"},
	})
}

// SemanticSearch ranks products by meaning rather than keyword.
func (p *ProductsAPI) SemanticSearch(ctx context.Context, query string) ([]model.Product, error) {
	var out model.Page[model.Product]
	err := p.c.do(ctx, call{
		method: http.MethodPost,
		path:   []string{"products", "semantic-search"},
		in:     map[string]string{"query": query},
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return out.Content, nil
}

func (p *ProductsAPI) list(ctx context.Context, path []string, q url.Values) ([]model.Product, error) {
	var out model.Page[model.Product]
	err := p.c.do(ctx, call{method: http.MethodGet, path: path, query: q, out: &out})
	if err != nil {
		return nil, err
	}
	return out.Content, nil
}

func pageQuery(req model.PageRequest) url.Values {
	q := url.Values{}
	page := max(req.Page, 0)
	size := req.Size
	if size <= 0 {
		size = 20
	}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	if req.Sort != "" {
		q.Set("sort", req.Sort)
	}
	return q
}

func formatID(id int64) string { return strconv.FormatInt(id, 10) }

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
