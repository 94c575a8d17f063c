package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/target/catalog-admin/internal/domain/model"
	apperrors "github.com/target/catalog-admin/internal/errors"
	"github.com/target/catalog-admin/internal/validation"
)

// ProductAPI is the subset of the product endpoints ProductService needs.
type ProductAPI interface {
	List(ctx context.Context) ([]model.Product, error)
	Paginated(ctx context.Context, req model.PageRequest) (*model.Page[model.Product], error)
	Get(ctx context.Context, id int64) (*model.Product, error)
	Active(ctx context.Context) ([]model.Product, error)
	ByCategory(ctx context.Context, category string) ([]model.Product, error)
	Search(ctx context.Context, name string) ([]model.Product, error)
	PriceRange(ctx context.Context, minPrice, maxPrice float64) ([]model.Product, error)
	Available(ctx context.Context, minStock int) ([]model.Product, error)
	Categories(ctx context.Context) ([]string, error)
	Filter(ctx context.Context, f model.ProductFilter) (*model.Page[model.Product], error)
	Create(ctx context.Context, in model.ProductInput) (*model.Product, error)
	Update(ctx context.Context, id int64, in model.ProductInput) (*model.Product, error)
	Delete(ctx context.Context, id int64) error
	Restore(ctx context.Context, id int64) error
	SemanticSearch(ctx context.Context, query string) ([]model.Product, error)
}

// ProductServiceOptions groups dependencies for ProductService.
type ProductServiceOptions struct {
	API             ProductAPI
	DefaultPageSize int
	Logger          *slog.Logger
}

// ProductService validates product input and wraps the product endpoints.
type ProductService struct {
	api      ProductAPI
	pageSize int
	logger   *slog.Logger
}

// NewProductService constructs a new ProductService.
func NewProductService(opts ProductServiceOptions) *ProductService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	size := opts.DefaultPageSize
	if size <= 0 {
		size = 20
	}
	return &ProductService{
		api:      opts.API,
		pageSize: size,
		logger:   logger.With("component", "product_service"),
	}
}

// ListProductsOptions selects what List returns.
// Filtering by category or price switches to the filter endpoint.
type ListProductsOptions struct {
	Page       int
	Size       int
	Sort       string
	Category   string
	MinPrice   *float64
	MaxPrice   *float64
	ActiveOnly bool
	All        bool // every product, unpaged
}

// List returns products according to opts.
func (s *ProductService) List(ctx context.Context, opts ListProductsOptions) (*model.Page[model.Product], error) {
	if opts.MinPrice != nil && opts.MaxPrice != nil && *opts.MinPrice > *opts.MaxPrice {
		return nil, apperrors.ValidationField("maxPrice", "Maximum price must be greater than or equal to minimum price")
	}

	switch {
	case opts.ActiveOnly:
		return wholePage(s.api.Active(ctx))
	case opts.All:
		return wholePage(s.api.List(ctx))
	}

	req := model.PageRequest{Page: max(opts.Page, 0), Size: s.size(opts.Size), Sort: opts.Sort}
	if opts.Category != "" || opts.MinPrice != nil || opts.MaxPrice != nil {
		return s.api.Filter(ctx, model.ProductFilter{
			PageRequest: req,
			Category:    opts.Category,
			MinPrice:    opts.MinPrice,
			MaxPrice:    opts.MaxPrice,
		})
	}
	return s.api.Paginated(ctx, req)
}

// Get returns one product.
func (s *ProductService) Get(ctx context.Context, id int64) (*model.Product, error) {
	if id <= 0 {
		return nil, apperrors.ValidationField("id", "Product id must be a positive number")
	}
	return s.api.Get(ctx, id)
}

// Create validates the form and creates the product.
func (s *ProductService) Create(ctx context.Context, form model.ProductForm) (*model.Product, error) {
	if errs := validation.Product(form); len(errs) > 0 {
		return nil, apperrors.ValidationFields(errs)
	}
	p, err := s.api.Create(ctx, form.Input())
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "product created", "product_id", p.ID)
	return p, nil
}

// Update validates the form and replaces the product.
func (s *ProductService) Update(ctx context.Context, id int64, form model.ProductForm) (*model.Product, error) {
	if id <= 0 {
		return nil, apperrors.ValidationField("id", "Product id must be a positive number")
	}
	if errs := validation.Product(form); len(errs) > 0 {
		return nil, apperrors.ValidationFields(errs)
	}
	p, err := s.api.Update(ctx, id, form.Input())
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "product updated", "product_id", id)
	return p, nil
}

// Delete soft-deletes a product.
func (s *ProductService) Delete(ctx context.Context, id int64) error {
	if err := s.api.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "product deactivated", "product_id", id)
	return nil
}

// Restore reactivates a product.
func (s *ProductService) Restore(ctx context.Context, id int64) error {
	if err := s.api.Restore(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "product restored", "product_id", id)
	return nil
}

// Toggle deactivates an active product or restores an inactive one and
// reports the resulting state.
func (s *ProductService) Toggle(ctx context.Context, id int64) (active bool, err error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if p.IsActive() {
		return false, s.Delete(ctx, id)
	}
	return true, s.Restore(ctx, id)
}

// SearchOptions selects a search mode.
type SearchOptions struct {
	Semantic bool
	Category string
}

// Search finds products by name, by category, or by meaning.
func (s *ProductService) Search(ctx context.Context, query string, opts SearchOptions) ([]model.Product, error) {
	query = strings.TrimSpace(query)
	switch {
	case opts.Semantic:
		if query == "" {
			return nil, apperrors.ValidationField("query", "Search query is required")
		}
		return s.api.SemanticSearch(ctx, query)
	case opts.Category != "" && query == "":
		return s.api.ByCategory(ctx, opts.Category)
	case query == "":
		return nil, apperrors.ValidationField("query", "Search query is required")
	}

	items, err := s.api.Search(ctx, query)
	if err != nil || opts.Category == "" {
		return items, err
	}
	filtered := items[:0]
	for _, p := range items {
		if strings.EqualFold(p.Category, opts.Category) {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

// PriceRange returns products priced within [minPrice, maxPrice].
func (s *ProductService) PriceRange(ctx context.Context, minPrice, maxPrice float64) ([]model.Product, error) {
	if minPrice < 0 || maxPrice < minPrice {
		return nil, apperrors.ValidationField("maxPrice", "Maximum price must be greater than or equal to minimum price")
	}
	return s.api.PriceRange(ctx, minPrice, maxPrice)
}

// Available returns products with at least minStock units.
func (s *ProductService) Available(ctx context.Context, minStock int) ([]model.Product, error) {
	if minStock < 0 {
		return nil, apperrors.ValidationField("minStock", "Minimum stock must be greater than or equal to 0")
	}
	return s.api.Available(ctx, minStock)
}

// Categories returns the default categories merged with the API's.
// When the API call fails the defaults alone are returned.
func (s *ProductService) Categories(ctx context.Context) []string {
	fromAPI, err := s.api.Categories(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "falling back to default categories", "error", err)
		return append([]string(nil), model.DefaultCategories...)
	}
	return model.MergeCategories(model.DefaultCategories, fromAPI)
}

func (s *ProductService) size(requested int) int {
	if requested <= 0 {
		return s.pageSize
	}
	return requested
}

func wholePage[T any](items []T, err error) (*model.Page[T], error) {
	if err != nil {
		return nil, err
	}
	return &model.Page[T]{
		Content:       items,
		TotalElements: int64(len(items)),
		TotalPages:    1,
		Size:          len(items),
	}, nil
}
