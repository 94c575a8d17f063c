package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/catalog-admin/internal/domain/model"
	apperrors "github.com/target/catalog-admin/internal/errors"
)

func TestProductService_List(t *testing.T) {
	t.Run("paginated with default size", func(t *testing.T) {
		var got model.PageRequest
		api := &fakeProductAPI{
			paginatedFunc: func(_ context.Context, req model.PageRequest) (*model.Page[model.Product], error) {
				got = req
				return &model.Page[model.Product]{Content: []model.Product{{ID: 1}}, TotalElements: 1}, nil
			},
		}
		svc := NewProductService(ProductServiceOptions{API: api, DefaultPageSize: 10})

		page, err := svc.List(context.Background(), ListProductsOptions{Page: -3, Sort: "name,asc"})

		require.NoError(t, err)
		assert.Len(t, page.Content, 1)
		assert.Equal(t, model.PageRequest{Page: 0, Size: 10, Sort: "name,asc"}, got)
	})

	t.Run("category switches to filter", func(t *testing.T) {
		var got model.ProductFilter
		api := &fakeProductAPI{
			filterFunc: func(_ context.Context, f model.ProductFilter) (*model.Page[model.Product], error) {
				got = f
				return &model.Page[model.Product]{}, nil
			},
		}
		svc := NewProductService(ProductServiceOptions{API: api})

		_, err := svc.List(context.Background(), ListProductsOptions{Category: "Books", MinPrice: ptr(5.0), Size: 5})

		require.NoError(t, err)
		assert.Equal(t, "Books", got.Category)
		assert.Equal(t, 5, got.Size)
		require.NotNil(t, got.MinPrice)
		assert.InDelta(t, 5.0, *got.MinPrice, 0)
	})

	t.Run("inverted price range", func(t *testing.T) {
		svc := NewProductService(ProductServiceOptions{API: &fakeProductAPI{}})

		_, err := svc.List(context.Background(), ListProductsOptions{MinPrice: ptr(10.0), MaxPrice: ptr(1.0)})

		require.Error(t, err)
		assert.Equal(t, "maxPrice", apperrors.GetField(err))
	})

	t.Run("active only is one page", func(t *testing.T) {
		api := &fakeProductAPI{
			activeFunc: func(context.Context) ([]model.Product, error) {
				return []model.Product{{ID: 1}, {ID: 2}}, nil
			},
		}
		svc := NewProductService(ProductServiceOptions{API: api})

		page, err := svc.List(context.Background(), ListProductsOptions{ActiveOnly: true})

		require.NoError(t, err)
		assert.Equal(t, int64(2), page.TotalElements)
		assert.Equal(t, 1, page.TotalPages)
	})

	t.Run("all propagates errors", func(t *testing.T) {
		api := &fakeProductAPI{
			listFunc: func(context.Context) ([]model.Product, error) { return nil, errors.New("down") },
		}
		svc := NewProductService(ProductServiceOptions{API: api})

		page, err := svc.List(context.Background(), ListProductsOptions{All: true})

		require.Error(t, err)
		assert.Nil(t, page)
	})
}

func TestProductService_Create(t *testing.T) {
	t.Run("invalid form never reaches the API", func(t *testing.T) {
		api := &fakeProductAPI{
			createFunc: func(context.Context, model.ProductInput) (*model.Product, error) {
				t.Fatal("unexpected create")
				return nil, nil
			},
		}
		svc := NewProductService(ProductServiceOptions{API: api})

		_, err := svc.Create(context.Background(), model.ProductForm{Price: "-1", StockQuantity: "x"})

		require.Error(t, err)
		fields := apperrors.GetFields(err)
		assert.Equal(t, "Product name is required", fields["name"])
		assert.Equal(t, "Price must be a valid number greater than or equal to 0", fields["price"])
		assert.Equal(t, "Category is required", fields["category"])
		assert.Contains(t, fields, "stockQuantity")
	})

	t.Run("valid form is converted", func(t *testing.T) {
		var got model.ProductInput
		api := &fakeProductAPI{
			createFunc: func(_ context.Context, in model.ProductInput) (*model.Product, error) {
				got = in
				return &model.Product{ID: 42, Name: in.Name}, nil
			},
		}
		svc := NewProductService(ProductServiceOptions{API: api})

		p, err := svc.Create(context.Background(), model.ProductForm{
			Name:     " Lamp ",
			Price:    "19.99",
			Category: "Home",
		})

		require.NoError(t, err)
		assert.Equal(t, int64(42), p.ID)
		assert.Equal(t, "Lamp", got.Name)
		assert.InDelta(t, 19.99, got.Price, 0.0001)
		assert.Zero(t, got.StockQuantity)
	})
}

func TestProductService_Update_RejectsBadID(t *testing.T) {
	svc := NewProductService(ProductServiceOptions{API: &fakeProductAPI{}})

	_, err := svc.Update(context.Background(), 0, model.ProductForm{Name: "x", Price: "1", Category: "c"})

	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestProductService_Toggle(t *testing.T) {
	tests := []struct {
		name        string
		active      *bool
		wantActive  bool
		wantDelete  bool
		wantRestore bool
	}{
		{name: "active product is deactivated", active: ptr(true), wantDelete: true},
		{name: "missing flag counts as active", active: nil, wantDelete: true},
		{name: "inactive product is restored", active: ptr(false), wantActive: true, wantRestore: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var deleted, restored bool
			api := &fakeProductAPI{
				getFunc: func(_ context.Context, id int64) (*model.Product, error) {
					return &model.Product{ID: id, Active: tt.active}, nil
				},
				deleteFunc:  func(context.Context, int64) error { deleted = true; return nil },
				restoreFunc: func(context.Context, int64) error { restored = true; return nil },
			}
			svc := NewProductService(ProductServiceOptions{API: api})

			active, err := svc.Toggle(context.Background(), 3)

			require.NoError(t, err)
			assert.Equal(t, tt.wantActive, active)
			assert.Equal(t, tt.wantDelete, deleted)
			assert.Equal(t, tt.wantRestore, restored)
		})
	}
}

func TestProductService_Search(t *testing.T) {
	api := &fakeProductAPI{
		searchFunc: func(_ context.Context, name string) ([]model.Product, error) {
			assert.Equal(t, "lamp", name)
			return []model.Product{
				{ID: 1, Category: "Home"},
				{ID: 2, Category: "Office"},
			}, nil
		},
		semanticSearchFunc: func(_ context.Context, q string) ([]model.Product, error) {
			return []model.Product{{ID: 9, Name: q}}, nil
		},
		byCategoryFunc: func(_ context.Context, c string) ([]model.Product, error) {
			return []model.Product{{ID: 5, Category: c}}, nil
		},
	}
	svc := NewProductService(ProductServiceOptions{API: api})
	ctx := context.Background()

	items, err := svc.Search(ctx, " lamp ", SearchOptions{Category: "home"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(1), items[0].ID)

	items, err = svc.Search(ctx, "something cozy", SearchOptions{Semantic: true})
	require.NoError(t, err)
	assert.Equal(t, int64(9), items[0].ID)

	items, err = svc.Search(ctx, "", SearchOptions{Category: "Books"})
	require.NoError(t, err)
	assert.Equal(t, "Books", items[0].Category)

	_, err = svc.Search(ctx, "  ", SearchOptions{})
	require.Error(t, err)
	assert.Equal(t, "query", apperrors.GetField(err))
}

func TestProductService_PriceRangeAndAvailable(t *testing.T) {
	svc := NewProductService(ProductServiceOptions{API: &fakeProductAPI{}})
	ctx := context.Background()

	_, err := svc.PriceRange(ctx, 10, 5)
	require.Error(t, err)

	_, err = svc.PriceRange(ctx, 0, 5)
	require.NoError(t, err)

	_, err = svc.Available(ctx, -1)
	require.Error(t, err)
	assert.Equal(t, "minStock", apperrors.GetField(err))
}

func TestProductService_Categories(t *testing.T) {
	t.Run("merged with defaults", func(t *testing.T) {
		api := &fakeProductAPI{
			categoriesFunc: func(context.Context) ([]string, error) {
				return []string{"Garden", model.DefaultCategories[0]}, nil
			},
		}
		svc := NewProductService(ProductServiceOptions{API: api})

		got := svc.Categories(context.Background())

		assert.Contains(t, got, "Garden")
		assert.Len(t, got, len(model.DefaultCategories)+1)
	})

	t.Run("falls back on error", func(t *testing.T) {
		api := &fakeProductAPI{
			categoriesFunc: func(context.Context) ([]string, error) { return nil, errors.New("down") },
		}
		svc := NewProductService(ProductServiceOptions{API: api})

		assert.Equal(t, model.DefaultCategories, svc.Categories(context.Background()))
	})
}
