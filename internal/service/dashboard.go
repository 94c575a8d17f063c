package service

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/target/catalog-admin/internal/domain/model"
)

// DashboardStats summarizes the catalog for the signed-in user.
type DashboardStats struct {
	TotalProducts  int   `json:"totalProducts"`
	ActiveProducts int   `json:"activeProducts"`
	Categories     int   `json:"categories"`
	ActiveUsers    int64 `json:"activeUsers"`
	// UsersIncluded is false when the caller is not an admin.
	UsersIncluded bool `json:"usersIncluded"`
}

// DashboardServiceOptions groups dependencies for DashboardService.
type DashboardServiceOptions struct {
	Products ProductAPI
	Users    UserAPI
	Sessions SessionManager
	Logger   *slog.Logger
}

// DashboardService gathers summary statistics concurrently.
type DashboardService struct {
	products ProductAPI
	users    UserAPI
	sessions SessionManager
	logger   *slog.Logger
}

// NewDashboardService constructs a new DashboardService.
func NewDashboardService(opts DashboardServiceOptions) *DashboardService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardService{
		products: opts.Products,
		users:    opts.Users,
		sessions: opts.Sessions,
		logger:   logger.With("component", "dashboard_service"),
	}
}

// Stats fetches products, categories and, for admins, the active user
// count in parallel. Any failure fails the whole call.
func (s *DashboardService) Stats(ctx context.Context) (DashboardStats, error) {
	var (
		products   []model.Product
		categories []string
		userCount  int64
	)
	includeUsers := s.sessions.IsAdmin()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = s.products.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = s.products.Categories(gctx)
		return err
	})
	if includeUsers {
		g.Go(func() error {
			var err error
			userCount, err = s.users.CountActive(gctx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.WarnContext(ctx, "dashboard fetch failed", "error", err)
		return DashboardStats{}, err
	}

	stats := DashboardStats{
		TotalProducts: len(products),
		Categories:    len(categories),
		ActiveUsers:   userCount,
		UsersIncluded: includeUsers,
	}
	for _, p := range products {
		if p.IsActive() {
			stats.ActiveProducts++
		}
	}
	return stats, nil
}
