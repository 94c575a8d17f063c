package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/target/catalog-admin/config"
	"github.com/target/catalog-admin/internal/adapters/authroles"
	"github.com/target/catalog-admin/internal/apiclient"
	"github.com/target/catalog-admin/internal/ports"
	"github.com/target/catalog-admin/internal/service"
	"github.com/target/catalog-admin/internal/session"
)

// AppOptions configures NewApp.
type AppOptions struct {
	Config config.AppConfig
	Logger *slog.Logger
	// KV overrides the configured storage backend.
	KV ports.KVStore
	// Transport overrides the base HTTP transport.
	Transport http.RoundTripper
}

// App holds the wired session store, API client and services.
type App struct {
	Config    config.AppConfig
	Logger    *slog.Logger
	Session   *session.Store
	Client    *apiclient.Client
	Auth      ports.Authenticator
	Products  *service.ProductService
	Users     *service.UserService
	Dashboard *service.DashboardService

	storage *Storage
}

// NewApp opens storage, restores the persisted session and wires services.
// A session that cannot be restored starts signed out; only storage that
// cannot be opened at all is an error.
func NewApp(ctx context.Context, opts AppOptions) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := opts.Config

	storage := &Storage{KV: opts.KV}
	if storage.KV == nil {
		var err error
		storage, err = OpenStorage(ctx, StorageConfig{
			Storage:  cfg.Storage,
			Postgres: cfg.Postgres,
			Redis:    cfg.Redis,
			Logger:   logger,
		})
		if err != nil {
			return nil, fmt.Errorf("open storage: %w", err)
		}
	}

	store := session.NewStore(session.StoreOptions{
		KV:     storage.KV,
		Roles:  authroles.NewRoleMatcher(cfg.Auth.AdminRoles),
		Logger: logger,
	})
	if err := store.Restore(ctx); err != nil {
		logger.WarnContext(ctx, "starting signed out", "error", err)
	}

	client, err := apiclient.New(apiclient.Options{
		BaseURL:   cfg.API.URL,
		Timeout:   cfg.API.Timeout,
		UserAgent: cfg.API.UserAgent,
		Store:     store,
		Base:      opts.Transport,
		Logger:    logger,
	})
	if err != nil {
		return nil, errors.Join(fmt.Errorf("create api client: %w", err), storage.Close())
	}

	return &App{
		Config:  cfg,
		Logger:  logger,
		Session: store,
		Client:  client,
		Auth: service.NewAuthService(service.AuthServiceOptions{
			API:      client.Auth,
			Sessions: store,
			Logger:   logger,
		}),
		Products: service.NewProductService(service.ProductServiceOptions{
			API:             client.Products,
			DefaultPageSize: cfg.API.DefaultPageSize,
			Logger:          logger,
		}),
		Users: service.NewUserService(service.UserServiceOptions{
			API:             client.Users,
			Sessions:        store,
			DefaultPageSize: cfg.API.DefaultPageSize,
			Logger:          logger,
		}),
		Dashboard: service.NewDashboardService(service.DashboardServiceOptions{
			Products: client.Products,
			Users:    client.Users,
			Sessions: store,
			Logger:   logger,
		}),
		storage: storage,
	}, nil
}

// Close releases storage connections.
func (a *App) Close() error {
	if a == nil || a.storage == nil {
		return nil
	}
	return a.storage.Close()
}
