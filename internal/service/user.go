package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/target/catalog-admin/internal/domain/model"
	apperrors "github.com/target/catalog-admin/internal/errors"
	"github.com/target/catalog-admin/internal/validation"
)

// UserAPI is the subset of the user endpoints UserService needs.
type UserAPI interface {
	List(ctx context.Context) ([]model.User, error)
	Paginated(ctx context.Context, req model.PageRequest) (*model.Page[model.User], error)
	Get(ctx context.Context, id int64) (*model.User, error)
	Profile(ctx context.Context) (*model.User, error)
	Active(ctx context.Context) ([]model.User, error)
	Search(ctx context.Context, name string) ([]model.User, error)
	ByRole(ctx context.Context, role string) ([]model.User, error)
	CreatedBetween(ctx context.Context, start, end time.Time) ([]model.User, error)
	CountActive(ctx context.Context) (int64, error)
	Update(ctx context.Context, id int64, in model.UserUpdate) (*model.User, error)
	Deactivate(ctx context.Context, id int64) error
	Activate(ctx context.Context, id int64) error
}

// UserServiceOptions groups dependencies for UserService.
type UserServiceOptions struct {
	API             UserAPI
	Sessions        SessionManager
	DefaultPageSize int
	Logger          *slog.Logger
}

// UserService wraps the user endpoints. Administrative operations are
// refused locally when the session lacks an admin role.
type UserService struct {
	api      UserAPI
	sessions SessionManager
	pageSize int
	logger   *slog.Logger
}

var errAdminRequired = apperrors.Forbidden("Admin access required.")

// NewUserService constructs a new UserService.
func NewUserService(opts UserServiceOptions) *UserService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	size := opts.DefaultPageSize
	if size <= 0 {
		size = 20
	}
	return &UserService{
		api:      opts.API,
		sessions: opts.Sessions,
		pageSize: size,
		logger:   logger.With("component", "user_service"),
	}
}

// ListUsersOptions selects what List returns.
type ListUsersOptions struct {
	Page       int
	Size       int
	Sort       string
	ActiveOnly bool
	All        bool
}

// List returns users. Admin only.
func (s *UserService) List(ctx context.Context, opts ListUsersOptions) (*model.Page[model.User], error) {
	if err := s.requireAdmin(); err != nil {
		return nil, err
	}
	switch {
	case opts.ActiveOnly:
		return wholePage(s.api.Active(ctx))
	case opts.All:
		return wholePage(s.api.List(ctx))
	}
	size := opts.Size
	if size <= 0 {
		size = s.pageSize
	}
	return s.api.Paginated(ctx, model.PageRequest{Page: max(opts.Page, 0), Size: size, Sort: opts.Sort})
}

// Get returns one user. Admins may read anyone; others only themselves.
func (s *UserService) Get(ctx context.Context, id int64) (*model.User, error) {
	if !s.sessions.IsAdmin() && !s.isSelf(id) {
		return nil, errAdminRequired
	}
	return s.api.Get(ctx, id)
}

// Profile returns the caller's own account.
func (s *UserService) Profile(ctx context.Context) (*model.User, error) {
	return s.api.Profile(ctx)
}

// Search matches users by name. Admin only.
func (s *UserService) Search(ctx context.Context, name string) ([]model.User, error) {
	if err := s.requireAdmin(); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.ValidationField("name", "Search query is required")
	}
	return s.api.Search(ctx, name)
}

// ByRole returns users holding role. Admin only.
func (s *UserService) ByRole(ctx context.Context, role string) ([]model.User, error) {
	if err := s.requireAdmin(); err != nil {
		return nil, err
	}
	role = strings.TrimSpace(role)
	if role == "" {
		return nil, apperrors.ValidationField("role", "Role is required")
	}
	return s.api.ByRole(ctx, role)
}

// CreatedBetween returns users created in [start, end]. Admin only.
func (s *UserService) CreatedBetween(ctx context.Context, start, end time.Time) ([]model.User, error) {
	if err := s.requireAdmin(); err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, apperrors.ValidationField("endDate", "End date must not be before start date")
	}
	return s.api.CreatedBetween(ctx, start, end)
}

// CountActive returns the number of active users. Admin only.
func (s *UserService) CountActive(ctx context.Context) (int64, error) {
	if err := s.requireAdmin(); err != nil {
		return 0, err
	}
	return s.api.CountActive(ctx)
}

// SetActive activates or deactivates an account. Admin only.
func (s *UserService) SetActive(ctx context.Context, id int64, active bool) error {
	if err := s.requireAdmin(); err != nil {
		return err
	}
	var err error
	if active {
		err = s.api.Activate(ctx, id)
	} else {
		err = s.api.Deactivate(ctx, id)
	}
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "user status changed", "user_id", id, "active", active)
	return nil
}

// UpdateProfile updates the caller's own account and refreshes the cached
// identity. Roles the API does not echo back are kept.
func (s *UserService) UpdateProfile(ctx context.Context, in model.UserUpdate) (*model.User, error) {
	snap := s.sessions.Snapshot()
	if !snap.IsAuthenticated() {
		return nil, apperrors.Authentication("You are not logged in.")
	}
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	if errs := validation.Profile(in); len(errs) > 0 {
		return nil, apperrors.ValidationFields(errs)
	}

	updated, err := s.api.Update(ctx, snap.Identity.ID, in)
	if err != nil {
		return nil, err
	}

	identity := updated.Identity()
	if identity.ID == 0 {
		identity.ID = snap.Identity.ID
	}
	if len(identity.Roles) == 0 {
		identity.Roles = append([]string(nil), snap.Identity.Roles...)
	}
	if err := s.sessions.UpdateIdentity(ctx, identity); err != nil {
		s.logger.WarnContext(ctx, "profile saved but session identity not updated", "error", err)
	}
	return updated, nil
}

func (s *UserService) requireAdmin() error {
	if !s.sessions.IsAdmin() {
		return errAdminRequired
	}
	return nil
}

func (s *UserService) isSelf(id int64) bool {
	snap := s.sessions.Snapshot()
	return snap.Identity != nil && snap.Identity.ID == id
}
