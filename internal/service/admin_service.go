package service

import (
	"context"
	"errors"

	"github.com/stratushr/stratus-backend/internal/model"
	"github.com/stratushr/stratus-backend/internal/repository"
)

// AdminService handles back-office user and role business logic.
type AdminService struct {
	adminRepo *repository.AdminRepository
	roleRepo  *repository.RoleRepository
	auth      *AuthService
}

// NewAdminService creates a new AdminService.
func NewAdminService(adminRepo *repository.AdminRepository, roleRepo *repository.RoleRepository, auth *AuthService) *AdminService {
	return &AdminService{adminRepo: adminRepo, roleRepo: roleRepo, auth: auth}
}

// GetByEmail retrieves an admin by their email.
func (s *AdminService) GetByEmail(ctx context.Context, email string) (*model.Admin, error) {
	return s.adminRepo.GetByEmail(ctx, email)
}

// GetByID retrieves an admin by ID.
func (s *AdminService) GetByID(ctx context.Context, id int) (*model.Admin, error) {
	return s.adminRepo.GetByID(ctx, id)
}

// List retrieves all admins.
func (s *AdminService) List(ctx context.Context) ([]model.Admin, error) {
	admins, err := s.adminRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if admins == nil {
		admins = []model.Admin{}
	}
	return admins, nil
}

// Create inserts a new admin with a hashed password.
func (s *AdminService) Create(ctx context.Context, admin *model.Admin, password string) error {
	hashed, err := s.auth.HashPassword(password)
	if err != nil {
		return err
	}
	admin.PasswordHash = hashed
	return s.adminRepo.Create(ctx, admin)
}

// Update modifies an admin's details.
func (s *AdminService) Update(ctx context.Context, admin *model.Admin) error {
	return s.adminRepo.Update(ctx, admin)
}

// Delete removes an admin by ID.
func (s *AdminService) Delete(ctx context.Context, id int) error {
	return s.adminRepo.Delete(ctx, id)
}

// GetPermissions retrieves the permission codes of an admin's role.
func (s *AdminService) GetPermissions(ctx context.Context, roleID int) ([]string, error) {
	return s.roleRepo.GetPermissionsByRoleID(ctx, roleID)
}

// ListRoles retrieves all roles with their permissions.
func (s *AdminService) ListRoles(ctx context.Context) ([]model.RoleWithPermissions, error) {
	return s.roleRepo.ListRolesWithPermissions(ctx)
}

// GetRoleByID retrieves a specific role and its permissions.
func (s *AdminService) GetRoleByID(ctx context.Context, id int) (*model.RoleWithPermissions, error) {
	return s.roleRepo.GetRoleByID(ctx, id)
}

// CreateRole creates a new role and assigns its permissions.
func (s *AdminService) CreateRole(ctx context.Context, name string, permissions []string) (*model.RoleWithPermissions, error) {
	if name == "" {
		return nil, errors.New("role name cannot be empty")
	}

	id, err := s.roleRepo.CreateRole(ctx, name)
	if err != nil {
		return nil, err
	}

	if len(permissions) > 0 {
		if err := s.roleRepo.AssignPermissionsToRole(ctx, id, permissions); err != nil {
			_ = s.roleRepo.DeleteRole(ctx, id)
			return nil, err
		}
	}

	return s.roleRepo.GetRoleByID(ctx, id)
}

// UpdateRole replaces a role's name and permission set. Role 1 is the
// built-in superadmin and is immutable.
func (s *AdminService) UpdateRole(ctx context.Context, id int, name string, permissions []string) (*model.RoleWithPermissions, error) {
	if id == 1 {
		return nil, errors.New("cannot update the built-in superadmin role")
	}
	if name == "" {
		return nil, errors.New("role name cannot be empty")
	}

	if err := s.roleRepo.UpdateRole(ctx, id, name); err != nil {
		return nil, err
	}

	if err := s.roleRepo.DeleteAllPermissionsFromRole(ctx, id); err != nil {
		return nil, err
	}
	if len(permissions) > 0 {
		if err := s.roleRepo.AssignPermissionsToRole(ctx, id, permissions); err != nil {
			return nil, err
		}
	}

	return s.roleRepo.GetRoleByID(ctx, id)
}

// DeleteRole deletes a role. Admins still holding the role block deletion
// through the foreign key.
func (s *AdminService) DeleteRole(ctx context.Context, id int) error {
	if id == 1 {
		return errors.New("cannot delete the built-in superadmin role")
	}
	return s.roleRepo.DeleteRole(ctx, id)
}

// AllPermissions retrieves all available system permission codes.
func (s *AdminService) AllPermissions() []string {
	perms := make([]string, len(model.AllPermissions))
	for i, p := range model.AllPermissions {
		perms[i] = string(p)
	}
	return perms
}
