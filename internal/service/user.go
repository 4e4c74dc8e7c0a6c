package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/hash"
)

type UserService struct {
	Repo *repo.GormRepo
}

func (s *UserService) List(ctx context.Context, caller Caller) ([]models.User, error) {
	if !caller.IsAdmin() {
		return nil, fmt.Errorf("%w: admin privileges are required", ErrForbidden)
	}
	users, err := s.Repo.ListUsers(ctx)
	if err != nil {
		return nil, dependency("list users", err)
	}
	return users, nil
}

func (s *UserService) Get(ctx context.Context, caller Caller, id uint) (*models.User, error) {
	if !caller.IsAdmin() && caller.UserID != id {
		return nil, fmt.Errorf("%w: access denied", ErrForbidden)
	}
	user, err := s.Repo.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, id)
		}
		return nil, dependency("get user", err)
	}
	return user, nil
}

func (s *UserService) Create(ctx context.Context, caller Caller, req transport.CreateUserRequest) (*models.User, error) {
	if !caller.IsAdmin() {
		return nil, fmt.Errorf("%w: admin privileges are required", ErrForbidden)
	}

	name := strings.TrimSpace(req.Name)
	email := normalizeEmail(req.Email)
	if name == "" || email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: name, email, and password are required", ErrValidation)
	}
	role := req.Role
	if role == "" {
		role = models.RoleCustomer
	}
	if !validRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}

	return createUser(ctx, s.Repo, name, email, req.Password, role)
}

// Update lets users edit themselves; only admins may edit others or change
// a role.
func (s *UserService) Update(ctx context.Context, caller Caller, id uint, req transport.PatchUserRequest) (*models.User, error) {
	if !caller.IsAdmin() && caller.UserID != id {
		return nil, fmt.Errorf("%w: access denied", ErrForbidden)
	}

	fields := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
		}
		fields["name"] = name
	}
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if email == "" {
			return nil, fmt.Errorf("%w: email cannot be empty", ErrValidation)
		}
		taken, err := s.Repo.EmailTaken(ctx, email, id)
		if err != nil {
			return nil, dependency("check email", err)
		}
		if taken {
			return nil, fmt.Errorf("%w: email already registered", ErrConflict)
		}
		fields["email"] = email
	}
	if req.Password != nil {
		if *req.Password == "" {
			return nil, fmt.Errorf("%w: password cannot be empty", ErrValidation)
		}
		pwHash, err := hash.HashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("%w: hash password: %w", ErrDependency, err)
		}
		fields["password"] = pwHash
	}
	if req.Role != nil {
		if !caller.IsAdmin() {
			return nil, fmt.Errorf("%w: only admins can change roles", ErrForbidden)
		}
		if !validRole(*req.Role) {
			return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, *req.Role)
		}
		fields["role"] = *req.Role
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no fields provided for update", ErrValidation)
	}

	user, err := s.Repo.UpdateUser(ctx, id, fields)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, id)
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: email already registered", ErrConflict)
		}
		return nil, dependency("update user", err)
	}
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, caller Caller, id uint) error {
	if !caller.IsAdmin() {
		return fmt.Errorf("%w: admin privileges are required", ErrForbidden)
	}
	if err := s.Repo.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: user %d", ErrNotFound, id)
		}
		return dependency("delete user", err)
	}
	return nil
}

func validRole(role string) bool {
	return role == models.RoleCustomer || role == models.RoleAdmin
}
