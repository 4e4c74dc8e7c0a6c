package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/hash"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/sessions"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

type AuthService struct {
	Repo      *repo.GormRepo
	JWTSecret []byte
	TokenTTL  time.Duration
	Denylist  sessions.Denylist
}

type AuthResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

func (s *AuthService) Register(ctx context.Context, req transport.RegisterRequest) (*AuthResult, error) {
	name := strings.TrimSpace(req.FullName)
	if name == "" {
		name = strings.TrimSpace(req.Name)
	}
	email := normalizeEmail(req.Email)
	if name == "" || email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: name, email, and password are required", ErrValidation)
	}
	if len(s.JWTSecret) == 0 {
		return nil, fmt.Errorf("%w: authentication service misconfigured", ErrConfiguration)
	}

	user, err := createUser(ctx, s.Repo, name, email, req.Password, models.RoleCustomer)
	if err != nil {
		return nil, err
	}

	token, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}

func (s *AuthService) Login(ctx context.Context, req transport.LoginRequest) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}
	if len(s.JWTSecret) == 0 {
		return nil, fmt.Errorf("%w: authentication service misconfigured", ErrConfiguration)
	}

	user, err := s.Repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("login_failed", "reason", "unknown email")
			return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
		}
		return nil, dependency("find user", err)
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		l.Warn("login_failed", "reason", "wrong password", "user_id", user.ID)
		return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	}

	token, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}

func (s *AuthService) Me(ctx context.Context, caller Caller) (*models.User, error) {
	user, err := s.Repo.GetUser(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, caller.UserID)
		}
		return nil, dependency("get user", err)
	}
	return user, nil
}

// Logout revokes the presented token until it would have expired. Without a
// denylist tokens simply run out.
func (s *AuthService) Logout(ctx context.Context, claims *tokens.AccessClaims) error {
	if s.Denylist == nil || claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	if err := s.Denylist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return dependency("revoke token", err)
	}
	return nil
}

func (s *AuthService) issue(user *models.User) (string, error) {
	token, _, err := tokens.NewAccessToken(tokens.Identity{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Role:   user.Role,
	}, s.JWTSecret, s.TokenTTL)
	if err != nil {
		if errors.Is(err, tokens.ErrSecretMissing) {
			return "", fmt.Errorf("%w: authentication service misconfigured", ErrConfiguration)
		}
		return "", fmt.Errorf("%w: sign token: %w", ErrDependency, err)
	}
	return token, nil
}

func createUser(ctx context.Context, r *repo.GormRepo, name, email, password, role string) (*models.User, error) {
	taken, err := r.EmailTaken(ctx, email, 0)
	if err != nil {
		return nil, dependency("check email", err)
	}
	if taken {
		return nil, fmt.Errorf("%w: email already registered", ErrConflict)
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("%w: hash password: %w", ErrDependency, err)
	}

	user := &models.User{Name: name, Email: email, PasswordHash: pwHash, Role: role}
	if err := r.CreateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: email already registered", ErrConflict)
		}
		return nil, dependency("create user", err)
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
