package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/classora/classora-auth/internal/config"
	"github.com/classora/classora-auth/internal/domain"
	"github.com/classora/classora-auth/internal/repository"
	"github.com/classora/classora-auth/internal/token"
)

// AuthService implements registration, credential verification, session-token
// issuance, and password change for school tenants.
type AuthService struct {
	users  repository.UserRepository
	tokens *token.Generator
	cfg    config.Config
	logger *zap.Logger
	tracer trace.Tracer
}

func NewAuthService(users repository.UserRepository, tokens *token.Generator, cfg config.Config, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		cfg:    cfg,
		logger: logger,
		tracer: otel.Tracer("classora-auth/service"),
	}
}

// RegisterInput carries the registration payload. Role may be empty.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
	TenantID string
}

// UpdateDetailsInput carries the mutable profile fields. Nil means unchanged.
type UpdateDetailsInput struct {
	Name  *string
	Email *string
}

// UserProfile is the sanitized account view returned to clients. The password
// digest never appears here.
type UserProfile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	TenantID  string    `json:"tenantId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Register creates a user and issues a session token for it.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (string, error) {
	ctx, span := s.startSpan(ctx, "AuthService.Register")
	defer span.End()

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return "", newValidationError("Please provide a name")
	}

	email := strings.TrimSpace(in.Email)
	if !domain.ValidEmail(email) {
		return "", newValidationError("Please provide a valid email")
	}

	if len(in.Password) < domain.MinPasswordLength {
		return "", newValidationError(fmt.Sprintf("Password must be at least %d characters", domain.MinPasswordLength))
	}

	role := domain.DefaultRole
	if trimmed := strings.TrimSpace(in.Role); trimmed != "" {
		role = domain.Role(trimmed)
		if !role.Valid() {
			return "", newValidationError(fmt.Sprintf("Role '%s' is not a valid role", trimmed))
		}
	}

	tenantID := strings.TrimSpace(in.TenantID)
	if tenantID == "" {
		return "", newValidationError("Please provide a tenant id")
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("hash password: %w", err)
	}

	created, err := s.users.Create(ctx, domain.User{
		TenantID:     tenantID,
		Name:         name,
		Email:        email,
		Role:         role,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return "", newValidationError("Email already registered")
		}
		span.RecordError(err)
		return "", fmt.Errorf("create user: %w", err)
	}

	signed, err := s.issueToken(created)
	if err != nil {
		span.RecordError(err)
		return "", err
	}

	s.audit("auth.register.success", "tenant_id", created.TenantID, "user_id", created.ID, "role", string(created.Role))
	return signed, nil
}

// Login verifies credentials and issues a session token. The empty-field
// check runs before any store access, and unknown-email and wrong-password
// failures share one error value.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	ctx, span := s.startSpan(ctx, "AuthService.Login")
	defer span.End()

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", newValidationError("Please provide an email and password")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			span.RecordError(err)
		}
		return "", errInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", errInvalidCredentials
	}

	signed, err := s.issueToken(user)
	if err != nil {
		span.RecordError(err)
		return "", err
	}

	s.audit("auth.login.success", "tenant_id", user.TenantID, "user_id", user.ID)
	return signed, nil
}

// UpdateDetails changes name and/or email of the acting user. Other fields
// are not reachable through this operation.
func (s *AuthService) UpdateDetails(ctx context.Context, userID string, in UpdateDetailsInput) (UserProfile, error) {
	ctx, span := s.startSpan(ctx, "AuthService.UpdateDetails")
	defer span.End()

	current, err := s.users.GetByID(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return UserProfile{}, errNotAuthorized
	}

	name := current.Name
	if in.Name != nil {
		name = strings.TrimSpace(*in.Name)
		if name == "" {
			return UserProfile{}, newValidationError("Please provide a name")
		}
	}

	email := current.Email
	if in.Email != nil {
		email = strings.TrimSpace(*in.Email)
		if !domain.ValidEmail(email) {
			return UserProfile{}, newValidationError("Please provide a valid email")
		}
	}

	updated, err := s.users.UpdateDetails(ctx, userID, name, email)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return UserProfile{}, newValidationError("Email already registered")
		}
		span.RecordError(err)
		return UserProfile{}, fmt.Errorf("update details: %w", err)
	}

	s.audit("auth.update_details.success", "tenant_id", updated.TenantID, "user_id", updated.ID)
	return profileOf(updated), nil
}

// UpdatePassword verifies the current password, stores a fresh digest, and
// issues a new session token. Unlike login, the failure message here may be
// specific: the caller is already authenticated.
func (s *AuthService) UpdatePassword(ctx context.Context, userID, currentPassword, newPassword string) (string, error) {
	ctx, span := s.startSpan(ctx, "AuthService.UpdatePassword")
	defer span.End()

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return "", errNotAuthorized
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)) != nil {
		return "", newAuthenticationError("Current password is incorrect")
	}

	if len(newPassword) < domain.MinPasswordLength {
		return "", newValidationError(fmt.Sprintf("Password must be at least %d characters", domain.MinPasswordLength))
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("update password: %w", err)
	}

	user.PasswordHash = hash
	signed, err := s.issueToken(user)
	if err != nil {
		span.RecordError(err)
		return "", err
	}

	s.audit("auth.update_password.success", "tenant_id", user.TenantID, "user_id", user.ID)
	return signed, nil
}

// Authenticate verifies a raw session token and resolves the acting user.
// Every failure, including a token whose subject no longer exists, collapses
// into the same generic not-authorized error.
func (s *AuthService) Authenticate(ctx context.Context, raw string) (domain.User, error) {
	ctx, span := s.startSpan(ctx, "AuthService.Authenticate")
	defer span.End()

	claims, _, err := s.tokens.Validate(raw)
	if err != nil {
		return domain.User{}, errNotAuthorized
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			span.RecordError(err)
		}
		return domain.User{}, errNotAuthorized
	}
	return user, nil
}

// CurrentUser returns the sanitized profile of the acting user.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (UserProfile, error) {
	ctx, span := s.startSpan(ctx, "AuthService.CurrentUser")
	defer span.End()

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return UserProfile{}, errNotAuthorized
	}
	return profileOf(user), nil
}

func (s *AuthService) issueToken(user domain.User) (string, error) {
	signed, err := s.tokens.Sign(user.ID, token.SessionClaims{
		Name:     user.Name,
		Role:     string(user.Role),
		TenantID: user.TenantID,
	})
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

func (s *AuthService) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name)
}

func (s *AuthService) audit(event string, kv ...any) {
	if s.logger == nil {
		return
	}
	s.logger.Sugar().Infow(event, kv...)
}

func hashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func profileOf(user domain.User) UserProfile {
	return UserProfile{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      string(user.Role),
		TenantID:  user.TenantID,
		CreatedAt: user.CreatedAt,
	}
}
