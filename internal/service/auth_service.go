package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

const minPasswordLength = 8

// AuthService coordinates registration, login and identity resolution.
type AuthService struct {
	users       repository.UserRepository
	tokenMgr    *auth.TokenManager
	bcryptCost  int
	adminEmails map[string]bool
	logger      *zap.Logger
	now         func() time.Time
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo repository.UserRepository
	Logger   *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	admins := make(map[string]bool, len(cfg.AdminEmails))
	for _, email := range cfg.AdminEmails {
		admins[domain.NormalizeEmail(email)] = true
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:       deps.UserRepo,
		tokenMgr:    auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		bcryptCost:  cfg.BcryptCost,
		adminEmails: admins,
		logger:      logger,
		now:         time.Now,
	}
}

// Session is an issued access token.
type Session struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// Register creates a local account and signs it in.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*Session, error) {
	email = domain.NormalizeEmail(email)
	name = strings.TrimSpace(name)
	details := map[string]any{}
	if !validEmail(email) {
		details["email"] = "invalid"
	}
	if len(password) < minPasswordLength {
		details["password"] = "at least 8 characters"
	}
	if len([]rune(name)) > maxDisplayNameLength {
		details["name"] = "too long"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid registration", details)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", nil)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, storeError(err, "user", email)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := s.newUser(uuid.NewString(), email, name)
	user.PasswordHash = hash
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("email already registered", nil)
		}
		return nil, storeError(err, "user", user.ID)
	}
	return s.issue(user)
}

// Login verifies a local password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, storeError(err, "user", email)
	}
	if user.PasswordHash == "" || auth.ComparePassword(user.PasswordHash, password) != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	return s.issue(user)
}

// ResolveIdentity maps a verified token onto a user, provisioning the user on
// first sight when the token carries an email.
func (s *AuthService) ResolveIdentity(ctx context.Context, identity *domain.Identity) (*domain.User, error) {
	if identity == nil || identity.Subject == "" {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	user, err := s.users.GetByID(ctx, identity.Subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, storeError(err, "user", identity.Subject)
	}

	email := domain.NormalizeEmail(identity.Email)
	if email == "" {
		return nil, apperrors.NewUnauthorized("unknown user")
	}
	user = s.newUser(identity.Subject, email, identity.Name)
	if err := s.users.Create(ctx, user); err != nil {
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, storeError(err, "user", identity.Subject)
		}
		// Lost a race with a concurrent first request, or the email belongs to
		// another account.
		existing, getErr := s.users.GetByID(ctx, identity.Subject)
		if getErr != nil {
			return nil, apperrors.NewUnauthorized("identity conflicts with an existing account")
		}
		return existing, nil
	}
	s.logger.Info("provisioned user", zap.String("user_id", user.ID), zap.Bool("admin", user.IsAdmin))
	return user, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) newUser(id, email, name string) *domain.User {
	name = strings.TrimSpace(name)
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}
	now := s.now().UTC()
	return &domain.User{
		ID:          id,
		Email:       email,
		DisplayName: name,
		IsAdmin:     s.adminEmails[email],
		TicketIDs:   []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (s *AuthService) issue(user *domain.User) (*Session, error) {
	token, exp, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &Session{User: user, Token: token, ExpiresAt: exp}, nil
}
