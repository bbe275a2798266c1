package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

const maxDisplayNameLength = 100

// UserService exposes profile and user administration operations.
type UserService struct {
	users repository.UserRepository
	tx    repository.TxManager
	after aftermath
}

// UserDependencies bundles collaborators for user service.
type UserDependencies struct {
	UserRepo repository.UserRepository
	Tx       repository.TxManager
	Activity ActivityRecorder
	Logger   *zap.Logger
}

// ProfileInput lists profile fields to change. An empty Organization clears it.
type ProfileInput struct {
	DisplayName  *string
	Organization *string
}

// NewUserService creates the service.
func NewUserService(deps UserDependencies) *UserService {
	return &UserService{
		users: deps.UserRepo,
		tx:    deps.Tx,
		after: newAftermath(deps.Activity, nil, nil, nil, nil, deps.Logger),
	}
}

// Me reloads the caller's record.
func (s *UserService) Me(ctx context.Context, actor *domain.User) (*domain.User, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, storeError(err, "user", actor.ID)
	}
	return user, nil
}

// UpdateProfile changes the caller's display name or organization.
func (s *UserService) UpdateProfile(ctx context.Context, actor *domain.User, input ProfileInput) (*domain.User, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if input.DisplayName == nil && input.Organization == nil {
		return nil, apperrors.NewValidationError("no fields to update", nil)
	}
	var name string
	if input.DisplayName != nil {
		name = strings.TrimSpace(*input.DisplayName)
		if name == "" || len([]rune(name)) > maxDisplayNameLength {
			return nil, apperrors.NewValidationError("invalid display name", map[string]any{
				"display_name": fmt.Sprintf("1 to %d characters", maxDisplayNameLength),
			})
		}
	}

	user, _, err := s.modify(ctx, actor.ID, func(user *domain.User) bool {
		if input.DisplayName != nil {
			user.DisplayName = name
		}
		if input.Organization != nil {
			if org := strings.TrimSpace(*input.Organization); org == "" {
				user.Organization = nil
			} else {
				user.Organization = &org
			}
		}
		return true
	})
	return user, err
}

// List searches users by email or display name. Admin only.
func (s *UserService) List(ctx context.Context, actor *domain.User, search string, page PageRequest) (Page[domain.User], error) {
	if err := requireAdmin(actor); err != nil {
		return Page[domain.User]{}, err
	}
	return fetchPage(page, func(limit, offset int) ([]domain.User, error) {
		items, err := s.users.List(ctx, repository.UserFilter{Search: search, Limit: limit, Offset: offset})
		if err != nil {
			return nil, storeError(err, "user", "list")
		}
		return items, nil
	})
}

// SetAdmin grants or revokes the admin flag. Admins cannot revoke their own.
func (s *UserService) SetAdmin(ctx context.Context, actor *domain.User, userID string, isAdmin bool) (*domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if userID == actor.ID && !isAdmin {
		return nil, apperrors.NewConflict("admins cannot revoke their own admin role", nil)
	}
	user, changed, err := s.modify(ctx, userID, func(user *domain.User) bool {
		if user.IsAdmin == isAdmin {
			return false
		}
		user.IsAdmin = isAdmin
		return true
	})
	if err != nil || !changed {
		return user, err
	}

	verb := "Revoked admin role from"
	if isAdmin {
		verb = "Granted admin role to"
	}
	s.after.record(ctx, domain.ActivityUserRoleChanged, fmt.Sprintf("%s %s", verb, user.Email), actor.ID, nil)
	return user, nil
}

// modify applies change to the user row locked for update and writes it back
// when change reports a difference.
func (s *UserService) modify(ctx context.Context, userID string, change func(user *domain.User) bool) (*domain.User, bool, error) {
	var (
		user    *domain.User
		changed bool
	)
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		if user, err = s.users.GetByIDForUpdate(ctx, userID); err != nil {
			return storeError(err, "user", userID)
		}
		if changed = change(user); !changed {
			return nil
		}
		user.UpdatedAt = s.after.timestamp()
		return storeError(s.users.Update(ctx, user), "user", user.ID)
	})
	if err != nil {
		return nil, false, err
	}
	return user, changed, nil
}
