package service

import (
	"context"
	"fmt"

	"jobboard/internal/authz"
	"jobboard/internal/listing"
	"jobboard/internal/middleware"
	"jobboard/internal/models"
	"jobboard/internal/repository"
)

// UserService backs the admin user management pages.
type UserService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *UserService) List(ctx context.Context, scope authz.Scope, f listing.UserFilter) (*listing.Result[models.User], error) {
	if err := RequireAdmin(scope); err != nil {
		return nil, err
	}
	return s.users.List(ctx, listing.BuildUserQuery(f))
}

// SetStatus activates or deactivates an account. Admins cannot deactivate
// themselves.
func (s *UserService) SetStatus(ctx context.Context, scope authz.Scope, userID uint, target string) error {
	if err := RequireAdmin(scope); err != nil {
		return err
	}
	status, ok := models.ParseUserStatus(target)
	if !ok {
		return models.NewValidationError(fmt.Sprintf("Invalid user status %q", target))
	}
	if userID == scope.UserID() && status != models.UserStatusActive {
		return models.NewValidationError("You cannot deactivate your own account")
	}
	if err := s.users.UpdateStatus(ctx, userID, status); err != nil {
		return err
	}
	middleware.Logger.InfoContext(ctx, "user status changed", "user_id", userID, "status", status, "by", scope.UserID())
	return nil
}
