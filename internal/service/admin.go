package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/meethere/meethere-api/internal/domain"
	"github.com/meethere/meethere-api/internal/logging"
)

type AdminService struct {
	users adminUserRepository
}

func NewAdminService(users adminUserRepository) *AdminService {
	return &AdminService{users: users}
}

func (s *AdminService) ListUsers(ctx context.Context) ([]domain.UserStats, error) {
	stats, err := s.users.ListWithStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListUsers: %w", err)
	}
	return stats, nil
}

// DeleteUser removes a member account. Administrator accounts are never
// deleted.
func (s *AdminService) DeleteUser(ctx context.Context, id int64) error {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("DeleteUser: %w", err)
	}
	if u.IsAdmin {
		return fmt.Errorf("DeleteUser: %w", domain.ErrAdminProtected)
	}

	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("DeleteUser: %w", s.explainMissedDelete(ctx, id, err))
		}
		return fmt.Errorf("DeleteUser: %w", err)
	}

	logging.FromContext(ctx).Info("user deleted", "target_user_id", id)
	return nil
}

// explainMissedDelete tells a promotion that raced the delete apart from a
// row that is really gone.
func (s *AdminService) explainMissedDelete(ctx context.Context, id int64, deleteErr error) error {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return deleteErr
	}
	if u.IsAdmin {
		return domain.ErrAdminProtected
	}
	return deleteErr
}

func (s *AdminService) Promote(ctx context.Context, id int64) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("Promote: %w", err)
	}
	if u.IsAdmin {
		return nil, fmt.Errorf("Promote: %w", domain.ErrAlreadyAdmin)
	}

	if err := s.users.SetAdmin(ctx, id, true); err != nil {
		return nil, fmt.Errorf("Promote: %w", err)
	}
	u.IsAdmin = true

	logging.FromContext(ctx).Info("user promoted", "target_user_id", id)
	return u, nil
}
