package application

import (
	"context"

	"github.com/oksasatya/cipher/internal/domain/repository"
)

// StaffService answers the staff-role membership test.
type StaffService struct {
	Provider repository.Provider
}

func NewStaffService(provider repository.Provider) *StaffService {
	return &StaffService{Provider: provider}
}

// IsStaff reports whether any of roleIDs is a staff role.
func (s *StaffService) IsStaff(ctx context.Context, roleIDs []uint64) (bool, error) {
	if len(roleIDs) == 0 {
		return false, nil
	}
	repo, err := s.Provider.Acquire(ctx)
	if err != nil {
		return false, err
	}
	defer repo.Release()
	return repo.StaffRolesContains(ctx, roleIDs)
}

func (s *StaffService) Grant(ctx context.Context, roleID uint64) error {
	repo, err := s.Provider.Acquire(ctx)
	if err != nil {
		return err
	}
	defer repo.Release()
	return repo.SetStaffRole(ctx, roleID)
}

func (s *StaffService) Revoke(ctx context.Context, roleID uint64) error {
	repo, err := s.Provider.Acquire(ctx)
	if err != nil {
		return err
	}
	defer repo.Release()
	return repo.UnsetStaffRole(ctx, roleID)
}

func (s *StaffService) Roles(ctx context.Context) ([]uint64, error) {
	repo, err := s.Provider.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer repo.Release()
	return repo.StaffRoles(ctx)
}
