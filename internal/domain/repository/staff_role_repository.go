package repository

import "context"

// StaffRoleRepository keeps the set of Discord roles treated as staff.
type StaffRoleRepository interface {
	IsStaffRole(ctx context.Context, discordRoleID uint64) (bool, error)
	StaffRoles(ctx context.Context) ([]uint64, error)
	// StaffRolesContains reports whether any of the given roles is a staff role.
	StaffRolesContains(ctx context.Context, discordRoleIDs []uint64) (bool, error)
	// SetStaffRole is idempotent.
	SetStaffRole(ctx context.Context, discordRoleID uint64) error
	UnsetStaffRole(ctx context.Context, discordRoleID uint64) error
}
