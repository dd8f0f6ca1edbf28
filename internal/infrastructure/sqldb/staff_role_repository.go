package sqldb

import "context"

func (r *Repository) IsStaffRole(ctx context.Context, discordRoleID uint64) (bool, error) {
	var n int
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM staff_roles WHERE discord_role_id = ?`, int64(discordRoleID)).Scan(&n)
	if err != nil {
		return false, r.backendErr("is staff role", err)
	}
	return n > 0, nil
}

func (r *Repository) StaffRoles(ctx context.Context) ([]uint64, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT discord_role_id FROM staff_roles ORDER BY id`)
	if err != nil {
		return nil, r.backendErr("list staff roles", err)
	}
	defer rows.Close()

	out := []uint64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, r.backendErr("list staff roles", err)
		}
		out = append(out, uint64(id))
	}
	if err := rows.Err(); err != nil {
		return nil, r.backendErr("list staff roles", err)
	}
	return out, nil
}

func (r *Repository) StaffRolesContains(ctx context.Context, discordRoleIDs []uint64) (bool, error) {
	if len(discordRoleIDs) == 0 {
		return false, nil
	}
	args := make([]any, len(discordRoleIDs))
	for i, id := range discordRoleIDs {
		args[i] = int64(id)
	}
	var n int
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM staff_roles WHERE discord_role_id IN (`+placeholders(len(args))+`)`,
		args...).Scan(&n)
	if err != nil {
		return false, r.backendErr("staff roles contains", err)
	}
	return n > 0, nil
}

func (r *Repository) SetStaffRole(ctx context.Context, discordRoleID uint64) error {
	_, err := r.q.ExecContext(ctx, r.dialect.InsertIgnore+` staff_roles (discord_role_id) VALUES (?)`, int64(discordRoleID))
	return r.backendErr("set staff role", err)
}

func (r *Repository) UnsetStaffRole(ctx context.Context, discordRoleID uint64) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM staff_roles WHERE discord_role_id = ?`, int64(discordRoleID))
	return r.backendErr("unset staff role", err)
}
