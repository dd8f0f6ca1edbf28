package postgres

import "context"

func (r *Repository) IsStaffRole(ctx context.Context, discordRoleID uint64) (bool, error) {
	var ok bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM staff_roles WHERE discord_role_id = $1)`, int64(discordRoleID)).Scan(&ok)
	if err != nil {
		return false, backendErr("is staff role", err)
	}
	return ok, nil
}

func (r *Repository) StaffRoles(ctx context.Context) ([]uint64, error) {
	rows, err := r.q.Query(ctx, `SELECT discord_role_id FROM staff_roles ORDER BY id`)
	if err != nil {
		return nil, backendErr("list staff roles", err)
	}
	defer rows.Close()

	out := []uint64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, backendErr("list staff roles", err)
		}
		out = append(out, uint64(id))
	}
	if err := rows.Err(); err != nil {
		return nil, backendErr("list staff roles", err)
	}
	return out, nil
}

func (r *Repository) StaffRolesContains(ctx context.Context, discordRoleIDs []uint64) (bool, error) {
	if len(discordRoleIDs) == 0 {
		return false, nil
	}
	ids := make([]int64, len(discordRoleIDs))
	for i, id := range discordRoleIDs {
		ids[i] = int64(id)
	}
	var ok bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM staff_roles WHERE discord_role_id = ANY($1))`, ids).Scan(&ok)
	if err != nil {
		return false, backendErr("staff roles contains", err)
	}
	return ok, nil
}

func (r *Repository) SetStaffRole(ctx context.Context, discordRoleID uint64) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO staff_roles (discord_role_id) VALUES ($1)
		ON CONFLICT (discord_role_id) DO NOTHING
	`, int64(discordRoleID))
	return backendErr("set staff role", err)
}

func (r *Repository) UnsetStaffRole(ctx context.Context, discordRoleID uint64) error {
	_, err := r.q.Exec(ctx, `DELETE FROM staff_roles WHERE discord_role_id = $1`, int64(discordRoleID))
	return backendErr("unset staff role", err)
}
