package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/cipher/internal/domain/entity"
)

var (
	profileColumns = `id, user_id, ` + fieldColumns() + `, created_at, is_active`
	// same list qualified for joins with users
	joinedProfileColumns = `p.id, p.user_id, ` + qualify("p", entity.ProfileFieldOrder) + `, p.created_at, p.is_active`

	insertProfileSQL = `INSERT INTO profiles (user_id, ` + fieldColumns() + `, is_active)
		VALUES ($1, ` + placeholders(2, len(entity.ProfileFieldOrder)) + `, TRUE)`
)

var errNoProfile = errors.New("profile does not exist")

func qualify(alias string, fields []entity.Field) string {
	out := ""
	for i, f := range fields {
		if i > 0 {
			out += ", "
		}
		out += alias + "." + string(f)
	}
	return out
}

func scanProfile(row pgx.Row) (*entity.Profile, error) {
	var p entity.Profile
	dest := append([]any{&p.ID, &p.UserID}, p.ProfileFields.ScanTargets()...)
	dest = append(dest, &p.CreatedAt, &p.IsActive)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	p.CreatedAt = p.CreatedAt.UTC()
	return &p, nil
}

func (r *Repository) InsertProfile(ctx context.Context, in entity.NewProfile) (*entity.Profile, error) {
	var inserted *entity.Profile
	err := r.inTx(ctx, func(tx *Repository) error {
		if _, err := tx.q.Exec(ctx, `UPDATE profiles SET is_active = FALSE WHERE user_id = $1 AND is_active`, in.UserID); err != nil {
			return err
		}
		args := append([]any{in.UserID}, in.ProfileFields.Values()...)
		if _, err := tx.q.Exec(ctx, insertProfileSQL, args...); err != nil {
			return err
		}
		p, err := scanProfile(tx.q.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE user_id = $1 AND is_active`, in.UserID))
		if err != nil {
			return err
		}
		inserted = p
		return nil
	})
	if err != nil {
		return nil, backendErr("insert profile", err)
	}
	return inserted, nil
}

func (r *Repository) Profile(ctx context.Context, id int64) (*entity.Profile, error) {
	return r.oneProfile(ctx, "get profile", `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id)
}

func (r *Repository) ActiveProfile(ctx context.Context, userID int64) (*entity.Profile, error) {
	return r.oneProfile(ctx, "get active profile", `
		SELECT `+profileColumns+`
		FROM profiles
		WHERE user_id = $1 AND is_active
	`, userID)
}

func (r *Repository) ActiveProfileByDiscordID(ctx context.Context, discordUserID uint64) (*entity.Profile, error) {
	return r.oneProfile(ctx, "get active profile by discord id", `
		SELECT `+joinedProfileColumns+`
		FROM profiles p
		INNER JOIN users u ON u.id = p.user_id
		WHERE u.discord_user_id = $1 AND p.is_active
	`, int64(discordUserID))
}

func (r *Repository) ProfilesByUserID(ctx context.Context, userID int64) ([]entity.Profile, error) {
	return r.manyProfiles(ctx, "list profiles", `
		SELECT `+profileColumns+`
		FROM profiles
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`, userID)
}

func (r *Repository) ProfilesByDiscordID(ctx context.Context, discordUserID uint64) ([]entity.Profile, error) {
	return r.manyProfiles(ctx, "list profiles by discord id", `
		SELECT `+joinedProfileColumns+`
		FROM profiles p
		INNER JOIN users u ON u.id = p.user_id
		WHERE u.discord_user_id = $1
		ORDER BY p.created_at DESC, p.id DESC
	`, int64(discordUserID))
}

func (r *Repository) SetActiveProfile(ctx context.Context, userID, profileID int64) (bool, error) {
	err := r.inTx(ctx, func(tx *Repository) error {
		var id int64
		err := tx.q.QueryRow(ctx, `SELECT id FROM profiles WHERE id = $1 AND user_id = $2 FOR UPDATE`, profileID, userID).Scan(&id)
		if errors.Is(err, pgx.ErrNoRows) {
			return errNoProfile
		}
		if err != nil {
			return err
		}
		if _, err := tx.q.Exec(ctx, `
			UPDATE profiles SET is_active = FALSE
			WHERE user_id = $1 AND id <> $2 AND is_active
		`, userID, profileID); err != nil {
			return err
		}
		_, err = tx.q.Exec(ctx, `UPDATE profiles SET is_active = TRUE WHERE id = $1`, profileID)
		return err
	})
	if errors.Is(err, errNoProfile) {
		return false, nil
	}
	if err != nil {
		return false, backendErr("set active profile", err)
	}
	return true, nil
}

func (r *Repository) oneProfile(ctx context.Context, op, query string, args ...any) (*entity.Profile, error) {
	p, err := scanProfile(r.q.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, backendErr(op, err)
	}
	return p, nil
}

func (r *Repository) manyProfiles(ctx context.Context, op, query string, args ...any) ([]entity.Profile, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, backendErr(op, err)
	}
	defer rows.Close()

	out := []entity.Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, backendErr(op, err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, backendErr(op, err)
	}
	return out, nil
}
