package sqldb

import (
	"context"
	"database/sql"
	"errors"

	"github.com/oksasatya/cipher/internal/domain/entity"
)

const identityColumns = `id, discord_user_id, pokemon_go_code, pokemon_pocket_code, switch_code`

func scanIdentity(row scanner) (*entity.Identity, error) {
	var (
		i         entity.Identity
		discordID int64
	)
	if err := row.Scan(&i.ID, &discordID, &i.PokemonGoCode, &i.PokemonPocketCode, &i.SwitchCode); err != nil {
		return nil, err
	}
	i.DiscordUserID = uint64(discordID)
	return &i, nil
}

func (r *Repository) Identity(ctx context.Context, id int64) (*entity.Identity, error) {
	i, err := scanIdentity(r.q.QueryRowContext(ctx, `SELECT `+identityColumns+` FROM users WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, r.backendErr("get identity", err)
	}
	return i, nil
}

func (r *Repository) IdentityByDiscordID(ctx context.Context, discordUserID uint64) (*entity.Identity, error) {
	i, err := scanIdentity(r.q.QueryRowContext(ctx, `
		SELECT `+identityColumns+`
		FROM users
		WHERE discord_user_id = ?
	`, int64(discordUserID)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, r.backendErr("get identity by discord id", err)
	}
	return i, nil
}

func (r *Repository) InsertIdentity(ctx context.Context, in entity.NewIdentity) (*entity.Identity, error) {
	res, err := r.q.ExecContext(ctx, `
		INSERT INTO users (discord_user_id, pokemon_go_code, pokemon_pocket_code, switch_code)
		VALUES (?, ?, ?, ?)
	`, int64(in.DiscordUserID), in.PokemonGoCode, in.PokemonPocketCode, in.SwitchCode)
	if err != nil {
		return nil, r.backendErr("insert identity", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, r.backendErr("insert identity", err)
	}
	i, err := scanIdentity(r.q.QueryRowContext(ctx, `SELECT `+identityColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		return nil, r.backendErr("insert identity", err)
	}
	return i, nil
}

func (r *Repository) ReplaceIdentity(ctx context.Context, in entity.Identity) (*entity.Identity, error) {
	var previous *entity.Identity
	err := r.inTx(ctx, func(tx *Repository) error {
		p, err := scanIdentity(tx.q.QueryRowContext(ctx,
			`SELECT `+identityColumns+` FROM users WHERE id = ?`+r.dialect.LockSuffix, in.ID))
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		if _, err := tx.q.ExecContext(ctx, `
			UPDATE users
			SET pokemon_go_code = ?, pokemon_pocket_code = ?, switch_code = ?
			WHERE id = ?
		`, in.PokemonGoCode, in.PokemonPocketCode, in.SwitchCode, in.ID); err != nil {
			return err
		}
		previous = p
		return nil
	})
	if err != nil {
		return nil, r.backendErr("replace identity", err)
	}
	return previous, nil
}
