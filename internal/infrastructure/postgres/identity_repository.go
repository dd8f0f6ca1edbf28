package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/cipher/internal/domain/entity"
)

const identityColumns = `id, discord_user_id, pokemon_go_code, pokemon_pocket_code, switch_code`

func scanIdentity(row pgx.Row) (*entity.Identity, error) {
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
	i, err := scanIdentity(r.q.QueryRow(ctx, `SELECT `+identityColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, backendErr("get identity", err)
	}
	return i, nil
}

func (r *Repository) IdentityByDiscordID(ctx context.Context, discordUserID uint64) (*entity.Identity, error) {
	i, err := scanIdentity(r.q.QueryRow(ctx, `
		SELECT `+identityColumns+`
		FROM users
		WHERE discord_user_id = $1
	`, int64(discordUserID)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, backendErr("get identity by discord id", err)
	}
	return i, nil
}

func (r *Repository) InsertIdentity(ctx context.Context, in entity.NewIdentity) (*entity.Identity, error) {
	i, err := scanIdentity(r.q.QueryRow(ctx, `
		INSERT INTO users (discord_user_id, pokemon_go_code, pokemon_pocket_code, switch_code)
		VALUES ($1, $2, $3, $4)
		RETURNING `+identityColumns,
		int64(in.DiscordUserID), in.PokemonGoCode, in.PokemonPocketCode, in.SwitchCode))
	if err != nil {
		return nil, backendErr("insert identity", err)
	}
	return i, nil
}

func (r *Repository) ReplaceIdentity(ctx context.Context, in entity.Identity) (*entity.Identity, error) {
	var previous *entity.Identity
	err := r.inTx(ctx, func(tx *Repository) error {
		p, err := scanIdentity(tx.q.QueryRow(ctx, `SELECT `+identityColumns+` FROM users WHERE id = $1 FOR UPDATE`, in.ID))
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		if _, err := tx.q.Exec(ctx, `
			UPDATE users
			SET pokemon_go_code = $1, pokemon_pocket_code = $2, switch_code = $3
			WHERE id = $4
		`, in.PokemonGoCode, in.PokemonPocketCode, in.SwitchCode, in.ID); err != nil {
			return err
		}
		previous = p
		return nil
	})
	if err != nil {
		return nil, backendErr("replace identity", err)
	}
	return previous, nil
}
