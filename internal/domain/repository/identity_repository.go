package repository

import (
	"context"

	"github.com/oksasatya/cipher/internal/domain/entity"
)

// IdentityRepository defines the operations on registered users.
type IdentityRepository interface {
	Identity(ctx context.Context, id int64) (*entity.Identity, error)
	IdentityByDiscordID(ctx context.Context, discordUserID uint64) (*entity.Identity, error)
	// InsertIdentity fails with an error wrapping ErrConflict when the
	// Discord user id is already registered.
	InsertIdentity(ctx context.Context, in entity.NewIdentity) (*entity.Identity, error)
	// ReplaceIdentity overwrites the scalar fields of the identity with the
	// same id and returns the record as it was before. It returns nil without
	// writing anything when the identity does not exist.
	ReplaceIdentity(ctx context.Context, in entity.Identity) (*entity.Identity, error)
}
