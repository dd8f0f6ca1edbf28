package repository

import (
	"context"

	"github.com/oksasatya/cipher/internal/domain/entity"
)

// ProfileRepository stores the append-only version history of profiles.
// For every user at most one version is active.
type ProfileRepository interface {
	// InsertProfile deactivates every version of the user, inserts a new
	// active version and returns it, all in one transaction.
	InsertProfile(ctx context.Context, in entity.NewProfile) (*entity.Profile, error)
	Profile(ctx context.Context, id int64) (*entity.Profile, error)
	ActiveProfile(ctx context.Context, userID int64) (*entity.Profile, error)
	ActiveProfileByDiscordID(ctx context.Context, discordUserID uint64) (*entity.Profile, error)
	// ProfilesByUserID returns the history newest first.
	ProfilesByUserID(ctx context.Context, userID int64) ([]entity.Profile, error)
	ProfilesByDiscordID(ctx context.Context, discordUserID uint64) ([]entity.Profile, error)
	// SetActiveProfile makes profileID the only active version of userID.
	// It returns false and changes nothing when the user has no such version.
	SetActiveProfile(ctx context.Context, userID, profileID int64) (bool, error)
}
