package application

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/cipher/internal/domain/entity"
	"github.com/oksasatya/cipher/internal/domain/repository"
	"github.com/oksasatya/cipher/internal/editor"
)

// profileTarget edits the active profile version of owner. Each call
// borrows its own connection so none is held while the UI waits.
type profileTarget struct {
	svc   *ProfileService
	owner uint64

	committed *entity.Profile
}

func (t *profileTarget) Groups() []editor.Group { return editor.ProfileGroups() }

func (t *profileTarget) Load(ctx context.Context) (entity.ProfileFields, error) {
	var draft entity.ProfileFields
	err := t.svc.withRepo(ctx, func(repo repository.Repository) error {
		active, err := repo.ActiveProfileByDiscordID(ctx, t.owner)
		if err != nil {
			return err
		}
		if active != nil {
			draft = active.Draft()
		}
		return nil
	})
	return draft, err
}

func (t *profileTarget) Commit(ctx context.Context, draft entity.ProfileFields) error {
	err := t.svc.withRepo(ctx, func(repo repository.Repository) error {
		identity, created, err := ensureIdentity(ctx, repo, entity.NewIdentity{DiscordUserID: t.owner})
		if err != nil {
			return err
		}
		if created {
			t.svc.Logger.WithField("discord_user_id", t.owner).Info("identity created")
		}
		p, err := repo.InsertProfile(ctx, entity.NewProfile{UserID: identity.ID, ProfileFields: draft})
		if err != nil {
			return err
		}
		t.committed = p
		return nil
	})
	if err != nil {
		return err
	}
	t.svc.Logger.WithFields(logrus.Fields{
		"discord_user_id": t.owner,
		"profile_id":      t.committed.ID,
	}).Info("profile version created")
	t.svc.events.publish(ctx, EventVersionCreated, t.owner, t.committed.ID)
	return nil
}

// identityTarget edits the friend codes stored on the identity of owner.
type identityTarget struct {
	svc   *ProfileService
	owner uint64
}

func (t *identityTarget) Groups() []editor.Group { return editor.IdentityGroups() }

func (t *identityTarget) Load(ctx context.Context) (entity.ProfileFields, error) {
	var draft entity.ProfileFields
	err := t.svc.withRepo(ctx, func(repo repository.Repository) error {
		identity, err := repo.IdentityByDiscordID(ctx, t.owner)
		if err != nil {
			return err
		}
		if identity != nil {
			draft = identity.CodeFields()
		}
		return nil
	})
	return draft, err
}

func (t *identityTarget) Commit(ctx context.Context, draft entity.ProfileFields) error {
	err := t.svc.withRepo(ctx, func(repo repository.Repository) error {
		in := entity.NewIdentity{
			DiscordUserID:     t.owner,
			PokemonGoCode:     draft.PokemonGoCode,
			PokemonPocketCode: draft.PokemonPocketCode,
			SwitchCode:        draft.SwitchCode,
		}
		identity, created, err := ensureIdentity(ctx, repo, in)
		if err != nil || created {
			return err
		}
		previous, err := repo.ReplaceIdentity(ctx, identity.WithCodes(draft))
		if err != nil {
			return err
		}
		if previous != nil {
			t.svc.Logger.WithFields(logrus.Fields{
				"discord_user_id":         t.owner,
				"old_pokemon_go_code":     deref(previous.PokemonGoCode),
				"old_pokemon_pocket_code": deref(previous.PokemonPocketCode),
				"old_switch_code":         deref(previous.SwitchCode),
			}).Info("friend codes replaced")
		}
		return nil
	})
	if err != nil {
		return err
	}
	t.svc.events.publish(ctx, EventCodesUpdated, t.owner, 0)
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

var (
	_ editor.Target = (*profileTarget)(nil)
	_ editor.Target = (*identityTarget)(nil)
)
