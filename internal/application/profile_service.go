package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/cipher/internal/domain/entity"
	"github.com/oksasatya/cipher/internal/domain/repository"
	"github.com/oksasatya/cipher/internal/editor"
)

// ProfileView is a profile prepared for display. Code fields left unset on
// the snapshot fall back to the codes stored on the identity.
type ProfileView struct {
	DiscordUserID uint64
	// ProfileID is zero when the user only has identity codes.
	ProfileID int64
	Fields    entity.ProfileFields
	CreatedAt time.Time
	IsActive  bool
}

type ProfileService struct {
	Provider repository.Provider
	Logger   logrus.FieldLogger

	events      events
	sessionOpts []editor.Option
}

func NewProfileService(provider repository.Provider, publisher EventPublisher, logger logrus.FieldLogger, sessionOpts ...editor.Option) *ProfileService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ProfileService{
		Provider:    provider,
		Logger:      logger,
		events:      events{publisher: publisher, logger: logger, now: time.Now},
		sessionOpts: append([]editor.Option{editor.WithLogger(logger)}, sessionOpts...),
	}
}

// withRepo borrows one connection for the duration of fn.
func (s *ProfileService) withRepo(ctx context.Context, fn func(repo repository.Repository) error) error {
	repo, err := s.Provider.Acquire(ctx)
	if err != nil {
		return err
	}
	defer repo.Release()
	return fn(repo)
}

// GetProfileForDisplay returns nil when the user has neither a profile nor
// any friend codes.
func (s *ProfileService) GetProfileForDisplay(ctx context.Context, discordUserID uint64) (*ProfileView, error) {
	var view *ProfileView
	err := s.withRepo(ctx, func(repo repository.Repository) error {
		identity, err := repo.IdentityByDiscordID(ctx, discordUserID)
		if err != nil || identity == nil {
			return err
		}
		active, err := repo.ActiveProfile(ctx, identity.ID)
		if err != nil {
			return err
		}
		v := newView(discordUserID, active, identity)
		if v.ProfileID == 0 && v.Fields.IsEmpty() {
			return nil
		}
		view = &v
		return nil
	})
	return view, err
}

// ListProfileHistory returns every version newest first.
func (s *ProfileService) ListProfileHistory(ctx context.Context, discordUserID uint64) ([]ProfileView, error) {
	var views []ProfileView
	err := s.withRepo(ctx, func(repo repository.Repository) error {
		history, err := repo.ProfilesByDiscordID(ctx, discordUserID)
		if err != nil {
			return err
		}
		views = make([]ProfileView, 0, len(history))
		for i := range history {
			views = append(views, newView(discordUserID, &history[i], nil))
		}
		return nil
	})
	return views, err
}

// SetActiveVersion promotes snapshotID. It reports false when the user or
// the snapshot does not exist, or the snapshot belongs to someone else.
func (s *ProfileService) SetActiveVersion(ctx context.Context, discordUserID uint64, snapshotID int64) (bool, error) {
	var ok bool
	err := s.withRepo(ctx, func(repo repository.Repository) error {
		identity, err := repo.IdentityByDiscordID(ctx, discordUserID)
		if err != nil || identity == nil {
			return err
		}
		ok, err = repo.SetActiveProfile(ctx, identity.ID, snapshotID)
		return err
	})
	if err != nil {
		return false, err
	}
	if ok {
		s.Logger.WithFields(logrus.Fields{"discord_user_id": discordUserID, "profile_id": snapshotID}).Info("profile version activated")
		s.events.publish(ctx, EventVersionActivated, discordUserID, snapshotID)
	}
	return ok, nil
}

// OpenEditSession starts an editor over the profile of owner. Only actor
// may interact with it; actor differs from owner when staff edit someone
// else's profile.
func (s *ProfileService) OpenEditSession(owner, actor uint64, prompter editor.Prompter, opts ...editor.Option) *editor.Session {
	target := &profileTarget{svc: s, owner: owner}
	return editor.New(actor, target, prompter, append(append([]editor.Option{}, s.sessionOpts...), opts...)...)
}

// OpenCodesSession starts an editor over the friend codes stored on the
// identity of owner.
func (s *ProfileService) OpenCodesSession(owner, actor uint64, prompter editor.Prompter, opts ...editor.Option) *editor.Session {
	target := &identityTarget{svc: s, owner: owner}
	return editor.New(actor, target, prompter, append(append([]editor.Option{}, s.sessionOpts...), opts...)...)
}

// ensureIdentity finds or creates the identity of discordUserID. A
// concurrent insert by another session is resolved by reading its row.
func ensureIdentity(ctx context.Context, repo repository.Repository, in entity.NewIdentity) (*entity.Identity, bool, error) {
	identity, err := repo.IdentityByDiscordID(ctx, in.DiscordUserID)
	if err != nil || identity != nil {
		return identity, false, err
	}
	identity, err = repo.InsertIdentity(ctx, in)
	if repository.IsConflict(err) {
		identity, err = repo.IdentityByDiscordID(ctx, in.DiscordUserID)
		return identity, false, err
	}
	return identity, err == nil, err
}

func newView(discordUserID uint64, p *entity.Profile, identity *entity.Identity) ProfileView {
	v := ProfileView{DiscordUserID: discordUserID}
	if p != nil {
		v.ProfileID = p.ID
		v.Fields = p.Draft()
		v.CreatedAt = p.CreatedAt
		v.IsActive = p.IsActive
	}
	if identity != nil {
		codes := identity.CodeFields()
		for _, k := range []entity.Field{entity.FieldPokemonGoCode, entity.FieldPokemonPocketCode, entity.FieldSwitchCode} {
			if v.Fields.Get(k) == nil {
				v.Fields.Set(k, codes.Get(k))
			}
		}
	}
	return v
}
