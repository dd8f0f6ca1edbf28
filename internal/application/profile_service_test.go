package application

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/cipher/config"
	"github.com/oksasatya/cipher/internal/domain/entity"
	"github.com/oksasatya/cipher/internal/domain/repository"
	"github.com/oksasatya/cipher/internal/editor"
	"github.com/oksasatya/cipher/internal/infrastructure/database"
)

const (
	alice uint64 = 1001
	bob   uint64 = 1002
)

func newProvider(t *testing.T) repository.Provider {
	t.Helper()
	logger, _ := test.NewNullLogger()
	provider, err := database.Open(context.Background(), &config.Config{
		DatabaseDialect:   "sqlite",
		DatabaseURL:       "file:" + filepath.Join(t.TempDir(), "cipher.db"),
		MigrationsEnabled: true,
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Close() })
	return provider
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []ProfileEvent
	err    error
}

func (p *recordingPublisher) PublishJSON(_ context.Context, body any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	var ev ProfileEvent
	if err := json.Unmarshal(b, &ev); err != nil {
		return err
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

// script replays choices and form results, then blocks until the wait
// times out.
type script struct {
	user  uint64
	steps []any
}

func (s *script) next(ctx context.Context) (any, error) {
	if len(s.steps) == 0 {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	v := s.steps[0]
	s.steps = s.steps[1:]
	return v, nil
}

func (s *script) Choose(ctx context.Context, _ editor.Menu) (editor.Choice, error) {
	v, err := s.next(ctx)
	if err != nil {
		return editor.Choice{}, err
	}
	c := v.(editor.Choice)
	c.UserID = s.user
	return c, nil
}

func (s *script) Form(ctx context.Context, _ editor.FormRequest) (editor.FormResult, error) {
	v, err := s.next(ctx)
	if err != nil {
		return editor.FormResult{}, err
	}
	return editor.FormResult{Submitted: true, UserID: s.user, Values: v.(map[entity.Field]string)}, nil
}

func (s *script) Finish(context.Context, editor.Outcome) error { return nil }

func pick(id string) editor.Choice { return editor.Choice{Kind: editor.ChooseGroup, GroupID: id} }

var saveChoice = editor.Choice{Kind: editor.ChooseSave}

func newService(t *testing.T) (*ProfileService, *recordingPublisher, repository.Provider) {
	provider := newProvider(t)
	pub := &recordingPublisher{}
	logger, _ := test.NewNullLogger()
	return NewProfileService(provider, pub, logger, editor.WithTimeout(time.Second)), pub, provider
}

func TestNewUserSavesCodesOnly(t *testing.T) {
	svc, pub, provider := newService(t)
	ctx := context.Background()

	prompt := &script{user: alice, steps: []any{
		pick("codes"),
		map[entity.Field]string{entity.FieldPokemonGoCode: "1234-5678-9012"},
		saveChoice,
	}}
	out, err := svc.OpenEditSession(alice, alice, prompt).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, editor.Committed, out.State)

	repo, err := provider.Acquire(ctx)
	require.NoError(t, err)
	defer repo.Release()

	history, err := repo.ProfilesByDiscordID(ctx, alice)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.True(t, history[0].IsActive)
	want := entity.ProfileFields{PokemonGoCode: entity.String("1234 5678 9012")}
	assert.True(t, want.Equal(history[0].ProfileFields), "got %+v", history[0].ProfileFields)

	assert.Equal(t, []string{EventVersionCreated}, pub.types())
	assert.Equal(t, "1001", pub.events[0].DiscordUserID)
	assert.Equal(t, history[0].ID, pub.events[0].ProfileID)
}

func TestEditTwoGroupsKeepsHistory(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	first := &script{user: alice, steps: []any{
		pick("pokemon"),
		map[entity.Field]string{entity.FieldNature: "Bold", entity.FieldTrainerClass: "Hiker"},
		saveChoice,
	}}
	_, err := svc.OpenEditSession(alice, alice, first).Run(ctx)
	require.NoError(t, err)
	before, err := svc.GetProfileForDisplay(ctx, alice)
	require.NoError(t, err)
	require.NotNil(t, before)

	second := &script{user: alice, steps: []any{
		pick("pokemon"),
		map[entity.Field]string{entity.FieldNature: "Calm", entity.FieldTrainerClass: "Hiker"},
		pick("personal"),
		map[entity.Field]string{entity.FieldLikes: "tea"},
		saveChoice,
	}}
	_, err = svc.OpenEditSession(alice, alice, second).Run(ctx)
	require.NoError(t, err)

	after, err := svc.GetProfileForDisplay(ctx, alice)
	require.NoError(t, err)
	assert.NotEqual(t, before.ProfileID, after.ProfileID)
	assert.Equal(t, "Calm", *after.Fields.Nature)
	assert.Equal(t, "Hiker", *after.Fields.TrainerClass)
	assert.Equal(t, "tea", *after.Fields.Likes)

	history, err := svc.ListProfileHistory(ctx, alice)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, after.ProfileID, history[0].ProfileID)
	assert.True(t, history[0].IsActive)
	assert.Equal(t, before.ProfileID, history[1].ProfileID)
	assert.False(t, history[1].IsActive)
	assert.Equal(t, "Bold", *history[1].Fields.Nature)
}

func TestTimeoutLeavesActiveSnapshot(t *testing.T) {
	svc, pub, _ := newService(t)
	ctx := context.Background()

	_, err := svc.OpenEditSession(alice, alice, &script{user: alice, steps: []any{
		pick("personal"),
		map[entity.Field]string{entity.FieldQuotes: "hi"},
		saveChoice,
	}}).Run(ctx)
	require.NoError(t, err)
	before, err := svc.GetProfileForDisplay(ctx, alice)
	require.NoError(t, err)

	prompt := &script{user: alice, steps: []any{
		pick("personal"),
		map[entity.Field]string{entity.FieldQuotes: "bye"},
	}}
	out, err := svc.OpenEditSession(alice, alice, prompt, editor.WithTimeout(20*time.Millisecond)).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, editor.ReasonTimeout, out.Reason)

	after, err := svc.GetProfileForDisplay(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	history, err := svc.ListProfileHistory(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, history, 1)
	assert.Len(t, pub.types(), 1)
}

func TestSetActiveVersion(t *testing.T) {
	svc, pub, _ := newService(t)
	ctx := context.Background()

	ok, err := svc.SetActiveVersion(ctx, alice, 1)
	require.NoError(t, err)
	assert.False(t, ok, "unknown user")

	for _, nature := range []string{"Bold", "Calm"} {
		_, err := svc.OpenEditSession(alice, alice, &script{user: alice, steps: []any{
			pick("pokemon"),
			map[entity.Field]string{entity.FieldNature: nature},
			saveChoice,
		}}).Run(ctx)
		require.NoError(t, err)
	}
	_, err = svc.OpenEditSession(bob, bob, &script{user: bob, steps: []any{
		pick("pokemon"),
		map[entity.Field]string{entity.FieldNature: "Hasty"},
		saveChoice,
	}}).Run(ctx)
	require.NoError(t, err)

	history, err := svc.ListProfileHistory(ctx, alice)
	require.NoError(t, err)
	require.Len(t, history, 2)
	oldest := history[1]

	bobs, err := svc.ListProfileHistory(ctx, bob)
	require.NoError(t, err)
	ok, err = svc.SetActiveVersion(ctx, alice, bobs[0].ProfileID)
	require.NoError(t, err)
	assert.False(t, ok, "foreign snapshot")

	ok, err = svc.SetActiveVersion(ctx, alice, oldest.ProfileID)
	require.NoError(t, err)
	assert.True(t, ok)

	view, err := svc.GetProfileForDisplay(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, oldest.ProfileID, view.ProfileID)
	assert.Equal(t, "Bold", *view.Fields.Nature)

	assert.Equal(t, []string{EventVersionCreated, EventVersionCreated, EventVersionCreated, EventVersionActivated}, pub.types())
}

func TestCodesSessionInsertsThenReplaces(t *testing.T) {
	svc, pub, provider := newService(t)
	ctx := context.Background()

	view, err := svc.GetProfileForDisplay(ctx, alice)
	require.NoError(t, err)
	assert.Nil(t, view)

	_, err = svc.OpenCodesSession(alice, alice, &script{user: alice, steps: []any{
		pick("codes"),
		map[entity.Field]string{entity.FieldSwitchCode: "1234 5678 9012"},
		saveChoice,
	}}).Run(ctx)
	require.NoError(t, err)

	view, err = svc.GetProfileForDisplay(ctx, alice)
	require.NoError(t, err)
	require.NotNil(t, view)
	assert.Zero(t, view.ProfileID)
	assert.Equal(t, "SW-1234-5678-9012", *view.Fields.SwitchCode)

	_, err = svc.OpenCodesSession(alice, alice, &script{user: alice, steps: []any{
		pick("codes"),
		map[entity.Field]string{entity.FieldPokemonGoCode: "111122223333"},
		saveChoice,
	}}).Run(ctx)
	require.NoError(t, err)

	repo, err := provider.Acquire(ctx)
	require.NoError(t, err)
	defer repo.Release()
	identity, err := repo.IdentityByDiscordID(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "1111 2222 3333", *identity.PokemonGoCode)
	assert.Nil(t, identity.SwitchCode)

	assert.Equal(t, []string{EventCodesUpdated, EventCodesUpdated}, pub.types())
}

func TestProfileCodesFallBackToIdentity(t *testing.T) {
	id := entity.Identity{ID: 1, DiscordUserID: alice, SwitchCode: entity.String("SW-1111-2222-3333"), PokemonGoCode: entity.String("1 1 1")}
	p := &entity.Profile{ID: 9, ProfileFields: entity.ProfileFields{PokemonGoCode: entity.String("1234 5678 9012")}}

	v := newView(alice, p, &id)
	assert.Equal(t, "1234 5678 9012", *v.Fields.PokemonGoCode)
	assert.Equal(t, "SW-1111-2222-3333", *v.Fields.SwitchCode)
	assert.Nil(t, v.Fields.PokemonPocketCode)
}

func TestPublishFailureIsNotFatal(t *testing.T) {
	provider := newProvider(t)
	logger, hook := test.NewNullLogger()
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := NewProfileService(provider, pub, logger, editor.WithTimeout(time.Second))

	out, err := svc.OpenEditSession(alice, alice, &script{user: alice, steps: []any{saveChoice}}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, editor.Committed, out.State)

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Message == "publish profile event failed" {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestStaffService(t *testing.T) {
	staff := NewStaffService(newProvider(t))
	ctx := context.Background()

	ok, err := staff.IsStaff(ctx, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, staff.Grant(ctx, 55))
	ok, err = staff.IsStaff(ctx, []uint64{1, 55})
	require.NoError(t, err)
	assert.True(t, ok)

	roles, err := staff.Roles(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uint64{55}, roles)

	require.NoError(t, staff.Revoke(ctx, 55))
	ok, err = staff.IsStaff(ctx, []uint64{55})
	require.NoError(t, err)
	assert.False(t, ok)
}
