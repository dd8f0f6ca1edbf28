package editor

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/cipher/internal/domain/entity"
)

const owner uint64 = 42

// scriptedPrompter replays steps in order. Once they run out it blocks until
// the wait times out.
type scriptedPrompter struct {
	steps    []any
	menus    []Menu
	forms    []FormRequest
	finished []Outcome
}

func (p *scriptedPrompter) next(ctx context.Context) (any, error) {
	if len(p.steps) == 0 {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	s := p.steps[0]
	p.steps = p.steps[1:]
	return s, nil
}

func (p *scriptedPrompter) Choose(ctx context.Context, menu Menu) (Choice, error) {
	p.menus = append(p.menus, menu)
	s, err := p.next(ctx)
	if err != nil {
		return Choice{}, err
	}
	c, ok := s.(Choice)
	if !ok {
		return Choice{}, fmt.Errorf("script expected a choice, got %T", s)
	}
	return c, nil
}

func (p *scriptedPrompter) Form(ctx context.Context, req FormRequest) (FormResult, error) {
	p.forms = append(p.forms, req)
	s, err := p.next(ctx)
	if err != nil {
		return FormResult{}, err
	}
	r, ok := s.(FormResult)
	if !ok {
		return FormResult{}, fmt.Errorf("script expected a form result, got %T", s)
	}
	return r, nil
}

func (p *scriptedPrompter) Finish(_ context.Context, o Outcome) error {
	p.finished = append(p.finished, o)
	return nil
}

type memTarget struct {
	groups    []Group
	loaded    entity.ProfileFields
	loadErr   error
	commitErr error
	commits   []entity.ProfileFields
}

func (m *memTarget) Groups() []Group { return m.groups }

func (m *memTarget) Load(context.Context) (entity.ProfileFields, error) {
	return m.loaded.Clone(), m.loadErr
}

func (m *memTarget) Commit(_ context.Context, draft entity.ProfileFields) error {
	if m.commitErr != nil {
		return m.commitErr
	}
	m.commits = append(m.commits, draft)
	return nil
}

func group(id string) Choice   { return Choice{Kind: ChooseGroup, GroupID: id, UserID: owner} }
func save() Choice              { return Choice{Kind: ChooseSave, UserID: owner} }
func cancelChoice() Choice      { return Choice{Kind: ChooseCancel, UserID: owner} }
func submit(values map[entity.Field]string) FormResult {
	return FormResult{Submitted: true, UserID: owner, Values: values}
}

func quietLogger() logrus.FieldLogger {
	l, _ := test.NewNullLogger()
	return l
}

func run(t *testing.T, target *memTarget, p *scriptedPrompter, opts ...Option) (Outcome, error) {
	t.Helper()
	opts = append([]Option{WithLogger(quietLogger()), WithTimeout(time.Second)}, opts...)
	return New(owner, target, p, opts...).Run(context.Background())
}

func TestSaveMergesTwoGroups(t *testing.T) {
	target := &memTarget{
		groups: ProfileGroups(),
		loaded: entity.ProfileFields{
			Nature:         entity.String("Bold"),
			StartingRegion: entity.String("Johto"),
			Likes:          entity.String("rain"),
			ImageURL:       entity.String("https://example.com/a.png"),
		},
	}
	p := &scriptedPrompter{steps: []any{
		group("pokemon"),
		submit(map[entity.Field]string{
			entity.FieldTrainerClass: " Ace Trainer ",
			entity.FieldNature:       "Calm",
		}),
		group("personal"),
		submit(map[entity.Field]string{
			entity.FieldFavouriteFood: "Ramen",
			entity.FieldLikes:         "",
			entity.FieldQuotes:        "Hello",
		}),
		save(),
	}}

	out, err := run(t, target, p)
	require.NoError(t, err)
	assert.Equal(t, Committed, out.State)
	assert.Equal(t, ReasonSaved, out.Reason)

	require.Len(t, target.commits, 1)
	got := target.commits[0]
	want := entity.ProfileFields{
		TrainerClass:  entity.String("Ace Trainer"),
		Nature:        entity.String("Calm"),
		FavouriteFood: entity.String("Ramen"),
		Quotes:        entity.String("Hello"),
		ImageURL:      entity.String("https://example.com/a.png"),
	}
	assert.True(t, want.Equal(got), "got %+v", got)

	require.Len(t, p.forms, 2)
	assert.Equal(t, map[entity.Field]string{
		entity.FieldNature:         "Bold",
		entity.FieldStartingRegion: "Johto",
	}, p.forms[0].Prefill)
	assert.Equal(t, map[entity.Field]string{entity.FieldLikes: "rain"}, p.forms[1].Prefill)

	require.Len(t, p.finished, 1)
	assert.Equal(t, Committed, p.finished[0].State)
}

func TestValidationFailureKeepsDraft(t *testing.T) {
	target := &memTarget{groups: ProfileGroups()}
	p := &scriptedPrompter{steps: []any{
		group("codes"),
		submit(map[entity.Field]string{
			entity.FieldPokemonGoCode: "1234 5678 901",
			entity.FieldSwitchCode:    "sw-1234-5678-9012",
		}),
		group("codes"),
		submit(map[entity.Field]string{
			entity.FieldPokemonGoCode: "1234-5678-9012",
			entity.FieldSwitchCode:    "sw-1234-5678-9012",
		}),
		save(),
	}}

	out, err := run(t, target, p)
	require.NoError(t, err)
	assert.Equal(t, Committed, out.State)

	require.Len(t, p.menus, 3)
	assert.Empty(t, p.menus[0].Errors)
	require.Len(t, p.menus[1].Errors, 1)
	assert.Equal(t, entity.FieldPokemonGoCode, p.menus[1].Errors[0].Field)
	assert.Equal(t, "`1234 5678 901` is not a valid Pokémon Go friend code.", p.menus[1].Errors[0].Message)
	assert.True(t, p.menus[1].Draft.IsEmpty(), "rejected input must not be merged")
	assert.Empty(t, p.menus[2].Errors)

	require.Len(t, target.commits, 1)
	assert.Equal(t, "1234 5678 9012", *target.commits[0].PokemonGoCode)
	assert.Equal(t, "SW-1234-5678-9012", *target.commits[0].SwitchCode)
	assert.Nil(t, target.commits[0].PokemonPocketCode)
}

func TestTimeoutAbandonsWithoutCommit(t *testing.T) {
	target := &memTarget{groups: ProfileGroups(), loaded: entity.ProfileFields{Likes: entity.String("rain")}}
	p := &scriptedPrompter{steps: []any{
		group("personal"),
		submit(map[entity.Field]string{entity.FieldLikes: "snow"}),
	}}

	out, err := run(t, target, p, WithTimeout(20*time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, Abandoned, out.State)
	assert.Equal(t, ReasonTimeout, out.Reason)
	assert.Empty(t, target.commits)
	require.Len(t, p.finished, 1)
	assert.Equal(t, ReasonTimeout, p.finished[0].Reason)
}

func TestTimeoutWhileFormOpen(t *testing.T) {
	target := &memTarget{groups: ProfileGroups()}
	p := &scriptedPrompter{steps: []any{group("media")}}

	out, err := run(t, target, p, WithTimeout(20*time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, ReasonTimeout, out.Reason)
	assert.Len(t, p.forms, 1)
}

func TestOtherUsersAreIgnored(t *testing.T) {
	const stranger uint64 = 7
	target := &memTarget{groups: ProfileGroups()}
	p := &scriptedPrompter{steps: []any{
		Choice{Kind: ChooseSave, UserID: stranger},
		group("personal"),
		FormResult{Submitted: false, UserID: stranger},
		FormResult{Submitted: true, UserID: stranger, Values: map[entity.Field]string{entity.FieldLikes: "spam"}},
		submit(map[entity.Field]string{entity.FieldLikes: "tea"}),
		Choice{Kind: ChooseCancel, UserID: stranger},
		save(),
	}}

	out, err := run(t, target, p)
	require.NoError(t, err)
	assert.Equal(t, Committed, out.State)
	require.Len(t, target.commits, 1)
	assert.Equal(t, "tea", *target.commits[0].Likes)
	assert.Len(t, p.forms, 3)
}

func TestCancel(t *testing.T) {
	target := &memTarget{groups: ProfileGroups()}
	p := &scriptedPrompter{steps: []any{
		group("personal"),
		submit(map[entity.Field]string{entity.FieldLikes: "tea"}),
		cancelChoice(),
	}}

	out, err := run(t, target, p)
	require.NoError(t, err)
	assert.Equal(t, Abandoned, out.State)
	assert.Equal(t, ReasonCancelled, out.Reason)
	assert.Equal(t, "tea", *out.Draft.Likes)
	assert.Empty(t, target.commits)
}

func TestDismissedFormReturnsToMenu(t *testing.T) {
	target := &memTarget{groups: ProfileGroups()}
	p := &scriptedPrompter{steps: []any{
		group("pokemon"),
		FormResult{Submitted: false, UserID: owner},
		group("unknown"),
		cancelChoice(),
	}}

	out, err := run(t, target, p)
	require.NoError(t, err)
	assert.Equal(t, ReasonCancelled, out.Reason)
	require.Len(t, p.menus, 3)
	assert.Empty(t, p.menus[1].Errors)
	require.Len(t, p.menus[2].Errors, 1)
	assert.Contains(t, p.menus[2].Errors[0].Message, "unknown")
}

func TestBackendErrorsAbandonAndPropagate(t *testing.T) {
	boom := errors.New("connection refused")

	out, err := run(t, &memTarget{groups: ProfileGroups(), loadErr: boom}, &scriptedPrompter{})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, Abandoned, out.State)
	assert.Equal(t, ReasonError, out.Reason)

	target := &memTarget{groups: ProfileGroups(), commitErr: boom}
	out, err = run(t, target, &scriptedPrompter{steps: []any{save()}})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, Abandoned, out.State)
	assert.Equal(t, ReasonError, out.Reason)
}

func TestParentContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := &scriptedPrompter{}
	s := New(owner, &memTarget{groups: ProfileGroups()}, p, WithLogger(quietLogger()))

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	out, err := s.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, Abandoned, out.State)
	assert.Equal(t, ReasonCancelled, out.Reason)
	assert.Equal(t, Abandoned, s.State())
}
