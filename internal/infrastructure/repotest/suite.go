// Package repotest holds the behaviour every repository backend must share.
// Backends call Run from their own tests.
package repotest

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/cipher/internal/domain/entity"
	"github.com/oksasatya/cipher/internal/domain/repository"
)

var seq atomic.Uint64

// nextID returns a discord id unlikely to collide with rows left by earlier
// runs against a shared database.
func nextID() uint64 {
	return uint64(time.Now().UnixNano()/1000)*100 + seq.Add(1)%100
}

// Run exercises provider with the full conformance suite.
func Run(t *testing.T, provider repository.Provider) {
	cases := []struct {
		name string
		fn   func(t *testing.T, ctx context.Context, repo repository.Repository)
	}{
		{"AbsentLookups", testAbsentLookups},
		{"InsertIdentityConflict", testInsertIdentityConflict},
		{"ReplaceIdentityReturnsPrevious", testReplaceIdentity},
		{"InsertVersionKeepsOneActive", testInsertVersion},
		{"FieldsRoundTrip", testFieldsRoundTrip},
		{"HistoryNewestFirst", testHistory},
		{"PromoteMissingSnapshot", testPromoteMissing},
		{"PromoteSnapshot", testPromote},
		{"TransactionRollsBack", testTransactionRollback},
		{"NestedTransactionJoinsOuter", testNestedTransaction},
		{"StaffRoles", testStaffRoles},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			repo, err := provider.Acquire(ctx)
			require.NoError(t, err)
			t.Cleanup(repo.Release)
			tc.fn(t, ctx, repo)
		})
	}
}

func newIdentity(t *testing.T, ctx context.Context, repo repository.Repository) *entity.Identity {
	t.Helper()
	i, err := repo.InsertIdentity(ctx, entity.NewIdentity{DiscordUserID: nextID()})
	require.NoError(t, err)
	require.NotNil(t, i)
	return i
}

func activeIDs(t *testing.T, ctx context.Context, repo repository.Repository, userID int64) []int64 {
	t.Helper()
	history, err := repo.ProfilesByUserID(ctx, userID)
	require.NoError(t, err)
	var ids []int64
	for _, p := range history {
		if p.IsActive {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

func testAbsentLookups(t *testing.T, ctx context.Context, repo repository.Repository) {
	i, err := repo.Identity(ctx, -1)
	require.NoError(t, err)
	assert.Nil(t, i)

	i, err = repo.IdentityByDiscordID(ctx, nextID())
	require.NoError(t, err)
	assert.Nil(t, i)

	p, err := repo.Profile(ctx, -1)
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = repo.ActiveProfileByDiscordID(ctx, nextID())
	require.NoError(t, err)
	assert.Nil(t, p)

	history, err := repo.ProfilesByDiscordID(ctx, nextID())
	require.NoError(t, err)
	assert.Empty(t, history)

	prev, err := repo.ReplaceIdentity(ctx, entity.Identity{ID: -1})
	require.NoError(t, err)
	assert.Nil(t, prev)
}

func testInsertIdentityConflict(t *testing.T, ctx context.Context, repo repository.Repository) {
	id := nextID()
	first, err := repo.InsertIdentity(ctx, entity.NewIdentity{DiscordUserID: id, SwitchCode: entity.String("SW-1234-5678-9012")})
	require.NoError(t, err)
	assert.Equal(t, id, first.DiscordUserID)
	assert.Equal(t, "SW-1234-5678-9012", *first.SwitchCode)
	assert.Nil(t, first.PokemonGoCode)

	_, err = repo.InsertIdentity(ctx, entity.NewIdentity{DiscordUserID: id})
	require.Error(t, err)
	assert.True(t, repository.IsBackendError(err), "%v", err)
	assert.True(t, repository.IsConflict(err), "%v", err)

	found, err := repo.IdentityByDiscordID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, first, found)
}

func testReplaceIdentity(t *testing.T, ctx context.Context, repo repository.Repository) {
	i, err := repo.InsertIdentity(ctx, entity.NewIdentity{
		DiscordUserID: nextID(),
		PokemonGoCode: entity.String("1234 5678 9012"),
	})
	require.NoError(t, err)

	updated := *i
	updated.PokemonGoCode = nil
	updated.PokemonPocketCode = entity.String("1234 5678 9012 3456")

	prev, err := repo.ReplaceIdentity(ctx, updated)
	require.NoError(t, err)
	assert.Equal(t, i, prev)

	found, err := repo.Identity(ctx, i.ID)
	require.NoError(t, err)
	assert.Equal(t, &updated, found)
}

func testInsertVersion(t *testing.T, ctx context.Context, repo repository.Repository) {
	owner := newIdentity(t, ctx, repo)

	var last *entity.Profile
	for _, nature := range []string{"Adamant", "Bold", "Calm"} {
		p, err := repo.InsertProfile(ctx, entity.NewProfile{
			UserID:        owner.ID,
			ProfileFields: entity.ProfileFields{Nature: entity.String(nature)},
		})
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.True(t, p.IsActive)
		assert.Equal(t, owner.ID, p.UserID)
		assert.Equal(t, nature, *p.Nature)
		assert.False(t, p.CreatedAt.IsZero())
		assert.Equal(t, []int64{p.ID}, activeIDs(t, ctx, repo, owner.ID))
		last = p
	}

	active, err := repo.ActiveProfile(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, last.ID, active.ID)

	byDiscord, err := repo.ActiveProfileByDiscordID(ctx, owner.DiscordUserID)
	require.NoError(t, err)
	assert.Equal(t, last.ID, byDiscord.ID)
}

func testFieldsRoundTrip(t *testing.T, ctx context.Context, repo repository.Repository) {
	owner := newIdentity(t, ctx, repo)

	var fields entity.ProfileFields
	for _, k := range entity.ProfileFieldOrder {
		fields.Set(k, entity.String("value of "+string(k)))
	}
	fields.Set(entity.FieldQuotes, nil)

	p, err := repo.InsertProfile(ctx, entity.NewProfile{UserID: owner.ID, ProfileFields: fields})
	require.NoError(t, err)
	assert.True(t, fields.Equal(p.ProfileFields))

	got, err := repo.Profile(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, fields.Equal(got.ProfileFields))
	assert.Nil(t, got.Quotes)
	assert.Equal(t, p.CreatedAt.Unix(), got.CreatedAt.Unix())
}

func testHistory(t *testing.T, ctx context.Context, repo repository.Repository) {
	owner := newIdentity(t, ctx, repo)

	var inserted []int64
	for i := 0; i < 4; i++ {
		history, err := repo.ProfilesByUserID(ctx, owner.ID)
		require.NoError(t, err)
		require.Len(t, history, i)

		p, err := repo.InsertProfile(ctx, entity.NewProfile{UserID: owner.ID})
		require.NoError(t, err)
		inserted = append([]int64{p.ID}, inserted...)
	}

	history, err := repo.ProfilesByUserID(ctx, owner.ID)
	require.NoError(t, err)
	byDiscord, err := repo.ProfilesByDiscordID(ctx, owner.DiscordUserID)
	require.NoError(t, err)

	for _, list := range [][]entity.Profile{history, byDiscord} {
		ids := make([]int64, len(list))
		for i, p := range list {
			ids[i] = p.ID
			if i > 0 {
				assert.False(t, p.CreatedAt.After(list[i-1].CreatedAt))
			}
		}
		assert.Equal(t, inserted, ids)
	}
}

func testPromoteMissing(t *testing.T, ctx context.Context, repo repository.Repository) {
	owner := newIdentity(t, ctx, repo)
	other := newIdentity(t, ctx, repo)

	mine, err := repo.InsertProfile(ctx, entity.NewProfile{UserID: owner.ID})
	require.NoError(t, err)
	theirs, err := repo.InsertProfile(ctx, entity.NewProfile{UserID: other.ID})
	require.NoError(t, err)

	for _, id := range []int64{-1, theirs.ID} {
		ok, err := repo.SetActiveProfile(ctx, owner.ID, id)
		require.NoError(t, err)
		assert.False(t, ok)
	}

	assert.Equal(t, []int64{mine.ID}, activeIDs(t, ctx, repo, owner.ID))
	assert.Equal(t, []int64{theirs.ID}, activeIDs(t, ctx, repo, other.ID))
}

func testPromote(t *testing.T, ctx context.Context, repo repository.Repository) {
	owner := newIdentity(t, ctx, repo)

	first, err := repo.InsertProfile(ctx, entity.NewProfile{UserID: owner.ID})
	require.NoError(t, err)
	second, err := repo.InsertProfile(ctx, entity.NewProfile{UserID: owner.ID})
	require.NoError(t, err)

	ok, err := repo.SetActiveProfile(ctx, owner.ID, first.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []int64{first.ID}, activeIDs(t, ctx, repo, owner.ID))

	// promoting the active snapshot again is a no-op
	ok, err = repo.SetActiveProfile(ctx, owner.ID, first.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []int64{first.ID}, activeIDs(t, ctx, repo, owner.ID))

	history, err := repo.ProfilesByUserID(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)

	got, err := repo.Profile(ctx, second.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func testTransactionRollback(t *testing.T, ctx context.Context, repo repository.Repository) {
	discordID := nextID()
	boom := errors.New("boom")

	err := repo.WithinTransaction(ctx, func(tx repository.Repository) error {
		i, err := tx.InsertIdentity(ctx, entity.NewIdentity{DiscordUserID: discordID})
		if err != nil {
			return err
		}
		if _, err := tx.InsertProfile(ctx, entity.NewProfile{UserID: i.ID}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	i, err := repo.IdentityByDiscordID(ctx, discordID)
	require.NoError(t, err)
	assert.Nil(t, i)
}

func testNestedTransaction(t *testing.T, ctx context.Context, repo repository.Repository) {
	discordID := nextID()

	err := repo.WithinTransaction(ctx, func(tx repository.Repository) error {
		return tx.WithinTransaction(ctx, func(inner repository.Repository) error {
			i, err := inner.InsertIdentity(ctx, entity.NewIdentity{DiscordUserID: discordID})
			if err != nil {
				return err
			}
			_, err = inner.InsertProfile(ctx, entity.NewProfile{
				UserID:        i.ID,
				ProfileFields: entity.ProfileFields{Likes: entity.String("tea")},
			})
			return err
		})
	})
	require.NoError(t, err)

	p, err := repo.ActiveProfileByDiscordID(ctx, discordID)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "tea", *p.Likes)
}

func testStaffRoles(t *testing.T, ctx context.Context, repo repository.Repository) {
	role, other := nextID(), nextID()

	ok, err := repo.StaffRolesContains(ctx, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.SetStaffRole(ctx, role))
	require.NoError(t, repo.SetStaffRole(ctx, role))

	ok, err = repo.IsStaffRole(ctx, role)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.StaffRolesContains(ctx, []uint64{other, role})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.StaffRolesContains(ctx, []uint64{other})
	require.NoError(t, err)
	assert.False(t, ok)

	roles, err := repo.StaffRoles(ctx)
	require.NoError(t, err)
	count := 0
	for _, r := range roles {
		if r == role {
			count++
		}
	}
	assert.Equal(t, 1, count)

	require.NoError(t, repo.UnsetStaffRole(ctx, role))
	ok, err = repo.IsStaffRole(ctx, role)
	require.NoError(t, err)
	assert.False(t, ok)
}
