package editor

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/cipher/internal/domain/entity"
	"github.com/oksasatya/cipher/pkg/validation"
)

func TestGroupsAreDisjoint(t *testing.T) {
	seen := map[entity.Field]string{}
	for _, g := range ProfileGroups() {
		assert.LessOrEqual(t, len(g.Fields), 5, "a modal holds at most five inputs")
		for _, f := range g.Fields {
			if prev, ok := seen[f.Field]; ok {
				t.Fatalf("%s is in both %s and %s", f.Field, prev, g.ID)
			}
			seen[f.Field] = g.ID
		}
	}
	assert.Len(t, seen, len(entity.ProfileFieldOrder))
}

func TestApplyClearsBlankFields(t *testing.T) {
	v := validation.New()
	draft := entity.ProfileFields{Likes: entity.String("rain"), Nature: entity.String("Bold")}

	got, err := PersonalGroup.Apply(v, draft, map[entity.Field]string{entity.FieldQuotes: "hi", entity.FieldLikes: "   "})
	require.NoError(t, err)
	assert.Nil(t, got.Likes)
	assert.Equal(t, "hi", *got.Quotes)
	assert.Equal(t, "Bold", *got.Nature)
	assert.Equal(t, "rain", *draft.Likes, "input draft is not modified")
}

func TestApplyRejectsInvalidInput(t *testing.T) {
	v := validation.New()
	draft := entity.ProfileFields{ThumbnailURL: entity.String("https://example.com/t.png")}

	got, err := MediaGroup.Apply(v, draft, map[entity.Field]string{
		entity.FieldThumbnailURL: "not a url",
		entity.FieldImageURL:     "https://example.com/i.png",
	})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, entity.FieldThumbnailURL, verr.Fields[0].Field)
	assert.Equal(t, "Thumbnail URL: must be a valid URL", verr.Fields[0].String())
	assert.True(t, draft.Equal(got))

	_, err = PokemonGroup.Apply(v, draft, map[entity.Field]string{entity.FieldNature: strings.Repeat("x", TextMaxLen+1)})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "must be at most 1024 characters long", verr.Fields[0].Message)
	assert.Contains(t, err.Error(), "Nature")
}

func TestApplyCanonicalizesCodes(t *testing.T) {
	got, err := CodesGroup.Apply(validation.New(), entity.ProfileFields{}, map[entity.Field]string{
		entity.FieldPokemonGoCode:     "1234-5678-9012",
		entity.FieldPokemonPocketCode: "1234567890123456",
		entity.FieldSwitchCode:        "123456789012",
	})
	require.NoError(t, err)
	assert.Equal(t, "1234 5678 9012", *got.PokemonGoCode)
	assert.Equal(t, "1234 5678 9012 3456", *got.PokemonPocketCode)
	assert.Equal(t, "SW-1234-5678-9012", *got.SwitchCode)
}

func TestIdentityGroupsOnlyEditCodes(t *testing.T) {
	groups := IdentityGroups()
	require.Len(t, groups, 1)
	assert.True(t, groups[0].Has(entity.FieldSwitchCode))
	assert.False(t, groups[0].Has(entity.FieldLikes))
}
