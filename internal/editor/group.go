package editor

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/oksasatya/cipher/internal/domain/entity"
	"github.com/oksasatya/cipher/pkg/friendcode"
	"github.com/oksasatya/cipher/pkg/validation"
)

const (
	TextMaxLen = 1024
	CodeMaxLen = 32
)

// FieldSpec describes one input of a sub-form.
type FieldSpec struct {
	Field       entity.Field
	Label       string
	Placeholder string
	// Paragraph asks the UI for a multi-line input.
	Paragraph bool
	MaxLen    int
	// Tag is a validator tag applied to non-blank input.
	Tag string
	// Canonicalize rewrites valid input before it is stored.
	Canonicalize func(string) (string, error)
}

// Group is a disjoint set of fields edited through one sub-form.
type Group struct {
	ID     string
	Label  string
	Fields []FieldSpec
}

func (g Group) Has(k entity.Field) bool {
	for _, f := range g.Fields {
		if f.Field == k {
			return true
		}
	}
	return false
}

// Prefill returns the draft's current values for the group's fields.
func (g Group) Prefill(draft entity.ProfileFields) map[entity.Field]string {
	out := make(map[entity.Field]string, len(g.Fields))
	for _, f := range g.Fields {
		if v := draft.Get(f.Field); v != nil {
			out[f.Field] = *v
		}
	}
	return out
}

// Apply validates values and returns draft with the group's fields replaced.
// Blank values clear a field. On any failure draft is returned unchanged
// together with a *ValidationError.
func (g Group) Apply(v *validator.Validate, draft entity.ProfileFields, values map[entity.Field]string) (entity.ProfileFields, error) {
	out := draft.Clone()
	var errs []FieldError
	for _, f := range g.Fields {
		raw := strings.TrimSpace(values[f.Field])
		if raw == "" {
			out.Set(f.Field, nil)
			continue
		}
		if err := v.Var(raw, f.tag()); err != nil {
			for _, msg := range validation.Messages(err) {
				errs = append(errs, FieldError{Field: f.Field, Label: f.Label, Message: msg})
			}
			continue
		}
		if f.Canonicalize != nil {
			canon, err := f.Canonicalize(raw)
			if err != nil {
				errs = append(errs, FieldError{Field: f.Field, Label: f.Label, Message: err.Error()})
				continue
			}
			raw = canon
		}
		out.Set(f.Field, &raw)
	}
	if len(errs) > 0 {
		return draft, &ValidationError{Fields: errs}
	}
	return out, nil
}

func (f FieldSpec) tag() string {
	tags := []string{}
	if f.MaxLen > 0 {
		tags = append(tags, "max="+strconv.Itoa(f.MaxLen))
	}
	if f.Tag != "" {
		tags = append(tags, f.Tag)
	}
	if len(tags) == 0 {
		return "omitempty"
	}
	return strings.Join(tags, ",")
}

func text(k entity.Field, label, placeholder string, paragraph bool) FieldSpec {
	return FieldSpec{Field: k, Label: label, Placeholder: placeholder, Paragraph: paragraph, MaxLen: TextMaxLen}
}

var (
	PokemonGroup = Group{
		ID:    "pokemon",
		Label: "Edit Pokémon Info",
		Fields: []FieldSpec{
			text(entity.FieldTrainerClass, "Trainer Class", "Ace Trainer", false),
			text(entity.FieldNature, "Nature", "Jolly", false),
			text(entity.FieldPartnerPokemon, "Partner Pokémon", "Pikachu", false),
			text(entity.FieldStartingRegion, "Starting Region", "Kanto", false),
		},
	}

	PersonalGroup = Group{
		ID:    "personal",
		Label: "Edit Personal Info",
		Fields: []FieldSpec{
			text(entity.FieldFavouriteFood, "Favourite Food", "Ramen", false),
			text(entity.FieldLikes, "Likes", "Shiny hunting", true),
			text(entity.FieldQuotes, "Quotes", "Gotta catch 'em all!", true),
		},
	}

	CodesGroup = Group{
		ID:    "codes",
		Label: "Edit Friend Codes",
		Fields: []FieldSpec{
			{
				Field: entity.FieldPokemonGoCode, Label: "Pokémon Go Friend Code", Placeholder: "1234 5678 9012",
				MaxLen: CodeMaxLen, Tag: validation.TagPokemonGo, Canonicalize: friendcode.ParsePokemonGo,
			},
			{
				Field: entity.FieldPokemonPocketCode, Label: "Pokémon TCG Pocket Friend Code", Placeholder: "1234 5678 9012 3456",
				MaxLen: CodeMaxLen, Tag: validation.TagPokemonPocket, Canonicalize: friendcode.ParsePokemonPocket,
			},
			{
				Field: entity.FieldSwitchCode, Label: "Switch Friend Code", Placeholder: "SW-1234-5678-9012",
				MaxLen: CodeMaxLen, Tag: validation.TagSwitch, Canonicalize: friendcode.ParseSwitch,
			},
		},
	}

	MediaGroup = Group{
		ID:    "media",
		Label: "Edit Images",
		Fields: []FieldSpec{
			{Field: entity.FieldThumbnailURL, Label: "Thumbnail URL", Placeholder: "https://", MaxLen: TextMaxLen, Tag: "webimage"},
			{Field: entity.FieldImageURL, Label: "Image URL", Placeholder: "https://", MaxLen: TextMaxLen, Tag: "webimage"},
		},
	}
)

// ProfileGroups are the sub-forms of the profile editor.
func ProfileGroups() []Group {
	return []Group{PokemonGroup, PersonalGroup, CodesGroup, MediaGroup}
}

// IdentityGroups are the sub-forms of the friend code editor.
func IdentityGroups() []Group {
	return []Group{CodesGroup}
}

func findGroup(groups []Group, id string) (Group, bool) {
	for _, g := range groups {
		if g.ID == id {
			return g, true
		}
	}
	return Group{}, false
}
