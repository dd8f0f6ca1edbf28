package entity

// Field names one optional text attribute of a profile. The value doubles as
// the column name in every backend.
type Field string

const (
	FieldThumbnailURL      Field = "thumbnail_url"
	FieldImageURL          Field = "image_url"
	FieldTrainerClass      Field = "trainer_class"
	FieldNature            Field = "nature"
	FieldPartnerPokemon    Field = "partner_pokemon"
	FieldStartingRegion    Field = "starting_region"
	FieldFavouriteFood     Field = "favourite_food"
	FieldLikes             Field = "likes"
	FieldQuotes            Field = "quotes"
	FieldPokemonGoCode     Field = "pokemon_go_code"
	FieldPokemonPocketCode Field = "pokemon_pocket_code"
	FieldSwitchCode        Field = "switch_code"
)

// ProfileFieldOrder lists every field in storage order.
var ProfileFieldOrder = []Field{
	FieldThumbnailURL,
	FieldImageURL,
	FieldTrainerClass,
	FieldNature,
	FieldPartnerPokemon,
	FieldStartingRegion,
	FieldFavouriteFood,
	FieldLikes,
	FieldQuotes,
	FieldPokemonGoCode,
	FieldPokemonPocketCode,
	FieldSwitchCode,
}

// ProfileFields is the set of optional attributes of a profile version.
// A nil pointer means the field is not set.
type ProfileFields struct {
	ThumbnailURL *string
	ImageURL     *string

	TrainerClass   *string
	Nature         *string
	PartnerPokemon *string
	StartingRegion *string
	FavouriteFood  *string
	Likes          *string
	Quotes         *string

	PokemonGoCode     *string
	PokemonPocketCode *string
	SwitchCode        *string
}

func (f *ProfileFields) ref(k Field) **string {
	switch k {
	case FieldThumbnailURL:
		return &f.ThumbnailURL
	case FieldImageURL:
		return &f.ImageURL
	case FieldTrainerClass:
		return &f.TrainerClass
	case FieldNature:
		return &f.Nature
	case FieldPartnerPokemon:
		return &f.PartnerPokemon
	case FieldStartingRegion:
		return &f.StartingRegion
	case FieldFavouriteFood:
		return &f.FavouriteFood
	case FieldLikes:
		return &f.Likes
	case FieldQuotes:
		return &f.Quotes
	case FieldPokemonGoCode:
		return &f.PokemonGoCode
	case FieldPokemonPocketCode:
		return &f.PokemonPocketCode
	case FieldSwitchCode:
		return &f.SwitchCode
	}
	return nil
}

// Get returns the value of k, or nil when unset or unknown.
func (f ProfileFields) Get(k Field) *string {
	p := f.ref(k)
	if p == nil {
		return nil
	}
	return *p
}

// Set stores a copy of v under k. Unknown keys are ignored.
func (f *ProfileFields) Set(k Field, v *string) {
	if p := f.ref(k); p != nil {
		*p = cloneString(v)
	}
}

// Clone returns a deep copy.
func (f ProfileFields) Clone() ProfileFields {
	var out ProfileFields
	for _, k := range ProfileFieldOrder {
		out.Set(k, f.Get(k))
	}
	return out
}

// IsEmpty reports whether no field is set.
func (f ProfileFields) IsEmpty() bool {
	for _, k := range ProfileFieldOrder {
		if f.Get(k) != nil {
			return false
		}
	}
	return true
}

// Equal compares field values, not pointers.
func (f ProfileFields) Equal(o ProfileFields) bool {
	for _, k := range ProfileFieldOrder {
		a, b := f.Get(k), o.Get(k)
		if (a == nil) != (b == nil) {
			return false
		}
		if a != nil && *a != *b {
			return false
		}
	}
	return true
}

// Values returns pointers in storage order, ready to be used as query args.
func (f ProfileFields) Values() []any {
	out := make([]any, 0, len(ProfileFieldOrder))
	for _, k := range ProfileFieldOrder {
		out = append(out, f.Get(k))
	}
	return out
}

// ScanTargets returns scan destinations in storage order.
func (f *ProfileFields) ScanTargets() []any {
	out := make([]any, 0, len(ProfileFieldOrder))
	for _, k := range ProfileFieldOrder {
		out = append(out, f.ref(k))
	}
	return out
}

// String returns a pointer to a copy of s.
func String(s string) *string {
	return &s
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
