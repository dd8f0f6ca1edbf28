package entity

// Identity is a registered Discord user.
// DiscordUserID is unique and never changes once the row exists; the
// friend code fields are replaced as a whole on every write.
type Identity struct {
	ID                int64
	DiscordUserID     uint64
	PokemonGoCode     *string
	PokemonPocketCode *string
	SwitchCode        *string
}

// NewIdentity holds the values of an identity that has not been stored yet.
type NewIdentity struct {
	DiscordUserID     uint64
	PokemonGoCode     *string
	PokemonPocketCode *string
	SwitchCode        *string
}

// CodeFields returns the identity codes as a field set so they can be edited
// with the same groups as a profile.
func (i Identity) CodeFields() ProfileFields {
	return ProfileFields{
		PokemonGoCode:     cloneString(i.PokemonGoCode),
		PokemonPocketCode: cloneString(i.PokemonPocketCode),
		SwitchCode:        cloneString(i.SwitchCode),
	}
}

// WithCodes returns a copy of the identity carrying the codes of f.
func (i Identity) WithCodes(f ProfileFields) Identity {
	i.PokemonGoCode = cloneString(f.PokemonGoCode)
	i.PokemonPocketCode = cloneString(f.PokemonPocketCode)
	i.SwitchCode = cloneString(f.SwitchCode)
	return i
}
