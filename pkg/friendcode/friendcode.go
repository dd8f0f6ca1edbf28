// Package friendcode parses and canonicalizes the three friend code formats
// users can attach to their identity.
package friendcode

import (
	"fmt"
	"strings"
)

// Kind identifies a friend code format.
type Kind string

const (
	PokemonGo     Kind = "pokemon_go"
	PokemonPocket Kind = "pokemon_pocket"
	Switch        Kind = "switch"
)

const groupLen = 4

func (k Kind) label() string {
	switch k {
	case PokemonGo:
		return "Pokémon Go"
	case PokemonPocket:
		return "Pokémon TCG Pocket"
	case Switch:
		return "switch"
	default:
		return string(k)
	}
}

// InvalidError reports input that does not match a format.
type InvalidError struct {
	Kind  Kind
	Input string
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("`%s` is not a valid %s friend code.", e.Input, e.Kind.label())
}

// ParsePokemonGo accepts three groups of four digits, each optionally
// separated by a dash or space, and returns them joined by single spaces.
func ParsePokemonGo(code string) (string, error) {
	groups, ok := scanGroups([]rune(code), 3, false)
	if !ok {
		return "", &InvalidError{Kind: PokemonGo, Input: code}
	}
	return strings.Join(groups, " "), nil
}

// ParsePokemonPocket is ParsePokemonGo with four groups.
func ParsePokemonPocket(code string) (string, error) {
	groups, ok := scanGroups([]rune(code), 4, false)
	if !ok {
		return "", &InvalidError{Kind: PokemonPocket, Input: code}
	}
	return strings.Join(groups, " "), nil
}

// ParseSwitch accepts an optional case-insensitive "SW" prefix followed by
// three groups of four digits and returns "SW-xxxx-xxxx-xxxx".
func ParseSwitch(code string) (string, error) {
	rs := []rune(code)
	if len(rs) > 0 && (rs[0] == 'S' || rs[0] == 's') {
		if len(rs) < 2 || (rs[1] != 'W' && rs[1] != 'w') {
			return "", &InvalidError{Kind: Switch, Input: code}
		}
		rs = rs[2:]
	}
	groups, ok := scanGroups(rs, 3, true)
	if !ok {
		return "", &InvalidError{Kind: Switch, Input: code}
	}
	return "SW-" + strings.Join(groups, "-"), nil
}

// Parse dispatches on kind.
func Parse(kind Kind, code string) (string, error) {
	switch kind {
	case PokemonGo:
		return ParsePokemonGo(code)
	case PokemonPocket:
		return ParsePokemonPocket(code)
	case Switch:
		return ParseSwitch(code)
	default:
		return "", fmt.Errorf("friendcode: unknown kind %q", kind)
	}
}

// scanGroups reads n digit groups. A single '-' or ' ' may precede every
// group but the first, or every group when leadingSep is set. Any input
// left over fails the scan.
func scanGroups(rs []rune, n int, leadingSep bool) ([]string, bool) {
	groups := make([]string, 0, n)
	i := 0
	for g := 0; g < n; g++ {
		if g > 0 || leadingSep {
			if i >= len(rs) {
				return nil, false
			}
			if rs[i] == '-' || rs[i] == ' ' {
				i++
			}
		}
		if i+groupLen > len(rs) {
			return nil, false
		}
		for _, r := range rs[i : i+groupLen] {
			if r < '0' || r > '9' {
				return nil, false
			}
		}
		groups = append(groups, string(rs[i:i+groupLen]))
		i += groupLen
	}
	return groups, i == len(rs)
}
