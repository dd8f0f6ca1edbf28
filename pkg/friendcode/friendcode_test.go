package friendcode

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePokemonGo(t *testing.T) {
	valid := map[string]string{
		"1234 5678 9012": "1234 5678 9012",
		"1234-5678-9012": "1234 5678 9012",
		"123456789012":   "1234 5678 9012",
		"1234-5678 9012": "1234 5678 9012",
	}
	for in, want := range valid {
		got, err := ParsePokemonGo(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{
		"",
		"1234 5678 901",
		"1234 5678 90121",
		"1234567890123",
		"1234  5678 9012",
		"abcd 5678 9012",
		" 1234 5678 9012",
		"1234 5678 9012 ",
	} {
		_, err := ParsePokemonGo(in)
		assert.Error(t, err, in)
	}
}

func TestParsePokemonPocket(t *testing.T) {
	got, err := ParsePokemonPocket("1234-5678-9012-3456")
	require.NoError(t, err)
	assert.Equal(t, "1234 5678 9012 3456", got)

	got, err = ParsePokemonPocket("1234567890123456")
	require.NoError(t, err)
	assert.Equal(t, "1234 5678 9012 3456", got)

	_, err = ParsePokemonPocket("1234 5678 9012")
	assert.Error(t, err)
	_, err = ParsePokemonPocket("1234 5678 9012 34567")
	assert.Error(t, err)
}

func TestParseSwitch(t *testing.T) {
	for _, in := range []string{
		"SW-1234-5678-9012",
		"sw-1234-5678-9012",
		"1234-5678-9012",
		"SW123456789012",
		"SW 1234 5678 9012",
		"sW-1234-5678-9012",
	} {
		got, err := ParseSwitch(in)
		require.NoError(t, err, in)
		assert.Equal(t, "SW-1234-5678-9012", got, in)
	}

	for _, in := range []string{"", "S-1234-5678-9012", "SX-1234-5678-9012", "SW-1234-5678-901", "SW-1234-5678-9012-", "\u017fW-1234-5678-9012"} {
		_, err := ParseSwitch(in)
		assert.Error(t, err, in)
	}
}

func TestInvalidErrorMessage(t *testing.T) {
	_, err := ParsePokemonGo("nope")
	var invalid *InvalidError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, PokemonGo, invalid.Kind)
	assert.Equal(t, "`nope` is not a valid Pokémon Go friend code.", err.Error())

	_, err = Parse(Switch, "x")
	assert.EqualError(t, err, "`x` is not a valid switch friend code.")

	_, err = Parse(Kind("other"), "x")
	assert.Error(t, err)
}
