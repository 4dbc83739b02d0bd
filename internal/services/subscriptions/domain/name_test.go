package domain

import (
	"strings"
	"testing"

	perr "newsletter/internal/platform/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseName_Accepts(t *testing.T) {
	cases := map[string]string{
		"plain":               "Ursula Le Guin",
		"256 graphemes":       strings.Repeat("ё", 256),
		"combining sequences": strings.Repeat("e\u0301", 256),
		"emoji family":        strings.Repeat("👨‍👩‍👧", 256),
		"keeps whitespace":    "  Ursula  ",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := ParseName(raw)
			require.NoError(t, err)
			assert.Equal(t, raw, got.String())
		})
	}
}

func TestParseName_Rejects(t *testing.T) {
	cases := map[string]string{
		"empty":         "",
		"whitespace":    " \t\n ",
		"257 graphemes": strings.Repeat("a", 257),
		"invalid utf8":  "Ursula\xff",
		"nul byte":      "Ursula\x00Le Guin",
	}
	for _, c := range `/()"<>\{}` {
		cases["contains "+string(c)] = "Ursula" + string(c)
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseName(raw)
			require.Error(t, err)
			assert.True(t, perr.IsCode(err, perr.ErrorCodeValidation))
			e, _ := perr.As(err)
			assert.Equal(t, "invalid name", e.Message())
			assert.Equal(t, "name", e.Field())
		})
	}
}
