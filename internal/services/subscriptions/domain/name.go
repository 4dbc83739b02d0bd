package domain

import (
	"strings"
	"unicode/utf8"

	perr "newsletter/internal/platform/errors"

	"github.com/rivo/uniseg"
)

// MaxNameGraphemes bounds a name by user perceived characters, not bytes or runes
const MaxNameGraphemes = 256

const forbiddenNameChars = `/()"<>\{}`

// SubscriberName is a name that passed ParseName
type SubscriberName struct{ v string }

// ParseName checks raw and keeps it verbatim, surrounding whitespace included
func ParseName(raw string) (SubscriberName, error) {
	switch {
	case !storable(raw),
		strings.TrimSpace(raw) == "",
		uniseg.GraphemeClusterCount(raw) > MaxNameGraphemes,
		strings.ContainsAny(raw, forbiddenNameChars):
		return SubscriberName{}, perr.WithField(perr.Validationf("invalid name"), "name")
	}
	return SubscriberName{v: raw}, nil
}

// String returns the name as submitted
func (n SubscriberName) String() string { return n.v }

// storable rejects what a postgres text column refuses: invalid UTF-8 and NUL
func storable(s string) bool {
	return utf8.ValidString(s) && !strings.ContainsRune(s, 0)
}
