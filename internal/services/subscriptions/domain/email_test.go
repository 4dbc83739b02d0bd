package domain

import (
	"testing"

	perr "newsletter/internal/platform/errors"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEmail_Rejects(t *testing.T) {
	for _, raw := range []string{"", " ", "invalidEmail.com", "@invalidEmail.com", "a b@example.com", "urs\xffla@example.com", "ursula\x00@example.com"} {
		t.Run(raw, func(t *testing.T) {
			_, err := ParseEmail(raw)
			require.Error(t, err)
			assert.True(t, perr.IsCode(err, perr.ErrorCodeValidation))
			e, _ := perr.As(err)
			assert.Equal(t, "invalid email", e.Message())
		})
	}
}

func TestParseEmail_AcceptsGeneratedAddresses(t *testing.T) {
	f := gofakeit.New(2024)
	for range 200 {
		raw := f.Email()
		got, err := ParseEmail(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, raw, got.String())
	}
}

func TestNewSubscriberCarriesParsedFields(t *testing.T) {
	name, err := ParseName("Ursula")
	require.NoError(t, err)
	email, err := ParseEmail("ursula@example.com")
	require.NoError(t, err)

	s := NewSubscriber{Name: name, Email: email}
	assert.Equal(t, "Ursula", s.Name.String())
	assert.Equal(t, "ursula@example.com", s.Email.String())
}
