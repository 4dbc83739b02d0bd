package domain

import (
	perr "newsletter/internal/platform/errors"
	"newsletter/internal/platform/net/http/bind"
)

// SubscriberEmail is an address that passed ParseEmail
type SubscriberEmail struct{ v string }

// ParseEmail checks raw against the validator email grammar
func ParseEmail(raw string) (SubscriberEmail, error) {
	if raw == "" || !storable(raw) || bind.Get().Validator.Var(raw, "email") != nil {
		return SubscriberEmail{}, perr.WithField(perr.Validationf("invalid email"), "email")
	}
	return SubscriberEmail{v: raw}, nil
}

// String returns the address as submitted
func (e SubscriberEmail) String() string { return e.v }
