// Package http provides http transport for subscriptions
package http

import (
	stdhttp "net/http"

	"newsletter/internal/modkit/httpkit"
	perr "newsletter/internal/platform/errors"
	"newsletter/internal/services/subscriptions/domain"
	svc "newsletter/internal/services/subscriptions/service"
)

// Config shapes the public surface
type Config struct {
	// BaseURL prefixes the link sent in confirmation emails
	BaseURL string
	// ConflictStatus is the status for an already subscribed email, 500 or 409
	ConflictStatus int
}

// Register mounts the routes
func Register(r httpkit.Router, s svc.Service, cfg Config) {
	h := &handlers{svc: s, cfg: cfg}
	httpkit.PostForm[domain.SubscribeRequest](r, "/subscribe", h.subscribe)
	httpkit.GetQuery[domain.ConfirmQuery](r, svc.ConfirmPath, h.confirm)
}

const tokenParam = "subscription_token"

type handlers struct {
	svc svc.Service
	cfg Config
}

// swagger:route POST /subscribe Subscriptions subscribe
// @Summary Register a pending subscriber and email a confirmation link
// @Tags subscriptions
// @Accept x-www-form-urlencoded
// @Produce json
// @Param name formData string true "Name"
// @Param email formData string true "Email"
// @Success 200 {object} httpkit.Envelope "ok"
// @Failure 400 {object} httpkit.Envelope "invalid input"
// @Failure 500 {object} httpkit.Envelope "internal error"
// @Router /subscribe [post]
func (h *handlers) subscribe(r *stdhttp.Request, in domain.SubscribeRequest) (any, error) {
	if err := h.svc.Register(r.Context(), in, h.cfg.BaseURL); err != nil {
		return nil, h.public(err)
	}
	return nil, nil
}

// swagger:route GET /subscriptions/confirm Subscriptions confirm
// @Summary Confirm a pending subscriber
// @Tags subscriptions
// @Produce json
// @Param subscription_token query string true "Token from the confirmation email"
// @Success 200 {object} httpkit.Envelope "ok"
// @Failure 400 {object} httpkit.Envelope "missing token"
// @Failure 401 {object} httpkit.Envelope "unknown token"
// @Failure 500 {object} httpkit.Envelope "internal error"
// @Router /subscriptions/confirm [get]
func (h *handlers) confirm(r *stdhttp.Request, in domain.ConfirmQuery) (any, error) {
	if !r.URL.Query().Has(tokenParam) {
		return nil, perr.WithField(perr.Validationf("%s is a required field", tokenParam), tokenParam)
	}
	if err := h.svc.Confirm(r.Context(), in.Token); err != nil {
		return nil, h.public(err)
	}
	return nil, nil
}

// public strips internal detail before an error reaches the client
func (h *handlers) public(err error) error {
	switch perr.CodeOf(err) {
	case perr.ErrorCodeValidation, perr.ErrorCodeInvalidArgument:
		e, _ := perr.As(err)
		return perr.WithField(perr.New(perr.ErrorCodeValidation, e.Message()), e.Field())
	case perr.ErrorCodeUnauthorized:
		return perr.Unauthorizedf("unknown subscription token")
	case perr.ErrorCodeConflict, perr.ErrorCodeDuplicateKey:
		if h.cfg.ConflictStatus == stdhttp.StatusConflict {
			return perr.WithField(perr.Conflictf("email already subscribed"), "email")
		}
	}
	return perr.Internalf("internal error")
}
