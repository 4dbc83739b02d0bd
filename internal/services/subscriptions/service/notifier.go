package service

import (
	"context"
	"fmt"
	"html"

	perr "newsletter/internal/platform/errors"
	"newsletter/internal/platform/mail"
	"newsletter/internal/services/subscriptions/domain"

	"github.com/prometheus/client_golang/prometheus"
)

const confirmSubject = "Welcome!"

// MailNotifier sends the confirmation email through a mail.Transport
type MailNotifier struct {
	transport mail.Transport
	counts    *prometheus.CounterVec
}

// NewMailNotifier wraps t, counts may be nil
func NewMailNotifier(t mail.Transport, counts *prometheus.CounterVec) *MailNotifier {
	if t == nil {
		panic("subscriptions.MailNotifier requires a non nil mail.Transport")
	}
	return &MailNotifier{transport: t, counts: counts}
}

// ConfirmationMessage composes the welcome email embedding link
func ConfirmationMessage(to domain.SubscriberEmail, link string) mail.Message {
	return mail.Message{
		To:      to.String(),
		Subject: confirmSubject,
		HTML: fmt.Sprintf(
			"Welcome to our newsletter!<br />Click <a href=\"%s\">here</a> to confirm your subscription.",
			html.EscapeString(link),
		),
		Text: fmt.Sprintf("Welcome to our newsletter!\nVisit %s to confirm your subscription.", link),
	}
}

// SendConfirmation implements domain.Notifier
func (n *MailNotifier) SendConfirmation(ctx context.Context, to domain.SubscriberEmail, link string) error {
	err := n.transport.Send(ctx, ConfirmationMessage(to, link))
	if n.counts != nil {
		n.counts.WithLabelValues(outcome(err)).Inc()
	}
	if err != nil && !perr.IsCode(err, perr.ErrorCodeGateway) {
		return perr.Gatewayf(err, "send confirmation email")
	}
	return err
}
