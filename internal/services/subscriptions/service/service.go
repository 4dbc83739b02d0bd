// Package service runs the subscribe and confirm workflows
package service

import (
	"context"
	"strings"
	"time"

	"newsletter/internal/modkit/repokit"
	perr "newsletter/internal/platform/errors"
	"newsletter/internal/platform/logger"
	"newsletter/internal/platform/metrics"
	"newsletter/internal/platform/telemetry"
	"newsletter/internal/services/subscriptions/domain"
	"newsletter/internal/services/subscriptions/repo"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Event subjects, the bus adds its own prefix
const (
	SubjectRegistered = "subscriptions.registered"
	SubjectConfirmed  = "subscriptions.confirmed"
)

// ConfirmPath is where the emailed link points
const ConfirmPath = "/subscriptions/confirm"

// Service is the public service port
type Service interface{ domain.ServicePort }

// Svc implements the service port
type Svc struct {
	subs     domain.SubscriberStore
	tokens   domain.TokenStore
	notifier domain.Notifier
	events   domain.EventPublisher
	metrics  *metrics.Metrics
	tracer   trace.Tracer

	newToken func() (string, error)
	now      func() time.Time
}

// Options control service collaborators
type Options struct {
	// Notifier is required
	Notifier domain.Notifier

	// WrapTokens decorates the token store, e.g. with a cache
	WrapTokens func(domain.TokenStore) domain.TokenStore

	// Events is optional; lifecycle events are skipped when nil
	Events domain.EventPublisher

	// Metrics is optional
	Metrics *metrics.Metrics
}

// New constructs the service over storage bound to db
func New(db repokit.TxRunner, binder repokit.Binder[repo.Storage], opt Options) *Svc {
	if db == nil {
		panic("subscriptions.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("subscriptions.Service requires a non nil Storage binder")
	}
	st := binder.Bind(db)
	return newSvc(st, st, opt)
}

func newSvc(subs domain.SubscriberStore, tokens domain.TokenStore, opt Options) *Svc {
	if opt.Notifier == nil {
		panic("subscriptions.Service requires a non nil Notifier")
	}
	if opt.WrapTokens != nil {
		tokens = opt.WrapTokens(tokens)
	}
	return &Svc{
		subs:     subs,
		tokens:   tokens,
		notifier: opt.Notifier,
		events:   opt.Events,
		metrics:  opt.Metrics,
		tracer:   telemetry.Tracer("newsletter/subscriptions"),
		newToken: domain.GenerateToken,
		now:      time.Now,
	}
}

// ConfirmLink builds the link embedded in the confirmation email
func ConfirmLink(baseURL, token string) string {
	return strings.TrimRight(baseURL, "/") + ConfirmPath + "?subscription_token=" + token
}

// Parse validates a raw request into a NewSubscriber
func Parse(in domain.SubscribeRequest) (domain.NewSubscriber, error) {
	name, err := domain.ParseName(in.Name)
	if err != nil {
		return domain.NewSubscriber{}, err
	}
	email, err := domain.ParseEmail(in.Email)
	if err != nil {
		return domain.NewSubscriber{}, err
	}
	return domain.NewSubscriber{Name: name, Email: email}, nil
}

// Register validates, persists a pending subscriber, issues a token and emails the link
// a failure leaves earlier steps in place, nothing is rolled back or retried
func (s *Svc) Register(ctx context.Context, in domain.SubscribeRequest, baseURL string) (err error) {
	ctx, span := s.tracer.Start(ctx, "subscriptions.Register")
	defer span.End()

	stage := domain.StageValidating
	id := uuid.Nil
	defer func() { s.finishRegister(ctx, span, stage, id, err) }()

	sub, err := Parse(in)
	if err != nil {
		return domain.FailedAt(stage, id, err)
	}

	stage = domain.StagePersisting
	if id, err = s.subs.InsertPending(ctx, sub); err != nil {
		return domain.FailedAt(stage, id, err)
	}

	stage = domain.StageTokenIssued
	token, err := s.issueToken(ctx, id)
	if err != nil {
		return domain.FailedAt(stage, id, err)
	}

	stage = domain.StageNotifying
	if err = s.notifier.SendConfirmation(ctx, sub.Email, ConfirmLink(baseURL, token)); err != nil {
		return domain.FailedAt(stage, id, err)
	}

	stage = domain.StageDone
	s.publish(ctx, SubjectRegistered, domain.Registered{SubscriberID: id, Email: sub.Email.String(), At: s.now().UTC()})
	return nil
}

func (s *Svc) issueToken(ctx context.Context, id uuid.UUID) (string, error) {
	token, err := s.newToken()
	if err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeUnknown, "generate token")
	}
	if err := s.tokens.Store(ctx, token, id); err != nil {
		return "", err
	}
	return token, nil
}

func (s *Svc) finishRegister(ctx context.Context, span trace.Span, stage domain.Stage, id uuid.UUID, err error) {
	span.SetAttributes(attribute.String("subscriptions.stage", string(stage)))
	if id != uuid.Nil {
		span.SetAttributes(attribute.String("subscriptions.subscriber_id", id.String()))
	}
	if s.metrics != nil {
		s.metrics.Registrations.WithLabelValues(string(stage), outcome(err)).Inc()
	}
	if err == nil {
		logger.C(ctx).Info().Str("subscriber_id", id.String()).Msg("subscriber registered")
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, string(stage))

	ev := logger.C(ctx).Error()
	if stage == domain.StageValidating {
		ev = logger.C(ctx).Info()
	}
	ev = failureFields(ev.Err(err).Str("stage", string(stage)), err)
	if id != uuid.Nil {
		ev = ev.Str("subscriber_id", id.String())
	}
	ev.Msg("registration failed")
}

// Confirm resolves token and marks its subscriber confirmed
// unknown tokens are Unauthorized, confirming twice succeeds
func (s *Svc) Confirm(ctx context.Context, token string) (err error) {
	ctx, span := s.tracer.Start(ctx, "subscriptions.Confirm")
	defer span.End()

	id := uuid.Nil
	defer func() { s.finishConfirm(ctx, span, id, err) }()

	if !domain.PlausibleToken(token) {
		return perr.Unauthorizedf("unknown subscription token")
	}
	id, found, err := s.tokens.Lookup(ctx, token)
	if err != nil {
		return err
	}
	if !found {
		return perr.Unauthorizedf("unknown subscription token")
	}
	if err = s.subs.Confirm(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, SubjectConfirmed, domain.Confirmed{SubscriberID: id, At: s.now().UTC()})
	return nil
}

func (s *Svc) finishConfirm(ctx context.Context, span trace.Span, id uuid.UUID, err error) {
	result := outcome(err)
	if perr.IsCode(err, perr.ErrorCodeUnauthorized) {
		result = "unknown_token"
	}
	if s.metrics != nil {
		s.metrics.Confirmations.WithLabelValues(result).Inc()
	}
	if id != uuid.Nil {
		span.SetAttributes(attribute.String("subscriptions.subscriber_id", id.String()))
	}

	switch {
	case err == nil:
		logger.C(ctx).Info().Str("subscriber_id", id.String()).Msg("subscriber confirmed")
	case result == "unknown_token":
		logger.C(ctx).Info().Msg("confirmation with unknown token")
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, "confirm")
		ev := failureFields(logger.C(ctx).Error().Err(err), err)
		if id != uuid.Nil {
			ev = ev.Str("subscriber_id", id.String())
		}
		ev.Msg("confirmation failed")
	}
}

// publish is best effort, the request outcome never depends on the bus
func (s *Svc) publish(ctx context.Context, subject string, v any) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, subject, v); err != nil {
		logger.C(ctx).Warn().Err(err).Str("subject", subject).Msg("event publish failed")
	}
}

// failureFields tags a failure log with the store op and whether a client retry may succeed
func failureFields(ev *zerolog.Event, err error) *zerolog.Event {
	ev = ev.Bool("retryable", perr.Retryable(err))
	if e, ok := perr.As(err); ok && e.Op() != "" {
		ev = ev.Str("op", e.Op())
	}
	return ev
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
