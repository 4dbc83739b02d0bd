package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SubscriberStore persists subscribers
type SubscriberStore interface {
	InsertPending(ctx context.Context, s NewSubscriber) (uuid.UUID, error)
	Confirm(ctx context.Context, id uuid.UUID) error
	ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]StalePending, error)
}

// TokenStore persists subscription tokens
type TokenStore interface {
	Store(ctx context.Context, token string, subscriberID uuid.UUID) error
	Lookup(ctx context.Context, token string) (uuid.UUID, bool, error)
}

// Notifier delivers the confirmation email
type Notifier interface {
	SendConfirmation(ctx context.Context, to SubscriberEmail, link string) error
}

// EventPublisher emits lifecycle events, failures never fail the request
type EventPublisher interface {
	Publish(ctx context.Context, subject string, v any) error
}

// ServicePort is the interface the HTTP layer drives
type ServicePort interface {
	Register(ctx context.Context, in SubscribeRequest, baseURL string) error
	Confirm(ctx context.Context, token string) error
}
