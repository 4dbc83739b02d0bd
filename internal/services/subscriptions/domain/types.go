// Package domain defines the types and ports of the subscriptions service
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a subscriber row (subscriptions.status)
type Status string

const (
	// StatusPending is written on registration
	StatusPending Status = "pending_confirmation"
	// StatusConfirmed is written once the emailed link is followed
	StatusConfirmed Status = "confirmed"
)

// NewSubscriber is the only shape identity data reaches the store in
// both fields have passed ParseName and ParseEmail
type NewSubscriber struct {
	Name  SubscriberName
	Email SubscriberEmail
}

// Subscriber is a persisted subscriptions row
type Subscriber struct {
	ID           uuid.UUID
	Email        string
	Name         string
	Status       Status
	SubscribedAt time.Time
}

// StalePending is a pending subscriber older than a reconcile threshold
type StalePending struct {
	Subscriber
	HasToken bool
}

// SubscribeRequest is the urlencoded body of POST /subscribe
type SubscribeRequest struct {
	Name  string `form:"name"  validate:"required"`
	Email string `form:"email" validate:"required"`
}

// ConfirmQuery is the query string of GET /subscriptions/confirm,
// an empty value is an unknown token, only a missing key is a bad request
type ConfirmQuery struct {
	Token string `form:"subscription_token"`
}

// Registered is published once a confirmation email went out
type Registered struct {
	SubscriberID uuid.UUID `json:"subscriber_id"`
	Email        string    `json:"email"`
	At           time.Time `json:"at"`
}

// Confirmed is published once a subscriber followed their link
type Confirmed struct {
	SubscriberID uuid.UUID `json:"subscriber_id"`
	At           time.Time `json:"at"`
}
