package service

import (
	"context"
	"sync"
	"time"

	"newsletter/internal/platform/mail"
	"newsletter/internal/services/subscriptions/domain"

	"github.com/google/uuid"
)

type fakeSubs struct {
	mu         sync.Mutex
	rows       map[uuid.UUID]domain.Subscriber
	insertErr  error
	confirmErr error
	stale      []domain.StalePending
	listErr    error
	cutoff     time.Time
}

func newFakeSubs() *fakeSubs { return &fakeSubs{rows: map[uuid.UUID]domain.Subscriber{}} }

func (f *fakeSubs) InsertPending(_ context.Context, s domain.NewSubscriber) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return uuid.Nil, f.insertErr
	}
	id := uuid.New()
	f.rows[id] = domain.Subscriber{ID: id, Email: s.Email.String(), Name: s.Name.String(), Status: domain.StatusPending}
	return id, nil
}

func (f *fakeSubs) Confirm(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.confirmErr != nil {
		return f.confirmErr
	}
	row := f.rows[id]
	row.Status = domain.StatusConfirmed
	f.rows[id] = row
	return nil
}

func (f *fakeSubs) ListStalePending(_ context.Context, olderThan time.Time, _ int) ([]domain.StalePending, error) {
	f.cutoff = olderThan
	return f.stale, f.listErr
}

func (f *fakeSubs) only() domain.Subscriber {
	for _, r := range f.rows {
		return r
	}
	return domain.Subscriber{}
}

type fakeTokens struct {
	mu        sync.Mutex
	m         map[string]uuid.UUID
	storeErr  error
	lookupErr error
}

func newFakeTokens() *fakeTokens { return &fakeTokens{m: map[string]uuid.UUID{}} }

func (f *fakeTokens) Store(_ context.Context, token string, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.storeErr != nil {
		return f.storeErr
	}
	f.m[token] = id
	return nil
}

func (f *fakeTokens) Lookup(_ context.Context, token string) (uuid.UUID, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lookupErr != nil {
		return uuid.Nil, false, f.lookupErr
	}
	id, ok := f.m[token]
	return id, ok, nil
}

type sentMail struct {
	To   string
	Link string
}

type fakeNotifier struct {
	sent []sentMail
	err  error
}

func (f *fakeNotifier) SendConfirmation(_ context.Context, to domain.SubscriberEmail, link string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{To: to.String(), Link: link})
	return nil
}

type published struct {
	Subject string
	Value   any
}

type fakeEvents struct {
	got []published
	err error
}

func (f *fakeEvents) Publish(_ context.Context, subject string, v any) error {
	f.got = append(f.got, published{Subject: subject, Value: v})
	return f.err
}

type fakeTransport struct {
	msgs []mail.Message
	err  error
}

func (f *fakeTransport) Send(_ context.Context, m mail.Message) error {
	f.msgs = append(f.msgs, m)
	return f.err
}
