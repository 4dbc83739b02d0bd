// Package repo provides the postgres persistence for subscribers and tokens
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"newsletter/internal/modkit/repokit"
	perr "newsletter/internal/platform/errors"
	"newsletter/internal/platform/store"
	"newsletter/internal/services/subscriptions/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Storage is the subscriptions persistence surface used by the service layer
type Storage interface {
	domain.SubscriberStore
	domain.TokenStore
}

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// newID allocates subscriber ids
var newID = uuid.New

// NewPG returns a binder for the Postgres implementation
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind attaches a Queryer to the Postgres implementation
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: repokit.RequireQueryer(q)} }

// InsertPending writes a pending_confirmation row and returns its id
// a second row for the same email trips subscriptions_email_key
func (r *pg) InsertPending(ctx context.Context, s domain.NewSubscriber) (uuid.UUID, error) {
	const sql = `
		INSERT INTO subscriptions (id, email, name, subscribed_at, status)
		VALUES ($1, $2, $3, now(), $4)
	`
	id := newID()
	if _, err := r.q.Exec(ctx, sql, id, s.Email.String(), s.Name.String(), string(domain.StatusPending)); err != nil {
		return uuid.Nil, storeErr(err, "insert subscriber")
	}
	return id, nil
}

// Confirm marks the subscriber confirmed, already confirmed rows match too
func (r *pg) Confirm(ctx context.Context, id uuid.UUID) error {
	const sql = `UPDATE subscriptions SET status = $2 WHERE id = $1`
	err := store.ExecOne(ctx, r.q, sql, id, string(domain.StatusConfirmed))
	// unreachable through a token, subscription_tokens.subscriber_id references subscriptions(id)
	if errors.Is(err, store.ErrNoRowsAffected) {
		return perr.Internalf("confirm subscriber %s: no such row", id)
	}
	if err != nil {
		return storeErr(err, "confirm subscriber")
	}
	return nil
}

// ListStalePending returns pending rows subscribed before olderThan, oldest first
func (r *pg) ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]domain.StalePending, error) {
	const sql = `
		SELECT s.id, s.email, s.name, s.status, s.subscribed_at,
		       EXISTS (SELECT 1 FROM subscription_tokens t WHERE t.subscriber_id = s.id)
		FROM subscriptions s
		WHERE s.status = $1 AND s.subscribed_at < $2
		ORDER BY s.subscribed_at
		LIMIT $3
	`
	rows, err := store.Many(ctx, r.q, scanStale, sql, string(domain.StatusPending), olderThan, limit)
	if err != nil {
		return nil, storeErr(err, "list stale subscribers")
	}
	return rows, nil
}

func scanStale(row store.Row) (domain.StalePending, error) {
	var (
		sp     domain.StalePending
		status string
	)
	if err := row.Scan(&sp.ID, &sp.Email, &sp.Name, &status, &sp.SubscribedAt, &sp.HasToken); err != nil {
		return sp, err
	}
	sp.Status = domain.Status(status)
	return sp, nil
}

// Store inserts token for subscriberID, a subscriber may hold several
func (r *pg) Store(ctx context.Context, token string, subscriberID uuid.UUID) error {
	const sql = `
		INSERT INTO subscription_tokens (subscription_token, subscriber_id)
		VALUES ($1, $2)
	`
	if _, err := r.q.Exec(ctx, sql, token, subscriberID); err != nil {
		return storeErr(err, "store token")
	}
	return nil
}

// Lookup resolves token to its subscriber, found is false for unknown tokens
func (r *pg) Lookup(ctx context.Context, token string) (uuid.UUID, bool, error) {
	const sql = `SELECT subscriber_id FROM subscription_tokens WHERE subscription_token = $1`
	id, err := store.Scalar[uuid.UUID](ctx, r.q, sql, token)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return uuid.Nil, false, nil
	case err != nil:
		return uuid.Nil, false, storeErr(err, "lookup token")
	}
	return id, true, nil
}

// storeErr maps driver failures onto the error taxonomy
// unique violations become Conflict, unreachable backends Unavailable
// the op tag (repo.insert_subscriber, ...) ends up on the failure log line
func storeErr(err error, msg string) error {
	var out error
	_, known := perr.DBErrorCode(err)
	switch {
	case perr.IsDuplicateKey(err):
		out = perr.AttachFieldFromPg(perr.Wrap(err, perr.ErrorCodeConflict, msg))
	case known:
		out = perr.FromPostgres(err, msg)
	default:
		out = perr.Wrap(err, perr.ErrorCodeUnavailable, msg)
	}
	return perr.WithOp(out, "repo."+strings.ReplaceAll(msg, " ", "_"))
}
