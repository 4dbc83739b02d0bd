package service

import (
	"context"
	"time"

	"newsletter/internal/platform/logger"
	"newsletter/internal/services/subscriptions/domain"
)

// DefaultReconcileBatch caps how many stale rows one pass looks at
const DefaultReconcileBatch = 500

// ReconcileInput selects which pending subscribers a pass covers
type ReconcileInput struct {
	OlderThan time.Duration
	Limit     int
	// Reissue sends a fresh link to rows that never got a token
	Reissue bool
	BaseURL string
}

// ReconcileReport summarizes a pass
type ReconcileReport struct {
	Stale     []domain.StalePending
	Tokenless int
	Reissued  int
	Failed    int
}

// Reconcile lists pending subscribers older than in.OlderThan and
// optionally reissues a token and email to the ones left without a token
func (s *Svc) Reconcile(ctx context.Context, in ReconcileInput) (ReconcileReport, error) {
	limit := in.Limit
	if limit <= 0 {
		limit = DefaultReconcileBatch
	}
	cutoff := s.now().Add(-in.OlderThan)

	stale, err := s.subs.ListStalePending(ctx, cutoff, limit)
	if err != nil {
		return ReconcileReport{}, err
	}

	rep := ReconcileReport{Stale: stale}
	for _, sp := range stale {
		if sp.HasToken {
			continue
		}
		rep.Tokenless++
		if !in.Reissue {
			continue
		}
		if err := s.reissue(ctx, sp, in.BaseURL); err != nil {
			rep.Failed++
			logger.C(ctx).Error().Err(err).Str("subscriber_id", sp.ID.String()).Msg("reissue failed")
			continue
		}
		rep.Reissued++
	}

	logger.C(ctx).Info().
		Int("stale", len(stale)).
		Int("tokenless", rep.Tokenless).
		Int("reissued", rep.Reissued).
		Int("failed", rep.Failed).
		Time("cutoff", cutoff).
		Msg("reconcile done")
	return rep, nil
}

func (s *Svc) reissue(ctx context.Context, sp domain.StalePending, baseURL string) error {
	email, err := domain.ParseEmail(sp.Email)
	if err != nil {
		return domain.FailedAt(domain.StageValidating, sp.ID, err)
	}
	token, err := s.issueToken(ctx, sp.ID)
	if err != nil {
		return domain.FailedAt(domain.StageTokenIssued, sp.ID, err)
	}
	if err := s.notifier.SendConfirmation(ctx, email, ConfirmLink(baseURL, token)); err != nil {
		return domain.FailedAt(domain.StageNotifying, sp.ID, err)
	}
	return nil
}
