package reconcilesvc

import (
	"clinicpay/model"
	"context"
	"log/slog"
	"time"
)

type StaleLister interface {
	ListStalePending(ctx context.Context, olderThan time.Time) ([]model.Payment, error)
}

// Sweeper re-queries provider status for payments stuck in pending, so
// convergence does not depend on the webhook arriving or the customer's
// browser staying open.
type Sweeper interface {
	SweepStale(ctx context.Context) (applied int, err error)
}

type sweeper struct {
	repo   StaleLister
	svc    Service
	minAge time.Duration
	log    *slog.Logger
}

func NewSweeper(repo StaleLister, svc Service, minAge time.Duration, log *slog.Logger) Sweeper {
	return &sweeper{repo: repo, svc: svc, minAge: minAge, log: log}
}

func (s *sweeper) SweepStale(ctx context.Context) (int, error) {
	cutoff := time.Now().UTC().Add(-s.minAge)
	stale, err := s.repo.ListStalePending(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	applied := 0
	for i := range stale {
		p := &stale[i]
		changed, err := s.svc.CheckPending(ctx, p)
		if err != nil {
			// one unreachable provider must not abort the whole sweep
			s.log.Error("sweep status check failed", "payment_id", p.ID, "gateway", p.Gateway, "err", err)
			continue
		}
		if changed {
			applied++
		}
	}
	if len(stale) > 0 {
		s.log.Info("reconciliation sweep done", "stale", len(stale), "applied", applied)
	}
	return applied, nil
}
