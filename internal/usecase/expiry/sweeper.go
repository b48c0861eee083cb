package expiry

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mfigueredo/giftwell-backend/internal/domain"
)

// Sweeper periodically rejects PENDING card contributions whose hosted
// payment session was abandoned, so they do not stay pending forever.
// A late gateway callback for a swept contribution hits a terminal state
// and is absorbed as the usual idempotent no-op.
type Sweeper struct {
	Contributions domain.ContributionRepository
	TTL           time.Duration
	Interval      time.Duration

	stop chan struct{}
	wg   sync.WaitGroup
}

// NewSweeper creates a sweeper that expires PENDING contributions older than ttl
func NewSweeper(contributions domain.ContributionRepository, ttl, interval time.Duration) *Sweeper {
	return &Sweeper{
		Contributions: contributions,
		TTL:           ttl,
		Interval:      interval,
		stop:          make(chan struct{}),
	}
}

// Start launches the sweep loop
func (s *Sweeper) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		slog.Info("pending-contribution expiry sweeper started", "ttl", s.TTL.String(), "interval", s.Interval.String())
		ticker := time.NewTicker(s.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Sweep(context.Background())
			case <-s.stop:
				return
			}
		}
	}()
}

// Stop terminates the sweep loop
func (s *Sweeper) Stop() {
	close(s.stop)
	s.wg.Wait()
}

// Sweep expires every PENDING contribution older than the TTL
func (s *Sweeper) Sweep(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-s.TTL)

	stale, err := s.Contributions.ListPendingBefore(ctx, cutoff)
	if err != nil {
		slog.Error("expiry sweep failed to list pending contributions", "error", err)
		return
	}

	for _, c := range stale {
		next, _, err := domain.Transition(c.State, domain.EventExpire)
		if err != nil {
			// State changed under us since the list; nothing to do.
			continue
		}
		if next == c.State {
			continue
		}
		c.State = next
		c.ReviewReason = "expired: no gateway confirmation within " + s.TTL.String()
		if err := s.Contributions.Update(ctx, c); err != nil {
			slog.Error("failed to expire contribution", "contribution_id", c.ID, "error", err)
			continue
		}
		slog.Info("expired abandoned contribution", "contribution_id", c.ID, "created_at", c.CreatedAt)
	}
}
