package expiry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfigueredo/giftwell-backend/internal/domain"
)

// fakeRepo serves a canned stale list and records updates
type fakeRepo struct {
	stale   []*domain.Contribution
	listErr error
	updated []*domain.Contribution
}

func (f *fakeRepo) Create(ctx context.Context, c *domain.Contribution) error { return nil }

func (f *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Contribution, error) {
	return nil, domain.ErrContributionNotFound
}

func (f *fakeRepo) GetByClientTxID(ctx context.Context, clientTxID string) (*domain.Contribution, error) {
	return nil, domain.ErrContributionNotFound
}

func (f *fakeRepo) ListByState(ctx context.Context, state domain.ContributionState) ([]*domain.Contribution, error) {
	return nil, nil
}

func (f *fakeRepo) ListPendingBefore(ctx context.Context, cutoff time.Time) ([]*domain.Contribution, error) {
	return f.stale, f.listErr
}

func (f *fakeRepo) Update(ctx context.Context, c *domain.Contribution) error {
	f.updated = append(f.updated, c)
	return nil
}

func (f *fakeRepo) ApproveAndCredit(ctx context.Context, contributionID uuid.UUID, overrideAmount *decimal.Decimal) (*domain.CreditResult, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeRepo) DeleteWithReversal(ctx context.Context, contributionID uuid.UUID) error {
	return nil
}

func staleContribution(state domain.ContributionState) *domain.Contribution {
	return &domain.Contribution{
		ID:         uuid.New(),
		GiftID:     uuid.New(),
		DonorName:  "Ana",
		Amount:     decimal.NewFromInt(20),
		Method:     domain.MethodCard,
		Country:    "VE",
		ClientTxID: uuid.NewString(),
		State:      state,
		CreatedAt:  time.Now().UTC().Add(-48 * time.Hour),
	}
}

func TestSweep_ExpiresStalePendingContributions(t *testing.T) {
	repo := &fakeRepo{stale: []*domain.Contribution{
		staleContribution(domain.StatePending),
		staleContribution(domain.StatePending),
	}}
	sweeper := NewSweeper(repo, 24*time.Hour, time.Hour)

	sweeper.Sweep(context.Background())

	require.Len(t, repo.updated, 2)
	for _, c := range repo.updated {
		assert.Equal(t, domain.StateRejected, c.State)
		assert.Contains(t, c.ReviewReason, "expired")
		assert.Contains(t, c.ReviewReason, "24h")
	}
}

// A contribution that settled between the list and the sweep hits a
// terminal state and is left alone.
func TestSweep_SkipsAlreadySettled(t *testing.T) {
	repo := &fakeRepo{stale: []*domain.Contribution{
		staleContribution(domain.StateApproved),
		staleContribution(domain.StateRejected),
	}}
	sweeper := NewSweeper(repo, 24*time.Hour, time.Hour)

	sweeper.Sweep(context.Background())

	assert.Empty(t, repo.updated)
}

func TestSweep_ListFailureIsNonFatal(t *testing.T) {
	repo := &fakeRepo{listErr: errors.New("connection refused")}
	sweeper := NewSweeper(repo, 24*time.Hour, time.Hour)

	sweeper.Sweep(context.Background())

	assert.Empty(t, repo.updated)
}
