package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestGift_Validate(t *testing.T) {
	tests := []struct {
		name    string
		gift    Gift
		wantErr bool
		errMsg  string
	}{
		{
			name: "Valid crowdfunded gift should pass",
			gift: Gift{
				ID:              uuid.New(),
				Name:            "Honeymoon Fund",
				TargetAmount:    decimal.NewFromInt(500),
				CollectedAmount: decimal.NewFromInt(120),
				IsCrowdfund:     true,
				Status:          GiftStatusAvailable,
			},
			wantErr: false,
		},
		{
			name: "Empty name should fail",
			gift: Gift{
				ID:           uuid.New(),
				TargetAmount: decimal.NewFromInt(100),
				IsCrowdfund:  true,
				Status:       GiftStatusAvailable,
			},
			wantErr: true,
			errMsg:  "gift name cannot be empty",
		},
		{
			name: "Crowdfunded gift without target should fail",
			gift: Gift{
				ID:          uuid.New(),
				Name:        "Stand Mixer",
				IsCrowdfund: true,
				Status:      GiftStatusAvailable,
			},
			wantErr: true,
			errMsg:  "crowdfunded gift must have a positive target amount",
		},
		{
			name: "Collected above target should fail",
			gift: Gift{
				ID:              uuid.New(),
				Name:            "Honeymoon Fund",
				TargetAmount:    decimal.NewFromInt(100),
				CollectedAmount: decimal.NewFromInt(101),
				IsCrowdfund:     true,
				Status:          GiftStatusCompleted,
			},
			wantErr: true,
			errMsg:  "collected amount cannot exceed target amount",
		},
		{
			name: "Unknown status should fail",
			gift: Gift{
				ID:           uuid.New(),
				Name:         "Honeymoon Fund",
				TargetAmount: decimal.NewFromInt(100),
				IsCrowdfund:  true,
				Status:       GiftStatus("ARCHIVED"),
			},
			wantErr: true,
			errMsg:  "gift status must be AVAILABLE or COMPLETED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.gift.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGift_CanAccept(t *testing.T) {
	gift := Gift{
		ID:              uuid.New(),
		Name:            "Honeymoon Fund",
		TargetAmount:    decimal.NewFromInt(100),
		CollectedAmount: decimal.NewFromInt(90),
		IsCrowdfund:     true,
		Status:          GiftStatusAvailable,
	}

	t.Run("Amount within remaining balance is accepted", func(t *testing.T) {
		assert.NoError(t, gift.CanAccept(decimal.NewFromInt(10)))
	})

	t.Run("Amount above remaining balance is rejected with the remaining amount", func(t *testing.T) {
		// Scenario: target=$100, collected=$90, contribute $20
		err := gift.CanAccept(decimal.NewFromInt(20))
		assert.ErrorIs(t, err, ErrExceedsRemaining)
		assert.Contains(t, err.Error(), "$10")
	})

	t.Run("Non-positive amount is rejected", func(t *testing.T) {
		assert.Error(t, gift.CanAccept(decimal.Zero))
	})

	t.Run("Completed gift rejects any contribution", func(t *testing.T) {
		done := gift
		done.CollectedAmount = done.TargetAmount
		done.Status = GiftStatusCompleted
		assert.ErrorIs(t, done.CanAccept(decimal.NewFromInt(1)), ErrGiftCompleted)
	})

	t.Run("Gift without funding target is rejected", func(t *testing.T) {
		bare := Gift{ID: uuid.New(), Name: "Mystery", Status: GiftStatusAvailable}
		assert.ErrorIs(t, bare.CanAccept(decimal.NewFromInt(5)), ErrNoFundingTarget)
	})
}

func TestGift_EnsureCrowdfund(t *testing.T) {
	t.Run("Fixed-price gift is initialized on first contribution", func(t *testing.T) {
		gift := Gift{
			ID:     uuid.New(),
			Name:   "Espresso Machine",
			Price:  decimal.NewFromInt(350),
			Status: GiftStatusAvailable,
		}

		err := gift.EnsureCrowdfund()

		assert.NoError(t, err)
		assert.True(t, gift.IsCrowdfund)
		assert.True(t, gift.TargetAmount.Equal(decimal.NewFromInt(350)))
		assert.True(t, gift.CollectedAmount.IsZero())
	})

	t.Run("Already crowdfunded gift is untouched", func(t *testing.T) {
		gift := Gift{
			ID:              uuid.New(),
			Name:            "Honeymoon Fund",
			TargetAmount:    decimal.NewFromInt(500),
			CollectedAmount: decimal.NewFromInt(50),
			IsCrowdfund:     true,
			Status:          GiftStatusAvailable,
		}

		err := gift.EnsureCrowdfund()

		assert.NoError(t, err)
		assert.True(t, gift.CollectedAmount.Equal(decimal.NewFromInt(50)))
	})

	t.Run("Gift without a price cannot be initialized", func(t *testing.T) {
		gift := Gift{ID: uuid.New(), Name: "Mystery", Status: GiftStatusAvailable}
		assert.ErrorIs(t, gift.EnsureCrowdfund(), ErrNoFundingTarget)
	})
}

func TestGift_Credit(t *testing.T) {
	t.Run("Credit adds to the collected amount", func(t *testing.T) {
		gift := Gift{
			Name:            "Honeymoon Fund",
			TargetAmount:    decimal.NewFromInt(100),
			CollectedAmount: decimal.NewFromInt(30),
			IsCrowdfund:     true,
			Status:          GiftStatusAvailable,
		}

		err := gift.Credit(decimal.NewFromInt(20))

		assert.NoError(t, err)
		assert.True(t, gift.CollectedAmount.Equal(decimal.NewFromInt(50)))
		assert.Equal(t, GiftStatusAvailable, gift.Status)
	})

	t.Run("Credit reaching the target flips status to COMPLETED", func(t *testing.T) {
		gift := Gift{
			Name:            "Honeymoon Fund",
			TargetAmount:    decimal.NewFromInt(100),
			CollectedAmount: decimal.Zero,
			IsCrowdfund:     true,
			Status:          GiftStatusAvailable,
		}

		err := gift.Credit(decimal.NewFromInt(100))

		assert.NoError(t, err)
		assert.True(t, gift.CollectedAmount.Equal(gift.TargetAmount))
		assert.Equal(t, GiftStatusCompleted, gift.Status)
	})

	t.Run("Credit past the target fails and leaves the balance unchanged", func(t *testing.T) {
		gift := Gift{
			Name:            "Honeymoon Fund",
			TargetAmount:    decimal.NewFromInt(100),
			CollectedAmount: decimal.NewFromInt(95),
			IsCrowdfund:     true,
			Status:          GiftStatusAvailable,
		}

		err := gift.Credit(decimal.NewFromInt(10))

		assert.ErrorIs(t, err, ErrExceedsRemaining)
		assert.True(t, gift.CollectedAmount.Equal(decimal.NewFromInt(95)))
		assert.Equal(t, GiftStatusAvailable, gift.Status)
	})
}

func TestGift_Debit(t *testing.T) {
	t.Run("Debit below the target reopens a completed gift", func(t *testing.T) {
		gift := Gift{
			Name:            "Honeymoon Fund",
			TargetAmount:    decimal.NewFromInt(100),
			CollectedAmount: decimal.NewFromInt(100),
			IsCrowdfund:     true,
			Status:          GiftStatusCompleted,
		}

		err := gift.Debit(decimal.NewFromInt(40))

		assert.NoError(t, err)
		assert.True(t, gift.CollectedAmount.Equal(decimal.NewFromInt(60)))
		assert.Equal(t, GiftStatusAvailable, gift.Status)
	})

	t.Run("Debit larger than the collected amount fails", func(t *testing.T) {
		gift := Gift{
			Name:            "Honeymoon Fund",
			TargetAmount:    decimal.NewFromInt(100),
			CollectedAmount: decimal.NewFromInt(10),
			IsCrowdfund:     true,
			Status:          GiftStatusAvailable,
		}

		err := gift.Debit(decimal.NewFromInt(11))

		assert.Error(t, err)
		assert.True(t, gift.CollectedAmount.Equal(decimal.NewFromInt(10)))
	})
}
