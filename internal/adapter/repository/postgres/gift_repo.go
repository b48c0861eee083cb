package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/mfigueredo/giftwell-backend/internal/domain"
)

// giftRepository implements domain.GiftRepository
type giftRepository struct {
	db *DB
}

// NewGiftRepository creates a new gift repository
func NewGiftRepository(db *DB) domain.GiftRepository {
	return &giftRepository{db: db}
}

// GetByID retrieves a gift by its ID
func (r *giftRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Gift, error) {
	query := `
		SELECT id, name, price, target_amount, collected_amount, is_crowdfund, status, created_at
		FROM gifts
		WHERE id = $1
	`

	gift, err := scanGift(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrGiftNotFound, id)
		}
		return nil, fmt.Errorf("failed to get gift by ID: %w", err)
	}
	return gift, nil
}

// Create creates a new gift
func (r *giftRepository) Create(ctx context.Context, gift *domain.Gift) error {
	query := `
		INSERT INTO gifts (id, name, price, target_amount, collected_amount, is_crowdfund, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		gift.ID,
		gift.Name,
		gift.Price.String(),
		gift.TargetAmount.String(),
		gift.CollectedAmount.String(),
		gift.IsCrowdfund,
		string(gift.Status),
		gift.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create gift: %w", err)
	}
	return nil
}

// Update persists mutable gift fields. The collected amount is
// intentionally not written here; only the atomic credit path touches it.
func (r *giftRepository) Update(ctx context.Context, gift *domain.Gift) error {
	query := `
		UPDATE gifts
		SET name = $2, price = $3, target_amount = $4, is_crowdfund = $5, status = $6
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		gift.ID,
		gift.Name,
		gift.Price.String(),
		gift.TargetAmount.String(),
		gift.IsCrowdfund,
		string(gift.Status),
	)
	if err != nil {
		return fmt.Errorf("failed to update gift: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", domain.ErrGiftNotFound, gift.ID)
	}
	return nil
}

// List retrieves all gifts
func (r *giftRepository) List(ctx context.Context) ([]*domain.Gift, error) {
	query := `
		SELECT id, name, price, target_amount, collected_amount, is_crowdfund, status, created_at
		FROM gifts
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list gifts: %w", err)
	}
	defer rows.Close()

	gifts := make([]*domain.Gift, 0)
	for rows.Next() {
		gift, err := scanGift(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan gift row: %w", err)
		}
		gifts = append(gifts, gift)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate gift rows: %w", err)
	}
	return gifts, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scan logic
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanGift(row rowScanner) (*domain.Gift, error) {
	var gift domain.Gift
	var priceStr, targetStr, collectedStr string

	err := row.Scan(
		&gift.ID,
		&gift.Name,
		&priceStr,
		&targetStr,
		&collectedStr,
		&gift.IsCrowdfund,
		&gift.Status,
		&gift.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if gift.Price, err = decimal.NewFromString(priceStr); err != nil {
		return nil, fmt.Errorf("failed to parse price: %w", err)
	}
	if gift.TargetAmount, err = decimal.NewFromString(targetStr); err != nil {
		return nil, fmt.Errorf("failed to parse target_amount: %w", err)
	}
	if gift.CollectedAmount, err = decimal.NewFromString(collectedStr); err != nil {
		return nil, fmt.Errorf("failed to parse collected_amount: %w", err)
	}

	return &gift, nil
}
