package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/mfigueredo/giftwell-backend/internal/domain"
)

// contributionRepository implements domain.ContributionRepository
type contributionRepository struct {
	db *DB
}

// NewContributionRepository creates a new contribution repository
func NewContributionRepository(db *DB) domain.ContributionRepository {
	return &contributionRepository{db: db}
}

const contributionColumns = `
	id, gift_id, donor_name, donor_email, message, amount, method, country,
	client_tx_id, provider_tx_id,
	receipt_reference, receipt_amount, receipt_currency, receipt_bank, receipt_account_tail, receipt_issued_at,
	review_reason, state, receipt_url, created_at, validated_at, approved_at
`

// Create creates a new contribution
func (r *contributionRepository) Create(ctx context.Context, c *domain.Contribution) error {
	query := `
		INSERT INTO contributions (` + contributionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
	`

	receipt := receiptParams(c.Receipt)

	_, err := r.db.ExecContext(ctx, query,
		c.ID,
		c.GiftID,
		c.DonorName,
		nullString(c.DonorEmail),
		nullString(c.Message),
		c.Amount.String(),
		string(c.Method),
		c.Country,
		c.ClientTxID,
		nullString(c.ProviderTxID),
		receipt.reference,
		receipt.amount,
		receipt.currency,
		receipt.bank,
		receipt.accountTail,
		receipt.issuedAt,
		nullString(c.ReviewReason),
		string(c.State),
		nullString(c.ReceiptURL),
		c.CreatedAt,
		nullTime(c.ValidatedAt),
		nullTime(c.ApprovedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create contribution: %w", err)
	}
	return nil
}

// GetByID retrieves a contribution by its ID
func (r *contributionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Contribution, error) {
	query := `SELECT ` + contributionColumns + ` FROM contributions WHERE id = $1`

	c, err := scanContribution(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrContributionNotFound, id)
		}
		return nil, fmt.Errorf("failed to get contribution by ID: %w", err)
	}
	return c, nil
}

// GetByClientTxID retrieves a contribution by its client correlation id
func (r *contributionRepository) GetByClientTxID(ctx context.Context, clientTxID string) (*domain.Contribution, error) {
	query := `SELECT ` + contributionColumns + ` FROM contributions WHERE client_tx_id = $1`

	c, err := scanContribution(r.db.QueryRowContext(ctx, query, clientTxID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: client tx %s", domain.ErrContributionNotFound, clientTxID)
		}
		return nil, fmt.Errorf("failed to get contribution by client tx id: %w", err)
	}
	return c, nil
}

// ListByState retrieves contributions in a given state; empty state returns all
func (r *contributionRepository) ListByState(ctx context.Context, state domain.ContributionState) ([]*domain.Contribution, error) {
	query := `SELECT ` + contributionColumns + ` FROM contributions`
	args := make([]interface{}, 0, 1)
	if state != "" {
		query += ` WHERE state = $1`
		args = append(args, string(state))
	}
	query += ` ORDER BY created_at DESC`

	return r.queryContributions(ctx, query, args...)
}

// ListPendingBefore retrieves PENDING contributions created before the cutoff
func (r *contributionRepository) ListPendingBefore(ctx context.Context, cutoff time.Time) ([]*domain.Contribution, error) {
	query := `SELECT ` + contributionColumns + ` FROM contributions WHERE state = $1 AND created_at < $2 ORDER BY created_at ASC`
	return r.queryContributions(ctx, query, string(domain.StatePending), cutoff)
}

// Update persists mutable contribution fields
func (r *contributionRepository) Update(ctx context.Context, c *domain.Contribution) error {
	query := `
		UPDATE contributions
		SET provider_tx_id = $2,
		    receipt_reference = $3, receipt_amount = $4, receipt_currency = $5,
		    receipt_bank = $6, receipt_account_tail = $7, receipt_issued_at = $8,
		    review_reason = $9, state = $10, receipt_url = $11,
		    validated_at = $12, approved_at = $13
		WHERE id = $1
	`

	receipt := receiptParams(c.Receipt)

	result, err := r.db.ExecContext(ctx, query,
		c.ID,
		nullString(c.ProviderTxID),
		receipt.reference,
		receipt.amount,
		receipt.currency,
		receipt.bank,
		receipt.accountTail,
		receipt.issuedAt,
		nullString(c.ReviewReason),
		string(c.State),
		nullString(c.ReceiptURL),
		nullTime(c.ValidatedAt),
		nullTime(c.ApprovedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to update contribution: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", domain.ErrContributionNotFound, c.ID)
	}
	return nil
}

// ApproveAndCredit atomically flips the contribution to APPROVED and
// credits its gift. Both rows are locked FOR UPDATE inside one database
// transaction so concurrent approvals serialize on the gift row and no
// credit is ever computed from a stale balance read.
func (r *contributionRepository) ApproveAndCredit(ctx context.Context, contributionID uuid.UUID, overrideAmount *decimal.Decimal) (*domain.CreditResult, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var state string
	var amountStr string
	var giftID uuid.UUID
	err = tx.QueryRowContext(ctx,
		`SELECT state, amount, gift_id FROM contributions WHERE id = $1 FOR UPDATE`,
		contributionID,
	).Scan(&state, &amountStr, &giftID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrContributionNotFound, contributionID)
		}
		return nil, fmt.Errorf("failed to lock contribution: %w", err)
	}

	var targetStr, collectedStr string
	var giftStatus string
	err = tx.QueryRowContext(ctx,
		`SELECT target_amount, collected_amount, status FROM gifts WHERE id = $1 FOR UPDATE`,
		giftID,
	).Scan(&targetStr, &collectedStr, &giftStatus)
	if err != nil {
		return nil, fmt.Errorf("failed to lock gift: %w", err)
	}

	target, err := decimal.NewFromString(targetStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse target_amount: %w", err)
	}
	collected, err := decimal.NewFromString(collectedStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse collected_amount: %w", err)
	}

	// Idempotent re-approval: the balance already includes this contribution.
	if domain.ContributionState(state) == domain.StateApproved {
		return &domain.CreditResult{
			NewCollectedAmount: collected,
			TargetAmount:       target,
			Completed:          domain.GiftStatus(giftStatus) == domain.GiftStatusCompleted,
		}, tx.Commit()
	}

	// A row that reached REJECTED between the caller's unlocked read and
	// this lock (expiry sweep, admin reject) must never be credited back
	// to life.
	if domain.ContributionState(state).Terminal() {
		return nil, fmt.Errorf("%w: credit on terminal state %s", domain.ErrIllegalTransition, state)
	}

	creditAmount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse contribution amount: %w", err)
	}
	if overrideAmount != nil {
		creditAmount = *overrideAmount
	}
	if creditAmount.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("credit amount must be positive")
	}

	newCollected := collected.Add(creditAmount)
	if newCollected.GreaterThan(target) {
		remaining := target.Sub(collected)
		return nil, fmt.Errorf("%w: $%s", domain.ErrExceedsRemaining, remaining.String())
	}

	newStatus := domain.GiftStatusAvailable
	if newCollected.GreaterThanOrEqual(target) {
		newStatus = domain.GiftStatusCompleted
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE gifts SET collected_amount = $2, status = $3 WHERE id = $1`,
		giftID, newCollected.String(), string(newStatus),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to credit gift: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE contributions SET state = $2, amount = $3, approved_at = $4 WHERE id = $1`,
		contributionID, string(domain.StateApproved), creditAmount.String(), time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to approve contribution: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit credit: %w", err)
	}

	return &domain.CreditResult{
		NewCollectedAmount: newCollected,
		TargetAmount:       target,
		Completed:          newStatus == domain.GiftStatusCompleted,
	}, nil
}

// DeleteWithReversal removes the contribution; an APPROVED contribution's
// amount is debited from the gift inside the same transaction.
func (r *contributionRepository) DeleteWithReversal(ctx context.Context, contributionID uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var state string
	var amountStr string
	var giftID uuid.UUID
	err = tx.QueryRowContext(ctx,
		`SELECT state, amount, gift_id FROM contributions WHERE id = $1 FOR UPDATE`,
		contributionID,
	).Scan(&state, &amountStr, &giftID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", domain.ErrContributionNotFound, contributionID)
		}
		return fmt.Errorf("failed to lock contribution: %w", err)
	}

	if domain.ContributionState(state) == domain.StateApproved {
		var targetStr, collectedStr string
		var giftStatus string
		err = tx.QueryRowContext(ctx,
			`SELECT target_amount, collected_amount, status FROM gifts WHERE id = $1 FOR UPDATE`,
			giftID,
		).Scan(&targetStr, &collectedStr, &giftStatus)
		if err != nil {
			return fmt.Errorf("failed to lock gift: %w", err)
		}

		target, err := decimal.NewFromString(targetStr)
		if err != nil {
			return fmt.Errorf("failed to parse target_amount: %w", err)
		}
		collected, err := decimal.NewFromString(collectedStr)
		if err != nil {
			return fmt.Errorf("failed to parse collected_amount: %w", err)
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return fmt.Errorf("failed to parse contribution amount: %w", err)
		}

		newCollected := collected.Sub(amount)
		if newCollected.LessThan(decimal.Zero) {
			return errors.New("reversal would drive collected amount negative")
		}

		newStatus := domain.GiftStatusCompleted
		if newCollected.LessThan(target) {
			newStatus = domain.GiftStatusAvailable
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE gifts SET collected_amount = $2, status = $3 WHERE id = $1`,
			giftID, newCollected.String(), string(newStatus),
		)
		if err != nil {
			return fmt.Errorf("failed to reverse credit: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM contributions WHERE id = $1`, contributionID)
	if err != nil {
		return fmt.Errorf("failed to delete contribution: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}
	return nil
}

func (r *contributionRepository) queryContributions(ctx context.Context, query string, args ...interface{}) ([]*domain.Contribution, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query contributions: %w", err)
	}
	defer rows.Close()

	contributions := make([]*domain.Contribution, 0)
	for rows.Next() {
		c, err := scanContribution(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contribution row: %w", err)
		}
		contributions = append(contributions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contribution rows: %w", err)
	}
	return contributions, nil
}

func scanContribution(row rowScanner) (*domain.Contribution, error) {
	var c domain.Contribution
	var amountStr string
	var donorEmail, message, providerTxID, reviewReason, receiptURL sql.NullString
	var receiptReference, receiptAmount, receiptCurrency, receiptBank, receiptTail sql.NullString
	var receiptIssuedAt, validatedAt, approvedAt sql.NullTime

	err := row.Scan(
		&c.ID,
		&c.GiftID,
		&c.DonorName,
		&donorEmail,
		&message,
		&amountStr,
		&c.Method,
		&c.Country,
		&c.ClientTxID,
		&providerTxID,
		&receiptReference,
		&receiptAmount,
		&receiptCurrency,
		&receiptBank,
		&receiptTail,
		&receiptIssuedAt,
		&reviewReason,
		&c.State,
		&receiptURL,
		&c.CreatedAt,
		&validatedAt,
		&approvedAt,
	)
	if err != nil {
		return nil, err
	}

	if c.Amount, err = decimal.NewFromString(amountStr); err != nil {
		return nil, fmt.Errorf("failed to parse amount: %w", err)
	}

	c.DonorEmail = donorEmail.String
	c.Message = message.String
	c.ProviderTxID = providerTxID.String
	c.ReviewReason = reviewReason.String
	c.ReceiptURL = receiptURL.String
	if validatedAt.Valid {
		c.ValidatedAt = &validatedAt.Time
	}
	if approvedAt.Valid {
		c.ApprovedAt = &approvedAt.Time
	}

	if receiptReference.Valid || receiptAmount.Valid {
		receipt := &domain.ReceiptFields{
			ReferenceNumber: receiptReference.String,
			Currency:        receiptCurrency.String,
			Bank:            receiptBank.String,
			AccountTail:     receiptTail.String,
		}
		if receiptAmount.Valid {
			if receipt.Amount, err = decimal.NewFromString(receiptAmount.String); err != nil {
				return nil, fmt.Errorf("failed to parse receipt amount: %w", err)
			}
		}
		if receiptIssuedAt.Valid {
			receipt.IssuedAt = &receiptIssuedAt.Time
		}
		c.Receipt = receipt
	}

	return &c, nil
}

// receiptSQLParams holds the nullable column values for a receipt
type receiptSQLParams struct {
	reference   sql.NullString
	amount      sql.NullString
	currency    sql.NullString
	bank        sql.NullString
	accountTail sql.NullString
	issuedAt    sql.NullTime
}

func receiptParams(r *domain.ReceiptFields) receiptSQLParams {
	if r == nil {
		return receiptSQLParams{}
	}
	return receiptSQLParams{
		reference:   nullString(r.ReferenceNumber),
		amount:      sql.NullString{String: r.Amount.String(), Valid: true},
		currency:    nullString(r.Currency),
		bank:        nullString(r.Bank),
		accountTail: nullString(r.AccountTail),
		issuedAt:    nullTime(r.IssuedAt),
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
