package validation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/mfigueredo/giftwell-backend/internal/domain"
)

// Settler is the settlement surface the worker writes verdicts back to
type Settler interface {
	ApplyVerdict(ctx context.Context, contributionID uuid.UUID, verdict *domain.ReceiptVerdict) error
	ApplyValidationFailure(ctx context.Context, contributionID uuid.UUID, cause string) error
}

// Job is one receipt waiting for validation
type Job struct {
	ContributionID uuid.UUID
	Image          []byte
	Country        string
	ExpectedAmount decimal.Decimal
	CorrelationID  string
}

// Worker runs receipt validations off a queue, detached from the HTTP
// request that created the contribution. Every job is guaranteed a
// terminal write-back: a verdict settles it, and a timeout or technical
// failure degrades it to manual review — a job never hangs or vanishes.
type Worker struct {
	Validator domain.ReceiptValidator
	Settler   Settler
	Timeout   time.Duration

	jobs chan Job
	stop chan struct{}
	wg   sync.WaitGroup
}

// NewWorker creates a validation worker with a bounded queue
func NewWorker(validator domain.ReceiptValidator, settler Settler, timeout time.Duration, queueSize int) *Worker {
	return &Worker{
		Validator: validator,
		Settler:   settler,
		Timeout:   timeout,
		jobs:      make(chan Job, queueSize),
		stop:      make(chan struct{}),
	}
}

// Enqueue hands a receipt to the worker without blocking the caller.
// Fails when the queue is full so intake can tell the contributor to retry
// instead of silently losing the receipt.
func (w *Worker) Enqueue(contributionID uuid.UUID, image []byte, country string, expectedAmount decimal.Decimal, correlationID string) error {
	job := Job{
		ContributionID: contributionID,
		Image:          image,
		Country:        country,
		ExpectedAmount: expectedAmount,
		CorrelationID:  correlationID,
	}
	select {
	case w.jobs <- job:
		return nil
	default:
		return errors.New("validation queue is full")
	}
}

// Start launches the worker loop
func (w *Worker) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		slog.Info("receipt validation worker started", "timeout", w.Timeout.String())
		for {
			select {
			case job := <-w.jobs:
				w.process(job)
			case <-w.stop:
				// Drain what was already queued before exiting
				for {
					select {
					case job := <-w.jobs:
						w.process(job)
					default:
						return
					}
				}
			}
		}
	}()
}

// Stop drains the queue and waits for the worker to exit
func (w *Worker) Stop() {
	close(w.stop)
	w.wg.Wait()
}

// process validates one receipt with a hard per-job timeout. The timeout
// protects the platform's own request-handling budget: after it fires the
// job resolves to manual review rather than hanging on the provider.
func (w *Worker) process(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), w.Timeout)
	defer cancel()

	verdict, err := w.Validator.Validate(ctx, job.Image, job.Country, job.ExpectedAmount, job.CorrelationID)
	if err != nil {
		cause := "receipt validation failed: " + err.Error()
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			cause = fmt.Sprintf("receipt validation timed out after %s", w.Timeout)
		}
		slog.Warn("receipt validation degraded to manual review",
			"contribution_id", job.ContributionID, "cause", cause)

		if wbErr := w.Settler.ApplyValidationFailure(context.Background(), job.ContributionID, cause); wbErr != nil {
			slog.Error("failed to write back validation failure",
				"contribution_id", job.ContributionID, "error", wbErr)
		}
		return
	}

	if err := w.Settler.ApplyVerdict(context.Background(), job.ContributionID, verdict); err != nil {
		slog.Error("failed to apply validation verdict",
			"contribution_id", job.ContributionID, "error", err)
	}
}
