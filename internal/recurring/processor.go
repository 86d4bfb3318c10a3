package recurring

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finsight/internal/money"
	"github.com/MrJamesThe3rd/finsight/internal/notification"
	"github.com/MrJamesThe3rd/finsight/internal/transaction"
)

//go:generate mockgen -source=processor.go -destination=processor_mock.go -package=recurring
type TransactionCreator interface {
	Create(ctx context.Context, params transaction.CreateParams) (*transaction.Transaction, error)
}

type Notifier interface {
	Notify(ctx context.Context, n *notification.Notification) (bool, error)
}

// Processor materializes due recurring templates into transactions.
type Processor struct {
	repo     Repository
	txs      TransactionCreator
	notifier Notifier
}

// NewProcessor builds a processor; notifier may be nil.
func NewProcessor(repo Repository, txs TransactionCreator, notifier Notifier) *Processor {
	return &Processor{repo: repo, txs: txs, notifier: notifier}
}

// ProcessDue handles every user's due templates.
func (p *Processor) ProcessDue(ctx context.Context, now time.Time) (int, error) {
	return p.process(ctx, ListFilter{DueAt: &now}, now)
}

// ProcessUser handles userID's due templates only.
func (p *Processor) ProcessUser(ctx context.Context, userID uuid.UUID, now time.Time) (int, error) {
	return p.process(ctx, ListFilter{UserID: &userID, DueAt: &now}, now)
}

// process creates at most one transaction per template per run. Failures of
// a single template are logged and skipped.
func (p *Processor) process(ctx context.Context, filter ListFilter, now time.Time) (int, error) {
	candidates, err := p.repo.ListRecurring(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("listing due recurring transactions: %w", err)
	}

	slog.InfoContext(ctx, "processing recurring transactions",
		"candidates", len(candidates),
		"processing_date", now.Format(time.DateOnly))

	processed := 0

	for _, r := range candidates {
		wasActive := r.IsActive

		if !ShouldProcess(r, now) {
			if wasActive && !r.IsActive {
				p.persist(ctx, r)
			}

			continue
		}

		params := r.transactionParams()
		prev := *r

		if err := r.Advance(); err != nil {
			slog.ErrorContext(ctx, "failed to advance recurring template", "recurring_id", r.ID, "error", err)
			continue
		}

		processedAt := now
		r.LastProcessedAt = &processedAt

		// The claim moves next_occurrence only if nobody else did; a run that
		// loses it, or cannot persist it, creates nothing.
		claimed, err := p.repo.ClaimOccurrence(ctx, r, prev.NextOccurrence)
		if err != nil {
			slog.ErrorContext(ctx, "failed to claim recurring occurrence", "recurring_id", r.ID, "error", err)
			*r = prev

			continue
		}

		if !claimed {
			slog.InfoContext(ctx, "recurring occurrence already processed",
				"recurring_id", r.ID,
				"occurrence", prev.NextOccurrence.Format(time.DateOnly))
			*r = prev

			continue
		}

		tx, err := p.txs.Create(ctx, params)
		if err != nil {
			slog.ErrorContext(ctx, "failed to create transaction from recurring template",
				"recurring_id", r.ID,
				"error", err)
			p.release(ctx, r, &prev)

			continue
		}

		p.notify(ctx, r, tx)

		processed++

		slog.InfoContext(ctx, "created transaction from recurring template",
			"recurring_id", r.ID,
			"transaction_id", tx.ID,
			"amount_cents", r.Amount,
			"frequency", r.Frequency,
			"next_occurrence", r.NextOccurrence.Format(time.DateOnly))
	}

	slog.InfoContext(ctx, "recurring processing complete",
		"processed", processed,
		"total_checked", len(candidates))

	return processed, nil
}

func (p *Processor) persist(ctx context.Context, r *Recurring) {
	if err := p.repo.UpdateRecurring(ctx, r); err != nil {
		slog.ErrorContext(ctx, "failed to update recurring template", "recurring_id", r.ID, "error", err)
	}
}

// release hands a claimed occurrence back after its transaction failed.
// If that fails too the occurrence is skipped, never duplicated.
func (p *Processor) release(ctx context.Context, claimed, prev *Recurring) {
	next := claimed.NextOccurrence
	*claimed = *prev

	ok, err := p.repo.ClaimOccurrence(ctx, claimed, next)
	if err != nil || !ok {
		slog.ErrorContext(ctx, "failed to release recurring occurrence",
			"recurring_id", claimed.ID,
			"occurrence", prev.NextOccurrence.Format(time.DateOnly),
			"error", err)
	}
}

func (p *Processor) notify(ctx context.Context, r *Recurring, tx *transaction.Transaction) {
	if p.notifier == nil {
		return
	}

	id := tx.ID

	_, err := p.notifier.Notify(ctx, &notification.Notification{
		UserID:   r.UserID,
		Type:     notification.TypeRecurringProcessed,
		Priority: notification.PriorityLow,
		Title:    "Recurring transaction processed",
		Message: fmt.Sprintf("Recorded %s %s for %s.",
			r.Type, money.Format(r.Amount), r.Category),
		Related: notification.Related{Kind: "transaction", ID: &id},
	})
	if err != nil {
		slog.WarnContext(ctx, "failed to notify recurring processing", "recurring_id", r.ID, "error", err)
	}
}
