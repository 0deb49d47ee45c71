package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// expenseFetchLimit bounds the recent window fetched per cycle.
const expenseFetchLimit = 50

// SpliitPoller periodically fetches recent group expenses and feeds ones paid
// by other participants into the reconciliation engine.
//
// The cursor is the highest expense creation time seen so far, held in memory
// only. Seed positions it at the newest expense visible at startup so that
// pre-existing expenses are not mirrored; if seeding fails, the first
// successful cycle treats the whole recent window as new and the engine's
// existence checks prevent duplicates.
type SpliitPoller struct {
	client     SpliitClient
	reconciler *Reconciler
	interval   time.Duration

	cursor time.Time
}

// NewSpliitPoller creates a SpliitPoller.
func NewSpliitPoller(client SpliitClient, reconciler *Reconciler, interval time.Duration) *SpliitPoller {
	return &SpliitPoller{
		client:     client,
		reconciler: reconciler,
		interval:   interval,
	}
}

// Name implements Poller.
func (p *SpliitPoller) Name() string { return "spliit" }

// Interval implements Poller.
func (p *SpliitPoller) Interval() time.Duration { return p.interval }

// Cursor returns the current cursor position.
func (p *SpliitPoller) Cursor() time.Time { return p.cursor }

// Seed positions the cursor at the newest expense currently in the group.
func (p *SpliitPoller) Seed(ctx context.Context) error {
	expenses, err := p.client.ListExpenses(ctx, expenseFetchLimit)
	if err != nil {
		return fmt.Errorf("failed to seed Spliit cursor: %w", err)
	}

	for _, expense := range expenses {
		if expense.CreatedAt.After(p.cursor) {
			p.cursor = expense.CreatedAt
		}
	}

	slog.Info("seeded Spliit cursor", "expenses", len(expenses), "cursor", p.cursor)
	return nil
}

// RunCycle performs one poll cycle. A fetch failure leaves the cursor
// untouched. The cursor advances past every fetched expense regardless of
// per-item outcome; a failed item is only retried while it still lacks a
// mirror and remains inside the recent window.
func (p *SpliitPoller) RunCycle(ctx context.Context) error {
	expenses, err := p.client.ListExpenses(ctx, expenseFetchLimit)
	if err != nil {
		return fmt.Errorf("failed to fetch Spliit expenses: %w", err)
	}

	slog.Debug("fetched Spliit expenses", "count", len(expenses), "cursor", p.cursor)

	highWater := p.cursor

	// The list is newest-first; process oldest-first so mirrors are created
	// in the order the expenses were entered.
	for i := len(expenses) - 1; i >= 0; i-- {
		expense := expenses[i]

		if !expense.CreatedAt.After(p.cursor) {
			continue
		}
		if expense.CreatedAt.After(highWater) {
			highWater = expense.CreatedAt
		}

		if expense.PaidBy.ID == p.client.PayerID() {
			// Our own entries: push-originated by this daemon or expenses
			// that need no reimbursement-owed mirror.
			continue
		}
		if expense.IsReimbursement {
			continue
		}

		if err := p.reconciler.MirrorSpliitExpense(ctx, expense); err != nil {
			if IsFatal(err) {
				return err
			}
			if IsAmbiguousMatch(err) {
				slog.Warn("ambiguous mirror candidates", "expense_id", expense.ID, "error", err)
				continue
			}
			slog.Error("failed to mirror Spliit expense", "expense_id", expense.ID, "error", err)
		}
	}

	p.cursor = highWater
	return nil
}
