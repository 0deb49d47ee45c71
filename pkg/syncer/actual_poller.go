package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/actual-spliit/syncd/pkg/marker"
)

// ActualPoller periodically fetches recently changed Actual transactions and
// feeds trigger-tagged ones into the reconciliation engine.
//
// The cursor is the time of the last successful fetch, held in memory only.
// The transactions endpoint filters at date granularity, so consecutive
// cycles re-see the cursor day's transactions; the trigger/processed-marker
// filter and the engine's existence check make the overlap harmless.
type ActualPoller struct {
	client     ActualClient
	reconciler *Reconciler
	triggerTag string
	interval   time.Duration

	cursor time.Time
	now    func() time.Time
}

// NewActualPoller creates an ActualPoller. The cursor starts at the current
// time: transactions tagged before the daemon started are not picked up.
func NewActualPoller(client ActualClient, reconciler *Reconciler, triggerTag string, interval time.Duration) *ActualPoller {
	p := &ActualPoller{
		client:     client,
		reconciler: reconciler,
		triggerTag: triggerTag,
		interval:   interval,
		now:        time.Now,
	}
	p.cursor = p.now()
	return p
}

// Name implements Poller.
func (p *ActualPoller) Name() string { return "actual" }

// Interval implements Poller.
func (p *ActualPoller) Interval() time.Duration { return p.interval }

// Cursor returns the current cursor position.
func (p *ActualPoller) Cursor() time.Time { return p.cursor }

// RunCycle performs one poll cycle. A fetch failure leaves the cursor
// untouched so the window is retried next cycle. Per-item failures are
// logged and do not abort the rest of the batch; only fatal (auth) errors
// propagate.
func (p *ActualPoller) RunCycle(ctx context.Context) error {
	fetchTime := p.now()

	txns, err := p.client.GetTransactionsSince(ctx, p.cursor.Format("2006-01-02"))
	if err != nil {
		return fmt.Errorf("failed to fetch Actual transactions: %w", err)
	}

	slog.Debug("fetched Actual transactions", "count", len(txns), "since", p.cursor.Format("2006-01-02"))

	for _, txn := range txns {
		if txn.Tombstone {
			continue
		}
		if txn.Amount == 0 {
			continue
		}
		if !marker.HasTrigger(txn.Notes, p.triggerTag) {
			continue
		}
		if marker.HasProcessedMarker(txn.Notes) {
			// An entry this daemon created; mirroring it again would loop.
			continue
		}

		if err := p.reconciler.MirrorActualTransaction(ctx, txn); err != nil {
			if IsFatal(err) {
				return err
			}
			if IsAmbiguousMatch(err) {
				slog.Warn("ambiguous mirror candidates", "txn_id", txn.ID, "error", err)
				continue
			}
			// Retried next cycle: the transaction still matches the filter
			// until a mirror exists.
			slog.Error("failed to mirror Actual transaction", "txn_id", txn.ID, "error", err)
		}
	}

	p.cursor = fetchTime
	return nil
}
