// Package syncer implements the synchronization core: the two pollers, the
// reconciliation engine and the driver owning their lifecycles.
//
// Idempotency is achieved by existence-check-before-create: for every source
// event the engine derives the note signature its mirror would carry and
// searches the splitter account for it before creating anything. There is no
// durable cross-system link table; after a restart the pollers re-scan the
// recent window and the existence checks absorb the overlap.
package syncer

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/actual-spliit/syncd/pkg/actual"
	"github.com/actual-spliit/syncd/pkg/spliit"
)

// ActualClient is the subset of the Actual Budget API the core consumes.
type ActualClient interface {
	GetTransactionsSince(ctx context.Context, sinceDate string) ([]actual.Transaction, error)
	GetAccountTransactions(ctx context.Context, accountID, sinceDate string) ([]actual.Transaction, error)
	CreateTransaction(ctx context.Context, accountID string, txn actual.NewTransaction) error
	GetCategories(ctx context.Context) ([]actual.Category, error)
}

// SpliitClient is the subset of the Spliit API the core consumes.
type SpliitClient interface {
	PayerID() string
	ListExpenses(ctx context.Context, limit int) ([]spliit.Expense, error)
	CreateExpense(ctx context.Context, title string, amount decimal.Decimal, expenseDate string, category int64, notes string) (string, error)
	CategoryNameByID(ctx context.Context, categoryID int64) (string, bool)
	CategoryIDByName(ctx context.Context, name string) int64
	ParticipantName(ctx context.Context, participantID string) string
}

// MirrorRecord describes a created mirror for the history log.
type MirrorRecord struct {
	MirrorType string // "deposit", "spliit_push" or "spliit_mirror"
	SourceID   string
	Title      string
	Amount     int64 // minor units
	Notes      string
	EntryDate  string // YYYY-MM-DD
}

// Mirror types recorded in the history log.
const (
	MirrorTypeDeposit      = "deposit"       // deposit mirror of a shared Actual transaction
	MirrorTypeSpliitPush   = "spliit_push"   // expense pushed to Spliit
	MirrorTypeSpliitMirror = "spliit_mirror" // Actual transaction mirrored from a Spliit expense
)

// HistoryRecorder receives a record for every mirror the engine creates.
// Recording is best-effort observability; the engine never reads it back and
// never bases an idempotency decision on it.
type HistoryRecorder interface {
	RecordMirror(record MirrorRecord) error
}
