package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/actual-spliit/syncd/pkg/actual"
	"github.com/actual-spliit/syncd/pkg/mapping"
	"github.com/actual-spliit/syncd/pkg/marker"
	"github.com/actual-spliit/syncd/pkg/money"
	"github.com/actual-spliit/syncd/pkg/spliit"
)

// searchWindowDays bounds the existence search: only transactions in the
// splitter account dated within this many days before the source entry are
// considered as mirror candidates.
const searchWindowDays = 30

// ReconcilerConfig configures a Reconciler.
type ReconcilerConfig struct {
	SplitterAccountID string
	SplitterPayeeID   string
}

// Reconciler decides, for every detected source-side event, whether the
// corresponding mirror already exists, and creates it if not.
type Reconciler struct {
	actual  ActualClient
	spliit  SpliitClient // nil when the Spliit integration is unconfigured
	mapper  *mapping.Mapper
	history HistoryRecorder // nil disables history recording

	splitterAccountID string
	splitterPayeeID   string

	categoryIDByName map[string]string
	categoryNameByID map[string]string
}

// NewReconciler creates a Reconciler. spliitClient and history may be nil.
func NewReconciler(actualClient ActualClient, spliitClient SpliitClient, mapper *mapping.Mapper, history HistoryRecorder, cfg ReconcilerConfig) *Reconciler {
	if mapper == nil {
		mapper = mapping.New(nil)
	}
	return &Reconciler{
		actual:            actualClient,
		spliit:            spliitClient,
		mapper:            mapper,
		history:           history,
		splitterAccountID: cfg.SplitterAccountID,
		splitterPayeeID:   cfg.SplitterPayeeID,
	}
}

// MirrorActualTransaction creates the deposit mirror for a shared Actual
// transaction: half the original amount, negated, in the splitter account.
// When the Spliit integration is configured the full amount is also pushed
// to Spliit as an evenly split expense; a failure there is logged but never
// rolls back the Actual mirror.
func (r *Reconciler) MirrorActualTransaction(ctx context.Context, txn actual.Transaction) error {
	title := strings.TrimSpace(txn.PayeeName)
	if title == "" {
		title = "Unknown payee"
	}

	notes := marker.BuildMirrorNotes(title)

	matches, err := r.countMirrorCandidates(ctx, notes, txn.Date)
	if err != nil {
		return fmt.Errorf("mirror existence search failed for transaction %s: %w", txn.ID, err)
	}
	switch {
	case matches == 1:
		slog.Debug("mirror already exists, skipping", "txn_id", txn.ID, "notes", notes)
		return nil
	case matches > 1:
		return &AmbiguousMatchError{SourceID: txn.ID, Notes: notes, Matches: matches}
	}

	// Reimbursement owed to us: negated half of the original signed amount.
	mirrorAmount := -money.Half(txn.Amount)

	mirror := actual.NewTransaction{
		Account:  r.splitterAccountID,
		Date:     txn.Date,
		Amount:   mirrorAmount,
		Payee:    r.splitterPayeeID,
		Category: txn.Category, // copied verbatim, no mapping
		Notes:    notes,
	}

	if err := r.createWithCategoryFallback(ctx, txn.ID, mirror); err != nil {
		return fmt.Errorf("failed to create deposit mirror for transaction %s: %w", txn.ID, err)
	}

	slog.Info("created deposit mirror",
		"source_txn", txn.ID,
		"amount", mirrorAmount,
		"notes", notes,
	)
	r.record(MirrorRecord{
		MirrorType: MirrorTypeDeposit,
		SourceID:   txn.ID,
		Title:      title,
		Amount:     mirrorAmount,
		Notes:      notes,
		EntryDate:  txn.Date,
	})

	if r.spliit != nil {
		if err := r.pushSpliitExpense(ctx, txn, title); err != nil {
			// Partial success is acceptable; surfaced via logs only.
			slog.Error("failed to push expense to Spliit", "source_txn", txn.ID, "error", err)
		}
	}

	return nil
}

// pushSpliitExpense records the full original amount as an evenly split
// expense in the configured Spliit group.
func (r *Reconciler) pushSpliitExpense(ctx context.Context, txn actual.Transaction, title string) error {
	amountCents := txn.Amount
	if amountCents < 0 {
		amountCents = -amountCents
	}
	amount := money.FromMinorUnits(amountCents)

	categoryID := r.spliitCategoryFor(ctx, txn)

	expenseID, err := r.spliit.CreateExpense(ctx, title, amount, txn.Date, categoryID, "Auto-created from Actual Budget")
	if err != nil {
		return err
	}

	slog.Info("created Spliit expense", "source_txn", txn.ID, "expense_id", expenseID, "amount", amount)
	r.record(MirrorRecord{
		MirrorType: MirrorTypeSpliitPush,
		SourceID:   txn.ID,
		Title:      title,
		Amount:     amountCents,
		Notes:      "",
		EntryDate:  txn.Date,
	})
	return nil
}

// MirrorSpliitExpense creates the reimbursement-owed transaction for an
// expense paid by another participant: the local share, negated, in the
// splitter account.
func (r *Reconciler) MirrorSpliitExpense(ctx context.Context, expense spliit.Expense) error {
	payerID := ""
	if r.spliit != nil {
		payerID = r.spliit.PayerID()
	}

	share := LocalShare(expense, payerID)
	if share <= 0 {
		slog.Debug("not part of expense split, skipping", "expense_id", expense.ID, "title", expense.Title)
		return nil
	}

	payerName := strings.TrimSpace(expense.PaidBy.Name)
	if payerName == "" {
		payerName = r.spliit.ParticipantName(ctx, expense.PaidBy.ID)
	}

	notes := marker.BuildProvenanceNotes(expense.Title, payerName)
	entryDate := expense.DateString()

	matches, err := r.countMirrorCandidates(ctx, notes, entryDate)
	if err != nil {
		return fmt.Errorf("mirror existence search failed for expense %s: %w", expense.ID, err)
	}
	switch {
	case matches == 1:
		slog.Debug("expense already mirrored, skipping", "expense_id", expense.ID, "notes", notes)
		return nil
	case matches > 1:
		return &AmbiguousMatchError{SourceID: expense.ID, Notes: notes, Matches: matches}
	}

	mirror := actual.NewTransaction{
		Account:  r.splitterAccountID,
		Date:     entryDate,
		Amount:   -share, // negative: we owe this
		Payee:    r.splitterPayeeID,
		Category: r.actualCategoryFor(ctx, expense),
		Notes:    notes,
	}

	if err := r.createWithCategoryFallback(ctx, expense.ID, mirror); err != nil {
		return fmt.Errorf("failed to create mirror for expense %s: %w", expense.ID, err)
	}

	slog.Info("created mirror for Spliit expense",
		"expense_id", expense.ID,
		"title", expense.Title,
		"amount", -share,
		"paid_by", payerName,
	)
	r.record(MirrorRecord{
		MirrorType: MirrorTypeSpliitMirror,
		SourceID:   expense.ID,
		Title:      expense.Title,
		Amount:     -share,
		Notes:      notes,
		EntryDate:  entryDate,
	})

	return nil
}

// countMirrorCandidates searches the splitter account for transactions whose
// notes match the expected mirror signature, within the bounded recent window
// before entryDate.
func (r *Reconciler) countMirrorCandidates(ctx context.Context, notes, entryDate string) (int, error) {
	candidates, err := r.actual.GetAccountTransactions(ctx, r.splitterAccountID, windowStart(entryDate))
	if err != nil {
		return 0, err
	}

	matches := 0
	for _, candidate := range candidates {
		if candidate.Tombstone {
			continue
		}
		if strings.TrimSpace(candidate.Notes) == notes {
			matches++
		}
	}
	return matches, nil
}

// createWithCategoryFallback creates a transaction, retrying once without the
// category when the server rejects it. A category mapping or validation
// problem must never block the financial mirroring itself.
func (r *Reconciler) createWithCategoryFallback(ctx context.Context, sourceID string, txn actual.NewTransaction) error {
	err := r.actual.CreateTransaction(ctx, txn.Account, txn)
	if err == nil {
		return nil
	}

	if txn.Category != "" && isValidationError(err) {
		slog.Warn("creation rejected, retrying uncategorized",
			"source_id", sourceID,
			"category", txn.Category,
			"error", err,
		)
		txn.Category = ""
		return r.actual.CreateTransaction(ctx, txn.Account, txn)
	}

	return err
}

// spliitCategoryFor resolves the Actual transaction's category to a Spliit
// category ID via the reverse mapping. Misses yield 0 (General).
func (r *Reconciler) spliitCategoryFor(ctx context.Context, txn actual.Transaction) int64 {
	name := txn.CategoryName
	if name == "" && txn.Category != "" {
		name = r.actualCategoryName(ctx, txn.Category)
	}
	if name == "" {
		return 0
	}

	spliitName, ok := r.mapper.ToSpliitCategory(name)
	if !ok {
		slog.Debug("no Spliit mapping for category", "category", name)
		return 0
	}
	return r.spliit.CategoryIDByName(ctx, spliitName)
}

// actualCategoryFor resolves a Spliit expense's category to an Actual
// category ID via the forward mapping. Any miss along the chain yields the
// empty string, creating the mirror uncategorized.
func (r *Reconciler) actualCategoryFor(ctx context.Context, expense spliit.Expense) string {
	if r.spliit == nil {
		return ""
	}

	spliitName, ok := r.spliit.CategoryNameByID(ctx, expense.CategoryID())
	if !ok {
		slog.Debug("unknown Spliit category", "expense_id", expense.ID, "category_id", expense.CategoryID())
		return ""
	}

	actualName, ok := r.mapper.ToActualCategory(spliitName)
	if !ok {
		slog.Debug("no Actual mapping for category", "category", spliitName)
		return ""
	}

	id, err := r.actualCategoryID(ctx, actualName)
	if err != nil {
		slog.Warn("failed to resolve Actual category, creating uncategorized",
			"category", actualName, "error", err)
		return ""
	}
	if id == "" {
		slog.Debug("mapped category not found in budget", "category", actualName)
	}
	return id
}

func (r *Reconciler) actualCategoryID(ctx context.Context, name string) (string, error) {
	if err := r.ensureCategories(ctx); err != nil {
		return "", err
	}
	return r.categoryIDByName[name], nil
}

func (r *Reconciler) actualCategoryName(ctx context.Context, id string) string {
	if err := r.ensureCategories(ctx); err != nil {
		slog.Warn("failed to load Actual categories", "error", err)
		return ""
	}
	return r.categoryNameByID[id]
}

// ensureCategories loads the budget's category table once.
func (r *Reconciler) ensureCategories(ctx context.Context) error {
	if r.categoryIDByName != nil {
		return nil
	}

	categories, err := r.actual.GetCategories(ctx)
	if err != nil {
		return err
	}

	byName := make(map[string]string, len(categories))
	byID := make(map[string]string, len(categories))
	for _, c := range categories {
		if _, ok := byName[c.Name]; !ok {
			byName[c.Name] = c.ID
		}
		byID[c.ID] = c.Name
	}
	r.categoryIDByName = byName
	r.categoryNameByID = byID
	return nil
}

func (r *Reconciler) record(rec MirrorRecord) {
	if r.history == nil {
		return
	}
	if err := r.history.RecordMirror(rec); err != nil {
		slog.Error("failed to record mirror history", "source_id", rec.SourceID, "error", err)
	}
}

// isValidationError reports whether err looks like the server rejecting the
// entity rather than a transport or auth problem.
func isValidationError(err error) bool {
	var apiErr *actual.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.StatusCode {
	case http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusNotFound:
		return true
	}
	return false
}

// windowStart returns the date searchWindowDays before entryDate, for
// bounding the existence search. A malformed date falls back to the window
// before today.
func windowStart(entryDate string) string {
	t, err := time.Parse("2006-01-02", entryDate)
	if err != nil {
		t = time.Now()
	}
	return t.AddDate(0, 0, -searchWindowDays).Format("2006-01-02")
}
