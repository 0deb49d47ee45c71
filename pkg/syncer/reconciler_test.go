package syncer

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/actual-spliit/syncd/pkg/actual"
	"github.com/actual-spliit/syncd/pkg/mapping"
	"github.com/actual-spliit/syncd/pkg/spliit"
)

const (
	splitterAccount = "acct-splitter"
	splitterPayee   = "payee-splitter"
)

func newTestReconciler(a ActualClient, s SpliitClient, m *mapping.Mapper) *Reconciler {
	return NewReconciler(a, s, m, nil, ReconcilerConfig{
		SplitterAccountID: splitterAccount,
		SplitterPayeeID:   splitterPayee,
	})
}

func sharedTransaction() actual.Transaction {
	return actual.Transaction{
		ID:           "txn-1",
		Account:      "acct-checking",
		PayeeName:    "Dinner",
		Category:     "cat-rest",
		CategoryName: "Restaurants",
		Amount:       -6000,
		Date:         "2024-03-01",
		Notes:        "Dinner #shared",
	}
}

func TestMirrorActualTransactionCreatesDeposit(t *testing.T) {
	a := newFakeActual()
	r := newTestReconciler(a, nil, nil)

	if err := r.MirrorActualTransaction(context.Background(), sharedTransaction()); err != nil {
		t.Fatalf("MirrorActualTransaction() error: %v", err)
	}

	if len(a.created) != 1 {
		t.Fatalf("created %d transactions, expected 1", len(a.created))
	}

	mirror := a.created[0]
	if mirror.Account != splitterAccount {
		t.Errorf("account = %q, expected %q", mirror.Account, splitterAccount)
	}
	if mirror.Payee != splitterPayee {
		t.Errorf("payee = %q, expected %q", mirror.Payee, splitterPayee)
	}
	if mirror.Amount != 3000 {
		t.Errorf("amount = %d, expected 3000", mirror.Amount)
	}
	if mirror.Category != "cat-rest" {
		t.Errorf("category = %q, expected original category copied verbatim", mirror.Category)
	}
	if mirror.Notes != "Dinner #auto" {
		t.Errorf("notes = %q, expected \"Dinner #auto\"", mirror.Notes)
	}
	if mirror.Date != "2024-03-01" {
		t.Errorf("date = %q", mirror.Date)
	}
}

func TestMirrorActualTransactionIdempotent(t *testing.T) {
	a := newFakeActual()
	r := newTestReconciler(a, nil, nil)
	txn := sharedTransaction()

	for i := 0; i < 3; i++ {
		if err := r.MirrorActualTransaction(context.Background(), txn); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}

	if len(a.created) != 1 {
		t.Errorf("created %d transactions after repeated runs, expected exactly 1", len(a.created))
	}
}

func TestMirrorActualTransactionAmbiguousSkips(t *testing.T) {
	a := newFakeActual()
	a.accountTxns[splitterAccount] = []actual.Transaction{
		{ID: "m1", Account: splitterAccount, Notes: "Dinner #auto", Date: "2024-02-28"},
		{ID: "m2", Account: splitterAccount, Notes: "Dinner #auto", Date: "2024-02-29"},
	}
	r := newTestReconciler(a, nil, nil)

	err := r.MirrorActualTransaction(context.Background(), sharedTransaction())
	if !IsAmbiguousMatch(err) {
		t.Fatalf("expected AmbiguousMatchError, got %v", err)
	}
	if len(a.created) != 0 {
		t.Errorf("created %d transactions, expected none on ambiguity", len(a.created))
	}
}

func TestMirrorActualTransactionPushesToSpliit(t *testing.T) {
	a := newFakeActual()
	s := newFakeSpliit("part-me")
	s.categories = []spliit.Category{{ID: 5, Grouping: "Food and Drink", Name: "Dining Out"}}
	m := mapping.New([]mapping.Entry{{Spliit: "Dining Out", Actual: "Restaurants"}})
	r := newTestReconciler(a, s, m)

	if err := r.MirrorActualTransaction(context.Background(), sharedTransaction()); err != nil {
		t.Fatalf("MirrorActualTransaction() error: %v", err)
	}

	if len(s.created) != 1 {
		t.Fatalf("created %d Spliit expenses, expected 1", len(s.created))
	}

	pushed := s.created[0]
	if pushed.Title != "Dinner" {
		t.Errorf("title = %q, expected Dinner", pushed.Title)
	}
	if !pushed.Amount.Equal(decimal.RequireFromString("60")) {
		t.Errorf("amount = %s, expected full original amount 60", pushed.Amount)
	}
	if pushed.Category != 5 {
		t.Errorf("category = %d, expected reverse-mapped category 5", pushed.Category)
	}
}

func TestSpliitPushFailureDoesNotRollBackMirror(t *testing.T) {
	a := newFakeActual()
	s := newFakeSpliit("part-me")
	s.createErr = errors.New("spliit down")
	r := newTestReconciler(a, s, nil)

	if err := r.MirrorActualTransaction(context.Background(), sharedTransaction()); err != nil {
		t.Fatalf("MirrorActualTransaction() error: %v", err)
	}

	if len(a.created) != 1 {
		t.Errorf("deposit mirror missing: created %d transactions", len(a.created))
	}
	if len(s.created) != 0 {
		t.Errorf("created %d Spliit expenses despite failure", len(s.created))
	}
}

func TestCreateValidationFailureRetriesUncategorized(t *testing.T) {
	a := newFakeActual()
	a.createErr = &actual.APIError{StatusCode: http.StatusBadRequest, Message: "invalid category"}
	a.createErrOnce = true
	r := newTestReconciler(a, nil, nil)

	if err := r.MirrorActualTransaction(context.Background(), sharedTransaction()); err != nil {
		t.Fatalf("MirrorActualTransaction() error: %v", err)
	}

	if len(a.created) != 1 {
		t.Fatalf("created %d transactions, expected 1", len(a.created))
	}
	if a.created[0].Category != "" {
		t.Errorf("category = %q, expected uncategorized fallback", a.created[0].Category)
	}
	if a.createAttempts != 2 {
		t.Errorf("create attempts = %d, expected 2", a.createAttempts)
	}
}

func groceriesExpense() spliit.Expense {
	return spliit.Expense{
		ID:     "exp-1",
		Title:  "Groceries",
		Amount: decimal.RequireFromString("80.00"),
		PaidBy: spliit.Participant{ID: "part-other", Name: "Sam"},
		PaidFor: []spliit.Share{
			{Participant: spliit.Participant{ID: "part-me", Name: "Me"}, Shares: 100},
			{Participant: spliit.Participant{ID: "part-other", Name: "Sam"}, Shares: 100},
		},
		SplitMode:   spliit.SplitModeEvenly,
		ExpenseDate: "2024-03-01T00:00:00.000Z",
		Category:    &spliit.Category{ID: 3, Grouping: "Food and Drink", Name: "Groceries"},
	}
}

func TestMirrorSpliitExpenseCreatesReimbursementOwed(t *testing.T) {
	a := newFakeActual()
	a.categories = []actual.Category{{ID: "cat-food", Name: "Food"}}
	s := newFakeSpliit("part-me")
	s.categories = []spliit.Category{{ID: 3, Grouping: "Food and Drink", Name: "Groceries"}}
	m := mapping.New([]mapping.Entry{{Spliit: "Food and Drink/Groceries", Actual: "Food"}})
	r := newTestReconciler(a, s, m)

	if err := r.MirrorSpliitExpense(context.Background(), groceriesExpense()); err != nil {
		t.Fatalf("MirrorSpliitExpense() error: %v", err)
	}

	if len(a.created) != 1 {
		t.Fatalf("created %d transactions, expected 1", len(a.created))
	}

	mirror := a.created[0]
	if mirror.Amount != -4000 {
		t.Errorf("amount = %d, expected -4000 (half of 80.00 in minor units)", mirror.Amount)
	}
	if mirror.Notes != "Groceries (paid by Sam) #spliit" {
		t.Errorf("notes = %q", mirror.Notes)
	}
	if mirror.Category != "cat-food" {
		t.Errorf("category = %q, expected mapped cat-food", mirror.Category)
	}
	if mirror.Date != "2024-03-01" {
		t.Errorf("date = %q", mirror.Date)
	}
}

func TestMirrorSpliitExpenseIdempotent(t *testing.T) {
	a := newFakeActual()
	s := newFakeSpliit("part-me")
	r := newTestReconciler(a, s, nil)
	expense := groceriesExpense()

	for i := 0; i < 3; i++ {
		if err := r.MirrorSpliitExpense(context.Background(), expense); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}

	if len(a.created) != 1 {
		t.Errorf("created %d transactions after repeated runs, expected exactly 1", len(a.created))
	}
}

func TestMirrorSpliitExpenseSkipsNonParticipant(t *testing.T) {
	a := newFakeActual()
	s := newFakeSpliit("part-me")
	r := newTestReconciler(a, s, nil)

	expense := groceriesExpense()
	expense.PaidFor = expense.PaidFor[1:] // local participant removed from split

	if err := r.MirrorSpliitExpense(context.Background(), expense); err != nil {
		t.Fatalf("MirrorSpliitExpense() error: %v", err)
	}
	if len(a.created) != 0 {
		t.Errorf("created %d transactions, expected none when not part of the split", len(a.created))
	}
}

func TestMirrorSpliitExpenseUnmappedCategoryStillCreated(t *testing.T) {
	a := newFakeActual()
	s := newFakeSpliit("part-me")
	// No category table entries: CategoryNameByID misses entirely.
	r := newTestReconciler(a, s, mapping.New(nil))

	expense := groceriesExpense()
	expense.Category = &spliit.Category{ID: 42, Grouping: "Other", Name: "Unknown XYZ"}

	if err := r.MirrorSpliitExpense(context.Background(), expense); err != nil {
		t.Fatalf("MirrorSpliitExpense() error: %v", err)
	}

	if len(a.created) != 1 {
		t.Fatalf("created %d transactions, expected 1", len(a.created))
	}
	if a.created[0].Category != "" {
		t.Errorf("category = %q, expected unset for unmapped category", a.created[0].Category)
	}
}

func TestMirrorHistoryRecorded(t *testing.T) {
	a := newFakeActual()
	var records []MirrorRecord
	r := NewReconciler(a, nil, nil, recorderFunc(func(rec MirrorRecord) error {
		records = append(records, rec)
		return nil
	}), ReconcilerConfig{SplitterAccountID: splitterAccount, SplitterPayeeID: splitterPayee})

	if err := r.MirrorActualTransaction(context.Background(), sharedTransaction()); err != nil {
		t.Fatalf("MirrorActualTransaction() error: %v", err)
	}

	if len(records) != 1 || records[0].MirrorType != MirrorTypeDeposit || records[0].Amount != 3000 {
		t.Errorf("unexpected history records: %+v", records)
	}
}

type recorderFunc func(MirrorRecord) error

func (f recorderFunc) RecordMirror(rec MirrorRecord) error { return f(rec) }
