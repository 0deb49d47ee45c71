package syncer

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/actual-spliit/syncd/pkg/actual"
	"github.com/actual-spliit/syncd/pkg/spliit"
)

// fakeActual is an in-memory ActualClient. Created transactions become
// visible to subsequent account searches, like the real service.
type fakeActual struct {
	txns        []actual.Transaction
	accountTxns map[string][]actual.Transaction
	categories  []actual.Category
	created     []actual.NewTransaction

	fetchErr       error
	accountErr     error
	categoriesErr  error
	createErr      error
	createErrOnce  bool
	createAttempts int
}

func newFakeActual() *fakeActual {
	return &fakeActual{accountTxns: make(map[string][]actual.Transaction)}
}

func (f *fakeActual) GetTransactionsSince(ctx context.Context, sinceDate string) ([]actual.Transaction, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.txns, nil
}

func (f *fakeActual) GetAccountTransactions(ctx context.Context, accountID, sinceDate string) ([]actual.Transaction, error) {
	if f.accountErr != nil {
		return nil, f.accountErr
	}
	return f.accountTxns[accountID], nil
}

func (f *fakeActual) CreateTransaction(ctx context.Context, accountID string, txn actual.NewTransaction) error {
	f.createAttempts++
	if f.createErr != nil {
		err := f.createErr
		if f.createErrOnce {
			f.createErr = nil
		}
		return err
	}

	f.created = append(f.created, txn)
	f.accountTxns[accountID] = append(f.accountTxns[accountID], actual.Transaction{
		ID:       fmt.Sprintf("created-%d", len(f.created)),
		Account:  accountID,
		Payee:    txn.Payee,
		Category: txn.Category,
		Amount:   txn.Amount,
		Date:     txn.Date,
		Notes:    txn.Notes,
	})
	return nil
}

func (f *fakeActual) GetCategories(ctx context.Context) ([]actual.Category, error) {
	if f.categoriesErr != nil {
		return nil, f.categoriesErr
	}
	return f.categories, nil
}

// fakeSpliit is an in-memory SpliitClient.
type fakeSpliit struct {
	payerID      string
	expenses     []spliit.Expense
	categories   []spliit.Category
	participants map[string]string

	created []createdExpense

	listErr   error
	createErr error
}

type createdExpense struct {
	Title    string
	Amount   decimal.Decimal
	Date     string
	Category int64
	Notes    string
}

func newFakeSpliit(payerID string) *fakeSpliit {
	return &fakeSpliit{
		payerID:      payerID,
		participants: make(map[string]string),
	}
}

func (f *fakeSpliit) PayerID() string { return f.payerID }

func (f *fakeSpliit) ListExpenses(ctx context.Context, limit int) ([]spliit.Expense, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if len(f.expenses) > limit {
		return f.expenses[:limit], nil
	}
	return f.expenses, nil
}

func (f *fakeSpliit) CreateExpense(ctx context.Context, title string, amount decimal.Decimal, expenseDate string, category int64, notes string) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.created = append(f.created, createdExpense{
		Title:    title,
		Amount:   amount,
		Date:     expenseDate,
		Category: category,
		Notes:    notes,
	})
	return fmt.Sprintf("exp-created-%d", len(f.created)), nil
}

func (f *fakeSpliit) CategoryNameByID(ctx context.Context, categoryID int64) (string, bool) {
	for _, c := range f.categories {
		if c.ID == categoryID {
			return c.Path(), true
		}
	}
	return "", false
}

func (f *fakeSpliit) CategoryIDByName(ctx context.Context, name string) int64 {
	for _, c := range f.categories {
		if name == c.Path() || name == c.Name {
			return c.ID
		}
	}
	return 0
}

func (f *fakeSpliit) ParticipantName(ctx context.Context, participantID string) string {
	if name, ok := f.participants[participantID]; ok {
		return name
	}
	return "Unknown"
}
