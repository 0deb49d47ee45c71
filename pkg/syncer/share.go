package syncer

import (
	"github.com/shopspring/decimal"

	"github.com/actual-spliit/syncd/pkg/money"
	"github.com/actual-spliit/syncd/pkg/spliit"
)

// LocalShare returns the given participant's share of an expense in minor
// currency units, or 0 when the participant is not part of the split.
//
// Even splits truncate toward zero, so the shares of all participants never
// sum to more than the expense total. The other modes follow the weights
// recorded on the expense: relative weights for BY_SHARES, basis points for
// BY_PERCENTAGE and direct minor-unit amounts for BY_AMOUNT. An unknown mode
// falls back to an even split.
func LocalShare(expense spliit.Expense, participantID string) int64 {
	var entry *spliit.Share
	for i := range expense.PaidFor {
		if expense.PaidFor[i].Participant.ID == participantID {
			entry = &expense.PaidFor[i]
			break
		}
	}
	if entry == nil || len(expense.PaidFor) == 0 {
		return 0
	}

	total := decimal.NewFromInt(money.ToMinorUnits(expense.Amount))

	switch expense.SplitMode {
	case spliit.SplitModeByShares:
		totalShares := int64(0)
		for _, e := range expense.PaidFor {
			totalShares += shareWeight(e.Shares)
		}
		if totalShares == 0 {
			return 0
		}
		return total.
			Mul(decimal.NewFromInt(shareWeight(entry.Shares))).
			Div(decimal.NewFromInt(totalShares)).
			Floor().IntPart()

	case spliit.SplitModeByPercentage:
		return total.
			Mul(decimal.NewFromInt(entry.Shares)).
			Div(decimal.NewFromInt(10000)).
			Floor().IntPart()

	case spliit.SplitModeByAmount:
		return entry.Shares

	default:
		// EVENLY and anything unrecognized.
		return total.
			Div(decimal.NewFromInt(int64(len(expense.PaidFor)))).
			Floor().IntPart()
	}
}

// shareWeight normalizes a BY_SHARES weight; Spliit records 100 per share
// and treats a missing weight as one share.
func shareWeight(shares int64) int64 {
	if shares == 0 {
		return 100
	}
	return shares
}
