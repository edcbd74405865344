package accounting

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/splittab/split_tab_app/internal/core/domain"
)

// relTolerance is the relative tolerance used when reconciling an expense
// amount against the sum of its splits. 1e-4 matches the money precision of
// four fractional digits.
var relTolerance = decimal.New(1, -4)

// SumSplits returns the total of all split amounts.
func SumSplits(splits []domain.Split) decimal.Decimal {
	sum := decimal.Zero
	for _, s := range splits {
		sum = sum.Add(s.Amount)
	}
	return sum
}

// AmountsReconcile reports whether the two amounts are equal within the
// relative tolerance: |a - b| <= 1e-4 * max(|a|, |b|). Comparison stays in
// decimal arithmetic so no precision is lost before the check.
func AmountsReconcile(a, b decimal.Decimal) bool {
	diff := a.Sub(b).Abs()
	scale := decimal.Max(a.Abs(), b.Abs())
	return diff.LessThanOrEqual(relTolerance.Mul(scale))
}

// EqualSplits divides amount evenly among the given users, rounding every
// share to 4 fractional digits and assigning the remainder to the first user
// so the shares always sum exactly to amount.
func EqualSplits(amount decimal.Decimal, userIDs []string) ([]domain.Split, error) {
	if len(userIDs) == 0 {
		return nil, fmt.Errorf("cannot split among zero users")
	}

	n := decimal.NewFromInt(int64(len(userIDs)))
	share := amount.DivRound(n, 4)

	splits := make([]domain.Split, len(userIDs))
	total := decimal.Zero
	for i, userID := range userIDs {
		splits[i] = domain.Split{UserID: userID, Amount: share}
		total = total.Add(share)
	}

	// Rounding remainder lands on the first participant.
	splits[0].Amount = splits[0].Amount.Add(amount.Sub(total))
	return splits, nil
}

// ExpandPercentageSplits converts percentage shares into money shares of the
// given amount. Percentages must sum to 100 within the relative tolerance.
func ExpandPercentageSplits(amount decimal.Decimal, splits []domain.Split) ([]domain.Split, error) {
	hundred := decimal.NewFromInt(100)

	total := SumSplits(splits)
	if !AmountsReconcile(total, hundred) {
		return nil, fmt.Errorf("percentages sum to %s, expected 100", total.String())
	}

	out := make([]domain.Split, len(splits))
	allocated := decimal.Zero
	for i, s := range splits {
		share := amount.Mul(s.Amount).DivRound(hundred, 4)
		out[i] = domain.Split{UserID: s.UserID, ExpenseID: s.ExpenseID, Amount: share}
		allocated = allocated.Add(share)
	}

	if len(out) > 0 {
		out[0].Amount = out[0].Amount.Add(amount.Sub(allocated))
	}
	return out, nil
}
