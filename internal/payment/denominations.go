package payment

import (
	"slices"

	"github.com/noah-isme/ngepos/internal/money"
)

const (
	roundingStep    money.Money = 10_000
	maxQuickAmounts             = 4
)

// CommonNotes are the banknote amounts customers usually pay with.
var CommonNotes = []money.Money{50_000, 100_000, 200_000, 500_000}

// SuggestedDenominations proposes up to four amounts for the quick-pay buttons.
//
// This is a UI heuristic, not a settlement rule: the exact total (when it is not
// already a round figure), the total rounded up to the next 10.000, one and two
// steps above that while they stay within twice the total, then common notes
// that cover the total.
func SuggestedDenominations(total money.Money) []money.Money {
	if total < 0 {
		return nil
	}
	rounded := money.RoundUp(total, roundingStep)
	amounts := make([]money.Money, 0, maxQuickAmounts)
	if total < rounded {
		amounts = append(amounts, total)
	}
	amounts = append(amounts, rounded)
	for _, step := range []money.Money{roundingStep, 2 * roundingStep} {
		if rounded+step <= total*2 {
			amounts = append(amounts, rounded+step)
		}
	}
	for _, note := range CommonNotes {
		if len(amounts) >= maxQuickAmounts {
			break
		}
		if note >= total && !slices.Contains(amounts, note) {
			amounts = append(amounts, note)
		}
	}
	if len(amounts) > maxQuickAmounts {
		amounts = amounts[:maxQuickAmounts]
	}
	return amounts
}
