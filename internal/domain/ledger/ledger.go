// Package ledger aggregates an agreement's recorded payments into the
// paid/remaining/progress figures every surface displays. It is read-only:
// it never writes, and completion is only signalled back to the lifecycle,
// which applies it through the store's conditional update.
package ledger

import (
	"github.com/shopspring/decimal"

	"lendpeer/internal/domain/agreement"
	"lendpeer/internal/domain/transaction"
	"lendpeer/pkg/amortize"
)

var hundred = decimal.NewFromInt(100)

type Summary struct {
	MonthlyPayment   decimal.Decimal
	TotalRepayment   decimal.Decimal
	AmountPaid       decimal.Decimal
	RemainingBalance decimal.Decimal
	ProgressPercent  decimal.Decimal
	// EligibleForCompletion is true when a funded agreement has paid its
	// total repayment down to zero remaining.
	EligibleForCompletion bool
}

// AmountPaid sums the completed repayment rows. Disbursements and
// non-completed rows never count toward repayment progress.
func AmountPaid(txs []*transaction.Transaction) decimal.Decimal {
	paid := decimal.Zero
	for _, tx := range txs {
		if tx.Kind == transaction.KindRepayment && tx.Status == transaction.StatusCompleted {
			paid = paid.Add(tx.Amount)
		}
	}
	return paid
}

// Build derives the repayment summary for an agreement from its transaction
// history. The repayment target always comes from the amortization plan,
// never from a figure recomputed by a consumer.
func Build(a *agreement.LoanAgreement, txs []*transaction.Transaction) (Summary, error) {
	plan, err := amortize.Compute(a.Amount, a.InterestRate, a.DurationMonths)
	if err != nil {
		return Summary{}, err
	}

	// Transaction amounts are rounded to two decimals when persisted, so the
	// achievable repayment target is the rounded total. Leaving it at full
	// precision would strand agreements a fraction of a paisa short of done.
	target := plan.TotalRepayment.Round(2)

	paid := AmountPaid(txs)
	remaining := target.Sub(paid)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	progress := decimal.Zero
	if target.IsPositive() {
		progress = paid.Div(target).Mul(hundred)
		if progress.GreaterThan(hundred) {
			progress = hundred
		}
	}

	return Summary{
		MonthlyPayment:        plan.MonthlyPayment,
		TotalRepayment:        target,
		AmountPaid:            paid,
		RemainingBalance:      remaining,
		ProgressPercent:       progress,
		EligibleForCompletion: a.Status == agreement.StatusFunded && remaining.IsZero(),
	}, nil
}

// AmountCommitted sums the repayment rows that count against the target at
// write time: completed rows plus pending ones, since a pending row may
// still confirm. Failed and cancelled rows never count.
func AmountCommitted(txs []*transaction.Transaction) decimal.Decimal {
	committed := decimal.Zero
	for _, tx := range txs {
		if tx.Kind != transaction.KindRepayment {
			continue
		}
		if tx.Status == transaction.StatusCompleted || tx.Status == transaction.StatusPending {
			committed = committed.Add(tx.Amount)
		}
	}
	return committed
}

// WouldOverpay reports whether adding amount to the committed repayments
// (completed and still-pending rows) would push the total past the
// repayment target by more than tolerance. Violations are rejected at
// write time, never stored and reconciled later.
func WouldOverpay(a *agreement.LoanAgreement, txs []*transaction.Transaction, amount, tolerance decimal.Decimal) (bool, error) {
	plan, err := amortize.Compute(a.Amount, a.InterestRate, a.DurationMonths)
	if err != nil {
		return false, err
	}
	projected := AmountCommitted(txs).Add(amount)
	return projected.GreaterThan(plan.TotalRepayment.Round(2).Add(tolerance)), nil
}

// InstallmentsCovered reports how many scheduled installments the paid
// total covers. The split across rows does not matter: one lump sum worth
// three monthly payments covers three periods.
func (s Summary) InstallmentsCovered(durationMonths int) int {
	monthly := s.MonthlyPayment.Round(2)
	if !monthly.IsPositive() {
		return 0
	}
	n := int(s.AmountPaid.Div(monthly).IntPart())
	if n > durationMonths {
		n = durationMonths
	}
	return n
}
