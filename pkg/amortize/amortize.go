// Package amortize is the single source of repayment arithmetic. Every
// consumer (acceptance summaries, dashboards, contract rendering, the
// repayment ledger) must derive its numbers from here rather than
// recomputing its own.
package amortize

import (
	"errors"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNonPositivePrincipal = errors.New("principal must be positive")
	ErrNegativeRate         = errors.New("annual rate must not be negative")
	ErrNonPositiveTerm      = errors.New("duration must be at least one month")
)

// Installment is one period of a repayment schedule.
type Installment struct {
	Period    int
	DueDate   time.Time
	Principal decimal.Decimal
	Interest  decimal.Decimal
	Payment   decimal.Decimal
	Remaining decimal.Decimal
}

// Plan holds the level monthly payment and its total over the term.
// Values keep full precision; callers round at the persistence or
// display boundary only.
type Plan struct {
	Principal      decimal.Decimal
	AnnualRatePct  decimal.Decimal
	DurationMonths int
	MonthlyPayment decimal.Decimal
	TotalRepayment decimal.Decimal
}

// Compute derives the reducing-balance amortization plan for a principal,
// an annual rate in percent and a term in months.
//
//	i = rate/100/12
//	payment = P * i(1+i)^n / ((1+i)^n - 1)
//
// A zero rate short-circuits to an even split P/n.
func Compute(principal, annualRatePct decimal.Decimal, durationMonths int) (Plan, error) {
	if principal.LessThanOrEqual(decimal.Zero) {
		return Plan{}, ErrNonPositivePrincipal
	}
	if annualRatePct.IsNegative() {
		return Plan{}, ErrNegativeRate
	}
	if durationMonths < 1 {
		return Plan{}, ErrNonPositiveTerm
	}

	n := int64(durationMonths)
	var monthly decimal.Decimal
	if annualRatePct.IsZero() {
		monthly = principal.Div(decimal.NewFromInt(n))
	} else {
		// The power term has no exact decimal form, so the factor is
		// computed in float64 and the result carried back into decimal.
		i, _ := annualRatePct.Div(decimal.NewFromInt(1200)).Float64()
		factor := math.Pow(1+i, float64(n))
		p, _ := principal.Float64()
		monthly = decimal.NewFromFloat(p * i * factor / (factor - 1))
	}

	return Plan{
		Principal:      principal,
		AnnualRatePct:  annualRatePct,
		DurationMonths: durationMonths,
		MonthlyPayment: monthly,
		TotalRepayment: monthly.Mul(decimal.NewFromInt(n)),
	}, nil
}

// Schedule expands a plan into per-period installments starting one month
// after start. The split between principal and interest is recomputed from
// the remaining balance each period; the last period absorbs the rounding
// drift so the balance lands on exactly zero.
func (p Plan) Schedule(start time.Time) []Installment {
	monthlyRate := p.AnnualRatePct.Div(decimal.NewFromInt(1200))
	remaining := p.Principal
	payment := p.MonthlyPayment.Round(2)

	out := make([]Installment, 0, p.DurationMonths)
	for period := 1; period <= p.DurationMonths; period++ {
		interest := remaining.Mul(monthlyRate).Round(2)
		principalPart := payment.Sub(interest)
		if period == p.DurationMonths {
			principalPart = remaining
			payment = principalPart.Add(interest)
		}
		remaining = remaining.Sub(principalPart)
		if remaining.IsNegative() {
			remaining = decimal.Zero
		}
		out = append(out, Installment{
			Period:    period,
			DueDate:   start.AddDate(0, period, 0),
			Principal: principalPart,
			Interest:  interest,
			Payment:   payment,
			Remaining: remaining,
		})
	}
	return out
}
