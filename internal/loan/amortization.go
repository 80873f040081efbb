// Package loan implements reducing-balance amortization: the equal monthly
// installment, the interest/principal split of a payment and the loan
// state transition a payment causes.
package loan

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"financeflow/internal/core"
)

var hundred = decimal.NewFromInt(100)

// EMI is the result of an installment computation. The zero value is the
// sentinel returned for invalid inputs.
type EMI struct {
	Installment   decimal.Decimal `json:"emi"`
	TotalInterest decimal.Decimal `json:"total_interest"`
	TotalPayment  decimal.Decimal `json:"total_payment"`
}

// IsZero reports whether e is the zero-payment sentinel.
func (e EMI) IsZero() bool {
	return e.Installment.IsZero() && e.TotalPayment.IsZero() && e.TotalInterest.IsZero()
}

// MonthlyRate converts an annual percentage into a monthly fraction.
func MonthlyRate(annualRatePercent decimal.Decimal) decimal.Decimal {
	return annualRatePercent.Div(decimal.NewFromInt(12)).Div(hundred)
}

func zeroEMI() EMI {
	return EMI{Installment: decimal.Zero, TotalInterest: decimal.Zero, TotalPayment: decimal.Zero}
}

// ComputeEMI returns the installment rounded to cents together with the
// totals derived from it. principal <= 0, months <= 0, a negative rate, a
// growth factor that overflows float64 or an installment that rounds to
// zero all yield the zero sentinel.
func ComputeEMI(principal, annualRatePercent decimal.Decimal, months int) EMI {
	if !principal.IsPositive() || months <= 0 || annualRatePercent.IsNegative() {
		return zeroEMI()
	}
	n := decimal.NewFromInt(int64(months))

	var emi decimal.Decimal
	if annualRatePercent.IsZero() {
		emi = principal.Div(n)
	} else {
		emi = reducingBalance(principal, annualRatePercent, months)
	}
	emi = core.Round2(emi)
	if !emi.IsPositive() {
		return zeroEMI()
	}

	totalPayment := core.Round2(emi.Mul(n))
	return EMI{
		Installment:   emi,
		TotalPayment:  totalPayment,
		TotalInterest: core.Round2(totalPayment.Sub(principal)),
	}
}

// reducingBalance evaluates P*r*(1+r)^n / ((1+r)^n - 1). The power is taken
// in float64; the operands are carried as decimals. A power that is not
// finite returns zero.
func reducingBalance(principal, annualRatePercent decimal.Decimal, months int) decimal.Decimal {
	r := MonthlyRate(annualRatePercent)
	rf, _ := r.Float64()
	pow := math.Pow(1+rf, float64(months))
	if math.IsInf(pow, 0) || math.IsNaN(pow) {
		return decimal.Zero
	}
	growth := decimal.NewFromFloat(pow)
	denom := growth.Sub(decimal.NewFromInt(1))
	if !denom.IsPositive() {
		return principal.Div(decimal.NewFromInt(int64(months)))
	}
	return principal.Mul(r).Mul(growth).Div(denom)
}

// MonthlyInterest is one month of interest on balance, rounded to cents.
func MonthlyInterest(balance, annualRatePercent decimal.Decimal) decimal.Decimal {
	return core.Round2(balance.Mul(MonthlyRate(annualRatePercent)))
}

// Split is the allocation of one payment between interest and principal.
type Split struct {
	InterestPaid  decimal.Decimal `json:"interest_paid"`
	PrincipalPaid decimal.Decimal `json:"principal_paid"`
	NewBalance    decimal.Decimal `json:"new_balance"`
}

// SplitPayment charges one month of interest on the current outstanding
// balance and applies the rest of amount to principal. Interest and
// principal are rounded to cents. The new balance stays between zero and
// outstanding: an amount below the interest pays interest only.
func SplitPayment(outstanding, annualRatePercent, amount decimal.Decimal) Split {
	interest := MonthlyInterest(outstanding, annualRatePercent)
	if amount.LessThan(interest) {
		return Split{InterestPaid: core.Round2(amount), PrincipalPaid: decimal.Zero, NewBalance: outstanding}
	}
	principal := core.Round2(amount.Sub(interest))
	balance := outstanding.Sub(principal)
	if balance.IsNegative() {
		balance = decimal.Zero
	}
	return Split{InterestPaid: interest, PrincipalPaid: principal, NewBalance: balance}
}

// ApplyPayment validates that l accepts payments, computes the split for
// amount and returns the updated loan. l is not modified. A payment that
// does not cover the month's interest is rejected with ErrInvalidAmount.
func ApplyPayment(l core.Loan, amount decimal.Decimal) (core.Loan, Split, error) {
	if l.Status.IsTerminal() {
		return l, Split{}, core.ErrLoanNotActive
	}
	if !amount.IsPositive() {
		return l, Split{}, core.ErrInvalidAmount
	}
	if interest := MonthlyInterest(l.OutstandingBalance, l.InterestRate); amount.LessThan(interest) {
		return l, Split{}, fmt.Errorf("%w: payment %s does not cover interest of %s",
			core.ErrInvalidAmount, amount.StringFixed(2), interest.StringFixed(2))
	}
	split := SplitPayment(l.OutstandingBalance, l.InterestRate, amount)
	updated := l
	updated.OutstandingBalance = split.NewBalance
	if split.NewBalance.IsZero() {
		updated.Status = core.LoanClosed
	}
	return updated, split, nil
}

// Row is one month of an amortization schedule.
type Row struct {
	Month     int             `json:"month"`
	Payment   decimal.Decimal `json:"payment"`
	Interest  decimal.Decimal `json:"interest"`
	Principal decimal.Decimal `json:"principal"`
	Balance   decimal.Decimal `json:"balance"`
}

// Schedule lays out every installment of a loan. The last row absorbs the
// rounding remainder so the balance ends at exactly zero. Terms longer than
// core.MaxTenureMonths have no schedule.
func Schedule(principal, annualRatePercent decimal.Decimal, months int) []Row {
	if months > core.MaxTenureMonths {
		return nil
	}
	emi := ComputeEMI(principal, annualRatePercent, months)
	if emi.IsZero() {
		return nil
	}
	rows := make([]Row, 0, months)
	balance := principal
	for m := 1; m <= months; m++ {
		interest := MonthlyInterest(balance, annualRatePercent)
		payment := emi.Installment
		princ := payment.Sub(interest)
		if m == months || princ.GreaterThan(balance) {
			princ = balance
			payment = princ.Add(interest)
		}
		balance = balance.Sub(princ)
		rows = append(rows, Row{Month: m, Payment: payment, Interest: interest, Principal: princ, Balance: balance})
		if balance.IsZero() {
			break
		}
	}
	return rows
}
