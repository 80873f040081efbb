package loan

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"financeflow/internal/core"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeEMI(t *testing.T) {
	cases := []struct {
		name      string
		principal string
		rate      string
		months    int
		emi       string
		total     string
		interest  string
	}{
		{"home loan", "100000", "8.5", 60, "2051.65", "123099", "23099"},
		{"one year at 10%", "12000", "10", 12, "1054.99", "12659.88", "659.88"},
		{"zero rate", "1200", "0", 12, "100", "1200", "0"},
		{"zero rate four months", "1000", "0", 4, "250", "1000", "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeEMI(dec(tc.principal), dec(tc.rate), tc.months)
			if !got.Installment.Equal(dec(tc.emi)) {
				t.Fatalf("emi: want %s, got %s", tc.emi, got.Installment)
			}
			if !got.TotalPayment.Equal(dec(tc.total)) {
				t.Fatalf("total: want %s, got %s", tc.total, got.TotalPayment)
			}
			if !got.TotalInterest.Equal(dec(tc.interest)) {
				t.Fatalf("interest: want %s, got %s", tc.interest, got.TotalInterest)
			}
		})
	}
}

func TestComputeEMIZeroRateMatchesDivision(t *testing.T) {
	for months := 1; months <= 600; months += 37 {
		principal := dec("250000")
		got := ComputeEMI(principal, decimal.Zero, months)
		want := principal.Div(decimal.NewFromInt(int64(months))).Round(2)
		if !got.Installment.Equal(want) {
			t.Fatalf("months=%d: want %s, got %s", months, want, got.Installment)
		}
	}
}

func TestComputeEMITotalsConsistent(t *testing.T) {
	for _, rate := range []string{"0.5", "3.75", "12", "24.99", "100"} {
		for _, months := range []int{1, 6, 36, 240, 600} {
			p := dec("54321.09")
			got := ComputeEMI(p, dec(rate), months)
			n := decimal.NewFromInt(int64(months))
			if !got.TotalPayment.Equal(got.Installment.Mul(n).Round(2)) {
				t.Fatalf("rate=%s months=%d: total %s != emi*n", rate, months, got.TotalPayment)
			}
			if !got.TotalInterest.Equal(got.TotalPayment.Sub(p)) {
				t.Fatalf("rate=%s months=%d: interest %s != total-principal", rate, months, got.TotalInterest)
			}
		}
	}
}

func TestComputeEMISentinel(t *testing.T) {
	cases := []struct {
		principal string
		rate      string
		months    int
	}{
		{"0", "5", 12},
		{"-100", "5", 12},
		{"1000", "5", 0},
		{"1000", "5", -3},
		{"1000", "-1", 12},
		{"1000", "10", 100000},
		{"1000", "100", 1000000000},
		{"1000000", "0", 1000000000},
	}
	for _, tc := range cases {
		got := ComputeEMI(dec(tc.principal), dec(tc.rate), tc.months)
		if !got.IsZero() {
			t.Fatalf("%+v: expected zero sentinel, got %+v", tc, got)
		}
	}
}

func TestSplitPayment(t *testing.T) {
	got := SplitPayment(dec("50000"), dec("12"), dec("5000"))
	if !got.InterestPaid.Equal(dec("500")) || !got.PrincipalPaid.Equal(dec("4500")) || !got.NewBalance.Equal(dec("45500")) {
		t.Fatalf("unexpected split %+v", got)
	}

	over := SplitPayment(dec("1000"), dec("12"), dec("5000"))
	if !over.NewBalance.IsZero() {
		t.Fatalf("balance must clamp to zero, got %s", over.NewBalance)
	}

	short := SplitPayment(dec("50000"), dec("12"), dec("100"))
	if !short.PrincipalPaid.IsZero() || !short.InterestPaid.Equal(dec("100")) || !short.NewBalance.Equal(dec("50000")) {
		t.Fatalf("payment below interest must leave balance unchanged, got %+v", short)
	}
}

func TestApplyPayment(t *testing.T) {
	active := core.Loan{
		ID:                 "l1",
		InterestRate:       dec("12"),
		OutstandingBalance: dec("50000"),
		Status:             core.LoanActive,
	}

	tests := []struct {
		name       string
		loan       core.Loan
		amount     string
		wantStatus core.LoanStatus
		wantBal    string
		wantErr    error
	}{
		{"partial payment stays active", active, "5000", core.LoanActive, "45500", nil},
		{"exact payoff closes", active, "50500", core.LoanClosed, "0", nil},
		{"overpayment closes", active, "60000", core.LoanClosed, "0", nil},
		{"closed rejects", withStatus(active, core.LoanClosed), "100", core.LoanClosed, "50000", core.ErrLoanNotActive},
		{"defaulted rejects", withStatus(active, core.LoanDefaulted), "100", core.LoanDefaulted, "50000", core.ErrLoanNotActive},
		{"zero amount", active, "0", core.LoanActive, "50000", core.ErrInvalidAmount},
		{"below interest", active, "100", core.LoanActive, "50000", core.ErrInvalidAmount},
		{"interest only", active, "500", core.LoanActive, "50000", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updated, _, err := ApplyPayment(tt.loan, dec(tt.amount))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err: want %v, got %v", tt.wantErr, err)
			}
			if updated.Status != tt.wantStatus {
				t.Fatalf("status: want %s, got %s", tt.wantStatus, updated.Status)
			}
			if !updated.OutstandingBalance.Equal(dec(tt.wantBal)) {
				t.Fatalf("balance: want %s, got %s", tt.wantBal, updated.OutstandingBalance)
			}
		})
	}
	if !active.OutstandingBalance.Equal(dec("50000")) {
		t.Fatalf("input loan must not be modified")
	}
}

func withStatus(l core.Loan, s core.LoanStatus) core.Loan {
	l.Status = s
	return l
}

func TestSchedule(t *testing.T) {
	p := dec("12000")
	rows := Schedule(p, dec("10"), 12)
	if len(rows) != 12 {
		t.Fatalf("expected 12 rows, got %d", len(rows))
	}
	paid := decimal.Zero
	for _, r := range rows {
		paid = paid.Add(r.Principal)
	}
	if !paid.Equal(p) {
		t.Fatalf("principal repaid %s, want %s", paid, p)
	}
	if !rows[len(rows)-1].Balance.IsZero() {
		t.Fatalf("schedule must end at zero, got %s", rows[len(rows)-1].Balance)
	}
	if !rows[0].Interest.Equal(dec("100")) {
		t.Fatalf("first month interest want 100, got %s", rows[0].Interest)
	}
	if Schedule(decimal.Zero, dec("10"), 12) != nil {
		t.Fatalf("invalid input should produce no schedule")
	}
	if Schedule(dec("1000000000000"), decimal.Zero, 1000000000) != nil {
		t.Fatalf("term beyond the maximum tenure should produce no schedule")
	}
	if rows := Schedule(dec("100000"), dec("12"), core.MaxTenureMonths); len(rows) == 0 || len(rows) > core.MaxTenureMonths {
		t.Fatalf("maximum tenure schedule has %d rows", len(rows))
	}
}

func TestBalanceNeverRises(t *testing.T) {
	for _, amount := range []string{"0.01", "1", "499.99", "500", "500.01", "5000", "60000"} {
		s := SplitPayment(dec("50000"), dec("12"), dec(amount))
		if s.NewBalance.GreaterThan(dec("50000")) || s.NewBalance.IsNegative() || s.PrincipalPaid.IsNegative() {
			t.Fatalf("amount %s: split %+v", amount, s)
		}
	}
}
