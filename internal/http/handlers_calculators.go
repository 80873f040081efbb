package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"financeflow/internal/core"
	"financeflow/internal/currency"
	"financeflow/internal/loan"
)

type currencyInfo struct {
	Code   currency.Code   `json:"code"`
	Symbol string          `json:"symbol"`
	Rate   decimal.Decimal `json:"rate_per_usd"`
}

func (s *Server) handleCurrencies(w http.ResponseWriter, r *http.Request) {
	codes := currency.Supported()
	out := make([]currencyInfo, len(codes))
	for i, c := range codes {
		out[i] = currencyInfo{Code: c, Symbol: currency.Symbol(c), Rate: currency.Rate(c)}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"default":    currency.NewSession(s.defaultCurrency).Currency(),
		"currencies": out,
	})
}

type conversion struct {
	Amount    decimal.Decimal `json:"amount"`
	From      currency.Code   `json:"from"`
	To        currency.Code   `json:"to"`
	Converted decimal.Decimal `json:"converted"`
	Formatted string          `json:"formatted"`
}

// handleConvert answers GET /api/convert?amount=&from=&to=.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	amount, err := parseDecimalParam(q, "amount")
	if err != nil {
		writeError(w, r, err)
		return
	}
	from, err := currency.Parse(q.Get("from"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	to, err := currency.Parse(q.Get("to"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, conversion{
		Amount:    amount,
		From:      from,
		To:        to,
		Converted: currency.Convert(amount, from, to),
		Formatted: currency.Format(amount, from, to),
	})
}

type emiRequest struct {
	Principal    Amount `json:"principal_amount"`
	InterestRate Amount `json:"interest_rate"`
	TenureMonths int    `json:"tenure_months"`
}

// handleEMI is the stateless installment calculator. A rate or tenure
// outside the loan bounds is rejected; a non-positive principal yields the
// zero result.
func (s *Server) handleEMI(w http.ResponseWriter, r *http.Request) {
	var req emiRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	principal, err := req.Principal.Signed()
	if err != nil {
		writeError(w, r, badRequest("principal_amount must be a number"))
		return
	}
	rate, err := req.InterestRate.Signed()
	if err != nil {
		writeError(w, r, badRequest("interest_rate must be a number"))
		return
	}
	if err := core.ValidateLoanTerms(rate, req.TenureMonths); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loan.ComputeEMI(principal, rate, req.TenureMonths))
}

// handleEMISchedule answers GET /api/emi/schedule?principal=&rate=&months=.
func (s *Server) handleEMISchedule(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	principal, err := parseDecimalParam(q, "principal")
	if err != nil {
		writeError(w, r, err)
		return
	}
	rate, err := parseDecimalParam(q, "rate")
	if err != nil {
		writeError(w, r, err)
		return
	}
	months, err := parseIntParam(q, "months")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := core.ValidateLoanTerms(rate, months); err != nil {
		writeError(w, r, err)
		return
	}
	rows := loan.Schedule(principal, rate, months)
	if rows == nil {
		rows = []loan.Row{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"emi":      loan.ComputeEMI(principal, rate, months),
		"schedule": rows,
	})
}
