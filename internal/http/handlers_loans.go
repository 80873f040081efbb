package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"financeflow/internal/core"
	"financeflow/internal/currency"
	"financeflow/internal/services"
)

type loanRequest struct {
	Name            string        `json:"name"`
	Type            core.LoanType `json:"type"`
	PrincipalAmount Amount        `json:"principal_amount"`
	InterestRate    Amount        `json:"interest_rate"`
	TenureMonths    int           `json:"tenure_months"`
	StartDate       core.Date     `json:"start_date"`
	DueDay          int           `json:"due_day"`
	Currency        currency.Code `json:"currency"`
	Notes           string        `json:"notes"`
}

func (s *Server) handleCreateLoan(w http.ResponseWriter, r *http.Request) {
	var req loanRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	code, err := s.currencyOr(req.Currency)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rate, err := req.InterestRate.Signed()
	if err != nil {
		writeError(w, r, badRequest("interest_rate must be a number"))
		return
	}

	l, err := s.svc.Loans.Create(r.Context(), core.Loan{
		Owner:           Owner(r.Context()),
		Name:            sanitizeInput(req.Name),
		Type:            req.Type,
		PrincipalAmount: req.PrincipalAmount.Positive(),
		InterestRate:    rate,
		TenureMonths:    req.TenureMonths,
		StartDate:       req.StartDate,
		DueDay:          req.DueDay,
		Currency:        code,
		Notes:           sanitizeInput(req.Notes),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

func (s *Server) handleListLoans(w http.ResponseWriter, r *http.Request) {
	loans, err := s.svc.Loans.List(r.Context(), Owner(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(loans))
}

type loanPaymentRequest struct {
	Amount      Amount    `json:"amount"`
	PaymentDate core.Date `json:"payment_date"`
	Notes       string    `json:"notes"`
}

// handleRecordLoanPayment answers 409 for closed or defaulted loans and for
// a concurrent payment on the same loan.
func (s *Server) handleRecordLoanPayment(w http.ResponseWriter, r *http.Request) {
	var req loanPaymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	owner := Owner(r.Context())
	p, l, err := s.svc.Loans.RecordPayment(r.Context(), services.PaymentRequest{
		Owner:  owner,
		LoanID: mux.Vars(r)["id"],
		Amount: req.Amount.Positive(),
		Date:   req.PaymentDate,
		Notes:  sanitizeInput(req.Notes),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.events.LogLoanPayment(r.Context(), owner, l.ID, p.Amount.String(), string(l.Status))
	writeJSON(w, http.StatusCreated, map[string]any{
		"payment": p,
		"loan":    l,
	})
}

func (s *Server) handleListLoanPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := s.svc.Loans.Payments(r.Context(), Owner(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(payments))
}

func (s *Server) handleLoanSchedule(w http.ResponseWriter, r *http.Request) {
	rows, err := s.svc.Loans.Schedule(r.Context(), Owner(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(rows))
}
