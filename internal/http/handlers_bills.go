package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"financeflow/internal/core"
	"financeflow/internal/currency"
)

const defaultReminderDays = 3

type billRequest struct {
	Name         string         `json:"name"`
	Amount       Amount         `json:"amount"`
	Currency     currency.Code  `json:"currency"`
	Category     string         `json:"category"`
	DueDate      core.Date      `json:"due_date"`
	Frequency    core.Frequency `json:"frequency"`
	ReminderDays *int           `json:"reminder_days"`
}

func (s *Server) handleCreateBill(w http.ResponseWriter, r *http.Request) {
	var req billRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	code, err := s.currencyOr(req.Currency)
	if err != nil {
		writeError(w, r, err)
		return
	}
	reminder := defaultReminderDays
	if req.ReminderDays != nil {
		reminder = *req.ReminderDays
	}
	freq := req.Frequency
	if freq == "" {
		freq = core.Monthly
	}

	b, err := s.svc.Bills.Create(r.Context(), core.Bill{
		Owner:        Owner(r.Context()),
		Name:         sanitizeInput(req.Name),
		Amount:       core.NewMoney(req.Amount.Positive(), code),
		Category:     sanitizeInput(req.Category),
		DueDate:      req.DueDate,
		Frequency:    freq,
		ReminderDays: reminder,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (s *Server) handleListBills(w http.ResponseWriter, r *http.Request) {
	bills, err := s.svc.Bills.List(r.Context(), Owner(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(bills))
}

// handlePayBill records today's payment and rolls the due date forward.
func (s *Server) handlePayBill(w http.ResponseWriter, r *http.Request) {
	owner := Owner(r.Context())
	bill, tx, err := s.svc.Bills.MarkPaid(r.Context(), owner, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.events.LogBillPaid(r.Context(), owner, bill.ID, tx.ID, bill.DueDate.String())
	writeJSON(w, http.StatusOK, map[string]any{
		"bill":        bill,
		"transaction": tx,
	})
}

func (s *Server) handleDeleteBill(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Bills.Delete(r.Context(), Owner(r.Context()), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
