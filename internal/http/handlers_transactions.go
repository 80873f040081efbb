package http

import (
	"net/http"
	"slices"

	"github.com/gorilla/mux"

	"financeflow/internal/core"
	"financeflow/internal/currency"
)

// currencyOr parses raw, falling back to the server default when empty.
func (s *Server) currencyOr(raw currency.Code) (currency.Code, error) {
	if raw == "" {
		return currency.NewSession(s.defaultCurrency).Currency(), nil
	}
	return currency.Parse(string(raw))
}

type transactionRequest struct {
	Type        core.TransactionType `json:"type"`
	Category    string               `json:"category"`
	Description string               `json:"description"`
	Amount      Amount               `json:"amount"`
	Currency    currency.Code        `json:"currency"`
	Date        core.Date            `json:"date"`
	AccountID   string               `json:"account_id"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	code, err := s.currencyOr(req.Currency)
	if err != nil {
		writeError(w, r, err)
		return
	}

	owner := Owner(r.Context())
	tx, err := s.svc.Transactions.Create(r.Context(), core.Transaction{
		Owner:       owner,
		Type:        req.Type,
		Category:    sanitizeInput(req.Category),
		Description: sanitizeInput(req.Description),
		Amount:      core.NewMoney(req.Amount.Positive(), code),
		Date:        req.Date,
		AccountID:   sanitizeInput(req.AccountID),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.events.LogTransactionCreated(r.Context(), owner, tx.ID, string(tx.Type), tx.Category, tx.Amount.Amount.String(), string(tx.Amount.Currency))
	writeJSON(w, http.StatusCreated, tx)
}

// handleListTransactions answers GET /api/transactions?from=&to=&type=.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	win, err := parseWindow(q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	typ := core.TransactionType(q.Get("type"))
	if typ != "" && typ != core.Income && typ != core.Expense {
		writeError(w, r, badRequest("type must be income or expense"))
		return
	}

	txns, err := s.svc.Transactions.List(r.Context(), Owner(r.Context()), win, typ)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(txns))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Transactions.Delete(r.Context(), Owner(r.Context()), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type budgetRequest struct {
	Category string            `json:"category"`
	Limit    Amount            `json:"limit_amount"`
	Currency currency.Code     `json:"currency"`
	Period   core.BudgetPeriod `json:"period"`
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	code, err := s.currencyOr(req.Currency)
	if err != nil {
		writeError(w, r, err)
		return
	}
	period := req.Period
	if period == "" {
		period = core.PeriodMonthly
	}

	b, err := s.svc.Transactions.CreateBudget(r.Context(), core.Budget{
		Owner:    Owner(r.Context()),
		Category: sanitizeInput(req.Category),
		Limit:    core.NewMoney(req.Limit.Positive(), code),
		Period:   period,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.svc.Transactions.ListBudgets(r.Context(), Owner(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(budgets))
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Transactions.DeleteBudget(r.Context(), Owner(r.Context()), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleBudgetOverview answers GET /api/budgets/overview?period=.
func (s *Server) handleBudgetOverview(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	period := core.BudgetPeriod(r.URL.Query().Get("period"))
	if period != "" && !slices.Contains(core.BudgetPeriods, period) {
		writeError(w, r, badRequest("period must be weekly, monthly or yearly"))
		return
	}

	views, err := s.svc.Finance.BudgetOverview(r.Context(), Owner(r.Context()), sess, period)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"currency": sess.Currency(),
		"budgets":  nonNil(views),
	})
}

func (s *Server) handleBudgetItems(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	category := mux.Vars(r)["category"]
	items, win, err := s.svc.Finance.CategoryItems(r.Context(), Owner(r.Context()), sess, category)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"category": category,
		"window":   win,
		"currency": sess.Currency(),
		"items":    items,
	})
}

// nonNil keeps empty lists encoding as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
