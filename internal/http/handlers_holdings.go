package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"financeflow/internal/core"
	"financeflow/internal/currency"
)

type holdingRequest struct {
	Type     core.HoldingType `json:"type"`
	Name     string           `json:"name"`
	Value    Amount           `json:"value"`
	Currency currency.Code    `json:"currency"`
	Category string           `json:"category"`
	Date     core.Date        `json:"date"`
	Notes    string           `json:"notes"`
}

func (s *Server) handleCreateHolding(w http.ResponseWriter, r *http.Request) {
	var req holdingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	code, err := s.currencyOr(req.Currency)
	if err != nil {
		writeError(w, r, err)
		return
	}
	value, err := req.Value.Signed()
	if err != nil {
		writeError(w, r, badRequest("value must be a number"))
		return
	}
	date := req.Date
	if date.IsEmpty() {
		date = core.DateOf(time.Now())
	}

	a, err := s.svc.Holdings.Create(r.Context(), core.AssetLiability{
		Owner:    Owner(r.Context()),
		Type:     req.Type,
		Name:     sanitizeInput(req.Name),
		Value:    core.NewMoney(value, code),
		Category: sanitizeInput(req.Category),
		Date:     date,
		Notes:    sanitizeInput(req.Notes),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) handleListHoldings(w http.ResponseWriter, r *http.Request) {
	items, err := s.svc.Holdings.List(r.Context(), Owner(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(items))
}

func (s *Server) handleDeleteHolding(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Holdings.Delete(r.Context(), Owner(r.Context()), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleNetWorth(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	nw, err := s.svc.Finance.NetWorth(r.Context(), Owner(r.Context()), sess)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nw)
}

type accountRequest struct {
	Name     string           `json:"name"`
	Type     core.AccountType `json:"type"`
	Balance  Amount           `json:"balance"`
	Currency currency.Code    `json:"currency"`
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	code, err := s.currencyOr(req.Currency)
	if err != nil {
		writeError(w, r, err)
		return
	}
	balance, err := req.Balance.Signed()
	if err != nil {
		writeError(w, r, badRequest("balance must be a number"))
		return
	}

	a, err := s.svc.Holdings.CreateAccount(r.Context(), core.Account{
		Owner:   Owner(r.Context()),
		Name:    sanitizeInput(req.Name),
		Type:    req.Type,
		Balance: core.NewMoney(balance, code),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.svc.Holdings.ListAccounts(r.Context(), Owner(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(accounts))
}

type profileRequest struct {
	Email              string `json:"email"`
	FullName           string `json:"full_name"`
	Username           string `json:"username"`
	EmailAlertsEnabled *bool  `json:"email_alerts_enabled"`
}

func (s *Server) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	alerts := true
	if req.EmailAlertsEnabled != nil {
		alerts = *req.EmailAlertsEnabled
	}

	p, err := s.svc.Profiles.Save(r.Context(), core.Profile{
		ID:                 Owner(r.Context()),
		Email:              sanitizeInput(req.Email),
		FullName:           sanitizeInput(req.FullName),
		Username:           sanitizeInput(req.Username),
		EmailAlertsEnabled: alerts,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Profiles.Get(r.Context(), Owner(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
