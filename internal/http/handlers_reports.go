package http

import (
	"net/http"
)

// handleReport answers GET /api/reports?preset= with the summary, category
// breakdown, time buckets, bills, loans, budgets and suggestions.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	rep, err := s.svc.Finance.Report(r.Context(), Owner(r.Context()), sess, r.URL.Query().Get("preset"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := s.svc.Alerts.List(r.Context(), Owner(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(alerts))
}

func (s *Server) handleAdminReports(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	rep, err := s.svc.Finance.Admin(r.Context(), sess)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
