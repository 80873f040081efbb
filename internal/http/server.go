package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"financeflow/internal/cache"
	"financeflow/internal/currency"
	"financeflow/internal/log"
	"financeflow/internal/middleware/ratelimit"
	"financeflow/internal/middleware/security"
	"financeflow/internal/middleware/trace"
	"financeflow/internal/services"
)

const cacheCleanupInterval = 10 * time.Minute

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options tunes the server.
type Options struct {
	DefaultCurrency    currency.Code
	RateLimitPerMinute int
	Logger             *log.Logger
}

type Server struct {
	http.Server
	svc             *services.Services
	ready           Pinger
	defaultCurrency currency.Code
	logger          *log.Logger
	events          *log.StructuredLogger

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware
	caches   *cache.Manager

	shutdownOnce sync.Once
}

// NewServer wires the JSON API over svc. ready backs /readyz.
func NewServer(addr string, svc *services.Services, ready Pinger, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	s := &Server{
		svc:             svc,
		ready:           ready,
		defaultCurrency: opts.DefaultCurrency,
		logger:          logger.WithComponent(log.ComponentHTTP),
		events:          log.NewStructuredLogger(logger),
		limiter:         ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		detector:        security.NewDetector(),
		caches:          cache.NewManager(),
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP)

	if rc := svc.Finance.ReportCache(); rc != nil {
		s.caches.Register(rc)
	}
	s.caches.StartCleanup(cacheCleanupInterval)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("no such endpoint").Write(w)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		MethodNotAllowedError().Write(w)
	})

	r.Use(
		s.tracer.Middleware,
		log.Middleware(s.logger),
		log.RequestIDMiddleware(func(r *http.Request) string { return trace.GetRequestID(r.Context()) }),
		security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware,
		security.NoStoreMiddleware,
		s.detector.Middleware,
		s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
			ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, retry later").Write(w)
		}),
	)

	r.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	// Stateless calculators
	api.HandleFunc("/currencies", s.handleCurrencies).Methods(http.MethodGet)
	api.HandleFunc("/convert", s.handleConvert).Methods(http.MethodGet)
	api.HandleFunc("/emi", s.handleEMI).Methods(http.MethodPost)
	api.HandleFunc("/emi/schedule", s.handleEMISchedule).Methods(http.MethodGet)

	api.HandleFunc("/transactions", s.owned(s.handleListTransactions)).Methods(http.MethodGet)
	api.HandleFunc("/transactions", s.owned(s.handleCreateTransaction)).Methods(http.MethodPost)
	api.HandleFunc("/transactions/{id}", s.owned(s.handleDeleteTransaction)).Methods(http.MethodDelete)

	api.HandleFunc("/budgets", s.owned(s.handleListBudgets)).Methods(http.MethodGet)
	api.HandleFunc("/budgets", s.owned(s.handleCreateBudget)).Methods(http.MethodPost)
	api.HandleFunc("/budgets/overview", s.owned(s.handleBudgetOverview)).Methods(http.MethodGet)
	api.HandleFunc("/budgets/{category}/items", s.owned(s.handleBudgetItems)).Methods(http.MethodGet)
	api.HandleFunc("/budgets/{id}", s.owned(s.handleDeleteBudget)).Methods(http.MethodDelete)

	api.HandleFunc("/bills", s.owned(s.handleListBills)).Methods(http.MethodGet)
	api.HandleFunc("/bills", s.owned(s.handleCreateBill)).Methods(http.MethodPost)
	api.HandleFunc("/bills/{id}/pay", s.owned(s.handlePayBill)).Methods(http.MethodPost)
	api.HandleFunc("/bills/{id}", s.owned(s.handleDeleteBill)).Methods(http.MethodDelete)

	api.HandleFunc("/loans", s.owned(s.handleListLoans)).Methods(http.MethodGet)
	api.HandleFunc("/loans", s.owned(s.handleCreateLoan)).Methods(http.MethodPost)
	api.HandleFunc("/loans/{id}/payments", s.owned(s.handleListLoanPayments)).Methods(http.MethodGet)
	api.HandleFunc("/loans/{id}/payments", s.owned(s.handleRecordLoanPayment)).Methods(http.MethodPost)
	api.HandleFunc("/loans/{id}/schedule", s.owned(s.handleLoanSchedule)).Methods(http.MethodGet)

	api.HandleFunc("/assets-liabilities", s.owned(s.handleListHoldings)).Methods(http.MethodGet)
	api.HandleFunc("/assets-liabilities", s.owned(s.handleCreateHolding)).Methods(http.MethodPost)
	api.HandleFunc("/assets-liabilities/{id}", s.owned(s.handleDeleteHolding)).Methods(http.MethodDelete)
	api.HandleFunc("/networth", s.owned(s.handleNetWorth)).Methods(http.MethodGet)

	api.HandleFunc("/accounts", s.owned(s.handleListAccounts)).Methods(http.MethodGet)
	api.HandleFunc("/accounts", s.owned(s.handleCreateAccount)).Methods(http.MethodPost)

	api.HandleFunc("/profile", s.owned(s.handleGetProfile)).Methods(http.MethodGet)
	api.HandleFunc("/profile", s.owned(s.handleSaveProfile)).Methods(http.MethodPut)

	api.HandleFunc("/reports", s.owned(s.handleReport)).Methods(http.MethodGet)
	api.HandleFunc("/alerts", s.owned(s.handleListAlerts)).Methods(http.MethodGet)

	// Cross-owner; access control belongs to the gateway in front.
	api.HandleFunc("/admin/reports", s.handleAdminReports).Methods(http.MethodGet)

	return r
}

// owned rejects requests without an owner and stores it in the context.
func (s *Server) owned(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := ownerFromRequest(r)
		if !ok {
			UnauthorizedError("missing or invalid " + OwnerHeader + " header").Write(w)
			return
		}
		next(w, r.WithContext(withOwner(r.Context(), owner)))
	}
}

// session resolves the display currency or writes a 400.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (currency.Session, bool) {
	sess, err := sessionFromRequest(r, s.defaultCurrency)
	if err != nil {
		writeError(w, r, err)
		return currency.Session{}, false
	}
	return sess, true
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if s.ready != nil {
		if err := s.ready.Ping(ctx); err != nil {
			s.logger.WarnContext(ctx, "Readiness check failed", "error", err)
			ErrorResponse(http.StatusServiceUnavailable, "store unavailable").Write(w)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.caches.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
