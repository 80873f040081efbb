package log

import (
	"context"
	"log/slog"
	"net/http"
)

// ContextKey type for context keys
type ContextKey string

const (
	// LoggerContextKey is the context key for the logger
	LoggerContextKey ContextKey = "logger"
)

// Middleware creates HTTP middleware that adds a logger to the request context
func Middleware(logger *Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Add logger to request context
			ctx := context.WithValue(r.Context(), LoggerContextKey, logger)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FromContext extracts a logger from the request context
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	// Return default logger if not found
	return &Logger{
		Logger:    slog.Default(),
		component: "unknown",
	}
}

// RequestIDMiddleware adds request ID to logger context
func RequestIDMiddleware(extractRequestID func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := extractRequestID(r)

			// Get logger from context and add request ID
			logger := FromContext(r.Context()).With(FieldRequestID, requestID)

			// Update context with enriched logger
			ctx := context.WithValue(r.Context(), LoggerContextKey, logger)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// StructuredLogger provides structured logging methods with context awareness
type StructuredLogger struct {
	logger *Logger
}

// NewStructuredLogger creates a new structured logger
func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{
		logger: logger,
	}
}

// LogTransactionCreated logs a stored income or expense
func (sl *StructuredLogger) LogTransactionCreated(ctx context.Context, owner, id, txnType, category, amount, currency string) {
	fields := NewFields().
		WithOwner(owner).
		WithTransaction(id, txnType, category).
		WithMoney(amount, currency).
		WithOperation(OpCreate).
		WithComponent(ComponentTransaction)

	sl.logger.InfoContext(ctx, "Transaction created successfully", fields.ToSlice()...)
}

// LogBillPaid logs a bill payment and the due date it rolled to
func (sl *StructuredLogger) LogBillPaid(ctx context.Context, owner, billID, txnID, nextDue string) {
	fields := NewFields().
		WithOwner(owner).
		WithOperation(OpPay).
		WithComponent(ComponentBill)
	fields[FieldBillID] = billID
	fields[FieldTransactionID] = txnID
	fields[FieldNextDue] = nextDue

	sl.logger.InfoContext(ctx, "Bill paid", fields.ToSlice()...)
}

// LogLoanPayment logs a repayment against a loan
func (sl *StructuredLogger) LogLoanPayment(ctx context.Context, owner, loanID, amount, status string) {
	fields := NewFields().
		WithOwner(owner).
		WithOperation(OpPay).
		WithComponent(ComponentLoan)
	fields[FieldLoanID] = loanID
	fields[FieldAmount] = amount
	fields[FieldStatus] = status

	sl.logger.InfoContext(ctx, "Loan payment recorded", fields.ToSlice()...)
}

// LogError logs an error with structured context
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, component string, operation string, fields LogFields) {
	allFields := fields.
		WithError(err).
		WithOperation(operation).
		WithComponent(component)

	sl.logger.ErrorContext(ctx, msg, allFields.ToSlice()...)
}
