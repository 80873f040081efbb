package log

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldPath          = "path"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldOwner         = "user_id"
	FieldCategory      = "category"
	FieldAmount        = "amount"
	FieldCurrency      = "currency"
	FieldTxnType       = "transaction_type"
	FieldTransactionID = "transaction_id"
	FieldBillID        = "bill_id"
	FieldLoanID        = "loan_id"
	FieldNextDue       = "next_due_date"
	FieldStatus        = "status"
)

// Components defines standard component names
const (
	ComponentApp         = "app"
	ComponentHTTP        = "http"
	ComponentTransaction = "transaction"
	ComponentBill        = "bill"
	ComponentLoan        = "loan"
	ComponentWorker      = "worker"
	ComponentScheduler   = "scheduler"
)

// Operations defines standard operation names
const (
	OpCreate = "create"
	OpPay    = "pay"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithRoute adds the request path
func (f LogFields) WithRoute(path string) LogFields {
	f[FieldPath] = path
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithOwner adds the owner id
func (f LogFields) WithOwner(owner string) LogFields {
	f[FieldOwner] = owner
	return f
}

// WithMoney adds amount and currency fields. Amounts are logged as strings
// so decimals keep their precision.
func (f LogFields) WithMoney(amount string, currency string) LogFields {
	f[FieldAmount] = amount
	f[FieldCurrency] = currency
	return f
}

// WithTransaction adds transaction-related fields
func (f LogFields) WithTransaction(id, txnType, category string) LogFields {
	f[FieldTransactionID] = id
	f[FieldTxnType] = txnType
	f[FieldCategory] = category
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
