package currency

import "github.com/shopspring/decimal"

// Session carries the display currency selected for one user session.
// It is passed explicitly to formatting calls; the zero value displays USD.
type Session struct {
	Display Code
}

// NewSession returns a session displaying c, or Default when c is unknown.
func NewSession(c Code) Session {
	if !IsSupported(normalize(c)) {
		return Session{Display: Default}
	}
	return Session{Display: normalize(c)}
}

// Currency returns the display currency, defaulting to USD.
func (s Session) Currency() Code {
	if s.Display == "" {
		return Default
	}
	return s.Display
}

// Convert expresses amount (stored in from) in the display currency.
func (s Session) Convert(amount decimal.Decimal, from Code) decimal.Decimal {
	return Convert(amount, from, s.Currency())
}

// Format converts and renders amount in the display currency.
func (s Session) Format(amount decimal.Decimal, from Code) string {
	return Format(amount, from, s.Currency())
}
