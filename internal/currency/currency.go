// Package currency converts and formats monetary amounts between the
// supported currencies using a static USD based rate table.
//
// Rates are constants and are never fetched; amounts are always stored in
// their original currency and converted only for display or aggregation.
package currency

import (
	"errors"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// Code is an ISO 4217 currency code.
type Code string

const (
	USD Code = "USD"
	EUR Code = "EUR"
	GBP Code = "GBP"
	INR Code = "INR"
	JPY Code = "JPY"
	AUD Code = "AUD"
	CAD Code = "CAD"
	CHF Code = "CHF"
	CNY Code = "CNY"
)

// Default is the currency assumed when none (or an unknown one) is given.
const Default = USD

var ErrUnsupported = errors.New("unsupported currency")

type info struct {
	rate     decimal.Decimal // units per 1 USD
	symbol   string
	decimals int32
}

var table = map[Code]info{
	USD: {rate: decimal.NewFromInt(1), symbol: "$", decimals: 2},
	EUR: {rate: decimal.RequireFromString("0.92"), symbol: "€", decimals: 2},
	GBP: {rate: decimal.RequireFromString("0.79"), symbol: "£", decimals: 2},
	INR: {rate: decimal.RequireFromString("83.12"), symbol: "₹", decimals: 2},
	JPY: {rate: decimal.RequireFromString("149.50"), symbol: "¥", decimals: 0},
	AUD: {rate: decimal.RequireFromString("1.52"), symbol: "A$", decimals: 2},
	CAD: {rate: decimal.RequireFromString("1.36"), symbol: "C$", decimals: 2},
	CHF: {rate: decimal.RequireFromString("0.88"), symbol: "CHF", decimals: 2},
	CNY: {rate: decimal.RequireFromString("7.24"), symbol: "¥", decimals: 2},
}

var ordered = []Code{USD, EUR, GBP, INR, JPY, AUD, CAD, CHF, CNY}

// Supported returns the canonical currency set in display order.
// The same set is accepted for input and offered for display.
func Supported() []Code {
	out := make([]Code, len(ordered))
	copy(out, ordered)
	return out
}

// IsSupported reports whether c is in the rate table.
func IsSupported(c Code) bool {
	_, ok := table[c]
	return ok
}

// Parse normalizes s into a Code. An empty string yields Default.
func Parse(s string) (Code, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return Default, nil
	}
	c := Code(s)
	if !IsSupported(c) {
		return "", ErrUnsupported
	}
	return c, nil
}

// Rate returns the units of c per 1 USD. Unknown codes rate as 1.
func Rate(c Code) decimal.Decimal {
	if in, ok := table[normalize(c)]; ok {
		return in.rate
	}
	return decimal.NewFromInt(1)
}

// Symbol returns the display symbol for c, falling back to "$".
func Symbol(c Code) string {
	if in, ok := table[normalize(c)]; ok {
		return in.symbol
	}
	return table[Default].symbol
}

// Decimals returns the number of fraction digits shown for c.
func Decimals(c Code) int32 {
	if in, ok := table[normalize(c)]; ok {
		return in.decimals
	}
	return 2
}

func normalize(c Code) Code {
	return Code(strings.ToUpper(strings.TrimSpace(string(c))))
}

// Convert maps amount from one currency to another through USD.
// An unknown source currency is treated as USD.
func Convert(amount decimal.Decimal, from, to Code) decimal.Decimal {
	from, to = normalize(from), normalize(to)
	if from == to {
		return amount
	}
	inUSD := amount.Div(Rate(from))
	return inUSD.Mul(Rate(to))
}

// Format converts amount into to and renders it with the currency symbol
// and grouped thousands. The magnitude is always shown without a sign.
func Format(amount decimal.Decimal, from, to Code) string {
	return FormatIn(Convert(amount, from, to), to)
}

// FormatIn renders an amount already expressed in c.
func FormatIn(amount decimal.Decimal, c Code) string {
	places := Decimals(c)
	rounded := amount.Abs().Round(places)
	f, _ := rounded.Float64()
	layout := "#,###.##"
	if places == 0 {
		layout = "#,###."
	}
	return Symbol(c) + humanize.FormatFloat(layout, f)
}
