// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request
// data: JSON bodies, the owner and display currency headers, date windows
// and input sanitization.

package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"financeflow/internal/core"
	"financeflow/internal/currency"
)

const (
	// OwnerHeader identifies the caller. Authentication happens upstream.
	OwnerHeader = "X-User-ID"
	// CurrencyHeader selects the display currency of a request.
	CurrencyHeader = "X-Display-Currency"

	maxBodyBytes = 1 << 20
	maxOwnerLen  = 128
)

// requestError is a malformed request detected before any service call.
type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &requestError{msg: fmt.Sprintf(format, args...)}
}

// decodeJSON reads a JSON body into v. Unknown fields and trailing data are
// rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return badRequest("request body exceeds %d bytes", maxBodyBytes)
		}
		return badRequest("cannot read request body")
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return badRequest("request body is required")
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, core.ErrInvalidDate) {
			return badRequest("dates must use YYYY-MM-DD")
		}
		return badRequest("invalid JSON body: %v", err)
	}
	if dec.More() {
		return badRequest("request body must hold a single JSON object")
	}
	return nil
}

type ownerKey struct{}

// ownerFromRequest returns the sanitized X-User-ID header.
func ownerFromRequest(r *http.Request) (string, bool) {
	owner := sanitizeInput(r.Header.Get(OwnerHeader))
	if owner == "" || len(owner) > maxOwnerLen {
		return "", false
	}
	return owner, true
}

func withOwner(ctx context.Context, owner string) context.Context {
	return context.WithValue(ctx, ownerKey{}, owner)
}

// Owner returns the caller set by the owner middleware.
func Owner(ctx context.Context) string {
	owner, _ := ctx.Value(ownerKey{}).(string)
	return owner
}

// sessionFromRequest builds the display currency session from the
// X-Display-Currency header, then the currency query parameter, then def.
func sessionFromRequest(r *http.Request, def currency.Code) (currency.Session, error) {
	raw := r.Header.Get(CurrencyHeader)
	if raw == "" {
		raw = r.URL.Query().Get("currency")
	}
	if strings.TrimSpace(raw) == "" {
		return currency.NewSession(def), nil
	}
	code, err := currency.Parse(raw)
	if err != nil {
		return currency.Session{}, err
	}
	return currency.NewSession(code), nil
}

// parseWindow reads the optional from/to query dates. Both ends are
// inclusive; a missing end leaves that side open.
func parseWindow(q url.Values) (core.Window, error) {
	var w core.Window
	if v := strings.TrimSpace(q.Get("from")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return w, badRequest("from must use YYYY-MM-DD")
		}
		w.Start = d.Time
	}
	if v := strings.TrimSpace(q.Get("to")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return w, badRequest("to must use YYYY-MM-DD")
		}
		w.End = core.DayWindow(d.Time).End
	}
	if !w.Start.IsZero() && w.End.IsZero() {
		w.End = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
	}
	if !w.Start.IsZero() && w.End.Before(w.Start) {
		return w, badRequest("from must not be after to")
	}
	return w, nil
}

// parseIntParam reads a positive integer query parameter.
func parseIntParam(q url.Values, name string) (int, error) {
	v := strings.TrimSpace(q.Get(name))
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, badRequest("%s must be a positive integer", name)
	}
	return n, nil
}

// parseDecimalParam reads a non-negative decimal query parameter.
func parseDecimalParam(q url.Values, name string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(q.Get(name)))
	if err != nil || d.IsNegative() {
		return decimal.Zero, badRequest("%s must be a non-negative number", name)
	}
	return d, nil
}

// Amount accepts a monetary amount as a JSON string or number. Comma
// decimal separators are allowed.
type Amount string

func (a *Amount) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" {
		s = ""
	}
	*a = Amount(s)
	return nil
}

// Positive returns the amount rounded to cents, or zero when it is not a
// positive number so that entity validation reports it.
func (a Amount) Positive() decimal.Decimal {
	d, err := core.ParseAmount(string(a))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Signed returns the amount rounded to cents; it may be zero or negative.
func (a Amount) Signed() (decimal.Decimal, error) {
	if strings.TrimSpace(string(a)) == "" {
		return decimal.Zero, nil
	}
	return core.ParseSignedAmount(string(a))
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
