package storage

import (
	"database/sql"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"financeflow/internal/core"
	"financeflow/internal/currency"
)

// Dialect selects the SQL flavour of a database.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

func (d Dialect) String() string {
	if d == Postgres {
		return "postgres"
	}
	return "sqlite"
}

func (d Dialect) driverName() string {
	if d == Postgres {
		return "postgres"
	}
	return "sqlite"
}

// rebind rewrites ? placeholders into $n for Postgres.
func (d Dialect) rebind(query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Dates and timestamps are stored as text in both dialects. The fixed
// width layout keeps lexical order equal to time order.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

func formatDate(d core.Date) string {
	return d.String()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseDate(s string) (core.Date, error) {
	if s == "" {
		return core.Date{}, nil
	}
	return core.ParseDate(s)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(timestampLayout, s)
}

// dateBounds renders a window for comparison against date columns.
func dateBounds(w core.Window) (string, string) {
	return w.Start.UTC().Format(time.DateOnly), w.End.UTC().Format(time.DateOnly)
}

// timeBounds renders a window for comparison against timestamp columns.
func timeBounds(w core.Window) (string, string) {
	return formatTime(w.Start), formatTime(w.End)
}

func currencyCode(s string) currency.Code {
	if s == "" {
		return currency.Default
	}
	return currency.Code(s)
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}
