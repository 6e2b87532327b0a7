package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// parseNullableTime parses a sql.NullString into a *time.Time using the
// given layout. NULL, empty, or unparseable values come back as nil.
func parseNullableTime(s sql.NullString, layout string) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(layout, s.String)
	if err != nil {
		return nil
	}
	return &t
}

// nullableTimeToString converts a *time.Time into a value suitable for
// SQLite storage (SQL NULL for nil).
func nullableTimeToString(t *time.Time, layout string) any {
	if t == nil {
		return nil
	}
	return t.Format(layout)
}

// decToString stores a decimal losslessly as TEXT.
func decToString(d decimal.Decimal) string {
	return d.String()
}

// parseDecimal reads a stored decimal back; a broken stored value is a data
// corruption, surfaced as an error rather than coerced to zero.
func parseDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parsing stored decimal %q: %w", s, err)
	}
	return d, nil
}

// nullableDecToString converts a *decimal.Decimal for storage.
func nullableDecToString(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}

// parseNullableDecimal reads an optional stored decimal.
func parseNullableDecimal(s sql.NullString) (*decimal.Decimal, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	d, err := parseDecimal(s.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// nullableStr converts an empty string to SQL NULL.
func nullableStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func intToBool(i int) bool {
	return i != 0
}
