// Package record implements the generic record store: schema-less CRUD over
// named collections, each persisted as one JSON array under a fixed storage
// key, plus the budget and config singletons.
package record

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// System fields managed by the store.
const (
	FieldID        = "id"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
)

// TimeFormat is the layout of createdAt/updatedAt: ISO-8601, UTC, millis.
const TimeFormat = "2006-01-02T15:04:05.000Z07:00"

// DateFormat is the layout of calendar-date fields such as expense dates.
const DateFormat = "2006-01-02"

// Timestamp formats t the way system timestamps are stored.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}

// Record is one entity instance: field names mapped to JSON primitives.
type Record map[string]any

// ID returns the record's identifier.
func (r Record) ID() string {
	return r.String(FieldID)
}

// String returns a string field. Numbers are formatted; anything else is "".
func (r Record) String(key string) string {
	switch v := r[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	case int:
		return strconv.Itoa(v)
	}
	return ""
}

// Decimal returns a numeric field. Numeric strings are parsed; absent or
// non-numeric values are zero.
func (r Record) Decimal(key string) decimal.Decimal {
	switch v := r[key].(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return decimal.Zero
		}
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	case json.Number:
		return parseDecimal(v.String())
	case string:
		return parseDecimal(v)
	case decimal.Decimal:
		return v
	}
	return decimal.Zero
}

// Bool returns a boolean field, false when absent.
func (r Record) Bool(key string) bool {
	b, _ := r[key].(bool)
	return b
}

// Clone returns a shallow copy.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// WithoutSystemFields returns a copy minus id, createdAt and updatedAt.
func (r Record) WithoutSystemFields() Record {
	out := r.Clone()
	delete(out, FieldID)
	delete(out, FieldCreatedAt)
	delete(out, FieldUpdatedAt)
	return out
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}
