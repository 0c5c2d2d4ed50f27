// Package format turns optional record fields into display strings.
package format

import (
	"fmt"
	"strconv"
	"time"
)

// Fallback is shown in place of a missing or empty value
const Fallback = "—"

// Value renders *v, or Fallback when v is nil or points at an empty string.
// Zero numbers and false are rendered as-is.
func Value[T any](v *T) string {
	return ValueOr(v, Fallback)
}

// ValueOr is Value with a caller-supplied fallback
func ValueOr[T any](v *T, fallback string) string {
	if v == nil {
		return fallback
	}
	switch x := any(*v).(type) {
	case string:
		if x == "" {
			return fallback
		}
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	default:
		return fmt.Sprint(x)
	}
}

// Number renders a float without trailing zeros, or Fallback when f is nil
func Number(f *float64) string {
	if f == nil {
		return Fallback
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

// Text returns s, or Fallback when s is empty
func Text(s string) string {
	if s == "" {
		return Fallback
	}
	return s
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"01/02/2006",
	"2006/01/02",
	"January 2, 2006",
	"Jan 2, 2006",
}

// DateOfBirth renders raw as MM/DD/YYYY. Unparseable input is returned
// unchanged and missing input becomes Fallback.
func DateOfBirth(raw *string) string {
	if raw == nil || *raw == "" {
		return Fallback
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, *raw); err == nil {
			return t.Format("01/02/2006")
		}
	}
	return *raw
}
