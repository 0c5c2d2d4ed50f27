package patients

import (
	"cmp"
	"fmt"
	"slices"

	"golang.org/x/text/cases"
)

var monthNames = []string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

// MonthIndex returns the 1-based calendar position of a month name, matched
// case-insensitively, or 0 when the name is not a month.
func MonthIndex(name string) int {
	// A Caser keeps state, so it cannot be shared across goroutines.
	folded := cases.Fold().String(name)
	for i, m := range monthNames {
		if folded == m {
			return i + 1
		}
	}
	return 0
}

// NotFoundError is returned when the target identity is absent
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Name)
}

// FindPatient returns the first record whose name equals name exactly
func FindPatient(records []Patient, name string) (*Patient, error) {
	for i := range records {
		if records[i].Name == name {
			return &records[i], nil
		}
	}
	return nil, &NotFoundError{Name: name}
}

// Others returns every record whose name differs from name, in input order
func Others(records []Patient, name string) []Patient {
	out := make([]Patient, 0, len(records))
	for _, p := range records {
		if p.Name != name {
			out = append(out, p)
		}
	}
	return out
}

func yearOf(e *DiagnosisEntry) int {
	if e.Year == nil {
		return 0
	}
	return *e.Year
}

// ChronoKey is year*100 + month index; a missing year counts as 0
func ChronoKey(e *DiagnosisEntry) int {
	month := 0
	if e.Month != nil {
		month = MonthIndex(*e.Month)
	}
	return yearOf(e)*100 + month
}

// SortChronological returns a copy of history, oldest first. Equal keys keep
// their input order.
func SortChronological(history []DiagnosisEntry) []DiagnosisEntry {
	sorted := slices.Clone(history)
	slices.SortStableFunc(sorted, func(a, b DiagnosisEntry) int {
		return cmp.Compare(ChronoKey(&a), ChronoKey(&b))
	})
	return sorted
}

// SortNewestFirst returns a copy of history, newest first. Equal keys keep
// their input order.
func SortNewestFirst(history []DiagnosisEntry) []DiagnosisEntry {
	sorted := slices.Clone(history)
	slices.SortStableFunc(sorted, func(a, b DiagnosisEntry) int {
		return cmp.Compare(ChronoKey(&b), ChronoKey(&a))
	})
	return sorted
}

// SortByYear returns a copy of history ordered by year alone
func SortByYear(history []DiagnosisEntry) []DiagnosisEntry {
	sorted := slices.Clone(history)
	slices.SortStableFunc(sorted, func(a, b DiagnosisEntry) int {
		return cmp.Compare(yearOf(&a), yearOf(&b))
	})
	return sorted
}

// LatestDiagnosis returns the entry with the greatest chronological key, the
// last one in input order on ties, or nil for an empty history.
func LatestDiagnosis(history []DiagnosisEntry) *DiagnosisEntry {
	if len(history) == 0 {
		return nil
	}
	sorted := SortChronological(history)
	return &sorted[len(sorted)-1]
}
