// Package validation inspects fetched patient collections. Findings are
// reported and logged, never used to reject a collection.
package validation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/giygas/patient-dashboard/interfaces"
	"github.com/giygas/patient-dashboard/patients"
)

const maxNameLength = 200

// DataValidatorImpl implements the interfaces.DataValidator interface
type DataValidatorImpl struct{}

// NewDataValidator creates a new data validator
func NewDataValidator() interfaces.DataValidator {
	return &DataValidatorImpl{}
}

// ValidatePatient checks that a record is usable as a lookup target
func (v *DataValidatorImpl) ValidatePatient(p *patients.Patient) error {
	if p == nil {
		return fmt.Errorf("patient is nil")
	}

	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("empty patient name")
	}

	if len(p.Name) > maxNameLength {
		return fmt.Errorf("patient name too long: %d characters", len(p.Name))
	}

	if p.Age != nil && (*p.Age < 0 || *p.Age > 150) {
		return fmt.Errorf("age out of range for %s: %d", p.Name, *p.Age)
	}

	return nil
}

// ReportDataQuality summarizes duplicate and unnamed records, empty
// histories, unrecognized month names and entries without vitals.
func (v *DataValidatorImpl) ReportDataQuality(records []patients.Patient) *interfaces.DataQualityReport {
	report := &interfaces.DataQualityReport{
		Records:               len(records),
		DuplicateNames:        []string{},
		RecordsWithoutHistory: []string{},
		UnknownMonths:         []string{},
	}

	seen := make(map[string]int, len(records))
	unknownMonths := make(map[string]bool)

	for i := range records {
		p := &records[i]
		if strings.TrimSpace(p.Name) == "" {
			report.UnnamedRecords++
			continue
		}

		seen[p.Name]++
		if seen[p.Name] == 2 {
			report.DuplicateNames = append(report.DuplicateNames, p.Name)
		}

		if len(p.DiagnosisHistory) == 0 {
			report.RecordsWithoutHistory = append(report.RecordsWithoutHistory, p.Name)
		}

		for j := range p.DiagnosisHistory {
			e := &p.DiagnosisHistory[j]
			if e.Month == nil || patients.MonthIndex(*e.Month) == 0 {
				month := "<missing>"
				if e.Month != nil {
					month = *e.Month
				}
				unknownMonths[month] = true
			}
			if e.BP().Sys().Val() == nil && e.BP().Dia().Val() == nil && e.HR().Val() == nil {
				report.MissingVitals++
			}
		}
	}

	for month := range unknownMonths {
		report.UnknownMonths = append(report.UnknownMonths, month)
	}
	slices.Sort(report.UnknownMonths)

	return report
}
