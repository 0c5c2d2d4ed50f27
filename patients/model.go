// Package patients holds the patient record model as served by the upstream
// endpoint, plus the selection helpers used to pick the focal record and its
// most recent diagnosis entry.
//
// Every optional field is a pointer so a missing or null JSON value stays
// distinguishable from a zero. The nil-safe accessor methods let callers walk
// arbitrarily deep without checking each level.
package patients

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Patient is one record of the fetched collection. Name is the lookup key.
type Patient struct {
	Name             string            `json:"name"`
	Gender           *string           `json:"gender,omitempty"`
	Age              *int              `json:"age,omitempty"`
	BloodType        *string           `json:"blood_type,omitempty"`
	DateOfBirth      *string           `json:"date_of_birth,omitempty"`
	PhoneNumber      *string           `json:"phone_number,omitempty"`
	Email            *string           `json:"email,omitempty"`
	EmergencyContact *EmergencyContact `json:"emergency_contact,omitempty"`
	InsuranceType    *string           `json:"insurance_type,omitempty"`
	ProfilePicture   *string           `json:"profile_picture,omitempty"`
	DiagnosisHistory []DiagnosisEntry  `json:"diagnosis_history,omitempty"`
}

// EmergencyContact accepts either {"name", "phone"} or a bare string, which
// is taken as the phone number.
type EmergencyContact struct {
	Name  *string `json:"name,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

func (c *EmergencyContact) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var phone string
		if err := json.Unmarshal(data, &phone); err != nil {
			return err
		}
		c.Phone = &phone
		return nil
	}

	type plain EmergencyContact
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("emergency_contact: %w", err)
	}
	*c = EmergencyContact(p)
	return nil
}

// DiagnosisEntry is one dated clinical observation
type DiagnosisEntry struct {
	Month           *string        `json:"month,omitempty"`
	Year            *int           `json:"year,omitempty"`
	Diagnosis       *string        `json:"diagnosis,omitempty"`
	HeartRate       *Reading       `json:"heart_rate,omitempty"`
	RespiratoryRate *Reading       `json:"respiratory_rate,omitempty"`
	Temperature     *Reading       `json:"temperature,omitempty"`
	BloodPressure   *BloodPressure `json:"blood_pressure,omitempty"`
}

// BloodPressure pairs the systolic and diastolic readings
type BloodPressure struct {
	Systolic  *Reading `json:"systolic,omitempty"`
	Diastolic *Reading `json:"diastolic,omitempty"`
}

// Reading is a measured value with its optional qualitative level. It decodes
// from {"value": 78, "levels": "Normal"} as well as from a bare number.
type Reading struct {
	Value  *float64 `json:"value,omitempty"`
	Levels *string  `json:"levels,omitempty"`
}

func (r *Reading) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] != '{' {
		var v float64
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("reading: %w", err)
		}
		r.Value = &v
		return nil
	}

	type plain Reading
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("reading: %w", err)
	}
	*r = Reading(p)
	return nil
}

// Val returns the reading's value, nil-safe
func (r *Reading) Val() *float64 {
	if r == nil {
		return nil
	}
	return r.Value
}

func (bp *BloodPressure) Sys() *Reading {
	if bp == nil {
		return nil
	}
	return bp.Systolic
}

func (bp *BloodPressure) Dia() *Reading {
	if bp == nil {
		return nil
	}
	return bp.Diastolic
}

func (e *DiagnosisEntry) BP() *BloodPressure {
	if e == nil {
		return nil
	}
	return e.BloodPressure
}

func (e *DiagnosisEntry) HR() *Reading {
	if e == nil {
		return nil
	}
	return e.HeartRate
}

func (e *DiagnosisEntry) RR() *Reading {
	if e == nil {
		return nil
	}
	return e.RespiratoryRate
}

func (e *DiagnosisEntry) Temp() *Reading {
	if e == nil {
		return nil
	}
	return e.Temperature
}

// Contact returns the emergency contact, nil-safe
func (p *Patient) Contact() *EmergencyContact {
	if p == nil {
		return nil
	}
	return p.EmergencyContact
}

func (c *EmergencyContact) ContactName() *string {
	if c == nil {
		return nil
	}
	return c.Name
}

func (c *EmergencyContact) ContactPhone() *string {
	if c == nil {
		return nil
	}
	return c.Phone
}
