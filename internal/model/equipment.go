package model

import (
	"fmt"
	"strings"
)

// MinQueryLength is the minimum number of (trimmed) characters a job query needs.
const MinQueryLength = 50

// EquipmentDetails describes the equipment a maintenance method is generated for.
// All fields are free text as typed by the user.
type EquipmentDetails struct {
	EquipmentType      string `json:"equipmentType"`
	Location           string `json:"location"`
	InstallationType   string `json:"installationType"`
	AgeYears           string `json:"ageYears"`
	LastInspectionDate string `json:"lastInspectionDate"`
	KnownIssues        string `json:"knownIssues"`
	AdditionalNotes    string `json:"additionalNotes"`
}

// Validate checks the fields required to submit a job.
func (e EquipmentDetails) Validate() error {
	if strings.TrimSpace(e.EquipmentType) == "" {
		return fmt.Errorf("equipment type is required: %w", ErrNotValid)
	}
	if strings.TrimSpace(e.Location) == "" {
		return fmt.Errorf("location is required: %w", ErrNotValid)
	}
	return nil
}

// HasRequired reports whether equipment type and location are filled in.
// Whitespace counts as filled in, Validate is the stricter check.
func (e EquipmentDetails) HasRequired() bool {
	return e.EquipmentType != "" && e.Location != ""
}

// ValidateQuery checks a job query is long enough to be useful.
func ValidateQuery(query string) error {
	if n := len([]rune(strings.TrimSpace(query))); n < MinQueryLength {
		return fmt.Errorf("query must be at least %d characters, got %d: %w", MinQueryLength, n, ErrNotValid)
	}
	return nil
}
