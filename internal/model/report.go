package model

import (
	"fmt"
	"strings"
)

// ReportPayload is the data a PDF (or spreadsheet) export is rendered from.
type ReportPayload struct {
	ReportTitle      string           `json:"reportTitle"`
	EquipmentDetails EquipmentDetails `json:"equipmentDetails"`
	Steps            []Step           `json:"steps"`
	Recommendations  []string         `json:"recommendations"`
	Summary          string           `json:"summary"`
}

// DefaultReportTitle returns the title used when a payload has none.
func DefaultReportTitle(equipmentType string) string {
	equipmentType = strings.TrimSpace(equipmentType)
	if equipmentType == "" {
		return "Maintenance Method"
	}
	return "Maintenance Method - " + equipmentType
}

// Validate validates the payload.
func (p ReportPayload) Validate() error {
	if len(p.Steps) == 0 {
		return fmt.Errorf("at least one step is required: %w", ErrNotValid)
	}
	for i, s := range p.Steps {
		if strings.TrimSpace(s.Title) == "" {
			return fmt.Errorf("step %d title is required: %w", i+1, ErrNotValid)
		}
	}
	return nil
}
