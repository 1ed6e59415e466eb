package report

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/elecmate/mmgen/internal/model"
)

// Sheet names of the spreadsheet export.
const (
	SheetSummary = "Summary"
	SheetSteps   = "Steps"
)

var stepHeaders = []string{
	"Step",
	"Title",
	"Content",
	"Estimated duration",
	"Safety",
	"Tools required",
	"Materials needed",
	"Inspection checkpoints",
	"BS references",
	"Linked hazards",
	"Qualifications",
	"Observations",
	"Defect codes",
}

// Spreadsheet writes the payload as an XLSX workbook with a summary sheet and
// one row per step. The payload is sanitized first.
func Spreadsheet(p model.ReportPayload) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid payload: %w", err)
	}
	p = Sanitize(p)

	f := excelize.NewFile()
	defer f.Close()

	// The default sheet becomes the summary.
	if err := f.SetSheetName(f.GetSheetName(0), SheetSummary); err != nil {
		return nil, fmt.Errorf("could not rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetSteps); err != nil {
		return nil, fmt.Errorf("could not create sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("could not create style: %w", err)
	}

	// Summary.
	summaryRows := [][]string{{"Title", p.ReportTitle}}
	for _, d := range equipmentDetails(p.EquipmentDetails) {
		summaryRows = append(summaryRows, []string{d.Label, d.Value})
	}
	if p.Summary != "" {
		summaryRows = append(summaryRows, []string{"Summary", p.Summary})
	}
	for i, r := range p.Recommendations {
		label := ""
		if i == 0 {
			label = "Recommendations"
		}
		summaryRows = append(summaryRows, []string{label, r})
	}
	for i, r := range summaryRows {
		row := i + 1
		writeCell(f, SheetSummary, 1, row, r[0])
		writeCell(f, SheetSummary, 2, row, r[1])
	}
	_ = f.SetCellStyle(SheetSummary, "A1", fmt.Sprintf("A%d", len(summaryRows)), bold)
	_ = f.SetColWidth(SheetSummary, "A", "A", 22)
	_ = f.SetColWidth(SheetSummary, "B", "B", 80)

	// Steps.
	for i, h := range stepHeaders {
		writeCell(f, SheetSteps, i+1, 1, h)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(stepHeaders), 1)
	_ = f.SetCellStyle(SheetSteps, "A1", lastHeader, bold)

	for i, s := range p.Steps {
		row := i + 2
		values := []any{
			s.StepNumber,
			s.Title,
			s.Content,
			s.EstimatedDuration,
			joinList(s.Safety),
			joinList(s.ToolsRequired),
			joinList(s.MaterialsNeeded),
			joinList(s.InspectionCheckpoints),
			joinList(s.BSReferences),
			joinList(s.LinkedHazards),
			joinList(s.Qualifications),
			joinList(s.Observations),
			joinList(s.DefectCodes),
		}
		for col, v := range values {
			writeCell(f, SheetSteps, col+1, row, v)
		}
	}
	_ = f.SetColWidth(SheetSteps, "A", "A", 6)
	_ = f.SetColWidth(SheetSteps, "B", "B", 28)
	_ = f.SetColWidth(SheetSteps, "C", "C", 60)
	_ = f.SetColWidth(SheetSteps, "D", "M", 24)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	return buf.Bytes(), nil
}

func writeCell(f *excelize.File, sheet string, col, row int, v any) {
	cell, _ := excelize.CoordinatesToCellName(col, row)
	_ = f.SetCellValue(sheet, cell, v)
}

func joinList(items []string) string {
	return strings.Join(items, "\n")
}
