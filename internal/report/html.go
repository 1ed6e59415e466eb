// Package report renders maintenance methods to shareable documents.
package report

import (
	"embed"
	"fmt"
	"html"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/elecmate/mmgen/internal/model"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

var methodTpl = template.Must(template.New("method.html.tmpl").
	Funcs(template.FuncMap{"lists": stepLists}).
	ParseFS(templatesFS, "templates/method.html.tmpl"))

var strictPolicy = bluemonday.StrictPolicy()

// SanitizeText removes any markup from user or model provided text.
func SanitizeText(s string) string {
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(s)))
}

func sanitizeAll(ss []string) []string {
	if ss == nil {
		return nil
	}
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		if s = SanitizeText(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Sanitize returns a copy of the payload with every free text field sanitized
// and the title defaulted.
func Sanitize(p model.ReportPayload) model.ReportPayload {
	eq := p.EquipmentDetails
	out := model.ReportPayload{
		ReportTitle: SanitizeText(p.ReportTitle),
		EquipmentDetails: model.EquipmentDetails{
			EquipmentType:      SanitizeText(eq.EquipmentType),
			Location:           SanitizeText(eq.Location),
			InstallationType:   SanitizeText(eq.InstallationType),
			AgeYears:           SanitizeText(eq.AgeYears),
			LastInspectionDate: SanitizeText(eq.LastInspectionDate),
			KnownIssues:        SanitizeText(eq.KnownIssues),
			AdditionalNotes:    SanitizeText(eq.AdditionalNotes),
		},
		Recommendations: sanitizeAll(p.Recommendations),
		Summary:         SanitizeText(p.Summary),
	}
	if out.ReportTitle == "" {
		out.ReportTitle = model.DefaultReportTitle(out.EquipmentDetails.EquipmentType)
	}

	out.Steps = make([]model.Step, 0, len(p.Steps))
	for _, s := range p.Steps {
		out.Steps = append(out.Steps, model.Step{
			StepNumber:            s.StepNumber,
			Title:                 SanitizeText(s.Title),
			Content:               SanitizeText(s.Content),
			EstimatedDuration:     SanitizeText(s.EstimatedDuration),
			Safety:                sanitizeAll(s.Safety),
			ToolsRequired:         sanitizeAll(s.ToolsRequired),
			MaterialsNeeded:       sanitizeAll(s.MaterialsNeeded),
			InspectionCheckpoints: sanitizeAll(s.InspectionCheckpoints),
			BSReferences:          sanitizeAll(s.BSReferences),
			LinkedHazards:         sanitizeAll(s.LinkedHazards),
			Qualifications:        sanitizeAll(s.Qualifications),
			Observations:          sanitizeAll(s.Observations),
			DefectCodes:           sanitizeAll(s.DefectCodes),
		})
	}

	return out
}

type detail struct {
	Label string
	Value string
}

type stepList struct {
	Title string
	Items []string
}

func stepLists(s model.Step) []stepList {
	all := []stepList{
		{"Safety", s.Safety},
		{"Tools required", s.ToolsRequired},
		{"Materials needed", s.MaterialsNeeded},
		{"Inspection checkpoints", s.InspectionCheckpoints},
		{"BS references", s.BSReferences},
		{"Linked hazards", s.LinkedHazards},
		{"Qualifications", s.Qualifications},
		{"Observations", s.Observations},
		{"Defect codes", s.DefectCodes},
	}

	lists := make([]stepList, 0, len(all))
	for _, l := range all {
		if len(l.Items) > 0 {
			lists = append(lists, l)
		}
	}
	return lists
}

// equipmentDetails returns the labelled non empty equipment fields in display order.
func equipmentDetails(eq model.EquipmentDetails) []detail {
	all := []detail{
		{"Equipment type", eq.EquipmentType},
		{"Location", eq.Location},
		{"Installation type", eq.InstallationType},
		{"Age (years)", eq.AgeYears},
		{"Last inspection", eq.LastInspectionDate},
		{"Known issues", eq.KnownIssues},
		{"Additional notes", eq.AdditionalNotes},
	}

	details := make([]detail, 0, len(all))
	for _, d := range all {
		if d.Value != "" {
			details = append(details, d)
		}
	}
	return details
}

// RenderHTML writes the HTML document of a payload. The payload is sanitized first.
func RenderHTML(w io.Writer, p model.ReportPayload, generatedAt time.Time) error {
	p = Sanitize(p)

	data := struct {
		model.ReportPayload
		Details     []detail
		GeneratedAt time.Time
	}{
		ReportPayload: p,
		Details:       equipmentDetails(p.EquipmentDetails),
		GeneratedAt:   generatedAt,
	}

	if err := methodTpl.Execute(w, data); err != nil {
		return fmt.Errorf("could not render report template: %w", err)
	}

	return nil
}
