package printer

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/elecmate/mmgen/internal/model"
)

// TablePrinter prints information in a human friendly table format.
type TablePrinter struct {
	writer io.Writer
}

// NewTablePrinter creates a new table printer.
func NewTablePrinter(w io.Writer) *TablePrinter {
	return &TablePrinter{writer: w}
}

// PrintJobList prints jobs in a table format.
func (t *TablePrinter) PrintJobList(jobs []model.Job) error {
	if len(jobs) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "ID\tSTATUS\tPROGRESS\tEQUIPMENT\tCREATED")
	for _, j := range jobs {
		fmt.Fprintf(tw, "%s\t%s\t%d%%\t%s\t%s\n",
			j.ID,
			j.Status,
			j.Progress,
			j.EquipmentDetails.EquipmentType,
			TimeAgo(j.CreatedAt),
		)
	}

	return nil
}

// PrintJobStatus prints detailed job status.
func (t *TablePrinter) PrintJobStatus(job model.Job) error {
	fmt.Fprintf(t.writer, "ID:         %s\n", job.ID)
	fmt.Fprintf(t.writer, "Status:     %s\n", job.Status)
	fmt.Fprintf(t.writer, "Progress:   %d%%\n", job.Progress)
	if job.CurrentStep != "" {
		fmt.Fprintf(t.writer, "Step:       %s\n", job.CurrentStep)
	}
	fmt.Fprintf(t.writer, "Equipment:  %s\n", job.EquipmentDetails.EquipmentType)
	fmt.Fprintf(t.writer, "Location:   %s\n", job.EquipmentDetails.Location)
	fmt.Fprintf(t.writer, "Detail:     %s\n", job.DetailLevel)
	fmt.Fprintf(t.writer, "Created:    %s\n", FormatTimestamp(job.CreatedAt))

	if job.StartedAt != nil {
		fmt.Fprintf(t.writer, "Started:    %s\n", FormatTimestamp(*job.StartedAt))
	}

	if job.CompletedAt != nil {
		fmt.Fprintf(t.writer, "Finished:   %s\n", FormatTimestamp(*job.CompletedAt))
		fmt.Fprintf(t.writer, "Took:       %s\n", FormatElapsed(job.Elapsed(*job.CompletedAt)))
	}

	if job.ErrorMessage != "" {
		fmt.Fprintf(t.writer, "Error:      %s\n", job.ErrorMessage)
	}

	if m := job.QualityMetrics; m != nil {
		fmt.Fprintf(t.writer, "Steps:      %d (%d safety items, %d BS references, %d checkpoints)\n",
			m.StepCount, m.SafetyItemCount, m.BSReferenceCount, m.InspectionCheckpointCount)
	}

	return nil
}

// PrintMethod prints a generated method as readable text.
func (t *TablePrinter) PrintMethod(data model.MethodData) error {
	fmt.Fprintf(t.writer, "%s\n", data.Title)
	fmt.Fprintf(t.writer, "%s\n", strings.Repeat("=", len(data.Title)))
	if data.Summary != "" {
		fmt.Fprintf(t.writer, "\n%s\n", data.Summary)
	}
	if data.Frequency != "" {
		fmt.Fprintf(t.writer, "\nFrequency: %s\n", data.Frequency)
	}
	if len(data.RequiredQualifications) > 0 {
		fmt.Fprintf(t.writer, "Qualifications: %s\n", strings.Join(data.RequiredQualifications, ", "))
	}

	for _, s := range data.Steps {
		fmt.Fprintf(t.writer, "\n%d. %s", s.StepNumber, s.Title)
		if s.EstimatedDuration != "" {
			fmt.Fprintf(t.writer, " (%s)", s.EstimatedDuration)
		}
		fmt.Fprintln(t.writer)
		if s.Content != "" {
			fmt.Fprintf(t.writer, "   %s\n", s.Content)
		}
		t.printList("Safety", s.Safety)
		t.printList("Tools", s.ToolsRequired)
		t.printList("Materials", s.MaterialsNeeded)
		t.printList("Checkpoints", s.InspectionCheckpoints)
		t.printList("BS 7671", s.BSReferences)
		t.printList("Hazards", s.LinkedHazards)
		t.printList("Observations", s.Observations)
		t.printList("Defect codes", s.DefectCodes)
	}

	if len(data.Recommendations) > 0 {
		fmt.Fprintf(t.writer, "\nRecommendations:\n")
		for _, r := range data.Recommendations {
			fmt.Fprintf(t.writer, "  - %s\n", r)
		}
	}

	return nil
}

func (t *TablePrinter) printList(label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(t.writer, "   %s:\n", label)
	for _, it := range items {
		fmt.Fprintf(t.writer, "     - %s\n", it)
	}
}

// PrintTemplateList prints job templates in a table format.
func (t *TablePrinter) PrintTemplateList(templates []model.Template) error {
	if len(templates) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "ID\tNAME\tEQUIPMENT\tLOCATION")
	for _, tpl := range templates {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", tpl.ID, tpl.Name, tpl.EquipmentType, tpl.Location)
	}

	return nil
}

// PrintQuizList prints study centre quizzes in a table format.
func (t *TablePrinter) PrintQuizList(quizzes []model.Quiz) error {
	if len(quizzes) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "ID\tTOPIC\tTITLE\tQUESTIONS")
	for _, q := range quizzes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", q.ID, q.Topic, q.Title, len(q.Questions))
	}

	return nil
}

// PrintMessage prints a simple text message.
func (t *TablePrinter) PrintMessage(msg string) error {
	fmt.Fprintln(t.writer, msg)
	return nil
}
