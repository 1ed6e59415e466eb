package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"

	"github.com/elecmate/mmgen/internal/model"
	"github.com/elecmate/mmgen/internal/report"
)

const (
	exportFormatPDF  = "pdf"
	exportFormatXLSX = "xlsx"
)

type ExportCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	id     string
	format string
	out    string
	title  string
}

// NewExportCommand returns the export command.
func NewExportCommand(rootCmd *RootCommand, app *kingpin.Application) *ExportCommand {
	c := &ExportCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("export", "Export the method of a completed job to PDF or XLSX.")
	c.Cmd.Arg("id", "Job ID.").Required().StringVar(&c.id)
	c.Cmd.Flag("format", "Document format (pdf, xlsx).").Default(exportFormatPDF).EnumVar(&c.format, exportFormatPDF, exportFormatXLSX)
	c.Cmd.Flag("out", "Output file (defaults to <id>.<format>).").Short('o').StringVar(&c.out)
	c.Cmd.Flag("title", "Report title (defaults to \"Maintenance Method - <equipment type>\").").StringVar(&c.title)

	return c
}

func (c ExportCommand) Name() string { return c.Cmd.FullCommand() }

func (c ExportCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	client, err := c.rootCmd.newClient()
	if err != nil {
		return err
	}

	job, err := client.GetJob(ctx, c.id)
	if err != nil {
		return fmt.Errorf("could not get job: %w", err)
	}
	if job.Status != model.JobStatusCompleted || job.MethodData == nil {
		return fmt.Errorf("job %s is %s, only completed jobs can be exported: %w", job.ID, job.Status, model.ErrNotValid)
	}

	payload := model.ReportPayload{
		ReportTitle:      c.title,
		EquipmentDetails: job.EquipmentDetails,
		Steps:            job.MethodData.Steps,
		Recommendations:  job.MethodData.Recommendations,
		Summary:          job.MethodData.Summary,
	}
	if payload.ReportTitle == "" {
		payload.ReportTitle = model.DefaultReportTitle(job.EquipmentDetails.EquipmentType)
	}

	out := c.out
	if out == "" {
		out = fmt.Sprintf("%s.%s", job.ID, c.format)
	}

	switch c.format {
	case exportFormatXLSX:
		data, err := report.Spreadsheet(payload)
		if err != nil {
			return fmt.Errorf("could not build spreadsheet: %w", err)
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("could not write %s: %w", out, err)
		}

	default:
		url, err := client.GeneratePDF(ctx, payload)
		if err != nil {
			return fmt.Errorf("could not generate pdf: %w", err)
		}
		logger.Debugf("PDF available at %s", url)
		if err := downloadTo(ctx, client, url, out); err != nil {
			return err
		}
	}

	logger.Infof("Job %s exported to %s", job.ID, out)
	return c.rootCmd.newPrinter(formatTable).PrintMessage(out)
}
