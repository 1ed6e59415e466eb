package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/alecthomas/kingpin/v2"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/elecmate/mmgen/internal/apiclient"
	"github.com/elecmate/mmgen/internal/model"
	"github.com/elecmate/mmgen/internal/poller"
	"github.com/elecmate/mmgen/internal/printer"
	"github.com/elecmate/mmgen/internal/tui"
	"github.com/elecmate/mmgen/internal/workflow"
)

type GenerateCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	template    string
	query       string
	equipment   model.EquipmentDetails
	detailLevel string
	noTUI       bool
	format      string
	pdf         bool
	out         string
}

// NewGenerateCommand returns the generate command.
func NewGenerateCommand(rootCmd *RootCommand, app *kingpin.Application) *GenerateCommand {
	c := &GenerateCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("generate", "Generate a maintenance method and wait for it.")
	c.Cmd.Flag("template", "Fill the form from a template (other flags override its fields).").Short('t').StringVar(&c.template)
	c.Cmd.Flag("query", "Description of the maintenance work (at least 50 characters).").Short('q').StringVar(&c.query)
	c.Cmd.Flag("equipment-type", "Equipment type.").StringVar(&c.equipment.EquipmentType)
	c.Cmd.Flag("location", "Equipment location.").StringVar(&c.equipment.Location)
	c.Cmd.Flag("installation-type", "Installation type (domestic, commercial, industrial...).").StringVar(&c.equipment.InstallationType)
	c.Cmd.Flag("age", "Installation age in years.").StringVar(&c.equipment.AgeYears)
	c.Cmd.Flag("last-inspection", "Last inspection date.").StringVar(&c.equipment.LastInspectionDate)
	c.Cmd.Flag("known-issues", "Known issues of the equipment.").StringVar(&c.equipment.KnownIssues)
	c.Cmd.Flag("notes", "Additional notes.").StringVar(&c.equipment.AdditionalNotes)
	c.Cmd.Flag("detail", "Detail level (normal, detailed).").Default(string(model.DetailLevelNormal)).EnumVar(&c.detailLevel, string(model.DetailLevelNormal), string(model.DetailLevelDetailed))
	c.Cmd.Flag("no-tui", "Print progress lines instead of the interactive view.").BoolVar(&c.noTUI)
	c.Cmd.Flag("format", "Output format of the method (table, json).").Default(formatTable).EnumVar(&c.format, formatTable, formatJSON)
	c.Cmd.Flag("pdf", "Export the method to PDF once generated.").BoolVar(&c.pdf)
	c.Cmd.Flag("out", "File the PDF is downloaded to (only the URL is printed when empty).").StringVar(&c.out)

	return c
}

func (c GenerateCommand) Name() string { return c.Cmd.FullCommand() }

func (c GenerateCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	client, err := c.rootCmd.newClient()
	if err != nil {
		return err
	}

	var templates []model.Template
	if c.template != "" {
		templates, err = client.ListTemplates(ctx)
		if err != nil {
			return fmt.Errorf("could not list templates: %w", err)
		}
	}

	session, err := workflow.NewSession(workflow.SessionConfig{
		Backend:   client,
		Notifier:  newToastNotifier(c.rootCmd.Stderr, c.rootCmd.NoColor),
		Templates: templates,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("could not create session: %w", err)
	}

	if err := c.fillForm(session); err != nil {
		return err
	}

	if err := session.Submit(ctx); err != nil {
		return err
	}

	p, err := poller.NewPoller(poller.PollerConfig{Getter: client, Logger: logger})
	if err != nil {
		return fmt.Errorf("could not create poller: %w", err)
	}

	cancelled, err := c.wait(ctx, session, p)
	if err != nil {
		return err
	}
	stopped, err := cancelIfProcessing(ctx, session, cancelled)
	if err != nil {
		return err
	}
	if stopped {
		return fmt.Errorf("generation cancelled")
	}

	if session.State() != workflow.StateSuccess {
		return fmt.Errorf("generation failed")
	}

	return c.showResults(ctx, session, client)
}

// cancelIfProcessing cancels the remote job when the wait was stopped while the
// job was still processing. A job that finished in the meantime is kept.
func cancelIfProcessing(ctx context.Context, session *workflow.Session, cancelled bool) (bool, error) {
	if !cancelled && ctx.Err() == nil {
		return false, nil
	}
	if session.State() != workflow.StateProcessing {
		return false, nil
	}
	if err := session.Cancel(context.WithoutCancel(ctx)); err != nil {
		return false, err
	}
	return true, nil
}

// fillForm applies the template (if any) and then the explicit flags.
func (c GenerateCommand) fillForm(session *workflow.Session) error {
	if c.template != "" {
		if err := session.SelectTemplate(c.template); err != nil {
			return fmt.Errorf("could not select template: %w", err)
		}
	}

	query := session.Query()
	if c.query != "" {
		query = c.query
	}
	if err := session.SetQuery(query); err != nil {
		return err
	}

	eq := session.Equipment()
	for _, f := range []struct {
		dst *string
		src string
	}{
		{&eq.EquipmentType, c.equipment.EquipmentType},
		{&eq.Location, c.equipment.Location},
		{&eq.InstallationType, c.equipment.InstallationType},
		{&eq.AgeYears, c.equipment.AgeYears},
		{&eq.LastInspectionDate, c.equipment.LastInspectionDate},
		{&eq.KnownIssues, c.equipment.KnownIssues},
		{&eq.AdditionalNotes, c.equipment.AdditionalNotes},
	} {
		if f.src != "" {
			*f.dst = f.src
		}
	}
	if err := session.SetEquipment(eq); err != nil {
		return err
	}

	return session.SetDetailLevel(model.DetailLevel(c.detailLevel))
}

// wait polls the job until it finishes. It returns true when the user
// cancelled from the interactive view.
func (c GenerateCommand) wait(ctx context.Context, session *workflow.Session, p *poller.Poller) (bool, error) {
	jobID := session.JobID()

	if c.noTUI {
		last := ""
		_, err := p.Run(ctx, jobID, func(j model.Job) {
			session.HandleJobUpdate(j)
			if line := fmt.Sprintf("%3d%% %s", j.Progress, j.CurrentStep); line != last && !j.Status.Terminal() {
				fmt.Fprintln(c.rootCmd.Stderr, line)
				last = line
			}
		})
		if err != nil && ctx.Err() == nil {
			return false, fmt.Errorf("could not poll job %s: %w", jobID, err)
		}
		return false, nil
	}

	pollCtx, pollCancel := context.WithCancel(ctx)
	defer pollCancel()

	program := tea.NewProgram(
		tui.NewProgressModel(session.Equipment().EquipmentType),
		tea.WithContext(pollCtx),
		tea.WithInput(c.rootCmd.Stdin),
		tea.WithOutput(c.rootCmd.Stderr),
	)

	var (
		wg      sync.WaitGroup
		pollErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, pollErr = p.Run(pollCtx, jobID, func(j model.Job) {
			session.HandleJobUpdate(j)
			program.Send(tui.JobUpdateMsg{Job: j})
		})
		if pollErr != nil && pollCtx.Err() == nil {
			program.Send(tui.PollDoneMsg{Err: pollErr})
		}
	}()

	final, runErr := program.Run()
	pollCancel()
	wg.Wait()

	m, _ := final.(tui.ProgressModel)
	if m.Cancelled() {
		return true, nil
	}
	if runErr != nil && ctx.Err() == nil {
		return false, fmt.Errorf("progress view failed: %w", runErr)
	}
	if pollErr != nil && ctx.Err() == nil {
		return false, fmt.Errorf("could not poll job %s: %w", jobID, pollErr)
	}
	return false, nil
}

func (c GenerateCommand) showResults(ctx context.Context, session *workflow.Session, client *apiclient.Client) error {
	summary, err := session.Summary()
	if err != nil {
		return err
	}
	fmt.Fprintf(c.rootCmd.Stderr, "%s: %d steps in %s\n", summary.Title, summary.StepCount, printer.FormatElapsed(summary.Elapsed))

	if err := session.ViewResults(); err != nil {
		return err
	}

	data, err := session.MethodData()
	if err != nil {
		return err
	}
	if err := c.rootCmd.newPrinter(c.format).PrintMethod(*data); err != nil {
		return fmt.Errorf("could not print method: %w", err)
	}

	if !c.pdf {
		return nil
	}

	url, err := session.ExportPDF(ctx)
	if err != nil {
		return err
	}

	if strings.TrimSpace(c.out) == "" {
		fmt.Fprintln(c.rootCmd.Stderr, url)
		return nil
	}

	return downloadTo(ctx, client, url, c.out)
}

func downloadTo(ctx context.Context, client *apiclient.Client, url, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create %s: %w", path, err)
	}
	defer f.Close()

	if err := client.Download(ctx, url, f); err != nil {
		return fmt.Errorf("could not download %s: %w", url, err)
	}
	return f.Close()
}
