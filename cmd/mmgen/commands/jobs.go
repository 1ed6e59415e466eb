package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/alecthomas/kingpin/v2"

	"github.com/elecmate/mmgen/internal/model"
)

type JobsListCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	statusFilter string
	limit        int
	format       string
}

// NewJobsListCommand returns the jobs list command.
func NewJobsListCommand(rootCmd *RootCommand, jobsCmd *kingpin.CmdClause) *JobsListCommand {
	c := &JobsListCommand{rootCmd: rootCmd}

	c.Cmd = jobsCmd.Command("list", "List generation jobs, newest first.")
	c.Cmd.Flag("status", "Filter by status (pending, processing, completed, failed).").StringVar(&c.statusFilter)
	c.Cmd.Flag("limit", "Maximum number of jobs (0 is no limit).").Default("20").IntVar(&c.limit)
	c.Cmd.Flag("format", "Output format (table, json).").Default(formatTable).EnumVar(&c.format, formatTable, formatJSON)

	return c
}

func (c JobsListCommand) Name() string { return c.Cmd.FullCommand() }

func (c JobsListCommand) Run(ctx context.Context) error {
	status := model.JobStatus(strings.ToLower(c.statusFilter))
	if status != "" && !status.Valid() {
		return fmt.Errorf("invalid status filter: %s (must be: pending, processing, completed, failed)", c.statusFilter)
	}

	client, err := c.rootCmd.newClient()
	if err != nil {
		return err
	}

	jobs, err := client.ListJobs(ctx, status, c.limit)
	if err != nil {
		return fmt.Errorf("could not list jobs: %w", err)
	}

	if err := c.rootCmd.newPrinter(c.format).PrintJobList(jobs); err != nil {
		return fmt.Errorf("could not print jobs: %w", err)
	}

	return nil
}

type JobsStatusCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	id     string
	method bool
	format string
}

// NewJobsStatusCommand returns the jobs status command.
func NewJobsStatusCommand(rootCmd *RootCommand, jobsCmd *kingpin.CmdClause) *JobsStatusCommand {
	c := &JobsStatusCommand{rootCmd: rootCmd}

	c.Cmd = jobsCmd.Command("status", "Get the detailed status of a job.")
	c.Cmd.Arg("id", "Job ID.").Required().StringVar(&c.id)
	c.Cmd.Flag("method", "Print the generated method of a completed job.").BoolVar(&c.method)
	c.Cmd.Flag("format", "Output format (table, json).").Default(formatTable).EnumVar(&c.format, formatTable, formatJSON)

	return c
}

func (c JobsStatusCommand) Name() string { return c.Cmd.FullCommand() }

func (c JobsStatusCommand) Run(ctx context.Context) error {
	client, err := c.rootCmd.newClient()
	if err != nil {
		return err
	}

	job, err := client.GetJob(ctx, c.id)
	if err != nil {
		return fmt.Errorf("could not get job: %w", err)
	}

	p := c.rootCmd.newPrinter(c.format)
	if c.method {
		if job.MethodData == nil {
			return fmt.Errorf("job %s has no method (status %s): %w", job.ID, job.Status, model.ErrNotValid)
		}
		if err := p.PrintMethod(*job.MethodData); err != nil {
			return fmt.Errorf("could not print method: %w", err)
		}
		return nil
	}

	if err := p.PrintJobStatus(*job); err != nil {
		return fmt.Errorf("could not print job: %w", err)
	}

	return nil
}

type JobsCancelCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	id string
}

// NewJobsCancelCommand returns the jobs cancel command.
func NewJobsCancelCommand(rootCmd *RootCommand, jobsCmd *kingpin.CmdClause) *JobsCancelCommand {
	c := &JobsCancelCommand{rootCmd: rootCmd}

	c.Cmd = jobsCmd.Command("cancel", "Cancel a pending or processing job.")
	c.Cmd.Arg("id", "Job ID.").Required().StringVar(&c.id)

	return c
}

func (c JobsCancelCommand) Name() string { return c.Cmd.FullCommand() }

func (c JobsCancelCommand) Run(ctx context.Context) error {
	client, err := c.rootCmd.newClient()
	if err != nil {
		return err
	}

	if err := client.CancelJob(ctx, c.id); err != nil {
		return fmt.Errorf("could not cancel job: %w", err)
	}

	c.rootCmd.Logger.Infof("Job %s cancelled", c.id)
	return c.rootCmd.newPrinter(formatTable).PrintMessage(fmt.Sprintf("Job %s cancelled", c.id))
}
