package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"
)

type TemplatesCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	format string
}

// NewTemplatesCommand returns the templates command.
func NewTemplatesCommand(rootCmd *RootCommand, app *kingpin.Application) *TemplatesCommand {
	c := &TemplatesCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("templates", "List the job templates offered by the server.")
	c.Cmd.Flag("format", "Output format (table, json).").Default(formatTable).EnumVar(&c.format, formatTable, formatJSON)

	return c
}

func (c TemplatesCommand) Name() string { return c.Cmd.FullCommand() }

func (c TemplatesCommand) Run(ctx context.Context) error {
	client, err := c.rootCmd.newClient()
	if err != nil {
		return err
	}

	templates, err := client.ListTemplates(ctx)
	if err != nil {
		return fmt.Errorf("could not list templates: %w", err)
	}

	if err := c.rootCmd.newPrinter(c.format).PrintTemplateList(templates); err != nil {
		return fmt.Errorf("could not print templates: %w", err)
	}

	return nil
}
