package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/oklog/run"
	"github.com/sirupsen/logrus"

	"github.com/elecmate/mmgen/cmd/mmgen/commands"
	"github.com/elecmate/mmgen/internal/log"
	loglogrus "github.com/elecmate/mmgen/internal/log/logrus"
)

const (
	// Version is the application version (set via ldflags).
	Version = "dev"
)

// Run runs the main application.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) (err error) {
	app := kingpin.New("mmgen", "Maintenance method generator for electrical installations.")
	app.DefaultEnvars()
	rootCmd := commands.NewRootCommand(app)

	// Setup commands (registers flags).
	serveCmd := commands.NewServeCommand(rootCmd, app)
	generateCmd := commands.NewGenerateCommand(rootCmd, app)
	templatesCmd := commands.NewTemplatesCommand(rootCmd, app)
	exportCmd := commands.NewExportCommand(rootCmd, app)

	// Job subcommands share a parent command.
	jobsCmd := app.Command("jobs", "Manage generation jobs.")
	jobsListCmd := commands.NewJobsListCommand(rootCmd, jobsCmd)
	jobsStatusCmd := commands.NewJobsStatusCommand(rootCmd, jobsCmd)
	jobsCancelCmd := commands.NewJobsCancelCommand(rootCmd, jobsCmd)

	// Study centre subcommands share a parent command.
	quizCmd := commands.NewQuizCommand(app)
	quizListCmd := commands.NewQuizListCommand(rootCmd, quizCmd)
	quizRunCmd := commands.NewQuizRunCommand(rootCmd, quizCmd)

	cmds := map[string]commands.Command{
		serveCmd.Name():      serveCmd,
		generateCmd.Name():   generateCmd,
		templatesCmd.Name():  templatesCmd,
		exportCmd.Name():     exportCmd,
		jobsListCmd.Name():   jobsListCmd,
		jobsStatusCmd.Name(): jobsStatusCmd,
		jobsCancelCmd.Name(): jobsCancelCmd,
		quizListCmd.Name():   quizListCmd,
		quizRunCmd.Name():    quizRunCmd,
	}

	// Parse command.
	cmdName, err := app.Parse(args[1:])
	if err != nil {
		return fmt.Errorf("invalid command configuration: %w", err)
	}

	// Set standard input/output.
	rootCmd.Stdin = stdin
	rootCmd.Stdout = stdout
	rootCmd.Stderr = stderr

	// Commands printing tables or JSON, or drawing a TUI, don't log unless
	// debug is enabled.
	quietCommands := map[string]bool{
		"templates":   true,
		"generate":    true,
		"jobs list":   true,
		"jobs status": true,
		"quiz list":   true,
		"quiz run":    true,
	}
	if quietCommands[cmdName] && !rootCmd.Debug {
		rootCmd.NoLog = true
	}

	// Set logger.
	rootCmd.Logger = getLogger(ctx, *rootCmd)

	var g run.Group

	// OS signals.
	{
		signalCtx, signalCancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
		defer signalCancel()

		g.Add(
			func() error {
				<-signalCtx.Done()
				rootCmd.Logger.Debugf("Termination signal received")
				return nil
			},
			func(_ error) {
				signalCancel()
			},
		)
	}

	// Execute command.
	{
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		g.Add(
			func() error {
				err := cmds[cmdName].Run(ctx)
				if err != nil {
					return fmt.Errorf("%q command failed: %w", cmdName, err)
				}
				return nil
			},
			func(_ error) {
				cancel()
			},
		)
	}

	return g.Run()
}

// getLogger returns the application logger.
func getLogger(ctx context.Context, config commands.RootCommand) log.Logger {
	if config.NoLog {
		return log.Noop
	}

	// If logger not disabled use logrus logger.
	logrusLog := logrus.New()
	logrusLog.Out = config.Stderr // By default logger goes to stderr (so it can split stdout prints).
	logrusLogEntry := logrus.NewEntry(logrusLog)

	if config.Debug {
		logrusLogEntry.Logger.SetLevel(logrus.DebugLevel)
	}

	// Log format.
	switch config.LoggerType {
	case commands.LoggerTypeDefault:
		logrusLogEntry.Logger.SetFormatter(&logrus.TextFormatter{
			ForceColors:   !config.NoColor,
			DisableColors: config.NoColor,
		})
	case commands.LoggerTypeJSON:
		logrusLogEntry.Logger.SetFormatter(&logrus.JSONFormatter{})
	}

	logger := loglogrus.NewLogrus(logrusLogEntry).WithValues(log.Kv{
		"version": Version,
	})

	logger.Debugf("Debug level is enabled") // Will log only when debug enabled.

	return logger
}

func main() {
	ctx := context.Background()
	err := Run(ctx, os.Args, os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
