package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/kingpin/v2"

	"github.com/elecmate/mmgen/internal/content"
	"github.com/elecmate/mmgen/internal/model"
	"github.com/elecmate/mmgen/internal/quiz"
	storageio "github.com/elecmate/mmgen/internal/storage/io"
)

// QuizCommand is the parent command of the study centre subcommands.
type QuizCommand struct {
	Cmd *kingpin.CmdClause

	quizzesFile string
}

// NewQuizCommand returns the quiz parent command.
func NewQuizCommand(app *kingpin.Application) *QuizCommand {
	c := &QuizCommand{}

	c.Cmd = app.Command("quiz", "Study centre quizzes.")
	c.Cmd.Flag("quizzes-file", "YAML file with quizzes (defaults to the embedded ones).").StringVar(&c.quizzesFile)

	return c
}

func (c *QuizCommand) load(ctx context.Context) ([]model.Quiz, []model.InlineCheck, error) {
	repo := storageio.NewCatalogYAMLRepository(catalogFS(c.quizzesFile))
	quizzes, checks, err := repo.LoadStudyContent(ctx, catalogPath(c.quizzesFile, content.QuizzesFile))
	if err != nil {
		return nil, nil, fmt.Errorf("could not load study content: %w", err)
	}
	return quizzes, checks, nil
}

type QuizListCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand
	quizCmd *QuizCommand

	format string
}

// NewQuizListCommand returns the quiz list command.
func NewQuizListCommand(rootCmd *RootCommand, quizCmd *QuizCommand) *QuizListCommand {
	c := &QuizListCommand{rootCmd: rootCmd, quizCmd: quizCmd}

	c.Cmd = quizCmd.Cmd.Command("list", "List the available quizzes.")
	c.Cmd.Flag("format", "Output format (table, json).").Default(formatTable).EnumVar(&c.format, formatTable, formatJSON)

	return c
}

func (c QuizListCommand) Name() string { return c.Cmd.FullCommand() }

func (c QuizListCommand) Run(ctx context.Context) error {
	quizzes, _, err := c.quizCmd.load(ctx)
	if err != nil {
		return err
	}

	if err := c.rootCmd.newPrinter(c.format).PrintQuizList(quizzes); err != nil {
		return fmt.Errorf("could not print quizzes: %w", err)
	}

	return nil
}

type QuizRunCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand
	quizCmd *QuizCommand

	id string
}

// NewQuizRunCommand returns the quiz run command.
func NewQuizRunCommand(rootCmd *RootCommand, quizCmd *QuizCommand) *QuizRunCommand {
	c := &QuizRunCommand{rootCmd: rootCmd, quizCmd: quizCmd}

	c.Cmd = quizCmd.Cmd.Command("run", "Answer a quiz or an inline knowledge check.")
	c.Cmd.Arg("id", "Quiz or inline check ID.").Required().StringVar(&c.id)

	return c
}

func (c QuizRunCommand) Name() string { return c.Cmd.FullCommand() }

func (c QuizRunCommand) Run(ctx context.Context) error {
	quizzes, checks, err := c.quizCmd.load(ctx)
	if err != nil {
		return err
	}

	in := bufio.NewScanner(c.rootCmd.Stdin)

	for _, check := range checks {
		if check.ID == c.id {
			return runInlineCheck(in, c.rootCmd.Stdout, check)
		}
	}

	q, err := quiz.Find(quizzes, c.id)
	if err != nil {
		return err
	}
	session, err := quiz.NewSession(q)
	if err != nil {
		return err
	}

	return runQuiz(ctx, in, c.rootCmd.Stdout, session)
}

// runQuiz asks every question of the session reading the chosen options from in.
func runQuiz(ctx context.Context, in *bufio.Scanner, out io.Writer, session *quiz.Session) error {
	q := session.Quiz()
	fmt.Fprintf(out, "%s (%d questions)\n", q.Title, len(q.Questions))

	for i, question := range q.Questions {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		option, err := ask(in, out, fmt.Sprintf("%d. %s", i+1, question.Question), question.Options)
		if err != nil {
			return err
		}

		correct, err := session.Answer(i, option)
		if err != nil {
			return err
		}
		printVerdict(out, correct, question)
	}

	correct, total := session.Score()
	fmt.Fprintf(out, "\nScore: %d/%d\n", correct, total)
	return nil
}

func runInlineCheck(in *bufio.Scanner, out io.Writer, check model.InlineCheck) error {
	option, err := ask(in, out, check.Question.Question, check.Question.Options)
	if err != nil {
		return err
	}

	correct, _, err := quiz.Check(check, option)
	if err != nil {
		return err
	}
	printVerdict(out, correct, check.Question)
	return nil
}

// ask prints a question and reads a 1 based option until a valid one is given.
func ask(in *bufio.Scanner, out io.Writer, text string, options []string) (int, error) {
	fmt.Fprintf(out, "\n%s\n", text)
	for i, o := range options {
		fmt.Fprintf(out, "  %d) %s\n", i+1, o)
	}

	for {
		fmt.Fprint(out, "> ")
		if !in.Scan() {
			if err := in.Err(); err != nil {
				return 0, fmt.Errorf("could not read answer: %w", err)
			}
			return 0, fmt.Errorf("no answer given: %w", io.ErrUnexpectedEOF)
		}

		n, err := strconv.Atoi(strings.TrimSpace(in.Text()))
		if err == nil && n >= 1 && n <= len(options) {
			return n - 1, nil
		}
		fmt.Fprintf(out, "Choose an option between 1 and %d\n", len(options))
	}
}

func printVerdict(out io.Writer, correct bool, q model.QuizQuestion) {
	if correct {
		fmt.Fprintln(out, "Correct.")
	} else {
		fmt.Fprintf(out, "Incorrect, the answer is %d) %s.\n", q.CorrectAnswer+1, q.Options[q.CorrectAnswer])
	}
	if q.Explanation != "" {
		fmt.Fprintln(out, q.Explanation)
	}
}
