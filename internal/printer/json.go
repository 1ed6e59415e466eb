package printer

import (
	"encoding/json"
	"io"

	"github.com/elecmate/mmgen/internal/api"
	"github.com/elecmate/mmgen/internal/model"
)

// JSONPrinter prints information in JSON format. Jobs and templates use the
// HTTP API representation.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

// quizItem represents a quiz in the list output.
type quizItem struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Topic     string `json:"topic"`
	Questions int    `json:"questions"`
}

// messageOutput represents a simple message output.
type messageOutput struct {
	Message string `json:"message"`
}

// PrintJobList prints jobs in JSON format.
func (j *JSONPrinter) PrintJobList(jobs []model.Job) error {
	items := make([]api.Job, len(jobs))
	for i, job := range jobs {
		items[i] = api.JobFromModel(job)
	}
	return j.encode(items)
}

// PrintJobStatus prints the full job in JSON format.
func (j *JSONPrinter) PrintJobStatus(job model.Job) error {
	return j.encode(api.JobFromModel(job))
}

// PrintMethod prints a generated method in JSON format.
func (j *JSONPrinter) PrintMethod(data model.MethodData) error {
	return j.encode(data)
}

// PrintTemplateList prints job templates in JSON format.
func (j *JSONPrinter) PrintTemplateList(templates []model.Template) error {
	items := make([]api.Template, len(templates))
	for i, t := range templates {
		items[i] = api.TemplateFromModel(t)
	}
	return j.encode(items)
}

// PrintQuizList prints quizzes in JSON format with a subset of fields.
func (j *JSONPrinter) PrintQuizList(quizzes []model.Quiz) error {
	items := make([]quizItem, len(quizzes))
	for i, q := range quizzes {
		items[i] = quizItem{ID: q.ID, Title: q.Title, Topic: q.Topic, Questions: len(q.Questions)}
	}
	return j.encode(items)
}

// PrintMessage prints a simple message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	return j.encode(messageOutput{Message: msg})
}

func (j *JSONPrinter) encode(v any) error {
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
