package printer

import "github.com/elecmate/mmgen/internal/model"

// Printer knows how to print jobs, methods and study content in different formats.
type Printer interface {
	PrintJobList(jobs []model.Job) error
	PrintJobStatus(job model.Job) error
	PrintMethod(data model.MethodData) error
	PrintTemplateList(templates []model.Template) error
	PrintQuizList(quizzes []model.Quiz) error
	PrintMessage(msg string) error
}
