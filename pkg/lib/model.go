package lib

import (
	"errors"
	"time"

	"github.com/elecmate/mmgen/internal/model"
)

var (
	// ErrNotFound is returned when a job or template doesn't exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a job with the same ID already exists.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotValid is returned when the input is not valid, for example a
	// query shorter than 50 characters or cancelling a finished job.
	ErrNotValid = errors.New("not valid")
)

// JobStatus represents the lifecycle state of a job.
//
//	pending -> processing -> completed
//	pending|processing -> failed
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// DetailLevel controls how much content the generator produces.
type DetailLevel string

const (
	// DetailLevelNormal is the default.
	DetailLevelNormal DetailLevel = "normal"
	// DetailLevelDetailed adds inspection checkpoints and BS 7671 references.
	DetailLevelDetailed DetailLevel = "detailed"
)

// EquipmentDetails describes the equipment a method is generated for.
// EquipmentType and Location are required.
type EquipmentDetails struct {
	EquipmentType      string
	Location           string
	InstallationType   string
	AgeYears           string
	LastInspectionDate string
	KnownIssues        string
	AdditionalNotes    string
}

// Step is one instruction of a maintenance method.
type Step struct {
	StepNumber            int
	Title                 string
	Content               string
	EstimatedDuration     string
	Safety                []string
	ToolsRequired         []string
	MaterialsNeeded       []string
	InspectionCheckpoints []string
	BSReferences          []string
	LinkedHazards         []string
	Qualifications        []string
	Observations          []string
	DefectCodes           []string
}

// Method is a generated maintenance method.
type Method struct {
	Title                  string
	Summary                string
	Frequency              string
	RequiredQualifications []string
	Steps                  []Step
	Recommendations        []string
}

// QualityMetrics summarises a generated method.
type QualityMetrics struct {
	StepCount                 int
	SafetyItemCount           int
	BSReferenceCount          int
	InspectionCheckpointCount int
	TotalEstimatedMinutes     int
}

// Job is a read-only snapshot of a generation job.
type Job struct {
	ID          string
	Query       string
	Equipment   EquipmentDetails
	DetailLevel DetailLevel
	Status      JobStatus
	Progress    int
	CurrentStep string
	// Method is set when the job is completed.
	Method *Method
	// ErrorMessage is set when the job failed.
	ErrorMessage   string
	QualityMetrics *QualityMetrics
	CreatedAt      time.Time
	UpdatedAt      time.Time
	StartedAt      *time.Time
	CompletedAt    *time.Time
}

// Template is a predefined job form for common equipment.
type Template struct {
	ID          string
	Name        string
	Description string
	Query       string
	Equipment   EquipmentDetails
}

// CreateJobOpts are the options to create a job.
type CreateJobOpts struct {
	// Query describes the work, at least 50 characters once trimmed.
	Query     string
	Equipment EquipmentDetails
	// DetailLevel defaults to DetailLevelNormal.
	DetailLevel DetailLevel
}

// ListJobsOpts filters a job listing.
type ListJobsOpts struct {
	// Status filters by status when not empty.
	Status JobStatus
	// Limit caps the number of jobs when greater than zero.
	Limit int
}

func fromInternalJob(j model.Job) Job {
	out := Job{
		ID:           j.ID,
		Query:        j.Query,
		Equipment:    EquipmentDetails(j.EquipmentDetails),
		DetailLevel:  DetailLevel(j.DetailLevel),
		Status:       JobStatus(j.Status),
		Progress:     j.Progress,
		CurrentStep:  j.CurrentStep,
		ErrorMessage: j.ErrorMessage,
		CreatedAt:    j.CreatedAt,
		UpdatedAt:    j.UpdatedAt,
		StartedAt:    j.StartedAt,
		CompletedAt:  j.CompletedAt,
	}

	if j.MethodData != nil {
		m := fromInternalMethod(*j.MethodData)
		out.Method = &m
	}
	if j.QualityMetrics != nil {
		qm := QualityMetrics(*j.QualityMetrics)
		out.QualityMetrics = &qm
	}

	return out
}

func fromInternalMethod(d model.MethodData) Method {
	steps := make([]Step, len(d.Steps))
	for i, s := range model.CloneSteps(d.Steps) {
		steps[i] = Step(s)
	}
	return Method{
		Title:                  d.Title,
		Summary:                d.Summary,
		Frequency:              d.Frequency,
		RequiredQualifications: append([]string(nil), d.RequiredQualifications...),
		Steps:                  steps,
		Recommendations:        append([]string(nil), d.Recommendations...),
	}
}

func toInternalPayload(j Job, title string) model.ReportPayload {
	steps := make([]model.Step, len(j.Method.Steps))
	for i, s := range j.Method.Steps {
		steps[i] = model.Step(s).Clone()
	}
	if title == "" {
		title = model.DefaultReportTitle(j.Equipment.EquipmentType)
	}
	return model.ReportPayload{
		ReportTitle:      title,
		EquipmentDetails: model.EquipmentDetails(j.Equipment),
		Steps:            steps,
		Recommendations:  append([]string(nil), j.Method.Recommendations...),
		Summary:          j.Method.Summary,
	}
}

func fromInternalTemplate(t model.Template) Template {
	return Template{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Query:       t.Query,
		Equipment:   EquipmentDetails(t.EquipmentDetails()),
	}
}

// mapError maps internal errors to the public sentinels keeping the original message.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, model.ErrNotFound):
		return &mappedError{original: err, sentinel: ErrNotFound}
	case errors.Is(err, model.ErrAlreadyExists):
		return &mappedError{original: err, sentinel: ErrAlreadyExists}
	case errors.Is(err, model.ErrNotValid):
		return &mappedError{original: err, sentinel: ErrNotValid}
	default:
		return err
	}
}

type mappedError struct {
	original error
	sentinel error
}

func (e *mappedError) Error() string { return e.original.Error() }

func (e *mappedError) Is(target error) bool { return target == e.sentinel }

func (e *mappedError) Unwrap() error { return e.original }
