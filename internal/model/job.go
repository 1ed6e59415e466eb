package model

import (
	"fmt"
	"time"
)

// JobStatus represents the state of a generation job.
type JobStatus string

const (
	// JobStatusPending indicates the job is queued and waiting for a worker.
	JobStatusPending JobStatus = "pending"
	// JobStatusProcessing indicates a worker is generating the method.
	JobStatusProcessing JobStatus = "processing"
	// JobStatusCompleted indicates the method data is ready.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the job failed or was cancelled.
	JobStatusFailed JobStatus = "failed"
)

// Terminal returns true when the status will not change anymore.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Valid returns true for known statuses.
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusPending, JobStatusProcessing, JobStatusCompleted, JobStatusFailed:
		return true
	}
	return false
}

// DetailLevel controls how much content the generator produces.
type DetailLevel string

const (
	DetailLevelNormal   DetailLevel = "normal"
	DetailLevelDetailed DetailLevel = "detailed"
)

// CancelledMessage is the error message recorded on jobs cancelled by the user.
const CancelledMessage = "cancelled by user"

// Job is an asynchronous maintenance method generation.
type Job struct {
	ID               string
	Query            string
	EquipmentDetails EquipmentDetails
	DetailLevel      DetailLevel
	Status           JobStatus
	Progress         int
	CurrentStep      string
	MethodData       *MethodData
	ErrorMessage     string
	QualityMetrics   *QualityMetrics
	CreatedAt        time.Time
	UpdatedAt        time.Time
	StartedAt        *time.Time
	CompletedAt      *time.Time
}

// Validate validates the job input.
func (j Job) Validate() error {
	if j.ID == "" {
		return fmt.Errorf("id is required: %w", ErrNotValid)
	}
	if err := ValidateQuery(j.Query); err != nil {
		return err
	}
	if err := j.EquipmentDetails.Validate(); err != nil {
		return err
	}
	switch j.DetailLevel {
	case DetailLevelNormal, DetailLevelDetailed:
	default:
		return fmt.Errorf("unknown detail level %q: %w", j.DetailLevel, ErrNotValid)
	}
	if !j.Status.Valid() {
		return fmt.Errorf("unknown status %q: %w", j.Status, ErrNotValid)
	}
	if j.Progress < 0 || j.Progress > 100 {
		return fmt.Errorf("progress must be between 0 and 100: %w", ErrNotValid)
	}
	return nil
}

// Elapsed returns how long the job took (or has taken so far) since it was created.
func (j Job) Elapsed(now time.Time) time.Duration {
	end := now
	if j.CompletedAt != nil {
		end = *j.CompletedAt
	}
	if end.Before(j.CreatedAt) {
		return 0
	}
	return end.Sub(j.CreatedAt)
}

// MethodData is the structured result of a completed job.
type MethodData struct {
	Title                  string   `json:"title" yaml:"title"`
	Summary                string   `json:"summary" yaml:"summary"`
	Frequency              string   `json:"frequency,omitempty" yaml:"frequency,omitempty"`
	RequiredQualifications []string `json:"requiredQualifications,omitempty" yaml:"requiredQualifications,omitempty"`
	Steps                  []Step   `json:"steps" yaml:"steps"`
	Recommendations        []string `json:"recommendations" yaml:"recommendations"`
}

// QualityMetrics summarises a generated method.
type QualityMetrics struct {
	StepCount                 int `json:"stepCount"`
	SafetyItemCount           int `json:"safetyItemCount"`
	BSReferenceCount          int `json:"bsReferenceCount"`
	InspectionCheckpointCount int `json:"inspectionCheckpointCount"`
	TotalEstimatedMinutes     int `json:"totalEstimatedMinutes"`
}
