package storage

import (
	"context"

	"github.com/elecmate/mmgen/internal/model"
)

// ListJobsOptions filters a job listing.
type ListJobsOptions struct {
	// Status filters by status when not empty.
	Status model.JobStatus
	// Limit caps the number of returned jobs when greater than zero.
	Limit int
}

// JobRepository is the interface for generation job persistence.
type JobRepository interface {
	// CreateJob stores a new job.
	CreateJob(ctx context.Context, j model.Job) error
	// GetJob retrieves a job by ID.
	GetJob(ctx context.Context, id string) (*model.Job, error)
	// ListJobs returns jobs, newest first.
	ListJobs(ctx context.Context, opts ListJobsOptions) ([]model.Job, error)
	// ClaimNextPendingJob atomically moves the oldest pending job to processing
	// and returns it, or nil if there is no pending job.
	ClaimNextPendingJob(ctx context.Context) (*model.Job, error)
	// UpdateJobProgress sets progress and current step of a processing job.
	// Returns model.ErrNotActive when the job is not processing anymore.
	UpdateJobProgress(ctx context.Context, id string, progress int, currentStep string) error
	// CompleteJob stores the result of a processing job.
	// Returns model.ErrNotActive when the job is not processing anymore.
	CompleteJob(ctx context.Context, id string, data model.MethodData, metrics model.QualityMetrics) error
	// FailJob marks a pending or processing job as failed.
	// Returns model.ErrNotActive when the job already finished.
	FailJob(ctx context.Context, id string, errMsg string) error
}
