package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/elecmate/mmgen/internal/log"
	"github.com/elecmate/mmgen/internal/model"
	"github.com/elecmate/mmgen/internal/storage"
)

// RepositoryConfig is the configuration for the memory repository.
type RepositoryConfig struct {
	Logger  log.Logger
	TimeNow func() time.Time
}

func (c *RepositoryConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	if c.TimeNow == nil {
		c.TimeNow = time.Now
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.Memory"})
	return nil
}

// Repository is an in-memory implementation of storage.JobRepository.
type Repository struct {
	jobs    map[string]model.Job
	mu      sync.RWMutex
	logger  log.Logger
	timeNow func() time.Time
}

var _ storage.JobRepository = &Repository{}

// NewRepository creates a new memory repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Repository{
		jobs:    make(map[string]model.Job),
		logger:  cfg.Logger,
		timeNow: cfg.TimeNow,
	}, nil
}

// CreateJob creates a new job in the repository.
func (r *Repository) CreateJob(ctx context.Context, j model.Job) error {
	if err := j.Validate(); err != nil {
		return fmt.Errorf("invalid job: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.jobs[j.ID]; ok {
		return fmt.Errorf("job %s: %w", j.ID, model.ErrAlreadyExists)
	}
	if j.UpdatedAt.IsZero() {
		j.UpdatedAt = j.CreatedAt
	}

	r.jobs[j.ID] = copyJob(j)
	r.logger.Debugf("Created job in repository: %s", j.ID)

	return nil
}

// GetJob retrieves a job by ID.
func (r *Repository) GetJob(ctx context.Context, id string) (*model.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	j, ok := r.jobs[id]
	if !ok {
		return nil, fmt.Errorf("job %s: %w", id, model.ErrNotFound)
	}

	c := copyJob(j)
	return &c, nil
}

// ListJobs returns jobs, newest first.
func (r *Repository) ListJobs(ctx context.Context, opts storage.ListJobsOptions) ([]model.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	jobs := make([]model.Job, 0, len(r.jobs))
	for _, j := range r.jobs {
		if opts.Status != "" && j.Status != opts.Status {
			continue
		}
		jobs = append(jobs, copyJob(j))
	}

	sort.Slice(jobs, func(i, k int) bool { return newer(jobs[i], jobs[k]) })
	if opts.Limit > 0 && len(jobs) > opts.Limit {
		jobs = jobs[:opts.Limit]
	}

	return jobs, nil
}

// ClaimNextPendingJob moves the oldest pending job to processing.
func (r *Repository) ClaimNextPendingJob(ctx context.Context) (*model.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var next *model.Job
	for _, j := range r.jobs {
		if j.Status != model.JobStatusPending {
			continue
		}
		if next == nil || newer(*next, j) {
			j := j
			next = &j
		}
	}
	if next == nil {
		return nil, nil
	}

	now := r.timeNow().UTC()
	next.Status = model.JobStatusProcessing
	next.StartedAt = &now
	next.UpdatedAt = now
	r.jobs[next.ID] = *next

	r.logger.Debugf("Claimed job: %s", next.ID)
	c := copyJob(*next)
	return &c, nil
}

// UpdateJobProgress sets progress and current step of a processing job.
func (r *Repository) UpdateJobProgress(ctx context.Context, id string, progress int, currentStep string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, err := r.activeJob(id, model.JobStatusProcessing)
	if err != nil {
		return err
	}

	j.Progress = progress
	j.CurrentStep = currentStep
	j.UpdatedAt = r.timeNow().UTC()
	r.jobs[id] = j

	return nil
}

// CompleteJob stores the result of a processing job.
func (r *Repository) CompleteJob(ctx context.Context, id string, data model.MethodData, metrics model.QualityMetrics) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, err := r.activeJob(id, model.JobStatusProcessing)
	if err != nil {
		return err
	}

	now := r.timeNow().UTC()
	data.Steps = model.CloneSteps(data.Steps)
	j.Status = model.JobStatusCompleted
	j.Progress = 100
	j.CurrentStep = "Complete"
	j.MethodData = &data
	j.QualityMetrics = &metrics
	j.UpdatedAt = now
	j.CompletedAt = &now
	r.jobs[id] = j

	r.logger.Debugf("Completed job: %s", id)
	return nil
}

// FailJob marks a pending or processing job as failed.
func (r *Repository) FailJob(ctx context.Context, id string, errMsg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, err := r.activeJob(id, model.JobStatusPending, model.JobStatusProcessing)
	if err != nil {
		return err
	}

	now := r.timeNow().UTC()
	j.Status = model.JobStatusFailed
	j.ErrorMessage = errMsg
	j.UpdatedAt = now
	j.CompletedAt = &now
	r.jobs[id] = j

	r.logger.Debugf("Failed job: %s (error: %s)", id, errMsg)
	return nil
}

func (r *Repository) activeJob(id string, statuses ...model.JobStatus) (model.Job, error) {
	j, ok := r.jobs[id]
	if !ok {
		return model.Job{}, fmt.Errorf("job %s: %w", id, model.ErrNotFound)
	}
	for _, s := range statuses {
		if j.Status == s {
			return j, nil
		}
	}
	return model.Job{}, fmt.Errorf("job %s is %s: %w", id, j.Status, model.ErrNotActive)
}

func newer(a, b model.Job) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

func copyJob(j model.Job) model.Job {
	if j.MethodData != nil {
		d := *j.MethodData
		d.Steps = model.CloneSteps(d.Steps)
		j.MethodData = &d
	}
	if j.QualityMetrics != nil {
		m := *j.QualityMetrics
		j.QualityMetrics = &m
	}
	return j
}
