package listjobs

import (
	"context"
	"fmt"

	"github.com/elecmate/mmgen/internal/log"
	"github.com/elecmate/mmgen/internal/model"
	"github.com/elecmate/mmgen/internal/storage"
)

// ServiceConfig is the configuration for the list jobs service.
type ServiceConfig struct {
	Repository storage.JobRepository
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Service lists jobs.
type Service struct {
	repo   storage.JobRepository
	logger log.Logger
}

// NewService creates a new list jobs service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request represents the list request parameters.
type Request struct {
	// Status filters the jobs when not empty.
	Status model.JobStatus
	Limit  int
}

// Run lists the jobs, newest first.
func (s *Service) Run(ctx context.Context, req Request) ([]model.Job, error) {
	if req.Status != "" && !req.Status.Valid() {
		return nil, fmt.Errorf("unknown status %q: %w", req.Status, model.ErrNotValid)
	}
	if req.Limit < 0 {
		return nil, fmt.Errorf("limit can't be negative: %w", model.ErrNotValid)
	}

	jobs, err := s.repo.ListJobs(ctx, storage.ListJobsOptions{Status: req.Status, Limit: req.Limit})
	if err != nil {
		return nil, fmt.Errorf("could not list jobs: %w", err)
	}

	s.logger.Debugf("Listed %d jobs", len(jobs))

	return jobs, nil
}
