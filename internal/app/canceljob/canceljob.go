package canceljob

import (
	"context"
	"errors"
	"fmt"

	"github.com/elecmate/mmgen/internal/log"
	"github.com/elecmate/mmgen/internal/model"
	"github.com/elecmate/mmgen/internal/storage"
)

// ServiceConfig is the configuration for the cancel job service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.CancelJob"})
	return nil
}

// Service cancels running jobs.
type Service struct {
	repo   storage.JobRepository
	logger log.Logger
}

// NewService creates a new cancel job service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request represents the cancel request parameters.
type Request struct {
	ID string
}

// Run cancels a pending or processing job. The job is recorded as failed
// with the cancelled message, a worker running it will stop on its next
// progress report.
func (s *Service) Run(ctx context.Context, req Request) (*model.Job, error) {
	j, err := s.repo.GetJob(ctx, req.ID)
	if err != nil {
		return nil, fmt.Errorf("could not get job: %w", err)
	}

	if j.Status.Terminal() {
		return nil, fmt.Errorf("job %s is already %s: %w", j.ID, j.Status, model.ErrNotValid)
	}

	err = s.repo.FailJob(ctx, j.ID, model.CancelledMessage)
	if err != nil {
		// Finished between the read and the write.
		if errors.Is(err, model.ErrNotActive) {
			return nil, fmt.Errorf("job %s already finished: %w", j.ID, model.ErrNotValid)
		}
		return nil, fmt.Errorf("could not cancel job: %w", err)
	}

	s.logger.WithValues(log.Kv{"job-id": j.ID}).Infof("Job cancelled")

	j, err = s.repo.GetJob(ctx, req.ID)
	if err != nil {
		return nil, fmt.Errorf("could not get job: %w", err)
	}

	return j, nil
}
