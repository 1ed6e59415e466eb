package getjob

import (
	"context"
	"fmt"

	"github.com/elecmate/mmgen/internal/log"
	"github.com/elecmate/mmgen/internal/model"
	"github.com/elecmate/mmgen/internal/storage"
)

// ServiceConfig is the configuration for the get job service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.GetJob"})

	return nil
}

// Service retrieves a job snapshot.
type Service struct {
	repo   storage.JobRepository
	logger log.Logger
}

// NewService creates a new get job service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request represents the get job request parameters.
type Request struct {
	ID string
}

// Run returns the job with the ID.
func (s *Service) Run(ctx context.Context, req Request) (*model.Job, error) {
	if req.ID == "" {
		return nil, fmt.Errorf("job id is required: %w", model.ErrNotValid)
	}

	j, err := s.repo.GetJob(ctx, req.ID)
	if err != nil {
		return nil, fmt.Errorf("could not get job: %w", err)
	}

	s.logger.Debugf("Job %s is %s (%d%%)", j.ID, j.Status, j.Progress)

	return j, nil
}
