package createjob

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/elecmate/mmgen/internal/log"
	"github.com/elecmate/mmgen/internal/model"
	"github.com/elecmate/mmgen/internal/storage"
)

// ServiceConfig is the configuration for the create job service.
type ServiceConfig struct {
	Repository storage.JobRepository
	Logger     log.Logger
	TimeNow    func() time.Time
	IDGen      func(t time.Time) string
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	if c.TimeNow == nil {
		c.TimeNow = func() time.Time { return time.Now().UTC() }
	}
	if c.IDGen == nil {
		c.IDGen = func(t time.Time) string { return ulid.MustNew(ulid.Timestamp(t), rand.Reader).String() }
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.CreateJob"})
	return nil
}

// Service queues new generation jobs.
type Service struct {
	repo    storage.JobRepository
	logger  log.Logger
	timeNow func() time.Time
	idGen   func(t time.Time) string
}

// NewService creates a new create job service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:    cfg.Repository,
		logger:  cfg.Logger,
		timeNow: cfg.TimeNow,
		idGen:   cfg.IDGen,
	}, nil
}

// Request is the input of a new job.
type Request struct {
	Query            string
	EquipmentDetails model.EquipmentDetails
	// DetailLevel defaults to normal when empty.
	DetailLevel model.DetailLevel
}

// Run validates the request and stores a new pending job.
func (s *Service) Run(ctx context.Context, req Request) (*model.Job, error) {
	if req.DetailLevel == "" {
		req.DetailLevel = model.DetailLevelNormal
	}

	now := s.timeNow()
	job := model.Job{
		ID:               s.idGen(now),
		Query:            strings.TrimSpace(req.Query),
		EquipmentDetails: req.EquipmentDetails,
		DetailLevel:      req.DetailLevel,
		Status:           model.JobStatusPending,
		CurrentStep:      "Queued",
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := job.Validate(); err != nil {
		return nil, fmt.Errorf("invalid job: %w", err)
	}

	if err := s.repo.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("could not store job: %w", err)
	}

	s.logger.WithValues(log.Kv{"job-id": job.ID, "equipment": job.EquipmentDetails.EquipmentType}).Infof("Job queued")

	return &job, nil
}
