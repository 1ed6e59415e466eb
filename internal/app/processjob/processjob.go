package processjob

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/elecmate/mmgen/internal/generator"
	"github.com/elecmate/mmgen/internal/log"
	"github.com/elecmate/mmgen/internal/method"
	"github.com/elecmate/mmgen/internal/model"
	"github.com/elecmate/mmgen/internal/storage"
)

// Messages recorded on failed jobs.
const (
	TimedOutMessage    = "generation timed out"
	InterruptedMessage = "generation interrupted by service shutdown"
)

// MaxRunningProgress is the highest progress reported before a job completes.
const MaxRunningProgress = 99

// ServiceConfig is the configuration for the job processor.
type ServiceConfig struct {
	Repository storage.JobRepository
	Generator  generator.Generator
	Logger     log.Logger
	// Workers is the number of jobs processed concurrently.
	Workers int
	// PollInterval is how often idle workers look for pending jobs.
	PollInterval time.Duration
	// GenerationTimeout bounds a single generation.
	GenerationTimeout time.Duration
	// NudgeInterval is how often the progress is nudged forward while the
	// generator is busy without reporting.
	NudgeInterval time.Duration
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.Generator == nil {
		return fmt.Errorf("generator is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	if c.Workers <= 0 {
		c.Workers = 2
	}
	if c.PollInterval <= 0 {
		c.PollInterval = time.Second
	}
	if c.GenerationTimeout <= 0 {
		c.GenerationTimeout = 4 * time.Minute
	}
	if c.NudgeInterval <= 0 {
		c.NudgeInterval = 10 * time.Second
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.ProcessJob"})
	return nil
}

// Service runs queued jobs through the generator.
type Service struct {
	repo          storage.JobRepository
	gen           generator.Generator
	logger        log.Logger
	workers       int
	pollInterval  time.Duration
	timeout       time.Duration
	nudgeInterval time.Duration
}

// NewService creates a new job processor.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:          cfg.Repository,
		gen:           cfg.Generator,
		logger:        cfg.Logger,
		workers:       cfg.Workers,
		pollInterval:  cfg.PollInterval,
		timeout:       cfg.GenerationTimeout,
		nudgeInterval: cfg.NudgeInterval,
	}, nil
}

// Run starts the workers and blocks until the context is cancelled or a
// worker fails with a storage error.
func (s *Service) Run(ctx context.Context) error {
	s.logger.Infof("Starting %d workers", s.workers)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < s.workers; i++ {
		logger := s.logger.WithValues(log.Kv{"worker": i})
		g.Go(func() error {
			return s.worker(gctx, logger)
		})
	}

	err := g.Wait()
	if err != nil && ctx.Err() == nil {
		return err
	}

	s.logger.Infof("Workers stopped")
	return nil
}

func (s *Service) worker(ctx context.Context, logger log.Logger) error {
	t := time.NewTicker(s.pollInterval)
	defer t.Stop()

	for {
		processed, err := s.processNext(ctx, logger)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		// Drain the queue before waiting again.
		if processed {
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}

// ProcessNext claims the oldest pending job and processes it. Returns false
// when there was no pending job.
func (s *Service) ProcessNext(ctx context.Context) (bool, error) {
	return s.processNext(ctx, s.logger)
}

func (s *Service) processNext(ctx context.Context, logger log.Logger) (bool, error) {
	job, err := s.repo.ClaimNextPendingJob(ctx)
	if err != nil {
		return false, fmt.Errorf("could not claim job: %w", err)
	}
	if job == nil {
		return false, nil
	}

	s.process(ctx, logger.WithValues(log.Kv{"job-id": job.ID}), *job)
	return true, nil
}

func (s *Service) process(ctx context.Context, logger log.Logger, job model.Job) {
	logger.Infof("Processing job")
	start := time.Now()

	genCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	genCtx, cancelTimeout := context.WithTimeout(genCtx, s.timeout)
	defer cancelTimeout()

	rep := &progressReporter{repo: s.repo, jobID: job.ID, progress: job.Progress, step: job.CurrentStep}
	stopNudge := s.startNudger(genCtx, rep, cancel)

	data, err := s.gen.Generate(genCtx, generator.RequestFromJob(job), rep.report)
	stopNudge()

	// Writes use a context that survives the shutdown so the job is not left processing.
	storeCtx := context.WithoutCancel(ctx)

	switch {
	case err == nil && data != nil:
		metrics := method.Metrics(*data)
		err := s.repo.CompleteJob(storeCtx, job.ID, *data, metrics)
		switch {
		case errors.Is(err, model.ErrNotActive):
			logger.Infof("Job finished after being cancelled, result discarded")
		case err != nil:
			logger.Errorf("Could not store job result: %s", err)
			s.fail(storeCtx, logger, job.ID, "could not store result")
		default:
			logger.WithValues(log.Kv{"steps": metrics.StepCount, "duration": time.Since(start).String()}).Infof("Job completed")
		}

	case err == nil:
		s.fail(storeCtx, logger, job.ID, "generator returned no method")

	case errors.Is(err, model.ErrNotActive) || errors.Is(context.Cause(genCtx), model.ErrNotActive):
		logger.Infof("Job cancelled while running")

	case errors.Is(genCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
		logger.Warningf("Generation timed out after %s", s.timeout)
		s.fail(storeCtx, logger, job.ID, TimedOutMessage)

	case ctx.Err() != nil:
		logger.Warningf("Generation interrupted")
		s.fail(storeCtx, logger, job.ID, InterruptedMessage)

	default:
		logger.Errorf("Generation failed: %s", err)
		s.fail(storeCtx, logger, job.ID, err.Error())
	}
}

func (s *Service) fail(ctx context.Context, logger log.Logger, id, msg string) {
	err := s.repo.FailJob(ctx, id, msg)
	if err != nil && !errors.Is(err, model.ErrNotActive) {
		logger.Errorf("Could not mark job as failed: %s", err)
	}
}

// startNudger moves the progress forward while the generator is busy. When the
// job stopped being active the generation is cancelled.
func (s *Service) startNudger(ctx context.Context, rep *progressReporter, cancel context.CancelCauseFunc) (stop func()) {
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		t := time.NewTicker(s.nudgeInterval)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-t.C:
				if err := rep.nudge(ctx); errors.Is(err, model.ErrNotActive) {
					cancel(model.ErrNotActive)
					return
				}
			}
		}
	}()

	return func() {
		close(done)
		wg.Wait()
	}
}

// progressReporter stores progress updates. Progress only moves forward and
// stays below 100 until the job completes.
type progressReporter struct {
	repo     storage.JobRepository
	jobID    string
	mu       sync.Mutex
	progress int
	step     string
}

func (p *progressReporter) report(ctx context.Context, progress int, step string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if progress > MaxRunningProgress {
		progress = MaxRunningProgress
	}
	if progress < p.progress {
		progress = p.progress
	}
	if step == "" {
		step = p.step
	}

	if err := p.repo.UpdateJobProgress(ctx, p.jobID, progress, step); err != nil {
		return fmt.Errorf("could not update progress: %w", err)
	}
	p.progress = progress
	p.step = step

	return nil
}

const (
	nudgeStep  = 2
	nudgeLimit = 95
)

func (p *progressReporter) nudge(ctx context.Context) error {
	p.mu.Lock()
	current := p.progress
	p.mu.Unlock()

	if current >= nudgeLimit {
		return nil
	}
	return p.report(ctx, min(current+nudgeStep, nudgeLimit), "")
}
