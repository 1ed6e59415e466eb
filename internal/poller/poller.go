// Package poller follows a job until it reaches a terminal status.
package poller

import (
	"context"
	"fmt"
	"time"

	"github.com/elecmate/mmgen/internal/log"
	"github.com/elecmate/mmgen/internal/model"
)

// JobGetter returns the current snapshot of a job.
type JobGetter interface {
	GetJob(ctx context.Context, id string) (*model.Job, error)
}

// PollerConfig is the configuration of the poller.
type PollerConfig struct {
	Getter   JobGetter
	Interval time.Duration
	// MaxConsecutiveErrors is how many fetch errors in a row are tolerated.
	MaxConsecutiveErrors int
	Logger               log.Logger
}

func (c *PollerConfig) defaults() error {
	if c.Getter == nil {
		return fmt.Errorf("job getter is required")
	}
	if c.Interval <= 0 {
		c.Interval = 2 * time.Second
	}
	if c.MaxConsecutiveErrors <= 0 {
		c.MaxConsecutiveErrors = 3
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "poller.Poller"})
	return nil
}

// Poller polls jobs.
type Poller struct {
	getter    JobGetter
	interval  time.Duration
	maxErrors int
	logger    log.Logger
}

// NewPoller returns a new poller.
func NewPoller(cfg PollerConfig) (*Poller, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Poller{
		getter:    cfg.Getter,
		interval:  cfg.Interval,
		maxErrors: cfg.MaxConsecutiveErrors,
		logger:    cfg.Logger,
	}, nil
}

// Run fetches the job right away and then on every interval, delivering each
// snapshot to onUpdate. It returns the terminal snapshot, the context error
// when cancelled, or the last fetch error once too many failed in a row.
func (p *Poller) Run(ctx context.Context, jobID string, onUpdate func(model.Job)) (*model.Job, error) {
	t := time.NewTicker(p.interval)
	defer t.Stop()

	logger := p.logger.WithValues(log.Kv{"job-id": jobID})
	failures := 0
	for {
		j, err := p.getter.GetJob(ctx, jobID)
		switch {
		case err != nil && ctx.Err() != nil:
			return nil, ctx.Err()
		case err != nil:
			failures++
			logger.Warningf("Could not fetch job (%d/%d): %s", failures, p.maxErrors, err)
			if failures >= p.maxErrors {
				return nil, fmt.Errorf("could not poll job: %w", err)
			}
		default:
			failures = 0
			if onUpdate != nil {
				onUpdate(*j)
			}
			if j.Status.Terminal() {
				return j, nil
			}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.C:
		}
	}
}
