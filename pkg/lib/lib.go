package lib

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/elecmate/mmgen/internal/app/canceljob"
	"github.com/elecmate/mmgen/internal/app/createjob"
	"github.com/elecmate/mmgen/internal/app/getjob"
	"github.com/elecmate/mmgen/internal/app/listjobs"
	"github.com/elecmate/mmgen/internal/app/processjob"
	"github.com/elecmate/mmgen/internal/content"
	"github.com/elecmate/mmgen/internal/conventions"
	"github.com/elecmate/mmgen/internal/generator"
	"github.com/elecmate/mmgen/internal/generator/knowledge"
	"github.com/elecmate/mmgen/internal/model"
	"github.com/elecmate/mmgen/internal/report"
	"github.com/elecmate/mmgen/internal/storage"
	storageio "github.com/elecmate/mmgen/internal/storage/io"
	"github.com/elecmate/mmgen/internal/storage/memory"
	"github.com/elecmate/mmgen/internal/storage/sqlite"
	"github.com/elecmate/mmgen/pkg/lib/log"
)

// Config configures the SDK client.
//
// All fields are optional, an empty Config{} uses ~/.mmgen/mmgen.db.
type Config struct {
	// DataDir is the base directory for mmgen data.
	// Default: ~/.mmgen.
	DataDir string

	// DBPath is the SQLite database path.
	// Default: <DataDir>/mmgen.db.
	DBPath string

	// InMemory keeps the jobs in memory, DBPath is ignored.
	InMemory bool

	// GenerationTimeout bounds a single generation.
	// Default: 4m.
	GenerationTimeout time.Duration

	// Logger receives structured log output from the SDK.
	// Default: noop (silent).
	Logger log.Logger
}

func (c *Config) defaults() error {
	if c.DataDir == "" {
		c.DataDir = conventions.DataDir()
	}

	if c.DBPath == "" {
		c.DBPath = conventions.DBPath(c.DataDir)
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Client is the SDK entry point.
//
// Create a Client with [New] and release its resources with [Client.Close].
// A Client is safe for concurrent use.
type Client struct {
	create    *createjob.Service
	get       *getjob.Service
	list      *listjobs.Service
	cancel    *canceljob.Service
	processor *processjob.Service
	templates []model.Template
	logger    log.Logger
	closeFn   func() error
}

// New creates a new SDK client.
//
// The caller must call [Client.Close] when done to release the database
// connection.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	catalog := storageio.NewCatalogYAMLRepository(content.FS)
	schedules, err := catalog.ListSchedules(ctx, content.KnowledgeFile)
	if err != nil {
		return nil, fmt.Errorf("could not load knowledge base: %w", err)
	}
	templates, err := catalog.ListTemplates(ctx, content.TemplatesFile)
	if err != nil {
		return nil, fmt.Errorf("could not load templates: %w", err)
	}

	gen, err := knowledge.NewGenerator(knowledge.GeneratorConfig{Schedules: schedules, Logger: cfg.Logger})
	if err != nil {
		return nil, fmt.Errorf("could not create generator: %w", err)
	}

	repo, closeFn, err := openRepository(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("could not create repository: %w", err)
	}

	return newClient(repo, closeFn, gen, templates, cfg)
}

func openRepository(ctx context.Context, cfg Config) (storage.JobRepository, func() error, error) {
	if cfg.InMemory {
		r, err := memory.NewRepository(memory.RepositoryConfig{Logger: cfg.Logger})
		if err != nil {
			return nil, nil, err
		}
		return r, nil, nil
	}

	r, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: cfg.DBPath,
		Logger: cfg.Logger,
	})
	if err != nil {
		return nil, nil, err
	}
	return r, r.Close, nil
}

// newClient builds the services over an open repository. closeFn is called
// when the client can't be built.
func newClient(repo storage.JobRepository, closeFn func() error, gen generator.Generator, templates []model.Template, cfg Config) (c *Client, err error) {
	defer func() {
		if err == nil || closeFn == nil {
			return
		}
		if cerr := closeFn(); cerr != nil {
			cfg.Logger.Warningf("Could not close repository: %s", cerr)
		}
	}()

	c = &Client{templates: templates, logger: cfg.Logger, closeFn: closeFn}
	if c.create, err = createjob.NewService(createjob.ServiceConfig{Repository: repo, Logger: cfg.Logger}); err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}
	if c.get, err = getjob.NewService(getjob.ServiceConfig{Repository: repo, Logger: cfg.Logger}); err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}
	if c.list, err = listjobs.NewService(listjobs.ServiceConfig{Repository: repo, Logger: cfg.Logger}); err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}
	if c.cancel, err = canceljob.NewService(canceljob.ServiceConfig{Repository: repo, Logger: cfg.Logger}); err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}
	c.processor, err = processjob.NewService(processjob.ServiceConfig{
		Repository:        repo,
		Generator:         gen,
		Logger:            cfg.Logger,
		GenerationTimeout: cfg.GenerationTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	return c, nil
}

// Close releases resources held by the client, including the database connection.
// After Close returns, the client must not be used.
func (c *Client) Close() error {
	if c.closeFn != nil {
		return c.closeFn()
	}
	return nil
}

// CreateJob stores a new pending job. Use [Client.ProcessPending] to generate it.
func (c *Client) CreateJob(ctx context.Context, opts CreateJobOpts) (*Job, error) {
	j, err := c.create.Run(ctx, createjob.Request{
		Query:            opts.Query,
		EquipmentDetails: model.EquipmentDetails(opts.Equipment),
		DetailLevel:      model.DetailLevel(opts.DetailLevel),
	})
	if err != nil {
		return nil, mapError(err)
	}

	out := fromInternalJob(*j)
	return &out, nil
}

// GetJob returns a job by ID.
func (c *Client) GetJob(ctx context.Context, id string) (*Job, error) {
	j, err := c.get.Run(ctx, getjob.Request{ID: id})
	if err != nil {
		return nil, mapError(err)
	}

	out := fromInternalJob(*j)
	return &out, nil
}

// ListJobs returns jobs, newest first. A nil opts lists every job.
func (c *Client) ListJobs(ctx context.Context, opts *ListJobsOpts) ([]Job, error) {
	req := listjobs.Request{}
	if opts != nil {
		req.Status = model.JobStatus(opts.Status)
		req.Limit = opts.Limit
	}

	jobs, err := c.list.Run(ctx, req)
	if err != nil {
		return nil, mapError(err)
	}

	out := make([]Job, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, fromInternalJob(j))
	}
	return out, nil
}

// CancelJob marks a pending or processing job as failed. Cancelling a
// finished job returns [ErrNotValid].
func (c *Client) CancelJob(ctx context.Context, id string) (*Job, error) {
	j, err := c.cancel.Run(ctx, canceljob.Request{ID: id})
	if err != nil {
		return nil, mapError(err)
	}

	out := fromInternalJob(*j)
	return &out, nil
}

// ProcessPending generates the pending jobs, oldest first, until none is
// left. It returns how many jobs were processed. A failed generation marks
// its job as failed and is not an error.
func (c *Client) ProcessPending(ctx context.Context) (int, error) {
	n := 0
	for {
		processed, err := c.processor.ProcessNext(ctx)
		if err != nil {
			return n, mapError(err)
		}
		if !processed {
			return n, nil
		}
		n++
	}
}

// Generate creates a job, processes the queue and returns the job once finished.
// The returned job can be completed or failed.
func (c *Client) Generate(ctx context.Context, opts CreateJobOpts) (*Job, error) {
	j, err := c.CreateJob(ctx, opts)
	if err != nil {
		return nil, err
	}

	if _, err := c.ProcessPending(ctx); err != nil {
		return nil, err
	}

	return c.GetJob(ctx, j.ID)
}

// Templates returns the job templates shipped with mmgen.
func (c *Client) Templates() []Template {
	out := make([]Template, 0, len(c.templates))
	for _, t := range c.templates {
		out = append(out, fromInternalTemplate(t))
	}
	return out
}

// ExportXLSX writes the method of a completed job as an XLSX workbook.
// An empty title uses "Maintenance Method - <equipment type>".
func (c *Client) ExportXLSX(ctx context.Context, id, title string, w io.Writer) error {
	j, err := c.GetJob(ctx, id)
	if err != nil {
		return err
	}
	if j.Status != JobStatusCompleted || j.Method == nil {
		return mapError(fmt.Errorf("job %s is %s: %w", j.ID, j.Status, model.ErrNotValid))
	}

	data, err := report.Spreadsheet(toInternalPayload(*j, title))
	if err != nil {
		return mapError(fmt.Errorf("could not build spreadsheet: %w", err))
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("could not write spreadsheet: %w", err)
	}
	return nil
}
