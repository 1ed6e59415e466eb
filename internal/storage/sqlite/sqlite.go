package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/elecmate/mmgen/internal/log"
	"github.com/elecmate/mmgen/internal/model"
	"github.com/elecmate/mmgen/internal/storage"
	"github.com/elecmate/mmgen/internal/storage/sqlite/migrations"
)

// RepositoryConfig is the configuration for the SQLite repository.
type RepositoryConfig struct {
	DBPath string
	Logger log.Logger
	// TimeNow is used to set the update timestamps, defaults to time.Now.
	TimeNow func() time.Time
}

func (c *RepositoryConfig) defaults() error {
	if c.DBPath == "" {
		return fmt.Errorf("db path is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	if c.TimeNow == nil {
		c.TimeNow = time.Now
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.SQLite"})
	return nil
}

// Repository is a SQLite implementation of storage.JobRepository.
type Repository struct {
	db      *sql.DB
	logger  log.Logger
	timeNow func() time.Time
}

var _ storage.JobRepository = &Repository{}

// NewRepository creates a new SQLite repository.
func NewRepository(ctx context.Context, cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	dir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("could not create db directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", cfg.DBPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	schema, err := migrations.NewSchema(migrations.SchemaConfig{DB: db, Logger: cfg.Logger})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create schema runner: %w", err)
	}
	if err := schema.Up(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not run migrations: %w", err)
	}
	version, _, err := schema.Version(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	cfg.Logger.Debugf("SQLite repository initialized at %s (schema v%d)", cfg.DBPath, version)

	return &Repository{db: db, logger: cfg.Logger, timeNow: cfg.TimeNow}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error { return r.db.Close() }

const jobColumns = `
	id, query, equipment_details, detail_level,
	status, progress, current_step,
	method_data, error_message, quality_metrics,
	created_at, updated_at, started_at, completed_at
`

// CreateJob creates a new job in the repository.
func (r *Repository) CreateJob(ctx context.Context, j model.Job) error {
	if err := j.Validate(); err != nil {
		return fmt.Errorf("invalid job: %w", err)
	}

	equipment, err := json.Marshal(j.EquipmentDetails)
	if err != nil {
		return fmt.Errorf("could not marshal equipment details: %w", err)
	}
	methodData, err := marshalNullable(j.MethodData)
	if err != nil {
		return fmt.Errorf("could not marshal method data: %w", err)
	}
	metrics, err := marshalNullable(j.QualityMetrics)
	if err != nil {
		return fmt.Errorf("could not marshal quality metrics: %w", err)
	}

	updatedAt := j.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = j.CreatedAt
	}

	query := `INSERT INTO jobs (` + jobColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		j.ID,
		j.Query,
		string(equipment),
		j.DetailLevel,
		j.Status,
		j.Progress,
		j.CurrentStep,
		methodData,
		j.ErrorMessage,
		metrics,
		j.CreatedAt.Unix(),
		updatedAt.Unix(),
		unixOrNil(j.StartedAt),
		unixOrNil(j.CompletedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: jobs.") {
			return fmt.Errorf("job already exists: %w", model.ErrAlreadyExists)
		}
		return fmt.Errorf("could not insert job: %w", err)
	}

	r.logger.Debugf("Created job in repository: %s", j.ID)
	return nil
}

// GetJob retrieves a job by ID.
func (r *Repository) GetJob(ctx context.Context, id string) (*model.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = ?`

	job, err := r.scanJob(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("job %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query job: %w", err)
	}

	return job, nil
}

// ListJobs returns jobs, newest first.
func (r *Repository) ListJobs(ctx context.Context, opts storage.ListJobsOptions) ([]model.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs`
	args := []any{}
	if opts.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, opts.Status)
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not query jobs: %w", err)
	}
	defer rows.Close()

	var jobs []model.Job
	for rows.Next() {
		job, err := r.scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		jobs = append(jobs, *job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return jobs, nil
}

// ClaimNextPendingJob moves the oldest pending job to processing.
// It's a single conditional update so concurrent workers can't claim the same job.
func (r *Repository) ClaimNextPendingJob(ctx context.Context) (*model.Job, error) {
	now := r.timeNow().UTC().Unix()
	query := `
		UPDATE jobs
		SET status = ?, started_at = ?, updated_at = ?
		WHERE id = (
			SELECT id FROM jobs WHERE status = ? ORDER BY created_at ASC, id ASC LIMIT 1
		) AND status = ?
		RETURNING ` + jobColumns

	job, err := r.scanJob(r.db.QueryRowContext(ctx, query,
		model.JobStatusProcessing, now, now,
		model.JobStatusPending, model.JobStatusPending,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // No pending jobs.
		}
		return nil, fmt.Errorf("could not claim job: %w", err)
	}

	r.logger.Debugf("Claimed job: %s", job.ID)
	return job, nil
}

// UpdateJobProgress sets progress and current step of a processing job.
func (r *Repository) UpdateJobProgress(ctx context.Context, id string, progress int, currentStep string) error {
	query := `UPDATE jobs SET progress = ?, current_step = ?, updated_at = ? WHERE id = ? AND status = ?`

	result, err := r.db.ExecContext(ctx, query, progress, currentStep, r.timeNow().UTC().Unix(), id, model.JobStatusProcessing)
	if err != nil {
		return fmt.Errorf("could not update job progress: %w", err)
	}

	return r.checkActiveUpdate(ctx, result, id)
}

// CompleteJob stores the result of a processing job.
func (r *Repository) CompleteJob(ctx context.Context, id string, data model.MethodData, metrics model.QualityMetrics) error {
	methodData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("could not marshal method data: %w", err)
	}
	qualityMetrics, err := json.Marshal(metrics)
	if err != nil {
		return fmt.Errorf("could not marshal quality metrics: %w", err)
	}

	now := r.timeNow().UTC().Unix()
	query := `
		UPDATE jobs
		SET status = ?, progress = 100, current_step = ?, method_data = ?, quality_metrics = ?, updated_at = ?, completed_at = ?
		WHERE id = ? AND status = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		model.JobStatusCompleted, "Complete", string(methodData), string(qualityMetrics), now, now,
		id, model.JobStatusProcessing,
	)
	if err != nil {
		return fmt.Errorf("could not complete job: %w", err)
	}

	if err := r.checkActiveUpdate(ctx, result, id); err != nil {
		return err
	}

	r.logger.Debugf("Completed job: %s", id)
	return nil
}

// FailJob marks a pending or processing job as failed.
func (r *Repository) FailJob(ctx context.Context, id string, errMsg string) error {
	now := r.timeNow().UTC().Unix()
	query := `
		UPDATE jobs
		SET status = ?, error_message = ?, updated_at = ?, completed_at = ?
		WHERE id = ? AND status IN (?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		model.JobStatusFailed, errMsg, now, now,
		id, model.JobStatusPending, model.JobStatusProcessing,
	)
	if err != nil {
		return fmt.Errorf("could not fail job: %w", err)
	}

	if err := r.checkActiveUpdate(ctx, result, id); err != nil {
		return err
	}

	r.logger.Debugf("Failed job: %s (error: %s)", id, errMsg)
	return nil
}

// checkActiveUpdate tells apart a missing job from a job that is not active
// when a conditional update didn't affect any row.
func (r *Repository) checkActiveUpdate(ctx context.Context, result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rows > 0 {
		return nil
	}

	var status model.JobStatus
	err = r.db.QueryRowContext(ctx, `SELECT status FROM jobs WHERE id = ?`, id).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("job %s: %w", id, model.ErrNotFound)
		}
		return fmt.Errorf("could not query job status: %w", err)
	}

	return fmt.Errorf("job %s is %s: %w", id, status, model.ErrNotActive)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *Repository) scanJob(row rowScanner) (*model.Job, error) {
	var (
		j                     model.Job
		equipment             string
		methodData, metrics   sql.NullString
		createdAt, updatedAt  int64
		startedAt, finishedAt sql.NullInt64
	)

	err := row.Scan(
		&j.ID,
		&j.Query,
		&equipment,
		&j.DetailLevel,
		&j.Status,
		&j.Progress,
		&j.CurrentStep,
		&methodData,
		&j.ErrorMessage,
		&metrics,
		&createdAt,
		&updatedAt,
		&startedAt,
		&finishedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(equipment), &j.EquipmentDetails); err != nil {
		return nil, fmt.Errorf("could not unmarshal equipment details: %w", err)
	}
	if methodData.Valid && methodData.String != "" {
		j.MethodData = &model.MethodData{}
		if err := json.Unmarshal([]byte(methodData.String), j.MethodData); err != nil {
			return nil, fmt.Errorf("could not unmarshal method data: %w", err)
		}
	}
	if metrics.Valid && metrics.String != "" {
		j.QualityMetrics = &model.QualityMetrics{}
		if err := json.Unmarshal([]byte(metrics.String), j.QualityMetrics); err != nil {
			return nil, fmt.Errorf("could not unmarshal quality metrics: %w", err)
		}
	}

	j.CreatedAt = time.Unix(createdAt, 0).UTC()
	j.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	if startedAt.Valid {
		t := time.Unix(startedAt.Int64, 0).UTC()
		j.StartedAt = &t
	}
	if finishedAt.Valid {
		t := time.Unix(finishedAt.Int64, 0).UTC()
		j.CompletedAt = &t
	}

	return &j, nil
}

func unixOrNil(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	u := t.Unix()
	return &u
}

func marshalNullable[T any](v *T) (*string, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	s := string(b)
	return &s, nil
}
