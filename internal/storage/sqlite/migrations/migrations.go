package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/elecmate/mmgen/internal/log"
)

//go:embed sql/*.sql
var schemaFiles embed.FS

const schemaDir = "sql"

// SchemaConfig is the configuration for the jobs schema runner.
type SchemaConfig struct {
	DB     *sql.DB
	Logger log.Logger
}

func (c *SchemaConfig) defaults() error {
	if c.DB == nil {
		return fmt.Errorf("db is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.SQLiteSchema"})
	return nil
}

// Schema applies the embedded jobs schema to a SQLite database.
type Schema struct {
	db     *sql.DB
	logger log.Logger
}

// NewSchema returns a new jobs schema runner.
func NewSchema(cfg SchemaConfig) (*Schema, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Schema{db: cfg.DB, logger: cfg.Logger}, nil
}

// Up brings the jobs schema to the latest version.
func (s *Schema) Up(ctx context.Context) error {
	return s.run(ctx, "upgrade", func(m *migrate.Migrate) error { return m.Up() })
}

// Down drops the jobs schema. All stored jobs are lost.
func (s *Schema) Down(ctx context.Context) error {
	return s.run(ctx, "drop", func(m *migrate.Migrate) error { return m.Down() })
}

// Version returns the applied schema version, 0 when nothing is applied.
func (s *Schema) Version(ctx context.Context) (version uint, dirty bool, err error) {
	err = s.with(ctx, func(m *migrate.Migrate) error {
		v, d, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			return nil
		}
		if err != nil {
			return err
		}
		version, dirty = v, d
		return nil
	})
	if err != nil {
		return 0, false, fmt.Errorf("could not read schema version: %w", err)
	}
	return version, dirty, nil
}

func (s *Schema) run(ctx context.Context, action string, fn func(*migrate.Migrate) error) error {
	err := s.with(ctx, func(m *migrate.Migrate) error {
		err := fn(m)
		if errors.Is(err, migrate.ErrNoChange) {
			s.logger.Debugf("Schema %s: no change", action)
			return nil
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("could not %s schema: %w", action, err)
	}
	s.logger.Debugf("Schema %s done", action)
	return nil
}

// with opens a migrate instance over the embedded files. The instance is not
// closed because that would close the shared database handle.
func (s *Schema) with(ctx context.Context, fn func(*migrate.Migrate) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	src, err := iofs.New(schemaFiles, schemaDir)
	if err != nil {
		return fmt.Errorf("could not open embedded schema: %w", err)
	}
	defer func() {
		if err := src.Close(); err != nil {
			s.logger.Warningf("Could not close embedded schema: %s", err)
		}
	}()

	driver, err := sqlite3.WithInstance(s.db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("could not create sqlite driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	return fn(m)
}
