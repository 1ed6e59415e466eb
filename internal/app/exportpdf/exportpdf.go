package exportpdf

import (
	"bytes"
	"context"
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/elecmate/mmgen/internal/log"
	"github.com/elecmate/mmgen/internal/model"
	"github.com/elecmate/mmgen/internal/report"
)

// DownloadsPath is the URL path prefix rendered documents are served under.
const DownloadsPath = "/downloads/"

// ServiceConfig is the configuration for the PDF export service.
type ServiceConfig struct {
	Renderer report.Renderer
	// DownloadsDir is where rendered documents are stored.
	DownloadsDir string
	// PublicURL is the base URL the download URLs are built from.
	PublicURL string
	Logger    log.Logger
	TimeNow   func() time.Time
	IDGen     func(t time.Time) string
}

func (c *ServiceConfig) defaults() error {
	if c.Renderer == nil {
		return fmt.Errorf("renderer is required")
	}
	if c.DownloadsDir == "" {
		return fmt.Errorf("downloads dir is required")
	}
	if c.PublicURL == "" {
		return fmt.Errorf("public url is required")
	}
	c.PublicURL = strings.TrimRight(c.PublicURL, "/")
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	if c.TimeNow == nil {
		c.TimeNow = func() time.Time { return time.Now().UTC() }
	}
	if c.IDGen == nil {
		c.IDGen = func(t time.Time) string { return ulid.MustNew(ulid.Timestamp(t), rand.Reader).String() }
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.ExportPDF"})
	return nil
}

// Service renders report payloads to PDF documents.
type Service struct {
	renderer     report.Renderer
	downloadsDir string
	publicURL    string
	logger       log.Logger
	timeNow      func() time.Time
	idGen        func(t time.Time) string
}

// NewService creates a new PDF export service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		renderer:     cfg.Renderer,
		downloadsDir: cfg.DownloadsDir,
		publicURL:    cfg.PublicURL,
		logger:       cfg.Logger,
		timeNow:      cfg.TimeNow,
		idGen:        cfg.IDGen,
	}, nil
}

// Result is the outcome of an export.
type Result struct {
	FileName    string
	DownloadURL string
}

// Run validates and renders the payload, stores the PDF and returns its download URL.
func (s *Service) Run(ctx context.Context, p model.ReportPayload) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid payload: %w", err)
	}

	now := s.timeNow()
	var html bytes.Buffer
	if err := report.RenderHTML(&html, p, now); err != nil {
		return nil, err
	}

	pdf, err := s.renderer.RenderPDF(ctx, html.Bytes())
	if err != nil {
		return nil, fmt.Errorf("could not render pdf: %w", err)
	}

	if err := os.MkdirAll(s.downloadsDir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create downloads dir: %w", err)
	}

	name := s.idGen(now) + ".pdf"
	if err := os.WriteFile(filepath.Join(s.downloadsDir, name), pdf, 0o644); err != nil {
		return nil, fmt.Errorf("could not store pdf: %w", err)
	}

	s.logger.WithValues(log.Kv{"file": name, "steps": len(p.Steps)}).Infof("PDF exported")

	return &Result{
		FileName:    name,
		DownloadURL: s.publicURL + DownloadsPath + name,
	}, nil
}

var fileNameRegexp = regexp.MustCompile(`^[0-9A-Z]{26}\.pdf$`)

// ValidFileName returns true for names the service generates.
func ValidFileName(name string) bool {
	return fileNameRegexp.MatchString(name)
}
