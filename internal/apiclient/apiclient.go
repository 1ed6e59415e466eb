// Package apiclient is the HTTP client of the job service.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/elecmate/mmgen/internal/api"
	"github.com/elecmate/mmgen/internal/log"
	"github.com/elecmate/mmgen/internal/model"
)

// ClientConfig is the configuration of the client.
type ClientConfig struct {
	// BaseURL is the job service root URL.
	BaseURL    string
	HTTPClient *http.Client
	Logger     log.Logger
}

func (c *ClientConfig) defaults() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base url is required")
	}
	if _, err := url.Parse(c.BaseURL); err != nil {
		return fmt.Errorf("invalid base url: %w", err)
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 2 * time.Minute}
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "apiclient.Client"})
	return nil
}

// Client calls the job service.
type Client struct {
	baseURL string
	http    *http.Client
	logger  log.Logger
}

// NewClient returns a new client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Client{
		baseURL: cfg.BaseURL,
		http:    cfg.HTTPClient,
		logger:  cfg.Logger,
	}, nil
}

// CreateJob queues a new job and returns its ID.
func (c *Client) CreateJob(ctx context.Context, query string, eq model.EquipmentDetails, level model.DetailLevel) (string, error) {
	var resp api.CreateJobResponse
	err := c.do(ctx, http.MethodPost, api.PathCreateJob, api.CreateJobRequest{
		Query:            query,
		EquipmentDetails: eq,
		DetailLevel:      string(level),
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("could not create job: %w", err)
	}
	if resp.JobID == "" {
		return "", fmt.Errorf("could not create job: empty job id")
	}

	return resp.JobID, nil
}

// GetJob returns the current job snapshot.
func (c *Client) GetJob(ctx context.Context, id string) (*model.Job, error) {
	var j api.Job
	if err := c.do(ctx, http.MethodGet, api.PathJobs+"/"+url.PathEscape(id), nil, &j); err != nil {
		return nil, fmt.Errorf("could not get job: %w", err)
	}

	m := j.ToModel()
	return &m, nil
}

// ListJobs lists the jobs, newest first.
func (c *Client) ListJobs(ctx context.Context, status model.JobStatus, limit int) ([]model.Job, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", string(status))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := api.PathJobs
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp api.ListJobsResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("could not list jobs: %w", err)
	}

	jobs := make([]model.Job, 0, len(resp.Jobs))
	for _, j := range resp.Jobs {
		jobs = append(jobs, j.ToModel())
	}
	return jobs, nil
}

// CancelJob requests the cancellation of a job.
func (c *Client) CancelJob(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodPost, api.PathJobs+"/"+url.PathEscape(id)+"/cancel", nil, nil); err != nil {
		return fmt.Errorf("could not cancel job: %w", err)
	}
	return nil
}

// ListTemplates returns the job templates.
func (c *Client) ListTemplates(ctx context.Context) ([]model.Template, error) {
	var resp api.TemplatesResponse
	if err := c.do(ctx, http.MethodGet, api.PathTemplates, nil, &resp); err != nil {
		return nil, fmt.Errorf("could not list templates: %w", err)
	}

	templates := make([]model.Template, 0, len(resp.Templates))
	for _, t := range resp.Templates {
		templates = append(templates, t.ToModel())
	}
	return templates, nil
}

// GeneratePDF renders the payload and returns the download URL.
func (c *Client) GeneratePDF(ctx context.Context, p model.ReportPayload) (string, error) {
	var resp api.GeneratePDFResponse
	if err := c.do(ctx, http.MethodPost, api.PathGeneratePDF, p, &resp); err != nil {
		return "", fmt.Errorf("could not generate pdf: %w", err)
	}
	if resp.DownloadURL == "" {
		return "", fmt.Errorf("could not generate pdf: empty download url")
	}

	return resp.DownloadURL, nil
}

// Download writes the document at the download URL to w.
func (c *Client) Download(ctx context.Context, downloadURL string, w io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return fmt.Errorf("could not create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("could not download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("could not write download: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("could not marshal request: %w", err)
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return fmt.Errorf("could not create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debugf("%s %s", method, path)
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("could not decode response: %w", err)
	}
	return nil
}

// decodeError maps an error response back to the domain errors.
func decodeError(resp *http.Response) error {
	var e api.ErrorResponse
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	msg := strings.TrimSpace(string(b))
	if json.Unmarshal(b, &e) == nil && e.Error != "" {
		msg = e.Error
	}
	if msg == "" {
		msg = resp.Status
	}

	switch resp.StatusCode {
	case http.StatusBadRequest:
		return fmt.Errorf("%s: %w", msg, model.ErrNotValid)
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", msg, model.ErrNotFound)
	case http.StatusConflict:
		return fmt.Errorf("%s: %w", msg, model.ErrAlreadyExists)
	default:
		return fmt.Errorf("%s (status %d)", msg, resp.StatusCode)
	}
}
