// Package httpapi exposes the job services over JSON HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/elecmate/mmgen/internal/api"
	"github.com/elecmate/mmgen/internal/app/canceljob"
	"github.com/elecmate/mmgen/internal/app/createjob"
	"github.com/elecmate/mmgen/internal/app/exportpdf"
	"github.com/elecmate/mmgen/internal/app/getjob"
	"github.com/elecmate/mmgen/internal/app/listjobs"
	"github.com/elecmate/mmgen/internal/log"
	"github.com/elecmate/mmgen/internal/model"
)

const maxBodyBytes = 1 << 20

// JobCreator queues jobs.
type JobCreator interface {
	Run(ctx context.Context, req createjob.Request) (*model.Job, error)
}

// JobGetter returns jobs.
type JobGetter interface {
	Run(ctx context.Context, req getjob.Request) (*model.Job, error)
}

// JobLister lists jobs.
type JobLister interface {
	Run(ctx context.Context, req listjobs.Request) ([]model.Job, error)
}

// JobCanceller cancels jobs.
type JobCanceller interface {
	Run(ctx context.Context, req canceljob.Request) (*model.Job, error)
}

// PDFExporter renders report payloads.
type PDFExporter interface {
	Run(ctx context.Context, p model.ReportPayload) (*exportpdf.Result, error)
}

// HandlerConfig is the configuration of the HTTP handler.
type HandlerConfig struct {
	CreateJob    JobCreator
	GetJob       JobGetter
	ListJobs     JobLister
	CancelJob    JobCanceller
	ExportPDF    PDFExporter
	Templates    []model.Template
	DownloadsDir string
	Logger       log.Logger
}

func (c *HandlerConfig) defaults() error {
	if c.CreateJob == nil || c.GetJob == nil || c.ListJobs == nil || c.CancelJob == nil {
		return fmt.Errorf("job services are required")
	}
	if c.ExportPDF == nil {
		return fmt.Errorf("pdf exporter is required")
	}
	if c.DownloadsDir == "" {
		return fmt.Errorf("downloads dir is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "httpapi.Handler"})
	return nil
}

type handler struct {
	cfg    HandlerConfig
	logger log.Logger
}

// NewHandler returns the HTTP handler with all the routes.
func NewHandler(cfg HandlerConfig) (http.Handler, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	h := handler{cfg: cfg, logger: cfg.Logger}

	mux := http.NewServeMux()
	mux.HandleFunc("POST "+api.PathCreateJob, h.createJob)
	mux.HandleFunc("POST "+api.PathGeneratePDF, h.generatePDF)
	mux.HandleFunc("GET "+api.PathJobs, h.listJobs)
	mux.HandleFunc("GET "+api.PathJobs+"/{id}", h.getJob)
	mux.HandleFunc("POST "+api.PathJobs+"/{id}/cancel", h.cancelJob)
	mux.HandleFunc("GET "+api.PathTemplates, h.listTemplates)
	mux.HandleFunc("GET "+api.PathDownloads+"{name}", h.download)
	mux.HandleFunc("GET "+api.PathHealth, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return h.logRequests(mux), nil
}

func (h handler) createJob(w http.ResponseWriter, r *http.Request) {
	var req api.CreateJobRequest
	if !h.decode(w, r, &req) {
		return
	}

	j, err := h.cfg.CreateJob.Run(r.Context(), createjob.Request{
		Query:            req.Query,
		EquipmentDetails: req.EquipmentDetails,
		DetailLevel:      model.DetailLevel(req.DetailLevel),
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, api.CreateJobResponse{JobID: j.ID})
}

func (h handler) generatePDF(w http.ResponseWriter, r *http.Request) {
	var payload model.ReportPayload
	if !h.decode(w, r, &payload) {
		return
	}

	res, err := h.cfg.ExportPDF.Run(r.Context(), payload)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, api.GeneratePDFResponse{DownloadURL: res.DownloadURL})
}

func (h handler) getJob(w http.ResponseWriter, r *http.Request) {
	j, err := h.cfg.GetJob.Run(r.Context(), getjob.Request{ID: r.PathValue("id")})
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, api.JobFromModel(*j))
}

func (h handler) listJobs(w http.ResponseWriter, r *http.Request) {
	req := listjobs.Request{Status: model.JobStatus(r.URL.Query().Get("status"))}
	if l := r.URL.Query().Get("limit"); l != "" {
		limit, err := strconv.Atoi(l)
		if err != nil {
			h.writeError(w, fmt.Errorf("invalid limit %q: %w", l, model.ErrNotValid))
			return
		}
		req.Limit = limit
	}

	jobs, err := h.cfg.ListJobs.Run(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	resp := api.ListJobsResponse{Jobs: make([]api.Job, 0, len(jobs))}
	for _, j := range jobs {
		resp.Jobs = append(resp.Jobs, api.JobFromModel(j))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h handler) cancelJob(w http.ResponseWriter, r *http.Request) {
	j, err := h.cfg.CancelJob.Run(r.Context(), canceljob.Request{ID: r.PathValue("id")})
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, api.JobFromModel(*j))
}

func (h handler) listTemplates(w http.ResponseWriter, _ *http.Request) {
	resp := api.TemplatesResponse{Templates: make([]api.Template, 0, len(h.cfg.Templates))}
	for _, t := range h.cfg.Templates {
		resp.Templates = append(resp.Templates, api.TemplateFromModel(t))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h handler) download(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if !exportpdf.ValidFileName(name) {
		h.writeError(w, fmt.Errorf("invalid file name: %w", model.ErrNotFound))
		return
	}

	path := filepath.Join(h.cfg.DownloadsDir, name)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			err = fmt.Errorf("file %s: %w", name, model.ErrNotFound)
		}
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", name))
	http.ServeFile(w, r, path)
}

func (h handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.writeError(w, fmt.Errorf("invalid request body: %s: %w", err, model.ErrNotValid))
		return false
	}
	return true
}

func (h handler) writeError(w http.ResponseWriter, err error) {
	status := StatusCode(err)
	if status >= http.StatusInternalServerError {
		h.logger.Errorf("Request failed: %s", err)
	}
	writeJSON(w, status, api.ErrorResponse{Error: err.Error()})
}

// StatusCode maps domain errors to HTTP status codes.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, model.ErrNotValid):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrAlreadyExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (h handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		h.logger.WithValues(log.Kv{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}).Debugf("HTTP request")
	})
}
