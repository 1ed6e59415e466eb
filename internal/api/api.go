// Package api holds the JSON wire types shared by the HTTP server and client.
package api

import (
	"time"

	"github.com/elecmate/mmgen/internal/model"
)

// Routes.
const (
	PathCreateJob   = "/functions/v1/create-maintenance-method-job"
	PathGeneratePDF = "/functions/v1/generate-maintenance-method-pdf"
	PathJobs        = "/api/jobs"
	PathTemplates   = "/api/templates"
	PathDownloads   = "/downloads/"
	PathHealth      = "/healthz"
)

// CreateJobRequest is the body of the create job call.
type CreateJobRequest struct {
	Query            string                 `json:"query"`
	EquipmentDetails model.EquipmentDetails `json:"equipmentDetails"`
	DetailLevel      string                 `json:"detailLevel,omitempty"`
}

// CreateJobResponse is the response of the create job call.
type CreateJobResponse struct {
	JobID string `json:"jobId"`
}

// GeneratePDFResponse is the response of the PDF generation call. The request
// is a model.ReportPayload.
type GeneratePDFResponse struct {
	DownloadURL string `json:"downloadUrl"`
}

// ErrorResponse is returned on every failed call.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Job is the polled job resource.
type Job struct {
	ID               string                 `json:"id"`
	Query            string                 `json:"query"`
	EquipmentDetails model.EquipmentDetails `json:"equipment_details"`
	DetailLevel      string                 `json:"detail_level"`
	Status           string                 `json:"status"`
	Progress         int                    `json:"progress"`
	CurrentStep      string                 `json:"current_step"`
	MethodData       *model.MethodData      `json:"method_data"`
	ErrorMessage     string                 `json:"error_message,omitempty"`
	QualityMetrics   *model.QualityMetrics  `json:"quality_metrics,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
	StartedAt        *time.Time             `json:"started_at,omitempty"`
	CompletedAt      *time.Time             `json:"completed_at,omitempty"`
}

// JobFromModel converts a domain job into its wire form.
func JobFromModel(j model.Job) Job {
	return Job{
		ID:               j.ID,
		Query:            j.Query,
		EquipmentDetails: j.EquipmentDetails,
		DetailLevel:      string(j.DetailLevel),
		Status:           string(j.Status),
		Progress:         j.Progress,
		CurrentStep:      j.CurrentStep,
		MethodData:       j.MethodData,
		ErrorMessage:     j.ErrorMessage,
		QualityMetrics:   j.QualityMetrics,
		CreatedAt:        j.CreatedAt,
		UpdatedAt:        j.UpdatedAt,
		StartedAt:        j.StartedAt,
		CompletedAt:      j.CompletedAt,
	}
}

// ToModel converts the wire job into a domain job.
func (j Job) ToModel() model.Job {
	return model.Job{
		ID:               j.ID,
		Query:            j.Query,
		EquipmentDetails: j.EquipmentDetails,
		DetailLevel:      model.DetailLevel(j.DetailLevel),
		Status:           model.JobStatus(j.Status),
		Progress:         j.Progress,
		CurrentStep:      j.CurrentStep,
		MethodData:       j.MethodData,
		ErrorMessage:     j.ErrorMessage,
		QualityMetrics:   j.QualityMetrics,
		CreatedAt:        j.CreatedAt,
		UpdatedAt:        j.UpdatedAt,
		StartedAt:        j.StartedAt,
		CompletedAt:      j.CompletedAt,
	}
}

// ListJobsResponse is the response of the job listing.
type ListJobsResponse struct {
	Jobs []Job `json:"jobs"`
}

// Template is a job template.
type Template struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	Query            string `json:"query"`
	EquipmentType    string `json:"equipmentType"`
	Location         string `json:"location"`
	InstallationType string `json:"installationType"`
	AgeYears         string `json:"ageYears"`
	KnownIssues      string `json:"knownIssues"`
}

// TemplateFromModel converts a domain template into its wire form.
func TemplateFromModel(t model.Template) Template {
	return Template(t)
}

// ToModel converts the wire template into a domain template.
func (t Template) ToModel() model.Template {
	return model.Template(t)
}

// TemplatesResponse is the response of the templates listing.
type TemplatesResponse struct {
	Templates []Template `json:"templates"`
}
