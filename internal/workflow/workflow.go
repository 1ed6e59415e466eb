// Package workflow implements the client side lifecycle of a maintenance
// method job: form input, submission, polled processing, the success summary
// and the editable results.
//
// The view state machine is:
//
//	input --submit--> processing --completed--> success --view results--> results
//	processing --failed/cancel--> input
//	results --reset--> input
package workflow

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/elecmate/mmgen/internal/log"
	"github.com/elecmate/mmgen/internal/method"
	"github.com/elecmate/mmgen/internal/model"
)

// State is a view state of the session.
type State string

const (
	StateInput      State = "input"
	StateProcessing State = "processing"
	StateSuccess    State = "success"
	StateResults    State = "results"
)

// Backend is the remote job service.
type Backend interface {
	CreateJob(ctx context.Context, query string, eq model.EquipmentDetails, level model.DetailLevel) (string, error)
	CancelJob(ctx context.Context, id string) error
	GeneratePDF(ctx context.Context, p model.ReportPayload) (string, error)
}

// SessionConfig is the configuration of a session.
type SessionConfig struct {
	Backend   Backend
	Notifier  Notifier
	Templates []model.Template
	Logger    log.Logger
	TimeNow   func() time.Time
}

func (c *SessionConfig) defaults() error {
	if c.Backend == nil {
		return fmt.Errorf("backend is required")
	}
	if c.Notifier == nil {
		c.Notifier = noopNotifier{}
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	if c.TimeNow == nil {
		c.TimeNow = time.Now
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "workflow.Session"})
	return nil
}

// Session holds the state of one maintenance method job from the user point of view.
// It's safe for concurrent use, remote calls are made without holding the lock.
type Session struct {
	backend   Backend
	notifier  Notifier
	templates []model.Template
	logger    log.Logger
	timeNow   func() time.Time

	mu          sync.Mutex
	state       State
	busy        bool
	query       string
	equipment   model.EquipmentDetails
	detailLevel model.DetailLevel
	jobID       string
	progress    int
	currentStep string
	startedAt   time.Time
	finishedAt  time.Time
	methodData  *model.MethodData
	steps       []model.Step
}

// NewSession returns a new session in the input state.
func NewSession(cfg SessionConfig) (*Session, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Session{
		backend:     cfg.Backend,
		notifier:    cfg.Notifier,
		templates:   cfg.Templates,
		logger:      cfg.Logger,
		timeNow:     cfg.TimeNow,
		state:       StateInput,
		detailLevel: model.DetailLevelNormal,
	}, nil
}

func (s *Session) requireState(op string, states ...State) error {
	for _, st := range states {
		if s.state == st {
			return nil
		}
	}
	return fmt.Errorf("can't %s in %s state: %w", op, s.state, model.ErrNotValid)
}

// State returns the current view state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Query returns the job query being edited.
func (s *Session) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// Equipment returns the equipment details being edited.
func (s *Session) Equipment() model.EquipmentDetails {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.equipment
}

// SetQuery sets the job query.
func (s *Session) SetQuery(q string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireState("edit the query", StateInput); err != nil {
		return err
	}
	s.query = q
	return nil
}

// SetEquipment sets the equipment details.
func (s *Session) SetEquipment(eq model.EquipmentDetails) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireState("edit the equipment", StateInput); err != nil {
		return err
	}
	s.equipment = eq
	return nil
}

// SetDetailLevel sets the detail level of the job.
func (s *Session) SetDetailLevel(l model.DetailLevel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireState("change the detail level", StateInput); err != nil {
		return err
	}
	if l != model.DetailLevelNormal && l != model.DetailLevelDetailed {
		return fmt.Errorf("unknown detail level %q: %w", l, model.ErrNotValid)
	}
	s.detailLevel = l
	return nil
}

// Templates returns the available templates.
func (s *Session) Templates() []model.Template {
	return s.templates
}

// SelectTemplate fills the form from a template. Every equipment field is
// overwritten, so fields the template lacks (additional notes, last
// inspection date) end up empty.
func (s *Session) SelectTemplate(id string) error {
	var tpl *model.Template
	for i := range s.templates {
		if s.templates[i].ID == id {
			tpl = &s.templates[i]
			break
		}
	}
	if tpl == nil {
		return fmt.Errorf("template %q: %w", id, model.ErrNotFound)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireState("select a template", StateInput); err != nil {
		return err
	}
	s.query = tpl.Query
	s.equipment = tpl.EquipmentDetails()
	return nil
}

// CanGenerate returns true when the form can be submitted.
func (s *Session) CanGenerate() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateInput && !s.busy && canGenerate(s.query, s.equipment)
}

func canGenerate(query string, eq model.EquipmentDetails) bool {
	return model.ValidateQuery(query) == nil && eq.HasRequired()
}

// Submit validates the form and creates the remote job. On success the
// session moves to processing.
func (s *Session) Submit(ctx context.Context) error {
	s.mu.Lock()
	if err := s.requireState("submit", StateInput); err != nil {
		s.mu.Unlock()
		return err
	}
	if s.busy {
		s.mu.Unlock()
		return fmt.Errorf("submission in progress: %w", model.ErrNotValid)
	}
	if err := model.ValidateQuery(s.query); err != nil {
		s.mu.Unlock()
		s.notifier.Notify(LevelError, MsgQueryTooShort)
		return err
	}
	if !s.equipment.HasRequired() {
		s.mu.Unlock()
		s.notifier.Notify(LevelError, MsgMissingEquipment)
		return fmt.Errorf("equipment type and location are required: %w", model.ErrNotValid)
	}
	query, eq, level := strings.TrimSpace(s.query), s.equipment, s.detailLevel
	s.busy = true
	s.mu.Unlock()

	id, err := s.backend.CreateJob(ctx, query, eq, level)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	if err != nil {
		s.logger.Errorf("Could not create job: %s", err)
		s.notifier.Notify(LevelError, "Failed to start generation: "+err.Error())
		return fmt.Errorf("could not create job: %w", err)
	}

	s.jobID = id
	s.state = StateProcessing
	s.progress = 0
	s.currentStep = ""
	s.startedAt = s.timeNow()
	s.logger.WithValues(log.Kv{"job-id": id}).Infof("Job submitted")
	s.notifier.Notify(LevelInfo, MsgGenerationStarted)

	return nil
}

// JobID returns the job being processed, empty when there is none.
func (s *Session) JobID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobID
}

// Progress returns the last known progress and current step of the job.
func (s *Session) Progress() (int, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress, s.currentStep
}

// HandleJobUpdate applies a polled job snapshot. Snapshots of other jobs or
// received outside processing are ignored.
func (s *Session) HandleJobUpdate(j model.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateProcessing || j.ID != s.jobID {
		s.logger.Debugf("Ignoring update of job %s in %s state", j.ID, s.state)
		return
	}

	switch j.Status {
	case model.JobStatusPending, model.JobStatusProcessing:
		s.progress = j.Progress
		s.currentStep = j.CurrentStep

	case model.JobStatusCompleted:
		if j.MethodData == nil {
			s.failLocked("job completed without a method")
			return
		}
		data := *j.MethodData
		data.Steps = model.CloneSteps(data.Steps)
		s.methodData = &data
		s.steps = method.Renumber(data.Steps)
		s.progress = 100
		s.currentStep = j.CurrentStep
		s.finishedAt = s.timeNow()
		s.state = StateSuccess
		s.notifier.Notify(LevelSuccess, MsgGenerationReady)

	case model.JobStatusFailed:
		msg := j.ErrorMessage
		if msg == "" {
			msg = "unknown error"
		}
		s.failLocked(msg)
	}
}

func (s *Session) failLocked(msg string) {
	s.logger.WithValues(log.Kv{"job-id": s.jobID}).Warningf("Job failed: %s", msg)
	s.jobID = ""
	s.progress = 0
	s.currentStep = ""
	s.state = StateInput
	s.notifier.Notify(LevelError, "Generation failed: "+msg)
}

// Cancel requests the remote cancellation of the job and returns to input.
// A remote error is notified but the session still returns to input.
func (s *Session) Cancel(ctx context.Context) error {
	s.mu.Lock()
	if err := s.requireState("cancel", StateProcessing); err != nil {
		s.mu.Unlock()
		return err
	}
	id := s.jobID
	s.jobID = ""
	s.progress = 0
	s.currentStep = ""
	s.state = StateInput
	s.mu.Unlock()

	if err := s.backend.CancelJob(ctx, id); err != nil {
		s.logger.Errorf("Could not cancel job %s: %s", id, err)
		s.notifier.Notify(LevelError, "Failed to cancel job: "+err.Error())
		return nil
	}

	s.notifier.Notify(LevelInfo, MsgGenerationCancel)
	return nil
}

// ViewResults moves from the success summary to the editable results.
func (s *Session) ViewResults() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireState("view results", StateSuccess); err != nil {
		return err
	}
	s.state = StateResults
	return nil
}

// Summary is shown on the success view.
type Summary struct {
	Title     string
	StepCount int
	Elapsed   time.Duration
}

// Summary returns the success summary.
func (s *Session) Summary() (Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireState("get the summary", StateSuccess, StateResults); err != nil {
		return Summary{}, err
	}

	elapsed := s.finishedAt.Sub(s.startedAt)
	if elapsed < 0 {
		elapsed = 0
	}
	return Summary{
		Title:     s.methodData.Title,
		StepCount: len(s.steps),
		Elapsed:   elapsed,
	}, nil
}

// MethodData returns the generated method with the current (edited) steps.
func (s *Session) MethodData() (*model.MethodData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireState("get the method", StateSuccess, StateResults); err != nil {
		return nil, err
	}
	data := *s.methodData
	data.Steps = model.CloneSteps(s.steps)
	return &data, nil
}

// Steps returns a copy of the current steps.
func (s *Session) Steps() []model.Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.CloneSteps(s.steps)
}

func (s *Session) editSteps(op string, edit func([]model.Step) ([]model.Step, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireState(op, StateResults); err != nil {
		return err
	}
	steps, err := edit(s.steps)
	if err != nil {
		return err
	}
	s.steps = steps
	return nil
}

// UpdateStep replaces the step at index.
func (s *Session) UpdateStep(index int, step model.Step) error {
	return s.editSteps("update a step", func(st []model.Step) ([]model.Step, error) {
		return method.UpdateStep(st, index, step)
	})
}

// DeleteStep removes the step at index.
func (s *Session) DeleteStep(index int) error {
	return s.editSteps("delete a step", func(st []model.Step) ([]model.Step, error) {
		return method.DeleteStep(st, index)
	})
}

// MoveStepUp swaps the step at index with the previous one.
func (s *Session) MoveStepUp(index int) error {
	return s.editSteps("move a step", func(st []model.Step) ([]model.Step, error) {
		return method.MoveStepUp(st, index)
	})
}

// MoveStepDown swaps the step at index with the next one.
func (s *Session) MoveStepDown(index int) error {
	return s.editSteps("move a step", func(st []model.Step) ([]model.Step, error) {
		return method.MoveStepDown(st, index)
	})
}

// AddNewStep appends a placeholder step.
func (s *Session) AddNewStep() error {
	return s.editSteps("add a step", func(st []model.Step) ([]model.Step, error) {
		return method.AddNewStep(st), nil
	})
}

// Reset clears the form, the job and the steps and returns to input.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireState("reset", StateResults); err != nil {
		return err
	}

	s.state = StateInput
	s.query = ""
	s.equipment = model.EquipmentDetails{}
	s.detailLevel = model.DetailLevelNormal
	s.jobID = ""
	s.progress = 0
	s.currentStep = ""
	s.startedAt = time.Time{}
	s.finishedAt = time.Time{}
	s.methodData = nil
	s.steps = nil
	return nil
}

// ReportPayload builds the export payload from the current steps.
func (s *Session) ReportPayload() (model.ReportPayload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireState("export", StateResults); err != nil {
		return model.ReportPayload{}, err
	}
	return s.reportPayloadLocked(), nil
}

func (s *Session) reportPayloadLocked() model.ReportPayload {
	return model.ReportPayload{
		ReportTitle:      model.DefaultReportTitle(s.equipment.EquipmentType),
		EquipmentDetails: s.equipment,
		Steps:            model.CloneSteps(s.steps),
		Recommendations:  append([]string(nil), s.methodData.Recommendations...),
		Summary:          s.methodData.Summary,
	}
}

// ExportPDF posts the current results to the PDF generator and returns the download URL.
func (s *Session) ExportPDF(ctx context.Context) (string, error) {
	payload, err := s.ReportPayload()
	if err != nil {
		return "", err
	}

	url, err := s.backend.GeneratePDF(ctx, payload)
	if err != nil {
		s.logger.Errorf("Could not generate PDF: %s", err)
		s.notifier.Notify(LevelError, "Failed to generate PDF: "+err.Error())
		return "", fmt.Errorf("could not generate pdf: %w", err)
	}

	s.notifier.Notify(LevelSuccess, MsgPDFReady)
	return url, nil
}
