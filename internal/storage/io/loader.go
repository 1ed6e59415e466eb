package io

import (
	"context"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/elecmate/mmgen/internal/model"
)

// CatalogYAMLRepository loads the YAML catalogues (templates, knowledge base
// and quizzes) from a filesystem.
type CatalogYAMLRepository struct {
	fs fs.FS
}

// NewCatalogYAMLRepository creates a new YAML catalog repository.
func NewCatalogYAMLRepository(filesystem fs.FS) *CatalogYAMLRepository {
	return &CatalogYAMLRepository{fs: filesystem}
}

// ListTemplates loads the job templates from a YAML file.
func (r *CatalogYAMLRepository) ListTemplates(ctx context.Context, path string) ([]model.Template, error) {
	var file TemplatesFile
	if err := r.load(ctx, path, &file); err != nil {
		return nil, err
	}

	templates := make([]model.Template, 0, len(file.Templates))
	seen := map[string]bool{}
	for _, t := range file.Templates {
		tpl := t.toModel()
		if err := tpl.Validate(); err != nil {
			return nil, fmt.Errorf("invalid template: %w", err)
		}
		if seen[tpl.ID] {
			return nil, fmt.Errorf("template %q: %w", tpl.ID, model.ErrAlreadyExists)
		}
		seen[tpl.ID] = true
		templates = append(templates, tpl)
	}

	return templates, nil
}

// ListSchedules loads the maintenance knowledge base from a YAML file.
func (r *CatalogYAMLRepository) ListSchedules(ctx context.Context, path string) ([]model.MaintenanceSchedule, error) {
	var file KnowledgeFile
	if err := r.load(ctx, path, &file); err != nil {
		return nil, err
	}

	schedules := make([]model.MaintenanceSchedule, 0, len(file.Schedules))
	for _, s := range file.Schedules {
		if err := s.validate(); err != nil {
			return nil, fmt.Errorf("invalid schedule %q: %w", s.ID, err)
		}
		schedules = append(schedules, s.toModel())
	}

	return schedules, nil
}

// LoadStudyContent loads quizzes and inline checks from a YAML file.
func (r *CatalogYAMLRepository) LoadStudyContent(ctx context.Context, path string) ([]model.Quiz, []model.InlineCheck, error) {
	var file QuizzesFile
	if err := r.load(ctx, path, &file); err != nil {
		return nil, nil, err
	}

	quizzes := make([]model.Quiz, 0, len(file.Quizzes))
	for _, q := range file.Quizzes {
		quiz := q.toModel()
		if err := quiz.Validate(); err != nil {
			return nil, nil, fmt.Errorf("invalid quiz: %w", err)
		}
		quizzes = append(quizzes, quiz)
	}

	checks := make([]model.InlineCheck, 0, len(file.InlineChecks))
	for _, c := range file.InlineChecks {
		check := model.InlineCheck{ID: c.ID, Topic: c.Topic, Question: c.Question.toModel()}
		if err := check.Question.Validate(); err != nil {
			return nil, nil, fmt.Errorf("invalid inline check %q: %w", c.ID, err)
		}
		checks = append(checks, check)
	}

	return quizzes, checks, nil
}

func (r *CatalogYAMLRepository) load(ctx context.Context, path string, v any) error {
	data, err := fs.ReadFile(r.fs, path)
	if err != nil {
		return fmt.Errorf("reading catalog file: %w", err)
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing YAML: %w", err)
	}

	return nil
}

// TemplatesFile represents the YAML structure of the templates catalogue.
type TemplatesFile struct {
	Templates []Template `yaml:"templates"`
}

// Template represents the YAML structure of a job template.
type Template struct {
	ID               string `yaml:"id"`
	Name             string `yaml:"name"`
	Description      string `yaml:"description"`
	Query            string `yaml:"query"`
	EquipmentType    string `yaml:"equipment_type"`
	Location         string `yaml:"location"`
	InstallationType string `yaml:"installation_type"`
	AgeYears         string `yaml:"age_years"`
	KnownIssues      string `yaml:"known_issues"`
}

func (t Template) toModel() model.Template {
	return model.Template{
		ID:               t.ID,
		Name:             t.Name,
		Description:      t.Description,
		Query:            t.Query,
		EquipmentType:    t.EquipmentType,
		Location:         t.Location,
		InstallationType: t.InstallationType,
		AgeYears:         t.AgeYears,
		KnownIssues:      t.KnownIssues,
	}
}

// KnowledgeFile represents the YAML structure of the knowledge base.
type KnowledgeFile struct {
	Schedules []Schedule `yaml:"schedules"`
}

// Schedule represents the YAML structure of a maintenance schedule.
type Schedule struct {
	ID                       string   `yaml:"id"`
	EquipmentKeywords        []string `yaml:"equipment_keywords"`
	MaintenanceType          string   `yaml:"maintenance_type"`
	Title                    string   `yaml:"title"`
	Frequency                string   `yaml:"frequency"`
	RegulationsCited         []string `yaml:"regulations_cited"`
	RequiredQualifications   []string `yaml:"required_qualifications"`
	SafetyPrecautions        []string `yaml:"safety_precautions"`
	EstimatedDurationMinutes int      `yaml:"estimated_duration_minutes"`
	ProcedureSteps           []Step   `yaml:"procedure_steps"`
}

// Step represents the YAML structure of a procedure step.
type Step struct {
	Title                 string   `yaml:"title"`
	Content               string   `yaml:"content"`
	EstimatedDuration     string   `yaml:"estimated_duration"`
	Safety                []string `yaml:"safety"`
	ToolsRequired         []string `yaml:"tools_required"`
	MaterialsNeeded       []string `yaml:"materials_needed"`
	InspectionCheckpoints []string `yaml:"inspection_checkpoints"`
	BSReferences          []string `yaml:"bs_references"`
	LinkedHazards         []string `yaml:"linked_hazards"`
	Qualifications        []string `yaml:"qualifications"`
	DefectCodes           []string `yaml:"defect_codes"`
}

func (s Schedule) validate() error {
	if s.ID == "" {
		return fmt.Errorf("id is required: %w", model.ErrNotValid)
	}
	if len(s.ProcedureSteps) == 0 {
		return fmt.Errorf("at least one procedure step is required: %w", model.ErrNotValid)
	}
	for i, st := range s.ProcedureSteps {
		if st.Title == "" {
			return fmt.Errorf("procedure step %d title is required: %w", i+1, model.ErrNotValid)
		}
	}
	return nil
}

func (s Schedule) toModel() model.MaintenanceSchedule {
	steps := make([]model.Step, 0, len(s.ProcedureSteps))
	for i, st := range s.ProcedureSteps {
		steps = append(steps, model.Step{
			StepNumber:            i + 1,
			Title:                 st.Title,
			Content:               st.Content,
			EstimatedDuration:     st.EstimatedDuration,
			Safety:                st.Safety,
			ToolsRequired:         st.ToolsRequired,
			MaterialsNeeded:       st.MaterialsNeeded,
			InspectionCheckpoints: st.InspectionCheckpoints,
			BSReferences:          st.BSReferences,
			LinkedHazards:         st.LinkedHazards,
			Qualifications:        st.Qualifications,
			DefectCodes:           st.DefectCodes,
		})
	}

	return model.MaintenanceSchedule{
		ID:                       s.ID,
		EquipmentKeywords:        s.EquipmentKeywords,
		MaintenanceType:          s.MaintenanceType,
		Title:                    s.Title,
		Frequency:                s.Frequency,
		RegulationsCited:         s.RegulationsCited,
		RequiredQualifications:   s.RequiredQualifications,
		SafetyPrecautions:        s.SafetyPrecautions,
		EstimatedDurationMinutes: s.EstimatedDurationMinutes,
		ProcedureSteps:           steps,
	}
}

// QuizzesFile represents the YAML structure of the study centre content.
type QuizzesFile struct {
	Quizzes      []Quiz        `yaml:"quizzes"`
	InlineChecks []InlineCheck `yaml:"inline_checks"`
}

// Quiz represents the YAML structure of a quiz.
type Quiz struct {
	ID        string     `yaml:"id"`
	Title     string     `yaml:"title"`
	Topic     string     `yaml:"topic"`
	Questions []Question `yaml:"questions"`
}

// Question represents the YAML structure of a quiz question.
type Question struct {
	ID            string   `yaml:"id"`
	Question      string   `yaml:"question"`
	Options       []string `yaml:"options"`
	CorrectAnswer int      `yaml:"correct_answer"`
	Explanation   string   `yaml:"explanation"`
}

// InlineCheck represents the YAML structure of an inline check.
type InlineCheck struct {
	ID       string   `yaml:"id"`
	Topic    string   `yaml:"topic"`
	Question Question `yaml:"question"`
}

func (q Question) toModel() model.QuizQuestion {
	return model.QuizQuestion{
		ID:            q.ID,
		Question:      q.Question,
		Options:       q.Options,
		CorrectAnswer: q.CorrectAnswer,
		Explanation:   q.Explanation,
	}
}

func (q Quiz) toModel() model.Quiz {
	questions := make([]model.QuizQuestion, 0, len(q.Questions))
	for _, question := range q.Questions {
		questions = append(questions, question.toModel())
	}
	return model.Quiz{ID: q.ID, Title: q.Title, Topic: q.Topic, Questions: questions}
}
