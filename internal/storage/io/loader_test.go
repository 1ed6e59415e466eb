package io

import (
	"context"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elecmate/mmgen/internal/content"
	"github.com/elecmate/mmgen/internal/model"
)

const validQuery = "Annual maintenance of the main distribution board in the plant room"

func TestCatalogYAMLRepository_ListTemplates(t *testing.T) {
	tests := map[string]struct {
		fs           fstest.MapFS
		expTemplates []model.Template
		expErr       bool
	}{
		"A valid template file should load the templates.": {
			fs: fstest.MapFS{
				"t.yaml": &fstest.MapFile{Data: []byte(`
templates:
  - id: db
    name: Distribution board
    description: Annual DB check
    query: ` + validQuery + `
    equipment_type: Distribution board
    location: Plant room
    installation_type: Commercial
    age_years: "12"
    known_issues: Warm neutral
`)},
			},
			expTemplates: []model.Template{
				{
					ID:               "db",
					Name:             "Distribution board",
					Description:      "Annual DB check",
					Query:            validQuery,
					EquipmentType:    "Distribution board",
					Location:         "Plant room",
					InstallationType: "Commercial",
					AgeYears:         "12",
					KnownIssues:      "Warm neutral",
				},
			},
		},

		"A template with a short query should fail.": {
			fs: fstest.MapFS{
				"t.yaml": &fstest.MapFile{Data: []byte(`
templates:
  - id: db
    name: Distribution board
    query: too short
    equipment_type: Distribution board
    location: Plant room
`)},
			},
			expErr: true,
		},

		"Duplicated template IDs should fail.": {
			fs: fstest.MapFS{
				"t.yaml": &fstest.MapFile{Data: []byte(`
templates:
  - id: db
    name: a
    query: ` + validQuery + `
    equipment_type: DB
    location: Plant room
  - id: db
    name: b
    query: ` + validQuery + `
    equipment_type: DB
    location: Plant room
`)},
			},
			expErr: true,
		},

		"Invalid YAML should fail.": {
			fs: fstest.MapFS{
				"t.yaml": &fstest.MapFile{Data: []byte(`templates: [`)},
			},
			expErr: true,
		},

		"A missing file should fail.": {
			fs:     fstest.MapFS{},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			repo := NewCatalogYAMLRepository(test.fs)
			templates, err := repo.ListTemplates(context.TODO(), "t.yaml")

			if test.expErr {
				assert.Error(err)
			} else if assert.NoError(err) {
				require.Len(templates, len(test.expTemplates))
				assert.Equal(test.expTemplates, templates)
			}
		})
	}
}

func TestCatalogYAMLRepository_ListSchedules(t *testing.T) {
	tests := map[string]struct {
		fs     fstest.MapFS
		expErr bool
		check  func(t *testing.T, s []model.MaintenanceSchedule)
	}{
		"Procedure steps should be numbered in file order.": {
			fs: fstest.MapFS{
				"k.yaml": &fstest.MapFile{Data: []byte(`
schedules:
  - id: db
    equipment_keywords: [distribution board, consumer unit]
    maintenance_type: periodic
    title: DB maintenance
    frequency: Annually
    estimated_duration_minutes: 90
    procedure_steps:
      - title: Isolate
        content: Isolate the board.
        estimated_duration: 15 mins
        safety: [Lock off]
      - title: Inspect
        content: Visual inspection.
        bs_references: [BS 7671 Reg 651.2]
`)},
			},
			check: func(t *testing.T, s []model.MaintenanceSchedule) {
				require.Len(t, s, 1)
				assert.Equal(t, []string{"distribution board", "consumer unit"}, s[0].EquipmentKeywords)
				assert.Equal(t, 90, s[0].EstimatedDurationMinutes)
				require.Len(t, s[0].ProcedureSteps, 2)
				assert.Equal(t, 1, s[0].ProcedureSteps[0].StepNumber)
				assert.Equal(t, []string{"Lock off"}, s[0].ProcedureSteps[0].Safety)
				assert.Equal(t, 2, s[0].ProcedureSteps[1].StepNumber)
				assert.Equal(t, []string{"BS 7671 Reg 651.2"}, s[0].ProcedureSteps[1].BSReferences)
			},
		},

		"A schedule without steps should fail.": {
			fs: fstest.MapFS{
				"k.yaml": &fstest.MapFile{Data: []byte(`
schedules:
  - id: db
    title: DB maintenance
`)},
			},
			expErr: true,
		},

		"A step without title should fail.": {
			fs: fstest.MapFS{
				"k.yaml": &fstest.MapFile{Data: []byte(`
schedules:
  - id: db
    procedure_steps:
      - content: no title
`)},
			},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			repo := NewCatalogYAMLRepository(test.fs)
			s, err := repo.ListSchedules(context.TODO(), "k.yaml")

			if test.expErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			test.check(t, s)
		})
	}
}

func TestCatalogYAMLRepository_LoadStudyContent(t *testing.T) {
	tests := map[string]struct {
		data       string
		expQuizzes []model.Quiz
		expChecks  []model.InlineCheck
		expErr     bool
	}{
		"Quizzes and inline checks should load.": {
			data: `
quizzes:
  - id: q1
    title: Safe isolation
    topic: Testing
    questions:
      - id: a
        question: Prove dead where?
        options: [At the board, At the point of work]
        correct_answer: 1
        explanation: Always at the point of work.
inline_checks:
  - id: c1
    topic: RCD
    question:
      id: c1q
      question: Max trip time at 1x?
      options: [40 ms, 300 ms]
      correct_answer: 1
      explanation: 300 ms for general type RCDs.
`,
			expQuizzes: []model.Quiz{{
				ID:    "q1",
				Title: "Safe isolation",
				Topic: "Testing",
				Questions: []model.QuizQuestion{{
					ID:            "a",
					Question:      "Prove dead where?",
					Options:       []string{"At the board", "At the point of work"},
					CorrectAnswer: 1,
					Explanation:   "Always at the point of work.",
				}},
			}},
			expChecks: []model.InlineCheck{{
				ID:    "c1",
				Topic: "RCD",
				Question: model.QuizQuestion{
					ID:            "c1q",
					Question:      "Max trip time at 1x?",
					Options:       []string{"40 ms", "300 ms"},
					CorrectAnswer: 1,
					Explanation:   "300 ms for general type RCDs.",
				},
			}},
		},

		"A correct answer out of range should fail.": {
			data: `
quizzes:
  - id: q1
    questions:
      - id: a
        question: Prove dead where?
        options: [At the board, At the point of work]
        correct_answer: 2
`,
			expErr: true,
		},

		"An inline check with a single option should fail.": {
			data: `
inline_checks:
  - id: c1
    question:
      question: Max trip time?
      options: [300 ms]
`,
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			repo := NewCatalogYAMLRepository(fstest.MapFS{"q.yaml": &fstest.MapFile{Data: []byte(test.data)}})
			quizzes, checks, err := repo.LoadStudyContent(context.TODO(), "q.yaml")

			if test.expErr {
				assert.Error(err)
			} else if assert.NoError(err) {
				assert.Equal(test.expQuizzes, quizzes)
				assert.Equal(test.expChecks, checks)
			}
		})
	}
}

func TestCatalogYAMLRepositoryEmbeddedContent(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	repo := NewCatalogYAMLRepository(content.FS)

	templates, err := repo.ListTemplates(context.TODO(), content.TemplatesFile)
	require.NoError(err)
	assert.NotEmpty(templates)

	schedules, err := repo.ListSchedules(context.TODO(), content.KnowledgeFile)
	require.NoError(err)
	assert.NotEmpty(schedules)

	quizzes, checks, err := repo.LoadStudyContent(context.TODO(), content.QuizzesFile)
	require.NoError(err)
	assert.NotEmpty(quizzes)
	assert.NotEmpty(checks)
}

func TestConfigYAMLRepository_GetServerConfig(t *testing.T) {
	tests := map[string]struct {
		data   string
		expCfg model.ServerConfig
		expErr bool
	}{
		"A full config should load.": {
			data: `
listen_address: ":9090"
public_url: https://mm.example.com
downloads_dir: /var/lib/mmgen/downloads
workers: 4
poll_interval: 1s
generation_timeout: 2m
generator:
  provider: openai
  model: gpt-4o-mini
  api_key_env: OPENAI_API_KEY
`,
			expCfg: model.ServerConfig{
				ListenAddress:     ":9090",
				PublicURL:         "https://mm.example.com",
				DownloadsDir:      "/var/lib/mmgen/downloads",
				Workers:           4,
				PollInterval:      time.Second,
				GenerationTimeout: 2 * time.Minute,
				Generator: model.GeneratorConfig{
					Provider:  model.GeneratorProviderOpenAI,
					Model:     "gpt-4o-mini",
					APIKeyEnv: "OPENAI_API_KEY",
				},
			},
		},

		"An empty config should load with zero values.": {
			data:   "---\n",
			expCfg: model.ServerConfig{},
		},

		"An invalid duration should fail.": {
			data:   "poll_interval: soon\n",
			expErr: true,
		},

		"An unknown provider should fail.": {
			data:   "generator:\n  provider: magic\n",
			expErr: true,
		},

		"The openai provider without model should fail.": {
			data:   "generator:\n  provider: openai\n",
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			repo := NewConfigYAMLRepository(fstest.MapFS{"c.yaml": &fstest.MapFile{Data: []byte(test.data)}})
			cfg, err := repo.GetServerConfig(context.TODO(), "c.yaml")

			if test.expErr {
				assert.Error(err)
				assert.ErrorIs(err, model.ErrNotValid)
			} else if assert.NoError(err) {
				assert.Equal(test.expCfg, cfg)
			}
		})
	}
}
