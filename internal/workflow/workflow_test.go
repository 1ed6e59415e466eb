package workflow_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elecmate/mmgen/internal/model"
	"github.com/elecmate/mmgen/internal/workflow"
)

type fakeBackend struct {
	createErr error
	cancelErr error
	pdfErr    error

	created   []string
	cancelled []string
	payloads  []model.ReportPayload
}

func (f *fakeBackend) CreateJob(_ context.Context, query string, _ model.EquipmentDetails, _ model.DetailLevel) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.created = append(f.created, query)
	return "job-1", nil
}

func (f *fakeBackend) CancelJob(_ context.Context, id string) error {
	f.cancelled = append(f.cancelled, id)
	return f.cancelErr
}

func (f *fakeBackend) GeneratePDF(_ context.Context, p model.ReportPayload) (string, error) {
	if f.pdfErr != nil {
		return "", f.pdfErr
	}
	f.payloads = append(f.payloads, p)
	return "http://localhost/downloads/report.pdf", nil
}

type notification struct {
	Level   workflow.Level
	Message string
}

type recorder struct{ got []notification }

func (r *recorder) Notify(l workflow.Level, msg string) {
	r.got = append(r.got, notification{Level: l, Message: msg})
}

func (r *recorder) last() notification {
	if len(r.got) == 0 {
		return notification{}
	}
	return r.got[len(r.got)-1]
}

var (
	validQuery = "Annual maintenance of the main distribution board in the plant room."
	validEq    = model.EquipmentDetails{EquipmentType: "Distribution board", Location: "Plant room"}

	templates = []model.Template{
		{
			ID:               "consumer-unit",
			Name:             "Consumer unit",
			Query:            "Periodic inspection and testing of a domestic consumer unit with RCBOs.",
			EquipmentType:    "Consumer unit",
			Location:         "Hallway cupboard",
			InstallationType: "Domestic",
			AgeYears:         "12",
		},
	}

	completedJob = model.Job{
		ID:          "job-1",
		Status:      model.JobStatusCompleted,
		Progress:    100,
		CurrentStep: "Completed",
		MethodData: &model.MethodData{
			Title:           "Board maintenance",
			Summary:         "Annual maintenance.",
			Recommendations: []string{"Record results."},
			Steps: []model.Step{
				{StepNumber: 1, Title: "Isolate", Content: "Isolate the supply."},
				{StepNumber: 2, Title: "Inspect", Content: "Inspect the board."},
				{StepNumber: 3, Title: "Test", Content: "Test the circuits."},
			},
		},
	}
)

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time { return c.now }

func newSession(t *testing.T, b *fakeBackend, n *recorder, clock *testClock) *workflow.Session {
	t.Helper()
	if clock == nil {
		clock = &testClock{now: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)}
	}
	s, err := workflow.NewSession(workflow.SessionConfig{
		Backend:   b,
		Notifier:  n,
		Templates: templates,
		TimeNow:   clock.Now,
	})
	require.NoError(t, err)
	return s
}

// toResults drives a session to the results state.
func toResults(t *testing.T, s *workflow.Session) {
	t.Helper()
	require := require.New(t)
	require.NoError(s.SetQuery(validQuery))
	require.NoError(s.SetEquipment(validEq))
	require.NoError(s.Submit(context.TODO()))
	s.HandleJobUpdate(completedJob)
	require.NoError(s.ViewResults())
	require.Equal(workflow.StateResults, s.State())
}

func TestNewSessionRequiresBackend(t *testing.T) {
	_, err := workflow.NewSession(workflow.SessionConfig{})
	assert.Error(t, err)
}

func TestSessionCanGenerate(t *testing.T) {
	tests := map[string]struct {
		query  string
		eq     model.EquipmentDetails
		expCan bool
	}{
		"49 characters should not be enough.": {
			query:  strings.Repeat("a", 49),
			eq:     validEq,
			expCan: false,
		},

		"50 characters should be enough.": {
			query:  strings.Repeat("a", 50),
			eq:     validEq,
			expCan: true,
		},

		"Surrounding spaces should not count.": {
			query:  "   " + strings.Repeat("a", 49) + "   ",
			eq:     validEq,
			expCan: false,
		},

		"A missing equipment type should not be enough.": {
			query:  validQuery,
			eq:     model.EquipmentDetails{Location: "Plant room"},
			expCan: false,
		},

		"A missing location should not be enough.": {
			query:  validQuery,
			eq:     model.EquipmentDetails{EquipmentType: "Board"},
			expCan: false,
		},

		"A whitespace-only equipment type is still non-empty.": {
			query:  strings.Repeat("a", 50),
			eq:     model.EquipmentDetails{EquipmentType: " ", Location: "Plant room"},
			expCan: true,
		},

		"A whitespace-only location is still non-empty.": {
			query:  strings.Repeat("a", 50),
			eq:     model.EquipmentDetails{EquipmentType: "Board", Location: "\t"},
			expCan: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			s := newSession(t, &fakeBackend{}, &recorder{}, nil)
			require.NoError(s.SetQuery(test.query))
			require.NoError(s.SetEquipment(test.eq))

			assert.Equal(test.expCan, s.CanGenerate())
		})
	}
}

func TestSessionSubmit(t *testing.T) {
	tests := map[string]struct {
		query     string
		eq        model.EquipmentDetails
		createErr error
		expState  workflow.State
		expJobID  string
		expNotify notification
		expErr    bool
	}{
		"A valid form should move to processing.": {
			query:     validQuery,
			eq:        validEq,
			expState:  workflow.StateProcessing,
			expJobID:  "job-1",
			expNotify: notification{Level: workflow.LevelInfo, Message: workflow.MsgGenerationStarted},
		},

		"A short query should notify and stay in input.": {
			query:     "too short",
			eq:        validEq,
			expState:  workflow.StateInput,
			expNotify: notification{Level: workflow.LevelError, Message: workflow.MsgQueryTooShort},
			expErr:    true,
		},

		"Missing equipment should notify and stay in input.": {
			query:     validQuery,
			expState:  workflow.StateInput,
			expNotify: notification{Level: workflow.LevelError, Message: workflow.MsgMissingEquipment},
			expErr:    true,
		},

		"Whitespace-only equipment fields should be submitted.": {
			query:     validQuery,
			eq:        model.EquipmentDetails{EquipmentType: " ", Location: " "},
			expState:  workflow.StateProcessing,
			expJobID:  "job-1",
			expNotify: notification{Level: workflow.LevelInfo, Message: workflow.MsgGenerationStarted},
		},

		"A remote error should notify and stay in input.": {
			query:     validQuery,
			eq:        validEq,
			createErr: errors.New("boom"),
			expState:  workflow.StateInput,
			expNotify: notification{Level: workflow.LevelError, Message: "Failed to start generation: boom"},
			expErr:    true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			n := &recorder{}
			s := newSession(t, &fakeBackend{createErr: test.createErr}, n, nil)
			require.NoError(s.SetQuery(test.query))
			require.NoError(s.SetEquipment(test.eq))

			err := s.Submit(context.TODO())
			if test.expErr {
				assert.Error(err)
			} else {
				assert.NoError(err)
			}
			assert.Equal(test.expState, s.State())
			assert.Equal(test.expJobID, s.JobID())
			assert.Equal(test.expNotify, n.last())
		})
	}
}

func TestSessionSubmitTrimsQuery(t *testing.T) {
	require := require.New(t)

	b := &fakeBackend{}
	s := newSession(t, b, &recorder{}, nil)
	require.NoError(s.SetQuery("  " + validQuery + "\n"))
	require.NoError(s.SetEquipment(validEq))
	require.NoError(s.Submit(context.TODO()))

	assert.Equal(t, []string{validQuery}, b.created)
}

func TestSessionSelectTemplate(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	s := newSession(t, &fakeBackend{}, &recorder{}, nil)
	require.NoError(s.SetEquipment(model.EquipmentDetails{
		EquipmentType:      "Old",
		LastInspectionDate: "2020-01-01",
		AdditionalNotes:    "keep me?",
	}))

	require.NoError(s.SelectTemplate("consumer-unit"))
	first := s.Equipment()
	require.NoError(s.SelectTemplate("consumer-unit"))

	exp := model.EquipmentDetails{
		EquipmentType:    "Consumer unit",
		Location:         "Hallway cupboard",
		InstallationType: "Domestic",
		AgeYears:         "12",
	}
	assert.Equal(exp, first)
	assert.Equal(first, s.Equipment())
	assert.Equal(templates[0].Query, s.Query())
	assert.True(s.CanGenerate())

	err := s.SelectTemplate("missing")
	assert.ErrorIs(err, model.ErrNotFound)
}

func TestSessionHandleJobUpdate(t *testing.T) {
	tests := map[string]struct {
		updates     []model.Job
		expState    workflow.State
		expJobID    string
		expProgress int
		expStep     string
		expNotify   notification
	}{
		"Progress updates should be recorded.": {
			updates: []model.Job{
				{ID: "job-1", Status: model.JobStatusProcessing, Progress: 40, CurrentStep: "Writing steps"},
			},
			expState:    workflow.StateProcessing,
			expJobID:    "job-1",
			expProgress: 40,
			expStep:     "Writing steps",
			expNotify:   notification{Level: workflow.LevelInfo, Message: workflow.MsgGenerationStarted},
		},

		"Updates of other jobs should be ignored.": {
			updates: []model.Job{
				{ID: "other", Status: model.JobStatusFailed, ErrorMessage: "x"},
			},
			expState:  workflow.StateProcessing,
			expJobID:  "job-1",
			expNotify: notification{Level: workflow.LevelInfo, Message: workflow.MsgGenerationStarted},
		},

		"A completed job should move to success.": {
			updates:     []model.Job{completedJob},
			expState:    workflow.StateSuccess,
			expJobID:    "job-1",
			expProgress: 100,
			expStep:     "Completed",
			expNotify:   notification{Level: workflow.LevelSuccess, Message: workflow.MsgGenerationReady},
		},

		"A failed job should clear the job and go back to input.": {
			updates: []model.Job{
				{ID: "job-1", Status: model.JobStatusProcessing, Progress: 40},
				{ID: "job-1", Status: model.JobStatusFailed, ErrorMessage: "generation timed out"},
			},
			expState:  workflow.StateInput,
			expNotify: notification{Level: workflow.LevelError, Message: "Generation failed: generation timed out"},
		},

		"A completed job without method should fail.": {
			updates: []model.Job{
				{ID: "job-1", Status: model.JobStatusCompleted, Progress: 100},
			},
			expState:  workflow.StateInput,
			expNotify: notification{Level: workflow.LevelError, Message: "Generation failed: job completed without a method"},
		},

		"Updates after completion should be ignored.": {
			updates: []model.Job{
				completedJob,
				{ID: "job-1", Status: model.JobStatusFailed, ErrorMessage: "late"},
			},
			expState:    workflow.StateSuccess,
			expJobID:    "job-1",
			expProgress: 100,
			expStep:     "Completed",
			expNotify:   notification{Level: workflow.LevelSuccess, Message: workflow.MsgGenerationReady},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			n := &recorder{}
			s := newSession(t, &fakeBackend{}, n, nil)
			require.NoError(s.SetQuery(validQuery))
			require.NoError(s.SetEquipment(validEq))
			require.NoError(s.Submit(context.TODO()))

			for _, u := range test.updates {
				s.HandleJobUpdate(u)
			}

			progress, step := s.Progress()
			assert.Equal(test.expState, s.State())
			assert.Equal(test.expJobID, s.JobID())
			assert.Equal(test.expProgress, progress)
			assert.Equal(test.expStep, step)
			assert.Equal(test.expNotify, n.last())
		})
	}
}

func TestSessionSummary(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	clock := &testClock{now: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)}
	s := newSession(t, &fakeBackend{}, &recorder{}, clock)

	_, err := s.Summary()
	assert.ErrorIs(err, model.ErrNotValid)

	require.NoError(s.SetQuery(validQuery))
	require.NoError(s.SetEquipment(validEq))
	require.NoError(s.Submit(context.TODO()))
	clock.now = clock.now.Add(95 * time.Second)
	s.HandleJobUpdate(completedJob)

	sum, err := s.Summary()
	require.NoError(err)
	assert.Equal(workflow.Summary{Title: "Board maintenance", StepCount: 3, Elapsed: 95 * time.Second}, sum)
}

func TestSessionCompletedStepsAreCopied(t *testing.T) {
	require := require.New(t)

	job := completedJob
	data := *completedJob.MethodData
	data.Steps = model.CloneSteps(completedJob.MethodData.Steps)
	job.MethodData = &data

	s := newSession(t, &fakeBackend{}, &recorder{}, nil)
	require.NoError(s.SetQuery(validQuery))
	require.NoError(s.SetEquipment(validEq))
	require.NoError(s.Submit(context.TODO()))
	s.HandleJobUpdate(job)
	require.NoError(s.ViewResults())
	require.NoError(s.DeleteStep(0))

	assert.Len(t, data.Steps, 3)
	assert.Equal(t, "Isolate", data.Steps[0].Title)
}

func TestSessionCancel(t *testing.T) {
	tests := map[string]struct {
		cancelErr error
		expNotify notification
	}{
		"Cancelling should go back to input.": {
			expNotify: notification{Level: workflow.LevelInfo, Message: workflow.MsgGenerationCancel},
		},

		"A remote cancel error should notify and still go back to input.": {
			cancelErr: errors.New("offline"),
			expNotify: notification{Level: workflow.LevelError, Message: "Failed to cancel job: offline"},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			b := &fakeBackend{cancelErr: test.cancelErr}
			n := &recorder{}
			s := newSession(t, b, n, nil)
			require.NoError(s.SetQuery(validQuery))
			require.NoError(s.SetEquipment(validEq))
			require.NoError(s.Submit(context.TODO()))

			require.NoError(s.Cancel(context.TODO()))

			assert.Equal(workflow.StateInput, s.State())
			assert.Empty(s.JobID())
			assert.Equal([]string{"job-1"}, b.cancelled)
			assert.Equal(test.expNotify, n.last())

			// A late update of the cancelled job is ignored.
			s.HandleJobUpdate(completedJob)
			assert.Equal(workflow.StateInput, s.State())

			// The form is kept so the user can submit again.
			assert.Equal(validQuery, s.Query())
			assert.True(s.CanGenerate())
		})
	}
}

func TestSessionInvalidTransitions(t *testing.T) {
	assert := assert.New(t)

	s := newSession(t, &fakeBackend{}, &recorder{}, nil)

	assert.ErrorIs(s.Cancel(context.TODO()), model.ErrNotValid)
	assert.ErrorIs(s.ViewResults(), model.ErrNotValid)
	assert.ErrorIs(s.Reset(), model.ErrNotValid)
	assert.ErrorIs(s.AddNewStep(), model.ErrNotValid)
	_, err := s.ExportPDF(context.TODO())
	assert.ErrorIs(err, model.ErrNotValid)

	toResults(t, s)
	assert.ErrorIs(s.SetQuery("x"), model.ErrNotValid)
	assert.ErrorIs(s.SelectTemplate("consumer-unit"), model.ErrNotValid)
	assert.ErrorIs(s.Submit(context.TODO()), model.ErrNotValid)
	assert.ErrorIs(s.Cancel(context.TODO()), model.ErrNotValid)
}

func TestSessionStepEditing(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	s := newSession(t, &fakeBackend{}, &recorder{}, nil)
	toResults(t, s)

	require.NoError(s.MoveStepDown(0))
	require.NoError(s.AddNewStep())
	require.NoError(s.DeleteStep(2))
	require.NoError(s.UpdateStep(0, model.Step{StepNumber: 42, Title: "Inspect board", Content: "Look."}))
	require.NoError(s.MoveStepUp(0))
	assert.ErrorIs(s.MoveStepUp(7), model.ErrNotValid)

	steps := s.Steps()
	var titles []string
	for i, st := range steps {
		assert.Equal(i+1, st.StepNumber)
		titles = append(titles, st.Title)
	}
	assert.Equal([]string{"Inspect board", "Isolate", "New Step"}, titles)

	sum, err := s.Summary()
	require.NoError(err)
	assert.Equal(3, sum.StepCount)
}

func TestSessionExportPDF(t *testing.T) {
	tests := map[string]struct {
		pdfErr    error
		expURL    string
		expNotify notification
		expErr    bool
	}{
		"Exporting should send the edited results.": {
			expURL:    "http://localhost/downloads/report.pdf",
			expNotify: notification{Level: workflow.LevelSuccess, Message: workflow.MsgPDFReady},
		},

		"An export error should be notified.": {
			pdfErr:    errors.New("renderer down"),
			expNotify: notification{Level: workflow.LevelError, Message: "Failed to generate PDF: renderer down"},
			expErr:    true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			b := &fakeBackend{pdfErr: test.pdfErr}
			n := &recorder{}
			s := newSession(t, b, n, nil)
			toResults(t, s)
			require.NoError(s.DeleteStep(1))

			url, err := s.ExportPDF(context.TODO())
			if test.expErr {
				assert.Error(err)
				assert.Equal(workflow.StateResults, s.State())
			} else if assert.NoError(err) {
				assert.Equal(test.expURL, url)
				require.Len(b.payloads, 1)
				p := b.payloads[0]
				assert.Equal("Maintenance Method - Distribution board", p.ReportTitle)
				assert.Equal(validEq, p.EquipmentDetails)
				assert.Equal("Annual maintenance.", p.Summary)
				assert.Equal([]string{"Record results."}, p.Recommendations)
				require.Len(p.Steps, 2)
				assert.Equal("Test", p.Steps[1].Title)
				assert.Equal(2, p.Steps[1].StepNumber)
			}
			assert.Equal(test.expNotify, n.last())
		})
	}
}

func TestSessionReset(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	s := newSession(t, &fakeBackend{}, &recorder{}, nil)
	toResults(t, s)

	require.NoError(s.Reset())

	progress, step := s.Progress()
	assert.Equal(workflow.StateInput, s.State())
	assert.Empty(s.Query())
	assert.Equal(model.EquipmentDetails{}, s.Equipment())
	assert.Empty(s.JobID())
	assert.Empty(s.Steps())
	assert.Zero(progress)
	assert.Empty(step)
	assert.False(s.CanGenerate())
	_, err := s.MethodData()
	assert.ErrorIs(err, model.ErrNotValid)
}
