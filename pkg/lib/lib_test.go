package lib_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elecmate/mmgen/pkg/lib"
)

const testQuery = "Annual maintenance of the main distribution board serving the plant room."

var testEquipment = lib.EquipmentDetails{
	EquipmentType: "Distribution board",
	Location:      "Plant room",
}

// newTestClient creates a client with a temp SQLite DB for test isolation.
func newTestClient(t *testing.T) *lib.Client {
	t.Helper()

	client, err := lib.New(context.Background(), lib.Config{
		DBPath:  filepath.Join(t.TempDir(), "test.db"),
		DataDir: t.TempDir(),
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = client.Close()
	})

	return client
}

func TestCreateJob(t *testing.T) {
	tests := map[string]struct {
		opts  lib.CreateJobOpts
		expIs error
	}{
		"Creating a job should store it pending.": {
			opts: lib.CreateJobOpts{Query: testQuery, Equipment: testEquipment},
		},

		"A short query should fail.": {
			opts:  lib.CreateJobOpts{Query: "too short", Equipment: testEquipment},
			expIs: lib.ErrNotValid,
		},

		"A missing location should fail.": {
			opts:  lib.CreateJobOpts{Query: testQuery, Equipment: lib.EquipmentDetails{EquipmentType: "Board"}},
			expIs: lib.ErrNotValid,
		},

		"An unknown detail level should fail.": {
			opts:  lib.CreateJobOpts{Query: testQuery, Equipment: testEquipment, DetailLevel: "verbose"},
			expIs: lib.ErrNotValid,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			client := newTestClient(t)

			job, err := client.CreateJob(context.Background(), test.opts)
			if test.expIs != nil {
				assert.True(errors.Is(err, test.expIs), "expected error %v, got: %v", test.expIs, err)
				return
			}

			if assert.NoError(err) {
				assert.NotEmpty(job.ID)
				assert.Equal(lib.JobStatusPending, job.Status)
				assert.Equal(lib.DetailLevelNormal, job.DetailLevel)
				assert.Nil(job.Method)
			}
		})
	}
}

func TestGenerate(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	client := newTestClient(t)
	ctx := context.Background()

	job, err := client.Generate(ctx, lib.CreateJobOpts{
		Query:       testQuery,
		Equipment:   testEquipment,
		DetailLevel: lib.DetailLevelDetailed,
	})
	require.NoError(err)

	assert.Equal(lib.JobStatusCompleted, job.Status)
	assert.Equal(100, job.Progress)
	require.NotNil(job.Method)
	assert.Equal("Distribution board maintenance - Distribution board", job.Method.Title)
	for i, s := range job.Method.Steps {
		assert.Equal(i+1, s.StepNumber)
	}
	require.NotNil(job.QualityMetrics)
	assert.Equal(len(job.Method.Steps), job.QualityMetrics.StepCount)
	assert.NotNil(job.CompletedAt)

	// Nothing else is pending.
	n, err := client.ProcessPending(ctx)
	require.NoError(err)
	assert.Zero(n)
}

func TestCancelJob(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	client := newTestClient(t)
	ctx := context.Background()

	job, err := client.CreateJob(ctx, lib.CreateJobOpts{Query: testQuery, Equipment: testEquipment})
	require.NoError(err)

	cancelled, err := client.CancelJob(ctx, job.ID)
	require.NoError(err)
	assert.Equal(lib.JobStatusFailed, cancelled.Status)
	assert.Equal("cancelled by user", cancelled.ErrorMessage)

	// Cancelled jobs are not processed.
	n, err := client.ProcessPending(ctx)
	require.NoError(err)
	assert.Zero(n)

	_, err = client.CancelJob(ctx, job.ID)
	assert.True(errors.Is(err, lib.ErrNotValid))

	_, err = client.CancelJob(ctx, "missing")
	assert.True(errors.Is(err, lib.ErrNotFound))
}

func TestListJobs(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	client := newTestClient(t)
	ctx := context.Background()

	first, err := client.Generate(ctx, lib.CreateJobOpts{Query: testQuery, Equipment: testEquipment})
	require.NoError(err)
	second, err := client.CreateJob(ctx, lib.CreateJobOpts{Query: testQuery, Equipment: testEquipment})
	require.NoError(err)

	all, err := client.ListJobs(ctx, nil)
	require.NoError(err)
	require.Len(all, 2)

	pending, err := client.ListJobs(ctx, &lib.ListJobsOpts{Status: lib.JobStatusPending})
	require.NoError(err)
	require.Len(pending, 1)
	assert.Equal(second.ID, pending[0].ID)

	completed, err := client.ListJobs(ctx, &lib.ListJobsOpts{Status: lib.JobStatusCompleted})
	require.NoError(err)
	require.Len(completed, 1)
	assert.Equal(first.ID, completed[0].ID)

	_, err = client.ListJobs(ctx, &lib.ListJobsOpts{Status: "unknown"})
	assert.True(errors.Is(err, lib.ErrNotValid))
}

func TestExportXLSX(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	client := newTestClient(t)
	ctx := context.Background()

	pending, err := client.CreateJob(ctx, lib.CreateJobOpts{Query: testQuery, Equipment: testEquipment})
	require.NoError(err)
	var buf bytes.Buffer
	err = client.ExportXLSX(ctx, pending.ID, "", &buf)
	assert.True(errors.Is(err, lib.ErrNotValid))

	_, err = client.ProcessPending(ctx)
	require.NoError(err)

	err = client.ExportXLSX(ctx, pending.ID, "", &buf)
	require.NoError(err)
	// XLSX files are zip archives.
	assert.True(bytes.HasPrefix(buf.Bytes(), []byte("PK")))
}

func TestTemplates(t *testing.T) {
	assert := assert.New(t)
	client := newTestClient(t)

	templates := client.Templates()
	if assert.NotEmpty(templates) {
		for _, tpl := range templates {
			assert.NotEmpty(tpl.ID)
			assert.NotEmpty(tpl.Equipment.EquipmentType)
			assert.Empty(tpl.Equipment.AdditionalNotes)
		}
	}
}

func TestInMemory(t *testing.T) {
	require := require.New(t)

	client, err := lib.New(context.Background(), lib.Config{InMemory: true, DataDir: t.TempDir()})
	require.NoError(err)
	defer client.Close()

	job, err := client.Generate(context.Background(), lib.CreateJobOpts{Query: testQuery, Equipment: testEquipment})
	require.NoError(err)
	require.Equal(lib.JobStatusCompleted, job.Status)
}
