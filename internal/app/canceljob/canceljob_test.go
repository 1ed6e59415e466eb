package canceljob_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/elecmate/mmgen/internal/app/canceljob"
	"github.com/elecmate/mmgen/internal/model"
	"github.com/elecmate/mmgen/internal/storage/storagemock"
)

func TestService_Run(t *testing.T) {
	tests := map[string]struct {
		mock   func(m *storagemock.MockJobRepository)
		expJob *model.Job
		expErr error
	}{
		"A processing job should be marked as cancelled.": {
			mock: func(m *storagemock.MockJobRepository) {
				m.On("GetJob", mock.Anything, "j1").Once().Return(&model.Job{ID: "j1", Status: model.JobStatusProcessing}, nil)
				m.On("FailJob", mock.Anything, "j1", model.CancelledMessage).Once().Return(nil)
				m.On("GetJob", mock.Anything, "j1").Once().Return(&model.Job{ID: "j1", Status: model.JobStatusFailed, ErrorMessage: model.CancelledMessage}, nil)
			},
			expJob: &model.Job{ID: "j1", Status: model.JobStatusFailed, ErrorMessage: model.CancelledMessage},
		},

		"A completed job should not be cancelled.": {
			mock: func(m *storagemock.MockJobRepository) {
				m.On("GetJob", mock.Anything, "j1").Once().Return(&model.Job{ID: "j1", Status: model.JobStatusCompleted}, nil)
			},
			expErr: model.ErrNotValid,
		},

		"A job finishing while cancelling should not be cancelled.": {
			mock: func(m *storagemock.MockJobRepository) {
				m.On("GetJob", mock.Anything, "j1").Once().Return(&model.Job{ID: "j1", Status: model.JobStatusPending}, nil)
				m.On("FailJob", mock.Anything, "j1", model.CancelledMessage).Once().Return(fmt.Errorf("x: %w", model.ErrNotActive))
			},
			expErr: model.ErrNotValid,
		},

		"A missing job should return not found.": {
			mock: func(m *storagemock.MockJobRepository) {
				m.On("GetJob", mock.Anything, "j1").Once().Return(nil, fmt.Errorf("x: %w", model.ErrNotFound))
			},
			expErr: model.ErrNotFound,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			m := storagemock.NewMockJobRepository(t)
			test.mock(m)

			svc, err := canceljob.NewService(canceljob.ServiceConfig{Repository: m})
			require.NoError(err)

			job, err := svc.Run(context.TODO(), canceljob.Request{ID: "j1"})
			if test.expErr != nil {
				assert.ErrorIs(err, test.expErr)
			} else if assert.NoError(err) {
				assert.Equal(test.expJob, job)
			}
		})
	}
}
