package exportpdf_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elecmate/mmgen/internal/app/exportpdf"
	"github.com/elecmate/mmgen/internal/model"
)

type rendererFunc func(ctx context.Context, html []byte) ([]byte, error)

func (f rendererFunc) RenderPDF(ctx context.Context, html []byte) ([]byte, error) {
	return f(ctx, html)
}

const fileID = "01HZZZZZZZZZZZZZZZZZZZZZZZ"

func TestService_Run(t *testing.T) {
	validPayload := model.ReportPayload{
		EquipmentDetails: model.EquipmentDetails{EquipmentType: "Emergency lighting", Location: "Office"},
		Steps:            []model.Step{{StepNumber: 1, Title: "Functional test", Content: "Simulate mains failure."}},
	}

	tests := map[string]struct {
		payload   model.ReportPayload
		renderer  rendererFunc
		publicURL string
		expURL    string
		expErr    error
	}{
		"A valid payload should be rendered and stored.": {
			payload: validPayload,
			renderer: func(_ context.Context, html []byte) ([]byte, error) {
				if !assert.Contains(t, string(html), "Maintenance Method - Emergency lighting") {
					return nil, fmt.Errorf("unexpected html")
				}
				return []byte("%PDF-1.4"), nil
			},
			publicURL: "https://mm.example.com/",
			expURL:    "https://mm.example.com/downloads/" + fileID + ".pdf",
		},

		"A payload without steps should fail.": {
			payload:   model.ReportPayload{},
			renderer:  func(context.Context, []byte) ([]byte, error) { return nil, nil },
			publicURL: "http://localhost:8080",
			expErr:    model.ErrNotValid,
		},

		"A renderer error should fail.": {
			payload:   validPayload,
			renderer:  func(context.Context, []byte) ([]byte, error) { return nil, fmt.Errorf("no chrome") },
			publicURL: "http://localhost:8080",
			expErr:    fmt.Errorf("no chrome"),
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			dir := t.TempDir()
			svc, err := exportpdf.NewService(exportpdf.ServiceConfig{
				Renderer:     test.renderer,
				DownloadsDir: filepath.Join(dir, "downloads"),
				PublicURL:    test.publicURL,
				IDGen:        func(time.Time) string { return fileID },
			})
			require.NoError(err)

			res, err := svc.Run(context.TODO(), test.payload)
			if test.expErr != nil {
				if assert.Error(err) && test.expErr == model.ErrNotValid {
					assert.ErrorIs(err, model.ErrNotValid)
				}
				return
			}
			require.NoError(err)
			assert.Equal(test.expURL, res.DownloadURL)

			data, err := os.ReadFile(filepath.Join(dir, "downloads", res.FileName))
			require.NoError(err)
			assert.Equal("%PDF-1.4", string(data))
		})
	}
}

func TestValidFileName(t *testing.T) {
	tests := map[string]struct {
		name string
		exp  bool
	}{
		"A generated name should be valid.":     {name: fileID + ".pdf", exp: true},
		"Path traversal should not be valid.":   {name: "../" + fileID + ".pdf"},
		"Other extensions should not be valid.": {name: fileID + ".html"},
		"Lowercase IDs should not be valid.":    {name: "01hzzzzzzzzzzzzzzzzzzzzzzz.pdf"},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.exp, exportpdf.ValidFileName(test.name))
		})
	}
}
