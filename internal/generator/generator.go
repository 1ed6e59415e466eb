// Package generator defines how maintenance methods are generated from a job input.
package generator

import (
	"context"

	"github.com/elecmate/mmgen/internal/model"
)

// Request is the input of a generation.
type Request struct {
	Query            string
	EquipmentDetails model.EquipmentDetails
	DetailLevel      model.DetailLevel
}

// RequestFromJob returns the generation request of a job.
func RequestFromJob(j model.Job) Request {
	return Request{
		Query:            j.Query,
		EquipmentDetails: j.EquipmentDetails,
		DetailLevel:      j.DetailLevel,
	}
}

// ProgressFunc reports the generation progress (0-100) and the step being executed.
// When it returns an error the generator must stop and return it.
type ProgressFunc func(ctx context.Context, progress int, currentStep string) error

// Generator generates maintenance methods.
type Generator interface {
	Generate(ctx context.Context, req Request, progress ProgressFunc) (*model.MethodData, error)
}

// NoopProgress ignores progress reports.
func NoopProgress(context.Context, int, string) error { return nil }
