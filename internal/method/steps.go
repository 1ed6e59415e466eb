// Package method holds the pure transforms used to edit the step list of a
// generated maintenance method.
//
// Every function returns a new slice and never mutates its input. After
// every operation the step numbers are the contiguous 1..N sequence that
// matches the slice order.
package method

import (
	"fmt"

	"github.com/elecmate/mmgen/internal/model"
)

// Placeholder values used by AddNewStep.
const (
	NewStepTitle    = "New Step"
	NewStepContent  = "Describe this maintenance step."
	NewStepDuration = "15 mins"
)

// Renumber returns a copy of steps with step numbers set to their position (1 based).
func Renumber(steps []model.Step) []model.Step {
	out := model.CloneSteps(steps)
	for i := range out {
		out[i].StepNumber = i + 1
	}
	return out
}

// UpdateStep replaces the step at index. The step number is kept on its position.
func UpdateStep(steps []model.Step, index int, step model.Step) ([]model.Step, error) {
	if err := checkIndex(steps, index); err != nil {
		return nil, err
	}

	out := model.CloneSteps(steps)
	out[index] = step.Clone()
	return Renumber(out), nil
}

// DeleteStep removes the step at index and renumbers the trailing steps.
func DeleteStep(steps []model.Step, index int) ([]model.Step, error) {
	if err := checkIndex(steps, index); err != nil {
		return nil, err
	}

	out := make([]model.Step, 0, len(steps)-1)
	out = append(out, steps[:index]...)
	out = append(out, steps[index+1:]...)
	return Renumber(out), nil
}

// MoveStepUp swaps the step at index with the previous one.
// Moving the first step up is a no-op.
func MoveStepUp(steps []model.Step, index int) ([]model.Step, error) {
	if err := checkIndex(steps, index); err != nil {
		return nil, err
	}
	if index == 0 {
		return Renumber(steps), nil
	}
	return swap(steps, index, index-1), nil
}

// MoveStepDown swaps the step at index with the next one.
// Moving the last step down is a no-op.
func MoveStepDown(steps []model.Step, index int) ([]model.Step, error) {
	if err := checkIndex(steps, index); err != nil {
		return nil, err
	}
	if index == len(steps)-1 {
		return Renumber(steps), nil
	}
	return swap(steps, index, index+1), nil
}

// AddNewStep appends a placeholder step.
func AddNewStep(steps []model.Step) []model.Step {
	out := model.CloneSteps(steps)
	out = append(out, model.Step{
		Title:             NewStepTitle,
		Content:           NewStepContent,
		EstimatedDuration: NewStepDuration,
	})
	return Renumber(out)
}

func swap(steps []model.Step, i, j int) []model.Step {
	out := model.CloneSteps(steps)
	out[i], out[j] = out[j], out[i]
	return Renumber(out)
}

func checkIndex(steps []model.Step, index int) error {
	if index < 0 || index >= len(steps) {
		return fmt.Errorf("step index %d out of range [0, %d): %w", index, len(steps), model.ErrNotValid)
	}
	return nil
}
