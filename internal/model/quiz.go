package model

import (
	"fmt"
	"strings"
)

// QuizQuestion is a multiple choice question of the study centre.
type QuizQuestion struct {
	ID            string
	Question      string
	Options       []string
	CorrectAnswer int
	Explanation   string
}

// Validate validates the question.
func (q QuizQuestion) Validate() error {
	if strings.TrimSpace(q.Question) == "" {
		return fmt.Errorf("question text is required: %w", ErrNotValid)
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("question %q needs at least 2 options: %w", q.ID, ErrNotValid)
	}
	if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
		return fmt.Errorf("question %q correct answer %d out of range: %w", q.ID, q.CorrectAnswer, ErrNotValid)
	}
	return nil
}

// Quiz is a declarative list of questions.
type Quiz struct {
	ID        string
	Title     string
	Topic     string
	Questions []QuizQuestion
}

// Validate validates the quiz and its questions.
func (q Quiz) Validate() error {
	if q.ID == "" {
		return fmt.Errorf("quiz id is required: %w", ErrNotValid)
	}
	if len(q.Questions) == 0 {
		return fmt.Errorf("quiz %q has no questions: %w", q.ID, ErrNotValid)
	}
	for i, question := range q.Questions {
		if err := question.Validate(); err != nil {
			return fmt.Errorf("quiz %q question %d: %w", q.ID, i+1, err)
		}
	}
	return nil
}

// InlineCheck is a single question shown inline in a lesson.
type InlineCheck struct {
	ID       string
	Topic    string
	Question QuizQuestion
}
