// Package quiz runs study centre quizzes in memory.
package quiz

import (
	"fmt"

	"github.com/elecmate/mmgen/internal/model"
)

// Answer is a recorded answer of a question.
type Answer struct {
	Option  int
	Correct bool
}

// Session holds the answers given to a quiz. Nothing is persisted.
type Session struct {
	quiz    model.Quiz
	answers map[int]Answer
}

// NewSession returns a new session for the quiz.
func NewSession(q model.Quiz) (*Session, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("invalid quiz: %w", err)
	}
	return &Session{quiz: q, answers: map[int]Answer{}}, nil
}

// Quiz returns the quiz of the session.
func (s *Session) Quiz() model.Quiz { return s.quiz }

// Answer records the option chosen for the question at index and returns if it was correct.
// Answering the same question again replaces the previous answer.
func (s *Session) Answer(question, option int) (bool, error) {
	if question < 0 || question >= len(s.quiz.Questions) {
		return false, fmt.Errorf("question %d out of range: %w", question, model.ErrNotValid)
	}
	q := s.quiz.Questions[question]
	if option < 0 || option >= len(q.Options) {
		return false, fmt.Errorf("option %d out of range: %w", option, model.ErrNotValid)
	}

	correct := option == q.CorrectAnswer
	s.answers[question] = Answer{Option: option, Correct: correct}
	return correct, nil
}

// Answered returns the answer given to a question, if any.
func (s *Session) Answered(question int) (Answer, bool) {
	a, ok := s.answers[question]
	return a, ok
}

// Score returns the correct answers and the total of questions.
func (s *Session) Score() (correct, total int) {
	for _, a := range s.answers {
		if a.Correct {
			correct++
		}
	}
	return correct, len(s.quiz.Questions)
}

// Completed returns true when every question has an answer.
func (s *Session) Completed() bool {
	return len(s.answers) == len(s.quiz.Questions)
}

// Reset clears all the answers.
func (s *Session) Reset() {
	s.answers = map[int]Answer{}
}

// Check answers an inline check.
func Check(c model.InlineCheck, option int) (correct bool, explanation string, err error) {
	if option < 0 || option >= len(c.Question.Options) {
		return false, "", fmt.Errorf("option %d out of range: %w", option, model.ErrNotValid)
	}
	return option == c.Question.CorrectAnswer, c.Question.Explanation, nil
}

// Find returns the quiz with the ID.
func Find(quizzes []model.Quiz, id string) (model.Quiz, error) {
	for _, q := range quizzes {
		if q.ID == id {
			return q, nil
		}
	}
	return model.Quiz{}, fmt.Errorf("quiz %q: %w", id, model.ErrNotFound)
}
