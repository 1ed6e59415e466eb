package quiz_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elecmate/mmgen/internal/model"
	"github.com/elecmate/mmgen/internal/quiz"
)

func testQuiz() model.Quiz {
	return model.Quiz{
		ID:    "safe-isolation",
		Title: "Safe isolation",
		Questions: []model.QuizQuestion{
			{ID: "1", Question: "q1", Options: []string{"a", "b"}, CorrectAnswer: 1},
			{ID: "2", Question: "q2", Options: []string{"a", "b", "c"}, CorrectAnswer: 0},
		},
	}
}

func TestSession(t *testing.T) {
	type answer struct {
		question int
		option   int
	}

	tests := map[string]struct {
		answers      []answer
		expCorrect   int
		expCompleted bool
		expErr       bool
	}{
		"No answers should score zero and not be completed.": {
			expCorrect:   0,
			expCompleted: false,
		},

		"Answering every question right should score the total.": {
			answers:      []answer{{0, 1}, {1, 0}},
			expCorrect:   2,
			expCompleted: true,
		},

		"A wrong answer should not score.": {
			answers:      []answer{{0, 0}, {1, 0}},
			expCorrect:   1,
			expCompleted: true,
		},

		"Answering again should replace the previous answer.": {
			answers:      []answer{{0, 0}, {0, 1}},
			expCorrect:   1,
			expCompleted: false,
		},

		"A question out of range should fail.": {
			answers: []answer{{2, 0}},
			expErr:  true,
		},

		"An option out of range should fail.": {
			answers: []answer{{1, 3}},
			expErr:  true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			s, err := quiz.NewSession(testQuiz())
			require.NoError(err)

			var gotErr error
			for _, a := range test.answers {
				if _, err := s.Answer(a.question, a.option); err != nil {
					gotErr = err
				}
			}

			if test.expErr {
				assert.ErrorIs(gotErr, model.ErrNotValid)
				return
			}
			require.NoError(gotErr)

			correct, total := s.Score()
			assert.Equal(test.expCorrect, correct)
			assert.Equal(2, total)
			assert.Equal(test.expCompleted, s.Completed())
		})
	}
}

func TestSessionReset(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	s, err := quiz.NewSession(testQuiz())
	require.NoError(err)

	correct, err := s.Answer(0, 1)
	require.NoError(err)
	assert.True(correct)

	s.Reset()

	_, ok := s.Answered(0)
	assert.False(ok)
	c, _ := s.Score()
	assert.Equal(0, c)
	assert.False(s.Completed())
}

func TestNewSessionInvalidQuiz(t *testing.T) {
	_, err := quiz.NewSession(model.Quiz{ID: "empty"})
	assert.ErrorIs(t, err, model.ErrNotValid)
}

func TestCheck(t *testing.T) {
	assert := assert.New(t)

	c := model.InlineCheck{
		ID: "rcd",
		Question: model.QuizQuestion{
			Question:      "Trip time?",
			Options:       []string{"40 ms", "300 ms"},
			CorrectAnswer: 1,
			Explanation:   "300 ms at rated residual current.",
		},
	}

	ok, exp, err := quiz.Check(c, 1)
	assert.NoError(err)
	assert.True(ok)
	assert.Equal("300 ms at rated residual current.", exp)

	ok, _, err = quiz.Check(c, 0)
	assert.NoError(err)
	assert.False(ok)

	_, _, err = quiz.Check(c, 5)
	assert.ErrorIs(err, model.ErrNotValid)
}

func TestFind(t *testing.T) {
	q, err := quiz.Find([]model.Quiz{testQuiz()}, "safe-isolation")
	assert.NoError(t, err)
	assert.Equal(t, "Safe isolation", q.Title)

	_, err = quiz.Find([]model.Quiz{testQuiz()}, "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)
}
