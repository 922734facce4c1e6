package quiz

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-academy/internal/apperr"
	"github.com/mind-engage/mindengage-academy/internal/grading"
)

func validQuiz() Quiz {
	return Quiz{
		CourseID:     "c1",
		Title:        "Basics",
		PassingScore: 70,
		Attempts:     2,
		Questions: []Question{
			{ID: "q1", Type: grading.TypeSingleChoice, Points: 5, Options: []Option{{Text: "a", IsCorrect: true}, {Text: "b"}}},
			{ID: "q2", Type: grading.TypeMultipleChoice, Points: 5, Options: []Option{{Text: "a", IsCorrect: true}, {Text: "b", IsCorrect: true}, {Text: "c"}}},
			{ID: "q3", Type: grading.TypeFillBlank, Points: 2, Answer: "defer"},
		},
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validQuiz().Validate())

	broken := []func(q *Quiz){
		func(q *Quiz) { q.Title = " " },
		func(q *Quiz) { q.PassingScore = 101 },
		func(q *Quiz) { q.Attempts = 0 },
		func(q *Quiz) { q.Questions = nil },
		func(q *Quiz) { q.Questions[0].Type = "essay" },
		func(q *Quiz) { q.Questions[0].Options[1].IsCorrect = true },
		func(q *Quiz) { q.Questions[1].Options = q.Questions[1].Options[2:] },
		func(q *Quiz) { q.Questions[2].Answer = "" },
		func(q *Quiz) { q.Questions[2].Points = 0 },
		func(q *Quiz) { q.Questions[2].ID = "q1" },
	}
	for i, mutate := range broken {
		q := validQuiz()
		mutate(&q)
		err := q.Validate()
		require.ErrorIs(t, err, apperr.ErrValidation, "case %d", i)
	}
}

func TestStudentViewHidesAnswers(t *testing.T) {
	q := validQuiz()
	v := q.StudentView()
	for _, qu := range v.Questions {
		require.Empty(t, qu.Answer)
		for _, o := range qu.Options {
			require.False(t, o.IsCorrect)
		}
	}
	// original untouched
	require.True(t, q.Questions[0].Options[0].IsCorrect)
	require.Equal(t, "defer", q.Questions[2].Answer)
}

func TestSummarize(t *testing.T) {
	q := Quiz{Attempts: 3}
	h := Summarize(q, []Attempt{{Percentage: 40}, {Percentage: 80, Passed: true}})
	require.True(t, h.Passed)
	require.Equal(t, 80.0, h.BestPercentage)
	require.Equal(t, 1, h.Remaining)

	h = Summarize(Quiz{Attempts: 1}, []Attempt{{}, {}})
	require.Zero(t, h.Remaining)
	require.Zero(t, h.MaxScore)

	h = Summarize(validQuiz(), nil)
	require.Equal(t, 12.0, h.MaxScore)
	require.False(t, h.Passed)
}
