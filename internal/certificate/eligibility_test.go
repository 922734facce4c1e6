package certificate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEvaluateLessonThreshold(t *testing.T) {
	r := Evaluate(Input{CompletedLessons: 3, TotalLessons: 4, RequiredPct: 100})
	require.Equal(t, 75.0, r.Lessons.Percentage)
	require.False(t, r.Lessons.Met)
	require.False(t, r.CertificateEligible)

	r = Evaluate(Input{CompletedLessons: 3, TotalLessons: 4, RequiredPct: 75})
	require.True(t, r.Lessons.Met)
	require.True(t, r.CertificateEligible)
	require.Zero(t, r.Quizzes.Total)
	require.NotNil(t, r.Quizzes.Requirements)
}

func TestEvaluateNoLessons(t *testing.T) {
	r := Evaluate(Input{RequiredPct: 100})
	require.Zero(t, r.Lessons.Percentage)
	require.False(t, r.CertificateEligible)
}

func TestEvaluateRequiredQuizzes(t *testing.T) {
	in := Input{
		CompletedLessons: 2, TotalLessons: 2, RequiredPct: 100,
		Quizzes: []QuizStatus{
			{QuizID: "a", Passed: true, BestPercentage: 90, AttemptsUsed: 1, AttemptsAllowed: 3},
			{QuizID: "b", BestPercentage: 40, AttemptsUsed: 1, AttemptsAllowed: 3},
		},
	}
	r := Evaluate(in)
	require.True(t, r.Lessons.Met)
	require.Equal(t, 1, r.Quizzes.Passed)
	require.Equal(t, 2, r.Quizzes.Total)
	require.False(t, r.CertificateEligible)
	require.False(t, r.Quizzes.Requirements[1].Exhausted)

	in.Quizzes[1].AttemptsUsed = 3
	r = Evaluate(in)
	require.True(t, r.Quizzes.Requirements[1].Exhausted)
	require.False(t, r.Quizzes.Requirements[0].Exhausted)

	in.Quizzes[1].Passed = true
	r = Evaluate(in)
	require.True(t, r.CertificateEligible)
	require.False(t, r.Quizzes.Requirements[1].Exhausted)
}
