package quiz_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-academy/internal/apperr"
	"github.com/mind-engage/mindengage-academy/internal/course"
	"github.com/mind-engage/mindengage-academy/internal/db/dbtest"
	"github.com/mind-engage/mindengage-academy/internal/grading"
	"github.com/mind-engage/mindengage-academy/internal/quiz"
	"github.com/mind-engage/mindengage-academy/internal/rbac"
	syncx "github.com/mind-engage/mindengage-academy/internal/sync"
)

var (
	teacher = rbac.Caller{UserID: "t1", Role: rbac.RoleTeacher}
	alice   = rbac.Caller{UserID: "alice", Role: rbac.RoleStudent}
	mallory = rbac.Caller{UserID: "mallory", Role: rbac.RoleStudent}
)

// enrolledOnly admits staff and the listed users.
type enrolledOnly map[string]bool

func (e enrolledOnly) CheckAccess(_ context.Context, c rbac.Caller, _ string) error {
	if c.IsStaff() || e[c.UserID] {
		return nil
	}
	return apperr.Forbidden("not enrolled in this course")
}

type fixture struct {
	svc    *quiz.Service
	store  *quiz.SQLStore
	events *syncx.EventRepo
}

func setup(t *testing.T) fixture {
	t.Helper()
	dbh := dbtest.Open(t)
	courses := course.NewSQLStore(dbh)
	require.NoError(t, courses.PutCourse(context.Background(), course.Course{ID: "c1", Title: "Go", IsPublished: true}))
	store := quiz.NewSQLStore(dbh)
	events := syncx.NewEventRepo(dbh)
	svc := quiz.NewService(store, courses, enrolledOnly{"alice": true}, grading.NewDefaultGrader(), events)
	return fixture{svc: svc, store: store, events: events}
}

func twoQuestionQuiz() quiz.Quiz {
	opts := func() []quiz.Option {
		return []quiz.Option{{Text: "yes", IsCorrect: true}, {Text: "no"}}
	}
	return quiz.Quiz{
		ID:           "quiz1",
		CourseID:     "c1",
		Title:        "Channels",
		PassingScore: 70,
		Attempts:     2,
		Questions: []quiz.Question{
			{ID: "q1", Type: grading.TypeSingleChoice, Text: "Buffered?", Points: 5, Options: opts()},
			{ID: "q2", Type: grading.TypeSingleChoice, Text: "Closed?", Points: 5, Options: opts()},
		},
	}
}

func TestCreateRequiresStaffAndValidQuiz(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	_, err := f.svc.Create(ctx, alice, twoQuestionQuiz())
	require.ErrorIs(t, err, apperr.ErrForbidden)

	bad := twoQuestionQuiz()
	bad.Attempts = 0
	_, err = f.svc.Create(ctx, teacher, bad)
	require.ErrorIs(t, err, apperr.ErrValidation)

	orphan := twoQuestionQuiz()
	orphan.CourseID = "nope"
	_, err = f.svc.Create(ctx, teacher, orphan)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	noIDs := twoQuestionQuiz()
	noIDs.Questions[0].ID, noIDs.Questions[1].ID = "", ""
	q, err := f.svc.Create(ctx, teacher, noIDs)
	require.NoError(t, err)
	require.Equal(t, "quiz1-q1", q.Questions[0].ID)
	require.Equal(t, "quiz1-q2", q.Questions[1].ID)
}

func TestGetHidesAnswersFromStudents(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	_, err := f.svc.Create(ctx, teacher, twoQuestionQuiz())
	require.NoError(t, err)

	q, err := f.svc.Get(ctx, alice, "quiz1")
	require.NoError(t, err)
	require.False(t, q.Questions[0].Options[0].IsCorrect)

	q, err = f.svc.Get(ctx, teacher, "quiz1")
	require.NoError(t, err)
	require.True(t, q.Questions[0].Options[0].IsCorrect)

	_, err = f.svc.Get(ctx, mallory, "quiz1")
	require.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = f.svc.Get(ctx, alice, "missing")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestSubmitHalfCorrect(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	_, err := f.svc.Create(ctx, teacher, twoQuestionQuiz())
	require.NoError(t, err)

	started := time.Now().Add(-time.Minute).Unix()
	rev, err := f.svc.Submit(ctx, alice, "quiz1", quiz.SubmitInput{
		Answers: []quiz.Answer{
			{QuestionID: "q1", Selected: []int{0}},
			{QuestionID: "q2", Selected: []int{1}},
		},
		TimeSpentSec: 42,
		StartedAt:    started,
	})
	require.NoError(t, err)

	a := rev.Attempt
	require.Equal(t, 5.0, a.Score)
	require.Equal(t, 10.0, a.MaxScore)
	require.Equal(t, 50.0, a.Percentage)
	require.False(t, a.Passed)
	require.Equal(t, 1, a.AttemptNumber)
	require.Equal(t, 42, a.TimeSpentSec)
	require.Equal(t, started, a.StartedAt)

	require.Len(t, rev.Questions, 2)
	require.True(t, rev.Questions[0].Correct)
	require.False(t, rev.Questions[1].Correct)
	require.Equal(t, []int{0}, rev.Questions[1].CorrectOptions)
	require.Equal(t, []int{1}, rev.Questions[1].Answer.Selected)

	events, err := f.events.Since(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, syncx.QuizAttemptSubmitted, events[0].Type)
}

func TestSubmitEmptyAndPerfect(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	q := twoQuestionQuiz()
	q.Attempts = 5
	_, err := f.svc.Create(ctx, teacher, q)
	require.NoError(t, err)

	rev, err := f.svc.Submit(ctx, alice, "quiz1", quiz.SubmitInput{})
	require.NoError(t, err)
	require.Zero(t, rev.Attempt.Score)
	require.False(t, rev.Attempt.Passed)
	require.Nil(t, rev.Questions[0].Answer)

	rev, err = f.svc.Submit(ctx, alice, "quiz1", quiz.SubmitInput{Answers: []quiz.Answer{
		{QuestionID: "q1", Selected: []int{0}},
		{QuestionID: "q2", Selected: []int{0}},
	}})
	require.NoError(t, err)
	require.Equal(t, 100.0, rev.Attempt.Percentage)
	require.True(t, rev.Attempt.Passed)
	require.Equal(t, 2, rev.Attempt.AttemptNumber)
}

func TestSubmitAttemptLimit(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	_, err := f.svc.Create(ctx, teacher, twoQuestionQuiz())
	require.NoError(t, err)

	for i := 1; i <= 2; i++ {
		rev, err := f.svc.Submit(ctx, alice, "quiz1", quiz.SubmitInput{})
		require.NoError(t, err)
		require.Equal(t, i, rev.Attempt.AttemptNumber)
	}

	_, err = f.svc.Submit(ctx, alice, "quiz1", quiz.SubmitInput{})
	require.ErrorIs(t, err, apperr.ErrAttemptLimitExceeded)

	n, err := f.store.CountAttempts(ctx, "alice", "quiz1")
	require.NoError(t, err)
	require.Equal(t, 2, n)

	h, err := f.svc.Attempts(ctx, alice, "quiz1")
	require.NoError(t, err)
	require.Len(t, h.Attempts, 2)
	require.Zero(t, h.Remaining)
	require.Equal(t, []int{1, 2}, []int{h.Attempts[0].AttemptNumber, h.Attempts[1].AttemptNumber})
}

func TestSubmitRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	_, err := f.svc.Create(ctx, teacher, twoQuestionQuiz())
	require.NoError(t, err)

	_, err = f.svc.Submit(ctx, mallory, "quiz1", quiz.SubmitInput{})
	require.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = f.svc.Submit(ctx, alice, "quiz1", quiz.SubmitInput{Answers: []quiz.Answer{{QuestionID: "q9"}}})
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.svc.Submit(ctx, alice, "quiz1", quiz.SubmitInput{Answers: []quiz.Answer{
		{QuestionID: "q1", Selected: []int{0}}, {QuestionID: "q1", Selected: []int{1}},
	}})
	require.ErrorIs(t, err, apperr.ErrValidation)

	// rejected submissions consume no attempts
	n, err := f.store.CountAttempts(ctx, "alice", "quiz1")
	require.NoError(t, err)
	require.Zero(t, n)
}
