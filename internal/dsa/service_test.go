package dsa_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-academy/internal/apperr"
	"github.com/mind-engage/mindengage-academy/internal/course"
	"github.com/mind-engage/mindengage-academy/internal/db/dbtest"
	"github.com/mind-engage/mindengage-academy/internal/dsa"
	"github.com/mind-engage/mindengage-academy/internal/enrollment"
	"github.com/mind-engage/mindengage-academy/internal/rbac"
	syncx "github.com/mind-engage/mindengage-academy/internal/sync"
)

var (
	alice = rbac.Caller{UserID: "alice", Role: rbac.RoleStudent}
	bob   = rbac.Caller{UserID: "bob", Role: rbac.RoleStudent}
)

type fixture struct {
	svc    *dsa.Service
	events *syncx.EventRepo
}

func setup(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	dbh := dbtest.Open(t)
	courses := course.NewSQLStore(dbh)
	events := syncx.NewEventRepo(dbh)

	require.NoError(t, courses.PutCourse(ctx, course.Course{ID: "c1", Title: "DSA", IsPublished: true}))
	require.NoError(t, courses.PutLesson(ctx, course.Lesson{
		ID: "sheet", CourseID: "c1", Title: "Arrays", Type: course.LessonText, IsPublished: true,
		DsaSheet: &course.DsaSheet{Categories: []course.Category{{
			Name:     "Arrays",
			Problems: []course.Problem{{ID: "p1"}, {ID: "p2"}, {ID: "p3"}, {ID: "p4"}},
		}}},
	}))
	require.NoError(t, courses.PutLesson(ctx, course.Lesson{
		ID: "plain", CourseID: "c1", Title: "Intro", Type: course.LessonVideo, IsPublished: true,
	}))

	enroll := enrollment.NewService(enrollment.NewSQLStore(dbh), courses, events)
	_, err := enroll.Enroll(ctx, alice, "c1", "")
	require.NoError(t, err)

	return fixture{
		svc:    dsa.NewService(dsa.NewSQLStore(dbh), courses, enroll, events),
		events: events,
	}
}

func TestServiceTogglePersists(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	p, err := f.svc.Get(ctx, alice, "sheet")
	require.NoError(t, err)
	require.Equal(t, 4, p.TotalProblems)
	require.Empty(t, p.Completed)

	for _, id := range []string{"p1", "p2"} {
		p, err = f.svc.Toggle(ctx, alice, dsa.ToggleInput{LessonID: "sheet", ProblemID: id, Completed: true})
		require.NoError(t, err)
	}
	require.Equal(t, 50.0, p.CompletionPercentage)

	p, err = f.svc.Toggle(ctx, alice, dsa.ToggleInput{LessonID: "sheet", ProblemID: "p1"})
	require.NoError(t, err)
	require.Equal(t, 25.0, p.CompletionPercentage)

	got, err := f.svc.Get(ctx, alice, "sheet")
	require.NoError(t, err)
	require.Equal(t, 25.0, got.CompletionPercentage)
	require.Equal(t, p.ID, got.ID)
	require.Len(t, got.Completed, 1)

	events, err := f.events.Since(ctx, 0, 50)
	require.NoError(t, err)
	n := 0
	for _, e := range events {
		if e.Type == syncx.DsaProblemToggled {
			n++
		}
	}
	require.Equal(t, 3, n)
}

func TestServiceRejections(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	_, err := f.svc.Toggle(ctx, bob, dsa.ToggleInput{LessonID: "sheet", ProblemID: "p1", Completed: true})
	require.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = f.svc.Get(ctx, alice, "plain")
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.svc.Get(ctx, alice, "missing")
	require.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.svc.Toggle(ctx, alice, dsa.ToggleInput{LessonID: "sheet", ProblemID: "p9", Completed: true})
	require.ErrorIs(t, err, apperr.ErrValidation)
}
