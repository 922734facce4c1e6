package course_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-academy/internal/apperr"
	"github.com/mind-engage/mindengage-academy/internal/course"
	"github.com/mind-engage/mindengage-academy/internal/db/dbtest"
	"github.com/mind-engage/mindengage-academy/internal/rbac"
)

var (
	teacher = rbac.Caller{UserID: "t1", Role: rbac.RoleTeacher}
	student = rbac.Caller{UserID: "s1", Role: rbac.RoleStudent}
)

func sheet() *course.DsaSheet {
	return &course.DsaSheet{Categories: []course.Category{
		{Name: "Arrays", Problems: []course.Problem{{ID: "p1", Title: "Two Sum"}, {ID: "p2", Title: "3Sum"}}},
		{Name: "Graphs", Problems: []course.Problem{{ID: "p3", Title: "BFS"}}},
	}}
}

func TestDsaSheetHelpers(t *testing.T) {
	s := sheet()
	require.Equal(t, 3, s.TotalProblems())

	ci, pi, ok := s.Locate("p3")
	require.True(t, ok)
	require.Equal(t, 1, ci)
	require.Equal(t, 0, pi)

	_, _, ok = s.Locate("nope")
	require.False(t, ok)

	var empty *course.DsaSheet
	require.Equal(t, 0, empty.TotalProblems())
	require.Nil(t, empty.Trimmed())
}

func TestLessonValidate(t *testing.T) {
	l := course.Lesson{CourseID: "c1", Title: "Intro", Type: "podcast"}
	err := l.Validate()
	require.ErrorIs(t, err, apperr.ErrValidation)

	dup := course.Lesson{CourseID: "c1", Title: "Sheet", Type: course.LessonText, DsaSheet: &course.DsaSheet{
		Categories: []course.Category{{Problems: []course.Problem{{ID: "a"}, {ID: "a"}}}},
	}}
	require.ErrorIs(t, dup.Validate(), apperr.ErrValidation)

	ok := course.Lesson{CourseID: "c1", Title: "Sheet", Type: course.LessonText, DsaSheet: sheet()}
	require.NoError(t, ok.Validate())
}

func TestServiceRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := course.NewService(course.NewSQLStore(dbtest.Open(t)))

	_, err := svc.CreateCourse(ctx, student, course.Course{Title: "Go"})
	require.ErrorIs(t, err, apperr.ErrForbidden)

	c, err := svc.CreateCourse(ctx, teacher, course.Course{Title: " Go ", Price: decimal.RequireFromString("49.99")})
	require.NoError(t, err)
	require.Equal(t, "Go", c.Title)
	require.True(t, c.Price.Equal(decimal.RequireFromString("49.99")))
	require.Equal(t, "t1", c.CreatedBy)

	_, err = svc.AddLesson(ctx, teacher, course.Lesson{CourseID: c.ID, Title: "Draft", Type: course.LessonText, Order: 2})
	require.NoError(t, err)
	l, err := svc.AddLesson(ctx, teacher, course.Lesson{CourseID: c.ID, Title: "Sheet", Type: course.LessonText, Order: 1, IsPublished: true, DsaSheet: sheet()})
	require.NoError(t, err)
	require.Equal(t, 3, l.DsaSheet.TotalProblems())

	all, err := svc.Lessons(ctx, teacher, c.ID)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "Sheet", all[0].Title)

	// unpublished course is invisible to students
	_, err = svc.Lessons(ctx, student, c.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	c.IsPublished = true
	_, err = svc.CreateCourse(ctx, teacher, c)
	require.NoError(t, err)
	pub, err := svc.Lessons(ctx, student, c.ID)
	require.NoError(t, err)
	require.Len(t, pub, 1)

	padded := &course.DsaSheet{Categories: []course.Category{{Name: "Arrays", Problems: []course.Problem{{ID: " p1 "}, {ID: "p2\t"}}}}}
	pl, err := svc.AddLesson(ctx, teacher, course.Lesson{CourseID: c.ID, Title: "Padded", Type: course.LessonText, DsaSheet: padded})
	require.NoError(t, err)
	stored, err := svc.Lessons(ctx, teacher, c.ID)
	require.NoError(t, err)
	var got *course.DsaSheet
	for _, x := range stored {
		if x.ID == pl.ID {
			got = x.DsaSheet
		}
	}
	require.NotNil(t, got)
	_, _, ok := got.Locate("p1")
	require.True(t, ok)
	_, _, ok = got.Locate("p2")
	require.True(t, ok)
	require.Equal(t, " p1 ", padded.Categories[0].Problems[0].ID)

	_, err = svc.AddLesson(ctx, teacher, course.Lesson{CourseID: c.ID, Title: "Dup", Type: course.LessonText, DsaSheet: &course.DsaSheet{
		Categories: []course.Category{{Problems: []course.Problem{{ID: "a"}, {ID: " a"}}}},
	}})
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.AddLesson(ctx, teacher, course.Lesson{CourseID: "missing", Title: "x", Type: course.LessonVideo})
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCoursesCatalog(t *testing.T) {
	ctx := context.Background()
	svc := course.NewService(course.NewSQLStore(dbtest.Open(t)))

	_, err := svc.CreateCourse(ctx, teacher, course.Course{ID: "go", Title: "Go Concurrency", IsPublished: true})
	require.NoError(t, err)
	_, err = svc.CreateCourse(ctx, teacher, course.Course{ID: "rust", Title: "Rust Basics"})
	require.NoError(t, err)

	all, err := svc.Courses(ctx, teacher, course.ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)

	pub, err := svc.Courses(ctx, student, course.ListFilter{})
	require.NoError(t, err)
	require.Len(t, pub, 1)
	require.Equal(t, "go", pub[0].ID)

	found, err := svc.Courses(ctx, teacher, course.ListFilter{Query: " CONCUR "})
	require.NoError(t, err)
	require.Len(t, found, 1)

	page, err := svc.Courses(ctx, teacher, course.ListFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
}
