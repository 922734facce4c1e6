package course

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/mind-engage/mindengage-academy/internal/apperr"
	"github.com/mind-engage/mindengage-academy/internal/rbac"
)

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) CreateCourse(ctx context.Context, caller rbac.Caller, c Course) (Course, error) {
	if !caller.IsStaff() {
		return Course{}, apperr.Forbidden("only teachers can create courses")
	}
	c.Title = strings.TrimSpace(c.Title)
	if err := c.Validate(); err != nil {
		return Course{}, err
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedBy = caller.UserID
	if err := s.store.PutCourse(ctx, c); err != nil {
		return Course{}, err
	}
	return s.store.GetCourse(ctx, c.ID)
}

func (s *Service) AddLesson(ctx context.Context, caller rbac.Caller, l Lesson) (Lesson, error) {
	if !caller.IsStaff() {
		return Lesson{}, apperr.Forbidden("only teachers can add lessons")
	}
	l.DsaSheet = l.DsaSheet.Trimmed()
	if err := l.Validate(); err != nil {
		return Lesson{}, err
	}
	if _, err := s.store.GetCourse(ctx, l.CourseID); err != nil {
		return Lesson{}, err
	}
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if err := s.store.PutLesson(ctx, l); err != nil {
		return Lesson{}, err
	}
	return s.store.GetLesson(ctx, l.ID)
}

// Lessons lists a course's lessons; students only see published lessons of
// published courses.
func (s *Service) Lessons(ctx context.Context, caller rbac.Caller, courseID string) ([]Lesson, error) {
	c, err := s.store.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if caller.IsStaff() {
		return s.store.ListLessons(ctx, courseID, false)
	}
	if !c.IsPublished {
		return nil, apperr.NotFound("course not found")
	}
	return s.store.ListLessons(ctx, courseID, true)
}

// Courses lists the catalog. Students only see published courses.
func (s *Service) Courses(ctx context.Context, caller rbac.Caller, f ListFilter) ([]Course, error) {
	f.Query = strings.TrimSpace(f.Query)
	f.PublishedOnly = !caller.IsStaff()
	switch {
	case f.Limit <= 0:
		f.Limit = 50
	case f.Limit > 200:
		f.Limit = 200
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return s.store.ListCourses(ctx, f)
}
