package enrollment

import (
	"context"
	"errors"

	"github.com/mind-engage/mindengage-academy/internal/apperr"
	"github.com/mind-engage/mindengage-academy/internal/course"
	"github.com/mind-engage/mindengage-academy/internal/percent"
	"github.com/mind-engage/mindengage-academy/internal/rbac"
	syncx "github.com/mind-engage/mindengage-academy/internal/sync"
)

type Service struct {
	store   Store
	courses course.Store
	events  *syncx.EventRepo
}

func NewService(store Store, courses course.Store, events *syncx.EventRepo) *Service {
	return &Service{store: store, courses: courses, events: events}
}

// Enroll enrolls userID in courseID. Students may only enroll themselves and
// only in published courses.
func (s *Service) Enroll(ctx context.Context, caller rbac.Caller, courseID, userID string) (Enrollment, error) {
	if userID == "" {
		userID = caller.UserID
	}
	if !caller.IsStaff() && userID != caller.UserID {
		return Enrollment{}, apperr.Forbidden("students can only enroll themselves")
	}
	c, err := s.courses.GetCourse(ctx, courseID)
	if err != nil {
		return Enrollment{}, err
	}
	if !c.IsPublished && !caller.IsStaff() {
		return Enrollment{}, apperr.NotFound("course not found")
	}
	return s.store.Enroll(ctx, Enrollment{UserID: userID, CourseID: courseID, Status: StatusActive})
}

// CheckAccess lets staff through and requires an active enrollment for
// everyone else.
func (s *Service) CheckAccess(ctx context.Context, caller rbac.Caller, courseID string) error {
	if !caller.Authenticated() {
		return apperr.ErrUnauthorized
	}
	if caller.IsStaff() {
		return nil
	}
	e, err := s.store.Get(ctx, caller.UserID, courseID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.Forbidden("not enrolled in this course")
		}
		return err
	}
	if !e.Active() {
		return apperr.Forbidden("enrollment is not active")
	}
	return nil
}

// LessonProgress counts the user's completed lessons among the course's
// published lessons.
func (s *Service) LessonProgress(ctx context.Context, userID, courseID string) (completed, total int, err error) {
	lessons, err := s.courses.ListLessons(ctx, courseID, true)
	if err != nil {
		return 0, 0, err
	}
	done, err := s.store.CompletedLessonIDs(ctx, userID, courseID)
	if err != nil {
		return 0, 0, err
	}
	doneSet := make(map[string]struct{}, len(done))
	for _, id := range done {
		doneSet[id] = struct{}{}
	}
	for _, l := range lessons {
		if _, ok := doneSet[l.ID]; ok {
			completed++
		}
	}
	return completed, len(lessons), nil
}

// CompleteLesson records the lesson as completed and recomputes the
// enrollment's progress.
func (s *Service) CompleteLesson(ctx context.Context, caller rbac.Caller, lessonID string) (Enrollment, error) {
	l, err := s.courses.GetLesson(ctx, lessonID)
	if err != nil {
		return Enrollment{}, err
	}
	if !l.IsPublished {
		return Enrollment{}, apperr.NotFound("lesson not found")
	}
	e, err := s.store.Get(ctx, caller.UserID, l.CourseID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return Enrollment{}, apperr.Forbidden("not enrolled in this course")
		}
		return Enrollment{}, err
	}
	if !e.Active() {
		return Enrollment{}, apperr.Forbidden("enrollment is not active")
	}
	if err := s.store.MarkLessonComplete(ctx, caller.UserID, l.CourseID, l.ID); err != nil {
		return Enrollment{}, err
	}
	completed, total, err := s.LessonProgress(ctx, caller.UserID, l.CourseID)
	if err != nil {
		return Enrollment{}, err
	}
	if err := s.store.SetProgress(ctx, caller.UserID, l.CourseID, percent.Of(float64(completed), float64(total))); err != nil {
		return Enrollment{}, err
	}
	s.events.Record(ctx, syncx.LessonCompleted, caller.UserID+":"+l.ID, map[string]any{
		"userId": caller.UserID, "courseId": l.CourseID, "lessonId": l.ID,
	})
	return s.store.Get(ctx, caller.UserID, l.CourseID)
}
