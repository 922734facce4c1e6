package dsa

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/mindengage-academy/internal/apperr"
	"github.com/mind-engage/mindengage-academy/internal/course"
	"github.com/mind-engage/mindengage-academy/internal/rbac"
	syncx "github.com/mind-engage/mindengage-academy/internal/sync"
)

type AccessChecker interface {
	CheckAccess(ctx context.Context, caller rbac.Caller, courseID string) error
}

type Service struct {
	store   Store
	courses course.Store
	access  AccessChecker
	events  *syncx.EventRepo
	now     func() time.Time
}

func NewService(store Store, courses course.Store, access AccessChecker, events *syncx.EventRepo) *Service {
	return &Service{store: store, courses: courses, access: access, events: events, now: time.Now}
}

func (s *Service) sheetLesson(ctx context.Context, caller rbac.Caller, lessonID string) (course.Lesson, error) {
	if lessonID == "" {
		return course.Lesson{}, apperr.Validation("lessonId is required")
	}
	l, err := s.courses.GetLesson(ctx, lessonID)
	if err != nil {
		return course.Lesson{}, err
	}
	if !l.IsPublished && !caller.IsStaff() {
		return course.Lesson{}, apperr.NotFound("lesson not found")
	}
	if err := s.access.CheckAccess(ctx, caller, l.CourseID); err != nil {
		return course.Lesson{}, err
	}
	if l.DsaSheet == nil {
		return course.Lesson{}, apperr.Validation("lesson has no DSA sheet")
	}
	return l, nil
}

func (s *Service) load(ctx context.Context, userID string, l course.Lesson) (Progress, error) {
	p, err := s.store.Get(ctx, userID, l.ID)
	if errors.Is(err, apperr.ErrNotFound) {
		return Progress{UserID: userID, LessonID: l.ID, CourseID: l.CourseID}, nil
	}
	return p, err
}

// Get returns the caller's progress on a lesson's sheet, recomputed against
// the current sheet. Nothing is written.
func (s *Service) Get(ctx context.Context, caller rbac.Caller, lessonID string) (Progress, error) {
	l, err := s.sheetLesson(ctx, caller, lessonID)
	if err != nil {
		return Progress{}, err
	}
	p, err := s.load(ctx, caller.UserID, l)
	if err != nil {
		return Progress{}, err
	}
	return Recompute(p, l.DsaSheet), nil
}

func (s *Service) Toggle(ctx context.Context, caller rbac.Caller, in ToggleInput) (Progress, error) {
	l, err := s.sheetLesson(ctx, caller, in.LessonID)
	if err != nil {
		return Progress{}, err
	}
	p, err := s.load(ctx, caller.UserID, l)
	if err != nil {
		return Progress{}, err
	}
	p, err = Toggle(p, l.DsaSheet, in, s.now())
	if err != nil {
		return Progress{}, err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if err := s.store.Put(ctx, p); err != nil {
		return Progress{}, fmt.Errorf("save dsa progress: %w", err)
	}
	s.events.Record(ctx, syncx.DsaProblemToggled, p.UserID+":"+p.LessonID, in)
	return p, nil
}
