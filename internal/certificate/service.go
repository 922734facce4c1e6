package certificate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/mindengage-academy/internal/apperr"
	"github.com/mind-engage/mindengage-academy/internal/course"
	"github.com/mind-engage/mindengage-academy/internal/quiz"
	"github.com/mind-engage/mindengage-academy/internal/rbac"
	syncx "github.com/mind-engage/mindengage-academy/internal/sync"
)

// Enrollments is the slice of the enrollment service certificates need.
type Enrollments interface {
	CheckAccess(ctx context.Context, caller rbac.Caller, courseID string) error
	LessonProgress(ctx context.Context, userID, courseID string) (completed, total int, err error)
}

type Service struct {
	store       Store
	courses     course.Store
	quizzes     quiz.Store
	enrollments Enrollments
	events      *syncx.EventRepo
	requiredPct float64
	now         func() time.Time
}

func NewService(store Store, courses course.Store, quizzes quiz.Store, enrollments Enrollments, events *syncx.EventRepo, requiredLessonPct float64) *Service {
	return &Service{
		store:       store,
		courses:     courses,
		quizzes:     quizzes,
		enrollments: enrollments,
		events:      events,
		requiredPct: requiredLessonPct,
		now:         time.Now,
	}
}

// Requirements reports how far userID is from a certificate in the course.
// An empty userID means the caller; only staff may look at someone else.
func (s *Service) Requirements(ctx context.Context, caller rbac.Caller, courseID, userID string) (Requirements, error) {
	if userID == "" {
		userID = caller.UserID
	}
	if userID != caller.UserID && !caller.IsStaff() {
		return Requirements{}, apperr.Forbidden("cannot view another user's requirements")
	}
	if _, err := s.courses.GetCourse(ctx, courseID); err != nil {
		return Requirements{}, err
	}
	if err := s.enrollments.CheckAccess(ctx, caller, courseID); err != nil {
		return Requirements{}, err
	}
	return s.evaluate(ctx, userID, courseID)
}

func (s *Service) evaluate(ctx context.Context, userID, courseID string) (Requirements, error) {
	done, total, err := s.enrollments.LessonProgress(ctx, userID, courseID)
	if err != nil {
		return Requirements{}, err
	}
	qs, err := s.quizzes.ListQuizzes(ctx, courseID)
	if err != nil {
		return Requirements{}, err
	}
	in := Input{CompletedLessons: done, TotalLessons: total, RequiredPct: s.requiredPct}
	for _, q := range qs {
		if !q.IsRequiredForCertificate {
			continue
		}
		attempts, err := s.quizzes.ListAttempts(ctx, userID, q.ID)
		if err != nil {
			return Requirements{}, err
		}
		h := quiz.Summarize(q, attempts)
		in.Quizzes = append(in.Quizzes, QuizStatus{
			QuizID:          q.ID,
			Title:           q.Title,
			Passed:          h.Passed,
			BestPercentage:  h.BestPercentage,
			AttemptsUsed:    len(attempts),
			AttemptsAllowed: q.Attempts,
		})
	}
	return Evaluate(in), nil
}

// Issue grants the caller a certificate for the course once every requirement
// is met. Issuing twice returns the existing certificate.
func (s *Service) Issue(ctx context.Context, caller rbac.Caller, courseID string) (Certificate, error) {
	if !caller.Authenticated() {
		return Certificate{}, apperr.ErrUnauthorized
	}
	if _, err := s.courses.GetCourse(ctx, courseID); err != nil {
		return Certificate{}, err
	}
	if err := s.enrollments.CheckAccess(ctx, caller, courseID); err != nil {
		return Certificate{}, err
	}

	existing, err := s.store.Get(ctx, caller.UserID, courseID)
	switch {
	case err == nil:
		if !existing.IsValid {
			return Certificate{}, apperr.Forbidden("certificate has been revoked")
		}
		return existing, nil
	case !errors.Is(err, apperr.ErrNotFound):
		return Certificate{}, err
	}

	req, err := s.evaluate(ctx, caller.UserID, courseID)
	if err != nil {
		return Certificate{}, err
	}
	if !req.CertificateEligible {
		return Certificate{}, apperr.Validation("certificate requirements not met")
	}

	now := s.now()
	c := Certificate{
		ID:       uuid.NewString(),
		UserID:   caller.UserID,
		CourseID: courseID,
		Number:   newNumber(now),
		IssuedAt: now.Unix(),
		IsValid:  true,
	}
	if err := s.store.Insert(ctx, c); err != nil {
		return Certificate{}, fmt.Errorf("insert certificate: %w", err)
	}
	s.events.Record(ctx, syncx.CertificateIssued, c.ID, c)
	return c, nil
}

// Revoke invalidates a certificate. Revoked certificates stay revoked.
func (s *Service) Revoke(ctx context.Context, caller rbac.Caller, id string) (Certificate, error) {
	if !caller.Can("certificate:revoke") {
		return Certificate{}, apperr.Forbidden("only admins can revoke certificates")
	}
	c, err := s.store.GetByID(ctx, id)
	if err != nil {
		return Certificate{}, err
	}
	if !c.IsValid {
		return c, nil
	}
	at := s.now().Unix()
	if err := s.store.Revoke(ctx, id, at); err != nil {
		return Certificate{}, err
	}
	c.IsValid = false
	c.RevokedAt = &at
	s.events.Record(ctx, syncx.CertificateRevoked, c.ID, c)
	return c, nil
}

// Verify looks up a certificate by its public number.
func (s *Service) Verify(ctx context.Context, number string) (Certificate, error) {
	number = strings.ToUpper(strings.TrimSpace(number))
	if number == "" {
		return Certificate{}, apperr.Validation("certificate number is required")
	}
	return s.store.GetByNumber(ctx, number)
}

func newNumber(at time.Time) string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return fmt.Sprintf("CERT-%d-%s", at.Year(), id[:12])
}
