package quiz

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/mindengage-academy/internal/apperr"
	"github.com/mind-engage/mindengage-academy/internal/course"
	"github.com/mind-engage/mindengage-academy/internal/grading"
	"github.com/mind-engage/mindengage-academy/internal/rbac"
	syncx "github.com/mind-engage/mindengage-academy/internal/sync"
)

// AccessChecker decides whether a caller may use a course's content.
type AccessChecker interface {
	CheckAccess(ctx context.Context, caller rbac.Caller, courseID string) error
}

type Service struct {
	store   Store
	courses course.Store
	access  AccessChecker
	grader  grading.Grader
	events  *syncx.EventRepo
	now     func() time.Time
}

func NewService(store Store, courses course.Store, access AccessChecker, grader grading.Grader, events *syncx.EventRepo) *Service {
	if grader == nil {
		grader = grading.NewDefaultGrader()
	}
	return &Service{store: store, courses: courses, access: access, grader: grader, events: events, now: time.Now}
}

func (s *Service) Create(ctx context.Context, caller rbac.Caller, q Quiz) (Quiz, error) {
	if !caller.IsStaff() {
		return Quiz{}, apperr.Forbidden("only teachers can create quizzes")
	}
	if err := q.Validate(); err != nil {
		return Quiz{}, err
	}
	if _, err := s.courses.GetCourse(ctx, q.CourseID); err != nil {
		return Quiz{}, err
	}
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	for i := range q.Questions {
		if q.Questions[i].ID == "" {
			q.Questions[i].ID = fmt.Sprintf("%s-q%d", q.ID, i+1)
		}
	}
	if err := s.store.PutQuiz(ctx, q); err != nil {
		return Quiz{}, err
	}
	return s.store.GetQuiz(ctx, q.ID)
}

// Get returns the full quiz to staff and the answer-free view to enrolled students.
func (s *Service) Get(ctx context.Context, caller rbac.Caller, quizID string) (Quiz, error) {
	q, err := s.store.GetQuiz(ctx, quizID)
	if err != nil {
		return Quiz{}, err
	}
	if err := s.access.CheckAccess(ctx, caller, q.CourseID); err != nil {
		return Quiz{}, err
	}
	if caller.IsStaff() {
		return q, nil
	}
	return q.StudentView(), nil
}

type SubmitInput struct {
	Answers      []Answer `json:"answers"`
	TimeSpentSec int      `json:"timeSpent"`
	StartedAt    int64    `json:"startedAt"` // unix seconds
}

type QuestionReview struct {
	Question       Question `json:"question"`
	Answer         *Answer  `json:"answer,omitempty"`
	Correct        bool     `json:"correct"`
	Points         float64  `json:"points"`
	CorrectOptions []int    `json:"correctOptions,omitempty"`
	CorrectAnswer  string   `json:"correctAnswer,omitempty"`
}

type Review struct {
	Attempt   Attempt          `json:"attempt"`
	Questions []QuestionReview `json:"questions"`
}

// Submit grades a submission and stores it as the caller's next attempt.
// Nothing is written when the attempt limit is already reached.
func (s *Service) Submit(ctx context.Context, caller rbac.Caller, quizID string, in SubmitInput) (Review, error) {
	q, err := s.store.GetQuiz(ctx, quizID)
	if err != nil {
		return Review{}, err
	}
	if err := s.access.CheckAccess(ctx, caller, q.CourseID); err != nil {
		return Review{}, err
	}
	byQuestion, err := indexAnswers(q, in.Answers)
	if err != nil {
		return Review{}, err
	}
	if in.TimeSpentSec < 0 {
		return Review{}, apperr.Validation("timeSpent must not be negative")
	}

	prior, err := s.store.CountAttempts(ctx, caller.UserID, q.ID)
	if err != nil {
		return Review{}, err
	}
	if prior >= q.Attempts {
		return Review{}, apperr.AttemptLimitExceeded("maximum of %d attempts reached", q.Attempts)
	}

	items := make([]grading.Item, len(q.Questions))
	for i, qu := range q.Questions {
		items[i] = grading.Item{Q: qu.gradingView()}
		if a, ok := byQuestion[qu.ID]; ok {
			items[i].Response = &grading.Response{Selected: a.Selected, Text: a.Text}
		}
	}
	out, err := s.grader.GradeQuiz(ctx, items, q.PassingScore)
	if err != nil {
		return Review{}, apperr.Validation("malformed quiz: %v", err)
	}

	now := s.now()
	started := in.StartedAt
	if started <= 0 || started > now.Unix() {
		started = now.Unix()
	}
	a := Attempt{
		ID:            uuid.NewString(),
		UserID:        caller.UserID,
		QuizID:        q.ID,
		AttemptNumber: prior + 1,
		Answers:       in.Answers,
		Results:       make([]QuestionResult, len(q.Questions)),
		Score:         out.Score,
		MaxScore:      out.MaxScore,
		Percentage:    out.Percentage,
		Passed:        out.Passed,
		TimeSpentSec:  in.TimeSpentSec,
		StartedAt:     started,
		SubmittedAt:   now.Unix(),
	}
	if a.Answers == nil {
		a.Answers = []Answer{}
	}
	for i, qu := range q.Questions {
		r := out.Results[i]
		a.Results[i] = QuestionResult{QuestionID: qu.ID, Correct: r.Correct, Points: r.AutoPoints, MaxPoints: r.MaxPoints}
	}
	if err := s.store.InsertAttempt(ctx, a); err != nil {
		return Review{}, fmt.Errorf("save attempt: %w", err)
	}
	s.events.Record(ctx, syncx.QuizAttemptSubmitted, a.ID, map[string]any{
		"userId": a.UserID, "quizId": a.QuizID, "attemptNumber": a.AttemptNumber,
		"percentage": a.Percentage, "passed": a.Passed,
	})

	rev := Review{Attempt: a, Questions: make([]QuestionReview, len(q.Questions))}
	for i, qu := range q.Questions {
		qr := QuestionReview{
			Question:       qu,
			Correct:        a.Results[i].Correct,
			Points:         a.Results[i].Points,
			CorrectOptions: qu.CorrectOptions(),
			CorrectAnswer:  qu.Answer,
		}
		if ans, ok := byQuestion[qu.ID]; ok {
			qr.Answer = &ans
		}
		rev.Questions[i] = qr
	}
	return rev, nil
}

// indexAnswers keys answers by question id, rejecting unknown or repeated ids.
func indexAnswers(q Quiz, answers []Answer) (map[string]Answer, error) {
	known := make(map[string]struct{}, len(q.Questions))
	for _, qu := range q.Questions {
		known[qu.ID] = struct{}{}
	}
	out := make(map[string]Answer, len(answers))
	for _, a := range answers {
		a.QuestionID = strings.TrimSpace(a.QuestionID)
		if _, ok := known[a.QuestionID]; !ok {
			return nil, apperr.Validation("unknown question %q", a.QuestionID)
		}
		if _, dup := out[a.QuestionID]; dup {
			return nil, apperr.Validation("duplicate answer for question %q", a.QuestionID)
		}
		out[a.QuestionID] = a
	}
	return out, nil
}

type History struct {
	Attempts       []Attempt `json:"attempts"`
	Allowed        int       `json:"allowed"`
	Remaining      int       `json:"remaining"`
	Passed         bool      `json:"passed"`
	BestPercentage float64   `json:"bestPercentage"`
	MaxScore       float64   `json:"maxScore"`
}

// Attempts lists the caller's attempts at a quiz.
func (s *Service) Attempts(ctx context.Context, caller rbac.Caller, quizID string) (History, error) {
	q, err := s.store.GetQuiz(ctx, quizID)
	if err != nil {
		return History{}, err
	}
	if err := s.access.CheckAccess(ctx, caller, q.CourseID); err != nil {
		return History{}, err
	}
	list, err := s.store.ListAttempts(ctx, caller.UserID, q.ID)
	if err != nil {
		return History{}, err
	}
	h := Summarize(q, list)
	if h.Attempts == nil {
		h.Attempts = []Attempt{}
	}
	return h, nil
}

// Summarize folds attempts into pass state and remaining allowance.
func Summarize(q Quiz, attempts []Attempt) History {
	h := History{Attempts: attempts, Allowed: q.Attempts, MaxScore: q.TotalPoints()}
	for _, a := range attempts {
		if a.Passed {
			h.Passed = true
		}
		if a.Percentage > h.BestPercentage {
			h.BestPercentage = a.Percentage
		}
	}
	if rem := q.Attempts - len(attempts); rem > 0 {
		h.Remaining = rem
	}
	return h
}
