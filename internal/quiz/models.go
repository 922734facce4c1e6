package quiz

import (
	"fmt"
	"strings"

	"github.com/mind-engage/mindengage-academy/internal/apperr"
	"github.com/mind-engage/mindengage-academy/internal/grading"
)

type Option struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect,omitempty"`
}

type Question struct {
	ID      string   `json:"id"`
	Type    string   `json:"type"` // single-choice|multiple-choice|fill-blank
	Text    string   `json:"text"`
	Points  float64  `json:"points"`
	Options []Option `json:"options,omitempty"`
	Answer  string   `json:"answer,omitempty"` // fill-blank reference answer
}

type Quiz struct {
	ID                       string     `json:"id"`
	CourseID                 string     `json:"courseId"`
	LessonID                 string     `json:"lessonId,omitempty"`
	Title                    string     `json:"title"`
	Questions                []Question `json:"questions"`
	PassingScore             float64    `json:"passingScore"` // percentage
	Attempts                 int        `json:"attempts"`     // max allowed
	TimeLimitSec             int        `json:"timeLimit"`
	IsRequiredForCertificate bool       `json:"isRequiredForCertificate"`
	CreatedAt                int64      `json:"createdAt,omitempty"`
}

// Answer is one submitted answer: selected option indices for choice
// questions, free text for fill-blank.
type Answer struct {
	QuestionID string `json:"questionId"`
	Selected   []int  `json:"selected,omitempty"`
	Text       string `json:"text,omitempty"`
}

type QuestionResult struct {
	QuestionID string  `json:"questionId"`
	Correct    bool    `json:"correct"`
	Points     float64 `json:"points"`
	MaxPoints  float64 `json:"maxPoints"`
}

type Attempt struct {
	ID            string           `json:"id"`
	UserID        string           `json:"userId"`
	QuizID        string           `json:"quizId"`
	AttemptNumber int              `json:"attemptNumber"`
	Answers       []Answer         `json:"answers"`
	Results       []QuestionResult `json:"results"`
	Score         float64          `json:"score"`
	MaxScore      float64          `json:"maxScore"`
	Percentage    float64          `json:"percentage"`
	Passed        bool             `json:"passed"`
	TimeSpentSec  int              `json:"timeSpent"`
	StartedAt     int64            `json:"startedAt"`
	SubmittedAt   int64            `json:"submittedAt"`
}

// Validate rejects malformed quiz definitions.
func (q Quiz) Validate() error {
	var fields []apperr.FieldError
	add := func(field, msg string) { fields = append(fields, apperr.FieldError{Field: field, Error: msg}) }

	if strings.TrimSpace(q.CourseID) == "" {
		add("courseId", "required")
	}
	if strings.TrimSpace(q.Title) == "" {
		add("title", "required")
	}
	if q.PassingScore < 0 || q.PassingScore > 100 {
		add("passingScore", "must be between 0 and 100")
	}
	if q.Attempts < 1 {
		add("attempts", "must be at least 1")
	}
	if q.TimeLimitSec < 0 {
		add("timeLimit", "must not be negative")
	}
	if len(q.Questions) == 0 {
		add("questions", "at least one question required")
	}
	ids := map[string]struct{}{}
	for i, qu := range q.Questions {
		f := fmt.Sprintf("questions[%d]", i)
		if qu.ID != "" {
			if _, dup := ids[qu.ID]; dup {
				add(f+".id", "duplicate id")
			}
			ids[qu.ID] = struct{}{}
		}
		if qu.Points <= 0 {
			add(f+".points", "must be positive")
		}
		switch qu.Type {
		case grading.TypeSingleChoice, grading.TypeMultipleChoice:
			if len(qu.Options) < 2 {
				add(f+".options", "at least two options required")
			}
			n := qu.correctCount()
			if n == 0 {
				add(f+".options", "at least one option must be correct")
			}
			if qu.Type == grading.TypeSingleChoice && n > 1 {
				add(f+".options", "single-choice allows exactly one correct option")
			}
		case grading.TypeFillBlank:
			if strings.TrimSpace(qu.Answer) == "" {
				add(f+".answer", "reference answer required")
			}
		default:
			add(f+".type", "must be single-choice, multiple-choice or fill-blank")
		}
	}
	if len(fields) > 0 {
		return apperr.ValidationFields("invalid quiz", fields...)
	}
	return nil
}

func (qu Question) correctCount() int {
	n := 0
	for _, o := range qu.Options {
		if o.IsCorrect {
			n++
		}
	}
	return n
}

// CorrectOptions returns the indices of options flagged correct.
func (qu Question) CorrectOptions() []int {
	var out []int
	for i, o := range qu.Options {
		if o.IsCorrect {
			out = append(out, i)
		}
	}
	return out
}

func (qu Question) gradingView() grading.Q {
	correct := make([]bool, len(qu.Options))
	for i, o := range qu.Options {
		correct[i] = o.IsCorrect
	}
	return grading.Q{Type: qu.Type, Points: qu.Points, Correct: correct, Answer: qu.Answer}
}

// StudentView strips correct-answer data.
func (q Quiz) StudentView() Quiz {
	out := q
	out.Questions = make([]Question, len(q.Questions))
	for i, qu := range q.Questions {
		qu.Answer = ""
		opts := make([]Option, len(qu.Options))
		for j, o := range qu.Options {
			opts[j] = Option{Text: o.Text}
		}
		qu.Options = opts
		out.Questions[i] = qu
	}
	return out
}

// TotalPoints is the maximum score of the quiz.
func (q Quiz) TotalPoints() float64 {
	t := 0.0
	for _, qu := range q.Questions {
		t += qu.Points
	}
	return t
}
