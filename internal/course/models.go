package course

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mind-engage/mindengage-academy/internal/apperr"
)

type Course struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	IsPublished bool            `json:"isPublished"`
	CreatedBy   string          `json:"createdBy,omitempty"`
	CreatedAt   int64           `json:"createdAt,omitempty"`
}

const (
	LessonText  = "text"
	LessonVideo = "video"
	LessonQuiz  = "quiz"
)

type Lesson struct {
	ID          string    `json:"id"`
	CourseID    string    `json:"courseId"`
	Title       string    `json:"title"`
	Type        string    `json:"type"` // text|video|quiz
	Order       int       `json:"order"`
	IsPublished bool      `json:"isPublished"`
	IsPreview   bool      `json:"isPreview"`
	DsaSheet    *DsaSheet `json:"dsaSheet,omitempty"`
	CreatedAt   int64     `json:"createdAt,omitempty"`
}

// DsaSheet is a checklist of practice problems grouped by category.
type DsaSheet struct {
	Categories []Category `json:"categories"`
}

type Category struct {
	Name     string    `json:"name"`
	Problems []Problem `json:"problems"`
}

type Problem struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Difficulty string `json:"difficulty,omitempty"`
	URL        string `json:"url,omitempty"`
}

func (s *DsaSheet) TotalProblems() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, c := range s.Categories {
		n += len(c.Problems)
	}
	return n
}

// Locate returns the category and problem index of problemID.
func (s *DsaSheet) Locate(problemID string) (catIdx, probIdx int, ok bool) {
	if s == nil {
		return 0, 0, false
	}
	for ci, c := range s.Categories {
		for pi, p := range c.Problems {
			if p.ID == problemID {
				return ci, pi, true
			}
		}
	}
	return 0, 0, false
}

// ProblemIDs returns the set of problem ids on the sheet.
func (s *DsaSheet) ProblemIDs() map[string]struct{} {
	out := map[string]struct{}{}
	if s == nil {
		return out
	}
	for _, c := range s.Categories {
		for _, p := range c.Problems {
			out[p.ID] = struct{}{}
		}
	}
	return out
}

// Trimmed returns a copy of the sheet with surrounding whitespace removed
// from problem ids.
func (s *DsaSheet) Trimmed() *DsaSheet {
	if s == nil {
		return nil
	}
	out := &DsaSheet{Categories: make([]Category, len(s.Categories))}
	for i, c := range s.Categories {
		probs := make([]Problem, len(c.Problems))
		for j, p := range c.Problems {
			p.ID = strings.TrimSpace(p.ID)
			probs[j] = p
		}
		c.Problems = probs
		out.Categories[i] = c
	}
	return out
}

func (c Course) Validate() error {
	var fields []apperr.FieldError
	if strings.TrimSpace(c.Title) == "" {
		fields = append(fields, apperr.FieldError{Field: "title", Error: "required"})
	}
	if c.Price.IsNegative() {
		fields = append(fields, apperr.FieldError{Field: "price", Error: "must not be negative"})
	}
	if len(fields) > 0 {
		return apperr.ValidationFields("invalid course", fields...)
	}
	return nil
}

func (l Lesson) Validate() error {
	var fields []apperr.FieldError
	if strings.TrimSpace(l.CourseID) == "" {
		fields = append(fields, apperr.FieldError{Field: "courseId", Error: "required"})
	}
	if strings.TrimSpace(l.Title) == "" {
		fields = append(fields, apperr.FieldError{Field: "title", Error: "required"})
	}
	switch l.Type {
	case LessonText, LessonVideo, LessonQuiz:
	default:
		fields = append(fields, apperr.FieldError{Field: "type", Error: "must be text, video or quiz"})
	}
	if l.DsaSheet != nil {
		seen := map[string]struct{}{}
		for _, c := range l.DsaSheet.Categories {
			for _, p := range c.Problems {
				id := strings.TrimSpace(p.ID)
				if id == "" {
					fields = append(fields, apperr.FieldError{Field: "dsaSheet", Error: "problem id required"})
					continue
				}
				if _, dup := seen[id]; dup {
					fields = append(fields, apperr.FieldError{Field: "dsaSheet", Error: "duplicate problem id " + id})
				}
				seen[id] = struct{}{}
			}
		}
	}
	if len(fields) > 0 {
		return apperr.ValidationFields("invalid lesson", fields...)
	}
	return nil
}
