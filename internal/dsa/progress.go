package dsa

import (
	"strings"
	"time"

	"github.com/mind-engage/mindengage-academy/internal/apperr"
	"github.com/mind-engage/mindengage-academy/internal/course"
	"github.com/mind-engage/mindengage-academy/internal/percent"
)

type CompletedProblem struct {
	ProblemID     string `json:"problemId"`
	CategoryIndex int    `json:"categoryIndex"`
	ProblemIndex  int    `json:"problemIndex"`
	CompletedAt   int64  `json:"completedAt"`
}

type Progress struct {
	ID                   string             `json:"id,omitempty"`
	UserID               string             `json:"userId"`
	LessonID             string             `json:"lessonId"`
	CourseID             string             `json:"courseId"`
	Completed            []CompletedProblem `json:"completedProblems"`
	TotalProblems        int                `json:"totalProblems"`
	CompletionPercentage float64            `json:"completionPercentage"`
	UpdatedAt            int64              `json:"updatedAt,omitempty"`
}

type ToggleInput struct {
	LessonID      string `json:"lessonId"`
	ProblemID     string `json:"problemId"`
	Completed     bool   `json:"completed"`
	CategoryIndex int    `json:"categoryIndex"`
	ProblemIndex  int    `json:"problemIndex"`
}

func (p Progress) has(problemID string) int {
	for i, c := range p.Completed {
		if c.ProblemID == problemID {
			return i
		}
	}
	return -1
}

// Toggle marks one problem complete or incomplete. Both directions are
// idempotent. Positions come from the sheet when the problem is on it.
func Toggle(p Progress, sheet *course.DsaSheet, in ToggleInput, now time.Time) (Progress, error) {
	id := strings.TrimSpace(in.ProblemID)
	if id == "" {
		return Progress{}, apperr.Validation("problemId is required")
	}
	completed := append([]CompletedProblem(nil), p.Completed...)
	idx := p.has(id)

	if in.Completed {
		ci, pi, ok := sheet.Locate(id)
		if !ok {
			return Progress{}, apperr.Validation("problem %q is not on this sheet", id)
		}
		if idx < 0 {
			completed = append(completed, CompletedProblem{
				ProblemID: id, CategoryIndex: ci, ProblemIndex: pi, CompletedAt: now.Unix(),
			})
		}
	} else if idx >= 0 {
		completed = append(completed[:idx], completed[idx+1:]...)
	}

	p.Completed = completed
	p.UpdatedAt = now.Unix()
	return Recompute(p, sheet), nil
}

// Recompute derives the totals from the sheet as it is now. Completions of
// problems no longer on the sheet are kept but not counted.
func Recompute(p Progress, sheet *course.DsaSheet) Progress {
	if p.Completed == nil {
		p.Completed = []CompletedProblem{}
	}
	ids := sheet.ProblemIDs()
	done := 0
	for _, c := range p.Completed {
		if _, ok := ids[c.ProblemID]; ok {
			done++
		}
	}
	p.TotalProblems = len(ids)
	p.CompletionPercentage = percent.Of(float64(done), float64(p.TotalProblems))
	return p
}
