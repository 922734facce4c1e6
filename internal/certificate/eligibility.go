package certificate

import "github.com/mind-engage/mindengage-academy/internal/percent"

// QuizStatus is a user's standing on one quiz required for the certificate.
type QuizStatus struct {
	QuizID          string
	Title           string
	Passed          bool
	BestPercentage  float64
	AttemptsUsed    int
	AttemptsAllowed int
}

type Input struct {
	CompletedLessons int
	TotalLessons     int
	RequiredPct      float64
	Quizzes          []QuizStatus
}

type LessonRequirement struct {
	Completed  int     `json:"completed"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
	Required   float64 `json:"required"`
	Met        bool    `json:"met"`
}

type QuizRequirement struct {
	QuizID          string  `json:"quizId"`
	Title           string  `json:"title"`
	Passed          bool    `json:"passed"`
	BestPercentage  float64 `json:"bestPercentage"`
	AttemptsUsed    int     `json:"attemptsUsed"`
	AttemptsAllowed int     `json:"attemptsAllowed"`
	// Exhausted marks a quiz that can no longer be passed.
	Exhausted bool `json:"exhausted"`
}

type QuizRequirements struct {
	Passed       int               `json:"passed"`
	Total        int               `json:"total"`
	Requirements []QuizRequirement `json:"requirements"`
}

type Requirements struct {
	Lessons             LessonRequirement `json:"lessons"`
	Quizzes             QuizRequirements  `json:"quizzes"`
	CertificateEligible bool              `json:"certificateEligible"`
}

// Evaluate decides certificate eligibility: enough lessons completed and a
// passing attempt on every required quiz.
func Evaluate(in Input) Requirements {
	pct := percent.Of(float64(in.CompletedLessons), float64(in.TotalLessons))
	out := Requirements{
		Lessons: LessonRequirement{
			Completed:  in.CompletedLessons,
			Total:      in.TotalLessons,
			Percentage: pct,
			Required:   in.RequiredPct,
			Met:        pct >= in.RequiredPct,
		},
		Quizzes: QuizRequirements{
			Total:        len(in.Quizzes),
			Requirements: make([]QuizRequirement, 0, len(in.Quizzes)),
		},
	}
	for _, q := range in.Quizzes {
		if q.Passed {
			out.Quizzes.Passed++
		}
		out.Quizzes.Requirements = append(out.Quizzes.Requirements, QuizRequirement{
			QuizID:          q.QuizID,
			Title:           q.Title,
			Passed:          q.Passed,
			BestPercentage:  q.BestPercentage,
			AttemptsUsed:    q.AttemptsUsed,
			AttemptsAllowed: q.AttemptsAllowed,
			Exhausted:       !q.Passed && q.AttemptsUsed >= q.AttemptsAllowed,
		})
	}
	out.CertificateEligible = out.Lessons.Met && out.Quizzes.Passed == out.Quizzes.Total
	return out
}
