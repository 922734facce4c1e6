package grading

import (
	"context"
	"fmt"

	"github.com/mind-engage/mindengage-academy/internal/percent"
)

const (
	TypeSingleChoice   = "single-choice"
	TypeMultipleChoice = "multiple-choice"
	TypeFillBlank      = "fill-blank"
)

// Q is the view of a question needed for grading.
type Q struct {
	Type    string
	Points  float64
	Correct []bool // per option, true when flagged correct
	Answer  string // fill-blank reference answer
}

// Response is a submitted answer: selected option indices or free text.
type Response struct {
	Selected []int
	Text     string
}

// Result is the outcome of grading a single question response.
type Result struct {
	Correct    bool
	AutoPoints float64
	MaxPoints  float64
}

// Item pairs a question with its response; a nil Response means unanswered.
type Item struct {
	Q        Q
	Response *Response
}

// Outcome aggregates a graded submission.
type Outcome struct {
	Results    []Result
	Score      float64
	MaxScore   float64
	Percentage float64
	Passed     bool
}

// Strategy grades a single question.
type Strategy interface {
	Grade(ctx context.Context, q Q, r Response) (Result, error)
}

type Grader interface {
	Grade(ctx context.Context, q Q, r *Response) (Result, error)
	GradeQuiz(ctx context.Context, items []Item, passingScore float64) (Outcome, error)
}

type defaultGrader struct {
	strategies map[string]Strategy
}

func (g *defaultGrader) Grade(ctx context.Context, q Q, r *Response) (Result, error) {
	if r == nil {
		return Result{MaxPoints: q.Points}, nil
	}
	s, ok := g.strategies[q.Type]
	if !ok {
		return Result{MaxPoints: q.Points}, fmt.Errorf("no grading strategy for question type %q", q.Type)
	}
	return s.Grade(ctx, q, *r)
}

// GradeQuiz grades every item and aggregates: the percentage is rounded to two
// decimals and the submission passes when it reaches passingScore.
func (g *defaultGrader) GradeQuiz(ctx context.Context, items []Item, passingScore float64) (Outcome, error) {
	out := Outcome{Results: make([]Result, 0, len(items))}
	for i, it := range items {
		res, err := g.Grade(ctx, it.Q, it.Response)
		if err != nil {
			return Outcome{}, fmt.Errorf("question %d: %w", i+1, err)
		}
		out.Results = append(out.Results, res)
		out.Score += res.AutoPoints
		out.MaxScore += res.MaxPoints
	}
	out.Percentage = percent.Of(out.Score, out.MaxScore)
	out.Passed = out.Percentage >= passingScore
	return out, nil
}

type Option func(*config)

type config struct {
	AllowPartialMulti bool // partial credit for multiple-choice without wrong picks
}

func WithPartialMulti(b bool) Option { return func(c *config) { c.AllowPartialMulti = b } }

// NewDefaultGrader installs built-in strategies. Multiple-choice questions get
// no partial credit unless WithPartialMulti(true) is passed.
func NewDefaultGrader(opts ...Option) Grader {
	cfg := &config{}
	for _, o := range opts {
		o(cfg)
	}
	return &defaultGrader{
		strategies: map[string]Strategy{
			TypeSingleChoice:   singleChoiceStrategy{},
			TypeMultipleChoice: multipleChoiceStrategy{allowPartial: cfg.AllowPartialMulti},
			TypeFillBlank:      fillBlankStrategy{},
		},
	}
}

// --- Strategies ---

type singleChoiceStrategy struct{}

func (singleChoiceStrategy) Grade(_ context.Context, q Q, r Response) (Result, error) {
	res := Result{MaxPoints: q.Points}
	// Repeated indices count as one selection.
	sel := selectionSet(r.Selected, len(q.Correct))
	if len(sel) != 1 || len(sel) != len(dedupe(r.Selected)) {
		return res, nil
	}
	for i := range sel {
		if q.Correct[i] {
			res.Correct = true
			res.AutoPoints = q.Points
		}
	}
	return res, nil
}

type multipleChoiceStrategy struct{ allowPartial bool }

func (s multipleChoiceStrategy) Grade(_ context.Context, q Q, r Response) (Result, error) {
	res := Result{MaxPoints: q.Points}
	correct := correctSet(q.Correct)
	sel := selectionSet(r.Selected, len(q.Correct))
	if len(sel) != len(dedupe(r.Selected)) {
		// out-of-range index
		return res, nil
	}
	if setEqual(correct, sel) {
		res.Correct = true
		res.AutoPoints = q.Points
		return res, nil
	}
	if !s.allowPartial || len(correct) == 0 {
		return res, nil
	}
	inter := 0
	for k := range sel {
		if _, ok := correct[k]; !ok {
			return res, nil // wrong pick voids partial credit
		}
		inter++
	}
	res.AutoPoints = percent.Round2(q.Points * float64(inter) / float64(len(correct)))
	return res, nil
}

type fillBlankStrategy struct{}

func (fillBlankStrategy) Grade(_ context.Context, q Q, r Response) (Result, error) {
	res := Result{MaxPoints: q.Points}
	if blankMatches(r.Text, q.Answer) {
		res.Correct = true
		res.AutoPoints = q.Points
	}
	return res, nil
}

// helpers

func dedupe(idx []int) map[int]struct{} {
	m := make(map[int]struct{}, len(idx))
	for _, i := range idx {
		m[i] = struct{}{}
	}
	return m
}

// selectionSet keeps the in-range selected indices.
func selectionSet(idx []int, n int) map[int]struct{} {
	m := make(map[int]struct{}, len(idx))
	for _, i := range idx {
		if i >= 0 && i < n {
			m[i] = struct{}{}
		}
	}
	return m
}

func correctSet(flags []bool) map[int]struct{} {
	m := make(map[int]struct{}, len(flags))
	for i, ok := range flags {
		if ok {
			m[i] = struct{}{}
		}
	}
	return m
}

func setEqual(a, b map[int]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
