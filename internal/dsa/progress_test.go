package dsa

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-academy/internal/apperr"
	"github.com/mind-engage/mindengage-academy/internal/course"
)

func fourProblemSheet() *course.DsaSheet {
	return &course.DsaSheet{Categories: []course.Category{{
		Name: "Arrays",
		Problems: []course.Problem{
			{ID: "p1", Title: "Two Sum"}, {ID: "p2", Title: "Rotate"},
			{ID: "p3", Title: "Kadane"}, {ID: "p4", Title: "Merge"},
		},
	}}}
}

func toggle(t *testing.T, p Progress, sheet *course.DsaSheet, id string, done bool) Progress {
	t.Helper()
	out, err := Toggle(p, sheet, ToggleInput{ProblemID: id, Completed: done}, time.Now())
	require.NoError(t, err)
	return out
}

func TestToggleScenario(t *testing.T) {
	sheet := fourProblemSheet()
	var p Progress

	p = toggle(t, p, sheet, "p1", true)
	p = toggle(t, p, sheet, "p2", true)
	require.Equal(t, 4, p.TotalProblems)
	require.Equal(t, 50.0, p.CompletionPercentage)

	p = toggle(t, p, sheet, "p1", false)
	require.Equal(t, 25.0, p.CompletionPercentage)
	require.Len(t, p.Completed, 1)
	require.Equal(t, "p2", p.Completed[0].ProblemID)
	require.Equal(t, 1, p.Completed[0].ProblemIndex)
}

func TestToggleIsIdempotent(t *testing.T) {
	sheet := fourProblemSheet()
	once := toggle(t, Progress{}, sheet, "p3", true)
	twice := toggle(t, once, sheet, "p3", true)
	require.Equal(t, once.Completed, twice.Completed)

	none := toggle(t, Progress{}, sheet, "p3", false)
	require.Empty(t, none.Completed)
	require.Zero(t, none.CompletionPercentage)
}

func TestToggleDoesNotAliasInput(t *testing.T) {
	sheet := fourProblemSheet()
	p := toggle(t, Progress{}, sheet, "p1", true)
	p = toggle(t, p, sheet, "p2", true)
	before := append([]CompletedProblem(nil), p.Completed...)

	_ = toggle(t, p, sheet, "p1", false)
	require.Equal(t, before, p.Completed)
}

func TestToggleUnknownProblem(t *testing.T) {
	_, err := Toggle(Progress{}, fourProblemSheet(), ToggleInput{ProblemID: "zz", Completed: true}, time.Now())
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = Toggle(Progress{}, fourProblemSheet(), ToggleInput{ProblemID: " ", Completed: true}, time.Now())
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestRecomputeAfterSheetEdit(t *testing.T) {
	sheet := fourProblemSheet()
	p := toggle(t, Progress{}, sheet, "p1", true)
	p = toggle(t, p, sheet, "p4", true)

	// p4 removed, two problems added
	sheet.Categories[0].Problems = sheet.Categories[0].Problems[:3]
	sheet.Categories = append(sheet.Categories, course.Category{
		Name: "Graphs", Problems: []course.Problem{{ID: "g1"}, {ID: "g2"}},
	})
	p = Recompute(p, sheet)
	require.Equal(t, 5, p.TotalProblems)
	require.Equal(t, 20.0, p.CompletionPercentage)
	require.Len(t, p.Completed, 2)

	require.Zero(t, Recompute(p, &course.DsaSheet{}).CompletionPercentage)
}
