package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-academy/internal/quiz"
)

// POST /quizzes
func CreateQuizHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req quiz.Quiz
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		q, err := svc.Create(r.Context(), caller(r), req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		respondJSON(w, http.StatusCreated, q)
	}
}

// GET /quizzes/{quizID}
// Students get the quiz without answer keys.
func GetQuizHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := svc.Get(r.Context(), caller(r), chi.URLParam(r, "quizID"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, q)
	}
}

// POST /quizzes/{quizID}/submit  { "answers": [...], "timeSpent": 120, "startedAt": 1700000000 }
func SubmitQuizHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req quiz.SubmitInput
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		review, err := svc.Submit(r.Context(), caller(r), chi.URLParam(r, "quizID"), req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, review)
	}
}

// GET /quizzes/{quizID}/attempts
func ListQuizAttemptsHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h, err := svc.Attempts(r.Context(), caller(r), chi.URLParam(r, "quizID"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, h)
	}
}
