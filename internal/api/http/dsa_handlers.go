package http

import (
	"net/http"
	"strings"

	"github.com/mind-engage/mindengage-academy/internal/dsa"
)

// GET /dsa-progress?lessonId=
func GetDsaProgressHandler(svc *dsa.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.Get(r.Context(), caller(r), strings.TrimSpace(r.URL.Query().Get("lessonId")))
		if err != nil {
			writeError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, p)
	}
}

// POST /dsa-progress  { "lessonId", "problemId", "completed", "categoryIndex", "problemIndex" }
func ToggleDsaProblemHandler(svc *dsa.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dsa.ToggleInput
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		p, err := svc.Toggle(r.Context(), caller(r), req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, p)
	}
}
