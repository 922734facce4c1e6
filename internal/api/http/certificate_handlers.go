package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-academy/internal/certificate"
)

// GET /courses/{courseID}/certificate/requirements?user_id=
// user_id is honoured for staff only.
func CertificateRequirementsHandler(svc *certificate.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := svc.Requirements(r.Context(), caller(r), chi.URLParam(r, "courseID"), r.URL.Query().Get("user_id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, req)
	}
}

// POST /courses/{courseID}/certificate
func IssueCertificateHandler(svc *certificate.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := svc.Issue(r.Context(), caller(r), chi.URLParam(r, "courseID"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, c)
	}
}

// POST /certificates/{certID}/revoke
func RevokeCertificateHandler(svc *certificate.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := svc.Revoke(r.Context(), caller(r), chi.URLParam(r, "certID"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, c)
	}
}

// GET /certificates/verify/{number}  (public)
func VerifyCertificateHandler(svc *certificate.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := svc.Verify(r.Context(), chi.URLParam(r, "number"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, c)
	}
}
