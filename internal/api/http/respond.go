package http

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/mind-engage/mindengage-academy/internal/apperr"
	"github.com/mind-engage/mindengage-academy/internal/rbac"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

type errorBody struct {
	Error  string              `json:"error"`
	Fields []apperr.FieldError `json:"fields,omitempty"`
}

// writeError surfaces err as {"error": msg} with the status of its kind.
// Errors outside the taxonomy are logged and reported as a bare 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.Status(err)
	body := errorBody{Error: err.Error()}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		body.Fields = ae.Fields
	}
	if status == http.StatusInternalServerError {
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
		body = errorBody{Error: "internal error"}
	}
	respondJSON(w, status, body)
}

// decodeJSON reads the request body into v. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return apperr.Validation("bad json")
	}
	return nil
}

func caller(r *http.Request) rbac.Caller {
	return rbac.CallerFromContext(r.Context())
}

func parseIntDefault(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil && v >= 0 {
		return v
	}
	return def
}
