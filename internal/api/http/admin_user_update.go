package http

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-academy/internal/apperr"
	"github.com/mind-engage/mindengage-academy/internal/rbac"
)

// PATCH /users/{userID}/role  { "role": "teacher" }
// userID may be an id or a username.
func AdminUpdateUserRoleHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		target := chi.URLParam(r, "userID")
		var req struct {
			Role string `json:"role"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		role := strings.ToLower(strings.TrimSpace(req.Role))
		if !validRole(role) {
			writeError(w, r, apperr.Validation("invalid role"))
			return
		}

		var id, curRole string
		err := db.QueryRowContext(r.Context(),
			`SELECT id, role FROM users WHERE id=$1 OR username=$1`, target).Scan(&id, &curRole)
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, r, apperr.NotFound("user not found"))
			return
		}
		if err != nil {
			writeError(w, r, err)
			return
		}
		if curRole == rbac.RoleAdmin && role != rbac.RoleAdmin {
			var admins int
			if err := db.QueryRowContext(r.Context(),
				`SELECT COUNT(1) FROM users WHERE role=$1`, rbac.RoleAdmin).Scan(&admins); err != nil {
				writeError(w, r, err)
				return
			}
			if admins <= 1 {
				writeError(w, r, apperr.Validation("cannot demote the last admin"))
				return
			}
		}

		if _, err := db.ExecContext(r.Context(), `UPDATE users SET role=$1 WHERE id=$2`, role, id); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
