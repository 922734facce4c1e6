// internal/auth/middleware/attach_role.go
package auth

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/mind-engage/mindengage-academy/internal/rbac"
)

// AttachRoleFromDB replaces the token's role claim with the role stored for the
// user, so demotions take effect before the token expires.
// allowClaimFallback=true in dev/offline; false in prod.
func AttachRoleFromDB(db *sql.DB, allowClaimFallback bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			caller := rbac.CallerFromContext(ctx)

			var role string
			err := db.QueryRowContext(ctx, `SELECT role FROM users WHERE id=$1`, caller.UserID).Scan(&role)

			switch {
			case err == nil && role != "":
				caller.Role = role
				next.ServeHTTP(w, r.WithContext(rbac.WithCaller(ctx, caller)))
			case errors.Is(err, sql.ErrNoRows):
				if allowClaimFallback && caller.Role != "" {
					next.ServeHTTP(w, r)
					return
				}
				jsonError(w, "forbidden", http.StatusForbidden)
			default:
				// Unknown DB error: in dev, be lenient; in prod, deny
				if allowClaimFallback && caller.Role != "" {
					next.ServeHTTP(w, r)
					return
				}
				jsonError(w, "forbidden", http.StatusForbidden)
			}
		})
	}
}
