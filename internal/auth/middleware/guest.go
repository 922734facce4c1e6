package auth

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/mindengage-academy/internal/rbac"
)

const (
	guestCookie = "me_guest_id"
	guestPrefix = "guest|"
	guestTTL    = 30 * 24 * time.Hour
)

// POST /auth/guest
// Issues a student token for an anonymous visitor, reusing the guest identity
// stored in the browser cookie when there is one.
func GuestLoginHandler(a *AuthService, db *sql.DB) http.HandlerFunc {
	type out struct {
		AccessToken string `json:"access_token"`
		Username    string `json:"username"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie(guestCookie); err == nil && strings.HasPrefix(c.Value, guestPrefix) {
			var username, role string
			err := db.QueryRowContext(r.Context(), `SELECT username, role FROM users WHERE id=$1`, c.Value).Scan(&username, &role)
			if err == nil && role == rbac.RoleStudent {
				tok, err := a.IssueJWT(c.Value, role)
				if err != nil {
					jsonError(w, "issue token", http.StatusInternalServerError)
					return
				}
				setGuestCookie(w, c.Value)
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(out{AccessToken: tok, Username: username})
				return
			}
		}

		sfx := strings.ReplaceAll(uuid.NewString(), "-", "")
		userID := guestPrefix + sfx
		username := "guest-" + sfx[:8]
		if _, err := db.ExecContext(r.Context(),
			`INSERT INTO users (id, username, role, created_at) VALUES ($1,$2,$3,$4)`,
			userID, username, rbac.RoleStudent, time.Now().Unix()); err != nil {
			jsonError(w, "create guest", http.StatusInternalServerError)
			return
		}
		tok, err := a.IssueJWT(userID, rbac.RoleStudent)
		if err != nil {
			jsonError(w, "issue token", http.StatusInternalServerError)
			return
		}
		setGuestCookie(w, userID)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out{AccessToken: tok, Username: username})
	}
}

func setGuestCookie(w http.ResponseWriter, userID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     guestCookie,
		Value:    userID,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
		Expires:  time.Now().Add(guestTTL),
	})
}
