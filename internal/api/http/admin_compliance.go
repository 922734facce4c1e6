package http

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/mind-engage/mindengage-academy/internal/apperr"
	syncx "github.com/mind-engage/mindengage-academy/internal/sync"
)

// -----------------------------
// Admin: Compliance & Audit
// -----------------------------

type userExport struct {
	ID           string           `json:"id"`
	Username     string           `json:"username"`
	Role         string           `json:"role"`
	CreatedAt    int64            `json:"created_at"`
	Enrollments  []map[string]any `json:"enrollments"`
	Attempts     []map[string]any `json:"quiz_attempts"`
	Certificates []map[string]any `json:"certificates"`
}

// POST /admin/pii/export  { "user_id": "..." }
// Returns the user's learning records as a downloadable JSON file.
func HandleAdminPIIExport(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID string `json:"user_id"`
		}
		if err := decodeJSON(r, &req); err != nil || req.UserID == "" {
			writeError(w, r, apperr.Validation("user_id required"))
			return
		}
		ctx := r.Context()

		var out userExport
		err := db.QueryRowContext(ctx,
			`SELECT id, username, role, created_at FROM users WHERE id=$1 OR username=$1`, req.UserID).
			Scan(&out.ID, &out.Username, &out.Role, &out.CreatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, r, apperr.NotFound("user not found"))
			return
		}
		if err != nil {
			writeError(w, r, err)
			return
		}

		queries := []struct {
			dst *[]map[string]any
			sql string
		}{
			{&out.Enrollments, `SELECT course_id, status, progress, enrolled_at FROM enrollments WHERE user_id=$1`},
			{&out.Attempts, `SELECT quiz_id, attempt_number, percentage, passed, submitted_at FROM quiz_attempts WHERE user_id=$1`},
			{&out.Certificates, `SELECT course_id, number, issued_at, is_valid FROM certificates WHERE user_id=$1`},
		}
		for _, q := range queries {
			rows, err := selectMaps(ctx, db, q.sql, out.ID)
			if err != nil {
				writeError(w, r, err)
				return
			}
			*q.dst = rows
		}

		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "pii_"+out.ID+".json"))
		respondJSON(w, http.StatusOK, out)
	}
}

// POST /admin/pii/delete  { "user_id": "..." }
// Removes the user and every learning record tied to them.
func HandleAdminPIIDelete(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID string `json:"user_id"`
		}
		if err := decodeJSON(r, &req); err != nil || req.UserID == "" {
			writeError(w, r, apperr.Validation("user_id required"))
			return
		}
		ctx := r.Context()

		var id string
		err := db.QueryRowContext(ctx, `SELECT id FROM users WHERE id=$1 OR username=$1`, req.UserID).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, r, apperr.NotFound("user not found"))
			return
		}
		if err != nil {
			writeError(w, r, err)
			return
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			writeError(w, r, err)
			return
		}
		defer tx.Rollback()

		for _, table := range []string{"quiz_attempts", "lesson_completions", "dsa_progress", "certificates", "enrollments"} {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE user_id=$1`, id); err != nil {
				writeError(w, r, err)
				return
			}
		}
		// Events name the user either in a "userID:..." key or in the payload's userId.
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM event_log WHERE key LIKE $1 ESCAPE '\' OR data LIKE $2 ESCAPE '\'`,
			likeEscape(id)+":%", `%"userId":"`+likeEscape(id)+`"%`); err != nil {
			writeError(w, r, err)
			return
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id=$1`, id); err != nil {
			writeError(w, r, err)
			return
		}
		if err := tx.Commit(); err != nil {
			writeError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

// GET /admin/audit?since=0&limit=100&type=QuizAttemptSubmitted
// X-Next-Since carries the seq to pass as since for the next page.
func HandleAdminAuditSearch(events *syncx.EventRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		since, _ := strconv.ParseInt(q.Get("since"), 10, 64)
		typ := strings.TrimSpace(q.Get("type"))

		list, err := events.Search(r.Context(), since, typ, parseIntDefault(q.Get("limit"), 100))
		if err != nil {
			writeError(w, r, err)
			return
		}
		next := since
		out := make([]map[string]any, 0, len(list))
		for _, e := range list {
			next = e.Seq
			out = append(out, map[string]any{
				"seq":        e.Seq,
				"type":       e.Type,
				"key":        e.Key,
				"data":       e.DataJSON,
				"created_at": e.CreatedAt,
			})
		}
		w.Header().Set("X-Next-Since", strconv.FormatInt(next, 10))
		respondJSON(w, http.StatusOK, out)
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likeEscape(s string) string { return likeEscaper.Replace(s) }

func selectMaps(ctx context.Context, db *sql.DB, query string, args ...any) ([]map[string]any, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	out := []map[string]any{}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		m := make(map[string]any, len(cols))
		for i, c := range cols {
			if b, ok := vals[i].([]byte); ok {
				m[c] = string(b)
			} else {
				m[c] = vals[i]
			}
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
