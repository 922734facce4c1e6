package http

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mind-engage/mindengage-academy/internal/apperr"
	"github.com/mind-engage/mindengage-academy/internal/rbac"
)

const bcryptCost = 12

type userRow struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`               // usually "student"
	Password string `json:"password,omitempty"` // plaintext, hashed on write
}

func validRole(role string) bool {
	return role == rbac.RoleStudent || role == rbac.RoleTeacher || role == rbac.RoleAdmin
}

// POST /users/bulk
// Accepts a JSON array body or a multipart file= holding CSV or JSON.
func BulkUpsertUsersHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rows []userRow
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			f, _, err := r.FormFile("file")
			if err != nil {
				writeError(w, r, apperr.Validation("file required"))
				return
			}
			defer f.Close()
			raw, err := io.ReadAll(f)
			if err != nil {
				writeError(w, r, apperr.Validation("unreadable file"))
				return
			}
			if trimmed := strings.TrimSpace(string(raw)); strings.HasPrefix(trimmed, "[") {
				if err := json.Unmarshal(raw, &rows); err != nil {
					writeError(w, r, apperr.Validation("bad json"))
					return
				}
			} else {
				rs, err := parseCSV(strings.NewReader(trimmed))
				if err != nil {
					writeError(w, r, apperr.Validation("bad csv: %v", err))
					return
				}
				rows = rs
			}
		} else if err := json.NewDecoder(r.Body).Decode(&rows); err != nil {
			writeError(w, r, apperr.Validation("expected JSON array or multipart file"))
			return
		}

		ins, upd, err := upsertUsers(r.Context(), db, rows)
		if err != nil {
			writeError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]int{"inserted": ins, "updated": upd})
	}
}

// GET /users?role=
func ListUsersHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := r.URL.Query().Get("role")
		var (
			rows *sql.Rows
			err  error
		)
		if role == "" {
			rows, err = db.QueryContext(r.Context(), `SELECT id,username,role FROM users ORDER BY username`)
		} else {
			rows, err = db.QueryContext(r.Context(), `SELECT id,username,role FROM users WHERE role=$1 ORDER BY username`, role)
		}
		if err != nil {
			writeError(w, r, err)
			return
		}
		defer rows.Close()
		out := []userRow{}
		for rows.Next() {
			var u userRow
			if err := rows.Scan(&u.ID, &u.Username, &u.Role); err != nil {
				writeError(w, r, err)
				return
			}
			out = append(out, u)
		}
		respondJSON(w, http.StatusOK, out)
	}
}

func parseCSV(r io.Reader) ([]userRow, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	hdr, err := cr.Read()
	if err != nil {
		return nil, err
	}
	idx := map[string]int{}
	for i, h := range hdr {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, k := range []string{"username", "role"} {
		if _, ok := idx[k]; !ok {
			return nil, errors.New("missing column: " + k)
		}
	}
	col := func(rec []string, name string) string {
		if i, ok := idx[name]; ok && i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}
	var rows []userRow
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, userRow{
			ID:       col(rec, "id"),
			Username: col(rec, "username"),
			Role:     strings.ToLower(col(rec, "role")),
			Password: col(rec, "password"),
		})
	}
	return rows, nil
}

// upsertUsers writes all rows in one transaction. Existing users are matched
// by id or username; new users need a password.
func upsertUsers(ctx context.Context, db *sql.DB, rows []userRow) (inserted, updated int, err error) {
	if len(rows) == 0 {
		return 0, 0, nil
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			inserted, updated = 0, 0
		} else {
			err = tx.Commit()
		}
	}()

	now := time.Now().Unix()
	for _, u := range rows {
		u.Username = strings.TrimSpace(u.Username)
		if u.Username == "" {
			return inserted, updated, apperr.Validation("username required")
		}
		if u.Role == "" {
			u.Role = rbac.RoleStudent
		}
		if !validRole(u.Role) {
			return inserted, updated, apperr.Validation("invalid role: %s", u.Role)
		}
		var phash string
		if u.Password != "" {
			b, e := bcrypt.GenerateFromPassword([]byte(u.Password), bcryptCost)
			if e != nil {
				return inserted, updated, e
			}
			phash = string(b)
		}

		var existingID string
		err = tx.QueryRowContext(ctx, `SELECT id FROM users WHERE id=$1 OR username=$2`, u.ID, u.Username).Scan(&existingID)
		switch {
		case err == nil:
			if phash != "" {
				_, err = tx.ExecContext(ctx, `UPDATE users SET username=$1, role=$2, password_hash=$3 WHERE id=$4`,
					u.Username, u.Role, phash, existingID)
			} else {
				_, err = tx.ExecContext(ctx, `UPDATE users SET username=$1, role=$2 WHERE id=$3`,
					u.Username, u.Role, existingID)
			}
			if err != nil {
				return inserted, updated, err
			}
			updated++
		case errors.Is(err, sql.ErrNoRows):
			if phash == "" {
				return inserted, updated, apperr.Validation("password required for new user: %s", u.Username)
			}
			if u.ID == "" {
				u.ID = uuid.NewString()
			}
			_, err = tx.ExecContext(ctx,
				`INSERT INTO users (id, username, password_hash, role, created_at) VALUES ($1,$2,$3,$4,$5)`,
				u.ID, u.Username, phash, u.Role, now)
			if err != nil {
				return inserted, updated, err
			}
			inserted++
		default:
			return inserted, updated, err
		}
	}
	return inserted, updated, nil
}
