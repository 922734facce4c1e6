package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mind-engage/mindengage-academy/internal/db/dbtest"
	"github.com/mind-engage/mindengage-academy/internal/rbac"
)

func echoCaller() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := rbac.CallerFromContext(r.Context())
		_ = json.NewEncoder(w).Encode(map[string]string{"sub": c.UserID, "role": c.Role})
	})
}

func TestIssueAndParse(t *testing.T) {
	a := NewAuthService("k1")
	tok, err := a.IssueJWT("u1", rbac.RoleTeacher)
	require.NoError(t, err)

	c, err := a.Parse(tok)
	require.NoError(t, err)
	require.Equal(t, "u1", c.Sub)
	require.Equal(t, rbac.RoleTeacher, c.Role)

	_, err = NewAuthService("other").Parse(tok)
	require.Error(t, err)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Sub: "u1", Role: rbac.RoleStudent,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))},
	})
	raw, err := expired.SignedString([]byte("k1"))
	require.NoError(t, err)
	_, err = a.Parse(raw)
	require.Error(t, err)
}

func TestJWTMiddleware(t *testing.T) {
	a := NewAuthService("k1")
	h := JWTMiddleware(a)(echoCaller())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	tok, _ := a.IssueJWT("u1", rbac.RoleStudent)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"sub":"u1","role":"student"}`, rec.Body.String())
}

func TestLoginHandler(t *testing.T) {
	db := dbtest.Open(t)
	hash, _ := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	_, err := db.Exec(`INSERT INTO users (id,username,password_hash,role,created_at) VALUES ('u1','alice',$1,'student',0)`, string(hash))
	require.NoError(t, err)
	a := NewAuthService("k1")
	h := LoginHandler(a, db)

	login := func(user, pass string) *httptest.ResponseRecorder {
		body, _ := json.Marshal(map[string]string{"username": user, "password": pass})
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body)))
		return rec
	}

	require.Equal(t, http.StatusUnauthorized, login("alice", "nope").Code)
	require.Equal(t, http.StatusUnauthorized, login("bob", "pw").Code)

	rec := login(" alice ", "pw")
	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	c, err := a.Parse(out.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "u1", c.Sub)
}

func TestAttachRoleFromDB(t *testing.T) {
	db := dbtest.Open(t)
	_, err := db.Exec(`INSERT INTO users (id,username,role,created_at) VALUES ('u1','alice','teacher',0)`)
	require.NoError(t, err)

	serve := func(c rbac.Caller, fallback bool) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(rbac.WithCaller(req.Context(), c))
		rec := httptest.NewRecorder()
		AttachRoleFromDB(db, fallback)(echoCaller()).ServeHTTP(rec, req)
		return rec
	}

	rec := serve(rbac.Caller{UserID: "u1", Role: rbac.RoleStudent}, false)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"sub":"u1","role":"teacher"}`, rec.Body.String())

	require.Equal(t, http.StatusForbidden, serve(rbac.Caller{UserID: "ghost", Role: rbac.RoleAdmin}, false).Code)

	rec = serve(rbac.Caller{UserID: "ghost", Role: rbac.RoleStudent}, true)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"sub":"ghost","role":"student"}`, rec.Body.String())
}

func TestGuestLoginReusesCookie(t *testing.T) {
	db := dbtest.Open(t)
	a := NewAuthService("k1")
	h := GuestLoginHandler(a, db)

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/auth/guest", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	guestID := cookies[0].Value
	require.Contains(t, guestID, guestPrefix)

	req := httptest.NewRequest(http.MethodPost, "/auth/guest", nil)
	req.AddCookie(&http.Cookie{Name: guestCookie, Value: guestID})
	rec = httptest.NewRecorder()
	h(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	c, err := a.Parse(out.AccessToken)
	require.NoError(t, err)
	require.Equal(t, guestID, c.Sub)
	require.Equal(t, rbac.RoleStudent, c.Role)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(1) FROM users`).Scan(&n))
	require.Equal(t, 1, n)
}
