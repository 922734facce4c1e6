package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-academy/internal/apperr"
)

func TestWriteErrorStatuses(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{apperr.Forbidden("not enrolled in this course"), http.StatusForbidden, "not enrolled in this course"},
		{apperr.NotFound("quiz not found"), http.StatusNotFound, "quiz not found"},
		{apperr.AttemptLimitExceeded("maximum of 2 attempts reached"), http.StatusConflict, "maximum of 2 attempts reached"},
		{apperr.InvalidCoupon("coupon has expired"), http.StatusBadRequest, "coupon has expired"},
		{fmt.Errorf("wrapped: %w", apperr.ErrUnauthorized), http.StatusUnauthorized, "wrapped: unauthorized"},
		{errors.New("disk on fire"), http.StatusInternalServerError, "internal error"},
	}
	for _, c := range cases {
		rec := httptest.NewRecorder()
		writeError(rec, httptest.NewRequest(http.MethodGet, "/x", nil), c.err)
		require.Equal(t, c.status, rec.Code)
		require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var body errorBody
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, c.msg, body.Error)
	}
}

func TestWriteErrorCarriesFields(t *testing.T) {
	rec := httptest.NewRecorder()
	err := apperr.ValidationFields("invalid quiz", apperr.FieldError{Field: "attempts", Error: "must be at least 1"})
	writeError(rec, httptest.NewRequest(http.MethodPost, "/quizzes", nil), err)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), `"field":"attempts"`)
}

func TestDecodeJSON(t *testing.T) {
	var v struct{ A int }
	require.NoError(t, decodeJSON(httptest.NewRequest(http.MethodPost, "/", strings.NewReader("")), &v))
	require.NoError(t, decodeJSON(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"A":3}`)), &v))
	require.Equal(t, 3, v.A)
	require.ErrorIs(t, decodeJSON(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`)), &v), apperr.ErrValidation)
}
