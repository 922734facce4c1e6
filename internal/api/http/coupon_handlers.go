package http

import (
	"net/http"

	"github.com/mind-engage/mindengage-academy/internal/coupon"
)

// POST /coupons
func CreateCouponHandler(svc *coupon.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req coupon.Coupon
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		c, err := svc.Create(r.Context(), caller(r), req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		respondJSON(w, http.StatusCreated, c)
	}
}

// GET /coupons
func ListCouponsHandler(svc *coupon.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context(), caller(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, list)
	}
}

// POST /coupons/validate  { "code": "...", "courseId": "..." } -> { "discount": {...} }
func ValidateCouponHandler(svc *coupon.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Code     string `json:"code"`
			CourseID string `json:"courseId"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		d, err := svc.Validate(r.Context(), caller(r), req.Code, req.CourseID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"discount": d})
	}
}
