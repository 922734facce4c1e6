package coupon

import (
	"context"
	"errors"
	"time"

	"github.com/mind-engage/mindengage-academy/internal/apperr"
	"github.com/mind-engage/mindengage-academy/internal/course"
	"github.com/mind-engage/mindengage-academy/internal/rbac"
)

type Service struct {
	store   Store
	courses course.Store
	now     func() time.Time
}

func NewService(store Store, courses course.Store) *Service {
	return &Service{store: store, courses: courses, now: time.Now}
}

// Create stores a new coupon. Admin only.
func (s *Service) Create(ctx context.Context, caller rbac.Caller, c Coupon) (Coupon, error) {
	if !caller.Can("coupon:create") {
		return Coupon{}, apperr.Forbidden("only admins can create coupons")
	}
	c.Code = NormalizeCode(c.Code)
	if err := c.Validate(); err != nil {
		return Coupon{}, err
	}
	c.UsedCount = 0
	c.CreatedAt = s.now().Unix()
	if err := s.store.Create(ctx, c); err != nil {
		return Coupon{}, err
	}
	return c, nil
}

func (s *Service) List(ctx context.Context, caller rbac.Caller) ([]Coupon, error) {
	if !caller.Can("coupon:create") {
		return nil, apperr.Forbidden("only admins can list coupons")
	}
	return s.store.List(ctx)
}

// Validate prices courseID with the coupon applied. Usage counters are not
// touched.
func (s *Service) Validate(ctx context.Context, caller rbac.Caller, code, courseID string) (Discount, error) {
	if !caller.Authenticated() {
		return Discount{}, apperr.ErrUnauthorized
	}
	if NormalizeCode(code) == "" || courseID == "" {
		return Discount{}, apperr.Validation("code and courseId are required")
	}
	return s.quote(ctx, code, courseID)
}

func (s *Service) quote(ctx context.Context, code, courseID string) (Discount, error) {
	crs, err := s.courses.GetCourse(ctx, courseID)
	if err != nil {
		return Discount{}, err
	}
	c, err := s.store.Get(ctx, NormalizeCode(code))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return Discount{}, apperr.InvalidCoupon("coupon not found")
		}
		return Discount{}, err
	}
	return Apply(c, courseID, crs.Price, s.now())
}

// Redeem applies the coupon and records one use. It is the order completion
// hook; a coupon used up concurrently fails with InvalidCoupon.
func (s *Service) Redeem(ctx context.Context, code, courseID string) (Discount, error) {
	d, err := s.quote(ctx, code, courseID)
	if err != nil {
		return Discount{}, err
	}
	ok, err := s.store.IncrementUse(ctx, NormalizeCode(code))
	if err != nil {
		return Discount{}, err
	}
	if !ok {
		return Discount{}, apperr.InvalidCoupon("coupon usage limit reached")
	}
	return d, nil
}
