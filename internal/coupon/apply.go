package coupon

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mind-engage/mindengage-academy/internal/apperr"
)

type Discount struct {
	Code           string          `json:"code"`
	Type           Type            `json:"type"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	OriginalPrice  decimal.Decimal `json:"originalPrice"`
	FinalPrice     decimal.Decimal `json:"finalPrice"`
}

// Apply checks that c can be used on courseID at now and computes the
// discounted price. The discount never exceeds the price.
func Apply(c Coupon, courseID string, price decimal.Decimal, now time.Time) (Discount, error) {
	if !c.IsActive {
		return Discount{}, apperr.InvalidCoupon("coupon is not active")
	}
	ts := now.Unix()
	if c.ValidFrom != nil && ts < *c.ValidFrom {
		return Discount{}, apperr.InvalidCoupon("coupon is not yet valid")
	}
	if c.ValidUntil != nil && ts > *c.ValidUntil {
		return Discount{}, apperr.InvalidCoupon("coupon has expired")
	}
	if c.MaxUses > 0 && c.UsedCount >= c.MaxUses {
		return Discount{}, apperr.InvalidCoupon("coupon usage limit reached")
	}
	if !c.appliesTo(courseID) {
		return Discount{}, apperr.InvalidCoupon("coupon does not apply to this course")
	}

	var amount decimal.Decimal
	switch c.Type {
	case TypePercentage:
		amount = price.Mul(c.Value).Div(hundred)
	case TypeFlat:
		amount = c.Value
	default:
		return Discount{}, apperr.InvalidCoupon("unknown coupon type %q", c.Type)
	}
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	if amount.GreaterThan(price) {
		amount = price
	}
	amount = amount.Round(2)
	return Discount{
		Code:           c.Code,
		Type:           c.Type,
		DiscountAmount: amount,
		OriginalPrice:  price,
		FinalPrice:     price.Sub(amount).Round(2),
	}, nil
}
