package coupon

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mind-engage/mindengage-academy/internal/apperr"
)

type Type string

const (
	TypePercentage Type = "percentage"
	TypeFlat       Type = "flat"
)

var hundred = decimal.NewFromInt(100)

type Coupon struct {
	Code  string          `json:"code"`
	Type  Type            `json:"type"`
	Value decimal.Decimal `json:"value"` // percent for percentage coupons, currency amount for flat
	// CourseIDs restricts the coupon; empty means every course.
	CourseIDs  []string `json:"courseIds"`
	ValidFrom  *int64   `json:"validFrom,omitempty"`
	ValidUntil *int64   `json:"validUntil,omitempty"`
	MaxUses    int      `json:"maxUses"` // 0 = unlimited
	UsedCount  int      `json:"usedCount"`
	IsActive   bool     `json:"isActive"`
	CreatedAt  int64    `json:"createdAt,omitempty"`
}

// NormalizeCode is the canonical stored form of a coupon code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (c Coupon) Validate() error {
	var fields []apperr.FieldError
	add := func(field, msg string) { fields = append(fields, apperr.FieldError{Field: field, Error: msg}) }

	if NormalizeCode(c.Code) == "" {
		add("code", "required")
	}
	switch c.Type {
	case TypePercentage:
		if !c.Value.IsPositive() || c.Value.GreaterThan(hundred) {
			add("value", "must be in (0, 100]")
		}
	case TypeFlat:
		if !c.Value.IsPositive() {
			add("value", "must be positive")
		}
	default:
		add("type", "must be percentage or flat")
	}
	if c.MaxUses < 0 {
		add("maxUses", "must not be negative")
	}
	if c.ValidFrom != nil && c.ValidUntil != nil && *c.ValidUntil < *c.ValidFrom {
		add("validUntil", "must not precede validFrom")
	}
	if len(fields) > 0 {
		return apperr.ValidationFields("invalid coupon", fields...)
	}
	return nil
}

func (c Coupon) appliesTo(courseID string) bool {
	if len(c.CourseIDs) == 0 {
		return true
	}
	for _, id := range c.CourseIDs {
		if id == courseID {
			return true
		}
	}
	return false
}
