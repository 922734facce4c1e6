package coupon

import "context"

type Store interface {
	// Create fails with a validation error when the code is taken.
	Create(ctx context.Context, c Coupon) error
	Get(ctx context.Context, code string) (Coupon, error)
	List(ctx context.Context) ([]Coupon, error)
	// IncrementUse bumps used_count unless the coupon is inactive or used up.
	IncrementUse(ctx context.Context, code string) (bool, error)
}
