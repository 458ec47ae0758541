package coupon

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrUnavailable marks a validation attempt that failed because the
// coupon store could not be reached. Distinct from "not valid" so the
// UI can say "try again" instead of "bad code".
var ErrUnavailable = errors.New("coupon store unavailable")

// Rejection reasons carried in Result.Reason.
const (
	ReasonEmptyCode    = "empty_code"
	ReasonNotFound     = "not_found"
	ReasonNotYetActive = "not_yet_active"
	ReasonExpired      = "expired"
	ReasonLimitReached = "redemption_limit_reached"
)

// Result is the outcome of a validation. An invalid code is a normal
// outcome, not an error.
type Result struct {
	Valid           bool   `json:"valid"`
	DiscountPercent int    `json:"discount_percent,omitempty"`
	Reason          string `json:"reason,omitempty"`
}

// Validator checks codes against a Store. It never mutates redemption
// state; the booking recorder consumes redemptions on submission.
type Validator struct {
	store Store
	now   func() time.Time
}

func NewValidator(store Store) *Validator {
	return &Validator{store: store, now: time.Now}
}

// WithClock overrides the time source, for tests.
func (v *Validator) WithClock(now func() time.Time) *Validator {
	v.now = now
	return v
}

// Validate applies the business rules in order: normalize, look up,
// check the validity window, check the redemption cap. Only a store
// failure produces an error.
func (v *Validator) Validate(ctx context.Context, code string) (Result, error) {
	code = Normalize(code)
	if code == "" {
		return Result{Valid: false, Reason: ReasonEmptyCode}, nil
	}

	c, err := v.store.GetByCode(ctx, code)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if c == nil {
		return Result{Valid: false, Reason: ReasonNotFound}, nil
	}

	now := v.now().UTC()
	if c.ValidFrom != nil && now.Before(*c.ValidFrom) {
		return Result{Valid: false, Reason: ReasonNotYetActive}, nil
	}
	if c.ValidUntil != nil && now.After(*c.ValidUntil) {
		return Result{Valid: false, Reason: ReasonExpired}, nil
	}
	if c.MaxRedemptions > 0 && c.RedemptionCount >= c.MaxRedemptions {
		return Result{Valid: false, Reason: ReasonLimitReached}, nil
	}

	return Result{Valid: true, DiscountPercent: c.DiscountPercent}, nil
}

// FinalPrice applies a percentage discount to the pre-discount
// estimate, rounded half-up. Always discount from the canonical base
// price; applying it to an already-discounted value compounds the
// discount and is a caller bug.
func FinalPrice(estimatedPrice int, discountPercent int) int {
	v := float64(estimatedPrice) * (1 - float64(discountPercent)/100)
	return int(math.Floor(v + 0.5))
}
