// Package coupon implements the discount-code side of the booking
// flow: validation of user-entered codes and issuance of the
// newsletter-popup coupon.
package coupon

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// CodePrefix is shared by all issued codes.
const CodePrefix = "SEKNU"

// DefaultDiscountPercent is granted to newsletter subscribers.
const DefaultDiscountPercent = 5

// Coupon is a redeemable discount code. Codes are stored upper-cased.
// ValidFrom/ValidUntil and MaxRedemptions are optional bounds.
type Coupon struct {
	Code            string     `db:"code" json:"code"`
	DiscountPercent int        `db:"discount_percent" json:"discount_percent"`
	ValidFrom       *time.Time `db:"valid_from" json:"valid_from,omitempty"`
	ValidUntil      *time.Time `db:"valid_until" json:"valid_until,omitempty"`
	MaxRedemptions  int        `db:"max_redemptions" json:"max_redemptions,omitempty"`
	RedemptionCount int        `db:"redemption_count" json:"redemption_count"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
}

// Store is the read-only coupon source the validator works against.
// Implementations return (nil, nil) for an unknown code; an error
// means the store itself could not be reached.
type Store interface {
	GetByCode(ctx context.Context, code string) (*Coupon, error)
}

// Normalize canonicalizes a user-entered code: trimmed, upper-cased.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NewCode generates a fresh coupon code, e.g. SEKNU3F09A.
func NewCode() (string, error) {
	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate coupon code: %w", err)
	}
	return CodePrefix + strings.ToUpper(hex.EncodeToString(buf))[:5], nil
}
