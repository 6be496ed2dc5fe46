package entity

import "time"

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFlat       DiscountType = "flat"
)

type Coupon struct {
	Base
	Code          string       `db:"code"`
	Description   *string      `db:"description"`
	DiscountType  DiscountType `db:"discount_type"`
	DiscountValue float64      `db:"discount_value"`
	MinAmount     float64      `db:"min_amount"`
	MaxDiscount   *float64     `db:"max_discount"`
	UsageLimit    *int         `db:"usage_limit"`
	UsedCount     int          `db:"used_count"`
	ValidFrom     time.Time    `db:"valid_from"`
	ValidUntil    time.Time    `db:"valid_until"`
	IsActive      bool         `db:"is_active"`
}
