package entity

import "time"

type Offer struct {
	Base
	Title           string    `db:"title"`
	Description     *string   `db:"description"`
	DiscountPercent float64   `db:"discount_percent"`
	ValidFrom       time.Time `db:"valid_from"`
	ValidUntil      time.Time `db:"valid_until"`
	IsActive        bool      `db:"is_active"`
}
