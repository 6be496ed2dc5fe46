// Package pricing holds the money rules shared by the server and the client:
// coupon discounts, GST breakdown and the cancellation refund tiers.
package pricing

import (
	"errors"
	"fmt"
	"math"
)

type DiscountType string

const (
	Percentage DiscountType = "percentage"
	Flat       DiscountType = "flat"
)

var ErrBelowMinimum = errors.New("order amount below coupon minimum")

// CouponTerms are the money-relevant fields of a coupon
type CouponTerms struct {
	Type        DiscountType
	Value       float64
	MinAmount   float64
	MaxDiscount *float64
}

// Discount returns the discount a coupon grants on amount. Percentage discounts
// are capped by MaxDiscount and no discount exceeds the amount itself.
func Discount(terms CouponTerms, amount float64) (float64, error) {
	if amount < terms.MinAmount {
		return 0, fmt.Errorf("%w: minimum is %.2f", ErrBelowMinimum, terms.MinAmount)
	}

	var discount float64
	switch terms.Type {
	case Percentage:
		discount = amount * terms.Value / 100
		if terms.MaxDiscount != nil && discount > *terms.MaxDiscount {
			discount = *terms.MaxDiscount
		}
	case Flat:
		discount = terms.Value
	default:
		return 0, fmt.Errorf("invalid discount type %q", terms.Type)
	}

	if discount < 0 {
		discount = 0
	}
	if discount > amount {
		discount = amount
	}
	return Round(discount), nil
}

// Breakdown is the checkout summary shown before payment
type Breakdown struct {
	Subtotal   float64 `json:"subtotal"`
	Discount   float64 `json:"discount"`
	Taxable    float64 `json:"taxable"`
	GSTPercent float64 `json:"gst_percent"`
	GST        float64 `json:"gst"`
	Total      float64 `json:"total"`
}

// Checkout applies the discount first and charges GST on what remains
func Checkout(subtotal, discount, gstPercent float64) Breakdown {
	subtotal = Round(subtotal)
	discount = Round(math.Min(math.Max(discount, 0), subtotal))
	taxable := Round(subtotal - discount)
	gst := Round(taxable * gstPercent / 100)

	return Breakdown{
		Subtotal:   subtotal,
		Discount:   discount,
		Taxable:    taxable,
		GSTPercent: gstPercent,
		GST:        gst,
		Total:      Round(taxable + gst),
	}
}

func Round(v float64) float64 {
	return math.Round(v*100) / 100
}
