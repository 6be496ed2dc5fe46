package response

import (
	"library-booking/internal/data/entity"
	"library-booking/pkg/utils"
)

type CouponResponse struct {
	ID            string              `json:"id"`
	Code          string              `json:"code"`
	Description   *string             `json:"description,omitempty"`
	DiscountType  entity.DiscountType `json:"discount_type"`
	DiscountValue float64             `json:"discount_value"`
	MinAmount     float64             `json:"min_amount"`
	MaxDiscount   *float64            `json:"max_discount,omitempty"`
	UsageLimit    *int                `json:"usage_limit,omitempty"`
	UsedCount     int                 `json:"used_count"`
	ValidFrom     string              `json:"valid_from"`
	ValidUntil    string              `json:"valid_until"`
	IsActive      bool                `json:"is_active"`
}

type CouponValidationResponse struct {
	Code        string  `json:"code"`
	Amount      float64 `json:"amount"`
	Discount    float64 `json:"discount"`
	FinalAmount float64 `json:"final_amount"`
}

func CouponToResponse(coupon *entity.Coupon) CouponResponse {
	return CouponResponse{
		ID:            coupon.ID.String(),
		Code:          coupon.Code,
		Description:   coupon.Description,
		DiscountType:  coupon.DiscountType,
		DiscountValue: coupon.DiscountValue,
		MinAmount:     coupon.MinAmount,
		MaxDiscount:   coupon.MaxDiscount,
		UsageLimit:    coupon.UsageLimit,
		UsedCount:     coupon.UsedCount,
		ValidFrom:     coupon.ValidFrom.Format(utils.DateLayout),
		ValidUntil:    coupon.ValidUntil.Format(utils.DateLayout),
		IsActive:      coupon.IsActive,
	}
}
